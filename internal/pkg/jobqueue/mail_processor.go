package jobqueue

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/flixhive/flixhive/internal/pkg/mail"
)

// processMailDeliveryJob composes and sends one email
func (q *Queue) processMailDeliveryJob(job *Job) error {
	payload, err := MailDeliveryJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse mail delivery job payload: %w", err)
	}

	if strings.TrimSpace(payload.To) == "" {
		return fmt.Errorf("mail delivery job has no recipient")
	}

	var subject, body string
	switch payload.Kind {
	case MailKindActivation:
		subject, body = mail.ActivationMessage(payload.Name, payload.ActivationURL)
	case MailKindPaymentFailed:
		subject, body = mail.PaymentFailedMessage(payload.Name)
	default:
		return fmt.Errorf("unknown mail kind: %s", payload.Kind)
	}

	log.Infof("[MailDelivery] Sending %s mail to %s", payload.Kind, payload.To)
	return mail.SendMail(payload.To, subject, body)
}

// EnqueueActivationMailJob creates and enqueues an activation mail job
func (q *Queue) EnqueueActivationMailJob(to, name, activationURL string) (*Job, error) {
	payload := MailDeliveryJobPayload{
		To:            to,
		Kind:          MailKindActivation,
		Name:          name,
		ActivationURL: activationURL,
	}

	return q.EnqueueJob(JobTypeMailDelivery, payload.ToMap())
}

// EnqueuePaymentFailedMailJob creates and enqueues a payment-failed notification job
func (q *Queue) EnqueuePaymentFailedMailJob(to, name string) (*Job, error) {
	payload := MailDeliveryJobPayload{
		To:   to,
		Kind: MailKindPaymentFailed,
		Name: name,
	}

	return q.EnqueueJob(JobTypeMailDelivery, payload.ToMap())
}
