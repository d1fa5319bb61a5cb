package mail

import (
	"fmt"
	"html"
)

// ActivationMessage builds the account-activation email.
func ActivationMessage(name string, activationURL string) (subject string, body string) {
	subject = "Activate your FlixHive account"
	body = fmt.Sprintf(
		"<h2>Welcome to FlixHive, %s!</h2>"+
			"<p>Please confirm your email address to activate your account:</p>"+
			"<p><a href=\"%s\">Activate account</a></p>"+
			"<p>If you did not sign up, you can ignore this email.</p>",
		html.EscapeString(name), activationURL,
	)
	return subject, body
}

// PaymentFailedMessage builds the failed-payment notification email.
func PaymentFailedMessage(name string) (subject string, body string) {
	subject = "FlixHive: your payment failed"
	body = fmt.Sprintf(
		"<h2>Hi %s,</h2>"+
			"<p>We could not process your latest subscription payment. "+
			"Please update your payment method to keep streaming.</p>"+
			"<p>Your subscription stays available until the current period ends.</p>",
		html.EscapeString(name),
	)
	return subject, body
}
