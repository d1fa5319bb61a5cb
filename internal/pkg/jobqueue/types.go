package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeArtworkCache JobType = "artwork_cache"
	JobTypeMailDelivery JobType = "mail_delivery"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// ArtworkCacheJobPayload contains the payload for artwork mirror jobs
type ArtworkCacheJobPayload struct {
	MovieID      uint   `json:"movie_id"`
	TmdbID       int64  `json:"tmdb_id"`
	PosterPath   string `json:"poster_path"`
	BackdropPath string `json:"backdrop_path"`
}

// ToMap converts the payload to a map for storage
func (p ArtworkCacheJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"movie_id":      p.MovieID,
		"tmdb_id":       p.TmdbID,
		"poster_path":   p.PosterPath,
		"backdrop_path": p.BackdropPath,
	}
}

// ArtworkCacheJobPayloadFromMap creates a payload from a map
func ArtworkCacheJobPayloadFromMap(data map[string]interface{}) (*ArtworkCacheJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload ArtworkCacheJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// Mail kinds understood by the mail delivery processor
const (
	MailKindActivation    = "activation"
	MailKindPaymentFailed = "payment_failed"
)

// MailDeliveryJobPayload contains the payload for mail delivery jobs
type MailDeliveryJobPayload struct {
	To            string `json:"to"`
	Kind          string `json:"kind"`
	Name          string `json:"name"`
	ActivationURL string `json:"activation_url,omitempty"`
}

// ToMap converts the payload to a map for storage
func (p MailDeliveryJobPayload) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"to":   p.To,
		"kind": p.Kind,
		"name": p.Name,
	}
	if p.ActivationURL != "" {
		m["activation_url"] = p.ActivationURL
	}
	return m
}

// MailDeliveryJobPayloadFromMap creates a payload from a map
func MailDeliveryJobPayloadFromMap(data map[string]interface{}) (*MailDeliveryJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload MailDeliveryJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
