package models

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	JobTypeContributorStats JobType = "contributor_stats"
)

// JobStatus represents the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in-progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job represents a background job
type Job struct {
	ID           string     `json:"id"`
	RepoFullName string     `json:"repo_full_name"`
	UserID       *string    `json:"user_id"`
	JobType      JobType    `json:"job_type"`
	Status       JobStatus  `json:"status"`
	Attempts     int        `json:"attempts"`
	ErrorMessage *string    `json:"error_message"`
	RunAfter     time.Time  `json:"run_after"`
	StartedAt    *time.Time `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewJob creates a pending job that may run immediately
func NewJob(repoFullName string, jobType JobType) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:           uuid.New().String(),
		RepoFullName: repoFullName,
		JobType:      jobType,
		Status:       JobStatusPending,
		RunAfter:     now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsPending checks if the job is pending
func (j *Job) IsPending() bool {
	return j.Status == JobStatusPending
}

// IsCompleted checks if the job is completed
func (j *Job) IsCompleted() bool {
	return j.Status == JobStatusCompleted
}

// IsFailed checks if the job is failed
func (j *Job) IsFailed() bool {
	return j.Status == JobStatusFailed
}

// MarkStarted marks the job as started
func (j *Job) MarkStarted() {
	now := time.Now().UTC()
	j.Status = JobStatusInProgress
	j.Attempts++
	j.StartedAt = &now
}

// MarkCompleted marks the job as completed
func (j *Job) MarkCompleted() {
	now := time.Now().UTC()
	j.Status = JobStatusCompleted
	j.CompletedAt = &now
	j.ErrorMessage = nil
}

// MarkFailed marks the job as failed
func (j *Job) MarkFailed(message string) {
	now := time.Now().UTC()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.ErrorMessage = &message
}

// Retry puts the job back in the queue to run after delay
func (j *Job) Retry(delay time.Duration, message string) {
	j.Status = JobStatusPending
	j.RunAfter = time.Now().UTC().Add(delay)
	j.StartedAt = nil
	j.ErrorMessage = &message
}
