package repositories

import (
	"database/sql"
	"sync"
	"time"

	"github.com/alimgiray/better-github/internal/models"
)

// JobRepository handles database operations for jobs
type JobRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `id, repo_full_name, user_id, job_type, status, attempts, error_message, run_after, started_at, completed_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*models.Job, error) {
	job := &models.Job{}
	err := row.Scan(
		&job.ID,
		&job.RepoFullName,
		&job.UserID,
		&job.JobType,
		&job.Status,
		&job.Attempts,
		&job.ErrorMessage,
		&job.RunAfter,
		&job.StartedAt,
		&job.CompletedAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Create creates a new job
func (r *JobRepository) Create(job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO jobs (` + jobColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		job.ID,
		job.RepoFullName,
		job.UserID,
		job.JobType,
		job.Status,
		job.Attempts,
		job.ErrorMessage,
		job.RunAfter.UTC(),
		job.StartedAt,
		job.CompletedAt,
		job.CreatedAt.UTC(),
		job.UpdatedAt.UTC(),
	)
	return err
}

// GetByID retrieves a job by ID
func (r *JobRepository) GetByID(id string) (*models.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, err := scanJob(r.db.QueryRow(`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return job, err
}

// GetByRepo retrieves all jobs of a repository, newest first
func (r *JobRepository) GetByRepo(repoFullName string) ([]*models.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT ` + jobColumns + `
		FROM jobs 
		WHERE repo_full_name = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, repoFullName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// FindActiveByRepo returns the pending or running job of the given type for a repository, if any
func (r *JobRepository) FindActiveByRepo(repoFullName string, jobType models.JobType) (*models.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE repo_full_name = ? AND job_type = ? AND status IN (?, ?)
		ORDER BY created_at ASC
		LIMIT 1
	`

	job, err := scanJob(r.db.QueryRow(query, repoFullName, jobType, models.JobStatusPending, models.JobStatusInProgress))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return job, err
}

// GetNextPendingJob retrieves the oldest due pending job of a specific type (FIFO)
// This method is thread-safe and marks the job as in-progress
func (r *JobRepository) GetNextPendingJob(jobType models.JobType) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE status = ? AND job_type = ? AND run_after <= ?
		ORDER BY run_after ASC, created_at ASC
		LIMIT 1
	`

	job, err := scanJob(tx.QueryRow(query, models.JobStatusPending, jobType, time.Now().UTC()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No pending jobs found
		}
		return nil, err
	}

	job.MarkStarted()
	updateQuery := `
		UPDATE jobs 
		SET status = ?, attempts = ?, started_at = ?, updated_at = ?
		WHERE id = ?
	`

	_, err = tx.Exec(updateQuery, job.Status, job.Attempts, job.StartedAt, time.Now().UTC(), job.ID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return job, nil
}

// Update updates a job
func (r *JobRepository) Update(job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	query := `
		UPDATE jobs 
		SET status = ?, attempts = ?, error_message = ?, run_after = ?,
		    started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		job.Status,
		job.Attempts,
		job.ErrorMessage,
		job.RunAfter.UTC(),
		job.StartedAt,
		job.CompletedAt,
		now,
		job.ID,
	)
	if err != nil {
		return err
	}
	job.UpdatedAt = now
	return requireAffected(result)
}

// ResetInProgress returns jobs left running by a previous process to the queue
func (r *JobRepository) ResetInProgress() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, err := r.db.Exec(
		`UPDATE jobs SET status = ?, started_at = NULL, updated_at = ? WHERE status = ?`,
		models.JobStatusPending, time.Now().UTC(), models.JobStatusInProgress,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteFinishedBefore removes completed and failed jobs last updated before cutoff
func (r *JobRepository) DeleteFinishedBefore(cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, err := r.db.Exec(
		`DELETE FROM jobs WHERE status IN (?, ?) AND updated_at < ?`,
		models.JobStatusCompleted, models.JobStatusFailed, cutoff.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
