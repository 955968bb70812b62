package workers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alimgiray/better-github/internal/models"
	"github.com/alimgiray/better-github/internal/repositories"
	"github.com/alimgiray/better-github/internal/services"
	"github.com/alimgiray/better-github/pkg/logger"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPollInterval = 10 * time.Second
	DefaultRetryDelay   = 10 * time.Second
	errorBackoff        = 5 * time.Second
)

// ContributorStatsWorker refreshes contributor snapshots that GitHub was still computing
type ContributorStatsWorker struct {
	*BaseWorker
	jobRepo            *repositories.JobRepository
	userRepo           *repositories.UserRepository
	contributorService *services.ContributorService
	fallbackToken      string
	maxAttempts        int
	retryDelay         time.Duration
	pollInterval       time.Duration
}

// NewContributorStatsWorker creates a new contributor stats worker
func NewContributorStatsWorker(
	workerID string,
	jobRepo *repositories.JobRepository,
	userRepo *repositories.UserRepository,
	contributorService *services.ContributorService,
	fallbackToken string,
	maxAttempts int,
) *ContributorStatsWorker {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &ContributorStatsWorker{
		BaseWorker:         NewBaseWorker(workerID, models.JobTypeContributorStats),
		jobRepo:            jobRepo,
		userRepo:           userRepo,
		contributorService: contributorService,
		fallbackToken:      fallbackToken,
		maxAttempts:        maxAttempts,
		retryDelay:         DefaultRetryDelay,
		pollInterval:       DefaultPollInterval,
	}
}

// Start claims due jobs until the context is cancelled or the worker is stopped
func (w *ContributorStatsWorker) Start(ctx context.Context) error {
	w.setRunning(true)
	defer w.setRunning(false)

	log := logger.WithField("worker", w.WorkerID)
	log.Info("Contributor stats worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Contributor stats worker stopping due to context cancellation")
			return ctx.Err()
		case <-w.StopChan:
			log.Info("Contributor stats worker stopping")
			return nil
		default:
		}

		job, err := w.jobRepo.GetNextPendingJob(models.JobTypeContributorStats)
		if err != nil {
			log.WithError(err).Error("Failed to claim job")
			w.wait(ctx, errorBackoff)
			continue
		}

		if job == nil {
			w.wait(ctx, w.pollInterval)
			continue
		}

		w.ProcessJob(ctx, job)
	}
}

// ProcessJob refreshes the snapshot for a claimed job and records the outcome.
// Pending statistics re-queue the job with a linear backoff until attempts run out.
func (w *ContributorStatsWorker) ProcessJob(ctx context.Context, job *models.Job) {
	log := logger.WithFields(logrus.Fields{
		"worker":   w.WorkerID,
		"job_id":   job.ID,
		"repo":     job.RepoFullName,
		"attempts": job.Attempts,
	})

	owner, repo, ok := strings.Cut(job.RepoFullName, "/")
	if !ok || owner == "" || repo == "" {
		job.MarkFailed("invalid repository name")
		w.save(log, job)
		return
	}

	_, err := w.contributorService.Refresh(ctx, w.tokenFor(job), owner, repo)
	switch {
	case err == nil:
		job.MarkCompleted()
		log.Info("Contributor stats job completed")
	case ctx.Err() != nil:
		job.Retry(0, "interrupted by shutdown")
		log.Warn("Contributor stats job interrupted")
	case errors.Is(err, services.ErrStatsPending) && job.Attempts < w.maxAttempts:
		delay := time.Duration(job.Attempts) * w.retryDelay
		job.Retry(delay, err.Error())
		log.WithField("retry_in", delay.String()).Info("Contributor stats still pending, retrying later")
	default:
		job.MarkFailed(err.Error())
		log.WithError(err).Error("Contributor stats job failed")
	}

	w.save(log, job)
}

func (w *ContributorStatsWorker) save(log *logrus.Entry, job *models.Job) {
	if err := w.jobRepo.Update(job); err != nil {
		log.WithError(err).Error("Failed to update job")
	}
}

// tokenFor prefers the token of the user who asked for the refresh
func (w *ContributorStatsWorker) tokenFor(job *models.Job) string {
	if job.UserID != nil {
		user, err := w.userRepo.GetByID(*job.UserID)
		if err == nil && user.GitHubAccessToken != "" {
			return user.GitHubAccessToken
		}
	}
	return w.fallbackToken
}
