package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alimgiray/better-github/internal/models"
	"github.com/alimgiray/better-github/internal/repositories"
	"github.com/alimgiray/better-github/pkg/logger"
	"github.com/sirupsen/logrus"
)

// ContributorService serves repository rosters from the snapshot cache,
// refreshing them from a contributor source when they go stale
type ContributorService struct {
	snapshotRepo *repositories.ContributorSnapshotRepository
	jobRepo      *repositories.JobRepository
	sources      SourceFactory
	ttl          time.Duration
	now          func() time.Time
	enqueueMu    sync.Mutex
}

func NewContributorService(
	snapshotRepo *repositories.ContributorSnapshotRepository,
	jobRepo *repositories.JobRepository,
	sources SourceFactory,
	ttl time.Duration,
) *ContributorService {
	return &ContributorService{
		snapshotRepo: snapshotRepo,
		jobRepo:      jobRepo,
		sources:      sources,
		ttl:          ttl,
		now:          time.Now,
	}
}

// GetRoster returns the roster of owner/repo.
// A fresh snapshot is served as is. Otherwise the roster is fetched; while GitHub is still
// computing statistics a refresh job is queued and any stale snapshot is served instead.
func (s *ContributorService) GetRoster(ctx context.Context, token string, userID *string, owner, repo string) (*models.ContributorSnapshot, error) {
	key := models.RepoFullName(owner, repo)

	cached, err := s.snapshotRepo.GetByRepo(key)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if cached != nil && cached.IsFresh(s.now(), s.ttl) {
		return cached, nil
	}

	snapshot, err := s.Refresh(ctx, token, owner, repo)
	if err == nil {
		return snapshot, nil
	}

	log := logger.WithFields(logrus.Fields{"repo": key, "stale": cached != nil})
	if errors.Is(err, ErrStatsPending) {
		if _, qerr := s.EnqueueRefresh(key, userID); qerr != nil {
			log.WithError(qerr).Error("Failed to queue contributor stats refresh")
		}
		if cached != nil {
			return cached, nil
		}
		return nil, ErrStatsPending
	}

	if cached != nil && ctx.Err() == nil {
		log.WithError(err).Warn("Serving stale contributor snapshot")
		return cached, nil
	}
	return nil, err
}

// Refresh fetches the roster from the source and stores it as the new snapshot
func (s *ContributorService) Refresh(ctx context.Context, token, owner, repo string) (*models.ContributorSnapshot, error) {
	source := s.sources(token)
	roster, err := source.FetchRoster(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	snapshot := &models.ContributorSnapshot{
		RepoFullName: models.RepoFullName(owner, repo),
		Source:       source.Name(),
		Roster:       roster,
		FetchedAt:    s.now().UTC(),
	}
	if err := s.snapshotRepo.Upsert(snapshot); err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"repo":         snapshot.RepoFullName,
		"source":       snapshot.Source,
		"contributors": len(roster),
	}).Info("Contributor snapshot refreshed")
	return snapshot, nil
}

// EnqueueRefresh queues a contributor stats job for the repository unless one is already
// pending or running, in which case that job is returned
func (s *ContributorService) EnqueueRefresh(repoFullName string, userID *string) (*models.Job, error) {
	s.enqueueMu.Lock()
	defer s.enqueueMu.Unlock()

	active, err := s.jobRepo.FindActiveByRepo(repoFullName, models.JobTypeContributorStats)
	if err != nil {
		return nil, fmt.Errorf("failed to look up active jobs: %w", err)
	}
	if active != nil {
		return active, nil
	}

	job := models.NewJob(repoFullName, models.JobTypeContributorStats)
	job.UserID = userID
	if err := s.jobRepo.Create(job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	logger.WithFields(logrus.Fields{"repo": repoFullName, "job_id": job.ID}).Info("Queued contributor stats refresh")
	return job, nil
}

// Invalidate drops the cached roster so the next read fetches it again
func (s *ContributorService) Invalidate(owner, repo string) error {
	return s.snapshotRepo.Delete(models.RepoFullName(owner, repo))
}
