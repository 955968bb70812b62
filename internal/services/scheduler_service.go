package services

import (
	"context"
	"time"

	"github.com/alimgiray/better-github/internal/repositories"
	"github.com/alimgiray/better-github/pkg/logger"
)

// DefaultJobRetention is how long finished jobs are kept for inspection
const DefaultJobRetention = 7 * 24 * time.Hour

// SchedulerService prunes finished jobs once an hour
type SchedulerService struct {
	jobRepo   *repositories.JobRepository
	retention time.Duration
}

func NewSchedulerService(jobRepo *repositories.JobRepository, retention time.Duration) *SchedulerService {
	if retention <= 0 {
		retention = DefaultJobRetention
	}
	return &SchedulerService{
		jobRepo:   jobRepo,
		retention: retention,
	}
}

// StartScheduler runs the cleanup at the top of every hour until ctx is done
func (s *SchedulerService) StartScheduler(ctx context.Context) {
	go func() {
		for {
			s.RunOnce(time.Now())

			now := time.Now()
			nextHour := now.Add(1 * time.Hour)
			nextHour = time.Date(nextHour.Year(), nextHour.Month(), nextHour.Day(), nextHour.Hour(), 0, 0, 0, nextHour.Location())

			select {
			case <-ctx.Done():
				return
			case <-time.After(nextHour.Sub(now)):
			}
		}
	}()
}

// RunOnce deletes completed and failed jobs older than the retention window
func (s *SchedulerService) RunOnce(now time.Time) int64 {
	deleted, err := s.jobRepo.DeleteFinishedBefore(now.Add(-s.retention))
	if err != nil {
		logger.WithError(err).Error("Failed to prune finished jobs")
		return 0
	}
	if deleted > 0 {
		logger.Infof("Pruned %d finished jobs", deleted)
	}
	return deleted
}
