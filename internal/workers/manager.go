package workers

import (
	"context"
	"fmt"
	"sync"

	"github.com/alimgiray/better-github/internal/repositories"
	"github.com/alimgiray/better-github/internal/services"
	"github.com/alimgiray/better-github/pkg/config"
	"github.com/alimgiray/better-github/pkg/logger"
)

// WorkerManager manages the background workers
type WorkerManager struct {
	workers            []Worker
	jobRepo            *repositories.JobRepository
	userRepo           *repositories.UserRepository
	contributorService *services.ContributorService
	wg                 sync.WaitGroup
	ctx                context.Context
	cancel             context.CancelFunc
}

// NewWorkerManager creates a new worker manager
func NewWorkerManager(
	jobRepo *repositories.JobRepository,
	userRepo *repositories.UserRepository,
	contributorService *services.ContributorService,
) *WorkerManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerManager{
		workers:            make([]Worker, 0),
		jobRepo:            jobRepo,
		userRepo:           userRepo,
		contributorService: contributorService,
		ctx:                ctx,
		cancel:             cancel,
	}
}

// StartAll requeues jobs interrupted by a previous run and starts the configured workers
func (wm *WorkerManager) StartAll() error {
	requeued, err := wm.jobRepo.ResetInProgress()
	if err != nil {
		return fmt.Errorf("failed to requeue interrupted jobs: %w", err)
	}
	if requeued > 0 {
		logger.Infof("Requeued %d interrupted jobs", requeued)
	}

	statsConfig := config.AppConfig.Stats
	statsWorkers := statsConfig.Workers
	if statsWorkers < 1 {
		statsWorkers = 1
	}

	logger.Infof("Starting workers - ContributorStats: %d", statsWorkers)

	for i := 0; i < statsWorkers; i++ {
		worker := NewContributorStatsWorker(
			fmt.Sprintf("contributor-stats-%d", i+1),
			wm.jobRepo,
			wm.userRepo,
			wm.contributorService,
			config.AppConfig.GitHub.Token,
			statsConfig.MaxAttempts,
		)
		wm.Add(worker)
	}

	logger.Infof("Started %d total workers", len(wm.workers))
	return nil
}

// Add registers a worker and starts it
func (wm *WorkerManager) Add(worker Worker) {
	wm.workers = append(wm.workers, worker)
	wm.startWorker(worker)
}

// StopAll gracefully stops all workers
func (wm *WorkerManager) StopAll() error {
	logger.Info("Stopping all workers...")

	wm.cancel()

	for _, worker := range wm.workers {
		if err := worker.Stop(); err != nil {
			logger.WithError(err).WithField("worker", worker.GetWorkerID()).Error("Error stopping worker")
		}
	}

	wm.wg.Wait()

	logger.Info("All workers stopped")
	return nil
}

// startWorker starts a single worker in a goroutine
func (wm *WorkerManager) startWorker(worker Worker) {
	wm.wg.Add(1)
	go func() {
		defer wm.wg.Done()
		if err := worker.Start(wm.ctx); err != nil && err != context.Canceled {
			logger.WithError(err).WithField("worker", worker.GetWorkerID()).Error("Worker stopped with error")
		}
	}()
}

// GetWorkerStatus returns the status of all workers
func (wm *WorkerManager) GetWorkerStatus() map[string]bool {
	status := make(map[string]bool, len(wm.workers))
	for _, worker := range wm.workers {
		status[worker.GetWorkerID()] = worker.IsRunning()
	}
	return status
}
