package workers

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"recruitsync_backend/internal/logger"
	"recruitsync_backend/internal/services"
)

// SyncRunner runs one pass over every active connection.
type SyncRunner interface {
	SyncAll(ctx context.Context) ([]*services.SyncResult, error)
}

// SyncWorker runs SyncAll on a cron schedule. A pass that is still running
// when the next tick fires makes that tick a no-op.
type SyncWorker struct {
	syncer   SyncRunner
	schedule string
	cron     *cron.Cron

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

func NewSyncWorker(syncer SyncRunner, schedule string) *SyncWorker {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &SyncWorker{
		syncer:   syncer,
		schedule: schedule,
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
	}
}

// Start schedules the sync and returns immediately. Stop, or cancelling ctx,
// ends it.
func (w *SyncWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	w.ctx, w.cancel = context.WithCancel(ctx)
	runCtx := w.ctx
	w.mu.Unlock()

	if _, err := w.cron.AddFunc(w.schedule, func() { w.RunOnce(runCtx) }); err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", w.schedule, err)
	}

	w.cron.Start()
	logger.Info("Sync worker started", "schedule", w.schedule)

	go func() {
		<-runCtx.Done()
		w.Stop()
	}()
	return nil
}

// Stop waits for a running pass to finish.
func (w *SyncWorker) Stop() {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()

	<-w.cron.Stop().Done()
	logger.Info("Sync worker stopped")
}

// RunOnce performs one scheduled pass and logs a summary.
func (w *SyncWorker) RunOnce(ctx context.Context) {
	ctx = logger.WithCorrelationID(ctx, uuid.NewString())

	results, err := w.syncer.SyncAll(ctx)
	if err != nil {
		logger.WorkerLog("sync", "sync_all", err)
		return
	}

	var created, failed int
	for _, r := range results {
		created += r.CandidatesCreated
		if !r.Success {
			failed++
		}
	}
	logger.CtxInfo(ctx, "Scheduled sync finished",
		"platforms", len(results),
		"failed", failed,
		"candidates_created", created,
	)
	logger.WorkerLog("sync", "sync_all", nil)
}
