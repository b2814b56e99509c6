package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mkhalin/family-expenses/internal/adapter"
	"github.com/mkhalin/family-expenses/internal/config"
	"github.com/mkhalin/family-expenses/internal/logger"
)

const (
	defaultSyncInterval  = 5 * time.Minute
	defaultProbeInterval = 30 * time.Second
)

// clientSyncJob triggers sync rounds in the background: once eagerly
// at startup, on a fixed ticker, and on regaining connectivity. While
// the last round failed the job considers itself offline and probes
// the server cheaply until a probe succeeds, which triggers an eager
// round.
type clientSyncJob struct {
	syncService ClientSyncService
	adapter     adapter.ServerAdapter

	interval      time.Duration
	probeInterval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logger.Logger
}

func NewClientSyncJob(syncService ClientSyncService, serverAdapter adapter.ServerAdapter, cfg config.ClientSync, logger *logger.Logger) ClientSyncJob {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultSyncInterval
	}
	probeInterval := cfg.ProbeInterval
	if probeInterval <= 0 {
		probeInterval = defaultProbeInterval
	}

	return &clientSyncJob{
		syncService:   syncService,
		adapter:       serverAdapter,
		interval:      interval,
		probeInterval: probeInterval,
		logger:        logger,
	}
}

// Start launches the background goroutine. Any previously running job
// is stopped first. The goroutine exits when ctx is cancelled or Stop
// is called.
func (j *clientSyncJob) Start(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go j.loop(jobCtx)
}

func (j *clientSyncJob) loop(ctx context.Context) {
	defer j.wg.Done()

	online := j.runRound(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	probe := time.NewTicker(j.probeInterval)
	defer probe.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			online = j.runRound(ctx)
		case <-probe.C:
			if online {
				continue
			}
			if err := j.adapter.Ping(ctx); err != nil {
				continue
			}
			j.logger.Info().
				Str("func", "clientSyncJob.loop").
				Msg("connectivity regained, triggering sync round")
			online = j.runRound(ctx)
		}
	}
}

func (j *clientSyncJob) runRound(ctx context.Context) bool {
	err := j.syncService.SyncRound(ctx)
	if err == nil {
		return true
	}
	if errors.Is(err, ErrNoLocalFamily) {
		// Nothing to sync yet; not a connectivity problem.
		return true
	}

	j.logger.Warn().
		Str("func", "clientSyncJob.runRound").
		Err(err).
		Msg("sync round failed, falling back to probing")
	return false
}

// Stop cancels the background goroutine and blocks until it exits.
// Safe to call when the job is not running.
func (j *clientSyncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
