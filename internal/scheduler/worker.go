package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"leadboard_backend/internal/leads/store"
	"leadboard_backend/platform/config"
	"leadboard_backend/platform/logger"
)

// Worker consumes refetch tasks. Each periodic run re-arms itself for one
// interval later, so the chain survives restarts as long as one task is in
// the queue; Kickoff plants the first link.
type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	store    *store.Store
	client   RefetchScheduler
	interval time.Duration
	log      *logger.Logger
}

func NewWorker(cfg *config.Config, st *store.Store, client RefetchScheduler, log *logger.Logger) (*Worker, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.AsynqQueue
	if queue == "" {
		queue = "default"
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 1,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		store:    st,
		client:   client,
		interval: cfg.RefetchInterval,
		log:      log,
	}

	mux.HandleFunc(TaskLeadsRefetch, w.handleLeadsRefetch)

	return w, nil
}

// Kickoff schedules the first periodic refetch. Safe to call on every boot;
// the pinned task id deduplicates against an already queued run.
func (w *Worker) Kickoff(ctx context.Context) error {
	return w.client.ScheduleLeadsRefetch(ctx, LeadsRefetchPayload{Reason: RefetchReasonPeriodic}, time.Now().Add(w.interval))
}

func (w *Worker) handleLeadsRefetch(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadsRefetchPayload(task)
	if err != nil {
		return err
	}

	refreshErr := w.store.Refresh(ctx)
	if refreshErr != nil {
		w.log.Error("lead refetch failed", "reason", payload.Reason, "error", refreshErr)
	}

	// Re-arm before reporting the outcome so one bad pull cannot stop
	// reconciliation; the returned error still lets asynq retry this run.
	if payload.Reason == RefetchReasonPeriodic {
		next := time.Now().Add(w.interval)
		if scheduleErr := w.client.ScheduleLeadsRefetch(ctx, payload, next); scheduleErr != nil {
			w.log.Error("failed to re-arm periodic refetch", "error", scheduleErr)
		}
	}

	return refreshErr
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
