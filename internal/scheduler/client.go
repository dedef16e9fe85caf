package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"leadboard_backend/platform/config"
)

// Client enqueues refetch tasks. Nil-safe: a nil client swallows schedule
// calls so the API can run without Redis in local setups.
type Client struct {
	client *asynq.Client
	queue  string
}

// RefetchScheduler is what the handler layer depends on for manual refetches.
type RefetchScheduler interface {
	ScheduleLeadsRefetch(ctx context.Context, payload LeadsRefetchPayload, runAt time.Time) error
}

func NewClient(cfg *config.Config) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleLeadsRefetch enqueues a refetch to run at runAt. TaskID pins
// periodic runs so a crashed-and-restarted API cannot double-schedule the
// chain; manual refetches are never deduplicated.
func (c *Client) ScheduleLeadsRefetch(ctx context.Context, payload LeadsRefetchPayload, runAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewLeadsRefetchTask(payload)
	if err != nil {
		return err
	}

	opts := []asynq.Option{asynq.ProcessAt(runAt), asynq.Queue(c.queue)}
	if payload.Reason == RefetchReasonPeriodic {
		opts = append(opts, asynq.TaskID(fmt.Sprintf("leads.refetch.periodic.%d", runAt.Unix())))
	}

	_, err = c.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
