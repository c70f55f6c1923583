package scheduler

import (
	"context"
	"fmt"

	"nurture_backend/platform/config"
	"nurture_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Ticker runs one dispatch pass over due enrollments. Satisfied by
// dispatch.Engine.
type Ticker interface {
	Tick(ctx context.Context) (int, error)
}

// Worker consumes dispatch tick tasks and runs the engine.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	engine Ticker
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, engine Ticker, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		engine: engine,
		log:    log,
	}

	mux.HandleFunc(TaskDispatchTick, w.handleDispatchTick)

	return w, nil
}

func (w *Worker) handleDispatchTick(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseDispatchTickPayload(task)
	if err != nil {
		return err
	}

	sent, err := w.engine.Tick(ctx)
	if err != nil {
		return err
	}

	w.log.Info("dispatch tick processed", "sent", sent, "requestedAt", payload.RequestedAt)
	return nil
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
