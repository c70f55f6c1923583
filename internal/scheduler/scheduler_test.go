package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"

	"nurture_backend/platform/logger"
)

type testConfig struct {
	redisURL string
}

func (c testConfig) GetRedisURL() string                    { return c.redisURL }
func (c testConfig) GetRedisTLSInsecure() bool              { return false }
func (c testConfig) GetAsynqQueueName() string              { return "nurture" }
func (c testConfig) GetAsynqConcurrency() int               { return 1 }
func (c testConfig) GetDispatchTickInterval() time.Duration { return time.Minute }

type fakeTicker struct {
	calls int
	sent  int
	err   error
}

func (f *fakeTicker) Tick(_ context.Context) (int, error) {
	f.calls++
	return f.sent, f.err
}

func TestDispatchTickTaskRoundTrip(t *testing.T) {
	requestedAt := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

	task, err := NewDispatchTickTask(DispatchTickPayload{RequestedAt: requestedAt})
	if err != nil {
		t.Fatalf("NewDispatchTickTask: %v", err)
	}
	if task.Type() != TaskDispatchTick {
		t.Fatalf("task type = %q, want %q", task.Type(), TaskDispatchTick)
	}

	payload, err := ParseDispatchTickPayload(task)
	if err != nil {
		t.Fatalf("ParseDispatchTickPayload: %v", err)
	}
	if !payload.RequestedAt.Equal(requestedAt) {
		t.Fatalf("requestedAt = %v, want %v", payload.RequestedAt, requestedAt)
	}
}

func TestParseDispatchTickPayloadRejectsGarbage(t *testing.T) {
	task := asynq.NewTask(TaskDispatchTick, []byte("not json"))
	if _, err := ParseDispatchTickPayload(task); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestHandleDispatchTickRunsEngine(t *testing.T) {
	engine := &fakeTicker{sent: 3}
	w := &Worker{engine: engine, log: logger.New("development")}

	task, err := NewDispatchTickTask(DispatchTickPayload{RequestedAt: time.Now()})
	if err != nil {
		t.Fatalf("NewDispatchTickTask: %v", err)
	}

	if err := w.handleDispatchTick(context.Background(), task); err != nil {
		t.Fatalf("handleDispatchTick: %v", err)
	}
	if engine.calls != 1 {
		t.Fatalf("engine ticked %d times, want 1", engine.calls)
	}
}

func TestClientEnqueueTick(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(testConfig{redisURL: "redis://" + srv.Addr()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	if err := client.EnqueueTick(context.Background(), time.Now()); err != nil {
		t.Fatalf("EnqueueTick: %v", err)
	}
	if len(srv.Keys()) == 0 {
		t.Fatal("expected asynq keys in redis after enqueue")
	}
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testConfig{}); err == nil {
		t.Fatal("expected error when redis url is empty")
	}
}

func TestRedisClientOptParsesURL(t *testing.T) {
	opt, err := redisClientOpt("redis://:secret@localhost:6380/2", false)
	if err != nil {
		t.Fatalf("redisClientOpt: %v", err)
	}
	if opt.Addr != "localhost:6380" {
		t.Fatalf("addr = %q, want localhost:6380", opt.Addr)
	}
	if opt.Password != "secret" {
		t.Fatalf("password = %q, want secret", opt.Password)
	}
	if opt.DB != 2 {
		t.Fatalf("db = %d, want 2", opt.DB)
	}
}
