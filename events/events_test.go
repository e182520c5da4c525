package events_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pitabwire/wording/config"
	"github.com/pitabwire/wording/events"
	"github.com/pitabwire/wording/queue"
	"github.com/pitabwire/wording/workerpool"
)

type recordedEvent struct {
	name        string
	payloadType any
	validateErr error
	executeErr  error

	executed chan any
}

func newRecordedEvent(name string, payloadType any) *recordedEvent {
	return &recordedEvent{
		name:        name,
		payloadType: payloadType,
		executed:    make(chan any, 8),
	}
}

func (e *recordedEvent) Name() string     { return e.name }
func (e *recordedEvent) PayloadType() any { return e.payloadType }

func (e *recordedEvent) Validate(_ context.Context, _ any) error {
	return e.validateErr
}

func (e *recordedEvent) Execute(_ context.Context, payload any) error {
	if e.executeErr != nil {
		return e.executeErr
	}
	e.executed <- payload
	return nil
}

func newEventSetup(t *testing.T, ctx context.Context, queueURL string) (events.Manager, queue.Manager) {
	t.Helper()

	pool, err := workerpool.NewManager(ctx)
	require.NoError(t, err)
	t.Cleanup(pool.Shutdown)

	cfg := &config.Configuration{
		EventsQueueName: "events-test",
		EventsQueueURL:  queueURL,
	}

	qm := queue.NewManager(ctx, pool)
	require.NoError(t, qm.AddPublisher(ctx, cfg.GetEventsQueueName(), cfg.GetEventsQueueURL()))

	em := events.NewManager(ctx, qm, cfg)
	require.NoError(t, qm.AddSubscriber(ctx, cfg.GetEventsQueueName(), cfg.GetEventsQueueURL(), em.Handler()))

	return em, qm
}

func TestRegistryAddAndGet(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	em, _ := newEventSetup(t, ctx, "mem://wording.events.registry")

	evt := newRecordedEvent("registry.test", nil)
	em.Add(evt)

	got, err := em.Get("registry.test")
	require.NoError(t, err)
	require.Equal(t, "registry.test", got.Name())

	_, err = em.Get("registry.unknown")
	require.Error(t, err)
}

func TestEmitDispatchesToHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	em, _ := newEventSetup(t, ctx, "mem://wording.events.dispatch")

	evt := newRecordedEvent("dispatch.test", "")
	em.Add(evt)

	require.NoError(t, em.Emit(ctx, "dispatch.test", "payload-body"))

	select {
	case payload := <-evt.executed:
		require.Equal(t, "payload-body", payload)
	case <-time.After(5 * time.Second):
		t.Fatal("event was never executed")
	}
}

func TestEmitWithStructPayload(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	em, _ := newEventSetup(t, ctx, "mem://wording.events.struct")

	type resyncPayload struct {
		Reason string `json:"reason"`
	}

	evt := newRecordedEvent("struct.test", &resyncPayload{})
	em.Add(evt)

	require.NoError(t, em.Emit(ctx, "struct.test", &resyncPayload{Reason: "content update"}))

	select {
	case payload := <-evt.executed:
		decoded, ok := payload.(*resyncPayload)
		require.True(t, ok)
		require.Equal(t, "content update", decoded.Reason)
	case <-time.After(5 * time.Second):
		t.Fatal("event was never executed")
	}
}

func TestHandlerRejectsUnknownEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	em, _ := newEventSetup(t, ctx, "mem://wording.events.unknown")

	handler := em.Handler()

	err := handler.Handle(ctx, map[string]string{events.EventHeaderName: "not.registered"}, nil)
	require.Error(t, err)
}

func TestHandlerRejectsMissingHeader(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	em, _ := newEventSetup(t, ctx, "mem://wording.events.noheader")

	err := em.Handler().Handle(ctx, map[string]string{}, nil)
	require.Error(t, err)
}

func TestHandlerSurfacesValidationFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	em, _ := newEventSetup(t, ctx, "mem://wording.events.invalid")

	evt := newRecordedEvent("invalid.test", nil)
	evt.validateErr = errors.New("bad payload")
	em.Add(evt)

	err := em.Handler().Handle(ctx, map[string]string{events.EventHeaderName: "invalid.test"}, []byte("x"))
	require.ErrorContains(t, err, "bad payload")
}

func TestConcurrentEmits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	em, _ := newEventSetup(t, ctx, "mem://wording.events.concurrent")

	var count atomic.Int32
	evt := newRecordedEvent("concurrent.test", nil)
	em.Add(evt)

	go func() {
		for range evt.executed {
			count.Add(1)
		}
	}()

	for i := 0; i < 5; i++ {
		require.NoError(t, em.Emit(ctx, "concurrent.test", nil))
	}

	require.Eventually(t, func() bool {
		return count.Load() == 5
	}, 5*time.Second, 20*time.Millisecond)
}
