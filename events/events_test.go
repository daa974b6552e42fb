package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_EmitDeliversToSubscriber(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(1)

	var received SpendingEvent
	bus.Subscribe(EventTypeSpending, func(ctx context.Context, event Event) {
		defer wg.Done()
		received = event.(SpendingEvent)
	})

	bus.Emit(context.Background(), SpendingEvent{
		UserID:       42,
		Cost:         1_000_000,
		InputTokens:  100,
		OutputTokens: 250,
		Model:        "gpt-4o-mini",
	})

	waitWithTimeout(t, &wg)
	assert.Equal(t, int64(42), received.UserID)
	assert.Equal(t, int64(1_000_000), received.Cost)
	assert.Equal(t, "gpt-4o-mini", received.Model)
}

func TestBus_EmitReachesAllHandlers(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(3)

	var mu sync.Mutex
	calls := 0
	for i := 0; i < 3; i++ {
		bus.Subscribe(EventTypeQueryCompleted, func(ctx context.Context, event Event) {
			defer wg.Done()
			mu.Lock()
			calls++
			mu.Unlock()
		})
	}

	bus.Emit(context.Background(), QueryCompletedEvent{UserID: 1, MessageID: 99})

	waitWithTimeout(t, &wg)
	assert.Equal(t, 3, calls)
}

func TestBus_EmitIgnoresUnrelatedEventTypes(t *testing.T) {
	bus := NewBus()

	called := make(chan struct{}, 1)
	bus.Subscribe(EventTypeSpending, func(ctx context.Context, event Event) {
		called <- struct{}{}
	})

	bus.Emit(context.Background(), QueryCompletedEvent{UserID: 1})

	select {
	case <-called:
		t.Fatal("spending handler should not see query events")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(1)

	bus.Subscribe(EventTypeSpending, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeSpending, func(ctx context.Context, event Event) {
		wg.Done()
	})

	bus.Emit(context.Background(), SpendingEvent{UserID: 7, Cost: 500})

	waitWithTimeout(t, &wg)
}

func TestBus_EmitWithoutSubscribersIsNoop(t *testing.T) {
	bus := NewBus()

	require.NotPanics(t, func() {
		bus.Emit(context.Background(), SpendingEvent{UserID: 1})
	})
}

func waitWithTimeout(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event handlers")
	}
}
