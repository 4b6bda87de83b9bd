package jobs

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueueRejectsEnqueueBeforeStart(t *testing.T) {
	q := New("test", func(context.Context, string) error { return nil }, Config{})
	require.Error(t, q.Enqueue("too early"))
}

func TestQueueDeliversTypedPayloads(t *testing.T) {
	got := make(chan int, 1)
	q := New("test", func(_ context.Context, n int) error {
		got <- n
		return nil
	}, Config{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(42))
	select {
	case n := <-got:
		require.Equal(t, 42, n)
	case <-time.After(time.Second):
		t.Fatal("payload never reached the handler")
	}
}

func TestQueueRetriesUntilBudgetExhausted(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	q := New("test", func(context.Context, string) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return fmt.Errorf("transient")
	}, Config{MaxRetries: 2, RetryDelay: 5 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue("doomed"))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 3
	}, time.Second, 5*time.Millisecond, "initial attempt plus two retries")

	// The budget is spent; no further attempt may happen.
	time.Sleep(25 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 3, calls)
}
