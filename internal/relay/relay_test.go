package relay

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	r := New(nil)
	defer r.Close()

	a, cancelA := r.Subscribe()
	b, cancelB := r.Subscribe()
	defer cancelA()
	defer cancelB()

	r.Publish(SignalSettingsUpdated)

	assert.Equal(t, SignalSettingsUpdated, <-a)
	assert.Equal(t, SignalSettingsUpdated, <-b)
}

func TestFullSubscriberIsSkipped(t *testing.T) {
	r := New(nil)
	defer r.Close()

	stuck, cancelStuck := r.Subscribe()
	defer cancelStuck()
	healthy, cancelHealthy := r.Subscribe()
	defer cancelHealthy()

	// Overflow the stuck subscriber's buffer; Publish must never block and
	// the healthy subscriber must still see later signals.
	for i := 0; i < subscriberBuffer+3; i++ {
		r.Publish(SignalStatsReset)
	}

	assert.Len(t, stuck, subscriberBuffer)
	assert.Equal(t, SignalStatsReset, <-healthy)
}

func TestCancelDetaches(t *testing.T) {
	r := New(nil)
	defer r.Close()

	ch, cancel := r.Subscribe()
	cancel()
	cancel() // idempotent

	_, open := <-ch
	assert.False(t, open, "cancelled subscriber channel must be closed")

	r.Publish(SignalSettingsUpdated) // must not panic on closed channel
}

func TestCloseIsTerminal(t *testing.T) {
	r := New(nil)
	ch, _ := r.Subscribe()
	r.Close()

	_, open := <-ch
	assert.False(t, open)

	late, _ := r.Subscribe()
	_, open = <-late
	assert.False(t, open, "subscribe after close returns a closed channel")

	r.Publish(SignalSettingsUpdated)
	r.Close()
}

func TestWatcherPublishesExternalSignal(t *testing.T) {
	dir := t.TempDir()
	r := New(nil)
	defer r.Close()

	w, err := NewWatcher(dir, r, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	ch, cancelSub := r.Subscribe()
	defer cancelSub()

	require.NoError(t, Announce(dir, SignalStatsReset))

	select {
	case sig := <-ch:
		assert.Equal(t, SignalStatsReset, sig)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for watched signal")
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	r := New(nil)
	defer r.Close()

	w, err := NewWatcher(dir, r, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	ch, cancelSub := r.Subscribe()
	defer cancelSub()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))

	select {
	case sig := <-ch:
		t.Fatalf("unexpected signal %q for unrelated file", sig)
	case <-time.After(500 * time.Millisecond):
	}
}
