package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrollstop/internal/settings"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "scrollstop.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func TestPreferencesRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.LoadPreferences(ctx)
	assert.ErrorIs(t, err, ErrNotFound, "unseeded preferences scope")

	want := settings.Default()
	want.ScrollLimit = 1234
	require.NoError(t, s.SavePreferences(ctx, want))

	got, err := s.LoadPreferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Save replaces wholesale.
	want.BlockedSites = []string{"reddit.com"}
	require.NoError(t, s.SavePreferences(ctx, want))
	got, err = s.LoadPreferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"reddit.com"}, got.BlockedSites)
}

func TestLedgerRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	date, counts, err := s.LoadLedger(ctx)
	require.NoError(t, err)
	assert.Empty(t, date)
	assert.Empty(t, counts)

	require.NoError(t, s.SaveLedger(ctx, "2026-08-30", map[string]int{
		"twitter.com": 2,
		"x.com":       1,
	}))

	date, counts, err = s.LoadLedger(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-30", date)
	assert.Equal(t, map[string]int{"twitter.com": 2, "x.com": 1}, counts)

	// A wholesale save drops sites not present in the new map.
	require.NoError(t, s.SaveLedger(ctx, "2026-08-31", map[string]int{"x.com": 1}))
	date, counts, err = s.LoadLedger(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-31", date)
	assert.Equal(t, map[string]int{"x.com": 1}, counts)
}
