// Package ledger manages the per-site daily block counters. Counters belong
// to exactly one calendar date; whenever the stored date differs from the
// caller's "today" the whole map is discarded before the operation proceeds.
// Rollover is a pure transform so day-boundary behavior is testable without
// timers or I/O.
package ledger

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Store is the slice of the durable store the ledger needs.
type Store interface {
	LoadLedger(ctx context.Context) (date string, counts map[string]int, err error)
	SaveLedger(ctx context.Context, date string, counts map[string]int) error
}

// Snapshot is an in-memory view of the ledger scope.
type Snapshot struct {
	Date   string
	Counts map[string]int
}

// DateKey formats a wall-clock instant as the ledger's calendar date key.
// A block at 23:59 and one at 00:01 belong to different entries.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Rollover returns the snapshot adjusted for today: if the stored date
// differs, every counter is discarded (not merged) and the date advances.
func Rollover(s Snapshot, today string) Snapshot {
	if s.Date == today && s.Counts != nil {
		return s
	}
	return Snapshot{Date: today, Counts: make(map[string]int)}
}

// Ledger reads and writes block counters through the durable store.
// Concurrent increments from separate processes are last-write-wins; the
// exact interleaving is not guaranteed, a documented limitation.
type Ledger struct {
	store Store
	log   *zap.Logger
}

// New returns a ledger over the given store.
func New(store Store, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{store: store, log: log}
}

// Count returns today's block count for the site. Store read failures fail
// open: the session proceeds as if no prior blocks existed.
func (l *Ledger) Count(ctx context.Context, site, today string) int {
	snap, err := l.load(ctx)
	if err != nil {
		l.log.Warn("ledger read failed, assuming zero prior blocks",
			zap.String("site", site), zap.Error(err))
		return 0
	}
	return Rollover(snap, today).Counts[site]
}

// Increment rolls the ledger over if needed, adds one block for the site,
// and persists the new counts and date together. On a write failure the
// in-memory computed count is still returned; the ledger may undercount
// until the next successful write.
func (l *Ledger) Increment(ctx context.Context, site, today string) int {
	snap, err := l.load(ctx)
	if err != nil {
		l.log.Warn("ledger read failed before increment, starting from zero",
			zap.String("site", site), zap.Error(err))
		snap = Snapshot{}
	}
	snap = Rollover(snap, today)
	snap.Counts[site]++
	newCount := snap.Counts[site]

	if err := l.store.SaveLedger(ctx, snap.Date, snap.Counts); err != nil {
		l.log.Warn("ledger write failed, continuing with in-memory count",
			zap.String("site", site), zap.Int("count", newCount), zap.Error(err))
	}
	return newCount
}

// Reset deletes the site's counter, but only when the stored counters belong
// to today; resetting a stale ledger is a no-op since rollover will discard
// it anyway.
func (l *Ledger) Reset(ctx context.Context, site, today string) error {
	snap, err := l.load(ctx)
	if err != nil {
		return err
	}
	if snap.Date != today {
		return nil
	}
	if _, ok := snap.Counts[site]; !ok {
		return nil
	}
	delete(snap.Counts, site)
	return l.store.SaveLedger(ctx, snap.Date, snap.Counts)
}

// Today returns a rolled-over view of all counters for display.
func (l *Ledger) Today(ctx context.Context, today string) (Snapshot, error) {
	snap, err := l.load(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Rollover(snap, today), nil
}

func (l *Ledger) load(ctx context.Context) (Snapshot, error) {
	date, counts, err := l.store.LoadLedger(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if counts == nil {
		counts = make(map[string]int)
	}
	return Snapshot{Date: date, Counts: counts}, nil
}
