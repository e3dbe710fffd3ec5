// Package reconciler runs one load, fetch, diff, notify and persist cycle.
package reconciler

import (
	"context"
	"fmt"
	"log/slog"

	"screening_notifier/internal/fetcher"
	"screening_notifier/internal/model"
	"screening_notifier/internal/storage"
)

// Fetcher returns the dates currently offered upstream.
type Fetcher interface {
	Fetch(ctx context.Context) fetcher.Result
}

// Notifier announces a batch of new dates.
type Notifier interface {
	Send(ctx context.Context, dates []model.DateID) error
}

// State is a step of the cycle.
type State string

// Cycle states, in order.
const (
	StateIdle      State = "idle"
	StateLoaded    State = "loaded"
	StateFetched   State = "fetched"
	StateNoChange  State = "no_change"
	StateNotifying State = "notifying"
	StatePersisted State = "persisted"
)

// Outcome summarises how a cycle ended.
type Outcome string

// Possible outcomes.
const (
	OutcomeFailed   Outcome = "failed"
	OutcomeNoData   Outcome = "no_data"
	OutcomeNoChange Outcome = "no_change"
	OutcomeNotified Outcome = "notified"
)

// Report describes one cycle.
type Report struct {
	Outcome    Outcome
	Last       State // last state reached before returning to idle
	Fetched    int
	New        []model.DateID
	Delivered  bool
	DeliverErr error
	Seen       int
}

// Reconciler announces each screening date at most once.
type Reconciler struct {
	store    storage.Store
	fetcher  Fetcher
	notifier Notifier
	log      *slog.Logger
}

// New creates a Reconciler.
func New(store storage.Store, f Fetcher, n Notifier, log *slog.Logger) *Reconciler {
	return &Reconciler{
		store:    store,
		fetcher:  f,
		notifier: n,
		log:      log,
	}
}

// RunOnce performs a single cycle. It returns an error only when the store
// cannot be read or written; fetch and delivery problems end the cycle
// quietly (see Report).
func (r *Reconciler) RunOnce(ctx context.Context) (Report, error) {
	seen, err := r.store.Load(ctx)
	if err != nil {
		return Report{Outcome: OutcomeFailed, Last: StateIdle}, fmt.Errorf("load seen dates: %w", err)
	}
	report := Report{Last: StateLoaded, Seen: seen.Len()}

	res := r.fetcher.Fetch(ctx)
	if !res.OK() || res.Dates.Len() == 0 {
		// An empty result cannot be told apart from a failed fetch.
		report.Outcome = OutcomeNoData
		r.log.Info("no usable screening data, store left untouched", "fetch_ok", res.OK())
		return report, nil
	}
	report.Last = StateFetched
	report.Fetched = res.Dates.Len()

	fresh := res.Dates.Difference(seen)
	if fresh.Len() == 0 {
		report.Outcome = OutcomeNoChange
		report.Last = StateNoChange
		r.log.Info("no new dates found", "fetched", report.Fetched)
		return report, nil
	}

	report.Last = StateNotifying
	report.New = fresh.Sorted()
	if err := r.notifier.Send(ctx, report.New); err != nil {
		report.DeliverErr = err
		r.log.Error("send notification", "count", len(report.New), "error", err)
	} else {
		report.Delivered = true
		r.log.Info("sent notification", "count", len(report.New))
	}

	// Persist regardless of delivery so a failed send never causes repeats.
	updated := seen.Union(fresh)
	if err := r.store.Save(ctx, updated); err != nil {
		report.Outcome = OutcomeFailed
		return report, fmt.Errorf("save seen dates: %w", err)
	}
	report.Outcome = OutcomeNotified
	report.Last = StatePersisted
	report.Seen = updated.Len()
	return report, nil
}
