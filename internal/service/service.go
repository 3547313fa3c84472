// Package service implements the core EcoEats workflows: the support request
// state machine, voucher issuance and redemption, surplus listing and claims,
// and the impact ledger. Services own transaction boundaries; repositories
// only run queries. Every mutation of a contended row happens behind a
// locking read inside a single transaction.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/ecoeats/internal/events"
)

// SummaryCache invalidates the cached impact summary after a ledger append.
// ImpactService implements it; tests may leave it nil.
type SummaryCache interface {
	Invalidate(ctx context.Context)
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}

func invalidateSummary(ctx context.Context, cache SummaryCache) {
	if cache != nil {
		cache.Invalidate(ctx)
	}
}
