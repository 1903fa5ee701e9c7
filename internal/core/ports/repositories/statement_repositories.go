package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tallybook/statement_backend/internal/core/domain"
)

// SourceFetcher pulls one kind of raw statement record for a party,
// newest-first by (occurred_at, id), keyset-paginated.
type SourceFetcher interface {
	// Kind identifies which entry kind this fetcher serves.
	Kind() domain.EntryKind

	// Fetch returns up to pageSize records strictly below the cursor in
	// (occurred_at, id) order. A nil cursor means start from the newest.
	// The bool is a local exhaustion hint: true iff fewer than pageSize
	// records were returned by this source.
	Fetch(ctx context.Context, party domain.Party, rng domain.DateRange, cursor *domain.Cursor, pageSize int) ([]domain.SourceRecord, bool, error)
}

// AnchorReader resolves a party's authoritative current balance, including
// any linked-party adjustments. Seeds the backward balance fold.
type AnchorReader interface {
	ResolveAnchor(ctx context.Context, party domain.Party) (decimal.Decimal, error)
}

// PartyReader defines read operations for parties.
type PartyReader interface {
	FindPartyByID(ctx context.Context, partyID string) (*domain.Party, error)
}

// NameResolver batch-resolves foreign identifiers to display names.
// Injected per page; no cross-session cache is required for correctness.
type NameResolver interface {
	ResolveSafeNames(ctx context.Context, safeIDs []string) (map[string]string, error)
	ResolveUserNames(ctx context.Context, userIDs []string) (map[string]string, error)
}

// PendingReader exposes the offline queue's not-yet-synced events for a
// party. Read-only; syncing them is a separate subsystem.
type PendingReader interface {
	ListPendingByParty(ctx context.Context, partyID string) ([]domain.SourceRecord, error)
}
