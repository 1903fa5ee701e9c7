package services

import (
	"context"

	"github.com/tallybook/statement_backend/internal/core/domain"
	"github.com/tallybook/statement_backend/internal/dto"
)

// StatementSvcFacade is the public surface of the statement engine.
//
// A session is strictly sequential: at most one fetch (anchor or page) is in
// flight per session. LoadMore during an outstanding fetch is a silent no-op.
// Independent sessions are fully concurrent.
type StatementSvcFacade interface {
	// Open resets state for the party + filter combination, resolves the
	// anchor balance, and fetches the first page.
	Open(ctx context.Context, req dto.OpenStatementRequest) (*domain.Session, error)

	// Get returns the current read-only session state.
	Get(ctx context.Context, sessionID string) (*domain.Session, error)

	// LoadMore fetches the next (older) page using the session's cursor and
	// carried balance and appends it to the accumulated sequence. On failure
	// the cursor and balance are unchanged, so retrying is idempotent.
	LoadMore(ctx context.Context, sessionID string) (*domain.Session, error)

	// Refresh discards the accumulated sequence and all cursor/balance state
	// and re-opens with the same parameters. Old and new cursors are never
	// mixed.
	Refresh(ctx context.Context, sessionID string) (*domain.Session, error)

	// Close tears the session down and cancels any in-flight fetch.
	Close(ctx context.Context, sessionID string) error
}
