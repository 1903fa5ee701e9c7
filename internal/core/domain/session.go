package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Session ties together one party + date-filter combination: the anchor
// balance that seeds reconstruction, the keyset cursor, the carried balance,
// and the accumulated entries. A filter change always produces a fresh
// Session, since a stale cursor must never be mixed with a new filter.
type Session struct {
	SessionID string
	PartyID   string
	PartyName string
	Range     DateRange
	PageSize  int

	// AnchorBalance is the party's authoritative current balance, fetched once
	// at open. CarriedBalance is the running value carried into the next
	// (older) page of the backward fold.
	AnchorBalance  decimal.Decimal
	CarriedBalance decimal.Decimal

	Cursor  *Cursor
	HasMore bool
	Entries []StatementEntry

	IsLoadingFirstPage bool
	IsLoadingMore      bool
	ErrMessage         string

	CreatedAt    time.Time
	LastAccessAt time.Time
}
