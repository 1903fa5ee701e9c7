package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind is the closed set of financial event kinds that can appear in a
// party's statement. Each kind lives in its own table with its own schema;
// the statement engine interleaves them into one sequence.
type EntryKind string

const (
	KindInvoice  EntryKind = "INVOICE"
	KindReturn   EntryKind = "RETURN"
	KindPayment  EntryKind = "PAYMENT"
	KindTransfer EntryKind = "TRANSFER"
)

// EntryKinds lists every statement source kind in a stable order.
var EntryKinds = []EntryKind{KindInvoice, KindReturn, KindPayment, KindTransfer}

// TransferDirection says which way money moved relative to the party.
type TransferDirection string

const (
	TransferIn  TransferDirection = "IN"
	TransferOut TransferDirection = "OUT"
)

// SourceRecord is one raw row fetched from a per-kind source table, before
// balance reconstruction. IDs are UUIDs, so (OccurredAt, ID) is a total order
// even across tables.
type SourceRecord struct {
	ID          string
	Kind        EntryKind
	OccurredAt  time.Time
	Amount      decimal.Decimal // gross amount as stored on the row
	PaidAmount  decimal.Decimal // payments already applied against this row (invoices)
	IsLoan      bool            // payment handed out rather than received
	Direction   TransferDirection
	SafeID      string
	CreatedBy   string
	Description string
	Notes       string
}

// Before reports whether r is strictly older than other in the composite
// (OccurredAt, ID) statement order.
func (r SourceRecord) Before(other SourceRecord) bool {
	if !r.OccurredAt.Equal(other.OccurredAt) {
		return r.OccurredAt.Before(other.OccurredAt)
	}
	return r.ID < other.ID
}

// StatementEntry is one reconstructed row of a party's history: the raw event
// plus the balance that held immediately after it occurred.
type StatementEntry struct {
	EntryID          string            `json:"entryID"`
	Kind             EntryKind         `json:"kind"`
	OccurredAt       time.Time         `json:"occurredAt"`
	Description      string            `json:"description"`
	GrossAmount      decimal.Decimal   `json:"grossAmount"`
	PaidAmount       decimal.Decimal   `json:"paidAmount"`
	NetEffect        decimal.Decimal   `json:"netEffect"`
	BalanceAfter     decimal.Decimal   `json:"balanceAfter"`
	IsDebit          bool              `json:"isDebit"`
	Direction        TransferDirection `json:"direction,omitempty"`
	CounterpartyName string            `json:"counterpartyName,omitempty"`
	SafeName         string            `json:"safeName,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	// Pending entries come from the offline queue: not yet committed, shown on
	// the first page only, and excluded from the balance fold.
	Pending bool `json:"pending,omitempty"`
}

// Cursor is a composite keyset pointer: the (timestamp, id) of the last
// consumed statement row. Never an offset, because concurrent inserts would
// shift offsets and corrupt reconstructed balances.
type Cursor struct {
	OccurredAt time.Time
	ID         string
}

// DateRange optionally bounds a statement to [From, To]. Nil means unbounded.
type DateRange struct {
	From *time.Time
	To   *time.Time
}
