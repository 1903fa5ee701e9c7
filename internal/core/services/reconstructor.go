package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tallybook/statement_backend/internal/core/domain"
	"github.com/tallybook/statement_backend/internal/utils/ledger"
)

// reconstructEntries turns a merged newest-first page of raw records into
// statement entries carrying per-row historical balances.
//
// Walking newest to oldest, the running balance before processing a record is
// exactly the balance that held after that record occurred; subtracting the
// record's net effect then yields the balance before it, which becomes the
// balanceAfter of the next (older) record. The returned outgoing balance
// seeds the next page, making the whole session one unbroken backward fold
// from the anchor.
func reconstructEntries(partyKind domain.PartyKind, records []domain.SourceRecord, incoming decimal.Decimal) ([]domain.StatementEntry, decimal.Decimal, error) {
	entries := make([]domain.StatementEntry, 0, len(records))
	running := incoming

	for _, rec := range records {
		net, isDebit, err := ledger.NetEffect(partyKind, rec)
		if err != nil {
			return nil, incoming, fmt.Errorf("failed to compute net effect for record %s: %w", rec.ID, err)
		}

		entries = append(entries, domain.StatementEntry{
			EntryID:      rec.ID,
			Kind:         rec.Kind,
			OccurredAt:   rec.OccurredAt,
			Description:  rec.Description,
			GrossAmount:  rec.Amount,
			PaidAmount:   rec.PaidAmount,
			NetEffect:    net,
			BalanceAfter: running,
			IsDebit:      isDebit,
			Direction:    rec.Direction,
			Notes:        rec.Notes,
		})
		running = running.Sub(net)
	}

	return entries, running, nil
}
