package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tallybook/statement_backend/internal/apperrors"
	"github.com/tallybook/statement_backend/internal/core/domain"
	portsrepo "github.com/tallybook/statement_backend/internal/core/ports/repositories"
)

// PgxAnchorRepository computes a party's authoritative current balance by
// summing the signed effects of every source table. The four aggregates run
// inside one repeatable-read transaction so the anchor is a single
// consistent snapshot even under concurrent writes.
//
// The SQL sign arithmetic mirrors the ledger effect tables exactly; the two
// must not drift apart or reconstructed balances stop meeting the anchor.
type PgxAnchorRepository struct {
	BaseRepository
}

var _ portsrepo.AnchorReader = (*PgxAnchorRepository)(nil)

func NewAnchorRepository(pool *pgxpool.Pool) *PgxAnchorRepository {
	return &PgxAnchorRepository{BaseRepository{Pool: pool}}
}

// receivable aggregates: positive balance means the party owes us.
var receivableSums = []string{
	`SELECT COALESCE(SUM(amount), 0) FROM invoices WHERE party_id = ANY($1)`,
	`SELECT COALESCE(SUM(-amount), 0) FROM returns WHERE party_id = ANY($1)`,
	`SELECT COALESCE(SUM(CASE WHEN is_loan THEN amount ELSE -amount END), 0) FROM payments WHERE party_id = ANY($1)`,
	`SELECT COALESCE(SUM(CASE WHEN to_safe_id IS NOT NULL THEN -amount ELSE amount END), 0) FROM transfers WHERE party_id = ANY($1)`,
}

// cash aggregates: the balance is the cash held by the safe.
var cashSums = []string{
	`SELECT COALESCE(SUM(amount), 0) FROM invoices WHERE safe_id = $1`,
	`SELECT COALESCE(SUM(-amount), 0) FROM returns WHERE safe_id = $1`,
	`SELECT COALESCE(SUM(CASE WHEN is_loan THEN -amount ELSE amount END), 0) FROM payments WHERE safe_id = $1`,
	`SELECT COALESCE(SUM(CASE WHEN to_safe_id = $1 THEN amount ELSE -amount END), 0) FROM transfers WHERE from_safe_id = $1 OR to_safe_id = $1`,
}

// ResolveAnchor returns the party's present balance, folding in a linked
// customer account when the party carries one.
func (r *PgxAnchorRepository) ResolveAnchor(ctx context.Context, party domain.Party) (decimal.Decimal, error) {
	var (
		queries []string
		arg     interface{}
	)
	if party.Kind == domain.PartySafe {
		queries = cashSums
		arg = party.PartyID
	} else {
		queries = receivableSums
		arg = partyScopeIDs(party)
	}

	tx, err := r.BeginRO(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	defer r.Rollback(ctx, tx)

	total := decimal.Zero
	for _, query := range queries {
		var sum decimal.Decimal
		if err := tx.QueryRow(ctx, query, arg).Scan(&sum); err != nil {
			if err == pgx.ErrNoRows {
				continue
			}
			return decimal.Zero, apperrors.NewAppError(500, "failed to aggregate balance for party "+party.PartyID, err)
		}
		total = total.Add(sum)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
