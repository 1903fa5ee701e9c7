package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallybook/statement_backend/internal/apperrors"
	"github.com/tallybook/statement_backend/internal/core/domain"
	portsrepo "github.com/tallybook/statement_backend/internal/core/ports/repositories"
)

// PgxPaymentSource fetches standalone payment rows for a statement page.
// Loan-flagged payments are cash handed out rather than received and carry
// the opposite sign.
type PgxPaymentSource struct {
	BaseRepository
}

var _ portsrepo.SourceFetcher = (*PgxPaymentSource)(nil)

func NewPaymentSource(pool *pgxpool.Pool) *PgxPaymentSource {
	return &PgxPaymentSource{BaseRepository{Pool: pool}}
}

func (r *PgxPaymentSource) Kind() domain.EntryKind {
	return domain.KindPayment
}

func (r *PgxPaymentSource) Fetch(ctx context.Context, party domain.Party, rng domain.DateRange, cursor *domain.Cursor, pageSize int) ([]domain.SourceRecord, bool, error) {
	var (
		conds []string
		args  []interface{}
	)
	if party.Kind == domain.PartySafe {
		args = append(args, party.PartyID)
		conds = append(conds, "safe_id = $1")
	} else {
		args = append(args, partyScopeIDs(party))
		conds = append(conds, "party_id = ANY($1)")
	}
	conds, args = sourceWindow(conds, args, "payment_id", rng, cursor)

	query, args := sourceQuery(
		"payment_id, occurred_at, amount, is_loan, safe_id, created_by, description, notes",
		"payments", conds, args, "payment_id", pageSize)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, false, apperrors.NewAppError(500, "failed to query payments for party "+party.PartyID, err)
	}
	defer rows.Close()

	records := make([]domain.SourceRecord, 0, pageSize)
	for rows.Next() {
		rec := domain.SourceRecord{Kind: domain.KindPayment}
		var safeID, createdBy, description, notes *string
		if err := rows.Scan(&rec.ID, &rec.OccurredAt, &rec.Amount, &rec.IsLoan, &safeID, &createdBy, &description, &notes); err != nil {
			return nil, false, apperrors.NewAppError(500, "failed to scan payment row for party "+party.PartyID, err)
		}
		rec.SafeID = deref(safeID)
		rec.CreatedBy = deref(createdBy)
		rec.Description = deref(description)
		rec.Notes = deref(notes)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, false, apperrors.NewAppError(500, "error iterating payment rows for party "+party.PartyID, err)
	}

	return records, len(records) < pageSize, nil
}
