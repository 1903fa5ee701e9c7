package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallybook/statement_backend/internal/apperrors"
	"github.com/tallybook/statement_backend/internal/core/domain"
	portsrepo "github.com/tallybook/statement_backend/internal/core/ports/repositories"
)

// PgxReturnSource fetches sale-return rows for a statement page.
type PgxReturnSource struct {
	BaseRepository
}

var _ portsrepo.SourceFetcher = (*PgxReturnSource)(nil)

func NewReturnSource(pool *pgxpool.Pool) *PgxReturnSource {
	return &PgxReturnSource{BaseRepository{Pool: pool}}
}

func (r *PgxReturnSource) Kind() domain.EntryKind {
	return domain.KindReturn
}

func (r *PgxReturnSource) Fetch(ctx context.Context, party domain.Party, rng domain.DateRange, cursor *domain.Cursor, pageSize int) ([]domain.SourceRecord, bool, error) {
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
	conds, args = sourceWindow(conds, args, "return_id", rng, cursor)

	query, args := sourceQuery(
		"return_id, occurred_at, amount, safe_id, created_by, description, notes",
		"returns", conds, args, "return_id", pageSize)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, false, apperrors.NewAppError(500, "failed to query returns for party "+party.PartyID, err)
	}
	defer rows.Close()

	records := make([]domain.SourceRecord, 0, pageSize)
	for rows.Next() {
		rec := domain.SourceRecord{Kind: domain.KindReturn}
		var safeID, createdBy, description, notes *string
		if err := rows.Scan(&rec.ID, &rec.OccurredAt, &rec.Amount, &safeID, &createdBy, &description, &notes); err != nil {
			return nil, false, apperrors.NewAppError(500, "failed to scan return row for party "+party.PartyID, err)
		}
		rec.SafeID = deref(safeID)
		rec.CreatedBy = deref(createdBy)
		rec.Description = deref(description)
		rec.Notes = deref(notes)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, false, apperrors.NewAppError(500, "error iterating return rows for party "+party.PartyID, err)
	}

	return records, len(records) < pageSize, nil
}
