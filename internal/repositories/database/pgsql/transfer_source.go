package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallybook/statement_backend/internal/apperrors"
	"github.com/tallybook/statement_backend/internal/core/domain"
	portsrepo "github.com/tallybook/statement_backend/internal/core/ports/repositories"
)

// PgxTransferSource fetches safe-to-safe and party transfer rows.
// Direction is always reported relative to the statement's party: IN means
// money arrived (to a safe, or from the party), OUT means money left.
type PgxTransferSource struct {
	BaseRepository
}

var _ portsrepo.SourceFetcher = (*PgxTransferSource)(nil)

func NewTransferSource(pool *pgxpool.Pool) *PgxTransferSource {
	return &PgxTransferSource{BaseRepository{Pool: pool}}
}

func (r *PgxTransferSource) Kind() domain.EntryKind {
	return domain.KindTransfer
}

func (r *PgxTransferSource) Fetch(ctx context.Context, party domain.Party, rng domain.DateRange, cursor *domain.Cursor, pageSize int) ([]domain.SourceRecord, bool, error) {
	var (
		conds     []string
		args      []interface{}
		selectDir string
	)
	if party.Kind == domain.PartySafe {
		args = append(args, party.PartyID)
		conds = append(conds, "(from_safe_id = $1 OR to_safe_id = $1)")
		selectDir = "CASE WHEN to_safe_id = $1 THEN 'IN' ELSE 'OUT' END"
	} else {
		args = append(args, partyScopeIDs(party))
		conds = append(conds, "party_id = ANY($1)")
		// Money arriving into one of our safes came in from the party.
		selectDir = "CASE WHEN to_safe_id IS NOT NULL THEN 'IN' ELSE 'OUT' END"
	}
	conds, args = sourceWindow(conds, args, "transfer_id", rng, cursor)

	query, args := sourceQuery(
		"transfer_id, occurred_at, amount, "+selectDir+", COALESCE(to_safe_id, from_safe_id), created_by, description, notes",
		"transfers", conds, args, "transfer_id", pageSize)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, false, apperrors.NewAppError(500, "failed to query transfers for party "+party.PartyID, err)
	}
	defer rows.Close()

	records := make([]domain.SourceRecord, 0, pageSize)
	for rows.Next() {
		rec := domain.SourceRecord{Kind: domain.KindTransfer}
		var direction string
		var safeID, createdBy, description, notes *string
		if err := rows.Scan(&rec.ID, &rec.OccurredAt, &rec.Amount, &direction, &safeID, &createdBy, &description, &notes); err != nil {
			return nil, false, apperrors.NewAppError(500, "failed to scan transfer row for party "+party.PartyID, err)
		}
		rec.Direction = domain.TransferDirection(direction)
		rec.SafeID = deref(safeID)
		rec.CreatedBy = deref(createdBy)
		rec.Description = deref(description)
		rec.Notes = deref(notes)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, false, apperrors.NewAppError(500, "error iterating transfer rows for party "+party.PartyID, err)
	}

	return records, len(records) < pageSize, nil
}
