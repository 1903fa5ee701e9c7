package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallybook/statement_backend/internal/apperrors"
	"github.com/tallybook/statement_backend/internal/core/domain"
	portsrepo "github.com/tallybook/statement_backend/internal/core/ports/repositories"
)

// PgxPendingRepository reads the offline queue: events recorded locally but
// not yet committed to the source tables. This side only ever reads them;
// the sync subsystem owns their lifecycle.
type PgxPendingRepository struct {
	BaseRepository
}

var _ portsrepo.PendingReader = (*PgxPendingRepository)(nil)

func NewPendingRepository(pool *pgxpool.Pool) *PgxPendingRepository {
	return &PgxPendingRepository{BaseRepository{Pool: pool}}
}

// ListPendingByParty returns the party's not-yet-synced events, newest
// first. They are shown on the first statement page only and never join the
// balance fold.
func (r *PgxPendingRepository) ListPendingByParty(ctx context.Context, partyID string) ([]domain.SourceRecord, error) {
	query := `
		SELECT op_id, kind, occurred_at, amount, is_loan, COALESCE(direction, ''), description, notes
		FROM pending_operations
		WHERE party_id = $1 AND synced = FALSE
		ORDER BY occurred_at DESC, op_id DESC;
	`
	rows, err := r.Pool.Query(ctx, query, partyID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query pending operations for party "+partyID, err)
	}
	defer rows.Close()

	records := []domain.SourceRecord{}
	for rows.Next() {
		var rec domain.SourceRecord
		var kind, direction string
		var description, notes *string
		if err := rows.Scan(&rec.ID, &kind, &rec.OccurredAt, &rec.Amount, &rec.IsLoan, &direction, &description, &notes); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan pending operation row for party "+partyID, err)
		}
		rec.Kind = domain.EntryKind(kind)
		rec.Direction = domain.TransferDirection(direction)
		rec.Description = deref(description)
		rec.Notes = deref(notes)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating pending operation rows for party "+partyID, err)
	}
	return records, nil
}
