package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallybook/statement_backend/internal/apperrors"
	"github.com/tallybook/statement_backend/internal/core/domain"
	portsrepo "github.com/tallybook/statement_backend/internal/core/ports/repositories"
)

// PgxNameRepository batch-resolves foreign identifiers to display names for
// a page of statement rows. Pure read, one query per id set.
type PgxNameRepository struct {
	BaseRepository
}

var _ portsrepo.NameResolver = (*PgxNameRepository)(nil)

func NewNameRepository(pool *pgxpool.Pool) *PgxNameRepository {
	return &PgxNameRepository{BaseRepository{Pool: pool}}
}

// ResolveSafeNames maps safe ids to their display names. Safes are parties
// of kind SAFE, so this reads the parties table.
func (r *PgxNameRepository) ResolveSafeNames(ctx context.Context, safeIDs []string) (map[string]string, error) {
	if len(safeIDs) == 0 {
		return map[string]string{}, nil
	}
	query := `SELECT party_id, name FROM parties WHERE kind = $1 AND party_id = ANY($2);`
	return r.resolve(ctx, query, string(domain.PartySafe), safeIDs)
}

// ResolveUserNames maps user ids to their display names.
func (r *PgxNameRepository) ResolveUserNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	if len(userIDs) == 0 {
		return map[string]string{}, nil
	}
	query := `SELECT user_id, name FROM users WHERE user_id = ANY($1);`
	return r.resolve(ctx, query, userIDs)
}

func (r *PgxNameRepository) resolve(ctx context.Context, query string, args ...interface{}) (map[string]string, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to batch-resolve display names", err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan display name row", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating display name rows", err)
	}
	return names, nil
}
