package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallybook/statement_backend/internal/apperrors"
	"github.com/tallybook/statement_backend/internal/core/domain"
	portsrepo "github.com/tallybook/statement_backend/internal/core/ports/repositories"
	"github.com/tallybook/statement_backend/internal/utils/pagination"
)

type PgxPartyRepository struct {
	BaseRepository
}

var _ portsrepo.PartyRepositoryFacade = (*PgxPartyRepository)(nil)

func NewPartyRepository(pool *pgxpool.Pool) *PgxPartyRepository {
	return &PgxPartyRepository{BaseRepository{Pool: pool}}
}

// SaveParty persists a new party.
func (r *PgxPartyRepository) SaveParty(ctx context.Context, party domain.Party) error {
	query := `
		INSERT INTO parties (
			party_id, kind, name, linked_party_id, currency_code, is_active,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		party.PartyID,
		party.Kind,
		party.Name,
		party.LinkedPartyID,
		party.CurrencyCode,
		party.IsActive,
		party.CreatedAt,
		party.CreatedBy,
		party.LastUpdatedAt,
		party.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert party "+party.PartyID, err)
	}
	return nil
}

// FindPartyByID retrieves a party by its ID.
func (r *PgxPartyRepository) FindPartyByID(ctx context.Context, partyID string) (*domain.Party, error) {
	query := `
		SELECT party_id, kind, name, linked_party_id, currency_code, is_active,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM parties
		WHERE party_id = $1;
	`
	var party domain.Party
	err := r.Pool.QueryRow(ctx, query, partyID).Scan(
		&party.PartyID,
		&party.Kind,
		&party.Name,
		&party.LinkedPartyID,
		&party.CurrencyCode,
		&party.IsActive,
		&party.CreatedAt,
		&party.CreatedBy,
		&party.LastUpdatedAt,
		&party.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find party by ID "+partyID, err)
	}
	return &party, nil
}

// ListParties retrieves a keyset-paginated list of parties, optionally
// filtered by kind, newest first by (created_at, party_id).
func (r *PgxPartyRepository) ListParties(ctx context.Context, kind domain.PartyKind, limit int, nextToken *string) ([]domain.Party, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	conds := []string{"is_active = TRUE"}
	args := []interface{}{}
	if kind != "" {
		args = append(args, kind)
		conds = append(conds, fmt.Sprintf("kind = $%d", len(args)))
	}

	if nextToken != nil && *nextToken != "" {
		cursor, decodeErr := pagination.DecodeCursor(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, cursor.OccurredAt, cursor.ID)
		conds = append(conds, fmt.Sprintf("(created_at, party_id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	args = append(args, fetchLimit)
	query := `
		SELECT party_id, kind, name, linked_party_id, currency_code, is_active,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM parties
		WHERE ` + strings.Join(conds, " AND ") + fmt.Sprintf(`
		ORDER BY created_at DESC, party_id DESC LIMIT $%d;`, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query parties", err)
	}
	defer rows.Close()

	parties := make([]domain.Party, 0, fetchLimit)
	for rows.Next() {
		var party domain.Party
		if err := rows.Scan(
			&party.PartyID,
			&party.Kind,
			&party.Name,
			&party.LinkedPartyID,
			&party.CurrencyCode,
			&party.IsActive,
			&party.CreatedAt,
			&party.CreatedBy,
			&party.LastUpdatedAt,
			&party.LastUpdatedBy,
		); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan party row", err)
		}
		parties = append(parties, party)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating party rows", err)
	}

	var nextTokenVal *string
	if len(parties) > limit {
		last := parties[limit-1]
		token := pagination.EncodeCursor(domain.Cursor{OccurredAt: last.CreatedAt, ID: last.PartyID})
		nextTokenVal = &token
		parties = parties[:limit]
	}
	return parties, nextTokenVal, nil
}
