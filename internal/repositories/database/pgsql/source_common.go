package pgsql

import (
	"fmt"
	"strings"

	"github.com/tallybook/statement_backend/internal/core/domain"
)

// partyScopeIDs returns the party ids a statement row may be attributed to.
// A supplier with a linked customer account folds that account's rows into
// the same statement.
func partyScopeIDs(party domain.Party) []string {
	ids := []string{party.PartyID}
	if party.LinkedPartyID != nil && *party.LinkedPartyID != "" {
		ids = append(ids, *party.LinkedPartyID)
	}
	return ids
}

// sourceWindow appends the shared date-range and keyset-cursor conditions for
// a source query. The cursor is the strict tuple comparison
// (occurred_at, id) < (ts, id); a plain occurred_at < ts would silently
// drop rows sharing the boundary timestamp.
func sourceWindow(conds []string, args []interface{}, idCol string, rng domain.DateRange, cursor *domain.Cursor) ([]string, []interface{}) {
	if rng.From != nil {
		args = append(args, *rng.From)
		conds = append(conds, fmt.Sprintf("occurred_at >= $%d", len(args)))
	}
	if rng.To != nil {
		args = append(args, *rng.To)
		conds = append(conds, fmt.Sprintf("occurred_at <= $%d", len(args)))
	}
	if cursor != nil {
		args = append(args, cursor.OccurredAt, cursor.ID)
		conds = append(conds, fmt.Sprintf("(occurred_at, %s) < ($%d, $%d)", idCol, len(args)-1, len(args)))
	}
	return conds, args
}

// sourceQuery assembles the full newest-first keyset query for a source.
func sourceQuery(selectCols, table string, conds []string, args []interface{}, idCol string, pageSize int) (string, []interface{}) {
	args = append(args, pageSize)
	query := "SELECT " + selectCols + " FROM " + table +
		" WHERE " + strings.Join(conds, " AND ") +
		fmt.Sprintf(" ORDER BY occurred_at DESC, %s DESC LIMIT $%d;", idCol, len(args))
	return query, args
}
