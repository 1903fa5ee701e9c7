package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tallybook/statement_backend/internal/apperrors"
	"github.com/tallybook/statement_backend/internal/core/domain"
	portsrepo "github.com/tallybook/statement_backend/internal/core/ports/repositories"
)

// PgxInvoiceSource fetches invoice rows for a statement page. Besides the
// raw rows it batch-loads the payments already applied against the page's
// invoices, so the UI can show a per-invoice paid column.
type PgxInvoiceSource struct {
	BaseRepository
}

var _ portsrepo.SourceFetcher = (*PgxInvoiceSource)(nil)

func NewInvoiceSource(pool *pgxpool.Pool) *PgxInvoiceSource {
	return &PgxInvoiceSource{BaseRepository{Pool: pool}}
}

func (r *PgxInvoiceSource) Kind() domain.EntryKind {
	return domain.KindInvoice
}

// Fetch returns up to pageSize invoices strictly below the cursor, newest
// first by (occurred_at, invoice_id).
func (r *PgxInvoiceSource) Fetch(ctx context.Context, party domain.Party, rng domain.DateRange, cursor *domain.Cursor, pageSize int) ([]domain.SourceRecord, bool, error) {
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
	conds, args = sourceWindow(conds, args, "invoice_id", rng, cursor)

	query, args := sourceQuery(
		"invoice_id, occurred_at, amount, safe_id, created_by, description, notes",
		"invoices", conds, args, "invoice_id", pageSize)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, false, apperrors.NewAppError(500, "failed to query invoices for party "+party.PartyID, err)
	}
	defer rows.Close()

	records := make([]domain.SourceRecord, 0, pageSize)
	for rows.Next() {
		rec := domain.SourceRecord{Kind: domain.KindInvoice}
		var safeID, createdBy, description, notes *string
		if err := rows.Scan(&rec.ID, &rec.OccurredAt, &rec.Amount, &safeID, &createdBy, &description, &notes); err != nil {
			return nil, false, apperrors.NewAppError(500, "failed to scan invoice row for party "+party.PartyID, err)
		}
		rec.SafeID = deref(safeID)
		rec.CreatedBy = deref(createdBy)
		rec.Description = deref(description)
		rec.Notes = deref(notes)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, false, apperrors.NewAppError(500, "error iterating invoice rows for party "+party.PartyID, err)
	}

	if err := r.attachPaidAmounts(ctx, records); err != nil {
		return nil, false, err
	}

	return records, len(records) < pageSize, nil
}

// attachPaidAmounts batch-loads the sum of payments already applied against
// each invoice in the page. A payment linked through the direct
// purchase_invoice_id foreign key takes precedence; the linked-customer sale
// path (invoice_id) only applies when no direct link exists.
func (r *PgxInvoiceSource) attachPaidAmounts(ctx context.Context, records []domain.SourceRecord) error {
	if len(records) == 0 {
		return nil
	}
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}

	query := `
		SELECT COALESCE(purchase_invoice_id, invoice_id) AS inv_id, COALESCE(SUM(amount), 0)
		FROM payments
		WHERE purchase_invoice_id = ANY($1)
		   OR (purchase_invoice_id IS NULL AND invoice_id = ANY($1))
		GROUP BY 1;
	`
	rows, err := r.Pool.Query(ctx, query, ids)
	if err != nil {
		return apperrors.NewAppError(500, "failed to query linked payments for invoices", err)
	}
	defer rows.Close()

	paid := make(map[string]decimal.Decimal, len(ids))
	for rows.Next() {
		var invID string
		var sum decimal.Decimal
		if err := rows.Scan(&invID, &sum); err != nil {
			return apperrors.NewAppError(500, "failed to scan linked payment sum", err)
		}
		paid[invID] = sum
	}
	if err := rows.Err(); err != nil {
		return apperrors.NewAppError(500, "error iterating linked payment sums", err)
	}

	for i := range records {
		if sum, ok := paid[records[i].ID]; ok {
			records[i].PaidAmount = sum
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
