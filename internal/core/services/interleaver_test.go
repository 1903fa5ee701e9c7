package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybook/statement_backend/internal/core/domain"
)

func rec(kind domain.EntryKind, id string, at time.Time, amount int64) domain.SourceRecord {
	return domain.SourceRecord{
		ID:         id,
		Kind:       kind,
		OccurredAt: at,
		Amount:     decimal.NewFromInt(amount),
	}
}

func TestMergeRecords_InterleavesNewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	invoices := []domain.SourceRecord{
		rec(domain.KindInvoice, "inv-2", base.Add(3*time.Hour), 100),
		rec(domain.KindInvoice, "inv-1", base, 50),
	}
	payments := []domain.SourceRecord{
		rec(domain.KindPayment, "pay-1", base.Add(2*time.Hour), 40),
	}
	returns := []domain.SourceRecord{
		rec(domain.KindReturn, "ret-1", base.Add(1*time.Hour), 60),
	}

	merged := mergeRecords([][]domain.SourceRecord{invoices, payments, returns}, 10)

	require.Len(t, merged, 4)
	assert.Equal(t, "inv-2", merged[0].ID)
	assert.Equal(t, "pay-1", merged[1].ID)
	assert.Equal(t, "ret-1", merged[2].ID)
	assert.Equal(t, "inv-1", merged[3].ID)
}

func TestMergeRecords_TruncatesAfterMerging(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// The payment is newer than both invoices; truncating per source first
	// would have kept both invoices and starved the payment.
	invoices := []domain.SourceRecord{
		rec(domain.KindInvoice, "inv-2", base.Add(1*time.Hour), 100),
		rec(domain.KindInvoice, "inv-1", base, 50),
	}
	payments := []domain.SourceRecord{
		rec(domain.KindPayment, "pay-1", base.Add(2*time.Hour), 40),
	}

	merged := mergeRecords([][]domain.SourceRecord{invoices, payments}, 2)

	require.Len(t, merged, 2)
	assert.Equal(t, "pay-1", merged[0].ID)
	assert.Equal(t, "inv-2", merged[1].ID)
}

func TestMergeRecords_SameTimestampTieBreaksOnID(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	a := rec(domain.KindInvoice, "aaaa", at, 10)
	b := rec(domain.KindPayment, "bbbb", at, 20)
	c := rec(domain.KindReturn, "cccc", at, 30)

	merged := mergeRecords([][]domain.SourceRecord{{a}, {b}, {c}}, 10)

	require.Len(t, merged, 3)
	assert.Equal(t, "cccc", merged[0].ID)
	assert.Equal(t, "bbbb", merged[1].ID)
	assert.Equal(t, "aaaa", merged[2].ID)
}

func TestMergeRecords_Empty(t *testing.T) {
	merged := mergeRecords([][]domain.SourceRecord{nil, {}, nil}, 5)
	assert.Empty(t, merged)
}
