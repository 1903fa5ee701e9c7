package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybook/statement_backend/internal/core/domain"
)

func TestReconstructEntries_BackwardFoldFromAnchor(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// Chronologically: invoice 100, then payment 40, then return 60.
	// The customer balance walks 100 -> 60 -> 0, so the anchor is 0.
	records := []domain.SourceRecord{
		rec(domain.KindReturn, "ret-1", base.Add(2*time.Hour), 60),
		rec(domain.KindPayment, "pay-1", base.Add(1*time.Hour), 40),
		rec(domain.KindInvoice, "inv-1", base, 100),
	}

	entries, outgoing, err := reconstructEntries(domain.PartyCustomer, records, decimal.Zero)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.True(t, entries[0].BalanceAfter.Equal(decimal.Zero), "return balanceAfter = %s", entries[0].BalanceAfter)
	assert.True(t, entries[1].BalanceAfter.Equal(decimal.NewFromInt(60)), "payment balanceAfter = %s", entries[1].BalanceAfter)
	assert.True(t, entries[2].BalanceAfter.Equal(decimal.NewFromInt(100)), "invoice balanceAfter = %s", entries[2].BalanceAfter)
	assert.True(t, outgoing.Equal(decimal.Zero), "outgoing = %s", outgoing)

	assert.True(t, entries[2].IsDebit)
	assert.False(t, entries[0].IsDebit)
	assert.False(t, entries[1].IsDebit)
}

func TestReconstructEntries_OutgoingSeedsNextPage(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	pageOne := []domain.SourceRecord{
		rec(domain.KindInvoice, "inv-3", base.Add(2*time.Hour), 30),
		rec(domain.KindInvoice, "inv-2", base.Add(1*time.Hour), 20),
	}
	pageTwo := []domain.SourceRecord{
		rec(domain.KindInvoice, "inv-1", base, 10),
	}

	anchor := decimal.NewFromInt(60)
	firstEntries, carried, err := reconstructEntries(domain.PartyCustomer, pageOne, anchor)
	require.NoError(t, err)
	secondEntries, outgoing, err := reconstructEntries(domain.PartyCustomer, pageTwo, carried)
	require.NoError(t, err)

	// The fold is one unbroken chain: page two continues exactly where page
	// one left off.
	assert.True(t, firstEntries[1].BalanceAfter.Equal(decimal.NewFromInt(30)))
	assert.True(t, carried.Equal(decimal.NewFromInt(10)))
	assert.True(t, secondEntries[0].BalanceAfter.Equal(decimal.NewFromInt(10)))
	assert.True(t, outgoing.Equal(decimal.Zero))
}

func TestReconstructEntries_CashConvention(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// For a safe, a received payment increases cash and an outgoing transfer
	// decreases it.
	payment := rec(domain.KindPayment, "pay-1", base.Add(1*time.Hour), 50)
	transfer := rec(domain.KindTransfer, "tr-1", base, 20)
	transfer.Direction = domain.TransferOut

	entries, outgoing, err := reconstructEntries(domain.PartySafe, []domain.SourceRecord{payment, transfer}, decimal.NewFromInt(30))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.True(t, entries[0].BalanceAfter.Equal(decimal.NewFromInt(30)))
	assert.True(t, entries[0].NetEffect.Equal(decimal.NewFromInt(50)))
	assert.True(t, entries[1].BalanceAfter.Equal(decimal.NewFromInt(-20)))
	assert.True(t, entries[1].NetEffect.Equal(decimal.NewFromInt(-20)))
	assert.True(t, outgoing.Equal(decimal.Zero))
}

func TestReconstructEntries_UnknownKindFails(t *testing.T) {
	records := []domain.SourceRecord{
		rec(domain.EntryKind("MYSTERY"), "x-1", time.Now(), 5),
	}
	_, _, err := reconstructEntries(domain.PartyCustomer, records, decimal.Zero)
	assert.Error(t, err)
}
