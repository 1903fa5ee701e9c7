package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tallybook/statement_backend/internal/core/domain"
)

func TestNetEffectReceivable(t *testing.T) {
	amount := decimal.NewFromInt(100)

	tests := []struct {
		name    string
		rec     domain.SourceRecord
		want    string
		isDebit bool
	}{
		{"invoice raises the receivable", domain.SourceRecord{Kind: domain.KindInvoice, Amount: amount}, "100", true},
		{"return lowers the receivable", domain.SourceRecord{Kind: domain.KindReturn, Amount: amount}, "-100", false},
		{"payment received lowers the receivable", domain.SourceRecord{Kind: domain.KindPayment, Amount: amount}, "-100", false},
		{"loan payment raises the receivable", domain.SourceRecord{Kind: domain.KindPayment, Amount: amount, IsLoan: true}, "100", true},
		{"transfer out to the party raises the receivable", domain.SourceRecord{Kind: domain.KindTransfer, Amount: amount, Direction: domain.TransferOut}, "100", true},
		{"transfer in from the party lowers the receivable", domain.SourceRecord{Kind: domain.KindTransfer, Amount: amount, Direction: domain.TransferIn}, "-100", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			net, isDebit, err := NetEffect(domain.PartyCustomer, tc.rec)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, net.String())
			assert.Equal(t, tc.isDebit, isDebit)

			// Suppliers share the receivable convention.
			supNet, _, err := NetEffect(domain.PartySupplier, tc.rec)
			assert.NoError(t, err)
			assert.True(t, net.Equal(supNet))
		})
	}
}

func TestNetEffectSafe(t *testing.T) {
	amount := decimal.NewFromInt(50)

	tests := []struct {
		name string
		rec  domain.SourceRecord
		want string
	}{
		{"cash sale collected into the safe", domain.SourceRecord{Kind: domain.KindInvoice, Amount: amount}, "50"},
		{"refund paid out of the safe", domain.SourceRecord{Kind: domain.KindReturn, Amount: amount}, "-50"},
		{"payment collected", domain.SourceRecord{Kind: domain.KindPayment, Amount: amount}, "50"},
		{"loan paid out", domain.SourceRecord{Kind: domain.KindPayment, Amount: amount, IsLoan: true}, "-50"},
		{"transfer into the safe", domain.SourceRecord{Kind: domain.KindTransfer, Amount: amount, Direction: domain.TransferIn}, "50"},
		{"transfer out of the safe", domain.SourceRecord{Kind: domain.KindTransfer, Amount: amount, Direction: domain.TransferOut}, "-50"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			net, _, err := NetEffect(domain.PartySafe, tc.rec)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, net.String())
		})
	}
}

func TestNetEffectUnknownKinds(t *testing.T) {
	_, _, err := NetEffect(domain.PartyKind("WAREHOUSE"), domain.SourceRecord{Kind: domain.KindInvoice})
	assert.Error(t, err)

	_, _, err = NetEffect(domain.PartyCustomer, domain.SourceRecord{Kind: domain.EntryKind("VOUCHER"), ID: "r1"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown entry kind")
}
