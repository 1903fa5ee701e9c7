package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tallybook/statement_backend/internal/core/domain"
)

// effectFn computes the signed delta one raw record applied to a party's
// running balance.
type effectFn func(rec domain.SourceRecord) decimal.Decimal

// receivableEffects is the sign-convention table for customer and supplier
// statements, where a positive balance means the party owes us.
//
// INVOICE  -> +gross (raises the receivable)
// RETURN   -> -amount
// PAYMENT  -> -amount received, +amount when loan-flagged (cash handed out)
// TRANSFER -> +amount sent out to the party, -amount received from them
var receivableEffects = map[domain.EntryKind]effectFn{
	domain.KindInvoice: func(rec domain.SourceRecord) decimal.Decimal {
		return rec.Amount
	},
	domain.KindReturn: func(rec domain.SourceRecord) decimal.Decimal {
		return rec.Amount.Neg()
	},
	domain.KindPayment: func(rec domain.SourceRecord) decimal.Decimal {
		if rec.IsLoan {
			return rec.Amount
		}
		return rec.Amount.Neg()
	},
	domain.KindTransfer: func(rec domain.SourceRecord) decimal.Decimal {
		if rec.Direction == domain.TransferOut {
			return rec.Amount
		}
		return rec.Amount.Neg()
	},
}

// cashEffects is the sign-convention table for safe (cash drawer) statements,
// where the balance is the cash held: money in is positive.
//
// INVOICE  -> +amount (cash sale collected into the safe)
// RETURN   -> -amount refunded out of the safe
// PAYMENT  -> +amount collected, -amount when loan-flagged (paid out)
// TRANSFER -> +amount moved in, -amount moved out
var cashEffects = map[domain.EntryKind]effectFn{
	domain.KindInvoice: func(rec domain.SourceRecord) decimal.Decimal {
		return rec.Amount
	},
	domain.KindReturn: func(rec domain.SourceRecord) decimal.Decimal {
		return rec.Amount.Neg()
	},
	domain.KindPayment: func(rec domain.SourceRecord) decimal.Decimal {
		if rec.IsLoan {
			return rec.Amount.Neg()
		}
		return rec.Amount
	},
	domain.KindTransfer: func(rec domain.SourceRecord) decimal.Decimal {
		if rec.Direction == domain.TransferIn {
			return rec.Amount
		}
		return rec.Amount.Neg()
	},
}

// NetEffect computes the signed delta a record applied to the balance of a
// party of the given kind, plus the debit/credit presentation flag.
// The same table drives both per-row reconstruction and the anchor
// aggregation, so the two can never disagree.
func NetEffect(partyKind domain.PartyKind, rec domain.SourceRecord) (decimal.Decimal, bool, error) {
	var table map[domain.EntryKind]effectFn
	switch partyKind {
	case domain.PartyCustomer, domain.PartySupplier:
		table = receivableEffects
	case domain.PartySafe:
		table = cashEffects
	default:
		return decimal.Zero, false, fmt.Errorf("unknown party kind '%s'", partyKind)
	}

	fn, ok := table[rec.Kind]
	if !ok {
		return decimal.Zero, false, fmt.Errorf("unknown entry kind '%s' for record %s", rec.Kind, rec.ID)
	}
	net := fn(rec)
	return net, net.IsPositive(), nil
}
