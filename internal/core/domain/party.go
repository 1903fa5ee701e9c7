package domain

// PartyKind identifies which ledger a party's balance lives in.
type PartyKind string

const (
	PartyCustomer PartyKind = "CUSTOMER"
	PartySupplier PartyKind = "SUPPLIER"
	PartySafe     PartyKind = "SAFE"
)

// Party is an account that owns a running balance: a customer, a supplier,
// or a cash safe. A supplier may carry a linked customer account whose
// effects fold into the same balance.
type Party struct {
	PartyID       string    `json:"partyID"`
	Kind          PartyKind `json:"kind"`
	Name          string    `json:"name"`
	LinkedPartyID *string   `json:"linkedPartyID,omitempty"`
	CurrencyCode  string    `json:"currencyCode"`
	IsActive      bool      `json:"isActive"`
	AuditFields
}
