package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybook/statement_backend/internal/core/domain"
)

// OpenStatementRequest opens a statement session for a party. A change of
// party or date filter is always a new open, never an adjustment of an
// existing session.
type OpenStatementRequest struct {
	PartyID  string     `json:"partyID" binding:"required"`
	From     *time.Time `json:"from"`
	To       *time.Time `json:"to"`
	PageSize int        `json:"pageSize" binding:"omitempty,min=1,max=100"`
}

// StatementEntryResponse is one reconstructed statement row.
type StatementEntryResponse struct {
	EntryID          string          `json:"entryID"`
	Kind             string          `json:"kind"`
	OccurredAt       time.Time       `json:"occurredAt"`
	Description      string          `json:"description"`
	GrossAmount      decimal.Decimal `json:"grossAmount"`
	PaidAmount       decimal.Decimal `json:"paidAmount"`
	NetEffect        decimal.Decimal `json:"netEffect"`
	BalanceAfter     decimal.Decimal `json:"balanceAfter"`
	IsDebit          bool            `json:"isDebit"`
	CounterpartyName string          `json:"counterpartyName,omitempty"`
	SafeName         string          `json:"safeName,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	Pending          bool            `json:"pending,omitempty"`
}

// SessionResponse is the read-only view of a statement session exposed to
// the UI layer.
type SessionResponse struct {
	SessionID          string                   `json:"sessionID"`
	PartyID            string                   `json:"partyID"`
	PartyName          string                   `json:"partyName"`
	CurrentBalance     decimal.Decimal          `json:"currentBalance"`
	Entries            []StatementEntryResponse `json:"entries"`
	HasMore            bool                     `json:"hasMore"`
	IsLoadingFirstPage bool                     `json:"isLoadingFirstPage"`
	IsLoadingMore      bool                     `json:"isLoadingMore"`
	Error              string                   `json:"error,omitempty"`
}

// ToStatementEntryResponse converts a domain.StatementEntry to its DTO.
func ToStatementEntryResponse(e *domain.StatementEntry) StatementEntryResponse {
	return StatementEntryResponse{
		EntryID:          e.EntryID,
		Kind:             string(e.Kind),
		OccurredAt:       e.OccurredAt,
		Description:      e.Description,
		GrossAmount:      e.GrossAmount,
		PaidAmount:       e.PaidAmount,
		NetEffect:        e.NetEffect,
		BalanceAfter:     e.BalanceAfter,
		IsDebit:          e.IsDebit,
		CounterpartyName: e.CounterpartyName,
		SafeName:         e.SafeName,
		Notes:            e.Notes,
		Pending:          e.Pending,
	}
}

// ToSessionResponse converts a domain.Session to SessionResponse DTO.
func ToSessionResponse(s *domain.Session) SessionResponse {
	entries := make([]StatementEntryResponse, len(s.Entries))
	for i := range s.Entries {
		entries[i] = ToStatementEntryResponse(&s.Entries[i])
	}
	return SessionResponse{
		SessionID:          s.SessionID,
		PartyID:            s.PartyID,
		PartyName:          s.PartyName,
		CurrentBalance:     s.AnchorBalance,
		Entries:            entries,
		HasMore:            s.HasMore,
		IsLoadingFirstPage: s.IsLoadingFirstPage,
		IsLoadingMore:      s.IsLoadingMore,
		Error:              s.ErrMessage,
	}
}
