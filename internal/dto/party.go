package dto

import (
	"github.com/tallybook/statement_backend/internal/core/domain"
)

// CreatePartyRequest creates a new party (customer, supplier, or safe).
type CreatePartyRequest struct {
	Kind          string  `json:"kind" binding:"required,oneof=CUSTOMER SUPPLIER SAFE"`
	Name          string  `json:"name" binding:"required"`
	LinkedPartyID *string `json:"linkedPartyID"`
	CurrencyCode  string  `json:"currencyCode" binding:"required,len=3"`
}

// PartyResponse defines the data returned for a party.
type PartyResponse struct {
	PartyID       string  `json:"partyID"`
	Kind          string  `json:"kind"`
	Name          string  `json:"name"`
	LinkedPartyID *string `json:"linkedPartyID,omitempty"`
	CurrencyCode  string  `json:"currencyCode"`
	IsActive      bool    `json:"isActive"`
}

// ListPartiesParams holds parameters for listing parties.
type ListPartiesParams struct {
	Kind      string  `form:"kind" binding:"omitempty,oneof=CUSTOMER SUPPLIER SAFE"`
	Limit     int     `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListPartiesResponse is a keyset-paginated page of parties.
type ListPartiesResponse struct {
	Parties   []PartyResponse `json:"parties"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToPartyResponse converts a domain.Party to PartyResponse DTO.
func ToPartyResponse(p *domain.Party) PartyResponse {
	return PartyResponse{
		PartyID:       p.PartyID,
		Kind:          string(p.Kind),
		Name:          p.Name,
		LinkedPartyID: p.LinkedPartyID,
		CurrencyCode:  p.CurrencyCode,
		IsActive:      p.IsActive,
	}
}

// ToPartyResponses converts a slice of domain.Party to []PartyResponse.
func ToPartyResponses(parties []domain.Party) []PartyResponse {
	responses := make([]PartyResponse, len(parties))
	for i := range parties {
		responses[i] = ToPartyResponse(&parties[i])
	}
	return responses
}
