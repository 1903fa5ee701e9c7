package services

import (
	"context"

	"github.com/tallybook/statement_backend/internal/core/domain"
	"github.com/tallybook/statement_backend/internal/dto"
)

// PartyReaderSvc defines read operations for parties.
type PartyReaderSvc interface {
	GetPartyByID(ctx context.Context, partyID string) (*domain.Party, error)
	ListParties(ctx context.Context, params dto.ListPartiesParams) (*dto.ListPartiesResponse, error)
}

// PartyCreatorSvc defines creation operations for parties.
type PartyCreatorSvc interface {
	CreateParty(ctx context.Context, req dto.CreatePartyRequest, creatorUserID string) (*domain.Party, error)
}

// PartySvcFacade combines all party service interfaces.
type PartySvcFacade interface {
	PartyReaderSvc
	PartyCreatorSvc
}
