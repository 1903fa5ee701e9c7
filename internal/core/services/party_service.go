package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tallybook/statement_backend/internal/apperrors"
	"github.com/tallybook/statement_backend/internal/core/domain"
	portsrepo "github.com/tallybook/statement_backend/internal/core/ports/repositories"
	portssvc "github.com/tallybook/statement_backend/internal/core/ports/services"
	"github.com/tallybook/statement_backend/internal/dto"
	"github.com/tallybook/statement_backend/internal/middleware"
)

// PartyService manages the parties whose statements the engine serves.
type PartyService struct {
	partyRepo portsrepo.PartyRepositoryFacade
}

var _ portssvc.PartySvcFacade = (*PartyService)(nil)

// NewPartyService creates a new PartyService.
func NewPartyService(partyRepo portsrepo.PartyRepositoryFacade) *PartyService {
	return &PartyService{partyRepo: partyRepo}
}

// GetPartyByID retrieves a single party.
func (s *PartyService) GetPartyByID(ctx context.Context, partyID string) (*domain.Party, error) {
	party, err := s.partyRepo.FindPartyByID(ctx, partyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find party %s: %w", partyID, err)
	}
	return party, nil
}

// ListParties retrieves a keyset-paginated page of parties.
func (s *PartyService) ListParties(ctx context.Context, params dto.ListPartiesParams) (*dto.ListPartiesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	parties, nextToken, err := s.partyRepo.ListParties(ctx, domain.PartyKind(params.Kind), limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list parties from repository", "error", err)
		return nil, fmt.Errorf("failed to retrieve parties: %w", err)
	}

	return &dto.ListPartiesResponse{
		Parties:   dto.ToPartyResponses(parties),
		NextToken: nextToken,
	}, nil
}

// CreateParty persists a new party.
func (s *PartyService) CreateParty(ctx context.Context, req dto.CreatePartyRequest, creatorUserID string) (*domain.Party, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	party := domain.Party{
		PartyID:       uuid.NewString(),
		Kind:          domain.PartyKind(req.Kind),
		Name:          req.Name,
		LinkedPartyID: req.LinkedPartyID,
		CurrencyCode:  req.CurrencyCode,
		IsActive:      true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if req.LinkedPartyID != nil {
		linked, err := s.partyRepo.FindPartyByID(ctx, *req.LinkedPartyID)
		if err != nil {
			return nil, fmt.Errorf("%w: linked party %s not found", apperrors.ErrValidation, *req.LinkedPartyID)
		}
		if linked.Kind != domain.PartyCustomer {
			return nil, fmt.Errorf("%w: linked party must be a customer account", apperrors.ErrValidation)
		}
	}

	if err := s.partyRepo.SaveParty(ctx, party); err != nil {
		logger.Error("Failed to save party", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save party: %w", err)
	}

	logger.Info("Party created", slog.String("party_id", party.PartyID), slog.String("kind", string(party.Kind)))
	return &party, nil
}
