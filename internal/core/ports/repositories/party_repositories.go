package repositories

import (
	"context"

	"github.com/tallybook/statement_backend/internal/core/domain"
)

// PartyWriter defines write operations for parties.
type PartyWriter interface {
	SaveParty(ctx context.Context, party domain.Party) error
}

// PartyLister defines list operations for parties.
type PartyLister interface {
	// ListParties retrieves a keyset-paginated list of parties of a kind.
	// It returns the parties, a token for the next page, and an error.
	ListParties(ctx context.Context, kind domain.PartyKind, limit int, nextToken *string) ([]domain.Party, *string, error)
}

// PartyRepositoryFacade combines all party-related repository interfaces.
type PartyRepositoryFacade interface {
	PartyReader
	PartyWriter
	PartyLister
}
