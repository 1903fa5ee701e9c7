package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/tallybook/statement_backend/internal/core/ports/repositories"
)

// NewRepositoryProvider creates all pgsql-backed repositories and bundles
// them into a provider for the service container.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		PartyRepo:   NewPartyRepository(dbPool),
		AnchorRepo:  NewAnchorRepository(dbPool),
		NameRepo:    NewNameRepository(dbPool),
		PendingRepo: NewPendingRepository(dbPool),
		SourceRepos: []portsrepo.SourceFetcher{
			NewInvoiceSource(dbPool),
			NewReturnSource(dbPool),
			NewPaymentSource(dbPool),
			NewTransferSource(dbPool),
		},
	}
}
