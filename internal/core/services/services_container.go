package services

import (
	portsrepo "github.com/tallybook/statement_backend/internal/core/ports/repositories"
	portssvc "github.com/tallybook/statement_backend/internal/core/ports/services"
	"github.com/tallybook/statement_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// The returned statement service owns background resources; callers should
// arrange for Shutdown via the returned cleanup function.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) (*portssvc.ServiceContainer, func()) {
	statementSvc := NewStatementService(repos, StatementConfig{
		DefaultPageSize:  cfg.StatementPageSize,
		SessionTTL:       cfg.SessionTTL,
		PageFetchTimeout: cfg.PageFetchTimeout,
		PageRetryBackoff: cfg.PageRetryBackoff,
	})

	container := &portssvc.ServiceContainer{
		Statement: statementSvc,
		Party:     NewPartyService(repos.PartyRepo),
	}

	return container, statementSvc.Shutdown
}
