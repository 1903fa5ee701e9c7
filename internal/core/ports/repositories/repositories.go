package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	PartyRepo   PartyRepositoryFacade
	AnchorRepo  AnchorReader
	NameRepo    NameResolver
	PendingRepo PendingReader
	SourceRepos []SourceFetcher
}
