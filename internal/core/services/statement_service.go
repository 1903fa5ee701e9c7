package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/shopspring/decimal"

	"github.com/tallybook/statement_backend/internal/apperrors"
	"github.com/tallybook/statement_backend/internal/core/domain"
	portsrepo "github.com/tallybook/statement_backend/internal/core/ports/repositories"
	portssvc "github.com/tallybook/statement_backend/internal/core/ports/services"
	"github.com/tallybook/statement_backend/internal/dto"
	"github.com/tallybook/statement_backend/internal/middleware"
	"github.com/tallybook/statement_backend/internal/utils/ledger"
)

// StatementConfig tunes the statement engine.
type StatementConfig struct {
	DefaultPageSize  int
	SessionTTL       time.Duration
	PageFetchTimeout time.Duration
	PageRetryBackoff time.Duration
	FetchWorkers     int
}

// statementSession wraps the session state with its concurrency controls.
// The mutex plus the loading flag make a session strictly sequential: at
// most one fetch is ever in flight, and a re-entrant LoadMore is a no-op.
type statementSession struct {
	mu      sync.Mutex
	data    domain.Session
	party   domain.Party
	loading bool

	// generation increments on every refresh/close so a fetch started under
	// an old configuration can detect it is stale and discard its result.
	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc
}

// snapshot returns a copy safe to hand to callers while fetches continue.
func (s *statementSession) snapshot() *domain.Session {
	cp := s.data
	cp.Entries = make([]domain.StatementEntry, len(s.data.Entries))
	copy(cp.Entries, s.data.Entries)
	return &cp
}

type StatementService struct {
	partyRepo   portsrepo.PartyReader
	anchorRepo  portsrepo.AnchorReader
	nameRepo    portsrepo.NameResolver
	pendingRepo portsrepo.PendingReader
	sources     []portsrepo.SourceFetcher

	cfg      StatementConfig
	pool     pond.Pool
	sessions *xsync.Map[string, *statementSession]
	stopGC   chan struct{}
	gcOnce   sync.Once
}

var _ portssvc.StatementSvcFacade = (*StatementService)(nil)

// NewStatementService creates the statement engine and starts its session
// janitor. Call Shutdown when the process exits.
func NewStatementService(repos portsrepo.RepositoryProvider, cfg StatementConfig) *StatementService {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 25
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	if cfg.PageFetchTimeout <= 0 {
		cfg.PageFetchTimeout = 15 * time.Second
	}
	if cfg.PageRetryBackoff <= 0 {
		cfg.PageRetryBackoff = 500 * time.Millisecond
	}
	if cfg.FetchWorkers <= 0 {
		cfg.FetchWorkers = 2 * len(repos.SourceRepos)
	}

	s := &StatementService{
		partyRepo:   repos.PartyRepo,
		anchorRepo:  repos.AnchorRepo,
		nameRepo:    repos.NameRepo,
		pendingRepo: repos.PendingRepo,
		sources:     repos.SourceRepos,
		cfg:         cfg,
		pool:        pond.NewPool(cfg.FetchWorkers),
		sessions:    xsync.NewMap[string, *statementSession](),
		stopGC:      make(chan struct{}),
	}
	go s.evictIdleSessions()
	return s
}

// Shutdown stops the session janitor and the fetch worker pool.
func (s *StatementService) Shutdown() {
	s.gcOnce.Do(func() { close(s.stopGC) })
	s.sessions.Range(func(_ string, sess *statementSession) bool {
		sess.cancel()
		return true
	})
	s.pool.StopAndWait()
}

// Open resets state for a party + date-filter combination, resolves the
// anchor balance, and fetches the first page.
func (s *StatementService) Open(ctx context.Context, req dto.OpenStatementRequest) (*domain.Session, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	party, err := s.partyRepo.FindPartyByID(ctx, req.PartyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidParty, req.PartyID)
		}
		return nil, fmt.Errorf("failed to look up party %s: %w", req.PartyID, err)
	}
	if !party.IsActive {
		return nil, fmt.Errorf("%w: party %s is inactive", apperrors.ErrInvalidParty, req.PartyID)
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = s.cfg.DefaultPageSize
	}

	sessCtx, cancel := context.WithCancel(middleware.WithLogger(context.Background(), logger))
	sess := &statementSession{
		party:  *party,
		ctx:    sessCtx,
		cancel: cancel,
		data: domain.Session{
			SessionID: uuid.NewString(),
			PartyID:   party.PartyID,
			PartyName: party.Name,
			Range:     domain.DateRange{From: req.From, To: req.To},
			PageSize:  pageSize,
			HasMore:   true,
			CreatedAt: time.Now().UTC(),
		},
	}
	sess.data.LastAccessAt = sess.data.CreatedAt

	if err := s.openLocked(ctx, sess); err != nil {
		cancel()
		return nil, err
	}

	s.sessions.Store(sess.data.SessionID, sess)
	logger.Info("Statement session opened",
		slog.String("session_id", sess.data.SessionID),
		slog.String("party_id", party.PartyID),
		slog.Int("first_page_entries", len(sess.data.Entries)))
	return sess.snapshot(), nil
}

// openLocked resolves the anchor and loads page one into sess. The caller
// must be the only goroutine holding the session.
func (s *StatementService) openLocked(ctx context.Context, sess *statementSession) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	anchor, err := s.resolveAnchorWithRetry(ctx, sess.party)
	if err != nil {
		logger.Error("Failed to resolve anchor balance",
			slog.String("party_id", sess.party.PartyID), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", apperrors.ErrAnchorUnavailable, err)
	}

	sess.data.AnchorBalance = anchor
	sess.data.CarriedBalance = anchor
	sess.data.Cursor = nil
	sess.data.HasMore = true
	sess.data.Entries = nil
	sess.data.ErrMessage = ""
	sess.data.IsLoadingFirstPage = true

	page, err := s.fetchPageWithRetry(sess.ctx, sess.party, sess.data.Range, nil, anchor, sess.data.PageSize)
	sess.data.IsLoadingFirstPage = false
	if err != nil {
		// The session stays usable: the anchor is valid and the cursor is
		// untouched, so a LoadMore retries page one idempotently.
		sess.data.ErrMessage = err.Error()
		logger.Warn("First statement page failed",
			slog.String("party_id", sess.party.PartyID), slog.String("error", err.Error()))
		return nil
	}

	s.applyPage(sess, page)

	// Locally queued, not-yet-synced events are prepended to the first page
	// only. They are display-only: no balanceAfter, excluded from the fold.
	pending, err := s.pendingEntries(sess.ctx, sess.party)
	if err != nil {
		logger.Warn("Failed to load pending entries", slog.String("error", err.Error()))
	} else if len(pending) > 0 {
		sess.data.Entries = append(pending, sess.data.Entries...)
	}
	return nil
}

// Get returns the current read-only session state.
func (s *StatementService) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, ok := s.sessions.Load(sessionID)
	if !ok {
		return nil, apperrors.NewNotFoundError("statement session " + sessionID + " not found")
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.data.LastAccessAt = time.Now().UTC()
	return sess.snapshot(), nil
}

// LoadMore fetches the next older page. A call while another fetch is in
// flight, or after the history is exhausted, returns the current state
// without doing anything.
func (s *StatementService) LoadMore(ctx context.Context, sessionID string) (*domain.Session, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	sess, ok := s.sessions.Load(sessionID)
	if !ok {
		return nil, apperrors.NewNotFoundError("statement session " + sessionID + " not found")
	}

	sess.mu.Lock()
	sess.data.LastAccessAt = time.Now().UTC()
	if sess.loading || !sess.data.HasMore {
		if sess.loading {
			logger.Debug("Ignoring page request",
				slog.String("session_id", sessionID), slog.String("reason", apperrors.ErrLoadInFlight.Error()))
		}
		snap := sess.snapshot()
		sess.mu.Unlock()
		return snap, nil
	}
	sess.loading = true
	firstPage := len(sess.data.Entries) == 0 && sess.data.Cursor == nil
	if firstPage {
		sess.data.IsLoadingFirstPage = true
	} else {
		sess.data.IsLoadingMore = true
	}
	generation := sess.generation
	party := sess.party
	rng := sess.data.Range
	cursor := sess.data.Cursor
	carried := sess.data.CarriedBalance
	pageSize := sess.data.PageSize
	fetchCtx := sess.ctx
	sess.mu.Unlock()

	page, err := s.fetchPageWithRetry(fetchCtx, party, rng, cursor, carried, pageSize)

	// When this call retried page one after a failed open, the pending
	// prepend that normally happens during open still has to happen here.
	var pending []domain.StatementEntry
	if err == nil && firstPage {
		queued, pendErr := s.pendingEntries(fetchCtx, party)
		if pendErr != nil {
			logger.Warn("Failed to load pending entries",
				slog.String("session_id", sessionID), slog.String("error", pendErr.Error()))
		} else {
			pending = queued
		}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.loading = false
	sess.data.IsLoadingFirstPage = false
	sess.data.IsLoadingMore = false

	if sess.generation != generation {
		// The session was refreshed or closed while we were fetching; the
		// result belongs to a configuration that no longer exists.
		logger.Debug("Discarding stale page result",
			slog.String("session_id", sessionID), slog.String("reason", apperrors.ErrStaleSession.Error()))
		return sess.snapshot(), nil
	}

	if err != nil {
		// Cursor and carried balance are untouched, so the caller may retry.
		sess.data.ErrMessage = err.Error()
		logger.Warn("Statement page failed",
			slog.String("session_id", sessionID), slog.String("error", err.Error()))
		return sess.snapshot(), nil
	}

	sess.data.ErrMessage = ""
	s.applyPage(sess, page)
	if len(pending) > 0 {
		sess.data.Entries = append(pending, sess.data.Entries...)
	}
	logger.Info("Statement page appended",
		slog.String("session_id", sessionID),
		slog.Int("entries", len(page.entries)),
		slog.Bool("has_more", sess.data.HasMore))
	return sess.snapshot(), nil
}

// Refresh discards all accumulated state and re-opens the session with the
// same parameters. The old cursor and balance are never mixed with the new.
func (s *StatementService) Refresh(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, ok := s.sessions.Load(sessionID)
	if !ok {
		return nil, apperrors.NewNotFoundError("statement session " + sessionID + " not found")
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	// Cancel whatever the previous configuration still has in flight.
	sess.cancel()
	sess.generation++
	sess.loading = false
	sess.ctx, sess.cancel = context.WithCancel(
		middleware.WithLogger(context.Background(), middleware.GetLoggerFromCtx(ctx)))
	sess.data.LastAccessAt = time.Now().UTC()

	if err := s.openLocked(ctx, sess); err != nil {
		return nil, err
	}
	return sess.snapshot(), nil
}

// Close tears the session down and cancels any in-flight fetch.
func (s *StatementService) Close(ctx context.Context, sessionID string) error {
	sess, ok := s.sessions.LoadAndDelete(sessionID)
	if !ok {
		return apperrors.NewNotFoundError("statement session " + sessionID + " not found")
	}
	sess.mu.Lock()
	sess.generation++
	sess.cancel()
	sess.mu.Unlock()
	return nil
}

// pageResult is one atomic unit of statement work: either the whole page
// applies or none of it does.
type pageResult struct {
	entries     []domain.StatementEntry
	outgoing    decimal.Decimal
	lastRecord  *domain.SourceRecord
	pageWasFull bool
}

// applyPage advances cursor, carried balance, and hasMore from a fetched
// page. hasMore is false once a merged page comes back short: no source has
// records below the requested window.
func (s *StatementService) applyPage(sess *statementSession, page *pageResult) {
	sess.data.Entries = append(sess.data.Entries, page.entries...)
	sess.data.CarriedBalance = page.outgoing
	sess.data.HasMore = page.pageWasFull
	if page.lastRecord != nil {
		sess.data.Cursor = &domain.Cursor{
			OccurredAt: page.lastRecord.OccurredAt,
			ID:         page.lastRecord.ID,
		}
	}
}

// fetchPageWithRetry wraps fetchPage with the controller-boundary policy:
// explicit timeout per attempt plus a single retry with backoff.
func (s *StatementService) fetchPageWithRetry(ctx context.Context, party domain.Party, rng domain.DateRange, cursor *domain.Cursor, incoming decimal.Decimal, pageSize int) (*pageResult, error) {
	page, err := s.fetchPage(ctx, party, rng, cursor, incoming, pageSize)
	if err == nil || ctx.Err() != nil {
		return page, err
	}

	select {
	case <-time.After(s.cfg.PageRetryBackoff):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.fetchPage(ctx, party, rng, cursor, incoming, pageSize)
}

// fetchPage runs the per-kind source queries concurrently, interleaves the
// results, reconstructs balances, and resolves display names. All sources
// share one global cursor: each re-offers everything strictly below the last
// consumed record, so rows cut off by the merge truncation reappear on the
// next page.
func (s *StatementService) fetchPage(ctx context.Context, party domain.Party, rng domain.DateRange, cursor *domain.Cursor, incoming decimal.Decimal, pageSize int) (*pageResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.PageFetchTimeout)
	defer cancel()

	perKind := make([][]domain.SourceRecord, len(s.sources))
	fetchErrs := make([]error, len(s.sources))

	group := s.pool.NewGroupContext(ctx)
	groupCtx := group.Context()
	for i, src := range s.sources {
		i, src := i, src
		group.Submit(func() {
			if err := groupCtx.Err(); err != nil {
				return
			}
			perKind[i], _, fetchErrs[i] = src.Fetch(groupCtx, party, rng, cursor, pageSize)
		})
	}
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSourceFetch, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, err := range fetchErrs {
		if err != nil {
			return nil, fmt.Errorf("%w: %s source: %v", apperrors.ErrSourceFetch, s.sources[i].Kind(), err)
		}
	}

	merged := mergeRecords(perKind, pageSize)

	entries, outgoing, err := reconstructEntries(party.Kind, merged, incoming)
	if err != nil {
		return nil, err
	}

	if err := s.resolveNames(ctx, merged, entries); err != nil {
		// Name lookups are auxiliary reads, but a page is all-or-nothing:
		// failing here keeps cursor and balance untouched for the retry.
		return nil, fmt.Errorf("%w: name resolution: %v", apperrors.ErrSourceFetch, err)
	}

	page := &pageResult{
		entries:     entries,
		outgoing:    outgoing,
		pageWasFull: len(merged) == pageSize,
	}
	if len(merged) > 0 {
		last := merged[len(merged)-1]
		page.lastRecord = &last
	}
	return page, nil
}

// resolveNames batch-resolves safe and user display names for a page and
// writes them onto the entries. The two lookups run concurrently.
func (s *StatementService) resolveNames(ctx context.Context, records []domain.SourceRecord, entries []domain.StatementEntry) error {
	safeIDs := make([]string, 0, len(records))
	userIDs := make([]string, 0, len(records))
	seenSafe := make(map[string]struct{})
	seenUser := make(map[string]struct{})
	for _, rec := range records {
		if rec.SafeID != "" {
			if _, ok := seenSafe[rec.SafeID]; !ok {
				seenSafe[rec.SafeID] = struct{}{}
				safeIDs = append(safeIDs, rec.SafeID)
			}
		}
		if rec.CreatedBy != "" {
			if _, ok := seenUser[rec.CreatedBy]; !ok {
				seenUser[rec.CreatedBy] = struct{}{}
				userIDs = append(userIDs, rec.CreatedBy)
			}
		}
	}
	if len(safeIDs) == 0 && len(userIDs) == 0 {
		return nil
	}

	var (
		safeNames map[string]string
		userNames map[string]string
		safeErr   error
		userErr   error
	)
	group := s.pool.NewGroupContext(ctx)
	groupCtx := group.Context()
	if len(safeIDs) > 0 {
		group.Submit(func() {
			safeNames, safeErr = s.nameRepo.ResolveSafeNames(groupCtx, safeIDs)
		})
	}
	if len(userIDs) > 0 {
		group.Submit(func() {
			userNames, userErr = s.nameRepo.ResolveUserNames(groupCtx, userIDs)
		})
	}
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		return err
	}
	if safeErr != nil {
		return safeErr
	}
	if userErr != nil {
		return userErr
	}

	for i := range entries {
		rec := records[i]
		if name, ok := safeNames[rec.SafeID]; ok {
			entries[i].SafeName = name
		}
		if name, ok := userNames[rec.CreatedBy]; ok {
			entries[i].CounterpartyName = name
		}
	}
	return nil
}

// resolveAnchorWithRetry applies the same timeout + single retry policy to
// the anchor aggregation.
func (s *StatementService) resolveAnchorWithRetry(ctx context.Context, party domain.Party) (decimal.Decimal, error) {
	attempt := func() (decimal.Decimal, error) {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.PageFetchTimeout)
		defer cancel()
		return s.anchorRepo.ResolveAnchor(ctx, party)
	}

	anchor, err := attempt()
	if err == nil || ctx.Err() != nil {
		return anchor, err
	}
	select {
	case <-time.After(s.cfg.PageRetryBackoff):
	case <-ctx.Done():
		return decimal.Zero, ctx.Err()
	}
	return attempt()
}

// pendingEntries maps the offline queue's not-yet-synced events for the
// party into display-only entries.
func (s *StatementService) pendingEntries(ctx context.Context, party domain.Party) ([]domain.StatementEntry, error) {
	records, err := s.pendingRepo.ListPendingByParty(ctx, party.PartyID)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.StatementEntry, 0, len(records))
	for _, rec := range records {
		net, isDebit, err := ledger.NetEffect(party.Kind, rec)
		if err != nil {
			return nil, err
		}
		entries = append(entries, domain.StatementEntry{
			EntryID:     rec.ID,
			Kind:        rec.Kind,
			OccurredAt:  rec.OccurredAt,
			Description: rec.Description,
			GrossAmount: rec.Amount,
			PaidAmount:  rec.PaidAmount,
			NetEffect:   net,
			IsDebit:     isDebit,
			Direction:   rec.Direction,
			Notes:       rec.Notes,
			Pending:     true,
		})
	}
	return entries, nil
}

// evictIdleSessions drops sessions that have not been touched within the
// configured TTL.
func (s *StatementService) evictIdleSessions() {
	interval := s.cfg.SessionTTL / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopGC:
			return
		case <-ticker.C:
			deadline := time.Now().UTC().Add(-s.cfg.SessionTTL)
			s.sessions.Range(func(id string, sess *statementSession) bool {
				sess.mu.Lock()
				idle := sess.data.LastAccessAt.Before(deadline) && !sess.loading
				if idle {
					sess.generation++
					sess.cancel()
				}
				sess.mu.Unlock()
				if idle {
					s.sessions.Delete(id)
				}
				return true
			})
		}
	}
}
