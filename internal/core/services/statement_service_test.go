package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/tallybook/statement_backend/internal/apperrors"
	"github.com/tallybook/statement_backend/internal/core/domain"
	portsrepo "github.com/tallybook/statement_backend/internal/core/ports/repositories"
	"github.com/tallybook/statement_backend/internal/core/services"
	"github.com/tallybook/statement_backend/internal/dto"
)

// --- Mocks ---

type MockPartyReader struct {
	mock.Mock
}

var _ portsrepo.PartyRepositoryFacade = (*MockPartyReader)(nil)

func (m *MockPartyReader) FindPartyByID(ctx context.Context, partyID string) (*domain.Party, error) {
	args := m.Called(ctx, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Party), args.Error(1)
}

func (m *MockPartyReader) SaveParty(ctx context.Context, party domain.Party) error {
	args := m.Called(ctx, party)
	return args.Error(0)
}

func (m *MockPartyReader) ListParties(ctx context.Context, kind domain.PartyKind, limit int, nextToken *string) ([]domain.Party, *string, error) {
	args := m.Called(ctx, kind, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.Party), args.Get(1).(*string), args.Error(2)
}

type MockAnchorReader struct {
	mock.Mock
}

func (m *MockAnchorReader) ResolveAnchor(ctx context.Context, party domain.Party) (decimal.Decimal, error) {
	args := m.Called(ctx, party)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockNameResolver struct {
	mock.Mock
}

func (m *MockNameResolver) ResolveSafeNames(ctx context.Context, safeIDs []string) (map[string]string, error) {
	args := m.Called(ctx, safeIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockNameResolver) ResolveUserNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

type MockPendingReader struct {
	mock.Mock
}

func (m *MockPendingReader) ListPendingByParty(ctx context.Context, partyID string) ([]domain.SourceRecord, error) {
	args := m.Called(ctx, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SourceRecord), args.Error(1)
}

type MockSourceFetcher struct {
	mock.Mock
	kind domain.EntryKind
}

func (m *MockSourceFetcher) Kind() domain.EntryKind {
	return m.kind
}

func (m *MockSourceFetcher) Fetch(ctx context.Context, party domain.Party, rng domain.DateRange, cursor *domain.Cursor, pageSize int) ([]domain.SourceRecord, bool, error) {
	args := m.Called(ctx, party, rng, cursor, pageSize)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]domain.SourceRecord), args.Bool(1), args.Error(2)
}

// --- Test Suite Setup ---

type StatementServiceTestSuite struct {
	suite.Suite
	mockParty   *MockPartyReader
	mockAnchor  *MockAnchorReader
	mockNames   *MockNameResolver
	mockPending *MockPendingReader
	mockInvoice *MockSourceFetcher
	mockPayment *MockSourceFetcher
	service     *services.StatementService

	party domain.Party
	base  time.Time
}

func (suite *StatementServiceTestSuite) SetupTest() {
	suite.mockParty = new(MockPartyReader)
	suite.mockAnchor = new(MockAnchorReader)
	suite.mockNames = new(MockNameResolver)
	suite.mockPending = new(MockPendingReader)
	suite.mockInvoice = &MockSourceFetcher{kind: domain.KindInvoice}
	suite.mockPayment = &MockSourceFetcher{kind: domain.KindPayment}

	suite.service = services.NewStatementService(portsrepo.RepositoryProvider{
		PartyRepo:   suite.mockParty,
		AnchorRepo:  suite.mockAnchor,
		NameRepo:    suite.mockNames,
		PendingRepo: suite.mockPending,
		SourceRepos: []portsrepo.SourceFetcher{suite.mockInvoice, suite.mockPayment},
	}, services.StatementConfig{
		DefaultPageSize:  2,
		SessionTTL:       time.Minute,
		PageFetchTimeout: time.Second,
		PageRetryBackoff: time.Millisecond,
	})

	suite.party = domain.Party{
		PartyID:      uuid.NewString(),
		Kind:         domain.PartyCustomer,
		Name:         "Acme Retail",
		CurrencyCode: "USD",
		IsActive:     true,
	}
	suite.base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

func (suite *StatementServiceTestSuite) TearDownTest() {
	suite.service.Shutdown()
}

func (suite *StatementServiceTestSuite) record(kind domain.EntryKind, id string, offset time.Duration, amount int64) domain.SourceRecord {
	return domain.SourceRecord{
		ID:         id,
		Kind:       kind,
		OccurredAt: suite.base.Add(offset),
		Amount:     decimal.NewFromInt(amount),
	}
}

func (suite *StatementServiceTestSuite) expectParty() {
	suite.mockParty.On("FindPartyByID", mock.Anything, suite.party.PartyID).Return(&suite.party, nil)
}

func (suite *StatementServiceTestSuite) expectAnchor(balance int64) {
	suite.mockAnchor.On("ResolveAnchor", mock.Anything, suite.party).Return(decimal.NewFromInt(balance), nil)
}

func (suite *StatementServiceTestSuite) expectNoPending() {
	suite.mockPending.On("ListPendingByParty", mock.Anything, suite.party.PartyID).Return([]domain.SourceRecord{}, nil)
}

func (suite *StatementServiceTestSuite) expectEmptySource(src *MockSourceFetcher) {
	src.On("Fetch", mock.Anything, suite.party, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.SourceRecord{}, true, nil)
}

// --- Test Cases ---

func (suite *StatementServiceTestSuite) TestOpen_ReconstructsFirstPage() {
	suite.expectParty()
	suite.expectAnchor(0)
	suite.expectNoPending()

	// Chronologically invoice 100 then payment 100: the receivable walks
	// 100 -> 0, so the anchor is 0.
	suite.mockInvoice.On("Fetch", mock.Anything, suite.party, mock.Anything, (*domain.Cursor)(nil), 2).
		Return([]domain.SourceRecord{suite.record(domain.KindInvoice, "inv-1", 0, 100)}, true, nil)
	suite.mockPayment.On("Fetch", mock.Anything, suite.party, mock.Anything, (*domain.Cursor)(nil), 2).
		Return([]domain.SourceRecord{suite.record(domain.KindPayment, "pay-1", time.Hour, 100)}, true, nil)

	sess, err := suite.service.Open(context.Background(), dto.OpenStatementRequest{PartyID: suite.party.PartyID})

	suite.Require().NoError(err)
	suite.Require().NotNil(sess)
	suite.NotEmpty(sess.SessionID)
	suite.Equal(suite.party.Name, sess.PartyName)
	suite.Require().Len(sess.Entries, 2)

	// Anchor 0: the payment undid the invoice exactly.
	suite.Equal("pay-1", sess.Entries[0].EntryID)
	suite.True(sess.Entries[0].BalanceAfter.Equal(decimal.Zero))
	suite.Equal("inv-1", sess.Entries[1].EntryID)
	suite.True(sess.Entries[1].BalanceAfter.Equal(decimal.NewFromInt(100)))

	// Both sources produced a full merged page, so more history may exist.
	suite.True(sess.HasMore)
	suite.Empty(sess.ErrMessage)
}

func (suite *StatementServiceTestSuite) TestOpen_UnknownPartyFails() {
	partyID := uuid.NewString()
	suite.mockParty.On("FindPartyByID", mock.Anything, partyID).Return(nil, apperrors.ErrNotFound)

	sess, err := suite.service.Open(context.Background(), dto.OpenStatementRequest{PartyID: partyID})

	suite.Nil(sess)
	suite.ErrorIs(err, apperrors.ErrInvalidParty)
	suite.mockAnchor.AssertNotCalled(suite.T(), "ResolveAnchor", mock.Anything, mock.Anything)
}

func (suite *StatementServiceTestSuite) TestOpen_InactivePartyFails() {
	inactive := suite.party
	inactive.IsActive = false
	suite.mockParty.On("FindPartyByID", mock.Anything, inactive.PartyID).Return(&inactive, nil)

	sess, err := suite.service.Open(context.Background(), dto.OpenStatementRequest{PartyID: inactive.PartyID})

	suite.Nil(sess)
	suite.ErrorIs(err, apperrors.ErrInvalidParty)
}

func (suite *StatementServiceTestSuite) TestOpen_AnchorFailureIsHard() {
	suite.expectParty()
	// Fails on the first attempt and on the retry.
	suite.mockAnchor.On("ResolveAnchor", mock.Anything, suite.party).
		Return(decimal.Zero, errors.New("aggregate timed out")).Twice()

	sess, err := suite.service.Open(context.Background(), dto.OpenStatementRequest{PartyID: suite.party.PartyID})

	suite.Nil(sess)
	suite.ErrorIs(err, apperrors.ErrAnchorUnavailable)
	suite.mockAnchor.AssertExpectations(suite.T())
}

func (suite *StatementServiceTestSuite) TestOpen_FirstPageFailureKeepsSessionUsable() {
	suite.expectParty()
	suite.expectAnchor(100)
	suite.expectNoPending()

	fetchErr := errors.New("source table unavailable")
	suite.mockInvoice.On("Fetch", mock.Anything, suite.party, mock.Anything, (*domain.Cursor)(nil), 2).
		Return(nil, false, fetchErr).Twice()
	suite.expectEmptySource(suite.mockPayment)

	sess, err := suite.service.Open(context.Background(), dto.OpenStatementRequest{PartyID: suite.party.PartyID})

	// The open itself succeeds: the anchor is resolved, only the page failed.
	suite.Require().NoError(err)
	suite.Require().NotNil(sess)
	suite.Empty(sess.Entries)
	suite.NotEmpty(sess.ErrMessage)

	// A later LoadMore re-runs page one from the same (nil) cursor.
	suite.mockInvoice.On("Fetch", mock.Anything, suite.party, mock.Anything, (*domain.Cursor)(nil), 2).
		Return([]domain.SourceRecord{suite.record(domain.KindInvoice, "inv-1", 0, 100)}, true, nil)

	retried, err := suite.service.LoadMore(context.Background(), sess.SessionID)
	suite.Require().NoError(err)
	suite.Require().Len(retried.Entries, 1)
	suite.Equal("inv-1", retried.Entries[0].EntryID)
	suite.True(retried.Entries[0].BalanceAfter.Equal(decimal.NewFromInt(100)))
	suite.Empty(retried.ErrMessage)
}

func (suite *StatementServiceTestSuite) TestLoadMore_AdvancesCursorWithoutLossOrDuplication() {
	suite.expectParty()
	suite.expectAnchor(60)
	suite.expectNoPending()
	suite.expectEmptySource(suite.mockPayment)

	older := suite.record(domain.KindInvoice, "inv-1", 0, 10)
	mid := suite.record(domain.KindInvoice, "inv-2", time.Hour, 20)
	newest := suite.record(domain.KindInvoice, "inv-3", 2*time.Hour, 30)

	suite.mockInvoice.On("Fetch", mock.Anything, suite.party, mock.Anything, (*domain.Cursor)(nil), 2).
		Return([]domain.SourceRecord{newest, mid}, false, nil)

	sess, err := suite.service.Open(context.Background(), dto.OpenStatementRequest{PartyID: suite.party.PartyID})
	suite.Require().NoError(err)
	suite.Require().Len(sess.Entries, 2)
	suite.True(sess.HasMore)

	// The next page must start strictly below the last consumed record.
	suite.mockInvoice.On("Fetch", mock.Anything, suite.party, mock.Anything,
		&domain.Cursor{OccurredAt: mid.OccurredAt, ID: mid.ID}, 2).
		Return([]domain.SourceRecord{older}, true, nil)

	next, err := suite.service.LoadMore(context.Background(), sess.SessionID)
	suite.Require().NoError(err)
	suite.Require().Len(next.Entries, 3)

	seen := map[string]int{}
	for _, e := range next.Entries {
		seen[e.EntryID]++
	}
	suite.Equal(map[string]int{"inv-3": 1, "inv-2": 1, "inv-1": 1}, seen)

	// The balance fold is continuous across the page boundary.
	suite.True(next.Entries[0].BalanceAfter.Equal(decimal.NewFromInt(60)))
	suite.True(next.Entries[1].BalanceAfter.Equal(decimal.NewFromInt(30)))
	suite.True(next.Entries[2].BalanceAfter.Equal(decimal.NewFromInt(10)))

	// A short merged page means the history is exhausted.
	suite.False(next.HasMore)
}

func (suite *StatementServiceTestSuite) TestLoadMore_AfterExhaustionIsNoOp() {
	suite.expectParty()
	suite.expectAnchor(10)
	suite.expectNoPending()
	suite.expectEmptySource(suite.mockPayment)

	suite.mockInvoice.On("Fetch", mock.Anything, suite.party, mock.Anything, (*domain.Cursor)(nil), 2).
		Return([]domain.SourceRecord{suite.record(domain.KindInvoice, "inv-1", 0, 10)}, true, nil).Once()

	sess, err := suite.service.Open(context.Background(), dto.OpenStatementRequest{PartyID: suite.party.PartyID})
	suite.Require().NoError(err)
	suite.False(sess.HasMore)

	again, err := suite.service.LoadMore(context.Background(), sess.SessionID)
	suite.Require().NoError(err)
	suite.Len(again.Entries, 1)
	suite.mockInvoice.AssertNumberOfCalls(suite.T(), "Fetch", 1)
}

func (suite *StatementServiceTestSuite) TestLoadMore_FailureLeavesCursorForRetry() {
	suite.expectParty()
	suite.expectAnchor(60)
	suite.expectNoPending()
	suite.expectEmptySource(suite.mockPayment)

	newest := suite.record(domain.KindInvoice, "inv-3", 2*time.Hour, 30)
	mid := suite.record(domain.KindInvoice, "inv-2", time.Hour, 20)
	older := suite.record(domain.KindInvoice, "inv-1", 0, 10)
	cursor := &domain.Cursor{OccurredAt: mid.OccurredAt, ID: mid.ID}

	suite.mockInvoice.On("Fetch", mock.Anything, suite.party, mock.Anything, (*domain.Cursor)(nil), 2).
		Return([]domain.SourceRecord{newest, mid}, false, nil)

	sess, err := suite.service.Open(context.Background(), dto.OpenStatementRequest{PartyID: suite.party.PartyID})
	suite.Require().NoError(err)
	suite.True(sess.HasMore)

	// Both attempts of the next page fail.
	suite.mockInvoice.On("Fetch", mock.Anything, suite.party, mock.Anything, cursor, 2).
		Return(nil, false, errors.New("connection reset")).Twice()

	failed, err := suite.service.LoadMore(context.Background(), sess.SessionID)
	suite.Require().NoError(err)
	suite.NotEmpty(failed.ErrMessage)
	suite.Len(failed.Entries, 2)
	suite.True(failed.HasMore)

	// The retry re-runs the exact same window and succeeds.
	suite.mockInvoice.On("Fetch", mock.Anything, suite.party, mock.Anything, cursor, 2).
		Return([]domain.SourceRecord{older}, true, nil)

	retried, err := suite.service.LoadMore(context.Background(), sess.SessionID)
	suite.Require().NoError(err)
	suite.Require().Len(retried.Entries, 3)
	suite.Empty(retried.ErrMessage)
	suite.True(retried.Entries[2].BalanceAfter.Equal(decimal.NewFromInt(10)))
}

func (suite *StatementServiceTestSuite) TestLoadMore_WhileFetchInFlightIsNoOp() {
	suite.expectParty()
	suite.expectAnchor(60)
	suite.expectNoPending()
	suite.expectEmptySource(suite.mockPayment)

	newest := suite.record(domain.KindInvoice, "inv-3", 2*time.Hour, 30)
	mid := suite.record(domain.KindInvoice, "inv-2", time.Hour, 20)
	older := suite.record(domain.KindInvoice, "inv-1", 0, 10)
	cursor := &domain.Cursor{OccurredAt: mid.OccurredAt, ID: mid.ID}

	suite.mockInvoice.On("Fetch", mock.Anything, suite.party, mock.Anything, (*domain.Cursor)(nil), 2).
		Return([]domain.SourceRecord{newest, mid}, false, nil)

	sess, err := suite.service.Open(context.Background(), dto.OpenStatementRequest{PartyID: suite.party.PartyID})
	suite.Require().NoError(err)
	suite.True(sess.HasMore)

	started := make(chan struct{})
	release := make(chan struct{})
	var begin, finish sync.Once
	unblock := func() { finish.Do(func() { close(release) }) }
	defer unblock()

	suite.mockInvoice.On("Fetch", mock.Anything, suite.party, mock.Anything, cursor, 2).
		Run(func(mock.Arguments) {
			begin.Do(func() { close(started) })
			<-release
		}).
		Return([]domain.SourceRecord{older}, true, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = suite.service.LoadMore(context.Background(), sess.SessionID)
	}()
	<-started

	// A call while a fetch is outstanding returns the current state
	// immediately without starting a second fetch.
	snap, err := suite.service.LoadMore(context.Background(), sess.SessionID)
	suite.Require().NoError(err)
	suite.Len(snap.Entries, 2)
	suite.True(snap.IsLoadingMore)
	suite.mockInvoice.AssertNumberOfCalls(suite.T(), "Fetch", 2)

	unblock()
	<-done

	final, err := suite.service.Get(context.Background(), sess.SessionID)
	suite.Require().NoError(err)
	suite.Len(final.Entries, 3)
	suite.False(final.IsLoadingMore)
}

func (suite *StatementServiceTestSuite) TestRefresh_DiscardsInFlightPage() {
	suite.expectParty()
	suite.expectAnchor(60)
	suite.expectNoPending()
	suite.expectEmptySource(suite.mockPayment)

	newest := suite.record(domain.KindInvoice, "inv-3", 2*time.Hour, 30)
	mid := suite.record(domain.KindInvoice, "inv-2", time.Hour, 20)
	older := suite.record(domain.KindInvoice, "inv-1", 0, 10)
	cursor := &domain.Cursor{OccurredAt: mid.OccurredAt, ID: mid.ID}

	suite.mockInvoice.On("Fetch", mock.Anything, suite.party, mock.Anything, (*domain.Cursor)(nil), 2).
		Return([]domain.SourceRecord{newest, mid}, false, nil)

	sess, err := suite.service.Open(context.Background(), dto.OpenStatementRequest{PartyID: suite.party.PartyID})
	suite.Require().NoError(err)
	suite.Require().Len(sess.Entries, 2)

	started := make(chan struct{})
	release := make(chan struct{})
	var begin, finish sync.Once
	unblock := func() { finish.Do(func() { close(release) }) }
	defer unblock()

	suite.mockInvoice.On("Fetch", mock.Anything, suite.party, mock.Anything, cursor, 2).
		Run(func(mock.Arguments) {
			begin.Do(func() { close(started) })
			<-release
		}).
		Return([]domain.SourceRecord{older}, true, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = suite.service.LoadMore(context.Background(), sess.SessionID)
	}()
	<-started

	refreshed, err := suite.service.Refresh(context.Background(), sess.SessionID)
	suite.Require().NoError(err)
	suite.Require().Len(refreshed.Entries, 2)

	unblock()
	<-done

	// The late page was fetched against the pre-refresh cursor and must
	// not be appended to the refreshed state.
	final, err := suite.service.Get(context.Background(), sess.SessionID)
	suite.Require().NoError(err)
	suite.Require().Len(final.Entries, 2)
	for _, entry := range final.Entries {
		suite.NotEqual("inv-1", entry.EntryID)
	}
	suite.True(final.HasMore)
}

func (suite *StatementServiceTestSuite) TestLoadMore_FirstPageRetryPrependsPendingEntries() {
	suite.expectParty()
	suite.expectAnchor(100)
	suite.expectEmptySource(suite.mockPayment)

	queued := suite.record(domain.KindInvoice, "queued-1", 3*time.Hour, 500)
	suite.mockPending.On("ListPendingByParty", mock.Anything, suite.party.PartyID).
		Return([]domain.SourceRecord{queued}, nil)

	suite.mockInvoice.On("Fetch", mock.Anything, suite.party, mock.Anything, (*domain.Cursor)(nil), 2).
		Return(nil, false, errors.New("source table unavailable")).Twice()

	sess, err := suite.service.Open(context.Background(), dto.OpenStatementRequest{PartyID: suite.party.PartyID})
	suite.Require().NoError(err)
	suite.Empty(sess.Entries)
	suite.NotEmpty(sess.ErrMessage)

	suite.mockInvoice.On("Fetch", mock.Anything, suite.party, mock.Anything, (*domain.Cursor)(nil), 2).
		Return([]domain.SourceRecord{suite.record(domain.KindInvoice, "inv-1", 0, 100)}, true, nil)

	retried, err := suite.service.LoadMore(context.Background(), sess.SessionID)
	suite.Require().NoError(err)
	suite.Require().Len(retried.Entries, 2)

	// The retried first page carries the queued event just like a first
	// page loaded during open: leading, display-only, no balance.
	suite.Equal("queued-1", retried.Entries[0].EntryID)
	suite.True(retried.Entries[0].Pending)
	suite.True(retried.Entries[0].BalanceAfter.IsZero())
	suite.Equal("inv-1", retried.Entries[1].EntryID)
	suite.Empty(retried.ErrMessage)
}

func (suite *StatementServiceTestSuite) TestRefresh_DiscardsAccumulatedState() {
	suite.expectParty()
	suite.expectNoPending()
	suite.expectEmptySource(suite.mockPayment)

	suite.mockAnchor.On("ResolveAnchor", mock.Anything, suite.party).
		Return(decimal.NewFromInt(10), nil).Once()
	suite.mockInvoice.On("Fetch", mock.Anything, suite.party, mock.Anything, (*domain.Cursor)(nil), 2).
		Return([]domain.SourceRecord{suite.record(domain.KindInvoice, "inv-1", 0, 10)}, true, nil)

	sess, err := suite.service.Open(context.Background(), dto.OpenStatementRequest{PartyID: suite.party.PartyID})
	suite.Require().NoError(err)
	suite.Require().Len(sess.Entries, 1)

	// A new invoice landed since; the refreshed anchor reflects it.
	suite.mockAnchor.On("ResolveAnchor", mock.Anything, suite.party).
		Return(decimal.NewFromInt(25), nil).Once()

	refreshed, err := suite.service.Refresh(context.Background(), sess.SessionID)
	suite.Require().NoError(err)
	suite.True(refreshed.AnchorBalance.Equal(decimal.NewFromInt(25)))
	suite.Require().Len(refreshed.Entries, 1)
	suite.True(refreshed.Entries[0].BalanceAfter.Equal(decimal.NewFromInt(25)))
}

func (suite *StatementServiceTestSuite) TestClose_RemovesSession() {
	suite.expectParty()
	suite.expectAnchor(0)
	suite.expectNoPending()
	suite.expectEmptySource(suite.mockInvoice)
	suite.expectEmptySource(suite.mockPayment)

	sess, err := suite.service.Open(context.Background(), dto.OpenStatementRequest{PartyID: suite.party.PartyID})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.Close(context.Background(), sess.SessionID))

	_, err = suite.service.Get(context.Background(), sess.SessionID)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	suite.ErrorIs(suite.service.Close(context.Background(), sess.SessionID), apperrors.ErrNotFound)
}

func (suite *StatementServiceTestSuite) TestOpen_PendingEntriesPrependedDisplayOnly() {
	suite.expectParty()
	suite.expectAnchor(100)
	suite.expectEmptySource(suite.mockPayment)

	suite.mockInvoice.On("Fetch", mock.Anything, suite.party, mock.Anything, (*domain.Cursor)(nil), 2).
		Return([]domain.SourceRecord{suite.record(domain.KindInvoice, "inv-1", 0, 100)}, true, nil)

	pending := suite.record(domain.KindInvoice, "queued-1", 3*time.Hour, 500)
	suite.mockPending.On("ListPendingByParty", mock.Anything, suite.party.PartyID).
		Return([]domain.SourceRecord{pending}, nil)

	sess, err := suite.service.Open(context.Background(), dto.OpenStatementRequest{PartyID: suite.party.PartyID})
	suite.Require().NoError(err)
	suite.Require().Len(sess.Entries, 2)

	// The queued event leads the page but carries no reconstructed balance.
	suite.Equal("queued-1", sess.Entries[0].EntryID)
	suite.True(sess.Entries[0].Pending)
	suite.True(sess.Entries[0].BalanceAfter.IsZero())

	// Committed entries are untouched by the queued one.
	suite.Equal("inv-1", sess.Entries[1].EntryID)
	suite.False(sess.Entries[1].Pending)
	suite.True(sess.Entries[1].BalanceAfter.Equal(decimal.NewFromInt(100)))
}

func (suite *StatementServiceTestSuite) TestFetch_ResolvesDisplayNames() {
	suite.expectParty()
	suite.expectAnchor(50)
	suite.expectNoPending()
	suite.expectEmptySource(suite.mockPayment)

	withSafe := suite.record(domain.KindInvoice, "inv-1", 0, 50)
	withSafe.SafeID = "safe-9"
	withSafe.CreatedBy = "user-7"
	suite.mockInvoice.On("Fetch", mock.Anything, suite.party, mock.Anything, (*domain.Cursor)(nil), 2).
		Return([]domain.SourceRecord{withSafe}, true, nil)

	suite.mockNames.On("ResolveSafeNames", mock.Anything, []string{"safe-9"}).
		Return(map[string]string{"safe-9": "Main Register"}, nil)
	suite.mockNames.On("ResolveUserNames", mock.Anything, []string{"user-7"}).
		Return(map[string]string{"user-7": "Dana"}, nil)

	sess, err := suite.service.Open(context.Background(), dto.OpenStatementRequest{PartyID: suite.party.PartyID})
	suite.Require().NoError(err)
	suite.Require().Len(sess.Entries, 1)
	suite.Equal("Main Register", sess.Entries[0].SafeName)
	suite.Equal("Dana", sess.Entries[0].CounterpartyName)
}

func TestStatementServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StatementServiceTestSuite))
}
