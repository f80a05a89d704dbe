package service

import (
	"context"

	"beansbot/events"
	"beansbot/models"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByNick(ctx context.Context, nick string) (*models.Account, error) {
	args := m.Called(ctx, nick)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetBalance(ctx context.Context, nick string) (int64, error) {
	args := m.Called(ctx, nick)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) CreditBalance(ctx context.Context, nick string, amount int64) error {
	args := m.Called(ctx, nick, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) DebitBalance(ctx context.Context, nick string, amount int64) error {
	args := m.Called(ctx, nick, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) TotalInCirculation(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) TopN(ctx context.Context, n int) ([]*models.Account, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

// MockLedgerEntryRepository is a mock implementation of LedgerEntryRepository
type MockLedgerEntryRepository struct {
	mock.Mock
}

func (m *MockLedgerEntryRepository) Record(ctx context.Context, entry *models.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerEntryRepository) GetByNick(ctx context.Context, nick string, limit int) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, nick, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

// MockTriviaRepository is a mock implementation of TriviaRepository
type MockTriviaRepository struct {
	mock.Mock
}

func (m *MockTriviaRepository) Create(ctx context.Context, question *models.TriviaQuestion) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockTriviaRepository) GetByID(ctx context.Context, id int64) (*models.TriviaQuestion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TriviaQuestion), args.Error(1)
}

func (m *MockTriviaRepository) GetByAnswer(ctx context.Context, answer string) (*models.TriviaQuestion, error) {
	args := m.Called(ctx, answer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TriviaQuestion), args.Error(1)
}

func (m *MockTriviaRepository) GetLatestByCreator(ctx context.Context, creator string) (*models.TriviaQuestion, error) {
	args := m.Called(ctx, creator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TriviaQuestion), args.Error(1)
}

func (m *MockTriviaRepository) ListRecent(ctx context.Context, n int) ([]*models.TriviaQuestion, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TriviaQuestion), args.Error(1)
}

func (m *MockTriviaRepository) ListByCreator(ctx context.Context, creator string) ([]*models.TriviaQuestion, error) {
	args := m.Called(ctx, creator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TriviaQuestion), args.Error(1)
}

func (m *MockTriviaRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTriviaBetRepository is a mock implementation of TriviaBetRepository
type MockTriviaBetRepository struct {
	mock.Mock
}

func (m *MockTriviaBetRepository) Create(ctx context.Context, bet *models.TriviaBet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockTriviaBetRepository) Get(ctx context.Context, bettor string, triviaID int64) (*models.TriviaBet, error) {
	args := m.Called(ctx, bettor, triviaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TriviaBet), args.Error(1)
}

func (m *MockTriviaBetRepository) ListByTrivia(ctx context.Context, triviaID int64) ([]*models.TriviaBet, error) {
	args := m.Called(ctx, triviaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TriviaBet), args.Error(1)
}

func (m *MockTriviaBetRepository) ListByBettor(ctx context.Context, bettor string) ([]*models.TriviaBet, error) {
	args := m.Called(ctx, bettor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TriviaBet), args.Error(1)
}

func (m *MockTriviaBetRepository) ListRecent(ctx context.Context, n int) ([]*models.TriviaBet, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TriviaBet), args.Error(1)
}

func (m *MockTriviaBetRepository) Delete(ctx context.Context, bettor string, triviaID int64) error {
	args := m.Called(ctx, bettor, triviaID)
	return args.Error(0)
}

func (m *MockTriviaBetRepository) DeleteByTrivia(ctx context.Context, triviaID int64) error {
	args := m.Called(ctx, triviaID)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// noopPublisher swallows events for tests that don't assert on them
type noopPublisher struct{}

func (noopPublisher) Publish(events.Event) {}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock

	accountRepo     AccountRepository
	ledgerEntryRepo LedgerEntryRepository
	triviaRepo      TriviaRepository
	triviaBetRepo   TriviaBetRepository
	eventBus        EventPublisher
}

// SetRepositories wires the repositories the mock getters return. Nil
// entries fall back to fresh mocks so tests only configure what they use.
func (m *MockUnitOfWork) SetRepositories(accountRepo AccountRepository, ledgerEntryRepo LedgerEntryRepository, triviaRepo TriviaRepository, triviaBetRepo TriviaBetRepository) {
	if accountRepo == nil {
		accountRepo = new(MockAccountRepository)
	}
	if ledgerEntryRepo == nil {
		ledgerEntryRepo = new(MockLedgerEntryRepository)
	}
	if triviaRepo == nil {
		triviaRepo = new(MockTriviaRepository)
	}
	if triviaBetRepo == nil {
		triviaBetRepo = new(MockTriviaBetRepository)
	}

	m.accountRepo = accountRepo
	m.ledgerEntryRepo = ledgerEntryRepo
	m.triviaRepo = triviaRepo
	m.triviaBetRepo = triviaBetRepo
	m.eventBus = noopPublisher{}
}

// SetEventBus overrides the default no-op publisher
func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) LedgerEntryRepository() LedgerEntryRepository {
	return m.ledgerEntryRepo
}

func (m *MockUnitOfWork) TriviaRepository() TriviaRepository {
	return m.triviaRepo
}

func (m *MockUnitOfWork) TriviaBetRepository() TriviaBetRepository {
	return m.triviaBetRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (f *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := f.Called()
	return args.Get(0).(UnitOfWork)
}
