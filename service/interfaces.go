package service

import (
	"context"
	"time"

	"beansbot/events"
	"beansbot/models"
)

// AccountRepository defines the interface for account balance data access
type AccountRepository interface {
	// GetByNick retrieves an account by its lowercased nick, nil if absent
	GetByNick(ctx context.Context, nick string) (*models.Account, error)

	// GetBalance returns an account's balance, 0 for accounts with no record
	GetBalance(ctx context.Context, nick string) (int64, error)

	// CreditBalance adds to an account's balance, creating the account if needed
	CreditBalance(ctx context.Context, nick string, amount int64) error

	// DebitBalance deducts from an account's balance atomically, failing with
	// ErrInsufficientFunds when the balance cannot cover the amount
	DebitBalance(ctx context.Context, nick string, amount int64) error

	// TotalInCirculation returns the sum of all account balances
	TotalInCirculation(ctx context.Context) (int64, error)

	// TopN returns the n richest accounts, balance descending
	TopN(ctx context.Context, n int) ([]*models.Account, error)
}

// LedgerEntryRepository defines the interface for the balance audit trail
type LedgerEntryRepository interface {
	// Record creates a new ledger entry
	Record(ctx context.Context, entry *models.LedgerEntry) error

	// GetByNick returns recent ledger entries for an account
	GetByNick(ctx context.Context, nick string, limit int) ([]*models.LedgerEntry, error)
}

// TriviaRepository defines the interface for trivia question data access
type TriviaRepository interface {
	// Create stores a new question and assigns its id
	Create(ctx context.Context, question *models.TriviaQuestion) error

	// GetByID retrieves a question by id, nil if absent
	GetByID(ctx context.Context, id int64) (*models.TriviaQuestion, error)

	// GetByAnswer retrieves the oldest open question whose answer matches
	// case-insensitively, nil if none
	GetByAnswer(ctx context.Context, answer string) (*models.TriviaQuestion, error)

	// GetLatestByCreator retrieves the creator's most recent question, nil if none
	GetLatestByCreator(ctx context.Context, creator string) (*models.TriviaQuestion, error)

	// ListRecent returns up to n questions, newest first
	ListRecent(ctx context.Context, n int) ([]*models.TriviaQuestion, error)

	// ListByCreator returns all of one creator's open questions, newest first
	ListByCreator(ctx context.Context, creator string) ([]*models.TriviaQuestion, error)

	// Delete removes a question
	Delete(ctx context.Context, id int64) error
}

// TriviaBetRepository defines the interface for trivia side-bet data access
type TriviaBetRepository interface {
	// Create stores a new bet; ErrDuplicateBet if the (bettor, trivia) pair exists
	Create(ctx context.Context, bet *models.TriviaBet) error

	// Get retrieves one bet, nil if absent
	Get(ctx context.Context, bettor string, triviaID int64) (*models.TriviaBet, error)

	// ListByTrivia returns all bets on a question, oldest first
	ListByTrivia(ctx context.Context, triviaID int64) ([]*models.TriviaBet, error)

	// ListByBettor returns all of one bettor's open bets, newest first
	ListByBettor(ctx context.Context, bettor string) ([]*models.TriviaBet, error)

	// ListRecent returns bets on the n most recently created questions
	ListRecent(ctx context.Context, n int) ([]*models.TriviaBet, error)

	// Delete removes one bet
	Delete(ctx context.Context, bettor string, triviaID int64) error

	// DeleteByTrivia removes all bets on a question
	DeleteByTrivia(ctx context.Context, triviaID int64) error
}

// LedgerService is the single owner of balance movement. Every user-facing
// operation (slots, trivia prizes, bet payouts) is expressed as transfers
// against the house account through this interface.
type LedgerService interface {
	// Balance returns an account's balance, 0 for unknown nicks
	Balance(ctx context.Context, nick string) (int64, error)

	// Transfer atomically moves amount from one account to the other.
	// Fails with no mutation on non-positive amounts, self-transfers and
	// insufficient funds. Total circulation is invariant under Transfer.
	Transfer(ctx context.Context, from, to string, amount int64) (*models.TransferResult, error)

	// Mint unconditionally credits an account, increasing total circulation.
	// Permission checks are the caller's responsibility.
	Mint(ctx context.Context, nick string, amount int64) (int64, error)

	// TotalInCirculation returns the sum of all balances
	TotalInCirculation(ctx context.Context) (int64, error)

	// TopN returns the n richest accounts
	TopN(ctx context.Context, n int) ([]*models.Account, error)

	// History returns an account's most recent ledger entries, newest first
	History(ctx context.Context, nick string, limit int) ([]*models.LedgerEntry, error)
}

// SlotsService defines the slot machine operations
type SlotsService interface {
	// Spin plays one round of slots for nick with the given bet
	Spin(ctx context.Context, nick string, bet int64) (*models.SlotsResult, error)

	// MinBet returns the current minimum bet given the house's market share
	MinBet(ctx context.Context) (int64, error)
}

// TriviaService defines the trivia market operations
type TriviaService interface {
	// Add validates and stores a new question, escrowing the prize to the house
	Add(ctx context.Context, creator, question, answer string, prize int64) (*models.TriviaQuestion, error)

	// Get retrieves a question by id
	Get(ctx context.Context, id int64) (*models.TriviaQuestion, error)

	// FindByAnswer retrieves the open question a message text answers, nil if none
	FindByAnswer(ctx context.Context, text string) (*models.TriviaQuestion, error)

	// LatestFor retrieves a creator's most recent question
	LatestFor(ctx context.Context, creator string) (*models.TriviaQuestion, error)

	// ListRecent returns up to n questions, newest first
	ListRecent(ctx context.Context, n int) ([]*models.TriviaQuestion, error)

	// ListFor returns a creator's open questions
	ListFor(ctx context.Context, creator string) ([]*models.TriviaQuestion, error)

	// Delete removes a question after refunding all bets and the prize.
	// Only the creator may delete. A failed refund aborts the deletion;
	// refunds already paid are not reversed.
	Delete(ctx context.Context, id int64, requester string) error

	// PlaceBet stakes amount on predictedWinner answering the question
	PlaceBet(ctx context.Context, bettor string, triviaID int64, predictedWinner string, amount int64) (*models.TriviaBet, error)

	// BetsOn returns all bets on a question
	BetsOn(ctx context.Context, triviaID int64) ([]*models.TriviaBet, error)

	// BetsBy returns all of one bettor's open bets
	BetsBy(ctx context.Context, bettor string) ([]*models.TriviaBet, error)

	// BetsRecent returns bets on the n most recently created questions
	BetsRecent(ctx context.Context, n int) ([]*models.TriviaBet, error)

	// Resolve pays out a question answered by winner and settles its bets
	Resolve(ctx context.Context, id int64, winner string) (*models.TriviaResult, error)
}

// CooldownStore defines the injected per-user slot throttle state
type CooldownStore interface {
	// Evaluate runs the cooldown state machine for one attempted spin and
	// mutates the stored state accordingly
	Evaluate(nick string, bet, minBet int64) CooldownDecision

	// Peek returns a copy of the current state without mutating it
	Peek(nick string) (models.CooldownState, bool)
}

// CooldownDecision is the outcome of one cooldown evaluation
type CooldownDecision struct {
	// Allowed reports whether the spin may proceed
	Allowed bool

	// InWindow reports whether the spin happened inside an active cooldown
	// window (the raised-bet bypass case)
	InWindow bool

	// AccumulatedBet is the bet requirement in force for this spin
	AccumulatedBet int64

	// RequiredBet is the bet that would bypass the cooldown, set on rejection
	RequiredBet int64

	// RetryAfter is how long until the cooldown expires, set on rejection
	RetryAfter time.Duration
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	LedgerEntryRepository() LedgerEntryRepository
	TriviaRepository() TriviaRepository
	TriviaBetRepository() TriviaBetRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
