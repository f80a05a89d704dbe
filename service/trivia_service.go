package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"beansbot/events"
	"beansbot/models"
	log "github.com/sirupsen/logrus"
)

// answerPattern restricts answers to a single alphanumeric token so the
// implicit channel-wide answer matching stays unambiguous.
var answerPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

type triviaService struct {
	uowFactory UnitOfWorkFactory
	houseNick  string
}

// NewTriviaService creates a new trivia service
func NewTriviaService(uowFactory UnitOfWorkFactory, houseNick string) TriviaService {
	return &triviaService{
		uowFactory: uowFactory,
		houseNick:  strings.ToLower(houseNick),
	}
}

// Add validates and stores a new question. The prize moves from the creator
// to the house in the same transaction that creates the question, so a
// failed insert never strands escrowed beans.
func (s *triviaService) Add(ctx context.Context, creator, question, answer string, prize int64) (*models.TriviaQuestion, error) {
	if prize <= 0 {
		return nil, fmt.Errorf("%w: prize must be positive", ErrInvalidAmount)
	}

	answer = strings.TrimSpace(answer)
	if !answerPattern.MatchString(answer) {
		return nil, fmt.Errorf("%w: answer must be a single alphanumeric word", ErrInvalidAnswer)
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question must not be empty", ErrInvalidAnswer)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	q := &models.TriviaQuestion{
		Creator:  strings.ToLower(creator),
		Question: question,
		Answer:   answer,
		Prize:    prize,
	}
	if err := uow.TriviaRepository().Create(ctx, q); err != nil {
		return nil, err
	}

	_, err := transferFunds(ctx, uow, q.Creator, s.houseNick, prize,
		models.EntryTypeTriviaEscrow, models.EntryTypeTriviaEscrow,
		map[string]any{"trivia_id": q.ID})
	if err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.TriviaCreatedEvent{
		TriviaID: q.ID,
		Creator:  q.Creator,
		Prize:    prize,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return q, nil
}

// Get retrieves a question by id
func (s *triviaService) Get(ctx context.Context, id int64) (*models.TriviaQuestion, error) {
	uow, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	return uow.TriviaRepository().GetByID(ctx, id)
}

// FindByAnswer retrieves the open question the given message text answers.
// Only single-token messages can match; anything else returns nil.
func (s *triviaService) FindByAnswer(ctx context.Context, text string) (*models.TriviaQuestion, error) {
	text = strings.TrimSpace(text)
	if !answerPattern.MatchString(text) {
		return nil, nil
	}

	uow, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	return uow.TriviaRepository().GetByAnswer(ctx, text)
}

// LatestFor retrieves a creator's most recent question
func (s *triviaService) LatestFor(ctx context.Context, creator string) (*models.TriviaQuestion, error) {
	uow, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	return uow.TriviaRepository().GetLatestByCreator(ctx, creator)
}

// ListRecent returns up to n questions, newest first
func (s *triviaService) ListRecent(ctx context.Context, n int) ([]*models.TriviaQuestion, error) {
	uow, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	return uow.TriviaRepository().ListRecent(ctx, n)
}

// ListFor returns a creator's open questions
func (s *triviaService) ListFor(ctx context.Context, creator string) ([]*models.TriviaQuestion, error) {
	uow, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	return uow.TriviaRepository().ListByCreator(ctx, creator)
}

// PlaceBet stakes amount on predictedWinner answering the question. The
// stake moves to the house in the same transaction that records the bet.
func (s *triviaService) PlaceBet(ctx context.Context, bettor string, triviaID int64, predictedWinner string, amount int64) (*models.TriviaBet, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: bet must be positive", ErrInvalidAmount)
	}

	bettor = strings.ToLower(bettor)
	predictedWinner = strings.ToLower(predictedWinner)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	q, err := uow.TriviaRepository().GetByID(ctx, triviaID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, fmt.Errorf("%w: trivia %d", ErrNotFound, triviaID)
	}

	if predictedWinner == q.Creator {
		return nil, fmt.Errorf("%w: cannot bet on %q", ErrBetOnCreator, q.Creator)
	}

	existing, err := uow.TriviaBetRepository().Get(ctx, bettor, triviaID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %q already bet on trivia %d", ErrDuplicateBet, bettor, triviaID)
	}

	_, err = transferFunds(ctx, uow, bettor, s.houseNick, amount,
		models.EntryTypeBetStake, models.EntryTypeBetStake,
		map[string]any{"trivia_id": triviaID})
	if err != nil {
		return nil, err
	}

	bet := &models.TriviaBet{
		Bettor:          bettor,
		TriviaID:        triviaID,
		PredictedWinner: predictedWinner,
		Amount:          amount,
	}
	if err := uow.TriviaBetRepository().Create(ctx, bet); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bet, nil
}

// BetsOn returns all bets on a question
func (s *triviaService) BetsOn(ctx context.Context, triviaID int64) ([]*models.TriviaBet, error) {
	uow, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	return uow.TriviaBetRepository().ListByTrivia(ctx, triviaID)
}

// BetsBy returns all of one bettor's open bets
func (s *triviaService) BetsBy(ctx context.Context, bettor string) ([]*models.TriviaBet, error) {
	uow, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	return uow.TriviaBetRepository().ListByBettor(ctx, bettor)
}

// BetsRecent returns bets on the n most recently created questions
func (s *triviaService) BetsRecent(ctx context.Context, n int) ([]*models.TriviaBet, error) {
	uow, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	return uow.TriviaBetRepository().ListRecent(ctx, n)
}

// Delete removes a question after refunding its bets and prize. Each refund
// commits in its own transaction together with the deletion of its bet row,
// so a retry after a partial failure never refunds twice. A failed refund
// aborts the deletion without reversing refunds already paid.
func (s *triviaService) Delete(ctx context.Context, id int64, requester string) error {
	requester = strings.ToLower(requester)

	q, bets, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if q == nil {
		return fmt.Errorf("%w: trivia %d", ErrNotFound, id)
	}
	if q.Creator != requester {
		return fmt.Errorf("%w: only %q may delete trivia %d", ErrPermissionDenied, q.Creator, id)
	}

	for _, bet := range bets {
		if err := s.refundBet(ctx, bet); err != nil {
			return fmt.Errorf("failed to refund bet by %q on trivia %d: %w", bet.Bettor, id, err)
		}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	_, err = transferFunds(ctx, uow, s.houseNick, q.Creator, q.Prize,
		models.EntryTypeTriviaRefund, models.EntryTypeTriviaRefund,
		map[string]any{"trivia_id": id})
	if err != nil {
		return fmt.Errorf("failed to refund prize for trivia %d: %w", id, err)
	}

	if err := uow.TriviaRepository().Delete(ctx, id); err != nil {
		return err
	}

	uow.EventBus().Publish(events.TriviaResolvedEvent{
		TriviaID: id,
		Prize:    q.Prize,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Resolve settles a question answered by winner: the prize first, then the
// betting pool split among the bettors who picked the winner, proportional
// to their stakes with floor rounding. The house keeps rounding remainders.
func (s *triviaService) Resolve(ctx context.Context, id int64, winner string) (*models.TriviaResult, error) {
	winner = strings.ToLower(winner)

	q, bets, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, fmt.Errorf("%w: trivia %d", ErrNotFound, id)
	}

	// The prize is the question's contract; if the house cannot honor it,
	// the question stays open.
	if err := s.payout(ctx, winner, q.Prize, models.EntryTypeTriviaPrize, id); err != nil {
		if errors.Is(err, ErrInsufficientFunds) {
			return nil, fmt.Errorf("%w: cannot pay the %d bean prize for trivia %d", ErrHouseInsolvent, q.Prize, id)
		}
		return nil, err
	}

	result := &models.TriviaResult{
		Question: q,
		Winner:   winner,
		Prize:    q.Prize,
		Payouts:  make(map[string]int64),
	}

	var winningTotal int64
	for _, bet := range bets {
		result.TotalPool += bet.Amount
		if bet.PredictedWinner == winner {
			winningTotal += bet.Amount
		}
	}

	for _, bet := range bets {
		if bet.PredictedWinner != winner {
			continue
		}

		payout := bet.Payout(winningTotal, result.TotalPool)
		if payout <= 0 {
			continue
		}

		if err := s.payout(ctx, bet.Bettor, payout, models.EntryTypeBetPayout, id); err != nil {
			// Best effort: skip rather than retry, report at the end.
			log.WithFields(log.Fields{
				"triviaID": id,
				"bettor":   bet.Bettor,
				"payout":   payout,
			}).WithError(err).Error("Failed to pay trivia bet winnings")
			result.UnpaidWinners = append(result.UnpaidWinners, bet.Bettor)
			continue
		}
		result.Payouts[bet.Bettor] = payout
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.TriviaBetRepository().DeleteByTrivia(ctx, id); err != nil {
		return nil, err
	}
	if err := uow.TriviaRepository().Delete(ctx, id); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.TriviaResolvedEvent{
		TriviaID: id,
		Winner:   winner,
		Prize:    q.Prize,
		Pool:     result.TotalPool,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

func (s *triviaService) begin(ctx context.Context) (UnitOfWork, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return uow, nil
}

func (s *triviaService) load(ctx context.Context, id int64) (*models.TriviaQuestion, []*models.TriviaBet, error) {
	uow, err := s.begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer uow.Rollback()

	q, err := uow.TriviaRepository().GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if q == nil {
		return nil, nil, nil
	}

	bets, err := uow.TriviaBetRepository().ListByTrivia(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return q, bets, nil
}

// refundBet pays the refund and deletes the bet row in one transaction
func (s *triviaService) refundBet(ctx context.Context, bet *models.TriviaBet) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	_, err := transferFunds(ctx, uow, s.houseNick, bet.Bettor, bet.Amount,
		models.EntryTypeBetRefund, models.EntryTypeBetRefund,
		map[string]any{"trivia_id": bet.TriviaID})
	if err != nil {
		return err
	}

	if err := uow.TriviaBetRepository().Delete(ctx, bet.Bettor, bet.TriviaID); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *triviaService) payout(ctx context.Context, nick string, amount int64, entryType models.EntryType, triviaID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	_, err := transferFunds(ctx, uow, s.houseNick, nick, amount, entryType, entryType,
		map[string]any{"trivia_id": triviaID})
	if err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
