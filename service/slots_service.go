package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"

	"beansbot/events"
	"beansbot/models"
)

const (
	// slotsBaseMinBet is the minimum bet while the house holds at most 30%
	// of circulation. A richer house lowers the floor.
	slotsBaseMinBet = 3
	// slotsBasePrize is the jackpot for a minimum bet; larger bets scale it
	// proportionally.
	slotsBasePrize = 100
	slotsReelSize  = 3
)

// slotSymbols is the reel alphabet. A spin draws two independent rows of
// three and pays on positional matches between them.
var slotSymbols = []string{"🍒", "🍋", "🍉", "⭐", "🔔", "🍇", "🍊", "🍓", "🍍", "💎"}

type slotsService struct {
	uowFactory UnitOfWorkFactory
	cooldowns  CooldownStore
	eventBus   *events.Bus
	houseNick  string

	rngMu sync.Mutex
	rng   *rand.Rand

	// One in-flight spin per nick. Concurrent spins by the same player
	// would race the cooldown state machine.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewSlotsService creates a new slots service. The rng source is injectable
// so tests can fix the reels.
func NewSlotsService(uowFactory UnitOfWorkFactory, cooldowns CooldownStore, eventBus *events.Bus, houseNick string, src rand.Source) SlotsService {
	return &slotsService{
		uowFactory: uowFactory,
		cooldowns:  cooldowns,
		eventBus:   eventBus,
		houseNick:  strings.ToLower(houseNick),
		rng:        rand.New(src),
		locks:      make(map[string]*sync.Mutex),
	}
}

// MinBet returns the current minimum bet, derived from the house's share of
// total circulation.
func (s *slotsService) MinBet(ctx context.Context) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	houseBalance, err := uow.AccountRepository().GetBalance(ctx, s.houseNick)
	if err != nil {
		return 0, fmt.Errorf("failed to get house balance: %w", err)
	}

	total, err := uow.AccountRepository().TotalInCirculation(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get circulation: %w", err)
	}

	return minBetFor(houseBalance, total), nil
}

// Spin plays one round of slots for the given nick
func (s *slotsService) Spin(ctx context.Context, nick string, bet int64) (*models.SlotsResult, error) {
	nick = strings.ToLower(nick)
	if nick == s.houseNick {
		return nil, ErrSelfTransfer
	}

	lock := s.spinLock(nick)
	lock.Lock()
	defer lock.Unlock()

	houseBalance, userBalance, total, err := s.readBalances(ctx, nick)
	if err != nil {
		return nil, err
	}

	minBet := minBetFor(houseBalance, total)
	if bet < minBet {
		return nil, fmt.Errorf("%w: minimum bet is %d beans", ErrBetTooSmall, minBet)
	}

	maxPrize := ceilDiv(bet*slotsBasePrize, minBet)

	if userBalance < bet {
		return nil, fmt.Errorf("%w: %q has %d, needs %d", ErrInsufficientFunds, nick, userBalance, bet)
	}
	if houseBalance < maxPrize {
		return nil, fmt.Errorf("%w: house cannot cover a %d bean jackpot", ErrHouseInsolvent, maxPrize)
	}

	decision := s.cooldowns.Evaluate(nick, bet, minBet)
	if !decision.Allowed {
		return nil, &CooldownError{
			RequiredBet: decision.RequiredBet,
			RetryAfter:  decision.RetryAfter,
		}
	}

	// The bet changes hands before the reels turn. A lost spin is simply a
	// transfer to the house.
	if err := s.transfer(ctx, nick, s.houseNick, bet, models.EntryTypeSlotsBet, bet, minBet); err != nil {
		return nil, err
	}

	expected := s.draw()
	actual := s.draw()
	matches := countMatches(expected, actual)

	jackpot := maxPrize
	if decision.InWindow && decision.AccumulatedBet > minBet {
		// Escalated stakes inside a cooldown window raise the prize in the
		// same proportion.
		jackpot = ceilDiv(jackpot*decision.AccumulatedBet, minBet)
	}

	result := &models.SlotsResult{
		Expected: expected,
		Actual:   actual,
		Matches:  matches,
		Bet:      bet,
	}
	result.Payout, result.Jackpot = classifySpin(matches, jackpot)

	if result.Payout > 0 {
		err := s.transfer(ctx, s.houseNick, nick, result.Payout, models.EntryTypeSlotsPayout, bet, minBet)
		if err != nil {
			if errors.Is(err, ErrInsufficientFunds) {
				return nil, fmt.Errorf("%w: house cannot pay out %d beans", ErrHouseInsolvent, result.Payout)
			}
			return nil, err
		}
	}

	balance, err := s.balance(ctx, nick)
	if err != nil {
		return nil, err
	}
	result.NewBalance = balance

	if s.eventBus != nil {
		s.eventBus.Emit(ctx, events.SlotsSpinEvent{
			Nick:    nick,
			Bet:     bet,
			Payout:  result.Payout,
			Matches: matches,
			Jackpot: result.Jackpot,
		})
	}

	return result, nil
}

func (s *slotsService) readBalances(ctx context.Context, nick string) (house, user, total int64, err error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	house, err = uow.AccountRepository().GetBalance(ctx, s.houseNick)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get house balance: %w", err)
	}

	user, err = uow.AccountRepository().GetBalance(ctx, nick)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get balance: %w", err)
	}

	total, err = uow.AccountRepository().TotalInCirculation(ctx)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get circulation: %w", err)
	}

	return house, user, total, nil
}

func (s *slotsService) transfer(ctx context.Context, from, to string, amount int64, entryType models.EntryType, bet, minBet int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	metadata := map[string]any{"bet": bet, "min_bet": minBet}
	if _, err := transferFunds(ctx, uow, from, to, amount, entryType, entryType, metadata); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *slotsService) balance(ctx context.Context, nick string) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	balance, err := uow.AccountRepository().GetBalance(ctx, nick)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	return balance, nil
}

func (s *slotsService) draw() []string {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()

	reel := make([]string, slotsReelSize)
	for i := range reel {
		reel[i] = slotSymbols[s.rng.Intn(len(slotSymbols))]
	}
	return reel
}

func (s *slotsService) spinLock(nick string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[nick]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[nick] = lock
	}
	return lock
}

// minBetFor lowers the bet floor as the house's share of circulation grows
func minBetFor(houseBalance, total int64) int64 {
	if total <= 0 {
		return slotsBaseMinBet
	}

	share := float64(houseBalance) / float64(total)
	switch {
	case share > 0.5:
		return 1
	case share > 0.3:
		return 2
	default:
		return slotsBaseMinBet
	}
}

// classifySpin maps a match count to its payout: the full jackpot on three
// matches, half rounded up on two, nothing below that.
func classifySpin(matches int, jackpot int64) (payout int64, isJackpot bool) {
	switch {
	case matches == slotsReelSize:
		return jackpot, true
	case matches == slotsReelSize-1:
		return ceilDiv(jackpot, 2), false
	default:
		return 0, false
	}
}

// countMatches counts positional agreements between the two rows
func countMatches(expected, actual []string) int {
	matches := 0
	for i := range expected {
		if i < len(actual) && expected[i] == actual[i] {
			matches++
		}
	}
	return matches
}

func ceilDiv(a, b int64) int64 {
	return int64(math.Ceil(float64(a) / float64(b)))
}
