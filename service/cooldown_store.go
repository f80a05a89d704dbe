package service

import (
	"math"
	"strings"
	"sync"
	"time"

	"beansbot/models"
)

const (
	// cooldownInitialPlays is the number of free spins before a cooldown
	// window is imposed.
	cooldownInitialPlays = 3
	// cooldownRetryPlays is granted when a player meets the raised bet
	// inside an active window.
	cooldownRetryPlays = 2
	// cooldownBaseSeconds is the window length for an accumulated bet equal
	// to the minimum bet. It scales linearly with accumulated_bet/min_bet.
	cooldownBaseSeconds = 22.5
	// cooldownStateTTL is how long idle state survives before it silently
	// resets to defaults on the next spin.
	cooldownStateTTL = 48 * time.Hour
)

// InMemoryCooldownStore tracks per-nick slot machine throttling state. The
// state is deliberately process-local and ephemeral; a restart forgives all
// cooldowns.
type InMemoryCooldownStore struct {
	mu      sync.Mutex
	entries map[string]*models.CooldownState
	ttl     time.Duration
	now     func() time.Time
}

// NewCooldownStore creates an empty cooldown store
func NewCooldownStore() *InMemoryCooldownStore {
	return &InMemoryCooldownStore{
		entries: make(map[string]*models.CooldownState),
		ttl:     cooldownStateTTL,
		now:     time.Now,
	}
}

// Evaluate runs the cooldown state machine for one attempted spin and
// mutates the nick's state accordingly. It never touches the ledger; the
// caller only debits the bet when the decision allows the spin.
func (s *InMemoryCooldownStore) Evaluate(nick string, bet, minBet int64) CooldownDecision {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	nick = strings.ToLower(nick)

	state, ok := s.entries[nick]
	if !ok || now.Sub(state.UpdatedAt) > s.ttl {
		state = &models.CooldownState{
			RemainingPlays: cooldownInitialPlays,
			AccumulatedBet: minBet,
		}
		s.entries[nick] = state
	}
	state.UpdatedAt = now

	inWindow := now.Before(state.CooldownUntil)

	// Inside the window the escalated stake is the price of admission.
	if inWindow && bet < state.AccumulatedBet {
		return CooldownDecision{
			InWindow:       true,
			AccumulatedBet: state.AccumulatedBet,
			RequiredBet:    state.AccumulatedBet,
			RetryAfter:     state.CooldownUntil.Sub(now),
		}
	}

	if !inWindow {
		state.AccumulatedBet = minBet
	}

	if state.RemainingPlays > 0 {
		state.RemainingPlays--
		return CooldownDecision{
			Allowed:        true,
			InWindow:       inWindow,
			AccumulatedBet: state.AccumulatedBet,
		}
	}

	// Plays are exhausted. Meeting the raised bet inside the window buys a
	// short second wind without extending the window.
	if inWindow {
		state.RemainingPlays = cooldownRetryPlays
		return CooldownDecision{
			Allowed:        true,
			InWindow:       true,
			AccumulatedBet: state.AccumulatedBet,
		}
	}

	// Impose a new window. Its length scales with the stake that earned it;
	// the doubled stake is what the next spin must meet.
	seconds := math.Round(cooldownBaseSeconds * float64(state.AccumulatedBet) / float64(minBet))
	state.CooldownUntil = now.Add(time.Duration(seconds) * time.Second)
	state.AccumulatedBet *= 2
	state.RemainingPlays = cooldownInitialPlays

	return CooldownDecision{
		InWindow:       true,
		AccumulatedBet: state.AccumulatedBet,
		RequiredBet:    state.AccumulatedBet,
		RetryAfter:     state.CooldownUntil.Sub(now),
	}
}

// Peek returns a copy of the nick's current state without mutating it
func (s *InMemoryCooldownStore) Peek(nick string) (models.CooldownState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.entries[strings.ToLower(nick)]
	if !ok || s.now().Sub(state.UpdatedAt) > s.ttl {
		return models.CooldownState{}, false
	}

	return *state, true
}
