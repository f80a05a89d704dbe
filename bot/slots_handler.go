package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"beansbot/bot/common"
	"beansbot/service"

	"github.com/lrstanley/girc"
)

// handleSlots handles `.slots [bet]`. Omitting the bet plays the current
// minimum.
func (b *Bot) handleSlots(ctx context.Context, c *girc.Client, e girc.Event, nick, args string) {
	var bet int64
	if args != "" {
		parsed, err := strconv.ParseInt(strings.Fields(args)[0], 10, 64)
		if err != nil {
			b.reply(c, e, "Please provide a valid number for your bet.")
			return
		}
		bet = parsed
	} else {
		minBet, err := b.slotsService.MinBet(ctx)
		if err != nil {
			logCommandError("slots", nick, err)
			b.reply(c, e, "The slot machine is jammed. Try again later!")
			return
		}
		bet = minBet
	}

	result, err := b.slotsService.Spin(ctx, nick, bet)
	if err != nil {
		b.replySlotsError(ctx, c, e, nick, bet, err)
		return
	}

	reels := common.FormatReels(result.Expected, result.Actual)
	switch {
	case result.Jackpot:
		b.reply(c, e, fmt.Sprintf("%s JACKPOT! You won %s beans!", reels, common.FormatBeans(result.Payout)))
	case result.Payout > 0:
		b.reply(c, e, fmt.Sprintf("%s You won %s beans!", reels, common.FormatBeans(result.Payout)))
	case result.Matches == 1:
		b.reply(c, e, fmt.Sprintf("%s Almost there! Keep trying! You lost %s beans.", reels, common.FormatBeans(result.Bet)))
	default:
		b.reply(c, e, fmt.Sprintf("%s Better luck next time! You lost %s beans.", reels, common.FormatBeans(result.Bet)))
	}
}

func (b *Bot) replySlotsError(ctx context.Context, c *girc.Client, e girc.Event, nick string, bet int64, err error) {
	var cooldownErr *service.CooldownError

	switch {
	case errors.As(err, &cooldownErr):
		b.reply(c, e, fmt.Sprintf("⏳ Slow down, %s! Bet at least %s beans to keep playing, or wait %s. ⏳",
			nick, common.FormatBeans(cooldownErr.RequiredBet), common.FormatDuration(cooldownErr.RetryAfter)))
	case errors.Is(err, service.ErrBetTooSmall):
		minBet, minErr := b.slotsService.MinBet(ctx)
		if minErr != nil {
			logCommandError("slots", nick, minErr)
			minBet = 0
		}
		b.reply(c, e, fmt.Sprintf("Minimum bet is %s beans.", common.FormatBeans(minBet)))
	case errors.Is(err, service.ErrInsufficientFunds):
		balance, balErr := b.ledgerService.Balance(ctx, nick)
		if balErr != nil {
			logCommandError("slots", nick, balErr)
		}
		b.reply(c, e, fmt.Sprintf("You don't have enough beans to bet %s. You only have %s beans.",
			common.FormatBeans(bet), common.FormatBeans(balance)))
	case errors.Is(err, service.ErrHouseInsolvent):
		b.reply(c, e, "The bot doesn't have enough beans to pay out a potential prize. Try again later!")
	case errors.Is(err, service.ErrSelfTransfer):
		b.reply(c, e, "The house always plays, never bets.")
	default:
		logCommandError("slots", nick, err)
		b.reply(c, e, "The slot machine is jammed. Try again later!")
	}
}
