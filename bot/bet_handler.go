package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"beansbot/bot/common"
	"beansbot/models"
	"beansbot/service"

	"github.com/lrstanley/girc"
)

var betPlaceRe = regexp.MustCompile(`(?i)^(\d+)\s+place\s+(\d+)\s+beans?\s+on\s+(\S+)$`)

const betHelp = "💰 bet commands: " +
	".bet trivia <id> place <amount> beans on <winner> | " +
	".bet trivia <id> | " +
	".bet trivia list | " +
	".bet trivia user <nick>"

// handleBet handles the `.bet` command family. Only trivia markets exist.
func (b *Bot) handleBet(ctx context.Context, c *girc.Client, e girc.Event, nick, args string) {
	market, rest, _ := strings.Cut(args, " ")
	rest = strings.TrimSpace(rest)

	if !strings.EqualFold(market, "trivia") {
		b.reply(c, e, betHelp)
		return
	}

	if match := betPlaceRe.FindStringSubmatch(rest); match != nil {
		b.handleBetPlace(ctx, c, e, nick, match[1], match[2], match[3])
		return
	}

	subcommand, subArgs, _ := strings.Cut(rest, " ")
	subArgs = strings.TrimSpace(subArgs)

	switch strings.ToLower(subcommand) {
	case "list":
		b.handleBetList(ctx, c, e, nick)
	case "user":
		b.handleBetUser(ctx, c, e, nick, subArgs)
	default:
		if id, err := strconv.ParseInt(subcommand, 10, 64); err == nil {
			b.handleBetShow(ctx, c, e, nick, id)
			return
		}
		b.reply(c, e, betHelp)
	}
}

// handleBetPlace handles `.bet trivia <id> place <amount> beans on <winner>`
func (b *Bot) handleBetPlace(ctx context.Context, c *girc.Client, e girc.Event, nick, idStr, amountStr, winner string) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		b.reply(c, e, "🚫 Please provide a valid trivia id. 🚫")
		return
	}
	amount, err := strconv.ParseInt(amountStr, 10, 64)
	if err != nil {
		b.reply(c, e, "🚫 Amount must be positive! 🚫")
		return
	}

	bet, err := b.triviaService.PlaceBet(ctx, nick, id, winner, amount)
	switch {
	case err == nil:
		b.reply(c, e, fmt.Sprintf("💰 %s bets 🫘 %s beans on %s answering trivia #%d! 💰",
			nick, common.FormatBeans(bet.Amount), bet.PredictedWinner, id))
	case errors.Is(err, service.ErrNotFound):
		b.reply(c, e, "🤷 No such trivia question. 🤷")
	case errors.Is(err, service.ErrInvalidAmount):
		b.reply(c, e, "🚫 Amount must be positive! 🚫")
	case errors.Is(err, service.ErrBetOnCreator):
		b.reply(c, e, "🚫 You can't bet on the question's creator! 🚫")
	case errors.Is(err, service.ErrDuplicateBet):
		b.reply(c, e, "🚫 You already have a bet on that trivia! 🚫")
	case errors.Is(err, service.ErrInsufficientFunds):
		balance, balErr := b.ledgerService.Balance(ctx, nick)
		if balErr != nil {
			logCommandError("bet place", nick, balErr)
		}
		b.reply(c, e, fmt.Sprintf("😢 You don't have enough beans for that bet. You have 🫘 %s beans. 😢",
			common.FormatBeans(balance)))
	default:
		logCommandError("bet place", nick, err)
		b.reply(c, e, "😢 Placing the bet failed. Try again later. 😢")
	}
}

// handleBetShow handles `.bet trivia <id>`
func (b *Bot) handleBetShow(ctx context.Context, c *girc.Client, e girc.Event, nick string, id int64) {
	bets, err := b.triviaService.BetsOn(ctx, id)
	if err != nil {
		logCommandError("bet show", nick, err)
		b.reply(c, e, "😢 Listing bets failed. Try again later. 😢")
		return
	}

	if len(bets) == 0 {
		b.reply(c, e, fmt.Sprintf("🤷 No bets on trivia #%d yet. 🤷", id))
		return
	}

	b.reply(c, e, fmt.Sprintf("💰 Bets on trivia #%d: %s", id, formatBets(bets)))
}

// handleBetList handles `.bet trivia list`
func (b *Bot) handleBetList(ctx context.Context, c *girc.Client, e girc.Event, nick string) {
	bets, err := b.triviaService.BetsRecent(ctx, triviaListLimit)
	if err != nil {
		logCommandError("bet list", nick, err)
		b.reply(c, e, "😢 Listing bets failed. Try again later. 😢")
		return
	}

	if len(bets) == 0 {
		b.reply(c, e, "🤷 No open bets. Place one with .bet trivia! 🤷")
		return
	}

	b.reply(c, e, "💰 Open bets: "+formatBets(bets))
}

// handleBetUser handles `.bet trivia user <nick>`
func (b *Bot) handleBetUser(ctx context.Context, c *girc.Client, e girc.Event, nick, args string) {
	if args == "" {
		b.reply(c, e, betHelp)
		return
	}
	target := strings.Fields(args)[0]

	bets, err := b.triviaService.BetsBy(ctx, target)
	if err != nil {
		logCommandError("bet user", nick, err)
		b.reply(c, e, "😢 Listing bets failed. Try again later. 😢")
		return
	}

	if len(bets) == 0 {
		b.reply(c, e, fmt.Sprintf("🤷 %s has no open bets. 🤷", target))
		return
	}

	b.reply(c, e, fmt.Sprintf("💰 Open bets by %s: %s", target, formatBets(bets)))
}

func formatBets(bets []*models.TriviaBet) string {
	parts := make([]string, len(bets))
	for i, bet := range bets {
		parts[i] = fmt.Sprintf("%s 🫘 %s on %s (#%d)",
			bet.Bettor, common.FormatBeans(bet.Amount), bet.PredictedWinner, bet.TriviaID)
	}
	return strings.Join(parts, ", ")
}
