package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"beansbot/bot/common"
	"beansbot/models"
	"beansbot/service"

	"github.com/lrstanley/girc"
)

const triviaListLimit = 5

const triviaHelp = "📚 trivia commands: " +
	".trivia add <prize> <question> -> <answer> | " +
	".trivia question [id] | " +
	".trivia list | " +
	".trivia user <nick> | " +
	".trivia delete <id>"

// handleTrivia handles the `.trivia` command family
func (b *Bot) handleTrivia(ctx context.Context, c *girc.Client, e girc.Event, nick, args string) {
	subcommand, rest, _ := strings.Cut(args, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(subcommand) {
	case "add":
		b.handleTriviaAdd(ctx, c, e, nick, rest)
	case "question":
		b.handleTriviaQuestion(ctx, c, e, nick, rest)
	case "list":
		b.handleTriviaList(ctx, c, e, nick)
	case "user":
		b.handleTriviaUser(ctx, c, e, nick, rest)
	case "delete":
		b.handleTriviaDelete(ctx, c, e, nick, rest)
	default:
		b.reply(c, e, triviaHelp)
	}
}

// handleTriviaAdd handles `.trivia add <prize> <question> -> <answer>`
func (b *Bot) handleTriviaAdd(ctx context.Context, c *girc.Client, e girc.Event, nick, args string) {
	prizeStr, rest, found := strings.Cut(args, " ")
	if !found {
		b.reply(c, e, triviaHelp)
		return
	}

	prize, err := strconv.ParseInt(prizeStr, 10, 64)
	if err != nil {
		b.reply(c, e, "🚫 The prize must be a number of beans! 🚫")
		return
	}

	question, answer, found := strings.Cut(rest, "->")
	if !found {
		b.reply(c, e, "🚫 Write the question, then '->', then the answer. 🚫")
		return
	}

	q, err := b.triviaService.Add(ctx, nick, strings.TrimSpace(question), strings.TrimSpace(answer), prize)
	switch {
	case err == nil:
		b.reply(c, e, fmt.Sprintf("❓ Trivia #%d by %s for a 🫘 %s bean prize: %s",
			q.ID, nick, common.FormatBeans(q.Prize), q.Question))
	case errors.Is(err, service.ErrInvalidAmount):
		b.reply(c, e, "🚫 The prize must be a positive number of beans! 🚫")
	case errors.Is(err, service.ErrInvalidAnswer):
		b.reply(c, e, "🚫 The answer must be a single word (letters and digits only). 🚫")
	case errors.Is(err, service.ErrInsufficientFunds):
		balance, balErr := b.ledgerService.Balance(ctx, nick)
		if balErr != nil {
			logCommandError("trivia add", nick, balErr)
		}
		b.reply(c, e, fmt.Sprintf("😢 You can't afford that prize. You have 🫘 %s beans. 😢",
			common.FormatBeans(balance)))
	case errors.Is(err, service.ErrSelfTransfer):
		b.reply(c, e, "The house keeps the questions, not the prizes.")
	default:
		logCommandError("trivia add", nick, err)
		b.reply(c, e, "😢 Creating the trivia failed. Try again later. 😢")
	}
}

// handleTriviaQuestion handles `.trivia question [id]`. Without an id it
// shows the actor's latest question.
func (b *Bot) handleTriviaQuestion(ctx context.Context, c *girc.Client, e girc.Event, nick, args string) {
	var q *models.TriviaQuestion
	var err error

	if args == "" {
		q, err = b.triviaService.LatestFor(ctx, nick)
	} else {
		var id int64
		id, err = strconv.ParseInt(strings.Fields(args)[0], 10, 64)
		if err != nil {
			b.reply(c, e, "🚫 Please provide a valid trivia id. 🚫")
			return
		}
		q, err = b.triviaService.Get(ctx, id)
	}

	if err != nil {
		logCommandError("trivia question", nick, err)
		b.reply(c, e, "😢 Looking up the trivia failed. Try again later. 😢")
		return
	}
	if q == nil {
		b.reply(c, e, "🤷 No such trivia question. 🤷")
		return
	}

	b.reply(c, e, formatTrivia(q))
}

// handleTriviaList handles `.trivia list`
func (b *Bot) handleTriviaList(ctx context.Context, c *girc.Client, e girc.Event, nick string) {
	questions, err := b.triviaService.ListRecent(ctx, triviaListLimit)
	if err != nil {
		logCommandError("trivia list", nick, err)
		b.reply(c, e, "😢 Listing trivia failed. Try again later. 😢")
		return
	}

	if len(questions) == 0 {
		b.reply(c, e, "🤷 There are no open trivia questions. Add one with .trivia add! 🤷")
		return
	}

	lines := make([]string, len(questions))
	for i, q := range questions {
		lines[i] = formatTrivia(q)
	}
	b.reply(c, e, strings.Join(lines, " • "))
}

// handleTriviaUser handles `.trivia user <nick>`
func (b *Bot) handleTriviaUser(ctx context.Context, c *girc.Client, e girc.Event, nick, args string) {
	if args == "" {
		b.reply(c, e, triviaHelp)
		return
	}
	target := strings.Fields(args)[0]

	questions, err := b.triviaService.ListFor(ctx, target)
	if err != nil {
		logCommandError("trivia user", nick, err)
		b.reply(c, e, "😢 Listing trivia failed. Try again later. 😢")
		return
	}

	if len(questions) == 0 {
		b.reply(c, e, fmt.Sprintf("🤷 %s has no open trivia questions. 🤷", target))
		return
	}

	lines := make([]string, len(questions))
	for i, q := range questions {
		lines[i] = formatTrivia(q)
	}
	b.reply(c, e, strings.Join(lines, " • "))
}

// handleTriviaDelete handles `.trivia delete <id>`
func (b *Bot) handleTriviaDelete(ctx context.Context, c *girc.Client, e girc.Event, nick, args string) {
	if args == "" {
		b.reply(c, e, triviaHelp)
		return
	}

	id, err := strconv.ParseInt(strings.Fields(args)[0], 10, 64)
	if err != nil {
		b.reply(c, e, "🚫 Please provide a valid trivia id. 🚫")
		return
	}

	err = b.triviaService.Delete(ctx, id, nick)
	switch {
	case err == nil:
		b.reply(c, e, fmt.Sprintf("🗑️ Trivia #%d deleted. All bets and the prize were refunded. 🗑️", id))
	case errors.Is(err, service.ErrNotFound):
		b.reply(c, e, "🤷 No such trivia question. 🤷")
	case errors.Is(err, service.ErrPermissionDenied):
		b.reply(c, e, "🚫 Only the creator can delete a trivia question! 🚫")
	case errors.Is(err, service.ErrInsufficientFunds):
		b.reply(c, e, fmt.Sprintf("😢 Deleting trivia #%d stalled: the house could not refund everyone. Some refunds were paid; try again later. 😢", id))
	default:
		logCommandError("trivia delete", nick, err)
		b.reply(c, e, "😢 Deleting the trivia failed. Try again later. 😢")
	}
}

// handleTriviaAnswer is the implicit per-message hook: a single-token
// message matching an open question's answer resolves that question with
// the speaker as the winner.
func (b *Bot) handleTriviaAnswer(ctx context.Context, c *girc.Client, e girc.Event, nick, text string) {
	q, err := b.triviaService.FindByAnswer(ctx, text)
	if err != nil {
		logCommandError("trivia answer", nick, err)
		return
	}
	if q == nil {
		return
	}

	result, err := b.triviaService.Resolve(ctx, q.ID, nick)
	if err != nil {
		if errors.Is(err, service.ErrHouseInsolvent) {
			b.reply(c, e, fmt.Sprintf("😱 %s answered trivia #%d, but the house can't pay the prize right now! The question stays open. 😱", nick, q.ID))
			return
		}
		logCommandError("trivia answer", nick, err)
		return
	}

	b.reply(c, e, fmt.Sprintf("🎊 %s answered trivia #%d and wins the 🫘 %s bean prize! 🎊",
		nick, q.ID, common.FormatBeans(result.Prize)))

	if len(result.Payouts) > 0 {
		parts := make([]string, 0, len(result.Payouts))
		for bettor, payout := range result.Payouts {
			parts = append(parts, fmt.Sprintf("%s wins 🫘 %s", bettor, common.FormatBeans(payout)))
		}
		b.reply(c, e, fmt.Sprintf("💰 The 🫘 %s bean pool pays out: %s",
			common.FormatBeans(result.TotalPool), strings.Join(parts, ", ")))
	}

	if len(result.UnpaidWinners) > 0 {
		b.reply(c, e, fmt.Sprintf("😱 The house ran out of beans before paying: %s. 😱",
			strings.Join(result.UnpaidWinners, ", ")))
	}
}

func formatTrivia(q *models.TriviaQuestion) string {
	return fmt.Sprintf("❓ #%d by %s (🫘 %s beans): %s",
		q.ID, q.Creator, common.FormatBeans(q.Prize), q.Question)
}
