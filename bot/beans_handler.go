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

const defaultTopN = 10

// handleBalance handles `.beans [user]`
func (b *Bot) handleBalance(ctx context.Context, c *girc.Client, e girc.Event, nick, args string) {
	target := nick
	if args != "" {
		target = strings.Fields(args)[0]
	}

	balance, err := b.ledgerService.Balance(ctx, target)
	if err != nil {
		logCommandError("beans", nick, err)
		b.reply(c, e, "😢 Something went wrong counting beans. 😢")
		return
	}

	b.reply(c, e, common.FormatBalance(target, balance))
}

const beansLogLimit = 5

// handleBeansLog handles `.beanslog [user]`, answering "where did my beans
// go" from the audit trail.
func (b *Bot) handleBeansLog(ctx context.Context, c *girc.Client, e girc.Event, nick, args string) {
	target := nick
	if args != "" {
		target = strings.Fields(args)[0]
	}

	entries, err := b.ledgerService.History(ctx, target, beansLogLimit)
	if err != nil {
		logCommandError("beanslog", nick, err)
		b.reply(c, e, "😢 Something went wrong reading the bean ledger. 😢")
		return
	}

	if len(entries) == 0 {
		b.reply(c, e, fmt.Sprintf("🤷 No bean history for %s yet. 🤷", target))
		return
	}

	parts := make([]string, len(entries))
	for i, entry := range entries {
		amount := common.FormatBeans(entry.ChangeAmount)
		if entry.ChangeAmount > 0 {
			amount = "+" + amount
		}
		parts[i] = fmt.Sprintf("%s %s (🫘 %s)", amount, entry.EntryType, common.FormatBeans(entry.BalanceAfter))
	}
	b.reply(c, e, fmt.Sprintf("📜 Last moves for %s: %s", target, strings.Join(parts, " • ")))
}

// handleTransfer handles `+N beans to <user>`
func (b *Bot) handleTransfer(ctx context.Context, c *girc.Client, e girc.Event, nick, amountStr, target string) {
	amount, err := strconv.ParseInt(amountStr, 10, 64)
	if err != nil || amount <= 0 {
		b.reply(c, e, "🚫 Amount must be positive! 🚫")
		return
	}

	result, err := b.ledgerService.Transfer(ctx, nick, target, amount)
	switch {
	case err == nil:
		b.reply(c, e, common.FormatTransfer(nick, target, amount, result.FromBalance, result.ToBalance))
	case errors.Is(err, service.ErrSelfTransfer):
		b.reply(c, e, "🤔 You can't transfer beans to yourself! 🤔")
	case errors.Is(err, service.ErrInvalidAmount):
		b.reply(c, e, "🚫 Amount must be positive! 🚫")
	case errors.Is(err, service.ErrInsufficientFunds):
		balance, balErr := b.ledgerService.Balance(ctx, nick)
		if balErr != nil {
			logCommandError("transfer", nick, balErr)
		}
		b.reply(c, e, fmt.Sprintf("😢 You don't have enough beans for that transfer. You have 🫘 %s beans. 😢",
			common.FormatBeans(balance)))
	default:
		logCommandError("transfer", nick, err)
		b.reply(c, e, "😢 The bean transfer failed. Try again later. 😢")
	}
}

// handleMint handles `++N beans to <user>`, admin only
func (b *Bot) handleMint(ctx context.Context, c *girc.Client, e girc.Event, nick, amountStr, target string) {
	if !b.isAdmin(nick) {
		b.notice(c, nick, "🚫 You don't have permission to use this command! 🚫")
		return
	}

	amount, err := strconv.ParseInt(amountStr, 10, 64)
	if err != nil || amount <= 0 {
		b.reply(c, e, "🚫 Amount must be positive! 🚫")
		return
	}

	balance, err := b.ledgerService.Mint(ctx, target, amount)
	if err != nil {
		logCommandError("mint", nick, err)
		b.reply(c, e, "😢 Bean creation failed. Try again later. 😢")
		return
	}

	b.reply(c, e, common.FormatMint(nick, target, amount, balance))
}

// handleTopBeans handles `.topbeans [n]`. Large listings go to the actor as
// private notices to keep the channel readable.
func (b *Bot) handleTopBeans(ctx context.Context, c *girc.Client, e girc.Event, nick, args string) {
	topN := defaultTopN
	if args != "" {
		n, err := strconv.Atoi(strings.Fields(args)[0])
		if err != nil || n <= 0 {
			b.reply(c, e, "🚫 Please provide a valid number for the top users to display. 🚫")
			return
		}
		topN = n
	}

	accounts, err := b.ledgerService.TopN(ctx, topN)
	if err != nil {
		logCommandError("topbeans", nick, err)
		b.reply(c, e, "😢 Something went wrong counting beans. 😢")
		return
	}

	if len(accounts) == 0 {
		b.reply(c, e, "😢 No one has any beans yet! 😢")
		return
	}

	lines := make([]string, len(accounts))
	for i, account := range accounts {
		lines[i] = fmt.Sprintf("%d. %s 🫘 (%s beans)", i+1, account.Nick, common.FormatBeans(account.Beans))
	}
	header := fmt.Sprintf("🏆 Top %d Bean Holders: ", topN)

	if topN <= defaultTopN {
		b.reply(c, e, header+strings.Join(lines, " "))
		return
	}

	b.notice(c, nick, fmt.Sprintf("📩 %s, check your messages for the top %d bean holders!", nick, topN))
	c.Cmd.Message(nick, header)
	for i := 0; i < len(lines); i += defaultTopN {
		end := i + defaultTopN
		if end > len(lines) {
			end = len(lines)
		}
		c.Cmd.Message(nick, strings.Join(lines[i:end], " "))
	}
}

// handleTotalBeans handles `.totalbeans`
func (b *Bot) handleTotalBeans(ctx context.Context, c *girc.Client, e girc.Event) {
	total, err := b.ledgerService.TotalInCirculation(ctx)
	if err != nil {
		logCommandError("totalbeans", e.Source.Name, err)
		b.reply(c, e, "😢 Something went wrong counting beans. 😢")
		return
	}

	b.reply(c, e, fmt.Sprintf("🌍 There are 🫘 %s beans in circulation! 🌍", common.FormatBeans(total)))
}
