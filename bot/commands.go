package bot

import (
	"context"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/lrstanley/girc"
)

// Bean transfers are plain channel messages, not dot commands
var (
	beanAddRe      = regexp.MustCompile(`(?i)^\+(\d+)\s+beans?\s+to\s+(\S+)(?:\s+.*)?$`)
	beanAdminAddRe = regexp.MustCompile(`(?i)^\+\+(\d+)\s+beans?\s+to\s+(\S+)(?:\s+.*)?$`)
)

const commandPrefix = "."

// handleMessage routes every incoming channel message. Dot commands and the
// +N transfer forms are dispatched explicitly; everything else is offered to
// the trivia answer hook.
func (b *Bot) handleMessage(c *girc.Client, e girc.Event) {
	if !e.IsFromChannel() {
		return
	}

	nick := e.Source.Name
	if strings.EqualFold(nick, b.config.Nick) {
		return
	}

	text := strings.TrimSpace(e.Last())
	if text == "" {
		return
	}

	ctx := context.Background()

	// ++N must be checked before +N; the transfer regex rejects the double
	// plus but ordering keeps the intent obvious.
	if match := beanAdminAddRe.FindStringSubmatch(text); match != nil {
		b.handleMint(ctx, c, e, nick, match[1], match[2])
		return
	}
	if match := beanAddRe.FindStringSubmatch(text); match != nil {
		b.handleTransfer(ctx, c, e, nick, match[1], match[2])
		return
	}

	if strings.HasPrefix(text, commandPrefix) {
		command, args, _ := strings.Cut(strings.TrimPrefix(text, commandPrefix), " ")
		args = strings.TrimSpace(args)

		switch strings.ToLower(command) {
		case "beans":
			b.handleBalance(ctx, c, e, nick, args)
		case "beanslog":
			b.handleBeansLog(ctx, c, e, nick, args)
		case "topbeans":
			b.handleTopBeans(ctx, c, e, nick, args)
		case "totalbeans":
			b.handleTotalBeans(ctx, c, e)
		case "slots":
			b.handleSlots(ctx, c, e, nick, args)
		case "trivia":
			b.handleTrivia(ctx, c, e, nick, args)
		case "bet":
			b.handleBet(ctx, c, e, nick, args)
		}
		return
	}

	b.handleTriviaAnswer(ctx, c, e, nick, text)
}

// reply sends a message back to the channel the event came from
func (b *Bot) reply(c *girc.Client, e girc.Event, message string) {
	c.Cmd.Reply(e, message)
}

// notice sends a private notice to the actor
func (b *Bot) notice(c *girc.Client, nick, message string) {
	c.Cmd.Notice(nick, message)
}

func logCommandError(command, nick string, err error) {
	log.WithFields(log.Fields{
		"command": command,
		"nick":    nick,
	}).WithError(err).Error("Command failed")
}
