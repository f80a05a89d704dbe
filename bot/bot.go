package bot

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"beansbot/events"
	"beansbot/service"

	"github.com/lrstanley/girc"
)

// Config holds bot configuration
type Config struct {
	Server     string
	Port       int
	Nick       string
	Channels   []string
	TLS        bool
	AdminNicks []string
}

type Bot struct {
	config        Config
	client        *girc.Client
	ledgerService service.LedgerService
	slotsService  service.SlotsService
	triviaService service.TriviaService
	eventBus      *events.Bus
	admins        map[string]bool
}

func New(config Config, ledgerService service.LedgerService, slotsService service.SlotsService, triviaService service.TriviaService, eventBus *events.Bus) (*Bot, error) {
	client := girc.New(girc.Config{
		Server: config.Server,
		Port:   config.Port,
		Nick:   config.Nick,
		User:   config.Nick,
		Name:   config.Nick,
		SSL:    config.TLS,
	})

	admins := make(map[string]bool, len(config.AdminNicks))
	for _, nick := range config.AdminNicks {
		admins[strings.ToLower(nick)] = true
	}

	bot := &Bot{
		config:        config,
		client:        client,
		ledgerService: ledgerService,
		slotsService:  slotsService,
		triviaService: triviaService,
		eventBus:      eventBus,
		admins:        admins,
	}

	client.Handlers.Add(girc.CONNECTED, func(c *girc.Client, e girc.Event) {
		log.WithField("server", config.Server).Info("Connected to IRC")
		for _, channel := range config.Channels {
			c.Cmd.Join(channel)
		}
	})

	client.Handlers.Add(girc.PRIVMSG, bot.handleMessage)

	// Balance changes get logged centrally rather than per call site
	eventBus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) {
		if change, ok := event.(events.BalanceChangeEvent); ok {
			log.WithFields(log.Fields{
				"nick":      change.Nick,
				"entryType": change.EntryType,
				"change":    change.ChangeAmount,
				"balance":   change.NewBalance,
			}).Debug("Balance changed")
		}
	})

	return bot, nil
}

// Run connects to the IRC server and blocks until the connection drops or
// the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- b.client.Connect()
	}()

	select {
	case <-ctx.Done():
		b.client.Close()
		<-errCh
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (b *Bot) Close() error {
	b.client.Close()
	return nil
}

// isAdmin reports whether the nick may use permission-gated commands
func (b *Bot) isAdmin(nick string) bool {
	return b.admins[strings.ToLower(nick)]
}
