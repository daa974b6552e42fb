package bot

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"parley/bot/features/allowance"
	"parley/bot/features/oneoffs"
	"parley/bot/features/settings"
	"parley/config"
	"parley/events"
	"parley/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string
}

type Bot struct {
	config    Config
	botConfig *config.Bot
	session   *discordgo.Session
	resolver  *Resolver

	queryService service.QueryService
	eventBus     *events.Bus

	allowanceFeature *allowance.Feature
	settingsFeature  *settings.Feature
	oneOffsFeature   *oneoffs.Feature
}

func New(
	cfg Config,
	botConfig *config.Bot,
	queryService service.QueryService,
	allowanceService service.AllowanceService,
	settingsService service.SettingsService,
	conversationService service.ConversationService,
	eventBus *events.Bus,
) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	bot := &Bot{
		config:           cfg,
		botConfig:        botConfig,
		session:          dg,
		queryService:     queryService,
		eventBus:         eventBus,
		allowanceFeature: allowance.New(allowanceService),
		settingsFeature:  settings.New(settingsService, botConfig),
		oneOffsFeature:   oneoffs.New(queryService, botConfig),
	}

	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleMessage)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// The resolver needs the bot's own user ID, which is only known once
	// the gateway session is open.
	bot.resolver = NewResolver(dg, conversationService, dg.State.User.ID)

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	eventBus.Subscribe(events.EventTypeQueryCompleted, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.QueryCompletedEvent); ok {
			log.WithFields(log.Fields{
				"userID":       e.UserID,
				"messageID":    e.MessageID,
				"continuation": e.Continuation,
			}).Debug("Query completed")
		}
	})

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	switch name {
	case "allowance":
		b.allowanceFeature.HandleAllowance(s, i)
	case "spent":
		b.allowanceFeature.HandleSpent(s, i)
	case "model":
		b.settingsFeature.HandleModel(s, i)
	case "personality":
		b.settingsFeature.HandlePersonality(s, i)
	default:
		if b.botConfig.OneOffByName(name) != nil {
			b.oneOffsFeature.HandleCommand(s, i)
		}
	}
}
