package oneoffs

import (
	"github.com/bwmarrin/discordgo"

	"parley/config"
	"parley/service"
)

// Feature serves the slash commands defined entirely in configuration: each
// sends one prompt under a fixed system message and stores no conversation.
type Feature struct {
	queryService service.QueryService
	botConfig    *config.Bot
}

func New(queryService service.QueryService, botConfig *config.Bot) *Feature {
	return &Feature{
		queryService: queryService,
		botConfig:    botConfig,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleOneOff(s, i)
}
