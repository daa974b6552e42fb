package settings

import (
	"github.com/bwmarrin/discordgo"

	"parley/config"
	"parley/service"
)

type Feature struct {
	settingsService service.SettingsService
	botConfig       *config.Bot
}

func New(settingsService service.SettingsService, botConfig *config.Bot) *Feature {
	return &Feature{
		settingsService: settingsService,
		botConfig:       botConfig,
	}
}

func (f *Feature) HandleModel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleModel(s, i)
}

func (f *Feature) HandlePersonality(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handlePersonality(s, i)
}
