package allowance

import (
	"github.com/bwmarrin/discordgo"

	"parley/service"
)

type Feature struct {
	allowanceService service.AllowanceService
}

func New(allowanceService service.AllowanceService) *Feature {
	return &Feature{
		allowanceService: allowanceService,
	}
}

func (f *Feature) HandleAllowance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleAllowance(s, i)
}

func (f *Feature) HandleSpent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleSpent(s, i)
}
