package allowance

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"parley/bot/common"
	"parley/service"
)

func (f *Feature) handleAllowance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	balance, err := f.allowanceService.Check(ctx, userID)
	if err != nil {
		log.Errorf("Error checking allowance for user %d: %v", userID, err)
		common.RespondWithError(s, i, "Unable to retrieve your allowance. Please try again.")
		return
	}

	var message string
	switch {
	case balance.Unlimited:
		message = "Your allowance: **∞** (you bring your own API key)"
	case balance.FullAt.IsZero():
		message = fmt.Sprintf("Your allowance: **%s m$** of **%s m$** (full)",
			service.FormatBalance(balance),
			service.FormatMillidollars(f.allowanceService.MaxBalance()))
	default:
		message = fmt.Sprintf("Your allowance: **%s m$** of **%s m$** (full %s)",
			service.FormatBalance(balance),
			service.FormatMillidollars(f.allowanceService.MaxBalance()),
			common.FormatDiscordTimestamp(balance.FullAt, "R"))
	}

	if err := common.RespondWithContent(s, i, message, true); err != nil {
		log.Errorf("Error responding to allowance command: %v", err)
	}
}

func (f *Feature) handleSpent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	everyone := false
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "all" {
			everyone = opt.BoolValue()
		}
	}

	var message string
	if everyone {
		total, err := f.allowanceService.ExpenditureEveryone(ctx)
		if err != nil {
			log.Errorf("Error getting total spending: %v", err)
			common.RespondWithError(s, i, "Unable to retrieve spending. Please try again.")
			return
		}
		message = fmt.Sprintf("Everyone together has spent **%s m$** on completions.", service.FormatMillidollars(total))
	} else {
		userID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
		if err != nil {
			log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
			common.RespondWithError(s, i, "Unable to process request. Please try again.")
			return
		}
		total, err := f.allowanceService.Expenditure(ctx, userID)
		if err != nil {
			log.Errorf("Error getting spending for user %d: %v", userID, err)
			common.RespondWithError(s, i, "Unable to retrieve spending. Please try again.")
			return
		}
		message = fmt.Sprintf("You have spent **%s m$** on completions.", service.FormatMillidollars(total))
	}

	if err := common.RespondWithContent(s, i, message, false); err != nil {
		log.Errorf("Error responding to spent command: %v", err)
	}
}
