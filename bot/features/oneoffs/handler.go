package oneoffs

import (
	"context"
	"errors"
	"strconv"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"parley/bot/common"
	"parley/service"
)

func (f *Feature) handleOneOff(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	oneOff := f.botConfig.OneOffByName(i.ApplicationCommandData().Name)
	if oneOff == nil {
		return
	}

	userID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var input string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == oneOff.Argument {
			input = opt.StringValue()
		}
	}
	if input == "" && oneOff.Argument != "" {
		common.RespondWithError(s, i, "Missing input for this command.")
		return
	}

	// The completion call can exceed the interaction response window, so
	// defer before running it.
	if err := common.DeferResponse(s, i, false); err != nil {
		log.Errorf("Error deferring one-off response: %v", err)
		return
	}

	reply, err := f.queryService.OneOff(ctx, userID, oneOff.Emoji, oneOff.SystemMessage, input)
	if err != nil {
		var userErr *service.UserError
		if errors.As(err, &userErr) {
			common.FollowUpWithContent(s, i, userErr.Message, true)
			return
		}
		log.Errorf("One-off %q failed for user %d: %v", oneOff.Name, userID, err)
		common.FollowUpWithContent(s, i, "Something went wrong. Please try again.", true)
		return
	}

	common.FollowUpWithContent(s, i, common.Truncate(reply, common.MaxMessageLength), false)
}
