package settings

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"parley/bot/common"
	"parley/models"
)

func (f *Feature) handleModel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var name string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "model" {
			name = opt.StringValue()
		}
	}

	model, err := f.settingsService.ToggleModelOverride(ctx, userID, name)
	if err != nil {
		log.Errorf("Error toggling model override for user %d: %v", userID, err)
		common.RespondWithError(s, i, "Unable to set the model. Please try again.")
		return
	}

	var message string
	if model != nil {
		message = fmt.Sprintf("Your next query will use **%s**.", model.FriendlyName)
	} else {
		message = fmt.Sprintf("Cleared. Your next query will use **%s**.", f.botConfig.DefaultModel().FriendlyName)
	}
	if err := common.RespondWithContent(s, i, message, true); err != nil {
		log.Errorf("Error responding to model command: %v", err)
	}
}

func (f *Feature) handlePersonality(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Pick a personality subcommand.")
		return
	}

	var message string
	switch sub := options[0]; sub.Name {
	case "preset":
		var name string
		for _, opt := range sub.Options {
			if opt.Name == "name" {
				name = opt.StringValue()
			}
		}
		preset := f.botConfig.PersonalityByName(name)
		if preset == nil {
			common.RespondWithError(s, i, "That personality is not configured.")
			return
		}
		p := models.PresetPersonality(preset.Name)
		if err := f.settingsService.SetPersonality(ctx, userID, &p); err != nil {
			log.Errorf("Error setting personality for user %d: %v", userID, err)
			common.RespondWithError(s, i, "Unable to set the personality. Please try again.")
			return
		}
		message = fmt.Sprintf("%s Your new conversations will use **%s**.", preset.Emoji, preset.Name)

	case "custom":
		var systemMessage string
		for _, opt := range sub.Options {
			if opt.Name == "system_message" {
				systemMessage = opt.StringValue()
			}
		}
		if systemMessage == "" {
			common.RespondWithError(s, i, "The system message cannot be empty.")
			return
		}
		p := models.CustomPersonality(systemMessage)
		if err := f.settingsService.SetPersonality(ctx, userID, &p); err != nil {
			log.Errorf("Error setting custom personality for user %d: %v", userID, err)
			common.RespondWithError(s, i, "Unable to set the personality. Please try again.")
			return
		}
		message = "Your new conversations will use your custom system message."

	case "reset":
		if err := f.settingsService.SetPersonality(ctx, userID, nil); err != nil {
			log.Errorf("Error clearing personality for user %d: %v", userID, err)
			common.RespondWithError(s, i, "Unable to reset the personality. Please try again.")
			return
		}
		message = fmt.Sprintf("Back to the default personality, **%s**.", f.botConfig.DefaultPersonality().Name)

	default:
		common.RespondWithError(s, i, "Unknown personality subcommand.")
		return
	}

	if err := common.RespondWithContent(s, i, message, true); err != nil {
		log.Errorf("Error responding to personality command: %v", err)
	}
}
