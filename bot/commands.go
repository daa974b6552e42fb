package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"parley/config"
)

// registerCommands registers all slash commands with Discord, scoped to the
// configured guild so updates take effect immediately
func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "allowance",
			Description: "Check your remaining allowance",
		},
		{
			Name:        "spent",
			Description: "Show how much has been spent on completions",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "all",
					Description: "Show everyone's total instead of yours",
					Required:    false,
				},
			},
		},
		{
			Name:        "model",
			Description: "Pick the model for your next query only",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "model",
					Description: "Model to use once",
					Required:    true,
					Choices:     modelChoices(b.botConfig),
				},
			},
		},
		{
			Name:        "personality",
			Description: "Set the personality for your new conversations",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "preset",
					Description: "Use a configured personality",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Personality to use",
							Required:    true,
							Choices:     personalityChoices(b.botConfig),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "custom",
					Description: "Use your own system message",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "system_message",
							Description: "System message for your new conversations",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "reset",
					Description: "Go back to the default personality",
				},
			},
		},
	}

	for _, oneOff := range b.botConfig.OneOffs {
		cmd := &discordgo.ApplicationCommand{
			Name:        oneOff.Name,
			Description: oneOff.Description,
		}
		if oneOff.Argument != "" {
			cmd.Options = []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        oneOff.Argument,
					Description: oneOff.ArgumentDescription,
					Required:    true,
				},
			}
		}
		commands = append(commands, cmd)
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}

func modelChoices(botConfig *config.Bot) []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(botConfig.Models))
	for _, model := range botConfig.Models {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  fmt.Sprintf("%s (%s)", model.FriendlyName, model.CostDescription()),
			Value: model.Name,
		})
	}
	return choices
}

func personalityChoices(botConfig *config.Bot) []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(botConfig.Personalities))
	for _, preset := range botConfig.Personalities {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  fmt.Sprintf("%s %s", preset.Emoji, preset.Name),
			Value: preset.Name,
		})
	}
	return choices
}
