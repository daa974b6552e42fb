package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"parley/models"
)

// Default allowance parameters, used when the config file leaves them unset.
const (
	// DefaultDailyAllowance is the allowance a user accrues per day, in nanodollars.
	DefaultDailyAllowance = 2_500_000
	// DefaultAccrualDays is how many days' worth of allowance a user can bank.
	DefaultAccrualDays = 4.0
)

// Model describes one completion model offered by the bot. Prices are in
// nanodollars per token, so a 1M-token price of 50 cents is input_cost: 500.
type Model struct {
	Name         string `yaml:"name"`          // wire identifier, also used as the storage key
	FriendlyName string `yaml:"friendly_name"` // name shown to users
	InputCost    int64  `yaml:"input_cost"`
	OutputCost   int64  `yaml:"output_cost"`
}

// Cost returns the price of a completion in nanodollars
func (m *Model) Cost(inputTokens, outputTokens int64) int64 {
	return m.InputCost*inputTokens + m.OutputCost*outputTokens
}

// CostDescription describes the model's pricing for command listings
func (m *Model) CostDescription() string {
	return fmt.Sprintf("%.2f$ per 1M input tokens, %.2f$ per 1M output tokens",
		float64(m.InputCost)/1000.0, float64(m.OutputCost)/1000.0)
}

// PersonalityPreset is a named system message from configuration
type PersonalityPreset struct {
	Name          string `yaml:"name"`
	Emoji         string `yaml:"emoji"`
	SystemMessage string `yaml:"system_message"`
}

// OneOff describes a config-defined slash command that sends a single prompt
// with a fixed system message and stores no conversation.
type OneOff struct {
	Name                string `yaml:"name"`
	Emoji               string `yaml:"emoji"`
	Description         string `yaml:"description"`
	Argument            string `yaml:"argument"`
	ArgumentDescription string `yaml:"argument_description"`
	SystemMessage       string `yaml:"system_message"`
}

// Bot holds the bot-level configuration tables loaded from the YAML config
// file. The tables are immutable after loading; components receive them at
// construction and never at runtime.
type Bot struct {
	DailyAllowance int64               `yaml:"daily_allowance"` // nanodollars accrued per day
	AccrualDays    float64             `yaml:"accrual_days"`    // banking cap in days of allowance
	Models         []Model             `yaml:"models"`          // first entry is the default
	Personalities  []PersonalityPreset `yaml:"personalities"`   // first entry is the default
	OneOffs        []OneOff            `yaml:"one_offs"`
}

// LoadBot reads and validates the bot configuration file
func LoadBot(path string) (*Bot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bot config file: %w", err)
	}

	var bot Bot
	if err := yaml.Unmarshal(data, &bot); err != nil {
		return nil, fmt.Errorf("failed to parse bot config file: %w", err)
	}

	if bot.DailyAllowance == 0 {
		bot.DailyAllowance = DefaultDailyAllowance
	}
	if bot.AccrualDays == 0 {
		bot.AccrualDays = DefaultAccrualDays
	}

	if err := bot.validate(); err != nil {
		return nil, err
	}

	return &bot, nil
}

// validate enforces the config invariants that must never surface at runtime
func (b *Bot) validate() error {
	if b.DailyAllowance < 0 {
		return fmt.Errorf("daily_allowance must be positive")
	}
	if b.AccrualDays < 0 {
		return fmt.Errorf("accrual_days must be positive")
	}
	if len(b.Models) == 0 {
		return fmt.Errorf("at least one model must be configured")
	}
	for _, model := range b.Models {
		if model.Name == "" {
			return fmt.Errorf("model with empty name in config")
		}
		if model.InputCost < 0 || model.OutputCost < 0 {
			return fmt.Errorf("model %q has a negative token price", model.Name)
		}
	}
	if len(b.Personalities) == 0 {
		return fmt.Errorf("at least one personality must be configured")
	}
	for _, preset := range b.Personalities {
		if preset.Name == "" {
			return fmt.Errorf("personality with empty name in config")
		}
		// The prefix is reserved for user-supplied system messages in storage;
		// a preset named like it could never be read back as itself.
		if strings.HasPrefix(preset.Name, models.CustomPersonalityPrefix) {
			return fmt.Errorf("personality name %q collides with the reserved custom prefix", preset.Name)
		}
	}
	names := make(map[string]bool)
	for _, oneOff := range b.OneOffs {
		if oneOff.Name == "" || oneOff.Argument == "" {
			return fmt.Errorf("one-off command with empty name or argument in config")
		}
		if names[oneOff.Name] {
			return fmt.Errorf("duplicate one-off command name %q", oneOff.Name)
		}
		names[oneOff.Name] = true
	}
	return nil
}

// DefaultModel returns the configured default model
func (b *Bot) DefaultModel() *Model {
	return &b.Models[0] // validate guarantees at least one
}

// ModelByName looks up a model by its wire identifier
func (b *Bot) ModelByName(name string) *Model {
	for i := range b.Models {
		if b.Models[i].Name == name {
			return &b.Models[i]
		}
	}
	return nil
}

// DefaultPersonality returns the configured default personality preset
func (b *Bot) DefaultPersonality() *PersonalityPreset {
	return &b.Personalities[0] // validate guarantees at least one
}

// PersonalityByName looks up a personality preset by name
func (b *Bot) PersonalityByName(name string) *PersonalityPreset {
	for i := range b.Personalities {
		if b.Personalities[i].Name == name {
			return &b.Personalities[i]
		}
	}
	return nil
}

// OneOffByName looks up a one-off command definition by name
func (b *Bot) OneOffByName(name string) *OneOff {
	for i := range b.OneOffs {
		if b.OneOffs[i].Name == name {
			return &b.OneOffs[i]
		}
	}
	return nil
}
