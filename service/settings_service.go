package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"parley/config"
	"parley/models"
)

// customPersonalityEmoji marks replies produced under a user-supplied system
// message, which has no configured preset to take an emoji from.
const customPersonalityEmoji = "🎭"

type settingsService struct {
	repo      SettingsRepository
	botConfig *config.Bot
}

// NewSettingsService creates a new settings service
func NewSettingsService(repo SettingsRepository, botConfig *config.Bot) SettingsService {
	return &settingsService{
		repo:      repo,
		botConfig: botConfig,
	}
}

func (s *settingsService) EffectiveModel(ctx context.Context, userID int64) (*config.Model, error) {
	name, err := s.repo.ConsumeModel(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to consume model override for user %d: %w", userID, err)
	}
	if name == nil {
		return s.botConfig.DefaultModel(), nil
	}

	model := s.botConfig.ModelByName(*name)
	if model == nil {
		// The model was removed from configuration after the override was stored.
		log.WithFields(log.Fields{
			"userID": userID,
			"model":  *name,
		}).Warn("Stored model override is no longer configured, using default")
		return s.botConfig.DefaultModel(), nil
	}
	return model, nil
}

func (s *settingsService) ToggleModelOverride(ctx context.Context, userID int64, name string) (*config.Model, error) {
	model := s.botConfig.ModelByName(name)
	if model == nil {
		return nil, fmt.Errorf("unknown model %q", name)
	}

	current, err := s.repo.GetModel(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get model override for user %d: %w", userID, err)
	}

	if current != nil && *current == model.Name {
		if err := s.repo.SetModel(ctx, userID, nil); err != nil {
			return nil, fmt.Errorf("failed to clear model override for user %d: %w", userID, err)
		}
		return nil, nil
	}

	if err := s.repo.SetModel(ctx, userID, &model.Name); err != nil {
		return nil, fmt.Errorf("failed to set model override for user %d: %w", userID, err)
	}
	return model, nil
}

func (s *settingsService) NewThreadPersonality(ctx context.Context, userID int64) (ResolvedPersonality, error) {
	stored, err := s.repo.GetPersonality(ctx, userID)
	if err != nil {
		return ResolvedPersonality{}, fmt.Errorf("failed to get personality for user %d: %w", userID, err)
	}
	return s.ResolveTag(stored), nil
}

func (s *settingsService) ResolveTag(tag *string) ResolvedPersonality {
	if tag == nil {
		return s.defaultPersonality()
	}

	personality := models.DecodePersonality(*tag)
	if personality.IsCustom() {
		return ResolvedPersonality{
			Personality:   personality,
			SystemMessage: personality.Custom,
			Emoji:         customPersonalityEmoji,
		}
	}

	preset := s.botConfig.PersonalityByName(personality.Preset)
	if preset == nil {
		log.WithField("personality", personality.Preset).
			Warn("Stored personality is no longer configured, using default")
		return s.defaultPersonality()
	}
	return ResolvedPersonality{
		Personality:   personality,
		SystemMessage: preset.SystemMessage,
		Emoji:         preset.Emoji,
	}
}

func (s *settingsService) SetPersonality(ctx context.Context, userID int64, personality *models.Personality) error {
	var stored *string
	if personality != nil {
		if !personality.IsCustom() && s.botConfig.PersonalityByName(personality.Preset) == nil {
			return fmt.Errorf("unknown personality %q", personality.Preset)
		}
		encoded := models.EncodePersonality(*personality)
		stored = &encoded
	}
	if err := s.repo.SetPersonality(ctx, userID, stored); err != nil {
		return fmt.Errorf("failed to set personality for user %d: %w", userID, err)
	}
	return nil
}

func (s *settingsService) defaultPersonality() ResolvedPersonality {
	preset := s.botConfig.DefaultPersonality()
	return ResolvedPersonality{
		Personality:   models.PresetPersonality(preset.Name),
		SystemMessage: preset.SystemMessage,
		Emoji:         preset.Emoji,
	}
}
