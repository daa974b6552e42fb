package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"parley/config"
	"parley/events"
	"parley/gpt"
	"parley/models"
)

const (
	completionTemperature = 1.0
	completionMaxTokens   = 4096
)

// Completer abstracts the completion API client
type Completer interface {
	Complete(ctx context.Context, userID int64, model string, history []gpt.Message, temperature float64, maxTokens int) (*gpt.Completion, error)
}

// UserError is a failure whose message is meant to be shown to the user
// verbatim, typically as an ephemeral response
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

type queryService struct {
	allowance     AllowanceService
	conversations ConversationService
	settings      SettingsService
	completer     Completer
	eventBus      EventPublisher
	botConfig     *config.Bot
}

// NewQueryService creates a new query service
func NewQueryService(
	allowance AllowanceService,
	conversations ConversationService,
	settings SettingsService,
	completer Completer,
	eventBus EventPublisher,
	botConfig *config.Bot,
) QueryService {
	return &queryService{
		allowance:     allowance,
		conversations: conversations,
		settings:      settings,
		completer:     completer,
		eventBus:      eventBus,
		botConfig:     botConfig,
	}
}

func (s *queryService) Execute(ctx context.Context, req QueryRequest, reply ReplyFunc) error {
	logger := log.WithFields(log.Fields{
		"queryID":      uuid.New().String(),
		"userID":       req.UserID,
		"messageID":    req.Message.MessageID,
		"continuation": req.Parent != nil,
	})

	balance, err := s.allowance.Check(ctx, req.UserID)
	if err != nil {
		return err
	}
	if !balance.Unlimited && balance.Nanodollars <= 0 {
		logger.WithField("balance", balance.Nanodollars).Info("Query refused, allowance exhausted")
		_, err := reply(formatExhausted(balance, s.allowance.MaxBalance()))
		return err
	}

	// Resolve the thread personality and reconstruct the history the
	// completion will see.
	var personality ResolvedPersonality
	var history []gpt.Message
	if req.Parent != nil {
		tag, err := s.conversations.ParentPersonality(ctx, *req.Parent)
		if err != nil {
			return err
		}
		personality = s.settings.ResolveTag(tag)

		history, err = s.conversations.History(ctx, *req.Parent, personality.SystemMessage)
		if err != nil {
			return err
		}
		if len(history) == 1 {
			// The referenced reply was never stored, so there is no thread
			// to continue. Stay silent rather than answer out of context.
			logger.Info("Dropping query, referenced thread not found")
			return nil
		}
	} else {
		personality, err = s.settings.NewThreadPersonality(ctx, req.UserID)
		if err != nil {
			return err
		}
		history = []gpt.Message{gpt.SystemMessage(personality.SystemMessage)}
	}
	history = append(history, gpt.UserMessage(req.Prompt))

	// The one-shot override is consumed here, before the call, so a failed
	// completion still uses it up.
	model, err := s.settings.EffectiveModel(ctx, req.UserID)
	if err != nil {
		return err
	}
	logger = logger.WithField("model", model.Name)

	completion, err := s.completer.Complete(ctx, req.UserID, model.Name, history, completionTemperature, completionMaxTokens)
	if err != nil {
		var apiErr *gpt.APIError
		if errors.As(err, &apiErr) {
			logger.WithError(apiErr).Warn("Completion provider reported an error")
			_, err := reply(formatAPIError(apiErr))
			return err
		}
		logger.WithError(err).Error("Completion request failed")
		return err
	}

	newBalance, cost, err := s.allowance.Spend(ctx, req.UserID, model, completion.Usage)
	if err != nil {
		// The completion already happened; answer anyway and surface the
		// accounting failure in the log.
		logger.WithError(err).Error("Failed to record spending for answered query")
		newBalance, cost = balance, model.Cost(completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
	}

	content := formatResponse(personality.Emoji, completion.Content, completion.FinishReason, cost, newBalance, s.modelTag(model))
	sent, err := reply(content)
	if err != nil {
		logger.WithError(err).Error("Failed to deliver reply, conversation node not stored")
		return err
	}

	tag := models.EncodePersonality(personality.Personality)
	if req.Parent != nil {
		err = s.conversations.RecordChild(ctx, sent, *req.Parent, req.Prompt, completion.Content, &tag)
	} else {
		err = s.conversations.RecordRoot(ctx, sent, req.Prompt, completion.Content, &tag)
	}
	if err != nil {
		// The reply is already out; the thread just cannot be continued.
		logger.WithError(err).Error("Failed to store conversation node")
		return err
	}

	s.eventBus.Emit(ctx, events.QueryCompletedEvent{
		UserID:       req.UserID,
		GuildID:      req.Message.GuildID,
		ChannelID:    req.Message.ChannelID,
		MessageID:    req.Message.MessageID,
		Continuation: req.Parent != nil,
	})
	logger.WithField("cost", cost).Info("Query answered")
	return nil
}

func (s *queryService) OneOff(ctx context.Context, userID int64, emoji, systemMessage, input string) (string, error) {
	balance, err := s.allowance.Check(ctx, userID)
	if err != nil {
		return "", err
	}
	if !balance.Unlimited && balance.Nanodollars <= 0 {
		return "", &UserError{Message: formatExhausted(balance, s.allowance.MaxBalance())}
	}

	history := []gpt.Message{
		gpt.SystemMessage(systemMessage),
		gpt.UserMessage(input),
	}

	// A pending one-shot override applies here like anywhere else, consumed
	// before the call.
	model, err := s.settings.EffectiveModel(ctx, userID)
	if err != nil {
		return "", err
	}

	completion, err := s.completer.Complete(ctx, userID, model.Name, history, completionTemperature, completionMaxTokens)
	if err != nil {
		var apiErr *gpt.APIError
		if errors.As(err, &apiErr) {
			return "", &UserError{Message: formatAPIError(apiErr)}
		}
		return "", fmt.Errorf("one-off completion failed: %w", err)
	}

	newBalance, cost, err := s.allowance.Spend(ctx, userID, model, completion.Usage)
	if err != nil {
		log.WithError(err).WithField("userID", userID).Error("Failed to record spending for one-off")
		newBalance, cost = balance, model.Cost(completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
	}

	return formatResponse(emoji, completion.Content, completion.FinishReason, cost, newBalance, s.modelTag(model)), nil
}

// modelTag returns the friendly name shown in the reply trailer, empty when
// the query ran on the default model
func (s *queryService) modelTag(model *config.Model) string {
	if model.Name == s.botConfig.DefaultModel().Name {
		return ""
	}
	return model.FriendlyName
}
