package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"parley/gpt"
	"parley/models"
)

// historyDepthLimit bounds how many stored nodes a reconstructed thread may
// span, keeping prompt sizes and chain walks finite even on corrupt or
// adversarial parent pointers.
const historyDepthLimit = 20

type conversationService struct {
	repo ConversationRepository
}

// NewConversationService creates a new conversation service
func NewConversationService(repo ConversationRepository) ConversationService {
	return &conversationService{
		repo: repo,
	}
}

func (s *conversationService) RecordRoot(ctx context.Context, message models.MessageRef, input, output string, personality *string) error {
	node := &models.ConversationNode{
		Message:     message,
		Input:       input,
		Output:      output,
		Personality: personality,
	}
	if err := s.repo.Create(ctx, node); err != nil {
		return fmt.Errorf("failed to record conversation root: %w", err)
	}
	return nil
}

func (s *conversationService) RecordChild(ctx context.Context, message, parent models.MessageRef, input, output string, personality *string) error {
	node := &models.ConversationNode{
		Message:     message,
		Parent:      &parent,
		Input:       input,
		Output:      output,
		Personality: personality,
	}
	if err := s.repo.Create(ctx, node); err != nil {
		return fmt.Errorf("failed to record conversation node: %w", err)
	}
	return nil
}

// History walks the parent chain upward from parent, collecting each node's
// input/output exchange, then reverses into chronological order behind the
// system message. The walk stops at a root, a dangling pointer, or the depth
// limit; partial history is returned as-is.
func (s *conversationService) History(ctx context.Context, parent models.MessageRef, systemMessage string) ([]gpt.Message, error) {
	var exchanges []*models.ConversationNode

	cursor := &parent
	for cursor != nil && len(exchanges) < historyDepthLimit {
		node, err := s.repo.GetNode(ctx, *cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to load conversation node: %w", err)
		}
		if node == nil {
			if len(exchanges) > 0 {
				log.WithFields(log.Fields{
					"guildID":   cursor.GuildID,
					"channelID": cursor.ChannelID,
					"messageID": cursor.MessageID,
				}).Warn("Conversation chain has dangling parent pointer")
			}
			break
		}
		exchanges = append(exchanges, node)
		cursor = node.Parent
	}

	history := make([]gpt.Message, 0, 1+2*len(exchanges))
	history = append(history, gpt.SystemMessage(systemMessage))
	for i := len(exchanges) - 1; i >= 0; i-- {
		history = append(history, gpt.UserMessage(exchanges[i].Input))
		history = append(history, gpt.AssistantMessage(exchanges[i].Output))
	}
	return history, nil
}

func (s *conversationService) ParentPersonality(ctx context.Context, parent models.MessageRef) (*string, error) {
	personality, err := s.repo.GetPersonality(ctx, parent)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation personality: %w", err)
	}
	return personality, nil
}

func (s *conversationService) IsOwnReply(ctx context.Context, messageID int64) (bool, error) {
	exists, err := s.repo.ExistsMessage(ctx, messageID)
	if err != nil {
		return false, fmt.Errorf("failed to check conversation message: %w", err)
	}
	return exists, nil
}
