package repository

import (
	"context"
	"fmt"

	"parley/database"
	"parley/models"

	"github.com/jackc/pgx/v5"
)

// ConversationRepository implements the ConversationRepository interface
type ConversationRepository struct {
	q queryable
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *database.DB) *ConversationRepository {
	return &ConversationRepository{q: db.Pool}
}

// Create inserts a conversation node. Nodes are immutable once stored; the
// caller only ever passes parent references obtained from earlier successful
// inserts, which keeps the graph an acyclic forest.
func (r *ConversationRepository) Create(ctx context.Context, node *models.ConversationNode) error {
	query := `
		INSERT INTO conversations (
			guild_id, channel_id, message_id,
			parent_guild_id, parent_channel_id, parent_message_id,
			input, output, personality
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var parentGuildID, parentChannelID, parentMessageID *int64
	if node.Parent != nil {
		parentGuildID = &node.Parent.GuildID
		parentChannelID = &node.Parent.ChannelID
		parentMessageID = &node.Parent.MessageID
	}

	_, err := r.q.Exec(ctx, query,
		node.Message.GuildID,
		node.Message.ChannelID,
		node.Message.MessageID,
		parentGuildID,
		parentChannelID,
		parentMessageID,
		node.Input,
		node.Output,
		node.Personality,
	)
	if err != nil {
		return fmt.Errorf("failed to create conversation node %d: %w", node.Message.MessageID, err)
	}

	return nil
}

// GetNode retrieves a conversation node by its message identity.
// Returns nil when no node exists for the reference.
func (r *ConversationRepository) GetNode(ctx context.Context, ref models.MessageRef) (*models.ConversationNode, error) {
	query := `
		SELECT
			guild_id, channel_id, message_id,
			parent_guild_id, parent_channel_id, parent_message_id,
			input, output, personality
		FROM conversations
		WHERE guild_id = $1 AND channel_id = $2 AND message_id = $3
	`

	var node models.ConversationNode
	var parentGuildID, parentChannelID, parentMessageID *int64
	err := r.q.QueryRow(ctx, query, ref.GuildID, ref.ChannelID, ref.MessageID).Scan(
		&node.Message.GuildID,
		&node.Message.ChannelID,
		&node.Message.MessageID,
		&parentGuildID,
		&parentChannelID,
		&parentMessageID,
		&node.Input,
		&node.Output,
		&node.Personality,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation node %d: %w", ref.MessageID, err)
	}

	if parentMessageID != nil {
		node.Parent = &models.MessageRef{
			GuildID:   *parentGuildID,
			ChannelID: *parentChannelID,
			MessageID: *parentMessageID,
		}
	}

	return &node, nil
}

// GetPersonality retrieves the stored personality tag of a node.
// Returns nil when the node does not exist or carries no tag.
func (r *ConversationRepository) GetPersonality(ctx context.Context, ref models.MessageRef) (*string, error) {
	query := `
		SELECT personality
		FROM conversations
		WHERE guild_id = $1 AND channel_id = $2 AND message_id = $3
	`

	var personality *string
	err := r.q.QueryRow(ctx, query, ref.GuildID, ref.ChannelID, ref.MessageID).Scan(&personality)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get personality for node %d: %w", ref.MessageID, err)
	}

	return personality, nil
}

// ExistsMessage reports whether any stored node has the given message ID.
// Deep links carry guild and channel ids chosen by whoever pasted the link,
// so own-message checks trust only the message id.
func (r *ConversationRepository) ExistsMessage(ctx context.Context, messageID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM conversations WHERE message_id = $1
		)
	`

	var exists bool
	if err := r.q.QueryRow(ctx, query, messageID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check conversation node %d: %w", messageID, err)
	}

	return exists, nil
}
