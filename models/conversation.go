package models

// MessageRef identifies a Discord message across the platform's namespace.
// The message ID alone is unique in practice, but the guild and channel are
// needed to fetch the message and to authorize cross-channel references.
type MessageRef struct {
	GuildID   int64 `db:"guild_id"`
	ChannelID int64 `db:"channel_id"`
	MessageID int64 `db:"message_id"`
}

// ConversationNode is one stored exchange in a conversation thread. The node
// is keyed by the bot's own reply message, so replying to that message
// continues the thread. A nil Parent marks a thread root.
type ConversationNode struct {
	Message     MessageRef
	Parent      *MessageRef
	Input       string
	Output      string
	Personality *string // encoded personality tag, nil means "default at read time"
}
