package service

import (
	"context"
	"time"

	"parley/config"
	"parley/events"
	"parley/gpt"
	"parley/models"
)

// AllowanceRepository defines the interface for allowance data access
type AllowanceRepository interface {
	// GetTimeToFull retrieves the stored replenishment instant for a user,
	// nil when the user has no account row
	GetTimeToFull(ctx context.Context, userID int64) (*time.Time, error)

	// SetTimeToFull stores the replenishment instant, overwriting any previous value
	SetTimeToFull(ctx context.Context, userID int64, timeToFull time.Time) error

	// RecordSpending appends a spending record
	RecordSpending(ctx context.Context, record *models.SpendingRecord) error

	// TotalSpendingByUser returns the summed cost of a user's recorded spending
	TotalSpendingByUser(ctx context.Context, userID int64) (int64, error)

	// TotalSpending returns the summed cost of all recorded spending
	TotalSpending(ctx context.Context) (int64, error)
}

// AllowanceTxRunner runs a function against an allowance repository bound to
// a single transaction, so the ledger debit and its spending record become
// durable together
type AllowanceTxRunner interface {
	Run(ctx context.Context, fn func(repo AllowanceRepository) error) error
}

// ConversationRepository defines the interface for conversation graph data access
type ConversationRepository interface {
	// Create inserts an immutable conversation node
	Create(ctx context.Context, node *models.ConversationNode) error

	// GetNode retrieves a node by message identity, nil when absent
	GetNode(ctx context.Context, ref models.MessageRef) (*models.ConversationNode, error)

	// GetPersonality retrieves a node's stored personality tag, nil when
	// the node is absent or untagged
	GetPersonality(ctx context.Context, ref models.MessageRef) (*string, error)

	// ExistsMessage reports whether any node has the given message ID
	ExistsMessage(ctx context.Context, messageID int64) (bool, error)
}

// SettingsRepository defines the interface for user settings data access
type SettingsRepository interface {
	// GetModel retrieves the one-shot model override without consuming it
	GetModel(ctx context.Context, userID int64) (*string, error)

	// SetModel stores or clears the one-shot model override
	SetModel(ctx context.Context, userID int64, model *string) error

	// ConsumeModel atomically reads and clears the one-shot model override
	ConsumeModel(ctx context.Context, userID int64) (*string, error)

	// GetPersonality retrieves the sticky personality setting
	GetPersonality(ctx context.Context, userID int64) (*string, error)

	// SetPersonality stores or clears the sticky personality setting
	SetPersonality(ctx context.Context, userID int64, personality *string) error
}

// AllowanceService defines the interface for the spending quota ledger
type AllowanceService interface {
	// Check returns the user's current balance, derived lazily from the
	// stored replenishment instant
	Check(ctx context.Context, userID int64) (models.Balance, error)

	// Spend debits the cost of a completion and appends a spending record.
	// Returns the balance after the debit and the cost in nanodollars.
	Spend(ctx context.Context, userID int64, model *config.Model, usage gpt.Usage) (models.Balance, int64, error)

	// MaxBalance returns the ceiling a balance accrues to, in nanodollars
	MaxBalance() int64

	// Expenditure returns a user's total recorded spending in nanodollars
	Expenditure(ctx context.Context, userID int64) (int64, error)

	// ExpenditureEveryone returns the total recorded spending of all users
	ExpenditureEveryone(ctx context.Context) (int64, error)
}

// ConversationService defines the interface for the conversation graph
type ConversationService interface {
	// RecordRoot stores a parentless node that starts a new thread
	RecordRoot(ctx context.Context, message models.MessageRef, input, output string, personality *string) error

	// RecordChild stores a node continuing the thread above parent
	RecordChild(ctx context.Context, message, parent models.MessageRef, input, output string, personality *string) error

	// History reconstructs the ancestor chain above parent into a
	// chronological completion history headed by the system message. A
	// result of length 1 means no stored history was found.
	History(ctx context.Context, parent models.MessageRef, systemMessage string) ([]gpt.Message, error)

	// ParentPersonality retrieves the personality tag stored on a node
	ParentPersonality(ctx context.Context, parent models.MessageRef) (*string, error)

	// IsOwnReply reports whether a message ID belongs to one of the bot's
	// own stored replies
	IsOwnReply(ctx context.Context, messageID int64) (bool, error)
}

// ResolvedPersonality is a personality joined with its effective system
// message and display attributes
type ResolvedPersonality struct {
	Personality   models.Personality
	SystemMessage string
	Emoji         string
}

// SettingsService resolves effective models and personalities for queries
// and backs the user-facing settings commands
type SettingsService interface {
	// EffectiveModel consumes the user's one-shot override and resolves it
	// to a configured model, falling back to the default. The override is
	// used up by this call whether or not the completion that follows
	// succeeds.
	EffectiveModel(ctx context.Context, userID int64) (*config.Model, error)

	// ToggleModelOverride sets the one-shot override to the named model, or
	// clears it when it is already set to that model. Returns the model now
	// stored, nil when cleared.
	ToggleModelOverride(ctx context.Context, userID int64, name string) (*config.Model, error)

	// NewThreadPersonality resolves the personality for a fresh thread:
	// the user's sticky setting when present, else the global default
	NewThreadPersonality(ctx context.Context, userID int64) (ResolvedPersonality, error)

	// ResolveTag resolves a personality tag stored on a parent node,
	// falling back to the global default when nil or no longer configured
	ResolveTag(tag *string) ResolvedPersonality

	// SetPersonality stores the user's sticky personality; nil clears it
	SetPersonality(ctx context.Context, userID int64, personality *models.Personality) error
}

// ReplyFunc delivers the bot's answer for a query and returns the identity
// of the sent reply message, which keys the stored conversation node
type ReplyFunc func(content string) (models.MessageRef, error)

// QueryRequest is one resolved inbound conversation message
type QueryRequest struct {
	UserID  int64
	Message models.MessageRef
	Prompt  string
	Parent  *models.MessageRef // nil starts a new thread
}

// QueryService runs the end-to-end query pipeline
type QueryService interface {
	// Execute answers a conversation message: allowance gate, history
	// reconstruction, completion call, debit, reply, node persistence.
	// Outcomes the user should see are delivered through reply; a returned
	// error means an internal failure after which no reply was sent.
	Execute(ctx context.Context, req QueryRequest, reply ReplyFunc) error

	// OneOff answers a single prompt under a fixed system message without
	// touching the conversation graph. Returns the formatted reply text.
	OneOff(ctx context.Context, userID int64, emoji, systemMessage, input string) (string, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event)
}
