package service

import (
	"context"
	"time"

	"parley/config"
	"parley/events"
	"parley/gpt"
	"parley/models"

	"github.com/stretchr/testify/mock"
)

// MockAllowanceRepository is a mock implementation of AllowanceRepository
type MockAllowanceRepository struct {
	mock.Mock
}

func (m *MockAllowanceRepository) GetTimeToFull(ctx context.Context, userID int64) (*time.Time, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockAllowanceRepository) SetTimeToFull(ctx context.Context, userID int64, timeToFull time.Time) error {
	args := m.Called(ctx, userID, timeToFull)
	return args.Error(0)
}

func (m *MockAllowanceRepository) RecordSpending(ctx context.Context, record *models.SpendingRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAllowanceRepository) TotalSpendingByUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAllowanceRepository) TotalSpending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// passthroughTxRunner runs the function directly against a repository,
// standing in for a real transaction in unit tests
type passthroughTxRunner struct {
	repo AllowanceRepository
}

func (r *passthroughTxRunner) Run(ctx context.Context, fn func(repo AllowanceRepository) error) error {
	return fn(r.repo)
}

// MockConversationRepository is a mock implementation of ConversationRepository
type MockConversationRepository struct {
	mock.Mock
}

func (m *MockConversationRepository) Create(ctx context.Context, node *models.ConversationNode) error {
	args := m.Called(ctx, node)
	return args.Error(0)
}

func (m *MockConversationRepository) GetNode(ctx context.Context, ref models.MessageRef) (*models.ConversationNode, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ConversationNode), args.Error(1)
}

func (m *MockConversationRepository) GetPersonality(ctx context.Context, ref models.MessageRef) (*string, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

func (m *MockConversationRepository) ExistsMessage(ctx context.Context, messageID int64) (bool, error) {
	args := m.Called(ctx, messageID)
	return args.Bool(0), args.Error(1)
}

// MockSettingsRepository is a mock implementation of SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) GetModel(ctx context.Context, userID int64) (*string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

func (m *MockSettingsRepository) SetModel(ctx context.Context, userID int64, model *string) error {
	args := m.Called(ctx, userID, model)
	return args.Error(0)
}

func (m *MockSettingsRepository) ConsumeModel(ctx context.Context, userID int64) (*string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

func (m *MockSettingsRepository) GetPersonality(ctx context.Context, userID int64) (*string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

func (m *MockSettingsRepository) SetPersonality(ctx context.Context, userID int64, personality *string) error {
	args := m.Called(ctx, userID, personality)
	return args.Error(0)
}

// MockAllowanceService is a mock implementation of AllowanceService
type MockAllowanceService struct {
	mock.Mock
}

func (m *MockAllowanceService) Check(ctx context.Context, userID int64) (models.Balance, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.Balance), args.Error(1)
}

func (m *MockAllowanceService) Spend(ctx context.Context, userID int64, model *config.Model, usage gpt.Usage) (models.Balance, int64, error) {
	args := m.Called(ctx, userID, model, usage)
	return args.Get(0).(models.Balance), args.Get(1).(int64), args.Error(2)
}

func (m *MockAllowanceService) MaxBalance() int64 {
	args := m.Called()
	return args.Get(0).(int64)
}

func (m *MockAllowanceService) Expenditure(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAllowanceService) ExpenditureEveryone(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockConversationService is a mock implementation of ConversationService
type MockConversationService struct {
	mock.Mock
}

func (m *MockConversationService) RecordRoot(ctx context.Context, message models.MessageRef, input, output string, personality *string) error {
	args := m.Called(ctx, message, input, output, personality)
	return args.Error(0)
}

func (m *MockConversationService) RecordChild(ctx context.Context, message, parent models.MessageRef, input, output string, personality *string) error {
	args := m.Called(ctx, message, parent, input, output, personality)
	return args.Error(0)
}

func (m *MockConversationService) History(ctx context.Context, parent models.MessageRef, systemMessage string) ([]gpt.Message, error) {
	args := m.Called(ctx, parent, systemMessage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gpt.Message), args.Error(1)
}

func (m *MockConversationService) ParentPersonality(ctx context.Context, parent models.MessageRef) (*string, error) {
	args := m.Called(ctx, parent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

func (m *MockConversationService) IsOwnReply(ctx context.Context, messageID int64) (bool, error) {
	args := m.Called(ctx, messageID)
	return args.Bool(0), args.Error(1)
}

// MockSettingsService is a mock implementation of SettingsService
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) EffectiveModel(ctx context.Context, userID int64) (*config.Model, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*config.Model), args.Error(1)
}

func (m *MockSettingsService) ToggleModelOverride(ctx context.Context, userID int64, name string) (*config.Model, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*config.Model), args.Error(1)
}

func (m *MockSettingsService) NewThreadPersonality(ctx context.Context, userID int64) (ResolvedPersonality, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(ResolvedPersonality), args.Error(1)
}

func (m *MockSettingsService) ResolveTag(tag *string) ResolvedPersonality {
	args := m.Called(tag)
	return args.Get(0).(ResolvedPersonality)
}

func (m *MockSettingsService) SetPersonality(ctx context.Context, userID int64, personality *models.Personality) error {
	args := m.Called(ctx, userID, personality)
	return args.Error(0)
}

// MockQueryService is a mock implementation of QueryService
type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) Execute(ctx context.Context, req QueryRequest, reply ReplyFunc) error {
	args := m.Called(ctx, req, reply)
	return args.Error(0)
}

func (m *MockQueryService) OneOff(ctx context.Context, userID int64, emoji, systemMessage, input string) (string, error) {
	args := m.Called(ctx, userID, emoji, systemMessage, input)
	return args.String(0), args.Error(1)
}

// MockCompleter is a mock implementation of Completer
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, userID int64, model string, history []gpt.Message, temperature float64, maxTokens int) (*gpt.Completion, error) {
	args := m.Called(ctx, userID, model, history, temperature, maxTokens)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gpt.Completion), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Emit(ctx context.Context, event events.Event) {
	m.Called(ctx, event)
}
