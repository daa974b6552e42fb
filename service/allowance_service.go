package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"parley/config"
	"parley/events"
	"parley/gpt"
	"parley/models"
)

const millisecondsPerDay = 24 * 60 * 60 * 1000

type allowanceService struct {
	repo     AllowanceRepository
	txRunner AllowanceTxRunner
	eventBus EventPublisher

	dailyAllowance int64 // nanodollars accrued per day
	maxBalance     int64 // nanodollars
	unlimited      config.CustomAPIKeys

	now func() time.Time
}

// NewAllowanceService creates a new allowance service. Users present in
// customKeys bill their own API key and are exempt from the quota.
func NewAllowanceService(
	repo AllowanceRepository,
	txRunner AllowanceTxRunner,
	eventBus EventPublisher,
	botConfig *config.Bot,
	customKeys config.CustomAPIKeys,
) AllowanceService {
	return &allowanceService{
		repo:           repo,
		txRunner:       txRunner,
		eventBus:       eventBus,
		dailyAllowance: botConfig.DailyAllowance,
		maxBalance:     int64(float64(botConfig.DailyAllowance) * botConfig.AccrualDays),
		unlimited:      customKeys,
		now:            time.Now,
	}
}

func (s *allowanceService) MaxBalance() int64 {
	return s.maxBalance
}

func (s *allowanceService) Check(ctx context.Context, userID int64) (models.Balance, error) {
	if _, ok := s.unlimited[userID]; ok {
		return models.Balance{Unlimited: true}, nil
	}

	timeToFull, err := s.repo.GetTimeToFull(ctx, userID)
	if err != nil {
		return models.Balance{}, fmt.Errorf("failed to get allowance for user %d: %w", userID, err)
	}

	now := s.now()
	balance := models.Balance{Nanodollars: s.balanceAt(timeToFull, now)}
	if timeToFull != nil && timeToFull.After(now) {
		balance.FullAt = *timeToFull
	}
	return balance, nil
}

func (s *allowanceService) Spend(ctx context.Context, userID int64, model *config.Model, usage gpt.Usage) (models.Balance, int64, error) {
	cost := model.Cost(usage.PromptTokens, usage.CompletionTokens)
	_, isUnlimited := s.unlimited[userID]

	record := &models.SpendingRecord{
		UserID:       userID,
		Cost:         cost,
		InputTokens:  usage.PromptTokens,
		OutputTokens: usage.CompletionTokens,
		Model:        model.Name,
	}

	var balance models.Balance
	err := s.txRunner.Run(ctx, func(repo AllowanceRepository) error {
		if isUnlimited {
			balance = models.Balance{Unlimited: true}
			return repo.RecordSpending(ctx, record)
		}

		timeToFull, err := repo.GetTimeToFull(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get allowance for user %d: %w", userID, err)
		}

		now := s.now()
		newTimeToFull := s.debit(timeToFull, now, cost)
		if err := repo.SetTimeToFull(ctx, userID, newTimeToFull); err != nil {
			return fmt.Errorf("failed to update allowance for user %d: %w", userID, err)
		}
		if err := repo.RecordSpending(ctx, record); err != nil {
			return err
		}

		balance = models.Balance{Nanodollars: s.balanceAt(&newTimeToFull, now), FullAt: newTimeToFull}
		return nil
	})
	if err != nil {
		return models.Balance{}, 0, err
	}

	s.eventBus.Emit(ctx, events.SpendingEvent{
		UserID:       userID,
		Cost:         cost,
		InputTokens:  usage.PromptTokens,
		OutputTokens: usage.CompletionTokens,
		Model:        model.Name,
		Unlimited:    isUnlimited,
	})

	log.WithFields(log.Fields{
		"userID":    userID,
		"model":     model.Name,
		"cost":      cost,
		"unlimited": isUnlimited,
	}).Info("Recorded completion spending")

	return balance, cost, nil
}

func (s *allowanceService) Expenditure(ctx context.Context, userID int64) (int64, error) {
	total, err := s.repo.TotalSpendingByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get spending for user %d: %w", userID, err)
	}
	return total, nil
}

func (s *allowanceService) ExpenditureEveryone(ctx context.Context) (int64, error) {
	total, err := s.repo.TotalSpending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get total spending: %w", err)
	}
	return total, nil
}

// balanceAt derives the balance from a stored replenishment instant. A nil
// or past instant means the quota has fully accrued.
func (s *allowanceService) balanceAt(timeToFull *time.Time, now time.Time) int64 {
	if timeToFull == nil || !timeToFull.After(now) {
		return s.maxBalance
	}
	missingMs := timeToFull.Sub(now).Milliseconds()
	return s.maxBalance - missingMs*s.dailyAllowance/millisecondsPerDay
}

// debit converts a cost into accrual time and pushes the replenishment
// instant that far into the future. The balance is allowed to go negative,
// so a partially-funded query can always finish; the gate in the query
// pipeline keeps debt from compounding.
func (s *allowanceService) debit(timeToFull *time.Time, now time.Time, cost int64) time.Time {
	base := now
	if timeToFull != nil && timeToFull.After(now) {
		base = *timeToFull
	}
	addedMs := cost * millisecondsPerDay / s.dailyAllowance
	return base.Add(time.Duration(addedMs) * time.Millisecond)
}
