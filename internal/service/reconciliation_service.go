package service

import (
	"context"

	"venue-booking/internal/model"
	"venue-booking/internal/repository"
	"venue-booking/pkg/logger"

	"go.uber.org/zap"
)

// RetrySummary 一輪重試的結果統計
type RetrySummary struct {
	Attempted int
	Resolved  int
	Failed    int
}

type ReconciliationService interface {
	ListOpen(ctx context.Context) ([]*model.ReconciliationIssue, error)
	Retry(ctx context.Context, intentID string) (*model.FinalizeResult, error)
	// RetryPending sweeps open issues below the attempt limit.
	RetryPending(ctx context.Context) (RetrySummary, error)
}

type ReconciliationServiceImpl struct {
	repo        repository.ReconciliationRepository
	checkout    CheckoutService
	maxAttempts int
}

func NewReconciliationService(repo repository.ReconciliationRepository, checkout CheckoutService, maxAttempts int) ReconciliationService {
	return &ReconciliationServiceImpl{repo: repo, checkout: checkout, maxAttempts: maxAttempts}
}

func (s *ReconciliationServiceImpl) ListOpen(ctx context.Context) ([]*model.ReconciliationIssue, error) {
	return s.repo.ListUnresolved(ctx, 0)
}

func (s *ReconciliationServiceImpl) Retry(ctx context.Context, intentID string) (*model.FinalizeResult, error) {
	if _, err := s.repo.FindByIntentID(ctx, intentID); err != nil {
		return nil, err
	}
	return s.checkout.ReconcileIntent(ctx, intentID, model.SourceRetry)
}

func (s *ReconciliationServiceImpl) RetryPending(ctx context.Context) (RetrySummary, error) {
	var summary RetrySummary

	issues, err := s.repo.ListUnresolved(ctx, s.maxAttempts)
	if err != nil {
		return summary, err
	}

	log := logger.WithComponent("worker")
	for _, issue := range issues {
		if ctx.Err() != nil {
			break
		}
		summary.Attempted++

		result, err := s.checkout.ReconcileIntent(ctx, issue.PaymentIntentID, model.SourceRetry)
		if err != nil {
			summary.Failed++
			log.Warn("reconciliation retry failed",
				zap.String("payment_intent_id", issue.PaymentIntentID), zap.Error(err))
			continue
		}
		if result.Outcome == model.OutcomeReconciliationRequired {
			summary.Failed++
			continue
		}
		summary.Resolved++
	}

	return summary, nil
}
