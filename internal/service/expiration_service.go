package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/subscription-service/internal/domain"
	"github.com/spec-kit/subscription-service/internal/events"
	"github.com/spec-kit/subscription-service/internal/repository"
)

// ExpirationService implements the expiration sweep: every ACTIVE
// subscription whose end date has passed is either auto-renewed for a fresh
// term or marked EXPIRED.
type ExpirationService struct {
	subscriptions repository.SubscriptionRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// SweepResult summarizes one sweep pass.
type SweepResult struct {
	Renewed int
	Expired int
	Failed  int
}

// NewExpirationService constructs the service.
func NewExpirationService(subscriptions repository.SubscriptionRepository, dispatcher events.Dispatcher, logger *zap.Logger) *ExpirationService {
	return &ExpirationService{
		subscriptions: subscriptions,
		dispatcher:    dispatcher,
		logger:        logger,
	}
}

// ProcessExpired runs one sweep pass as of the given instant. Each record is
// persisted individually; a failure on one record does not abort the rest.
// Re-running immediately is a no-op: renewed records have a future end date
// and expired ones drop out of the selection.
func (s *ExpirationService) ProcessExpired(ctx context.Context, asOf time.Time) (SweepResult, error) {
	var result SweepResult

	candidates, err := s.subscriptions.ListExpired(ctx, asOf)
	if err != nil {
		return result, err
	}

	for i := range candidates {
		sub := candidates[i].Subscription
		plan := candidates[i].Plan

		if sub.AutoRenew && plan != nil {
			// renewal is always assumed to succeed; no payment is collected
			sub.EndDate = asOf.AddDate(0, 0, plan.DurationDays)
			sub.PaymentStatus = domain.PaymentStatusPending
			if err := s.subscriptions.Update(ctx, &sub); err != nil {
				s.logger.Error("failed to renew subscription",
					zap.String("subscription_id", sub.ID), zap.Error(err))
				result.Failed++
				continue
			}
			result.Renewed++
			s.publish(ctx, events.EventSubscriptionRenewed, &sub, plan)
			continue
		}

		if sub.AutoRenew && plan == nil {
			// should not happen: plan deletion is blocked while the
			// subscription is ACTIVE
			s.logger.Error("active subscription references missing plan",
				zap.String("subscription_id", sub.ID), zap.String("plan_id", sub.PlanID))
			result.Failed++
			continue
		}

		sub.Status = domain.SubscriptionStatusExpired
		if err := s.subscriptions.Update(ctx, &sub); err != nil {
			s.logger.Error("failed to expire subscription",
				zap.String("subscription_id", sub.ID), zap.Error(err))
			result.Failed++
			continue
		}
		result.Expired++
		s.publish(ctx, events.EventSubscriptionExpired, &sub, plan)
	}

	return result, nil
}

func (s *ExpirationService) publish(ctx context.Context, eventType events.EventType, sub *domain.Subscription, plan *domain.Plan) {
	if s.dispatcher == nil {
		return
	}
	payload := events.SubscriptionPayload{
		SubscriptionID: sub.ID,
		PlanID:         sub.PlanID,
		Status:         sub.Status,
		EndDate:        sub.EndDate,
		AutoRenew:      sub.AutoRenew,
	}
	if plan != nil {
		payload.PlanName = plan.Name
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    sub.UserID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
