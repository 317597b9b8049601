package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/subscription-service/internal/cache"
	"github.com/spec-kit/subscription-service/internal/domain"
	"github.com/spec-kit/subscription-service/internal/events"
	"github.com/spec-kit/subscription-service/internal/repository"
	apperrors "github.com/spec-kit/subscription-service/pkg/util"
)

// SubscriptionService manages the subscription lifecycle: create, plan
// change, cancel and the user-facing queries.
type SubscriptionService struct {
	users         repository.UserRepository
	plans         repository.PlanRepository
	subscriptions repository.SubscriptionRepository
	catalog       *cache.Catalog
	dispatcher    events.Dispatcher
}

// SubscriptionDependencies bundles requirements for the lifecycle manager.
type SubscriptionDependencies struct {
	UserRepo         repository.UserRepository
	PlanRepo         repository.PlanRepository
	SubscriptionRepo repository.SubscriptionRepository
	Catalog          *cache.Catalog
	Dispatcher       events.Dispatcher
}

// SubscriptionUpdateInput describes a partial subscription update; nil
// fields are left unchanged.
type SubscriptionUpdateInput struct {
	PlanID    *string
	AutoRenew *bool
}

// NewSubscriptionService constructs the service.
func NewSubscriptionService(deps SubscriptionDependencies) *SubscriptionService {
	return &SubscriptionService{
		users:         deps.UserRepo,
		plans:         deps.PlanRepo,
		subscriptions: deps.SubscriptionRepo,
		catalog:       deps.Catalog,
		dispatcher:    deps.Dispatcher,
	}
}

// Create subscribes a user to an active plan they do not already hold an
// ACTIVE subscription for. The end date derives from the plan duration.
func (s *SubscriptionService) Create(ctx context.Context, userID, planID string) (*domain.SubscriptionWithPlan, error) {
	if _, err := s.users.GetByPublicID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("User not found")
		}
		return nil, err
	}

	plan, err := s.plans.GetActiveByID(ctx, planID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Plan not found or inactive")
		}
		return nil, err
	}

	if _, err := s.subscriptions.FindActiveByUserAndPlan(ctx, userID, plan.ID, ""); err == nil {
		return nil, apperrors.NewConflict("User already has an active subscription for this plan")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	now := time.Now()
	sub := &domain.Subscription{
		UserID:        userID,
		PlanID:        plan.ID,
		Status:        domain.SubscriptionStatusActive,
		StartDate:     now,
		EndDate:       now.AddDate(0, 0, plan.DurationDays),
		AutoRenew:     true,
		PaymentStatus: domain.PaymentStatusPending,
	}
	if err := s.subscriptions.Create(ctx, sub); err != nil {
		// the partial unique index decides concurrent duplicate attempts
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("User already has an active subscription for this plan")
		}
		return nil, err
	}

	s.publishSubscriptionEvent(ctx, events.EventSubscriptionCreated, sub, plan)
	return &domain.SubscriptionWithPlan{Subscription: *sub, Plan: plan}, nil
}

// Update changes the plan and/or the auto-renew flag of an ACTIVE
// subscription. A plan change recomputes the end date from now; progress on
// the old plan's term is discarded, not prorated.
func (s *SubscriptionService) Update(ctx context.Context, userID, subscriptionID string, input SubscriptionUpdateInput) (*domain.SubscriptionWithPlan, error) {
	sub, err := s.subscriptions.GetActiveByIDAndUser(ctx, subscriptionID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("No active subscription found")
		}
		return nil, err
	}

	var plan *domain.Plan
	planChanged := false
	if input.PlanID != nil {
		plan, err = s.plans.GetActiveByID(ctx, *input.PlanID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("Plan not found or inactive")
			}
			return nil, err
		}

		// the caller's own subscription is excluded from the duplicate check
		if _, err := s.subscriptions.FindActiveByUserAndPlan(ctx, userID, plan.ID, sub.ID); err == nil {
			return nil, apperrors.NewConflict("User already has an active subscription for this plan")
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}

		sub.PlanID = plan.ID
		sub.EndDate = time.Now().AddDate(0, 0, plan.DurationDays)
		planChanged = true
	}

	if input.AutoRenew != nil {
		sub.AutoRenew = *input.AutoRenew
	}

	if err := s.subscriptions.Update(ctx, sub); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("User already has an active subscription for this plan")
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("No active subscription found")
		}
		return nil, err
	}

	if plan == nil {
		if plan, err = s.plans.GetByID(ctx, sub.PlanID); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}
	if planChanged {
		s.publishSubscriptionEvent(ctx, events.EventSubscriptionPlanChanged, sub, plan)
	}
	return &domain.SubscriptionWithPlan{Subscription: *sub, Plan: plan}, nil
}

// Cancel marks an ACTIVE subscription CANCELLED and turns auto-renew off.
// CANCELLED is terminal; cancelling again reports NotFound because the
// record is no longer ACTIVE.
func (s *SubscriptionService) Cancel(ctx context.Context, userID, subscriptionID string) error {
	sub, err := s.subscriptions.GetActiveByIDAndUser(ctx, subscriptionID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("No active subscription found")
		}
		return err
	}

	sub.Status = domain.SubscriptionStatusCancelled
	sub.AutoRenew = false
	if err := s.subscriptions.Update(ctx, sub); err != nil {
		return err
	}

	s.publishSubscriptionEvent(ctx, events.EventSubscriptionCancelled, sub, nil)
	return nil
}

// ListActive returns the user's ACTIVE subscriptions, newest first, with
// plan details joined in. Zero active subscriptions is reported as NotFound.
func (s *SubscriptionService) ListActive(ctx context.Context, userID string) ([]domain.SubscriptionWithPlan, error) {
	subs, err := s.subscriptions.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, apperrors.NewNotFound("No active subscriptions found")
	}
	return subs, nil
}

// History returns every subscription for the user, any status, newest
// first. An empty history is not an error.
func (s *SubscriptionService) History(ctx context.Context, userID string) ([]domain.SubscriptionWithPlan, error) {
	return s.subscriptions.ListByUser(ctx, userID)
}

// Stats returns subscription counts grouped by status, cache first.
func (s *SubscriptionService) Stats(ctx context.Context) (map[domain.SubscriptionStatus]int, error) {
	if stats, ok := s.catalog.GetStats(ctx); ok {
		return stats, nil
	}

	stats, err := s.subscriptions.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	s.catalog.SetStats(ctx, stats)
	return stats, nil
}

func (s *SubscriptionService) publishSubscriptionEvent(ctx context.Context, eventType events.EventType, sub *domain.Subscription, plan *domain.Plan) {
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
