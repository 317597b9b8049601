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

// PlanService manages the admin plan catalog.
type PlanService struct {
	plans         repository.PlanRepository
	subscriptions repository.SubscriptionRepository
	catalog       *cache.Catalog
	dispatcher    events.Dispatcher
}

// PlanDependencies bundles requirements for the plan service.
type PlanDependencies struct {
	PlanRepo         repository.PlanRepository
	SubscriptionRepo repository.SubscriptionRepository
	Catalog          *cache.Catalog
	Dispatcher       events.Dispatcher
}

// PlanCreateInput describes plan creation payload.
type PlanCreateInput struct {
	Name         string
	Price        float64
	Features     []string
	DurationDays int
}

// PlanUpdateInput describes a partial plan update; nil fields are left
// unchanged.
type PlanUpdateInput struct {
	Name         *string
	Price        *float64
	Features     []string
	DurationDays *int
	IsActive     *bool
}

// NewPlanService constructs the service.
func NewPlanService(deps PlanDependencies) *PlanService {
	return &PlanService{
		plans:         deps.PlanRepo,
		subscriptions: deps.SubscriptionRepo,
		catalog:       deps.Catalog,
		dispatcher:    deps.Dispatcher,
	}
}

// CreatePlan inserts a new active plan with a unique name.
func (s *PlanService) CreatePlan(ctx context.Context, input PlanCreateInput) (*domain.Plan, error) {
	if _, err := s.plans.GetByName(ctx, input.Name); err == nil {
		return nil, apperrors.NewConflict("Plan with this name already exists")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	plan := &domain.Plan{
		Name:         input.Name,
		Price:        input.Price,
		Features:     input.Features,
		DurationDays: input.DurationDays,
		IsActive:     true,
	}
	if err := s.plans.Create(ctx, plan); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("Plan with this name already exists")
		}
		return nil, err
	}

	s.catalog.InvalidatePlans(ctx)
	s.publishPlanEvent(ctx, events.EventPlanCreated, plan)
	return plan, nil
}

// UpdatePlan applies only the supplied fields, guarding name uniqueness.
func (s *PlanService) UpdatePlan(ctx context.Context, id string, input PlanUpdateInput) (*domain.Plan, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Plan not found")
		}
		return nil, err
	}

	if input.Name != nil && *input.Name != plan.Name {
		if existing, err := s.plans.GetByName(ctx, *input.Name); err == nil && existing.ID != plan.ID {
			return nil, apperrors.NewConflict("Plan with this name already exists")
		} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		plan.Name = *input.Name
	}
	if input.Price != nil {
		plan.Price = *input.Price
	}
	if input.Features != nil {
		plan.Features = input.Features
	}
	if input.DurationDays != nil {
		plan.DurationDays = *input.DurationDays
	}
	if input.IsActive != nil {
		plan.IsActive = *input.IsActive
	}

	if err := s.plans.Update(ctx, plan); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("Plan with this name already exists")
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Plan not found")
		}
		return nil, err
	}

	s.catalog.InvalidatePlans(ctx)
	return plan, nil
}

// ListAll returns every plan for the admin view, newest first.
func (s *PlanService) ListAll(ctx context.Context) ([]domain.Plan, error) {
	return s.plans.ListAll(ctx)
}

// ListActive returns the public catalog of active plans, cache first.
func (s *PlanService) ListActive(ctx context.Context) ([]domain.Plan, error) {
	if plans, ok := s.catalog.GetActivePlans(ctx); ok {
		return plans, nil
	}

	plans, err := s.plans.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	s.catalog.SetActivePlans(ctx, plans)
	return plans, nil
}

// DeletePlan removes a plan permanently. Deletion is blocked while any
// ACTIVE subscription references the plan; historical records keep their
// dangling reference.
func (s *PlanService) DeletePlan(ctx context.Context, id string) error {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Plan not found")
		}
		return err
	}

	active, err := s.subscriptions.CountActiveByPlan(ctx, plan.ID)
	if err != nil {
		return err
	}
	if active > 0 {
		return apperrors.NewConflict("Cannot delete plan with active subscriptions")
	}

	if err := s.plans.Delete(ctx, plan.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Plan not found")
		}
		return err
	}

	s.catalog.InvalidatePlans(ctx)
	s.publishPlanEvent(ctx, events.EventPlanDeleted, plan)
	return nil
}

func (s *PlanService) publishPlanEvent(ctx context.Context, eventType events.EventType, plan *domain.Plan) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload: events.PlanPayload{
			PlanID:   plan.ID,
			Name:     plan.Name,
			Price:    plan.Price,
			Duration: plan.DurationDays,
		},
	})
}
