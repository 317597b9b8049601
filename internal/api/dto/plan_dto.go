package dto

import (
	"time"

	"github.com/spec-kit/subscription-service/internal/domain"
)

// PlanCreateRequest payload.
type PlanCreateRequest struct {
	Name     string   `json:"name" validate:"required"`
	Price    float64  `json:"price" validate:"gte=0"`
	Features []string `json:"features" validate:"required,dive,required"`
	Duration int      `json:"duration" validate:"required,gt=0"`
}

// PlanUpdateRequest payload; nil fields are left unchanged.
type PlanUpdateRequest struct {
	Name     *string  `json:"name" validate:"omitempty,min=1"`
	Price    *float64 `json:"price" validate:"omitempty,gte=0"`
	Features []string `json:"features" validate:"omitempty,dive,required"`
	Duration *int     `json:"duration" validate:"omitempty,gt=0"`
	IsActive *bool    `json:"isActive"`
}

// PlanResponse mirrors a plan record on the wire.
type PlanResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Features  []string  `json:"features"`
	Duration  int       `json:"duration"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewPlanResponse maps a domain plan.
func NewPlanResponse(plan domain.Plan) PlanResponse {
	return PlanResponse{
		ID:        plan.ID,
		Name:      plan.Name,
		Price:     plan.Price,
		Features:  plan.Features,
		Duration:  plan.DurationDays,
		IsActive:  plan.IsActive,
		CreatedAt: plan.CreatedAt,
		UpdatedAt: plan.UpdatedAt,
	}
}

// NewPlanResponses maps a plan slice.
func NewPlanResponses(plans []domain.Plan) []PlanResponse {
	out := make([]PlanResponse, 0, len(plans))
	for _, plan := range plans {
		out = append(out, NewPlanResponse(plan))
	}
	return out
}
