package dto

import (
	"time"

	"github.com/spec-kit/subscription-service/internal/domain"
)

// SubscriptionCreateRequest payload.
type SubscriptionCreateRequest struct {
	UserID string `json:"userId" validate:"required,len=6,alphanum"`
	PlanID string `json:"planId" validate:"required,uuid"`
}

// SubscriptionUpdateRequest payload; nil fields are left unchanged.
type SubscriptionUpdateRequest struct {
	SubscriptionID string  `json:"subscriptionId" validate:"required,uuid"`
	PlanID         *string `json:"planId" validate:"omitempty,uuid"`
	AutoRenew      *bool   `json:"autoRenew"`
}

// SubscriptionCancelRequest payload.
type SubscriptionCancelRequest struct {
	SubscriptionID string `json:"subscriptionId" validate:"required,uuid"`
}

// SubscriptionResponse mirrors a subscription with its plan joined in.
// Plan is null for historical records whose plan was deleted.
type SubscriptionResponse struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	PlanID        string        `json:"planId"`
	Plan          *PlanResponse `json:"plan"`
	Status        string        `json:"status"`
	StartDate     time.Time     `json:"startDate"`
	EndDate       time.Time     `json:"endDate"`
	AutoRenew     bool          `json:"autoRenew"`
	PaymentStatus string        `json:"paymentStatus"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// NewSubscriptionResponse maps a joined subscription row.
func NewSubscriptionResponse(row domain.SubscriptionWithPlan) SubscriptionResponse {
	resp := SubscriptionResponse{
		ID:            row.ID,
		UserID:        row.UserID,
		PlanID:        row.PlanID,
		Status:        string(row.Status),
		StartDate:     row.StartDate,
		EndDate:       row.EndDate,
		AutoRenew:     row.AutoRenew,
		PaymentStatus: string(row.PaymentStatus),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.Plan != nil {
		plan := NewPlanResponse(*row.Plan)
		resp.Plan = &plan
	}
	return resp
}

// NewSubscriptionResponses maps a slice of joined rows.
func NewSubscriptionResponses(rows []domain.SubscriptionWithPlan) []SubscriptionResponse {
	out := make([]SubscriptionResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewSubscriptionResponse(row))
	}
	return out
}
