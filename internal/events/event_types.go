package events

import (
	"time"

	"github.com/spec-kit/subscription-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSubscriptionCreated     EventType = "subscription_created"
	EventSubscriptionPlanChanged EventType = "subscription_plan_changed"
	EventSubscriptionCancelled   EventType = "subscription_cancelled"
	EventSubscriptionRenewed     EventType = "subscription_renewed"
	EventSubscriptionExpired     EventType = "subscription_expired"
	EventPlanCreated             EventType = "plan_created"
	EventPlanDeleted             EventType = "plan_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SubscriptionPayload accompanies subscription lifecycle events.
type SubscriptionPayload struct {
	SubscriptionID string                    `json:"subscription_id"`
	PlanID         string                    `json:"plan_id"`
	PlanName       string                    `json:"plan_name,omitempty"`
	Status         domain.SubscriptionStatus `json:"status"`
	EndDate        time.Time                 `json:"end_date"`
	AutoRenew      bool                      `json:"auto_renew"`
}

// PlanPayload accompanies plan catalog events.
type PlanPayload struct {
	PlanID   string  `json:"plan_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Duration int     `json:"duration_days"`
}
