package domain

import "time"

// SubscriptionStatus enumerates lifecycle states for subscriptions.
// CANCELLED and EXPIRED are terminal; a record never transitions back to
// ACTIVE, only a new subscription can.
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusInactive  SubscriptionStatus = "INACTIVE"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionStatusExpired   SubscriptionStatus = "EXPIRED"
)

// PaymentStatus tracks the payment state of a term. Nothing in this system
// collects payment yet; COMPLETED and FAILED are reserved for a future
// gateway integration.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// Subscription is a user's time-bounded association with one plan.
// UserID holds the user's public identifier, PlanID the plan record id.
type Subscription struct {
	ID            string
	UserID        string
	PlanID        string
	Status        SubscriptionStatus
	StartDate     time.Time
	EndDate       time.Time
	AutoRenew     bool
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SubscriptionWithPlan carries a subscription together with its plan details
// so callers never need a second round trip to resolve the plan reference.
// Plan is nil for historical records whose plan was deleted.
type SubscriptionWithPlan struct {
	Subscription
	Plan *Plan
}
