package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/subscription-service/internal/api/dto"
	"github.com/spec-kit/subscription-service/internal/service"
)

// SubscriptionsHandler exposes the subscription lifecycle endpoints.
type SubscriptionsHandler struct {
	subscriptions *service.SubscriptionService
	plans         *service.PlanService
	validate      *validator.Validate
}

// NewSubscriptionsHandler constructs handler.
func NewSubscriptionsHandler(subscriptionService *service.SubscriptionService, planService *service.PlanService) *SubscriptionsHandler {
	return &SubscriptionsHandler{
		subscriptions: subscriptionService,
		plans:         planService,
		validate:      validator.New(),
	}
}

// Create handles POST /subscriptions.
func (h *SubscriptionsHandler) Create(c *fiber.Ctx) error {
	var req dto.SubscriptionCreateRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	sub, err := h.subscriptions.Create(c.Context(), req.UserID, req.PlanID)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success":      true,
		"message":      "Subscription created successfully",
		"subscription": dto.NewSubscriptionResponse(*sub),
	})
}

// GetActive handles GET /subscriptions/:userId.
func (h *SubscriptionsHandler) GetActive(c *fiber.Ctx) error {
	subs, err := h.subscriptions.ListActive(c.Context(), c.Params("userId"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"subscriptions": dto.NewSubscriptionResponses(subs),
	})
}

// Update handles PUT /subscriptions/:userId.
func (h *SubscriptionsHandler) Update(c *fiber.Ctx) error {
	var req dto.SubscriptionUpdateRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	sub, err := h.subscriptions.Update(c.Context(), c.Params("userId"), req.SubscriptionID, service.SubscriptionUpdateInput{
		PlanID:    req.PlanID,
		AutoRenew: req.AutoRenew,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "Subscription updated successfully",
		"subscription": dto.NewSubscriptionResponse(*sub),
	})
}

// Cancel handles DELETE /subscriptions/:userId.
func (h *SubscriptionsHandler) Cancel(c *fiber.Ctx) error {
	var req dto.SubscriptionCancelRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	if err := h.subscriptions.Cancel(c.Context(), c.Params("userId"), req.SubscriptionID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Subscription cancelled successfully",
	})
}

// History handles GET /subscriptions/:userId/history.
func (h *SubscriptionsHandler) History(c *fiber.Ctx) error {
	history, err := h.subscriptions.History(c.Context(), c.Params("userId"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"history": dto.NewSubscriptionResponses(history),
	})
}

// Stats handles GET /subscriptions/stats.
func (h *SubscriptionsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.subscriptions.Stats(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}

// ListPlans handles GET /subscriptions/plans: the public active catalog.
func (h *SubscriptionsHandler) ListPlans(c *fiber.Ctx) error {
	plans, err := h.plans.ListActive(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"plans":   dto.NewPlanResponses(plans),
	})
}
