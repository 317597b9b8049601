package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/subscription-service/internal/api/dto"
	"github.com/spec-kit/subscription-service/internal/auth"
	"github.com/spec-kit/subscription-service/internal/domain"
	"github.com/spec-kit/subscription-service/internal/service"
)

// AdminHandler exposes the fixed-admin login and plan catalog management.
type AdminHandler struct {
	auth     *service.AuthService
	plans    *service.PlanService
	cookies  *auth.CookieWriter
	validate *validator.Validate
	admin    string
}

// NewAdminHandler constructs handler. adminEmail is echoed back on login.
func NewAdminHandler(authService *service.AuthService, planService *service.PlanService, cookies *auth.CookieWriter, adminEmail string) *AdminHandler {
	return &AdminHandler{
		auth:     authService,
		plans:    planService,
		cookies:  cookies,
		validate: validator.New(),
		admin:    adminEmail,
	}
}

// Login handles POST /admin/login.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	token, exp, err := h.auth.AdminLogin(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.cookies.Set(c, auth.AdminCookieName, token, exp)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Admin logged in successfully",
		"admin": fiber.Map{
			"id":    domain.AdminSubjectID,
			"email": h.admin,
			"role":  domain.AdminRoleAdmin,
		},
	})
}

// CreatePlan handles POST /admin/plans.
func (h *AdminHandler) CreatePlan(c *fiber.Ctx) error {
	var req dto.PlanCreateRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	plan, err := h.plans.CreatePlan(c.Context(), service.PlanCreateInput{
		Name:         req.Name,
		Price:        req.Price,
		Features:     req.Features,
		DurationDays: req.Duration,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Plan created successfully",
		"plan":    dto.NewPlanResponse(*plan),
	})
}

// UpdatePlan handles PUT /admin/plans/:planId.
func (h *AdminHandler) UpdatePlan(c *fiber.Ctx) error {
	var req dto.PlanUpdateRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	plan, err := h.plans.UpdatePlan(c.Context(), c.Params("planId"), service.PlanUpdateInput{
		Name:         req.Name,
		Price:        req.Price,
		Features:     req.Features,
		DurationDays: req.Duration,
		IsActive:     req.IsActive,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Plan updated successfully",
		"plan":    dto.NewPlanResponse(*plan),
	})
}

// ListPlans handles GET /admin/plans: every plan, newest first.
func (h *AdminHandler) ListPlans(c *fiber.Ctx) error {
	plans, err := h.plans.ListAll(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"plans":   dto.NewPlanResponses(plans),
	})
}

// DeletePlan handles DELETE /admin/plans/:planId.
func (h *AdminHandler) DeletePlan(c *fiber.Ctx) error {
	if err := h.plans.DeletePlan(c.Context(), c.Params("planId")); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Plan deleted successfully",
	})
}
