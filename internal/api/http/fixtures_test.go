package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/subscription-service/internal/api/http/handlers"
	"github.com/spec-kit/subscription-service/internal/auth"
	"github.com/spec-kit/subscription-service/internal/config"
	"github.com/spec-kit/subscription-service/internal/domain"
	"github.com/spec-kit/subscription-service/internal/repository"
	"github.com/spec-kit/subscription-service/internal/service"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "admin-secret"
)

// In-memory stores backing the handler tests. Identifiers are UUIDs so
// request validation sees the same shape the pgx repositories produce.

type memUsers struct {
	items []*domain.User
}

func (m *memUsers) Create(_ context.Context, user *domain.User) error {
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	m.items = append(m.items, &clone)
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range m.items {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUsers) GetByPublicID(_ context.Context, publicID string) (*domain.User, error) {
	for _, u := range m.items {
		if u.PublicID == publicID {
			clone := *u
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.items {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUsers) ExistsPublicID(_ context.Context, publicID string) (bool, error) {
	for _, u := range m.items {
		if u.PublicID == publicID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) UpdatePasswordHash(_ context.Context, id, hash string) error {
	for _, u := range m.items {
		if u.ID == id {
			u.PasswordHash = hash
			return nil
		}
	}
	return pgx.ErrNoRows
}

type memPlans struct {
	items []*domain.Plan
}

func (m *memPlans) Create(_ context.Context, plan *domain.Plan) error {
	plan.ID = uuid.NewString()
	plan.CreatedAt = time.Now()
	plan.UpdatedAt = plan.CreatedAt
	clone := *plan
	m.items = append(m.items, &clone)
	return nil
}

func (m *memPlans) Update(_ context.Context, plan *domain.Plan) error {
	for i, p := range m.items {
		if p.ID == plan.ID {
			clone := *plan
			clone.UpdatedAt = time.Now()
			m.items[i] = &clone
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *memPlans) GetByID(_ context.Context, id string) (*domain.Plan, error) {
	for _, p := range m.items {
		if p.ID == id {
			clone := *p
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memPlans) GetActiveByID(ctx context.Context, id string) (*domain.Plan, error) {
	plan, err := m.GetByID(ctx, id)
	if err != nil || !plan.IsActive {
		return nil, pgx.ErrNoRows
	}
	return plan, nil
}

func (m *memPlans) GetByName(_ context.Context, name string) (*domain.Plan, error) {
	for _, p := range m.items {
		if p.Name == name {
			clone := *p
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memPlans) ListAll(_ context.Context) ([]domain.Plan, error) {
	out := make([]domain.Plan, 0, len(m.items))
	for i := len(m.items) - 1; i >= 0; i-- {
		out = append(out, *m.items[i])
	}
	return out, nil
}

func (m *memPlans) ListActive(_ context.Context) ([]domain.Plan, error) {
	out := make([]domain.Plan, 0)
	for _, p := range m.items {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memPlans) Delete(_ context.Context, id string) error {
	for i, p := range m.items {
		if p.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

type memSubs struct {
	items []*domain.Subscription
	plans *memPlans
}

func (m *memSubs) Create(_ context.Context, sub *domain.Subscription) error {
	sub.ID = uuid.NewString()
	sub.CreatedAt = time.Now()
	sub.UpdatedAt = sub.CreatedAt
	clone := *sub
	m.items = append(m.items, &clone)
	return nil
}

func (m *memSubs) Update(_ context.Context, sub *domain.Subscription) error {
	for i, s := range m.items {
		if s.ID == sub.ID {
			clone := *sub
			clone.UpdatedAt = time.Now()
			m.items[i] = &clone
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *memSubs) GetActiveByIDAndUser(_ context.Context, id, userID string) (*domain.Subscription, error) {
	for _, s := range m.items {
		if s.ID == id && s.UserID == userID && s.Status == domain.SubscriptionStatusActive {
			clone := *s
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memSubs) FindActiveByUserAndPlan(_ context.Context, userID, planID, excludeID string) (*domain.Subscription, error) {
	for _, s := range m.items {
		if s.UserID == userID && s.PlanID == planID && s.Status == domain.SubscriptionStatusActive && s.ID != excludeID {
			clone := *s
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memSubs) ListActiveByUser(ctx context.Context, userID string) ([]domain.SubscriptionWithPlan, error) {
	out := make([]domain.SubscriptionWithPlan, 0)
	for i := len(m.items) - 1; i >= 0; i-- {
		s := m.items[i]
		if s.UserID == userID && s.Status == domain.SubscriptionStatusActive {
			out = append(out, m.joined(ctx, s))
		}
	}
	return out, nil
}

func (m *memSubs) ListByUser(ctx context.Context, userID string) ([]domain.SubscriptionWithPlan, error) {
	out := make([]domain.SubscriptionWithPlan, 0)
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].UserID == userID {
			out = append(out, m.joined(ctx, m.items[i]))
		}
	}
	return out, nil
}

func (m *memSubs) ListExpired(ctx context.Context, asOf time.Time) ([]domain.SubscriptionWithPlan, error) {
	out := make([]domain.SubscriptionWithPlan, 0)
	for _, s := range m.items {
		if s.Status == domain.SubscriptionStatusActive && s.EndDate.Before(asOf) {
			out = append(out, m.joined(ctx, s))
		}
	}
	return out, nil
}

func (m *memSubs) CountActiveByPlan(_ context.Context, planID string) (int, error) {
	count := 0
	for _, s := range m.items {
		if s.PlanID == planID && s.Status == domain.SubscriptionStatusActive {
			count++
		}
	}
	return count, nil
}

func (m *memSubs) CountByStatus(_ context.Context) (map[domain.SubscriptionStatus]int, error) {
	counts := make(map[domain.SubscriptionStatus]int)
	for _, s := range m.items {
		counts[s.Status]++
	}
	return counts, nil
}

func (m *memSubs) joined(ctx context.Context, sub *domain.Subscription) domain.SubscriptionWithPlan {
	row := domain.SubscriptionWithPlan{Subscription: *sub}
	if plan, err := m.plans.GetByID(ctx, sub.PlanID); err == nil {
		row.Plan = plan
	}
	return row
}

type memResets struct {
	items []*repository.PasswordResetToken
}

func (m *memResets) Create(_ context.Context, token *repository.PasswordResetToken) error {
	token.ID = uuid.NewString()
	token.CreatedAt = time.Now()
	clone := *token
	m.items = append(m.items, &clone)
	return nil
}

func (m *memResets) GetByToken(_ context.Context, token string) (*repository.PasswordResetToken, error) {
	for _, t := range m.items {
		if t.Token == token {
			clone := *t
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memResets) MarkUsed(_ context.Context, id string) error {
	for _, t := range m.items {
		if t.ID == id {
			now := time.Now()
			t.UsedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

var _ repository.UserRepository = (*memUsers)(nil)
var _ repository.PlanRepository = (*memPlans)(nil)
var _ repository.SubscriptionRepository = (*memSubs)(nil)
var _ repository.PasswordResetRepository = (*memResets)(nil)

// newTestApp assembles the full HTTP stack over the in-memory stores.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:            "test-secret",
			UserTokenTTLMinutes:  60,
			AdminTokenTTLMinutes: 24 * 60,
			ResetTokenTTLMinutes: 15,
			BcryptCost:           bcrypt.MinCost,
		},
		Admin: config.AdminConfig{
			Email:    testAdminEmail,
			Password: testAdminPassword,
		},
	}

	users := &memUsers{}
	plans := &memPlans{}
	subs := &memSubs{plans: plans}
	resets := &memResets{}

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:          users,
		PasswordResetRepo: resets,
	})
	planService := service.NewPlanService(service.PlanDependencies{
		PlanRepo:         plans,
		SubscriptionRepo: subs,
	})
	subscriptionService := service.NewSubscriptionService(service.SubscriptionDependencies{
		UserRepo:         users,
		PlanRepo:         plans,
		SubscriptionRepo: subs,
	})

	cookies := auth.NewCookieWriter(false)
	logger := zap.NewNop()

	app := fiber.New()
	RegisterMiddlewares(app, logger, nil, "http://localhost:5173", 0)
	RegisterRoutes(app, RouteConfig{
		Health:          handlers.NewHealthHandler("subscription-service", "test", nil, nil),
		Auth:            handlers.NewAuthHandler(authService, cookies),
		Admin:           handlers.NewAdminHandler(authService, planService, cookies, testAdminEmail),
		Subscriptions:   handlers.NewSubscriptionsHandler(subscriptionService, planService),
		AdminMiddleware: auth.NewAdminMiddleware(authService.TokenManager()),
		MetricsGatherer: prometheus.NewRegistry(),
	})
	return app
}

// request performs a JSON request against the app and decodes the envelope.
func request(t *testing.T, app *fiber.App, method, path string, body any, cookies ...*http.Cookie) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	decoded := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}

func findCookie(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

// adminCookie logs the fixed admin in and returns the session cookie.
func adminCookie(t *testing.T, app *fiber.App) *http.Cookie {
	t.Helper()
	resp, _ := request(t, app, http.MethodPost, "/admin/login", fiber.Map{
		"email":    testAdminEmail,
		"password": testAdminPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return findCookie(t, resp, auth.AdminCookieName)
}

// createPlan provisions a plan through the admin API and returns its id.
func createPlan(t *testing.T, app *fiber.App, admin *http.Cookie, name string, duration int) string {
	t.Helper()
	resp, body := request(t, app, http.MethodPost, "/admin/plans", fiber.Map{
		"name":     name,
		"price":    9.99,
		"features": []string{"feature-a"},
		"duration": duration,
	}, admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)
	plan, ok := body["plan"].(map[string]any)
	require.True(t, ok, "body: %v", body)
	return plan["id"].(string)
}

// registerUser creates a subscriber and returns its public id.
func registerUser(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp, body := request(t, app, http.MethodPost, "/auth/register", fiber.Map{
		"name":     "Test User",
		"email":    email,
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)
	return body["userId"].(string)
}

func subscribe(t *testing.T, app *fiber.App, userID, planID string) string {
	t.Helper()
	resp, body := request(t, app, http.MethodPost, "/subscriptions", fiber.Map{
		"userId": userID,
		"planId": planID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)
	sub, ok := body["subscription"].(map[string]any)
	require.True(t, ok, "body: %v", body)
	return sub["id"].(string)
}
