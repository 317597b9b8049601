package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/subscription-service/internal/domain"
	"github.com/spec-kit/subscription-service/internal/repository"
)

// In-memory repository fakes. Methods return pgx.ErrNoRows for misses, the
// same sentinel the real pgx-backed implementations surface.

type fakeUsers struct {
	items     []*domain.User
	seq       int
	existsAll bool // forces every generated public id to collide
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{}
}

func (f *fakeUsers) Create(_ context.Context, user *domain.User) error {
	f.seq++
	user.ID = fmt.Sprintf("user-%d", f.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	f.items = append(f.items, &clone)
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range f.items {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUsers) GetByPublicID(_ context.Context, publicID string) (*domain.User, error) {
	for _, u := range f.items {
		if u.PublicID == publicID {
			clone := *u
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.items {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUsers) ExistsPublicID(_ context.Context, publicID string) (bool, error) {
	if f.existsAll {
		return true, nil
	}
	for _, u := range f.items {
		if u.PublicID == publicID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) UpdatePasswordHash(_ context.Context, id, hash string) error {
	for _, u := range f.items {
		if u.ID == id {
			u.PasswordHash = hash
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakePlans struct {
	items []*domain.Plan
	seq   int
}

func newFakePlans() *fakePlans {
	return &fakePlans{}
}

func (f *fakePlans) add(plan domain.Plan) *domain.Plan {
	f.seq++
	if plan.ID == "" {
		plan.ID = fmt.Sprintf("plan-%d", f.seq)
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now()
	}
	plan.UpdatedAt = plan.CreatedAt
	clone := plan
	f.items = append(f.items, &clone)
	return &clone
}

func (f *fakePlans) Create(_ context.Context, plan *domain.Plan) error {
	stored := f.add(*plan)
	*plan = *stored
	return nil
}

func (f *fakePlans) Update(_ context.Context, plan *domain.Plan) error {
	for i, p := range f.items {
		if p.ID == plan.ID {
			clone := *plan
			clone.UpdatedAt = time.Now()
			f.items[i] = &clone
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakePlans) GetByID(_ context.Context, id string) (*domain.Plan, error) {
	for _, p := range f.items {
		if p.ID == id {
			clone := *p
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakePlans) GetActiveByID(ctx context.Context, id string) (*domain.Plan, error) {
	plan, err := f.GetByID(ctx, id)
	if err != nil || !plan.IsActive {
		return nil, pgx.ErrNoRows
	}
	return plan, nil
}

func (f *fakePlans) GetByName(_ context.Context, name string) (*domain.Plan, error) {
	for _, p := range f.items {
		if p.Name == name {
			clone := *p
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakePlans) ListAll(_ context.Context) ([]domain.Plan, error) {
	out := make([]domain.Plan, 0, len(f.items))
	for i := len(f.items) - 1; i >= 0; i-- {
		out = append(out, *f.items[i])
	}
	return out, nil
}

func (f *fakePlans) ListActive(_ context.Context) ([]domain.Plan, error) {
	out := make([]domain.Plan, 0)
	for _, p := range f.items {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePlans) Delete(_ context.Context, id string) error {
	for i, p := range f.items {
		if p.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeSubscriptions struct {
	items []*domain.Subscription
	plans *fakePlans
	seq   int

	failUpdateID string // Update on this id returns an error
}

func newFakeSubscriptions(plans *fakePlans) *fakeSubscriptions {
	return &fakeSubscriptions{plans: plans}
}

func (f *fakeSubscriptions) Create(_ context.Context, sub *domain.Subscription) error {
	f.seq++
	sub.ID = fmt.Sprintf("sub-%d", f.seq)
	sub.CreatedAt = time.Now()
	sub.UpdatedAt = sub.CreatedAt
	clone := *sub
	f.items = append(f.items, &clone)
	return nil
}

func (f *fakeSubscriptions) Update(_ context.Context, sub *domain.Subscription) error {
	if sub.ID == f.failUpdateID {
		return fmt.Errorf("storage unavailable for %s", sub.ID)
	}
	for i, s := range f.items {
		if s.ID == sub.ID {
			clone := *sub
			clone.UpdatedAt = time.Now()
			f.items[i] = &clone
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeSubscriptions) GetActiveByIDAndUser(_ context.Context, id, userID string) (*domain.Subscription, error) {
	for _, s := range f.items {
		if s.ID == id && s.UserID == userID && s.Status == domain.SubscriptionStatusActive {
			clone := *s
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSubscriptions) FindActiveByUserAndPlan(_ context.Context, userID, planID, excludeID string) (*domain.Subscription, error) {
	for _, s := range f.items {
		if s.UserID == userID && s.PlanID == planID && s.Status == domain.SubscriptionStatusActive && s.ID != excludeID {
			clone := *s
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSubscriptions) ListActiveByUser(ctx context.Context, userID string) ([]domain.SubscriptionWithPlan, error) {
	out := make([]domain.SubscriptionWithPlan, 0)
	for i := len(f.items) - 1; i >= 0; i-- {
		s := f.items[i]
		if s.UserID == userID && s.Status == domain.SubscriptionStatusActive {
			out = append(out, f.joined(ctx, s))
		}
	}
	return out, nil
}

func (f *fakeSubscriptions) ListByUser(ctx context.Context, userID string) ([]domain.SubscriptionWithPlan, error) {
	out := make([]domain.SubscriptionWithPlan, 0)
	for i := len(f.items) - 1; i >= 0; i-- {
		if f.items[i].UserID == userID {
			out = append(out, f.joined(ctx, f.items[i]))
		}
	}
	return out, nil
}

func (f *fakeSubscriptions) ListExpired(ctx context.Context, asOf time.Time) ([]domain.SubscriptionWithPlan, error) {
	out := make([]domain.SubscriptionWithPlan, 0)
	for _, s := range f.items {
		if s.Status == domain.SubscriptionStatusActive && s.EndDate.Before(asOf) {
			out = append(out, f.joined(ctx, s))
		}
	}
	return out, nil
}

func (f *fakeSubscriptions) CountActiveByPlan(_ context.Context, planID string) (int, error) {
	count := 0
	for _, s := range f.items {
		if s.PlanID == planID && s.Status == domain.SubscriptionStatusActive {
			count++
		}
	}
	return count, nil
}

func (f *fakeSubscriptions) CountByStatus(_ context.Context) (map[domain.SubscriptionStatus]int, error) {
	counts := make(map[domain.SubscriptionStatus]int)
	for _, s := range f.items {
		counts[s.Status]++
	}
	return counts, nil
}

func (f *fakeSubscriptions) joined(ctx context.Context, sub *domain.Subscription) domain.SubscriptionWithPlan {
	row := domain.SubscriptionWithPlan{Subscription: *sub}
	if f.plans != nil {
		if plan, err := f.plans.GetByID(ctx, sub.PlanID); err == nil {
			row.Plan = plan
		}
	}
	return row
}

type fakeResets struct {
	items []*repository.PasswordResetToken
	seq   int
}

func newFakeResets() *fakeResets {
	return &fakeResets{}
}

func (f *fakeResets) Create(_ context.Context, token *repository.PasswordResetToken) error {
	f.seq++
	token.ID = fmt.Sprintf("reset-%d", f.seq)
	token.CreatedAt = time.Now()
	clone := *token
	f.items = append(f.items, &clone)
	return nil
}

func (f *fakeResets) GetByToken(_ context.Context, token string) (*repository.PasswordResetToken, error) {
	for _, t := range f.items {
		if t.Token == token {
			clone := *t
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeResets) MarkUsed(_ context.Context, id string) error {
	for _, t := range f.items {
		if t.ID == id {
			now := time.Now()
			t.UsedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

var _ repository.UserRepository = (*fakeUsers)(nil)
var _ repository.PlanRepository = (*fakePlans)(nil)
var _ repository.SubscriptionRepository = (*fakeSubscriptions)(nil)
var _ repository.PasswordResetRepository = (*fakeResets)(nil)
