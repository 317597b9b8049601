package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/subscription-service/internal/domain"
)

// SubscriptionRepository encapsulates subscription persistence. Listing
// methods join plan details in so the lifecycle manager never hands out a
// bare plan reference.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) error
	Update(ctx context.Context, sub *domain.Subscription) error
	GetActiveByIDAndUser(ctx context.Context, id, userID string) (*domain.Subscription, error)
	FindActiveByUserAndPlan(ctx context.Context, userID, planID, excludeID string) (*domain.Subscription, error)
	ListActiveByUser(ctx context.Context, userID string) ([]domain.SubscriptionWithPlan, error)
	ListByUser(ctx context.Context, userID string) ([]domain.SubscriptionWithPlan, error)
	ListExpired(ctx context.Context, asOf time.Time) ([]domain.SubscriptionWithPlan, error)
	CountActiveByPlan(ctx context.Context, planID string) (int, error)
	CountByStatus(ctx context.Context) (map[domain.SubscriptionStatus]int, error)
}

type subscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepository instantiates repository.
func NewSubscriptionRepository(pool *pgxpool.Pool) SubscriptionRepository {
	return &subscriptionRepository{pool: pool}
}

const subscriptionColumns = `
        s.id, s.user_id, s.plan_id, s.status, s.start_date, s.end_date,
        s.auto_renew, s.payment_status, s.created_at, s.updated_at`

const joinedColumns = subscriptionColumns + `,
        p.id, p.name, p.price, p.features, p.duration_days, p.is_active, p.created_at, p.updated_at`

func (r *subscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	const query = `
        INSERT INTO subscriptions (user_id, plan_id, status, start_date, end_date, auto_renew, payment_status)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		sub.UserID,
		sub.PlanID,
		sub.Status,
		sub.StartDate,
		sub.EndDate,
		sub.AutoRenew,
		sub.PaymentStatus,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *domain.Subscription) error {
	const query = `
        UPDATE subscriptions SET plan_id=$1, status=$2, end_date=$3, auto_renew=$4,
            payment_status=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		sub.PlanID,
		sub.Status,
		sub.EndDate,
		sub.AutoRenew,
		sub.PaymentStatus,
		sub.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *subscriptionRepository) GetActiveByIDAndUser(ctx context.Context, id, userID string) (*domain.Subscription, error) {
	const query = `
        SELECT ` + subscriptionColumns + `
        FROM subscriptions s
        WHERE s.id=$1 AND s.user_id=$2 AND s.status='ACTIVE'`
	return r.fetchSingle(ctx, query, id, userID)
}

// FindActiveByUserAndPlan looks up the user's ACTIVE subscription to the
// given plan. excludeID, when non-empty, excludes the caller's own
// subscription from the match.
func (r *subscriptionRepository) FindActiveByUserAndPlan(ctx context.Context, userID, planID, excludeID string) (*domain.Subscription, error) {
	if excludeID == "" {
		const query = `
        SELECT ` + subscriptionColumns + `
        FROM subscriptions s
        WHERE s.user_id=$1 AND s.plan_id=$2 AND s.status='ACTIVE'`
		return r.fetchSingle(ctx, query, userID, planID)
	}

	const query = `
        SELECT ` + subscriptionColumns + `
        FROM subscriptions s
        WHERE s.user_id=$1 AND s.plan_id=$2 AND s.status='ACTIVE' AND s.id<>$3`
	return r.fetchSingle(ctx, query, userID, planID, excludeID)
}

func (r *subscriptionRepository) ListActiveByUser(ctx context.Context, userID string) ([]domain.SubscriptionWithPlan, error) {
	const query = `
        SELECT ` + joinedColumns + `
        FROM subscriptions s
        LEFT JOIN plans p ON p.id = s.plan_id
        WHERE s.user_id=$1 AND s.status='ACTIVE'
        ORDER BY s.created_at DESC`
	return r.fetchJoined(ctx, query, userID)
}

func (r *subscriptionRepository) ListByUser(ctx context.Context, userID string) ([]domain.SubscriptionWithPlan, error) {
	const query = `
        SELECT ` + joinedColumns + `
        FROM subscriptions s
        LEFT JOIN plans p ON p.id = s.plan_id
        WHERE s.user_id=$1
        ORDER BY s.created_at DESC`
	return r.fetchJoined(ctx, query, userID)
}

// ListExpired returns ACTIVE subscriptions whose end date is strictly before
// asOf, with plan details joined for renewal computation.
func (r *subscriptionRepository) ListExpired(ctx context.Context, asOf time.Time) ([]domain.SubscriptionWithPlan, error) {
	const query = `
        SELECT ` + joinedColumns + `
        FROM subscriptions s
        LEFT JOIN plans p ON p.id = s.plan_id
        WHERE s.status='ACTIVE' AND s.end_date < $1`
	return r.fetchJoined(ctx, query, asOf)
}

func (r *subscriptionRepository) CountActiveByPlan(ctx context.Context, planID string) (int, error) {
	const query = `SELECT COUNT(*) FROM subscriptions WHERE plan_id=$1 AND status='ACTIVE'`

	var count int
	if err := r.pool.QueryRow(ctx, query, planID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *subscriptionRepository) CountByStatus(ctx context.Context) (map[domain.SubscriptionStatus]int, error) {
	const query = `SELECT status, COUNT(*) FROM subscriptions GROUP BY status`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.SubscriptionStatus]int)
	for rows.Next() {
		var status domain.SubscriptionStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *subscriptionRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Subscription, error) {
	var sub domain.Subscription
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&sub.ID,
		&sub.UserID,
		&sub.PlanID,
		&sub.Status,
		&sub.StartDate,
		&sub.EndDate,
		&sub.AutoRenew,
		&sub.PaymentStatus,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) fetchJoined(ctx context.Context, query string, args ...any) ([]domain.SubscriptionWithPlan, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.SubscriptionWithPlan, 0)
	for rows.Next() {
		var row domain.SubscriptionWithPlan
		var planID, planName *string
		var planPrice *float64
		var planFeatures []string
		var planDuration *int
		var planActive *bool
		var planCreated, planUpdated *time.Time
		if err := rows.Scan(
			&row.ID,
			&row.UserID,
			&row.PlanID,
			&row.Status,
			&row.StartDate,
			&row.EndDate,
			&row.AutoRenew,
			&row.PaymentStatus,
			&row.CreatedAt,
			&row.UpdatedAt,
			&planID,
			&planName,
			&planPrice,
			&planFeatures,
			&planDuration,
			&planActive,
			&planCreated,
			&planUpdated,
		); err != nil {
			return nil, err
		}
		// plan columns are NULL for historical records whose plan was deleted
		if planID != nil {
			row.Plan = &domain.Plan{
				ID:           *planID,
				Name:         *planName,
				Price:        *planPrice,
				Features:     planFeatures,
				DurationDays: *planDuration,
				IsActive:     *planActive,
				CreatedAt:    *planCreated,
				UpdatedAt:    *planUpdated,
			}
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
