package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/subscription-service/internal/domain"
)

// PlanRepository encapsulates plan catalog persistence.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) error
	Update(ctx context.Context, plan *domain.Plan) error
	GetByID(ctx context.Context, id string) (*domain.Plan, error)
	GetActiveByID(ctx context.Context, id string) (*domain.Plan, error)
	GetByName(ctx context.Context, name string) (*domain.Plan, error)
	ListAll(ctx context.Context) ([]domain.Plan, error)
	ListActive(ctx context.Context) ([]domain.Plan, error)
	Delete(ctx context.Context, id string) error
}

type planRepository struct {
	pool *pgxpool.Pool
}

// NewPlanRepository instantiates repository.
func NewPlanRepository(pool *pgxpool.Pool) PlanRepository {
	return &planRepository{pool: pool}
}

func (r *planRepository) Create(ctx context.Context, plan *domain.Plan) error {
	const query = `
        INSERT INTO plans (name, price, features, duration_days, is_active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		plan.Name,
		plan.Price,
		plan.Features,
		plan.DurationDays,
		plan.IsActive,
	).Scan(&plan.ID, &plan.CreatedAt, &plan.UpdatedAt)
}

func (r *planRepository) Update(ctx context.Context, plan *domain.Plan) error {
	const query = `
        UPDATE plans SET name=$1, price=$2, features=$3, duration_days=$4, is_active=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		plan.Name,
		plan.Price,
		plan.Features,
		plan.DurationDays,
		plan.IsActive,
		plan.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *planRepository) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	const query = `
        SELECT id, name, price, features, duration_days, is_active, created_at, updated_at
        FROM plans WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *planRepository) GetActiveByID(ctx context.Context, id string) (*domain.Plan, error) {
	const query = `
        SELECT id, name, price, features, duration_days, is_active, created_at, updated_at
        FROM plans WHERE id=$1 AND is_active=TRUE`
	return r.fetchSingle(ctx, query, id)
}

func (r *planRepository) GetByName(ctx context.Context, name string) (*domain.Plan, error) {
	const query = `
        SELECT id, name, price, features, duration_days, is_active, created_at, updated_at
        FROM plans WHERE name=$1`
	return r.fetchSingle(ctx, query, name)
}

func (r *planRepository) ListAll(ctx context.Context) ([]domain.Plan, error) {
	const query = `
        SELECT id, name, price, features, duration_days, is_active, created_at, updated_at
        FROM plans ORDER BY created_at DESC`
	return r.fetchMany(ctx, query)
}

func (r *planRepository) ListActive(ctx context.Context) ([]domain.Plan, error) {
	const query = `
        SELECT id, name, price, features, duration_days, is_active, created_at, updated_at
        FROM plans WHERE is_active=TRUE`
	return r.fetchMany(ctx, query)
}

func (r *planRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM plans WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *planRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Plan, error) {
	var plan domain.Plan
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&plan.ID,
		&plan.Name,
		&plan.Price,
		&plan.Features,
		&plan.DurationDays,
		&plan.IsActive,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) fetchMany(ctx context.Context, query string) ([]domain.Plan, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := make([]domain.Plan, 0)
	for rows.Next() {
		var plan domain.Plan
		if err := rows.Scan(
			&plan.ID,
			&plan.Name,
			&plan.Price,
			&plan.Features,
			&plan.DurationDays,
			&plan.IsActive,
			&plan.CreatedAt,
			&plan.UpdatedAt,
		); err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}
