package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
)

func (r *Repository) GetBusinessByID(id int64) (*domain.Business, error) {
	query := `
		SELECT name, rounding_minutes, rounding_mode, created_at, version
		FROM businesses WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	business := &domain.Business{
		ID: id,
	}

	dst := []any{&business.Name, &business.RoundingMinutes, &business.RoundingMode, &business.CreatedAt, &business.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return business, nil
}

func (r *Repository) GetBusinessByName(name string) (*domain.Business, error) {
	query := `
		SELECT id, rounding_minutes, rounding_mode, created_at, version
		FROM businesses WHERE name = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	business := &domain.Business{
		Name: name,
	}

	dst := []any{&business.ID, &business.RoundingMinutes, &business.RoundingMode, &business.CreatedAt, &business.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, name).Scan(dst...); err != nil {
		return nil, err
	}

	return business, nil
}

func (r *Repository) CreateBusiness(business *domain.Business) error {
	query := `
		INSERT INTO businesses (name, rounding_minutes, rounding_mode)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{business.Name, business.RoundingMinutes, business.RoundingMode}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&business.ID, &business.CreatedAt, &business.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateBusiness(business *domain.Business) error {
	query := `
		UPDATE businesses
		SET
			name = $1,
			rounding_minutes = $2,
			rounding_mode = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{business.Name, business.RoundingMinutes, business.RoundingMode, business.ID, business.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&business.Version); err != nil {
		return err
	}

	return nil
}
