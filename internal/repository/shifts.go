package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/workflow"
)

const shiftColumns = `id, business_id, user_id, location_id, start_at, end_at, role_tag, notes,
	status, published_at, created_by, created_at, version`

func scanShift(row interface{ Scan(dest ...any) error }) (*domain.Shift, error) {
	shift := &domain.Shift{}
	dst := []any{
		&shift.ID, &shift.BusinessID, &shift.UserID, &shift.LocationID, &shift.StartAt,
		&shift.EndAt, &shift.RoleTag, &shift.Notes, &shift.Status, &shift.PublishedAt,
		&shift.CreatedBy, &shift.CreatedAt, &shift.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return shift, nil
}

func (r *Repository) GetShiftByID(id int64) (*domain.Shift, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM shifts WHERE id = $1
	`, shiftColumns)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return scanShift(r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) ListShifts(filter workflow.ShiftFilter) ([]*domain.Shift, error) {
	conditions := []string{"business_id = $1"}
	args := []any{filter.BusinessID}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("start_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("start_at <= $%d", len(args)))
	}
	if filter.VisibleToUserID != nil {
		args = append(args, *filter.VisibleToUserID)
		if filter.IncludeOpenPublished {
			conditions = append(conditions, fmt.Sprintf("(user_id = $%d OR (user_id IS NULL AND status = 'published'))", len(args)))
		} else {
			conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
		}
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM shifts
		WHERE %s
		ORDER BY start_at, id
	`, shiftColumns, strings.Join(conditions, " AND "))

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

// ListShiftsForOverlap 只取参与重叠判断的班次：同租户同用户且未取消，
// 并排除正在编辑的那条。空班次不占用任何人的时间，天然不在结果里。
func (r *Repository) ListShiftsForOverlap(businessID, userID int64, excludeID int64) ([]*domain.Shift, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM shifts
		WHERE business_id = $1 AND user_id = $2 AND status <> 'canceled' AND id <> $3
	`, shiftColumns)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, businessID, userID, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

func (r *Repository) CreateShift(shift *domain.Shift) error {
	query := `
		INSERT INTO shifts (business_id, user_id, location_id, start_at, end_at, role_tag, notes, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{
		shift.BusinessID, shift.UserID, shift.LocationID, shift.StartAt, shift.EndAt,
		shift.RoleTag, shift.Notes, shift.Status, shift.CreatedBy,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&shift.ID, &shift.CreatedAt, &shift.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) SaveShift(shift *domain.Shift) error {
	query := `
		UPDATE shifts
		SET
			user_id = $1,
			location_id = $2,
			start_at = $3,
			end_at = $4,
			role_tag = $5,
			notes = $6,
			status = $7,
			published_at = $8,
			version = version + 1
		WHERE id = $9 AND version = $10
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{
		shift.UserID, shift.LocationID, shift.StartAt, shift.EndAt, shift.RoleTag,
		shift.Notes, shift.Status, shift.PublishedAt, shift.ID, shift.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&shift.Version); err != nil {
		return err
	}

	return nil
}
