package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/workflow"
)

const timeEntryColumns = `id, business_id, user_id, entry_type, work_date, start_time, end_time, break_minutes,
	status, notes, rejection_reason, created_by, updated_by, submitted_at, approved_by, approved_at, created_at, version`

func scanTimeEntry(row interface{ Scan(dest ...any) error }) (*domain.TimeEntry, error) {
	entry := &domain.TimeEntry{}
	dst := []any{
		&entry.ID, &entry.BusinessID, &entry.UserID, &entry.EntryType, &entry.WorkDate,
		&entry.StartTime, &entry.EndTime, &entry.BreakMinutes, &entry.Status, &entry.Notes,
		&entry.RejectionReason, &entry.CreatedBy, &entry.UpdatedBy, &entry.SubmittedAt,
		&entry.ApprovedBy, &entry.ApprovedAt, &entry.CreatedAt, &entry.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *Repository) GetTimeEntryByID(id int64) (*domain.TimeEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM time_entries WHERE id = $1
	`, timeEntryColumns)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return scanTimeEntry(r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) ListTimeEntries(filter workflow.TimeEntryFilter) ([]*domain.TimeEntry, error) {
	// 列表、待审批和汇总都只面向手工记录，旧版打卡数据不进入任何结果
	conditions := []string{"business_id = $1", "entry_type = 'manual'"}
	args := []any{filter.BusinessID}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.FromDate != nil {
		args = append(args, *filter.FromDate)
		conditions = append(conditions, fmt.Sprintf("work_date >= $%d", len(args)))
	}
	if filter.ToDate != nil {
		args = append(args, *filter.ToDate)
		conditions = append(conditions, fmt.Sprintf("work_date <= $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM time_entries
		WHERE %s
		ORDER BY work_date, start_time, id
	`, timeEntryColumns, strings.Join(conditions, " AND "))

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.TimeEntry, 0)
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// ListTimeEntriesForOverlap 只取参与重叠判断的记录：同租户同用户同工作日、
// 手工类型且未作废，并排除正在编辑的那条。
func (r *Repository) ListTimeEntriesForOverlap(businessID, userID int64, workDate string, excludeID int64) ([]*domain.TimeEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM time_entries
		WHERE business_id = $1 AND user_id = $2 AND work_date = $3
			AND entry_type = 'manual' AND status <> 'void' AND id <> $4
	`, timeEntryColumns)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, businessID, userID, workDate, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.TimeEntry, 0)
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *Repository) CreateTimeEntry(entry *domain.TimeEntry) error {
	query := `
		INSERT INTO time_entries (business_id, user_id, entry_type, work_date, start_time, end_time,
			break_minutes, status, notes, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{
		entry.BusinessID, entry.UserID, entry.EntryType, entry.WorkDate, entry.StartTime,
		entry.EndTime, entry.BreakMinutes, entry.Status, entry.Notes, entry.CreatedBy, entry.UpdatedBy,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&entry.ID, &entry.CreatedAt, &entry.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) SaveTimeEntry(entry *domain.TimeEntry) error {
	query := `
		UPDATE time_entries
		SET
			work_date = $1,
			start_time = $2,
			end_time = $3,
			break_minutes = $4,
			status = $5,
			notes = $6,
			rejection_reason = $7,
			updated_by = $8,
			submitted_at = $9,
			approved_by = $10,
			approved_at = $11,
			version = version + 1
		WHERE id = $12 AND version = $13
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{
		entry.WorkDate, entry.StartTime, entry.EndTime, entry.BreakMinutes, entry.Status,
		entry.Notes, entry.RejectionReason, entry.UpdatedBy, entry.SubmittedAt,
		entry.ApprovedBy, entry.ApprovedAt, entry.ID, entry.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&entry.Version); err != nil {
		return err
	}

	return nil
}

// BulkApproveTimeEntries 用一条带条件的 UPDATE 完成批量审批，
// 不满足待审批前提的 ID 会被条件过滤掉而不是报错。
func (r *Repository) BulkApproveTimeEntries(businessID int64, ids []int64, approverID int64) ([]*domain.TimeEntry, error) {
	query := fmt.Sprintf(`
		UPDATE time_entries
		SET
			status = 'approved',
			approved_by = $3,
			approved_at = now(),
			updated_by = $3,
			version = version + 1
		WHERE business_id = $1 AND id = ANY($2) AND entry_type = 'manual' AND status = 'submitted'
		RETURNING %s
	`, timeEntryColumns)

	return r.bulkUpdateTimeEntries(query, businessID, ids, approverID)
}

func (r *Repository) BulkRejectTimeEntries(businessID int64, ids []int64, reviewerID int64, reason string) ([]*domain.TimeEntry, error) {
	query := fmt.Sprintf(`
		UPDATE time_entries
		SET
			status = 'rejected',
			rejection_reason = $4,
			updated_by = $3,
			version = version + 1
		WHERE business_id = $1 AND id = ANY($2) AND entry_type = 'manual' AND status = 'submitted'
		RETURNING %s
	`, timeEntryColumns)

	return r.bulkUpdateTimeEntries(query, businessID, ids, reviewerID, reason)
}

func (r *Repository) bulkUpdateTimeEntries(query string, businessID int64, ids []int64, extraArgs ...any) ([]*domain.TimeEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := append([]any{businessID, ids}, extraArgs...)
	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.TimeEntry, 0, len(ids))
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
