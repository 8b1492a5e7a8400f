package workflow

import (
	"database/sql"
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
)

type CreateShiftInput struct {
	UserID     *int64
	LocationID *int64
	StartAt    time.Time
	EndAt      time.Time
	RoleTag    string
	Notes      string
}

func (s *Service) loadShift(businessID, id int64) (*domain.Shift, error) {
	shift, err := s.shifts.GetShiftByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("班次不存在")
		}
		return nil, err
	}
	if shift.BusinessID != businessID {
		return nil, domain.Forbidden("无权访问其他商户的数据")
	}
	return shift, nil
}

func validateShiftTimes(shift *domain.Shift) error {
	if shift.StartAt.IsZero() || shift.EndAt.IsZero() {
		return domain.BadRequest("班次的开始时间和结束时间均不能为空")
	}
	if !shift.EndAt.After(shift.StartAt) {
		return domain.BadRequest("班次的结束时间必须晚于开始时间")
	}
	return nil
}

// checkShiftOverlap 检查班次区间是否与指定用户的其他班次冲突。
// 空班次（没有分配用户）完全跳过重叠检查。
func (s *Service) checkShiftOverlap(shift *domain.Shift) error {
	if shift.UserID == nil {
		return nil
	}

	existing, err := s.shifts.ListShiftsForOverlap(shift.BusinessID, *shift.UserID, shift.ID)
	if err != nil {
		return err
	}
	if hasShiftOverlap(shift.StartAt, shift.EndAt, existing) {
		return domain.Conflict("该时间段与该用户的其他班次重叠")
	}
	return nil
}

// CreateShift 创建一个草稿班次，管理层专用。
func (s *Service) CreateShift(businessID int64, actor Actor, input CreateShiftInput) (*domain.Shift, error) {
	if !actor.Role.IsManagerLike() {
		return nil, domain.Forbidden("权限不足")
	}
	if input.UserID != nil {
		if err := s.ensureStaff(businessID, *input.UserID); err != nil {
			return nil, err
		}
	}

	shift := &domain.Shift{
		BusinessID: businessID,
		UserID:     input.UserID,
		LocationID: input.LocationID,
		StartAt:    input.StartAt,
		EndAt:      input.EndAt,
		RoleTag:    input.RoleTag,
		Notes:      input.Notes,
		Status:     domain.ShiftStatusDraft,
		CreatedBy:  actor.ID,
	}

	if err := validateShiftTimes(shift); err != nil {
		return nil, err
	}
	if err := s.checkShiftOverlap(shift); err != nil {
		return nil, err
	}

	if err := s.shifts.CreateShift(shift); err != nil {
		return nil, err
	}
	return shift, nil
}

// UpdateShift 修改班次。已取消的班次拒绝一切修改。
// 补丁可能换人，重叠检查针对合并后的用户进行并排除自身。
func (s *Service) UpdateShift(businessID int64, actor Actor, id int64, patch domain.ShiftPatch) (*domain.Shift, error) {
	if !actor.Role.IsManagerLike() {
		return nil, domain.Forbidden("权限不足")
	}

	shift, err := s.loadShift(businessID, id)
	if err != nil {
		return nil, err
	}
	if shift.Status == domain.ShiftStatusCanceled {
		return nil, domain.Conflict("班次已取消，禁止修改")
	}
	if patch.UserID != nil {
		if err := s.ensureStaff(businessID, *patch.UserID); err != nil {
			return nil, err
		}
	}

	patch.Apply(shift)

	if err := validateShiftTimes(shift); err != nil {
		return nil, err
	}
	if err := s.checkShiftOverlap(shift); err != nil {
		return nil, err
	}

	if err := s.saveShift(shift); err != nil {
		return nil, err
	}
	return shift, nil
}

// PublishShift 发布班次，使其对员工可见、空班次可认领。重复发布是无害的空操作。
func (s *Service) PublishShift(businessID int64, actor Actor, id int64) (*domain.Shift, error) {
	if !actor.Role.IsManagerLike() {
		return nil, domain.Forbidden("权限不足")
	}

	shift, err := s.loadShift(businessID, id)
	if err != nil {
		return nil, err
	}
	if shift.Status == domain.ShiftStatusCanceled {
		return nil, domain.Conflict("班次已取消，禁止发布")
	}
	if shift.Status == domain.ShiftStatusPublished {
		return shift, nil
	}

	now := time.Now()
	shift.Status = domain.ShiftStatusPublished
	shift.PublishedAt = &now

	if err := s.saveShift(shift); err != nil {
		return nil, err
	}
	return shift, nil
}

// CancelShift 取消班次。取消是终态，重复取消是幂等的空操作而不是错误。
func (s *Service) CancelShift(businessID int64, actor Actor, id int64) (*domain.Shift, error) {
	if !actor.Role.IsManagerLike() {
		return nil, domain.Forbidden("权限不足")
	}

	shift, err := s.loadShift(businessID, id)
	if err != nil {
		return nil, err
	}
	if shift.Status == domain.ShiftStatusCanceled {
		return shift, nil
	}

	shift.Status = domain.ShiftStatusCanceled

	if err := s.saveShift(shift); err != nil {
		return nil, err
	}
	return shift, nil
}

// AssignShift 将班次分配给一个用户。分配与状态机正交，但已取消的班次拒绝分配。
func (s *Service) AssignShift(businessID int64, actor Actor, id int64, userID int64) (*domain.Shift, error) {
	if !actor.Role.IsManagerLike() {
		return nil, domain.Forbidden("权限不足")
	}
	if userID == 0 {
		return nil, domain.BadRequest("必须指定要分配的用户")
	}
	if err := s.ensureStaff(businessID, userID); err != nil {
		return nil, err
	}

	shift, err := s.loadShift(businessID, id)
	if err != nil {
		return nil, err
	}
	if shift.Status == domain.ShiftStatusCanceled {
		return nil, domain.Conflict("班次已取消，禁止分配")
	}

	shift.UserID = &userID
	if err := s.checkShiftOverlap(shift); err != nil {
		return nil, err
	}

	if err := s.saveShift(shift); err != nil {
		return nil, err
	}
	return shift, nil
}

// UnassignShift 清空班次的分配，使其重新成为空班次。
func (s *Service) UnassignShift(businessID int64, actor Actor, id int64) (*domain.Shift, error) {
	if !actor.Role.IsManagerLike() {
		return nil, domain.Forbidden("权限不足")
	}

	shift, err := s.loadShift(businessID, id)
	if err != nil {
		return nil, err
	}
	if shift.Status == domain.ShiftStatusCanceled {
		return nil, domain.Conflict("班次已取消，禁止修改分配")
	}

	shift.UserID = nil

	if err := s.saveShift(shift); err != nil {
		return nil, err
	}
	return shift, nil
}

// GetShift 获取单个班次。员工只能看到分配给自己的班次和已发布的空班次。
func (s *Service) GetShift(businessID int64, actor Actor, id int64) (*domain.Shift, error) {
	shift, err := s.loadShift(businessID, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsManagerLike() {
		assignedToActor := shift.UserID != nil && *shift.UserID == actor.ID
		openPublished := shift.UserID == nil && shift.Status == domain.ShiftStatusPublished
		if !assignedToActor && !openPublished {
			return nil, domain.Forbidden("无权查看该班次")
		}
	}
	return shift, nil
}

// ListShifts 列出班次。管理层看到本商户的全部班次并可按用户、状态、时间范围过滤；
// 员工看到自己的班次，includeOpen 时额外包含已发布的空班次。
func (s *Service) ListShifts(businessID int64, actor Actor, filter ShiftFilter, includeOpen bool) ([]*domain.Shift, error) {
	filter.BusinessID = businessID
	if !actor.Role.IsManagerLike() {
		filter.UserID = nil
		filter.VisibleToUserID = &actor.ID
		filter.IncludeOpenPublished = includeOpen
	}
	return s.shifts.ListShifts(filter)
}

func (s *Service) saveShift(shift *domain.Shift) error {
	if err := s.shifts.SaveShift(shift); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Conflict("班次已被其他操作修改，请刷新后重试")
		}
		return err
	}
	return nil
}
