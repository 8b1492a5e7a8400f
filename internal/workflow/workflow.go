package workflow

import (
	"database/sql"
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
)

// Actor 是发起操作的已认证用户，租户 ID 在进入核心流程前已由上游解析好。
type Actor struct {
	ID   int64
	Role domain.Role
}

type TimeEntryFilter struct {
	BusinessID int64
	UserID     *int64
	Status     *domain.TimeEntryStatus
	FromDate   *string // 含边界，YYYY-MM-DD
	ToDate     *string // 含边界，YYYY-MM-DD
}

type ShiftFilter struct {
	BusinessID int64
	UserID     *int64
	Status     *domain.ShiftStatus
	From       *time.Time // 含边界，按 startAt 过滤
	To         *time.Time // 含边界，按 startAt 过滤

	// 员工视角的可见性：自己的班次，外加（可选）已发布的空班次
	VisibleToUserID      *int64
	IncludeOpenPublished bool
}

type TimeEntryRepository interface {
	GetTimeEntryByID(id int64) (*domain.TimeEntry, error)
	ListTimeEntries(filter TimeEntryFilter) ([]*domain.TimeEntry, error)
	ListTimeEntriesForOverlap(businessID, userID int64, workDate string, excludeID int64) ([]*domain.TimeEntry, error)
	CreateTimeEntry(entry *domain.TimeEntry) error
	SaveTimeEntry(entry *domain.TimeEntry) error
	BulkApproveTimeEntries(businessID int64, ids []int64, approverID int64) ([]*domain.TimeEntry, error)
	BulkRejectTimeEntries(businessID int64, ids []int64, reviewerID int64, reason string) ([]*domain.TimeEntry, error)
}

type ShiftRepository interface {
	GetShiftByID(id int64) (*domain.Shift, error)
	ListShifts(filter ShiftFilter) ([]*domain.Shift, error)
	ListShiftsForOverlap(businessID, userID int64, excludeID int64) ([]*domain.Shift, error)
	CreateShift(shift *domain.Shift) error
	SaveShift(shift *domain.Shift) error
}

type BusinessRepository interface {
	GetBusinessByID(id int64) (*domain.Business, error)
}

type UserRepository interface {
	GetUserByID(id int64) (*domain.User, error)
}

// Service 承载时间记录和班次两套生命周期的全部业务规则，
// 持久化通过上面的窄接口注入，便于在测试中用内存实现替代。
type Service struct {
	entries    TimeEntryRepository
	shifts     ShiftRepository
	businesses BusinessRepository
	users      UserRepository
}

func NewService(entries TimeEntryRepository, shifts ShiftRepository, businesses BusinessRepository, users UserRepository) *Service {
	return &Service{
		entries:    entries,
		shifts:     shifts,
		businesses: businesses,
		users:      users,
	}
}

// ensureStaff 校验目标用户存在且属于指定商户。
// 不存在和属于别的商户统一报“用户不存在”，不泄露外部用户的存在性。
func (s *Service) ensureStaff(businessID, userID int64) error {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("用户不存在")
		}
		return err
	}
	if user.BusinessID != businessID {
		return domain.NotFound("用户不存在")
	}
	return nil
}
