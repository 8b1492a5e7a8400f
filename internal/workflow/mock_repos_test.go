package workflow

import (
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
)

// ── 内存版持久化实现，行为尽量贴近真实仓库：按 ID 取出的是副本，
//    保存时校验版本号，批量操作用同一个匹配谓词 ──

type mockTimeEntryRepo struct {
	entries map[int64]*domain.TimeEntry
	nextID  int64
}

func newMockTimeEntryRepo() *mockTimeEntryRepo {
	return &mockTimeEntryRepo{entries: make(map[int64]*domain.TimeEntry), nextID: 1}
}

func copyEntry(e *domain.TimeEntry) *domain.TimeEntry {
	clone := *e
	return &clone
}

func (m *mockTimeEntryRepo) GetTimeEntryByID(id int64) (*domain.TimeEntry, error) {
	entry, ok := m.entries[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyEntry(entry), nil
}

func (m *mockTimeEntryRepo) ListTimeEntries(filter TimeEntryFilter) ([]*domain.TimeEntry, error) {
	result := []*domain.TimeEntry{}
	for _, entry := range m.entries {
		if entry.BusinessID != filter.BusinessID || entry.EntryType != domain.EntryTypeManual {
			continue
		}
		if filter.UserID != nil && entry.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && entry.Status != *filter.Status {
			continue
		}
		if filter.FromDate != nil && entry.WorkDate < *filter.FromDate {
			continue
		}
		if filter.ToDate != nil && entry.WorkDate > *filter.ToDate {
			continue
		}
		result = append(result, copyEntry(entry))
	}
	return result, nil
}

func (m *mockTimeEntryRepo) ListTimeEntriesForOverlap(businessID, userID int64, workDate string, excludeID int64) ([]*domain.TimeEntry, error) {
	result := []*domain.TimeEntry{}
	for _, entry := range m.entries {
		if entry.BusinessID != businessID || entry.UserID != userID || entry.WorkDate != workDate {
			continue
		}
		if entry.EntryType != domain.EntryTypeManual || entry.Status == domain.TimeEntryStatusVoid {
			continue
		}
		if entry.ID == excludeID {
			continue
		}
		result = append(result, copyEntry(entry))
	}
	return result, nil
}

func (m *mockTimeEntryRepo) CreateTimeEntry(entry *domain.TimeEntry) error {
	entry.ID = m.nextID
	m.nextID++
	entry.CreatedAt = time.Now()
	entry.Version = 1
	m.entries[entry.ID] = copyEntry(entry)
	return nil
}

func (m *mockTimeEntryRepo) SaveTimeEntry(entry *domain.TimeEntry) error {
	stored, ok := m.entries[entry.ID]
	if !ok || stored.Version != entry.Version {
		return sql.ErrNoRows
	}
	entry.Version++
	m.entries[entry.ID] = copyEntry(entry)
	return nil
}

func (m *mockTimeEntryRepo) BulkApproveTimeEntries(businessID int64, ids []int64, approverID int64) ([]*domain.TimeEntry, error) {
	now := time.Now()
	result := []*domain.TimeEntry{}
	for _, id := range ids {
		entry, ok := m.entries[id]
		if !ok || entry.BusinessID != businessID || entry.EntryType != domain.EntryTypeManual || entry.Status != domain.TimeEntryStatusSubmitted {
			continue
		}
		entry.Status = domain.TimeEntryStatusApproved
		entry.ApprovedBy = &approverID
		entry.ApprovedAt = &now
		entry.UpdatedBy = approverID
		entry.Version++
		result = append(result, copyEntry(entry))
	}
	return result, nil
}

func (m *mockTimeEntryRepo) BulkRejectTimeEntries(businessID int64, ids []int64, reviewerID int64, reason string) ([]*domain.TimeEntry, error) {
	result := []*domain.TimeEntry{}
	for _, id := range ids {
		entry, ok := m.entries[id]
		if !ok || entry.BusinessID != businessID || entry.EntryType != domain.EntryTypeManual || entry.Status != domain.TimeEntryStatusSubmitted {
			continue
		}
		entry.Status = domain.TimeEntryStatusRejected
		entry.RejectionReason = reason
		entry.UpdatedBy = reviewerID
		entry.Version++
		result = append(result, copyEntry(entry))
	}
	return result, nil
}

type mockShiftRepo struct {
	shifts map[int64]*domain.Shift
	nextID int64
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{shifts: make(map[int64]*domain.Shift), nextID: 1}
}

func copyShift(s *domain.Shift) *domain.Shift {
	clone := *s
	return &clone
}

func (m *mockShiftRepo) GetShiftByID(id int64) (*domain.Shift, error) {
	shift, ok := m.shifts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyShift(shift), nil
}

func (m *mockShiftRepo) ListShifts(filter ShiftFilter) ([]*domain.Shift, error) {
	result := []*domain.Shift{}
	for _, shift := range m.shifts {
		if shift.BusinessID != filter.BusinessID {
			continue
		}
		if filter.UserID != nil && (shift.UserID == nil || *shift.UserID != *filter.UserID) {
			continue
		}
		if filter.Status != nil && shift.Status != *filter.Status {
			continue
		}
		if filter.From != nil && shift.StartAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && shift.StartAt.After(*filter.To) {
			continue
		}
		if filter.VisibleToUserID != nil {
			assigned := shift.UserID != nil && *shift.UserID == *filter.VisibleToUserID
			openPublished := filter.IncludeOpenPublished && shift.UserID == nil && shift.Status == domain.ShiftStatusPublished
			if !assigned && !openPublished {
				continue
			}
		}
		result = append(result, copyShift(shift))
	}
	return result, nil
}

func (m *mockShiftRepo) ListShiftsForOverlap(businessID, userID int64, excludeID int64) ([]*domain.Shift, error) {
	result := []*domain.Shift{}
	for _, shift := range m.shifts {
		if shift.BusinessID != businessID || shift.UserID == nil || *shift.UserID != userID {
			continue
		}
		if shift.Status == domain.ShiftStatusCanceled || shift.ID == excludeID {
			continue
		}
		result = append(result, copyShift(shift))
	}
	return result, nil
}

func (m *mockShiftRepo) CreateShift(shift *domain.Shift) error {
	shift.ID = m.nextID
	m.nextID++
	shift.CreatedAt = time.Now()
	shift.Version = 1
	m.shifts[shift.ID] = copyShift(shift)
	return nil
}

func (m *mockShiftRepo) SaveShift(shift *domain.Shift) error {
	stored, ok := m.shifts[shift.ID]
	if !ok || stored.Version != shift.Version {
		return sql.ErrNoRows
	}
	shift.Version++
	m.shifts[shift.ID] = copyShift(shift)
	return nil
}

type mockUserRepo struct {
	users map[int64]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*domain.User)}
}

func (m *mockUserRepo) GetUserByID(id int64) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

type mockBusinessRepo struct {
	businesses map[int64]*domain.Business
}

func newMockBusinessRepo() *mockBusinessRepo {
	return &mockBusinessRepo{businesses: make(map[int64]*domain.Business)}
}

func (m *mockBusinessRepo) GetBusinessByID(id int64) (*domain.Business, error) {
	business, ok := m.businesses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *business
	return &clone, nil
}
