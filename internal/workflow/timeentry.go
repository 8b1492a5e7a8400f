package workflow

import (
	"database/sql"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/timeutil"
)

type CreateTimeEntryInput struct {
	UserID       int64
	WorkDate     string
	StartTime    string
	EndTime      string
	BreakMinutes int32
	Notes        string
}

// TimeEntryWithTotals 在记录之外附带按商户取整配置计算出来的工时，
// Totals 为 nil 表示这条记录的时间已经解析不了（旧数据）。
type TimeEntryWithTotals struct {
	*domain.TimeEntry
	Totals *timeutil.ManualTotals `json:"totals"`
}

type TimeEntrySummary struct {
	EntryCount         int                            `json:"entryCount"`
	TotalMinutes       int32                          `json:"totalMinutes"`
	BreakMinutes       int32                          `json:"breakMinutes"`
	PaidMinutes        int32                          `json:"paidMinutes"`
	PaidMinutesRounded int32                          `json:"paidMinutesRounded"`
	StatusCounts       map[domain.TimeEntryStatus]int `json:"statusCounts"`
}

type BulkResult struct {
	Matched  int                 `json:"matched"`
	Modified int                 `json:"modified"`
	Entries  []*domain.TimeEntry `json:"entries"`
}

// loadManualEntry 在租户范围内加载一条手工时间记录。
// 旧版打卡记录对调用方伪装成不存在，避免泄露这类记录的存在性。
func (s *Service) loadManualEntry(businessID, id int64) (*domain.TimeEntry, error) {
	entry, err := s.entries.GetTimeEntryByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("时间记录不存在")
		}
		return nil, err
	}
	if entry.BusinessID != businessID {
		return nil, domain.Forbidden("无权访问其他商户的数据")
	}
	if entry.EntryType != domain.EntryTypeManual {
		return nil, domain.NotFound("时间记录不存在")
	}
	return entry, nil
}

func (s *Service) rounding(businessID int64) (int32, timeutil.RoundingMode, error) {
	business, err := s.businesses.GetBusinessByID(businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, timeutil.RoundingNearest, domain.NotFound("商户不存在")
		}
		return 0, timeutil.RoundingNearest, err
	}
	mode := business.RoundingMode
	if mode == "" {
		mode = timeutil.RoundingNearest
	}
	return business.RoundingMinutes, mode, nil
}

// validateEntryTimes 校验一条记录的时间字段。时间计算层的校验错误
// 原样转成 BadRequest，保留原始提示信息。
func validateEntryTimes(entry *domain.TimeEntry) error {
	if entry.WorkDate == "" || entry.StartTime == "" || entry.EndTime == "" {
		return domain.BadRequest("工作日期、开始时间和结束时间均不能为空")
	}
	if _, err := time.Parse("2006-01-02", entry.WorkDate); err != nil {
		return domain.BadRequest("工作日期格式无效，必须为 YYYY-MM-DD")
	}
	if entry.BreakMinutes < 0 {
		return domain.BadRequest("休息时长不能为负数")
	}
	if _, err := timeutil.ComputeManualTotals(entry.StartTime, entry.EndTime, entry.BreakMinutes, 0, timeutil.RoundingNearest); err != nil {
		return domain.BadRequest(err.Error())
	}
	return nil
}

func (s *Service) checkEntryOverlap(entry *domain.TimeEntry) error {
	candStart, _ := timeutil.TimeToMinutes(entry.StartTime)
	candEnd, _ := timeutil.TimeToMinutes(entry.EndTime)

	existing, err := s.entries.ListTimeEntriesForOverlap(entry.BusinessID, entry.UserID, entry.WorkDate, entry.ID)
	if err != nil {
		return err
	}

	// 已知竞态：重叠检查和随后的写入不在同一个事务里，两个并发请求
	// 可能都在对方提交前通过检查。上游确认需要更强保证前保持现状。
	if hasTimeEntryOverlap(candStart, candEnd, existing) {
		return domain.Conflict("该时间段与该用户当天的其他记录重叠")
	}
	return nil
}

// CreateTimeEntry 创建一条草稿状态的手工时间记录。
// 员工只能为自己创建，管理层可以代任意员工创建。
func (s *Service) CreateTimeEntry(businessID int64, actor Actor, input CreateTimeEntryInput) (*domain.TimeEntry, error) {
	if !actor.Role.IsManagerLike() && input.UserID != actor.ID {
		return nil, domain.Forbidden("只能为自己创建时间记录")
	}
	if err := s.ensureStaff(businessID, input.UserID); err != nil {
		return nil, err
	}

	entry := &domain.TimeEntry{
		BusinessID:   businessID,
		UserID:       input.UserID,
		EntryType:    domain.EntryTypeManual,
		WorkDate:     input.WorkDate,
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
		BreakMinutes: input.BreakMinutes,
		Status:       domain.TimeEntryStatusDraft,
		Notes:        input.Notes,
		CreatedBy:    actor.ID,
		UpdatedBy:    actor.ID,
	}

	if err := validateEntryTimes(entry); err != nil {
		return nil, err
	}
	if err := s.checkEntryOverlap(entry); err != nil {
		return nil, err
	}

	if err := s.entries.CreateTimeEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateTimeEntry 修改一条草稿或已驳回的记录，合并补丁后重新校验工时并重新检查重叠。
func (s *Service) UpdateTimeEntry(businessID int64, actor Actor, id int64, patch domain.TimeEntryPatch) (*domain.TimeEntry, error) {
	entry, err := s.loadManualEntry(businessID, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsManagerLike() && entry.UserID != actor.ID {
		return nil, domain.Forbidden("只能修改自己的时间记录")
	}
	if !entry.IsEditable() {
		return nil, domain.Conflict("只有草稿或已驳回的记录才能修改")
	}

	patch.Apply(entry)

	if err := validateEntryTimes(entry); err != nil {
		return nil, err
	}
	if err := s.checkEntryOverlap(entry); err != nil {
		return nil, err
	}

	entry.UpdatedBy = actor.ID
	if err := s.saveEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// SubmitTimeEntry 将草稿或已驳回的记录提交审批。
func (s *Service) SubmitTimeEntry(businessID int64, actor Actor, id int64) (*domain.TimeEntry, error) {
	entry, err := s.loadManualEntry(businessID, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsManagerLike() && entry.UserID != actor.ID {
		return nil, domain.Forbidden("只能提交自己的时间记录")
	}
	if !entry.IsEditable() {
		return nil, domain.Conflict("只有草稿或已驳回的记录才能提交")
	}
	if err := validateEntryTimes(entry); err != nil {
		return nil, err
	}

	now := time.Now()
	entry.Status = domain.TimeEntryStatusSubmitted
	entry.SubmittedAt = &now
	entry.UpdatedBy = actor.ID

	if err := s.saveEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ApproveTimeEntry 审批通过一条已提交的记录，管理层专用。
func (s *Service) ApproveTimeEntry(businessID int64, actor Actor, id int64) (*domain.TimeEntry, error) {
	if !actor.Role.IsManagerLike() {
		return nil, domain.Forbidden("权限不足")
	}

	entry, err := s.loadManualEntry(businessID, id)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.TimeEntryStatusSubmitted {
		return nil, domain.Conflict("只有已提交的记录才能审批通过")
	}

	now := time.Now()
	entry.Status = domain.TimeEntryStatusApproved
	entry.ApprovedBy = &actor.ID
	entry.ApprovedAt = &now
	entry.UpdatedBy = actor.ID

	if err := s.saveEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// RejectTimeEntry 驳回一条已提交的记录，必须给出原因。被驳回的记录可以再次编辑和提交。
func (s *Service) RejectTimeEntry(businessID int64, actor Actor, id int64, reason string) (*domain.TimeEntry, error) {
	if !actor.Role.IsManagerLike() {
		return nil, domain.Forbidden("权限不足")
	}

	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) < 2 {
		return nil, domain.BadRequest("驳回原因至少需要 2 个字符")
	}

	entry, err := s.loadManualEntry(businessID, id)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.TimeEntryStatusSubmitted {
		return nil, domain.Conflict("只有已提交的记录才能驳回")
	}

	entry.Status = domain.TimeEntryStatusRejected
	entry.RejectionReason = reason
	entry.UpdatedBy = actor.ID

	if err := s.saveEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// VoidTimeEntry 作废一条记录。作废是终态，没有任何逆向转换。
// 管理层可以作废任何未作废的记录（包括已审批的，是否收紧待产品确认）；
// 员工只能作废自己的草稿或已驳回记录。
func (s *Service) VoidTimeEntry(businessID int64, actor Actor, id int64) (*domain.TimeEntry, error) {
	entry, err := s.loadManualEntry(businessID, id)
	if err != nil {
		return nil, err
	}
	if entry.Status == domain.TimeEntryStatusVoid {
		return nil, domain.Conflict("该记录已作废")
	}

	if !actor.Role.IsManagerLike() {
		if entry.UserID != actor.ID {
			return nil, domain.Forbidden("只能作废自己的时间记录")
		}
		if !entry.IsEditable() {
			return nil, domain.Conflict("只有草稿或已驳回的记录才能由本人作废")
		}
	}

	entry.Status = domain.TimeEntryStatusVoid
	entry.UpdatedBy = actor.ID

	if err := s.saveEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// BulkApproveTimeEntries 批量审批。只命中（本商户、手工、已提交）的记录，
// 其余 ID 静默跳过，不产生逐条错误。持久化层用单条带条件的更新完成
// 匹配和写入，所以这里 matched 恒等于 modified，两个计数都保留以维持接口形状。
func (s *Service) BulkApproveTimeEntries(businessID int64, actor Actor, ids []int64) (*BulkResult, error) {
	if !actor.Role.IsManagerLike() {
		return nil, domain.Forbidden("权限不足")
	}
	if len(ids) == 0 {
		return nil, domain.BadRequest("至少需要一个记录 ID")
	}

	entries, err := s.entries.BulkApproveTimeEntries(businessID, ids, actor.ID)
	if err != nil {
		return nil, err
	}

	return &BulkResult{
		Matched:  len(entries),
		Modified: len(entries),
		Entries:  entries,
	}, nil
}

// BulkRejectTimeEntries 批量驳回，语义同 BulkApproveTimeEntries，额外要求原因。
func (s *Service) BulkRejectTimeEntries(businessID int64, actor Actor, ids []int64, reason string) (*BulkResult, error) {
	if !actor.Role.IsManagerLike() {
		return nil, domain.Forbidden("权限不足")
	}
	if len(ids) == 0 {
		return nil, domain.BadRequest("至少需要一个记录 ID")
	}
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) < 2 {
		return nil, domain.BadRequest("驳回原因至少需要 2 个字符")
	}

	entries, err := s.entries.BulkRejectTimeEntries(businessID, ids, actor.ID, reason)
	if err != nil {
		return nil, err
	}

	return &BulkResult{
		Matched:  len(entries),
		Modified: len(entries),
		Entries:  entries,
	}, nil
}

// GetTimeEntry 获取单条记录，并按商户的取整配置附带工时。
func (s *Service) GetTimeEntry(businessID int64, actor Actor, id int64) (*TimeEntryWithTotals, error) {
	entry, err := s.loadManualEntry(businessID, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsManagerLike() && entry.UserID != actor.ID {
		return nil, domain.Forbidden("无权查看他人的时间记录")
	}

	increment, mode, err := s.rounding(businessID)
	if err != nil {
		return nil, err
	}

	result := &TimeEntryWithTotals{TimeEntry: entry}
	if totals, err := timeutil.ComputeManualTotals(entry.StartTime, entry.EndTime, entry.BreakMinutes, increment, mode); err == nil {
		result.Totals = totals
	}
	return result, nil
}

// ListTimeEntries 列出记录。员工只能看到自己的，管理层可以按用户过滤。
// 日期范围在字典序上含边界，依赖补零的 YYYY-MM-DD 格式。
func (s *Service) ListTimeEntries(businessID int64, actor Actor, filter TimeEntryFilter) ([]*domain.TimeEntry, error) {
	filter.BusinessID = businessID
	if !actor.Role.IsManagerLike() {
		filter.UserID = &actor.ID
	}
	return s.entries.ListTimeEntries(filter)
}

// ListPendingTimeEntries 列出待审批（已提交）的记录。
func (s *Service) ListPendingTimeEntries(businessID int64, actor Actor, filter TimeEntryFilter) ([]*domain.TimeEntry, error) {
	submitted := domain.TimeEntryStatusSubmitted
	filter.Status = &submitted
	return s.ListTimeEntries(businessID, actor, filter)
}

// SummarizeTimeEntries 在过滤出来的记录上聚合工时。单条记录工时算不出来
// 不会中断聚合：它被排除在工时之外，但仍计入状态计数。
func (s *Service) SummarizeTimeEntries(businessID int64, actor Actor, filter TimeEntryFilter) (*TimeEntrySummary, error) {
	entries, err := s.ListTimeEntries(businessID, actor, filter)
	if err != nil {
		return nil, err
	}

	increment, mode, err := s.rounding(businessID)
	if err != nil {
		return nil, err
	}

	summary := &TimeEntrySummary{
		StatusCounts: make(map[domain.TimeEntryStatus]int),
	}
	for _, entry := range entries {
		summary.EntryCount++
		summary.StatusCounts[entry.Status]++

		totals, err := timeutil.ComputeManualTotals(entry.StartTime, entry.EndTime, entry.BreakMinutes, increment, mode)
		if err != nil {
			continue
		}
		summary.TotalMinutes += totals.TotalMinutes
		summary.BreakMinutes += totals.BreakMinutes
		summary.PaidMinutes += totals.PaidMinutes
		summary.PaidMinutesRounded += totals.PaidMinutesRounded
	}
	return summary, nil
}

// saveEntry 将乐观锁失败统一转成冲突错误。
func (s *Service) saveEntry(entry *domain.TimeEntry) error {
	if err := s.entries.SaveTimeEntry(entry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Conflict("记录已被其他操作修改，请刷新后重试")
		}
		return err
	}
	return nil
}
