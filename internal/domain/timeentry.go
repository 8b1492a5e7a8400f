package domain

import (
	"time"
)

type TimeEntryStatus string

const (
	TimeEntryStatusDraft     TimeEntryStatus = "draft"
	TimeEntryStatusSubmitted TimeEntryStatus = "submitted"
	TimeEntryStatusApproved  TimeEntryStatus = "approved"
	TimeEntryStatusRejected  TimeEntryStatus = "rejected"
	TimeEntryStatusVoid      TimeEntryStatus = "void"

	// TimeEntryStatusOpen 是旧版打卡记录遗留下来的状态，只会出现在历史数据中，
	// 新代码永远不会写入这个状态。
	TimeEntryStatusOpen TimeEntryStatus = "open"
)

type EntryType string

const (
	EntryTypeManual EntryType = "manual"

	// EntryTypeClock 是旧版打卡记录的类型，核心流程拒绝操作这类记录。
	EntryTypeClock EntryType = "clock"
)

type TimeEntry struct {
	ID              int64           `json:"id"`
	BusinessID      int64           `json:"businessID"`
	UserID          int64           `json:"userID"`
	EntryType       EntryType       `json:"entryType"`
	WorkDate        string          `json:"workDate"`  // YYYY-MM-DD，补零后可按字典序比较
	StartTime       string          `json:"startTime"` // HH:mm
	EndTime         string          `json:"endTime"`   // HH:mm，同一天内，必须晚于开始时间
	BreakMinutes    int32           `json:"breakMinutes"`
	Status          TimeEntryStatus `json:"status"`
	Notes           string          `json:"notes"`
	RejectionReason string          `json:"rejectionReason"`
	CreatedBy       int64           `json:"createdBy"`
	UpdatedBy       int64           `json:"updatedBy"`
	SubmittedAt     *time.Time      `json:"submittedAt"`
	ApprovedBy      *int64          `json:"approvedBy"`
	ApprovedAt      *time.Time      `json:"approvedAt"`
	CreatedAt       time.Time       `json:"createdAt"`
	Version         int32           `json:"-"`
}

// IsEditable 只有草稿和已驳回的记录允许修改和提交。
func (e *TimeEntry) IsEditable() bool {
	return e.Status == TimeEntryStatusDraft || e.Status == TimeEntryStatusRejected
}

// TimeEntryPatch 是更新操作的补丁结构，nil 表示该字段保持原值。
type TimeEntryPatch struct {
	WorkDate     *string
	StartTime    *string
	EndTime      *string
	BreakMinutes *int32
	Notes        *string
}

// Apply 将补丁合并到已有记录上。
func (p *TimeEntryPatch) Apply(e *TimeEntry) {
	if p.WorkDate != nil {
		e.WorkDate = *p.WorkDate
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	if p.BreakMinutes != nil {
		e.BreakMinutes = *p.BreakMinutes
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
}
