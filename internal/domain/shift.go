package domain

import (
	"time"
)

type ShiftStatus string

const (
	ShiftStatusDraft     ShiftStatus = "draft"
	ShiftStatusPublished ShiftStatus = "published"
	ShiftStatusCanceled  ShiftStatus = "canceled"
)

type Shift struct {
	ID          int64       `json:"id"`
	BusinessID  int64       `json:"businessID"`
	UserID      *int64      `json:"userID"` // nil 表示待认领的空班次
	LocationID  *int64      `json:"locationID"`
	StartAt     time.Time   `json:"startAt"`
	EndAt       time.Time   `json:"endAt"`
	RoleTag     string      `json:"roleTag"`
	Notes       string      `json:"notes"`
	Status      ShiftStatus `json:"status"`
	PublishedAt *time.Time  `json:"publishedAt"`
	CreatedBy   int64       `json:"createdBy"`
	CreatedAt   time.Time   `json:"createdAt"`
	Version     int32       `json:"-"`
}

// ShiftPatch 是更新操作的补丁结构，nil 表示该字段保持原值。
// 清空已分配的用户请走 Unassign 操作，补丁不支持置空。
type ShiftPatch struct {
	StartAt    *time.Time
	EndAt      *time.Time
	UserID     *int64
	LocationID *int64
	RoleTag    *string
	Notes      *string
}

// Apply 将补丁合并到已有班次上。
func (p *ShiftPatch) Apply(s *Shift) {
	if p.StartAt != nil {
		s.StartAt = *p.StartAt
	}
	if p.EndAt != nil {
		s.EndAt = *p.EndAt
	}
	if p.UserID != nil {
		s.UserID = p.UserID
	}
	if p.LocationID != nil {
		s.LocationID = p.LocationID
	}
	if p.RoleTag != nil {
		s.RoleTag = *p.RoleTag
	}
	if p.Notes != nil {
		s.Notes = *p.Notes
	}
}
