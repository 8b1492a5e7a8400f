package domain

import (
	"time"
)

type Role string

const (
	RoleOwner    Role = "owner"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// IsManagerLike 统一的权限分层判断：店主和经理属于管理层，员工不是。
// 时间记录和班次两套流程都只使用这一个判断，不要在各个操作里重复写角色比较。
func (r Role) IsManagerLike() bool {
	return r == RoleOwner || r == RoleManager
}

type User struct {
	ID           int64     `json:"id"`
	BusinessID   int64     `json:"businessID"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
