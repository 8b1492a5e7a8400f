package domain

import (
	"time"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/timeutil"
)

// Business 是租户边界，所有记录都恰好属于一个 business。
type Business struct {
	ID              int64                 `json:"id"`
	Name            string                `json:"name"`
	RoundingMinutes int32                 `json:"roundingMinutes"`
	RoundingMode    timeutil.RoundingMode `json:"roundingMode"`
	CreatedAt       time.Time             `json:"createdAt"`
	Version         int32                 `json:"-"`
}
