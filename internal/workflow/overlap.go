package workflow

import (
	"time"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/timeutil"
)

// intervalsIntersect 判断两个左闭右开区间是否相交，端点相接不算冲突。
func intervalsIntersect(aStart, aEnd, bStart, bEnd int64) bool {
	return bStart < aEnd && bEnd > aStart
}

// hasTimeEntryOverlap 判断候选的分钟区间是否与同一用户同一工作日的已有记录冲突。
// existing 由持久化层按（商户、用户、工作日、状态非作废）过滤好；
// 起止时间解析不了的旧数据直接跳过，不视为错误。
func hasTimeEntryOverlap(candStart, candEnd int32, existing []*domain.TimeEntry) bool {
	for _, entry := range existing {
		start, err := timeutil.TimeToMinutes(entry.StartTime)
		if err != nil {
			continue
		}
		end, err := timeutil.TimeToMinutes(entry.EndTime)
		if err != nil {
			continue
		}
		if intervalsIntersect(int64(candStart), int64(candEnd), int64(start), int64(end)) {
			return true
		}
	}
	return false
}

// hasShiftOverlap 判断候选的绝对时间区间是否与同一用户的其他班次冲突，
// 班次不以天为边界。existing 由持久化层按（商户、用户、状态非取消）过滤好。
func hasShiftOverlap(candStart, candEnd time.Time, existing []*domain.Shift) bool {
	for _, shift := range existing {
		if intervalsIntersect(candStart.UnixMilli(), candEnd.UnixMilli(), shift.StartAt.UnixMilli(), shift.EndAt.UnixMilli()) {
			return true
		}
	}
	return false
}
