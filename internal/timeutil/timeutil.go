package timeutil

import "errors"

var (
	ErrInvalidFormat = errors.New("时间格式无效，必须为补零的 HH:mm")
	ErrInvalidRange  = errors.New("结束时间必须晚于开始时间")
	ErrInvalidBreak  = errors.New("休息时长不能超过工作总时长")
)

type RoundingMode string

const (
	RoundingNearest RoundingMode = "nearest"
	RoundingUp      RoundingMode = "up"
	RoundingDown    RoundingMode = "down"
)

// TimeToMinutes 将严格的 24 小时制 HH:mm 转换为当天的分钟数。
// 非补零（"9:00"）、越界（"24:00"、"12:60"）、缺冒号、空串都返回 ErrInvalidFormat。
func TimeToMinutes(hhmm string) (int32, error) {
	if len(hhmm) != 5 || hhmm[2] != ':' {
		return 0, ErrInvalidFormat
	}
	for _, i := range []int{0, 1, 3, 4} {
		if hhmm[i] < '0' || hhmm[i] > '9' {
			return 0, ErrInvalidFormat
		}
	}

	hour := int32(hhmm[0]-'0')*10 + int32(hhmm[1]-'0')
	minute := int32(hhmm[3]-'0')*10 + int32(hhmm[4]-'0')
	if hour > 23 || minute > 59 {
		return 0, ErrInvalidFormat
	}

	return hour*60 + minute, nil
}

// RoundMinutes 将分钟数按给定的步长取整，increment 为 0 时不取整。
// 全程使用整数运算：除以步长、按模式取整、再乘回去。
func RoundMinutes(minutes int32, increment int32, mode RoundingMode) int32 {
	if increment <= 0 {
		return minutes
	}

	remainder := minutes % increment
	base := minutes - remainder

	switch mode {
	case RoundingUp:
		if remainder > 0 {
			return base + increment
		}
		return base
	case RoundingDown:
		return base
	default:
		// nearest：余数达到半个步长时进位
		if remainder*2 >= increment {
			return base + increment
		}
		return base
	}
}

type ManualTotals struct {
	TotalMinutes       int32 `json:"totalMinutes"`
	BreakMinutes       int32 `json:"breakMinutes"`
	PaidMinutes        int32 `json:"paidMinutes"`
	PaidMinutesRounded int32 `json:"paidMinutesRounded"`
}

// ComputeManualTotals 计算一条手工记录的工时。记录必须落在同一天内，
// 不支持跨夜，所以结束时间不晚于开始时间直接返回 ErrInvalidRange。
func ComputeManualTotals(startTime, endTime string, breakMinutes, roundingMinutes int32, mode RoundingMode) (*ManualTotals, error) {
	start, err := TimeToMinutes(startTime)
	if err != nil {
		return nil, err
	}
	end, err := TimeToMinutes(endTime)
	if err != nil {
		return nil, err
	}

	if end <= start {
		return nil, ErrInvalidRange
	}

	total := end - start
	if breakMinutes < 0 || breakMinutes > total {
		return nil, ErrInvalidBreak
	}

	paid := total - breakMinutes

	return &ManualTotals{
		TotalMinutes:       total,
		BreakMinutes:       breakMinutes,
		PaidMinutes:        paid,
		PaidMinutesRounded: RoundMinutes(paid, roundingMinutes, mode),
	}, nil
}
