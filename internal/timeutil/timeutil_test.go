package timeutil

import (
	"errors"
	"testing"
)

func TestTimeToMinutes(t *testing.T) {
	tests := []struct {
		input   string
		want    int32
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"17:30", 1050, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"9:00", 0, true},
		{"12:60", 0, true},
		{"", 0, true},
		{"0900", 0, true},
		{"ab:cd", 0, true},
	}

	for _, tt := range tests {
		got, err := TimeToMinutes(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("TimeToMinutes(%q) 期望 ErrInvalidFormat，实际: %v", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("TimeToMinutes(%q) 应成功: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("TimeToMinutes(%q) 期望 %d，实际 %d", tt.input, tt.want, got)
		}
	}
}

func TestRoundMinutes(t *testing.T) {
	// 步长为 0 时任何模式都应原样返回
	for _, mode := range []RoundingMode{RoundingNearest, RoundingUp, RoundingDown} {
		if got := RoundMinutes(450, 0, mode); got != 450 {
			t.Errorf("步长为 0 时期望 450，实际 %d（mode=%s）", got, mode)
		}
	}

	tests := []struct {
		minutes   int32
		increment int32
		mode      RoundingMode
		want      int32
	}{
		{450, 15, RoundingNearest, 450},
		{452, 15, RoundingNearest, 450},
		{458, 15, RoundingNearest, 465},
		{457, 14, RoundingNearest, 462},
		{452, 15, RoundingUp, 465},
		{450, 15, RoundingUp, 450},
		{458, 15, RoundingDown, 450},
		{465, 15, RoundingDown, 465},
	}

	for _, tt := range tests {
		if got := RoundMinutes(tt.minutes, tt.increment, tt.mode); got != tt.want {
			t.Errorf("RoundMinutes(%d, %d, %s) 期望 %d，实际 %d", tt.minutes, tt.increment, tt.mode, tt.want, got)
		}
	}
}

func TestComputeManualTotals(t *testing.T) {
	totals, err := ComputeManualTotals("09:00", "17:00", 30, 0, RoundingNearest)
	if err != nil {
		t.Fatalf("ComputeManualTotals 应成功: %v", err)
	}
	if totals.TotalMinutes != 480 {
		t.Errorf("期望 TotalMinutes=480，实际 %d", totals.TotalMinutes)
	}
	if totals.PaidMinutes != 450 {
		t.Errorf("期望 PaidMinutes=450，实际 %d", totals.PaidMinutes)
	}
	if totals.PaidMinutesRounded != 450 {
		t.Errorf("步长为 0 时期望 PaidMinutesRounded=450，实际 %d", totals.PaidMinutesRounded)
	}
}

func TestComputeManualTotalsInvalidRange(t *testing.T) {
	if _, err := ComputeManualTotals("17:00", "09:00", 0, 0, RoundingNearest); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("期望 ErrInvalidRange，实际: %v", err)
	}
	// 起止相等也不允许
	if _, err := ComputeManualTotals("09:00", "09:00", 0, 0, RoundingNearest); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("期望 ErrInvalidRange，实际: %v", err)
	}
}

func TestComputeManualTotalsInvalidBreak(t *testing.T) {
	if _, err := ComputeManualTotals("09:00", "10:00", 61, 0, RoundingNearest); !errors.Is(err, ErrInvalidBreak) {
		t.Errorf("期望 ErrInvalidBreak，实际: %v", err)
	}
	// 负数休息会把带薪工时算得比总时长还长，必须拒绝
	if _, err := ComputeManualTotals("09:00", "10:00", -30, 0, RoundingNearest); !errors.Is(err, ErrInvalidBreak) {
		t.Errorf("负数休息时长期望 ErrInvalidBreak，实际: %v", err)
	}
}

func TestComputeManualTotalsRounded(t *testing.T) {
	totals, err := ComputeManualTotals("09:00", "16:38", 0, 15, RoundingNearest)
	if err != nil {
		t.Fatalf("ComputeManualTotals 应成功: %v", err)
	}
	if totals.PaidMinutes != 458 {
		t.Errorf("期望 PaidMinutes=458，实际 %d", totals.PaidMinutes)
	}
	if totals.PaidMinutesRounded != 465 {
		t.Errorf("期望 PaidMinutesRounded=465，实际 %d", totals.PaidMinutesRounded)
	}
}
