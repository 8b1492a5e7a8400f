package seed

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/timeutil"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/utils"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/workflow"
)

// SeedDemoData 创建一个演示商户：若干员工、过去若干天的时间记录（覆盖各个状态）
// 和一批班次（含已发布的空班次）。所有写入都走核心流程，
// 这样演示数据天然满足重叠和状态机的约束。
func SeedDemoData(cfg *config.Config, repo *repository.Repository, employeeCount int, dayCount int) {
	business := &domain.Business{
		Name:            "演示商户" + utils.GenerateRandomID(3, 3),
		RoundingMinutes: 15,
		RoundingMode:    timeutil.RoundingNearest,
	}
	if err := repo.CreateBusiness(business); err != nil {
		slog.Error("无法创建演示商户", "error", err)
		return
	}

	// 店主
	owner, err := utils.GenerateRandomUser(business.ID, cfg.Seed.User.Password, cfg.Email.UserDomain)
	if err != nil {
		slog.Error("无法生成店主", "error", err)
		return
	}
	owner.Role = domain.RoleOwner
	if err := repo.CreateUser(owner); err != nil {
		slog.Error("无法插入店主", "error", err)
		return
	}

	// 员工
	staff := make([]*domain.User, 0, employeeCount)
	for i := 0; i < employeeCount; i++ {
		user, err := utils.GenerateRandomUser(business.ID, cfg.Seed.User.Password, cfg.Email.UserDomain)
		if err != nil {
			slog.Error("无法生成员工", "error", err)
			continue
		}
		if err := repo.CreateUser(user); err != nil {
			slog.Error("无法插入员工", "error", err)
			continue
		}
		staff = append(staff, user)
	}

	if len(staff) == 0 {
		slog.Error("没有插入任何员工，跳过时间记录和班次")
		return
	}

	svc := workflow.NewService(repo, repo, repo, repo)
	ownerActor := workflow.Actor{ID: owner.ID, Role: owner.Role}

	entryCount := seedTimeEntries(svc, business.ID, ownerActor, staff, dayCount)
	shiftCount := seedShifts(svc, business.ID, ownerActor, staff, dayCount)

	slog.Info("演示数据插入完成",
		"business", business.Name,
		"owner", owner.Username,
		"staff", len(staff),
		"timeEntries", entryCount,
		"shifts", shiftCount,
	)
}

func seedTimeEntries(svc *workflow.Service, businessID int64, owner workflow.Actor, staff []*domain.User, dayCount int) int {
	count := 0
	for _, user := range staff {
		actor := workflow.Actor{ID: user.ID, Role: user.Role}

		for d := 1; d <= dayCount; d++ {
			workDate := time.Now().AddDate(0, 0, -d).Format("2006-01-02")
			template := utils.GenerateRandomManualEntry(businessID, user.ID, workDate)

			entry, err := svc.CreateTimeEntry(businessID, actor, workflow.CreateTimeEntryInput{
				UserID:       user.ID,
				WorkDate:     template.WorkDate,
				StartTime:    template.StartTime,
				EndTime:      template.EndTime,
				BreakMinutes: template.BreakMinutes,
			})
			if err != nil {
				// 随机区间撞上已有记录是正常情况，跳过即可
				continue
			}
			count++

			// 随机把记录推进到不同的生命周期阶段
			switch rand.Intn(5) {
			case 0:
				// 保持草稿
			case 1:
				_, _ = svc.SubmitTimeEntry(businessID, actor, entry.ID)
			case 2:
				if _, err := svc.SubmitTimeEntry(businessID, actor, entry.ID); err == nil {
					_, _ = svc.ApproveTimeEntry(businessID, owner, entry.ID)
				}
			case 3:
				if _, err := svc.SubmitTimeEntry(businessID, actor, entry.ID); err == nil {
					_, _ = svc.RejectTimeEntry(businessID, owner, entry.ID, "工时与排班不符")
				}
			case 4:
				_, _ = svc.VoidTimeEntry(businessID, actor, entry.ID)
			}
		}
	}
	return count
}

func seedShifts(svc *workflow.Service, businessID int64, owner workflow.Actor, staff []*domain.User, dayCount int) int {
	count := 0
	for d := 0; d < dayCount; d++ {
		day := time.Now().AddDate(0, 0, d+1).Truncate(24 * time.Hour)

		// 每天给随机两个员工排班，再放一个空班次
		for i := 0; i < 2; i++ {
			user := staff[rand.Intn(len(staff))]
			startHour := 9 + 4*i
			shift, err := svc.CreateShift(businessID, owner, workflow.CreateShiftInput{
				UserID:  &user.ID,
				StartAt: day.Add(time.Duration(startHour) * time.Hour),
				EndAt:   day.Add(time.Duration(startHour+4) * time.Hour),
				RoleTag: utils.GenerateRandomShiftRoleTag(),
			})
			if err != nil {
				continue
			}
			count++

			if rand.Intn(3) > 0 {
				_, _ = svc.PublishShift(businessID, owner, shift.ID)
			}
		}

		open, err := svc.CreateShift(businessID, owner, workflow.CreateShiftInput{
			StartAt: day.Add(18 * time.Hour),
			EndAt:   day.Add(22 * time.Hour),
			RoleTag: utils.GenerateRandomShiftRoleTag(),
		})
		if err != nil {
			continue
		}
		count++

		// 空班次大多直接发布供认领，偶尔取消一个
		switch rand.Intn(4) {
		case 0:
			_, _ = svc.CancelShift(businessID, owner, open.ID)
		default:
			_, _ = svc.PublishShift(businessID, owner, open.ID)
		}
	}
	return count
}
