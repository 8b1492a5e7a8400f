package workflow

import (
	"testing"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/timeutil"
)

const (
	testBusinessID  = int64(1)
	otherBusinessID = int64(2)

	// 属于 otherBusinessID 的用户，用于跨租户用例
	foreignUserID = int64(99)
)

var (
	owner    = Actor{ID: 10, Role: domain.RoleOwner}
	manager  = Actor{ID: 11, Role: domain.RoleManager}
	employee = Actor{ID: 12, Role: domain.RoleEmployee}
	coworker = Actor{ID: 13, Role: domain.RoleEmployee}
)

func setupTestService() (*Service, *mockTimeEntryRepo, *mockShiftRepo, *mockBusinessRepo) {
	entryRepo := newMockTimeEntryRepo()
	shiftRepo := newMockShiftRepo()
	businessRepo := newMockBusinessRepo()
	businessRepo.businesses[testBusinessID] = &domain.Business{
		ID: testBusinessID, Name: "测试商户", RoundingMinutes: 0, RoundingMode: timeutil.RoundingNearest,
	}
	businessRepo.businesses[otherBusinessID] = &domain.Business{
		ID: otherBusinessID, Name: "别家商户", RoundingMinutes: 15, RoundingMode: timeutil.RoundingUp,
	}
	userRepo := newMockUserRepo()
	for _, actor := range []Actor{owner, manager, employee, coworker} {
		userRepo.users[actor.ID] = &domain.User{
			ID: actor.ID, BusinessID: testBusinessID, Role: actor.Role, IsActive: true,
		}
	}
	userRepo.users[foreignUserID] = &domain.User{
		ID: foreignUserID, BusinessID: otherBusinessID, Role: domain.RoleEmployee, IsActive: true,
	}
	return NewService(entryRepo, shiftRepo, businessRepo, userRepo), entryRepo, shiftRepo, businessRepo
}

func mustCreateEntry(t *testing.T, svc *Service, actor Actor, userID int64, workDate, start, end string, breakMinutes int32) *domain.TimeEntry {
	t.Helper()
	entry, err := svc.CreateTimeEntry(testBusinessID, actor, CreateTimeEntryInput{
		UserID:       userID,
		WorkDate:     workDate,
		StartTime:    start,
		EndTime:      end,
		BreakMinutes: breakMinutes,
	})
	if err != nil {
		t.Fatalf("创建时间记录应成功: %v", err)
	}
	return entry
}

func expectKind(t *testing.T, err error, kind domain.ErrorKind) {
	t.Helper()
	if domain.KindOf(err) != kind {
		t.Fatalf("期望错误类别 %s，实际: %v", kind, err)
	}
}

func TestCreateTimeEntryBySelf(t *testing.T) {
	svc, _, _, _ := setupTestService()

	entry := mustCreateEntry(t, svc, employee, employee.ID, "2024-01-05", "09:00", "17:00", 30)
	if entry.Status != domain.TimeEntryStatusDraft {
		t.Errorf("新记录期望状态 draft，实际 %s", entry.Status)
	}

	got, err := svc.GetTimeEntry(testBusinessID, employee, entry.ID)
	if err != nil {
		t.Fatalf("获取时间记录应成功: %v", err)
	}
	if got.Totals == nil || got.Totals.PaidMinutes != 450 {
		t.Errorf("期望 PaidMinutes=450，实际 %+v", got.Totals)
	}
}

func TestCreateTimeEntryForOtherForbidden(t *testing.T) {
	svc, _, _, _ := setupTestService()

	_, err := svc.CreateTimeEntry(testBusinessID, employee, CreateTimeEntryInput{
		UserID: coworker.ID, WorkDate: "2024-01-05", StartTime: "09:00", EndTime: "17:00",
	})
	expectKind(t, err, domain.ErrForbidden)

	// 管理层可以代员工创建
	if _, err := svc.CreateTimeEntry(testBusinessID, manager, CreateTimeEntryInput{
		UserID: coworker.ID, WorkDate: "2024-01-05", StartTime: "09:00", EndTime: "17:00",
	}); err != nil {
		t.Fatalf("管理层代建应成功: %v", err)
	}
}

func TestCreateTimeEntryInvalidTimes(t *testing.T) {
	svc, _, _, _ := setupTestService()

	_, err := svc.CreateTimeEntry(testBusinessID, employee, CreateTimeEntryInput{
		UserID: employee.ID, WorkDate: "2024-01-05", StartTime: "9:00", EndTime: "17:00",
	})
	expectKind(t, err, domain.ErrBadRequest)

	_, err = svc.CreateTimeEntry(testBusinessID, employee, CreateTimeEntryInput{
		UserID: employee.ID, WorkDate: "2024-01-05", StartTime: "17:00", EndTime: "09:00",
	})
	expectKind(t, err, domain.ErrBadRequest)

	_, err = svc.CreateTimeEntry(testBusinessID, employee, CreateTimeEntryInput{
		UserID: employee.ID, WorkDate: "2024-01-05", StartTime: "09:00", EndTime: "10:00", BreakMinutes: 90,
	})
	expectKind(t, err, domain.ErrBadRequest)
}

func TestCreateTimeEntryOverlap(t *testing.T) {
	svc, _, _, _ := setupTestService()

	mustCreateEntry(t, svc, employee, employee.ID, "2024-01-05", "09:00", "12:00", 0)

	_, err := svc.CreateTimeEntry(testBusinessID, employee, CreateTimeEntryInput{
		UserID: employee.ID, WorkDate: "2024-01-05", StartTime: "11:00", EndTime: "13:00",
	})
	expectKind(t, err, domain.ErrConflict)

	// 端点相接不算冲突
	if _, err := svc.CreateTimeEntry(testBusinessID, employee, CreateTimeEntryInput{
		UserID: employee.ID, WorkDate: "2024-01-05", StartTime: "12:00", EndTime: "13:00",
	}); err != nil {
		t.Fatalf("端点相接的记录应创建成功: %v", err)
	}

	// 不同日期不冲突
	if _, err := svc.CreateTimeEntry(testBusinessID, employee, CreateTimeEntryInput{
		UserID: employee.ID, WorkDate: "2024-01-06", StartTime: "11:00", EndTime: "13:00",
	}); err != nil {
		t.Fatalf("另一天的相同时段应创建成功: %v", err)
	}
}

func TestUpdateTimeEntryExcludesSelf(t *testing.T) {
	svc, _, _, _ := setupTestService()

	entry := mustCreateEntry(t, svc, employee, employee.ID, "2024-01-05", "09:00", "12:00", 0)

	// 不改时间的更新不应和自己存的旧值冲突
	notes := "补充说明"
	if _, err := svc.UpdateTimeEntry(testBusinessID, employee, entry.ID, domain.TimeEntryPatch{Notes: &notes}); err != nil {
		t.Fatalf("更新自身不应判为重叠: %v", err)
	}
}

func TestUpdateTimeEntryStatePrecondition(t *testing.T) {
	svc, _, _, _ := setupTestService()

	entry := mustCreateEntry(t, svc, employee, employee.ID, "2024-01-05", "09:00", "12:00", 0)
	if _, err := svc.SubmitTimeEntry(testBusinessID, employee, entry.ID); err != nil {
		t.Fatalf("提交应成功: %v", err)
	}

	end := "13:00"
	_, err := svc.UpdateTimeEntry(testBusinessID, employee, entry.ID, domain.TimeEntryPatch{EndTime: &end})
	expectKind(t, err, domain.ErrConflict)
}

func TestSubmitApproveFlow(t *testing.T) {
	svc, _, _, _ := setupTestService()

	entry := mustCreateEntry(t, svc, employee, employee.ID, "2024-01-05", "09:00", "17:00", 30)

	submitted, err := svc.SubmitTimeEntry(testBusinessID, employee, entry.ID)
	if err != nil {
		t.Fatalf("提交应成功: %v", err)
	}
	if submitted.Status != domain.TimeEntryStatusSubmitted || submitted.SubmittedAt == nil {
		t.Errorf("提交后期望 submitted 状态并打上时间戳，实际 %+v", submitted)
	}

	approved, err := svc.ApproveTimeEntry(testBusinessID, manager, entry.ID)
	if err != nil {
		t.Fatalf("审批应成功: %v", err)
	}
	if approved.Status != domain.TimeEntryStatusApproved || approved.ApprovedBy == nil || *approved.ApprovedBy != manager.ID {
		t.Errorf("审批后期望 approved 状态并记录审批人，实际 %+v", approved)
	}
}

func TestApproveDraftConflict(t *testing.T) {
	svc, _, _, _ := setupTestService()

	entry := mustCreateEntry(t, svc, employee, employee.ID, "2024-01-05", "09:00", "17:00", 0)

	_, err := svc.ApproveTimeEntry(testBusinessID, manager, entry.ID)
	expectKind(t, err, domain.ErrConflict)
}

func TestApproveByEmployeeForbidden(t *testing.T) {
	svc, _, _, _ := setupTestService()

	entry := mustCreateEntry(t, svc, employee, employee.ID, "2024-01-05", "09:00", "17:00", 0)
	if _, err := svc.SubmitTimeEntry(testBusinessID, employee, entry.ID); err != nil {
		t.Fatalf("提交应成功: %v", err)
	}

	_, err := svc.ApproveTimeEntry(testBusinessID, employee, entry.ID)
	expectKind(t, err, domain.ErrForbidden)
}

func TestRejectRequiresReason(t *testing.T) {
	svc, _, _, _ := setupTestService()

	entry := mustCreateEntry(t, svc, employee, employee.ID, "2024-01-05", "09:00", "17:00", 0)
	if _, err := svc.SubmitTimeEntry(testBusinessID, employee, entry.ID); err != nil {
		t.Fatalf("提交应成功: %v", err)
	}

	_, err := svc.RejectTimeEntry(testBusinessID, manager, entry.ID, "")
	expectKind(t, err, domain.ErrBadRequest)

	_, err = svc.RejectTimeEntry(testBusinessID, manager, entry.ID, "  x  ")
	expectKind(t, err, domain.ErrBadRequest)

	rejected, err := svc.RejectTimeEntry(testBusinessID, manager, entry.ID, "时段与排班不符")
	if err != nil {
		t.Fatalf("驳回应成功: %v", err)
	}
	if rejected.Status != domain.TimeEntryStatusRejected || rejected.RejectionReason != "时段与排班不符" {
		t.Errorf("驳回后期望 rejected 状态并保存原因，实际 %+v", rejected)
	}

	// 被驳回的记录重新可编辑、可再次提交
	end := "18:00"
	if _, err := svc.UpdateTimeEntry(testBusinessID, employee, entry.ID, domain.TimeEntryPatch{EndTime: &end}); err != nil {
		t.Fatalf("被驳回的记录应允许修改: %v", err)
	}
	if _, err := svc.SubmitTimeEntry(testBusinessID, employee, entry.ID); err != nil {
		t.Fatalf("被驳回的记录应允许再次提交: %v", err)
	}
}

func TestVoidRules(t *testing.T) {
	svc, _, _, _ := setupTestService()

	// 员工作废自己的草稿
	draft := mustCreateEntry(t, svc, employee, employee.ID, "2024-01-05", "09:00", "10:00", 0)
	voided, err := svc.VoidTimeEntry(testBusinessID, employee, draft.ID)
	if err != nil {
		t.Fatalf("员工作废自己的草稿应成功: %v", err)
	}
	if voided.Status != domain.TimeEntryStatusVoid {
		t.Errorf("期望 void 状态，实际 %s", voided.Status)
	}

	// 重复作废是冲突
	_, err = svc.VoidTimeEntry(testBusinessID, manager, draft.ID)
	expectKind(t, err, domain.ErrConflict)

	// 员工不能作废已提交的记录
	submitted := mustCreateEntry(t, svc, employee, employee.ID, "2024-01-05", "10:00", "11:00", 0)
	if _, err := svc.SubmitTimeEntry(testBusinessID, employee, submitted.ID); err != nil {
		t.Fatalf("提交应成功: %v", err)
	}
	_, err = svc.VoidTimeEntry(testBusinessID, employee, submitted.ID)
	expectKind(t, err, domain.ErrConflict)

	// 管理层可以作废任何未作废的记录，包括已审批的
	if _, err := svc.ApproveTimeEntry(testBusinessID, owner, submitted.ID); err != nil {
		t.Fatalf("审批应成功: %v", err)
	}
	if _, err := svc.VoidTimeEntry(testBusinessID, owner, submitted.ID); err != nil {
		t.Fatalf("管理层作废已审批记录应成功: %v", err)
	}

	// 员工不能作废别人的记录
	other := mustCreateEntry(t, svc, coworker, coworker.ID, "2024-01-05", "09:00", "10:00", 0)
	_, err = svc.VoidTimeEntry(testBusinessID, employee, other.ID)
	expectKind(t, err, domain.ErrForbidden)
}

func TestVoidedEntryFreesInterval(t *testing.T) {
	svc, _, _, _ := setupTestService()

	entry := mustCreateEntry(t, svc, employee, employee.ID, "2024-01-05", "09:00", "12:00", 0)
	if _, err := svc.VoidTimeEntry(testBusinessID, employee, entry.ID); err != nil {
		t.Fatalf("作废应成功: %v", err)
	}

	// 作废的记录不再参与重叠判断
	if _, err := svc.CreateTimeEntry(testBusinessID, employee, CreateTimeEntryInput{
		UserID: employee.ID, WorkDate: "2024-01-05", StartTime: "09:00", EndTime: "12:00",
	}); err != nil {
		t.Fatalf("与已作废记录重叠的创建应成功: %v", err)
	}
}

func TestBulkApproveMixedStatuses(t *testing.T) {
	svc, entryRepo, _, _ := setupTestService()

	first := mustCreateEntry(t, svc, employee, employee.ID, "2024-01-05", "09:00", "10:00", 0)
	second := mustCreateEntry(t, svc, employee, employee.ID, "2024-01-05", "10:00", "11:00", 0)
	third := mustCreateEntry(t, svc, employee, employee.ID, "2024-01-05", "11:00", "12:00", 0)

	for _, id := range []int64{first.ID, second.ID} {
		if _, err := svc.SubmitTimeEntry(testBusinessID, employee, id); err != nil {
			t.Fatalf("提交应成功: %v", err)
		}
	}
	// first 先单独审批掉，third 还是草稿
	if _, err := svc.ApproveTimeEntry(testBusinessID, manager, first.ID); err != nil {
		t.Fatalf("审批应成功: %v", err)
	}

	ids := []int64{first.ID, second.ID, third.ID, 9999}
	result, err := svc.BulkApproveTimeEntries(testBusinessID, manager, ids)
	if err != nil {
		t.Fatalf("批量审批应成功: %v", err)
	}
	if result.Modified != 1 || result.Matched != 1 {
		t.Errorf("期望只命中 1 条已提交记录，实际 matched=%d modified=%d", result.Matched, result.Modified)
	}
	if result.Modified > result.Matched || result.Matched > len(ids) {
		t.Errorf("计数应满足 modified <= matched <= len(ids)，实际 %+v", result)
	}
	if entryRepo.entries[third.ID].Status != domain.TimeEntryStatusDraft {
		t.Error("草稿记录不应被批量审批改动")
	}

	_, err = svc.BulkApproveTimeEntries(testBusinessID, employee, ids)
	expectKind(t, err, domain.ErrForbidden)
}

func TestCrossTenantForbidden(t *testing.T) {
	svc, entryRepo, _, _ := setupTestService()

	entry := mustCreateEntry(t, svc, employee, employee.ID, "2024-01-05", "09:00", "17:00", 0)
	entryRepo.entries[entry.ID].BusinessID = otherBusinessID

	_, err := svc.GetTimeEntry(testBusinessID, manager, entry.ID)
	expectKind(t, err, domain.ErrForbidden)

	_, err = svc.ApproveTimeEntry(testBusinessID, manager, entry.ID)
	expectKind(t, err, domain.ErrForbidden)
}

func TestLegacyClockEntryMaskedAsNotFound(t *testing.T) {
	svc, entryRepo, _, _ := setupTestService()

	entry := mustCreateEntry(t, svc, employee, employee.ID, "2024-01-05", "09:00", "17:00", 0)
	entryRepo.entries[entry.ID].EntryType = domain.EntryTypeClock

	_, err := svc.GetTimeEntry(testBusinessID, manager, entry.ID)
	expectKind(t, err, domain.ErrNotFound)

	end := "18:00"
	_, err = svc.UpdateTimeEntry(testBusinessID, manager, entry.ID, domain.TimeEntryPatch{EndTime: &end})
	expectKind(t, err, domain.ErrNotFound)
}

func TestLegacyClockEntryExcludedFromListAndSummary(t *testing.T) {
	svc, entryRepo, _, _ := setupTestService()

	mustCreateEntry(t, svc, employee, employee.ID, "2024-01-05", "09:00", "17:00", 30) // 450 分钟

	// 旧版打卡数据可能带着合法时间躺在表里，列表和汇总都不应看到它
	entryRepo.entries[500] = &domain.TimeEntry{
		ID: 500, BusinessID: testBusinessID, UserID: employee.ID,
		EntryType: domain.EntryTypeClock, Status: domain.TimeEntryStatusOpen,
		WorkDate: "2024-01-05", StartTime: "08:00", EndTime: "16:00", Version: 1,
	}

	entries, err := svc.ListTimeEntries(testBusinessID, manager, TimeEntryFilter{})
	if err != nil {
		t.Fatalf("列表应成功: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("旧版打卡记录不应进入列表，期望 1 条，实际 %d 条", len(entries))
	}

	summary, err := svc.SummarizeTimeEntries(testBusinessID, manager, TimeEntryFilter{})
	if err != nil {
		t.Fatalf("聚合应成功: %v", err)
	}
	if summary.EntryCount != 1 || summary.PaidMinutes != 450 {
		t.Errorf("旧版打卡记录不应计入汇总，期望 1 条 450 分钟，实际 %d 条 %d 分钟", summary.EntryCount, summary.PaidMinutes)
	}
	if _, ok := summary.StatusCounts[domain.TimeEntryStatusOpen]; ok {
		t.Errorf("状态计数里不应出现 open，实际 %+v", summary.StatusCounts)
	}
}

func TestCreateTimeEntryTargetMustBeTenantStaff(t *testing.T) {
	svc, _, _, _ := setupTestService()

	// 目标用户根本不存在
	_, err := svc.CreateTimeEntry(testBusinessID, manager, CreateTimeEntryInput{
		UserID: 9999, WorkDate: "2024-01-05", StartTime: "09:00", EndTime: "17:00",
	})
	expectKind(t, err, domain.ErrNotFound)

	// 目标用户属于别的商户，也按不存在处理
	_, err = svc.CreateTimeEntry(testBusinessID, manager, CreateTimeEntryInput{
		UserID: foreignUserID, WorkDate: "2024-01-05", StartTime: "09:00", EndTime: "17:00",
	})
	expectKind(t, err, domain.ErrNotFound)
}

func TestListScopedToEmployee(t *testing.T) {
	svc, _, _, _ := setupTestService()

	mustCreateEntry(t, svc, employee, employee.ID, "2024-01-05", "09:00", "10:00", 0)
	mustCreateEntry(t, svc, coworker, coworker.ID, "2024-01-05", "09:00", "10:00", 0)

	mine, err := svc.ListTimeEntries(testBusinessID, employee, TimeEntryFilter{})
	if err != nil {
		t.Fatalf("列表应成功: %v", err)
	}
	if len(mine) != 1 || mine[0].UserID != employee.ID {
		t.Errorf("员工应只看到自己的记录，实际 %d 条", len(mine))
	}

	all, err := svc.ListTimeEntries(testBusinessID, manager, TimeEntryFilter{})
	if err != nil {
		t.Fatalf("列表应成功: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("管理层应看到全部记录，实际 %d 条", len(all))
	}
}

func TestSummarySkipsMalformedRows(t *testing.T) {
	svc, entryRepo, _, _ := setupTestService()

	mustCreateEntry(t, svc, employee, employee.ID, "2024-01-05", "09:00", "17:00", 30) // 450 分钟
	broken := mustCreateEntry(t, svc, employee, employee.ID, "2024-01-06", "09:00", "10:00", 0)
	entryRepo.entries[broken.ID].StartTime = "" // 模拟损坏的旧数据

	summary, err := svc.SummarizeTimeEntries(testBusinessID, employee, TimeEntryFilter{})
	if err != nil {
		t.Fatalf("聚合应成功: %v", err)
	}
	if summary.EntryCount != 2 {
		t.Errorf("期望 EntryCount=2，实际 %d", summary.EntryCount)
	}
	if summary.PaidMinutes != 450 {
		t.Errorf("损坏的记录应被排除在工时之外，期望 450，实际 %d", summary.PaidMinutes)
	}
	if summary.StatusCounts[domain.TimeEntryStatusDraft] != 2 {
		t.Errorf("损坏的记录仍应计入状态计数，实际 %+v", summary.StatusCounts)
	}
}

func TestSummaryAppliesBusinessRounding(t *testing.T) {
	svc, _, _, businessRepo := setupTestService()
	businessRepo.businesses[testBusinessID].RoundingMinutes = 15
	businessRepo.businesses[testBusinessID].RoundingMode = timeutil.RoundingUp

	mustCreateEntry(t, svc, employee, employee.ID, "2024-01-05", "09:00", "16:38", 0) // 458 分钟

	summary, err := svc.SummarizeTimeEntries(testBusinessID, employee, TimeEntryFilter{})
	if err != nil {
		t.Fatalf("聚合应成功: %v", err)
	}
	if summary.PaidMinutes != 458 || summary.PaidMinutesRounded != 465 {
		t.Errorf("期望 458/465，实际 %d/%d", summary.PaidMinutes, summary.PaidMinutesRounded)
	}
}

func TestListPendingOnlySubmitted(t *testing.T) {
	svc, _, _, _ := setupTestService()

	entry := mustCreateEntry(t, svc, employee, employee.ID, "2024-01-05", "09:00", "10:00", 0)
	mustCreateEntry(t, svc, employee, employee.ID, "2024-01-05", "10:00", "11:00", 0)
	if _, err := svc.SubmitTimeEntry(testBusinessID, employee, entry.ID); err != nil {
		t.Fatalf("提交应成功: %v", err)
	}

	pending, err := svc.ListPendingTimeEntries(testBusinessID, manager, TimeEntryFilter{})
	if err != nil {
		t.Fatalf("待审批列表应成功: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != entry.ID {
		t.Errorf("期望待审批列表只含已提交记录，实际 %d 条", len(pending))
	}
}
