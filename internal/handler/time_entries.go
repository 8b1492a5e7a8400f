package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/workflow"
)

// requestActor 从 context 中已加载的个人信息构造核心流程的操作者。
func requestActor(r *http.Request) (workflow.Actor, *domain.User) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	return workflow.Actor{ID: myInfo.ID, Role: myInfo.Role}, myInfo
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// timeEntryFilterFromQuery 解析列表和汇总接口共用的查询参数。
// 员工的可见范围限制在核心流程里收紧，这里只负责解析。
func (h *Handler) timeEntryFilterFromQuery(r *http.Request) (workflow.TimeEntryFilter, error) {
	filter := workflow.TimeEntryFilter{}
	query := r.URL.Query()

	if v := query.Get("userID"); v != "" {
		userID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, err
		}
		filter.UserID = &userID
	}
	if v := query.Get("status"); v != "" {
		status := domain.TimeEntryStatus(v)
		filter.Status = &status
	}
	if v := query.Get("from"); v != "" {
		filter.FromDate = &v
	}
	if v := query.Get("to"); v != "" {
		filter.ToDate = &v
	}

	return filter, nil
}

func (h *Handler) CreateTimeEntry(w http.ResponseWriter, r *http.Request) {
	actor, myInfo := requestActor(r)

	var req struct {
		UserID       *int64 `json:"userID"`
		WorkDate     string `json:"workDate" validate:"required"`
		StartTime    string `json:"startTime" validate:"required"`
		EndTime      string `json:"endTime" validate:"required"`
		BreakMinutes int32  `json:"breakMinutes" validate:"gte=0"`
		Notes        string `json:"notes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 不指定用户时默认为自己创建
	userID := actor.ID
	if req.UserID != nil {
		userID = *req.UserID
	}

	entry, err := h.workflow.CreateTimeEntry(myInfo.BusinessID, actor, workflow.CreateTimeEntryInput{
		UserID:       userID,
		WorkDate:     req.WorkDate,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		BreakMinutes: req.BreakMinutes,
		Notes:        req.Notes,
	})
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "时间记录创建成功", entry)
}

func (h *Handler) ListTimeEntries(w http.ResponseWriter, r *http.Request) {
	actor, myInfo := requestActor(r)

	filter, err := h.timeEntryFilterFromQuery(r)
	if err != nil {
		h.errorResponse(w, r, "查询参数无效")
		return
	}

	entries, err := h.workflow.ListTimeEntries(myInfo.BusinessID, actor, filter)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取时间记录列表成功", entries)
}

func (h *Handler) ListPendingTimeEntries(w http.ResponseWriter, r *http.Request) {
	actor, myInfo := requestActor(r)

	filter, err := h.timeEntryFilterFromQuery(r)
	if err != nil {
		h.errorResponse(w, r, "查询参数无效")
		return
	}

	entries, err := h.workflow.ListPendingTimeEntries(myInfo.BusinessID, actor, filter)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取待审批记录成功", entries)
}

func (h *Handler) SummarizeTimeEntries(w http.ResponseWriter, r *http.Request) {
	actor, myInfo := requestActor(r)

	filter, err := h.timeEntryFilterFromQuery(r)
	if err != nil {
		h.errorResponse(w, r, "查询参数无效")
		return
	}

	summary, err := h.workflow.SummarizeTimeEntries(myInfo.BusinessID, actor, filter)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取工时汇总成功", summary)
}

func (h *Handler) GetTimeEntry(w http.ResponseWriter, r *http.Request) {
	actor, myInfo := requestActor(r)

	id, err := idParam(r)
	if err != nil {
		h.errorResponse(w, r, "记录ID无效")
		return
	}

	entry, err := h.workflow.GetTimeEntry(myInfo.BusinessID, actor, id)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取时间记录成功", entry)
}

func (h *Handler) UpdateTimeEntry(w http.ResponseWriter, r *http.Request) {
	actor, myInfo := requestActor(r)

	id, err := idParam(r)
	if err != nil {
		h.errorResponse(w, r, "记录ID无效")
		return
	}

	var req struct {
		WorkDate     *string `json:"workDate"`
		StartTime    *string `json:"startTime"`
		EndTime      *string `json:"endTime"`
		BreakMinutes *int32  `json:"breakMinutes" validate:"omitempty,gte=0"`
		Notes        *string `json:"notes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	entry, err := h.workflow.UpdateTimeEntry(myInfo.BusinessID, actor, id, domain.TimeEntryPatch{
		WorkDate:     req.WorkDate,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		BreakMinutes: req.BreakMinutes,
		Notes:        req.Notes,
	})
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "时间记录更新成功", entry)
}

func (h *Handler) SubmitTimeEntry(w http.ResponseWriter, r *http.Request) {
	actor, myInfo := requestActor(r)

	id, err := idParam(r)
	if err != nil {
		h.errorResponse(w, r, "记录ID无效")
		return
	}

	entry, err := h.workflow.SubmitTimeEntry(myInfo.BusinessID, actor, id)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "时间记录已提交审批", entry)
}

func (h *Handler) ApproveTimeEntry(w http.ResponseWriter, r *http.Request) {
	actor, myInfo := requestActor(r)

	id, err := idParam(r)
	if err != nil {
		h.errorResponse(w, r, "记录ID无效")
		return
	}

	entry, err := h.workflow.ApproveTimeEntry(myInfo.BusinessID, actor, id)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "时间记录审批通过", entry)
}

func (h *Handler) RejectTimeEntry(w http.ResponseWriter, r *http.Request) {
	actor, myInfo := requestActor(r)

	id, err := idParam(r)
	if err != nil {
		h.errorResponse(w, r, "记录ID无效")
		return
	}

	var req struct {
		Reason string `json:"reason" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	entry, err := h.workflow.RejectTimeEntry(myInfo.BusinessID, actor, id, req.Reason)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "时间记录已驳回", entry)
}

func (h *Handler) VoidTimeEntry(w http.ResponseWriter, r *http.Request) {
	actor, myInfo := requestActor(r)

	id, err := idParam(r)
	if err != nil {
		h.errorResponse(w, r, "记录ID无效")
		return
	}

	entry, err := h.workflow.VoidTimeEntry(myInfo.BusinessID, actor, id)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "时间记录已作废", entry)
}

func (h *Handler) BulkApproveTimeEntries(w http.ResponseWriter, r *http.Request) {
	actor, myInfo := requestActor(r)

	var req struct {
		IDs []int64 `json:"ids" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	result, err := h.workflow.BulkApproveTimeEntries(myInfo.BusinessID, actor, req.IDs)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "批量审批完成", result)
}

func (h *Handler) BulkRejectTimeEntries(w http.ResponseWriter, r *http.Request) {
	actor, myInfo := requestActor(r)

	var req struct {
		IDs    []int64 `json:"ids" validate:"required,min=1"`
		Reason string  `json:"reason" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	result, err := h.workflow.BulkRejectTimeEntries(myInfo.BusinessID, actor, req.IDs, req.Reason)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "批量驳回完成", result)
}
