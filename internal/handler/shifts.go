package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/workflow"
)

func (h *Handler) shiftFilterFromQuery(r *http.Request) (workflow.ShiftFilter, error) {
	filter := workflow.ShiftFilter{}
	query := r.URL.Query()

	if v := query.Get("userID"); v != "" {
		userID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, err
		}
		filter.UserID = &userID
	}
	if v := query.Get("status"); v != "" {
		status := domain.ShiftStatus(v)
		filter.Status = &status
	}
	if v := query.Get("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if v := query.Get("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, err
		}
		filter.To = &to
	}

	return filter, nil
}

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	actor, myInfo := requestActor(r)

	var req struct {
		UserID     *int64    `json:"userID"`
		LocationID *int64    `json:"locationID"`
		StartAt    time.Time `json:"startAt" validate:"required"`
		EndAt      time.Time `json:"endAt" validate:"required"`
		RoleTag    string    `json:"roleTag"`
		Notes      string    `json:"notes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift, err := h.workflow.CreateShift(myInfo.BusinessID, actor, workflow.CreateShiftInput{
		UserID:     req.UserID,
		LocationID: req.LocationID,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		RoleTag:    req.RoleTag,
		Notes:      req.Notes,
	})
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "班次创建成功", shift)
}

func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	actor, myInfo := requestActor(r)

	filter, err := h.shiftFilterFromQuery(r)
	if err != nil {
		h.errorResponse(w, r, "查询参数无效")
		return
	}

	includeOpen := r.URL.Query().Get("includeOpen") == "true"

	shifts, err := h.workflow.ListShifts(myInfo.BusinessID, actor, filter, includeOpen)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取班次列表成功", shifts)
}

func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	actor, myInfo := requestActor(r)

	id, err := idParam(r)
	if err != nil {
		h.errorResponse(w, r, "班次ID无效")
		return
	}

	shift, err := h.workflow.GetShift(myInfo.BusinessID, actor, id)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取班次成功", shift)
}

func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	actor, myInfo := requestActor(r)

	id, err := idParam(r)
	if err != nil {
		h.errorResponse(w, r, "班次ID无效")
		return
	}

	var req struct {
		StartAt    *time.Time `json:"startAt"`
		EndAt      *time.Time `json:"endAt"`
		UserID     *int64     `json:"userID"`
		LocationID *int64     `json:"locationID"`
		RoleTag    *string    `json:"roleTag"`
		Notes      *string    `json:"notes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift, err := h.workflow.UpdateShift(myInfo.BusinessID, actor, id, domain.ShiftPatch{
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		UserID:     req.UserID,
		LocationID: req.LocationID,
		RoleTag:    req.RoleTag,
		Notes:      req.Notes,
	})
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "班次更新成功", shift)
}

func (h *Handler) PublishShift(w http.ResponseWriter, r *http.Request) {
	actor, myInfo := requestActor(r)

	id, err := idParam(r)
	if err != nil {
		h.errorResponse(w, r, "班次ID无效")
		return
	}

	shift, err := h.workflow.PublishShift(myInfo.BusinessID, actor, id)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "班次发布成功", shift)
}

func (h *Handler) CancelShift(w http.ResponseWriter, r *http.Request) {
	actor, myInfo := requestActor(r)

	id, err := idParam(r)
	if err != nil {
		h.errorResponse(w, r, "班次ID无效")
		return
	}

	shift, err := h.workflow.CancelShift(myInfo.BusinessID, actor, id)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "班次已取消", shift)
}

func (h *Handler) AssignShift(w http.ResponseWriter, r *http.Request) {
	actor, myInfo := requestActor(r)

	id, err := idParam(r)
	if err != nil {
		h.errorResponse(w, r, "班次ID无效")
		return
	}

	var req struct {
		UserID int64 `json:"userID" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift, err := h.workflow.AssignShift(myInfo.BusinessID, actor, id, req.UserID)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "班次分配成功", shift)
}

func (h *Handler) UnassignShift(w http.ResponseWriter, r *http.Request) {
	actor, myInfo := requestActor(r)

	id, err := idParam(r)
	if err != nil {
		h.errorResponse(w, r, "班次ID无效")
		return
	}

	shift, err := h.workflow.UnassignShift(myInfo.BusinessID, actor, id)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "班次分配已清空", shift)
}
