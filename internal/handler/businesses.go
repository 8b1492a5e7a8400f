package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/timeutil"
)

func (h *Handler) GetBusiness(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	business, err := h.repository.GetBusinessByID(myInfo.BusinessID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "商户不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取商户信息成功", business)
}

func (h *Handler) UpdateBusiness(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Name            *string `json:"name"`
		RoundingMinutes *int32  `json:"roundingMinutes" validate:"omitempty,gte=0,lte=60"`
		RoundingMode    *string `json:"roundingMode" validate:"omitempty,oneof=nearest up down"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	business, err := h.repository.GetBusinessByID(myInfo.BusinessID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "商户不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if req.Name != nil {
		business.Name = *req.Name
	}
	if req.RoundingMinutes != nil {
		business.RoundingMinutes = *req.RoundingMinutes
	}
	if req.RoundingMode != nil {
		business.RoundingMode = timeutil.RoundingMode(*req.RoundingMode)
	}

	if err := h.repository.UpdateBusiness(business); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新商户信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新商户信息成功", business)
}
