// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"telecom_billing_sim/internal/billing/model"
	"telecom_billing_sim/internal/billing/repo"
	"telecom_billing_sim/internal/billing/seed"
)

// Rating is what hrs exposes over HTTP.
type Rating interface {
	Calculate(ctx context.Context, req model.RatingRequest) (model.Charge, error)
	MonthlyBills(ctx context.Context, startMonth, endMonth int) ([]model.Charge, error)
	ApplySnapshot(states []model.ClientState)
	Tariff(ctx context.Context, id int64) (model.Tariff, error)
	TariffSnapshot(ctx context.Context) ([]model.Tariff, error)
}

type HRSHandler struct {
	rating  Rating
	tariffs repo.TariffRepository
	// onTariffs is called after a tariff upload, may be nil.
	onTariffs func(ctx context.Context, tariffs []model.Tariff)
}

func NewHRSHandler(rating Rating, tariffs repo.TariffRepository, onTariffs func(context.Context, []model.Tariff)) *HRSHandler {
	return &HRSHandler{rating: rating, tariffs: tariffs, onTariffs: onTariffs}
}

func (h *HRSHandler) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api")

	api.POST("/rating/calculate", h.calculate)
	api.GET("/rating/monthly", h.monthly)

	api.GET("/tariffs", h.listTariffs)
	api.GET("/tariffs/:id", h.getTariff)
	api.POST("/tariffs", h.uploadTariffs)

	api.POST("/update-cache", h.updateCache)
}

func (h *HRSHandler) calculate(c *gin.Context) {
	var req model.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErr(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if req.Caller == "" || req.End < req.Start {
		writeErr(c, http.StatusBadRequest, "bad_request", "caller is required and end_time must not precede start_time")
		return
	}

	charge, err := h.rating.Calculate(c.Request.Context(), req)
	if err != nil {
		writeDomainErr(c, err)
		return
	}
	c.JSON(http.StatusOK, charge)
}

func (h *HRSHandler) monthly(c *gin.Context) {
	from, errFrom := strconv.Atoi(c.Query("from"))
	to, errTo := strconv.Atoi(c.Query("to"))
	if errFrom != nil || errTo != nil {
		writeErr(c, http.StatusBadRequest, "bad_request", "from and to must be month numbers")
		return
	}

	bills, err := h.rating.MonthlyBills(c.Request.Context(), from, to)
	if err != nil {
		writeDomainErr(c, err)
		return
	}
	if bills == nil {
		bills = []model.Charge{}
	}
	c.JSON(http.StatusOK, bills)
}

func (h *HRSHandler) listTariffs(c *gin.Context) {
	ts, err := h.rating.TariffSnapshot(c.Request.Context())
	if err != nil {
		writeDomainErr(c, err)
		return
	}
	c.JSON(http.StatusOK, ts)
}

func (h *HRSHandler) getTariff(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeErr(c, http.StatusBadRequest, "bad_request", "tariff id must be a number")
		return
	}

	t, err := h.rating.Tariff(c.Request.Context(), id)
	if err != nil {
		writeDomainErr(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *HRSHandler) uploadTariffs(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := uploadBody(c, "file")
	if err != nil {
		writeErr(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	defer body.Close()

	ts, err := seed.LoadTariffs(body)
	if err != nil {
		writeErr(c, http.StatusUnprocessableEntity, "load_tariffs_failed", err.Error())
		return
	}
	if err := h.tariffs.ReplaceAll(ctx, ts); err != nil {
		writeDomainErr(c, err)
		return
	}
	if h.onTariffs != nil {
		h.onTariffs(ctx, ts)
	}

	c.JSON(http.StatusOK, UploadResponse{Status: "ok", Loaded: len(ts)})
}

// updateCache takes a full client snapshot pushed by brt.
func (h *HRSHandler) updateCache(c *gin.Context) {
	var states []model.ClientState
	if err := c.ShouldBindJSON(&states); err != nil {
		writeErr(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	h.rating.ApplySnapshot(states)
	c.Status(http.StatusNoContent)
}
