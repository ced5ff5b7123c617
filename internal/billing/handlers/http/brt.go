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
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"telecom_billing_sim/internal/billing/model"
	"telecom_billing_sim/internal/billing/orchestrator"
)

const maxBatchBytes = 1 << 20

// Billing is what brt exposes over HTTP.
type Billing interface {
	Submit(ctx context.Context, text string) (orchestrator.BatchResult, error)
	ClientState(ctx context.Context, msisdn string) (model.ClientState, error)
	ApplyTariffSnapshot(tariffs []model.Tariff)

	AddClient(ctx context.Context, msisdn string, tariffID int64) (model.Client, error)
	TopUp(ctx context.Context, msisdn string, amount model.Money) (model.Money, error)
	ChangeTariff(ctx context.Context, msisdn string, tariffID int64) (model.Client, error)
	Client(ctx context.Context, msisdn string) (model.Client, error)
}

type BRTHandler struct {
	billing  Billing
	accounts gin.Accounts
}

// NewBRTHandler; the CRM routes are guarded by basic auth with accounts.
func NewBRTHandler(billing Billing, accounts gin.Accounts) *BRTHandler {
	return &BRTHandler{billing: billing, accounts: accounts}
}

func (h *BRTHandler) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api")

	api.GET("/clients/:msisdn", h.clientState)
	api.POST("/batches", h.submitBatch)
	api.POST("/update-cache", h.updateCache)

	crm := api.Group("/crm", gin.BasicAuth(h.accounts))
	crm.POST("/clients", h.addClient)
	crm.GET("/clients/:msisdn", h.getClient)
	crm.POST("/clients/:msisdn/pay", h.pay)
	crm.PUT("/clients/:msisdn/tariff", h.changeTariff)
}

// clientState serves hrs cache misses.
func (h *BRTHandler) clientState(c *gin.Context) {
	st, err := h.billing.ClientState(c.Request.Context(), c.Param("msisdn"))
	if err != nil {
		writeDomainErr(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// submitBatch is the HTTP twin of the bus consumer: plain batch text.
func (h *BRTHandler) submitBatch(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBatchBytes)

	body, err := uploadBody(c, "file")
	if err != nil {
		writeErr(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	defer body.Close()

	text, err := io.ReadAll(body)
	if err != nil {
		writeErr(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	res, err := h.billing.Submit(c.Request.Context(), string(text))
	if err != nil {
		writeDomainErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// updateCache takes a full tariff snapshot pushed by hrs.
func (h *BRTHandler) updateCache(c *gin.Context) {
	var tariffs []model.Tariff
	if err := c.ShouldBindJSON(&tariffs); err != nil {
		writeErr(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	h.billing.ApplyTariffSnapshot(tariffs)
	c.Status(http.StatusNoContent)
}

// ===== crm =====

func (h *BRTHandler) addClient(c *gin.Context) {
	var req AddClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErr(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	cl, err := h.billing.AddClient(c.Request.Context(), req.Msisdn, req.TariffID)
	if err != nil {
		writeDomainErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, cl)
}

func (h *BRTHandler) getClient(c *gin.Context) {
	cl, err := h.billing.Client(c.Request.Context(), c.Param("msisdn"))
	if err != nil {
		writeDomainErr(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

func (h *BRTHandler) pay(c *gin.Context) {
	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErr(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	msisdn := c.Param("msisdn")
	bal, err := h.billing.TopUp(c.Request.Context(), msisdn, req.Amount)
	if err != nil {
		writeDomainErr(c, err)
		return
	}
	c.JSON(http.StatusOK, PayResponse{Msisdn: msisdn, Balance: bal})
}

func (h *BRTHandler) changeTariff(c *gin.Context) {
	var req ChangeTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErr(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	cl, err := h.billing.ChangeTariff(c.Request.Context(), c.Param("msisdn"), req.TariffID)
	if err != nil {
		writeDomainErr(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}
