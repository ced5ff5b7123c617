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

	"github.com/gin-gonic/gin"

	"telecom_billing_sim/internal/billing/model"
	"telecom_billing_sim/internal/billing/repo"
	"telecom_billing_sim/internal/billing/seed"
)

// Generator is the control surface of the call generator.
type Generator interface {
	Start(ctx context.Context) error
	Running() bool
	Register() int
	Deregister() int
	Advance(ctx context.Context) (int, error)
	AddSubscriber(ctx context.Context, phone string) (model.Subscriber, error)
}

type CDRHandler struct {
	gen  Generator
	subs repo.SubscriberRepository
	// runCtx lives as long as the service; a run outlives its request.
	runCtx context.Context
}

func NewCDRHandler(runCtx context.Context, gen Generator, subs repo.SubscriberRepository) *CDRHandler {
	return &CDRHandler{gen: gen, subs: subs, runCtx: runCtx}
}

func (h *CDRHandler) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api")

	api.POST("/start", h.start)
	api.POST("/register", h.register)
	api.POST("/deregister", h.deregister)
	api.POST("/iterate", h.iterate)
	api.POST("/new-client/:msisdn", h.newClient)

	api.GET("/subscribers", h.listSubscribers)
	api.POST("/subscribers", h.uploadSubscribers)
}

func (h *CDRHandler) start(c *gin.Context) {
	if err := h.gen.Start(h.runCtx); err != nil {
		writeDomainErr(c, err)
		return
	}
	c.JSON(http.StatusAccepted, OKResponse{Status: "started"})
}

func (h *CDRHandler) register(c *gin.Context) {
	c.JSON(http.StatusOK, PartiesResponse{Parties: h.gen.Register()})
}

func (h *CDRHandler) deregister(c *gin.Context) {
	c.JSON(http.StatusOK, PartiesResponse{Parties: h.gen.Deregister()})
}

// iterate blocks until the current phase completes.
func (h *CDRHandler) iterate(c *gin.Context) {
	phase, err := h.gen.Advance(c.Request.Context())
	if err != nil {
		writeDomainErr(c, err)
		return
	}
	c.JSON(http.StatusOK, PhaseResponse{Phase: phase})
}

func (h *CDRHandler) newClient(c *gin.Context) {
	sub, err := h.gen.AddSubscriber(c.Request.Context(), c.Param("msisdn"))
	if err != nil {
		writeDomainErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapSubscriber(sub))
}

func (h *CDRHandler) listSubscribers(c *gin.Context) {
	subs, err := h.subs.All(c.Request.Context())
	if err != nil {
		writeDomainErr(c, err)
		return
	}

	out := make([]SubscriberDTO, 0, len(subs))
	for _, s := range subs {
		out = append(out, mapSubscriber(s))
	}
	c.JSON(http.StatusOK, out)
}

// uploadSubscribers replaces the pool; it is refused while a run is going.
func (h *CDRHandler) uploadSubscribers(c *gin.Context) {
	if h.gen.Running() {
		writeErr(c, http.StatusConflict, "already_running", "generation is running")
		return
	}

	body, err := uploadBody(c, "file")
	if err != nil {
		writeErr(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	defer body.Close()

	subs, err := seed.LoadSubscribers(body)
	if err != nil {
		writeErr(c, http.StatusUnprocessableEntity, "load_subscribers_failed", err.Error())
		return
	}
	if err := h.subs.ReplaceAll(c.Request.Context(), subs); err != nil {
		writeDomainErr(c, err)
		return
	}

	c.JSON(http.StatusOK, UploadResponse{Status: "ok", Loaded: len(subs)})
}
