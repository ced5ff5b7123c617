// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"telecom_billing_sim/internal/billing/model"
)

// HRSClient is brt's view of the rating service.
type HRSClient struct {
	c *client
}

func NewHRSClient(baseURL string, opts Options) *HRSClient {
	return &HRSClient{c: newClient("hrs", baseURL, opts)}
}

func (h *HRSClient) Calculate(ctx context.Context, req model.RatingRequest) (model.Charge, error) {
	var out model.Charge
	err := h.c.do(ctx, call{method: http.MethodPost, path: "/api/rating/calculate", body: req}, &out)
	return out, err
}

func (h *HRSClient) MonthlyBills(ctx context.Context, startMonth, endMonth int) ([]model.Charge, error) {
	var out []model.Charge
	err := h.c.do(ctx, call{
		method: http.MethodGet,
		path:   "/api/rating/monthly",
		query: map[string]string{
			"from": strconv.Itoa(startMonth),
			"to":   strconv.Itoa(endMonth),
		},
	}, &out)
	return out, err
}

func (h *HRSClient) Tariff(ctx context.Context, id int64) (model.Tariff, error) {
	var out model.Tariff
	err := h.c.do(ctx, call{method: http.MethodGet, path: "/api/tariffs/" + strconv.FormatInt(id, 10)}, &out)
	return out, err
}

func (h *HRSClient) Tariffs(ctx context.Context) ([]model.Tariff, error) {
	var out []model.Tariff
	err := h.c.do(ctx, call{method: http.MethodGet, path: "/api/tariffs"}, &out)
	return out, err
}

// PublishClients replaces hrs' client cache.
func (h *HRSClient) PublishClients(ctx context.Context, states []model.ClientState) error {
	return h.c.do(ctx, call{method: http.MethodPost, path: "/api/update-cache", body: states}, nil)
}

// BRTClient is used by hrs for cache misses and by cdr to hand over batches.
type BRTClient struct {
	c *client
}

func NewBRTClient(baseURL string, opts Options) *BRTClient {
	return &BRTClient{c: newClient("brt", baseURL, opts)}
}

func (b *BRTClient) ClientState(ctx context.Context, msisdn string) (model.ClientState, error) {
	var out model.ClientState
	err := b.c.do(ctx, call{method: http.MethodGet, path: "/api/clients/" + url.PathEscape(msisdn)}, &out)
	return out, err
}

// SubmitBatch posts one rendered batch as plain text.
func (b *BRTClient) SubmitBatch(ctx context.Context, text string) error {
	return b.c.do(ctx, call{
		method:      http.MethodPost,
		path:        "/api/batches",
		body:        text,
		contentType: "text/plain; charset=utf-8",
	}, nil)
}

// PublishTariffs replaces brt's tariff cache.
func (b *BRTClient) PublishTariffs(ctx context.Context, tariffs []model.Tariff) error {
	return b.c.do(ctx, call{method: http.MethodPost, path: "/api/update-cache", body: tariffs}, nil)
}

// CDRClient lets brt announce new clients to the generator.
type CDRClient struct {
	c *client
}

func NewCDRClient(baseURL string, opts Options) *CDRClient {
	return &CDRClient{c: newClient("cdr", baseURL, opts)}
}

func (c *CDRClient) NewSubscriber(ctx context.Context, msisdn string) error {
	return c.c.do(ctx, call{method: http.MethodPost, path: "/api/new-client/" + url.PathEscape(msisdn)}, nil)
}
