// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

package http

import "telecom_billing_sim/internal/billing/model"

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type OKResponse struct {
	Status string `json:"status"`
}

type UploadResponse struct {
	Status string `json:"status"`
	Loaded int    `json:"loaded"`
}

// ===== cdr =====

type PartiesResponse struct {
	Parties int `json:"parties"`
}

type PhaseResponse struct {
	Phase int `json:"phase"`
}

type SubscriberDTO struct {
	ID          int64  `json:"id"`
	PhoneNumber string `json:"phone_number"`
	Local       bool   `json:"is_local"`
}

// ===== brt =====

type AddClientRequest struct {
	Msisdn   string `json:"msisdn" binding:"required"`
	TariffID int64  `json:"tariff_id" binding:"required"`
}

type PayRequest struct {
	Amount model.Money `json:"amount"`
}

type PayResponse struct {
	Msisdn  string      `json:"msisdn"`
	Balance model.Money `json:"balance"`
}

type ChangeTariffRequest struct {
	TariffID int64 `json:"tariff_id" binding:"required"`
}

func mapSubscriber(s model.Subscriber) SubscriberDTO {
	return SubscriberDTO{ID: s.ID, PhoneNumber: s.PhoneNumber, Local: s.Local}
}
