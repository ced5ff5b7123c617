// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

package model

import "time"

// CallRecord is one synthesized call. Start and End are unix seconds.
type CallRecord struct {
	Direction CallDirection
	Caller    string
	Callee    string
	Start     int64
	End       int64
}

func (c CallRecord) Duration() int64 {
	return c.End - c.Start
}

// Mirror returns the callee's own record of the same call.
func (c CallRecord) Mirror() CallRecord {
	return CallRecord{
		Direction: c.Direction.Opposite(),
		Caller:    c.Callee,
		Callee:    c.Caller,
		Start:     c.Start,
		End:       c.End,
	}
}

// StartMonth and EndMonth are month-of-year in UTC; the year is ignored.
func (c CallRecord) StartMonth() int {
	return int(time.Unix(c.Start, 0).UTC().Month())
}

func (c CallRecord) EndMonth() int {
	return int(time.Unix(c.End, 0).UTC().Month())
}

type Subscriber struct {
	ID          int64
	PhoneNumber string
	Local       bool
}

// ClientState is the cached projection of a client used by rating.
type ClientState struct {
	SubscriberID     string `json:"subscriber"`
	TariffID         int64  `json:"tariff_id"`
	RemainingMinutes int    `json:"remaining_minutes"`
}

type Tariff struct {
	ID                  int64       `json:"id"`
	Name                string      `json:"name"`
	Class               TariffClass `json:"class"`
	InNetIn             Money       `json:"in_network_in_rate"`
	InNetOut            Money       `json:"in_network_out_rate"`
	OtherIn             Money       `json:"other_network_in_rate"`
	OtherOut            Money       `json:"other_network_out_rate"`
	MonthlyLimitMinutes int         `json:"monthly_limit_minutes"`
	MonthlyFee          Money       `json:"monthly_fee"`
}

// StartingMinutes is the bucket size a client gets when a cycle starts.
func (t Tariff) StartingMinutes() int {
	if t.Class != TariffMonthlyBucket {
		return 0
	}
	return t.MonthlyLimitMinutes
}

// Charge is produced per call or per monthly cycle. UsedMinutes is what the
// call took from the bucket; brt subtracts it from its own counter.
type Charge struct {
	SubscriberID     string `json:"subscriber"`
	Amount           Money  `json:"amount"`
	RemainingMinutes int    `json:"remaining_minutes"`
	UsedMinutes      int    `json:"used_minutes,omitempty"`
}

// Client is the canonical billing row owned by brt.
type Client struct {
	Msisdn           string `json:"msisdn"`
	TariffID         int64  `json:"tariff_id"`
	Balance          Money  `json:"balance"`
	RemainingMinutes int    `json:"remaining_minutes"`
}

func (c Client) State() ClientState {
	return ClientState{
		SubscriberID:     c.Msisdn,
		TariffID:         c.TariffID,
		RemainingMinutes: c.RemainingMinutes,
	}
}

type RatingRequest struct {
	Direction CallDirection `json:"direction"`
	Caller    string        `json:"caller"`
	Callee    string        `json:"callee"`
	Start     int64         `json:"start_time"`
	End       int64         `json:"end_time"`
	TariffID  int64         `json:"tariff_id"`
	// Canonical bucket of the caller. Set by brt; nil means "use the cache".
	RemainingMinutes *int `json:"remaining_minutes,omitempty"`
}

func (r RatingRequest) Call() CallRecord {
	return CallRecord{
		Direction: r.Direction,
		Caller:    r.Caller,
		Callee:    r.Callee,
		Start:     r.Start,
		End:       r.End,
	}
}
