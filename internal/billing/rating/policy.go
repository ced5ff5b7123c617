// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

package rating

import "telecom_billing_sim/internal/billing/model"

// BillableMinutes always rounds up, whole minutes included: 60s => 2.
func BillableMinutes(durationSec int64) int64 {
	if durationSec <= 0 {
		return 0
	}
	return (durationSec - durationSec%60 + 60) / 60
}

// perMinuteRate picks one of the four tariff rates.
func perMinuteRate(t model.Tariff, dir model.CallDirection, calleeKnown bool) model.Money {
	switch {
	case dir == model.DirOutgoing && calleeKnown:
		return t.InNetOut
	case dir == model.DirOutgoing:
		return t.OtherOut
	case calleeKnown:
		return t.InNetIn
	default:
		return t.OtherIn
	}
}

func perMinuteCharge(t model.Tariff, dir model.CallDirection, calleeKnown bool, minutes int64) model.Money {
	if minutes <= 0 {
		return 0
	}
	return (perMinuteRate(t, dir, calleeKnown) * model.Money(minutes)).CeilTo(model.Tenth)
}

// Rate charges one call and updates state in place. Bucket minutes are spent
// first; what is left over goes through the per-minute path.
func Rate(call model.CallRecord, t model.Tariff, state *model.ClientState, calleeKnown bool) model.Charge {
	charge := model.Charge{SubscriberID: call.Caller}
	if state != nil {
		charge.SubscriberID = state.SubscriberID
	}

	minutes := BillableMinutes(call.Duration())
	if minutes == 0 {
		if state != nil {
			charge.RemainingMinutes = state.RemainingMinutes
		}
		return charge
	}

	if state == nil || t.Class != model.TariffMonthlyBucket || state.RemainingMinutes <= 0 {
		charge.Amount = perMinuteCharge(t, call.Direction, calleeKnown, minutes)
		if state != nil {
			charge.RemainingMinutes = max(state.RemainingMinutes, 0)
		}
		return charge
	}

	used := min(int64(state.RemainingMinutes), minutes)
	state.RemainingMinutes -= int(used)

	charge.Amount = perMinuteCharge(t, call.Direction, calleeKnown, minutes-used)
	charge.RemainingMinutes = state.RemainingMinutes
	charge.UsedMinutes = int(used)
	return charge
}
