// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

package bus

const (
	// TopicCDR carries base64-encoded CDR batches from the generator to billing.
	TopicCDR = "cdr-topic"
	// TopicClientSnapshot carries billing's client states to rating.
	TopicClientSnapshot = "brt-cache-topic"
	// TopicTariffSnapshot carries rating's tariffs to billing.
	TopicTariffSnapshot = "hrs-cache-topic"
)
