// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

package config

import "time"

// Origin is the first simulated day.
var Origin = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

const (
	// RemoteTimeout bounds every call to another service.
	RemoteTimeout = 10 * time.Second

	CBMaxRequests      = 1
	CBInterval         = 60 * time.Second
	CBTimeout          = 15 * time.Second
	CBFailureThreshold = 5

	PublishMaxRetries = 3
	PublishBaseDelay  = 100 * time.Millisecond
	PublishMaxDelay   = 2 * time.Second

	ShutdownTimeout = 10 * time.Second

	NewClientBalance = "100"
)
