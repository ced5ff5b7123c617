// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

package model

import (
	"fmt"
	"strings"
)

type CallDirection uint8

// Значения совпадают с кодом направления в строке CDR ("01", "02").
const (
	DirUnknown CallDirection = iota
	DirIncoming
	DirOutgoing
)

func ParseCallDirection(s string) CallDirection {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "incoming", "1", "01":
		return DirIncoming
	case "outgoing", "2", "02":
		return DirOutgoing
	default:
		return DirUnknown
	}
}

func (d CallDirection) String() string {
	switch d {
	case DirIncoming:
		return "incoming"
	case DirOutgoing:
		return "outgoing"
	default:
		return "unknown"
	}
}

// Code is the numeric direction code used on the wire.
func (d CallDirection) Code() int { return int(d) }

func (d CallDirection) Opposite() CallDirection {
	switch d {
	case DirIncoming:
		return DirOutgoing
	case DirOutgoing:
		return DirIncoming
	default:
		return DirUnknown
	}
}

func (d CallDirection) MarshalText() ([]byte, error) {
	if d == DirUnknown {
		return nil, fmt.Errorf("direction: unknown value %d", d)
	}
	return []byte(d.String()), nil
}

func (d *CallDirection) UnmarshalText(b []byte) error {
	v := ParseCallDirection(string(b))
	if v == DirUnknown {
		return fmt.Errorf("direction: bad %q", string(b))
	}
	*d = v
	return nil
}

type TariffClass uint8

const (
	TariffUnknown TariffClass = iota
	TariffPerMinute
	TariffMonthlyBucket
)

func ParseTariffClass(s string) TariffClass {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "PER_MINUTE":
		return TariffPerMinute
	case "MONTHLY_BUCKET":
		return TariffMonthlyBucket
	default:
		return TariffUnknown
	}
}

func (c TariffClass) String() string {
	switch c {
	case TariffPerMinute:
		return "PER_MINUTE"
	case TariffMonthlyBucket:
		return "MONTHLY_BUCKET"
	default:
		return "UNKNOWN"
	}
}

func (c TariffClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *TariffClass) UnmarshalText(b []byte) error {
	v := ParseTariffClass(string(b))
	if v == TariffUnknown {
		return fmt.Errorf("tariff class: bad %q", string(b))
	}
	*c = v
	return nil
}
