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

	"github.com/shopspring/decimal"
)

type Money int64 // копейки

// Tenth is the smallest amount a call charge is rounded to (0.1).
const Tenth Money = 10

// ParseMoney("1.80") => 180
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	// поддержим "," как десятичный разделитель
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("money: bad %q: %w", s, err)
	}
	return MoneyFromDecimal(d), nil
}

// MoneyFromDecimal truncates fractions below one kopeck.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money(d.Shift(2).Truncate(0).IntPart())
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// CeilTo rounds m up to the next multiple of step.
func (m Money) CeilTo(step Money) Money {
	if step <= 0 || m%step == 0 {
		return m
	}
	if m < 0 {
		return m - m%step
	}
	return m - m%step + step
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("money: %w", err)
	}
	*m = MoneyFromDecimal(d)
	return nil
}
