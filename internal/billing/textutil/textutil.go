// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

// Package textutil holds the allocation-free line helpers shared by the
// CDR codec and the seed loaders.
package textutil

import (
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyInt = errors.New("empty int")

// SplitExact splits s by sep into exactly len(out) trimmed fields.
func SplitExact(s string, sep byte, out []string) bool {
	i := 0
	start := 0
	for j := 0; j < len(s); j++ {
		if s[j] == sep {
			if i >= len(out)-1 {
				return false
			}
			out[i] = strings.TrimSpace(s[start:j])
			i++
			start = j + 1
		}
	}
	if i != len(out)-1 {
		return false
	}
	out[i] = strings.TrimSpace(s[start:])
	return true
}

// CountFields returns how many sep-separated fields s has.
func CountFields(s string, sep byte) int {
	return strings.Count(s, string(sep)) + 1
}

func UnquoteLoose(s string) string {
	if len(s) >= 2 {
		if (s[0] == '`' && s[len(s)-1] == '`') ||
			(s[0] == '\'' && s[len(s)-1] == '\'') ||
			(s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// AtoiFast parses a non-negative decimal integer.
func AtoiFast(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmptyInt
	}

	var n int64

	for i := range len(s) {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("bad int %q", s)
		}
		if n > (1<<63-1-int64(c-'0'))/10 {
			return 0, fmt.Errorf("int overflow %q", s)
		}

		n = n*10 + int64(c-'0')
	}

	return n, nil
}

// IsDigits reports whether s is a non-empty run of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
