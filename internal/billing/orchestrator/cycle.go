// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

package orchestrator

// Boundary is the month range a cycle action covers. Opening is the very
// first observation: it only fixes the starting month.
type Boundary struct {
	Lo      int
	Hi      int
	Opening bool
}

// CycleState holds the last processed month of year; 0 means nothing seen.
type CycleState struct {
	last int
}

func (s CycleState) Last() int { return s.last }

// Next decides whether a call spanning [startMonth, endMonth] crosses a
// boundary. It does not change s; Commit does, after the action succeeded.
func (s CycleState) Next(startMonth, endMonth int) (Boundary, bool) {
	if s.last == 0 {
		return Boundary{Lo: min(startMonth, endMonth), Hi: max(startMonth, endMonth), Opening: true}, true
	}
	if startMonth == s.last && endMonth == s.last {
		return Boundary{}, false
	}

	last := s.last
	// генератор ушёл на следующий год или месяцы пришли не по порядку
	if last > startMonth && last > endMonth {
		last = endMonth
	}
	return Boundary{Lo: min(last, startMonth), Hi: max(last, endMonth)}, true
}

func (s *CycleState) Commit(b Boundary) {
	s.last = b.Hi
}
