// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

package generator

// Interval is a half-open range of unix seconds [Start, End).
type Interval struct {
	Start int64
	End   int64
}

// splitInterval cuts [start, end) into n contiguous parts of equal duration;
// the last part absorbs the remainder.
func splitInterval(start, end int64, n int) []Interval {
	if n <= 0 {
		n = 1
	}
	if end <= start {
		return []Interval{{Start: start, End: start}}
	}

	step := (end - start) / int64(n)
	out := make([]Interval, n)
	cur := start
	for i := range n {
		next := cur + step
		if i == n-1 {
			next = end
		}
		out[i] = Interval{Start: cur, End: next}
		cur = next
	}
	return out
}
