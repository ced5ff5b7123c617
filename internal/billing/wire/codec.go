// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

// Package wire renders call records to the line format shipped between
// the generator and billing, and parses it back.
//
// One call per line, comma separated:
//
//	0{direction},{caller},{callee},{start},{end}
//
// where direction is 1 for incoming and 2 for outgoing. On the bus the
// whole batch travels base64-encoded.
package wire

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"telecom_billing_sim/internal/billing/model"
	"telecom_billing_sim/internal/billing/textutil"
)

const fieldCount = 5

var (
	ErrFieldCount = errors.New("wrong field count")
	ErrDirection  = errors.New("bad direction code")
	ErrNumber     = errors.New("bad number")
)

// LineError describes one line that could not be parsed.
type LineError struct {
	Line int
	Raw  string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("cdr line %d %q: %v", e.Line, e.Raw, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

func EncodeRecord(r model.CallRecord) string {
	var b strings.Builder
	appendRecord(&b, r)
	return b.String()
}

func appendRecord(b *strings.Builder, r model.CallRecord) {
	b.WriteByte('0')
	b.WriteString(strconv.Itoa(r.Direction.Code()))
	b.WriteByte(',')
	b.WriteString(r.Caller)
	b.WriteByte(',')
	b.WriteString(r.Callee)
	b.WriteByte(',')
	b.WriteString(strconv.FormatInt(r.Start, 10))
	b.WriteByte(',')
	b.WriteString(strconv.FormatInt(r.End, 10))
}

// EncodeBatch renders records one per line, each terminated by '\n'.
func EncodeBatch(recs []model.CallRecord) string {
	var b strings.Builder
	b.Grow(len(recs) * 48)
	for _, r := range recs {
		appendRecord(&b, r)
		b.WriteByte('\n')
	}
	return b.String()
}

func DecodeLine(line string) (model.CallRecord, error) {
	fields := make([]string, fieldCount)
	return decodeFields(strings.TrimSpace(line), fields)
}

func decodeFields(line string, fields []string) (model.CallRecord, error) {
	if !textutil.SplitExact(line, ',', fields) {
		return model.CallRecord{}, fmt.Errorf("%w: got %d, want %d", ErrFieldCount, textutil.CountFields(line, ','), fieldCount)
	}

	code, err := textutil.AtoiFast(fields[0])
	if err != nil {
		return model.CallRecord{}, fmt.Errorf("%w: %q", ErrDirection, fields[0])
	}
	dir := model.CallDirection(code)
	if dir != model.DirIncoming && dir != model.DirOutgoing {
		return model.CallRecord{}, fmt.Errorf("%w: %q", ErrDirection, fields[0])
	}

	if !textutil.IsDigits(fields[1]) || !textutil.IsDigits(fields[2]) {
		return model.CallRecord{}, fmt.Errorf("%w: caller %q callee %q", ErrNumber, fields[1], fields[2])
	}

	start, err := textutil.AtoiFast(fields[3])
	if err != nil {
		return model.CallRecord{}, fmt.Errorf("start: %w", err)
	}
	end, err := textutil.AtoiFast(fields[4])
	if err != nil {
		return model.CallRecord{}, fmt.Errorf("end: %w", err)
	}

	return model.CallRecord{
		Direction: dir,
		Caller:    fields[1],
		Callee:    fields[2],
		Start:     start,
		End:       end,
	}, nil
}

// DecodeBatch parses text line by line. Blank lines are ignored, malformed
// ones are reported and skipped, the rest are returned in file order.
func DecodeBatch(text string) ([]model.CallRecord, []*LineError) {
	var (
		recs []model.CallRecord
		bad  []*LineError
	)

	fields := make([]string, fieldCount)
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 4*1024), 1024*1024)

	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		rec, err := decodeFields(line, fields)
		if err != nil {
			bad = append(bad, &LineError{Line: n, Raw: line, Err: err})
			continue
		}
		recs = append(recs, rec)
	}
	if err := sc.Err(); err != nil {
		bad = append(bad, &LineError{Line: n + 1, Err: err})
	}

	return recs, bad
}

func EncodeBase64(text string) []byte {
	out := make([]byte, base64.StdEncoding.EncodedLen(len(text)))
	base64.StdEncoding.Encode(out, []byte(text))
	return out
}

func DecodeBase64(payload []byte) (string, error) {
	out := make([]byte, base64.StdEncoding.DecodedLen(len(payload)))
	n, err := base64.StdEncoding.Decode(out, payload)
	if err != nil {
		return "", fmt.Errorf("base64: %w", err)
	}
	return string(out[:n]), nil
}
