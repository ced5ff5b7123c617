// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

// Package seed reads the ';'-separated reference files the services start
// from: subscribers for the generator, tariffs for rating and clients for
// billing. A header row is optional.
package seed

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"telecom_billing_sim/internal/billing/model"
	"telecom_billing_sim/internal/billing/textutil"
)

const sep = ';'

// subscribers: id;phone_number;is_local
func LoadSubscribers(r io.Reader) ([]model.Subscriber, error) {
	var subs []model.Subscriber

	err := scanRows(r, 3, "id", func(fields []string) error {
		id, err := textutil.AtoiFast(fields[0])
		if err != nil {
			return fmt.Errorf("subscribers: bad id %q: %w", fields[0], err)
		}
		if !textutil.IsDigits(fields[1]) {
			return fmt.Errorf("subscribers: bad phone_number %q", fields[1])
		}
		local, err := strconv.ParseBool(fields[2])
		if err != nil {
			return fmt.Errorf("subscribers: bad is_local %q: %w", fields[2], err)
		}

		subs = append(subs, model.Subscriber{ID: id, PhoneNumber: fields[1], Local: local})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// tariffs: id;name;class;in_net_in;in_net_out;other_in;other_out;monthly_limit_minutes;monthly_fee
func LoadTariffs(r io.Reader) ([]model.Tariff, error) {
	var tariffs []model.Tariff

	err := scanRows(r, 9, "id", func(fields []string) error {
		id, err := textutil.AtoiFast(fields[0])
		if err != nil {
			return fmt.Errorf("tariffs: bad id %q: %w", fields[0], err)
		}
		class := model.ParseTariffClass(fields[2])
		if class == model.TariffUnknown {
			return fmt.Errorf("tariffs: bad class %q", fields[2])
		}

		var rates [4]model.Money
		for i := range rates {
			rates[i], err = model.ParseMoney(fields[3+i])
			if err != nil {
				return fmt.Errorf("tariffs: bad rate %q: %w", fields[3+i], err)
			}
		}

		limit, err := textutil.AtoiFast(fields[7])
		if err != nil {
			return fmt.Errorf("tariffs: bad monthly_limit_minutes %q: %w", fields[7], err)
		}
		fee, err := model.ParseMoney(fields[8])
		if err != nil {
			return fmt.Errorf("tariffs: bad monthly_fee %q: %w", fields[8], err)
		}

		tariffs = append(tariffs, model.Tariff{
			ID:                  id,
			Name:                fields[1],
			Class:               class,
			InNetIn:             rates[0],
			InNetOut:            rates[1],
			OtherIn:             rates[2],
			OtherOut:            rates[3],
			MonthlyLimitMinutes: int(limit),
			MonthlyFee:          fee,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tariffs, nil
}

// clients: msisdn;tariff_id;balance
//
// Remaining minutes are not part of the file; billing derives them from the
// tariff when it loads the clients.
func LoadClients(r io.Reader) ([]model.Client, error) {
	var clients []model.Client

	err := scanRows(r, 3, "msisdn", func(fields []string) error {
		if !textutil.IsDigits(fields[0]) {
			return fmt.Errorf("clients: bad msisdn %q", fields[0])
		}
		tariff, err := textutil.AtoiFast(fields[1])
		if err != nil {
			return fmt.Errorf("clients: bad tariff_id %q: %w", fields[1], err)
		}
		bal, err := model.ParseMoney(fields[2])
		if err != nil {
			return fmt.Errorf("clients: bad balance %q: %w", fields[2], err)
		}

		clients = append(clients, model.Client{Msisdn: fields[0], TariffID: tariff, Balance: bal})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return clients, nil
}

// LoadFile opens path and hands it to load.
func LoadFile[T any](path string, load func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out, err := load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func scanRows(r io.Reader, n int, header string, row func(fields []string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	fields := make([]string, n)

	first := true
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		if !textutil.SplitExact(text, sep, fields) {
			return fmt.Errorf("line %d: expected %d fields: %q", line, n, text)
		}
		for i := range fields {
			fields[i] = textutil.UnquoteLoose(fields[i])
		}

		// header
		if first && strings.EqualFold(fields[0], header) {
			first = false
			continue
		}
		first = false

		if err := row(fields); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}

	if err := sc.Err(); err != nil {
		return fmt.Errorf("read: %w", err)
	}
	return nil
}
