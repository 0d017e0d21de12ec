// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scheduler

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WriteReport writes res as YAML to fname.
func WriteReport(fname string, res Result) error {
	buf, err := yaml.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(fname, buf, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// ReadReport reads a report written by WriteReport.
func ReadReport(fname string) (Result, error) {
	var res Result
	buf, err := os.ReadFile(fname)
	if err != nil {
		return res, err
	}
	if err := yaml.Unmarshal(buf, &res); err != nil {
		return res, fmt.Errorf("failed to parse %s: %w", fname, err)
	}
	return res, nil
}
