// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"strings"
	"time"
)

// DurationThreshold is the duration below which a finished spinner
// prints nothing.
const DurationThreshold = 500 * time.Millisecond

// FormatDuration formats duration in "X.XXs", "XmXX.XXs" or "XhXmXX.XXs".
func FormatDuration(d time.Duration) string {
	d = d.Round(10 * time.Millisecond)
	var sb strings.Builder
	sb.Grow(32)

	mins := d.Truncate(1 * time.Minute)
	d = d - mins
	if mins > 0 {
		fmt.Fprintf(&sb, "%s", strings.TrimSuffix(mins.String(), "0s"))
		if d < 10*time.Second {
			fmt.Fprint(&sb, "0")
		}
	}
	fmt.Fprintf(&sb, "%02.02fs", d.Seconds())
	return sb.String()
}

// FormatElapsed formats duration as "hh mm:ss", hours growing past two
// digits as needed.
func FormatElapsed(d time.Duration) string {
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d %02d:%02d", secs/3600, (secs/60)%60, secs%60)
}
