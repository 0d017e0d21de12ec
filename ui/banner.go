// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// BannerWidth is the width of the build banner rule lines.
const BannerWidth = 80

// Banner describes a project variant build for its start and end
// banners.
type Banner struct {
	Output     string
	ProjectDir string
	Toolchain  string
	Variant    string
	// Started is the build start time. Its Unix value is shown as the
	// build time.
	Started time.Time
}

// WriteStart writes the start banner to w.
func (b Banner) WriteStart(w io.Writer) {
	rule := strings.Repeat("=", BannerWidth)
	start := b.Started.Unix()
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "= START of build for:  %s\n", b.Output)
	fmt.Fprintf(w, "= Project Directory:   %s\n", b.ProjectDir)
	fmt.Fprintf(w, "= Toolchain:           %s\n", b.Toolchain)
	fmt.Fprintf(w, "= Build Configuration: %s\n", b.Variant)
	fmt.Fprintf(w, "= Begin (UTC):         %s\n", b.Started.UTC().Format("Mon, 02 Jan 2006 15:04:05"))
	fmt.Fprintf(w, "= Build Time:          %d (%x)\n", start, start)
	fmt.Fprintln(w, rule)
}

// WriteEnd writes the end banner to w, with the time elapsed until now.
func (b Banner) WriteEnd(w io.Writer, now time.Time) {
	rule := strings.Repeat("=", BannerWidth)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "= END of build for:    %s\n", b.Output)
	fmt.Fprintf(w, "= Project Directory:   %s\n", b.ProjectDir)
	fmt.Fprintf(w, "= Toolchain:           %s\n", b.Toolchain)
	fmt.Fprintf(w, "= Build Configuration: %s\n", b.Variant)
	fmt.Fprintf(w, "= Elapsed Time (hh mm:ss): %s\n", FormatElapsed(now.Sub(b.Started)))
	fmt.Fprintln(w, rule)
}
