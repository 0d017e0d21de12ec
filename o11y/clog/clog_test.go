// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package clog_test

import (
	"context"
	"sync"
	"testing"

	"cloud.google.com/go/logging"
	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/nqbp/o11y/clog"
)

func TestLabels(t *testing.T) {
	var mu sync.Mutex
	var entries []logging.Entry
	l := clog.New("run-1")
	l.Sink = func(e logging.Entry) {
		mu.Lock()
		defer mu.Unlock()
		entries = append(entries, e)
	}
	defer l.Close()
	ctx := clog.NewContext(context.Background(), l)

	var wg sync.WaitGroup
	for _, prj := range []string{"a", "b"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx := clog.WithLabels(ctx, map[string]string{"project": prj})
			clog.Infof(cctx, "start %s", prj)
		}()
	}
	wg.Wait()
	clog.Warningf(ctx, "top")

	if len(entries) != 3 {
		t.Fatalf("entries=%d; want 3", len(entries))
	}
	got := map[string]string{}
	for _, e := range entries {
		if e.Trace != "run-1" {
			t.Errorf("entry %v trace=%q; want run-1", e.Payload, e.Trace)
		}
		got[e.Payload.(string)] = e.Labels["project"]
	}
	want := map[string]string{"start a": "a", "start b": "b", "top": ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("labels diff -want +got:\n%s", diff)
	}
	if labels := l.Labels(); len(labels) != 0 {
		t.Errorf("parent labels=%v; want none", labels)
	}
}

func TestDefaultFormatter(t *testing.T) {
	e := logging.Entry{
		Payload: "built",
		Labels:  map[string]string{"slot": "2", "project": "x"},
	}
	if got, want := clog.DefaultFormatter(e), "[project=x slot=2] built"; got != want {
		t.Errorf("DefaultFormatter(%v)=%q; want %q", e, got, want)
	}
	if got, want := clog.DefaultFormatter(logging.Entry{Payload: 3}), "3"; got != want {
		t.Errorf("DefaultFormatter(3)=%q; want %q", got, want)
	}
}

func TestFromContext_Default(t *testing.T) {
	if l := clog.FromContext(context.Background()); l == nil {
		t.Fatal("FromContext(empty)=nil; want default logger")
	}
	clog.Infof(context.Background(), "no logger in context")
}
