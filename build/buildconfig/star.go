// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package buildconfig

import (
	"fmt"
	"sort"

	"go.starlark.net/starlark"
)

func packList(list []string) starlark.Value {
	values := make([]starlark.Value, 0, len(list))
	for _, elem := range list {
		values = append(values, starlark.String(elem))
	}
	return starlark.NewList(values)
}

func unpackList(v starlark.Value) ([]string, error) {
	iterator := starlark.Iterate(v)
	if iterator == nil {
		return nil, fmt.Errorf("got %v; want iterator", v.Type())
	}
	defer iterator.Done()
	var elem starlark.Value
	var list []string
	for iterator.Next(&elem) {
		s, ok := starlark.AsString(elem)
		if !ok {
			return nil, fmt.Errorf("got %v in %v; want string", elem.Type(), v.Type())
		}
		list = append(list, s)
	}
	return list, nil
}

// field is a named value of a struct, module or dict.
type field struct {
	name  string
	value starlark.Value
}

// unpackFields returns the fields of a struct, module or string keyed
// dict. Struct and module fields are sorted by name; dict fields keep
// insertion order. None fields are dropped.
func unpackFields(v starlark.Value) ([]field, error) {
	var fields []field
	switch v := v.(type) {
	case *starlark.Dict:
		for _, item := range v.Items() {
			k, ok := starlark.AsString(item[0])
			if !ok {
				return nil, fmt.Errorf("got %v key in dict; want string", item[0].Type())
			}
			fields = append(fields, field{name: k, value: item[1]})
		}
	case starlark.HasAttrs:
		names := v.AttrNames()
		sort.Strings(names)
		for _, name := range names {
			fv, err := v.Attr(name)
			if err != nil {
				return nil, err
			}
			fields = append(fields, field{name: name, value: fv})
		}
	default:
		return nil, fmt.Errorf("got %v; want struct or dict", v.Type())
	}
	out := fields[:0]
	for _, f := range fields {
		if f.value == starlark.None {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func unpackString(name string, v starlark.Value) (string, error) {
	s, ok := starlark.AsString(v)
	if !ok {
		return "", fmt.Errorf("%s: got %v; want string", name, v.Type())
	}
	return s, nil
}

func unpackBool(name string, v starlark.Value) (bool, error) {
	b, ok := v.(starlark.Bool)
	if !ok {
		return false, fmt.Errorf("%s: got %v; want bool", name, v.Type())
	}
	return bool(b), nil
}
