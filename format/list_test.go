// Copyright 2024 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package format

import "testing"

func TestParseUnorderedListMarker(t *testing.T) {
	for _, s := range []string{"*", "+", "-"} {
		got, err := ParseUnorderedListMarker(s)
		if want := (ListMarker{Delim: s[0]}); got != want || err != nil {
			t.Errorf("ParseUnorderedListMarker(%q) = %+v, %v; want %+v, <nil>", s, got, err, want)
		}
	}
	for _, s := range []string{"", "1.", "**", "x"} {
		if got, err := ParseUnorderedListMarker(s); err == nil {
			t.Errorf("ParseUnorderedListMarker(%q) = %+v, <nil>; want error", s, got)
		}
	}
}

func TestParseListMarker(t *testing.T) {
	tests := []struct {
		source string
		want   ListMarker
	}{
		{"- foo", ListMarker{Delim: '-'}},
		{"+ foo", ListMarker{Delim: '+'}},
		{"1. foo", ListMarker{Ordered: true, Number: 1, Delim: '.'}},
		{"007) foo", ListMarker{Ordered: true, ZeroPadding: 2, Number: 7, Delim: ')'}},
		{"0. foo", ListMarker{Ordered: true, Number: 0, Delim: '.'}},
		{"> 3. foo", ListMarker{Ordered: true, Number: 3, Delim: '.'}},
	}
	for _, test := range tests {
		got, err := parseListMarker(test.source)
		if got != test.want || err != nil {
			t.Errorf("parseListMarker(%q) = %+v, %v; want %+v, <nil>", test.source, got, err, test.want)
		}
	}
	for _, s := range []string{"", "foo", "1 foo"} {
		if got, err := parseListMarker(s); err == nil {
			t.Errorf("parseListMarker(%q) = %+v, <nil>; want error", s, got)
		}
	}
}

func TestListMarkerString(t *testing.T) {
	tests := []struct {
		marker         ListMarker
		want           string
		indentationLen int
	}{
		{ListMarker{Delim: '*'}, "*", 2},
		{ListMarker{Ordered: true, Number: 1, Delim: '.'}, "1.", 3},
		{ListMarker{Ordered: true, ZeroPadding: 2, Number: 7, Delim: ')'}, "007)", 5},
		{ListMarker{Ordered: true, Number: 10, Delim: '.'}, "10.", 4},
	}
	for _, test := range tests {
		if got := test.marker.String(); got != test.want {
			t.Errorf("%+v.String() = %q; want %q", test.marker, got, test.want)
		}
		if got := test.marker.IndentationLen(); got != test.indentationLen {
			t.Errorf("%+v.IndentationLen() = %d; want %d", test.marker, got, test.indentationLen)
		}
		if got, want := test.marker.Len(), len(test.want); got != want {
			t.Errorf("%+v.Len() = %d; want %d", test.marker, got, want)
		}
	}
}

func TestSourceMarkerLen(t *testing.T) {
	tests := []struct {
		source string
		want   int
	}{
		{"-", 1},
		{"* foo", 1},
		{"1.", 2},
		{"003. foo", 4},
		{"0000000)", 8},
		{"> 10) foo", 3},
		{"", 0},
	}
	for _, test := range tests {
		if got := sourceMarkerLen(test.source); got != test.want {
			t.Errorf("sourceMarkerLen(%q) = %d; want %d", test.source, got, test.want)
		}
	}
}

func TestAlternateBullet(t *testing.T) {
	tests := []struct {
		b, want byte
	}{
		{'*', '-'},
		{'-', '+'},
		{'+', '*'},
	}
	for _, test := range tests {
		if got := alternateBullet(test.b); got != test.want {
			t.Errorf("alternateBullet(%q) = %q; want %q", test.b, got, test.want)
		}
	}
}
