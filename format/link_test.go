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

func TestFindReferenceLinkLabel(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"[foo][bar]", "bar"},
		{`[link \[bar][ref]`, "ref"},
		{"[foo][ bar ]", "bar"},
		{"[[nested]][label]", "label"},
	}
	for _, test := range tests {
		if got := findReferenceLinkLabel(test.link); got != test.want {
			t.Errorf("findReferenceLinkLabel(%q) = %q; want %q", test.link, got, test.want)
		}
	}
}

func TestFindInlineURLAndTitle(t *testing.T) {
	tests := []struct {
		link        string
		url         string
		title       string
		titleMarker byte
	}{
		{"[link](/uri)", "/uri", "", 0},
		{"[link](</my uri>)", "/my uri", "", 0},
		{`[a](http://x.com "T")`, "http://x.com", "T", '"'},
		{"[a](/u 'single')", "/u", "single", '\''},
		{"[a](/u (t))", "/u", "t", ')'},
		{"[a]()", "", "", 0},
		{"[a [b]](/c)", "/c", "", 0},
	}
	for _, test := range tests {
		url, title, marker := findInlineURLAndTitle(test.link)
		if url != test.url || title != test.title || marker != test.titleMarker {
			t.Errorf("findInlineURLAndTitle(%q) = %q, %q, %q; want %q, %q, %q",
				test.link, url, title, marker, test.url, test.title, test.titleMarker)
		}
	}
}

func TestInlineLinkTail(t *testing.T) {
	tests := []struct {
		url         string
		title       string
		titleMarker byte
		want        string
	}{
		{"/u", "", 0, "](/u)"},
		{"/my uri", "", 0, "](</my uri>)"},
		{"/a(b", "", 0, "](</a(b>)"},
		{"/u", "T", '"', `](/u "T")`},
		{"/u", "t", '\'', "](/u 't')"},
		{"/u", "t", ')', "](/u (t))"},
	}
	for _, test := range tests {
		if got := inlineLinkTail(test.url, test.title, test.titleMarker); got != test.want {
			t.Errorf("inlineLinkTail(%q, %q, %q) = %q; want %q",
				test.url, test.title, test.titleMarker, got, test.want)
		}
	}
}

func TestLinkWriter(t *testing.T) {
	tests := []struct {
		name   string
		isAuto bool
		writes []string
		want   string
	}{
		{name: "Plain", writes: []string{"foo"}, want: "foo"},
		{name: "FootnoteCaret", writes: []string{"^foo"}, want: `\^foo`},
		{name: "LeadingSpace", writes: []string{"  foo"}, want: "foo"},
		{name: "Newlines", writes: []string{"foo\nbar"}, want: "foo bar"},
		{name: "TrailingEscape", writes: []string{`foo\`}, want: `foo\\`},
		{name: "AutolinkEscape", isAuto: true, writes: []string{`foo\`}, want: `foo\`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := &linkWriter{isAuto: test.isAuto}
			for _, s := range test.writes {
				w.writeString(textWrite, s)
			}
			if got := w.finish(); got != test.want {
				t.Errorf("finish() = %q; want %q", got, test.want)
			}
		})
	}
}
