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

import (
	"testing"

	"zombiezen.com/go/mdfmt"
)

func TestHeaderWriter(t *testing.T) {
	tests := []struct {
		name       string
		fullHeader string
		tag        mdfmt.Tag
		text       string
		want       string
	}{
		{
			name:       "ATX",
			fullHeader: "## foo",
			tag:        mdfmt.Tag{Kind: mdfmt.HeadingTag, Level: 2},
			text:       "foo",
			want:       "foo",
		},
		{
			name:       "Setext",
			fullHeader: "Title\n===",
			tag:        mdfmt.Tag{Kind: mdfmt.HeadingTag, Level: 1},
			text:       "Title",
			want:       "Title\n===\n",
		},
		{
			name:       "EmptySetext",
			fullHeader: "\n---",
			tag:        mdfmt.Tag{Kind: mdfmt.HeadingTag, Level: 2},
			want:       "\\\n---\n",
		},
		{
			name:       "EmptyAttributes",
			fullHeader: "## H2 {} ##",
			tag:        mdfmt.Tag{Kind: mdfmt.HeadingTag, Level: 2, EmptyAttributes: true},
			text:       "H2",
			want:       `H2 \{\}`,
		},
		{
			name:       "OnlyEmptyAttributes",
			fullHeader: "# {}",
			tag:        mdfmt.Tag{Kind: mdfmt.HeadingTag, Level: 1, EmptyAttributes: true},
			want:       `\{\}`,
		},
		{
			name:       "Attributes",
			fullHeader: `# Title {#x .a k="v 1"}`,
			tag: mdfmt.Tag{
				Kind:  mdfmt.HeadingTag,
				Level: 1,
				Attributes: &mdfmt.Attributes{
					ID:      "x",
					Classes: []string{"a"},
					Attrs:   []mdfmt.Attribute{{Key: "k", Value: "v 1"}},
				},
			},
			text: "Title",
			want: `Title {#x .a k="v 1"}`,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			h := newHeaderWriter(nil, test.fullHeader, test.tag)
			h.writeString(textWrite, test.text)
			if got, _ := h.finish(); got != test.want {
				t.Errorf("finish() = %q; want %q", got, test.want)
			}
		})
	}
}

func TestRemoveTrailingHashes(t *testing.T) {
	tests := []struct {
		s    string
		want string
	}{
		{"foo", "foo"},
		{"foo ##", "foo"},
		{"foo#", "foo#"},
		{`foo \#`, `foo \#`},
	}
	for _, test := range tests {
		if got := removeTrailingHashes(test.s); got != test.want {
			t.Errorf("removeTrailingHashes(%q) = %q; want %q", test.s, got, test.want)
		}
	}
}

func TestEscapeTrailingHashes(t *testing.T) {
	tests := []struct {
		s    string
		want string
	}{
		{"foo ##", `foo \##`},
		{`foo \#`, `foo \#`},
	}
	for _, test := range tests {
		if got := escapeTrailingHashes(test.s); got != test.want {
			t.Errorf("escapeTrailingHashes(%q) = %q; want %q", test.s, got, test.want)
		}
	}
}

func TestQuoteAttributeValue(t *testing.T) {
	tests := []struct {
		v    string
		want string
	}{
		{"abc", "abc"},
		{"a-1", "a-1"},
		{"1a", `"1a"`},
		{"", `""`},
		{`say "hi"`, `"say \"hi\""`},
	}
	for _, test := range tests {
		if got := quoteAttributeValue(test.v); got != test.want {
			t.Errorf("quoteAttributeValue(%q) = %q; want %q", test.v, got, test.want)
		}
	}
}
