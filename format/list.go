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
	"fmt"
	"strconv"
	"strings"
)

// ListMarker is the marker that starts a list item.
// The zero value is not a valid marker.
type ListMarker struct {
	// Ordered is true for numbered list items.
	Ordered bool
	// ZeroPadding is the number of leading zeroes before Number.
	ZeroPadding int
	// Number is the ordered item's number.
	Number int
	// Delim is '.' or ')' for ordered items
	// and '*', '+' or '-' for unordered items.
	Delim byte
}

// ParseUnorderedListMarker parses a bullet character.
func ParseUnorderedListMarker(s string) (ListMarker, error) {
	switch s {
	case "*", "+", "-":
		return ListMarker{Delim: s[0]}, nil
	default:
		return ListMarker{}, fmt.Errorf("%s is not a valid list marker. select one of *, +, or -", s)
	}
}

// parseListMarker parses the marker at the start of a list item's source.
func parseListMarker(s string) (ListMarker, error) {
	s = strings.TrimLeft(s, " \t\r\n>")
	if s == "" {
		return ListMarker{}, fmt.Errorf("parse list marker: empty item")
	}
	switch s[0] {
	case '*', '+', '-':
		return ListMarker{Delim: s[0]}, nil
	}
	end := strings.IndexAny(s, ".)")
	if end < 0 {
		return ListMarker{}, fmt.Errorf("parse list marker %q: no delimiter", s)
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return ListMarker{}, fmt.Errorf("parse list marker %q: %w", s, err)
	}
	m := ListMarker{Ordered: true, Number: n, Delim: s[end]}
	if n != 0 {
		m.ZeroPadding = len(s[:end]) - len(strings.TrimLeft(s[:end], "0"))
	}
	return m, nil
}

// sourceMarkerLen returns the number of bytes the list marker
// at the start of s occupies as written,
// which differs from the marker's Len when its number has leading zeroes.
func sourceMarkerLen(s string) int {
	s = strings.TrimLeft(s, " \t\r\n>")
	if s == "" {
		return 0
	}
	if strings.IndexByte(bullets, s[0]) >= 0 {
		return 1
	}
	n := 0
	for n < len(s) && '0' <= s[n] && s[n] <= '9' {
		n++
	}
	if n < len(s) && (s[n] == '.' || s[n] == ')') {
		n++
	}
	return n
}

// IsZero reports whether m is the zero value.
func (m ListMarker) IsZero() bool {
	return m == ListMarker{}
}

// String returns the marker as written in a document.
func (m ListMarker) String() string {
	if !m.Ordered {
		return string(m.Delim)
	}
	return strings.Repeat("0", m.ZeroPadding) + strconv.Itoa(m.Number) + string(m.Delim)
}

// IndentationLen returns the width of the marker plus the space that follows it.
func (m ListMarker) IndentationLen() int {
	if !m.Ordered {
		return 2
	}
	return m.ZeroPadding + len(strconv.Itoa(m.Number)) + 2
}

// Len returns the width of the marker.
func (m ListMarker) Len() int {
	return m.IndentationLen() - 1
}

func (m ListMarker) indentation() string {
	return strings.Repeat(" ", m.IndentationLen())
}

const bullets = "*-+"

// alternateBullet returns a bullet different from b.
func alternateBullet(b byte) byte {
	i := strings.IndexByte(bullets, b)
	return bullets[(i+1)%len(bullets)]
}
