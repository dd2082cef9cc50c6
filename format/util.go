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
	"strings"
	"unicode"
	"unicode/utf8"
)

const nbsp = '\u00a0'

// countNewlines returns the number of line endings in s.
// "\r\n" counts as a single line ending.
func countNewlines(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			n++
		case '\n':
			n++
		}
	}
	return n
}

// splitLines splits s after each line ending,
// returning the lines without their line endings.
// Unlike [strings.Split], a trailing line ending does not produce an empty final line.
func splitLines(s string) []string {
	var lines []string
	for len(s) > 0 {
		i := strings.IndexAny(s, "\r\n")
		if i < 0 {
			lines = append(lines, s)
			break
		}
		lines = append(lines, s[:i])
		if s[i] == '\r' && i+1 < len(s) && s[i+1] == '\n' {
			i++
		}
		s = s[i+1:]
	}
	return lines
}

// lines splits s on "\n" the way a reader would see it,
// dropping a final empty line and any carriage returns before line feeds.
func lines(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(p, "\r")
	}
	return parts
}

// lastLine returns the text after the final line feed in s.
func lastLine(s string) string {
	return s[strings.LastIndexByte(s, '\n')+1:]
}

// isCharEscaped reports whether c is a backslash that escapes the next character,
// given whether the character before it was such a backslash.
func isCharEscaped(c rune, prevEscape bool) bool {
	return c == '\\' && !prevEscape
}

// sequenceEndsOnEscape reports whether s ends with a backslash
// that would escape the following character.
func sequenceEndsOnEscape(s string) bool {
	escaped := false
	for _, c := range s {
		escaped = isCharEscaped(c, escaped)
	}
	return escaped
}

// countTrailingSpaces counts the spaces and non-breaking spaces
// in the trailing whitespace of s.
func countTrailingSpaces(s string) int {
	n := 0
	for s != "" {
		r, size := utf8.DecodeLastRuneInString(s)
		if !unicode.IsSpace(r) {
			break
		}
		if r == ' ' || r == nbsp {
			n++
		}
		s = s[:len(s)-size]
	}
	return n
}

// isBalanced reports whether every unescaped opener in s
// has a matching unescaped closer.
func isBalanced(s string, opener, closer rune) bool {
	depth := 0
	escaped := false
	for _, c := range s {
		if !escaped {
			switch c {
			case opener:
				depth++
			case closer:
				if depth == 0 {
					return false
				}
				depth--
			}
		}
		escaped = isCharEscaped(c, escaped)
	}
	return depth == 0
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func trimLineEndings(s string) string {
	return strings.TrimRight(s, "\r\n")
}

func isASCIIWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
