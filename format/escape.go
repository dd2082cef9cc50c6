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

import "strings"

// escapeKind is the block construct that a run of text
// would be mistaken for if it started a line.
type escapeKind uint8

const (
	noEscape escapeKind = iota
	escapeATXHeading
	escapeSetextHeading
	escapeThematicBreak
	escapeBulletListMarker
	escapeOrderedListMarker
	escapeCodeFence
	escapeBlockQuote
	escapeDefinitionMarker
)

// An escape describes how a run of text must be escaped.
type escape struct {
	kind escapeKind
	// marker is the character that introduces the construct.
	marker byte
	// pos is the position of the ordered list delimiter.
	pos int
}

func (e escape) needed() bool {
	return e.kind != noEscape
}

// isMulti reports whether every occurrence of the marker must be escaped.
func (e escape) isMulti() bool {
	switch e.kind {
	case escapeThematicBreak, escapeBulletListMarker, escapeCodeFence:
		return true
	default:
		return false
	}
}

// apply returns s with the escape applied.
func (e escape) apply(s string) string {
	switch {
	case !e.needed():
		return s
	case e.isMulti():
		return strings.ReplaceAll(s, string(e.marker), `\`+string(e.marker))
	case e.kind == escapeOrderedListMarker && e.pos < len(s):
		return s[:e.pos] + `\` + s[e.pos:]
	default:
		return `\` + s
	}
}

// prefix returns s with only its first marker escaped.
func (e escape) prefix(s string) string {
	if e.kind == escapeOrderedListMarker {
		return e.apply(s)
	}
	if !e.needed() {
		return s
	}
	return `\` + s
}

var atxHeadingPrefixes = []string{"# ", "## ", "### ", "#### ", "##### ", "###### "}

// needsEscape reports whether text would begin a block construct
// if it appeared at the start of a line.
func needsEscape(text string) escape {
	if text == "" {
		return escape{}
	}
	first := text[0]
	allBytes := func(s string, b byte) bool {
		for i := 0; i < len(s); i++ {
			if s[i] != b {
				return false
			}
		}
		return true
	}
	isThematicBreak := func(b byte) bool {
		for i := 0; i < len(text); i++ {
			if text[i] != b && text[i] != ' ' {
				return false
			}
		}
		return true
	}
	isSetext := func(b byte) bool {
		return allBytes(strings.TrimRight(text, " \t\r\n"), b)
	}

	switch first {
	case '#':
		for _, p := range atxHeadingPrefixes {
			if strings.HasPrefix(text, p) {
				return escape{kind: escapeATXHeading, marker: '#'}
			}
		}
	case '=':
		if isSetext('=') {
			return escape{kind: escapeSetextHeading, marker: '='}
		}
	case '-':
		switch {
		case strings.HasPrefix(text, "- "):
			return escape{kind: escapeBulletListMarker, marker: '-'}
		case isSetext('-'):
			return escape{kind: escapeSetextHeading, marker: '-'}
		case isThematicBreak('-'):
			return escape{kind: escapeThematicBreak, marker: '-'}
		}
	case '_':
		if isThematicBreak('_') {
			return escape{kind: escapeThematicBreak, marker: '_'}
		}
	case '*':
		switch {
		case strings.HasPrefix(text, "* "):
			return escape{kind: escapeBulletListMarker, marker: '*'}
		case isThematicBreak('*'):
			return escape{kind: escapeThematicBreak, marker: '*'}
		}
	case '+':
		if strings.HasPrefix(text, "+ ") {
			return escape{kind: escapeBulletListMarker, marker: '+'}
		}
	case '`':
		// A backtick fence's info string cannot contain backticks.
		rest, _, _ := strings.Cut(strings.TrimLeft(text, "`"), "\n")
		if strings.HasPrefix(text, "```") && !strings.Contains(rest, "`") {
			return escape{kind: escapeCodeFence, marker: '`'}
		}
	case '~':
		if strings.HasPrefix(text, "~~~") {
			return escape{kind: escapeCodeFence, marker: '~'}
		}
	case '>':
		return escape{kind: escapeBlockQuote, marker: '>'}
	case ':':
		return escape{kind: escapeDefinitionMarker, marker: ':'}
	default:
		if pos := orderedListDelimiter(text); pos >= 0 {
			return escape{kind: escapeOrderedListMarker, marker: text[pos], pos: pos}
		}
	}
	return escape{}
}

// orderedListDelimiter returns the position of the delimiter
// if text starts with an ordered list marker numbered 1
// (the only number that can interrupt a paragraph),
// or -1 otherwise.
func orderedListDelimiter(text string) int {
	i := 0
	for i < len(text) && i < 9 && '0' <= text[i] && text[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(text) || (text[i] != '.' && text[i] != ')') {
		return -1
	}
	if strings.TrimLeft(text[:i], "0") != "1" {
		return -1
	}
	if i+1 < len(text) && text[i+1] != ' ' && text[i+1] != '\t' {
		return -1
	}
	if i+1 == len(text) {
		// An empty item cannot interrupt a paragraph.
		return -1
	}
	return i
}

// isHeadingRun reports whether s consists only of one to six '#' characters,
// which is an empty ATX heading.
func isHeadingRun(s string) bool {
	s = strings.TrimRight(s, " \t")
	return len(s) > 0 && len(s) <= 6 && strings.Trim(s, "#") == ""
}
