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

	"github.com/mattn/go-runewidth"
)

const hardBreak = "  \n"

// paragraphWriter collects the text of a paragraph
// and wraps it to a maximum width once the paragraph is complete.
type paragraphWriter struct {
	buf strings.Builder
	// width is the maximum line width.
	// It is only used if hasWidth is true.
	width    int
	hasWidth bool
	reflow   bool
}

func (p *paragraphWriter) isEmpty() bool {
	return p.buf.Len() == 0
}

// isHardBreakWrite reports whether s is two or more spaces followed by a line feed.
func isHardBreakWrite(s string) bool {
	rest, ok := strings.CutPrefix(s, "  ")
	return ok && strings.TrimLeft(rest, " ") == "\n"
}

func (p *paragraphWriter) writeString(_ writeKind, s string) {
	if p.hasWidth && isHardBreakWrite(s) {
		p.buf.WriteString(hardBreak)
		return
	}
	if p.hasWidth && p.reflow && strings.TrimSpace(s) == "" {
		// Line breaks become spaces so the text can be refilled.
		p.buf.WriteString(" ")
		return
	}

	buf := p.buf.String()
	last := ""
	if ls := lines(buf); len(ls) > 0 {
		last = ls[len(ls)-1]
	}
	if (strings.HasPrefix(last, "|") || strings.HasSuffix(last, "|")) && couldBeTable(s) {
		p.buf.WriteString(`\`)
	}
	if strings.HasSuffix(buf, hardBreak) && needsEscape(s).needed() {
		p.buf.WriteString(`\`)
	}
	if strings.HasSuffix(buf, "\n") && s != "" && (strings.Trim(s, "-") == "" || strings.Trim(s, "=") == "") {
		// Setext heading underline.
		p.buf.WriteString(`\`)
	}
	if strings.HasSuffix(buf, "\n") && (s == "* " || s == "+ " || s == "- ") {
		p.buf.WriteString(`\`)
	}
	p.buf.WriteString(s)
}

// couldBeTable reports whether text looks like a table delimiter row
// like "-|", "|-" or "| - |".
func couldBeTable(text string) bool {
	onlyDashes := func(s string) bool {
		return strings.TrimFunc(s, func(c rune) bool { return c == '-' || unicode.IsSpace(c) }) == ""
	}
	if s, ok := strings.CutSuffix(text, "|"); ok && onlyDashes(s) {
		return true
	}
	s, ok := strings.CutPrefix(text, "|")
	if !ok {
		return false
	}
	if onlyDashes(s) {
		return true
	}
	s, ok = strings.CutSuffix(s, "|")
	return ok && onlyDashes(s)
}

// finish returns the paragraph text, wrapped if a width was set.
func (p *paragraphWriter) finish() string {
	buf := p.buf.String()
	if !p.hasWidth {
		return buf
	}
	fits := true
	for _, line := range lines(buf) {
		if runewidth.StringWidth(line) > p.width {
			fits = false
			break
		}
	}
	if fits {
		return buf
	}

	var out []string
	var pending []string
	flush := func(hardBreakSuffix string) {
		text := strings.Join(pending, " ")
		pending = pending[:0]
		wrapped := wrapLine(text, p.width)
		if hardBreakSuffix != "" && len(wrapped) > 0 {
			wrapped[len(wrapped)-1] += hardBreakSuffix
		}
		out = append(out, wrapped...)
	}
	ls := strings.Split(buf, "\n")
	for i, line := range ls {
		suffix := ""
		isBreak := i < len(ls)-1 && strings.HasSuffix(line, "  ")
		if isBreak {
			line = strings.TrimRight(line, " ")
			suffix = "  "
		}
		pending = append(pending, line)
		if !p.reflow || isBreak || i == len(ls)-1 || sequenceEndsOnEscape(line) {
			flush(suffix)
		}
	}
	return strings.Join(out, "\n")
}

// wrapLine fills words separated by ASCII spaces into lines of at most width columns.
// Words are never broken, so a line may exceed width
// if it holds a single long word.
// A word that would begin a block construct at the start of a line
// stays on the previous line.
func wrapLine(line string, width int) []string {
	type word struct {
		text string
		// gap is the run of spaces after the word.
		gap string
	}
	var words []word
	rest := strings.TrimLeft(line, " ")
	indent := line[:len(line)-len(rest)]
	for rest != "" {
		end := strings.IndexByte(rest, ' ')
		if end < 0 {
			end = len(rest)
		}
		after := strings.TrimLeft(rest[end:], " ")
		words = append(words, word{text: rest[:end], gap: rest[end : len(rest)-len(after)]})
		rest = after
	}
	if len(words) == 0 {
		return []string{""}
	}

	var result []string
	cur := indent + words[0].text
	curWidth := runewidth.StringWidth(cur)
	gap := words[0].gap
	for _, w := range words[1:] {
		ww := runewidth.StringWidth(w.text)
		if curWidth+len(gap)+ww <= width || startsBlock(w.text) {
			cur += gap + w.text
			curWidth += len(gap) + ww
		} else {
			result = append(result, cur)
			cur = w.text
			curWidth = ww
		}
		gap = w.gap
	}
	return append(result, cur)
}

// startsBlock reports whether word would be read as the start of
// a block construct if it began a line in a paragraph.
func startsBlock(word string) bool {
	if word == "" {
		return false
	}
	switch word[0] {
	case '>', '|', '<', ':':
		return true
	case '#':
		return isHeadingRun(word)
	case '-', '+', '*', '=', '_':
		return len(word) == 1 || strings.Trim(word, word[:1]) == ""
	case '`':
		return strings.HasPrefix(word, "```")
	case '~':
		return strings.HasPrefix(word, "~~~")
	}
	i := 0
	for i < len(word) && '0' <= word[i] && word[i] <= '9' {
		i++
	}
	return i > 0 && i == len(word)-1 && (word[i] == '.' || word[i] == ')')
}
