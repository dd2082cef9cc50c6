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
)

// linkWriter collects the text of a link or image onto a single line.
type linkWriter struct {
	buf    strings.Builder
	isAuto bool
}

func (w *linkWriter) writeString(kind writeKind, s string) {
	if kind == softBreakWrite || kind == hardBreakWrite {
		w.buf.WriteString(" ")
		return
	}
	input := s
	endsWithNewline := strings.HasSuffix(s, "\n")
	if w.buf.Len() == 0 {
		input = strings.TrimLeftFunc(s, unicode.IsSpace)
		if strings.HasPrefix(input, "^") {
			// Keep "[^" from reading as a footnote reference.
			w.buf.WriteString(`\`)
		}
	}
	if countNewlines(input) == 0 {
		w.buf.WriteString(input)
		return
	}
	ls := splitLines(s)
	for i, line := range ls {
		w.buf.WriteString(line)
		if i < len(ls)-1 || endsWithNewline {
			w.buf.WriteString(" ")
		}
	}
}

func (w *linkWriter) isEmpty() bool {
	return w.buf.Len() == 0
}

// finish returns the link text.
func (w *linkWriter) finish() string {
	s := strings.TrimRightFunc(w.buf.String(), unicode.IsSpace)
	// Backslash escapes do not work in autolinks.
	if !w.isAuto && sequenceEndsOnEscape(s) {
		s += `\`
	}
	return s
}

// formatLinkURL wraps url in angle brackets if it could not be written bare.
func formatLinkURL(url string) string {
	if !strings.HasPrefix(url, "<") && !strings.HasSuffix(url, ">") && strings.Contains(url, " ") ||
		!isBalanced(url, '(', ')') {
		return "<" + url + ">"
	}
	return url
}

// inlineLinkTail returns the "](url "title")" that ends an inline link.
// titleMarker is the closing character of the title
// or zero if the link has no title.
func inlineLinkTail(url, title string, titleMarker byte) string {
	url = formatLinkURL(url)
	switch titleMarker {
	case 0:
		return "](" + url + ")"
	case ')':
		return "](" + url + " (" + title + "))"
	default:
		q := string(titleMarker)
		return "](" + url + " " + q + title + q + ")"
	}
}

// lastBalancedBrackets returns the bounds of the last top-level pair of
// opener and closer in s, as the index of the opener
// and the index just past the closer.
// If halt is not nil, the search stops at the first closer
// that leaves no brackets open and is followed by a character halt accepts.
func lastBalancedBrackets(s string, opener, closer byte, halt func(byte) bool) (start, end int) {
	var stack []int
	escaped := false
	end = len(s)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !escaped && c == opener {
			stack = append(stack, i)
		}
		if !escaped && c == closer {
			if n := len(stack); n > 0 {
				start = stack[n-1]
				stack = stack[:n-1]
				end = i
			}
			if len(stack) == 0 && halt != nil && i+1 < len(s) && halt(s[i+1]) {
				break
			}
		}
		escaped = isCharEscaped(rune(c), escaped)
	}
	return start, min(end+1, len(s))
}

// findReferenceLinkLabel returns the label of a full reference link.
//
//	[foo][bar] -> bar
//	[link \[bar][ref] -> ref
func findReferenceLinkLabel(link string) string {
	start, end := lastBalancedBrackets(link, '[', ']', nil)
	if end-start < 2 {
		return ""
	}
	return strings.TrimSpace(link[start+1 : end-1])
}

// findInlineURLAndTitle splits the parenthesized tail of an inline link
// into its destination and title.
// titleMarker is zero if the link has no title.
//
//	[link](/uri) -> "/uri"
//	[link](</my uri>) -> "/my uri"
func findInlineURLAndTitle(link string) (url, title string, titleMarker byte) {
	_, end := lastBalancedBrackets(link, '[', ']', func(c byte) bool { return c == '(' })
	if end+1 > len(link)-1 {
		return "", "", 0
	}
	tail := strings.TrimSpace(link[end+1 : len(link)-1])
	if tail == "" {
		return "", "", 0
	}
	last := tail[len(tail)-1]
	return splitInlineURLFromTitle(tail, last == '"' || last == '\'' || last == ')')
}

func splitInlineURLFromTitle(s string, hasTitle bool) (url, title string, titleMarker byte) {
	hasSpace := strings.IndexFunc(s, unicode.IsSpace) >= 0
	if !hasTitle || !hasSpace {
		return trimAngleBrackets(s), "", 0
	}
	titleStart := linkTitleStart(s)
	if titleStart == 0 {
		// A title in place of a destination, like [link]("title").
		return trimAngleBrackets(s), "", 0
	}
	url = strings.TrimSpace(s[:titleStart])
	quoted := strings.TrimSpace(s[titleStart:])
	return trimAngleBrackets(url), quoted[1 : len(quoted)-1], quoted[len(quoted)-1]
}

// linkTitleStart returns the index of the unescaped character that opens
// the title at the end of s, or 0 if there is none.
func linkTitleStart(s string) int {
	last := s[len(s)-1]
	opener := last
	if last == ')' {
		opener = '('
	}
	for i := len(s) - 2; i > 1; i-- {
		if s[i] == opener && s[i-1] != '\\' {
			return i
		}
	}
	return 0
}

func trimAngleBrackets(url string) string {
	if len(url) >= 2 && strings.HasPrefix(url, "<") && strings.HasSuffix(url, ">") {
		return strings.TrimSpace(url[1 : len(url)-1])
	}
	return strings.TrimSpace(url)
}
