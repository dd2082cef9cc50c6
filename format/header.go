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

	"zombiezen.com/go/mdfmt"
)

// headerWriter collects the content of a heading.
type headerWriter struct {
	buf strings.Builder
	// indentation is the enclosing indentation,
	// held so Setext underlines are not indented twice.
	indentation []string
	level       int
	// setextMarker is the underline of a Setext heading
	// or empty for ATX headings.
	setextMarker    string
	attrsOnOwnLine  bool
	attrs           *mdfmt.Attributes
	emptyAttributes bool
}

func newHeaderWriter(indentation []string, fullHeader string, tag mdfmt.Tag) *headerWriter {
	h := &headerWriter{
		indentation:     indentation,
		level:           tag.Level,
		attrs:           tag.Attributes,
		emptyAttributes: tag.EmptyAttributes,
	}
	trimMarkers := func(s string) string {
		return strings.TrimLeftFunc(s, func(c rune) bool { return unicode.IsSpace(c) || c == '>' })
	}
	if strings.ContainsAny(fullHeader, "\r\n") && strings.ContainsAny(fullHeader[len(fullHeader)-1:], "=-") && tag.Level <= 2 {
		ls := lines(fullHeader)
		last := ls[len(ls)-1]
		if i := strings.LastIndexByte(last, '\r'); i >= 0 {
			last = last[i+1:]
		}
		h.setextMarker = strings.TrimRightFunc(trimMarkers(last), unicode.IsSpace)
	}
	for _, line := range lines(fullHeader) {
		if strings.HasPrefix(trimMarkers(line), "{") {
			h.attrsOnOwnLine = true
			break
		}
	}
	return h
}

func (h *headerWriter) writeString(_ writeKind, s string) { h.buf.WriteString(s) }
func (h *headerWriter) isEmpty() bool                     { return h.buf.Len() == 0 }

func (h *headerWriter) isSetext() bool {
	return h.setextMarker != ""
}

// finish returns the heading content, without any ATX opening sequence,
// along with the indentation held by the writer.
func (h *headerWriter) finish() (string, []string) {
	s := h.buf.String()
	if !h.isSetext() && strings.HasSuffix(strings.TrimRightFunc(s, unicode.IsSpace), "#") {
		// A trailing run of '#' would be read as a closing sequence.
		if !h.attrs.IsEmpty() {
			s = escapeTrailingHashes(s)
		} else {
			s = removeTrailingHashes(s)
		}
	}
	if h.emptyAttributes && h.attrs.IsEmpty() {
		if strings.TrimSpace(s) == "" {
			s = "{}"
		} else {
			s += " {}"
		}
	}
	s = h.escapeTrailingEmptyAttributes(s)
	s = h.appendAttributes(s)
	if h.isSetext() {
		if s == "" {
			// An empty Setext heading would read as a paragraph.
			s = `\`
		}
		s += "\n" + h.setextMarker + "\n"
	}
	return s, h.indentation
}

func removeTrailingHashes(s string) string {
	snippet := strings.TrimRight(strings.TrimRightFunc(s, unicode.IsSpace), "#")
	last, _ := utf8.DecodeLastRuneInString(snippet)
	noSpace := snippet != "" && !unicode.IsSpace(last)
	if sequenceEndsOnEscape(snippet) || noSpace {
		return s
	}
	return strings.TrimRightFunc(s, func(c rune) bool { return unicode.IsSpace(c) || c == '#' })
}

func escapeTrailingHashes(s string) string {
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	body := strings.TrimRight(s, "#")
	if sequenceEndsOnEscape(body) {
		return s
	}
	return body + `\` + s[len(body):]
}

// escapeTrailingEmptyAttributes escapes a trailing "{}"
// so it is not read as an attribute block.
func (h *headerWriter) escapeTrailingEmptyAttributes(s string) string {
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	lastLine := s
	if h.isSetext() {
		if i := strings.LastIndexAny(s, "\r\n"); i >= 0 {
			lastLine = s[i+1:]
		}
	}
	var tail []rune
	for _, c := range lastLine {
		if !unicode.IsSpace(c) {
			tail = append(tail, c)
		}
	}
	if len(tail) < 2 || tail[len(tail)-1] != '}' || tail[len(tail)-2] != '{' {
		return s
	}
	open := strings.LastIndexByte(s, '{')
	if sequenceEndsOnEscape(s[:open]) {
		return s[:open] + `{\}`
	}
	return s[:open] + `\{\}`
}

// appendAttributes writes the attribute block in the order id, classes, attributes.
func (h *headerWriter) appendAttributes(s string) string {
	if h.attrs.IsEmpty() {
		return s
	}
	switch {
	case h.attrsOnOwnLine && h.isSetext():
		if !strings.HasSuffix(s, "\n") {
			s += "\n"
		}
	case s != "" && !sequenceEndsOnEscape(s):
		s += " "
	}
	return s + formatAttributes(h.attrs)
}

func formatAttributes(attrs *mdfmt.Attributes) string {
	var parts []string
	if attrs.ID != "" {
		parts = append(parts, "#"+attrs.ID)
	}
	for _, c := range attrs.Classes {
		parts = append(parts, "."+c)
	}
	for _, a := range attrs.Attrs {
		parts = append(parts, a.Key+"="+quoteAttributeValue(a.Value))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func quoteAttributeValue(v string) string {
	if isBareAttributeValue(v) {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
}

func isBareAttributeValue(v string) bool {
	if v == "" {
		return false
	}
	for i, c := range v {
		switch {
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '_' || c == '-'):
		default:
			return false
		}
	}
	return true
}
