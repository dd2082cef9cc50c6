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

	"zombiezen.com/go/mdfmt"
)

// A linkReferenceDefinition is a definition like:
//
//	[label]: /destination "title"
//
// The tokenizer resolves definitions without reporting them,
// so the formatter recovers them from the source between events.
type linkReferenceDefinition struct {
	label       linkLines
	destination linkDestination
	// title is nil if the definition has no title.
	title *linkTitle
}

// span returns the region of source the definition was parsed from,
// starting at the first label character.
func (def *linkReferenceDefinition) span() mdfmt.Span {
	span := mdfmt.Span{Start: def.label.span().Start}
	if def.title != nil {
		// Include the closing marker.
		span.End = def.title.lines.span().End + 1
	} else {
		span.End = def.destination.span.End
	}
	return span
}

// String returns the definition in canonical form.
func (def *linkReferenceDefinition) String() string {
	sb := new(strings.Builder)
	sb.WriteString("[")
	sb.WriteString(def.label.String())
	sb.WriteString("]: ")
	if def.destination.bracketed {
		sb.WriteString("<")
		sb.WriteString(def.destination.text)
		sb.WriteString(">")
	} else {
		sb.WriteString(def.destination.text)
	}
	if def.title != nil {
		sb.WriteString(" ")
		sb.WriteByte(def.title.marker)
		sb.WriteString(def.title.lines.String())
		sb.WriteByte(titleCloser(def.title.marker))
	}
	return sb.String()
}

type linkDestination struct {
	text string
	// bracketed is true for destinations written like "<url>".
	bracketed bool
	span      mdfmt.Span
}

type linkTitle struct {
	// marker is the opening character: '"', '\'' or '('.
	marker byte
	lines  linkLines
}

func titleCloser(marker byte) byte {
	if marker == '(' {
		return ')'
	}
	return marker
}

// linkLine is one source line of a label or title.
type linkLine struct {
	text string
	span mdfmt.Span
}

// linkLines is a label or title that may span several lines.
type linkLines []linkLine

func (ll linkLines) span() mdfmt.Span {
	if len(ll) == 0 {
		return mdfmt.NullSpan()
	}
	return mdfmt.Span{Start: ll[0].span.Start, End: ll[len(ll)-1].span.End}
}

// String joins the lines into a single line.
func (ll linkLines) String() string {
	sb := new(strings.Builder)
	for i, line := range ll {
		text := strings.TrimSpace(line.text)
		if text == "" {
			continue
		}
		switch {
		case i < len(ll)-1:
			sb.WriteString(text)
			sb.WriteString(" ")
		case sequenceEndsOnEscape(text):
			// Keep the closing bracket or quote from being escaped.
			sb.WriteString(text)
			sb.WriteString(`\`)
		default:
			sb.WriteString(text)
		}
	}
	return strings.TrimSpace(sb.String())
}

type refDefBuilder struct {
	label       linkLines
	destination *linkDestination
	title       *linkTitle
}

func (b *refDefBuilder) addLabel(text string, start, end int) {
	if len(b.label) == 0 && strings.HasPrefix(text, "^") {
		// Keep the label from being read as a footnote definition.
		text = `\` + text
	}
	b.label = append(b.label, linkLine{text: text, span: mdfmt.Span{Start: start, End: end}})
}

func (b *refDefBuilder) setDestination(text string, bracketed bool, start, end int) {
	b.destination = &linkDestination{
		text:      text,
		bracketed: bracketed,
		span:      mdfmt.Span{Start: start, End: end},
	}
}

func (b *refDefBuilder) addTitle(marker byte, text string, start, end int) {
	line := linkLine{text: text, span: mdfmt.Span{Start: start, End: end}}
	if b.title == nil {
		b.title = &linkTitle{marker: marker}
	}
	b.title.lines = append(b.title.lines, line)
}

func (b *refDefBuilder) build() (linkReferenceDefinition, bool) {
	if len(b.label) == 0 || b.destination == nil {
		return linkReferenceDefinition{}, false
	}
	return linkReferenceDefinition{
		label:       b.label,
		destination: *b.destination,
		title:       b.title,
	}, true
}

// parseLinkReferenceDefinitions parses all the definitions in input.
// offset is the position of input in the document
// and is added to the spans of the returned definitions.
func parseLinkReferenceDefinitions(input string, offset int) []linkReferenceDefinition {
	var defs []linkReferenceDefinition
	for {
		def, n, ok := parseLinkReferenceDefinition(input, offset)
		if !ok {
			return defs
		}
		defs = append(defs, def)
		if n <= 0 {
			return defs
		}
		offset += n
		input = input[n:]
	}
}

type refDefPhase uint8

const (
	findOpeningBracketPhase refDefPhase = iota
	labelPhase
	colonPhase
	urlStartPhase
	urlPhase
	titleStartPhase
	titlePhase
	// newlinePhase eats indentation after a line break
	// inside a label or title.
	newlinePhase
)

type indexedRune struct {
	i int
	c rune
}

// parseLinkReferenceDefinition parses the first definition in input.
// It returns the definition and the number of bytes of input it consumed.
func parseLinkReferenceDefinition(input string, offset int) (_ linkReferenceDefinition, parsedUntil int, ok bool) {
	runes := make([]indexedRune, 0, len(input))
	for i, c := range input {
		runes = append(runes, indexedRune{i, c})
	}
	peek := func(k int) (indexedRune, bool) {
		if k+1 >= len(runes) {
			return indexedRune{}, false
		}
		return runes[k+1], true
	}

	b := new(refDefBuilder)
	phase := findOpeningBracketPhase
	newlineInTitle := false
	var urlStart rune
	var titleMarker byte
	start := 0
	newlines := 0
	whitespace := 0
	escaped := false

	k := 0
loop:
	for ; k < len(runes); k++ {
		idx, c := runes[k].i, runes[k].c
		switch phase {
		case findOpeningBracketPhase:
			if c != '[' {
				continue
			}
			next, ok := peek(k)
			if !ok {
				return linkReferenceDefinition{}, 0, false
			}
			start = next.i
			phase = labelPhase
		case labelPhase:
			if c == '\n' {
				b.addLabel(input[start:idx], offset+start, offset+idx)
				next, ok := peek(k)
				if !ok {
					return linkReferenceDefinition{}, 0, false
				}
				if next.c != ']' {
					phase = newlinePhase
					newlineInTitle = false
				}
				start = next.i
				continue
			}
			if c != ']' || escaped {
				escaped = isCharEscaped(c, escaped)
				continue
			}
			b.addLabel(input[start:idx], offset+start, offset+idx)
			phase = colonPhase
			parsedUntil = idx
			escaped = false
		case colonPhase:
			if c != ':' {
				continue
			}
			phase = urlStartPhase
			parsedUntil = idx
		case newlinePhase:
			important := false
			if next, ok := peek(k); ok {
				if newlineInTitle {
					important = next.c == rune(titleMarker) || next.c == rune(titleCloser(titleMarker))
				} else {
					important = next.c == ']'
				}
			}
			if !important && (unicode.IsSpace(c) || c == '>') {
				continue
			}
			start = idx
			if newlineInTitle {
				phase = titlePhase
			} else {
				phase = labelPhase
			}
		case urlStartPhase:
			if c == '\n' {
				newlines++
				whitespace = 0
				parsedUntil = idx
				// At most one line ending may separate the colon from the destination.
				if newlines > 1 {
					break loop
				}
				continue
			}
			if unicode.IsSpace(c) {
				whitespace++
				continue
			}
			if newlines > 0 && c == '>' && whitespace < 4 {
				// Block quote marker.
				whitespace = 0
				continue
			}
			if _, ok := peek(k); !ok {
				b.setDestination(input[idx:], false, offset+idx, offset+len(input))
				parsedUntil = len(input)
				break loop
			}
			start = idx
			urlStart = c
			phase = urlPhase
			parsedUntil = idx
			newlines = 0
			whitespace = 0
		case urlPhase:
			if urlStart == '<' {
				if c != '>' || escaped {
					escaped = isCharEscaped(c, escaped)
					continue
				}
				b.setDestination(input[start+1:idx], true, offset+start, offset+idx)
				if _, ok := peek(k); !ok {
					parsedUntil = len(input)
					break loop
				}
				parsedUntil = idx
				phase = titleStartPhase
				continue
			}
			if !unicode.IsSpace(c) {
				if _, ok := peek(k); !ok {
					b.setDestination(input[start:], false, offset+start, offset+len(input))
					parsedUntil = len(input)
					break loop
				}
				continue
			}
			if c == '\n' {
				newlines++
			}
			b.setDestination(input[start:idx], false, offset+start, offset+idx)
			phase = titleStartPhase
			parsedUntil = idx
		case titleStartPhase:
			if c == '\n' {
				newlines++
				// At most one line ending may separate the destination from the title.
				if newlines > 1 {
					parsedUntil = idx
					break loop
				}
			}
			if unicode.IsSpace(c) || c == '>' {
				continue
			}
			if c != '"' && c != '\'' && c != '(' {
				parsedUntil = idx
				break loop
			}
			next, ok := peek(k)
			if !ok {
				return linkReferenceDefinition{}, 0, false
			}
			start = next.i
			titleMarker = byte(c)
			phase = titlePhase
			parsedUntil = idx
		case titlePhase:
			closer := rune(titleCloser(titleMarker))
			if c == '\n' {
				b.addTitle(titleMarker, input[start:idx], offset+start, offset+idx)
				next, ok := peek(k)
				if !ok {
					return linkReferenceDefinition{}, 0, false
				}
				if next.c != closer {
					phase = newlinePhase
					newlineInTitle = true
				}
				start = next.i
				continue
			}
			if c != closer || escaped {
				escaped = isCharEscaped(c, escaped)
				continue
			}
			b.addTitle(titleMarker, input[start:idx], offset+start, offset+idx)
			parsedUntil = idx
			break loop
		}
	}

	if b.title != nil {
		// A title can only be followed by whitespace on its line.
		for k++; k < len(runes); k++ {
			idx, c := runes[k].i, runes[k].c
			if c == '\n' {
				parsedUntil = idx + 1
				break
			}
			if !unicode.IsSpace(c) {
				b.title = nil
				parsedUntil = idx
				break
			}
		}
	}

	def, ok := b.build()
	if !ok {
		return linkReferenceDefinition{}, 0, false
	}
	return def, parsedUntil, true
}
