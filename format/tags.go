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

// slice returns input[start:end], or the empty string if end < start.
func (f *formatter) slice(start, end int) string {
	if end < start {
		return ""
	}
	return f.input[start:end]
}

func (f *formatter) startTag(e mdfmt.Event) {
	switch e.Tag.Kind {
	case mdfmt.TableHeadTag, mdfmt.TableRowTag, mdfmt.TableCellTag:
	default:
		f.rewriteRefDefs(f.lastPosition, e.Span.Start)
	}

	switch e.Tag.Kind {
	case mdfmt.ParagraphTag:
		if f.needsIndent {
			f.writeNewlines(f.countNewlines(e.Span))
			f.needsIndent = false
		}
		width := f.opts.maxWidth()
		f.pushWriter(&paragraphWriter{
			width:    max(0, width-f.indentationLen()),
			hasWidth: width > 0,
			reflow:   f.opts != nil && f.opts.ReflowText,
		})
	case mdfmt.HeadingTag:
		if f.needsIndent {
			f.writeNewlines(f.countNewlines(e.Span))
			f.needsIndent = false
		}
		// Setext headings span lines, so the indentation is held
		// by the writer until the heading is finished.
		full := strings.TrimSpace(f.input[e.Span.Start:e.Span.End])
		f.pushWriter(newHeaderWriter(f.takeIndentation(), full, e.Tag))
	case mdfmt.BlockQuoteTag:
		f.startBlockQuote(e)
	case mdfmt.CodeBlockTag:
		f.startCodeBlock(e)
	case mdfmt.ListTag:
		f.startList(e)
	case mdfmt.ItemTag:
		f.startItem(e)
	case mdfmt.FootnoteDefinitionTag:
		f.writeNewlines(f.countNewlines(e.Span))
		f.lastPosition = e.Span.Start
		next, _ := f.events.Peek()
		end := e.Span.End
		if !next.IsEnd(mdfmt.FootnoteDefinitionTag) {
			end = next.Span.Start
		}
		snippet := f.slice(e.Span.Start, end)
		colon := max(strings.IndexByte(snippet, ':'), 0)
		defs := parseLinkReferenceDefinitions(snippet[colon:], e.Span.Start+colon)
		f.write("[^" + e.Tag.Label + "]:")
		// Footnote content is written without the enclosing indentation
		// and indented as a whole once the definition ends.
		f.pushWriter(&footnoteWriter{indentation: f.takeIndentation()})
		f.writeRefDefs(defs)
	case mdfmt.EmphasisTag:
		f.rewriteMarker(e.Span, 1)
	case mdfmt.StrongTag:
		f.rewriteMarker(e.Span, 2)
	case mdfmt.StrikethroughTag:
		f.rewriteMarker(e.Span, 0)
	case mdfmt.LinkTag, mdfmt.ImageTag:
		if n := f.countNewlines(e.Span); f.needsIndent && n > 0 {
			f.writeNewlines(n)
			f.needsIndent = false
		}
		f.pushWriter(&linkWriter{
			isAuto: e.Tag.LinkType == mdfmt.AutoLink || e.Tag.LinkType == mdfmt.EmailLink,
		})
		f.pushContext(e.Tag)
	case mdfmt.TableTag:
		if f.needsIndent {
			f.writeNewlines(f.countNewlines(e.Span))
			f.needsIndent = false
		}
		f.write("|")
		f.pushWriter(newTableWriter(e.Tag.Alignments))
		f.pushIndent("|")
	case mdfmt.TableHeadTag:
		f.pushContext(e.Tag)
	case mdfmt.TableRowTag:
		f.pushContext(e.Tag)
		if t, ok := f.topWriter().(*tableWriter); ok {
			t.pushRow()
		}
	case mdfmt.TableCellTag:
		if next, ok := f.events.Peek(); ok && next.IsEnd(mdfmt.TableCellTag) {
			if t, ok := f.topWriter().(*tableWriter); ok {
				// Make sure the empty cell exists.
				t.writeString(textWrite, "")
			}
		}
	case mdfmt.HTMLBlockTag:
		if f.needsIndent {
			f.writeNewlines(f.countNewlines(e.Span))
		}
		f.pushContext(e.Tag)
		f.lastPosition = e.Span.Start
	case mdfmt.MetadataBlockTag:
		f.writeNewlines(f.countNewlines(e.Span))
		f.rewriteMarker(e.Span, 0)
		f.needsIndent = true
	case mdfmt.DefinitionListTag:
		newlines := f.countNewlines(e.Span)
		if f.lastEvent.IsEnd(mdfmt.ListTag) {
			// Otherwise the terms would continue the list's last item.
			newlines = max(newlines, 2)
		}
		f.writeNewlines(newlines)
		f.pushContext(e.Tag)
	case mdfmt.DefinitionListTitleTag:
		f.writeNewlines(f.countNewlines(e.Span))
		f.pushWriter(new(definitionTitleWriter))
	case mdfmt.DefinitionListDefinitionTag:
		f.startDefinition(e)
	default:
		panic("format: unhandled start " + e.Tag.String())
	}
}

func (f *formatter) startBlockQuote(e mdfmt.Event) {
	// Entering a nested quote: the outer marker loses its trailing space.
	if f.lastIndent() == "> " {
		f.setLastIndent(">")
	}
	newlines := f.countNewlines(e.Span)
	if f.needsIndent {
		f.writeNewlines(newlines)
		f.needsIndent = false
	}
	f.lastPosition = e.Span.Start
	f.pushContext(e.Tag)

	next, _ := f.events.Peek()
	switch {
	case next.IsEnd(mdfmt.BlockQuoteTag):
		defs := parseLinkReferenceDefinitions(f.input[e.Span.Start:e.Span.End], e.Span.Start)
		if len(defs) == 0 {
			f.write(">")
			f.pushIndent(">")
			return
		}
		f.write("> ")
		f.pushIndent("> ")
		f.writeRefDefs(defs)
		f.setLastIndent(">")
	case next.IsStart(mdfmt.BlockQuoteTag):
		snippet := f.slice(e.Span.Start, next.Span.Start)
		defs := parseLinkReferenceDefinitions(snippet, e.Span.Start)
		if len(defs) == 0 {
			f.write(">")
			f.pushIndent(">")
			f.writeNewlines(countNewlines(snippet))
			return
		}
		f.pushIndent("> ")
		if countNewlines(f.slice(e.Span.Start, defs[0].span().Start)) > 0 {
			f.write(">")
		} else {
			f.write("> ")
		}
		f.writeRefDefs(defs)
	default:
		defs := parseLinkReferenceDefinitions(f.slice(e.Span.Start, next.Span.Start), e.Span.Start)
		end := next.Span.Start
		if len(defs) > 0 {
			end = defs[0].span().Start
		}
		newlines := countNewlines(f.slice(f.lastPosition, end))
		f.pushIndent("> ")
		if newlines > 0 {
			f.write(">")
		} else {
			f.write("> ")
		}
		if len(defs) > 0 {
			f.writeRefDefs(defs)
		} else {
			f.writeNewlines(newlines)
		}
	}
}

func (f *formatter) startCodeBlock(e mdfmt.Event) {
	if n := f.countNewlines(e.Span); f.needsIndent && n > 0 {
		f.writeNewlines(n)
		f.needsIndent = false
	}
	if !e.Tag.Fenced {
		ind := f.indentedCodeIndent()
		if next, _ := f.events.Peek(); !next.IsEnd(mdfmt.CodeBlockTag) {
			f.write(ind)
		}
		f.pushIndent(ind)
		f.pushWriter(&codeBlockWriter{tag: e.Tag})
		return
	}

	f.rewriteMarker(e.Span, 0)
	if e.Tag.Info == "" {
		f.write("\n")
		f.pushWriter(&codeBlockWriter{tag: e.Tag})
		return
	}
	source := f.input[e.Span.Start:e.Span.End]
	marker := source[:1]
	afterMarker := strings.TrimLeft(source, marker)
	c, _ := utf8.DecodeRuneInString(afterMarker)
	info := strings.TrimSpace(strings.TrimLeft(lines(source)[0], marker))
	if afterMarker != "" && unicode.IsSpace(c) {
		f.write(" " + info + "\n")
	} else {
		f.write(info + "\n")
	}
	f.pushWriter(&codeBlockWriter{tag: e.Tag})
}

func (f *formatter) startList(e mdfmt.Event) {
	if f.needsIndent {
		snippet := f.input[e.Span.Start:e.Span.End]
		var newlines int
		if c, _ := utf8.DecodeRuneInString(snippet); snippet != "" && unicode.IsSpace(c) {
			markerStart := e.Span.Start + max(strings.IndexAny(snippet, "*+-0123456789"), 0)
			newlines = f.countNewlinesInRange(f.lastPosition, markerStart)
			// A "-" right below a paragraph would underline it as a Setext heading.
			if newlines < 2 && f.lastEvent.IsEnd(mdfmt.ParagraphTag) && strings.HasPrefix(f.input[markerStart:], "-") {
				newlines++
			}
		} else {
			newlines = f.countNewlines(e.Span)
		}
		f.writeNewlines(newlines)
		f.needsIndent = false
	}
	f.pushContext(e.Tag)

	var bullet byte
	if !e.Tag.Ordered && f.opts != nil && !f.opts.UnorderedListMarker.IsZero() {
		bullet = f.opts.UnorderedListMarker.Delim
		if f.lastEvent.IsEnd(mdfmt.ListTag) && f.lastBullet == bullet {
			// Adjacent lists with the same bullet would merge into one.
			bullet = alternateBullet(bullet)
		}
	}
	f.bullets = append(f.bullets, bullet)
}

func (f *formatter) startItem(e mdfmt.Event) {
	if n := f.countNewlines(e.Span); f.needsIndent && n > 0 {
		f.writeNewlines(n)
	}
	f.lastPosition = e.Span.Start

	source := f.input[e.Span.Start:e.Span.End]
	marker, err := parseListMarker(source)
	if err != nil {
		tracer().Errorf("format: %v", err)
		marker = ListMarker{Delim: '-'}
	}
	defs, end, next := f.refDefsBefore(e.Span, mdfmt.ItemTag)
	// An item is empty if its content starts on a following line.
	empty := countNewlines(f.slice(e.Span.Start, end)) > 0
	if next.IsEnd(mdfmt.ItemTag) && len(strings.TrimSpace(source)) == sourceMarkerLen(source) {
		empty = true
	}
	f.needsIndent = empty

	if n := len(f.bullets); n > 0 && f.bullets[n-1] != 0 && !marker.Ordered && next.Kind != mdfmt.RuleEvent {
		marker.Delim = f.bullets[n-1]
	}
	if empty {
		f.write(marker.String())
	} else {
		f.write(marker.String() + " ")
	}
	f.pushContext(e.Tag)
	f.pushIndent(marker.indentation())
	f.writeRefDefs(defs)
}

func (f *formatter) startDefinition(e mdfmt.Event) {
	f.writeNewlines(f.countNewlines(e.Span))
	f.lastPosition = e.Span.Start

	defs, end, next := f.refDefsBefore(e.Span, mdfmt.DefinitionListDefinitionTag)
	isEmpty := countNewlines(f.slice(e.Span.Start, end)) > 0
	empty, force := isEmpty, 0
	switch {
	case next.IsEnd(mdfmt.DefinitionListDefinitionTag):
		empty = isEmpty || len(defs) == 0
	case !isEmpty && len(defs) == 0 && next.IsStart(mdfmt.CodeBlockTag) && !next.Tag.Fenced:
		// An indented code block can't follow the marker on the same line.
		empty, force = true, 1
	}
	f.emptyDefinitionMarker = empty
	if empty {
		f.write(":")
	} else {
		f.write(": ")
	}
	f.pushContext(e.Tag)
	f.pushIndent(definitionIndent)
	if force > 0 {
		f.writeNewlines(force)
	}
	f.writeRefDefs(defs)
}

func (f *formatter) endTag(e mdfmt.Event) {
	switch e.Tag.Kind {
	case mdfmt.ParagraphTag:
		p := f.popWriter().(*paragraphWriter)
		f.joinWithIndentation(p.finish(), false)
	case mdfmt.HeadingTag:
		h := f.popWriter().(*headerWriter)
		s, ind := h.finish()
		if !h.isSetext() {
			s = strings.TrimLeftFunc(s, unicode.IsSpace)
			hashes := strings.Repeat("#", h.level)
			if s == "" {
				f.write(hashes)
			} else {
				f.write(hashes + " ")
			}
		}
		f.indentation = ind
		f.joinWithIndentation(s, false)
	case mdfmt.BlockQuoteTag:
		f.endBlockQuote(e)
	case mdfmt.CodeBlockTag:
		w := f.popWriter().(*codeBlockWriter)
		f.writeCodeBlock(w)
		if w.tag.Fenced {
			f.writeIndentation(false)
			f.rewriteMarker(e.Span, 0)
		} else {
			f.popIndent()
		}
	case mdfmt.ListTag:
		f.popContext()
		f.lastBullet = f.bullets[len(f.bullets)-1]
		f.bullets = f.bullets[:len(f.bullets)-1]
		if next, ok := f.events.Peek(); ok && next.IsStart(mdfmt.CodeBlockTag) && !next.Tag.Fenced {
			// An indented code block right after a list
			// would be read as part of the last item.
			f.writeNewlines(1)
			f.write("<!-- Don't absorb code block into list -->\n")
			f.writeIndentation(false)
			f.write("<!-- Consider a fenced code block instead -->")
		}
	case mdfmt.ItemTag:
		f.rewriteRefDefs(f.lastPosition, e.Span.End)
		if n := f.countNewlines(e.Span); f.needsIndent && n > 0 {
			f.writeNewlinesNoTrailingWhitespace(n)
		}
		f.popContext()
		f.popIndent()
		next, ok := f.events.Peek()
		f.needsIndent = ok && next.IsStart(mdfmt.ItemTag)
	case mdfmt.FootnoteDefinitionTag:
		f.rewriteRefDefs(f.lastPosition, e.Span.End)
		w := f.popWriter().(*footnoteWriter)
		f.indentation = w.indentation
		if !w.isEmpty() {
			f.write("\n")
			f.pushIndent(footnoteIndent)
			f.joinWithIndentation(w.buf.String(), true)
			f.popIndent()
		}
		if next, ok := f.events.Peek(); ok && next.IsStart(mdfmt.FootnoteDefinitionTag) {
			f.writeNewlines(1)
		}
	case mdfmt.EmphasisTag:
		f.rewriteMarker(e.Span, 1)
	case mdfmt.StrongTag:
		f.rewriteMarker(e.Span, 2)
	case mdfmt.StrikethroughTag:
		f.rewriteMarker(e.Span, 0)
	case mdfmt.LinkTag, mdfmt.ImageTag:
		f.endLink(e)
	case mdfmt.TableTag:
		t := f.popWriter().(*tableWriter)
		f.joinWithIndentation(t.format(), false)
		f.popIndent()
	case mdfmt.TableHeadTag, mdfmt.TableRowTag:
		f.popContext()
	case mdfmt.TableCellTag:
		if t, ok := f.topWriter().(*tableWriter); ok {
			t.nextCell()
		}
	case mdfmt.HTMLBlockTag:
		f.popContext()
	case mdfmt.MetadataBlockTag:
		f.rewriteMarker(e.Span, 0)
		f.needsIndent = true
	case mdfmt.DefinitionListTag:
		f.popContext()
	case mdfmt.DefinitionListTitleTag:
		w := f.popWriter().(*definitionTitleWriter)
		buf := w.buf.String()
		if needsEscape(buf).needed() {
			f.write(`\`)
		}
		f.joinWithIndentation(buf, false)
	case mdfmt.DefinitionListDefinitionTag:
		f.rewriteRefDefs(f.lastPosition, e.Span.End)
		f.popContext()
		f.popIndent()
		// Blank lines at the end of the definition.
		if n := f.countNewlinesInRange(f.lastPosition, e.Span.End); n > 0 {
			f.writeNewlinesNoTrailingWhitespace(n)
		}
	default:
		panic("format: unhandled end " + e.Tag.String())
	}
}

func (f *formatter) endBlockQuote(e mdfmt.Event) {
	f.rewriteRefDefs(f.lastPosition, e.Span.End)
	if n := f.countNewlinesInRange(f.lastPosition, e.Span.End); n > 0 {
		// Empty quote lines at the end.
		f.setLastIndent(">")
		f.writeNewlines(n)
	}
	f.popContext()
	popped := f.popIndent()
	if f.lastIndent() == ">" {
		f.setLastIndent(popped)
	}
	if next, ok := f.events.Peek(); ok && !next.IsEnd(mdfmt.BlockQuoteTag) && f.lastIndent() == ">" {
		f.setLastIndent("> ")
	}
}

func (f *formatter) endLink(e mdfmt.Event) {
	w := f.popWriter().(*linkWriter)
	tag := f.popContext()
	switch {
	case tag.Kind == mdfmt.ImageTag:
		f.write("![")
	case w.isAuto:
		f.write("<")
	default:
		f.write("[")
	}
	f.write(w.finish())

	text := f.input[e.Span.Start:e.Span.End]
	switch tag.LinkType {
	case mdfmt.InlineLink:
		url, title, titleMarker := findInlineURLAndTitle(text)
		if url == "" && titleMarker == 0 {
			url = tag.Destination
			if tag.Title != "" {
				title, titleMarker = tag.Title, '"'
			}
		}
		f.write(inlineLinkTail(url, title, titleMarker))
	case mdfmt.ReferenceLink:
		label := findReferenceLinkLabel(text)
		if countNewlines(label) == 0 {
			if strings.HasPrefix(label, "^") {
				f.write(`][\` + label + "]")
			} else {
				f.write("][" + label + "]")
			}
			return
		}
		ls := splitLines(string(lineEndingReplacer.Replace([]byte(label))))
		for i, line := range ls {
			ls[i] = f.trimLeadingIndentation(line)
		}
		label = strings.Join(ls, "\n")
		f.write("][")
		if strings.HasPrefix(label, "^") {
			f.write(`\`)
		}
		f.write(label)
		f.write("]")
	case mdfmt.CollapsedLink:
		f.write("][]")
	case mdfmt.ShortcutLink:
		f.write("]")
		// "[foo]:" would start a reference definition.
		next, ok := f.events.Peek()
		if ok && next.Kind == mdfmt.TextEvent && strings.HasPrefix(next.Text, ":") &&
			!sequenceEndsOnEscape(f.slice(e.Span.End, next.Span.Start)) {
			f.write(`\`)
		}
	case mdfmt.AutoLink, mdfmt.EmailLink:
		f.write(">")
	}
}
