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

	"go4.org/bytereplacer"
	"zombiezen.com/go/mdfmt"
)

// definitionIndent is the indentation of a definition list definition's content.
const definitionIndent = "  "

var lineEndingReplacer = bytereplacer.New("\r\n", "\n", "\r", "\n")

// formatter rewrites a single document.
// Text is written to the innermost writer in writers,
// or to out if there is none.
type formatter struct {
	input  string
	opts   *Options
	events *peeker

	out     builderWriter
	writers []subWriter
	// indentation is written at the start of every line.
	indentation []string
	// context is the stack of open containers that affect
	// how line breaks are written.
	context []mdfmt.Tag

	// needsIndent is set when the next block must be preceded
	// by line breaks and indentation.
	needsIndent bool
	// lastPosition is the offset in input
	// just past the last source text that was rewritten.
	lastPosition     int
	lastEvent        mdfmt.Event
	lastWasSoftBreak bool
	// emptyDefinitionMarker is set when the current definition's
	// ":" marker is on a line by itself.
	emptyDefinitionMarker bool

	// bullets holds the bullet chosen for each open list,
	// or zero if the list keeps its own markers.
	bullets    []byte
	lastBullet byte
}

func newFormatter(source []byte, opts *Options) *formatter {
	return &formatter{
		input:  string(source),
		opts:   opts,
		events: pipeline(source),
	}
}

// run formats the whole document and returns the result.
func (f *formatter) run() string {
	for {
		e, ok := f.events.Next()
		if !ok {
			break
		}
		tracer().Debugf("format: %v last=%d", e, f.lastPosition)
		f.event(e)
	}
	if len(f.context) > 0 || len(f.writers) > 0 {
		panic("format: unbalanced events")
	}

	trailingNewline := false
	if i := strings.LastIndexFunc(f.input, func(c rune) bool { return !unicode.IsSpace(c) }); i >= 0 {
		trailingNewline = strings.ContainsAny(f.input[i:], "\r\n")
	}
	f.rewriteRefDefs(f.lastPosition, len(f.input))
	output := strings.TrimRight(f.out.String(), "\r\n")
	if trailingNewline {
		output += "\n"
	}
	return output
}

func (f *formatter) event(e mdfmt.Event) {
	lastPos := e.Span.End
	if e.Kind != mdfmt.HardBreakEvent {
		lastPos = len(strings.TrimRightFunc(f.input[:e.Span.End], func(c rune) bool {
			return c < 0x80 && isASCIIWhitespace(byte(c))
		}))
	}

	switch e.Kind {
	case mdfmt.StartEvent:
		lastPos = e.Span.Start
		f.startTag(e)
		// Recovering reference definitions moves lastPosition forward.
		lastPos = max(lastPos, f.lastPosition)
	case mdfmt.EndEvent:
		f.endTag(e)
		f.checkNeedsIndent(e)
	case mdfmt.TextEvent:
		lastPos = e.Span.End
		f.text(e)
		f.checkNeedsIndent(e)
	case mdfmt.CodeEvent:
		snippet := f.input[e.Span.Start:e.Span.End]
		if countNewlines(snippet) > 0 {
			// Markers are written separately so they are never escaped.
			f.rewriteMarker(e.Span, 0)
			f.rewriteMultiline(strings.Trim(snippet, "`"))
			f.rewriteMarker(e.Span, 0)
		} else {
			f.write(snippet)
		}
	case mdfmt.InlineHTMLEvent:
		f.rewriteMultiline(f.input[e.Span.Start:e.Span.End])
	case mdfmt.SoftBreakEvent:
		lastPos = e.Span.End
		f.writeKind(softBreakWrite, "\n")
		// Paragraphs write their indentation once their text is wrapped.
		if !f.inParagraph() && !f.inDefinitionTitle() && !f.inLinkOrImage() {
			f.writeIndentation(false)
		}
	case mdfmt.HardBreakEvent:
		f.writeKind(hardBreakWrite, normalizeHardBreak(f.input[e.Span.Start:e.Span.End]))
	case mdfmt.HTMLEvent:
		newlines := f.countNewlines(e.Span)
		if f.needsIndent {
			f.writeNewlines(newlines)
		}
		f.write(strings.TrimRightFunc(f.input[e.Span.Start:e.Span.End], unicode.IsSpace))
		f.checkNeedsIndent(e)
	case mdfmt.RuleEvent:
		f.rewriteRefDefs(f.lastPosition, e.Span.Start)
		f.writeNewlines(f.countNewlines(e.Span))
		f.write(strings.TrimRightFunc(f.input[e.Span.Start:e.Span.End], unicode.IsSpace))
		f.checkNeedsIndent(e)
	case mdfmt.FootnoteReferenceEvent:
		f.write("[^" + e.Text + "]")
	case mdfmt.TaskListMarkerEvent:
		if e.Checked {
			f.write("[x] ")
		} else {
			f.write("[ ] ")
		}
	}

	f.lastWasSoftBreak = e.Kind == mdfmt.SoftBreakEvent
	f.lastPosition = lastPos
	f.lastEvent = e
}

func normalizeHardBreak(s string) string {
	switch s {
	case "\\\r", "\\\r\n", "\\\n":
		return "\\\n"
	case "  \r", "  \r\n", "  \n":
		return hardBreak
	}
	if strings.HasPrefix(s, `\`) {
		return "\\\n"
	}
	if strings.TrimRight(s, " \t\r\n") == "" {
		return hardBreak
	}
	return s
}

func (f *formatter) text(e mdfmt.Event) {
	if _, ok := f.topWriter().(*codeBlockWriter); ok {
		f.write(e.Text)
		return
	}

	before := f.input[:e.Span.Start]
	startsWithEscape := !strings.HasSuffix(before, "\n") && sequenceEndsOnEscape(lastLine(before))
	newlines := f.countNewlines(e.Span)
	text := f.input[e.Span.Start:e.Span.End]
	if text == "" || f.inHTMLBlock() {
		text = e.Text
	}
	if f.needsIndent {
		f.writeNewlines(newlines)
		f.needsIndent = false
	}

	afterSoftBreak := f.lastWasSoftBreak
	esc := f.needsEscape(text, false)
	switch {
	case esc.isMulti() && !startsWithEscape:
		f.writeKind(escapeWrite, esc.apply(text))
	case startsWithEscape ||
		f.couldBeHTML(text, afterSoftBreak) ||
		f.shouldEscapeEscape(text, e.Span) ||
		f.inTable() && strings.HasPrefix(text, "|"):
		f.writeKind(escapeWrite, `\`+text)
	case esc.needed():
		f.writeKind(escapeWrite, esc.prefix(text))
	default:
		f.writeKind(textWrite, text)
	}
}

// couldBeHTML reports whether t would be read as HTML
// once line breaks and indentation are rewritten.
func (f *formatter) couldBeHTML(t string, afterSoftBreak bool) bool {
	if afterSoftBreak {
		if next, ok := f.events.Peek(); t == "<" && ok && next.Kind == mdfmt.TextEvent && startsWithHTMLBlockIdentifier(next.Text) {
			return true
		}
		if couldStartHTMLBlock(t) {
			return true
		}
	}
	if !f.inBlockQuote() {
		return false
	}
	// A "<" at the end of a line followed by "!" on the next
	// forms "<!" once the ">" marker is written between them.
	lastWasLT := f.lastEvent.Kind == mdfmt.TextEvent && strings.HasSuffix(f.lastEvent.Text, "<")
	return lastWasLT && strings.HasPrefix(t, "!")
}

// shouldEscapeEscape reports whether a run of backslashes before a soft break
// would be read as a hard break.
func (f *formatter) shouldEscapeEscape(t string, span mdfmt.Span) bool {
	if !f.inParagraph() && !f.isCurrentEmpty() || strings.Trim(t, `\`) != "" {
		return false
	}
	if next, ok := f.events.Peek(); !ok || next.Kind != mdfmt.SoftBreakEvent {
		return false
	}
	before := f.input[:span.End]
	return before != "" && sequenceEndsOnEscape(lastLine(before))
}

// needsEscape reports how text must be escaped.
// Text that is not inline only needs escaping at the start of a line.
func (f *formatter) needsEscape(text string, inline bool) escape {
	if text == "" {
		return escape{}
	}
	if !inline {
		if !f.lastWasSoftBreak {
			return escape{}
		}
		f.lastWasSoftBreak = false
		if text[0] == ':' {
			return escape{kind: escapeDefinitionMarker, marker: ':'}
		}
		if len(text) <= 2 {
			if isHeadingRun(text) {
				return escape{kind: escapeATXHeading, marker: '#'}
			}
			return escape{}
		}
	}
	return needsEscape(text)
}

func (f *formatter) checkNeedsIndent(e mdfmt.Event) {
	next, ok := f.events.Peek()
	switch {
	case ok && (next.Kind == mdfmt.StartEvent || next.Kind == mdfmt.RuleEvent ||
		next.Kind == mdfmt.HTMLEvent || next.IsEnd(mdfmt.ItemTag)):
		f.needsIndent = true
	case ok && next.IsEnd(mdfmt.BlockQuoteTag):
		f.needsIndent = e.Kind == mdfmt.EndEvent
	case ok && next.Kind == mdfmt.TextEvent:
		f.needsIndent = e.Kind == mdfmt.EndEvent || e.IsStart(mdfmt.ItemTag)
	default:
		f.needsIndent = e.Kind == mdfmt.RuleEvent
	}
}

// Writing

func (f *formatter) topWriter() subWriter {
	if n := len(f.writers); n > 0 {
		return f.writers[n-1]
	}
	return nil
}

func (f *formatter) current() subWriter {
	if w := f.topWriter(); w != nil {
		return w
	}
	return &f.out
}

func (f *formatter) pushWriter(w subWriter) {
	f.writers = append(f.writers, w)
}

func (f *formatter) popWriter() subWriter {
	w := f.writers[len(f.writers)-1]
	f.writers = f.writers[:len(f.writers)-1]
	return w
}

func (f *formatter) write(s string) {
	f.current().writeString(textWrite, s)
}

func (f *formatter) writeKind(kind writeKind, s string) {
	f.current().writeString(kind, s)
}

func (f *formatter) isCurrentEmpty() bool {
	return f.current().isEmpty()
}

// rewriteMarker copies the run of marker characters at the start of span,
// like "**" or "```". If limit is positive, at most limit characters are written.
func (f *formatter) rewriteMarker(span mdfmt.Span, limit int) {
	if span.Start >= len(f.input) {
		return
	}
	c := f.input[span.Start]
	end := span.Start
	for end < span.End && end < len(f.input) && f.input[end] == c {
		end++
	}
	if limit > 0 {
		end = min(end, span.Start+limit)
	}
	f.write(f.input[span.Start:end])
}

// Context

func (f *formatter) pushContext(tag mdfmt.Tag) {
	f.context = append(f.context, tag)
}

func (f *formatter) popContext() mdfmt.Tag {
	tag := f.context[len(f.context)-1]
	f.context = f.context[:len(f.context)-1]
	return tag
}

func (f *formatter) topContext() mdfmt.TagKind {
	if n := len(f.context); n > 0 {
		return f.context[n-1].Kind
	}
	return 0
}

func (f *formatter) inBlockQuote() bool {
	for _, tag := range f.context {
		if tag.Kind == mdfmt.BlockQuoteTag {
			return true
		}
	}
	return false
}

func (f *formatter) inLinkOrImage() bool {
	k := f.topContext()
	return k == mdfmt.LinkTag || k == mdfmt.ImageTag
}

func (f *formatter) inHTMLBlock() bool {
	return f.topContext() == mdfmt.HTMLBlockTag
}

func (f *formatter) inDefinition() bool {
	return f.topContext() == mdfmt.DefinitionListDefinitionTag
}

func (f *formatter) inParagraph() bool {
	_, ok := f.topWriter().(*paragraphWriter)
	return ok
}

func (f *formatter) inDefinitionTitle() bool {
	_, ok := f.topWriter().(*definitionTitleWriter)
	return ok
}

func (f *formatter) inTable() bool {
	_, ok := f.topWriter().(*tableWriter)
	return ok
}

func (f *formatter) isNested() bool {
	return len(f.context) > 0
}

// Indentation

func (f *formatter) pushIndent(s string) {
	f.indentation = append(f.indentation, s)
}

func (f *formatter) popIndent() string {
	s := f.indentation[len(f.indentation)-1]
	f.indentation = f.indentation[:len(f.indentation)-1]
	return s
}

func (f *formatter) setLastIndent(s string) {
	if n := len(f.indentation); n > 0 {
		f.indentation[n-1] = s
	}
}

func (f *formatter) lastIndent() string {
	if n := len(f.indentation); n > 0 {
		return f.indentation[n-1]
	}
	return ""
}

// takeIndentation removes the indentation so that it can be
// held by a writer and restored later.
func (f *formatter) takeIndentation() []string {
	ind := f.indentation
	f.indentation = nil
	return ind
}

func (f *formatter) indentationLen() int {
	n := 0
	for _, ind := range f.indentation {
		n += len(ind)
	}
	return n
}

func (f *formatter) indentedCodeIndent() string {
	if f.emptyDefinitionMarker && f.inDefinition() {
		return "   "
	}
	return "    "
}

// writeIndentation writes the indentation for a new line.
// If trim is true, trailing whitespace-only indents are left out
// so that blank lines have no trailing whitespace.
func (f *formatter) writeIndentation(trim bool) {
	n := len(f.indentation)
	last := -1
	if trim {
		for i := len(f.indentation) - 1; i >= 0; i-- {
			if !isBlank(f.indentation[i]) {
				last = i
				break
			}
		}
		if last < 0 {
			return
		}
		n = last + 1
	}
	for i, ind := range f.indentation[:n] {
		if i == last {
			ind = strings.TrimSpace(ind)
		}
		f.write(ind)
	}
}

// Line breaks

func (f *formatter) countNewlinesInRange(start, end int) int {
	if start >= end {
		return 0
	}
	return countNewlines(trimLineEndings(f.input[start:end]))
}

// countNewlines counts the line breaks between
// the last rewritten position and span.
func (f *formatter) countNewlines(span mdfmt.Span) int {
	switch {
	case f.lastPosition == span.Start:
		return 0
	case f.lastPosition < span.Start:
		return countNewlines(f.input[f.lastPosition:span.Start])
	case f.lastPosition < span.End:
		return countNewlines(trimLineEndings(f.input[f.lastPosition:span.End]))
	default:
		return 0
	}
}

func (f *formatter) writeNewlines(n int) {
	if n == 0 {
		return
	}
	f.writeNewlinesInner(n, false)
}

func (f *formatter) writeNewlinesNoTrailingWhitespace(n int) {
	f.writeNewlinesInner(n, true)
}

// writeNewlinesInner ends the current line so that there are
// maxNewlines line breaks at the end of the output, then indents the next line.
func (f *formatter) writeNewlinesInner(maxNewlines int, alwaysTrim bool) {
	// Tables lay out their own rows.
	if f.isCurrentEmpty() || f.inTable() {
		return
	}
	out := f.out.String()
	newlines := 0
	for i := len(out) - 1; i >= 0 && (out[i] == '\n' || out[i] == '\r'); i-- {
		newlines++
	}
	nested := f.isNested()
	toWrite := max(maxNewlines-newlines, 0)
	next, ok := f.events.Peek()
	nextIsEnd := ok && next.Kind == mdfmt.EndEvent
	for i := 0; i < toWrite; i++ {
		isLast := i == toWrite-1
		f.write("\n")
		if nested {
			f.writeIndentation(!isLast || alwaysTrim)
		}
	}
	if !nested {
		f.writeIndentation(nextIsEnd || alwaysTrim)
	}
}

// joinWithIndentation writes the lines of buf, indenting every line after the first.
// If startWithIndent is true, the first line is indented as well.
func (f *formatter) joinWithIndentation(buf string, startWithIndent bool) {
	ls := lines(strings.TrimRightFunc(buf, unicode.IsSpace))
	for i, line := range ls {
		isLast := i == len(ls)-1
		if startWithIndent {
			f.writeIndentation(isBlank(line))
		}
		if !isBlank(line) {
			f.write(line)
		}
		if !isLast {
			f.write("\n")
			if !startWithIndent {
				f.writeIndentation(isBlank(ls[i+1]))
			}
		}
	}
}

// trimLeadingIndentation removes the whitespace and block quote markers
// the current indentation would add to the start of s.
func (f *formatter) trimLeadingIndentation(s string) string {
	out := strings.TrimLeftFunc(s, unicode.IsSpace)
	for _, ind := range f.indentation {
		if strings.HasPrefix(ind, ">") {
			out = strings.TrimPrefix(out, ">")
		}
		out = strings.TrimLeftFunc(out, unicode.IsSpace)
	}
	return out
}

// rewriteMultiline writes an inline construct that spans several lines,
// like a code span or an inline HTML tag.
// A continuation line that would start a block is joined to the line before it,
// since backslash escapes have no effect in code or HTML.
func (f *formatter) rewriteMultiline(snippet string) {
	ls := splitLines(snippet)
	for i, s := range ls {
		line := s
		if i > 0 {
			// The first line continues the line the construct opened on.
			line = f.trimLeadingIndentation(s)
		}
		trailing := strings.Repeat(" ", countTrailingSpaces(line))
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		if i > 0 {
			if f.needsEscape(line, true).needed() {
				f.write(" ")
			} else {
				f.writeKind(softBreakWrite, "\n")
			}
		}
		f.write(line + trailing)
	}
	if len(ls) > 0 && strings.HasSuffix(snippet, "\n") {
		f.writeKind(softBreakWrite, "\n")
	}
}

// Reference definitions

func (f *formatter) writeRefDefs(defs []linkReferenceDefinition) {
	for i := range defs {
		def := &defs[i]
		span := def.span()
		tracer().Debugf("format: recovered reference definition %v", span)
		f.writeNewlines(f.countNewlines(span))
		f.write(def.String())
		f.lastPosition = span.End
		f.needsIndent = true
	}
}

// rewriteRefDefs writes the reference definitions
// found in input[start:end].
func (f *formatter) rewriteRefDefs(start, end int) {
	if start >= end {
		return
	}
	f.writeRefDefs(parseLinkReferenceDefinitions(f.input[start:end], start))
}

// refDefsBefore parses the reference definitions between the start of span
// and the next event, or the end of span if the next event closes it.
// end is the position of the first definition,
// or the end of the searched region if there are none.
func (f *formatter) refDefsBefore(span mdfmt.Span, closer mdfmt.TagKind) (defs []linkReferenceDefinition, end int, next mdfmt.Event) {
	next, _ = f.events.Peek()
	end = span.End
	if !next.IsEnd(closer) {
		end = next.Span.Start
	}
	if end < span.Start {
		end = span.Start
	}
	defs = parseLinkReferenceDefinitions(f.input[span.Start:end], span.Start)
	if len(defs) > 0 {
		end = defs[0].span().Start
	}
	return defs, end, next
}

// Code blocks

func (f *formatter) formatCode(info, code string) string {
	indentation := f.indentationLen()
	if strings.Contains(info, "markdown") {
		sb := new(strings.Builder)
		if err := Format(sb, []byte(code), f.opts.withMaxWidth(indentation)); err != nil {
			return code
		}
		return sb.String()
	}
	if f.opts == nil || f.opts.CodeFormatter == nil {
		return code
	}
	return f.opts.CodeFormatter.FormatCode(CodeBlockContext{
		Indentation: indentation,
		MaxWidth:    f.opts.maxWidth(),
	}, info, code)
}

func (f *formatter) writeCodeBlock(w *codeBlockWriter) {
	code := w.buf.String()
	if !w.tag.Fenced {
		f.joinWithIndentation(code, false)
		return
	}
	code = f.formatCode(w.tag.Info, code)
	if isBlank(code) {
		// The opening fence already ended its line.
		return
	}
	f.joinWithIndentation(code, true)
	f.write("\n")
}
