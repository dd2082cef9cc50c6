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

	"zombiezen.com/go/mdfmt"
)

// eventSource is a pull iterator over document events.
// [*mdfmt.Stream] is the root source;
// each adapter below wraps another source.
type eventSource interface {
	Next() (mdfmt.Event, bool)
}

// peeker is an eventSource with one event of lookahead.
type peeker struct {
	src    eventSource
	next   mdfmt.Event
	peeked bool
	ok     bool
}

func newPeeker(src eventSource) *peeker {
	return &peeker{src: src}
}

func (p *peeker) Peek() (mdfmt.Event, bool) {
	if !p.peeked {
		p.next, p.ok = p.src.Next()
		p.peeked = true
	}
	return p.next, p.ok
}

func (p *peeker) Next() (mdfmt.Event, bool) {
	e, ok := p.Peek()
	p.peeked = false
	return e, ok
}

// pipeline returns the events of source after normalization.
func pipeline(source []byte) *peeker {
	var src eventSource = mdfmt.Tokenize(source)
	src = newLooseListAdapter(src)
	src = &listEndAdapter{src: src}
	src = &textMergeAdapter{src: newPeeker(src), source: source}
	return newPeeker(src)
}

// listEndAdapter makes the span of each list end
// at the end of its last item,
// so that blank lines after the list belong to whatever follows it.
type listEndAdapter struct {
	src eventSource
	end int
}

func (a *listEndAdapter) Next() (mdfmt.Event, bool) {
	e, ok := a.src.Next()
	if !ok {
		return e, false
	}
	switch {
	case e.IsEnd(mdfmt.ItemTag) || e.IsEnd(mdfmt.DefinitionListDefinitionTag):
		a.end = e.Span.End
	case e.IsEnd(mdfmt.ListTag) || e.IsEnd(mdfmt.DefinitionListTag):
		e.Span.End = a.end
	}
	return e, true
}

// looseListAdapter wraps the inline content of tight list items in paragraphs,
// so every list item is formatted the same way.
type looseListAdapter struct {
	src *peeker
	// stack has an entry for each open list item:
	// the index in pending of the synthesized paragraph start
	// or -1 if no paragraph is open.
	stack   []int
	pending []mdfmt.Event
}

func newLooseListAdapter(src eventSource) *looseListAdapter {
	return &looseListAdapter{src: newPeeker(src)}
}

// startsTightContent reports whether e is inline content
// appearing directly inside a list item.
func startsTightContent(e mdfmt.Event) bool {
	switch e.Kind {
	case mdfmt.TextEvent, mdfmt.CodeEvent, mdfmt.FootnoteReferenceEvent,
		mdfmt.TaskListMarkerEvent, mdfmt.InlineHTMLEvent:
		return true
	case mdfmt.StartEvent:
		switch e.Tag.Kind {
		case mdfmt.LinkTag, mdfmt.ImageTag, mdfmt.EmphasisTag, mdfmt.StrongTag, mdfmt.StrikethroughTag:
			return true
		}
	case mdfmt.HTMLEvent:
		return isSingleHTMLTag(e.Text)
	}
	return false
}

// interruptsParagraph reports whether e starts a block
// that ends a tight item's paragraph.
func interruptsParagraph(e mdfmt.Event) bool {
	switch e.Kind {
	case mdfmt.StartEvent:
		switch e.Tag.Kind {
		case mdfmt.HeadingTag, mdfmt.ListTag, mdfmt.BlockQuoteTag, mdfmt.CodeBlockTag,
			mdfmt.TableTag, mdfmt.HTMLBlockTag, mdfmt.FootnoteDefinitionTag, mdfmt.DefinitionListTag:
			return true
		}
	case mdfmt.RuleEvent:
		return true
	case mdfmt.HTMLEvent:
		return !isSingleHTMLTag(e.Text)
	}
	return false
}

// endsBlock reports whether e finishes a block inside a list item,
// after which inline content needs a new paragraph.
func endsBlock(e mdfmt.Event) bool {
	switch e.Kind {
	case mdfmt.EndEvent:
		switch e.Tag.Kind {
		case mdfmt.HeadingTag, mdfmt.ListTag, mdfmt.BlockQuoteTag, mdfmt.CodeBlockTag,
			mdfmt.TableTag, mdfmt.HTMLBlockTag, mdfmt.FootnoteDefinitionTag, mdfmt.DefinitionListTag:
			return true
		}
	case mdfmt.RuleEvent:
		return true
	case mdfmt.HTMLEvent:
		return !isSingleHTMLTag(e.Text)
	}
	return false
}

// isSingleHTMLTag reports whether html is a lone tag like "<b>" or "</b>".
func isSingleHTMLTag(html string) bool {
	html = strings.TrimRight(html, " \t\r\n")
	return strings.HasPrefix(html, "<") &&
		strings.HasSuffix(html, ">") &&
		strings.Count(html, "<")+strings.Count(html, ">") == 2
}

func (a *looseListAdapter) Next() (mdfmt.Event, bool) {
	if e, ok := a.popPending(); ok {
		return e, true
	}
	for {
		e, ok := a.src.Next()
		if !ok {
			return a.popPending()
		}
		a.pending = append(a.pending, e)

		switch {
		case e.IsStart(mdfmt.ItemTag):
			a.stack = append(a.stack, -1)
			a.maybeStartParagraph()
		case e.IsEnd(mdfmt.ItemTag):
			if n := len(a.stack); n > 0 {
				if i := a.stack[n-1]; i >= 0 {
					a.endParagraph(i, e.Span.Start)
					a.pending[len(a.pending)-1], a.pending[len(a.pending)-2] = a.pending[len(a.pending)-2], a.pending[len(a.pending)-1]
				}
				a.stack = a.stack[:n-1]
			}
			if len(a.stack) == 0 {
				return a.popPending()
			}
		case endsBlock(e):
			a.maybeStartParagraph()
		default:
			if len(a.stack) == 0 {
				return a.popPending()
			}
			next, _ := a.src.Peek()
			top := &a.stack[len(a.stack)-1]
			if *top >= 0 && (next.IsEnd(mdfmt.ItemTag) || interruptsParagraph(next)) {
				a.endParagraph(*top, e.Span.End)
				*top = -1
			}
		}
	}
}

// maybeStartParagraph synthesizes a paragraph start
// if the innermost list item has no open paragraph
// and the next event is inline content.
func (a *looseListAdapter) maybeStartParagraph() {
	if len(a.stack) == 0 || a.stack[len(a.stack)-1] >= 0 {
		return
	}
	next, ok := a.src.Peek()
	if !ok || !startsTightContent(next) {
		return
	}
	a.stack[len(a.stack)-1] = len(a.pending)
	a.pending = append(a.pending, mdfmt.Event{
		Kind: mdfmt.StartEvent,
		Tag:  mdfmt.Tag{Kind: mdfmt.ParagraphTag},
		Span: next.Span,
	})
}

// endParagraph closes the synthesized paragraph started at pending[i],
// extending its span to end.
func (a *looseListAdapter) endParagraph(i int, end int) {
	start := &a.pending[i]
	if !start.IsStart(mdfmt.ParagraphTag) {
		panic("loose list: synthesized paragraph start missing")
	}
	start.Span.End = max(end, start.Span.Start)
	a.pending = append(a.pending, mdfmt.Event{
		Kind: mdfmt.EndEvent,
		Tag:  start.Tag,
		Span: start.Span,
	})
}

func (a *looseListAdapter) popPending() (mdfmt.Event, bool) {
	if len(a.pending) == 0 {
		return mdfmt.Event{}, false
	}
	e := a.pending[0]
	a.pending = a.pending[1:]
	if len(a.pending) == 0 {
		a.pending = nil
	}
	return e, true
}

// textMergeAdapter joins the text events that make up
// an unmatched bracketed span like "[foo]" into a single event.
type textMergeAdapter struct {
	src         *peeker
	source      []byte
	inParagraph bool
}

func (a *textMergeAdapter) Next() (mdfmt.Event, bool) {
	e, ok := a.src.Next()
	if !ok {
		return e, false
	}
	switch {
	case e.IsStart(mdfmt.ParagraphTag):
		a.inParagraph = true
	case e.IsEnd(mdfmt.ParagraphTag):
		a.inParagraph = false
	case e.Kind == mdfmt.TextEvent && a.inParagraph && strings.HasPrefix(e.Text, "["):
		span := e.Span
		for !isBalanced(string(span.Slice(a.source)), '[', ']') {
			next, ok := a.src.Peek()
			if !ok || next.Kind != mdfmt.TextEvent {
				break
			}
			a.src.Next()
			span.End = next.Span.End
		}
		if span != e.Span {
			tracer().Debugf("merged text %v into %v", e.Span, span)
			e.Text = string(span.Slice(a.source))
			e.Span = span
		}
	}
	return e, true
}
