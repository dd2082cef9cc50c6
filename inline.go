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

package mdfmt

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

func (c *converter) enterInline(n ast.Node) bool {
	switch n := n.(type) {
	case *ast.Text:
		c.text(n)
		return false
	case *ast.CodeSpan:
		c.codeSpan()
		return false
	case *ast.Emphasis:
		p := c.indexAny(c.cur, "*_")
		kind := EmphasisTag
		if n.Level >= 2 {
			kind = StrongTag
		}
		f := c.start(n, Tag{Kind: kind}, Span{Start: p, End: p + n.Level})
		f.delim = c.source[p]
		f.width = n.Level
		c.cur = p + n.Level
		return true
	case *extast.Strikethrough:
		p := c.indexAny(c.cur, "~")
		width := runLength(c.source, p, '~')
		f := c.start(n, Tag{Kind: StrikethroughTag}, Span{Start: p, End: p + width})
		f.delim = '~'
		f.width = width
		c.cur = p + width
		return true
	case *ast.Link:
		p := c.indexAny(c.cur, "[")
		c.start(n, Tag{
			Kind:        LinkTag,
			Destination: string(n.Destination),
			Title:       string(n.Title),
		}, Span{Start: p, End: p + 1})
		c.cur = p + 1
		return true
	case *ast.Image:
		p := c.indexAny(c.cur, "!")
		c.start(n, Tag{
			Kind:        ImageTag,
			Destination: string(n.Destination),
			Title:       string(n.Title),
		}, Span{Start: p, End: p + 2})
		c.cur = p + 2
		return true
	case *ast.AutoLink:
		c.autoLink(n)
		return false
	case *ast.RawHTML:
		segs := n.Segments
		if segs.Len() == 0 {
			return false
		}
		span := Span{Start: segs.At(0).Start, End: segs.At(segs.Len() - 1).Stop}
		c.emit(Event{Kind: InlineHTMLEvent, Text: string(span.Slice(c.source)), Span: span})
		c.cur = span.End
		return false
	case *extast.TaskCheckBox:
		p := c.indexAny(c.cur, "[")
		c.emit(Event{Kind: TaskListMarkerEvent, Checked: n.IsChecked, Span: Span{Start: p, End: p + 3}})
		c.cur = p + 3
		return false
	case *extast.FootnoteLink:
		p := c.indexAny(c.cur, "[")
		end := bytes.IndexByte(c.source[p:], ']')
		if end < 0 {
			return false
		}
		end += p
		label := string(c.source[p+2 : end])
		c.emit(Event{Kind: FootnoteReferenceEvent, Text: label, Span: Span{Start: p, End: end + 1}})
		c.cur = end + 1
		return false
	default:
		tracer().Debugf("tokenize: skipping inline %v", n.Kind())
		return false
	}
}

func (c *converter) exitInline(frame openFrame) {
	start := &c.events[frame.index]
	switch frame.node.(type) {
	case *ast.Emphasis, *extast.Strikethrough:
		q := c.indexAny(c.cur, string(frame.delim))
		c.cur = q + frame.width
	case *ast.Link, *ast.Image:
		c.linkSuffix(frame.node, start)
	}
	start.Span.End = c.cur
}

func (c *converter) text(n *ast.Text) {
	seg := n.Segment
	if seg.Len() > 0 {
		// Leftover delimiters and failed inline constructs
		// are separate nodes, but they read as one run of text.
		if last := len(c.events) - 1; last >= 0 && c.events[last].Kind == TextEvent && c.events[last].Span.End == seg.Start {
			c.events[last].Text += string(c.source[seg.Start:seg.Stop])
			c.events[last].Span.End = seg.Stop
		} else {
			c.emit(Event{
				Kind: TextEvent,
				Text: string(c.source[seg.Start:seg.Stop]),
				Span: Span{Start: seg.Start, End: seg.Stop},
			})
		}
	}
	if seg.Stop > c.cur {
		c.cur = seg.Stop
	}
	if !n.SoftLineBreak() && !n.HardLineBreak() {
		return
	}
	nl := indexLineEnd(c.source, c.cur)
	end := skipLineEnding(c.source, nl)
	span := Span{Start: c.cur, End: end}
	if n.HardLineBreak() {
		c.emit(Event{Kind: HardBreakEvent, Text: string(span.Slice(c.source)), Span: span})
	} else {
		c.emit(Event{Kind: SoftBreakEvent, Text: "\n", Span: span})
	}
	c.cur = end
}

func (c *converter) codeSpan() {
	p := c.indexAny(c.cur, "`")
	n := runLength(c.source, p, '`')
	end := len(c.source)
	for i := p + n; i < len(c.source); {
		if c.source[i] != '`' {
			i++
			continue
		}
		run := runLength(c.source, i, '`')
		if run == n {
			end = i + run
			break
		}
		i += run
	}
	span := Span{Start: p, End: end}
	c.emit(Event{Kind: CodeEvent, Text: string(span.Slice(c.source)), Span: span})
	c.cur = end
}

func (c *converter) autoLink(n *ast.AutoLink) {
	p := c.indexAny(c.cur, "<")
	q := bytes.IndexByte(c.source[p:], '>')
	if q < 0 {
		return
	}
	q += p
	tag := Tag{Kind: LinkTag, LinkType: AutoLink, Destination: string(n.URL(c.source))}
	if n.AutoLinkType == ast.AutoLinkEmail {
		tag.LinkType = EmailLink
	}
	span := Span{Start: p, End: q + 1}
	c.emit(Event{Kind: StartEvent, Tag: tag, Span: span})
	c.emit(Event{Kind: TextEvent, Text: string(c.source[p+1 : q]), Span: Span{Start: p + 1, End: q}})
	c.emit(Event{Kind: EndEvent, Tag: tag, Span: span})
	c.cur = q + 1
}

// linkSuffix finds the end of a link or image after its text
// and determines which syntax it was written with.
func (c *converter) linkSuffix(n ast.Node, start *Event) {
	closer := c.indexAny(c.cur, "]")
	after := closer + 1
	linkType, end := ShortcutLink, after
	label := ""
	if after < len(c.source) {
		switch c.source[after] {
		case '(':
			if e := scanInlineLinkTail(c.source, after); e >= 0 {
				linkType, end = InlineLink, e
			}
		case '[':
			if e := indexUnescaped(c.source, after+1, ']'); e >= 0 {
				label = string(c.source[after+1 : e])
				if len(bytes.TrimSpace([]byte(label))) == 0 {
					linkType, end, label = CollapsedLink, e+1, ""
				} else {
					linkType, end = ReferenceLink, e+1
				}
			}
		}
	}
	// A suffix that the following nodes consumed as text
	// was not part of the link.
	if limit := firstPosition(n.NextSibling()); limit >= 0 && end > limit {
		linkType, end, label = ShortcutLink, after, ""
	}
	start.Tag.LinkType = linkType
	start.Tag.Label = label
	c.cur = end
}

// firstPosition returns the source position of the first text
// in an inline node, or -1 if it cannot be determined.
func firstPosition(n ast.Node) int {
	for ; n != nil; n = n.FirstChild() {
		switch n := n.(type) {
		case *ast.Text:
			if n.Segment.Len() > 0 {
				return n.Segment.Start
			}
			return -1
		case *ast.RawHTML:
			if n.Segments.Len() > 0 {
				return n.Segments.At(0).Start
			}
			return -1
		}
	}
	return -1
}

// scanInlineLinkTail returns the position after the closing parenthesis
// of an inline link destination and title starting at the '(' at pos,
// or -1 if there is none.
func scanInlineLinkTail(source []byte, pos int) int {
	i := skipSpace(source, pos+1)
	if i < len(source) && source[i] == '<' {
		end := indexUnescaped(source, i+1, '>')
		if end < 0 {
			return -1
		}
		i = end + 1
	} else {
		depth := 0
	dest:
		for ; i < len(source); i++ {
			switch c := source[i]; {
			case c == '\\':
				i++
			case c == '(':
				depth++
			case c == ')':
				if depth == 0 {
					break dest
				}
				depth--
			case isWhitespace(c):
				break dest
			}
		}
	}
	i = skipSpace(source, i)
	if i < len(source) {
		var closer byte
		switch source[i] {
		case '"':
			closer = '"'
		case '\'':
			closer = '\''
		case '(':
			closer = ')'
		}
		if closer != 0 {
			end := indexUnescaped(source, i+1, closer)
			if end < 0 {
				return -1
			}
			i = skipSpace(source, end+1)
		}
	}
	if i >= len(source) || source[i] != ')' {
		return -1
	}
	return i + 1
}

// indexAny returns the position of the first unescaped byte in chars
// at or after pos.
// The tree guarantees the delimiter exists,
// so a miss falls back to pos.
func (c *converter) indexAny(pos int, chars string) int {
	for i := pos; i < len(c.source); i++ {
		if c.source[i] == '\\' {
			i++
			continue
		}
		if bytes.IndexByte([]byte(chars), c.source[i]) >= 0 {
			return i
		}
	}
	tracer().Errorf("tokenize: no %q found after %d", chars, pos)
	return pos
}

func indexUnescaped(source []byte, pos int, b byte) int {
	for i := pos; i < len(source); i++ {
		switch source[i] {
		case '\\':
			i++
		case b:
			return i
		}
	}
	return -1
}

func runLength(source []byte, pos int, b byte) int {
	n := 0
	for pos+n < len(source) && source[pos+n] == b {
		n++
	}
	return n
}

func skipSpace(source []byte, pos int) int {
	for pos < len(source) && isWhitespace(source[pos]) {
		pos++
	}
	return pos
}
