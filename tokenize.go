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

// Package mdfmt provides a Markdown tokenizer that reports
// a balanced stream of events, each carrying the exact span of source it came from.
// The events are the input to the formatter in the format subpackage.
//
// Tokenize understands CommonMark plus the common extensions:
// tables, strikethrough, task lists, footnotes, definition lists,
// heading attributes and YAML or TOML front matter.
package mdfmt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

func tracer() tracing.Trace {
	return tracing.Select("mdfmt.tokenize")
}

// Stream is a pull iterator over the events of a document.
type Stream struct {
	events []Event
	pos    int
}

// Next returns the next event in the document.
// It returns false once the stream is exhausted.
func (s *Stream) Next() (Event, bool) {
	if s.pos >= len(s.events) {
		return Event{}, false
	}
	e := s.events[s.pos]
	s.pos++
	return e, true
}

// Collect returns the remaining events in the stream.
func (s *Stream) Collect() []Event {
	var events []Event
	for {
		e, ok := s.Next()
		if !ok {
			return events
		}
		events = append(events, e)
	}
}

// Tokenize parses a Markdown document and returns its events.
// Tokenize never fails: every input is a valid Markdown document.
func Tokenize(source []byte) *Stream {
	var events []Event
	parseSource := source
	if fm, ok := findFrontMatter(source); ok {
		events = metadataEvents(source, fm)
		parseSource = blankFrontMatter(source, fm)
	}

	rec := newRecorder()
	doc := newParser(rec).Parse(text.NewReader(parseSource))
	c := &converter{
		spanner: spanner{source: source, rec: rec},
		events:  events,
	}
	c.relocateFootnotes(doc)
	walk(doc, &walkOptions{
		Pre:  c.enter,
		Post: c.exit,
	})
	tracer().Debugf("tokenized %d bytes into %d events", len(source), len(c.events))
	return &Stream{events: c.events}
}

func newParser(rec *recorder) parser.Parser {
	var blockParsers []util.PrioritizedValue
	for _, v := range parser.DefaultBlockParsers() {
		blockParsers = append(blockParsers, util.Prioritized(rec.wrap(v.Value.(parser.BlockParser)), v.Priority))
	}
	blockParsers = append(blockParsers,
		util.Prioritized(rec.wrap(extension.NewDefinitionListParser()), 101),
		util.Prioritized(rec.wrap(extension.NewDefinitionDescriptionParser()), 102),
		util.Prioritized(rec.wrap(extension.NewFootnoteBlockParser()), 999),
	)
	inlineParsers := append(parser.DefaultInlineParsers(),
		util.Prioritized(extension.NewTaskCheckBoxParser(), 0),
		util.Prioritized(extension.NewFootnoteParser(), 101),
		util.Prioritized(extension.NewStrikethroughParser(), 500),
	)
	paragraphTransformers := append(parser.DefaultParagraphTransformers(),
		util.Prioritized(rec.wrapTable(extension.NewTableParagraphTransformer()), 200),
	)
	return parser.NewParser(
		parser.WithBlockParsers(blockParsers...),
		parser.WithInlineParsers(inlineParsers...),
		parser.WithParagraphTransformers(paragraphTransformers...),
		parser.WithASTTransformers(util.Prioritized(extension.NewTableASTTransformer(), 0)),
		parser.WithAttribute(),
	)
}

// openFrame is a container whose end event has not been emitted yet.
type openFrame struct {
	node  ast.Node
	index int
	// delim and width describe an inline container's opening delimiter.
	delim byte
	width int
}

// converter turns a goldmark syntax tree into events.
type converter struct {
	spanner
	events []Event
	open   []openFrame
	// cur is the inline scanning position.
	// Inline nodes are visited in source order,
	// so delimiters are found by searching forward from cur.
	cur int
}

func (c *converter) emit(e Event) {
	if !e.Span.IsValid() || e.Span.End > len(c.source) {
		pos := 0
		if n := len(c.events); n > 0 {
			pos = c.events[n-1].Span.End
		}
		tracer().Errorf("tokenize: %v has no source position, anchoring at %d", e, pos)
		e.Span = Span{Start: pos, End: pos}
	}
	c.events = append(c.events, e)
}

func (c *converter) start(n ast.Node, tag Tag, span Span) *openFrame {
	c.open = append(c.open, openFrame{node: n, index: len(c.events)})
	c.emit(Event{Kind: StartEvent, Tag: tag, Span: span})
	return &c.open[len(c.open)-1]
}

func (c *converter) enter(cur *cursor) bool {
	switch n := cur.Node().(type) {
	case *ast.Document:
		return true
	case *ast.TextBlock:
		if lines := n.Lines(); lines.Len() > 0 {
			c.cur = lines.At(0).Start
		}
		return true
	case *ast.Paragraph:
		span := c.blockSpan(n)
		c.start(n, Tag{Kind: ParagraphTag}, span)
		c.cur = span.Start
		return true
	case *ast.Heading:
		span := c.blockSpan(n)
		c.start(n, Tag{
			Kind:            HeadingTag,
			Level:           n.Level,
			Attributes:      headingAttributes(n),
			EmptyAttributes: c.hasEmptyAttributes(n),
		}, span)
		c.cur = span.Start
		if lines := n.Lines(); lines.Len() > 0 {
			c.cur = lines.At(0).Start
		}
		return true
	case *ast.ThematicBreak:
		c.emit(Event{Kind: RuleEvent, Span: c.blockSpan(n)})
		return false
	case *ast.CodeBlock:
		c.codeBlock(n, Tag{Kind: CodeBlockTag})
		return false
	case *ast.FencedCodeBlock:
		tag := Tag{Kind: CodeBlockTag, Fenced: true}
		if n.Info != nil {
			tag.Info = string(n.Info.Segment.Value(c.source))
		}
		c.codeBlock(n, tag)
		return false
	case *ast.HTMLBlock:
		c.htmlBlock(n)
		return false
	case *ast.Blockquote:
		c.start(n, Tag{Kind: BlockQuoteTag}, c.blockSpan(n))
		return true
	case *ast.List:
		c.start(n, Tag{Kind: ListTag, Ordered: n.IsOrdered(), StartNumber: n.Start}, c.blockSpan(n))
		return true
	case *ast.ListItem:
		c.start(n, Tag{Kind: ItemTag}, c.blockSpan(n))
		return true
	case *extast.Footnote:
		c.start(n, Tag{Kind: FootnoteDefinitionTag, Label: string(n.Ref)}, c.blockSpan(n))
		return true
	case *extast.DefinitionList:
		c.start(n, Tag{Kind: DefinitionListTag}, c.blockSpan(n))
		return true
	case *extast.DefinitionTerm:
		span := c.blockSpan(n)
		c.start(n, Tag{Kind: DefinitionListTitleTag}, span)
		c.cur = span.Start
		return true
	case *extast.DefinitionDescription:
		c.start(n, Tag{Kind: DefinitionListDefinitionTag}, c.blockSpan(n))
		return true
	case *extast.Table:
		tag := Tag{Kind: TableTag}
		for _, a := range n.Alignments {
			tag.Alignments = append(tag.Alignments, convertAlignment(a))
		}
		c.start(n, tag, c.blockSpan(n))
		return true
	case *extast.TableHeader:
		c.start(n, Tag{Kind: TableHeadTag}, c.blockSpan(n))
		return true
	case *extast.TableRow:
		c.start(n, Tag{Kind: TableRowTag}, c.blockSpan(n))
		return true
	case *extast.TableCell:
		lines := n.Lines()
		if lines.Len() == 0 {
			// Padding cell added for a short or empty row.
			end := c.blockSpan(n.Parent()).End
			c.start(n, Tag{Kind: TableCellTag}, Span{Start: end, End: end})
			return true
		}
		seg := lines.At(0)
		c.start(n, Tag{Kind: TableCellTag}, Span{Start: seg.Start, End: seg.Stop})
		c.cur = seg.Start
		return true
	}
	if cur.Node().Type() == ast.TypeInline {
		return c.enterInline(cur.Node())
	}
	tracer().Debugf("tokenize: skipping unknown block %v", cur.Node().Kind())
	return true
}

func (c *converter) exit(cur *cursor) bool {
	if len(c.open) == 0 || c.open[len(c.open)-1].node != cur.Node() {
		return true
	}
	frame := c.open[len(c.open)-1]
	c.open = c.open[:len(c.open)-1]
	if cur.Node().Type() == ast.TypeInline {
		c.exitInline(frame)
	}
	start := c.events[frame.index]
	c.emit(Event{Kind: EndEvent, Tag: start.Tag, Span: start.Span})
	return true
}

func (c *converter) codeBlock(n ast.Node, tag Tag) {
	c.start(n, tag, c.blockSpan(n))
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		c.emit(Event{
			Kind: TextEvent,
			Text: string(seg.Value(c.source)),
			Span: Span{Start: seg.Start, End: seg.Stop},
		})
	}
	c.exit(&cursor{node: n})
}

func (c *converter) htmlBlock(n *ast.HTMLBlock) {
	c.start(n, Tag{Kind: HTMLBlockTag}, c.blockSpan(n))
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		c.htmlLine(lines.At(i))
	}
	if n.HasClosure() {
		c.htmlLine(n.ClosureLine)
	}
	c.exit(&cursor{node: n})
}

func (c *converter) htmlLine(seg text.Segment) {
	c.emit(Event{
		Kind: HTMLEvent,
		Text: string(seg.Value(c.source)),
		Span: Span{Start: seg.Start, End: seg.Stop},
	})
}

// hasEmptyAttributes reports whether a heading's content line
// ends with an empty attribute block like "{}" or "{ }",
// which goldmark strips without recording any attribute.
func (c *converter) hasEmptyAttributes(n *ast.Heading) bool {
	lines := n.Lines()
	if lines.Len() == 0 {
		return false
	}
	stop := lines.At(lines.Len() - 1).Stop
	tail := strings.TrimSpace(string(c.source[stop:indexLineEnd(c.source, stop)]))
	if !strings.HasPrefix(tail, "{") {
		return false
	}
	end := strings.IndexByte(tail, '}')
	return end >= 0 && strings.TrimSpace(tail[1:end]) == ""
}

func headingAttributes(n ast.Node) *Attributes {
	attrs := new(Attributes)
	for _, a := range n.Attributes() {
		switch name := string(a.Name); name {
		case "id":
			attrs.ID = attributeValue(a.Value)
		case "class":
			attrs.Classes = append(attrs.Classes, strings.Fields(attributeValue(a.Value))...)
		default:
			attrs.Attrs = append(attrs.Attrs, Attribute{Key: name, Value: attributeValue(a.Value)})
		}
	}
	if attrs.IsEmpty() {
		return nil
	}
	return attrs
}

func attributeValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(v)
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, elem := range v {
			parts = append(parts, attributeValue(elem))
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return fmt.Sprint(v)
	}
}

func convertAlignment(a extast.Alignment) Alignment {
	switch a {
	case extast.AlignLeft:
		return AlignLeft
	case extast.AlignCenter:
		return AlignCenter
	case extast.AlignRight:
		return AlignRight
	default:
		return AlignNone
	}
}
