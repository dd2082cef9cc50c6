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
	"sort"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// blockRecord is the source extent observed while a block parser
// opened and continued a node.
type blockRecord struct {
	span   Span
	parent ast.Node
}

func (r *blockRecord) include(start, end int) {
	if start >= 0 && (r.span.Start < 0 || start < r.span.Start) {
		r.span.Start = start
	}
	if end >= 0 && end > r.span.End {
		r.span.End = end
	}
}

// A recorder collects block extents for a single parse.
// goldmark nodes only carry the segments of their inline content,
// so container markers, fences and heading markers
// are only visible to the block parsers themselves.
type recorder struct {
	blocks map[ast.Node]*blockRecord
	// tableLines holds the source lines each table was built from,
	// delimiter row included.
	tableLines map[ast.Node][]text.Segment
}

func newRecorder() *recorder {
	return &recorder{
		blocks:     make(map[ast.Node]*blockRecord),
		tableLines: make(map[ast.Node][]text.Segment),
	}
}

func (rec *recorder) record(n ast.Node, parent ast.Node) *blockRecord {
	r := rec.blocks[n]
	if r == nil {
		r = &blockRecord{span: NullSpan(), parent: parent}
		rec.blocks[n] = r
	}
	return r
}

func (rec *recorder) wrap(p parser.BlockParser) parser.BlockParser {
	return &recordingBlockParser{BlockParser: p, rec: rec}
}

// recordingBlockParser is a [parser.BlockParser] that records the lines
// each node was opened and continued on.
type recordingBlockParser struct {
	parser.BlockParser
	rec *recorder
}

func (p *recordingBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, seg := reader.PeekLine()
	startLine, startPos := reader.Position()
	node, state := p.BlockParser.Open(parent, reader, pc)
	if node == nil {
		return node, state
	}
	r := p.rec.record(node, parent)
	start, end := lineExtent(line, seg)
	if start < 0 {
		return node, state
	}
	r.include(start, -1)
	if state&parser.Close == 0 || advanced(reader, startLine, startPos) {
		r.include(-1, end)
	}
	return node, state
}

func (p *recordingBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, seg := reader.PeekLine()
	startLine, startPos := reader.Position()
	state := p.BlockParser.Continue(node, reader, pc)
	if node == nil {
		return state
	}
	if _, end := lineExtent(line, seg); end >= 0 && (state&parser.Close == 0 || advanced(reader, startLine, startPos)) {
		p.rec.record(node, node.Parent()).include(-1, end)
	}
	return state
}

// SetOption forwards options like heading attribute parsing
// to the wrapped parser.
func (p *recordingBlockParser) SetOption(name parser.OptionName, value interface{}) {
	if so, ok := p.BlockParser.(parser.SetOptioner); ok {
		so.SetOption(name, value)
	}
}

func (rec *recorder) wrapTable(t parser.ParagraphTransformer) parser.ParagraphTransformer {
	return &recordingTableTransformer{ParagraphTransformer: t, rec: rec}
}

// recordingTableTransformer is a [parser.ParagraphTransformer]
// that remembers the lines a table was built from.
// The transformer cuts those lines out of the paragraph,
// and cells of an empty row have no segment of their own.
type recordingTableTransformer struct {
	parser.ParagraphTransformer
	rec *recorder
}

func (t *recordingTableTransformer) Transform(node *ast.Paragraph, reader text.Reader, pc parser.Context) {
	lines := append([]text.Segment(nil), node.Lines().Sliced(0, node.Lines().Len())...)
	parent := node.Parent()
	prev := node.PreviousSibling()
	next := node.NextSibling()
	t.ParagraphTransformer.Transform(node, reader, pc)

	var inserted ast.Node
	switch {
	case node.Parent() != nil:
		inserted = node.NextSibling()
	case prev != nil:
		inserted = prev.NextSibling()
	case parent != nil:
		inserted = parent.FirstChild()
	}
	table, ok := inserted.(*extast.Table)
	if !ok || inserted == next {
		return
	}
	// The paragraph keeps the lines before the table's header row.
	t.rec.tableLines[table] = lines[min(node.Lines().Len(), len(lines)):]
}

func advanced(reader text.Reader, line int, pos text.Segment) bool {
	newLine, newPos := reader.Position()
	return newLine != line || newPos.Start != pos.Start
}

// lineExtent returns the source offsets of the first and last
// non-whitespace bytes of a line returned by [text.Reader.PeekLine].
// The line may be prefixed with padding from a partially consumed tab.
// Both results are -1 for blank lines.
func lineExtent(line []byte, seg text.Segment) (start, end int) {
	first := 0
	for first < len(line) && isSpaceOrTab(line[first]) {
		first++
	}
	last := len(line)
	for last > first && isWhitespace(line[last-1]) {
		last--
	}
	if first >= last {
		return -1, -1
	}
	return seg.Start + max(0, first-seg.Padding), seg.Start + max(0, last-seg.Padding)
}

// spanner computes the source extent of block nodes.
type spanner struct {
	source []byte
	rec    *recorder
	memo   map[ast.Node]Span
}

func (s *spanner) blockSpan(n ast.Node) Span {
	if span, ok := s.memo[n]; ok {
		return span
	}
	var span Span
	if table, ok := n.(*extast.Table); ok {
		span = s.tableSpan(table)
	} else {
		r := &blockRecord{span: NullSpan()}
		// Paragraph lines lose their leading link reference definitions
		// and any trailing table rows after parsing, so only the lines count.
		if rec := s.rec.blocks[n]; rec != nil && n.Kind() != ast.KindParagraph {
			r.include(rec.span.Start, rec.span.End)
		}
		if lines := n.Lines(); lines != nil && lines.Len() > 0 {
			first := lines.At(0)
			r.include(first.Start, -1)
			r.include(-1, s.trimmedStop(lines.At(lines.Len()-1)))
		}
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			if child.Type() != ast.TypeBlock {
				continue
			}
			if cs := s.blockSpan(child); cs.IsValid() {
				r.include(cs.Start, cs.End)
			}
		}
		span = r.span
		if span.Start >= 0 && span.End < span.Start {
			span.End = span.Start
		}
		if !span.IsValid() {
			switch n.(type) {
			case *extast.TableHeader, *extast.TableRow:
				// Rows of empty cells.
				span = s.rowLineSpan(n)
			}
		}
	}
	if s.memo == nil {
		s.memo = make(map[ast.Node]Span)
	}
	s.memo[n] = span
	return span
}

func (s *spanner) trimmedStop(seg text.Segment) int {
	stop := seg.Stop
	for stop > seg.Start && isWhitespace(s.source[stop-1]) {
		stop--
	}
	return stop
}

// tableSpan computes the extent of a table from the lines it was built from,
// since tables are built by a paragraph transformer
// after block parsing has finished.
func (s *spanner) tableSpan(table *extast.Table) Span {
	lines := s.rec.tableLines[table]
	if len(lines) == 0 {
		return s.cellsSpan(table)
	}
	return Span{
		Start: s.lineStart(lines[0]),
		End:   s.trimmedStop(lines[len(lines)-1]),
	}
}

// rowLineSpan returns the extent of the line a table row was parsed from.
func (s *spanner) rowLineSpan(row ast.Node) Span {
	table, ok := row.Parent().(*extast.Table)
	if !ok {
		return NullSpan()
	}
	lines := s.rec.tableLines[table]
	i := 0
	for sib := table.FirstChild(); sib != nil && sib != row; sib = sib.NextSibling() {
		i++
	}
	if i > 0 {
		// Skip the delimiter row.
		i++
	}
	if i >= len(lines) {
		return NullSpan()
	}
	return Span{Start: s.lineStart(lines[i]), End: s.trimmedStop(lines[i])}
}

// cellsSpan computes the extent of a table from its cells.
func (s *spanner) cellsSpan(table *extast.Table) Span {
	span := NullSpan()
	var lastRow ast.Node
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			lines := cell.Lines()
			if lines == nil || lines.Len() == 0 {
				continue
			}
			seg := lines.At(0)
			if span.Start < 0 {
				span.Start = seg.Start
			}
			if seg.Stop > span.End {
				span.End = seg.Stop
			}
			lastRow = row
		}
	}
	if span.Start < 0 {
		return span
	}
	for span.Start > 0 && isSpaceOrTab(s.source[span.Start-1]) {
		span.Start--
	}
	if span.Start > 0 && s.source[span.Start-1] == '|' {
		span.Start--
	}
	span.End = s.lineEnd(span.End)
	if _, ok := lastRow.(*extast.TableHeader); ok {
		// Header-only tables end at the delimiter row.
		if next := indexLineEnd(s.source, span.End); next < len(s.source) {
			span.End = s.lineEnd(skipLineEnding(s.source, next))
		}
	}
	return span
}

func (s *spanner) lineStart(seg text.Segment) int {
	start := seg.Start
	for start < seg.Stop && isSpaceOrTab(s.source[start]) {
		start++
	}
	return start
}

// lineEnd returns the position after the last non-whitespace byte
// on the line containing pos, starting the search at pos.
func (s *spanner) lineEnd(pos int) int {
	end := indexLineEnd(s.source, pos)
	for end > pos && isWhitespace(s.source[end-1]) {
		end--
	}
	return end
}

// relocateFootnotes moves footnote definitions
// out of the footnote list goldmark gathers them into
// and back to the containers they were written in.
func (s *spanner) relocateFootnotes(doc ast.Node) {
	var lists []*extast.FootnoteList
	walk(doc, &walkOptions{
		Pre: func(c *cursor) bool {
			if list, ok := c.Node().(*extast.FootnoteList); ok {
				lists = append(lists, list)
				return false
			}
			return c.Node().Type() != ast.TypeInline
		},
	})
	for _, list := range lists {
		var defs []ast.Node
		for def := list.FirstChild(); def != nil; def = def.NextSibling() {
			defs = append(defs, def)
		}
		sort.SliceStable(defs, func(i, j int) bool {
			return s.blockSpan(defs[i]).Start < s.blockSpan(defs[j]).Start
		})
		for _, def := range defs {
			list.RemoveChild(list, def)
			parent := list.Parent()
			if r := s.rec.blocks[def]; r != nil && r.parent != nil {
				parent = r.parent
			}
			s.insertByPosition(parent, def)
		}
		if p := list.Parent(); p != nil {
			p.RemoveChild(p, list)
		}
	}
	s.memo = nil
}

func (s *spanner) insertByPosition(parent, n ast.Node) {
	start := s.blockSpan(n).Start
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		if _, isList := child.(*extast.FootnoteList); isList {
			continue
		}
		if child.Type() == ast.TypeBlock && s.blockSpan(child).Start > start {
			parent.InsertBefore(parent, child, n)
			return
		}
	}
	parent.AppendChild(parent, n)
}

func indexLineEnd(source []byte, pos int) int {
	for i := pos; i < len(source); i++ {
		if source[i] == '\n' || source[i] == '\r' {
			return i
		}
	}
	return len(source)
}

func skipLineEnding(source []byte, pos int) int {
	if pos < len(source) && source[pos] == '\r' {
		pos++
	}
	if pos < len(source) && source[pos] == '\n' {
		pos++
	}
	return pos
}

func isSpaceOrTab(c byte) bool {
	return c == ' ' || c == '\t'
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}
