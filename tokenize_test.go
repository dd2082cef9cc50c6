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
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func start(tag Tag, start, end int) Event {
	return Event{Kind: StartEvent, Tag: tag, Span: Span{start, end}}
}

func end(tag Tag, start, end int) Event {
	return Event{Kind: EndEvent, Tag: tag, Span: Span{start, end}}
}

func textEvent(s string, start, end int) Event {
	return Event{Kind: TextEvent, Text: s, Span: Span{start, end}}
}

func TestTokenize(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdfmt.tokenize")
	defer teardown()

	h1 := Tag{Kind: HeadingTag, Level: 1}
	para := Tag{Kind: ParagraphTag}
	em := Tag{Kind: EmphasisTag}
	list := Tag{Kind: ListTag}
	item := Tag{Kind: ItemTag}
	table := Tag{Kind: TableTag, Alignments: []Alignment{AlignNone, AlignNone}}
	table1 := Tag{Kind: TableTag, Alignments: []Alignment{AlignNone}}
	head := Tag{Kind: TableHeadTag}
	row := Tag{Kind: TableRowTag}
	cell := Tag{Kind: TableCellTag}
	footnote := Tag{Kind: FootnoteDefinitionTag, Label: "1"}
	link := Tag{Kind: LinkTag, LinkType: ShortcutLink, Destination: "/u"}

	tests := []struct {
		name   string
		source string
		want   []Event
	}{
		{
			name:   "Empty",
			source: "",
			want:   nil,
		},
		{
			name:   "ATXHeading",
			source: "# Hello\n",
			want: []Event{
				start(h1, 0, 7),
				textEvent("Hello", 2, 7),
				end(h1, 0, 7),
			},
		},
		{
			name:   "IndentedATXHeading",
			source: "  #   Hello ",
			want: []Event{
				start(h1, 2, 11),
				textEvent("Hello", 6, 11),
				end(h1, 2, 11),
			},
		},
		{
			name:   "Emphasis",
			source: "*a* b\n",
			want: []Event{
				start(para, 0, 5),
				start(em, 0, 3),
				textEvent("a", 1, 2),
				end(em, 0, 3),
				textEvent(" b", 3, 5),
				end(para, 0, 5),
			},
		},
		{
			name:   "SoftBreak",
			source: "a\nb\n",
			want: []Event{
				start(para, 0, 3),
				textEvent("a", 0, 1),
				{Kind: SoftBreakEvent, Text: "\n", Span: Span{1, 2}},
				textEvent("b", 2, 3),
				end(para, 0, 3),
			},
		},
		{
			name:   "CodeSpan",
			source: "`a` b",
			want: []Event{
				start(para, 0, 5),
				{Kind: CodeEvent, Text: "`a`", Span: Span{0, 3}},
				textEvent(" b", 3, 5),
				end(para, 0, 5),
			},
		},
		{
			name:   "TightList",
			source: "- a\n- b\n",
			want: []Event{
				start(list, 0, 7),
				start(item, 0, 3),
				textEvent("a", 2, 3),
				end(item, 0, 3),
				start(item, 4, 7),
				textEvent("b", 6, 7),
				end(item, 4, 7),
				end(list, 0, 7),
			},
		},
		{
			name:   "ShortcutLinkWithDefinition",
			source: "[x]\n\n[x]: /u\n",
			want: []Event{
				start(para, 0, 3),
				start(link, 0, 3),
				textEvent("x", 1, 2),
				end(link, 0, 3),
				end(para, 0, 3),
			},
		},
		{
			name:   "Table",
			source: "| a | b |\n| - | - |\n| c | d |\n",
			want: []Event{
				start(table, 0, 29),
				start(head, 2, 7),
				start(cell, 2, 3),
				textEvent("a", 2, 3),
				end(cell, 2, 3),
				start(cell, 6, 7),
				textEvent("b", 6, 7),
				end(cell, 6, 7),
				end(head, 2, 7),
				start(row, 22, 27),
				start(cell, 22, 23),
				textEvent("c", 22, 23),
				end(cell, 22, 23),
				start(cell, 26, 27),
				textEvent("d", 26, 27),
				end(cell, 26, 27),
				end(row, 22, 27),
				end(table, 0, 29),
			},
		},
		{
			name:   "EmptyHeaderRow",
			source: "||\n|-|\n",
			want: []Event{
				start(table1, 0, 6),
				start(head, 0, 2),
				start(cell, 2, 2),
				end(cell, 2, 2),
				end(head, 0, 2),
				end(table1, 0, 6),
			},
		},
		{
			name:   "BareHeaderPipe",
			source: "|\n-|",
			want: []Event{
				start(table1, 0, 4),
				start(head, 0, 1),
				start(cell, 1, 1),
				end(cell, 1, 1),
				end(head, 0, 1),
				end(table1, 0, 4),
			},
		},
		{
			name:   "ShortRow",
			source: "| a | b |\n| - | - |\n| c |\n",
			want: []Event{
				start(table, 0, 25),
				start(head, 2, 7),
				start(cell, 2, 3),
				textEvent("a", 2, 3),
				end(cell, 2, 3),
				start(cell, 6, 7),
				textEvent("b", 6, 7),
				end(cell, 6, 7),
				end(head, 2, 7),
				start(row, 22, 23),
				start(cell, 22, 23),
				textEvent("c", 22, 23),
				end(cell, 22, 23),
				start(cell, 23, 23),
				end(cell, 23, 23),
				end(row, 22, 23),
				end(table, 0, 25),
			},
		},
		{
			name:   "Footnote",
			source: "a[^1]\n\n[^1]: b\n",
			want: []Event{
				start(para, 0, 5),
				textEvent("a", 0, 1),
				{Kind: FootnoteReferenceEvent, Text: "1", Span: Span{1, 5}},
				end(para, 0, 5),
				start(footnote, 7, 14),
				start(para, 13, 14),
				textEvent("b", 13, 14),
				end(para, 13, 14),
				end(footnote, 7, 14),
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Tokenize([]byte(test.source)).Collect()
			if diff := cmp.Diff(test.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Tokenize(%q) (-want +got):\n%s", test.source, diff)
				t.Logf("events:\n%s", spew.Sdump(got))
			}
		})
	}
}

func TestTokenizeSpansInSource(t *testing.T) {
	sources := []string{
		"# Title\n\nSome *emphasis* and **strong** text.\n",
		"> quote\n> more\n\n1. one\n2. two\n",
		"```go\nfmt.Println()\n```\n",
		"<div>\nhi\n</div>\n",
		"Term\n: Definition\n",
		"- [x] done\n- [ ] todo\n",
		"~~gone~~ <https://example.com> ![alt](img.png \"t\")\n",
		"Setext\n======\n\n---\n",
		"||\n|-|\n",
		"|\n-|",
		"|\n| -",
		"| a | b |\n|---|---|\n|\n",
	}
	for _, source := range sources {
		for _, e := range Tokenize([]byte(source)).Collect() {
			if !e.Span.IsValid() || e.Span.End > len(source) {
				t.Errorf("Tokenize(%q) event %v has span outside of source", source, e)
			}
		}
	}
}

func TestTokenizeBalanced(t *testing.T) {
	sources := []string{
		"* a\n\n  b\n",
		"Term\n: Definition\n\n  more\n",
		"[^x]: note\n\n  continued\n\ntext[^x]\n",
		"| a |\n|---|\n",
		"***a***",
	}
	for _, source := range sources {
		var stack []TagKind
		for _, e := range Tokenize([]byte(source)).Collect() {
			switch e.Kind {
			case StartEvent:
				stack = append(stack, e.Tag.Kind)
			case EndEvent:
				if len(stack) == 0 || stack[len(stack)-1] != e.Tag.Kind {
					t.Fatalf("Tokenize(%q): unbalanced %v (stack = %v)", source, e, stack)
				}
				stack = stack[:len(stack)-1]
			}
		}
		if len(stack) > 0 {
			t.Errorf("Tokenize(%q): unclosed %v", source, stack)
		}
	}
}

func TestHeadingAttributes(t *testing.T) {
	tests := []struct {
		source string
		attrs  *Attributes
		empty  bool
	}{
		{source: "# Plain\n"},
		{source: "## H2 {} ##\n", empty: true},
		{
			source: "# Title {#intro .a .b}\n",
			attrs:  &Attributes{ID: "intro", Classes: []string{"a", "b"}},
		},
	}
	for _, test := range tests {
		events := Tokenize([]byte(test.source)).Collect()
		if len(events) == 0 || !events[0].IsStart(HeadingTag) {
			t.Errorf("Tokenize(%q) = %v; want heading", test.source, events)
			continue
		}
		tag := events[0].Tag
		if diff := cmp.Diff(test.attrs, tag.Attributes); diff != "" {
			t.Errorf("Tokenize(%q) attributes (-want +got):\n%s", test.source, diff)
		}
		if tag.EmptyAttributes != test.empty {
			t.Errorf("Tokenize(%q) EmptyAttributes = %t; want %t", test.source, tag.EmptyAttributes, test.empty)
		}
	}
}

func TestSpanString(t *testing.T) {
	tests := []struct {
		span Span
		want string
	}{
		{Span{0, 0}, "[0,0)"},
		{Span{12, 34}, "[12,34)"},
		{NullSpan(), "[-1,-1)"},
	}
	for _, test := range tests {
		if got := test.span.String(); got != test.want {
			t.Errorf("Span%v.String() = %q; want %q", [2]int{test.span.Start, test.span.End}, got, test.want)
		}
	}
}
