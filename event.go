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
	"fmt"
	"strings"
)

// Span is a contiguous region of a document
// reference in a [Event].
type Span struct {
	// Start is the index of the first byte of the span,
	// relative to the beginning of the source.
	Start int
	// End is the end index of the span (exclusive),
	// relative to the beginning of the source.
	End int
}

// NullSpan returns an invalid span.
func NullSpan() Span {
	return Span{-1, -1}
}

// IsValid reports whether the span is valid.
func (span Span) IsValid() bool {
	return span.Start >= 0 && span.End >= 0 && span.Start <= span.End
}

// Len returns the length of the span
// or zero if the span is invalid.
func (span Span) Len() int {
	if !span.IsValid() {
		return 0
	}
	return span.End - span.Start
}

// Slice returns the bytes of source covered by the span.
func (span Span) Slice(source []byte) []byte {
	return source[span.Start:span.End]
}

// String formats the span indices as a mathematical range like "[12,34)".
func (span Span) String() string {
	return fmt.Sprintf("[%d,%d)", span.Start, span.End)
}

// EventKind is an enumeration of the events a [Stream] produces.
type EventKind uint8

const (
	// StartEvent opens the container described by [Event.Tag].
	StartEvent EventKind = 1 + iota
	// EndEvent closes the container described by [Event.Tag].
	EndEvent
	// TextEvent is a run of text.
	// Within documents, [Event.Text] is the raw source text (escapes included).
	// Within code blocks and metadata blocks it is one line of content.
	TextEvent
	// CodeEvent is an inline code span.
	// [Event.Text] holds the code span's source including backticks.
	CodeEvent
	// HTMLEvent is one line of an HTML block.
	HTMLEvent
	// InlineHTMLEvent is an inline raw HTML tag.
	InlineHTMLEvent
	// FootnoteReferenceEvent is a footnote reference like "[^1]".
	// [Event.Text] holds the label.
	FootnoteReferenceEvent
	// SoftBreakEvent is a line ending inside a paragraph.
	SoftBreakEvent
	// HardBreakEvent is a hard line break.
	// [Event.Text] holds its source, like "  \n" or "\\\n".
	HardBreakEvent
	// RuleEvent is a thematic break.
	RuleEvent
	// TaskListMarkerEvent is a task list checkbox.
	// [Event.Checked] reports whether it is checked.
	TaskListMarkerEvent
)

var eventKindNames = [...]string{
	StartEvent:             "Start",
	EndEvent:               "End",
	TextEvent:              "Text",
	CodeEvent:              "Code",
	HTMLEvent:              "Html",
	InlineHTMLEvent:        "InlineHtml",
	FootnoteReferenceEvent: "FootnoteReference",
	SoftBreakEvent:         "SoftBreak",
	HardBreakEvent:         "HardBreak",
	RuleEvent:              "Rule",
	TaskListMarkerEvent:    "TaskListMarker",
}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) && eventKindNames[k] != "" {
		return eventKindNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// TagKind is an enumeration of the containers in a document.
type TagKind uint8

const (
	ParagraphTag TagKind = 1 + iota
	HeadingTag
	BlockQuoteTag
	CodeBlockTag
	HTMLBlockTag
	ListTag
	ItemTag
	FootnoteDefinitionTag
	DefinitionListTag
	DefinitionListTitleTag
	DefinitionListDefinitionTag
	TableTag
	TableHeadTag
	TableRowTag
	TableCellTag
	EmphasisTag
	StrongTag
	StrikethroughTag
	LinkTag
	ImageTag
	MetadataBlockTag
)

var tagKindNames = [...]string{
	ParagraphTag:                "Paragraph",
	HeadingTag:                  "Heading",
	BlockQuoteTag:               "BlockQuote",
	CodeBlockTag:                "CodeBlock",
	HTMLBlockTag:                "HtmlBlock",
	ListTag:                     "List",
	ItemTag:                     "Item",
	FootnoteDefinitionTag:       "FootnoteDefinition",
	DefinitionListTag:           "DefinitionList",
	DefinitionListTitleTag:      "DefinitionListTitle",
	DefinitionListDefinitionTag: "DefinitionListDefinition",
	TableTag:                    "Table",
	TableHeadTag:                "TableHead",
	TableRowTag:                 "TableRow",
	TableCellTag:                "TableCell",
	EmphasisTag:                 "Emphasis",
	StrongTag:                   "Strong",
	StrikethroughTag:            "Strikethrough",
	LinkTag:                     "Link",
	ImageTag:                    "Image",
	MetadataBlockTag:            "MetadataBlock",
}

func (k TagKind) String() string {
	if int(k) < len(tagKindNames) && tagKindNames[k] != "" {
		return tagKindNames[k]
	}
	return fmt.Sprintf("TagKind(%d)", uint8(k))
}

// IsBlock reports whether the tag kind is a block-level container.
func (k TagKind) IsBlock() bool {
	switch k {
	case EmphasisTag, StrongTag, StrikethroughTag, LinkTag, ImageTag:
		return false
	default:
		return k != 0
	}
}

// LinkType describes the syntax a link or image was written with.
type LinkType uint8

const (
	// InlineLink is a link like "[text](url)".
	InlineLink LinkType = 1 + iota
	// ReferenceLink is a link like "[text][label]".
	ReferenceLink
	// CollapsedLink is a link like "[text][]".
	CollapsedLink
	// ShortcutLink is a link like "[text]".
	ShortcutLink
	// AutoLink is a link like "<https://example.com>".
	AutoLink
	// EmailLink is an autolink like "<me@example.com>".
	EmailLink
)

var linkTypeNames = [...]string{
	InlineLink:    "Inline",
	ReferenceLink: "Reference",
	CollapsedLink: "Collapsed",
	ShortcutLink:  "Shortcut",
	AutoLink:      "Autolink",
	EmailLink:     "Email",
}

func (t LinkType) String() string {
	if int(t) < len(linkTypeNames) && linkTypeNames[t] != "" {
		return linkTypeNames[t]
	}
	return fmt.Sprintf("LinkType(%d)", uint8(t))
}

// MetadataKind is the syntax of a front matter block.
type MetadataKind uint8

const (
	// YAMLMetadata is front matter fenced by "---".
	YAMLMetadata MetadataKind = 1 + iota
	// TOMLMetadata is front matter fenced by "+++".
	TOMLMetadata
)

func (k MetadataKind) String() string {
	switch k {
	case YAMLMetadata:
		return "YAML"
	case TOMLMetadata:
		return "TOML"
	default:
		return fmt.Sprintf("MetadataKind(%d)", uint8(k))
	}
}

// Alignment is the alignment of a table column.
type Alignment uint8

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignNone:
		return "None"
	case AlignLeft:
		return "Left"
	case AlignCenter:
		return "Center"
	case AlignRight:
		return "Right"
	default:
		return fmt.Sprintf("Alignment(%d)", uint8(a))
	}
}

// Attribute is a key/value pair from a heading attribute block.
type Attribute struct {
	Key   string
	Value string
}

// Attributes is a parsed heading attribute block like "{#id .class key=value}".
type Attributes struct {
	ID      string
	Classes []string
	Attrs   []Attribute
}

// IsEmpty reports whether the attribute block carries no attributes.
func (attrs *Attributes) IsEmpty() bool {
	return attrs == nil || attrs.ID == "" && len(attrs.Classes) == 0 && len(attrs.Attrs) == 0
}

// Tag describes a container opened by a [StartEvent]
// and closed by the matching [EndEvent].
// Only the fields relevant to Kind are set.
type Tag struct {
	Kind TagKind

	// Level is the heading level (1-6).
	Level int
	// Attributes holds a heading's attribute block, if any.
	Attributes *Attributes
	// EmptyAttributes is true if a heading ends with an empty "{}" attribute block.
	EmptyAttributes bool

	// Fenced is true for fenced code blocks.
	Fenced bool
	// Info is a fenced code block's info string.
	Info string

	// Ordered is true for ordered lists.
	Ordered bool
	// StartNumber is an ordered list's first number.
	StartNumber int

	// Label is a footnote definition's label
	// or a reference link's label.
	Label string

	// Alignments holds a table's column alignments.
	Alignments []Alignment

	// LinkType is the syntax of a link or image.
	LinkType LinkType
	// Destination is a link or image's destination.
	Destination string
	// Title is a link or image's title.
	Title string

	// Metadata is the syntax of a metadata block.
	Metadata MetadataKind
}

func (tag Tag) String() string {
	sb := new(strings.Builder)
	sb.WriteString(tag.Kind.String())
	switch tag.Kind {
	case HeadingTag:
		fmt.Fprintf(sb, "(%d)", tag.Level)
	case CodeBlockTag:
		if tag.Fenced {
			fmt.Fprintf(sb, "(Fenced(%q))", tag.Info)
		} else {
			sb.WriteString("(Indented)")
		}
	case ListTag:
		if tag.Ordered {
			fmt.Fprintf(sb, "(%d)", tag.StartNumber)
		}
	case FootnoteDefinitionTag:
		fmt.Fprintf(sb, "(%q)", tag.Label)
	case LinkTag, ImageTag:
		fmt.Fprintf(sb, "(%v, %q)", tag.LinkType, tag.Destination)
	case MetadataBlockTag:
		fmt.Fprintf(sb, "(%v)", tag.Metadata)
	}
	return sb.String()
}

// Event is a single item produced by [Stream.Next].
type Event struct {
	Kind EventKind
	// Tag is set for [StartEvent] and [EndEvent].
	Tag Tag
	// Text is the event's text. See [EventKind] for its meaning.
	Text string
	// Checked is set for checked [TaskListMarkerEvent] events.
	Checked bool
	// Span is the region of the source the event was produced from.
	Span Span
}

// IsStart reports whether the event starts a container of the given kind.
func (e Event) IsStart(k TagKind) bool {
	return e.Kind == StartEvent && e.Tag.Kind == k
}

// IsEnd reports whether the event ends a container of the given kind.
func (e Event) IsEnd(k TagKind) bool {
	return e.Kind == EndEvent && e.Tag.Kind == k
}

func (e Event) String() string {
	switch e.Kind {
	case StartEvent, EndEvent:
		return fmt.Sprintf("%v(%v) %v", e.Kind, e.Tag, e.Span)
	case TaskListMarkerEvent:
		return fmt.Sprintf("%v(%t) %v", e.Kind, e.Checked, e.Span)
	case SoftBreakEvent, RuleEvent:
		return fmt.Sprintf("%v %v", e.Kind, e.Span)
	default:
		return fmt.Sprintf("%v(%q) %v", e.Kind, e.Text, e.Span)
	}
}
