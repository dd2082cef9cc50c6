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
	"testing"

	"github.com/google/go-cmp/cmp"
	"zombiezen.com/go/mdfmt"
)

// sliceSource is an eventSource that returns a fixed list of events.
type sliceSource []mdfmt.Event

func (s *sliceSource) Next() (mdfmt.Event, bool) {
	if len(*s) == 0 {
		return mdfmt.Event{}, false
	}
	e := (*s)[0]
	*s = (*s)[1:]
	return e, true
}

func collect(src eventSource) []mdfmt.Event {
	var events []mdfmt.Event
	for {
		e, ok := src.Next()
		if !ok {
			return events
		}
		events = append(events, e)
	}
}

func startEvent(kind mdfmt.TagKind, start, end int) mdfmt.Event {
	return mdfmt.Event{Kind: mdfmt.StartEvent, Tag: mdfmt.Tag{Kind: kind}, Span: mdfmt.Span{Start: start, End: end}}
}

func endEvent(kind mdfmt.TagKind, start, end int) mdfmt.Event {
	return mdfmt.Event{Kind: mdfmt.EndEvent, Tag: mdfmt.Tag{Kind: kind}, Span: mdfmt.Span{Start: start, End: end}}
}

func textEvent(text string, start, end int) mdfmt.Event {
	return mdfmt.Event{Kind: mdfmt.TextEvent, Text: text, Span: mdfmt.Span{Start: start, End: end}}
}

func TestLooseListAdapter(t *testing.T) {
	// "- a\n- b"
	src := &sliceSource{
		startEvent(mdfmt.ListTag, 0, 7),
		startEvent(mdfmt.ItemTag, 0, 3),
		textEvent("a", 2, 3),
		endEvent(mdfmt.ItemTag, 0, 3),
		startEvent(mdfmt.ItemTag, 4, 7),
		textEvent("b", 6, 7),
		endEvent(mdfmt.ItemTag, 4, 7),
		endEvent(mdfmt.ListTag, 0, 7),
	}
	got := collect(newLooseListAdapter(src))
	want := []mdfmt.Event{
		startEvent(mdfmt.ListTag, 0, 7),
		startEvent(mdfmt.ItemTag, 0, 3),
		startEvent(mdfmt.ParagraphTag, 2, 3),
		textEvent("a", 2, 3),
		endEvent(mdfmt.ParagraphTag, 2, 3),
		endEvent(mdfmt.ItemTag, 0, 3),
		startEvent(mdfmt.ItemTag, 4, 7),
		startEvent(mdfmt.ParagraphTag, 6, 7),
		textEvent("b", 6, 7),
		endEvent(mdfmt.ParagraphTag, 6, 7),
		endEvent(mdfmt.ItemTag, 4, 7),
		endEvent(mdfmt.ListTag, 0, 7),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestLooseListAdapterKeepsParagraphs(t *testing.T) {
	// "- a\n\n  b"
	events := []mdfmt.Event{
		startEvent(mdfmt.ListTag, 0, 8),
		startEvent(mdfmt.ItemTag, 0, 8),
		startEvent(mdfmt.ParagraphTag, 2, 3),
		textEvent("a", 2, 3),
		endEvent(mdfmt.ParagraphTag, 2, 3),
		startEvent(mdfmt.ParagraphTag, 7, 8),
		textEvent("b", 7, 8),
		endEvent(mdfmt.ParagraphTag, 7, 8),
		endEvent(mdfmt.ItemTag, 0, 8),
		endEvent(mdfmt.ListTag, 0, 8),
	}
	src := sliceSource(append([]mdfmt.Event(nil), events...))
	got := collect(newLooseListAdapter(&src))
	if diff := cmp.Diff(events, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestListEndAdapter(t *testing.T) {
	// "- a\n\n\nb"
	src := &sliceSource{
		startEvent(mdfmt.ListTag, 0, 6),
		startEvent(mdfmt.ItemTag, 0, 3),
		endEvent(mdfmt.ItemTag, 0, 3),
		endEvent(mdfmt.ListTag, 0, 6),
	}
	got := collect(&listEndAdapter{src: src})
	want := []mdfmt.Event{
		startEvent(mdfmt.ListTag, 0, 6),
		startEvent(mdfmt.ItemTag, 0, 3),
		endEvent(mdfmt.ItemTag, 0, 3),
		endEvent(mdfmt.ListTag, 0, 3),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestTextMergeAdapter(t *testing.T) {
	const source = "[foo] bar"
	src := &sliceSource{
		startEvent(mdfmt.ParagraphTag, 0, 9),
		textEvent("[foo", 0, 4),
		textEvent("] bar", 4, 9),
		endEvent(mdfmt.ParagraphTag, 0, 9),
	}
	got := collect(&textMergeAdapter{src: newPeeker(src), source: []byte(source)})
	want := []mdfmt.Event{
		startEvent(mdfmt.ParagraphTag, 0, 9),
		textEvent("[foo] bar", 0, 9),
		endEvent(mdfmt.ParagraphTag, 0, 9),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestPeeker(t *testing.T) {
	src := &sliceSource{textEvent("a", 0, 1), textEvent("b", 1, 2)}
	p := newPeeker(src)
	if e, ok := p.Peek(); !ok || e.Text != "a" {
		t.Fatalf("Peek() = %v, %t; want Text(\"a\"), true", e, ok)
	}
	if e, ok := p.Next(); !ok || e.Text != "a" {
		t.Fatalf("Next() = %v, %t; want Text(\"a\"), true", e, ok)
	}
	if e, ok := p.Next(); !ok || e.Text != "b" {
		t.Fatalf("Next() = %v, %t; want Text(\"b\"), true", e, ok)
	}
	if e, ok := p.Peek(); ok {
		t.Errorf("Peek() = %v, true; want _, false", e)
	}
}
