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

import "bytes"

// frontMatter is the location of a metadata block at the start of a document.
type frontMatter struct {
	kind MetadataKind
	// content is the region between the fences,
	// including the final line ending.
	content Span
	// end is the end of the closing fence line,
	// not including its line ending.
	end int
}

// findFrontMatter reports the metadata block at the beginning of source.
// The opening fence must be the first line of the document
// and must be followed by a non-blank line.
func findFrontMatter(source []byte) (frontMatter, bool) {
	var fence string
	var kind MetadataKind
	switch {
	case bytes.HasPrefix(source, []byte("---")):
		fence, kind = "---", YAMLMetadata
	case bytes.HasPrefix(source, []byte("+++")):
		fence, kind = "+++", TOMLMetadata
	default:
		return frontMatter{}, false
	}
	line, pos := nextLine(source, 0)
	if string(trimSpaceRight(line)) != fence {
		return frontMatter{}, false
	}
	if next, _ := nextLine(source, pos); len(bytes.TrimSpace(next)) == 0 {
		return frontMatter{}, false
	}
	contentStart := pos
	for pos < len(source) {
		lineStart := pos
		line, pos = nextLine(source, pos)
		closer := string(trimSpaceRight(line))
		if closer == fence || kind == YAMLMetadata && closer == "..." {
			return frontMatter{
				kind:    kind,
				content: Span{Start: contentStart, End: lineStart},
				end:     lineStart + len(trimLineEnding(line)),
			}, true
		}
	}
	return frontMatter{}, false
}

// blankFrontMatter returns a copy of source with every byte of the
// metadata block other than line endings replaced by a space.
func blankFrontMatter(source []byte, fm frontMatter) []byte {
	blanked := bytes.Clone(source)
	for i := 0; i < fm.end; i++ {
		if c := blanked[i]; c != '\n' && c != '\r' {
			blanked[i] = ' '
		}
	}
	return blanked
}

// metadataEvents returns the events for a metadata block.
func metadataEvents(source []byte, fm frontMatter) []Event {
	tag := Tag{Kind: MetadataBlockTag, Metadata: fm.kind}
	span := Span{Start: 0, End: fm.end}
	events := []Event{{Kind: StartEvent, Tag: tag, Span: span}}
	if fm.content.Len() > 0 {
		events = append(events, Event{
			Kind: TextEvent,
			Text: string(fm.content.Slice(source)),
			Span: fm.content,
		})
	}
	return append(events, Event{Kind: EndEvent, Tag: tag, Span: span})
}

// nextLine returns the line starting at pos (including its line ending)
// and the position of the following line.
func nextLine(source []byte, pos int) (line []byte, next int) {
	i := bytes.IndexByte(source[pos:], '\n')
	if i < 0 {
		return source[pos:], len(source)
	}
	return source[pos : pos+i+1], pos + i + 1
}

func trimLineEnding(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r"))
}

func trimSpaceRight(b []byte) []byte {
	return bytes.TrimRight(b, " \t\r\n")
}
