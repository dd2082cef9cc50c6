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

// writeKind describes what produced a string passed to a [subWriter].
type writeKind uint8

const (
	textWrite writeKind = iota
	escapeWrite
	softBreakWrite
	hardBreakWrite
)

// A subWriter buffers the output of a construct
// that must be seen in full before it can be written out.
type subWriter interface {
	writeString(kind writeKind, s string)
	isEmpty() bool
}

// codeBlockWriter collects the lines of a code block.
type codeBlockWriter struct {
	buf strings.Builder
	tag mdfmt.Tag
}

func (w *codeBlockWriter) writeString(_ writeKind, s string) { w.buf.WriteString(s) }
func (w *codeBlockWriter) isEmpty() bool                     { return w.buf.Len() == 0 }

// footnoteIndent is the indentation of a footnote definition's content.
const footnoteIndent = "    "

// footnoteWriter collects the content of a footnote definition.
// It holds the enclosing indentation while the content is written,
// so the content is buffered without it.
type footnoteWriter struct {
	buf         strings.Builder
	indentation []string
}

func (w *footnoteWriter) writeString(_ writeKind, s string) { w.buf.WriteString(s) }
func (w *footnoteWriter) isEmpty() bool                     { return w.buf.Len() == 0 }

// definitionTitleWriter collects a definition list term.
type definitionTitleWriter struct {
	buf strings.Builder
}

func (w *definitionTitleWriter) writeString(_ writeKind, s string) { w.buf.WriteString(s) }
func (w *definitionTitleWriter) isEmpty() bool                     { return w.buf.Len() == 0 }

// builderWriter adapts the top-level output buffer to [subWriter].
type builderWriter struct {
	strings.Builder
}

func (w *builderWriter) writeString(_ writeKind, s string) { w.WriteString(s) }
func (w *builderWriter) isEmpty() bool                     { return w.Len() == 0 }
