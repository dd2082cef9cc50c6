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

// Package format rewrites Markdown documents into a canonical form
// that renders the same as the original.
//
// Formatting is idempotent:
// formatting the output of [Format] again produces the same output.
// Link reference definitions, blank lines between blocks
// and the numbering of ordered lists are preserved.
package format

import (
	"io"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("mdfmt.format")
}

// Format writes the formatted form of the Markdown document in source to w.
// A nil opts is the same as a zero [Options].
func Format(w io.Writer, source []byte, opts *Options) error {
	ww := &errWriter{w: w}
	ww.WriteString(newFormatter(source, opts).run())
	return ww.err
}

// String returns the formatted form of the Markdown document in source.
func String(source string, opts *Options) (string, error) {
	sb := new(strings.Builder)
	if err := Format(sb, []byte(source), opts); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// errWriter holds on to the first error returned by w.
// Once an error has occurred, later writes do nothing.
type errWriter struct {
	w   io.Writer
	err error
}

func (w *errWriter) Write(p []byte) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	n, w.err = w.w.Write(p)
	return n, w.err
}

func (w *errWriter) WriteString(s string) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	n, w.err = io.WriteString(w.w, s)
	return n, w.err
}
