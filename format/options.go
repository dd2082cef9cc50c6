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

// Options is the set of parameters for [Format].
// The zero value keeps the document's line breaks and list markers
// and leaves code blocks untouched.
type Options struct {
	// MaxWidth is the maximum width of paragraph lines.
	// Zero means lines are never wrapped.
	MaxWidth int
	// ReflowText joins the lines of each paragraph
	// before wrapping them to MaxWidth.
	// It has no effect unless MaxWidth is set.
	ReflowText bool
	// UnorderedListMarker is the bullet used for unordered list items.
	// The zero value keeps each list's original bullet.
	UnorderedListMarker ListMarker
	// CodeFormatter formats the contents of fenced code blocks.
	// If nil, code is written as-is.
	CodeFormatter CodeFormatter
}

func (opts *Options) maxWidth() int {
	if opts == nil {
		return 0
	}
	return opts.MaxWidth
}

// withMaxWidth returns a copy of opts with its width reduced by n columns.
func (opts *Options) withMaxWidth(n int) *Options {
	newOpts := new(Options)
	if opts != nil {
		*newOpts = *opts
	}
	if newOpts.MaxWidth > 0 {
		newOpts.MaxWidth = max(1, newOpts.MaxWidth-n)
	}
	return newOpts
}

// CodeBlockContext describes where a code block appears in the document.
type CodeBlockContext struct {
	// Indentation is the width of the prefix written before each line of the block.
	Indentation int
	// MaxWidth is the document's maximum width or zero if unlimited.
	MaxWidth int
}

// A CodeFormatter formats the contents of a fenced code block.
// info is the block's info string.
// FormatCode returns the replacement code.
// Returning code unchanged is always valid.
type CodeFormatter interface {
	FormatCode(ctx CodeBlockContext, info, code string) string
}

// CodeFormatterFunc is a function that implements [CodeFormatter].
type CodeFormatterFunc func(ctx CodeBlockContext, info, code string) string

// FormatCode returns f(ctx, info, code).
func (f CodeFormatterFunc) FormatCode(ctx CodeBlockContext, info, code string) string {
	return f(ctx, info, code)
}
