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

// Package normhtml normalizes rendered HTML so that two renderings
// of equivalent Markdown documents compare equal.
// It follows the [CommonMark spec test normalization]
// and additionally ignores whitespace differences that
// reformatting a document may introduce, like line breaks in comments.
//
// [CommonMark spec test normalization]: https://github.com/commonmark/commonmark-spec/blob/0.30.0/test/normalize.py
package normhtml

import (
	"bytes"
	"regexp"
	"sort"
	"unicode"

	"go4.org/bytereplacer"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

var htmlEscaper = bytereplacer.New(
	"&", "&amp;",
	`'`, "&apos;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

// Equal reports whether two HTML fragments are the same after normalization.
func Equal(a, b []byte) bool {
	return bytes.Equal(NormalizeHTML(a), NormalizeHTML(b))
}

// NormalizeHTML strips insignificant output differences from HTML.
func NormalizeHTML(b []byte) []byte {
	n := &normalizer{
		tok:  html.NewTokenizerFragment(bytes.NewReader(b), "div"),
		last: html.StartTagToken,
	}
	for {
		tt := n.tok.Next()
		switch tt {
		case html.ErrorToken:
			return n.output
		case html.TextToken:
			n.text()
		case html.EndTagToken:
			n.endTag()
		case html.StartTagToken, html.SelfClosingTagToken:
			n.startTag()
		case html.CommentToken:
			n.comment()
		}
		n.last = tt
		if tt == html.SelfClosingTagToken {
			n.last = html.EndTagToken
		}
	}
}

type normalizer struct {
	tok    *html.Tokenizer
	output []byte
	// last is the type of the previous token.
	last    html.TokenType
	lastTag atom.Atom
	inPre   bool
}

func (n *normalizer) text() {
	data := n.tok.Text()
	afterTag := n.last == html.EndTagToken || n.last == html.StartTagToken
	if afterTag && n.lastTag == atom.Br {
		data = bytes.TrimLeft(data, "\n")
	}
	if !n.inPre {
		data = whitespaceRE.ReplaceAll(data, []byte(" "))
		if afterTag && blockTags[n.lastTag] {
			if n.last == html.StartTagToken {
				data = bytes.TrimLeftFunc(data, unicode.IsSpace)
			} else {
				data = bytes.TrimSpace(data)
			}
		}
	}
	n.output = append(n.output, htmlEscaper.Replace(bytes.Clone(data))...)
}

func (n *normalizer) endTag() {
	name, _ := n.tok.TagName()
	tag := atom.Lookup(name)
	if tag == atom.Pre {
		n.inPre = false
	} else if blockTags[tag] {
		n.trimTrailingSpace()
	}
	n.output = append(n.output, "</"...)
	n.output = append(n.output, name...)
	n.output = append(n.output, ">"...)
	n.lastTag = tag
}

func (n *normalizer) startTag() {
	type attribute struct {
		key   string
		value string
	}

	name, hasAttr := n.tok.TagName()
	tag := atom.Lookup(name)
	if tag == atom.Pre {
		n.inPre = true
	}
	if blockTags[tag] {
		n.trimTrailingSpace()
	}
	n.output = append(n.output, "<"...)
	n.output = append(n.output, name...)
	var attrs []attribute
	for hasAttr {
		var k, v []byte
		k, v, hasAttr = n.tok.TagAttr()
		attrs = append(attrs, attribute{string(k), string(v)})
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].key < attrs[j].key
	})
	for _, attr := range attrs {
		n.output = append(n.output, " "...)
		n.output = append(n.output, attr.key...)
		if attr.value != "" {
			n.output = append(n.output, `="`...)
			n.output = append(n.output, html.EscapeString(attr.value)...)
			n.output = append(n.output, `"`...)
		}
	}
	n.output = append(n.output, ">"...)
	n.lastTag = tag
}

// comment writes a comment with its whitespace runs collapsed,
// since a formatter may rewrap a comment that spans lines.
func (n *normalizer) comment() {
	n.output = append(n.output, "<!--"...)
	n.output = append(n.output, whitespaceRE.ReplaceAll(n.tok.Text(), []byte(" "))...)
	n.output = append(n.output, "-->"...)
}

func (n *normalizer) trimTrailingSpace() {
	n.output = bytes.TrimRightFunc(n.output, unicode.IsSpace)
}

var blockTags = map[atom.Atom]bool{
	atom.Article:    true,
	atom.Aside:      true,
	atom.Blockquote: true,
	atom.Body:       true,
	atom.Button:     true,
	atom.Canvas:     true,
	atom.Caption:    true,
	atom.Col:        true,
	atom.Colgroup:   true,
	atom.Dd:         true,
	atom.Div:        true,
	atom.Dl:         true,
	atom.Dt:         true,
	atom.Embed:      true,
	atom.Fieldset:   true,
	atom.Figcaption: true,
	atom.Figure:     true,
	atom.Footer:     true,
	atom.Form:       true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Header:     true,
	atom.Hgroup:     true,
	atom.Hr:         true,
	atom.Iframe:     true,
	atom.Li:         true,
	atom.Map:        true,
	atom.Object:     true,
	atom.Ol:         true,
	atom.Output:     true,
	atom.P:          true,
	atom.Pre:        true,
	atom.Progress:   true,
	atom.Script:     true,
	atom.Section:    true,
	atom.Style:      true,
	atom.Table:      true,
	atom.Tbody:      true,
	atom.Td:         true,
	atom.Textarea:   true,
	atom.Tfoot:      true,
	atom.Th:         true,
	atom.Thead:      true,
	atom.Tr:         true,
	atom.Ul:         true,
	atom.Video:      true,
}
