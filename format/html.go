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

	"golang.org/x/net/html/atom"
)

// htmlBlockTags is the set of tag names that start an HTML block
// and can interrupt a paragraph.
var htmlBlockTags = func() map[atom.Atom]bool {
	names := []string{
		"address", "article", "aside", "base", "basefont", "blockquote", "body",
		"caption", "center", "col", "colgroup", "dd", "details", "dialog", "dir",
		"div", "dl", "dt", "fieldset", "figcaption", "figure", "footer", "form",
		"frame", "frameset", "h1", "h2", "h3", "h4", "h5", "h6", "head", "header",
		"hr", "html", "iframe", "legend", "li", "link", "main", "menu", "menuitem",
		"nav", "noframes", "ol", "optgroup", "option", "p", "param", "search",
		"section", "summary", "table", "tbody", "td", "tfoot", "th", "thead",
		"title", "tr", "track", "ul",
		// Raw text elements.
		"pre", "script", "style", "textarea",
	}
	m := make(map[atom.Atom]bool, len(names))
	for _, name := range names {
		if a := atom.Lookup([]byte(name)); a != 0 {
			m[a] = true
		}
	}
	return m
}()

// startsWithHTMLBlockIdentifier reports whether s (the text after a '<')
// starts with the name of a tag that begins an HTML block.
func startsWithHTMLBlockIdentifier(s string) bool {
	s = strings.TrimPrefix(s, "/")
	end := 0
	for end < len(s) && isASCIIAlnum(s[end]) {
		end++
	}
	if end == 0 {
		return false
	}
	if !htmlBlockTags[atom.Lookup([]byte(strings.ToLower(s[:end])))] {
		return false
	}
	rest := s[end:]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\n' || rest[0] == '\r' ||
		rest[0] == '>' || strings.HasPrefix(rest, "/>")
}

// couldStartHTMLBlock reports whether a line beginning with s
// would start an HTML block that can interrupt a paragraph.
func couldStartHTMLBlock(s string) bool {
	rest, ok := strings.CutPrefix(s, "<")
	if !ok {
		return false
	}
	return startsWithHTMLBlockIdentifier(rest) ||
		strings.HasPrefix(rest, "!--") ||
		strings.HasPrefix(rest, "?") ||
		strings.HasPrefix(rest, "![CDATA[") ||
		len(rest) >= 2 && rest[0] == '!' && 'A' <= rest[1] && rest[1] <= 'Z'
}

func isASCIIAlnum(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}
