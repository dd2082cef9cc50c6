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

// Package spec provides a corpus of Markdown documents
// paired with their expected formatted forms.
package spec

import (
	_ "embed"
	"encoding/json"
)

// Example is a single document from the corpus.
type Example struct {
	Name     string `json:"name"`
	Section  string `json:"section"`
	Markdown string `json:"markdown"`
	// Formatted is the expected output.
	// An empty Formatted means the document is already formatted.
	Formatted string `json:"formatted,omitempty"`

	MaxWidth            int    `json:"max_width,omitempty"`
	ReflowText          bool   `json:"reflow_text,omitempty"`
	UnorderedListMarker string `json:"unordered_list_marker,omitempty"`
}

// Want returns the expected output of formatting ex.Markdown.
func (ex Example) Want() string {
	if ex.Formatted == "" {
		return ex.Markdown
	}
	return ex.Formatted
}

//go:embed corpus.json
var corpusData []byte

// Load returns the examples in the corpus.
func Load() ([]Example, error) {
	var corpus []Example
	if err := json.Unmarshal(corpusData, &corpus); err != nil {
		return nil, err
	}
	return corpus, nil
}
