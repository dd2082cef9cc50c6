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
)

func TestCountNewlines(t *testing.T) {
	tests := []struct {
		s    string
		want int
	}{
		{"", 0},
		{"abc", 0},
		{"a\nb", 1},
		{"a\r\nb\nc\r", 3},
		{"\n\n", 2},
	}
	for _, test := range tests {
		if got := countNewlines(test.s); got != test.want {
			t.Errorf("countNewlines(%q) = %d; want %d", test.s, got, test.want)
		}
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		s    string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\r\nb\n", []string{"a", "b"}},
		{"a\n\nb", []string{"a", "", "b"}},
		{"a\rb", []string{"a", "b"}},
	}
	for _, test := range tests {
		if diff := cmp.Diff(test.want, splitLines(test.s)); diff != "" {
			t.Errorf("splitLines(%q) (-want +got):\n%s", test.s, diff)
		}
	}
}

func TestLines(t *testing.T) {
	tests := []struct {
		s    string
		want []string
	}{
		{"", nil},
		{"a\r\nb\n", []string{"a", "b"}},
		{"a\n\n", []string{"a", ""}},
	}
	for _, test := range tests {
		if diff := cmp.Diff(test.want, lines(test.s)); diff != "" {
			t.Errorf("lines(%q) (-want +got):\n%s", test.s, diff)
		}
	}
}

func TestSequenceEndsOnEscape(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"", false},
		{`a\`, true},
		{`a\\`, false},
		{`a\\\`, true},
		{`\a`, false},
	}
	for _, test := range tests {
		if got := sequenceEndsOnEscape(test.s); got != test.want {
			t.Errorf("sequenceEndsOnEscape(%q) = %t; want %t", test.s, got, test.want)
		}
	}
}

func TestCountTrailingSpaces(t *testing.T) {
	tests := []struct {
		s    string
		want int
	}{
		{"a", 0},
		{"a  ", 2},
		{"a   \n", 3},
		{"a\t", 0},
	}
	for _, test := range tests {
		if got := countTrailingSpaces(test.s); got != test.want {
			t.Errorf("countTrailingSpaces(%q) = %d; want %d", test.s, got, test.want)
		}
	}
}

func TestIsBalanced(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"", true},
		{"(a(b))", true},
		{`(a\)`, false},
		{`(a\()`, true},
		{")(", false},
	}
	for _, test := range tests {
		if got := isBalanced(test.s, '(', ')'); got != test.want {
			t.Errorf("isBalanced(%q, '(', ')') = %t; want %t", test.s, got, test.want)
		}
	}
}
