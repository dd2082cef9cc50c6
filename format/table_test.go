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

func TestTableWriter(t *testing.T) {
	tests := []struct {
		name       string
		alignments []mdfmt.Alignment
		rows       [][]string
		want       string
	}{
		{
			name:       "Minimal",
			alignments: []mdfmt.Alignment{mdfmt.AlignNone, mdfmt.AlignNone},
			rows:       [][]string{{"a", "b"}, {"c", "d"}},
			want: " a   | b   |\n" +
				" --- | --- |\n" +
				" c   | d   |",
		},
		{
			name:       "Alignment",
			alignments: []mdfmt.Alignment{mdfmt.AlignLeft, mdfmt.AlignRight, mdfmt.AlignCenter},
			rows:       [][]string{{"a", "bb", "c"}, {"xxxx", "y", "z"}},
			want: " a    |  bb |  c  |\n" +
				" :--- | --: | :-: |\n" +
				" xxxx |   y |  z  |",
		},
		{
			name:       "WideCharacters",
			alignments: []mdfmt.Alignment{mdfmt.AlignNone},
			rows:       [][]string{{"日本"}, {"x"}},
			want: " 日本 |\n" +
				" ---- |\n" +
				" x    |",
		},
		{
			name:       "MissingCells",
			alignments: []mdfmt.Alignment{mdfmt.AlignNone, mdfmt.AlignNone},
			rows:       [][]string{{"a", "b"}, {"c"}},
			want: " a   | b   |\n" +
				" --- | --- |\n" +
				" c   |     |",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := newTableWriter(test.alignments)
			if !w.isEmpty() {
				t.Error("isEmpty() = false before any writes")
			}
			for i, row := range test.rows {
				if i > 0 {
					w.pushRow()
				}
				for _, cell := range row {
					w.writeString(textWrite, " "+cell+" ")
					w.nextCell()
				}
			}
			if diff := cmp.Diff(test.want, w.format()); diff != "" {
				t.Errorf("format() (-want +got):\n%s", diff)
			}
		})
	}
}
