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

	"github.com/mattn/go-runewidth"
	"zombiezen.com/go/mdfmt"
)

// minColumnWidth is the narrowest column a delimiter row can describe
// with every alignment.
const minColumnWidth = 3

// tableWriter collects the cells of a table
// and lays them out in aligned columns.
type tableWriter struct {
	alignments []mdfmt.Alignment
	// rows[0] is the header row.
	rows [][]*strings.Builder
	col  int
}

func newTableWriter(alignments []mdfmt.Alignment) *tableWriter {
	return &tableWriter{
		alignments: alignments,
		rows:       [][]*strings.Builder{nil},
	}
}

func (t *tableWriter) isEmpty() bool {
	for _, row := range t.rows {
		if len(row) > 0 {
			return false
		}
	}
	return true
}

// pushRow starts a new body row.
// Header cells are written to the row the writer starts with.
func (t *tableWriter) pushRow() {
	t.rows = append(t.rows, nil)
	t.col = 0
}

// nextCell moves to the next cell in the current row.
func (t *tableWriter) nextCell() {
	t.col++
}

func (t *tableWriter) cell() *strings.Builder {
	row := &t.rows[len(t.rows)-1]
	for len(*row) <= t.col {
		*row = append(*row, new(strings.Builder))
	}
	return (*row)[t.col]
}

func (t *tableWriter) writeString(_ writeKind, s string) {
	t.cell().WriteString(s)
}

// format returns the table with each row on its own line.
// The leading '|' of each row is left to the caller's indentation.
func (t *tableWriter) format() string {
	ncols := len(t.alignments)
	for _, row := range t.rows {
		ncols = max(ncols, len(row))
	}
	cells := make([][]string, len(t.rows))
	widths := make([]int, ncols)
	for i := range widths {
		widths[i] = minColumnWidth
	}
	for i, row := range t.rows {
		cells[i] = make([]string, ncols)
		for j, c := range row {
			cells[i][j] = strings.TrimSpace(c.String())
			widths[j] = max(widths[j], runewidth.StringWidth(cells[i][j]))
		}
	}

	formatRow := func(row []string) string {
		sb := new(strings.Builder)
		for j, c := range row {
			sb.WriteString(" ")
			sb.WriteString(t.pad(j, c, widths[j]))
			sb.WriteString(" |")
		}
		return sb.String()
	}
	delims := make([]string, ncols)
	for j := range delims {
		delims[j] = delimiterCell(t.alignment(j), widths[j])
	}
	out := []string{formatRow(cells[0]), formatRow(delims)}
	for _, row := range cells[1:] {
		out = append(out, formatRow(row))
	}
	return strings.Join(out, "\n")
}

func (t *tableWriter) alignment(col int) mdfmt.Alignment {
	if col < len(t.alignments) {
		return t.alignments[col]
	}
	return mdfmt.AlignNone
}

func (t *tableWriter) pad(col int, s string, width int) string {
	n := width - runewidth.StringWidth(s)
	if n <= 0 {
		return s
	}
	switch t.alignment(col) {
	case mdfmt.AlignRight:
		return strings.Repeat(" ", n) + s
	case mdfmt.AlignCenter:
		left := n / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", n-left)
	default:
		return s + strings.Repeat(" ", n)
	}
}

func delimiterCell(a mdfmt.Alignment, width int) string {
	switch a {
	case mdfmt.AlignLeft:
		return ":" + strings.Repeat("-", width-1)
	case mdfmt.AlignRight:
		return strings.Repeat("-", width-1) + ":"
	case mdfmt.AlignCenter:
		return ":" + strings.Repeat("-", width-2) + ":"
	default:
		return strings.Repeat("-", width)
	}
}
