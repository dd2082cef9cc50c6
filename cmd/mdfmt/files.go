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

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"zombiezen.com/go/mdfmt/format"
)

func checkMarkdownPath(path string) error {
	if filepath.Ext(path) != ".md" {
		return fmt.Errorf("%s is not a markdown (.md) file", path)
	}
	return nil
}

// readSource reads a document, dropping any byte order mark.
// Input without a byte order mark is passed through unchanged.
func readSource(r io.Reader) ([]byte, error) {
	return io.ReadAll(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
}

// formatFiles formats the files at paths concurrently.
// If toStdout is true, the results are written to w in argument order.
// Otherwise, each file that changes is rewritten in place.
func formatFiles(ctx context.Context, w io.Writer, paths []string, opts *format.Options, toStdout bool) error {
	for _, path := range paths {
		if err := checkMarkdownPath(path); err != nil {
			return err
		}
	}
	results := make([][]byte, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := formatFile(path, opts, !toStdout)
			results[i] = out
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if !toStdout {
		return nil
	}
	for _, out := range results {
		if _, err := w.Write(out); err != nil {
			return err
		}
	}
	return nil
}

// formatFile returns the formatted content of the file at path.
// If writeBack is true and the content changed, the file is rewritten.
func formatFile(path string, opts *format.Options, writeBack bool) ([]byte, error) {
	original, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	source, err := readSource(bytes.NewReader(original))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	out := new(bytes.Buffer)
	if err := format.Format(out, source, opts); err != nil {
		return nil, fmt.Errorf("format %s: %w", path, err)
	}
	if !writeBack || bytes.Equal(out.Bytes(), original) {
		return out.Bytes(), nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, out.Bytes(), info.Mode().Perm()); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
