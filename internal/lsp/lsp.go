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

// Package lsp implements a language server that formats Markdown documents.
// Only full-document synchronization and textDocument/formatting are supported.
package lsp

import (
	"context"
	"io"

	"github.com/npillmayer/schuko/tracing"
	"github.com/sourcegraph/jsonrpc2"
	"zombiezen.com/go/mdfmt/format"
)

func tracer() tracing.Trace {
	return tracing.Select("mdfmt.lsp")
}

// Serve runs a language server over rwc until the client disconnects
// or ctx is canceled.
// opts are the formatting options used for every document.
func Serve(ctx context.Context, rwc io.ReadWriteCloser, opts *format.Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s := NewServer(opts)
	conn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{}),
		s.Handler())
	select {
	case <-conn.DisconnectNotify():
		return nil
	case <-ctx.Done():
		conn.Close()
		return ctx.Err()
	}
}

// Stdio returns an io.ReadWriteCloser that reads from in and writes to out.
func Stdio(in io.ReadCloser, out io.WriteCloser) io.ReadWriteCloser {
	return transport{in, out}
}

type transport struct {
	in  io.ReadCloser
	out io.WriteCloser
}

func (c transport) Read(p []byte) (int, error)  { return c.in.Read(p) }
func (c transport) Write(p []byte) (int, error) { return c.out.Write(p) }

func (c transport) Close() error {
	if err := c.in.Close(); err != nil {
		c.out.Close()
		return err
	}
	return c.out.Close()
}
