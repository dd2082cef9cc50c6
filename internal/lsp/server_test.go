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

package lsp

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
)

// newClient starts a server on one end of a pipe
// and returns a connection to the other end.
func newClient(ctx context.Context, t *testing.T) *jsonrpc2.Conn {
	serverEnd, clientEnd := net.Pipe()
	serverConn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(serverEnd, jsonrpc2.VSCodeObjectCodec{}),
		NewServer(nil).Handler())
	client := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(clientEnd, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(func(context.Context, *jsonrpc2.Conn, *jsonrpc2.Request) (any, error) {
			return nil, nil
		}))
	t.Cleanup(func() {
		client.Close()
		serverConn.Close()
	})
	return client
}

func TestInitialize(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdfmt.lsp")
	defer teardown()
	ctx := context.Background()
	client := newClient(ctx, t)

	var result lsp.InitializeResult
	if err := client.Call(ctx, "initialize", lsp.InitializeParams{}, &result); err != nil {
		t.Fatal(err)
	}
	if !result.Capabilities.DocumentFormattingProvider {
		t.Error("DocumentFormattingProvider = false; want true")
	}
	docSync := result.Capabilities.TextDocumentSync
	if docSync == nil || docSync.Options == nil || docSync.Options.Change != lsp.TDSKFull {
		t.Errorf("TextDocumentSync = %+v; want full document sync", docSync)
	}
}

func TestFormatting(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdfmt.lsp")
	defer teardown()
	ctx := context.Background()
	client := newClient(ctx, t)

	const uri = lsp.DocumentURI("file:///doc.md")
	err := client.Notify(ctx, "textDocument/didOpen", lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: uri, LanguageID: "markdown", Text: "  #   Hello! "},
	})
	if err != nil {
		t.Fatal(err)
	}
	var edits []lsp.TextEdit
	err = client.Call(ctx, "textDocument/formatting", lsp.DocumentFormattingParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uri},
	}, &edits)
	if err != nil {
		t.Fatal(err)
	}
	want := []lsp.TextEdit{{
		Range: lsp.Range{
			Start: lsp.Position{Line: 0, Character: 0},
			End:   lsp.Position{Line: 0, Character: 13},
		},
		NewText: "# Hello!",
	}}
	if diff := cmp.Diff(want, edits); diff != "" {
		t.Errorf("edits (-want +got):\n%s", diff)
	}

	err = client.Notify(ctx, "textDocument/didChange", lsp.DidChangeTextDocumentParams{
		TextDocument:   lsp.VersionedTextDocumentIdentifier{TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: uri}, Version: 2},
		ContentChanges: []lsp.TextDocumentContentChangeEvent{{Text: "# Hello!\n"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	edits = nil
	err = client.Call(ctx, "textDocument/formatting", lsp.DocumentFormattingParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uri},
	}, &edits)
	if err != nil {
		t.Fatal(err)
	}
	if len(edits) != 0 {
		t.Errorf("edits for formatted document = %+v; want none", edits)
	}
}

func TestErrors(t *testing.T) {
	ctx := context.Background()
	client := newClient(ctx, t)

	tests := []struct {
		name   string
		method string
		params any
		code   int64
	}{
		{
			name:   "UnknownMethod",
			method: "textDocument/hover",
			params: lsp.TextDocumentPositionParams{},
			code:   jsonrpc2.CodeMethodNotFound,
		},
		{
			name:   "BadParams",
			method: "textDocument/formatting",
			params: "nope",
			code:   jsonrpc2.CodeInvalidParams,
		},
		{
			name:   "NotOpen",
			method: "textDocument/formatting",
			params: lsp.DocumentFormattingParams{TextDocument: lsp.TextDocumentIdentifier{URI: "file:///missing.md"}},
			code:   jsonrpc2.CodeInvalidParams,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var result any
			err := client.Call(ctx, test.method, test.params, &result)
			var rpcErr *jsonrpc2.Error
			if !errors.As(err, &rpcErr) {
				t.Fatalf("Call(ctx, %q, ...) = %v; want *jsonrpc2.Error", test.method, err)
			}
			if rpcErr.Code != test.code {
				t.Errorf("Call(ctx, %q, ...) error code = %d; want %d", test.method, rpcErr.Code, test.code)
			}
		})
	}
}

func TestEndPosition(t *testing.T) {
	tests := []struct {
		s    string
		want lsp.Position
	}{
		{"", lsp.Position{}},
		{"abc", lsp.Position{Line: 0, Character: 3}},
		{"a\nb", lsp.Position{Line: 1, Character: 1}},
		{"a\r\nb", lsp.Position{Line: 1, Character: 1}},
		{"a\n", lsp.Position{Line: 1, Character: 0}},
		{"\U0001F600", lsp.Position{Line: 0, Character: 2}},
	}
	for _, test := range tests {
		if got := endPosition(test.s); got != test.want {
			t.Errorf("endPosition(%q) = %+v; want %+v", test.s, got, test.want)
		}
	}
}
