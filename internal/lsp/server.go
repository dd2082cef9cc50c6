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
	"encoding/json"
	"fmt"
	"sync"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
	"zombiezen.com/go/mdfmt/format"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

// Server holds the documents a client has opened.
type Server struct {
	opts *format.Options

	mu      sync.Mutex
	content map[lsp.DocumentURI]string
}

// NewServer returns a server that formats documents with opts.
func NewServer(opts *format.Options) *Server {
	return &Server{
		opts:    opts,
		content: make(map[lsp.DocumentURI]string),
	}
}

// Handler returns the JSON-RPC handler for the server's methods.
func (s *Server) Handler() jsonrpc2.Handler {
	return routingHandler(map[string]method{
		"initialize":              s.initialize,
		"textDocument/didOpen":    s.didOpen,
		"textDocument/didChange":  s.didChange,
		"textDocument/didClose":   s.didClose,
		"textDocument/formatting": s.formatting,
		"shutdown":                noop,
		"exit":                    exit,

		"initialized":                      noop,
		"workspace/didChangeWatchedFiles":  noop,
		"workspace/didChangeConfiguration": noop,
	})
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func noop(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return nil, nil
}

func exit(_ context.Context, conn jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return nil, conn.Close()
}

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		tracer().Debugf("lsp: %s", req.Method)
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, conn, params)
	})
}

func (s *Server) initialize(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKFull,
				},
			},
			DocumentFormattingProvider: true,
		},
	}, nil
}

func (s *Server) didOpen(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidOpenTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	s.mu.Lock()
	s.content[params.TextDocument.URI] = params.TextDocument.Text
	s.mu.Unlock()
	return nil, nil
}

func (s *Server) didChange(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidChangeTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil || len(params.ContentChanges) == 0 {
		return nil, errInvalidParams
	}
	// Only full-text changes are advertised in initialize.
	changes := params.ContentChanges
	s.mu.Lock()
	s.content[params.TextDocument.URI] = changes[len(changes)-1].Text
	s.mu.Unlock()
	return nil, nil
}

func (s *Server) didClose(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidCloseTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	s.mu.Lock()
	delete(s.content, params.TextDocument.URI)
	s.mu.Unlock()
	return nil, nil
}

func (s *Server) formatting(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DocumentFormattingParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	s.mu.Lock()
	content, ok := s.content[params.TextDocument.URI]
	s.mu.Unlock()
	if !ok {
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInvalidParams,
			Message: fmt.Sprintf("%s is not open", params.TextDocument.URI),
		}
	}
	return s.edits(content)
}

// edits returns the edits that format content:
// nothing if it is already formatted,
// otherwise a single edit replacing the whole document.
func (s *Server) edits(content string) ([]lsp.TextEdit, error) {
	formatted, err := format.String(content, s.opts)
	if err != nil {
		return nil, err
	}
	if formatted == content {
		return []lsp.TextEdit{}, nil
	}
	return []lsp.TextEdit{{
		Range: lsp.Range{
			Start: lsp.Position{},
			End:   endPosition(content),
		},
		NewText: formatted,
	}}, nil
}

// endPosition returns the position just past the last character of s.
// Characters are counted in UTF-16 code units.
func endPosition(s string) lsp.Position {
	var p lsp.Position
	lastCR := false
	for _, r := range s {
		switch {
		case r == '\r':
			p.Line++
			p.Character = 0
		case r == '\n':
			// "\r\n" is a single line ending.
			if !lastCR {
				p.Line++
				p.Character = 0
			}
		case r <= 0xFFFF:
			p.Character++
		default:
			p.Character += 2
		}
		lastCR = r == '\r'
	}
	return p
}
