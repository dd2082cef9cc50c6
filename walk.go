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

package mdfmt

import "github.com/yuin/goldmark/ast"

// A cursor describes an [ast.Node] encountered during [walk].
type cursor struct {
	node   ast.Node
	parent ast.Node
}

// Node returns the current [ast.Node].
func (c *cursor) Node() ast.Node {
	return c.node
}

// Parent returns the parent of the current node
// (as returned by [*cursor.Node]).
func (c *cursor) Parent() ast.Node {
	return c.parent
}

// walkOptions is the set of parameters to [walk].
type walkOptions struct {
	// If Pre is not nil, it is called for each node before the node's children are traversed (pre-order).
	// If Pre returns false, no children are traversed, and Post is not called for that node.
	Pre func(c *cursor) bool
	// If Post is not nil, it is called for each node after the node's children are traversed (post-order).
	// If Post returns false, traversal is terminated and walk returns immediately.
	Post func(c *cursor) bool
}

// walk traverses a goldmark syntax tree, starting with root,
// and calling [walkOptions.Pre] and [walkOptions.Post].
// Children are read when their parent is visited,
// so Pre may not restructure the node's own siblings.
func walk(root ast.Node, opts *walkOptions) {
	type walkFrame struct {
		node   ast.Node
		parent ast.Node
		post   bool
	}

	stack := []walkFrame{{node: root, parent: root.Parent()}}
	c := new(cursor)
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if curr.post {
			if opts.Post != nil {
				c.node = curr.node
				c.parent = curr.parent
				if !opts.Post(c) {
					break
				}
			}
			continue
		}

		if opts.Pre != nil {
			c.node = curr.node
			c.parent = curr.parent
			if !opts.Pre(c) {
				continue
			}
		}
		curr.post = true
		stack = append(stack, curr)
		for child := curr.node.LastChild(); child != nil; child = child.PreviousSibling() {
			stack = append(stack, walkFrame{
				parent: curr.node,
				node:   child,
			})
		}
	}
}
