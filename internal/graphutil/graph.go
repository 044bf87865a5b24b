// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package graphutil

import (
	"sort"

	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/ssa"
)

// CGraph is a view of a call graph that implements the graph.Iterator interface of the yourbasic/graph library.
// The vertices are the indices of Nodes.
type CGraph struct {
	// Nodes are the call graph nodes in the view, sorted by ID
	Nodes []*callgraph.Node

	// index maps a node to its vertex
	index map[*callgraph.Node]int
}

// NewCallgraphIterator returns the view of the nodes of cg whose function satisfies include. Edges to nodes outside
// of the view are dropped. If include is nil, all the nodes are in the view.
func NewCallgraphIterator(cg *callgraph.Graph, include func(*ssa.Function) bool) CGraph {
	var nodes []*callgraph.Node
	for f, node := range cg.Nodes {
		if include == nil || include(f) {
			nodes = append(nodes, node)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	index := make(map[*callgraph.Node]int, len(nodes))
	for i, node := range nodes {
		index[node] = i
	}
	return CGraph{Nodes: nodes, index: index}
}

// Order implements the order of the graph.Iterator interface for the CGraph
func (c CGraph) Order() int {
	return len(c.Nodes)
}

// Visit implements the graph.Iterator interface for the CGraph. Each call edge is visited, so two vertices are
// connected by as many edges as there are call sites between their functions.
func (c CGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	if v < 0 || v >= len(c.Nodes) {
		return false
	}
	for _, e := range c.Nodes[v].Out {
		if w, ok := c.index[e.Callee]; ok {
			if do(w, 1) {
				return true
			}
		}
	}
	return false
}

// Vertex returns the vertex of node, or false if node is not in the view.
func (c CGraph) Vertex(node *callgraph.Node) (int, bool) {
	v, ok := c.index[node]
	return v, ok
}
