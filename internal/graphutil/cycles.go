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

	"github.com/yourbasic/graph"
	"golang.org/x/tools/go/callgraph"
)

// RecursiveComponents returns the strongly connected components of c that contain a cycle: the components with
// more than one function, and the functions calling themselves. The nodes of a component are sorted by ID, and the
// components by decreasing size.
func RecursiveComponents(c CGraph) [][]*callgraph.Node {
	var res [][]*callgraph.Node
	for _, component := range graph.StrongComponents(c) {
		if len(component) == 1 && !hasSelfLoop(c, component[0]) {
			continue
		}
		nodes := make([]*callgraph.Node, len(component))
		for i, v := range component {
			nodes[i] = c.Nodes[v]
		}
		sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
		res = append(res, nodes)
	}
	sort.Slice(res, func(i, j int) bool {
		if len(res[i]) != len(res[j]) {
			return len(res[i]) > len(res[j])
		}
		return res[i][0].ID < res[j][0].ID
	})
	return res
}

func hasSelfLoop(c CGraph, v int) bool {
	return c.Visit(v, func(w int, _ int64) bool { return w == v })
}
