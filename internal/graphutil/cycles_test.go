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

package graphutil_test

import (
	"testing"

	"github.com/yosr-maker/swift/internal/analysistest"
	"github.com/yosr-maker/swift/internal/funcutil"
	"github.com/yosr-maker/swift/internal/graphutil"
	"github.com/yourbasic/graph"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/callgraph/static"
	"golang.org/x/tools/go/ssa"
)

const recursiveSource = `package main

func even(n int) bool {
	if n == 0 {
		return true
	}
	return odd(n - 1)
}

func odd(n int) bool {
	if n == 0 {
		return false
	}
	return even(n - 1)
}

func self(n int) {
	if n > 0 {
		self(n - 1)
	}
}

func leaf() {}

func main() {
	even(4)
	self(2)
	leaf()
	leaf()
}
`

func names(nodes []*callgraph.Node) []string {
	return funcutil.Map(nodes, func(n *callgraph.Node) string { return n.Func.Name() })
}

func TestRecursiveComponents(t *testing.T) {
	pkg := analysistest.BuildSource(t, recursiveSource)
	cg := static.CallGraph(pkg.Prog)
	iterator := graphutil.NewCallgraphIterator(cg, func(f *ssa.Function) bool { return f != nil && f.Pkg == pkg })
	if iterator.Order() == 0 {
		t.Fatalf("empty call graph view")
	}

	stats := graph.Check(iterator)
	if stats.Loops != 1 {
		t.Errorf("expected 1 self loop, got %d", stats.Loops)
	}
	if stats.Multi == 0 {
		t.Errorf("expected the two calls to leaf to be a multi-edge")
	}

	components := graphutil.RecursiveComponents(iterator)
	if len(components) != 2 {
		t.Fatalf("expected 2 recursive components, got %d", len(components))
	}
	first := names(components[0])
	slices.Sort(first)
	if !slices.Equal(first, []string{"even", "odd"}) {
		t.Errorf("expected even and odd in the largest component, got %v", first)
	}
	if second := names(components[1]); !slices.Equal(second, []string{"self"}) {
		t.Errorf("expected self in its own component, got %v", second)
	}
}

func TestCallgraphIteratorFilter(t *testing.T) {
	pkg := analysistest.BuildSource(t, recursiveSource)
	cg := static.CallGraph(pkg.Prog)
	all := graphutil.NewCallgraphIterator(cg, nil)
	mainNode := cg.Nodes[pkg.Func("main")]
	onlyMain := graphutil.NewCallgraphIterator(cg, func(f *ssa.Function) bool { return f == pkg.Func("main") })
	if onlyMain.Order() != 1 || all.Order() <= onlyMain.Order() {
		t.Fatalf("unexpected orders %d and %d", onlyMain.Order(), all.Order())
	}
	v, ok := onlyMain.Vertex(mainNode)
	if !ok {
		t.Fatalf("main is not in the view")
	}
	if onlyMain.Visit(v, func(int, int64) bool { return true }) {
		t.Errorf("edges out of the view should be dropped")
	}
	if _, ok := onlyMain.Vertex(cg.Nodes[pkg.Func("leaf")]); ok {
		t.Errorf("leaf should not be in the view")
	}
	if len(graphutil.RecursiveComponents(onlyMain)) != 0 {
		t.Errorf("no recursion in main alone")
	}
}
