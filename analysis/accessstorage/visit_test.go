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

package accessstorage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yosr-maker/swift/internal/analysistest"
	"golang.org/x/tools/go/ssa"
)

const accessSource = `package main

import "unsafe"

var g int
var h int

type T struct {
	a int
	b int
}

var gt T

func setPtr(p *int) { *p = 1 }

func readG() int { return g }

func callSet() { setPtr(&g) }

func setField(t *T) { t.a = 1 }

func callSetField(t *T) { setField(t) }

func callSetGlobalField() { setField(&gt) }

func withClosure() int {
	x := 0
	f := func() { x = 1 }
	f()
	return x
}

func mkClosure(y *int) func(int) {
	return func(d int) { *y = d }
}

func callMade() { mkClosure(&g)(1) }

func callFn(f func()) { f() }

func copyOverlap(s []int) { copy(s[1:], s) }

func copyDistinct(n int) {
	a := make([]int, n)
	b := make([]int, n)
	copy(a, b)
}

func stackArray(i int) int {
	var arr [4]int
	arr[i] = 1
	return arr[0]
}

func unsafeWrite(p unsafe.Pointer) { *(*int)(p) = 1 }

func mapOps(m map[string]int) int {
	m["a"] = 1
	delete(m, "b")
	n := 0
	for _, v := range m {
		n += v
	}
	return n + m["c"]
}

func main() {}
`

// summarizeIntra returns the summary of the accesses of the instructions of fn, ignoring calls to functions
func summarizeIntra(fn *ssa.Function) *FunctionAccessStorage {
	s := NewFunctionAccessStorage(fn, 0)
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			if call, ok := instr.(ssa.CallInstruction); ok && !isBuiltinCall(call) {
				continue
			}
			s.AnalyzeInstruction(instr)
		}
	}
	return s
}

func TestAccessesOfGlobals(t *testing.T) {
	pkg := analysistest.BuildSource(t, accessSource)
	g := GlobalStorage{Global: analysistest.Global(t, pkg, "g")}

	s := summarizeIntra(analysistest.Func(t, pkg, "readG"))
	info, ok := s.Result.Lookup(g)
	require.True(t, ok)
	assert.Equal(t, Read, info.Kind)
	assert.True(t, s.Result.HasNoNestedConflict(g))

	s = summarizeIntra(analysistest.Func(t, pkg, "setPtr"))
	info, ok = s.Result.Lookup(ArgumentStorage{Index: 0})
	require.True(t, ok)
	assert.Equal(t, Modify, info.Kind)
	assert.Equal(t, 1, s.Result.Len())
}

func TestCopyOverlap(t *testing.T) {
	pkg := analysistest.BuildSource(t, accessSource)
	fn := analysistest.Func(t, pkg, "copyOverlap")
	accesses := FunctionAccesses(fn)
	require.Len(t, accesses, 2)
	for _, a := range accesses {
		assert.Equal(t, Tail, a.Storage.Kind())
		assert.False(t, a.NoNestedConflict, "%s overlaps with the other access of copy", a.Storage)
		assert.Equal(t, Dynamic, a.Enforcement)
	}
	assert.Equal(t, Modify, accesses[0].Kind)
	assert.Equal(t, Read, accesses[1].Kind)

	info, ok := summarizeIntra(fn).Result.Lookup(accesses[0].Storage)
	require.True(t, ok)
	assert.Equal(t, Modify, info.Kind)
	assert.False(t, info.NoNestedConflict)
}

func TestCopyDistinct(t *testing.T) {
	pkg := analysistest.BuildSource(t, accessSource)
	accesses := FunctionAccesses(analysistest.Func(t, pkg, "copyDistinct"))
	require.Len(t, accesses, 2)
	assert.Equal(t, Box, accesses[0].Storage.Kind())
	assert.Equal(t, Box, accesses[1].Storage.Kind())
	assert.NotEqual(t, accesses[0].Storage, accesses[1].Storage)
	assert.True(t, accesses[0].NoNestedConflict)
	assert.True(t, accesses[1].NoNestedConflict)
}

func TestStackAccessesAreStatic(t *testing.T) {
	pkg := analysistest.BuildSource(t, accessSource)
	fn := analysistest.Func(t, pkg, "stackArray")
	accesses := FunctionAccesses(fn)
	require.NotEmpty(t, accesses)
	for _, a := range accesses {
		assert.Equal(t, Stack, a.Storage.Kind())
		assert.Equal(t, Static, a.Enforcement)
	}
	assert.True(t, summarizeIntra(fn).Result.IsEmpty())
}

func TestUnsafeAccessesAreUnidentified(t *testing.T) {
	pkg := analysistest.BuildSource(t, accessSource)
	fn := analysistest.Func(t, pkg, "unsafeWrite")
	accesses := FunctionAccesses(fn)
	require.Len(t, accesses, 1)
	assert.Equal(t, Unsafe, accesses[0].Enforcement)

	r := summarizeIntra(fn).Result
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, Modify, r.UnidentifiedAccess().ValueOr(Read))
	assert.True(t, r.MayConflictWith(Read, GlobalStorage{Global: analysistest.Global(t, pkg, "g")}))
}

func TestMapAccesses(t *testing.T) {
	pkg := analysistest.BuildSource(t, accessSource)
	fn := analysistest.Func(t, pkg, "mapOps")
	m := TailStorage{Object: fn.Params[0]}

	kinds := map[string]AccessKind{}
	for _, a := range FunctionAccesses(fn) {
		assert.Equal(t, m, a.Storage)
		switch a.Instr.(type) {
		case *ssa.MapUpdate:
			kinds["update"] = a.Kind
		case *ssa.Lookup:
			kinds["lookup"] = a.Kind
		case *ssa.Range:
			kinds["range"] = a.Kind
			assert.False(t, a.NoNestedConflict)
		case *ssa.Call:
			kinds["delete"] = a.Kind
		}
	}
	assert.Equal(t, map[string]AccessKind{"update": Modify, "lookup": Read, "range": Read, "delete": Modify}, kinds)

	info, ok := summarizeIntra(fn).Result.Lookup(m)
	require.True(t, ok)
	assert.Equal(t, Modify, info.Kind)
	assert.False(t, info.NoNestedConflict)
}
