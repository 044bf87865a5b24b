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

// onlyCall returns the single call to a function named callee in fn
func onlyCall(t *testing.T, fn *ssa.Function, callee string) *ssa.Call {
	t.Helper()
	sites := calls(fn, callee)
	require.Len(t, sites, 1, "calls to %s in %s", callee, fn)
	return sites[0]
}

func TestCallerArg(t *testing.T) {
	pkg := analysistest.BuildSource(t, accessSource)
	g := analysistest.Global(t, pkg, "g")
	site := onlyCall(t, analysistest.Func(t, pkg, "callSet"), "setPtr")

	arg, ok := CallerArg(site, 0)
	require.True(t, ok)
	assert.Equal(t, ssa.Value(g), arg)

	_, ok = CallerArg(site, 1)
	assert.False(t, ok)
	_, ok = CallerArg(site, -1)
	assert.False(t, ok)
}

func TestCallerArgClosureBinding(t *testing.T) {
	pkg := analysistest.BuildSource(t, accessSource)
	sites := instrsOf[*ssa.Call](analysistest.Func(t, pkg, "withClosure"))
	require.Len(t, sites, 1)

	arg, ok := CallerArg(sites[0], 0)
	require.True(t, ok)
	alloc, isAlloc := arg.(*ssa.Alloc)
	require.True(t, isAlloc, "captured variable is %T", arg)
	assert.True(t, alloc.Heap)
	_, ok = CallerArg(sites[0], 1)
	assert.False(t, ok)
}

func TestCallerArgUnresolvedClosure(t *testing.T) {
	pkg := analysistest.BuildSource(t, accessSource)
	sites := instrsOf[*ssa.Call](analysistest.Func(t, pkg, "callFn"))
	require.Len(t, sites, 1)
	_, ok := CallerArg(sites[0], 0)
	assert.False(t, ok)
}

func TestCallerArgClosureReturnedByCall(t *testing.T) {
	pkg := analysistest.BuildSource(t, accessSource)
	var site *ssa.Call
	for _, c := range instrsOf[*ssa.Call](analysistest.Func(t, pkg, "callMade")) {
		if _, ok := c.Call.Value.(*ssa.Call); ok {
			site = c
		}
	}
	require.NotNil(t, site, "no call of the closure returned by mkClosure")

	arg, ok := CallerArg(site, 0)
	require.True(t, ok)
	c, isConst := arg.(*ssa.Const)
	require.True(t, isConst, "argument is %T", arg)
	assert.Equal(t, "1", c.Value.String())

	// the captured pointer is bound inside mkClosure, one call away from the site
	_, ok = CallerArg(site, 1)
	assert.False(t, ok)
}

func TestApplyArgumentToGlobal(t *testing.T) {
	pkg := analysistest.BuildSource(t, accessSource)
	g := GlobalStorage{Global: analysistest.Global(t, pkg, "g")}
	callee := summarizeIntra(analysistest.Func(t, pkg, "setPtr"))
	caller := NewFunctionAccessStorage(analysistest.Func(t, pkg, "callSet"), 0)

	site := onlyCall(t, caller.Function, "setPtr")
	assert.True(t, caller.MergeFromApply(callee, site))
	assert.False(t, caller.MergeFromApply(callee, site))

	info, ok := caller.Result.Lookup(g)
	require.True(t, ok)
	assert.Equal(t, Modify, info.Kind)
	assert.True(t, caller.Result.HasNoNestedConflict(g))
	assert.Equal(t, 1, caller.Result.Len())
}

func TestApplyFieldOfGlobal(t *testing.T) {
	pkg := analysistest.BuildSource(t, accessSource)
	gt := GlobalStorage{Global: analysistest.Global(t, pkg, "gt")}
	callee := summarizeIntra(analysistest.Func(t, pkg, "setField"))
	caller := NewFunctionAccessStorage(analysistest.Func(t, pkg, "callSetGlobalField"), 0)

	assert.True(t, caller.MergeFromApply(callee, onlyCall(t, caller.Function, "setField")))
	info, ok := caller.Result.Lookup(gt)
	require.True(t, ok)
	assert.Equal(t, Modify, info.Kind)
}

func TestApplyFieldOfParameter(t *testing.T) {
	pkg := analysistest.BuildSource(t, accessSource)
	callee := summarizeIntra(analysistest.Func(t, pkg, "setField"))
	caller := NewFunctionAccessStorage(analysistest.Func(t, pkg, "callSetField"), 0)

	assert.True(t, caller.MergeFromApply(callee, onlyCall(t, caller.Function, "setField")))
	expected := ClassStorage{Object: caller.Function.Params[0], Field: 0}
	info, ok := caller.Result.Lookup(expected)
	require.True(t, ok, "summary:\n%s", caller.Result)
	assert.Equal(t, Modify, info.Kind)
	assert.Equal(t, 1, caller.Result.Len())
}

func TestApplyClosure(t *testing.T) {
	pkg := analysistest.BuildSource(t, accessSource)
	caller := NewFunctionAccessStorage(analysistest.Func(t, pkg, "withClosure"), 0)
	site := instrsOf[*ssa.Call](caller.Function)[0]
	closure := site.Call.StaticCallee()
	require.NotNil(t, closure)
	callee := summarizeIntra(closure)
	_, ok := callee.Result.Lookup(ArgumentStorage{Index: 0})
	require.True(t, ok, "closure summary:\n%s", callee.Result)

	assert.True(t, caller.MergeFromApply(callee, site))
	accesses := caller.Result.Accesses()
	require.Len(t, accesses, 1)
	assert.Equal(t, Box, accesses[0].Storage.Kind())
	assert.Equal(t, Modify, accesses[0].Kind)
}

func TestTransformCalleeStorage(t *testing.T) {
	pkg := analysistest.BuildSource(t, accessSource)
	g := GlobalStorage{Global: analysistest.Global(t, pkg, "h")}
	setPtr := analysistest.Func(t, pkg, "setPtr")
	site := onlyCall(t, analysistest.Func(t, pkg, "callSet"), "setPtr")
	box := BoxStorage{Object: instrsOf[*ssa.MakeSlice](analysistest.Func(t, pkg, "copyDistinct"))[0]}

	assert.True(t, TransformCalleeStorage(box, setPtr, site).IsNone(), "local storages are not visible to the caller")
	assert.Equal(t, AccessStorage(g), TransformCalleeStorage(g, setPtr, site).Value())
	assert.Equal(t, AccessStorage(UnidentifiedStorage{}),
		TransformCalleeStorage(UnidentifiedStorage{}, setPtr, site).Value())
	assert.Equal(t, AccessStorage(UnidentifiedStorage{}),
		TransformCalleeStorage(ArgumentStorage{Index: 3}, setPtr, site).Value())
	assert.Panics(t, func() { TransformCalleeStorage(NestedStorage{}, setPtr, site) })

	// a field of a value that is not a parameter of the callee is kept as is
	other := ClassStorage{Object: analysistest.Func(t, pkg, "setField").Params[0], Field: 1}
	assert.Equal(t, AccessStorage(other), TransformCalleeStorage(other, setPtr, site).Value())
}
