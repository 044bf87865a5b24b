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

package effects_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yosr-maker/swift/analysis/config"
	"github.com/yosr-maker/swift/analysis/effects"
	"github.com/yosr-maker/swift/internal/analysistest"
	"golang.org/x/tools/go/ssa"
)

const src = `package main

import (
	"math"
	"sync/atomic"
)

var n int32

func ext(p *int, q *int)

func main() {
	atomic.AddInt32(&n, 1)
	_ = math.Sqrt(2)
	_ = math.Float64bits(1)
}
`

func importedFunc(t *testing.T, pkg *ssa.Package, path string, name string) *ssa.Function {
	t.Helper()
	p := pkg.Prog.ImportedPackage(path)
	require.NotNil(t, p, "package %s is not imported", path)
	f := p.Func(name)
	require.NotNil(t, f, "no function %s in %s", name, path)
	return f
}

func TestStandardLibraryEffects(t *testing.T) {
	pkg := analysistest.BuildSource(t, src)
	o := effects.NewOracle(nil)

	s, ok := o.Summarize(importedFunc(t, pkg, "sync/atomic", "AddInt32"))
	require.True(t, ok)
	assert.True(t, s.MayWrite())
	assert.False(t, s.Global.Read)

	s, ok = o.Summarize(importedFunc(t, pkg, "sync/atomic", "LoadInt32"))
	require.True(t, ok)
	assert.True(t, s.MayRead())
	assert.False(t, s.MayWrite())
}

func TestPureFunctions(t *testing.T) {
	pkg := analysistest.BuildSource(t, src)
	o := effects.NewOracle(nil)

	s, ok := o.Summarize(importedFunc(t, pkg, "math", "Sqrt"))
	require.True(t, ok)
	assert.False(t, s.MayRead())
	assert.False(t, s.MayWrite())
	assert.Len(t, s.Params, 1)

	_, ok = o.Summarize(analysistest.Func(t, pkg, "ext"))
	assert.False(t, ok, "functions outside of the table are unknown")
	_, ok = o.Summarize(nil)
	assert.False(t, ok)
}

func TestConfigEffects(t *testing.T) {
	pkg := analysistest.BuildSource(t, src)
	cfg := config.NewDefault()
	cfg.Effects = []config.EffectsSpec{
		{Function: "main.ext", ParamReads: []int{0}, ParamWrites: []int{1}},
		{Function: "sync/atomic.AddInt32", GlobalRead: true},
	}
	o := effects.NewOracle(cfg)

	s, ok := o.Summarize(analysistest.Func(t, pkg, "ext"))
	require.True(t, ok)
	assert.Equal(t, []effects.Effects{{Read: true}, {Write: true}}, s.Params)
	assert.Equal(t, effects.Effects{}, s.Global)

	s, ok = o.Summarize(importedFunc(t, pkg, "sync/atomic", "AddInt32"))
	require.True(t, ok)
	assert.False(t, s.MayWrite(), "config entries take precedence over the standard library table")
	assert.True(t, s.MayRead())
}
