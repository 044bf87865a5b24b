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

package analysis_test

import (
	"go/ast"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yosr-maker/swift/analysis"
	"github.com/yosr-maker/swift/internal/analysistest"
	"golang.org/x/tools/go/ssa"
)

func mainPackage(t *testing.T, prog *ssa.Program) *ssa.Package {
	t.Helper()
	for _, pkg := range prog.AllPackages() {
		if pkg.Pkg.Name() == "main" {
			return pkg
		}
	}
	t.Fatalf("no main package")
	return nil
}

func TestNewDirective(t *testing.T) {
	for text, expected := range map[string]analysis.DirectiveKind{
		"//accessstorage:benign":  analysis.DirectiveBenign,
		"//accessstorage:ignore":  analysis.DirectiveIgnore,
		"// accessstorage:ignore": analysis.DirectiveIgnore,
	} {
		d, ok := analysis.NewDirective(&ast.Comment{Text: text})
		assert.True(t, ok, text)
		assert.Equal(t, expected, d.Kind)
	}
	for _, text := range []string{"//accessstorage:unknown", "//lint:ignore", "// benign"} {
		_, ok := analysis.NewDirective(&ast.Comment{Text: text})
		assert.False(t, ok, text)
	}
}

func TestLoadDirectives(t *testing.T) {
	lp, cfg := analysistest.LoadTest(t, analysistest.TestProgramDir("directives", "benign"), nil)
	require.Len(t, lp.Directives, 2)
	pkg := mainPackage(t, lp.Program)

	state, err := analysis.NewState(lp, nil, cfg)
	require.NoError(t, err)
	assert.True(t, state.IsBenign(pkg.Func("trace")))
	assert.False(t, state.IsBenign(pkg.Func("work")))
	assert.False(t, state.IsBenign(nil))

	var stores []*ssa.Store
	for _, b := range pkg.Func("work").Blocks {
		for _, instr := range b.Instrs {
			if store, ok := instr.(*ssa.Store); ok {
				stores = append(stores, store)
			}
		}
	}
	require.Len(t, stores, 1)
	assert.True(t, lp.Directives.IsIgnored(lp.Program, stores[0]))
}

func TestStateResolveCallee(t *testing.T) {
	lp, cfg := analysistest.LoadTest(t, analysistest.TestProgramDir("directives", "benign"), nil)
	cfg.Callgraph = "static"
	state, err := analysis.NewState(lp, nil, cfg)
	require.NoError(t, err)
	pkg := mainPackage(t, lp.Program)

	var callees []*ssa.Function
	for _, b := range pkg.Func("work").Blocks {
		for _, instr := range b.Instrs {
			if call, ok := instr.(*ssa.Call); ok {
				callees = append(callees, state.ResolveCallee(call)...)
			}
		}
	}
	assert.Equal(t, []*ssa.Function{pkg.Func("trace")}, callees)

	cfg.Callgraph = "pointer"
	_, err = analysis.NewState(lp, nil, cfg)
	assert.Error(t, err)
}

func TestFunctionIdentifier(t *testing.T) {
	lp, _ := analysistest.LoadTest(t, analysistest.TestProgramDir("directives", "benign"), nil)
	cid := analysis.FunctionIdentifier(mainPackage(t, lp.Program).Func("trace"))
	assert.Equal(t, "trace", cid.Method)
	assert.Equal(t, "command-line-arguments", cid.Package)
	assert.Empty(t, cid.Receiver)
}

func TestStateErrors(t *testing.T) {
	lp, cfg := analysistest.LoadTest(t, analysistest.TestProgramDir("directives", "benign"), nil)
	state, err := analysis.NewState(lp, nil, cfg)
	require.NoError(t, err)
	assert.NoError(t, state.CheckError())
	state.AddError(nil)
	assert.NoError(t, state.CheckError())
	state.AddError(assert.AnError)
	assert.ErrorIs(t, state.CheckError(), assert.AnError)
	assert.NoError(t, state.CheckError())
}
