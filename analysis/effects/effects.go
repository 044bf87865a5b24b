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

// Package effects provides summaries of the memory side effects of functions whose body cannot be analyzed:
// functions implemented in assembly, linked from the runtime, or excluded from the analysis.
package effects

import (
	"go/types"

	"github.com/yosr-maker/swift/analysis/config"
	"golang.org/x/tools/go/ssa"
)

// Effects records whether some memory may be read or written.
type Effects struct {
	Read  bool
	Write bool
}

// FunctionSideEffects is the side effects summary of a function: the effects on memory that is not reachable from
// the parameters, and the effects through each parameter. Parameters include the receiver of methods.
type FunctionSideEffects struct {
	Global Effects
	Params []Effects
}

// MayRead returns true if the function may read some memory.
func (s FunctionSideEffects) MayRead() bool {
	if s.Global.Read {
		return true
	}
	for _, p := range s.Params {
		if p.Read {
			return true
		}
	}
	return false
}

// MayWrite returns true if the function may write some memory.
func (s FunctionSideEffects) MayWrite() bool {
	if s.Global.Write {
		return true
	}
	for _, p := range s.Params {
		if p.Write {
			return true
		}
	}
	return false
}

// Oracle summarizes the side effects of functions from a table of known functions, extended by the effects specified
// in the config.
type Oracle struct {
	table map[string]FunctionSideEffects
}

// NewOracle returns an oracle with the summaries of the standard library and the summaries in the config.
// The summaries of the config take precedence.
func NewOracle(cfg *config.Config) *Oracle {
	o := &Oracle{table: make(map[string]FunctionSideEffects, len(stdEffects))}
	for name, summary := range stdEffects {
		o.table[name] = summary
	}
	if cfg != nil {
		for _, spec := range cfg.Effects {
			o.table[spec.Function] = fromSpec(spec)
		}
	}
	return o
}

func fromSpec(spec config.EffectsSpec) FunctionSideEffects {
	n := 0
	for _, i := range append(append([]int{}, spec.ParamReads...), spec.ParamWrites...) {
		if i+1 > n {
			n = i + 1
		}
	}
	s := FunctionSideEffects{
		Global: Effects{Read: spec.GlobalRead, Write: spec.GlobalWrite},
		Params: make([]Effects, n),
	}
	for _, i := range spec.ParamReads {
		if i >= 0 {
			s.Params[i].Read = true
		}
	}
	for _, i := range spec.ParamWrites {
		if i >= 0 {
			s.Params[i].Write = true
		}
	}
	return s
}

// Summarize returns the side effects of fn and true if the oracle knows them, otherwise false.
func (o *Oracle) Summarize(fn *ssa.Function) (FunctionSideEffects, bool) {
	if fn == nil {
		return FunctionSideEffects{}, false
	}
	if s, ok := o.table[fn.String()]; ok {
		return s, true
	}
	if isPureFunction(fn) {
		return FunctionSideEffects{Params: make([]Effects, fn.Signature.Params().Len())}, true
	}
	return FunctionSideEffects{}, false
}

// isPureFunction returns true for functions of arithmetic packages that cannot access memory through their
// parameters.
func isPureFunction(fn *ssa.Function) bool {
	if fn.Pkg == nil || !purePackages[fn.Pkg.Pkg.Path()] || len(fn.FreeVars) > 0 {
		return false
	}
	params := fn.Signature.Params()
	for i := 0; i < params.Len(); i++ {
		if mayReference(params.At(i).Type()) {
			return false
		}
	}
	return true
}

// mayReference returns true if a value of type t may contain a reference to some memory.
func mayReference(t types.Type) bool {
	switch tt := t.Underlying().(type) {
	case *types.Basic:
		return tt.Kind() == types.UnsafePointer
	case *types.Struct:
		for i := 0; i < tt.NumFields(); i++ {
			if mayReference(tt.Field(i).Type()) {
				return true
			}
		}
		return false
	case *types.Array:
		return mayReference(tt.Elem())
	default:
		return true
	}
}
