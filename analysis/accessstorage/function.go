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
	"fmt"
	"io"

	"github.com/yosr-maker/swift/analysis/effects"
	"golang.org/x/tools/go/ssa"
)

// SideEffectsOracle provides the side effects of functions that are not analyzed.
type SideEffectsOracle interface {
	Summarize(fn *ssa.Function) (effects.FunctionSideEffects, bool)
}

// benignFunctions are functions that never access memory visible to their caller. Calls to those functions are
// summarized by an empty summary, without looking at the side effects oracle.
var benignFunctions = map[string]bool{
	"runtime.roundupsize":            true,
	"internal/abi.FuncPCABI0":        true,
	"internal/abi.FuncPCABIInternal": true,
	"time.runtimeNano":               true,
	"time.now":                       true,
	"runtime.KeepAlive":              true,
	"internal/race.Acquire":          true,
	"internal/race.Release":          true,
	"internal/race.ReleaseMerge":     true,
	"internal/race.Disable":          true,
	"internal/race.Enable":           true,
	"internal/race.Read":             true,
	"internal/race.Write":            true,
	"internal/race.ReadRange":        true,
	"internal/race.WriteRange":       true,
	"internal/race.Errors":           true,
}

// IsBenignFunction returns true if calls to fn never access memory visible to the caller.
func IsBenignFunction(fn *ssa.Function) bool {
	return fn != nil && benignFunctions[fn.String()]
}

// FunctionAccessStorage is the state of the analysis for one function: its summary, populated either from the
// instructions of the function and the summaries of its callees, or from the side effects of the function when its
// body is not available.
type FunctionAccessStorage struct {
	Function *ssa.Function
	Result   *AccessStorageResult
}

// NewFunctionAccessStorage returns the empty state of fn. maxAccesses is the limit on the size of the summary.
func NewFunctionAccessStorage(fn *ssa.Function, maxAccesses int) *FunctionAccessStorage {
	return &FunctionAccessStorage{Function: fn, Result: NewAccessStorageResult(maxAccesses)}
}

// SummarizeFunction computes the summary of a function without body from the side effects returned by the oracle,
// and returns true. Returns false if the function has a body; its summary must be computed from its instructions.
func (f *FunctionAccessStorage) SummarizeFunction(oracle SideEffectsOracle) bool {
	if !f.Result.IsEmpty() {
		panic(fmt.Sprintf("summarizing %s, which already has a summary", f.Function))
	}
	if len(f.Function.Blocks) > 0 {
		return false
	}
	f.summarizeFromSideEffects(oracle)
	return true
}

// summarizeFromSideEffects sets the summary to the conservative summary of the function's side effects. Functions
// without known side effects get the worst-case summary.
func (f *FunctionAccessStorage) summarizeFromSideEffects(oracle SideEffectsOracle) {
	if oracle == nil {
		f.Result.SetWorstEffects()
		return
	}
	sideEffects, ok := oracle.Summarize(f.Function)
	if !ok {
		f.Result.SetWorstEffects()
		return
	}
	if sideEffects.MayWrite() {
		f.Result.UpdateUnidentifiedAccess(Modify)
	} else if sideEffects.MayRead() {
		f.Result.UpdateUnidentifiedAccess(Read)
	}
}

// SummarizeCall sets the summary of a call site when it can be computed without looking at the callees, and returns
// true. This is the case of calls to benign functions, whose summary is empty. isBenign extends the list of benign
// functions and may be nil.
func (f *FunctionAccessStorage) SummarizeCall(site ssa.CallInstruction, isBenign func(*ssa.Function) bool) bool {
	if !f.Result.IsEmpty() {
		panic(fmt.Sprintf("summarizing call %s, which already has a summary", site))
	}
	callee := site.Common().StaticCallee()
	if callee == nil {
		return false
	}
	return IsBenignFunction(callee) || (isBenign != nil && isBenign(callee))
}

// AnalyzeInstruction adds the accesses of the instruction to the summary. Calls must be merged with MergeFromApply
// instead, only calls to builtins are analyzed. Returns true if the summary changed.
func (f *FunctionAccessStorage) AnalyzeInstruction(instr ssa.Instruction) bool {
	if call, ok := instr.(ssa.CallInstruction); ok {
		if _, isBuiltin := call.Common().Value.(*ssa.Builtin); !isBuiltin {
			panic(fmt.Sprintf("call %s should be merged by the caller", instr))
		}
	}
	changed := false
	for _, access := range InstructionAccesses(instr) {
		changed = f.AnalyzeAccess(access) || changed
	}
	return changed
}

// AnalyzeAccess adds the access to the summary. Static accesses are dropped, and unsafe accesses are recorded as
// unidentified accesses. Returns true if the summary changed.
func (f *FunctionAccessStorage) AnalyzeAccess(access Access) bool {
	switch access.Enforcement {
	case Static:
		return false
	case Unsafe:
		return f.Result.UpdateUnidentifiedAccess(access.Kind)
	default:
		return f.Result.AddAccess(access.Info())
	}
}

// MergeFrom merges the summary of other, a state of the same function or of another callee of the same call site.
func (f *FunctionAccessStorage) MergeFrom(other *FunctionAccessStorage) bool {
	return f.Result.MergeFrom(other.Result)
}

// MergeFromApply merges the summary of the callee at site into the summary of f.
func (f *FunctionAccessStorage) MergeFromApply(callee *FunctionAccessStorage, site ssa.CallInstruction) bool {
	return f.Result.MergeFromApply(callee.Function, callee.Result, site)
}

// Print writes the name of the function followed by its summary.
func (f *FunctionAccessStorage) Print(w io.Writer) {
	fmt.Fprintf(w, "%s\n", f.Function)
	f.Result.Print(w)
}
