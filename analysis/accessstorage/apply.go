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

	"github.com/yosr-maker/swift/analysis/lang"
	"github.com/yosr-maker/swift/internal/funcutil"
	"golang.org/x/tools/go/ssa"
)

// CallerArg returns the value supplied at the call site for the callee's parameter at index paramIndex.
// The index is in the callee's parameter index space (see ArgumentStorage). For an invoke call, index 0 is the
// receiver.
//
// Indices past the arguments of the call refer to the free variables of a closure, which are resolved when the
// called value is the closure creation itself. Closures reaching the call site in any other way (through a phi,
// a parameter, a field, or returned by a call) are not resolved.
func CallerArg(site ssa.CallInstruction, paramIndex int) (ssa.Value, bool) {
	if paramIndex < 0 {
		return nil, false
	}
	args := lang.GetArgs(site)
	if paramIndex < len(args) {
		return args[paramIndex], true
	}
	if site.Common().IsInvoke() {
		return nil, false
	}
	closure, ok := calleeClosure(site.Common().Value)
	if !ok {
		return nil, false
	}
	fn, ok := closure.Fn.(*ssa.Function)
	if !ok {
		return nil, false
	}
	appliedIndex := paramIndex - len(fn.Params)
	if appliedIndex >= 0 && appliedIndex < len(closure.Bindings) {
		return closure.Bindings[appliedIndex], true
	}
	return nil, false
}

func calleeClosure(v ssa.Value) (*ssa.MakeClosure, bool) {
	for {
		switch x := v.(type) {
		case *ssa.MakeClosure:
			return x, true
		case *ssa.ChangeType:
			v = x.X
		default:
			return nil, false
		}
	}
}

// TransformCalleeStorage maps a storage of the summary of callee into the context of the caller containing site.
// It returns none for storages that are local to the callee.
//
// Class and Tail storages rooted at a parameter of callee are re-rooted at the caller's argument. If the
// argument cannot be resolved, they keep the callee's value as object: they are still distinct from the other fields
// of the same object.
// Argument storages are replaced by the storage of the caller's argument, or by an unidentified storage if the
// argument cannot be resolved.
// Global, yield and unidentified storages are unchanged.
func TransformCalleeStorage(storage AccessStorage, callee *ssa.Function,
	site ssa.CallInstruction) funcutil.Optional[AccessStorage] {
	if IsLocal(storage) {
		return funcutil.None[AccessStorage]()
	}
	switch s := storage.(type) {
	case ClassStorage, TailStorage:
		object, _ := Object(s)
		idx, isParam := ParameterIndex(object)
		if !isParam || object.Parent() != callee {
			return funcutil.Some(storage)
		}
		arg, ok := CallerArg(site, idx)
		if !ok {
			return funcutil.Some(storage)
		}
		if base := ClassifyObject(arg); isRooted(base) {
			return funcutil.Some(base)
		}
		return funcutil.Some(withObject(s, arg))
	case GlobalStorage, YieldStorage, UnidentifiedStorage:
		return funcutil.Some(storage)
	case ArgumentStorage:
		if arg, ok := CallerArg(site, s.Index); ok {
			return funcutil.Some(ClassifyObject(arg))
		}
		return funcutil.Some[AccessStorage](UnidentifiedStorage{})
	case NestedStorage:
		panic(fmt.Sprintf("nested storage in a function summary: %s", s))
	}
	panic(fmt.Sprintf("unhandled storage kind %s", storage.Kind()))
}

// MergeFromApply merges calleeAccess, the summary of callee, into r, the summary of the function containing the
// call site. Returns true if r changed.
func (r *AccessStorageResult) MergeFromApply(callee *ssa.Function, calleeAccess *AccessStorageResult,
	site ssa.CallInstruction) bool {
	return r.MergeAccesses(calleeAccess, func(s AccessStorage) funcutil.Optional[AccessStorage] {
		return TransformCalleeStorage(s, callee, site)
	})
}
