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
	"go/types"

	"golang.org/x/tools/go/ssa"
)

// Classify returns the storage accessed through address, relative to the function that contains address.
//
// Field and element addresses are attributed to the storage of the object that contains them when that object is
// identified, otherwise they are Class or Tail storages rooted at the pointer or slice value they are computed from.
//
//gocyclo:ignore
func Classify(address ssa.Value) AccessStorage {
	switch a := address.(type) {
	case *ssa.Alloc:
		if a.Heap {
			return BoxStorage{Object: a}
		}
		return StackStorage{Object: a}
	case *ssa.Global:
		return GlobalStorage{Global: a}
	case *ssa.Parameter, *ssa.FreeVar:
		if idx, ok := ParameterIndex(a); ok {
			return ArgumentStorage{Index: idx}
		}
		return UnidentifiedStorage{}
	case *ssa.FieldAddr:
		if base := Classify(a.X); isRooted(base) {
			return base
		}
		return ClassStorage{Object: a.X, Field: a.Field}
	case *ssa.IndexAddr:
		if base := ClassifyObject(a.X); isRooted(base) {
			return base
		}
		return TailStorage{Object: a.X}
	case *ssa.SliceToArrayPointer:
		return ClassifyObject(a.X)
	case *ssa.ChangeType:
		return Classify(a.X)
	case *ssa.Call:
		return YieldStorage{Call: a}
	case *ssa.Extract:
		if call, ok := a.Tuple.(*ssa.Call); ok {
			return YieldStorage{Call: call}
		}
		return UnidentifiedStorage{}
	default:
		// loaded pointers, phis, type assertions, conversions from unsafe.Pointer, nil constants
		return UnidentifiedStorage{}
	}
}

// ClassifyObject returns the storage of the memory referenced by v: the pointee of a pointer, the backing array of
// a slice or the contents of a map.
func ClassifyObject(v ssa.Value) AccessStorage {
	switch v.Type().Underlying().(type) {
	case *types.Pointer:
		return Classify(v)
	case *types.Slice:
		return classifySlice(v)
	case *types.Map:
		switch m := v.(type) {
		case *ssa.MakeMap:
			return BoxStorage{Object: m}
		case *ssa.ChangeType:
			return ClassifyObject(m.X)
		}
		return TailStorage{Object: v}
	}
	return UnidentifiedStorage{}
}

func classifySlice(v ssa.Value) AccessStorage {
	switch s := v.(type) {
	case *ssa.MakeSlice:
		return BoxStorage{Object: s}
	case *ssa.Slice:
		if base := ClassifyObject(s.X); isRooted(base) {
			return base
		}
		return TailStorage{Object: s.X}
	case *ssa.ChangeType:
		return ClassifyObject(s.X)
	case *ssa.Const:
		// nil slice
		return UnidentifiedStorage{}
	}
	return TailStorage{Object: v}
}

// ParameterIndex returns the index of v in the parameter index space of its function, which is the list of
// parameters followed by the list of free variables. Returns false if v is neither.
func ParameterIndex(v ssa.Value) (int, bool) {
	fn := v.Parent()
	if fn == nil {
		return 0, false
	}
	switch v.(type) {
	case *ssa.Parameter:
		for i, p := range fn.Params {
			if p == v {
				return i, true
			}
		}
	case *ssa.FreeVar:
		for i, fv := range fn.FreeVars {
			if fv == v {
				return len(fn.Params) + i, true
			}
		}
	}
	return 0, false
}

// IsUnsafeAddress returns true when the address is derived from a conversion of an unsafe.Pointer. Accesses through
// such addresses are not tracked.
func IsUnsafeAddress(address ssa.Value) bool {
	for i := 0; i < maxAddressDepth; i++ {
		switch a := address.(type) {
		case *ssa.Convert:
			if basic, ok := a.X.Type().Underlying().(*types.Basic); ok && basic.Kind() == types.UnsafePointer {
				return true
			}
			address = a.X
		case *ssa.FieldAddr:
			address = a.X
		case *ssa.IndexAddr:
			address = a.X
		case *ssa.ChangeType:
			address = a.X
		case *ssa.Slice:
			address = a.X
		case *ssa.SliceToArrayPointer:
			address = a.X
		default:
			return false
		}
	}
	return false
}

const maxAddressDepth = 64
