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
	"go/types"
	"strconv"

	"golang.org/x/tools/go/ssa"
)

// Kind is the kind of an AccessStorage.
type Kind int

const (
	// Box is a heap allocation owned by the function (an address-taken local, a slice or map literal)
	Box Kind = iota
	// Stack is a non-escaping local allocation
	Stack
	// Global is a package-level variable
	Global
	// Class is a field of a struct reached through some pointer value
	Class
	// Tail is the elements of a slice, array or map reached through some value
	Tail
	// Argument is the memory pointed to by a formal parameter of the function
	Argument
	// Yield is the memory pointed to by an address returned from a call
	Yield
	// Nested is an access that is nested inside another one. It never appears in summaries.
	Nested
	// Unidentified is any storage that cannot be classified
	Unidentified
)

func (k Kind) String() string {
	switch k {
	case Box:
		return "Box"
	case Stack:
		return "Stack"
	case Global:
		return "Global"
	case Class:
		return "Class"
	case Tail:
		return "Tail"
	case Argument:
		return "Argument"
	case Yield:
		return "Yield"
	case Nested:
		return "Nested"
	case Unidentified:
		return "Unidentified"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// AccessStorage identifies an abstract memory location. Each kind of storage is represented by its own struct type,
// and all the implementations are comparable so that storages can be used as map keys.
type AccessStorage interface {
	// Kind returns the kind of storage
	Kind() Kind
	String() string
	isAccessStorage()
}

// BoxStorage is a heap allocation made by the function owning the summary.
type BoxStorage struct {
	Object ssa.Value
}

// StackStorage is a local allocation whose address is only used inside the function.
type StackStorage struct {
	Object ssa.Value
}

// GlobalStorage is a package-level variable. Its identity is the same in every function.
type GlobalStorage struct {
	Global *ssa.Global
}

// ClassStorage is the field Field of the struct pointed to by Object.
type ClassStorage struct {
	Object ssa.Value
	Field  int
}

// TailStorage is the set of elements of the slice, map or array referenced by Object.
type TailStorage struct {
	Object ssa.Value
}

// ArgumentStorage is the memory referenced by the formal parameter at Index. The index space of a function is its
// parameters followed by its free variables. An ArgumentStorage is only meaningful in the function whose summary
// contains it.
type ArgumentStorage struct {
	Index int
}

// YieldStorage is the memory referenced by the value returned by Call.
type YieldStorage struct {
	Call ssa.Value
}

// NestedStorage is the storage of an access nested in another access.
type NestedStorage struct {
	Address ssa.Value
}

// UnidentifiedStorage is any storage that cannot be identified.
type UnidentifiedStorage struct{}

func (BoxStorage) Kind() Kind          { return Box }
func (StackStorage) Kind() Kind        { return Stack }
func (GlobalStorage) Kind() Kind       { return Global }
func (ClassStorage) Kind() Kind        { return Class }
func (TailStorage) Kind() Kind         { return Tail }
func (ArgumentStorage) Kind() Kind     { return Argument }
func (YieldStorage) Kind() Kind        { return Yield }
func (NestedStorage) Kind() Kind       { return Nested }
func (UnidentifiedStorage) Kind() Kind { return Unidentified }

func (BoxStorage) isAccessStorage()          {}
func (StackStorage) isAccessStorage()        {}
func (GlobalStorage) isAccessStorage()       {}
func (ClassStorage) isAccessStorage()        {}
func (TailStorage) isAccessStorage()         {}
func (ArgumentStorage) isAccessStorage()     {}
func (YieldStorage) isAccessStorage()        {}
func (NestedStorage) isAccessStorage()       {}
func (UnidentifiedStorage) isAccessStorage() {}

func (s BoxStorage) String() string   { return "Box " + valueString(s.Object) }
func (s StackStorage) String() string { return "Stack " + valueString(s.Object) }
func (s GlobalStorage) String() string {
	if s.Global == nil {
		return "Global <nil>"
	}
	return "Global " + s.Global.String()
}
func (s ClassStorage) String() string {
	return fmt.Sprintf("Class %s.%s", valueString(s.Object), fieldName(s.Object, s.Field))
}
func (s TailStorage) String() string         { return "Tail " + valueString(s.Object) }
func (s ArgumentStorage) String() string     { return "Argument index: " + strconv.Itoa(s.Index) }
func (s YieldStorage) String() string        { return "Yield " + valueString(s.Call) }
func (s NestedStorage) String() string       { return "Nested " + valueString(s.Address) }
func (s UnidentifiedStorage) String() string { return "Unidentified" }

// Object returns the value a reference-like storage (Box, Stack, Class or Tail) is rooted at, and false for the
// other kinds of storage.
func Object(s AccessStorage) (ssa.Value, bool) {
	switch s := s.(type) {
	case BoxStorage:
		return s.Object, true
	case StackStorage:
		return s.Object, true
	case ClassStorage:
		return s.Object, true
	case TailStorage:
		return s.Object, true
	}
	return nil, false
}

// withObject returns the storage s of the same kind, rooted at object instead. s must be a Class or Tail storage.
func withObject(s AccessStorage, object ssa.Value) AccessStorage {
	switch s := s.(type) {
	case ClassStorage:
		return ClassStorage{Object: object, Field: s.Field}
	case TailStorage:
		return TailStorage{Object: object}
	}
	panic(fmt.Sprintf("cannot re-root %s storage", s.Kind()))
}

// IsLocal returns true when the storage cannot be referenced from outside the function that owns it. Local storages
// are never propagated to callers.
func IsLocal(s AccessStorage) bool {
	k := s.Kind()
	return k == Box || k == Stack
}

// IsUniquelyIdentified returns true when the storage is a single allocation or variable whose identity does not
// depend on any pointer value.
func IsUniquelyIdentified(s AccessStorage) bool {
	switch s.Kind() {
	case Box, Stack, Global:
		return true
	}
	return false
}

// isRooted returns true when the storage identifies the object containing an address, so that addresses derived
// from it (fields, elements) can be attributed to the same storage.
func isRooted(s AccessStorage) bool {
	switch s.Kind() {
	case Box, Stack, Global, Class, Tail:
		return true
	}
	return false
}

// IsDistinctFrom returns true when the two storages can be proven to never overlap.
// Unidentified and nested storages are never distinct from anything. Two different uniquely identified storages
// are distinct when they are of the same kind, or both local allocations. Two fields of the same object are
// distinct. Anything else may alias.
func IsDistinctFrom(a AccessStorage, b AccessStorage) bool {
	if a.Kind() == Unidentified || b.Kind() == Unidentified || a.Kind() == Nested || b.Kind() == Nested {
		return false
	}
	if a == b {
		return false
	}
	if IsUniquelyIdentified(a) && IsUniquelyIdentified(b) {
		if a.Kind() == b.Kind() {
			return true
		}
		return IsLocal(a) && IsLocal(b)
	}
	if ca, ok := a.(ClassStorage); ok {
		if cb, ok := b.(ClassStorage); ok {
			return ca.Object == cb.Object && ca.Field != cb.Field
		}
	}
	return false
}

func valueString(v ssa.Value) string {
	if v == nil {
		return "<nil>"
	}
	if f := v.Parent(); f != nil {
		return fmt.Sprintf("%s@%s", v.Name(), f.Name())
	}
	return v.Name()
}

// fieldName returns the name of field i in the struct pointed to by v, or i when it cannot be determined.
func fieldName(v ssa.Value, i int) string {
	if v != nil {
		if ptr, ok := v.Type().Underlying().(*types.Pointer); ok {
			if st, ok := ptr.Elem().Underlying().(*types.Struct); ok && i >= 0 && i < st.NumFields() {
				return st.Field(i).Name()
			}
		}
	}
	return strconv.Itoa(i)
}
