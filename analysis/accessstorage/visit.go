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
	"go/token"
	"go/types"

	"github.com/yosr-maker/swift/analysis/lang"
	"golang.org/x/tools/go/ssa"
)

// Enforcement is how the exclusivity of an access is guaranteed.
type Enforcement int

const (
	// Dynamic accesses cannot be proven exclusive locally.
	Dynamic Enforcement = iota
	// Static accesses are to local memory whose address never leaves the function.
	Static
	// Unsafe accesses go through an unsafe.Pointer conversion. Summaries record them as unidentified accesses.
	Unsafe
)

// Access is a memory access made by an instruction.
type Access struct {
	Instr   ssa.Instruction
	Storage AccessStorage
	Kind    AccessKind

	// NoNestedConflict is false for accesses that span other accesses to possibly the same storage: iterations over
	// a map, or copies between possibly overlapping slices.
	NoNestedConflict bool

	Enforcement Enforcement
}

// Info returns the summary entry of the access.
func (a Access) Info() StorageAccessInfo {
	return NewStorageAccessInfo(a.Storage, a.Kind, a.NoNestedConflict)
}

// InstructionAccesses returns the memory accesses made by the instruction itself. Calls to functions are not
// accesses: their effects are the summaries of the callees. Calls to builtins are.
func InstructionAccesses(instr ssa.Instruction) []Access {
	v := &accessVisitor{}
	lang.InstrSwitch(v, instr)
	return v.accesses
}

// FunctionAccesses returns all the memory accesses made by the instructions of fn.
func FunctionAccesses(fn *ssa.Function) []Access {
	v := &accessVisitor{}
	lang.VisitFunction(v, fn)
	return v.accesses
}

// accessVisitor implements lang.InstrOp and collects the accesses of the instructions it visits
type accessVisitor struct {
	accesses []Access
}

// addAddressAccess records an access through the pointer address
func (v *accessVisitor) addAddressAccess(instr ssa.Instruction, address ssa.Value, kind AccessKind) {
	v.add(instr, address, Classify(address), kind, true)
}

// addObjectAccess records an access to the contents of a slice or map
func (v *accessVisitor) addObjectAccess(instr ssa.Instruction, object ssa.Value, kind AccessKind,
	noNestedConflict bool) {
	v.add(instr, object, ClassifyObject(object), kind, noNestedConflict)
}

func (v *accessVisitor) add(instr ssa.Instruction, address ssa.Value, storage AccessStorage, kind AccessKind,
	noNestedConflict bool) {
	enforcement := Dynamic
	if storage.Kind() == Stack {
		enforcement = Static
	} else if IsUnsafeAddress(address) {
		enforcement = Unsafe
	}
	v.accesses = append(v.accesses, Access{
		Instr:            instr,
		Storage:          storage,
		Kind:             kind,
		NoNestedConflict: noNestedConflict,
		Enforcement:      enforcement,
	})
}

// builtinCall records the accesses of the builtins that read or write memory
func (v *accessVisitor) builtinCall(instr ssa.Instruction, call *ssa.CallCommon) {
	builtin, ok := call.Value.(*ssa.Builtin)
	if !ok {
		return
	}
	switch builtin.Name() {
	case "copy":
		// copy(dst, src)
		v.readWrite(instr, call.Args[0], call.Args[1])
	case "append":
		// append(s, xs): xs is nil when there is nothing to append
		if len(call.Args) == 2 {
			v.readWrite(instr, call.Args[0], call.Args[1])
		}
	case "delete", "clear":
		v.addObjectAccess(instr, call.Args[0], Modify, true)
	}
}

// readWrite records the write of the elements of dst and the read of the elements of src, for builtins that copy
// from src to dst. If the two may overlap, the accesses conflict with each other.
func (v *accessVisitor) readWrite(instr ssa.Instruction, dst ssa.Value, src ssa.Value) {
	dstStorage := ClassifyObject(dst)
	if _, isConst := src.(*ssa.Const); isConst || !isReferenceValue(src) {
		// nothing to read: nil slices, or strings which are immutable
		v.add(instr, dst, dstStorage, Modify, true)
		return
	}
	srcStorage := ClassifyObject(src)
	distinct := IsDistinctFrom(dstStorage, srcStorage)
	v.add(instr, dst, dstStorage, Modify, distinct)
	v.add(instr, src, srcStorage, Read, distinct)
}

func isReferenceValue(v ssa.Value) bool {
	switch v.Type().Underlying().(type) {
	case *types.Slice, *types.Map, *types.Pointer:
		return true
	}
	return false
}

func isMap(v ssa.Value) bool {
	_, ok := v.Type().Underlying().(*types.Map)
	return ok
}

func (v *accessVisitor) DoDebugRef(*ssa.DebugRef) {}

func (v *accessVisitor) DoUnOp(x *ssa.UnOp) {
	if x.Op == token.MUL {
		v.addAddressAccess(x, x.X, Read)
	}
}

func (v *accessVisitor) DoBinOp(*ssa.BinOp) {}

func (v *accessVisitor) DoCall(x *ssa.Call) {
	v.builtinCall(x, x.Common())
}

func (v *accessVisitor) DoChangeInterface(*ssa.ChangeInterface)         {}
func (v *accessVisitor) DoChangeType(*ssa.ChangeType)                   {}
func (v *accessVisitor) DoConvert(*ssa.Convert)                         {}
func (v *accessVisitor) DoSliceArrayToPointer(*ssa.SliceToArrayPointer) {}
func (v *accessVisitor) DoMakeInterface(*ssa.MakeInterface)             {}
func (v *accessVisitor) DoExtract(*ssa.Extract)                         {}
func (v *accessVisitor) DoSlice(*ssa.Slice)                             {}
func (v *accessVisitor) DoReturn(*ssa.Return)                           {}
func (v *accessVisitor) DoRunDefers(*ssa.RunDefers)                     {}
func (v *accessVisitor) DoPanic(*ssa.Panic)                             {}
func (v *accessVisitor) DoSend(*ssa.Send)                               {}

func (v *accessVisitor) DoStore(x *ssa.Store) {
	v.addAddressAccess(x, x.Addr, Modify)
}

func (v *accessVisitor) DoIf(*ssa.If)     {}
func (v *accessVisitor) DoJump(*ssa.Jump) {}

func (v *accessVisitor) DoDefer(x *ssa.Defer) {
	v.builtinCall(x, x.Common())
}

func (v *accessVisitor) DoGo(x *ssa.Go) {
	v.builtinCall(x, x.Common())
}

func (v *accessVisitor) DoMakeChan(*ssa.MakeChan)   {}
func (v *accessVisitor) DoAlloc(*ssa.Alloc)         {}
func (v *accessVisitor) DoMakeSlice(*ssa.MakeSlice) {}
func (v *accessVisitor) DoMakeMap(*ssa.MakeMap)     {}

func (v *accessVisitor) DoRange(x *ssa.Range) {
	if isMap(x.X) {
		// the iteration reads the map during the whole loop
		v.addObjectAccess(x, x.X, Read, false)
	}
}

func (v *accessVisitor) DoNext(*ssa.Next)           {}
func (v *accessVisitor) DoFieldAddr(*ssa.FieldAddr) {}
func (v *accessVisitor) DoField(*ssa.Field)         {}
func (v *accessVisitor) DoIndexAddr(*ssa.IndexAddr) {}
func (v *accessVisitor) DoIndex(*ssa.Index)         {}

func (v *accessVisitor) DoLookup(x *ssa.Lookup) {
	if isMap(x.X) {
		v.addObjectAccess(x, x.X, Read, true)
	}
}

func (v *accessVisitor) DoMapUpdate(x *ssa.MapUpdate) {
	v.addObjectAccess(x, x.Map, Modify, true)
}

func (v *accessVisitor) DoTypeAssert(*ssa.TypeAssert)   {}
func (v *accessVisitor) DoMakeClosure(*ssa.MakeClosure) {}
func (v *accessVisitor) DoPhi(*ssa.Phi)                 {}
func (v *accessVisitor) DoSelect(*ssa.Select)           {}
