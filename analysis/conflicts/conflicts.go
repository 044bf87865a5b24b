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

// Package conflicts reports, using the access summaries, the call sites of a function that may access the same
// memory as the function itself, and the loads that are made redundant by a previous load of the same address.
package conflicts

import (
	"fmt"
	"go/token"
	"io"

	"github.com/yosr-maker/swift/analysis/accessstorage"
	"github.com/yosr-maker/swift/internal/funcutil"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/ssa"
)

// StorageConflict is the relation between a call site and one storage accessed directly by the caller.
type StorageConflict struct {
	// Storage is accessed by an instruction of the caller
	Storage accessstorage.AccessStorage
	// Kind is the strongest access of the caller to Storage
	Kind accessstorage.AccessKind
	// MayConflict is true if the call may access Storage in a way that conflicts with Kind
	MayConflict bool
	// NoNestedConflict is the flag of the call's access to Storage. It is only known for uniquely identified
	// storages, when the call has no unidentified access and accesses Storage.
	NoNestedConflict funcutil.Optional[bool]
}

func (c StorageConflict) String() string {
	s := fmt.Sprintf("[%s] %s", c.Kind, c.Storage)
	if c.MayConflict {
		s += " may conflict"
	}
	if c.NoNestedConflict.IsSome() && !c.NoNestedConflict.Value() {
		s += " (nested conflict)"
	}
	return s
}

// CallSiteReport is the result of the conflict query for one call site.
type CallSiteReport struct {
	Site ssa.CallInstruction
	// Accesses are the accesses of the call, in the context of the caller
	Accesses  *accessstorage.AccessStorageResult
	Conflicts []StorageConflict
}

// HasConflict returns true if the call may conflict with one of the accesses of the caller.
func (r CallSiteReport) HasConflict() bool {
	return funcutil.Exists(r.Conflicts, func(c StorageConflict) bool { return c.MayConflict })
}

// directAccesses returns the strongest kind of the dynamic accesses made by the instructions of fn, per storage.
func directAccesses(fn *ssa.Function) map[accessstorage.AccessStorage]accessstorage.AccessKind {
	res := map[accessstorage.AccessStorage]accessstorage.AccessKind{}
	for _, access := range accessstorage.FunctionAccesses(fn) {
		if access.Enforcement != accessstorage.Dynamic || access.Storage.Kind() == accessstorage.Unidentified {
			continue
		}
		if k, ok := res[access.Storage]; !ok || access.Kind > k {
			res[access.Storage] = access.Kind
		}
	}
	return res
}

// CallSiteConflicts returns a report for each call site of fn that is not a call to a builtin. Call sites for
// which ignored returns true are skipped; ignored may be nil.
// The analysis a must have summarized fn's callees.
func CallSiteConflicts(a *accessstorage.Analysis, fn *ssa.Function,
	ignored func(ssa.Instruction) bool) []CallSiteReport {
	direct := directAccesses(fn)
	storages := maps.Keys(direct)
	slices.SortFunc(storages, func(x, y accessstorage.AccessStorage) bool { return x.String() < y.String() })

	var reports []CallSiteReport
	for _, block := range fn.Blocks {
		for _, instr := range block.Instrs {
			site, ok := instr.(ssa.CallInstruction)
			if !ok || isBuiltin(site) || (ignored != nil && ignored(instr)) {
				continue
			}
			accesses := a.CallSiteAccesses(site)
			report := CallSiteReport{Site: site, Accesses: accesses}
			for _, storage := range storages {
				kind := direct[storage]
				c := StorageConflict{
					Storage:          storage,
					Kind:             kind,
					MayConflict:      accesses.MayConflictWith(kind, storage),
					NoNestedConflict: funcutil.None[bool](),
				}
				if _, found := accesses.Lookup(storage); found && accessstorage.IsUniquelyIdentified(storage) &&
					!accesses.HasUnidentifiedAccess() {
					c.NoNestedConflict = funcutil.Some(accesses.HasNoNestedConflict(storage))
				}
				report.Conflicts = append(report.Conflicts, c)
			}
			reports = append(reports, report)
		}
	}
	return reports
}

func isBuiltin(site ssa.CallInstruction) bool {
	_, ok := site.Common().Value.(*ssa.Builtin)
	return ok
}

// RedundantLoad is a load whose value is the same as the value of a previous load.
type RedundantLoad struct {
	Load     *ssa.UnOp
	Previous *ssa.UnOp
}

// RedundantLoads returns the loads of fn that read an address already loaded in the same block, when no instruction
// between the two loads may modify the memory at that address. Loads for which ignored returns true are not
// reported; ignored may be nil.
//
// Calls are resolved with the summaries of a. Channel operations and deferred calls may synchronize with other
// functions and end all the redundancies.
func RedundantLoads(a *accessstorage.Analysis, fn *ssa.Function, ignored func(ssa.Instruction) bool) []RedundantLoad {
	var res []RedundantLoad
	for _, block := range fn.Blocks {
		loads := map[ssa.Value]*ssa.UnOp{}
		for _, instr := range block.Instrs {
			switch x := instr.(type) {
			case *ssa.UnOp:
				if x.Op == token.ARROW {
					loads = map[ssa.Value]*ssa.UnOp{}
				}
				if x.Op != token.MUL {
					continue
				}
				if previous, ok := loads[x.X]; ok {
					if ignored == nil || !ignored(x) {
						res = append(res, RedundantLoad{Load: x, Previous: previous})
					}
				} else {
					loads[x.X] = x
				}
			case *ssa.Send, *ssa.Select, *ssa.RunDefers:
				loads = map[ssa.Value]*ssa.UnOp{}
			case *ssa.Call:
				accesses := a.CallSiteAccesses(x)
				for address := range loads {
					if accesses.MayConflictWith(accessstorage.Read, accessstorage.Classify(address)) {
						delete(loads, address)
					}
				}
			default:
				for _, access := range accessstorage.InstructionAccesses(instr) {
					if access.Kind != accessstorage.Modify {
						continue
					}
					for address := range loads {
						if !accessstorage.IsDistinctFrom(access.Storage, accessstorage.Classify(address)) {
							delete(loads, address)
						}
					}
				}
			}
		}
	}
	return res
}

// Print writes the reports of the call sites that may conflict and the redundant loads of fn.
func Print(w io.Writer, prog *ssa.Program, fn *ssa.Function, reports []CallSiteReport, loads []RedundantLoad) {
	for _, r := range reports {
		if !r.HasConflict() {
			continue
		}
		fmt.Fprintf(w, "%s: call to %s in %s\n", prog.Fset.Position(r.Site.Pos()), r.Site.Common().Value.Name(),
			fn.Name())
		for _, c := range r.Conflicts {
			if c.MayConflict {
				fmt.Fprintf(w, "  %s\n", c)
			}
		}
	}
	for _, l := range loads {
		fmt.Fprintf(w, "%s: redundant load of %s in %s (loaded at %s)\n", prog.Fset.Position(l.Load.Pos()),
			l.Load.X.Name(), fn.Name(), prog.Fset.Position(l.Previous.Pos()))
	}
}
