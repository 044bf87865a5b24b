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
	"github.com/yosr-maker/swift/analysis"
	"github.com/yosr-maker/swift/analysis/config"
	"github.com/yosr-maker/swift/analysis/lang"
	"github.com/yosr-maker/swift/internal/graphutil"
	"github.com/yourbasic/graph"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/ssa"
)

// Statistics counts the work done by an Analysis.
type Statistics struct {
	// Iterations is the number of times a function has been (re)summarized
	Iterations int
	// Opaque is the number of callees summarized from their side effects
	Opaque int
	// UnresolvedSites is the number of call sites without callees in the call graph
	UnresolvedSites int
}

// Analysis computes the summaries of the functions of a call graph, bottom-up. Summaries are kept after Run returns,
// and only the summaries that have been invalidated are recomputed by the next call to Run.
type Analysis struct {
	config    *config.Config
	logger    *config.LogGroup
	callgraph *callgraph.Graph
	oracle    SideEffectsOracle
	isBenign  func(*ssa.Function) bool

	// summaries maps functions to their summary. Callees that are not analyzed have their summary computed
	// from their side effects once.
	summaries  map[*ssa.Function]*FunctionAccessStorage
	opaque     map[*ssa.Function]bool
	callees    map[ssa.CallInstruction][]*ssa.Function
	unresolved map[ssa.CallInstruction]bool

	Stats Statistics
}

// NewAnalysis returns an analysis of the functions in cg. The oracle provides the side effects of the functions
// that cannot be analyzed; isBenign marks additional functions whose calls do not access any memory of the caller.
// Both oracle and isBenign may be nil.
func NewAnalysis(cfg *config.Config, logger *config.LogGroup, cg *callgraph.Graph, oracle SideEffectsOracle,
	isBenign func(*ssa.Function) bool) *Analysis {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	if logger == nil {
		logger = config.NewLogGroup(cfg)
	}
	a := &Analysis{
		config:    cfg,
		logger:    logger,
		callgraph: cg,
		oracle:    oracle,
		isBenign:  isBenign,
		summaries:  make(map[*ssa.Function]*FunctionAccessStorage),
		opaque:     make(map[*ssa.Function]bool),
		callees:    make(map[ssa.CallInstruction][]*ssa.Function),
		unresolved: make(map[ssa.CallInstruction]bool),
	}
	for _, node := range cg.Nodes {
		for _, e := range node.Out {
			if e.Site != nil && e.Callee.Func != nil {
				a.callees[e.Site] = append(a.callees[e.Site], e.Callee.Func)
			}
		}
	}
	return a
}

// NewStateAnalysis returns the analysis of the program of state, using its call graph, its side effects oracle and
// its benign functions.
func NewStateAnalysis(state *analysis.State) *Analysis {
	return NewAnalysis(state.Config, state.Logger, state.CallGraph, state.Oracle, state.IsBenign)
}

// isAnalyzed returns true if the summary of f is computed from its instructions.
func (a *Analysis) isAnalyzed(f *ssa.Function) bool {
	if f == nil || len(f.Blocks) == 0 {
		return false
	}
	pkg := lang.PackageTypeFromFunction(f)
	return pkg == nil || a.config.MatchPkgFilter(pkg.Path()) || a.config.MatchPkgFilter(pkg.Name())
}

// Run computes the summaries of all the analyzed functions that do not have a summary yet.
func (a *Analysis) Run() {
	pending := make(map[*ssa.Function]bool)
	for f := range a.callgraph.Nodes {
		if !a.isAnalyzed(f) {
			continue
		}
		// a function summarized as a callee between Invalidate and Run only has a placeholder summary
		if _, done := a.summaries[f]; done && !a.opaque[f] {
			continue
		}
		a.summaries[f] = NewFunctionAccessStorage(f, a.config.MaxStorageAccesses)
		delete(a.opaque, f)
		pending[f] = true
	}
	view := graphutil.NewCallgraphIterator(a.callgraph, func(f *ssa.Function) bool { return pending[f] })
	a.logger.Debugf("Summarizing %d functions\n", view.Order())

	// Components come out callees first. The worklist is pulled from the end, so it holds them in reverse and
	// the members of a component are reanalyzed before moving to its callers.
	worklist := make([]*ssa.Function, 0, view.Order())
	components := graph.StrongComponents(view)
	for i := len(components) - 1; i >= 0; i-- {
		for _, v := range components[i] {
			worklist = append(worklist, view.Nodes[v].Func)
		}
	}
	onWorklist := make(map[*ssa.Function]bool, len(worklist))
	for _, f := range worklist {
		onWorklist[f] = true
	}

	for len(worklist) > 0 {
		f := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		onWorklist[f] = false
		a.Stats.Iterations++

		summary := a.summaries[f]
		a.logger.Tracef("Analyzing %v\n", f)
		if !a.summarize(summary) {
			continue
		}
		if a.logger.LogsTrace() {
			a.logger.Tracef("Summary of %v changed:\n%s", f, summary.Result)
		}
		for _, e := range a.callgraph.Nodes[f].In {
			caller := e.Caller.Func
			if pending[caller] && !onWorklist[caller] {
				onWorklist[caller] = true
				worklist = append(worklist, caller)
			}
		}
	}
}

// summarize adds the accesses of the instructions and the call sites of the function to its summary, and returns
// true if the summary changed. Once the summary is the worst-case summary, it is final.
func (a *Analysis) summarize(summary *FunctionAccessStorage) bool {
	if summary.Result.HasWorstEffects() {
		return false
	}
	changed := false
	for _, block := range summary.Function.Blocks {
		for _, instr := range block.Instrs {
			if call, ok := instr.(ssa.CallInstruction); ok && !isBuiltinCall(call) {
				changed = a.mergeCallSite(summary, call) || changed
			} else {
				changed = summary.AnalyzeInstruction(instr) || changed
			}
			if summary.Result.HasWorstEffects() {
				return changed
			}
		}
	}
	return changed
}

func (a *Analysis) mergeCallSite(summary *FunctionAccessStorage, site ssa.CallInstruction) bool {
	if summary.Result.HasWorstEffects() {
		return false
	}
	changed, resolved := a.applyCallSite(summary, site)
	if !resolved && !a.unresolved[site] {
		a.unresolved[site] = true
		a.Stats.UnresolvedSites++
		a.logger.Debugf("No callee for call site %v in %v\n", site, summary.Function)
	}
	return changed
}

// applyCallSite merges the summaries of the callees of site into summary. If site has no callee in the call graph,
// summary is set to the worst-case summary and resolved is false.
func (a *Analysis) applyCallSite(summary *FunctionAccessStorage, site ssa.CallInstruction) (changed bool,
	resolved bool) {
	scratch := NewFunctionAccessStorage(site.Common().StaticCallee(), a.config.MaxStorageAccesses)
	if scratch.SummarizeCall(site, a.isBenign) {
		return summary.MergeFromApply(scratch, site), true
	}
	callees := a.callees[site]
	if len(callees) == 0 {
		changed = !summary.Result.HasWorstEffects()
		summary.Result.SetWorstEffects()
		return changed, false
	}
	for _, callee := range callees {
		changed = summary.MergeFromApply(a.calleeSummary(callee), site) || changed
	}
	return changed, true
}

// CallSiteAccesses returns the accesses made by the call at site, in the context of the function containing it: the
// summaries of the callees remapped through the arguments of the call. Run must have been called first.
func (a *Analysis) CallSiteAccesses(site ssa.CallInstruction) *AccessStorageResult {
	scratch := NewFunctionAccessStorage(site.Parent(), a.config.MaxStorageAccesses)
	if isBuiltinCall(site) {
		scratch.AnalyzeInstruction(site)
		return scratch.Result
	}
	a.applyCallSite(scratch, site)
	return scratch.Result
}

// Callees returns the callees of site in the call graph of the analysis.
func (a *Analysis) Callees(site ssa.CallInstruction) []*ssa.Function {
	return a.callees[site]
}

// calleeSummary returns the summary of callee. Callees that are not analyzed are summarized from their side
// effects.
func (a *Analysis) calleeSummary(callee *ssa.Function) *FunctionAccessStorage {
	if s, ok := a.summaries[callee]; ok {
		return s
	}
	s := NewFunctionAccessStorage(callee, a.config.MaxStorageAccesses)
	if !s.SummarizeFunction(a.oracle) {
		s.summarizeFromSideEffects(a.oracle)
	}
	a.Stats.Opaque++
	a.summaries[callee] = s
	a.opaque[callee] = true
	return s
}

func isBuiltinCall(call ssa.CallInstruction) bool {
	_, ok := call.Common().Value.(*ssa.Builtin)
	return ok
}

// Summary returns the summary of fn, if it has been computed.
func (a *Analysis) Summary(fn *ssa.Function) (*FunctionAccessStorage, bool) {
	s, ok := a.summaries[fn]
	return s, ok
}

// Functions returns the analyzed functions that have a summary, sorted by name.
func (a *Analysis) Functions() []*ssa.Function {
	var funcs []*ssa.Function
	for f := range a.summaries {
		if !a.opaque[f] {
			funcs = append(funcs, f)
		}
	}
	slices.SortFunc(funcs, func(x, y *ssa.Function) bool { return x.String() < y.String() })
	return funcs
}

// WorstSummaries returns the number of analyzed functions whose summary is the worst-case summary.
func (a *Analysis) WorstSummaries() int {
	n := 0
	for f, s := range a.summaries {
		if !a.opaque[f] && s.Result.HasWorstEffects() {
			n++
		}
	}
	return n
}

// Invalidate removes the summary of fn and the summaries of all its transitive callers. They are recomputed by the
// next call to Run.
func (a *Analysis) Invalidate(fn *ssa.Function) {
	worklist := []*ssa.Function{fn}
	seen := make(map[*ssa.Function]bool)
	for len(worklist) > 0 {
		f := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if f == nil || seen[f] {
			continue
		}
		seen[f] = true
		delete(a.summaries, f)
		delete(a.opaque, f)
		if node := a.callgraph.Nodes[f]; node != nil {
			for _, e := range node.In {
				worklist = append(worklist, e.Caller.Func)
			}
		}
	}
	a.logger.Debugf("Invalidated %d summaries\n", len(seen))
}
