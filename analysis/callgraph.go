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

package analysis

import (
	"fmt"
	"strings"

	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/callgraph/cha"
	"golang.org/x/tools/go/callgraph/rta"
	"golang.org/x/tools/go/callgraph/static"
	"golang.org/x/tools/go/callgraph/vta"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// CallgraphAnalysisMode is the algorithm used to compute the call graph of the program
type CallgraphAnalysisMode uint64

const (
	StaticAnalysis         CallgraphAnalysisMode = iota // StaticAnalysis is under-approximating (fast)
	ClassHierarchyAnalysis                              // ClassHierarchyAnalysis is a coarse over-approximation (fast)
	RapidTypeAnalysis                                   // RapidTypeAnalysis only keeps the functions reachable from main
	VariableTypeAnalysis                                // VariableTypeAnalysis refines CHA with the flow of types
)

var callgraphModeNames = map[string]CallgraphAnalysisMode{
	"static": StaticAnalysis,
	"cha":    ClassHierarchyAnalysis,
	"rta":    RapidTypeAnalysis,
	"vta":    VariableTypeAnalysis,
}

// ParseCallgraphMode returns the mode named s ("static", "cha", "rta" or "vta").
func ParseCallgraphMode(s string) (CallgraphAnalysisMode, error) {
	if mode, ok := callgraphModeNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return mode, nil
	}
	return StaticAnalysis, fmt.Errorf("unsupported callgraph analysis mode %q", s)
}

func (mode CallgraphAnalysisMode) String() string {
	for name, m := range callgraphModeNames {
		if m == mode {
			return name
		}
	}
	return fmt.Sprintf("CallgraphAnalysisMode(%d)", uint64(mode))
}

// ComputeCallgraph computes the call graph of prog using the provided mode.
// Dynamic calls without any callee in the call graph are summarized by the worst-case summary, so the
// under-approximating static mode is sound but imprecise.
func (mode CallgraphAnalysisMode) ComputeCallgraph(prog *ssa.Program) (*callgraph.Graph, error) {
	switch mode {
	case StaticAnalysis:
		// Build the callgraph using only static analysis.
		return static.CallGraph(prog), nil
	case ClassHierarchyAnalysis:
		// Build the callgraph using the Class Hierarchy Analysis
		// See the documentation, and
		// "Optimization of Object-Oriented Programs Using Static Class Hierarchy Analysis",
		// J. Dean, D. Grove, and C. Chambers, ECOOP'95.
		return cha.CallGraph(prog), nil
	case VariableTypeAnalysis:
		cg := vta.CallGraph(ssautil.AllFunctions(prog), cha.CallGraph(prog))
		return cg, nil
	case RapidTypeAnalysis:
		// Build the callgraph using rapid type analysis
		// See the documentation, and
		// "Fast Analysis of C++ Virtual Function Calls", D.Bacon & P. Sweeney, OOPSLA'96
		var roots []*ssa.Function
		for _, m := range ssautil.MainPackages(prog.AllPackages()) {
			// Start at all init and main functions in main packages
			roots = append(roots, m.Func("init"), m.Func("main"))
		}
		if len(roots) == 0 {
			return nil, fmt.Errorf("rapid type analysis needs a main package")
		}
		return rta.Analyze(roots, true).CallGraph, nil
	default:
		return nil, fmt.Errorf("unsupported callgraph analysis mode %d", uint64(mode))
	}
}
