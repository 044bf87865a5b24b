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

// Package stats implements the front-end printing statistics about the access summaries of a program.
package stats

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yosr-maker/swift/analysis"
	"github.com/yosr-maker/swift/analysis/accessstorage"
	"github.com/yosr-maker/swift/cmd/accessstorage/tools"
	"github.com/yosr-maker/swift/internal/formatutil"
	"github.com/yosr-maker/swift/internal/funcutil"
	"github.com/yosr-maker/swift/internal/graphutil"
	"github.com/yourbasic/graph"
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/ssa"
)

// Usage of the stats sub-command
const Usage = `Print statistics about the access summaries of a program and its recursive functions.

Usage:
  accessstorage stats [options] package...

Examples:
% accessstorage stats -json ./...
`

// Flags represents the flags for the stats sub-command.
type Flags struct {
	tools.CommonFlags
	outputJSON bool
	top        int
}

// NewFlags returns parsed flags for stats.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("stats")
	outputJSON := flags.FlagSet.Bool("json", false, "output results as JSON")
	top := flags.FlagSet.Int("top", 5, "number of recursive components to print")
	tools.SetUsage(flags.FlagSet, Usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, outputJSON: *outputJSON, top: *top}, nil
}

// Result holds the statistics of one run of the analysis.
type Result struct {
	SSA             analysis.Result
	Summaries       int
	WorstSummaries  int
	Iterations      int
	Opaque          int
	UnresolvedSites int
	SummarySize     analysis.Distribution
	// Recursion is the number of recursive components of the call graph of the analyzed functions
	Recursion int
	// SelfCalls is the number of calls of functions to themselves
	SelfCalls  int
	Components [][]string `json:",omitempty"`
}

// Run prints the statistics of the analysis of the program.
func Run(flags Flags) error {
	state, err := tools.LoadState(flags.CommonFlags)
	if err != nil {
		return err
	}
	a := accessstorage.NewStateAnalysis(state)
	a.Run()

	functions := a.Functions()
	analyzed := make(map[*ssa.Function]bool, len(functions))
	sizes := make([]float64, 0, len(functions))
	for _, f := range functions {
		analyzed[f] = true
		summary, _ := a.Summary(f)
		sizes = append(sizes, float64(summary.Result.Len()))
	}

	iterator := graphutil.NewCallgraphIterator(state.CallGraph, func(f *ssa.Function) bool { return analyzed[f] })
	components := graphutil.RecursiveComponents(iterator)

	result := Result{
		SSA:             analysis.SSAStatistics(analyzed),
		Summaries:       len(functions),
		WorstSummaries:  a.WorstSummaries(),
		Iterations:      a.Stats.Iterations,
		Opaque:          a.Stats.Opaque,
		UnresolvedSites: a.Stats.UnresolvedSites,
		SummarySize:     analysis.NewDistribution(sizes),
		Recursion:       len(components),
		SelfCalls:       graph.Check(iterator).Loops,
	}
	for i, component := range components {
		if i >= flags.top {
			break
		}
		result.Components = append(result.Components,
			funcutil.Map(component, func(n *callgraph.Node) string { return n.Func.String() }))
	}

	if flags.outputJSON {
		buf, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to marshal statistics: %w", err)
		}
		fmt.Println(string(buf))
		return nil
	}
	printResult(result)
	return nil
}

func printResult(r Result) {
	fmt.Printf("Number of functions: %d\n", r.SSA.NumberOfFunctions)
	fmt.Printf("Number of blocks: %d\n", r.SSA.NumberOfBlocks)
	fmt.Printf("Number of instructions: %d\n", r.SSA.NumberOfInstructions)
	fmt.Printf("Summaries: %d (%s worst-case) in %d iterations\n", r.Summaries,
		formatutil.Red(r.WorstSummaries), r.Iterations)
	fmt.Printf("Callees summarized from side effects: %d\n", r.Opaque)
	fmt.Printf("Unresolved call sites: %d\n", r.UnresolvedSites)
	fmt.Printf("Summary size: mean %.2f, std. dev. %.2f, median %.0f, max %.0f\n",
		r.SummarySize.Mean, r.SummarySize.StdDev, r.SummarySize.Median, r.SummarySize.Max)
	fmt.Printf("Recursive components: %d (%d self-recursive calls)\n", r.Recursion, r.SelfCalls)
	for i, component := range r.Components {
		fmt.Printf("  %s %s\n", formatutil.Bold(fmt.Sprintf("#%d (%d)", i+1, len(component))),
			strings.Join(component, ", "))
	}
}
