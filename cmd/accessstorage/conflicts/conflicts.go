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

// Package conflicts implements the front-end reporting the call sites that may access the storages accessed by
// their caller, and the redundant loads.
package conflicts

import (
	"os"

	"github.com/yosr-maker/swift/analysis/accessstorage"
	"github.com/yosr-maker/swift/analysis/conflicts"
	"github.com/yosr-maker/swift/cmd/accessstorage/tools"
	"golang.org/x/tools/go/ssa"
)

// Usage of the conflicts sub-command
const Usage = `Report the call sites that may conflict with the accesses of their caller, and the loads that are redundant.

Call sites and loads on a line marked with a //accessstorage:ignore directive, or following such a line, are not
reported.

Usage:
  accessstorage conflicts [options] package...

Examples:
% accessstorage conflicts -config config.yaml ./...
`

// Run prints the conflicts of each analyzed function of the program.
func Run(flags tools.CommonFlags) error {
	state, err := tools.LoadState(flags)
	if err != nil {
		return err
	}
	a := accessstorage.NewStateAnalysis(state)
	a.Run()

	ignored := func(instr ssa.Instruction) bool { return state.Directives.IsIgnored(state.Program, instr) }
	numSites, numLoads := 0, 0
	for _, f := range a.Functions() {
		reports := conflicts.CallSiteConflicts(a, f, ignored)
		loads := conflicts.RedundantLoads(a, f, ignored)
		for _, r := range reports {
			if r.HasConflict() {
				numSites++
			}
		}
		numLoads += len(loads)
		conflicts.Print(os.Stdout, state.Program, f, reports, loads)
	}
	state.Logger.Infof("%d conflicting call sites, %d redundant loads\n", numSites, numLoads)
	return state.CheckError()
}
