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

// Package summaries implements the front-end printing the access summaries of the functions of a program.
package summaries

import (
	"fmt"
	"os"

	"github.com/yosr-maker/swift/analysis/accessstorage"
	"github.com/yosr-maker/swift/cmd/accessstorage/tools"
	"github.com/yosr-maker/swift/internal/formatutil"
)

// Usage of the summaries sub-command
const Usage = `Print the storages accessed by each function of a program.

Usage:
  accessstorage summaries [options] package...
  accessstorage summaries [options] source.go

Examples:
% accessstorage summaries -config config.yaml ./...
`

// Run prints the summary of each analyzed function. If the config has report-unidentified set, only the functions
// with unidentified accesses are printed.
func Run(flags tools.CommonFlags) error {
	state, err := tools.LoadState(flags)
	if err != nil {
		return err
	}
	a := accessstorage.NewStateAnalysis(state)
	a.Run()

	for _, f := range a.Functions() {
		summary, _ := a.Summary(f)
		if state.Config.ReportUnidentified && !summary.Result.HasUnidentifiedAccess() {
			continue
		}
		name := formatutil.Bold(f.String())
		if summary.Result.HasWorstEffects() {
			name = formatutil.Red(f.String())
		} else if summary.Result.IsEmpty() {
			name = formatutil.Green(f.String())
		}
		fmt.Println(name)
		summary.Result.Print(os.Stdout)
	}
	state.Logger.Infof("%d functions summarized in %d iterations, %d worst-case summaries\n",
		len(a.Functions()), a.Stats.Iterations, a.WorstSummaries())
	return state.CheckError()
}
