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
	"math"
	"sort"

	"golang.org/x/tools/go/ssa"
	"gonum.org/v1/gonum/stat"
)

// Result holds general statistics about the SSA representation of a set of functions.
type Result struct {
	NumberOfFunctions         uint
	NumberOfNonemptyFunctions uint
	NumberOfBlocks            uint
	NumberOfInstructions      uint
}

// SSAStatistics returns a Result with general statistics about the SSA representation of the functions.
func SSAStatistics(functions map[*ssa.Function]bool) Result {

	result := Result{0, 0, 0, 0}

	for f := range functions {
		result.NumberOfFunctions++

		if len(f.Blocks) != 0 {
			result.NumberOfNonemptyFunctions++
			for _, b := range f.Blocks {
				result.NumberOfBlocks++
				result.NumberOfInstructions += uint(len(b.Instrs))
			}
		}
	}

	return result
}

// Distribution summarizes a sample of sizes.
type Distribution struct {
	Count  int
	Mean   float64
	StdDev float64
	Median float64
	Max    float64
}

// NewDistribution returns the distribution of the sample. The sample is not modified.
func NewDistribution(sample []float64) Distribution {
	if len(sample) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)

	mean, stdDev := stat.MeanStdDev(sorted, nil)
	if math.IsNaN(stdDev) {
		// a single value has no deviation
		stdDev = 0
	}
	return Distribution{
		Count:  len(sorted),
		Mean:   mean,
		StdDev: stdDev,
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Max:    sorted[len(sorted)-1],
	}
}
