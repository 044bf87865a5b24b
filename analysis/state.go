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
	"sync"

	"github.com/yosr-maker/swift/analysis/config"
	"github.com/yosr-maker/swift/analysis/effects"
	"github.com/yosr-maker/swift/analysis/lang"
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
)

// State holds the loaded program and the information shared by the analyses of that program: the call graph, the
// side effects of the functions that cannot be analyzed and the user's directives.
type State struct {
	// The logger used during the analysis (can be used to control output.
	Logger *config.LogGroup

	// The configuration file for the analysis
	Config *config.Config

	// The program to be analyzed. It should be a complete buildable program (e.g. loaded by LoadProgram).
	Program *ssa.Program

	// Packages are the packages loaded from the command line, with their syntax and type information
	Packages []*packages.Package

	// Directives are the directive comments found in the source of the program
	Directives Directives

	// CallGraph is the call graph computed with the mode set in the config
	CallGraph *callgraph.Graph

	// Oracle provides the side effects of functions without body or outside of the package filter
	Oracle *effects.Oracle

	// Stored errors
	errors     map[error]bool
	errorMutex sync.Mutex
}

// NewState returns the state of the loaded program, after computing its call graph.
func NewState(lp LoadedProgram, logger *config.LogGroup, cfg *config.Config) (*State, error) {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	if logger == nil {
		logger = config.NewLogGroup(cfg)
	}
	mode, err := ParseCallgraphMode(cfg.Callgraph)
	if err != nil {
		return nil, err
	}
	logger.Debugf("Computing %s call graph\n", mode)
	cg, err := mode.ComputeCallgraph(lp.Program)
	if err != nil {
		return nil, fmt.Errorf("failed to compute call graph: %w", err)
	}
	cg.DeleteSyntheticNodes()
	return &State{
		Logger:     logger,
		Config:     cfg,
		Program:    lp.Program,
		Packages:   lp.Packages,
		Directives: lp.Directives,
		CallGraph:  cg,
		Oracle:     effects.NewOracle(cfg),
		errors:     map[error]bool{},
	}, nil
}

// IsBenign returns true if f has been declared benign, either in the config or with a directive in its source.
func (s *State) IsBenign(f *ssa.Function) bool {
	if f == nil {
		return false
	}
	if len(s.Config.BenignFunctions) > 0 && s.Config.IsBenignFunction(FunctionIdentifier(f)) {
		return true
	}
	return s.Directives.IsBenign(s.Program, f)
}

// FunctionIdentifier returns the code identifier of f, to match it against the identifiers of the config.
func FunctionIdentifier(f *ssa.Function) config.CodeIdentifier {
	cid := config.CodeIdentifier{
		Package: lang.PackageNameFromFunction(f),
		Method:  f.Name(),
	}
	if recv := f.Signature.Recv(); recv != nil {
		cid.Receiver = lang.ReceiverStr(recv.Type())
	}
	return cid
}

// ResolveCallee returns the callees of the call instruction instr in the call graph. Statically resolvable callees
// are returned even when the call graph has no edge for instr.
func (s *State) ResolveCallee(instr ssa.CallInstruction) []*ssa.Function {
	var callees []*ssa.Function
	if node, ok := s.CallGraph.Nodes[instr.Parent()]; ok {
		for _, callEdge := range node.Out {
			if callEdge.Site == instr {
				callees = append(callees, callEdge.Callee.Func)
			}
		}
	}
	if len(callees) == 0 {
		if callee := instr.Common().StaticCallee(); callee != nil {
			callees = append(callees, callee)
		}
	}
	return callees
}

// AddError stores e in the state, if it is not nil
func (s *State) AddError(e error) {
	s.errorMutex.Lock()
	defer s.errorMutex.Unlock()
	if e != nil {
		s.errors[e] = true
	}
}

// CheckError pops one of the errors stored in the state, or returns nil if there is none
func (s *State) CheckError() error {
	s.errorMutex.Lock()
	defer s.errorMutex.Unlock()
	for e := range s.errors {
		delete(s.errors, e)
		return e
	}
	return nil
}
