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

package tools

import (
	"strings"
	"testing"
)

func validateHint(t *testing.T, errorMsg string, containedHint string) {
	hint := HintForErrorMessage(errorMsg)
	if !strings.Contains(hint, containedHint) {
		t.Fatalf("incorrect hint; check and update error message if necessary")
	}
}

func TestHintForFlagAfterFiles(t *testing.T) {
	errorMsg := "error: could not load program:\n -: named files must be .go files: -v"
	containedHint := "all command line flags should be before the path"
	validateHint(t, errorMsg, containedHint)
}

func TestHintForFailedLoadProgram(t *testing.T) {
	errorMsg := "error: could not load program: errors found, exiting\n"
	containedHint := "you have provided the right arguments for an analyzer to load a Go program"
	validateHint(t, errorMsg, containedHint)
}

func TestHintForMissingMain(t *testing.T) {
	errorMsg := "error: failed to build analysis state: failed to compute call graph: " +
		"rapid type analysis needs a main package"
	validateHint(t, errorMsg, "use cha or vta to analyze a library")
}

func TestHintForCallgraphMode(t *testing.T) {
	errorMsg := "error: failed to build analysis state: unsupported callgraph analysis mode \"pointer\""
	validateHint(t, errorMsg, "must be one of static, cha, rta or vta")
}

func TestNoHint(t *testing.T) {
	if hint := HintForErrorMessage("error: something else"); hint != "" {
		t.Fatalf("unexpected hint %q", hint)
	}
}

func TestLoadDefaultConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil || cfg == nil {
		t.Fatalf("expected default config, got %v, %v", cfg, err)
	}
	if _, err := LoadConfig("does-not-exist.yaml"); err == nil {
		t.Fatalf("expected error loading a missing config file")
	}
}

func TestCommonFlags(t *testing.T) {
	flags, err := NewCommonFlags("summaries", []string{"-verbose", "-config", "c.yaml", "./..."}, "usage")
	if err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	if !flags.Verbose || flags.WithTest || flags.ConfigPath != "c.yaml" {
		t.Errorf("unexpected flags %+v", flags)
	}
	if args := flags.FlagSet.Args(); len(args) != 1 || args[0] != "./..." {
		t.Errorf("unexpected arguments %v", args)
	}
}
