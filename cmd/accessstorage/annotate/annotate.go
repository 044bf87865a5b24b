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

// Package annotate implements the front-end writing the access summaries as comments in the source files.
package annotate

import (
	"fmt"
	"os"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
	"github.com/yosr-maker/swift/analysis/accessstorage"
	"github.com/yosr-maker/swift/analysis/annotate"
	"github.com/yosr-maker/swift/cmd/accessstorage/tools"
)

// Usage of the annotate sub-command
const Usage = `Annotate each function declaration with its access summary, as "// accesses:" comments.

Usage:
  accessstorage annotate [options] package...

Without -write, the annotated files are printed on standard output.

Examples:
% accessstorage annotate -write ./...
`

// Flags represents the flags for the annotate sub-command.
type Flags struct {
	tools.CommonFlags
	write bool
}

// NewFlags returns parsed flags for annotate.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("annotate")
	write := flags.FlagSet.Bool("write", false, "overwrite the source files with the annotated files")
	tools.SetUsage(flags.FlagSet, Usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, write: *write}, nil
}

// Run annotates the files of the packages given on the command line.
func Run(flags Flags) error {
	state, err := tools.LoadState(flags.CommonFlags)
	if err != nil {
		return err
	}
	a := accessstorage.NewStateAnalysis(state)
	a.Run()

	for _, pkg := range state.Packages {
		describe := annotate.Describe(a, state.Program, pkg)
		for _, astFile := range pkg.Syntax {
			filename := pkg.Fset.File(astFile.Pos()).Name()
			dec := decorator.NewDecorator(pkg.Fset)
			file, err := dec.DecorateFile(astFile)
			if err != nil {
				return fmt.Errorf("failed to decorate %s: %w", filename, err)
			}
			n := annotate.Annotate(dec, file, describe)
			if n == 0 {
				continue
			}
			state.Logger.Debugf("Annotated %d functions in %s\n", n, filename)
			if err := output(filename, file, flags.write); err != nil {
				return err
			}
		}
	}
	return nil
}

// output writes the annotated file to filename if write is set, or to the standard output.
func output(filename string, file *dst.File, write bool) error {
	restorer := decorator.NewRestorer()
	if !write {
		fmt.Printf("// %s\n", filename)
		return restorer.Fprint(os.Stdout, file)
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not write %s: %w", filename, err)
	}
	defer f.Close()
	if err := restorer.Fprint(f, file); err != nil {
		return fmt.Errorf("could not write %s: %w", filename, err)
	}
	return nil
}
