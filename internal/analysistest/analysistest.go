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

// Package analysistest provides helpers to build the programs analyzed in tests, and to read the expectations
// written as annotations in their source.
package analysistest

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"testing"

	"github.com/yosr-maker/swift/analysis"
	"github.com/yosr-maker/swift/analysis/config"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// TestProgramDir returns the directory of the test program at path elems under the testdata/src directory of the
// repository.
func TestProgramDir(elems ...string) string {
	_, filename, _, _ := runtime.Caller(0)
	root := filepath.Join(filepath.Dir(filename), "..", "..", "testdata", "src")
	return filepath.Join(append([]string{root}, elems...)...)
}

// LoadTest loads the program in the directory dir, looking for a main.go and an optional config.yaml. If additional
// files are specified as extraFiles, the program will be loaded using those files too. The directory must contain a
// go.mod.
func LoadTest(t *testing.T, dir string, extraFiles []string) (analysis.LoadedProgram, *config.Config) {
	t.Helper()
	cfg := config.NewDefault()
	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); err == nil {
		config.SetGlobalConfig(configFile)
		cfg, err = config.LoadGlobal()
		if err != nil {
			t.Fatalf("error loading config %s: %v", configFile, err)
		}
	}
	files := []string{"./main.go"}
	for _, extraFile := range extraFiles {
		files = append(files, "./"+extraFile)
	}

	// the test programs are modules of their own: packages are loaded from their directory
	pcfg := &packages.Config{
		Mode: analysis.PkgLoadMode,
		Dir:  dir,
		Fset: token.NewFileSet(),
	}
	program, err := analysis.LoadProgram(pcfg, "", ssa.BuilderMode(0), files)
	if err != nil {
		t.Fatalf("error loading packages: %v", err)
	}
	return program, cfg
}

// BuildSource type-checks src as the single file of package main and returns its SSA package. Imported packages
// are built from export data and have no function bodies.
func BuildSource(t *testing.T, src string) *ssa.Package {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "main.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("could not parse test source: %v", err)
	}
	pkg := types.NewPackage("main", "main")
	conf := &types.Config{Importer: importer.Default()}
	ssaPkg, _, err := ssautil.BuildPackage(conf, fset, pkg, []*ast.File{f}, ssa.SanityCheckFunctions)
	if err != nil {
		t.Fatalf("could not build test source: %v", err)
	}
	return ssaPkg
}

// Func returns the function name of the package, or fails the test.
func Func(t *testing.T, pkg *ssa.Package, name string) *ssa.Function {
	t.Helper()
	f := pkg.Func(name)
	if f == nil {
		t.Fatalf("no function %s in package %s", name, pkg.Pkg.Path())
	}
	return f
}

// Global returns the package-level variable name of the package, or fails the test.
func Global(t *testing.T, pkg *ssa.Package, name string) *ssa.Global {
	t.Helper()
	g := pkg.Var(name)
	if g == nil {
		t.Fatalf("no global %s in package %s", name, pkg.Pkg.Path())
	}
	return g
}

// Expectation is the set of annotations of a function declaration:
//
//	// @Modifies(g1, g2) the summary of the function modifies the globals g1 and g2
//	// @Reads(g3) the summary of the function reads the global g3 (and does not modify it)
//	// @Unidentified(read) the unidentified access of the summary is a read
//	// @Worst the summary is the worst-case summary
type Expectation struct {
	Modifies     []string
	Reads        []string
	Unidentified string
	Worst        bool
}

var (
	// ModifiesRegex matches annotations of the form "@Modifies(id1, id2)"
	ModifiesRegex = regexp.MustCompile(`@Modifies\(((?:\s*\w+\s*,?)+)\)`)
	// ReadsRegex matches annotations of the form "@Reads(id1, id2)"
	ReadsRegex = regexp.MustCompile(`@Reads\(((?:\s*\w+\s*,?)+)\)`)
	// UnidentifiedRegex matches annotations of the form "@Unidentified(read)" or "@Unidentified(modify)"
	UnidentifiedRegex = regexp.MustCompile(`@Unidentified\((read|modify)\)`)
	// WorstRegex matches the "@Worst" annotation
	WorstRegex = regexp.MustCompile(`@Worst\b`)
)

// GetExpectations parses the files and returns the expectations of each annotated function declaration, indexed
// by the name of the function.
func GetExpectations(t *testing.T, files ...string) map[string]Expectation {
	t.Helper()
	res := map[string]Expectation{}
	fset := token.NewFileSet()
	for _, file := range files {
		f, err := parser.ParseFile(fset, file, nil, parser.ParseComments)
		if err != nil {
			t.Fatalf("could not parse %s: %v", file, err)
		}
		for _, decl := range f.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok || fd.Doc == nil || fd.Recv != nil {
				continue
			}
			var e Expectation
			found := false
			for _, c := range fd.Doc.List {
				if a := ModifiesRegex.FindStringSubmatch(c.Text); len(a) > 1 {
					e.Modifies = append(e.Modifies, splitIdents(a[1])...)
					found = true
				}
				if a := ReadsRegex.FindStringSubmatch(c.Text); len(a) > 1 {
					e.Reads = append(e.Reads, splitIdents(a[1])...)
					found = true
				}
				if a := UnidentifiedRegex.FindStringSubmatch(c.Text); len(a) > 1 {
					e.Unidentified = a[1]
					found = true
				}
				if WorstRegex.MatchString(c.Text) {
					e.Worst = true
					found = true
				}
			}
			if found {
				res[fd.Name.Name] = e
			}
		}
	}
	return res
}

func splitIdents(s string) []string {
	var idents []string
	for _, ident := range strings.Split(s, ",") {
		if id := strings.TrimSpace(ident); id != "" {
			idents = append(idents, id)
		}
	}
	return idents
}
