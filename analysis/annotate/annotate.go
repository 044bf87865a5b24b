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

// Package annotate writes the access summaries of functions as comments above their declarations.
package annotate

import (
	"go/ast"
	"go/types"
	"strings"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
	"github.com/yosr-maker/swift/analysis/accessstorage"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
)

// Prefix starts every annotation comment.
const Prefix = "// accesses:"

// Annotate attaches the lines returned by describe as annotation comments above each function declaration of
// file, replacing the annotations of a previous run. dec must be the decorator that produced file: describe
// receives the original syntax of the declaration. Returns the number of annotated declarations.
func Annotate(dec *decorator.Decorator, file *dst.File, describe func(*ast.FuncDecl) []string) int {
	n := 0
	for _, decl := range file.Decls {
		fd, ok := decl.(*dst.FuncDecl)
		if !ok {
			continue
		}
		var lines []string
		if astDecl, ok := dec.Ast.Nodes[fd].(*ast.FuncDecl); ok {
			lines = describe(astDecl)
		}
		start := withoutAnnotations(fd.Decs.Start.All())
		if len(lines) > 0 {
			n++
			start = insertAnnotations(start, lines)
		}
		fd.Decs.Start.Replace(start...)
	}
	return n
}

func withoutAnnotations(decs []string) []string {
	res := make([]string, 0, len(decs))
	for _, d := range decs {
		if !strings.HasPrefix(d, Prefix) {
			res = append(res, d)
		}
	}
	return res
}

// insertAnnotations adds the lines at the end of the comments decs, but before the directives that must stay on the
// line preceding the declaration.
func insertAnnotations(decs []string, lines []string) []string {
	i := len(decs)
	for i > 0 && isDirective(decs[i-1]) {
		i--
	}
	res := make([]string, 0, len(decs)+len(lines))
	res = append(res, decs[:i]...)
	for _, line := range lines {
		res = append(res, Prefix+" "+line)
	}
	return append(res, decs[i:]...)
}

// isDirective returns true for comments of the form //tool:directive
func isDirective(comment string) bool {
	text := strings.TrimPrefix(comment, "//")
	return text != comment && !strings.HasPrefix(text, " ") && strings.Contains(text, ":")
}

// SummaryLines returns the annotation lines of a summary: one per storage accessed, and one for the unidentified
// accesses.
func SummaryLines(r *accessstorage.AccessStorageResult) []string {
	if r.HasWorstEffects() {
		return []string{"any"}
	}
	if r.IsEmpty() {
		return []string{"none"}
	}
	var lines []string
	for _, line := range strings.Split(r.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// FunctionOf returns the SSA function of the declaration decl in pkg, or nil if prog has none.
func FunctionOf(prog *ssa.Program, pkg *packages.Package, decl *ast.FuncDecl) *ssa.Function {
	obj, ok := pkg.TypesInfo.Defs[decl.Name].(*types.Func)
	if !ok {
		return nil
	}
	return prog.FuncValue(obj)
}

// Describe returns the describe function of Annotate that annotates the functions of pkg with their summary in a.
func Describe(a *accessstorage.Analysis, prog *ssa.Program, pkg *packages.Package) func(*ast.FuncDecl) []string {
	return func(decl *ast.FuncDecl) []string {
		fn := FunctionOf(prog, pkg, decl)
		if fn == nil {
			return nil
		}
		summary, ok := a.Summary(fn)
		if !ok {
			return nil
		}
		return SummaryLines(summary.Result)
	}
}
