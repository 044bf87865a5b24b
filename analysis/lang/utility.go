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

package lang

import (
	"go/types"
	"strings"

	"golang.org/x/tools/go/ssa"
)

// packageFromErrorName extracts the package of the type of an Error method from the name of the function, which
// looks like one of:
// (*net/http.requestBodyReadError).Error
// (encoding/json.jsonError).Error
func packageFromErrorName(name string) string {
	if !strings.HasSuffix(name, ").Error") {
		return ""
	}
	name = strings.TrimPrefix(strings.TrimSuffix(name, ").Error"), "(")
	name = strings.TrimPrefix(name, "*")
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return ""
	}
	return name[:i]
}

// PackageTypeFromFunction returns the package associated with a function
// If the function has a package, return that.
// If the function is a method, return the package of its object
func PackageTypeFromFunction(f *ssa.Function) *types.Package {
	if pkg := f.Package(); pkg != nil {
		return pkg.Pkg
	}

	// f.Object can be nil for some generics and synthetic functions
	if f.Object() == nil {
		return nil
	}
	return f.Object().Pkg()
}

// PackageNameFromFunction returns the best possible package path for a ssa.Function.
// If the Function has a package, use that.
// If the function doesn't have a package, check if it's a method and use
// the package associated with its object
// If none of those are true, it must be an error wrapper, so try to extract the package
// path from the name of the function.
func PackageNameFromFunction(f *ssa.Function) string {
	if f == nil {
		return ""
	}
	if pkg := PackageTypeFromFunction(f); pkg != nil {
		return pkg.Path()
	}
	return packageFromErrorName(f.String())
}

// ReceiverStr returns the string receiver name of t.
// e.g. *repo/package.Type -> Type
func ReceiverStr(t types.Type) string {
	typ := strings.ReplaceAll(t.String(), "*", "")
	split := strings.Split(typ, ".")
	return split[len(split)-1]
}
