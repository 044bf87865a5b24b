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
	"go/ast"
)

// MapComments applies fmap to each comment in files.
func MapComments(files []*ast.File, fmap func(*ast.Comment)) {
	for _, f := range files {
		for _, c := range f.Comments {
			for _, c1 := range c.List {
				fmap(c1)
			}
		}
	}
}
