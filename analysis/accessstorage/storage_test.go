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

package accessstorage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yosr-maker/swift/internal/analysistest"
	"golang.org/x/tools/go/ssa"
)

const storageSource = `package main

var g int
var h int

type T struct {
	a int
	b int
}

func alloc(n int) []int {
	s := make([]int, n)
	r := make([]int, n)
	copy(s, r)
	return s
}

func fields(t *T, u *T) {
	t.a = 1
	t.b = 2
	u.a = 3
}

func main() {}
`

// instrsOf returns the instructions of type I in fn, in order
func instrsOf[I ssa.Instruction](fn *ssa.Function) []I {
	var res []I
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			if x, ok := instr.(I); ok {
				res = append(res, x)
			}
		}
	}
	return res
}

// calls returns the call instructions of fn that call a function named name
func calls(fn *ssa.Function, name string) []*ssa.Call {
	var res []*ssa.Call
	for _, c := range instrsOf[*ssa.Call](fn) {
		if callee := c.Call.StaticCallee(); callee != nil && callee.Name() == name {
			res = append(res, c)
		}
	}
	return res
}

func TestStorageString(t *testing.T) {
	pkg := analysistest.BuildSource(t, storageSource)
	g := analysistest.Global(t, pkg, "g")
	fields := analysistest.Func(t, pkg, "fields")
	addrs := instrsOf[*ssa.FieldAddr](fields)
	require.Len(t, addrs, 3)

	assert.Equal(t, "Global main.g", GlobalStorage{Global: g}.String())
	assert.Equal(t, "Argument index: 2", ArgumentStorage{Index: 2}.String())
	assert.Equal(t, "Unidentified", UnidentifiedStorage{}.String())
	assert.Equal(t, "Class t@fields.b", Classify(addrs[1]).String())
	assert.Equal(t, "Tail", Tail.String())
}

func TestIsDistinctFrom(t *testing.T) {
	pkg := analysistest.BuildSource(t, storageSource)
	g := GlobalStorage{Global: analysistest.Global(t, pkg, "g")}
	h := GlobalStorage{Global: analysistest.Global(t, pkg, "h")}
	slices := instrsOf[*ssa.MakeSlice](analysistest.Func(t, pkg, "alloc"))
	require.Len(t, slices, 2)
	s := BoxStorage{Object: slices[0]}
	r := BoxStorage{Object: slices[1]}
	addrs := instrsOf[*ssa.FieldAddr](analysistest.Func(t, pkg, "fields"))
	require.Len(t, addrs, 3)
	ta, tb, ua := Classify(addrs[0]), Classify(addrs[1]), Classify(addrs[2])
	unknown := UnidentifiedStorage{}

	cases := []struct {
		name     string
		a        AccessStorage
		b        AccessStorage
		distinct bool
	}{
		{"same global", g, g, false},
		{"two globals", g, h, true},
		{"two boxes", s, r, true},
		{"global and box", g, s, false},
		{"stack and box", StackStorage{Object: slices[0]}, r, true},
		{"stack and global", StackStorage{Object: slices[0]}, g, false},
		{"stack and field", StackStorage{Object: slices[0]}, ta, false},
		{"two fields of the same object", ta, tb, true},
		{"same field of two objects", ta, ua, false},
		{"same field", ta, ta, false},
		{"field and global", ta, g, false},
		{"unidentified", unknown, g, false},
		{"two unidentified", unknown, unknown, false},
		{"arguments", ArgumentStorage{Index: 0}, ArgumentStorage{Index: 1}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.distinct, IsDistinctFrom(c.a, c.b))
			assert.Equal(t, c.distinct, IsDistinctFrom(c.b, c.a), "distinctness is symmetric")
		})
	}
}

func TestStorageProperties(t *testing.T) {
	pkg := analysistest.BuildSource(t, storageSource)
	g := GlobalStorage{Global: analysistest.Global(t, pkg, "g")}
	box := BoxStorage{Object: instrsOf[*ssa.MakeSlice](analysistest.Func(t, pkg, "alloc"))[0]}

	assert.True(t, IsLocal(box))
	assert.False(t, IsLocal(g))
	assert.True(t, IsUniquelyIdentified(g))
	assert.True(t, IsUniquelyIdentified(box))
	assert.False(t, IsUniquelyIdentified(ArgumentStorage{}))
	assert.False(t, IsUniquelyIdentified(UnidentifiedStorage{}))

	obj, ok := Object(box)
	assert.True(t, ok)
	assert.Equal(t, box.Object, obj)
	_, ok = Object(g)
	assert.False(t, ok)

	assert.Panics(t, func() { withObject(g, box.Object) })
}
