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

package funcutil

import (
	"fmt"
	"testing"
)

func TestMap(t *testing.T) {
	a := []int{1, 2, 3}
	b := Map(a, func(x int) string { return fmt.Sprint(x * 2) })
	if fmt.Sprint(b) != "[2 4 6]" {
		t.Errorf("unexpected map result %v", b)
	}
	MapInPlace(a, func(x int) int { return x + 1 })
	if fmt.Sprint(a) != "[2 3 4]" {
		t.Errorf("unexpected in-place map result %v", a)
	}
	if len(Map(nil, func(x int) int { return x })) != 0 {
		t.Errorf("map of nil should be empty")
	}
}

func TestExists(t *testing.T) {
	even := func(x int) bool { return x%2 == 0 }
	if !Exists([]int{1, 3, 4}, even) {
		t.Errorf("4 is even")
	}
	if Exists([]int{1, 3}, even) || Exists(nil, even) {
		t.Errorf("no even element")
	}
}

func TestOptional(t *testing.T) {
	s := Some(3)
	if !s.IsSome() || s.IsNone() || s.Value() != 3 || s.ValueOr(4) != 3 {
		t.Errorf("unexpected some value %v", s)
	}
	n := None[int]()
	if n.IsSome() || !n.IsNone() || n.ValueOr(4) != 4 {
		t.Errorf("unexpected none value %v", n)
	}
	defer func() {
		if recover() == nil {
			t.Errorf("Value of none should panic")
		}
	}()
	n.Value()
}
