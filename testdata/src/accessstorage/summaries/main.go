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

package main

import (
	"os"
	"sync/atomic"
)

var (
	counter int32
	total   int
	name    string
	table   = map[string]int{}
)

type Setter interface {
	SetG(v int)
}

type impl struct{ last int }

func (i *impl) SetG(v int) {
	i.last = v
	total = v
}

// @Modifies(total)
func writeTotal(v int) {
	total = v
}

// @Reads(total, name)
func readBoth() int {
	return total + len(name)
}

// @Modifies(total) @Reads(name)
func writeAndRead() {
	writeTotal(len(name))
}

// @Modifies(total)
func recursive(n int) {
	if n > 0 {
		total = n
		recursive(n - 1)
	}
}

// @Modifies(total) @Unidentified(modify)
func incr() {
	total++
	atomic.AddInt32(&counter, 1)
}

// @Modifies(total)
func viaInterface(s Setter) {
	s.SetG(1)
}

// @Reads(table)
func updateTable(k string) {
	table[k] = len(k)
}

// @Modifies(total)
//
//accessstorage:benign
func logTotal() {
	total = 0
}

// @Reads(name)
func callsBenign() int {
	logTotal()
	return len(name)
}

// @Worst
func unknown() int {
	return os.Getpid()
}

func main() {
	writeAndRead()
	recursive(3)
	incr()
	viaInterface(&impl{})
	updateTable("a")
	callsBenign()
	println(readBoth(), unknown())
}
