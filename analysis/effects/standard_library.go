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

package effects

var (
	none = Effects{}
	rd   = Effects{Read: true}
	wr   = Effects{Write: true}
	rw   = Effects{Read: true, Write: true}
)

func params(effects ...Effects) FunctionSideEffects {
	return FunctionSideEffects{Params: effects}
}

func global(g Effects, effects ...Effects) FunctionSideEffects {
	return FunctionSideEffects{Global: g, Params: effects}
}

// purePackages are packages whose functions only access memory through their reference-typed parameters
var purePackages = map[string]bool{
	"math":       true,
	"math/bits":  true,
	"math/cmplx": true,
}

// stdEffects maps the standard library functions that have no Go body, or whose body is not worth analyzing, to
// their side effects. Functions are identified by the string of their ssa.Function.
var stdEffects = map[string]FunctionSideEffects{
	// sync/atomic
	"sync/atomic.AddInt32":               params(rw, none),
	"sync/atomic.AddInt64":               params(rw, none),
	"sync/atomic.AddUint32":              params(rw, none),
	"sync/atomic.AddUint64":              params(rw, none),
	"sync/atomic.AddUintptr":             params(rw, none),
	"sync/atomic.CompareAndSwapInt32":    params(rw, none, none),
	"sync/atomic.CompareAndSwapInt64":    params(rw, none, none),
	"sync/atomic.CompareAndSwapUint32":   params(rw, none, none),
	"sync/atomic.CompareAndSwapUint64":   params(rw, none, none),
	"sync/atomic.CompareAndSwapUintptr":  params(rw, none, none),
	"sync/atomic.CompareAndSwapPointer":  params(rw, none, none),
	"sync/atomic.LoadInt32":              params(rd),
	"sync/atomic.LoadInt64":              params(rd),
	"sync/atomic.LoadUint32":             params(rd),
	"sync/atomic.LoadUint64":             params(rd),
	"sync/atomic.LoadUintptr":            params(rd),
	"sync/atomic.LoadPointer":            params(rd),
	"sync/atomic.StoreInt32":             params(wr, none),
	"sync/atomic.StoreInt64":             params(wr, none),
	"sync/atomic.StoreUint32":            params(wr, none),
	"sync/atomic.StoreUint64":            params(wr, none),
	"sync/atomic.StoreUintptr":           params(wr, none),
	"sync/atomic.StorePointer":           params(wr, none),
	"sync/atomic.SwapInt32":              params(rw, none),
	"sync/atomic.SwapInt64":              params(rw, none),
	"sync/atomic.SwapUint32":             params(rw, none),
	"sync/atomic.SwapUint64":             params(rw, none),
	"sync/atomic.SwapUintptr":            params(rw, none),
	"sync/atomic.SwapPointer":            params(rw, none),
	"sync/atomic.runtime_procPin":        global(rw),
	"sync/atomic.runtime_procUnpin":      global(rw),
	"sync/atomic.runtime_LoadAcquintptr": params(rd),

	// sync
	"sync.runtime_Semacquire":          params(rw),
	"sync.runtime_SemacquireMutex":     params(rw, none, none),
	"sync.runtime_SemacquireRWMutex":   params(rw, none, none),
	"sync.runtime_SemacquireRWMutexR":  params(rw, none, none),
	"sync.runtime_Semrelease":          params(rw, none, none),
	"sync.runtime_canSpin":             params(none),
	"sync.runtime_doSpin":              params(),
	"sync.runtime_nanotime":            params(),
	"sync.runtime_notifyListAdd":       params(rw),
	"sync.runtime_notifyListWait":      params(rw, none),
	"sync.runtime_notifyListNotifyAll": params(rw),
	"sync.runtime_notifyListNotifyOne": params(rw),
	"sync.runtime_notifyListCheck":     params(none),
	"sync.runtime_registerPoolCleanup": global(wr, none),
	"sync.runtime_procPin":             global(rw),
	"sync.runtime_procUnpin":           global(rw),
	"sync.fatal":                       params(none),
	"sync.throw":                       params(none),
	"sync.runtime_LoadAcquintptr":      params(rd),
	"sync.runtime_StoreReluintptr":     params(wr, none),
	"sync.poolCleanup":                 global(rw),
	"sync.indexLocal":                  params(none, none),

	// internal/bytealg
	"internal/bytealg.Compare":                  params(rd, rd),
	"internal/bytealg.Count":                    params(rd, none),
	"internal/bytealg.CountString":              params(none, none),
	"internal/bytealg.Equal":                    params(rd, rd),
	"internal/bytealg.Index":                    params(rd, rd),
	"internal/bytealg.IndexString":              params(none, none),
	"internal/bytealg.IndexByte":                params(rd, none),
	"internal/bytealg.IndexByteString":          params(none, none),
	"internal/bytealg.MakeNoZero":               params(none),
	"internal/bytealg.abigen_runtime_cmpstring": params(none, none),
	"internal/bytealg.abigen_runtime_memequal":  params(rd, rd, none),

	// runtime
	"runtime.memmove":              params(wr, rd, none),
	"runtime.memclrNoHeapPointers": params(wr, none),
	"runtime.memequal":             params(rd, rd, none),
	"runtime.getcallerpc":          params(),
	"runtime.getcallersp":          params(),
	"runtime.nanotime":             params(),
	"runtime.nanotime1":            params(),
	"runtime.walltime":             params(),
	"runtime.cputicks":             params(),
	"runtime.fastrand":             global(rw),
	"runtime.procyield":            params(none),
	"runtime.osyield":              params(),
	"runtime.KeepAlive":            params(none),
	"runtime.GC":                   global(rw),
	"runtime.Gosched":              global(rw),
	"runtime.GOMAXPROCS":           global(rw, none),
	"runtime.NumGoroutine":         global(rd),
	"runtime.Caller":               global(rd, none),
	"runtime.Callers":              global(rd, none, wr),

	// syscall
	"syscall.Syscall":            global(rw, none, none, none, none),
	"syscall.Syscall6":           global(rw, none, none, none, none, none, none, none),
	"syscall.RawSyscall":         global(rw, none, none, none, none),
	"syscall.RawSyscall6":        global(rw, none, none, none, none, none, none, none),
	"syscall.rawVforkSyscall":    global(rw, none, none),
	"syscall.runtime_envs":       global(rd),
	"syscall.runtime_BeforeFork": global(rw),
	"syscall.runtime_AfterFork":  global(rw),

	// os, time, reflect, internal/poll
	"os.runtime_args":                  global(rd),
	"os.runtime_beforeExit":            global(rw, none),
	"os.sigpipe":                       params(),
	"time.Sleep":                       params(none),
	"time.startTimer":                  params(rw),
	"time.stopTimer":                   params(rw),
	"time.resetTimer":                  params(rw, none),
	"time.modTimer":                    params(rw, none, none, none, none, none),
	"reflect.unsafe_New":               params(none),
	"reflect.unsafe_NewArray":          params(none, none),
	"reflect.typedmemmove":             params(none, wr, rd),
	"reflect.typedmemclr":              params(none, wr),
	"reflect.mapaccess":                params(none, rd, none),
	"reflect.mapassign":                params(none, rw, none, rd),
	"reflect.mapdelete":                params(none, rw, none),
	"reflect.maplen":                   params(rd),
	"reflect.chanlen":                  params(rd),
	"reflect.chancap":                  params(rd),
	"reflect.ifaceE2I":                 params(none, none, wr),
	"internal/poll.runtime_Semacquire": params(rw),
	"internal/poll.runtime_Semrelease": params(rw),
}
