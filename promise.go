// Copyright 2026 Yurii Khvorost
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package promiseq

import (
	"errors"
	"time"

	"github.com/ikhvorost/promiseq/queue"
)

// autorunDelay is how long a freshly constructed promise waits for a
// chain operator to attach before driving itself. Chaining or awaiting
// cancels the autorun, so a consumed promise runs exactly once, while a
// discarded one still runs its body.
var autorunDelay = 10 * time.Millisecond

// Promise is one stage of a chain of pool-scheduled asynchronous
// computations, and the handle to the chain's lifecycle.
//
// A Promise is driven exactly once: by the chain operator or Await call
// that consumes it, or by its autorun if it's discarded. Consuming the
// same Promise twice runs its body twice; don't.
//
// All stages produced from one constructor share a single monitor, so
// Suspend, Resume and Cancel on any handle control the whole chain.
type Promise[T any] struct {
	// driver arranges the work that eventually settles this stage, and
	// delivers the settlement to the given callback exactly once.
	driver func(cb func(Result[T]))

	// autorun is the delayed self-drive dispatch, canceled by whichever
	// operator consumes this promise first.
	autorun *queue.Timer

	// mon is the chain's shared lifecycle controller.
	mon *monitor
}

// New returns a promise that runs body on the stage's pool. A non-nil
// error rejects the promise; otherwise it fulfills with the returned
// value.
func New[T any](body func() (T, error), opts ...Option) *Promise[T] {
	if body == nil {
		panic(nilCallbackPanicMsg)
	}
	return newStagePromise[T](makeConfig(opts), throwingBody[T](body))
}

// NewAsync returns a promise settled by whichever of resolve or reject
// the body invokes first; later calls are dropped.
func NewAsync[T any](body func(resolve func(T), reject func(error)), opts ...Option) *Promise[T] {
	if body == nil {
		panic(nilCallbackPanicMsg)
	}
	return newStagePromise[T](makeConfig(opts), asyncBody[T](body))
}

// NewTask is NewAsync for bodies that wrap a cancelable asynchronous
// operation: the body may hand its task to the slot, and the chain
// forwards Suspend, Resume and Cancel to it until another task replaces
// it or the chain is canceled; settling the stage does not remove it.
func NewTask[T any](body func(resolve func(T), reject func(error), slot *TaskSlot), opts ...Option) *Promise[T] {
	if body == nil {
		panic(nilCallbackPanicMsg)
	}
	return newStagePromise[T](makeConfig(opts), taskBody[T](body))
}

// Resolved returns a promise already fulfilled with val.
func Resolved[T any](val T) *Promise[T] {
	mon := newMonitor()
	p := &Promise[T]{mon: mon}
	p.driver = func(cb func(Result[T])) {
		g := pending(mon, cb)
		g(Val(val))
	}
	p.arm()
	return p
}

// Rejected returns a promise already rejected with err.
func Rejected[T any](err error) *Promise[T] {
	mon := newMonitor()
	p := &Promise[T]{mon: mon}
	p.driver = func(cb func(Result[T])) {
		g := pending(mon, cb)
		g(Err[T](err))
	}
	p.arm()
	return p
}

func newStagePromise[T any](cfg *stageConfig, body stageBody[T]) *Promise[T] {
	mon := newMonitor()
	p := &Promise[T]{mon: mon}
	p.driver = func(cb func(Result[T])) {
		g := pending(mon, cb)
		armTimeout(cfg, g)
		submit(cfg.queue, func() {
			if !mon.wait() {
				g(Err[T](ErrCanceled))
				return
			}
			debugStage(mon, "run")
			execStage(mon, cfg, body, g)
		})
	}
	p.arm()
	return p
}

// arm schedules the autorun: if nothing consumes this promise within
// autorunDelay, it drives itself with a discard observer, logging an
// uncaught rejection if the chain ends in error.
func (p *Promise[T]) arm() {
	drv := p.driver
	mon := p.mon
	p.autorun = queue.Background().SubmitAfter(autorunDelay, func() {
		drv(func(res Result[T]) {
			if err := res.Err(); err != nil && !errors.Is(err, ErrCanceled) {
				logUncaught(mon, err)
			}
		})
	})
}

// unarm cancels the autorun; called by whichever operator consumes this
// promise.
func (p *Promise[T]) unarm() {
	if p.autorun != nil {
		p.autorun.Cancel()
	}
}

// Await drives the chain and blocks until it settles, returning the
// value or the error.
//
// Await must not be called from a body running on the pool it would
// block; with a serial pool that deadlocks. This is documented, not
// enforced.
func (p *Promise[T]) Await() (T, error) {
	p.unarm()
	resChan := make(chan Result[T], 1)
	p.driver(func(res Result[T]) {
		resChan <- res
	})
	res := <-resChan
	return res.Val(), res.Err()
}

// Done drives the chain and observes its settlement without creating a
// further chainable stage. A nil fn discards the result; the uncaught
// rejection log is skipped either way, as the settlement counts as
// observed.
func (p *Promise[T]) Done(fn func(Result[T])) {
	p.unarm()
	p.driver(func(res Result[T]) {
		if fn != nil {
			fn(res)
		}
	})
}

// Suspend pauses the chain before its next stage body. Stages already
// executing are not interrupted, but a wrapped Cancelable task is
// suspended. Idempotent.
func (p *Promise[T]) Suspend() {
	debugStage(p.mon, "suspend")
	p.mon.suspend()
}

// Resume releases a suspended chain. A Resume not paired with a prior
// Suspend is a no-op, and Resume after Cancel cannot revive the chain.
func (p *Promise[T]) Resume() {
	debugStage(p.mon, "resume")
	p.mon.resume()
}

// Cancel interrupts the chain: bodies of not-yet-started Then-family
// stages never run, the pending stage settles with ErrCanceled, and a
// wrapped Cancelable task is canceled. Downstream Catch and Finally
// handlers still run and observe ErrCanceled. A stage body already
// executing is not forcibly unwound. Idempotent.
func (p *Promise[T]) Cancel() {
	debugStage(p.mon, "cancel")
	p.mon.cancel()
}
