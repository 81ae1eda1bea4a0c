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

// Then returns a promise for fn applied to p's value. A failure of p
// bypasses fn and flows to the next Catch in the chain.
//
// Then and the other type-changing operators are package-level because
// a method cannot introduce the new value type.
func Then[T, U any](p *Promise[T], fn func(val T) (U, error), opts ...Option) *Promise[U] {
	if fn == nil {
		panic(nilCallbackPanicMsg)
	}
	return follow[T, U](p, makeConfig(opts), func(val T) stageBody[U] {
		return throwingBody[U](func() (U, error) {
			return fn(val)
		})
	})
}

// ThenPromise is Then for bodies that return a nested promise. The
// nested promise's autorun is canceled and its settlement is forwarded
// to the new stage.
//
// The nested promise keeps its own monitor: canceling the chain stops
// forward progression, but does not cancel nested work already in
// flight.
func ThenPromise[T, U any](p *Promise[T], fn func(val T) *Promise[U], opts ...Option) *Promise[U] {
	if fn == nil {
		panic(nilCallbackPanicMsg)
	}
	return follow[T, U](p, makeConfig(opts), func(val T) stageBody[U] {
		return asyncBody[U](func(resolve func(U), reject func(error)) {
			inner := fn(val)
			if inner == nil {
				panic(nilPromisePanicMsg)
			}
			inner.unarm()
			inner.driver(func(res Result[U]) {
				if err := res.Err(); err != nil {
					reject(err)
					return
				}
				resolve(res.Val())
			})
		})
	})
}

// ThenAsync is Then for producer bodies that settle through callbacks;
// whichever of resolve or reject is called first wins.
func ThenAsync[T, U any](p *Promise[T], fn func(val T, resolve func(U), reject func(error)), opts ...Option) *Promise[U] {
	if fn == nil {
		panic(nilCallbackPanicMsg)
	}
	return follow[T, U](p, makeConfig(opts), func(val T) stageBody[U] {
		return asyncBody[U](func(resolve func(U), reject func(error)) {
			fn(val, resolve, reject)
		})
	})
}

// ThenTask is ThenAsync for bodies that wrap a cancelable asynchronous
// operation; see NewTask.
func ThenTask[T, U any](p *Promise[T], fn func(val T, resolve func(U), reject func(error), slot *TaskSlot), opts ...Option) *Promise[U] {
	if fn == nil {
		panic(nilCallbackPanicMsg)
	}
	return follow[T, U](p, makeConfig(opts), func(val T) stageBody[U] {
		return taskBody[U](func(resolve func(U), reject func(error), slot *TaskSlot) {
			fn(val, resolve, reject, slot)
		})
	})
}

// Then is the same-type convenience form of the package-level Then.
func (p *Promise[T]) Then(fn func(val T) (T, error), opts ...Option) *Promise[T] {
	return Then[T, T](p, fn, opts...)
}

// ThenPromise is the same-type convenience form of the package-level
// ThenPromise.
func (p *Promise[T]) ThenPromise(fn func(val T) *Promise[T], opts ...Option) *Promise[T] {
	return ThenPromise[T, T](p, fn, opts...)
}

// ThenAsync is the same-type convenience form of the package-level
// ThenAsync.
func (p *Promise[T]) ThenAsync(fn func(val T, resolve func(T), reject func(error)), opts ...Option) *Promise[T] {
	return ThenAsync[T, T](p, fn, opts...)
}

// Catch returns a promise that handles a failure of p. The handler may
// consume the error by returning nil, fulfilling the new promise with
// the zero value, or return a new error that continues downstream.
// A fulfilled p bypasses the handler.
//
// Unlike the Then family, the handler also runs when the failure is the
// chain's own cancellation, so a Catch at the end of a chain observes
// ErrCanceled. The cancellation still dominates the handler's return.
func (p *Promise[T]) Catch(handler func(err error) error, opts ...Option) *Promise[T] {
	if handler == nil {
		panic(nilCallbackPanicMsg)
	}
	cfg := makeConfig(opts)
	p.unarm()
	mon := p.mon
	prev := p.driver

	next := &Promise[T]{mon: mon}
	next.driver = func(cb func(Result[T])) {
		g := pending(mon, cb)
		armTimeout(cfg, g)
		prev(func(res Result[T]) {
			prevErr := res.Err()
			if prevErr == nil {
				g(res)
				return
			}
			submit(cfg.queue, func() {
				mon.pauseWait()
				debugStage(mon, "catch")
				execStage(mon, cfg, throwingBody[T](func() (v T, err error) {
					return v, handler(prevErr)
				}), g)
			})
		})
	}
	next.arm()
	return next
}

// Finally runs handler once p settles, success or failure, and forwards
// the settlement unchanged. The handler runs even on a canceled chain;
// a panic inside it is logged and the original result still flows.
func (p *Promise[T]) Finally(handler func(), opts ...Option) *Promise[T] {
	if handler == nil {
		panic(nilCallbackPanicMsg)
	}
	cfg := makeConfig(opts)
	p.unarm()
	mon := p.mon
	prev := p.driver

	next := &Promise[T]{mon: mon}
	next.driver = func(cb func(Result[T])) {
		g := pending(mon, cb)
		prev(func(res Result[T]) {
			submit(cfg.queue, func() {
				mon.pauseWait()
				debugStage(mon, "finally")
				func() {
					defer func() {
						if v := recover(); v != nil {
							logUncaught(mon, PanicError{V: v})
						}
					}()
					handler()
				}()
				g(res)
			})
		})
	}
	next.arm()
	return next
}

// follow builds the successor stage for the Then family: it cancels the
// predecessor's autorun, shares its monitor, and composes its driver
// with the new stage body.
func follow[T, U any](p *Promise[T], cfg *stageConfig, bind func(val T) stageBody[U]) *Promise[U] {
	p.unarm()
	mon := p.mon
	prev := p.driver

	next := &Promise[U]{mon: mon}
	next.driver = func(cb func(Result[U])) {
		g := pending(mon, cb)
		armTimeout(cfg, g)
		prev(func(res Result[T]) {
			if err := res.Err(); err != nil {
				// an upstream failure bypasses the body
				g(Err[U](err))
				return
			}
			submit(cfg.queue, func() {
				if !mon.wait() {
					g(Err[U](ErrCanceled))
					return
				}
				debugStage(mon, "then")
				execStage(mon, cfg, bind(res.Val()), g)
			})
		})
	}
	next.arm()
	return next
}
