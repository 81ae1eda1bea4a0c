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

// group.go: the multi-promise combinators. Each builds a parent promise
// whose wrapped task fans Suspend, Resume and Cancel out to the member
// promises, so lifecycle control of the parent controls the members.

package promiseq

import "sync"

// All returns a promise for the values of all member promises, ordered
// by member index regardless of completion order. The first member
// failure rejects the parent immediately; other members keep running
// but their results are discarded. All with no members fulfills with an
// empty slice.
func All[T any](ps ...*Promise[T]) *Promise[[]T] {
	mon := newMonitor()
	mon.installTask(adoptMembers(ps))

	p := &Promise[[]T]{mon: mon}
	p.driver = func(cb func(Result[[]T])) {
		g := pending(mon, cb)
		if len(ps) == 0 {
			g(Val(make([]T, 0)))
			return
		}

		var (
			mu   sync.Mutex
			vals = make([]T, len(ps))
			left = len(ps)
		)
		for i, member := range ps {
			i, member := i, member
			member.driver(func(res Result[T]) {
				if err := res.Err(); err != nil {
					g(Err[[]T](err))
					return
				}
				mu.Lock()
				vals[i] = res.Val()
				left--
				done := left == 0
				mu.Unlock()
				if done {
					g(Val(vals))
				}
			})
		}
	}
	p.arm()
	return p
}

// AllSettled returns a promise for the outcomes of all member promises,
// ordered by member index. Member failures don't reject the parent;
// they appear as rejected Results in the outcome slice. AllSettled with
// no members fulfills with an empty slice.
func AllSettled[T any](ps ...*Promise[T]) *Promise[[]Result[T]] {
	mon := newMonitor()
	mon.installTask(adoptMembers(ps))

	p := &Promise[[]Result[T]]{mon: mon}
	p.driver = func(cb func(Result[[]Result[T]])) {
		g := pending(mon, cb)
		if len(ps) == 0 {
			g(Val(make([]Result[T], 0)))
			return
		}

		var (
			mu   sync.Mutex
			outs = make([]Result[T], len(ps))
			left = len(ps)
		)
		for i, member := range ps {
			i, member := i, member
			member.driver(func(res Result[T]) {
				mu.Lock()
				outs[i] = res
				left--
				done := left == 0
				mu.Unlock()
				if done {
					g(Val(outs))
				}
			})
		}
	}
	p.arm()
	return p
}

// Race returns a promise settled by the first member to settle, value
// or error. The other members keep running; their results are
// irrelevant. Race with no members rejects with ErrNoPromises.
func Race[T any](ps ...*Promise[T]) *Promise[T] {
	mon := newMonitor()
	mon.installTask(adoptMembers(ps))

	p := &Promise[T]{mon: mon}
	p.driver = func(cb func(Result[T])) {
		g := pending(mon, cb)
		if len(ps) == 0 {
			g(Err[T](ErrNoPromises))
			return
		}
		for _, member := range ps {
			member.driver(func(res Result[T]) {
				g(res)
			})
		}
	}
	p.arm()
	return p
}

// Any returns a promise fulfilled by the first member to fulfill. If
// every member fails, it rejects with an AggregateError holding the
// member errors ordered by member index. Any with no members rejects
// with ErrNoPromises.
func Any[T any](ps ...*Promise[T]) *Promise[T] {
	mon := newMonitor()
	mon.installTask(adoptMembers(ps))

	p := &Promise[T]{mon: mon}
	p.driver = func(cb func(Result[T])) {
		g := pending(mon, cb)
		if len(ps) == 0 {
			g(Err[T](ErrNoPromises))
			return
		}

		var (
			mu   sync.Mutex
			errs = make([]error, len(ps))
			left = len(ps)
		)
		for i, member := range ps {
			i, member := i, member
			member.driver(func(res Result[T]) {
				if res.Err() == nil {
					g(res)
					return
				}
				mu.Lock()
				errs[i] = res.Err()
				left--
				done := left == 0
				mu.Unlock()
				if done {
					g(Err[T](newAggregateError(errs)))
				}
			})
		}
	}
	p.arm()
	return p
}

// adoptMembers cancels each member's autorun (the parent drives them)
// and wraps the members into the parent's fan-out task.
func adoptMembers[T any](ps []*Promise[T]) *aggregateTask {
	members := make([]Cancelable, len(ps))
	for i, p := range ps {
		p.unarm()
		members[i] = p
	}
	return &aggregateTask{members: members}
}
