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

// panic messages
const (
	nilCallbackPanicMsg = "promiseq: the provided callback is nil"
	nilPromisePanicMsg  = "promiseq: the callback returned a nil promise"
)

// stageBody is the uniform shape every stage body variant is adapted
// into before execution. A body settles its attempt by calling resolve
// or reject, whichever comes first; later calls are dropped upstream by
// the attempt latch or the pending guard.
type stageBody[T any] interface {
	run(resolve func(T), reject func(error), slot *TaskSlot)
}

// throwingBody adapts a synchronous body returning (value, error).
type throwingBody[T any] func() (T, error)

func (b throwingBody[T]) run(resolve func(T), reject func(error), _ *TaskSlot) {
	v, err := b()
	if err != nil {
		reject(err)
		return
	}
	resolve(v)
}

// asyncBody adapts a producer that settles through callbacks.
type asyncBody[T any] func(resolve func(T), reject func(error))

func (b asyncBody[T]) run(resolve func(T), reject func(error), _ *TaskSlot) {
	b(resolve, reject)
}

// taskBody adapts a producer that additionally hands a Cancelable into
// the chain's task slot.
type taskBody[T any] func(resolve func(T), reject func(error), slot *TaskSlot)

func (b taskBody[T]) run(resolve func(T), reject func(error), slot *TaskSlot) {
	b(resolve, reject, slot)
}
