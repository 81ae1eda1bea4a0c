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
	"time"
)

// resolveAfter returns a promise fulfilled with v after at least d.
func resolveAfter[T any](v T, d time.Duration) *Promise[T] {
	return NewAsync(func(resolve func(T), _ func(error)) {
		time.AfterFunc(d, func() {
			resolve(v)
		})
	})
}

// rejectAfter returns a promise rejected with err after at least d.
func rejectAfter[T any](err error, d time.Duration) *Promise[T] {
	return NewAsync(func(_ func(T), reject func(error)) {
		time.AfterFunc(d, func() {
			reject(err)
		})
	})
}

// testTask is a Cancelable that records the signals it received.
type testTask struct {
	suspended chan struct{}
	resumed   chan struct{}
	canceled  chan struct{}
}

func newTestTask() *testTask {
	return &testTask{
		suspended: make(chan struct{}, 8),
		resumed:   make(chan struct{}, 8),
		canceled:  make(chan struct{}, 8),
	}
}

func (t *testTask) Suspend() { t.suspended <- struct{}{} }
func (t *testTask) Resume()  { t.resumed <- struct{}{} }
func (t *testTask) Cancel()  { t.canceled <- struct{}{} }

func received(c chan struct{}) bool {
	select {
	case <-c:
		return true
	case <-time.After(time.Second):
		return false
	}
}
