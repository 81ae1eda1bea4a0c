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

import "fmt"

// Result is the settlement of a promise stage: either a value or an
// error, never both.
type Result[T any] interface {
	// Val returns the settled value, or the zero value if the result
	// is an error.
	Val() T

	// Err returns the settlement error, or nil if the result is a value.
	Err() error
}

// Val returns a fulfilled Result carrying val.
func Val[T any](val T) Result[T] {
	return valResult[T]{val: val}
}

// Err returns a rejected Result carrying err.
// If err is nil, the returned Result is fulfilled with the zero value.
func Err[T any](err error) Result[T] {
	return errResult[T]{err: err}
}

type valResult[T any] struct {
	val T
}

func (r valResult[T]) Val() T     { return r.val }
func (r valResult[T]) Err() error { return nil }
func (r valResult[T]) String() string {
	return fmt.Sprintf("fulfilled: %v", r.val)
}

type errResult[T any] struct {
	err error
}

func (r errResult[T]) Val() (v T) { return v }
func (r errResult[T]) Err() error { return r.err }
func (r errResult[T]) String() string {
	return fmt.Sprintf("rejected: %v", r.err)
}
