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

// Package promiseq provides chainable, pool-scheduled promises with
// lifecycle control.
//
// A promise chain is built from a constructor and a sequence of stage
// operators:
//
//	p := promiseq.New(func() (int, error) {
//		return fetchCount()
//	})
//	q := promiseq.Then(p, func(n int) (string, error) {
//		return fmt.Sprintf("%d items", n), nil
//	}).Catch(func(err error) error {
//		log.Print(err)
//		return nil
//	})
//	msg, err := q.Await()
//
// Each stage body runs on a worker pool from the queue package; the On
// option picks the pool, WithTimeout bounds the stage, and WithRetry
// reattempts a failing body. Bodies come in three shapes: synchronous
// (New, Then), callback-settled producers (NewAsync, ThenAsync), and
// producers that wrap a Cancelable task (NewTask, ThenTask).
//
// # Lifecycle
//
// Every stage of a chain shares one monitor, so Suspend, Resume and
// Cancel on any handle control the whole chain. Suspend pauses the
// chain before its next stage body without aborting work already in
// flight; Cancel settles the pending stage with ErrCanceled, stops
// not-yet-started Then-family stages, and cancels a wrapped task.
// Catch and Finally handlers still run on a canceled chain. Both are
// idempotent, and cancellation is permanent.
//
// # Autorun
//
// A promise that's neither chained nor awaited still runs its body: a
// short delay after construction, it drives itself and discards the
// result. Attaching a stage or calling Await cancels the autorun, so a
// consumed promise runs exactly once.
//
// # Combinators
//
// All, AllSettled, Race and Any combine promises into one parent whose
// Suspend, Resume and Cancel fan out to the members. See each function
// for its settlement rules.
package promiseq
