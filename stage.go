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

// stage.go: stage execution machinery shared by the constructors and
// the chain operators.

package promiseq

import (
	"errors"
	"sync"

	"github.com/cenkalti/backoff/v4"
)

// armTimeout races the stage guard against a delayed ErrTimeout
// dispatch. If the body settles first, the guard latches and the
// timer's eventual fire is dropped.
func armTimeout[T any](cfg *stageConfig, g func(Result[T])) {
	if cfg.timeout <= 0 {
		return
	}
	cfg.queue.SubmitAfter(cfg.timeout, func() {
		g(Err[T](ErrTimeout))
	})
}

// execStage runs a stage body against its guard, honoring the stage's
// retry count. The caller has already entered the stage's pool and
// passed the monitor's pause gate.
func execStage[T any](mon *monitor, cfg *stageConfig, body stageBody[T], g func(Result[T])) {
	// arm cancellation against this stage's guard. The previous stage's
	// guard cleared the hook when it latched.
	mon.installOnCancel(func() {
		g(Err[T](ErrCanceled))
	})

	if cfg.retry == 0 {
		// settle the guard directly. An asynchronous body keeps the
		// worker free; its callbacks fire whenever the work completes.
		runBody(body, func(v T) { g(Val(v)) }, func(err error) { g(Err[T](err)) }, &TaskSlot{m: mon})
		return
	}

	// retry loop: each attempt settles an internal latch, and only the
	// final outcome reaches the guard. Between attempts the loop yields
	// to the pause gate and breaks on cancellation.
	var last Result[T]
	bo := backoff.WithMaxRetries(&backoff.ZeroBackOff{}, uint64(cfg.retry))
	_ = backoff.Retry(func() error {
		if !mon.wait() {
			last = Err[T](ErrCanceled)
			return backoff.Permanent(ErrCanceled)
		}
		last = runAttempt(mon, body)
		if err := last.Err(); err != nil {
			if errors.Is(err, ErrCanceled) {
				return backoff.Permanent(err)
			}
			return err
		}
		return nil
	}, bo)
	g(last)
}

// runAttempt executes one body attempt with fresh settlement callbacks
// and blocks on its latch, so a failed asynchronous attempt can be
// distinguished from one that's still in flight. Cancellation unblocks
// the latch.
func runAttempt[T any](mon *monitor, body stageBody[T]) Result[T] {
	resChan := make(chan Result[T], 1)
	var once sync.Once

	resolve := func(v T) {
		once.Do(func() { resChan <- Val(v) })
	}
	reject := func(err error) {
		once.Do(func() { resChan <- Err[T](err) })
	}

	runBody(body, resolve, reject, &TaskSlot{m: mon})

	select {
	case res := <-resChan:
		return res
	case <-mon.canceledChan:
		return Err[T](ErrCanceled)
	}
}

// runBody invokes the body, converting a panic into a rejection so a
// worker goroutine never unwinds.
func runBody[T any](body stageBody[T], resolve func(T), reject func(error), slot *TaskSlot) {
	defer func() {
		if v := recover(); v != nil {
			reject(PanicError{V: v})
		}
	}()
	body.run(resolve, reject, slot)
}
