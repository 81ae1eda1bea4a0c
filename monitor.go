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
	"runtime"
	"sync"

	"github.com/google/uuid"
)

// monitor is the lifecycle controller shared by every stage of one
// promise chain. It holds the cancellation flag, the pause gate, the
// single on-cancel hook of the currently pending stage, and the
// Cancelable task of the stage that owns one.
//
// All fields are guarded by mu. The canceled flag transitions
// false->true exactly once and never back.
type monitor struct {
	mu sync.Mutex

	// id is the logging identity of the chain.
	id uuid.UUID

	canceled bool

	// gate is non-nil while the chain is suspended. Waiters block on
	// receiving from it; resume and cancel release them by closing it.
	gate chan struct{}

	// canceledChan is closed when the chain is canceled, so that
	// in-flight attempt latches can unblock.
	canceledChan chan struct{}

	// onCancel completes the pending stage's guard with ErrCanceled.
	// At most one hook is installed at a time; each stage replaces the
	// previous one, and the guard clears it once it latches.
	onCancel func()

	// task is the wrapped Cancelable of the current stage, if any.
	task Cancelable
}

func newMonitor() *monitor {
	return &monitor{
		id:           uuid.New(),
		canceledChan: make(chan struct{}),
	}
}

// suspend installs the pause gate if absent and forwards to the wrapped
// task. Idempotent; a no-op after cancel.
func (m *monitor) suspend() {
	m.mu.Lock()
	if !m.canceled && m.gate == nil {
		m.gate = make(chan struct{})
	}
	task := m.task
	m.mu.Unlock()

	if task != nil {
		task.Suspend()
	}
}

// resume releases the pause gate if present and forwards to the wrapped
// task. A resume not paired with a prior suspend is a no-op.
func (m *monitor) resume() {
	m.mu.Lock()
	gate := m.gate
	m.gate = nil
	task := m.task
	m.mu.Unlock()

	if gate != nil {
		close(gate)
	}
	if task != nil {
		task.Resume()
	}
}

// cancel sets the canceled flag, releases any waiter, fires the pending
// stage's on-cancel hook, and forwards to the wrapped task. Idempotent.
func (m *monitor) cancel() {
	m.mu.Lock()
	if m.canceled {
		m.mu.Unlock()
		return
	}
	m.canceled = true
	gate := m.gate
	m.gate = nil
	hook := m.onCancel
	m.onCancel = nil
	task := m.task
	m.task = nil
	m.mu.Unlock()

	close(m.canceledChan)
	if gate != nil {
		close(gate)
	}
	if task != nil {
		task.Cancel()
	}
	if hook != nil {
		hook()
	}
}

// wait blocks while the chain is suspended. It returns false if the
// chain was canceled, either on entry or while waiting.
// This is the only blocking point between stages.
func (m *monitor) wait() bool {
	m.mu.Lock()
	if m.canceled {
		m.mu.Unlock()
		return false
	}
	gate := m.gate
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	ok := !m.canceled
	m.mu.Unlock()
	return ok
}

// pauseWait blocks while the chain is suspended, ignoring cancellation.
// Used by stages that run even on a canceled chain.
func (m *monitor) pauseWait() {
	m.mu.Lock()
	gate := m.gate
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
}

// installOnCancel replaces the on-cancel hook. If the chain is already
// canceled the install loses the race and the hook fires synchronously,
// exactly once.
func (m *monitor) installOnCancel(hook func()) {
	m.mu.Lock()
	if m.canceled {
		m.mu.Unlock()
		hook()
		return
	}
	m.onCancel = hook
	m.mu.Unlock()
}

// installTask replaces the wrapped task. A task installed on a paused or
// canceled chain receives those signals immediately.
func (m *monitor) installTask(task Cancelable) {
	m.mu.Lock()
	if m.canceled {
		m.mu.Unlock()
		task.Cancel()
		return
	}
	m.task = task
	paused := m.gate != nil
	m.mu.Unlock()

	if paused {
		task.Suspend()
	}
}

// onDeinit arranges for fn to run when the monitor becomes unreachable.
// Only used by leak-detection tests.
func (m *monitor) onDeinit(fn func()) {
	runtime.SetFinalizer(m, func(*monitor) { fn() })
}

// pending wraps a completion callback into a single-shot guard: the
// first invocation latches and forwards, every later one is dropped.
// Construction arms the monitor's on-cancel hook, so cancellation is the
// final competitor in the settlement race.
func pending[T any](m *monitor, cb func(Result[T])) func(Result[T]) {
	var done bool // guarded by m.mu

	p := func(res Result[T]) {
		m.mu.Lock()
		if done {
			m.mu.Unlock()
			return
		}
		done = true
		m.onCancel = nil
		m.mu.Unlock()

		cb(res)
	}

	m.installOnCancel(func() {
		p(Err[T](ErrCanceled))
	})
	return p
}
