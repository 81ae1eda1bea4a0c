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

// Package queue provides the worker pools that promise stages are
// scheduled on.
//
// A Queue is a thin, label-identified facade over an alitto/pond worker
// pool. Two pools are always available: Main, a serial pool that runs
// work in submission order, and Background, a parallel pool sized to
// GOMAXPROCS. Additional pools can be registered with New.
//
// Every work item is wrapped so that, while it runs, the executing
// goroutine is attributed to its pool. Current reports that attribution,
// which callers use to run same-pool work synchronously instead of
// re-enqueueing it.
package queue

import (
	"runtime"
	"sync"
	"time"

	"github.com/alitto/pond"

	"github.com/ikhvorost/promiseq/internal/goid"
)

// Label identifies a worker pool.
type Label string

// Labels of the built-in pools.
const (
	MainLabel       Label = "main"
	BackgroundLabel Label = "background"
)

// defaultCapacity is the task backlog each pool accepts without blocking
// the submitter.
const defaultCapacity = 1024

// Queue is a unit-of-work scheduler. Submissions run exactly once each,
// never synchronously inside Submit itself.
type Queue interface {
	// Label returns the identity of this queue.
	Label() Label

	// Submit enqueues work for execution on this queue.
	// Submissions to a serial queue run in submission order.
	Submit(work func())

	// SubmitAfter arranges for work to be submitted to this queue after
	// at least d has elapsed. The returned Timer cancels the dispatch if
	// it hasn't fired yet.
	SubmitAfter(d time.Duration, work func()) *Timer
}

// Timer is a handle to a delayed dispatch created by SubmitAfter.
type Timer struct {
	t *time.Timer
}

// Cancel stops the delayed dispatch. It reports whether the dispatch was
// stopped before firing. Cancel after firing, or a second Cancel, is a
// no-op.
func (t *Timer) Cancel() bool {
	if t == nil || t.t == nil {
		return false
	}
	return t.t.Stop()
}

type workerQueue struct {
	label Label
	pool  *pond.WorkerPool
}

func (q *workerQueue) Label() Label { return q.label }

func (q *workerQueue) Submit(work func()) {
	q.pool.Submit(func() {
		enter(q.label)
		defer leave()
		work()
	})
}

func (q *workerQueue) SubmitAfter(d time.Duration, work func()) *Timer {
	return &Timer{t: time.AfterFunc(d, func() {
		q.Submit(work)
	})}
}

// current maps a running worker goroutine to the label of its pool.
var current sync.Map // map[uint64]Label

func enter(l Label) { current.Store(goid.ID(), l) }
func leave()        { current.Delete(goid.ID()) }

// Current returns the label of the pool the calling goroutine belongs
// to, if it is a pool worker executing submitted work.
func Current() (Label, bool) {
	v, ok := current.Load(goid.ID())
	if !ok {
		return "", false
	}
	return v.(Label), true
}

var (
	registry   sync.Map // map[Label]Queue
	mainOnce   sync.Once
	mainQueue  Queue
	bgOnce     sync.Once
	bgQueue    Queue
	registerMu sync.Mutex
)

// Main returns the serial pool. Work submitted to it runs one item at a
// time, in submission order.
func Main() Queue {
	mainOnce.Do(func() {
		mainQueue = newWorkerQueue(MainLabel, 1)
		registry.Store(MainLabel, mainQueue)
	})
	return mainQueue
}

// Background returns the parallel pool, sized to GOMAXPROCS.
func Background() Queue {
	bgOnce.Do(func() {
		bgQueue = newWorkerQueue(BackgroundLabel, runtime.GOMAXPROCS(0))
		registry.Store(BackgroundLabel, bgQueue)
	})
	return bgQueue
}

// New registers and returns a pool with the given label and worker
// count. If a pool with that label already exists it is returned
// unchanged; the built-in labels cannot be redefined.
func New(label Label, maxWorkers int) Queue {
	if label == MainLabel {
		return Main()
	}
	if label == BackgroundLabel {
		return Background()
	}

	registerMu.Lock()
	defer registerMu.Unlock()
	if q, ok := registry.Load(label); ok {
		return q.(Queue)
	}
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	q := newWorkerQueue(label, maxWorkers)
	registry.Store(label, q)
	return q
}

// Get returns the registered pool with the given label, if any.
func Get(label Label) (Queue, bool) {
	switch label {
	case MainLabel:
		return Main(), true
	case BackgroundLabel:
		return Background(), true
	}
	q, ok := registry.Load(label)
	if !ok {
		return nil, false
	}
	return q.(Queue), true
}

func newWorkerQueue(label Label, maxWorkers int) *workerQueue {
	return &workerQueue{
		label: label,
		pool:  pond.New(maxWorkers, defaultCapacity, pond.MinWorkers(maxWorkers)),
	}
}
