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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorWait(t *testing.T) {
	t.Run("passes when idle", func(t *testing.T) {
		m := newMonitor()
		assert.True(t, m.wait())
	})

	t.Run("fails after cancel", func(t *testing.T) {
		m := newMonitor()
		m.cancel()
		assert.False(t, m.wait())
	})

	t.Run("blocks while suspended", func(t *testing.T) {
		m := newMonitor()
		m.suspend()

		woke := make(chan bool, 1)
		go func() { woke <- m.wait() }()

		select {
		case <-woke:
			t.Fatal("wait returned while suspended")
		case <-time.After(50 * time.Millisecond):
		}

		m.resume()
		select {
		case ok := <-woke:
			assert.True(t, ok)
		case <-time.After(time.Second):
			t.Fatal("wait never woke after resume")
		}
	})

	t.Run("cancel wakes a blocked wait", func(t *testing.T) {
		m := newMonitor()
		m.suspend()

		woke := make(chan bool, 1)
		go func() { woke <- m.wait() }()
		time.Sleep(20 * time.Millisecond)
		m.cancel()

		select {
		case ok := <-woke:
			assert.False(t, ok, "wait must report cancellation on wake")
		case <-time.After(time.Second):
			t.Fatal("wait never woke after cancel")
		}
	})
}

func TestMonitorIdempotence(t *testing.T) {
	t.Run("double suspend, single resume", func(t *testing.T) {
		m := newMonitor()
		m.suspend()
		m.suspend()
		m.resume()
		assert.True(t, m.wait(), "one resume must release a doubly-suspended monitor")
	})

	t.Run("resume without suspend", func(t *testing.T) {
		m := newMonitor()
		m.resume()
		assert.True(t, m.wait())
	})

	t.Run("double cancel", func(t *testing.T) {
		m := newMonitor()
		m.cancel()
		m.cancel()
		assert.False(t, m.wait())
	})

	t.Run("resume after cancel keeps cancellation", func(t *testing.T) {
		m := newMonitor()
		m.suspend()
		m.cancel()
		m.resume()
		assert.False(t, m.wait())
	})
}

func TestMonitorOnCancel(t *testing.T) {
	t.Run("fires on cancel", func(t *testing.T) {
		m := newMonitor()
		fired := make(chan struct{}, 1)
		m.installOnCancel(func() { fired <- struct{}{} })
		m.cancel()
		assert.True(t, received(fired))
	})

	t.Run("install after cancel fires immediately", func(t *testing.T) {
		m := newMonitor()
		m.cancel()

		var fired int
		m.installOnCancel(func() { fired++ })
		assert.Equal(t, 1, fired)
	})

	t.Run("replacement keeps a single hook", func(t *testing.T) {
		m := newMonitor()
		var first, second int
		m.installOnCancel(func() { first++ })
		m.installOnCancel(func() { second++ })
		m.cancel()
		assert.Equal(t, 0, first)
		assert.Equal(t, 1, second)
	})
}

func TestMonitorInstallTask(t *testing.T) {
	t.Run("forwards suspend and resume", func(t *testing.T) {
		m := newMonitor()
		task := newTestTask()
		m.installTask(task)

		m.suspend()
		assert.True(t, received(task.suspended))
		m.resume()
		assert.True(t, received(task.resumed))
	})

	t.Run("install on a suspended monitor suspends the task", func(t *testing.T) {
		m := newMonitor()
		m.suspend()
		task := newTestTask()
		m.installTask(task)
		assert.True(t, received(task.suspended))
	})

	t.Run("install on a canceled monitor cancels the task", func(t *testing.T) {
		m := newMonitor()
		m.cancel()
		task := newTestTask()
		m.installTask(task)
		assert.True(t, received(task.canceled))
	})

	t.Run("cancel forwards to the task", func(t *testing.T) {
		m := newMonitor()
		task := newTestTask()
		m.installTask(task)
		m.cancel()
		assert.True(t, received(task.canceled))
	})
}

func TestPendingGuard(t *testing.T) {
	t.Run("latches exactly once", func(t *testing.T) {
		m := newMonitor()
		var calls int
		var last Result[int]
		g := pending(m, func(res Result[int]) {
			calls++
			last = res
		})

		g(Val(1))
		g(Val(2))
		g(Err[int](ErrTimeout))

		assert.Equal(t, 1, calls)
		require.NotNil(t, last)
		assert.Equal(t, 1, last.Val())
	})

	t.Run("cancel is the final competitor", func(t *testing.T) {
		m := newMonitor()
		var calls int
		var last Result[int]
		g := pending(m, func(res Result[int]) {
			calls++
			last = res
		})

		m.cancel()
		g(Val(1))

		assert.Equal(t, 1, calls)
		require.NotNil(t, last)
		assert.ErrorIs(t, last.Err(), ErrCanceled)
	})

	t.Run("guard on a canceled monitor latches at construction", func(t *testing.T) {
		m := newMonitor()
		m.cancel()

		var last Result[int]
		pending(m, func(res Result[int]) { last = res })

		require.NotNil(t, last)
		assert.ErrorIs(t, last.Err(), ErrCanceled)
	})
}

func TestMonitorDeinit(t *testing.T) {
	freed := make(chan struct{})

	func() {
		p := Resolved(1)
		p.mon.onDeinit(func() { close(freed) })
		_, err := p.Await()
		require.NoError(t, err)
	}()

	for i := 0; i < 100; i++ {
		runtime.GC()
		select {
		case <-freed:
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
	t.Fatal("the monitor was never released")
}
