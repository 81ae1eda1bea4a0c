package fetch

import (
	"context"
	"sync"

	"github.com/ikhvorost/promiseq"
)

// httpTask is the Cancelable installed into the chain while a round
// trip is in flight. Cancel aborts the request context; Suspend and
// Resume gate the body-transfer loop between chunks.
type httpTask struct {
	cancel context.CancelFunc

	mu       sync.Mutex
	gate     chan struct{}
	canceled bool
}

func newHTTPTask(cancel context.CancelFunc) *httpTask {
	return &httpTask{cancel: cancel}
}

func (t *httpTask) Suspend() {
	t.mu.Lock()
	if !t.canceled && t.gate == nil {
		t.gate = make(chan struct{})
	}
	t.mu.Unlock()
}

func (t *httpTask) Resume() {
	t.mu.Lock()
	gate := t.gate
	t.gate = nil
	t.mu.Unlock()

	if gate != nil {
		close(gate)
	}
}

func (t *httpTask) Cancel() {
	t.mu.Lock()
	if t.canceled {
		t.mu.Unlock()
		return
	}
	t.canceled = true
	gate := t.gate
	t.gate = nil
	t.mu.Unlock()

	if gate != nil {
		close(gate)
	}
	t.cancel()
}

// pause blocks while the task is suspended, and reports cancellation.
func (t *httpTask) pause() error {
	t.mu.Lock()
	if t.canceled {
		t.mu.Unlock()
		return promiseq.ErrCanceled
	}
	gate := t.gate
	t.mu.Unlock()

	if gate != nil {
		<-gate
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.canceled {
		return promiseq.ErrCanceled
	}
	return nil
}
