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

	"github.com/ikhvorost/promiseq/queue"
)

// stageConfig holds the per-stage settings collected from Options.
type stageConfig struct {
	queue   queue.Queue
	timeout time.Duration
	retry   uint
}

// Option customizes a single stage of a chain: the pool it runs on, its
// timeout, and its retry count.
type Option func(*stageConfig)

// On makes the stage body run on q. The default is queue.Background().
func On(q queue.Queue) Option {
	return func(cfg *stageConfig) {
		if q != nil {
			cfg.queue = q
		}
	}
}

// WithTimeout rejects the stage with ErrTimeout if it hasn't settled
// after d. The timer starts when the stage is driven, before its
// predecessors run, so d also covers the time they take. The body
// itself is not interrupted; the timeout only guarantees that the chain
// progresses.
func WithTimeout(d time.Duration) Option {
	return func(cfg *stageConfig) {
		cfg.timeout = d
	}
}

// WithRetry reattempts a failing stage body up to attempts extra times,
// so the body runs at most attempts+1 times. The last error is
// forwarded on exhaustion. Cancellation breaks the loop.
func WithRetry(attempts uint) Option {
	return func(cfg *stageConfig) {
		cfg.retry = attempts
	}
}

func makeConfig(opts []Option) *stageConfig {
	cfg := &stageConfig{queue: queue.Background()}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// submit runs work on q. If the calling goroutine already belongs to q,
// the work runs synchronously instead of being re-enqueued.
func submit(q queue.Queue, work func()) {
	if cur, ok := queue.Current(); ok && cur == q.Label() {
		work()
		return
	}
	q.Submit(work)
}
