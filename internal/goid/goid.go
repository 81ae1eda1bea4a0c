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

// Package goid exposes the runtime id of the calling goroutine.
//
// The id is parsed from the first line of the goroutine's stack trace,
// which has the form "goroutine 123 [running]:".
// The runtime gives no stability guarantees about this format, but it
// hasn't changed since Go 1.0, and the id is only ever used as a map key,
// never interpreted.
package goid

import "runtime"

const header = len("goroutine ")

// ID returns the runtime id of the calling goroutine.
func ID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for _, c := range buf[header:n] {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}
