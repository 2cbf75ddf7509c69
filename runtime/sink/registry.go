/*
   Copyright 2026 The Flagforge Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package sink is the process-wide registry of EventHandler builders,
// keyed by kind (e.g. "https", "noop"). cmd/eventctl uses it to turn a Specification into a live EventHandler without hard-coding
// which concrete package constructed it.
package sink

import (
	"context"
	"fmt"
	"strings"
	"sync"

	asink "flagforge.dev/eventpipe/apis/sink"
)

var (
	mu       sync.RWMutex
	builders = map[string]asink.Builder{}
	sealed   bool
)

// Register adds b to the registry under its own Kind(). It panics on a
// duplicate kind or a registration after Seal: registration mistakes are
// programmer errors that should fail fast at startup, not surface as
// runtime errors.
func Register(b asink.Builder) {
	mu.Lock()
	defer mu.Unlock()
	if sealed {
		panic(fmt.Sprintf("sink: Register(%q) after Seal", b.Kind()))
	}
	kind := strings.ToLower(b.Kind())
	if _, exists := builders[kind]; exists {
		panic(fmt.Sprintf("sink: duplicate builder kind %q", kind))
	}
	builders[kind] = b
}

// Build constructs an EventHandler using the builder registered for kind.
func Build(ctx context.Context, kind, name string, spec *asink.Specification) (asink.EventHandler, error) {
	mu.RLock()
	b, ok := builders[strings.ToLower(kind)]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("sink: no builder registered for kind %q", kind)
	}
	return b.Build(ctx, name, spec)
}

// Seal prevents further registrations. Call it once all init()-time
// registrations have run, typically from cmd/eventctl's run command.
func Seal() {
	mu.Lock()
	sealed = true
	mu.Unlock()
}
