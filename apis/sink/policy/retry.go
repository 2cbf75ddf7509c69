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

package policy

import "time"

// Retry holds the retry/backoff knobs for an unreliable EventHandler.
// runtime/breaker builds its circuit breaker from them; no component
// re-attempts a failed dispatch.
type Retry struct {
	// Enable turns on the runtime/breaker wrapper in cmd/eventctl.
	Enable bool

	// MaxRetries is the number of consecutive failures after which
	// runtime/breaker opens the circuit.
	MaxRetries int

	// Initial is the initial backoff delay. runtime/breaker does not use it.
	Initial time.Duration

	// Max is runtime/breaker's open-state cooldown.
	Max time.Duration

	// Multiplier is the backoff growth factor, e.g. 2.0 doubles each step.
	// runtime/breaker does not use it.
	Multiplier float64
}
