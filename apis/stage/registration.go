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

package stage

// Registration identifies one named, independently toggle-able component
// within a Transform or Intercept stage's function list. Kind names the
// implementation ("redact", "sample", "rate_limit", ...); Name disambiguates
// multiple instances of the same Kind (e.g. two redactors with different
// field lists). A Registration with Enabled false is dropped at assembly
// time: toggling it back on requires rebuilding the stage, not a live flip.
type Registration struct {
	Kind    string
	Name    string
	Enabled bool
}
