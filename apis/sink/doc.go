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

// Package sink defines the contracts for the external ingestion
// collaborator (EventHandler) in eventpipe.
//
// An EventHandler is a final consumer of merged Requests: an HTTPS
// ingestion endpoint, a local agent, a test recorder, etc. This package
// only describes the shape; concrete implementations live in runtime
// packages (runtime/httpdispatch, runtime/breaker).
package sink
