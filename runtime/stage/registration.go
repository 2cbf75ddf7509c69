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

import astage "flagforge.dev/eventpipe/apis/stage"

// NamedTransform pairs a TransformFunc with a Registration so a Transform
// stage can be assembled from a declarative, independently-toggleable list
// instead of a bare function slice.
type NamedTransform[T any] struct {
	astage.Registration
	Fn TransformFunc[T]
}

// NamedIntercept pairs an InterceptFunc with a Registration, same purpose as
// NamedTransform but for the Intercept stage.
type NamedIntercept struct {
	astage.Registration
	Fn InterceptFunc
}

// EnabledTransforms extracts the TransformFuncs of every entry with
// Enabled set, preserving order, ready to pass to NewTransform.
func EnabledTransforms[T any](entries []NamedTransform[T]) []TransformFunc[T] {
	out := make([]TransformFunc[T], 0, len(entries))
	for _, e := range entries {
		if e.Enabled {
			out = append(out, e.Fn)
		}
	}
	return out
}

// EnabledIntercepts extracts the InterceptFuncs of every entry with
// Enabled set, preserving order, ready to pass to NewIntercept.
func EnabledIntercepts(entries []NamedIntercept) []InterceptFunc {
	out := make([]InterceptFunc, 0, len(entries))
	for _, e := range entries {
		if e.Enabled {
			out = append(out, e.Fn)
		}
	}
	return out
}
