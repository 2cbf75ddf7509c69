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

// Package fanout delivers every Request to multiple named EventHandlers,
// e.g. a primary ingestion endpoint and a secondary audit mirror.
package fanout

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"flagforge.dev/eventpipe/apis/request"
	asink "flagforge.dev/eventpipe/apis/sink"
)

// Group fans a single Request out to every registered member. It
// implements asink.Group.
type Group struct {
	name string

	mu      sync.RWMutex
	order   []string
	members map[string]asink.EventHandler
}

var _ asink.Group = (*Group)(nil)

// New returns an empty Group identified by name.
func New(name string) *Group {
	return &Group{name: name, members: make(map[string]asink.EventHandler)}
}

// Name implements asink.Group.
func (g *Group) Name() string {
	return g.name
}

// Add implements asink.Group. It errors if name is already registered.
func (g *Group) Add(name string, h asink.EventHandler) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.members[name]; exists {
		return fmt.Errorf("fanout: member %q already registered in group %q", name, g.name)
	}
	g.members[name] = h
	g.order = append(g.order, name)
	return nil
}

// Remove implements asink.Group.
func (g *Group) Remove(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.members[name]; !exists {
		return fmt.Errorf("fanout: member %q not registered in group %q", name, g.name)
	}
	delete(g.members, name)
	for i, n := range g.order {
		if n == name {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return nil
}

// List implements asink.Group, returning member names sorted by name.
func (g *Group) List() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, len(g.order))
	copy(out, g.order)
	sort.Strings(out)
	return out
}

// Dispatch implements asink.EventHandler. It delivers r to every member
// sequentially and fails only if every member fails, matching the
// all-or-nothing semantics documented on asink.Group.
func (g *Group) Dispatch(ctx context.Context, r *request.Request) error {
	g.mu.RLock()
	order := make([]string, len(g.order))
	copy(order, g.order)
	members := make(map[string]asink.EventHandler, len(g.members))
	for k, v := range g.members {
		members[k] = v
	}
	g.mu.RUnlock()

	if len(order) == 0 {
		return fmt.Errorf("fanout: group %q has no members", g.name)
	}

	failures := 0
	var firstErr error
	for _, name := range order {
		if err := members[name].Dispatch(ctx, r); err != nil {
			failures++
			if firstErr == nil {
				firstErr = fmt.Errorf("fanout: member %q: %w", name, err)
			}
		}
	}
	if failures == len(order) {
		return firstErr
	}
	return nil
}
