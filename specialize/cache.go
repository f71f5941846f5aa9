// Copyright (C) 2024 BitBLT Engine Authors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package specialize

import "sync"

// entry is a compile-once latch for a single fingerprint: the first
// caller to observe a missing entry inserts the latch and runs the
// compile function; every other caller, on this goroutine or another,
// blocks on the same sync.Once and shares its result. This is the
// "double-checked insert / compile-once latch" the concurrency model
// calls for so that at most one compilation happens per fingerprint.
type entry struct {
	once     sync.Once
	artifact any
	err      error
}

// Cache maps fingerprint to compiled artifact for one back-end. It is
// insert-only in normal operation; Clear evicts everything.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*entry)}
}

// Compile returns the cached artifact for fingerprint, calling
// compile exactly once the first time fingerprint is seen (until
// Clear), and reports whether this call found an existing entry
// (hit) rather than running compile itself.
func (c *Cache) Compile(fingerprint string, compile func() (any, error)) (artifact any, hit bool, err error) {
	c.mu.Lock()
	e, ok := c.entries[fingerprint]
	if !ok {
		e = &entry{}
		c.entries[fingerprint] = e
	}
	c.mu.Unlock()

	ran := false
	e.once.Do(func() {
		ran = true
		e.artifact, e.err = compile()
	})

	if e.err != nil && ran {
		// Generation/instantiation failures are never cached: drop the
		// spent latch so the next call gets a fresh compile attempt
		// instead of being stuck replaying the same failure forever.
		c.mu.Lock()
		if c.entries[fingerprint] == e {
			delete(c.entries, fingerprint)
		}
		c.mu.Unlock()
	}

	return e.artifact, !ran, e.err
}

// Clear drops every cached entry. In-flight compiles started before
// Clear still complete and populate the (now orphaned) entry they
// hold a reference to; they are simply no longer reachable by lookup.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// Len reports the number of distinct fingerprints currently cached,
// for tests asserting Property 4 (one compile per fingerprint).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
