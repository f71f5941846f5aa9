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

// Package textual is the textual back-end (C4): it emits a
// parameterized source form of the scan loop and materializes a
// callable from the same specialization plan.
package textual

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/nullptr-eng/bitblt/analyzer"
	"github.com/nullptr-eng/bitblt/backend"
	"github.com/nullptr-eng/bitblt/bberr"
	"github.com/nullptr-eng/bitblt/specialize"
)

func init() {
	backend.Register("textual", func() (backend.Backend, error) { return New(), nil })
}

// Textual is the textual back-end.
type Textual struct {
	cache *specialize.Cache

	internMu sync.Mutex
	intern   map[[32]byte]routine
}

// New constructs a Textual back-end with its own empty cache.
func New() *Textual { return &Textual{cache: specialize.NewCache(), intern: map[[32]byte]routine{}} }

func (t *Textual) Name() string { return "textual" }

func (t *Textual) Fingerprint(p specialize.Params) string {
	return specialize.Fingerprint(t.Name(), p)
}

func (t *Textual) Analyze(p specialize.Params) analyzer.Output {
	return analyzer.Analyze(p.Dims())
}

func (t *Textual) IsAsync() bool { return false }

func (t *Textual) ClearCache() {
	t.cache.Clear()
	t.internMu.Lock()
	t.intern = map[[32]byte]routine{}
	t.internMu.Unlock()
}

// Generate renders the specialized routine's source text for p.
func (t *Textual) Generate(p specialize.Params) ([]byte, error) {
	pl := buildPlan(p)
	src, err := renderSource(pl)
	if err != nil {
		return nil, err
	}
	if p.Debug {
		log.Printf("bitblt: textual generated source for %s:\n%s", t.Fingerprint(p), src)
	}
	return src, nil
}

// Compile renders and validates p's source, then materializes the
// callable closure built from the same plan, caching it by
// fingerprint (Property 4).
func (t *Textual) Compile(p specialize.Params) (any, error) {
	fp := t.Fingerprint(p)
	artifact, _, err := t.cache.Compile(fp, func() (any, error) {
		src, err := t.Generate(p)
		if err != nil {
			return nil, err
		}

		// Artifact interning, same rationale as the binary back-end's:
		// byte-identical generated source shares one closure across
		// fingerprints without weakening the one-compile-per-fingerprint
		// guarantee (which lives in the cache latch above, not here).
		// The closure uses p's frozen dimension values, which the source
		// text does not always spell out, so those values join the
		// source in the interning key.
		dimsKey := specialize.Fingerprint("", specialize.Params{
			SrcW: p.SrcW, DstW: p.DstW,
			SrcX: p.SrcX, SrcY: p.SrcY, DstX: p.DstX, DstY: p.DstY,
			Width: p.Width, Height: p.Height,
		})
		contentHash := blake2b.Sum256(append(append([]byte(nil), src...), dimsKey...))
		t.internMu.Lock()
		if r, ok := t.intern[contentHash]; ok {
			t.internMu.Unlock()
			return r, nil
		}
		t.internMu.Unlock()

		pl := buildPlan(p)
		r := buildRoutine(pl)
		t.internMu.Lock()
		t.intern[contentHash] = r
		t.internMu.Unlock()
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return artifact, nil
}

// Execute invokes a previously compiled routine against call.
func (t *Textual) Execute(ctx context.Context, artifact any, call backend.Call) error {
	r, ok := artifact.(routine)
	if !ok || r == nil {
		return fmt.Errorf("%w: not a textual artifact", bberr.ErrInstantiationFailure)
	}
	return run(ctx, r, call)
}
