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

package bytecode

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/nullptr-eng/bitblt/analyzer"
	"github.com/nullptr-eng/bitblt/backend"
	"github.com/nullptr-eng/bitblt/bberr"
	"github.com/nullptr-eng/bitblt/specialize"
)

func init() {
	backend.Register("binary", func() (backend.Backend, error) { return New(), nil })
	backend.Register("aligned-binary", func() (backend.Backend, error) { return NewAligned(), nil })
}

// Binary is the binary back-end (C2/C3 combined behind the Backend
// contract): it assembles a bytecode module per call shape,
// instantiates it through the embedded runtime, and executes BitBLT
// by staging the caller's buffers into the module's linear memory.
type Binary struct {
	aligned bool
	cache   *specialize.Cache

	internMu sync.Mutex
	intern   map[[32]byte]*instance
}

// New constructs the plain binary back-end (unshared memory import).
func New() *Binary { return &Binary{cache: specialize.NewCache(), intern: map[[32]byte]*instance{}} }

// NewAligned constructs the aligned-binary back-end. A zero-copy
// staging path would need a shared memory import backed directly by
// the caller's buffer (spec §9's "Binary memory staging" design note);
// the runtime this module embeds (wazero's host module builder) does
// not expose a shared/atomic memory object, so Generate and Compile
// always report bberr.ErrUnsupported and the dispatcher falls back to
// the plain binary back-end, exactly as spec §7 describes for
// Unsupported.
func NewAligned() *Binary {
	return &Binary{aligned: true, cache: specialize.NewCache(), intern: map[[32]byte]*instance{}}
}

func (b *Binary) Name() string {
	if b.aligned {
		return "aligned-binary"
	}
	return "binary"
}

func (b *Binary) Fingerprint(p specialize.Params) string {
	return specialize.Fingerprint(b.Name(), p)
}

func (b *Binary) Analyze(p specialize.Params) analyzer.Output {
	return analyzer.Analyze(p.Dims())
}

func (b *Binary) IsAsync() bool { return true }

func (b *Binary) ClearCache() {
	b.cache.Clear()
	b.internMu.Lock()
	b.intern = map[[32]byte]*instance{}
	b.internMu.Unlock()
}

// Generate assembles the module bytes for p without caching or
// instantiating it.
func (b *Binary) Generate(p specialize.Params) ([]byte, error) {
	if b.aligned {
		return nil, fmt.Errorf("%w: aligned-binary requires a shared-memory-capable runtime", bberr.ErrUnsupported)
	}

	useAligned := p.AlignOpt && analyzer.Analyze(p.Dims()).Has(analyzer.FlagWordAligned)
	var body []byte
	if useAligned {
		body = GenerateAlignedBody()
	} else {
		body = GenerateBody()
	}
	return AssembleModule(body, false), nil
}

// Compile returns the cached *instance for p, instantiating it
// through the embedded bytecode runtime on a miss.
func (b *Binary) Compile(p specialize.Params) (any, error) {
	if b.aligned {
		return nil, fmt.Errorf("%w: aligned-binary requires a shared-memory-capable runtime", bberr.ErrUnsupported)
	}

	fp := b.Fingerprint(p)
	artifact, _, err := b.cache.Compile(fp, func() (any, error) {
		wasmBytes, err := b.Generate(p)
		if err != nil {
			return nil, err
		}

		// Artifact interning (SPEC_FULL.md's ion/blockfmt-grounded
		// extension): two fingerprints whose generated module bytes are
		// identical (e.g. differing only in a frozen dimension the body
		// never references) share one instantiated module instead of
		// paying to instantiate twice. This never weakens Property 4:
		// each fingerprint still compiles at most once, under its own
		// cache latch; interning only decides what that one compile
		// produces.
		contentHash := blake2b.Sum256(wasmBytes)
		b.internMu.Lock()
		if in, ok := b.intern[contentHash]; ok {
			b.internMu.Unlock()
			return in, nil
		}
		b.internMu.Unlock()

		in, err := instantiate(context.Background(), wasmBytes)
		if err != nil {
			return nil, err
		}
		b.internMu.Lock()
		b.intern[contentHash] = in
		b.internMu.Unlock()
		return in, nil
	})
	if err != nil {
		return nil, err
	}
	return artifact, nil
}

// Execute stages call's buffers into the artifact's linear memory,
// invokes the exported entry, and reads the destination range back,
// per the binary memory-transfer protocol in spec §4.8 step 6: source
// at word offset 0, destination at word offset len(call.Src).
func (b *Binary) Execute(ctx context.Context, artifact any, call backend.Call) error {
	in, ok := artifact.(*instance)
	if !ok || in == nil {
		return fmt.Errorf("%w: not a binary artifact", bberr.ErrInstantiationFailure)
	}

	srcWords := len(call.Src)
	dstWords := len(call.Dst)
	if err := in.ensureCapacity(srcWords + dstWords); err != nil {
		return err
	}
	if err := in.writeWords(0, call.Src); err != nil {
		return err
	}
	if err := in.writeWords(srcWords, call.Dst); err != nil {
		return err
	}

	srcPtrBytes := uint32(0)
	dstPtrBytes := uint32(srcWords * 4)

	args := [11]uint32{
		srcPtrBytes, uint32(call.SrcW), uint32(call.SrcH), uint32(call.SrcX), uint32(call.SrcY),
		dstPtrBytes, uint32(call.DstW), uint32(call.DstX), uint32(call.DstY),
		uint32(call.Width), uint32(call.Height),
	}
	if err := in.call(ctx, args); err != nil {
		return fmt.Errorf("bitblt: bytecode execution failed: %w", err)
	}

	dstOut, err := in.readWords(srcWords, dstWords)
	if err != nil {
		return err
	}
	copy(call.Dst, dstOut)
	return nil
}
