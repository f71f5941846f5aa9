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

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/nullptr-eng/bitblt/bberr"
)

// pageSize is the bytecode runtime's linear-memory page size, per the
// module layout in spec §4.2.
const pageSize = 64 * 1024

// instance is a materialized binary artifact: an instantiated module
// plus the handle to its imported linear memory, ready to be staged
// and invoked. It is what the binary back-end's Compile returns and
// caches.
type instance struct {
	runtime wazero.Runtime
	env     api.Module
	mod     api.Module
	fn      api.Function
	mem     api.Memory
}

// instantiate assembles-and-loads one BitBLT module: it provides the
// "env.memory" import the module expects, compiles the given bytes
// (a GenerationFailure if that fails validation) and links/instantiates
// the result against that memory (an InstantiationFailure if that
// fails, e.g. an import arity or limits mismatch).
func instantiate(ctx context.Context, wasmBytes []byte) (*instance, error) {
	rt := wazero.NewRuntime(ctx)

	env, err := rt.NewHostModuleBuilder("env").
		ExportMemory("memory", memMinPages).
		Instantiate(ctx)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("%w: provisioning env.memory: %s", bberr.ErrInstantiationFailure, err)
	}

	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("%w: %s", bberr.ErrGenerationFailure, err)
	}

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName("bitblt"))
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("%w: %s", bberr.ErrInstantiationFailure, err)
	}

	fn := mod.ExportedFunction("bitblt")
	if fn == nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("%w: module does not export \"bitblt\"", bberr.ErrInstantiationFailure)
	}

	mem := env.Memory()
	if mem == nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("%w: host module exported no memory", bberr.ErrInstantiationFailure)
	}

	return &instance{runtime: rt, env: env, mod: mod, fn: fn, mem: mem}, nil
}

func (in *instance) close(ctx context.Context) {
	in.runtime.Close(ctx)
}

// capacityWords reports the current linear memory size in 32-bit words.
func (in *instance) capacityWords() int {
	return int(in.mem.Size() / 4)
}

// ensureCapacity grows linear memory, in whole pages, until it can
// hold at least wantWords words. It returns ErrMemoryCapacity if the
// runtime refuses to grow far enough.
func (in *instance) ensureCapacity(wantWords int) error {
	wantBytes := uint64(wantWords) * 4
	for uint64(in.mem.Size()) < wantBytes {
		deltaBytes := wantBytes - uint64(in.mem.Size())
		deltaPages := uint32((deltaBytes + pageSize - 1) / pageSize)
		if deltaPages == 0 {
			deltaPages = 1
		}
		if _, ok := in.mem.Grow(deltaPages); !ok {
			return bberr.ErrMemoryCapacity
		}
	}
	return nil
}

// writeWords writes words into linear memory starting at word offset
// offsetWords.
func (in *instance) writeWords(offsetWords int, words []uint32) error {
	buf := make([]byte, len(words)*4)
	for i, w := range words {
		buf[i*4+0] = byte(w)
		buf[i*4+1] = byte(w >> 8)
		buf[i*4+2] = byte(w >> 16)
		buf[i*4+3] = byte(w >> 24)
	}
	if !in.mem.Write(uint32(offsetWords*4), buf) {
		return bberr.ErrMemoryCapacity
	}
	return nil
}

// readWords reads count words back from linear memory starting at
// word offset offsetWords.
func (in *instance) readWords(offsetWords, count int) ([]uint32, error) {
	buf, ok := in.mem.Read(uint32(offsetWords*4), uint32(count*4))
	if !ok {
		return nil, bberr.ErrMemoryCapacity
	}
	words := make([]uint32, count)
	for i := range words {
		words[i] = uint32(buf[i*4]) | uint32(buf[i*4+1])<<8 | uint32(buf[i*4+2])<<16 | uint32(buf[i*4+3])<<24
	}
	return words, nil
}

// call invokes the exported "bitblt" function with the module's fixed
// 11-argument signature.
func (in *instance) call(ctx context.Context, args [11]uint32) error {
	a := make([]uint64, len(args))
	for i, v := range args {
		a[i] = uint64(v)
	}
	_, err := in.fn.Call(ctx, a...)
	return err
}
