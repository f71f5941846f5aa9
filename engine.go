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

// Package bitblt is the dispatch core (C8): it routes a transfer
// request through the operation analyzer, the specialization cache
// and the requested back-end, optionally shadowing every call against
// the trusted oracle.
package bitblt

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nullptr-eng/bitblt/analyzer"
	"github.com/nullptr-eng/bitblt/backend"
	_ "github.com/nullptr-eng/bitblt/backend/bytecode" // register "binary" / "aligned-binary"
	_ "github.com/nullptr-eng/bitblt/backend/textual"  // register "textual"
	"github.com/nullptr-eng/bitblt/bberr"
	"github.com/nullptr-eng/bitblt/dump"
	"github.com/nullptr-eng/bitblt/oracle"
	"github.com/nullptr-eng/bitblt/specialize"
)

// Engine is a BitBLT dispatcher: a configuration (which may be its
// own, or left to track the package-global one) plus a set of
// lazily-constructed, per-name back-ends, each with its own
// specialization cache. The zero value is not usable; construct with
// NewEngine.
type Engine struct {
	cfg      atomic.Pointer[Config]
	useGlobal bool

	mu       sync.Mutex
	backends map[string]backend.Backend
	dumper   *dump.Writer
}

// NewEngine constructs an Engine. With no options it tracks
// GlobalConfig() on every call, matching the baseline's "global
// configuration preserved for compatibility" stance (spec §9); any
// WithXxx option given here instead pins an explicit Config private to
// this Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{backends: map[string]backend.Backend{}}
	if len(opts) == 0 {
		e.useGlobal = true
		cfg := GlobalConfig()
		e.cfg.Store(&cfg)
		return e
	}
	cfg := GlobalConfig()
	for _, o := range opts {
		o(&cfg)
	}
	e.cfg.Store(&cfg)
	return e
}

// SetConfig replaces this Engine's configuration and stops it from
// tracking the package-global config.
func (e *Engine) SetConfig(cfg Config) {
	e.useGlobal = false
	c := cfg
	e.cfg.Store(&c)
}

// Config returns this Engine's effective configuration snapshot.
func (e *Engine) Config() Config {
	if e.useGlobal {
		return GlobalConfig()
	}
	return *e.cfg.Load()
}

func (e *Engine) backendFor(name string) (backend.Backend, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if be, ok := e.backends[name]; ok {
		return be, nil
	}
	be, err := backend.New(name)
	if err != nil {
		return nil, err
	}
	e.backends[name] = be
	return be, nil
}

// Transfer is the top-level operation from spec §4.8: it dispatches
// srcBuf[srcX,srcY,width,height] -> dstBuf[dstX,dstY] through this
// Engine's configured back-end, optionally analyzing first and
// shadow-verifying against the oracle afterward.
func (e *Engine) Transfer(
	ctx context.Context,
	src []uint32, srcW, srcH, srcX, srcY int,
	dst []uint32, dstW, dstX, dstY int,
	width, height int,
	opts ...Option,
) error {
	start := time.Now()
	callID := uuid.New()

	cfg := e.Config()
	for _, o := range opts {
		o(&cfg)
	}

	// Step 1: oracle-only path.
	if !cfg.UseSpecialized {
		return oracle.Copy(src, srcW, srcH, srcX, srcY, dst, dstW, dstX, dstY, width, height)
	}

	// Step 2: build compile params from the call's actual shape (the
	// "specialize on exact shape" default) plus configured flags.
	params := specialize.Freeze(srcW, srcH, dstW, srcX, srcY, dstX, dstY, width, height)
	params.Unroll = cfg.Compiler.Unroll
	params.InlineConstants = cfg.Compiler.InlineConstants
	params.AlignOpt = cfg.Compiler.AlignOpt
	params.Debug = cfg.Compiler.Debug

	// Step 3: analyze, and optionally let the findings influence the
	// fingerprint.
	var analysis analyzer.Output
	if cfg.Analyze {
		analysis = analyzer.Analyze(params.Dims())
		if cfg.Autospecialize {
			if analysis.Has(analyzer.FlagWordAligned) {
				params.AlignOpt = true
			}
			if analysis.Has(analyzer.FlagUnrollSmall) {
				params.Unroll = true
			}
		}
	}

	backEndName := cfg.BackEnd
	if backEndName == "" {
		backEndName = "textual"
	}
	be, err := e.backendFor(backEndName)
	if err != nil {
		return err
	}

	// Step 4: compile (cache lookup/insert happens inside Compile).
	fp := be.Fingerprint(params)
	artifact, err := be.Compile(params)
	if err != nil && isUnsupportedFallback(backEndName, err) {
		log.Printf("bitblt: back-end %q unsupported (%s); falling back to binary", backEndName, err)
		backEndName = "binary"
		be, err = e.backendFor(backEndName)
		if err != nil {
			return err
		}
		fp = be.Fingerprint(params)
		artifact, err = be.Compile(params)
	}
	if err != nil {
		return err
	}

	if cfg.Compiler.Debug && cfg.DumpDir != "" {
		e.dumpArtifact(be, params, fp, cfg.DumpDir)
	}

	// Step 5: verification scratch, populated by the oracle before the
	// specialized call runs.
	var scratch []uint32
	if cfg.Verify {
		scratch = make([]uint32, len(dst))
		copy(scratch, dst)
		if err := oracle.Copy(src, srcW, srcH, srcX, srcY, scratch, dstW, dstX, dstY, width, height); err != nil {
			return err
		}
	}

	// Step 6: invoke the specialized artifact on the real destination.
	call := backend.Call{
		Src: src, SrcW: srcW, SrcH: srcH, SrcX: srcX, SrcY: srcY,
		Dst: dst, DstW: dstW, DstX: dstX, DstY: dstY,
		Width: width, Height: height,
	}
	if err := be.Execute(ctx, artifact, call); err != nil {
		return err
	}

	// Step 7: compare against the scratch oracle result.
	if cfg.Verify {
		if mm := firstMismatch(dst, scratch, dstW); mm != nil {
			return mm
		}
	}

	if cfg.LogPerf {
		log.Printf("bitblt: call=%s backend=%s fingerprint=%s flags=%v duration=%s",
			callID, be.Name(), fp, analysis.Flags, time.Since(start))
	}

	return nil
}

// isUnsupportedFallback reports whether err is the aligned-binary
// back-end declining its preconditions, the one case spec §7 allows
// the dispatcher to transparently fall back from.
func isUnsupportedFallback(backEndName string, err error) bool {
	return backEndName == "aligned-binary" && errors.Is(err, bberr.ErrUnsupported)
}

func (e *Engine) dumpArtifact(be backend.Backend, params specialize.Params, fp, dir string) {
	if e.dumper == nil || e.dumper.Dir != dir {
		w, err := dump.NewWriter(dir)
		if err != nil {
			log.Printf("bitblt: debug dump disabled: %s", err)
			return
		}
		e.dumper = w
	}
	body, err := be.Generate(params)
	if err != nil {
		return
	}
	kind := "src"
	if be.Name() != "textual" {
		kind = "module"
	}
	if _, err := e.dumper.Write(fp, kind, body); err != nil {
		log.Printf("bitblt: debug dump failed: %s", err)
	}
}

// defaultEngine backs the package-level Transfer convenience
// function; it always tracks GlobalConfig().
var defaultEngine = NewEngine()

// Transfer runs a BitBLT through the default, package-global-tracking
// Engine. It is the package-level convenience form of the primary
// entry from spec §6.
func Transfer(
	ctx context.Context,
	src []uint32, srcW, srcH, srcX, srcY int,
	dst []uint32, dstW, dstX, dstY int,
	width, height int,
	opts ...Option,
) error {
	return defaultEngine.Transfer(ctx, src, srcW, srcH, srcX, srcY, dst, dstW, dstX, dstY, width, height, opts...)
}
