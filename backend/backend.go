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

// Package backend defines the back-end capability contract (C5) that
// the textual and binary code generators both implement, and the
// factory that constructs one by name.
package backend

import (
	"context"
	"fmt"

	"github.com/nullptr-eng/bitblt/analyzer"
	"github.com/nullptr-eng/bitblt/bberr"
	"github.com/nullptr-eng/bitblt/specialize"
)

// Call carries the runtime arguments of one BitBLT invocation, the
// full 11-value signature every back-end's generated routine shares
// regardless of which dimensions were frozen into its fingerprint.
type Call struct {
	Src                       []uint32
	SrcW, SrcH, SrcX, SrcY    int
	Dst                       []uint32
	DstW, DstX, DstY          int
	Width, Height             int
}

// Backend is the capability set every code-generator variant
// implements: generate source/module bytes, compile them into a
// callable artifact, execute that artifact, and report a fingerprint
// and analysis for a given parameter set.
type Backend interface {
	// Name is the back-end's registered name ("textual", "binary",
	// "aligned-binary").
	Name() string

	// Generate produces the artifact body: generated source text for
	// the textual back-end, or an assembled module's bytes for the
	// binary back-ends. It does not cache; Compile does.
	Generate(p specialize.Params) ([]byte, error)

	// Compile returns the callable artifact for p, compiling and
	// inserting into this back-end's cache on a fingerprint miss and
	// reusing the cached entry on a hit (Property 4). A failed
	// compile is never cached.
	Compile(p specialize.Params) (artifact any, err error)

	// Execute runs a previously compiled artifact against call,
	// writing into call.Dst.
	Execute(ctx context.Context, artifact any, call Call) error

	// Fingerprint returns this back-end's cache key for p.
	Fingerprint(p specialize.Params) string

	// Analyze runs the operation analyzer over p's frozen dimensions.
	Analyze(p specialize.Params) analyzer.Output

	// ClearCache evicts every cached artifact for this back-end.
	ClearCache()

	// IsAsync reports whether Compile/Execute may defer completion
	// (the binary back-ends do, at instantiate and, on some runtimes,
	// invoke time). The dispatcher uses this to decide whether to
	// run verification inline or after a deferred step completes; in
	// this Go implementation every call is synchronous by the time it
	// returns, so IsAsync is informational rather than a different
	// calling convention.
	IsAsync() bool
}

// Factory constructs a Backend by name.
type Factory func() (Backend, error)

var registry = map[string]Factory{}

// Register adds a back-end constructor under name. Called from each
// back-end package's init so that importing the package for side
// effect is enough to make it available to New.
func Register(name string, f Factory) {
	registry[name] = f
}

// New constructs the named back-end. Unrecognized names, including
// common misspellings not covered by an explicit alias, fail with
// bberr.ErrUnknownBackEnd.
func New(name string) (Backend, error) {
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", bberr.ErrUnknownBackEnd, name)
	}
	return f()
}

// aliases maps the "reasonable aliases" spec §6 calls for onto the
// canonical registered names.
var aliases = map[string]string{
	"text":          "textual",
	"source":        "textual",
	"wasm":          "binary",
	"bytecode":      "binary",
	"aligned":       "aligned-binary",
	"aligned_binary": "aligned-binary",
}
