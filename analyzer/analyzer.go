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

// Package analyzer is the operation analyzer (C7): a pure function of
// operation parameters that proposes optimization flags. It never
// decides whether to act on its own findings; the dispatcher does
// that, gated by the autospecialize config field.
package analyzer

import (
	"golang.org/x/exp/slices"
	"golang.org/x/sys/cpu"
)

// Flag names an optimization the analyzer detected as applicable.
type Flag string

const (
	// FlagUnrollSmall is set when width*height is small enough that
	// fully unrolling the inner loop is reasonable.
	FlagUnrollSmall Flag = "unroll-small"
	// FlagWordAligned is set when the whole operation starts and ends
	// on 32-bit word boundaries, enabling whole-word copies.
	FlagWordAligned Flag = "word-aligned"
	// FlagSIMDCandidate is set when the host CPU exposes vector
	// features the bytecode runtime could in principle exploit. No
	// back-end currently emits SIMD opcodes on the strength of this
	// flag alone (see the open questions in SPEC_FULL.md); it is
	// informational.
	FlagSIMDCandidate Flag = "simd-candidate"
)

// unrollSmallThreshold is the width*height ceiling under which full
// unrolling is considered cheap enough to always be a win.
const unrollSmallThreshold = 64

// Dims carries the subset of operation dimensions the caller chose to
// freeze. A nil field means that dimension is runtime-variable for
// this fingerprint, and the analyzer cannot use it to set a flag that
// depends on its concrete value.
type Dims struct {
	SrcW, SrcH, DstW   *int
	SrcX, SrcY, DstX, DstY *int
	Width, Height      *int
}

// Output is the analyzer's verdict: whether it found anything worth
// specializing on, and which flags applied.
type Output struct {
	CanOptimize bool
	Flags       []Flag
}

// Has reports whether f was detected.
func (o Output) Has(f Flag) bool {
	return slices.Contains(o.Flags, f)
}

// Analyze inspects the frozen dimensions in d and returns the
// optimization flags that apply. It never reads or mutates any shared
// state; calling it twice with equal d returns equal results.
func Analyze(d Dims) Output {
	var flags []Flag

	if d.Width != nil && d.Height != nil && (*d.Width)*(*d.Height) <= unrollSmallThreshold {
		flags = append(flags, FlagUnrollSmall)
	}

	if d.Width != nil && *d.Width%32 == 0 &&
		d.SrcX != nil && *d.SrcX%32 == 0 &&
		d.DstX != nil && *d.DstX%32 == 0 {
		flags = append(flags, FlagWordAligned)
	}

	if probeSIMD() {
		flags = append(flags, FlagSIMDCandidate)
	}

	slices.Sort(flags)
	return Output{
		CanOptimize: len(flags) > 0,
		Flags:       flags,
	}
}

// probeSIMD validates a fixed capability probe against the host CPU,
// the way vm/avx512level.go picks an execution strategy from
// golang.org/x/sys/cpu feature bits. It never causes SIMD opcodes to
// be emitted; it only informs the simd-candidate flag.
func probeSIMD() bool {
	return cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD
}
