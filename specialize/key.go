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

// Package specialize is the specialization key and cache (C6): the
// canonical fingerprint built from the operation parameters a caller
// chose to freeze, and a per-back-end map from fingerprint to
// compiled artifact with a compile-once guarantee per fingerprint.
package specialize

import (
	"fmt"
	"strings"

	"github.com/dchest/siphash"

	"github.com/nullptr-eng/bitblt/analyzer"
)

// Params is the operation shape a back-end specializes on. A nil
// dimension is runtime-variable: it is omitted from the fingerprint
// and passed as an ordinary argument at call time instead of being
// baked into the generated routine.
type Params struct {
	SrcW, SrcH, DstW       *int
	SrcX, SrcY, DstX, DstY *int
	Width, Height          *int

	Unroll          bool
	InlineConstants bool
	AlignOpt        bool
	Debug           bool
}

// Dims projects the frozen dimensions for the analyzer, which knows
// nothing about compiler flags or back-ends.
func (p Params) Dims() analyzer.Dims {
	return analyzer.Dims{
		SrcW: p.SrcW, SrcH: p.SrcH, DstW: p.DstW,
		SrcX: p.SrcX, SrcY: p.SrcY, DstX: p.DstX, DstY: p.DstY,
		Width: p.Width, Height: p.Height,
	}
}

// Freeze returns Params with every dimension frozen to the given call
// arguments, i.e. the "specialize on exact shape" default: each
// distinct call shape gets its own fingerprint.
func Freeze(srcW, srcH, dstW, srcX, srcY, dstX, dstY, width, height int) Params {
	return Params{
		SrcW: &srcW, SrcH: &srcH, DstW: &dstW,
		SrcX: &srcX, SrcY: &srcY, DstX: &dstX, DstY: &dstY,
		Width: &width, Height: &height,
	}
}

// tag formats one frozen dimension as "tag<value>", or "" if unset.
func tag(name string, v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%s%d", name, *v)
}

// Fingerprint builds the canonical, deterministic key for p under the
// named back-end: the back-end prefix, then a fixed-order tag for
// each frozen dimension, then flag tags. Two Params differing only in
// runtime-variable (nil) dimensions produce the same fingerprint;
// any difference in a frozen dimension or a flag changes it
// (Property 3).
func Fingerprint(backend string, p Params) string {
	var b strings.Builder
	b.WriteString(backend)

	for _, part := range []string{
		tag("sw", p.SrcW), tag("sh", p.SrcH), tag("dw", p.DstW),
		tag("sx", p.SrcX), tag("sy", p.SrcY), tag("dx", p.DstX), tag("dy", p.DstY),
		tag("w", p.Width), tag("h", p.Height),
	} {
		if part != "" {
			b.WriteByte(':')
			b.WriteString(part)
		}
	}

	if p.Unroll {
		b.WriteString(":u")
	}
	if p.InlineConstants {
		b.WriteString(":ic")
	}
	if p.AlignOpt {
		b.WriteString(":ao")
	}
	if p.Debug {
		b.WriteString(":dbg")
	}

	return b.String()
}

// fingerprintSipK0/K1 are a fixed, process-local siphash key: ShortTag is
// a display aid, not a security boundary, so a constant key (rather
// than one sourced from crypto/rand) keeps it reproducible across
// runs for log correlation.
const fingerprintSipK0, fingerprintSipK1 = 0x62697462, 0x6c742d66 // "bitb" "lt-f"

// ShortTag compresses a fingerprint into an 8-hex-digit display tag
// for debug dump filenames, the way vm/interphash.go
// folds buffer contents down with siphash.Hash128 for compact
// reporting. It is never used as a cache key: the canonical
// fingerprint string is, so two different shapes can never collide
// into sharing an artifact by accident.
func ShortTag(fingerprint string) string {
	lo, _ := siphash.Hash128(fingerprintSipK0, fingerprintSipK1, []byte(fingerprint))
	return fmt.Sprintf("%08x", uint32(lo))
}
