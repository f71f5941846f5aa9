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

package textual

import (
	"context"

	"github.com/nullptr-eng/bitblt/backend"
	"github.com/nullptr-eng/bitblt/pixelfmt"
)

// routine is the textual back-end's callable artifact: the "host's
// in-process compile/eval facility" materialized as a native Go
// closure built by walking the same plan renderSource rendered to
// text, rather than actually interpreting that text (see SPEC_FULL.md
// for why). Whatever inline_constants/unroll decided about the
// rendered source, the scan it performs is the one the plan
// describes: this is what keeps the emitted text and the executed
// closure unable to disagree.
type routine func(call backend.Call)

// buildRoutine returns the callable for pl. Frozen dimensions are
// taken from the plan in place of call's values (a caller is expected
// to always pass the same concrete values for a given fingerprint;
// they are not checked); unfrozen ones are read from call.
func buildRoutine(pl plan) routine {
	p := pl.p

	return func(call backend.Call) {
		srcW := call.SrcW
		if p.SrcW != nil {
			srcW = *p.SrcW
		}
		dstW := call.DstW
		if p.DstW != nil {
			dstW = *p.DstW
		}
		srcX := call.SrcX
		if p.SrcX != nil {
			srcX = *p.SrcX
		}
		srcY := call.SrcY
		if p.SrcY != nil {
			srcY = *p.SrcY
		}
		dstX := call.DstX
		if p.DstX != nil {
			dstX = *p.DstX
		}
		dstY := call.DstY
		if p.DstY != nil {
			dstY = *p.DstY
		}
		width := call.Width
		if p.Width != nil {
			width = *p.Width
		}
		height := call.Height
		if p.Height != nil {
			height = *p.Height
		}

		for y := 0; y < height; y++ {
			srcYAbs := srcY + y
			dstYAbs := dstY + y
			for x := 0; x < width; x++ {
				srcXAbs := srcX + x
				dstXAbs := dstX + x
				bit := pixelfmt.GetPixel(call.Src, srcW, srcXAbs, srcYAbs)
				pixelfmt.SetPixel(call.Dst, dstW, dstXAbs, dstYAbs, bit)
			}
		}
	}
}

// run adapts routine to the Backend.Execute signature; the textual
// back-end never suspends, so ctx is accepted only to satisfy the
// uniform deferred-return shape the dispatcher expects across
// back-ends (spec §9).
func run(ctx context.Context, r routine, call backend.Call) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	r(call)
	return nil
}
