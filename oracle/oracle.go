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

// Package oracle is the trusted, scan-based reference BitBLT. It is
// never specialized and never cached; the dispatcher shadows every
// specialized call against it when verification is enabled, and falls
// back to it outright when specialization is disabled.
package oracle

import (
	"github.com/nullptr-eng/bitblt/bberr"
	"github.com/nullptr-eng/bitblt/pixelfmt"
)

// Copy performs a row-major, bit-by-bit copy of a width x height
// rectangle from (srcX, srcY) in src to (dstX, dstY) in dst. It
// modifies only bits inside the destination rectangle.
//
// Both buffers must already satisfy the bounds their geometry
// implies; Copy validates this and returns *bberr.OutOfRange before
// writing anything if it doesn't.
func Copy(src []uint32, srcW, srcH, srcX, srcY int, dst []uint32, dstW, dstX, dstY, width, height int) error {
	if width == 0 || height == 0 {
		return nil
	}
	if !pixelfmt.InRange(src, srcW, srcH, srcX, srcY, width, height) {
		return &bberr.OutOfRange{Which: "src", W: srcW, H: srcH, X: srcX, Y: srcY, RW: width, RH: height}
	}
	// dstH isn't tracked by callers (srcH is carried for symmetry per
	// the data model; dst has no analogous height field), so we bound
	// the destination check on the rows actually touched.
	if dstX < 0 || dstY < 0 || dstX+width > dstW {
		return &bberr.OutOfRange{Which: "dst", W: dstW, X: dstX, Y: dstY, RW: width, RH: height}
	}
	if pixelfmt.Stride(dstW)*(dstY+height) > len(dst) {
		return &bberr.OutOfRange{Which: "dst", W: dstW, X: dstX, Y: dstY, RW: width, RH: height}
	}

	// Forward row-major order, matching the spec's aliasing contract:
	// when src and dst alias and the rectangles overlap, this is the
	// order every back-end must reproduce under verification.
	for y := 0; y < height; y++ {
		sy := srcY + y
		dy := dstY + y
		for x := 0; x < width; x++ {
			sx := srcX + x
			dx := dstX + x
			bit := pixelfmt.GetPixel(src, srcW, sx, sy)
			pixelfmt.SetPixel(dst, dstW, dx, dy, bit)
		}
	}
	return nil
}
