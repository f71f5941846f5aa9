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

package bitblt

import (
	"github.com/nullptr-eng/bitblt/bberr"
	"github.com/nullptr-eng/bitblt/pixelfmt"
)

// firstMismatch scans got against want row-major, pixel by pixel (not
// word by word, since two words can differ in bits the copy rectangle
// never touched), and returns the first differing pixel as a
// *bberr.VerificationMismatch, or nil if the buffers agree everywhere.
func firstMismatch(got, want []uint32, width int) *bberr.VerificationMismatch {
	stride := pixelfmt.Stride(width)
	if stride == 0 {
		return nil
	}
	rows := len(want) / stride
	if len(got) < rows*stride {
		rows = len(got) / stride
	}

	for y := 0; y < rows; y++ {
		for x := 0; x < width; x++ {
			expected := pixelfmt.GetPixel(want, width, x, y)
			actual := pixelfmt.GetPixel(got, width, x, y)
			if expected != actual {
				return &bberr.VerificationMismatch{X: x, Y: y, Expected: expected, Actual: actual}
			}
		}
	}
	return nil
}
