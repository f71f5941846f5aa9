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

package oracle

import (
	"testing"

	"github.com/nullptr-eng/bitblt/pixelfmt"
)

func checkerboard(width, height int) []uint32 {
	buf := make([]uint32, pixelfmt.Stride(width)*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x^y)&1 == 0 {
				pixelfmt.SetPixel(buf, width, x, y, 1)
			}
		}
	}
	return buf
}

// TestS1FullCopy is the literal scenario S1: an 8x8 checkerboard
// copied onto a same-sized destination must come out word-identical.
func TestS1FullCopy(t *testing.T) {
	src := checkerboard(8, 8)
	dst := make([]uint32, len(src))

	if err := Copy(src, 8, 8, 0, 0, dst, 8, 0, 0, 8, 8); err != nil {
		t.Fatalf("Copy: %s", err)
	}
	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("word %d: got %#x, want %#x", i, dst[i], src[i])
		}
	}
}

// TestS2PartialCopy is the literal scenario S2: a 4x4 region read
// from source (2,2) lands at destination (0,0).
func TestS2PartialCopy(t *testing.T) {
	src := checkerboard(8, 8)
	dst := make([]uint32, pixelfmt.Stride(8)*8)

	if err := Copy(src, 8, 8, 2, 2, dst, 8, 0, 0, 4, 4); err != nil {
		t.Fatalf("Copy: %s", err)
	}

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := uint32(0)
			if ((x+2)^(y+2))&1 == 0 {
				want = 1
			}
			got := pixelfmt.GetPixel(dst, 8, x, y)
			if got != want {
				t.Fatalf("(%d,%d): got %d, want %d", x, y, got, want)
			}
		}
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if x < 4 && y < 4 {
				continue
			}
			if pixelfmt.GetPixel(dst, 8, x, y) != 0 {
				t.Fatalf("(%d,%d) outside copy rectangle is nonzero", x, y)
			}
		}
	}
}

// TestS3OffsetCopy is the literal scenario S3: a 4x4 source lands on
// an 8x8 destination at offset (2,2), leaving the rest untouched.
func TestS3OffsetCopy(t *testing.T) {
	src := checkerboard(4, 4)
	dst := make([]uint32, pixelfmt.Stride(8)*8)

	if err := Copy(src, 4, 4, 0, 0, dst, 8, 2, 2, 4, 4); err != nil {
		t.Fatalf("Copy: %s", err)
	}

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			inRect := x >= 2 && x < 6 && y >= 2 && y < 6
			got := pixelfmt.GetPixel(dst, 8, x, y)
			if !inRect {
				if got != 0 {
					t.Fatalf("(%d,%d) outside rectangle is nonzero", x, y)
				}
				continue
			}
			want := uint32(0)
			if ((x-2)^(y-2))&1 == 0 {
				want = 1
			}
			if got != want {
				t.Fatalf("(%d,%d): got %d, want %d", x, y, got, want)
			}
		}
	}
}

// TestIdentityCopyIsIdempotent is Property 2: copying a region onto
// itself leaves the buffer unchanged.
func TestIdentityCopyIsIdempotent(t *testing.T) {
	buf := checkerboard(16, 16)
	before := append([]uint32(nil), buf...)

	if err := Copy(buf, 16, 16, 3, 5, buf, 16, 3, 5, 6, 7); err != nil {
		t.Fatalf("Copy: %s", err)
	}
	for i := range before {
		if buf[i] != before[i] {
			t.Fatalf("word %d changed under identity copy: %#x -> %#x", i, before[i], buf[i])
		}
	}
}

func TestCopyZeroSizeIsNoOp(t *testing.T) {
	src := checkerboard(4, 4)
	dst := make([]uint32, 4)
	before := append([]uint32(nil), dst...)
	if err := Copy(src, 4, 4, 0, 0, dst, 4, 0, 0, 0, 0); err != nil {
		t.Fatalf("Copy: %s", err)
	}
	for i := range dst {
		if dst[i] != before[i] {
			t.Fatalf("zero-size copy modified destination")
		}
	}
}

func TestCopyOutOfRangeSource(t *testing.T) {
	src := checkerboard(4, 4)
	dst := make([]uint32, 4)
	err := Copy(src, 4, 4, 2, 2, dst, 4, 0, 0, 4, 4)
	if err == nil {
		t.Fatal("expected an out-of-range error")
	}
}

func TestCopyOutOfRangeDestination(t *testing.T) {
	src := checkerboard(4, 4)
	dst := make([]uint32, 1) // too short for 4x4 at (0,0)
	err := Copy(src, 4, 4, 0, 0, dst, 4, 0, 0, 4, 4)
	if err == nil {
		t.Fatal("expected an out-of-range error")
	}
}
