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

package pixelfmt

import "testing"

func TestStride(t *testing.T) {
	cases := map[int]int{0: 0, 1: 1, 31: 1, 32: 1, 33: 2, 64: 2, 65: 3}
	for width, want := range cases {
		if got := Stride(width); got != want {
			t.Errorf("Stride(%d) = %d, want %d", width, got, want)
		}
	}
}

func TestSetGetPixelRoundTrip(t *testing.T) {
	width, height := 40, 3
	buf := make([]uint32, Stride(width)*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			bit := uint32((x + y) % 2)
			SetPixel(buf, width, x, y, bit)
			if got := GetPixel(buf, width, x, y); got != bit {
				t.Fatalf("(%d,%d): got %d immediately after SetPixel(%d)", x, y, got, bit)
			}
		}
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			want := uint32((x + y) % 2)
			if got := GetPixel(buf, width, x, y); got != want {
				t.Fatalf("(%d,%d): got %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestSetPixelDoesNotDisturbNeighbors(t *testing.T) {
	width := 32
	buf := make([]uint32, Stride(width))
	SetPixel(buf, width, 5, 0, 1)
	for x := 0; x < width; x++ {
		want := uint32(0)
		if x == 5 {
			want = 1
		}
		if got := GetPixel(buf, width, x, 0); got != want {
			t.Fatalf("x=%d: got %d, want %d", x, got, want)
		}
	}
}

func TestInRange(t *testing.T) {
	buf := make([]uint32, Stride(8)*8)
	if !InRange(buf, 8, 8, 0, 0, 8, 8) {
		t.Fatal("expected full 8x8 rectangle to be in range")
	}
	if InRange(buf, 8, 8, 4, 4, 8, 8) {
		t.Fatal("expected out-of-range rectangle to be rejected")
	}
	if !InRange(buf, 8, 8, 2, 2, 0, 0) {
		t.Fatal("a zero-size rectangle should always be in range")
	}
	if InRange(buf, 8, 8, -1, 0, 1, 1) {
		t.Fatal("negative coordinate should be rejected")
	}
}
