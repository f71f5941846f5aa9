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
	"testing"

	"github.com/nullptr-eng/bitblt/backend"
	"github.com/nullptr-eng/bitblt/oracle"
	"github.com/nullptr-eng/bitblt/pixelfmt"
	"github.com/nullptr-eng/bitblt/specialize"
)

func intp(n int) *int { return &n }

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

func TestGenerateProducesParseableSourceForEveryFlagCombination(t *testing.T) {
	w, h := 4, 4
	base := specialize.Params{Width: intp(w), Height: intp(h)}

	cases := []specialize.Params{
		base,
		{Width: intp(w), Height: intp(h), InlineConstants: true, SrcW: intp(8), DstW: intp(8)},
		{Width: intp(w), Height: intp(h), Unroll: true},
		{Width: intp(w), Height: intp(h), Unroll: true, InlineConstants: true, SrcW: intp(8), DstW: intp(8)},
	}

	tx := New()
	for i, p := range cases {
		if _, err := tx.Generate(p); err != nil {
			t.Fatalf("case %d: Generate failed: %s", i, err)
		}
	}
}

func TestExecuteMatchesOracle(t *testing.T) {
	src := checkerboard(8, 8)
	dstSpecialized := make([]uint32, pixelfmt.Stride(8)*8)
	dstOracle := make([]uint32, pixelfmt.Stride(8)*8)

	p := specialize.Freeze(8, 8, 8, 2, 2, 0, 0, 4, 4)

	tx := New()
	artifact, err := tx.Compile(p)
	if err != nil {
		t.Fatalf("Compile: %s", err)
	}
	call := backend.Call{
		Src: src, SrcW: 8, SrcH: 8, SrcX: 2, SrcY: 2,
		Dst: dstSpecialized, DstW: 8, DstX: 0, DstY: 0,
		Width: 4, Height: 4,
	}
	if err := tx.Execute(context.Background(), artifact, call); err != nil {
		t.Fatalf("Execute: %s", err)
	}

	if err := oracle.Copy(src, 8, 8, 2, 2, dstOracle, 8, 0, 0, 4, 4); err != nil {
		t.Fatalf("oracle.Copy: %s", err)
	}

	for i := range dstOracle {
		if dstSpecialized[i] != dstOracle[i] {
			t.Fatalf("word %d: specialized=%#x oracle=%#x", i, dstSpecialized[i], dstOracle[i])
		}
	}
}

func TestCompileCachesByFingerprint(t *testing.T) {
	tx := New()
	p := specialize.Freeze(8, 8, 8, 0, 0, 0, 0, 8, 8)

	if _, err := tx.Compile(p); err != nil {
		t.Fatalf("Compile: %s", err)
	}
	if _, err := tx.Compile(p); err != nil {
		t.Fatalf("Compile: %s", err)
	}

	if tx.cache.Len() != 1 {
		t.Fatalf("cache holds %d entries for one fingerprint, want 1", tx.cache.Len())
	}
}
