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
	"context"
	"errors"
	"testing"

	"github.com/nullptr-eng/bitblt/analyzer"
	"github.com/nullptr-eng/bitblt/backend"
	"github.com/nullptr-eng/bitblt/bberr"
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

// TestS1FullCopy is the literal scenario S1.
func TestS1FullCopy(t *testing.T) {
	src := checkerboard(8, 8)
	dst := make([]uint32, len(src))

	e := NewEngine(WithBackEnd("textual"), WithVerify(true))
	err := e.Transfer(context.Background(), src, 8, 8, 0, 0, dst, 8, 0, 0, 8, 8)
	if err != nil {
		t.Fatalf("Transfer: %s", err)
	}
	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("word %d: got %#x, want %#x", i, dst[i], src[i])
		}
	}
}

// TestS4LargeAlignedCopy is the literal scenario S4: a 1024x1024
// buffer with every 32nd word set, copied with identical aligned
// geometry; the analyzer must also report word-aligned.
func TestS4LargeAlignedCopy(t *testing.T) {
	width, height := 1024, 1024
	stride := pixelfmt.Stride(width)
	src := make([]uint32, stride*height)
	for i := range src {
		if i%32 == 0 {
			src[i] = 0xAAAAAAAA
		}
	}
	dst := make([]uint32, stride*height)

	out := analyzer.Analyze(analyzer.Dims{
		Width: &width, SrcX: intp(0), DstX: intp(0),
	})
	if !out.Has(analyzer.FlagWordAligned) {
		t.Fatal("expected word-aligned for a fully 32-word-aligned 1024x1024 copy")
	}

	e := NewEngine(WithBackEnd("textual"), WithVerify(true), WithAutospecialize(true),
		WithCompilerFlags(CompilerFlags{AlignOpt: true}))
	if err := e.Transfer(context.Background(), src, width, height, 0, 0, dst, width, 0, 0, width, height); err != nil {
		t.Fatalf("Transfer: %s", err)
	}
	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("word %d: got %#x, want %#x", i, dst[i], src[i])
		}
	}
}

func intp(n int) *int { return &n }

// TestS5NonAlignedShift is the literal scenario S5: a non-word-aligned
// shift, verified against the oracle, that must leave destination bits
// outside the copy rectangle untouched.
func TestS5NonAlignedShift(t *testing.T) {
	src := checkerboard(32, 32)
	dst := make([]uint32, pixelfmt.Stride(32)*32)
	for i := range dst {
		dst[i] = 0xFFFFFFFF
	}
	before := append([]uint32(nil), dst...)

	width := 27
	out := analyzer.Analyze(analyzer.Dims{Width: &width, SrcX: intp(3), DstX: intp(5)})
	if out.Has(analyzer.FlagWordAligned) {
		t.Fatal("did not expect word-aligned for this shift")
	}

	e := NewEngine(WithBackEnd("textual"), WithVerify(true))
	err := e.Transfer(context.Background(), src, 32, 32, 3, 0, dst, 32, 5, 0, 27, 32)
	if err != nil {
		t.Fatalf("Transfer: %s", err)
	}

	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			inRect := x >= 5 && x < 5+27
			if inRect {
				continue
			}
			got := pixelfmt.GetPixel(dst, 32, x, y)
			want := pixelfmt.GetPixel(before, 32, x, y)
			if got != want {
				t.Fatalf("(%d,%d) outside rectangle changed: got %d, want %d", x, y, got, want)
			}
		}
	}
}

// flippingBackend wraps the textual back-end but corrupts bit (0,0)
// of the destination, to drive the verification-mismatch path (S6)
// deterministically.
type flippingBackend struct {
	backend.Backend
}

func (f *flippingBackend) Execute(ctx context.Context, artifact any, call backend.Call) error {
	if err := f.Backend.Execute(ctx, artifact, call); err != nil {
		return err
	}
	bit := pixelfmt.GetPixel(call.Dst, call.DstW, 0, 0)
	pixelfmt.SetPixel(call.Dst, call.DstW, 0, 0, 1-bit)
	return nil
}

// TestS6VerificationMismatch is the literal scenario S6.
func TestS6VerificationMismatch(t *testing.T) {
	real, err := backend.New("textual")
	if err != nil {
		t.Fatalf("backend.New: %s", err)
	}
	backend.Register("flipper-for-test", func() (backend.Backend, error) {
		return &flippingBackend{Backend: real}, nil
	})

	src := checkerboard(8, 8)
	dst := make([]uint32, pixelfmt.Stride(8)*8)

	e := NewEngine(WithBackEnd("flipper-for-test"), WithVerify(true))
	err = e.Transfer(context.Background(), src, 8, 8, 0, 0, dst, 8, 0, 0, 8, 8)

	var mm *bberr.VerificationMismatch
	if !errors.As(err, &mm) {
		t.Fatalf("expected *bberr.VerificationMismatch, got %v", err)
	}
	if mm.X != 0 || mm.Y != 0 {
		t.Fatalf("mismatch at (%d,%d), want (0,0)", mm.X, mm.Y)
	}
}

func TestUseSpecializedFalseGoesStraightToOracle(t *testing.T) {
	src := checkerboard(8, 8)
	dst := make([]uint32, pixelfmt.Stride(8)*8)

	e := NewEngine(WithUseSpecialized(false))
	if err := e.Transfer(context.Background(), src, 8, 8, 0, 0, dst, 8, 0, 0, 8, 8); err != nil {
		t.Fatalf("Transfer: %s", err)
	}
	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("word %d mismatched", i)
		}
	}
}

func TestUnknownBackEndPropagates(t *testing.T) {
	e := NewEngine(WithBackEnd("totally-unregistered"))
	src := make([]uint32, 1)
	dst := make([]uint32, 1)
	err := e.Transfer(context.Background(), src, 1, 1, 0, 0, dst, 1, 0, 0, 1, 1)
	if !errors.Is(err, bberr.ErrUnknownBackEnd) {
		t.Fatalf("got %v, want ErrUnknownBackEnd", err)
	}
}

func TestAlignedBinaryFallsBackToBinary(t *testing.T) {
	e := NewEngine(WithBackEnd("aligned-binary"))
	src := checkerboard(4, 4)
	dst := make([]uint32, pixelfmt.Stride(4)*4)
	err := e.Transfer(context.Background(), src, 4, 4, 0, 0, dst, 4, 0, 0, 4, 4)
	if err != nil {
		t.Fatalf("expected aligned-binary to fall back to binary rather than fail: %s", err)
	}
}

func TestGlobalConfigSnapshotIsWholeRecord(t *testing.T) {
	orig := GlobalConfig()
	defer SetGlobalConfig(orig)

	SetGlobalConfig(Config{UseSpecialized: true, BackEnd: "textual", Verify: true})
	cfg := GlobalConfig()
	if !cfg.Verify || cfg.BackEnd != "textual" {
		t.Fatal("GlobalConfig did not reflect the last SetGlobalConfig call")
	}
}
