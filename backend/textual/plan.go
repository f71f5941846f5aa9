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
	"fmt"

	"github.com/nullptr-eng/bitblt/specialize"
)

// plan is the one specialization decision shared by both halves of the
// textual back-end: the template in source.go renders it into Go-like
// text for logging, and closure.go walks it to build the actual
// callable. Keeping a single plan means the emitted text and the
// executed closure can never disagree about what got specialized.
type plan struct {
	p specialize.Params

	// exprs hold either a literal (inline_constants and the dimension
	// is frozen) or a field read, for display purposes only; the
	// closure always reads frozen values from p directly.
	srcWExpr, dstWExpr string

	unrolled bool // height is frozen and Unroll is set
	rows     []rowPlan
}

// rowPlan is one unrolled output row. Pixels is only populated when
// width is also frozen (full per-pixel unroll); otherwise the row
// still carries a textual inner x-loop.
type rowPlan struct {
	Index     int
	SrcYExpr  string
	DstYExpr  string
	Pixels    []pixelPlan
	FullyFlat bool
}

type pixelPlan struct {
	Index    int
	SrcXExpr string
	DstXExpr string
}

// buildPlan derives the rendering/closure plan for p.
func buildPlan(p specialize.Params) plan {
	pl := plan{p: p}

	if p.InlineConstants && p.SrcW != nil {
		pl.srcWExpr = fmt.Sprintf("%d", *p.SrcW)
	} else {
		pl.srcWExpr = "srcW"
	}
	if p.InlineConstants && p.DstW != nil {
		pl.dstWExpr = fmt.Sprintf("%d", *p.DstW)
	} else {
		pl.dstWExpr = "dstW"
	}

	if p.Unroll && p.Height != nil {
		pl.unrolled = true
		fullyFlat := p.Width != nil

		for k := 0; k < *p.Height; k++ {
			row := rowPlan{
				Index:     k,
				SrcYExpr:  fmt.Sprintf("srcYAbs_%d", k),
				DstYExpr:  fmt.Sprintf("dstYAbs_%d", k),
				FullyFlat: fullyFlat,
			}
			if fullyFlat {
				for j := 0; j < *p.Width; j++ {
					idx := k**p.Width + j
					row.Pixels = append(row.Pixels, pixelPlan{
						Index:    idx,
						SrcXExpr: fmt.Sprintf("srcXAbs_%d", idx),
						DstXExpr: fmt.Sprintf("dstXAbs_%d", idx),
					})
				}
			}
			pl.rows = append(pl.rows, row)
		}
	}

	return pl
}
