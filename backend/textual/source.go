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
	"bytes"
	"fmt"
	"go/parser"
	"go/token"
	"text/template"

	"github.com/nullptr-eng/bitblt/bberr"
)

// sourceTemplate renders one specialized scan routine as a standalone
// Go source file, the way sorting/_generate/generator.go templates a
// family of sort implementations from one shape. It is rendered for
// logging/debugging only (closure.go builds the artifact actually
// executed); inline_constants substitutes a frozen srcW and dstW with
// literals (the other frozen dimensions are still rendered as their
// parameter names) and unroll emits one block per row (and, with width
// also frozen, one block per pixel) instead of nested for loops.
var sourceTemplate = template.Must(template.New("bitblt_textual").Parse(`// Code generated by the textual back-end. Specialized routine.
package generated

func bitblt(srcBuf []uint32, srcW, srcH, srcX, srcY int, dstBuf []uint32, dstW, dstX, dstY, width, height int) {
	srcStrideWords := ({{.SrcWExpr}} + 31) >> 5
	dstStrideWords := ({{.DstWExpr}} + 31) >> 5
	_ = srcStrideWords
	_ = dstStrideWords
{{if .Unrolled}}{{range .Rows}}
	// row {{.Index}}
	{{.SrcYExpr}} := srcY + {{.Index}}
	{{.DstYExpr}} := dstY + {{.Index}}
{{if .FullyFlat}}{{range .Pixels}}	blitPixel(srcBuf, {{.SrcWExpr}}, {{.SrcXExpr}}, {{.SrcYExpr}}, dstBuf, {{.DstWExpr}}, {{.DstXExpr}}, {{.DstYExpr}})
{{end}}{{else}}	for x := 0; x < width; x++ {
		blitPixel(srcBuf, {{.SrcWExprRow}}, srcX+x, {{.SrcYExpr}}, dstBuf, {{.DstWExprRow}}, dstX+x, {{.DstYExpr}})
	}
{{end}}{{end}}{{else}}
	for y := 0; y < height; y++ {
		srcYAbs := srcY + y
		dstYAbs := dstY + y
		for x := 0; x < width; x++ {
			blitPixel(srcBuf, {{.SrcWExpr}}, srcX+x, srcYAbs, dstBuf, {{.DstWExpr}}, dstX+x, dstYAbs)
		}
	}
{{end}}}
`))

type pixelView struct {
	Index              int
	SrcWExpr, DstWExpr string
	SrcXExpr, DstXExpr string
	SrcYExpr, DstYExpr string
}

type rowView struct {
	Index                      int
	SrcYExpr, DstYExpr         string
	SrcWExprRow, DstWExprRow   string
	FullyFlat                  bool
	Pixels                     []pixelView
}

type sourceView struct {
	SrcWExpr, DstWExpr string
	Unrolled           bool
	Rows               []rowView
}

// renderSource renders pl's textual source. It always produces
// well-formed Go (the template has no user-controlled free text), but
// is still run through validateSource before being trusted, matching
// the "generation failure is checked, not assumed" contract in spec §7.
func renderSource(pl plan) ([]byte, error) {
	data := sourceView{
		SrcWExpr: pl.srcWExpr,
		DstWExpr: pl.dstWExpr,
		Unrolled: pl.unrolled,
	}

	for _, r := range pl.rows {
		rv := rowView{
			Index: r.Index, SrcYExpr: r.SrcYExpr, DstYExpr: r.DstYExpr,
			SrcWExprRow: pl.srcWExpr, DstWExprRow: pl.dstWExpr,
			FullyFlat: r.FullyFlat,
		}
		for _, px := range r.Pixels {
			rv.Pixels = append(rv.Pixels, pixelView{
				Index: px.Index, SrcWExpr: pl.srcWExpr, DstWExpr: pl.dstWExpr,
				SrcXExpr: px.SrcXExpr, DstXExpr: px.DstXExpr,
				SrcYExpr: r.SrcYExpr, DstYExpr: r.DstYExpr,
			})
		}
		data.Rows = append(data.Rows, rv)
	}

	var buf bytes.Buffer
	if err := sourceTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: rendering textual source: %s", bberr.ErrGenerationFailure, err)
	}
	if err := validateSource(buf.Bytes()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// validateSource parses generated Go source with go/parser, the
// stdlib tool the wider ecosystem reaches for to check generated code
// is well-formed (no third-party Go source validator is represented
// in the retrieved corpus). A parse failure is a GenerationFailure and
// is never cached.
func validateSource(src []byte) error {
	fset := token.NewFileSet()
	if _, err := parser.ParseFile(fset, "generated_bitblt.go", src, parser.AllErrors); err != nil {
		return fmt.Errorf("%w: generated source does not parse: %s", bberr.ErrGenerationFailure, err)
	}
	return nil
}
