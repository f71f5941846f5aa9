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

// Command bitbltbench exercises the dispatch pipeline end to end
// against a generated checkerboard, for manual verification and
// benchmarking of a chosen back-end.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/nullptr-eng/bitblt"
	"github.com/nullptr-eng/bitblt/pixelfmt"
)

func main() {
	size := flag.Int("size", 256, "width and height in pixels of the generated checkerboard")
	backEnd := flag.String("backend", "binary", `back-end to use ("textual", "binary", "aligned-binary")`)
	verify := flag.Bool("verify", true, "shadow-verify every call against the reference oracle")
	autospecialize := flag.Bool("autospecialize", false, "let the analyzer's flags influence the fingerprint")
	unroll := flag.Bool("unroll", false, "request loop unrolling from the textual back-end")
	inlineConstants := flag.Bool("inline-constants", false, "request constant inlining from the textual back-end")
	alignOpt := flag.Bool("align-opt", true, "request the alignment-fast variant when applicable")
	logPerf := flag.Bool("log-perf", true, "log one line per call with back-end and fingerprint")
	iterations := flag.Int("n", 1, "number of calls to run")
	flag.Parse()

	w, h := *size, *size
	stride := pixelfmt.Stride(w)
	src := make([]uint32, stride*h)
	dst := make([]uint32, stride*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x^y)&1 == 0 {
				pixelfmt.SetPixel(src, w, x, y, 1)
			}
		}
	}

	engine := bitblt.NewEngine(
		bitblt.WithBackEnd(*backEnd),
		bitblt.WithVerify(*verify),
		bitblt.WithAutospecialize(*autospecialize),
		bitblt.WithLogPerf(*logPerf),
		bitblt.WithCompilerFlags(bitblt.CompilerFlags{
			Unroll:          *unroll,
			InlineConstants: *inlineConstants,
			AlignOpt:        *alignOpt,
		}),
	)

	start := time.Now()
	for i := 0; i < *iterations; i++ {
		err := engine.Transfer(context.Background(),
			src, w, h, 0, 0,
			dst, w, 0, 0,
			w, h,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bitbltbench: call %d failed: %s\n", i, err)
			os.Exit(1)
		}
	}

	fmt.Printf("bitbltbench: %d call(s) of %dx%d via %q in %s\n", *iterations, w, h, *backEnd, time.Since(start))
}
