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

package bytecode

// GenerateAlignedBody emits the word-copy fast path described in spec
// §4.3's "alignment-fast variant": when width, srcX and dstX are all
// multiples of 32, the destination bit position for every pixel in a
// source word equals its source bit position, so the whole word can
// be copied with one i32.load/i32.store pair instead of 32 scalar
// read-modify-write cycles.
//
// It is only ever selected by Binary.Generate, with AlignOpt set, after
// the analyzer has confirmed word-aligned on the frozen parameters (see
// spec §4.7); callers must not invoke it otherwise, since it assumes
// (srcX & 31) == 0, (dstX & 31) == 0 and (width & 31) == 0 and does
// not re-check them. Per spec it must produce bit-identical results
// to GenerateBody for any input satisfying that precondition — the
// per-word copy is the same bits, just moved 32 at a time.
func GenerateAlignedBody() []byte {
	b := &body{}

	b.localGet(pSrcW)
	b.constI32(31)
	b.op(opI32Add)
	b.constI32(5)
	b.op(opI32ShrU)
	b.localSet(lSrcStrideWords)

	b.localGet(pDstW)
	b.constI32(31)
	b.op(opI32Add)
	b.constI32(5)
	b.op(opI32ShrU)
	b.localSet(lDstStrideWords)

	b.constI32(0)
	b.localSet(lY)

	b.block()
	b.loop()
	{
		b.localGet(lY)
		b.localGet(pHeight)
		b.op(opI32LtU)
		b.op(opI32Eqz)
		b.brIf(1)

		b.localGet(pSrcY)
		b.localGet(lY)
		b.op(opI32Add)
		b.localSet(lSrcYAbs)

		b.localGet(pDstY)
		b.localGet(lY)
		b.op(opI32Add)
		b.localSet(lDstYAbs)

		b.constI32(0)
		b.localSet(lX) // x is now a word index, stepping by 1, bound by width/32

		b.block()
		b.loop()
		{
			// x < width>>5
			b.localGet(lX)
			b.localGet(pWidth)
			b.constI32(5)
			b.op(opI32ShrU)
			b.op(opI32LtU)
			b.op(opI32Eqz)
			b.brIf(1)

			// wordTmp = mem[srcPtr + ((srcX>>5 + srcYAbs*srcStride) + x)*4]
			b.localGet(pSrcPtr)
			b.localGet(pSrcX)
			b.constI32(5)
			b.op(opI32ShrU)
			b.localGet(lSrcYAbs)
			b.localGet(lSrcStrideWords)
			b.op(opI32Mul)
			b.op(opI32Add)
			b.localGet(lX)
			b.op(opI32Add)
			b.constI32(2)
			b.op(opI32Shl)
			b.op(opI32Add)
			b.memLoad()
			b.localSet(lWordTmp)

			// mem[dstPtr + ((dstX>>5 + dstYAbs*dstStride) + x)*4] = wordTmp
			b.localGet(pDstPtr)
			b.localGet(pDstX)
			b.constI32(5)
			b.op(opI32ShrU)
			b.localGet(lDstYAbs)
			b.localGet(lDstStrideWords)
			b.op(opI32Mul)
			b.op(opI32Add)
			b.localGet(lX)
			b.op(opI32Add)
			b.constI32(2)
			b.op(opI32Shl)
			b.op(opI32Add)
			b.localGet(lWordTmp)
			b.memStore()

			b.localGet(lX)
			b.constI32(1)
			b.op(opI32Add)
			b.localSet(lX)
			b.br(0)
		}
		b.end()
		b.end()

		b.localGet(lY)
		b.constI32(1)
		b.op(opI32Add)
		b.localSet(lY)
		b.br(0)
	}
	b.end()
	b.end()
	b.op(opEnd)

	return encodeFunctionBody(b.code)
}
