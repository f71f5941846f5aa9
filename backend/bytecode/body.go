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

// Parameter slot order, fixed by the module's function signature.
const (
	pSrcPtr byte = iota
	pSrcW
	pSrcH
	pSrcX
	pSrcY
	pDstPtr
	pDstW
	pDstX
	pDstY
	pWidth
	pHeight
	numParams = pHeight + 1
)

// Additional local slots, declared after the parameters.
const (
	lSrcStrideWords byte = numParams + iota
	lDstStrideWords
	lY
	lSrcYAbs
	lDstYAbs
	lX
	lSrcBit
	lDstBitPos
	lWordTmp
	numLocals = lWordTmp + 1 - numParams
)

// body accumulates the opcode stream for one function, tracking that
// every block/loop it opens is eventually closed (Property 5).
type body struct {
	code       []byte
	blockDepth int
}

func (b *body) op(o byte) { b.code = append(b.code, o) }

func (b *body) u32(n uint32) { b.code = encodeU(b.code, uint64(n)) }

func (b *body) s32(n int32) { b.code = encodeS(b.code, int64(n)) }

func (b *body) localGet(idx byte) { b.op(opLocalGet); b.u32(uint32(idx)) }

func (b *body) localSet(idx byte) { b.op(opLocalSet); b.u32(uint32(idx)) }

func (b *body) constI32(n int32) { b.op(opI32Const); b.s32(n) }

// memLoad/memStore always use align=2 (word-aligned access) and
// offset=0: every address is computed explicitly on the stack rather
// than relying on a static memarg offset.
func (b *body) memLoad()  { b.op(opI32Load); b.u32(2); b.u32(0) }
func (b *body) memStore() { b.op(opI32Store); b.u32(2); b.u32(0) }

func (b *body) block() { b.op(opBlock); b.op(blockTypeVoid); b.blockDepth++ }
func (b *body) loop()  { b.op(opLoop); b.op(blockTypeVoid); b.blockDepth++ }
func (b *body) end()   { b.op(opEnd); b.blockDepth-- }
func (b *body) brIf(depth uint32) { b.op(opBrIf); b.u32(depth) }
func (b *body) br(depth uint32)   { b.op(opBr); b.u32(depth) }

// pushWordAddr pushes the byte address of the word holding pixel x
// (the sum of xParam and the local loop counter) on row yLocal, for a
// buffer based at ptrParam with the given stride-words local.
//
//	addr = ptrParam + (((xParam + xLocal) >> 5) + yLocal*strideLocal) * 4
func (b *body) pushWordAddr(ptrParam, xParam, xLocal, yLocal, strideLocal byte) {
	b.localGet(ptrParam)
	b.localGet(xParam)
	b.localGet(xLocal)
	b.op(opI32Add)
	b.constI32(5)
	b.op(opI32ShrU)
	b.localGet(yLocal)
	b.localGet(strideLocal)
	b.op(opI32Mul)
	b.op(opI32Add)
	b.constI32(2)
	b.op(opI32Shl)
	b.op(opI32Add)
}

// pushBitPos pushes (xParam + xLocal) & 31.
func (b *body) pushBitPos(xParam, xLocal byte) {
	b.localGet(xParam)
	b.localGet(xLocal)
	b.op(opI32Add)
	b.constI32(31)
	b.op(opI32And)
}

// GenerateBody emits the scalar BitBLT inner-loop opcode stream
// described in spec §4.3, encoded as a complete function body (locals
// declaration, code, final end). This is the always-correct path used
// whenever the alignment-fast variant (GenerateAlignedBody) either
// wasn't requested or doesn't apply.
func GenerateBody() []byte {
	b := &body{}

	// Prologue: stride words for both buffers.
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

	b.block() // outer break block
	b.loop()  // outer continue loop
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
		b.localSet(lX)

		b.block() // inner break block
		b.loop()  // inner continue loop
		{
			b.localGet(lX)
			b.localGet(pWidth)
			b.op(opI32LtU)
			b.op(opI32Eqz)
			b.brIf(1)

			b.emitPixel()

			b.localGet(lX)
			b.constI32(1)
			b.op(opI32Add)
			b.localSet(lX)
			b.br(0)
		}
		b.end() // inner loop
		b.end() // inner block

		b.localGet(lY)
		b.constI32(1)
		b.op(opI32Add)
		b.localSet(lY)
		b.br(0)
	}
	b.end() // outer loop
	b.end() // outer block
	b.op(opEnd)

	return encodeFunctionBody(b.code)
}

// emitPixel emits the body of the inner loop: read one source pixel,
// merge it into the addressed destination word, write it back.
func (b *body) emitPixel() {
	// srcBit = (mem[srcWordAddr] >>> ((srcX+x)&31)) & 1
	b.pushWordAddr(pSrcPtr, pSrcX, lX, lSrcYAbs, lSrcStrideWords)
	b.memLoad()
	b.pushBitPos(pSrcX, lX)
	b.op(opI32ShrU)
	b.constI32(1)
	b.op(opI32And)
	b.localSet(lSrcBit)

	// dstBitPos = (dstX+x)&31
	b.pushBitPos(pDstX, lX)
	b.localSet(lDstBitPos)

	// wordTmp = mem[dstWordAddr]
	b.pushWordAddr(pDstPtr, pDstX, lX, lDstYAbs, lDstStrideWords)
	b.memLoad()
	b.localSet(lWordTmp)

	b.localGet(lSrcBit)
	b.op(opIf)
	b.op(blockTypeVoid)
	{
		b.localGet(lWordTmp)
		b.constI32(1)
		b.localGet(lDstBitPos)
		b.op(opI32Shl)
		b.op(opI32Or)
		b.localSet(lWordTmp)
	}
	b.op(opElse)
	{
		b.localGet(lWordTmp)
		b.constI32(1)
		b.localGet(lDstBitPos)
		b.op(opI32Shl)
		b.constI32(-1)
		b.op(opI32Xor)
		b.op(opI32And)
		b.localSet(lWordTmp)
	}
	b.op(opEnd)

	// mem[dstWordAddr] = wordTmp
	b.pushWordAddr(pDstPtr, pDstX, lX, lDstYAbs, lDstStrideWords)
	b.localGet(lWordTmp)
	b.memStore()
}

// encodeFunctionBody wraps a raw opcode stream (which must already
// end in opEnd) with its locals declaration, producing the bytes one
// code-section entry holds.
func encodeFunctionBody(code []byte) []byte {
	// One group of numLocals i32 locals (they are declared
	// contiguously and share a type, so they compact into a single
	// group per spec's vec(locals) encoding).
	locals := encodeU(nil, 1)
	locals = encodeU(locals, uint64(numLocals))
	locals = append(locals, valI32)

	out := make([]byte, 0, len(locals)+len(code))
	out = append(out, locals...)
	out = append(out, code...)
	return out
}
