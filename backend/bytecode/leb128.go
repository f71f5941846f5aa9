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

// Package bytecode is the binary back-end (C2/C3): it assembles a
// complete, portable bytecode module implementing one BitBLT call and
// executes it through an embedded runtime. This file (C1) provides
// the primitive writers every higher-level emitter in the package
// builds on: LEB128 integer encoding, section framing and byte
// concatenation, in the style of vm/assembler.go's emitImmU* helpers.
package bytecode

// encodeU appends n to dst as unsigned LEB128: 7 data bits per byte,
// the high bit set on every byte but the last.
func encodeU(dst []byte, n uint64) []byte {
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			dst = append(dst, b|0x80)
		} else {
			dst = append(dst, b)
			return dst
		}
	}
}

// encodeS appends n to dst as signed LEB128 (two's complement, sign
// bit discipline on the final byte).
func encodeS(dst []byte, n int64) []byte {
	more := true
	for more {
		b := byte(n & 0x7f)
		n >>= 7
		signBitSet := b&0x40 != 0
		if (n == 0 && !signBitSet) || (n == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst
}

// decodeU reads an unsigned LEB128 integer starting at buf[0] and
// returns its value and the number of bytes consumed.
func decodeU(buf []byte) (uint64, int) {
	var result uint64
	var shift uint
	for i, b := range buf {
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, i + 1
		}
		shift += 7
	}
	return result, len(buf)
}

// decodeS reads a signed LEB128 integer starting at buf[0] and
// returns its value and the number of bytes consumed.
func decodeS(buf []byte) (int64, int) {
	var result int64
	var shift uint
	var b byte
	i := 0
	for {
		b = buf[i]
		result |= int64(b&0x7f) << shift
		shift += 7
		i++
		if b&0x80 == 0 {
			break
		}
	}
	if shift < 64 && b&0x40 != 0 {
		result |= -1 << shift
	}
	return result, i
}

// encodeVector prefixes contents with its element count as a ULEB128,
// the vec(T) encoding every bytecode section uses.
func encodeVector(count int, contents []byte) []byte {
	out := encodeU(nil, uint64(count))
	return append(out, contents...)
}

// encodeSection frames contents as section id, then the ULEB128 byte
// length of contents, then contents itself.
func encodeSection(id byte, contents []byte) []byte {
	out := []byte{id}
	out = encodeU(out, uint64(len(contents)))
	return append(out, contents...)
}

// encodeName encodes a UTF-8 string as a length-prefixed byte vector,
// the form used for import/export names.
func encodeName(s string) []byte {
	return encodeVector(len(s), []byte(s))
}
