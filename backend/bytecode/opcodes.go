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

// Module header.
var (
	magic   = []byte{0x00, 0x61, 0x73, 0x6d} // "\0asm"
	version = []byte{0x01, 0x00, 0x00, 0x00}
)

// Section id tags, in increasing id order. The module assembler emits
// them in this order and emits no memory section (memory is imported).
const (
	sectionType     byte = 1
	sectionImport   byte = 2
	sectionFunction byte = 3
	sectionMemory   byte = 5
	sectionExport   byte = 7
	sectionCode     byte = 10
)

// Value type tags.
const (
	valI32 byte = 0x7f
)

const funcTypeTag byte = 0x60
const blockTypeVoid byte = 0x40

// Import/export kind tags.
const (
	kindFunc byte = 0x00
	kindMem  byte = 0x02
)

// Memory limits flags.
const (
	limitsMinOnly    byte = 0x00
	limitsMinMax     byte = 0x01
	limitsSharedMinMax byte = 0x03
)

// Control-flow opcodes.
const (
	opBlock byte = 0x02
	opLoop  byte = 0x03
	opIf    byte = 0x04
	opElse  byte = 0x05
	opEnd   byte = 0x0b
	opBr    byte = 0x0c
	opBrIf  byte = 0x0d
)

// Variable access opcodes.
const (
	opLocalGet byte = 0x20
	opLocalSet byte = 0x21
	opLocalTee byte = 0x22
)

// Memory opcodes. Both take (align, offset) as ULEB128 immediates;
// this module always uses align=2 (4-byte, i.e. word) and offset=0,
// folding any byte offset into the computed address instead.
const (
	opI32Load  byte = 0x28
	opI32Store byte = 0x36
)

// Constants.
const opI32Const byte = 0x41

// i32 comparison opcodes.
const (
	opI32Eqz byte = 0x45
	opI32Eq  byte = 0x46
	opI32Ne  byte = 0x47
	opI32LtU byte = 0x49
	opI32GeU byte = 0x4f
)

// i32 arithmetic/logic opcodes.
const (
	opI32Add  byte = 0x6a
	opI32Sub  byte = 0x6b
	opI32Mul  byte = 0x6c
	opI32And  byte = 0x71
	opI32Or   byte = 0x72
	opI32Xor  byte = 0x73
	opI32Shl  byte = 0x74
	opI32ShrS byte = 0x75
	opI32ShrU byte = 0x76
	opI32Rotl byte = 0x77
	opI32Rotr byte = 0x78
)
