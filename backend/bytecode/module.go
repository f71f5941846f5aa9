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

// memMinPages / memMaxPages bound the module's single linear memory: 1
// page (64 KiB) minimum, 16 pages (1 MiB) maximum, enough headroom for
// the buffer sizes the dispatcher stages into it (see ensureCapacity in
// runtime.go for the MemoryCapacity handling).
const (
	memMinPages = 1
	memMaxPages = 16
)

// AssembleModule builds a complete bytecode module exporting a single
// "bitblt" function of type (11 x i32) -> () over the given body, and
// importing "env.memory" with the requested sharing mode. Sections
// appear in strictly increasing id order (Property 5).
func AssembleModule(fnBody []byte, sharedMemory bool) []byte {
	var out []byte
	out = append(out, magic...)
	out = append(out, version...)

	out = append(out, emitTypeSection()...)
	out = append(out, emitImportSection(sharedMemory)...)
	out = append(out, emitFunctionSection()...)
	out = append(out, emitExportSection()...)
	out = append(out, emitCodeSection(fnBody)...)

	return out
}

func emitTypeSection() []byte {
	var params []byte
	for i := 0; i < int(numParams); i++ {
		params = append(params, valI32)
	}

	var sig []byte
	sig = append(sig, funcTypeTag)
	sig = append(sig, encodeVector(len(params), params)...)
	sig = append(sig, encodeVector(0, nil)...) // no results

	return encodeSection(sectionType, encodeVector(1, sig))
}

func emitImportSection(sharedMemory bool) []byte {
	var limits []byte
	if sharedMemory {
		limits = append(limits, limitsSharedMinMax)
	} else {
		limits = append(limits, limitsMinMax)
	}
	limits = encodeU(limits, memMinPages)
	limits = encodeU(limits, memMaxPages)

	var imp []byte
	imp = append(imp, encodeName("env")...)
	imp = append(imp, encodeName("memory")...)
	imp = append(imp, kindMem)
	imp = append(imp, limits...)

	return encodeSection(sectionImport, encodeVector(1, imp))
}

func emitFunctionSection() []byte {
	// One function, referencing type index 0.
	contents := encodeU(nil, 0)
	return encodeSection(sectionFunction, encodeVector(1, contents))
}

func emitExportSection() []byte {
	var exp []byte
	exp = append(exp, encodeName("bitblt")...)
	exp = append(exp, kindFunc)
	exp = encodeU(exp, 0) // function index 0 (no imported functions precede it)

	return encodeSection(sectionExport, encodeVector(1, exp))
}

func emitCodeSection(fnBody []byte) []byte {
	entry := encodeU(nil, uint64(len(fnBody)))
	entry = append(entry, fnBody...)
	return encodeSection(sectionCode, encodeVector(1, entry))
}
