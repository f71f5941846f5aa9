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

// Package bberr holds the error kinds shared by the dispatcher, the
// back-ends and the oracle, so that every package can produce and
// every caller can match them with errors.Is / errors.As without an
// import cycle back through the engine package.
package bberr

import (
	"errors"
	"fmt"
)

// Sentinel error kinds, per the dispatch error-handling design.
var (
	// ErrUnknownBackEnd is returned by the back-end factory when asked
	// for a name it doesn't recognize. Fatal to the call.
	ErrUnknownBackEnd = errors.New("bitblt: unknown back-end")

	// ErrGenerationFailure means the emitter produced a malformed
	// artifact (textual parse failure or binary module validation
	// failure). The specialization is never cached.
	ErrGenerationFailure = errors.New("bitblt: generation failure")

	// ErrInstantiationFailure means the binary runtime rejected the
	// module at instantiate time.
	ErrInstantiationFailure = errors.New("bitblt: instantiation failure")

	// ErrMemoryCapacity means the binary artifact's linear memory
	// cannot hold both buffers and the runtime can't grow it.
	ErrMemoryCapacity = errors.New("bitblt: memory capacity exceeded")

	// ErrOutOfRange means a coordinate places the copy rectangle
	// outside a buffer. Raised before any write.
	ErrOutOfRange = errors.New("bitblt: copy rectangle out of range")

	// ErrUnsupported means a back-end's preconditions (e.g. shared
	// memory support for aligned-binary) are not met. The dispatcher
	// may fall back to another back-end when it sees this.
	ErrUnsupported = errors.New("bitblt: back-end preconditions not met")
)

// VerificationMismatch reports the first pixel where a specialized
// call's output differs from the oracle's, scanned row-major.
type VerificationMismatch struct {
	X, Y           int
	Expected, Actual uint32
}

func (e *VerificationMismatch) Error() string {
	return fmt.Sprintf("bitblt: verification mismatch at (%d,%d): expected %d, got %d",
		e.X, e.Y, e.Expected, e.Actual)
}

// OutOfRange wraps ErrOutOfRange with the offending rectangle so
// callers get actionable detail while still matching errors.Is(err,
// ErrOutOfRange).
type OutOfRange struct {
	Which        string // "src" or "dst"
	W, H, X, Y, RW, RH int
}

func (e *OutOfRange) Error() string {
	return fmt.Sprintf("bitblt: %s rectangle (%d,%d)+(%d,%d) out of range for %dx%d buffer",
		e.Which, e.X, e.Y, e.RW, e.RH, e.W, e.H)
}

func (e *OutOfRange) Unwrap() error { return ErrOutOfRange }
