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

package bberr

import (
	"errors"
	"fmt"
	"testing"
)

func TestOutOfRangeMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &OutOfRange{Which: "src", W: 8, H: 8, X: 1, Y: 1, RW: 4, RH: 4})
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatal("errors.Is did not match ErrOutOfRange through OutOfRange.Unwrap")
	}
	var oor *OutOfRange
	if !errors.As(err, &oor) {
		t.Fatal("errors.As did not extract *OutOfRange")
	}
	if oor.Which != "src" {
		t.Fatalf("Which = %q, want %q", oor.Which, "src")
	}
}

func TestVerificationMismatchMessage(t *testing.T) {
	err := &VerificationMismatch{X: 3, Y: 4, Expected: 1, Actual: 0}
	msg := err.Error()
	if msg == "" {
		t.Fatal("empty error message")
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrUnknownBackEnd, ErrGenerationFailure, ErrInstantiationFailure,
		ErrMemoryCapacity, ErrOutOfRange, ErrUnsupported,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Fatalf("sentinel %d unexpectedly matches sentinel %d", i, j)
			}
		}
	}
}
