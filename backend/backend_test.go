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

package backend

import (
	"errors"
	"testing"

	"github.com/nullptr-eng/bitblt/bberr"
)

func TestNewUnknownBackEnd(t *testing.T) {
	_, err := New("not-a-real-backend")
	if !errors.Is(err, bberr.ErrUnknownBackEnd) {
		t.Fatalf("got err %v, want ErrUnknownBackEnd", err)
	}
}

func TestRegisterAndNew(t *testing.T) {
	Register("test-only-fake", func() (Backend, error) { return nil, nil })
	if _, err := New("test-only-fake"); err != nil {
		t.Fatalf("New(registered name) failed: %s", err)
	}
}

func TestAliasesResolveToRegisteredNames(t *testing.T) {
	Register("test-alias-target", func() (Backend, error) { return nil, nil })
	aliases["test-alias-source"] = "test-alias-target"
	if _, err := New("test-alias-source"); err != nil {
		t.Fatalf("New(aliased name) failed: %s", err)
	}
}
