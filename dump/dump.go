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

// Package dump is the debug dump writer the dispatcher reaches for
// when compiler_flags.debug is set: the generated source or assembled
// module bytes for a specialization, zstd-compressed, named by
// fingerprint and a per-dump uuid so repeated dumps of the same
// fingerprint never collide. It mirrors compr.Compressor's
// wrap-an-io.Writer shape.
package dump

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/nullptr-eng/bitblt/specialize"
)

// Writer writes zstd-compressed artifact dumps under Dir. The zero
// value is not usable; construct with NewWriter.
type Writer struct {
	Dir string
}

// NewWriter returns a Writer rooted at dir, creating it if necessary.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("dump: creating dump directory %q: %w", dir, err)
	}
	return &Writer{Dir: dir}, nil
}

// Write compresses body and writes it to a file named from
// fingerprint's short tag, kind ("src" or "module"), and a fresh
// uuid, returning the path written.
func (w *Writer) Write(fingerprint, kind string, body []byte) (string, error) {
	name := fmt.Sprintf("%s.%s.%s.zst", specialize.ShortTag(fingerprint), kind, uuid.New().String())
	path := filepath.Join(w.Dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("dump: creating %q: %w", path, err)
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return "", fmt.Errorf("dump: starting zstd encoder: %w", err)
	}
	if _, err := enc.Write(body); err != nil {
		enc.Close()
		return "", fmt.Errorf("dump: writing %q: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("dump: closing %q: %w", path, err)
	}
	return path, nil
}
