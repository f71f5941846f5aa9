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

package bitblt

import "sync/atomic"

// CompilerFlags are the emitter-facing flags a back-end consults when
// specializing: unroll/inline_constants/align_opt shape the generated
// artifact, debug additionally logs/dumps it.
type CompilerFlags struct {
	Unroll          bool
	InlineConstants bool
	AlignOpt        bool
	Debug           bool
}

// Config is the global configuration record from spec §3: process-
// wide by default (see SetGlobalConfig/GlobalConfig below), but an
// Engine may hold its own value instead, per spec §9's stated
// preference for threading configuration explicitly. Reads during a
// call always see a whole Config snapshotted atomically, never a
// torn mix of old and new fields.
type Config struct {
	Verify         bool
	UseSpecialized bool
	Analyze        bool
	Autospecialize bool
	BackEnd        string
	LogPerf        bool
	Compiler       CompilerFlags

	// DumpDir, if non-empty and Compiler.Debug is set, is where
	// generated artifacts are written (see the dump package).
	DumpDir string
}

// DefaultConfig is the baseline configuration: specialization and
// analysis on, autospecialize and verification off, the textual
// back-end (no external runtime dependency to stand up), no logging.
func DefaultConfig() Config {
	return Config{
		UseSpecialized: true,
		Analyze:        true,
		Autospecialize: false,
		BackEnd:        "textual",
		Verify:         false,
		LogPerf:        false,
	}
}

var globalConfig atomic.Pointer[Config]

func init() {
	cfg := DefaultConfig()
	globalConfig.Store(&cfg)
}

// SetGlobalConfig replaces the process-wide configuration. Callers
// with in-flight operations observe either the pre- or post-update
// config, never a partial write, since the whole record is swapped in
// one atomic pointer store.
func SetGlobalConfig(cfg Config) {
	c := cfg
	globalConfig.Store(&c)
}

// GlobalConfig returns a snapshot of the process-wide configuration.
func GlobalConfig() Config {
	return *globalConfig.Load()
}
