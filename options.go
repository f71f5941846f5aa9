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

// Option overrides one Config field. The same Option type configures
// both a long-lived Engine (NewEngine) and a single Transfer call
// (which applies its options to a copy of the engine/global config,
// per spec §6's "options may override any configuration field for
// this call").
type Option func(*Config)

// WithVerify toggles oracle shadow-verification.
func WithVerify(v bool) Option { return func(c *Config) { c.Verify = v } }

// WithUseSpecialized toggles whether specialization runs at all; when
// false the oracle is called directly.
func WithUseSpecialized(v bool) Option { return func(c *Config) { c.UseSpecialized = v } }

// WithAnalyze toggles whether the operation analyzer runs before
// dispatch.
func WithAnalyze(v bool) Option { return func(c *Config) { c.Analyze = v } }

// WithAutospecialize toggles whether the analyzer's flags are merged
// into the specialization parameters (changing the fingerprint).
func WithAutospecialize(v bool) Option { return func(c *Config) { c.Autospecialize = v } }

// WithBackEnd selects the back-end by name ("textual", "binary",
// "aligned-binary", or a registered alias).
func WithBackEnd(name string) Option { return func(c *Config) { c.BackEnd = name } }

// WithLogPerf toggles the one-line-per-call performance log.
func WithLogPerf(v bool) Option { return func(c *Config) { c.LogPerf = v } }

// WithCompilerFlags replaces the compiler flag set wholesale.
func WithCompilerFlags(f CompilerFlags) Option { return func(c *Config) { c.Compiler = f } }

// WithDumpDir sets the directory debug dumps are written under when
// Compiler.Debug is set.
func WithDumpDir(dir string) Option { return func(c *Config) { c.DumpDir = dir } }
