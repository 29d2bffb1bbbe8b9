// Copyright (C) 2022 Sneller, Inc.
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

// Package runlog prints the driver's timestamped progress lines
// (Starting/Training/Predicting/Done) to stderr, replacing the
// original's hand-rolled asctime formatting. It is deliberately kept
// out of internal/lz78tree and internal/classifier — the core engine
// has no opinion about logging, only the cmd/genezip driver does.
package runlog

import (
	"fmt"
	"io"
	"time"
)

// Log writes phase and verbose progress lines to w.
type Log struct {
	w       io.Writer
	verbose bool
}

// New returns a Log writing to w. When verbose is false, Phase still
// prints but Verbosef is silent.
func New(w io.Writer, verbose bool) *Log {
	return &Log{w: w, verbose: verbose}
}

// Phase announces a named stage of the run ("Starting", "Training",
// "Predicting", "Done"), each stamped with the current local time.
func (l *Log) Phase(name string) {
	fmt.Fprintf(l.w, "%s\t%s\n", time.Now().Format(time.ANSIC), name)
}

// Verbosef prints a formatted progress line only when verbose logging
// is enabled (-v).
func (l *Log) Verbosef(format string, args ...any) {
	if !l.verbose {
		return
	}
	fmt.Fprintf(l.w, format+"\n", args...)
}

// Errorf prints a fatal error line to w, for the driver to call before
// exiting non-zero.
func (l *Log) Errorf(format string, args ...any) {
	fmt.Fprintf(l.w, format+"\n", args...)
}
