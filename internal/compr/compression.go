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

// Package compr wraps the third-party compression library used for
// the output TSV when the caller asks for a compressed sink (an
// output path ending in ".gz").
package compr

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// CreateSink opens path for writing and, if path ends in ".gz", wraps
// it in a gzip writer so the caller can stream an uncompressed TSV
// through it transparently. Closing the returned WriteCloser flushes
// and closes both the gzip stream (if any) and the underlying file.
func CreateSink(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz := gzip.NewWriter(f)
	return &gzipSink{gz: gz, f: f}, nil
}

type gzipSink struct {
	gz *gzip.Writer
	f  *os.File
}

func (s *gzipSink) Write(p []byte) (int, error) {
	return s.gz.Write(p)
}

func (s *gzipSink) Close() error {
	if err := s.gz.Close(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}
