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

//go:build unix

package fastareader

import (
	"os"

	"golang.org/x/sys/unix"
)

// mmapRegion backs a Reader with a read-only mmap of the file instead
// of a heap copy. Training and query files are tens to hundreds of MB;
// mmap lets the kernel page the file in lazily and share it across
// however many Tree.Score passes run against it.
type mmapRegion struct {
	data []byte
}

func (m mmapRegion) Close() error {
	if m.data == nil {
		return nil
	}
	return unix.Munmap(m.data)
}

func load(path string) ([]byte, closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	if fi.Size() == 0 {
		// mmap of a zero-length file is an error; an empty file
		// just yields zero lines.
		return nil, noopCloser{}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(fi.Size()), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, err
	}
	return data, mmapRegion{data: data}, nil
}
