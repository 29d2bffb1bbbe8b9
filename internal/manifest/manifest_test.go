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

package manifest

import (
	"strings"
	"testing"
)

func TestParseOrderAndFields(t *testing.T) {
	in := "cluster1\tfileA.fa\ncluster1\tfileB.fa\ncluster2\tfileC.fa\n"
	entries, err := parse(strings.NewReader(in), "manifest.tsv")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []Entry{
		{Name: "cluster1", Path: "fileA.fa"},
		{Name: "cluster1", Path: "fileB.fa"},
		{Name: "cluster2", Path: "fileC.fa"},
	}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d: got %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestParseSkipsBlankLines(t *testing.T) {
	in := "a\tfa1\n\nb\tfa2\n"
	entries, err := parse(strings.NewReader(in), "manifest.tsv")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
}

func TestParseMissingTabIsFatal(t *testing.T) {
	in := "a\tfa1\nno-tab-here\nb\tfa2\n"
	_, err := parse(strings.NewReader(in), "manifest.tsv")
	if err == nil {
		t.Fatal("expected an error for a line with no tab")
	}
	perr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("got %T, want *ParseError", err)
	}
	if perr.Line != 2 {
		t.Errorf("got line %d, want 2", perr.Line)
	}
}

func TestParseNoTrailingNewline(t *testing.T) {
	in := "a\tfa1"
	entries, err := parse(strings.NewReader(in), "manifest.tsv")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "fa1" {
		t.Fatalf("got %+v", entries)
	}
}
