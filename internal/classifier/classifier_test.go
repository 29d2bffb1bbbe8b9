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

package classifier

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFasta(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "f.fa")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return p
}

func repeat(pattern string, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(pattern)
	}
	return b.String()
}

// S5: best-of-two prediction.
func TestPredictBestOfTwo(t *testing.T) {
	atPath := writeFasta(t, repeat("AT", 200)+"\n")
	gcPath := writeFasta(t, repeat("GC", 200)+"\n")

	c := New()
	if err := c.Add("T_AT", atPath, 6); err != nil {
		t.Fatalf("Add T_AT: %v", err)
	}
	if err := c.Add("T_GC", gcPath, 6); err != nil {
		t.Fatalf("Add T_GC: %v", err)
	}

	queryPath := writeFasta(t, repeat("AT", 50)+"\n")
	var buf bytes.Buffer
	best, err := c.Predict(&buf, "query1", queryPath)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if best != "T_AT" {
		t.Errorf("best = %q, want T_AT", best)
	}
	if !strings.Contains(buf.String(), "query1\t") {
		t.Errorf("output row missing query name: %q", buf.String())
	}
}

// S6: duplicate cluster names merge into one tree.
func TestBatchAddMergesDuplicateNames(t *testing.T) {
	fileA := writeFasta(t, "ACGT\n")
	fileB := writeFasta(t, "TTTT\n")
	fileC := writeFasta(t, "GGGG\n")

	manifestContent := "cluster1\t" + fileA + "\n" +
		"cluster1\t" + fileB + "\n" +
		"cluster2\t" + fileC + "\n"
	mPath := filepath.Join(t.TempDir(), "train.tsv")
	if err := os.WriteFile(mPath, []byte(manifestContent), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c := New()
	if err := c.BatchAdd(mPath, 4); err != nil {
		t.Fatalf("BatchAdd: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if c.names[0] != "cluster1" || c.names[1] != "cluster2" {
		t.Errorf("names = %v, want [cluster1 cluster2]", c.names)
	}
}

func TestPrintHeaderOrderAndShape(t *testing.T) {
	c := New()
	if err := c.Add("B", writeFasta(t, "AC\n"), 3); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := c.Add("A", writeFasta(t, "GT\n"), 3); err != nil {
		t.Fatalf("Add: %v", err)
	}
	var buf bytes.Buffer
	if err := c.PrintHeader(&buf); err != nil {
		t.Fatalf("PrintHeader: %v", err)
	}
	want := "Genome_name\tB\tA\tBest_hit\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestPredictNoModelsErrors(t *testing.T) {
	c := New()
	var buf bytes.Buffer
	_, err := c.Predict(&buf, "q", writeFasta(t, "AC\n"))
	if err == nil {
		t.Fatal("expected an error predicting with no models")
	}
}

func TestBatchAddBadManifestLineIsFatal(t *testing.T) {
	mPath := filepath.Join(t.TempDir(), "bad.tsv")
	if err := os.WriteFile(mPath, []byte("no-tab-here\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	c := New()
	if err := c.BatchAdd(mPath, 4); err == nil {
		t.Fatal("expected an error for a malformed manifest line")
	}
}
