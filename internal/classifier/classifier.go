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

// Package classifier holds a named, ordered collection of lz78tree
// Trees and dispatches queries to all of them, picking the
// lowest-scoring match.
package classifier

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/SharonLab/GeneZip/internal/fastareader"
	"github.com/SharonLab/GeneZip/internal/lz78tree"
	"github.com/SharonLab/GeneZip/internal/manifest"
)

// Classifier is an ordered, append-only sequence of (name -> Tree)
// entries. Order is insertion order and determines the output TSV's
// column order.
type Classifier struct {
	runID uuid.UUID
	names []string
	trees []*lz78tree.Tree
	index map[string]int
}

// New creates an empty Classifier, stamped with a fresh run ID for
// correlating its progress across log lines.
func New() *Classifier {
	return &Classifier{
		runID: uuid.New(),
		index: make(map[string]int),
	}
}

// RunID identifies this Classifier instance across a batch of adds and
// predictions, for logging/correlation purposes only.
func (c *Classifier) RunID() uuid.UUID { return c.runID }

// Add builds name's model from the FASTA file at path, creating the
// model with the given depth cap if it doesn't exist yet, or
// extending its existing tree (accumulating structure) if it does.
func (c *Classifier) Add(name, path string, maxDepth int) error {
	if i, ok := c.index[name]; ok {
		return c.trees[i].Build(path)
	}
	tr, err := lz78tree.NewTree(name, maxDepth)
	if err != nil {
		return fmt.Errorf("creating model %q: %w", name, err)
	}
	if err := tr.Build(path); err != nil {
		return fmt.Errorf("building model %q from %s: %w", name, path, err)
	}
	c.index[name] = len(c.trees)
	c.names = append(c.names, name)
	c.trees = append(c.trees, tr)
	return nil
}

// BatchAdd reads a tab-separated manifest (cluster_name \t fasta_path
// per line) and calls Add for each entry, in file order.
func (c *Classifier) BatchAdd(manifestPath string, maxDepth int) error {
	entries, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := c.Add(e.Name, e.Path, maxDepth); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of models currently held.
func (c *Classifier) Len() int { return len(c.trees) }

// Predict scores queryPath against every model, writes a TSV row
// (query name, then one score per model in insertion order, then the
// best model's name) to w, and returns the winning model's name. Ties
// are broken by lowest insertion index, matching the reference.
func (c *Classifier) Predict(w io.Writer, queryName, queryPath string) (string, error) {
	if len(c.trees) == 0 {
		return "", fmt.Errorf("classifier: no models to predict against")
	}

	r, err := fastareader.Open(queryPath)
	if err != nil {
		return "", err
	}
	defer r.Close()

	if _, err := fmt.Fprint(w, queryName); err != nil {
		return "", err
	}

	bestIdx := 0
	bestScore := float64(10000)
	for i, tr := range c.trees {
		score, scoreErr := tr.Score(r)
		if scoreErr != nil && scoreErr != lz78tree.ErrEmptyQuery {
			return "", scoreErr
		}
		if _, err := fmt.Fprintf(w, "\t%.6f", score); err != nil {
			return "", err
		}
		if score < bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if _, err := fmt.Fprintf(w, "\t%s\n", c.names[bestIdx]); err != nil {
		return "", err
	}
	return c.names[bestIdx], nil
}

// PrintHeader writes the output TSV's header line: Genome_name, then
// one tab-prefixed column per model in insertion order, then
// Best_hit.
func (c *Classifier) PrintHeader(w io.Writer) error {
	if _, err := fmt.Fprint(w, "Genome_name"); err != nil {
		return err
	}
	for _, name := range c.names {
		if _, err := fmt.Fprintf(w, "\t%s", name); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, "\tBest_hit\n")
	return err
}

// PrintStats writes per-model statistics, in the same shape as the
// reference's ClassifierPrintStats.
func (c *Classifier) PrintStats(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "\nNumber of models: %d\nsome stats for each model:\n\n", len(c.trees)); err != nil {
		return err
	}
	for _, tr := range c.trees {
		if _, err := fmt.Fprintln(w, "--------------------------------------------------"); err != nil {
			return err
		}
		if err := tr.Stats(w); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
