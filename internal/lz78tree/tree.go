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

// Package lz78tree implements the per-cluster LZ78-style context tree:
// a bit-packed 4-ary prefix tree over the DNA alphabet {A,C,G,T}, built
// by streaming a FASTA file and scored by walking a query FASTA file
// against the tree's learned structure.
package lz78tree

import (
	"errors"
	"fmt"
	"io"
	"math"

	"golang.org/x/crypto/blake2b"

	"github.com/SharonLab/GeneZip/internal/fastareader"
	"github.com/SharonLab/GeneZip/internal/ints"
)

// MaxDepth is the hard ceiling on a tree's depth: at 17, the bit array
// already needs roughly 0.7 GiB, and going higher is impractical.
const MaxDepth = 17

// ErrInvalidDepth is returned by NewTree when maxDepth is outside [1, MaxDepth].
var ErrInvalidDepth = errors.New("lz78tree: max depth must be between 1 and 17")

// ErrEmptyQuery marks a Score call that closed zero phrases; see Score's
// documentation for the policy this implements.
var ErrEmptyQuery = errors.New("lz78tree: query closed no phrases")

// Tree is a bit-packed LZ78-style context tree for one cluster. The
// zero value is not usable; build one with NewTree. A Tree is safe for
// concurrent Score calls once Build has stopped running against it,
// but Build and Score must not run concurrently with each other.
type Tree struct {
	name     string
	maxDepth int

	bits []byte // MSB-first bit array; 1 = promoted to inner node
	base []int  // base[d] = cumulative inner-node slots for depths 1..d

	nodesAtDepth []int // nodesAtDepth[d], d in [0, maxDepth-1]
	leafCount    int
	fullDepth    int
}

// NewTree allocates a Tree named name with the given depth cap.
func NewTree(name string, maxDepth int) (*Tree, error) {
	if maxDepth < 1 || maxDepth > MaxDepth {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDepth, maxDepth)
	}

	base := make([]int, maxDepth)
	pow4 := 1
	for d := 1; d < maxDepth; d++ {
		pow4 *= 4
		base[d] = base[d-1] + pow4
	}
	totalSlots := base[maxDepth-1]
	nbytes := ints.AlignUp(uint64(totalSlots), 8) / 8

	nodesAtDepth := make([]int, maxDepth)
	nodesAtDepth[0] = 1 // the implicit root is always inner

	return &Tree{
		name:         name,
		maxDepth:     maxDepth,
		bits:         make([]byte, nbytes),
		base:         base,
		nodesAtDepth: nodesAtDepth,
		leafCount:    4,
		fullDepth:    0,
	}, nil
}

// Name returns the tree's name.
func (t *Tree) Name() string { return t.name }

// MaxDepth returns the depth cap the tree was created with.
func (t *Tree) MaxDepth() int { return t.maxDepth }

// LeafCount returns the tree's current total leaf count.
func (t *Tree) LeafCount() int { return t.leafCount }

// TotalInnerNodes returns the number of inner nodes in the tree,
// including the implicit root.
func (t *Tree) TotalInnerNodes() int {
	n := 0
	for d := 0; d < t.maxDepth; d++ {
		n += t.nodesAtDepth[d]
	}
	return n
}

// MaxCompleteDepth returns full_depth: the largest depth at which every
// possible node is inner.
func (t *Tree) MaxCompleteDepth() int { return t.fullDepth }

// LongestRootToLeaf returns the smallest depth with zero inner nodes,
// i.e. the longest root-to-leaf path the tree currently has.
func (t *Tree) LongestRootToLeaf() int {
	for d := 0; d < t.maxDepth; d++ {
		if t.nodesAtDepth[d] == 0 {
			return d
		}
	}
	return t.maxDepth
}

func bitSet(bits []byte, slot int) bool {
	return bits[slot>>3]&(128>>(uint(slot)&7)) != 0
}

func setBit(bits []byte, slot int) {
	bits[slot>>3] |= 128 >> (uint(slot) & 7)
}

// walkState mirrors the C struct's two locals threaded through both
// Build and Score: curr_depth (1-based depth of the next node to
// insert/visit) and curr_index (the partial path accumulator).
type walkState struct {
	depth int
	index int
}

func (w *walkState) reset() {
	w.depth = 1
	w.index = 0
}

// normalize upper-cases an ASCII letter the same way the reference
// does: any byte >= 'a' has 32 subtracted, with no further validation.
func normalize(b byte) byte {
	if b >= 'a' {
		b -= 32
	}
	return b
}

// trimTrailingNewline drops one trailing '\n', matching the reference's
// "buf may or may not end with \n" handling.
func trimTrailingNewline(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		return line[:n-1]
	}
	return line
}

// isBreak reports whether a raw (pre-normalization) line starts a path
// break: a FASTA header or an empty line.
func isBreak(line []byte) bool {
	return len(line) == 0 || line[0] == '>' || line[0] == '\n'
}

// Build parses the FASTA file at path and grows the tree. Build may be
// called more than once on the same Tree to accumulate structure
// across files; each call resets the walk state at its start, so two
// builds are equivalent to one build over the concatenation only when
// the second file begins with a header, an empty line, or an 'N'.
func (t *Tree) Build(path string) error {
	r, err := fastareader.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	var w walkState
	w.reset()

	var buf []byte
	for {
		var n int
		buf, n = r.NextLine(buf)
		if n == 0 {
			break
		}
		if isBreak(buf) {
			w.reset()
			continue
		}
		body := trimTrailingNewline(buf)
		for _, raw := range body {
			b := normalize(raw)
			if b == 'N' {
				w.reset()
				continue
			}
			s := int(b>>1) & 3
			w.index |= s

			if w.depth > t.maxDepth-1 {
				// Only reachable when maxDepth == 1.
				w.reset()
				continue
			}

			slot := t.base[w.depth-1] + w.index
			if !bitSet(t.bits, slot) {
				setBit(t.bits, slot)
				t.nodesAtDepth[w.depth]++
				t.leafCount += 3
				w.reset()
				continue
			}

			if w.depth == t.maxDepth-1 {
				w.reset()
			} else {
				w.index <<= 2
				w.depth++
			}
		}
	}

	t.recomputeFullDepth()
	return nil
}

func (t *Tree) recomputeFullDepth() {
	full := 0
	for full+1 < t.maxDepth && t.nodesAtDepth[full+1] == fullWidth(full) {
		full++
	}
	t.fullDepth = full
}

// fullWidth returns 4^(d+1), the number of possible nodes at depth d+1
// (i.e. how many nodes nodesAtDepth[d+1] would hold if every path to
// that depth were present).
func fullWidth(d int) int {
	return 4 << uint(2*d)
}

// Score computes the average log2-loss of the sequences in r against
// t. r is rewound before scoring and left rewound-then-advanced after
// (callers that need to reuse r for another model should not assume
// any particular end position; Rewind it again before the next Score
// call, exactly as before this one).
//
// Per the reference implementation, a query that closes zero phrases
// divides a zero numerator by a zero denominator and the result is an
// IEEE-754 NaN; Score reproduces that value (and reports ErrEmptyQuery
// alongside it) rather than inventing a different sentinel, so argmin
// over several models' scores keeps the reference's "first model wins
// on an empty query" tie-break (NaN compares false against every <).
func (t *Tree) Score(r *fastareader.Reader) (float64, error) {
	r.Rewind()

	var w walkState
	w.reset()

	var nchars, actualNChars, leafCountQuery int

	var buf []byte
	for {
		var n int
		buf, n = r.NextLine(buf)
		if n == 0 {
			break
		}
		if isBreak(buf) {
			w.reset()
			continue
		}
		body := trimTrailingNewline(buf)
		for _, raw := range body {
			b := normalize(raw)
			if b == 'N' {
				w.reset()
				continue
			}
			s := int(b>>1) & 3
			nchars++
			w.index |= s

			slot := t.base[w.depth-1] + w.index
			descend := w.depth <= t.fullDepth ||
				(w.depth < t.maxDepth && bitSet(t.bits, slot))
			if descend {
				w.index <<= 2
				w.depth++
			} else {
				leafCountQuery++
				actualNChars = nchars
				w.reset()
			}
		}
	}

	score := math.Log2(float64(t.leafCount)) * float64(leafCountQuery) / float64(actualNChars)
	if actualNChars == 0 {
		return score, ErrEmptyQuery
	}
	return score, nil
}

// Fingerprint returns a blake2b-256 digest of the tree's bit array and
// shape counters. Two Trees built from byte-identical inputs produce
// identical fingerprints; this is for comparison and logging only —
// there is no corresponding Load, by design (see Non-goals).
func (t *Tree) Fingerprint() [32]byte {
	h, _ := blake2b.New256(nil)
	h.Write(t.bits)
	for _, n := range t.nodesAtDepth {
		var b [8]byte
		putUint64(b[:], uint64(n))
		h.Write(b[:])
	}
	var d [32]byte
	copy(d[:], h.Sum(nil))
	return d
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// Stats writes a human-readable report: name, bit-array size, inner
// node count, full/longest depths, and a per-depth breakdown, in the
// same shape as the reference's LZ78WriteStats.
func (t *Tree) Stats(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Name:                      %s\n"+
		"Node array size:           %d\n"+
		"Number of inner nodes:     %d\n"+
		"Max complete depth:        %d\n"+
		"Longest path (root->leaf): %d\n"+
		"Number of inner node in each depth (%% of possible nodes):\n"+
		"Depth\tNNodes\tNFull\t%% of full\n"+
		"0\t1\t1\t100.0\n",
		t.name, len(t.bits), t.TotalInnerNodes(), t.fullDepth, t.LongestRootToLeaf())
	if err != nil {
		return err
	}
	for d := 1; d < t.maxDepth; d++ {
		full := fullWidth(d - 1)
		pct := 100.0 * float64(t.nodesAtDepth[d]) / float64(full)
		if _, err := fmt.Fprintf(w, "%d\t%d\t%d\t%.1f\n", d, t.nodesAtDepth[d], full, pct); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "\nNumber of leaves:\t%d\n", t.leafCount)
	return err
}
