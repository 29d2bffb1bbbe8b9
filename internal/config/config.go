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

// Package config describes the optional YAML run-configuration
// document accepted alongside (or instead of) the CLI's -i/-t/-o/-d
// flags.
package config

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// maxConfigSize bounds how large a config document we'll decode.
const maxConfigSize = 1 << 20

// Run describes one training+prediction run.
type Run struct {
	// MaxDepth is the context tree depth cap. Zero means "not set in
	// this document"; the CLI default (13) applies.
	MaxDepth int `json:"maxDepth,omitempty"`
	// Training is the path to the training manifest.
	Training string `json:"training,omitempty"`
	// Query is the path to the query manifest.
	Query string `json:"query,omitempty"`
	// Output is the path to the output TSV (optionally .gz).
	Output string `json:"output,omitempty"`
}

// Load decodes a Run from a YAML (or JSON, which is a YAML subset)
// document at path.
func Load(path string) (*Run, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening config %s: %w", path, err)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config %s of size %d exceeds limit %d", path, info.Size(), maxConfigSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	r := new(Run)
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return r, nil
}

// Merge overlays non-zero fields from override onto r, used so CLI
// flags (override) win over a config file's values (r).
func (r *Run) Merge(override Run) *Run {
	out := *r
	if override.MaxDepth != 0 {
		out.MaxDepth = override.MaxDepth
	}
	if override.Training != "" {
		out.Training = override.Training
	}
	if override.Query != "" {
		out.Query = override.Query
	}
	if override.Output != "" {
		out.Output = override.Output
	}
	return &out
}
