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

// Command genezip classifies genomic sequences against a set of
// reference clusters using per-cluster LZ78-style context trees. It
// reads a training manifest (cluster name -> FASTA path) to build one
// model per cluster, then scores every query in a query manifest
// against all of them and writes a TSV of per-model scores plus the
// best-matching cluster.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/SharonLab/GeneZip/internal/classifier"
	"github.com/SharonLab/GeneZip/internal/compr"
	"github.com/SharonLab/GeneZip/internal/config"
	"github.com/SharonLab/GeneZip/internal/manifest"
	"github.com/SharonLab/GeneZip/internal/runlog"
)

const (
	version          = "v1.00"
	defaultMaxDepth  = 13
	maxAllowableDeps = 17
)

var (
	dashI string
	dashT string
	dashO string
	dashD int
	dashC string
	dashV bool
	dashH bool
)

func init() {
	flag.StringVar(&dashI, "i", "", "training manifest: <cluster-name>\\t<fasta-path> per line")
	flag.StringVar(&dashT, "t", "", "query manifest: <query-name>\\t<fasta-path> per line")
	flag.StringVar(&dashO, "o", "", "output TSV path (\".gz\" suffix writes gzip-compressed output)")
	flag.IntVar(&dashD, "d", 0, fmt.Sprintf("max context tree depth, 1..%d (default %d)", maxAllowableDeps, defaultMaxDepth))
	flag.StringVar(&dashC, "c", "", "optional YAML run-configuration file; -i/-t/-o/-d override it")
	flag.BoolVar(&dashV, "v", false, "verbose progress logging")
	flag.BoolVar(&dashH, "h", false, "show usage and exit")
}

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f, args...)
	if len(f) == 0 || f[len(f)-1] != '\n' {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, "GeneZip, %s\n\n", version)
	fmt.Fprintf(os.Stderr, "usage: %s -i <training-manifest> -t <query-manifest> -o <output> [-d <max-depth>] [-c <config.yaml>] [-v]\n\n", os.Args[0])
	flag.PrintDefaults()
}

func resolveRun() *config.Run {
	run := &config.Run{}
	if dashC != "" {
		loaded, err := config.Load(dashC)
		if err != nil {
			exitf("Error (-c): %s", err)
		}
		run = loaded
	}
	run = run.Merge(config.Run{
		MaxDepth: dashD,
		Training: dashI,
		Query:    dashT,
		Output:   dashO,
	})
	if run.MaxDepth == 0 {
		run.MaxDepth = defaultMaxDepth
	}
	if run.Training == "" || run.Query == "" || run.Output == "" {
		fmt.Fprintln(os.Stderr, "Error: training (-i), query (-t) or output (-o) not specified")
		usage()
		os.Exit(1)
	}
	if run.MaxDepth < 1 || run.MaxDepth > maxAllowableDeps {
		exitf("Error (-d): illegal max_depth (%d), must be between 1 and %d", run.MaxDepth, maxAllowableDeps)
	}
	return run
}

func main() {
	flag.Parse()
	if dashH {
		usage()
		os.Exit(0)
	}
	run := resolveRun()

	out, err := compr.CreateSink(run.Output)
	if err != nil {
		exitf("Error: cannot create output file %s: %s", run.Output, err)
	}
	defer out.Close()

	log := runlog.New(os.Stderr, dashV)
	fmt.Fprintf(os.Stderr, "GeneZip, %s\n", version)
	log.Phase("Starting")

	c := classifier.New()
	log.Verbosef("run %s", c.RunID())

	log.Phase("Training")
	if err := c.BatchAdd(run.Training, run.MaxDepth); err != nil {
		exitf("Error: %s", err)
	}

	queries, err := manifest.Load(run.Query)
	if err != nil {
		exitf("Error: %s", err)
	}

	log.Phase("Predicting")
	if err := c.PrintHeader(out); err != nil {
		exitf("Error: writing output: %s", err)
	}
	for _, q := range queries {
		best, err := c.Predict(out, q.Name, q.Path)
		if err != nil {
			exitf("Error: predicting %s: %s", q.Name, err)
		}
		log.Verbosef("%s -> %s", q.Name, best)
	}

	log.Phase("Done")
	if err := c.PrintStats(os.Stderr); err != nil {
		exitf("Error: %s", err)
	}
}
