// Command pyseq builds a minimizer-based reference database and bins
// sequencing reads against it (spec.md §6), mirroring the two-subcommand
// shape of original_source/pyseq/apps/pyseq_build_db.py and
// pyseq_bin_reads.py as one binary with flag.NewFlagSet subcommands, in the
// style of cmd/bio-fusion/main.go's single-binary, flag-driven dispatch.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"

	"github.com/jacobbierstedt/pyseqgo/kmer"
	"github.com/jacobbierstedt/pyseqgo/pipeline"
)

func usage() {
	fmt.Fprintln(os.Stderr, `
pyseq builds a bin-annotated minimizer database from reference sequences and
bins query reads against it.

Usage:

    pyseq build_db -r <references.fasta> -b <bins.json> [flags]
    pyseq bin_reads (-d <database.pyseq.dbi> | -r <references.fasta> -b <bins.json>) -i <reads.fastq> [flags]

Subcommands:`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	cleanup := grail.Init()
	defer cleanup()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "build_db":
		err = runBuildDB(os.Args[2:])
	case "bin_reads":
		err = runBinReads(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "pyseq: unknown subcommand %q\n", os.Args[1])
		usage()
		os.Exit(1)
	}
	if err != nil {
		log.Printf("pyseq: %v", err)
		os.Exit(1)
	}
}

func runBuildDB(args []string) error {
	fs := flag.NewFlagSet("build_db", flag.ExitOnError)
	refsPath := fs.String("r", "", "path to reference sequences (FASTA, optionally gzipped)")
	binsPath := fs.String("b", "", "path to reference-name -> bin-id JSON map")
	outPath := fs.String("o", "database.pyseq.dbi", "path to write the built database")
	k := fs.Int("k", 31, "k-mer length")
	m := fs.Int("m", 19, "minimizer length")
	a := fs.Int("a", 2, "bin-count threshold above which a minimizer collapses to \"ambiguous\"")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *refsPath == "" || *binsPath == "" {
		fs.Usage()
		return fmt.Errorf("build_db: -r and -b are required")
	}

	params := kmer.Params{K: *k, M: *m, MaxAmbiguous: 0.2}
	if err := params.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	if err := pipeline.BuildDB(ctx, *refsPath, *binsPath, *outPath, params, *a); err != nil {
		return err
	}
	log.Printf("pyseq: wrote database to %s", *outPath)
	return nil
}

func runBinReads(args []string) error {
	fs := flag.NewFlagSet("bin_reads", flag.ExitOnError)
	dbPath := fs.String("d", "", "path to a database built by build_db")
	refsPath := fs.String("r", "", "path to reference sequences, rebuilding the index instead of loading -d (FASTA, optionally gzipped)")
	binsPath := fs.String("b", "", "path to reference-name -> bin-id JSON map (required with -r)")
	readsPath := fs.String("i", "", "path to query reads (FASTA or FASTQ, optionally gzipped)")
	outPath := fs.String("o", "binned_reads.json", "path to write binning results")
	k := fs.Int("k", 31, "k-mer length (must match the database's build parameters)")
	m := fs.Int("m", 19, "minimizer length (must match the database's build parameters)")
	a := fs.Int("a", 2, "bin-count threshold above which a minimizer collapses to \"ambiguous\" (only used with -r)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *readsPath == "" {
		fs.Usage()
		return fmt.Errorf("bin_reads: -i is required")
	}
	if *dbPath == "" && *refsPath == "" {
		fs.Usage()
		return fmt.Errorf("bin_reads: one of -d or -r is required")
	}
	if *dbPath != "" && *refsPath != "" {
		fs.Usage()
		return fmt.Errorf("bin_reads: -d and -r are mutually exclusive")
	}
	if *refsPath != "" && *binsPath == "" {
		fs.Usage()
		return fmt.Errorf("bin_reads: -b is required with -r")
	}

	params := kmer.Params{K: *k, M: *m, MaxAmbiguous: 0.2}
	if err := params.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	if err := pipeline.BinReads(ctx, *dbPath, *refsPath, *readsPath, *binsPath, *outPath, params, *a); err != nil {
		return err
	}
	log.Printf("pyseq: wrote binning results to %s", *outPath)
	return nil
}
