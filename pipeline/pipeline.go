// Package pipeline orchestrates the two pyseq entry points — database
// construction and read binning — wiring together binidx, binmap, dbio,
// resultio, and seqio the way cmd/bio-fusion/main.go's DetectFusion wires
// together fusion, encoding/fastq, and file (spec.md §4.7, §5).
package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"

	"github.com/jacobbierstedt/pyseqgo/binidx"
	"github.com/jacobbierstedt/pyseqgo/binmap"
	"github.com/jacobbierstedt/pyseqgo/dbio"
	"github.com/jacobbierstedt/pyseqgo/kmer"
	"github.com/jacobbierstedt/pyseqgo/resultio"
	"github.com/jacobbierstedt/pyseqgo/seqio"
)

// BuildDB reads references from refsPath and their bin assignments from
// binsPath, builds a minimizer index under p, collapses ambiguous
// minimizers at binThreshold, and atomically writes the finished database
// to outPath (spec.md §4.7 "pyseq_build_db").
func BuildDB(ctx context.Context, refsPath, binsPath, outPath string, p kmer.Params, binThreshold int) error {
	ix, err := buildIndexFromReferences(ctx, refsPath, binsPath, p, binThreshold)
	if err != nil {
		return err
	}

	return writeAtomic(outPath, func(w io.Writer) error {
		return dbio.Write(w, ix)
	})
}

// buildIndexFromReferences parses refsPath and binsPath, adds every bin-
// assigned reference to a fresh index under p, and finalizes it at
// binThreshold (spec.md §4.3/§4.7). Shared by BuildDB and BinReads's rebuild
// branch, since both need the identical build-then-collapse sequence.
func buildIndexFromReferences(ctx context.Context, refsPath, binsPath string, p kmer.Params, binThreshold int) (*binidx.Index, error) {
	bins, err := binmap.Load(binsPath)
	if err != nil {
		return nil, err
	}

	refFile, err := seqio.Open(ctx, refsPath)
	if err != nil {
		return nil, err
	}
	refs, err := seqio.ReadFASTA(refFile)
	closeErr := refFile.Close()
	if err != nil {
		return nil, err
	}
	if closeErr != nil {
		return nil, closeErr
	}

	diagnoseDuplicateReferences(refs)

	ix, err := binidx.New(p)
	if err != nil {
		return nil, err
	}
	named := make([]binidx.NamedSequence, len(refs))
	for i, r := range refs {
		named[i] = r
	}
	skipped, err := ix.AddReferences(named, bins)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		log.Printf("pyseq: %d references had no bin assignment and were skipped", skipped)
	}

	if err := ix.Finalize(binThreshold); err != nil {
		return nil, err
	}
	return ix, nil
}

// loadOrBuildIndex implements BinReads's "-d or -r/-b" choice (spec.md §4.6):
// a non-empty dbPath loads a serialized database; otherwise a fresh index is
// built from refsPath/binsPath and collapsed at binThreshold, exactly as
// BuildDB would.
func loadOrBuildIndex(ctx context.Context, dbPath, refsPath, binsPath string, p kmer.Params, binThreshold int) (*binidx.Index, error) {
	if dbPath != "" {
		dbFile, err := os.Open(dbPath)
		if err != nil {
			return nil, err
		}
		defer dbFile.Close()
		return dbio.Read(dbFile, p)
	}
	return buildIndexFromReferences(ctx, refsPath, binsPath, p, binThreshold)
}

// diagnoseDuplicateReferences logs (but does not act on) references whose
// sequence content collides under a 64-bit farm hash — a cheap duplicate-
// reference smell test, not a substitute for minimizer identity (spec.md §6
// DOMAIN STACK: go-farm is a diagnostic aid only, never part of the
// minimizer/bin-assignment algorithm itself).
func diagnoseDuplicateReferences(refs []seqio.Read) {
	seen := make(map[uint64]string, len(refs))
	for _, r := range refs {
		h := farm.Hash64([]byte(r.Sequence))
		if prev, ok := seen[h]; ok {
			log.Printf("pyseq: reference %q has the same sequence hash as %q (informational only)", r.Name, prev)
			continue
		}
		seen[h] = r.Name
	}
}

// writeAtomic calls write with a temp file in outPath's directory, then
// renames it into place on success (spec.md §4.7 "atomic database write"),
// so a crash or interrupted run never leaves a half-written database at
// outPath.
func writeAtomic(outPath string, write func(io.Writer) error) error {
	dir := filepath.Dir(outPath)
	tmp, err := os.CreateTemp(dir, filepath.Base(outPath)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	once := errors.Once{}
	once.Set(write(tmp))
	once.Set(tmp.Close())
	if once.Err() != nil {
		os.Remove(tmpPath)
		return once.Err()
	}
	return os.Rename(tmpPath, outPath)
}

// BinReads either loads a serialized database from dbPath or, if dbPath is
// empty, rebuilds one from refsPath/binsPath the same way BuildDB does
// (spec.md §4.6 "bin-reads: either load a serialized index or rebuild from
// references"), then scores every read in readsPath against it and writes
// the JSON result object to outPath (spec.md §4.7 "pyseq_bin_reads").
// readsPath may be FASTA or FASTQ and may be gzipped. Reads are scored
// concurrently across GOMAXPROCS workers — spec.md §5's permitted safe seam,
// since each read's score depends only on the (immutable, already-finalized)
// index and the read's own sequence.
func BinReads(ctx context.Context, dbPath, refsPath, readsPath, binsPath, outPath string, p kmer.Params, binThreshold int) error {
	ix, err := loadOrBuildIndex(ctx, dbPath, refsPath, binsPath, p, binThreshold)
	if err != nil {
		return err
	}

	scorer, err := binidx.NewScorer(ix)
	if err != nil {
		return err
	}

	reads, err := readAnySequenceFormat(ctx, readsPath)
	if err != nil {
		return err
	}

	results := scoreReadsConcurrently(reads, scorer)

	outFile, err := os.Create(outPath)
	if err != nil {
		return err
	}
	once := errors.Once{}
	once.Set(resultio.WriteResults(outFile, results))
	once.Set(outFile.Close())
	return once.Err()
}

func readAnySequenceFormat(ctx context.Context, path string) ([]seqio.Read, error) {
	f, err := seqio.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ext := filepath.Ext(path)
	if ext == ".gz" {
		ext = filepath.Ext(path[:len(path)-len(ext)])
	}
	if ext == ".fq" || ext == ".fastq" {
		reads, invalid, err := seqio.ReadFASTQ(f)
		if invalid > 0 {
			log.Printf("pyseq: dropped %d malformed FASTQ records from %s", invalid, path)
		}
		return reads, err
	}
	return seqio.ReadFASTA(f)
}

func scoreReadsConcurrently(reads []seqio.Read, scorer *binidx.Scorer) map[string]binidx.ReadResult {
	type indexed struct {
		name   string
		result binidx.ReadResult
	}

	in := make(chan seqio.Read, len(reads))
	for _, r := range reads {
		in <- r
	}
	close(in)

	out := make(chan indexed, len(reads))
	workers := runtime.GOMAXPROCS(0)
	if workers > len(reads) {
		workers = len(reads)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for r := range in {
				out <- indexed{name: r.Name, result: scorer.Score(r.Sequence)}
			}
		}()
	}
	wg.Wait()
	close(out)

	results := make(map[string]binidx.ReadResult, len(reads))
	for ix := range out {
		results[ix.name] = ix.result
	}
	return results
}
