// Package resultio writes read-binning results as the JSON object
// documented in spec.md §4.7 (pyseq_bin_reads.py's bin_reads output):
// read name -> {assigned_bin, kmer_counts}.
package resultio

import (
	"encoding/json"
	"io"

	"github.com/jacobbierstedt/pyseqgo/binidx"
	"github.com/jacobbierstedt/pyseqgo/errs"
)

// BinScore is one bin's weighted/unweighted observation for a read, in the
// wire format kmer_db.py's BinResult.to_dict() produces.
type BinScore struct {
	Weighted   float64 `json:"weighted"`
	Unweighted uint64  `json:"unweighted"`
}

// ReadResult is one read's full binning outcome.
type ReadResult struct {
	AssignedBin *string             `json:"assigned_bin"`
	KmerCounts  map[string]BinScore `json:"kmer_counts"`
}

// FromBinidx converts a binidx.ReadResult into the wire representation.
func FromBinidx(r binidx.ReadResult) ReadResult {
	out := ReadResult{KmerCounts: make(map[string]BinScore, len(r.Counts))}
	if r.AssignedBin != nil {
		s := string(*r.AssignedBin)
		out.AssignedBin = &s
	}
	for bin, score := range r.Counts {
		out.KmerCounts[string(bin)] = BinScore{Weighted: score.Weighted, Unweighted: score.Unweighted}
	}
	return out
}

// WriteResults writes results (read name -> ReadResult) to w as a single
// JSON object (spec.md §4.7).
func WriteResults(w io.Writer, results map[string]binidx.ReadResult) error {
	wire := make(map[string]ReadResult, len(results))
	for name, r := range results {
		wire[name] = FromBinidx(r)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(wire); err != nil {
		return errs.WrapFormat(err, "resultio: encoding results")
	}
	return nil
}
