package binidx

import (
	"sort"

	"github.com/jacobbierstedt/pyseqgo/kmer"
)

// BinScore is a read's weighted/unweighted observation for one bin
// (spec.md §3 "ReadResult" per-bin fields).
type BinScore struct {
	Weighted   float64
	Unweighted uint64
}

// ReadResult is a single query read's scoring outcome (spec.md §3).
type ReadResult struct {
	AssignedBin *BinID
	Counts      map[BinID]BinScore
}

// Scorer scores reads against a Finalized Index (spec.md §4.4).
type Scorer struct {
	ix *Index
}

// NewScorer constructs a Scorer over ix, which must already be Finalized.
func NewScorer(ix *Index) (*Scorer, error) {
	if ix.state != StateFinalized {
		return nil, &ErrWrongState{Op: "NewScorer", Have: ix.state, Expected: StateFinalized}
	}
	return &Scorer{ix: ix}, nil
}

// Score extracts seq's minimizer multiset, looks each one up in the index,
// and accumulates per-bin weighted/unweighted scores (spec.md §4.4). For
// every (minimizer, count) with d bin entries present (including the bins
// Finalize zeroed when it collapsed the minimizer into "ambiguous" —
// spec.md §9), each bin gains count to Unweighted and count/d to Weighted.
//
// Assignment is nil if no bin was observed; otherwise the bin with the
// greatest Weighted score, ties broken by the lexicographically smallest
// bin id (spec.md §4.4 "document this policy" — see DESIGN.md).
func (s *Scorer) Score(seq string) ReadResult {
	counts := make(map[BinID]BinScore)
	for minimizer, n := range kmer.Extract(seq, s.ix.params) {
		bins := s.ix.minimizers[minimizer]
		d := len(bins)
		if d == 0 {
			continue
		}
		share := float64(n) / float64(d)
		for id := range bins {
			sc := counts[id]
			sc.Unweighted += n
			sc.Weighted += share
			counts[id] = sc
		}
	}
	return ReadResult{
		AssignedBin: bestBin(counts),
		Counts:      counts,
	}
}

// bestBin returns a pointer to the bin id with the greatest Weighted score
// in counts, ties broken lexicographically, or nil if counts is empty.
func bestBin(counts map[BinID]BinScore) *BinID {
	if len(counts) == 0 {
		return nil
	}
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	best := BinID(ids[0])
	bestScore := counts[best].Weighted
	for _, idStr := range ids[1:] {
		id := BinID(idStr)
		if counts[id].Weighted > bestScore {
			best = id
			bestScore = counts[id].Weighted
		}
	}
	return &best
}
