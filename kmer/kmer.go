// Package kmer implements canonical k-mer enumeration with ambiguity
// filtering and minimizer extraction (spec.md §4.2). The reverse complement
// of the whole sequence is computed once per call, and each window's
// reverse-complement strand is sliced from it at the mirrored offset. Because
// reverse-complementing a contiguous slice commutes with slicing the
// whole-sequence reverse complement at the mirrored offset, that slice is
// exactly the reverse complement of the forward window.
package kmer

import (
	"fmt"

	"github.com/jacobbierstedt/pyseqgo/errs"
	"github.com/jacobbierstedt/pyseqgo/ntseq"
)

// Params bundles the (k, m, max_ambiguous) triple every extraction needs.
type Params struct {
	K            int
	M            int
	MaxAmbiguous float64
}

// Validate reports an InvalidParameterError for k <= 0, m <= 0, m > k, or
// max_ambiguous outside [0, 1] (spec.md §7).
func (p Params) Validate() error {
	if p.K <= 0 {
		return errs.NewInvalidParameter(fmt.Sprintf("k must be positive, got %d", p.K))
	}
	if p.M <= 0 {
		return errs.NewInvalidParameter(fmt.Sprintf("m must be positive, got %d", p.M))
	}
	if p.M > p.K {
		return errs.NewInvalidParameter(fmt.Sprintf("m (%d) must not exceed k (%d)", p.M, p.K))
	}
	if p.MaxAmbiguous < 0 || p.MaxAmbiguous > 1 {
		return errs.NewInvalidParameter(fmt.Sprintf("max_ambiguous must be in [0,1], got %v", p.MaxAmbiguous))
	}
	return nil
}

// Extract returns the multiset of canonical minimizers of seq under p,
// mapping each minimizer to the number of windows that produced it
// (spec.md §4.2). seq is assumed already normalized to {A,C,G,T,N}.
//
// len(seq) < p.K yields an empty, non-nil map. Extract does not call
// p.Validate(); callers validate once when a Params value is adopted
// (e.g. binidx.New), not on every read.
func Extract(seq string, p Params) map[string]uint64 {
	out := make(map[string]uint64)
	k, m, maxAmb := p.K, p.M, p.MaxAmbiguous
	n := len(seq)
	if n < k {
		return out
	}
	rcAll := ntseq.ReverseComplement(seq)
	for i := 0; i+k <= n; i++ {
		fwd := seq[i : i+k]
		rev := rcAll[n-k-i : n-i]
		if ntseq.AmbiguityFraction(fwd) > maxAmb || ntseq.AmbiguityFraction(rev) > maxAmb {
			continue
		}
		min := canonicalMinimizer(fwd, rev, m)
		out[min]++
	}
	return out
}

// canonicalMinimizer scans every length-m substring of fwd, then of rev, and
// returns the lexicographically smallest. Ties resolve to the first
// occurrence in the fwd-then-rev scan order (spec.md §4.2 step 3); since the
// returned value is the string itself, ties never affect correctness.
func canonicalMinimizer(fwd, rev string, m int) string {
	best := ""
	seen := false
	scan := func(s string) {
		for i := 0; i+m <= len(s); i++ {
			sub := s[i : i+m]
			if !seen || sub < best {
				best = sub
				seen = true
			}
		}
	}
	scan(fwd)
	scan(rev)
	return best
}
