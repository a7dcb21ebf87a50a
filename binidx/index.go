// Package binidx implements the bin-annotated minimizer index: insertion
// during build, post-build ambiguity collapse, and read-only lookup during
// query (spec.md §4.3). It also implements the query-time scorer (§4.4),
// which reads the index's unexported minimizer table and parameters directly.
//
// Structurally this plays the role fusion/gene_db.go's GeneDB plays in the
// teacher repo: a frozen/open singleton mapping kmers to a small set of
// owning identities. Unlike GeneDB's kmerIndex (a hand-rolled, mmap-backed,
// farmhash-sharded hash table sized for a genome-scale singleton), this
// index is a plain Go map — this spec explicitly forbids concurrent index
// sharding (Non-goals) and targets CLI-scale reference sets, not a
// process-lifetime service.
package binidx

import (
	"sort"

	"github.com/jacobbierstedt/pyseqgo/kmer"
)

// BinID names a user-defined group of reference sequences. The reserved
// value AmbiguousBin is assigned only by Finalize.
type BinID string

// AmbiguousBin is the reserved bin id finalization collapses into.
const AmbiguousBin BinID = "ambiguous"

// BinCount holds the observation counts for one (minimizer, bin) pair.
type BinCount struct {
	Bin        BinID
	Unweighted uint64
	Weighted   float64
}

// State is the index's build/query lifecycle (spec.md §4.3).
type State int

const (
	StateEmpty State = iota
	StateBuilding
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateBuilding:
		return "building"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// ErrWrongState reports an operation attempted in the wrong lifecycle state.
type ErrWrongState struct {
	Op       string
	Have     State
	Expected State
}

func (e *ErrWrongState) Error() string {
	return "binidx: " + e.Op + ": index is " + e.Have.String() + ", expected " + e.Expected.String()
}

// Index is the bin-annotated minimizer index (spec.md §3 "Index" entity).
// The zero value is not usable; construct with New.
type Index struct {
	params     kmer.Params
	minimizers map[string]map[BinID]*BinCount
	binTotals  map[BinID]uint64
	state      State
}

// New constructs an empty, Building-state index for the given k-mer
// parameters. p is validated once here (spec.md §7's "reported to the user
// at startup"), not on every AddSequence call.
func New(p kmer.Params) (*Index, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Index{
		params:     p,
		minimizers: make(map[string]map[BinID]*BinCount),
		binTotals:  make(map[BinID]uint64),
		state:      StateBuilding,
	}, nil
}

// Params returns the (k, m, max_ambiguous) this index was built with.
func (ix *Index) Params() kmer.Params { return ix.params }

// State returns the index's current lifecycle state.
func (ix *Index) State() State { return ix.state }

// AddSequence extracts seq's minimizers and folds their counts into bin
// (spec.md §4.3 "Insert path"). A BinCount is created on first touch for a
// given (minimizer, bin) pair.
func (ix *Index) AddSequence(bin BinID, seq string) error {
	if ix.state != StateBuilding {
		return &ErrWrongState{Op: "AddSequence", Have: ix.state, Expected: StateBuilding}
	}
	for minimizer, count := range kmer.Extract(seq, ix.params) {
		ix.binTotals[bin] += count
		bins, ok := ix.minimizers[minimizer]
		if !ok {
			bins = make(map[BinID]*BinCount)
			ix.minimizers[minimizer] = bins
		}
		bc, ok := bins[bin]
		if !ok {
			bc = &BinCount{Bin: bin}
			bins[bin] = bc
		}
		bc.Unweighted += count
	}
	return nil
}

// NamedSequence is a minimal (name, sequence) pair; seqio.Read satisfies
// this via its SeqName/SeqSequence methods, so AddReferences takes the
// interface rather than importing seqio.
type NamedSequence interface {
	SeqName() string
	SeqSequence() string
}

// AddReferences adds every reference in refs whose name has an entry in
// bins to the index (spec.md §4.3 "add_references"). References absent
// from bins are silently skipped (UnmappedReference, not an error — spec.md
// §7); the number skipped is returned so callers can log it.
func (ix *Index) AddReferences(refs []NamedSequence, bins map[string]BinID) (skipped int, err error) {
	for _, ref := range refs {
		binID, ok := bins[ref.SeqName()]
		if !ok {
			skipped++
			continue
		}
		if err := ix.AddSequence(binID, ref.SeqSequence()); err != nil {
			return skipped, err
		}
	}
	return skipped, nil
}

// Finalize collapses minimizers whose bin set exceeds binThreshold into the
// AmbiguousBin and transitions the index to Finalized (spec.md §4.3). For
// each over-threshold minimizer, the ambiguous entry's Unweighted becomes
// the sum of the collapsed bins' Unweighted, and those bins are zeroed —
// conserving the per-minimizer observation total (spec.md §8 invariant 3).
// Finalize may be called exactly once.
func (ix *Index) Finalize(binThreshold int) error {
	if ix.state != StateBuilding {
		return &ErrWrongState{Op: "Finalize", Have: ix.state, Expected: StateBuilding}
	}
	for _, bins := range ix.minimizers {
		if len(bins) <= binThreshold {
			continue
		}
		ambiguous, ok := bins[AmbiguousBin]
		if !ok {
			ambiguous = &BinCount{Bin: AmbiguousBin}
			bins[AmbiguousBin] = ambiguous
		}
		for id, bc := range bins {
			if id == AmbiguousBin {
				continue
			}
			ambiguous.Unweighted += bc.Unweighted
			bc.Unweighted = 0
		}
	}
	ix.state = StateFinalized
	return nil
}

// Lookup returns the (possibly empty) bin map for minimizer in the
// finalized index (spec.md §4.3 "Lookup"). It does not mutate the index.
func (ix *Index) Lookup(minimizer string) (map[BinID]BinCount, error) {
	if ix.state != StateFinalized {
		return nil, &ErrWrongState{Op: "Lookup", Have: ix.state, Expected: StateFinalized}
	}
	bins := ix.minimizers[minimizer]
	if len(bins) == 0 {
		return nil, nil
	}
	out := make(map[BinID]BinCount, len(bins))
	for id, bc := range bins {
		out[id] = *bc
	}
	return out, nil
}

// forEachMinimizer iterates minimizer entries in a deterministic order
// (sorted by minimizer string), used by dbio.Write to produce a reproducible
// serialization.
func (ix *Index) forEachMinimizer(fn func(minimizer string, bins map[BinID]*BinCount)) {
	keys := make([]string, 0, len(ix.minimizers))
	for k := range ix.minimizers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fn(k, ix.minimizers[k])
	}
}

// ForEachMinimizer exposes forEachMinimizer to other packages in this module
// (dbio) without putting serialization concerns in this package.
func (ix *Index) ForEachMinimizer(fn func(minimizer string, bins map[BinID]BinCount)) error {
	if ix.state != StateFinalized {
		return &ErrWrongState{Op: "ForEachMinimizer", Have: ix.state, Expected: StateFinalized}
	}
	ix.forEachMinimizer(func(minimizer string, bins map[BinID]*BinCount) {
		out := make(map[BinID]BinCount, len(bins))
		for id, bc := range bins {
			out[id] = *bc
		}
		fn(minimizer, out)
	})
	return nil
}

// LoadEntry inserts a single (minimizer, bin, unweighted) record as read
// from a serialized database (spec.md §4.5). LoadEntry is only valid while
// the index is Building; the caller transitions to Finalized explicitly
// once all entries are loaded (dbio.Read does this), since the collapse was
// already applied before serialization and must not be re-applied.
func (ix *Index) LoadEntry(minimizer string, bin BinID, unweighted uint64) error {
	if ix.state != StateBuilding {
		return &ErrWrongState{Op: "LoadEntry", Have: ix.state, Expected: StateBuilding}
	}
	bins, ok := ix.minimizers[minimizer]
	if !ok {
		bins = make(map[BinID]*BinCount)
		ix.minimizers[minimizer] = bins
	}
	bc, ok := bins[bin]
	if !ok {
		bc = &BinCount{Bin: bin}
		bins[bin] = bc
	}
	bc.Unweighted = unweighted
	return nil
}

// MarkFinalized transitions a Building index straight to Finalized without
// running Finalize's collapse logic. dbio.Read uses this: a serialized
// database has already had ambiguity collapse applied (spec.md §4.5).
func (ix *Index) MarkFinalized() error {
	if ix.state != StateBuilding {
		return &ErrWrongState{Op: "MarkFinalized", Have: ix.state, Expected: StateBuilding}
	}
	ix.state = StateFinalized
	return nil
}
