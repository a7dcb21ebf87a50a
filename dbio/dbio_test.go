package dbio_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jacobbierstedt/pyseqgo/binidx"
	"github.com/jacobbierstedt/pyseqgo/dbio"
	"github.com/jacobbierstedt/pyseqgo/kmer"
)

// S6 — round trip: a database built from a synthetic reference set, written,
// then read back, answers queries identically to the in-memory original.
func TestRoundTrip(t *testing.T) {
	p := kmer.Params{K: 15, M: 7, MaxAmbiguous: 0.2}
	ix, err := binidx.New(p)
	require.NoError(t, err)

	// A longer synthetic reference so the database has more than a handful
	// of minimizer entries.
	ref := strings.Repeat("ACGTTGCAACGGTTCA", 64) // 1024 bases
	require.NoError(t, ix.AddSequence("chr1", ref))
	require.NoError(t, ix.AddSequence("chr2", ref[5:512]))
	require.NoError(t, ix.Finalize(2))

	var buf bytes.Buffer
	require.NoError(t, dbio.Write(&buf, ix))
	require.NotZero(t, buf.Len())

	loaded, err := dbio.Read(&buf, p)
	require.NoError(t, err)
	require.Equal(t, binidx.StateFinalized, loaded.State())

	origScorer, err := binidx.NewScorer(ix)
	require.NoError(t, err)
	loadedScorer, err := binidx.NewScorer(loaded)
	require.NoError(t, err)

	query := ref[100:400]
	origResult := origScorer.Score(query)
	loadedResult := loadedScorer.Score(query)

	require.Equal(t, origResult.AssignedBin, loadedResult.AssignedBin)
	require.Equal(t, origResult.Counts, loadedResult.Counts)
}

func TestWriteIsDeterministic(t *testing.T) {
	p := kmer.Params{K: 10, M: 5, MaxAmbiguous: 0.2}
	ix, err := binidx.New(p)
	require.NoError(t, err)
	require.NoError(t, ix.AddSequence("A", "ACGTTGCAACGGTTCAACGTTGCA"))
	require.NoError(t, ix.AddSequence("B", "TTGGCCAATTGGCCAATTGGCCAA"))
	require.NoError(t, ix.Finalize(2))

	var buf1, buf2 bytes.Buffer
	require.NoError(t, dbio.Write(&buf1, ix))
	require.NoError(t, dbio.Write(&buf2, ix))
	require.Equal(t, buf1.Bytes(), buf2.Bytes())
}

func TestReadRejectsCorruptData(t *testing.T) {
	_, err := dbio.Read(strings.NewReader("not a zlib stream"), kmer.Params{K: 10, M: 5, MaxAmbiguous: 0.2})
	require.Error(t, err)
}
