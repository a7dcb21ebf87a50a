package pipeline_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/require"

	"github.com/jacobbierstedt/pyseqgo/kmer"
	"github.com/jacobbierstedt/pyseqgo/pipeline"
)

func TestBuildDBAndBinReads(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	refsPath := filepath.Join(tempDir, "refs.fasta")
	binsPath := filepath.Join(tempDir, "bins.json")
	dbPath := filepath.Join(tempDir, "database.pyseq.dbi")
	readsPath := filepath.Join(tempDir, "reads.fastq")
	outPath := filepath.Join(tempDir, "binned_reads.json")

	ref := "ACGTTGCAACGGTTCAACGTTGCAACGGTTCAACGTTGCAACGGTTCAACGTTGCAACGGTTCA"
	require.NoError(t, os.WriteFile(refsPath, []byte(">chr1\n"+ref+"\n"), 0o644))
	require.NoError(t, os.WriteFile(binsPath, []byte(`{"chr1": "human"}`), 0o644))
	require.NoError(t, os.WriteFile(readsPath, []byte("@r1\n"+ref[:31]+"\n+\n"+repeatQual(31)+"\n"), 0o644))

	p := kmer.Params{K: 21, M: 11, MaxAmbiguous: 0.2}
	ctx := context.Background()

	require.NoError(t, pipeline.BuildDB(ctx, refsPath, binsPath, dbPath, p, 2))
	require.FileExists(t, dbPath)

	require.NoError(t, pipeline.BinReads(ctx, dbPath, "", readsPath, "", outPath, p, 2))
	require.FileExists(t, outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var results map[string]struct {
		AssignedBin *string `json:"assigned_bin"`
	}
	require.NoError(t, json.Unmarshal(data, &results))
	require.Contains(t, results, "r1")
	require.NotNil(t, results["r1"].AssignedBin)
	require.Equal(t, "human", *results["r1"].AssignedBin)
}

func TestBinReadsRebuildsFromReferences(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	refsPath := filepath.Join(tempDir, "refs.fasta")
	binsPath := filepath.Join(tempDir, "bins.json")
	readsPath := filepath.Join(tempDir, "reads.fastq")
	outPath := filepath.Join(tempDir, "binned_reads.json")

	ref := "ACGTTGCAACGGTTCAACGTTGCAACGGTTCAACGTTGCAACGGTTCAACGTTGCAACGGTTCA"
	require.NoError(t, os.WriteFile(refsPath, []byte(">chr1\n"+ref+"\n"), 0o644))
	require.NoError(t, os.WriteFile(binsPath, []byte(`{"chr1": "human"}`), 0o644))
	require.NoError(t, os.WriteFile(readsPath, []byte("@r1\n"+ref[:31]+"\n+\n"+repeatQual(31)+"\n"), 0o644))

	p := kmer.Params{K: 21, M: 11, MaxAmbiguous: 0.2}
	ctx := context.Background()

	// No database on disk at all — bin_reads must build the index itself
	// from -r/-b, exactly as build_db would, then score against it.
	require.NoError(t, pipeline.BinReads(ctx, "", refsPath, readsPath, binsPath, outPath, p, 2))
	require.FileExists(t, outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var results map[string]struct {
		AssignedBin *string `json:"assigned_bin"`
	}
	require.NoError(t, json.Unmarshal(data, &results))
	require.Contains(t, results, "r1")
	require.NotNil(t, results["r1"].AssignedBin)
	require.Equal(t, "human", *results["r1"].AssignedBin)
}

func TestBuildDBRejectsMissingBinsFile(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	refsPath := filepath.Join(tempDir, "refs.fasta")
	require.NoError(t, os.WriteFile(refsPath, []byte(">chr1\nACGT\n"), 0o644))

	p := kmer.Params{K: 21, M: 11, MaxAmbiguous: 0.2}
	err := pipeline.BuildDB(context.Background(), refsPath, filepath.Join(tempDir, "missing.json"), filepath.Join(tempDir, "out.dbi"), p, 2)
	require.Error(t, err)
}

func repeatQual(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'I'
	}
	return string(b)
}
