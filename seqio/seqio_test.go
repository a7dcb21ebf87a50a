package seqio_test

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"github.com/jacobbierstedt/pyseqgo/seqio"
)

func TestReadFASTA(t *testing.T) {
	data := ">chr1 a description\nACGT\nACGT\n>chr2\nTTTT\n"
	reads, err := seqio.ReadFASTA(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, reads, 2)
	require.Equal(t, "chr1 a description", reads[0].Name)
	require.Equal(t, "ACGTACGT", reads[0].Sequence)
	require.Equal(t, "chr2", reads[1].Name)
	require.Equal(t, "TTTT", reads[1].Sequence)
}

func TestReadFASTANormalizesAmbiguousBases(t *testing.T) {
	data := ">r1\nacgtRYK\n"
	reads, err := seqio.ReadFASTA(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, reads, 1)
	require.Equal(t, "ACGTNNN", reads[0].Sequence)
}

func TestReadFASTQ(t *testing.T) {
	data := "@read1\nACGT\n+\nIIII\n@read2 extra\nTTTT\n+\nIIII\n"
	reads, invalid, err := seqio.ReadFASTQ(strings.NewReader(data))
	require.NoError(t, err)
	require.Zero(t, invalid)
	require.Len(t, reads, 2)
	require.Equal(t, "read1", reads[0].Name)
	require.Equal(t, "ACGT", reads[0].Sequence)
	require.Equal(t, "IIII", reads[0].Quality)
	require.Equal(t, "read2 extra", reads[1].Name)
}

func TestReadFASTQDropsLengthMismatch(t *testing.T) {
	data := "@bad\nACGT\n+\nII\n@good\nACGT\n+\nIIII\n"
	reads, invalid, err := seqio.ReadFASTQ(strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 1, invalid)
	require.Len(t, reads, 1)
	require.Equal(t, "good", reads[0].Name)
}

func TestReadFASTQRejectsMalformedHeader(t *testing.T) {
	_, _, err := seqio.ReadFASTQ(strings.NewReader("not a fastq record\n"))
	require.Error(t, err)
}

func TestOpenDetectsGzip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/reads.fastq.gz"

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write([]byte("@r1\nACGT\n+\nIIII\n"))
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	rc, err := seqio.Open(context.Background(), path)
	require.NoError(t, err)
	defer rc.Close()

	reads, invalid, err := seqio.ReadFASTQ(rc)
	require.NoError(t, err)
	require.Zero(t, invalid)
	require.Len(t, reads, 1)
	require.Equal(t, "r1", reads[0].Name)
}

func TestOpenPlainFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/ref.fasta"
	require.NoError(t, os.WriteFile(path, []byte(">ref1\nACGTACGT\n"), 0o644))

	rc, err := seqio.Open(context.Background(), path)
	require.NoError(t, err)
	defer rc.Close()

	reads, err := seqio.ReadFASTA(rc)
	require.NoError(t, err)
	require.Len(t, reads, 1)
	require.Equal(t, "ref1", reads[0].Name)
}
