package tabular

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTsvLoadAndWrite(t *testing.T) {
	data := "name\tcount\tscore\ttags\n" +
		"alice\t3\t1.5\t[\"a\",\"b\"]\n" +
		"bob\t-\t.\t-\n"

	tsv := NewTsv()
	require.NoError(t, tsv.Load(bufio.NewReader(strings.NewReader(data))))
	require.Equal(t, []string{"name", "count", "score", "tags"}, tsv.Columns)
	require.Len(t, tsv.Rows, 2)

	require.Equal(t, "alice", tsv.Rows[0]["name"])
	require.EqualValues(t, 3, tsv.Rows[0]["count"])
	require.Equal(t, 1.5, tsv.Rows[0]["score"])
	require.Equal(t, []interface{}{"a", "b"}, tsv.Rows[0]["tags"])

	require.Equal(t, "bob", tsv.Rows[1]["name"])
	require.Nil(t, tsv.Rows[1]["count"])
	require.Nil(t, tsv.Rows[1]["score"])
	require.Nil(t, tsv.Rows[1]["tags"])

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, tsv.WriteTo(w))
	require.Contains(t, buf.String(), "name\tcount\tscore\ttags")
	require.Contains(t, buf.String(), "alice\t3\t1.5")
}

func TestTsvRejectsRaggedRows(t *testing.T) {
	tsv := NewTsv()
	err := tsv.Load(bufio.NewReader(strings.NewReader("a\tb\n1\n")))
	require.Error(t, err)
}

func TestLoadGff(t *testing.T) {
	data := "##gff-version 3\n" +
		"chr1\tsrc\tgene\t100\t200\t.\t+\t.\tID=gene1;Name=fooGene\n" +
		"chr1\tsrc\tCDS\t110\t190\t.\t+\t0\tID=cds1;Parent=gene1\n"

	g, err := LoadGff(bufio.NewReader(strings.NewReader(data)))
	require.NoError(t, err)
	require.Len(t, g.Features, 2)
	require.Contains(t, g.Genes, "gene1")
	require.Contains(t, g.CDS, "cds1")
	require.Equal(t, "fooGene", g.Genes["gene1"].Name)
	require.Equal(t, int64(100), g.Genes["gene1"].Start)
	require.Equal(t, "gene1", g.CDS["cds1"].Parent)
}

func TestJsonlRoundTrip(t *testing.T) {
	data := `{"a":1}` + "\n" + `{"b":2}` + "\n"
	j, err := LoadJsonl(bufio.NewReader(strings.NewReader(data)))
	require.NoError(t, err)
	require.Len(t, j.Rows, 2)

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, j.WriteTo(w))
	require.Equal(t, data, buf.String())
}
