// Package tabular ports pyseq.formats (Tsv, Gff, Jsonl) — small row-oriented
// file readers/writers the original Python package carries alongside its
// k-mer binning core. Nothing in cmd/pyseq calls this package; it exists to
// preserve that part of the original surface (original_source/pyseq/formats)
// for callers embedding this module as a library, following
// encoding/fasta/fasta.go's line-scanning idiom rather than the Python's
// ast.literal_eval-based type guessing.
package tabular

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const defaultSep = "\t"

var naValues = map[string]bool{"": true, "None": true, "null": true, ".": true, "-": true}

// Tsv holds rows of a delimited text file, keyed by header column name
// (pyseq.formats.tsv.Tsv). Field values are type-guessed on load: JSON
// arrays/objects, integers, floats, and booleans are recognized; the
// na_values sentinels become nil; anything else is left as a string.
type Tsv struct {
	Columns []string
	Rows    []map[string]interface{}
	Sep     string
}

// NewTsv returns an empty Tsv using the tab separator.
func NewTsv() *Tsv {
	return &Tsv{Sep: defaultSep}
}

// Load reads a header line plus one row per subsequent line from r.
func (t *Tsv) Load(r *bufio.Reader) error {
	if t.Sep == "" {
		t.Sep = defaultSep
	}
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return err
		}
		return errors.New("tabular: empty input, expected a header line")
	}
	t.Columns = strings.Split(scanner.Text(), t.Sep)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, t.Sep)
		if len(fields) != len(t.Columns) {
			return errors.Errorf("tabular: row has %d fields, header has %d: %q", len(fields), len(t.Columns), line)
		}
		row := make(map[string]interface{}, len(fields))
		for i, col := range t.Columns {
			row[col] = guessType(fields[i])
		}
		t.Rows = append(t.Rows, row)
	}
	return scanner.Err()
}

// WriteTo serializes t back to delimited text with a header line.
func (t *Tsv) WriteTo(w *bufio.Writer) error {
	sep := t.Sep
	if sep == "" {
		sep = defaultSep
	}
	if _, err := fmt.Fprintln(w, strings.Join(t.Columns, sep)); err != nil {
		return err
	}
	for _, row := range t.Rows {
		vals := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			vals[i] = renderValue(row[col])
		}
		if _, err := fmt.Fprintln(w, strings.Join(vals, sep)); err != nil {
			return err
		}
	}
	return w.Flush()
}

func guessType(raw string) interface{} {
	if naValues[raw] {
		return nil
	}
	if strings.HasPrefix(raw, "[") || strings.HasPrefix(raw, "{") {
		var v interface{}
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return v
		}
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

func renderValue(v interface{}) string {
	if v == nil {
		return "-"
	}
	switch t := v.(type) {
	case string:
		return t
	case []interface{}, map[string]interface{}:
		b, _ := json.Marshal(t)
		return string(b)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// GffFeature is one parsed GFF3 record (pyseq.formats.gff3.GffFeature).
type GffFeature struct {
	SeqID      string
	Source     string
	Type       string
	Start      int64
	End        int64
	Score      string
	Strand     string
	Phase      string
	Attributes map[string]string

	ID          string
	Parent      string
	Name        string
	Gene        string
	Product     string
	LocusTag    string
	GeneBiotype string
}

// gff3Columns is GFF3's nine fixed columns (pyseq.formats.gff3.Gff.GFF3_COLUMNS).
var gff3Columns = []string{"seqid", "source", "type", "start", "end", "score", "strand", "phase", "attributes"}

const (
	// TypeGene and TypeCDS are the feature types Gff indexes specially.
	TypeGene = "gene"
	TypeCDS  = "CDS"
)

// Gff holds all features loaded from a GFF3 file, plus the gene/CDS subsets
// (pyseq.formats.gff3.Gff).
type Gff struct {
	Features map[string]*GffFeature
	Genes    map[string]*GffFeature
	CDS      map[string]*GffFeature
}

// LoadGff parses GFF3 feature lines from r, skipping blank lines and
// '#'-prefixed comment lines.
func LoadGff(r *bufio.Reader) (*Gff, error) {
	g := &Gff{
		Features: make(map[string]*GffFeature),
		Genes:    make(map[string]*GffFeature),
		CDS:      make(map[string]*GffFeature),
	}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != len(gff3Columns) {
			return nil, errors.Errorf("tabular: malformed GFF3 line (want %d columns, got %d): %q", len(gff3Columns), len(fields), line)
		}
		feat, err := parseGffFeature(fields)
		if err != nil {
			return nil, err
		}
		g.Features[feat.ID] = feat
		switch feat.Type {
		case TypeGene:
			g.Genes[feat.ID] = feat
		case TypeCDS:
			g.CDS[feat.ID] = feat
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

func parseGffFeature(fields []string) (*GffFeature, error) {
	start, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "tabular: parsing GFF3 start coordinate")
	}
	end, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "tabular: parsing GFF3 end coordinate")
	}

	attrs := make(map[string]string)
	for _, pair := range strings.Split(fields[8], ";") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 {
			attrs[kv[0]] = kv[1]
		}
	}

	feat := &GffFeature{
		SeqID:      fields[0],
		Source:     fields[1],
		Type:       fields[2],
		Start:      start,
		End:        end,
		Score:      fields[5],
		Strand:     fields[6],
		Phase:      fields[7],
		Attributes: attrs,

		ID:          attrs["ID"],
		Parent:      attrs["Parent"],
		Name:        attrs["Name"],
		Gene:        attrs["gene"],
		Product:     attrs["product"],
		LocusTag:    attrs["locus_tag"],
		GeneBiotype: attrs["gene_biotype"],
	}
	return feat, nil
}

// Jsonl reads and writes newline-delimited JSON (pyseq.formats.jsonl.Jsonl).
type Jsonl struct {
	Rows []json.RawMessage
}

// LoadJsonl reads one JSON value per line from r.
func LoadJsonl(r *bufio.Reader) (*Jsonl, error) {
	j := &Jsonl{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		row := make(json.RawMessage, len(line))
		copy(row, line)
		j.Rows = append(j.Rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return j, nil
}

// WriteTo writes one JSON value per line to w.
func (j *Jsonl) WriteTo(w *bufio.Writer) error {
	for _, row := range j.Rows {
		if _, err := w.Write(row); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}
