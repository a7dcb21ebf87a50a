// Package seqio reads FASTA and FASTQ sequence data (spec.md §4.6),
// transparently decompressing gzip input detected by magic bytes rather than
// file extension (original_source/pyseq/sequence_io/sequence_io_utils.py's
// is_gz_file). The scanning style follows encoding/fasta/fasta.go's
// line-oriented bufio.Scanner loop and encoding/fastq/scanner.go's
// four-line-record Scanner, adapted to collect Read values rather than a
// name-indexed Fasta or a caller-driven Scan loop, since this package's
// callers (pipeline's reference and read loaders) always want the whole
// file's reads at once.
package seqio

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/jacobbierstedt/pyseqgo/errs"
	"github.com/jacobbierstedt/pyseqgo/ntseq"
)

// gzipMagic is gzip's two-byte header (original_source's is_gz_file reads
// exactly these two bytes).
var gzipMagic = []byte{0x1f, 0x8b}

const fastaBufferInit = 1 * 1024 * 1024
const fastaBufferMax = 512 * 1024 * 1024

// Read is one FASTA or FASTQ record (spec.md §3 "Read"/"Reference").
type Read struct {
	Name     string
	Sequence string
	Quality  string
	Comment  string
}

// SeqName implements binidx.NamedSequence.
func (r Read) SeqName() string { return r.Name }

// SeqSequence implements binidx.NamedSequence.
func (r Read) SeqSequence() string { return r.Sequence }

// Open opens path for reading, transparently decompressing it if its first
// two bytes are the gzip magic number (spec.md §4.6 "gzip auto-detection").
// The returned ReadCloser's Close releases both the decompressor (if any)
// and the underlying file.
func Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.WrapIO(err, path)
	}
	br := bufio.NewReader(f)
	peek, err := br.Peek(2)
	if err != nil && err != io.EOF {
		f.Close()
		return nil, errs.WrapIO(err, path)
	}
	if bytes.Equal(peek, gzipMagic) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, errs.WrapFormat(err, path+": not a valid gzip stream")
		}
		return &gzipReadCloser{gz: gz, f: f}, nil
	}
	return &plainReadCloser{r: br, f: f}, nil
}

type gzipReadCloser struct {
	gz *gzip.Reader
	f  *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.gz.Read(p) }
func (g *gzipReadCloser) Close() error {
	gzErr := g.gz.Close()
	fErr := g.f.Close()
	if gzErr != nil {
		return gzErr
	}
	return fErr
}

type plainReadCloser struct {
	r io.Reader
	f *os.File
}

func (p *plainReadCloser) Read(b []byte) (int, error) { return p.r.Read(b) }
func (p *plainReadCloser) Close() error               { return p.f.Close() }

// ReadFASTA parses all records from r (spec.md §4.6). A sequence's name is
// the full trimmed remainder of its '>' header line, matching ReadFASTQ's id
// handling and original_source/pyseq's SequenceRead (name = line.strip()
// with the leading '>' removed) — not just the first whitespace-delimited
// token. Multi-line sequences are concatenated. Sequences are normalized via
// ntseq.Normalize on read.
func ReadFASTA(r io.Reader) ([]Read, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, fastaBufferInit), fastaBufferMax)

	var reads []Read
	var name string
	var seq strings.Builder
	haveRecord := false

	flush := func() {
		if haveRecord {
			reads = append(reads, Read{Name: name, Sequence: ntseq.Normalize(seq.String())})
			seq.Reset()
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			flush()
			name = strings.TrimSpace(line[1:])
			haveRecord = true
		} else {
			seq.WriteString(strings.TrimSpace(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.WrapIO(err, "seqio.ReadFASTA")
	}
	flush()
	return reads, nil
}

// ReadFASTQ parses all records from r (spec.md §4.6). Records whose sequence
// and quality lines differ in length are dropped and counted in invalid,
// matching original_source/pyseq's sequence_block.py discard-on-length-
// mismatch behavior (an UnmappedReference-style soft failure, not an error).
func ReadFASTQ(r io.Reader) (reads []Read, invalid int, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, fastaBufferInit), fastaBufferMax)

	for {
		idLine, ok := nextLine(scanner)
		if !ok {
			break
		}
		if len(idLine) == 0 || idLine[0] != '@' {
			return nil, invalid, errs.WrapFormat(nil, "seqio.ReadFASTQ: expected '@' id line")
		}
		seqLine, ok := nextLine(scanner)
		if !ok {
			return nil, invalid, errs.WrapFormat(nil, "seqio.ReadFASTQ: truncated record (missing sequence line)")
		}
		commentLine, ok := nextLine(scanner)
		if !ok || len(commentLine) == 0 || commentLine[0] != '+' {
			return nil, invalid, errs.WrapFormat(nil, "seqio.ReadFASTQ: expected '+' comment line")
		}
		qualLine, ok := nextLine(scanner)
		if !ok {
			return nil, invalid, errs.WrapFormat(nil, "seqio.ReadFASTQ: truncated record (missing quality line)")
		}
		if len(qualLine) != len(seqLine) {
			invalid++
			continue
		}
		reads = append(reads, Read{
			Name:     strings.TrimPrefix(idLine, "@"),
			Sequence: ntseq.Normalize(seqLine),
			Quality:  qualLine,
			Comment:  commentLine,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, invalid, errs.WrapIO(err, "seqio.ReadFASTQ")
	}
	return reads, invalid, nil
}

func nextLine(scanner *bufio.Scanner) (string, bool) {
	if !scanner.Scan() {
		return "", false
	}
	return scanner.Text(), true
}
