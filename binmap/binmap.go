// Package binmap loads the reference-name-to-bin assignment file (spec.md
// §4.7, the "-b" bins.json argument to pyseq_build_db.py) that drives
// binidx.Index.AddReferences.
package binmap

import (
	"encoding/json"
	"io"
	"os"

	"github.com/jacobbierstedt/pyseqgo/binidx"
	"github.com/jacobbierstedt/pyseqgo/errs"
)

// Map assigns reference sequence names to bin ids.
type Map map[string]binidx.BinID

// Load reads a JSON object of {"reference_name": "bin_id", ...} from path
// (spec.md §4.7). A missing or malformed file is reported as IOError /
// FormatError respectively, since a bad bin map cannot be partially used.
func Load(path string) (Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.WrapIO(err, path)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a bin map from r.
func Read(r io.Reader) (Map, error) {
	var raw map[string]string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errs.WrapFormat(err, "binmap: decoding bin map")
	}
	m := make(Map, len(raw))
	for name, bin := range raw {
		m[name] = binidx.BinID(bin)
	}
	return m, nil
}
