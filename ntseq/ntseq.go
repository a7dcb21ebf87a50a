// Package ntseq implements the nucleotide primitives the rest of this repo
// builds on: alphabet normalization, reverse complement, and ambiguity
// fraction. It has no notion of bins, kmers, or reads.
package ntseq

// complementTable maps every byte to its complement. Letters outside
// {A,C,G,T,N} (case-insensitive) are not valid input to Complement; callers
// normalize with Normalize first.
var complementTable [256]byte

// upperTable uppercases a valid base and maps anything else to 'N'.
var upperTable [256]byte

func init() {
	for i := range complementTable {
		complementTable[i] = 'N'
		upperTable[i] = 'N'
	}
	complementTable['A'], complementTable['a'] = 'T', 'T'
	complementTable['T'], complementTable['t'] = 'A', 'A'
	complementTable['C'], complementTable['c'] = 'G', 'G'
	complementTable['G'], complementTable['g'] = 'C', 'C'
	complementTable['N'], complementTable['n'] = 'N', 'N'

	upperTable['A'], upperTable['a'] = 'A', 'A'
	upperTable['C'], upperTable['c'] = 'C', 'C'
	upperTable['G'], upperTable['g'] = 'G', 'G'
	upperTable['T'], upperTable['t'] = 'T', 'T'
	upperTable['N'], upperTable['n'] = 'N', 'N'
}

// Normalize uppercases seq and maps any byte outside {A,C,G,T,N}
// (case-insensitive) to 'N'.
func Normalize(seq string) string {
	out := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		out[i] = upperTable[seq[i]]
	}
	return string(out)
}

// Complement returns the complement of a single base: A<->T, C<->G, N->N.
// b is assumed already normalized to uppercase ACGTN.
func Complement(b byte) byte {
	return complementTable[b]
}

// ReverseComplement returns the reverse complement of seq. It is an
// involution: ReverseComplement(ReverseComplement(s)) == s for s over
// {A,C,G,T,N}.
func ReverseComplement(seq string) string {
	n := len(seq)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[n-1-i] = complementTable[seq[i]]
	}
	return string(out)
}

// AmbiguityFraction returns the fraction of bases in seq that are 'N'.
// Callers never invoke this on an empty window.
func AmbiguityFraction(seq string) float64 {
	if len(seq) == 0 {
		return 0
	}
	n := 0
	for i := 0; i < len(seq); i++ {
		if seq[i] == 'N' {
			n++
		}
	}
	return float64(n) / float64(len(seq))
}
