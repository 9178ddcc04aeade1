// Package likelihoods implements the genotype-likelihood codec used by VCF
// records: phred-scaled PL arrays, log10 likelihood vectors, and the
// allele-pair combinatorics that map between the two.
package likelihoods

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxPL caps individual phred-scaled likelihood values during encoding.
const MaxPL = math.MaxInt32

// GenotypeLikelihoods holds genotype likelihoods as a log10 vector, a
// phred-scaled encoding, or both. Whichever representation is missing is
// derived from the other on first access and memoized. Instances are not
// safe for concurrent first access; once both representations exist they
// are read-only.
type GenotypeLikelihoods struct {
	log10 []float64
	pls   []int
	raw   string // unparsed PL (or GL) text, consumed on first decode
	rawGL bool   // raw holds deprecated log10-scale GL values
	err   error  // sticky decode error
}

// FromLog10 creates likelihoods from a log10 probability vector.
func FromLog10(vector []float64) *GenotypeLikelihoods {
	v := make([]float64, len(vector))
	copy(v, vector)
	return &GenotypeLikelihoods{log10: v}
}

// FromPLs creates likelihoods from an integer phred-scaled array.
func FromPLs(pls []int) *GenotypeLikelihoods {
	v := make([]float64, len(pls))
	for i, pl := range pls {
		v[i] = float64(pl) / -10.0
	}
	p := make([]int, len(pls))
	copy(p, pls)
	return &GenotypeLikelihoods{log10: v, pls: p}
}

// FromPLString creates likelihoods from the comma-joined PL text of a VCF
// genotype field. The text is not parsed until the likelihoods are first
// accessed; malformed text surfaces as an error at that point.
func FromPLString(s string) *GenotypeLikelihoods {
	return &GenotypeLikelihoods{raw: s}
}

// FromGLString creates likelihoods from the deprecated comma-joined GL
// (log10-scale) text. Parsing is deferred like FromPLString.
func FromGLString(s string) *GenotypeLikelihoods {
	return &GenotypeLikelihoods{raw: s, rawGL: true}
}

// AsVector returns the log10 likelihood vector, decoding the raw phred or
// GL text on first use.
func (gl *GenotypeLikelihoods) AsVector() ([]float64, error) {
	if gl.err != nil {
		return nil, gl.err
	}
	if gl.log10 == nil {
		if err := gl.decodeRaw(); err != nil {
			gl.err = err
			return nil, err
		}
	}
	return gl.log10, nil
}

// AsPLs returns the integer phred-scaled array, encoding from the log10
// vector on first use. The minimum of the returned array is always 0.
func (gl *GenotypeLikelihoods) AsPLs() ([]int, error) {
	if gl.pls == nil {
		v, err := gl.AsVector()
		if err != nil {
			return nil, err
		}
		gl.pls = log10ToPLs(v)
	}
	return gl.pls, nil
}

// AsString returns the canonical comma-joined phred encoding.
func (gl *GenotypeLikelihoods) AsString() (string, error) {
	pls, err := gl.AsPLs()
	if err != nil {
		return "", err
	}
	parts := make([]string, len(pls))
	for i, pl := range pls {
		parts[i] = strconv.Itoa(pl)
	}
	return strings.Join(parts, ","), nil
}

// String implements fmt.Stringer. Undecodable likelihoods render as the
// raw text they were constructed from.
func (gl *GenotypeLikelihoods) String() string {
	s, err := gl.AsString()
	if err != nil {
		return gl.raw
	}
	return s
}

// Equal reports whether two likelihoods encode the same phred array,
// regardless of how each was constructed. Undecodable likelihoods are
// never equal to anything.
func (gl *GenotypeLikelihoods) Equal(other *GenotypeLikelihoods) bool {
	if gl == nil || other == nil {
		return gl == other
	}
	a, err := gl.AsPLs()
	if err != nil {
		return false
	}
	b, err := other.AsPLs()
	if err != nil {
		return false
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (gl *GenotypeLikelihoods) decodeRaw() error {
	parts := strings.Split(gl.raw, ",")
	v := make([]float64, len(parts))
	for i, p := range parts {
		if gl.rawGL {
			f, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return fmt.Errorf("malformed GL value %q: %w", p, err)
			}
			v[i] = f
			continue
		}
		pl, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("malformed PL value %q: %w", p, err)
		}
		v[i] = float64(pl) / -10.0
	}
	gl.log10 = v
	gl.raw = ""
	return nil
}

// log10ToPLs phred-encodes a log10 vector, shifting so the best genotype
// reports 0 and clamping each value at MaxPL.
func log10ToPLs(v []float64) []int {
	adjust := math.Inf(-1)
	for _, x := range v {
		if x > adjust {
			adjust = x
		}
	}
	pls := make([]int, len(v))
	for i, x := range v {
		pls[i] = int(math.Round(math.Min(-10*(x-adjust), MaxPL)))
	}
	return pls
}
