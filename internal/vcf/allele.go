// Package vcf implements the VCF record model: alleles, per-sample
// genotypes, the locus-level variant record, and the codec that turns a
// validated record back into a byte-exact VCF line.
package vcf

import (
	"fmt"
	"strings"
)

// Allele is an immutable haplotype fragment observed at a locus: a base
// sequence, or a symbolic token such as <DEL>, or the no-call marker.
// Alleles are created once and shared freely across genotypes and records.
type Allele struct {
	bases      string
	isRef      bool
	isNoCall   bool
	isSymbolic bool
}

// NoCallAllele is the shared no-call allele used inside genotype call
// lists. It is never a valid member of a record's allele set.
var NoCallAllele = &Allele{bases: missingValue, isNoCall: true}

// SpanDelAllele is the shared spanning-deletion allele ("*").
var SpanDelAllele = &Allele{bases: "*", isSymbolic: true}

// NewAllele creates an allele from its VCF text form. "." yields the
// no-call allele, "<...>" and breakend forms yield symbolic alleles, and
// anything else must be a non-empty base string over ACGTN.
func NewAllele(bases string, isRef bool) (*Allele, error) {
	if bases == missingValue {
		if isRef {
			return nil, fmt.Errorf("the no-call allele cannot be the reference allele")
		}
		return NoCallAllele, nil
	}
	if bases == "*" {
		if isRef {
			return nil, fmt.Errorf("the spanning-deletion allele cannot be the reference allele")
		}
		return SpanDelAllele, nil
	}
	if isSymbolicBases(bases) {
		if isRef {
			return nil, fmt.Errorf("symbolic allele %q cannot be the reference allele", bases)
		}
		return &Allele{bases: bases, isSymbolic: true}, nil
	}
	upper := strings.ToUpper(bases)
	if !acceptableBases(upper) {
		return nil, fmt.Errorf("invalid allele bases %q", bases)
	}
	return &Allele{bases: upper, isRef: isRef}, nil
}

// MustAllele is NewAllele for inputs known to be valid, such as literals
// in tests.
func MustAllele(bases string, isRef bool) *Allele {
	a, err := NewAllele(bases, isRef)
	if err != nil {
		panic(err)
	}
	return a
}

func isSymbolicBases(bases string) bool {
	if len(bases) >= 2 && bases[0] == '<' && bases[len(bases)-1] == '>' {
		return true
	}
	// Breakend notation embeds a mate locus in brackets.
	return strings.ContainsAny(bases, "[]")
}

func acceptableBases(bases string) bool {
	if bases == "" {
		return false
	}
	for i := 0; i < len(bases); i++ {
		switch bases[i] {
		case 'A', 'C', 'G', 'T', 'N':
		default:
			return false
		}
	}
	return true
}

// Bases returns the allele's base string ("." for no-call).
func (a *Allele) Bases() string { return a.bases }

// Length returns the number of bases; symbolic and no-call alleles report 0.
func (a *Allele) Length() int {
	if a.isSymbolic || a.isNoCall {
		return 0
	}
	return len(a.bases)
}

// IsReference reports whether this is the record's reference allele.
func (a *Allele) IsReference() bool { return a.isRef }

// IsNoCall reports whether this is the no-call allele.
func (a *Allele) IsNoCall() bool { return a.isNoCall }

// IsCalled reports whether this is an actual allele rather than a no-call.
func (a *Allele) IsCalled() bool { return !a.isNoCall }

// IsSymbolic reports whether this is a symbolic or breakend allele.
func (a *Allele) IsSymbolic() bool { return a.isSymbolic }

// Equal compares two alleles; with ignoreRefState the reference flag is
// not part of the comparison.
func (a *Allele) Equal(other *Allele, ignoreRefState bool) bool {
	if a == other {
		return true
	}
	if a == nil || other == nil {
		return false
	}
	if !ignoreRefState && a.isRef != other.isRef {
		return false
	}
	return a.isNoCall == other.isNoCall && a.bases == other.bases
}

// String renders the allele for diagnostics, marking the reference allele
// with a trailing '*'.
func (a *Allele) String() string {
	if a.isRef {
		return a.bases + "*"
	}
	return a.bases
}
