package vcf

import (
	"strconv"
	"strings"

	"github.com/variantio/vcfkit/internal/likelihoods"
)

// GenotypeType classifies a genotype from its allele list.
type GenotypeType int

const (
	// GenotypeNoCall means every allele in the call is a no-call.
	GenotypeNoCall GenotypeType = iota
	// GenotypeHomRef means every allele is the reference allele.
	GenotypeHomRef
	// GenotypeHet means at least two distinct called alleles.
	GenotypeHet
	// GenotypeHomVar means every allele is the same non-reference allele.
	GenotypeHomVar
	// GenotypeMixed means called and no-call alleles are both present.
	GenotypeMixed
	// GenotypeUnavailable means the call has no alleles at all (ploidy 0).
	GenotypeUnavailable
)

func (t GenotypeType) String() string {
	switch t {
	case GenotypeNoCall:
		return "NO_CALL"
	case GenotypeHomRef:
		return "HOM_REF"
	case GenotypeHet:
		return "HET"
	case GenotypeHomVar:
		return "HOM_VAR"
	case GenotypeMixed:
		return "MIXED"
	case GenotypeUnavailable:
		return "UNAVAILABLE"
	}
	return "UNKNOWN"
}

// Genotype is an immutable per-sample call at a locus: the allele list,
// phasing, the inline quality fields, and any extended attributes. Missing
// integer fields are -1, missing arrays are nil. Genotypes are built only
// through GenotypeBuilder and are never mutated afterwards, so they are
// safe to share across goroutines.
type Genotype struct {
	sampleName string
	alleles    []*Allele
	phased     bool
	gq         int
	dp         int
	ad         []int
	pl         []int
	filters    string
	hasFilters bool
	attrs      map[string]any
	gtype      GenotypeType
}

// SampleName returns the sample this genotype belongs to.
func (g *Genotype) SampleName() string { return g.sampleName }

// Alleles returns the ordered call list. The returned slice is shared and
// must not be modified.
func (g *Genotype) Alleles() []*Allele { return g.alleles }

// Allele returns the i-th called allele.
func (g *Genotype) Allele(i int) *Allele { return g.alleles[i] }

// Ploidy returns the number of chromosome copies in the call.
func (g *Genotype) Ploidy() int { return len(g.alleles) }

// Phased reports whether the call is phased.
func (g *Genotype) Phased() bool { return g.phased }

// Type returns the cached genotype classification.
func (g *Genotype) Type() GenotypeType { return g.gtype }

// IsCalled reports whether at least one allele is not a no-call.
func (g *Genotype) IsCalled() bool {
	t := g.gtype
	return t == GenotypeHomRef || t == GenotypeHet || t == GenotypeHomVar || t == GenotypeMixed
}

// IsNoCall reports whether every allele is a no-call.
func (g *Genotype) IsNoCall() bool { return g.gtype == GenotypeNoCall }

// IsAvailable reports whether the genotype has any alleles at all.
func (g *Genotype) IsAvailable() bool { return g.gtype != GenotypeUnavailable }

// IsHom reports a homozygous call (all reference or all the same variant).
func (g *Genotype) IsHom() bool {
	return g.gtype == GenotypeHomRef || g.gtype == GenotypeHomVar
}

// IsHet reports a heterozygous call.
func (g *Genotype) IsHet() bool { return g.gtype == GenotypeHet }

// HasGQ reports whether the phred genotype quality is present.
func (g *Genotype) HasGQ() bool { return g.gq != -1 }

// GQ returns the phred genotype quality, -1 when missing.
func (g *Genotype) GQ() int { return g.gq }

// HasDP reports whether the read depth is present.
func (g *Genotype) HasDP() bool { return g.dp != -1 }

// DP returns the read depth, -1 when missing.
func (g *Genotype) DP() int { return g.dp }

// HasAD reports whether per-allele read depths are present.
func (g *Genotype) HasAD() bool { return g.ad != nil }

// AD returns the per-allele read depths, aligned to the enclosing
// record's allele order. The returned slice must not be modified.
func (g *Genotype) AD() []int { return g.ad }

// HasPL reports whether phred-scaled likelihoods are present.
func (g *Genotype) HasPL() bool { return g.pl != nil }

// PL returns the phred-scaled likelihood array in the VCF triangular
// ordering. The returned slice must not be modified.
func (g *Genotype) PL() []int { return g.pl }

// Likelihoods returns the PL field as a likelihoods value, or nil when
// the field is missing.
func (g *Genotype) Likelihoods() *likelihoods.GenotypeLikelihoods {
	if g.pl == nil {
		return nil
	}
	return likelihoods.FromPLs(g.pl)
}

// HasFilters reports whether genotype-level filters were applied.
func (g *Genotype) HasFilters() bool { return g.hasFilters }

// Filters returns the semicolon-joined failed filter names; empty means
// the genotype passed all applied filters.
func (g *Genotype) Filters() string { return g.filters }

// IsFiltered reports whether the genotype failed at least one filter.
func (g *Genotype) IsFiltered() bool { return g.hasFilters && g.filters != "" }

// HasAttribute reports whether an extended attribute is present.
func (g *Genotype) HasAttribute(key string) bool {
	_, ok := g.attrs[key]
	return ok
}

// Attribute returns an extended attribute value.
func (g *Genotype) Attribute(key string) (any, bool) {
	v, ok := g.attrs[key]
	return v, ok
}

// Attributes returns the extended attribute map. The returned map is
// shared and must not be modified.
func (g *Genotype) Attributes() map[string]any { return g.attrs }

// CountAllele returns how many times the given allele appears in the
// call, ignoring reference state.
func (g *Genotype) CountAllele(a *Allele) int {
	n := 0
	for _, call := range g.alleles {
		if call.Equal(a, true) {
			n++
		}
	}
	return n
}

// String renders the genotype for diagnostics, e.g. "NA12878 A/T".
func (g *Genotype) String() string {
	calls := make([]string, len(g.alleles))
	for i, a := range g.alleles {
		calls[i] = a.Bases()
	}
	sep := unphasedSeparator
	if g.phased {
		sep = phasedSeparator
	}
	var sb strings.Builder
	sb.WriteString(g.sampleName)
	sb.WriteByte(' ')
	sb.WriteString(strings.Join(calls, sep))
	if g.HasGQ() {
		sb.WriteString(" GQ=" + strconv.Itoa(g.gq))
	}
	return sb.String()
}

// determineType classifies an allele list. The result is cached on the
// genotype at construction.
func determineType(alleles []*Allele) GenotypeType {
	if len(alleles) == 0 {
		return GenotypeUnavailable
	}

	sawNoCall := false
	var observed []*Allele
	for _, a := range alleles {
		if a.IsNoCall() {
			sawNoCall = true
			continue
		}
		observed = append(observed, a)
	}

	if len(observed) == 0 {
		return GenotypeNoCall
	}
	if sawNoCall {
		return GenotypeMixed
	}

	allRef, allSame := true, true
	for _, a := range observed {
		if !a.IsReference() {
			allRef = false
		}
		if !a.Equal(observed[0], false) {
			allSame = false
		}
	}
	switch {
	case allRef:
		return GenotypeHomRef
	case allSame:
		return GenotypeHomVar
	default:
		return GenotypeHet
	}
}
