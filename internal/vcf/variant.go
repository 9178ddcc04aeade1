package vcf

import (
	"fmt"
	"sort"
	"sync"
)

// NoLog10PError is the sentinel for a record without a QUAL value.
const NoLog10PError = 1.0

// EmptyID is the ID column value of a record without an identifier.
const EmptyID = missingValue

// VariantType classifies a record from its allele set.
type VariantType int

const (
	// VariantNoVariation is a site with only the reference allele.
	VariantNoVariation VariantType = iota
	// VariantSNP is a single-base substitution.
	VariantSNP
	// VariantMNP is a multi-base substitution of equal length.
	VariantMNP
	// VariantIndel is an insertion or deletion.
	VariantIndel
	// VariantSymbolic has at least one symbolic or breakend allele.
	VariantSymbolic
	// VariantMixed has alternate alleles of differing classes.
	VariantMixed
)

func (t VariantType) String() string {
	switch t {
	case VariantNoVariation:
		return "NO_VARIATION"
	case VariantSNP:
		return "SNP"
	case VariantMNP:
		return "MNP"
	case VariantIndel:
		return "INDEL"
	case VariantSymbolic:
		return "SYMBOLIC"
	case VariantMixed:
		return "MIXED"
	}
	return "UNKNOWN"
}

// Variant is the immutable locus-level record: contig, 1-based start and
// stop, allele set with the reference at index 0, per-sample genotypes,
// and the common QUAL/FILTER/INFO data. Records are built only through
// VariantBuilder, which validates the construction invariants; a finished
// record is deeply immutable and freely shareable, with edits producing a
// replacement via a copied builder.
type Variant struct {
	source       string
	contig       string
	start        int64
	stop         int64
	id           string
	alleles      []*Allele
	genotypes    *GenotypesContext
	log10PError  float64
	filters      map[string]struct{}
	attrs        map[string]any
	fullyDecoded bool

	typeOnce sync.Once
	vtype    VariantType

	statsOnce sync.Once
	stats     genotypeStats
	statsErr  error
}

type genotypeStats struct {
	typeCounts     map[GenotypeType]int
	calledChrCount int
	calledAltCount int
}

// Source returns the record's source label.
func (v *Variant) Source() string { return v.source }

// Contig returns the contig name.
func (v *Variant) Contig() string { return v.contig }

// Start returns the 1-based start position.
func (v *Variant) Start() int64 { return v.start }

// Stop returns the 1-based inclusive stop position.
func (v *Variant) Stop() int64 { return v.stop }

// ID returns the record identifier, EmptyID when none is set.
func (v *Variant) ID() string { return v.id }

// HasID reports whether a real identifier is set.
func (v *Variant) HasID() bool { return v.id != EmptyID }

// Ref returns the reference allele (always at index 0).
func (v *Variant) Ref() *Allele { return v.alleles[0] }

// Alleles returns the full allele set, reference first. The returned
// slice is shared and must not be modified.
func (v *Variant) Alleles() []*Allele { return v.alleles }

// AltAlleles returns the alternate alleles. The returned slice is shared
// and must not be modified.
func (v *Variant) AltAlleles() []*Allele { return v.alleles[1:] }

// NumAlleles returns the size of the allele set, reference included.
func (v *Variant) NumAlleles() int { return len(v.alleles) }

// AlleleIndex returns the position of the given allele in the record's
// allele set, ignoring reference state.
func (v *Variant) AlleleIndex(a *Allele) (int, bool) {
	for i, b := range v.alleles {
		if b.Equal(a, true) {
			return i, true
		}
	}
	return 0, false
}

// Genotypes returns the record's genotype collection.
func (v *Variant) Genotypes() *GenotypesContext { return v.genotypes }

// HasGenotypes reports whether any sample genotypes are attached. It
// never forces a lazy decode.
func (v *Variant) HasGenotypes() bool { return !v.genotypes.Empty() }

// HasLog10PError reports whether a QUAL value is present.
func (v *Variant) HasLog10PError() bool { return v.log10PError != NoLog10PError }

// Log10PError returns the log10 error probability backing QUAL.
func (v *Variant) Log10PError() float64 { return v.log10PError }

// PhredScaledQual returns QUAL on the phred scale.
func (v *Variant) PhredScaledQual() float64 { return v.log10PError * -10 }

// FiltersApplied reports whether the FILTER column was evaluated at all.
func (v *Variant) FiltersApplied() bool { return v.filters != nil }

// IsFiltered reports whether the record failed at least one filter.
func (v *Variant) IsFiltered() bool { return len(v.filters) > 0 }

// Filters returns the failed filter names in sorted order.
func (v *Variant) Filters() []string {
	if len(v.filters) == 0 {
		return nil
	}
	names := make([]string, 0, len(v.filters))
	for name := range v.filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasAttribute reports whether an INFO attribute is present.
func (v *Variant) HasAttribute(key string) bool {
	_, ok := v.attrs[key]
	return ok
}

// Attribute returns an INFO attribute value.
func (v *Variant) Attribute(key string) (any, bool) {
	val, ok := v.attrs[key]
	return val, ok
}

// Attributes returns the INFO attribute map. The returned map is shared
// and must not be modified.
func (v *Variant) Attributes() map[string]any { return v.attrs }

// FullyDecoded reports whether attribute values have been converted to
// their header-declared types.
func (v *Variant) FullyDecoded() bool { return v.fullyDecoded }

// Type returns the record classification, computed once from the allele
// set and cached.
func (v *Variant) Type() VariantType {
	v.typeOnce.Do(func() {
		v.vtype = classifyAlleles(v.Ref(), v.AltAlleles())
	})
	return v.vtype
}

// IsSNP reports whether the record is a simple single-base substitution.
func (v *Variant) IsSNP() bool { return v.Type() == VariantSNP }

// IsIndel reports whether the record is an insertion or deletion.
func (v *Variant) IsIndel() bool { return v.Type() == VariantIndel }

// IsBiallelic reports whether the record has exactly one alternate allele.
func (v *Variant) IsBiallelic() bool { return len(v.alleles) == 2 }

// IsSymbolicOrSV reports whether any allele in the set is symbolic.
func (v *Variant) IsSymbolicOrSV() bool {
	for _, a := range v.alleles {
		if a.IsSymbolic() {
			return true
		}
	}
	return false
}

// classifyAlleles runs the per-allele reduction: each alternate is
// classified against the reference on its own, and a disagreement between
// alternates makes the whole record MIXED. Equal-length comparison comes
// before any length-based check so that equal-length multi-base pairs are
// MNPs and never misread as indels.
func classifyAlleles(ref *Allele, alts []*Allele) VariantType {
	if len(alts) == 0 {
		return VariantNoVariation
	}
	vtype := classifyBiallelic(ref, alts[0])
	for _, alt := range alts[1:] {
		if classifyBiallelic(ref, alt) != vtype {
			return VariantMixed
		}
	}
	return vtype
}

func classifyBiallelic(ref, alt *Allele) VariantType {
	if ref.IsSymbolic() || alt.IsSymbolic() {
		return VariantSymbolic
	}
	if len(ref.Bases()) == len(alt.Bases()) {
		if len(alt.Bases()) == 1 {
			return VariantSNP
		}
		return VariantMNP
	}
	return VariantIndel
}

// GenotypeTypeCounts returns how many genotypes of each type the record
// carries. Computed once and cached; forces a lazy decode.
func (v *Variant) GenotypeTypeCounts() (map[GenotypeType]int, error) {
	if err := v.computeStats(); err != nil {
		return nil, err
	}
	return v.stats.typeCounts, nil
}

// CalledChrCount returns the number of called (non-no-call) alleles
// across all genotypes. Forces a lazy decode.
func (v *Variant) CalledChrCount() (int, error) {
	if err := v.computeStats(); err != nil {
		return 0, err
	}
	return v.stats.calledChrCount, nil
}

// CalledAlleleCount returns how many times the given allele was called
// across all genotypes. Forces a lazy decode.
func (v *Variant) CalledAlleleCount(a *Allele) (int, error) {
	gs, err := v.genotypes.Genotypes()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, g := range gs {
		n += g.CountAllele(a)
	}
	return n, nil
}

// IsMonomorphicInSamples reports whether no sample carries a called
// alternate allele. Forces a lazy decode.
func (v *Variant) IsMonomorphicInSamples() (bool, error) {
	if err := v.computeStats(); err != nil {
		return false, err
	}
	return v.stats.calledAltCount == 0, nil
}

// IsPolymorphicInSamples is the negation of IsMonomorphicInSamples.
func (v *Variant) IsPolymorphicInSamples() (bool, error) {
	mono, err := v.IsMonomorphicInSamples()
	return !mono, err
}

func (v *Variant) computeStats() error {
	v.statsOnce.Do(func() {
		gs, err := v.genotypes.Genotypes()
		if err != nil {
			v.statsErr = err
			return
		}
		stats := genotypeStats{typeCounts: make(map[GenotypeType]int)}
		for _, g := range gs {
			stats.typeCounts[g.Type()]++
			for _, a := range g.Alleles() {
				if a.IsNoCall() {
					continue
				}
				stats.calledChrCount++
				if !a.IsReference() {
					stats.calledAltCount++
				}
			}
		}
		v.stats = stats
	})
	return v.statsErr
}

// String renders the record locus and alleles for diagnostics.
func (v *Variant) String() string {
	return fmt.Sprintf("%s:%d-%d %v", v.contig, v.start, v.stop, v.alleles)
}
