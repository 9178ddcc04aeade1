package vcf

import (
	"fmt"
	"sort"
	"strings"

	"github.com/variantio/vcfkit/internal/likelihoods"
)

// inlineGenotypeKeys are the reserved keys that have dedicated fields on
// Genotype; they may never appear in the extended attribute map.
var inlineGenotypeKeys = map[string]bool{
	GenotypeKey:        true,
	GenotypeQualityKey: true,
	DepthKey:           true,
	AlleleDepthsKey:    true,
	LikelihoodsKey:     true,
	GenotypeFilterKey:  true,
}

// GenotypeBuilder accumulates genotype fields in any order and produces
// immutable Genotype snapshots. Intermediate states may be inconsistent;
// all checking happens in Make. A builder is a single-owner scratch object
// and is not safe for concurrent use. It can be reused after Make; later
// mutations do not affect earlier snapshots.
type GenotypeBuilder struct {
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
}

// NewGenotypeBuilder creates a builder for the given sample with every
// field at its missing value.
func NewGenotypeBuilder(sampleName string) *GenotypeBuilder {
	b := &GenotypeBuilder{}
	b.Reset(false)
	b.sampleName = sampleName
	return b
}

// NewGenotypeBuilderFrom creates a builder primed with an existing
// genotype's state, for replace-not-mutate edits.
func NewGenotypeBuilderFrom(g *Genotype) *GenotypeBuilder {
	b := NewGenotypeBuilder(g.sampleName)
	b.alleles = append([]*Allele(nil), g.alleles...)
	b.phased = g.phased
	b.gq = g.gq
	b.dp = g.dp
	if g.ad != nil {
		b.ad = append([]int(nil), g.ad...)
	}
	if g.pl != nil {
		b.pl = append([]int(nil), g.pl...)
	}
	b.filters = g.filters
	b.hasFilters = g.hasFilters
	for k, v := range g.attrs {
		b.attrs[k] = v
	}
	return b
}

// Reset restores every field to its missing value, optionally keeping the
// sample name.
func (b *GenotypeBuilder) Reset(keepSampleName bool) *GenotypeBuilder {
	if !keepSampleName {
		b.sampleName = ""
	}
	b.alleles = nil
	b.phased = false
	b.gq = -1
	b.dp = -1
	b.ad = nil
	b.pl = nil
	b.filters = ""
	b.hasFilters = false
	b.attrs = make(map[string]any)
	return b
}

// SetSampleName sets the sample this genotype belongs to.
func (b *GenotypeBuilder) SetSampleName(name string) *GenotypeBuilder {
	b.sampleName = name
	return b
}

// SetAlleles sets the ordered call list. An empty list yields an
// unavailable (ploidy 0) genotype.
func (b *GenotypeBuilder) SetAlleles(alleles []*Allele) *GenotypeBuilder {
	b.alleles = append([]*Allele(nil), alleles...)
	return b
}

// SetPhased marks the call as phased or unphased.
func (b *GenotypeBuilder) SetPhased(phased bool) *GenotypeBuilder {
	b.phased = phased
	return b
}

// SetGQ sets the phred genotype quality.
func (b *GenotypeBuilder) SetGQ(gq int) *GenotypeBuilder {
	b.gq = gq
	return b
}

// NoGQ clears the genotype quality.
func (b *GenotypeBuilder) NoGQ() *GenotypeBuilder {
	b.gq = -1
	return b
}

// SetDP sets the read depth.
func (b *GenotypeBuilder) SetDP(dp int) *GenotypeBuilder {
	b.dp = dp
	return b
}

// NoDP clears the read depth.
func (b *GenotypeBuilder) NoDP() *GenotypeBuilder {
	b.dp = -1
	return b
}

// SetAD sets the per-allele read depths, aligned to the enclosing
// record's allele order.
func (b *GenotypeBuilder) SetAD(ad []int) *GenotypeBuilder {
	b.ad = append([]int(nil), ad...)
	return b
}

// NoAD clears the per-allele read depths.
func (b *GenotypeBuilder) NoAD() *GenotypeBuilder {
	b.ad = nil
	return b
}

// SetPL sets the phred-scaled likelihood array in triangular order.
func (b *GenotypeBuilder) SetPL(pl []int) *GenotypeBuilder {
	b.pl = append([]int(nil), pl...)
	return b
}

// SetPLFromLog10 sets the likelihoods from a log10 vector, phred-encoding
// it through the likelihood codec.
func (b *GenotypeBuilder) SetPLFromLog10(log10 []float64) *GenotypeBuilder {
	pls, _ := likelihoods.FromLog10(log10).AsPLs()
	b.pl = pls
	return b
}

// NoPL clears the likelihoods.
func (b *GenotypeBuilder) NoPL() *GenotypeBuilder {
	b.pl = nil
	return b
}

// SetFilters sets the genotype-level filters. No names means unfiltered,
// and the canonical PASS token normalizes to unfiltered as well; a single
// name is kept as is; multiple names are sorted and semicolon-joined. An
// explicit empty string records that filters were applied and passed.
func (b *GenotypeBuilder) SetFilters(names ...string) *GenotypeBuilder {
	kept := make([]string, 0, len(names))
	for _, name := range names {
		if name != PassFilters {
			kept = append(kept, name)
		}
	}
	switch {
	case len(kept) == 0:
		b.filters = ""
		b.hasFilters = false
	case len(kept) == 1:
		b.filters = kept[0]
		b.hasFilters = true
	default:
		sort.Strings(kept)
		b.filters = strings.Join(kept, filterSeparator)
		b.hasFilters = true
	}
	return b
}

// SetAttribute adds an extended attribute. The reserved inline keys are
// rejected: those values belong in their dedicated fields.
func (b *GenotypeBuilder) SetAttribute(key string, value any) error {
	if inlineGenotypeKeys[key] {
		return fmt.Errorf("genotype attribute key %q is reserved for an inline field", key)
	}
	b.attrs[key] = value
	return nil
}

// ClearAttributes removes every extended attribute.
func (b *GenotypeBuilder) ClearAttributes() *GenotypeBuilder {
	b.attrs = make(map[string]any)
	return b
}

// Make validates the accumulated state and produces an immutable
// Genotype. The builder remains usable; further mutation produces
// independent snapshots.
func (b *GenotypeBuilder) Make() (*Genotype, error) {
	if b.sampleName == "" {
		return nil, fmt.Errorf("genotype requires a sample name")
	}
	g := &Genotype{
		sampleName: b.sampleName,
		alleles:    append([]*Allele(nil), b.alleles...),
		phased:     b.phased,
		gq:         b.gq,
		dp:         b.dp,
		filters:    b.filters,
		hasFilters: b.hasFilters,
		attrs:      make(map[string]any, len(b.attrs)),
	}
	if b.ad != nil {
		g.ad = append([]int(nil), b.ad...)
	}
	if b.pl != nil {
		g.pl = append([]int(nil), b.pl...)
	}
	for k, v := range b.attrs {
		g.attrs[k] = v
	}
	g.gtype = determineType(g.alleles)
	return g, nil
}

// MissingGenotype returns the canonical "no data" genotype for a sample:
// the given number of no-call alleles, unphased, no inline fields. The
// serializer substitutes it when a header-declared sample has no genotype
// at a site.
func MissingGenotype(sampleName string, ploidy int) *Genotype {
	alleles := make([]*Allele, ploidy)
	for i := range alleles {
		alleles[i] = NoCallAllele
	}
	return &Genotype{
		sampleName: sampleName,
		alleles:    alleles,
		gq:         -1,
		dp:         -1,
		attrs:      map[string]any{},
		gtype:      determineType(alleles),
	}
}
