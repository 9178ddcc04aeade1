package vcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hetVariant(t *testing.T, b *VariantBuilder) *Variant {
	t.Helper()
	g := mustGenotype(t, NewGenotypeBuilder("s1").SetAlleles([]*Allele{refA, altT}))
	return mustMake(t, b.SetGenotypes(NewGenotypesContext(g)))
}

func TestValidateReferenceBases(t *testing.T) {
	v := mustMake(t, snpBuilder())
	assert.NoError(t, v.ValidateReferenceBases("A"))
	assert.NoError(t, v.ValidateReferenceBases("a"))
	assert.Error(t, v.ValidateReferenceBases("C"))

	b := NewVariantBuilder().SetContig("1").SetStart(100).SetStop(5000)
	require.NoError(t, b.SetAlleleStrings("A", "<DEL>"))
	sym := mustMake(t, b)
	assert.NoError(t, sym.ValidateReferenceBases("A"))
}

func TestValidateRSIDs(t *testing.T) {
	known := map[string]bool{"rs123": true}

	v := mustMake(t, snpBuilder().SetID("rs123"))
	assert.NoError(t, v.ValidateRSIDs(known))

	v = mustMake(t, snpBuilder().SetID("rs999"))
	assert.Error(t, v.ValidateRSIDs(known))

	// Multiple IDs; every rs entry must be known, others are ignored.
	v = mustMake(t, snpBuilder().SetID("custom1,rs123"))
	assert.NoError(t, v.ValidateRSIDs(known))

	v = mustMake(t, snpBuilder().SetID("rs123,rs999"))
	assert.Error(t, v.ValidateRSIDs(known))

	// A record without an ID has nothing to check.
	v = mustMake(t, snpBuilder())
	assert.NoError(t, v.ValidateRSIDs(map[string]bool{}))
}

func TestValidateAlternateAlleles(t *testing.T) {
	v := hetVariant(t, snpBuilder())
	assert.NoError(t, v.ValidateAlternateAlleles())

	// An alternate no genotype calls fails.
	b := NewVariantBuilder().SetContig("1").SetStart(100).SetStop(100)
	b.SetAlleles([]*Allele{refA, altT, altG})
	v = hetVariant(t, b)
	err := v.ValidateAlternateAlleles()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "G")

	// Sites-only records pass vacuously.
	v = mustMake(t, snpBuilder())
	assert.NoError(t, v.ValidateAlternateAlleles())
}

func TestValidateChromosomeCounts(t *testing.T) {
	// One het diploid sample: AN=2, AC=1 for the single alternate.
	v := hetVariant(t, snpBuilder().SetAttribute("AN", "2").SetAttribute("AC", "1"))
	assert.NoError(t, v.ValidateChromosomeCounts())

	v = hetVariant(t, snpBuilder().SetAttribute("AN", "4"))
	assert.Error(t, v.ValidateChromosomeCounts())

	v = hetVariant(t, snpBuilder().SetAttribute("AC", "2"))
	assert.Error(t, v.ValidateChromosomeCounts())

	// AC arity must match the alternate allele count.
	v = hetVariant(t, snpBuilder().SetAttribute("AC", "1,0"))
	assert.Error(t, v.ValidateChromosomeCounts())

	// Decoded integer values work the same as raw text.
	v = hetVariant(t, snpBuilder().SetAttribute("AN", 2).SetAttribute("AC", []any{1}))
	assert.NoError(t, v.ValidateChromosomeCounts())

	// Without genotypes there is nothing to compare against.
	v = mustMake(t, snpBuilder().SetAttribute("AN", "17"))
	assert.NoError(t, v.ValidateChromosomeCounts())
}
