package vcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	refA = MustAllele("A", true)
	altT = MustAllele("T", false)
	altG = MustAllele("G", false)
)

func TestGenotypeType_Classification(t *testing.T) {
	cases := []struct {
		name    string
		alleles []*Allele
		want    GenotypeType
	}{
		{"hom ref", []*Allele{refA, refA}, GenotypeHomRef},
		{"het", []*Allele{refA, altT}, GenotypeHet},
		{"het two alts", []*Allele{altT, altG}, GenotypeHet},
		{"hom var", []*Allele{altT, altT}, GenotypeHomVar},
		{"no call", []*Allele{NoCallAllele, NoCallAllele}, GenotypeNoCall},
		{"mixed", []*Allele{refA, NoCallAllele}, GenotypeMixed},
		{"unavailable", nil, GenotypeUnavailable},
		{"haploid ref", []*Allele{refA}, GenotypeHomRef},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := NewGenotypeBuilder("s1").SetAlleles(tc.alleles).Make()
			require.NoError(t, err)
			assert.Equal(t, tc.want, g.Type())
		})
	}
}

func TestGenotypeBuilder_InlineFields(t *testing.T) {
	b := NewGenotypeBuilder("NA12878")
	b.SetAlleles([]*Allele{refA, altT})
	b.SetGQ(99)
	b.SetDP(30)
	b.SetAD([]int{12, 18})
	b.SetPL([]int{40, 0, 50})

	g, err := b.Make()
	require.NoError(t, err)

	assert.Equal(t, "NA12878", g.SampleName())
	assert.Equal(t, 2, g.Ploidy())
	assert.True(t, g.HasGQ())
	assert.Equal(t, 99, g.GQ())
	assert.Equal(t, 30, g.DP())
	assert.Equal(t, []int{12, 18}, g.AD())
	assert.Equal(t, []int{40, 0, 50}, g.PL())
	assert.True(t, g.IsHet())

	// Clearing fields produces an independent snapshot.
	g2, err := b.NoGQ().NoPL().Make()
	require.NoError(t, err)
	assert.False(t, g2.HasGQ())
	assert.False(t, g2.HasPL())
	assert.True(t, g.HasGQ(), "earlier snapshot must be unaffected")
}

func TestGenotypeBuilder_PLFromLog10(t *testing.T) {
	g, err := NewGenotypeBuilder("s1").
		SetAlleles([]*Allele{refA, altT}).
		SetPLFromLog10([]float64{-1, 0, -2}).
		Make()
	require.NoError(t, err)
	assert.Equal(t, []int{10, 0, 20}, g.PL())
}

func TestGenotypeBuilder_Filters(t *testing.T) {
	b := NewGenotypeBuilder("s1")

	g, err := b.SetFilters().Make()
	require.NoError(t, err)
	assert.False(t, g.HasFilters())

	g, err = b.SetFilters("PASS").Make()
	require.NoError(t, err)
	assert.False(t, g.HasFilters(), "PASS normalizes to unfiltered")

	g, err = b.SetFilters("").Make()
	require.NoError(t, err)
	assert.True(t, g.HasFilters())
	assert.False(t, g.IsFiltered())

	g, err = b.SetFilters("lowGQ").Make()
	require.NoError(t, err)
	assert.True(t, g.IsFiltered())
	assert.Equal(t, "lowGQ", g.Filters())

	g, err = b.SetFilters("z", "a", "m").Make()
	require.NoError(t, err)
	assert.Equal(t, "a;m;z", g.Filters())
}

func TestGenotypeBuilder_RejectsInlineAttributeKeys(t *testing.T) {
	b := NewGenotypeBuilder("s1")
	for _, key := range []string{"GT", "GQ", "DP", "AD", "PL", "FT"} {
		assert.Error(t, b.SetAttribute(key, "x"), "key %s must be rejected", key)
	}
	assert.NoError(t, b.SetAttribute("HQ", "40,40"))
}

func TestGenotypeBuilder_RequiresSampleName(t *testing.T) {
	_, err := NewGenotypeBuilder("").SetAlleles([]*Allele{refA}).Make()
	assert.Error(t, err)
}

func TestGenotypeBuilder_Reset(t *testing.T) {
	b := NewGenotypeBuilder("s1")
	b.SetAlleles([]*Allele{refA, altT}).SetGQ(30).SetPhased(true)

	b.Reset(true)
	g, err := b.Make()
	require.NoError(t, err)
	assert.Equal(t, "s1", g.SampleName())
	assert.Equal(t, 0, g.Ploidy())
	assert.False(t, g.HasGQ())
	assert.False(t, g.Phased())

	b.Reset(false)
	_, err = b.Make()
	assert.Error(t, err, "reset without keeping the sample name leaves the builder unmakeable")
}

func TestMissingGenotype(t *testing.T) {
	g := MissingGenotype("s2", 2)
	assert.Equal(t, 2, g.Ploidy())
	assert.Equal(t, GenotypeNoCall, g.Type())
	assert.False(t, g.Phased())
	assert.False(t, g.HasGQ())
	assert.False(t, g.HasDP())
}

func TestGenotype_CountAllele(t *testing.T) {
	g, err := NewGenotypeBuilder("s1").SetAlleles([]*Allele{altT, altT}).Make()
	require.NoError(t, err)
	assert.Equal(t, 2, g.CountAllele(MustAllele("T", false)))
	assert.Equal(t, 0, g.CountAllele(refA))
}
