package vcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/variantio/vcfkit/internal/likelihoods"
)

func TestFullyDecode_InfoTyping(t *testing.T) {
	v := mustMake(t, snpBuilder().
		SetAttribute("DP", "42").
		SetAttribute("AF", "0.25").
		SetAttribute("DB", true))

	d, err := v.FullyDecode(newTestHeader(), false)
	require.NoError(t, err)
	assert.True(t, d.FullyDecoded())

	dp, _ := d.Attribute("DP")
	assert.Equal(t, 42, dp)
	af, _ := d.Attribute("AF")
	assert.Equal(t, 0.25, af)
	db, _ := d.Attribute("DB")
	assert.Equal(t, true, db)

	// The source record is untouched.
	raw, _ := v.Attribute("DP")
	assert.Equal(t, "42", raw)
	assert.False(t, v.FullyDecoded())
}

func TestFullyDecode_Idempotent(t *testing.T) {
	v := mustMake(t, snpBuilder().SetAttribute("DP", "42"))
	d, err := v.FullyDecode(newTestHeader(), false)
	require.NoError(t, err)
	again, err := d.FullyDecode(newTestHeader(), false)
	require.NoError(t, err)
	assert.Same(t, d, again)
}

func TestFullyDecode_ListsAndMissing(t *testing.T) {
	h := newTestHeader()
	h.infos["AC"] = &FieldLine{ID: "AC", Type: Integer, Number: NumberA}
	v := mustMake(t, NewVariantBuilder().
		SetContig("1").SetStart(100).SetStop(100).
		SetAlleles([]*Allele{refA, altT, altG}).
		SetAttribute("AC", "3,."))

	d, err := v.FullyDecode(h, false)
	require.NoError(t, err)
	ac, _ := d.Attribute("AC")
	assert.Equal(t, []any{3, nil}, ac)
}

func TestFullyDecode_ArityMismatch(t *testing.T) {
	v := mustMake(t, snpBuilder().SetAttribute("DP", "1,2"))

	_, err := v.FullyDecode(newTestHeader(), false)
	var derr *DecodeError
	require.ErrorAs(t, err, &derr)

	// Lenient mode keeps the values as a list.
	d, err := v.FullyDecode(newTestHeader(), true)
	require.NoError(t, err)
	dp, _ := d.Attribute("DP")
	assert.Equal(t, []any{1, 2}, dp)
}

func TestFullyDecode_UndeclaredKey(t *testing.T) {
	v := mustMake(t, snpBuilder().SetAttribute("XX", "7"))

	_, err := v.FullyDecode(newTestHeader(), false)
	var herr *HeaderConsistencyError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "INFO", herr.Section)

	// Lenient mode passes the raw value through.
	d, err := v.FullyDecode(newTestHeader(), true)
	require.NoError(t, err)
	xx, _ := d.Attribute("XX")
	assert.Equal(t, "7", xx)
}

func TestFullyDecode_BadInteger(t *testing.T) {
	v := mustMake(t, snpBuilder().SetAttribute("DP", "many"))
	_, err := v.FullyDecode(newTestHeader(), false)
	var derr *DecodeError
	require.ErrorAs(t, err, &derr)
	assert.Contains(t, derr.Error(), "DP")
}

func TestFullyDecode_GenotypeAttributes(t *testing.T) {
	h := newTestHeader("s1")
	h.formats["HQ"] = &FieldLine{ID: "HQ", Type: Integer, Number: 2}

	gb := NewGenotypeBuilder("s1").SetAlleles([]*Allele{refA, altT})
	require.NoError(t, gb.SetAttribute("HQ", "20,30"))
	g := mustGenotype(t, gb)
	v := mustMake(t, snpBuilder().SetGenotypes(NewGenotypesContext(g)))

	d, err := v.FullyDecode(h, false)
	require.NoError(t, err)
	dg, err := d.Genotypes().Get(0)
	require.NoError(t, err)
	hq, ok := dg.Attribute("HQ")
	require.True(t, ok)
	assert.Equal(t, []any{20, 30}, hq)
}

func TestFullyDecode_LikelihoodAttributes(t *testing.T) {
	h := newTestHeader("s1")

	gb := NewGenotypeBuilder("s1").SetAlleles([]*Allele{refA, altT})
	require.NoError(t, gb.SetAttribute("GL", "-1.0,0.0,-2.0"))
	g := mustGenotype(t, gb)
	v := mustMake(t, snpBuilder().SetGenotypes(NewGenotypesContext(g)))

	h.formats["GL"] = &FieldLine{ID: "GL", Type: Float, Number: NumberG}
	d, err := v.FullyDecode(h, false)
	require.NoError(t, err)
	dg, err := d.Genotypes().Get(0)
	require.NoError(t, err)
	gl, ok := dg.Attribute("GL")
	require.True(t, ok)
	lk, ok := gl.(*likelihoods.GenotypeLikelihoods)
	require.True(t, ok)
	pls, err := lk.AsPLs()
	require.NoError(t, err)
	assert.Equal(t, []int{10, 0, 20}, pls)
}

func TestFullyDecode_CharacterAndString(t *testing.T) {
	h := newTestHeader()
	h.infos["BASE"] = &FieldLine{ID: "BASE", Type: Character, Number: 1}
	h.infos["NOTE"] = &FieldLine{ID: "NOTE", Type: String, Number: 1}

	v := mustMake(t, snpBuilder().
		SetAttribute("BASE", "G").
		SetAttribute("NOTE", "seen"))
	d, err := v.FullyDecode(h, false)
	require.NoError(t, err)

	base, _ := d.Attribute("BASE")
	assert.Equal(t, 'G', base)
	note, _ := d.Attribute("NOTE")
	assert.Equal(t, "seen", note)

	v = mustMake(t, snpBuilder().SetAttribute("BASE", "GT"))
	_, err = v.FullyDecode(h, false)
	assert.Error(t, err)
}
