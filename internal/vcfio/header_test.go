package vcfio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/variantio/vcfkit/internal/vcf"
)

func TestParseHeaderLine_Info(t *testing.T) {
	h := NewHeader()
	err := h.parseHeaderLine(`##INFO=<ID=AF,Number=A,Type=Float,Description="Allele Frequency">`)
	require.NoError(t, err)

	require.True(t, h.HasInfoLine("AF"))
	line := h.InfoLine("AF")
	assert.Equal(t, "AF", line.ID)
	assert.Equal(t, vcf.NumberA, line.Number)
	assert.Equal(t, vcf.Float, line.Type)
	assert.Equal(t, "Allele Frequency", line.Description)
}

func TestParseHeaderLine_QuotedCommas(t *testing.T) {
	h := NewHeader()
	err := h.parseHeaderLine(`##INFO=<ID=DB,Number=0,Type=Flag,Description="dbSNP membership, build 129">`)
	require.NoError(t, err)
	assert.Equal(t, "dbSNP membership, build 129", h.InfoLine("DB").Description)
}

func TestParseHeaderLine_Numbers(t *testing.T) {
	cases := []struct {
		number string
		want   int
	}{
		{"A", vcf.NumberA},
		{"R", vcf.NumberR},
		{"G", vcf.NumberG},
		{".", vcf.NumberDot},
		{"1", 1},
		{"4", 4},
	}
	for _, tc := range cases {
		h := NewHeader()
		err := h.parseHeaderLine(`##FORMAT=<ID=X,Number=` + tc.number + `,Type=Integer,Description="">`)
		require.NoError(t, err, "Number=%s", tc.number)
		assert.Equal(t, tc.want, h.FormatLine("X").Number, "Number=%s", tc.number)
	}
}

func TestParseHeaderLine_Malformed(t *testing.T) {
	h := NewHeader()
	assert.Error(t, h.parseHeaderLine(`##INFO=<Number=1,Type=Integer,Description="no id">`))
	assert.Error(t, h.parseHeaderLine(`##INFO=<ID=X,Number=two,Type=Integer>`))
	assert.Error(t, h.parseHeaderLine(`##INFO=<ID=X,Number=1,Type=Complex>`))
}

func TestParseHeaderLine_Filter(t *testing.T) {
	h := NewHeader()
	require.NoError(t, h.parseHeaderLine(`##FILTER=<ID=q10,Description="Quality below 10">`))
	assert.True(t, h.HasFilterLine("q10"))
	assert.False(t, h.HasFilterLine("s50"))
	assert.True(t, h.HasFilterLine(vcf.PassFilters), "PASS is always declared")
}

func TestParseHeaderLine_KeepsMetaVerbatim(t *testing.T) {
	h := NewHeader()
	lines := []string{
		"##fileformat=VCFv4.2",
		"##reference=file:///seq/references/hs37d5.fa",
		`##INFO=<ID=DP,Number=1,Type=Integer,Description="Total Depth">`,
	}
	for _, line := range lines {
		require.NoError(t, h.parseHeaderLine(line))
	}
	assert.Equal(t, lines, h.MetaLines())
}

func TestParseHeaderLine_DefaultsWithoutNumberAndType(t *testing.T) {
	h := NewHeader()
	require.NoError(t, h.parseHeaderLine(`##INFO=<ID=X,Description="bare">`))
	line := h.InfoLine("X")
	assert.Equal(t, vcf.NumberDot, line.Number)
	assert.Equal(t, vcf.String, line.Type)
}
