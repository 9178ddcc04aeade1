package vcfio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/variantio/vcfkit/internal/vcf"
)

const sampleVCF = `##fileformat=VCFv4.2
##INFO=<ID=AF,Number=A,Type=Float,Description="Allele Frequency">
##INFO=<ID=DB,Number=0,Type=Flag,Description="dbSNP membership, build 129">
##INFO=<ID=DP,Number=1,Type=Integer,Description="Total Depth">
##INFO=<ID=END,Number=1,Type=Integer,Description="End position of the variant">
##FILTER=<ID=q10,Description="Quality below 10">
##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">
##FORMAT=<ID=GQ,Number=1,Type=Integer,Description="Genotype Quality">
##FORMAT=<ID=DP,Number=1,Type=Integer,Description="Read Depth">
##FORMAT=<ID=PL,Number=G,Type=Integer,Description="Phred-scaled genotype likelihoods">
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	NA00001	NA00002
20	14370	rs6054257	G	A	29	PASS	AF=0.500;DB;DP=14	GT:DP:GQ:PL	0|0:1:48:0,48,480	1/1:5:43:500,50,0
20	17330	.	T	A	3	q10	AF=0.017;DP=11	GT:DP:GQ:PL	0|0:3:49:0,49,490	0/1:5:3:25,0,18
20	1234567	.	G	<DEL>	.	.	END=1234667	GT	./.	./.
`

func readAll(t *testing.T, r *Reader) []*vcf.Variant {
	t.Helper()
	var out []*vcf.Variant
	for {
		v, err := r.Next()
		require.NoError(t, err)
		if v == nil {
			return out
		}
		out = append(out, v)
	}
}

func TestReader_Header(t *testing.T) {
	r, err := NewReaderFrom(strings.NewReader(sampleVCF))
	require.NoError(t, err)

	h := r.Header()
	assert.Equal(t, []string{"NA00001", "NA00002"}, h.SampleNames())
	assert.True(t, h.HasInfoLine("AF"))
	assert.True(t, h.HasFormatLine("PL"))
	assert.True(t, h.HasFilterLine("q10"))
	assert.Len(t, h.MetaLines(), 10)
}

func TestReader_Records(t *testing.T) {
	r, err := NewReaderFrom(strings.NewReader(sampleVCF))
	require.NoError(t, err)
	records := readAll(t, r)
	require.Len(t, records, 3)

	v := records[0]
	assert.Equal(t, "20", v.Contig())
	assert.Equal(t, int64(14370), v.Start())
	assert.Equal(t, int64(14370), v.Stop())
	assert.Equal(t, "rs6054257", v.ID())
	assert.Equal(t, "G", v.Ref().Bases())
	assert.True(t, v.IsSNP())
	assert.InDelta(t, 29.0, v.PhredScaledQual(), 1e-9)
	assert.True(t, v.FiltersApplied())
	assert.False(t, v.IsFiltered())

	af, ok := v.Attribute("AF")
	require.True(t, ok)
	assert.Equal(t, "0.500", af, "INFO values stay raw until FullyDecode")
	db, ok := v.Attribute("DB")
	require.True(t, ok)
	assert.Equal(t, true, db)

	assert.Equal(t, []string{"q10"}, records[1].Filters())

	end := records[2]
	assert.Equal(t, int64(1234667), end.Stop())
	assert.Equal(t, vcf.VariantSymbolic, end.Type())
	assert.False(t, end.HasLog10PError())
}

func TestReader_LazyGenotypes(t *testing.T) {
	r, err := NewReaderFrom(strings.NewReader(sampleVCF))
	require.NoError(t, err)
	records := readAll(t, r)

	gc := records[0].Genotypes()
	assert.False(t, gc.Decoded())
	assert.Equal(t, 2, gc.Count())

	g, err := gc.BySample("NA00002")
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, vcf.GenotypeHomVar, g.Type())
	assert.Equal(t, []int{500, 50, 0}, g.PL())
	assert.True(t, gc.Decoded())
}

func TestReader_RoundTrip(t *testing.T) {
	r, err := NewReaderFrom(strings.NewReader(sampleVCF))
	require.NoError(t, err)

	var sb strings.Builder
	w := vcf.NewWriter(r.Header())
	require.NoError(t, w.WriteHeader(&sb))
	for {
		v, err := r.Next()
		require.NoError(t, err)
		if v == nil {
			break
		}
		require.NoError(t, w.Write(&sb, v))
	}
	assert.Equal(t, sampleVCF, sb.String())
}

func TestReader_SkipsBlankLines(t *testing.T) {
	in := strings.Replace(sampleVCF, "20\t17330", "\n20\t17330", 1)
	r, err := NewReaderFrom(strings.NewReader(in))
	require.NoError(t, err)
	assert.Len(t, readAll(t, r), 3)
}

func TestReader_ParseErrors(t *testing.T) {
	header := sampleVCF[:strings.Index(sampleVCF, "\n20\t")+1]

	cases := []struct {
		name string
		line string
	}{
		{"too few columns", "20\t14370\t.\tG"},
		{"bad position", "20\tabc\t.\tG\tA\t.\t.\t."},
		{"bad quality", "20\t14370\t.\tG\tA\thigh\t.\t."},
		{"bad allele", "20\t14370\t.\tG\tZ\t.\t.\t."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := NewReaderFrom(strings.NewReader(header + tc.line + "\n"))
			require.NoError(t, err)
			_, err = r.Next()
			assert.Error(t, err)
		})
	}
}

func TestReader_MissingChromLine(t *testing.T) {
	_, err := NewReaderFrom(strings.NewReader("##fileformat=VCFv4.2\n"))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestReader_PlainAndGzipFiles(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "sample.vcf")
	require.NoError(t, os.WriteFile(plain, []byte(sampleVCF), 0o644))

	gz := filepath.Join(dir, "sample.vcf.gz")
	f, err := os.Create(gz)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(sampleVCF))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	for _, path := range []string{plain, gz} {
		r, err := NewReader(path)
		require.NoError(t, err, path)
		assert.Len(t, readAll(t, r), 3, path)
		require.NoError(t, r.Close())
	}
}
