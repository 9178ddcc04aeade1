package vcfio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/variantio/vcfkit/internal/vcf"
)

// Decoder parses the raw FORMAT and per-sample columns of a record into
// genotypes. It implements the vcf.GenotypeDecoder capability consumed by
// lazy genotype collections; a single decoder is shared by every record
// of a file.
type Decoder struct {
	header vcf.Header
}

// NewDecoder creates a decoder over the file's header.
func NewDecoder(header vcf.Header) *Decoder {
	return &Decoder{header: header}
}

var _ vcf.GenotypeDecoder = (*Decoder)(nil)

// Decode parses the tab-joined FORMAT and sample columns against the
// record's allele set. Errors carry the record's contig:position and make
// the record unusable; there is no retry.
func (d *Decoder) Decode(unparsed string, alleles []*vcf.Allele, contig string, start int64) (*vcf.DecodedGenotypes, error) {
	columns := strings.Split(unparsed, "\t")
	formatKeys := strings.Split(columns[0], ":")
	samples := d.header.SampleNames()

	if len(columns)-1 != len(samples) {
		return nil, &vcf.DecodeError{Contig: contig, Start: start,
			Msg: "record has " + strconv.Itoa(len(columns)-1) + " sample columns, header declares " + strconv.Itoa(len(samples))}
	}

	res := &vcf.DecodedGenotypes{
		Genotypes:          make([]*vcf.Genotype, len(samples)),
		SampleNamesInOrder: make([]string, len(samples)),
		SampleNameToOffset: make(map[string]int, len(samples)),
	}

	builder := vcf.NewGenotypeBuilder("")
	for i, sample := range samples {
		g, err := d.decodeSample(builder, sample, formatKeys, columns[i+1], alleles, contig, start)
		if err != nil {
			return nil, err
		}
		res.Genotypes[i] = g
		res.SampleNamesInOrder[i] = sample
		res.SampleNameToOffset[sample] = i
	}
	return res, nil
}

func (d *Decoder) decodeSample(builder *vcf.GenotypeBuilder, sample string, formatKeys []string, column string, alleles []*vcf.Allele, contig string, start int64) (*vcf.Genotype, error) {
	builder.Reset(false)
	builder.SetSampleName(sample)

	values := strings.Split(column, ":")
	for i, key := range formatKeys {
		// Trailing fields may be dropped entirely.
		if i >= len(values) {
			break
		}
		value := values[i]
		if value == "." && key != vcf.GenotypeKey {
			continue
		}
		switch key {
		case vcf.GenotypeKey:
			calls, phased, err := parseCall(value, alleles)
			if err != nil {
				return nil, &vcf.DecodeError{Contig: contig, Start: start,
					Msg: "sample " + sample + " GT field", Err: err}
			}
			builder.SetAlleles(calls)
			builder.SetPhased(phased)
		case vcf.GenotypeQualityKey:
			gq, err := strconv.Atoi(value)
			if err != nil {
				return nil, &vcf.DecodeError{Contig: contig, Start: start,
					Msg: "sample " + sample + " GQ field", Err: err}
			}
			builder.SetGQ(gq)
		case vcf.DepthKey:
			dp, err := strconv.Atoi(value)
			if err != nil {
				return nil, &vcf.DecodeError{Contig: contig, Start: start,
					Msg: "sample " + sample + " DP field", Err: err}
			}
			builder.SetDP(dp)
		case vcf.AlleleDepthsKey:
			ad, err := parseIntList(value)
			if err != nil {
				return nil, &vcf.DecodeError{Contig: contig, Start: start,
					Msg: "sample " + sample + " AD field", Err: err}
			}
			builder.SetAD(ad)
		case vcf.LikelihoodsKey:
			pl, err := parseIntList(value)
			if err != nil {
				return nil, &vcf.DecodeError{Contig: contig, Start: start,
					Msg: "sample " + sample + " PL field", Err: err}
			}
			builder.SetPL(pl)
		case vcf.GenotypeFilterKey:
			if value == vcf.PassFilters {
				// Keep the applied-and-passed state distinct from unfiltered.
				builder.SetFilters("")
			} else {
				builder.SetFilters(strings.Split(value, ";")...)
			}
		default:
			if err := builder.SetAttribute(key, value); err != nil {
				return nil, &vcf.DecodeError{Contig: contig, Start: start,
					Msg: "sample " + sample + " " + key + " field", Err: err}
			}
		}
	}

	g, err := builder.Make()
	if err != nil {
		return nil, &vcf.DecodeError{Contig: contig, Start: start,
			Msg: "sample " + sample, Err: err}
	}
	return g, nil
}

// parseCall parses a GT value like "0/1" or "0|1" into record alleles.
// The phase separator determines the phased flag; "." tokens become the
// no-call allele.
func parseCall(value string, alleles []*vcf.Allele) ([]*vcf.Allele, bool, error) {
	phased := strings.ContainsRune(value, '|')
	tokens := strings.FieldsFunc(value, func(r rune) bool {
		return r == '/' || r == '|'
	})

	calls := make([]*vcf.Allele, len(tokens))
	for i, tok := range tokens {
		if tok == "." {
			calls[i] = vcf.NoCallAllele
			continue
		}
		idx, err := strconv.Atoi(tok)
		if err != nil {
			return nil, false, fmt.Errorf("invalid allele index %q", tok)
		}
		if idx < 0 || idx >= len(alleles) {
			return nil, false, fmt.Errorf("allele index %d out of range for %d alleles", idx, len(alleles))
		}
		calls[i] = alleles[idx]
	}
	return calls, phased, nil
}

func parseIntList(value string) ([]int, error) {
	parts := strings.Split(value, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		if p == "." {
			out[i] = -1
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
