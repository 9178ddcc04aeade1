package vcf

import (
	"strconv"
	"strings"
)

// The extra-strict validations below are not run during construction;
// callers opt in per record. Every failure is fatal and carries the
// record's contig:position.

// ValidateReferenceBases checks the record's reference allele against the
// bases actually observed in an external reference sequence.
func (v *Variant) ValidateReferenceBases(observed string) error {
	ref := v.Ref()
	if ref.IsSymbolic() {
		return nil
	}
	if !strings.EqualFold(ref.Bases(), observed) {
		return validationErrorf(v.contig, v.start,
			"reference allele %q disagrees with observed reference bases %q", ref.Bases(), observed)
	}
	return nil
}

// ValidateRSIDs checks that every rs-prefixed ID on the record is a known
// dbSNP identifier.
func (v *Variant) ValidateRSIDs(knownIDs map[string]bool) error {
	if !v.HasID() {
		return nil
	}
	for _, id := range strings.Split(v.id, listSeparator) {
		if strings.HasPrefix(id, "rs") && !knownIDs[id] {
			return validationErrorf(v.contig, v.start, "ID %s is not a known dbSNP identifier", id)
		}
	}
	return nil
}

// ValidateAlternateAlleles checks that every alternate allele in the set
// was actually called in at least one genotype. Forces a lazy decode.
func (v *Variant) ValidateAlternateAlleles() error {
	if v.genotypes.Empty() {
		return nil
	}
	gs, err := v.genotypes.Genotypes()
	if err != nil {
		return err
	}
	for _, alt := range v.AltAlleles() {
		observed := false
		for _, g := range gs {
			if g.CountAllele(alt) > 0 {
				observed = true
				break
			}
		}
		if !observed {
			return validationErrorf(v.contig, v.start,
				"alternate allele %s is not observed in any genotype", alt)
		}
	}
	return nil
}

// ValidateChromosomeCounts checks the AN and AC attributes against the
// counts computed from the genotypes. Forces a lazy decode.
func (v *Variant) ValidateChromosomeCounts() error {
	if v.genotypes.Empty() {
		return nil
	}
	if an, ok := v.attrs[AlleleNumberKey]; ok {
		reported, ok := attrAsInt64(an)
		if !ok {
			return validationErrorf(v.contig, v.start, "AN attribute %v is not an integer", an)
		}
		observed, err := v.CalledChrCount()
		if err != nil {
			return err
		}
		if reported != int64(observed) {
			return validationErrorf(v.contig, v.start,
				"AN attribute %d disagrees with called chromosome count %d", reported, observed)
		}
	}
	if ac, ok := v.attrs[AlleleCountKey]; ok {
		reported := attrAsInt64List(ac)
		if len(reported) != len(v.AltAlleles()) {
			return validationErrorf(v.contig, v.start,
				"AC attribute has %d values for %d alternate alleles", len(reported), len(v.AltAlleles()))
		}
		for i, alt := range v.AltAlleles() {
			observed, err := v.CalledAlleleCount(alt)
			if err != nil {
				return err
			}
			if reported[i] != int64(observed) {
				return validationErrorf(v.contig, v.start,
					"AC attribute %d for allele %s disagrees with called count %d", reported[i], alt, observed)
			}
		}
	}
	return nil
}

// attrAsInt64List extracts an integer list from a raw or decoded
// attribute value; unparseable entries become -1 so a disagreement is
// still reported.
func attrAsInt64List(val any) []int64 {
	asInt := func(x any) int64 {
		if n, ok := attrAsInt64(x); ok {
			return n
		}
		return -1
	}
	switch x := val.(type) {
	case []any:
		out := make([]int64, len(x))
		for i, e := range x {
			out[i] = asInt(e)
		}
		return out
	case string:
		parts := strings.Split(x, listSeparator)
		out := make([]int64, len(parts))
		for i, p := range parts {
			n, err := strconv.ParseInt(p, 10, 64)
			if err != nil {
				n = -1
			}
			out[i] = n
		}
		return out
	default:
		return []int64{asInt(val)}
	}
}
