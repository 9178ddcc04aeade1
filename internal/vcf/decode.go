package vcf

import (
	"strconv"
	"strings"

	"github.com/variantio/vcfkit/internal/likelihoods"
)

// FullyDecode converts every raw string attribute of the record — INFO
// attributes and genotype extended attributes — into its header-declared
// type, producing a new record with the fullyDecoded flag set. Values
// become int, float64, bool, rune, string, or a []any of those; the
// genotype-likelihood fields become likelihood values. Multiplicity is
// checked against the header's declared arity unless lenient is set.
// Decoding an already fully-decoded record is a no-op.
func (v *Variant) FullyDecode(header Header, lenient bool) (*Variant, error) {
	if v.fullyDecoded {
		return v, nil
	}

	b := NewVariantBuilderFrom(v)

	attrs := make(map[string]any, len(v.attrs))
	for key, raw := range v.attrs {
		line := header.InfoLine(key)
		if line == nil {
			if !lenient {
				return nil, &HeaderConsistencyError{Section: "INFO", Key: key}
			}
			attrs[key] = raw
			continue
		}
		val, err := v.decodeAttribute(key, raw, line, lenient)
		if err != nil {
			return nil, err
		}
		attrs[key] = val
	}
	b.SetAttributes(attrs)

	if !v.genotypes.Empty() {
		gs, err := v.genotypes.Genotypes()
		if err != nil {
			return nil, err
		}
		decoded := make([]*Genotype, len(gs))
		for i, g := range gs {
			dg, err := v.fullyDecodeGenotype(g, header, lenient)
			if err != nil {
				return nil, err
			}
			decoded[i] = dg
		}
		b.SetGenotypes(NewGenotypesContext(decoded...))
	}

	b.SetFullyDecoded(true)
	return b.MakeWithValidation(ValidateNone)
}

func (v *Variant) fullyDecodeGenotype(g *Genotype, header Header, lenient bool) (*Genotype, error) {
	if len(g.Attributes()) == 0 {
		return g, nil
	}
	gb := NewGenotypeBuilderFrom(g)
	gb.ClearAttributes()
	for key, raw := range g.Attributes() {
		line := header.FormatLine(key)
		if line == nil {
			if !lenient {
				return nil, &HeaderConsistencyError{Section: "FORMAT", Key: key}
			}
			if err := gb.SetAttribute(key, raw); err != nil {
				return nil, err
			}
			continue
		}
		val, err := v.decodeAttribute(key, raw, line, lenient)
		if err != nil {
			return nil, err
		}
		if err := gb.SetAttribute(key, val); err != nil {
			return nil, err
		}
	}
	dg, err := gb.Make()
	if err != nil {
		return nil, &DecodeError{Contig: v.contig, Start: v.start, Msg: "rebuilding genotype", Err: err}
	}
	return dg, nil
}

// decodeAttribute converts one raw attribute value against its header
// line. Already-typed values pass through.
func (v *Variant) decodeAttribute(key string, raw any, line *FieldLine, lenient bool) (any, error) {
	s, isString := raw.(string)
	if !isString {
		return raw, nil
	}

	// The likelihood fields get a structured value rather than a list.
	if key == LikelihoodsKey {
		return likelihoods.FromPLString(s), nil
	}
	if key == OldLikelihoodsKey {
		return likelihoods.FromGLString(s), nil
	}

	parts := strings.Split(s, listSeparator)
	if !lenient && line.Number > 0 && len(parts) != line.Number {
		return nil, &DecodeError{Contig: v.contig, Start: v.start,
			Msg: "attribute " + key + " has " + strconv.Itoa(len(parts)) +
				" values, header declares " + strconv.Itoa(line.Number)}
	}

	if len(parts) == 1 {
		return v.decodeScalar(key, parts[0], line.Type)
	}
	out := make([]any, len(parts))
	for i, p := range parts {
		val, err := v.decodeScalar(key, p, line.Type)
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

func (v *Variant) decodeScalar(key, s string, ftype FieldType) (any, error) {
	if s == missingValue {
		return nil, nil
	}
	switch ftype {
	case Integer:
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, &DecodeError{Contig: v.contig, Start: v.start,
				Msg: "attribute " + key + " value " + strconv.Quote(s) + " is not an integer", Err: err}
		}
		return n, nil
	case Float:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, &DecodeError{Contig: v.contig, Start: v.start,
				Msg: "attribute " + key + " value " + strconv.Quote(s) + " is not a float", Err: err}
		}
		return f, nil
	case Flag:
		// Flags carry no value; their presence is the value.
		return true, nil
	case Character:
		r := []rune(s)
		if len(r) != 1 {
			return nil, &DecodeError{Contig: v.contig, Start: v.start,
				Msg: "attribute " + key + " value " + strconv.Quote(s) + " is not a single character"}
		}
		return r[0], nil
	default:
		return s, nil
	}
}
