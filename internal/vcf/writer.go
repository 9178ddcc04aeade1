package vcf

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/variantio/vcfkit/internal/likelihoods"
)

// Writer serializes validated records into byte-exact VCF text lines,
// consulting the header capability for declared fields and the sample
// ordering. By default any FILTER, INFO, or FORMAT key the header does
// not declare is a hard error; SetAllowMissingFields downgrades that to
// silent tolerance for producers with known-incomplete headers.
type Writer struct {
	header             Header
	allowMissingFields bool
	logger             *zap.Logger
}

// NewWriter creates a writer over the given header capability.
func NewWriter(header Header) *Writer {
	return &Writer{header: header, logger: zap.NewNop()}
}

// SetAllowMissingFields tolerates header-undeclared fields in output.
func (w *Writer) SetAllowMissingFields(allow bool) {
	w.allowMissingFields = allow
}

// SetLogger sets the logger used when undeclared fields are tolerated.
func (w *Writer) SetLogger(l *zap.Logger) {
	w.logger = l
}

// WriteHeader writes the header's metadata lines and the #CHROM column
// line.
func (w *Writer) WriteHeader(out io.Writer) error {
	for _, line := range w.header.MetaLines() {
		if _, err := io.WriteString(out, line+"\n"); err != nil {
			return err
		}
	}
	cols := []string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO"}
	if samples := w.header.SampleNames(); len(samples) > 0 {
		cols = append(cols, "FORMAT")
		cols = append(cols, samples...)
	}
	_, err := io.WriteString(out, strings.Join(cols, fieldSeparator)+"\n")
	return err
}

// Write encodes one record and writes it with a trailing newline.
func (w *Writer) Write(out io.Writer, v *Variant) error {
	line, err := w.EncodeLine(v)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, line+"\n")
	return err
}

// EncodeLine converts a record into a single VCF line without the
// trailing newline.
func (w *Writer) EncodeLine(v *Variant) (string, error) {
	var sb strings.Builder

	// CHROM POS ID REF
	sb.WriteString(v.Contig())
	sb.WriteString(fieldSeparator)
	sb.WriteString(strconv.FormatInt(v.Start(), 10))
	sb.WriteString(fieldSeparator)
	sb.WriteString(v.ID())
	sb.WriteString(fieldSeparator)
	sb.WriteString(v.Ref().Bases())
	sb.WriteString(fieldSeparator)

	// ALT
	alts := v.AltAlleles()
	if len(alts) == 0 {
		sb.WriteString(missingValue)
	} else {
		for i, alt := range alts {
			if i > 0 {
				sb.WriteString(listSeparator)
			}
			sb.WriteString(alt.Bases())
		}
	}
	sb.WriteString(fieldSeparator)

	// QUAL
	if !v.HasLog10PError() {
		sb.WriteString(missingValue)
	} else {
		sb.WriteString(formatQual(v.PhredScaledQual()))
	}
	sb.WriteString(fieldSeparator)

	// FILTER
	filter, err := w.encodeFilters(v)
	if err != nil {
		return "", err
	}
	sb.WriteString(filter)
	sb.WriteString(fieldSeparator)

	// INFO
	info, err := w.encodeInfo(v)
	if err != nil {
		return "", err
	}
	sb.WriteString(info)

	// FORMAT + samples
	if len(w.header.SampleNames()) > 0 {
		samples, err := w.encodeGenotypes(v)
		if err != nil {
			return "", err
		}
		sb.WriteString(fieldSeparator)
		sb.WriteString(samples)
	}

	return sb.String(), nil
}

func (w *Writer) encodeFilters(v *Variant) (string, error) {
	if !v.FiltersApplied() {
		return missingValue, nil
	}
	if !v.IsFiltered() {
		return PassFilters, nil
	}
	names := v.Filters()
	for _, name := range names {
		if err := w.checkDeclared("FILTER", name, w.header.HasFilterLine(name)); err != nil {
			return "", err
		}
	}
	return strings.Join(names, filterSeparator), nil
}

func (w *Writer) encodeInfo(v *Variant) (string, error) {
	attrs := v.Attributes()
	if len(attrs) == 0 {
		return missingValue, nil
	}
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		if err := w.checkDeclared("INFO", key, w.header.HasInfoLine(key)); err != nil {
			return "", err
		}
		val := attrs[key]
		if flag, ok := val.(bool); ok {
			// VCF flag semantics: present means true, absent means false.
			if flag {
				parts = append(parts, key)
			}
			continue
		}
		parts = append(parts, key+"="+formatVCFValue(val))
	}
	if len(parts) == 0 {
		return missingValue, nil
	}
	return strings.Join(parts, infoSeparator), nil
}

func (w *Writer) encodeGenotypes(v *Variant) (string, error) {
	keys, err := w.genotypeKeys(v)
	if err != nil {
		return "", err
	}

	ploidy, err := v.Genotypes().MaxPloidy(2)
	if err != nil {
		return "", err
	}

	cols := make([]string, 0, len(w.header.SampleNames())+1)
	cols = append(cols, strings.Join(keys, genotypeSeparator))

	for _, sample := range w.header.SampleNames() {
		g, err := v.Genotypes().BySample(sample)
		if err != nil {
			return "", err
		}
		if g == nil {
			g = MissingGenotype(sample, ploidy)
		}
		field, err := w.encodeGenotype(v, g, keys)
		if err != nil {
			return "", err
		}
		cols = append(cols, field)
	}
	return strings.Join(cols, fieldSeparator), nil
}

// genotypeKeys computes the ordered FORMAT keys in use across all
// genotypes: the genotype-call key first when any genotype is available,
// then the inline and extended keys seen in any sample, sorted.
func (w *Writer) genotypeKeys(v *Variant) ([]string, error) {
	gs, err := v.Genotypes().Genotypes()
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	anyAvailable := len(gs) == 0 // records without genotypes still emit a GT column per sample
	for _, g := range gs {
		if g.IsAvailable() {
			anyAvailable = true
		}
		if g.HasGQ() {
			seen[GenotypeQualityKey] = true
		}
		if g.HasDP() {
			seen[DepthKey] = true
		}
		if g.HasAD() {
			seen[AlleleDepthsKey] = true
		}
		if g.HasPL() {
			seen[LikelihoodsKey] = true
		}
		if g.HasFilters() {
			seen[GenotypeFilterKey] = true
		}
		for key := range g.Attributes() {
			seen[key] = true
		}
	}

	keys := make([]string, 0, len(seen)+1)
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if anyAvailable {
		keys = append([]string{GenotypeKey}, keys...)
	}

	for _, key := range keys {
		if err := w.checkDeclared("FORMAT", key, w.header.HasFormatLine(key)); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func (w *Writer) encodeGenotype(v *Variant, g *Genotype, keys []string) (string, error) {
	fields := make([]string, 0, len(keys))
	for _, key := range keys {
		var val string
		switch key {
		case GenotypeKey:
			call, err := w.encodeCall(v, g)
			if err != nil {
				return "", err
			}
			val = call
		case GenotypeQualityKey:
			if g.HasGQ() {
				val = strconv.Itoa(g.GQ())
			} else {
				val = w.missingFor(v, g, key)
			}
		case DepthKey:
			if g.HasDP() {
				val = strconv.Itoa(g.DP())
			} else {
				val = w.missingFor(v, g, key)
			}
		case AlleleDepthsKey:
			if g.HasAD() {
				val = joinInts(g.AD())
			} else {
				val = w.missingFor(v, g, key)
			}
		case LikelihoodsKey:
			if g.HasPL() {
				val = joinInts(g.PL())
			} else {
				val = w.missingFor(v, g, key)
			}
		case GenotypeFilterKey:
			switch {
			case g.IsFiltered():
				val = g.Filters()
			case g.HasFilters():
				val = PassFilters
			default:
				val = w.missingFor(v, g, key)
			}
		default:
			if attr, ok := g.Attribute(key); ok && attr != nil {
				val = formatVCFValue(attr)
			} else {
				val = w.missingFor(v, g, key)
			}
		}
		fields = append(fields, val)
	}

	// Strip trailing all-missing fields before joining.
	for len(fields) > 1 && isAllMissing(fields[len(fields)-1]) {
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, genotypeSeparator), nil
}

// encodeCall renders the GT field: per-allele indices into the record's
// allele set, joined by the phase separator.
func (w *Writer) encodeCall(v *Variant, g *Genotype) (string, error) {
	if g.Ploidy() == 0 {
		return missingValue, nil
	}
	sep := unphasedSeparator
	if g.Phased() {
		sep = phasedSeparator
	}
	parts := make([]string, g.Ploidy())
	for i, a := range g.Alleles() {
		if a.IsNoCall() {
			parts[i] = missingValue
			continue
		}
		idx, ok := v.AlleleIndex(a)
		if !ok {
			return "", validationErrorf(v.Contig(), v.Start(),
				"genotype for sample %q calls allele %s which is not in the record's allele set",
				g.SampleName(), a)
		}
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, sep), nil
}

// missingFor synthesizes the missing placeholder for a field, honoring
// the header-declared arity so fixed-count fields come out as ".,.,.".
func (w *Writer) missingFor(v *Variant, g *Genotype, key string) string {
	line := w.header.FormatLine(key)
	count := 1
	if line != nil {
		switch {
		case line.Number > 1:
			count = line.Number
		case line.Number == NumberA:
			count = len(v.AltAlleles())
		case line.Number == NumberR:
			count = v.NumAlleles()
		case line.Number == NumberG:
			ploidy := g.Ploidy()
			if ploidy == 0 {
				ploidy = 2
			}
			count = likelihoods.NumLikelihoods(v.NumAlleles(), ploidy)
		}
	}
	if count <= 1 {
		return missingValue
	}
	parts := make([]string, count)
	for i := range parts {
		parts[i] = missingValue
	}
	return strings.Join(parts, listSeparator)
}

func (w *Writer) checkDeclared(section, key string, declared bool) error {
	if declared {
		return nil
	}
	if w.allowMissingFields {
		w.logger.Debug("field not declared in header",
			zap.String("section", section),
			zap.String("key", key))
		return nil
	}
	return &HeaderConsistencyError{Section: section, Key: key}
}

// isAllMissing reports whether a rendered field value carries no data,
// i.e. every comma-separated part is the missing token.
func isAllMissing(field string) bool {
	for _, part := range strings.Split(field, listSeparator) {
		if part != missingValue {
			return false
		}
	}
	return true
}

// formatQual renders QUAL in two-decimal fixed format, with integral
// values printed without decimals.
func formatQual(qual float64) string {
	s := strconv.FormatFloat(qual, 'f', 2, 64)
	return strings.TrimSuffix(s, ".00")
}

// formatVCFDouble applies the tiered float formatting: scientific with 3
// significant decimals below 0.01, fixed 3 decimals below 1, fixed 2
// decimals otherwise. Magnitudes below 1e-20 print as "0.00".
func formatVCFDouble(d float64) string {
	a := math.Abs(d)
	switch {
	case a >= 1:
		return fmt.Sprintf("%.2f", d)
	case a >= 0.01:
		return fmt.Sprintf("%.3f", d)
	case a >= 1e-20:
		return fmt.Sprintf("%.3e", d)
	default:
		return "0.00"
	}
}

// formatVCFValue renders a decoded or raw attribute value as VCF text.
// Collections are comma-joined; nil is the missing token.
func formatVCFValue(val any) string {
	switch x := val.(type) {
	case nil:
		return missingValue
	case string:
		return x
	case bool:
		// Flag semantics; the caller decides whether to emit the key.
		return ""
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatVCFDouble(x)
	case rune:
		return string(x)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = formatVCFValue(e)
		}
		return strings.Join(parts, listSeparator)
	case []int:
		return joinInts(x)
	case []string:
		return strings.Join(x, listSeparator)
	case []float64:
		parts := make([]string, len(x))
		for i, f := range x {
			parts[i] = formatVCFDouble(f)
		}
		return strings.Join(parts, listSeparator)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, n := range vals {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, listSeparator)
}
