package vcf

import (
	"strconv"

	"go.uber.org/zap"
)

// ValidationMode selects which invariant groups Make enforces.
type ValidationMode int

const (
	// ValidateNone skips construction validation entirely.
	ValidateNone ValidationMode = 0
	// ValidateAlleles checks the allele-set invariants.
	ValidateAlleles ValidationMode = 1 << iota
	// ValidateGenotypes checks genotype calls against the allele set.
	// Lazy, not-yet-decoded collections are left alone so that building
	// a record never forces a decode; their calls are checked by the
	// decoder instead.
	ValidateGenotypes
	// ValidateAll runs every check.
	ValidateAll = ValidateAlleles | ValidateGenotypes
)

// VariantBuilder accumulates record fields in any order and produces
// immutable, validated Variants. Like GenotypeBuilder it tolerates
// transient inconsistency and checks everything atomically in Make.
// Builders are single-owner scratch objects without synchronization.
type VariantBuilder struct {
	source       string
	contig       string
	start        int64
	stop         int64
	id           string
	alleles      []*Allele
	genotypes    *GenotypesContext
	log10PError  float64
	filters      map[string]struct{}
	attrs        map[string]any
	fullyDecoded bool

	debug  bool
	logger *zap.Logger
}

// NewVariantBuilder creates an empty builder.
func NewVariantBuilder() *VariantBuilder {
	return &VariantBuilder{
		id:          EmptyID,
		log10PError: NoLog10PError,
		logger:      zap.NewNop(),
	}
}

// NewVariantBuilderFrom creates a builder primed with an existing
// record's state, for incremental replace-not-mutate edits.
func NewVariantBuilderFrom(v *Variant) *VariantBuilder {
	b := NewVariantBuilder()
	b.source = v.source
	b.contig = v.contig
	b.start = v.start
	b.stop = v.stop
	b.id = v.id
	b.alleles = append([]*Allele(nil), v.alleles...)
	b.genotypes = v.genotypes
	b.log10PError = v.log10PError
	b.fullyDecoded = v.fullyDecoded
	if v.filters != nil {
		b.filters = make(map[string]struct{}, len(v.filters))
		for name := range v.filters {
			b.filters[name] = struct{}{}
		}
	}
	if v.attrs != nil {
		b.attrs = make(map[string]any, len(v.attrs))
		for k, val := range v.attrs {
			b.attrs[k] = val
		}
	}
	return b
}

// SetSource sets the record's source label.
func (b *VariantBuilder) SetSource(source string) *VariantBuilder {
	b.source = source
	return b
}

// SetContig sets the contig name.
func (b *VariantBuilder) SetContig(contig string) *VariantBuilder {
	b.contig = contig
	return b
}

// SetStart sets the 1-based start position.
func (b *VariantBuilder) SetStart(start int64) *VariantBuilder {
	b.start = start
	return b
}

// SetStop sets the 1-based inclusive stop position.
func (b *VariantBuilder) SetStop(stop int64) *VariantBuilder {
	b.stop = stop
	return b
}

// SetID sets the record identifier.
func (b *VariantBuilder) SetID(id string) *VariantBuilder {
	b.id = id
	return b
}

// NoID clears the record identifier.
func (b *VariantBuilder) NoID() *VariantBuilder {
	b.id = EmptyID
	return b
}

// SetAlleles sets the allele set; the reference allele must be at
// index 0, which Make verifies.
func (b *VariantBuilder) SetAlleles(alleles []*Allele) *VariantBuilder {
	b.alleles = append([]*Allele(nil), alleles...)
	return b
}

// SetAlleleStrings builds the allele set from the reference base string
// and alternate base strings.
func (b *VariantBuilder) SetAlleleStrings(ref string, alts ...string) error {
	alleles := make([]*Allele, 0, len(alts)+1)
	refAllele, err := NewAllele(ref, true)
	if err != nil {
		return err
	}
	alleles = append(alleles, refAllele)
	for _, alt := range alts {
		a, err := NewAllele(alt, false)
		if err != nil {
			return err
		}
		alleles = append(alleles, a)
	}
	b.alleles = alleles
	return nil
}

// SetGenotypes attaches a genotype collection.
func (b *VariantBuilder) SetGenotypes(gc *GenotypesContext) *VariantBuilder {
	b.genotypes = gc
	return b
}

// NoGenotypes drops all sample genotypes.
func (b *VariantBuilder) NoGenotypes() *VariantBuilder {
	b.genotypes = nil
	return b
}

// SetLog10PError sets the log10 error probability backing QUAL.
func (b *VariantBuilder) SetLog10PError(log10PError float64) *VariantBuilder {
	b.log10PError = log10PError
	return b
}

// Unfiltered marks the FILTER column as never evaluated.
func (b *VariantBuilder) Unfiltered() *VariantBuilder {
	b.filters = nil
	return b
}

// PassFilters marks the record as evaluated and passing (PASS).
func (b *VariantBuilder) PassFilters() *VariantBuilder {
	b.filters = map[string]struct{}{}
	return b
}

// SetFilters marks the record as failing the given filters. The PASS
// token is not a real filter name and is ignored if present.
func (b *VariantBuilder) SetFilters(names ...string) *VariantBuilder {
	b.filters = make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == PassFilters {
			continue
		}
		b.filters[name] = struct{}{}
	}
	return b
}

// SetAttribute sets an INFO attribute.
func (b *VariantBuilder) SetAttribute(key string, value any) *VariantBuilder {
	if b.attrs == nil {
		b.attrs = make(map[string]any)
	}
	b.attrs[key] = value
	return b
}

// SetAttributes replaces the INFO attribute map.
func (b *VariantBuilder) SetAttributes(attrs map[string]any) *VariantBuilder {
	b.attrs = make(map[string]any, len(attrs))
	for k, v := range attrs {
		b.attrs[k] = v
	}
	return b
}

// RemoveAttribute deletes an INFO attribute.
func (b *VariantBuilder) RemoveAttribute(key string) *VariantBuilder {
	delete(b.attrs, key)
	return b
}

// SetFullyDecoded marks attribute values as already header-typed.
func (b *VariantBuilder) SetFullyDecoded(decoded bool) *VariantBuilder {
	b.fullyDecoded = decoded
	return b
}

// SetDebug downgrades the stop/END disagreement check from a fatal error
// to a logged warning, tolerating header/data drift.
func (b *VariantBuilder) SetDebug(debug bool) *VariantBuilder {
	b.debug = debug
	return b
}

// SetLogger sets the logger used for downgraded warnings.
func (b *VariantBuilder) SetLogger(l *zap.Logger) *VariantBuilder {
	b.logger = l
	return b
}

// Make validates with ValidateAll and produces an immutable record.
func (b *VariantBuilder) Make() (*Variant, error) {
	return b.MakeWithValidation(ValidateAll)
}

// MakeWithValidation runs the selected invariant checks atomically and
// produces an immutable record. The builder stays usable afterwards.
func (b *VariantBuilder) MakeWithValidation(mode ValidationMode) (*Variant, error) {
	v := &Variant{
		source:       b.source,
		contig:       b.contig,
		start:        b.start,
		stop:         b.stop,
		id:           b.id,
		alleles:      append([]*Allele(nil), b.alleles...),
		genotypes:    b.genotypes,
		log10PError:  b.log10PError,
		fullyDecoded: b.fullyDecoded,
		attrs:        make(map[string]any, len(b.attrs)),
	}
	if v.genotypes == nil {
		v.genotypes = NewGenotypesContext()
	}
	if b.filters != nil {
		v.filters = make(map[string]struct{}, len(b.filters))
		for name := range b.filters {
			v.filters[name] = struct{}{}
		}
	}
	for k, val := range b.attrs {
		v.attrs[k] = val
	}

	if err := b.validate(v, mode); err != nil {
		return nil, err
	}
	v.genotypes.freeze()
	return v, nil
}

func (b *VariantBuilder) validate(v *Variant, mode ValidationMode) error {
	if v.contig == "" {
		return validationErrorf(v.contig, v.start, "contig must not be empty")
	}
	if v.id == "" {
		return validationErrorf(v.contig, v.start, "ID must not be empty (use %q for no ID)", EmptyID)
	}
	if v.start < 1 {
		return validationErrorf(v.contig, v.start, "start must be a 1-based position")
	}
	if v.stop < v.start {
		return validationErrorf(v.contig, v.start, "stop %d precedes start %d", v.stop, v.start)
	}

	if mode&ValidateAlleles != 0 {
		if err := b.validateAlleles(v); err != nil {
			return err
		}
		if err := b.validateLength(v); err != nil {
			return err
		}
	}
	if mode&ValidateGenotypes != 0 {
		if err := b.validateGenotypes(v); err != nil {
			return err
		}
	}
	return nil
}

func (b *VariantBuilder) validateAlleles(v *Variant) error {
	if len(v.alleles) == 0 {
		return validationErrorf(v.contig, v.start, "allele set must not be empty")
	}
	for i, a := range v.alleles {
		if a.IsNoCall() {
			return validationErrorf(v.contig, v.start, "the no-call allele is not a valid member of the allele set")
		}
		if a.IsReference() && i != 0 {
			return validationErrorf(v.contig, v.start, "duplicate or misplaced reference allele %s at index %d", a, i)
		}
		if !a.IsReference() && i == 0 {
			return validationErrorf(v.contig, v.start, "allele set must begin with the reference allele, got %s", a)
		}
		for _, prev := range v.alleles[:i] {
			if a.Equal(prev, true) {
				return validationErrorf(v.contig, v.start, "duplicate allele %s", a)
			}
		}
	}
	return nil
}

// validateLength checks that the record span matches the reference allele
// length. Symbolic alleles and records with an explicit END override are
// exempt; an END value that then disagrees with the stop is fatal unless
// debug mode downgrades it to a warning.
func (b *VariantBuilder) validateLength(v *Variant) error {
	if v.IsSymbolicOrSV() {
		return nil
	}
	span := v.stop - v.start + 1
	refLen := int64(len(v.Ref().Bases()))
	if span == refLen {
		return nil
	}
	if end, ok := attrAsInt64(v.attrs[EndKey]); ok {
		if end == v.stop {
			return nil
		}
		if b.debug {
			b.logger.Warn("END attribute disagrees with record stop",
				zap.String("contig", v.contig),
				zap.Int64("start", v.start),
				zap.Int64("stop", v.stop),
				zap.Int64("end", end))
			return nil
		}
		return validationErrorf(v.contig, v.start, "END attribute %d disagrees with stop %d", end, v.stop)
	}
	return validationErrorf(v.contig, v.start,
		"record span %d does not match reference allele length %d", span, refLen)
}

func (b *VariantBuilder) validateGenotypes(v *Variant) error {
	if !v.genotypes.Decoded() {
		return nil
	}
	gs, err := v.genotypes.Genotypes()
	if err != nil {
		return err
	}
	for _, g := range gs {
		for _, a := range g.Alleles() {
			if a.IsNoCall() {
				continue
			}
			if _, ok := v.AlleleIndex(a); !ok {
				return validationErrorf(v.contig, v.start,
					"genotype for sample %q calls allele %s which is not in the record's allele set",
					g.SampleName(), a)
			}
		}
	}
	return nil
}

// attrAsInt64 extracts an integer from a raw or decoded attribute value.
func attrAsInt64(val any) (int64, bool) {
	switch x := val.(type) {
	case int:
		return int64(x), true
	case int64:
		return x, true
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		return n, err == nil
	}
	return 0, false
}
