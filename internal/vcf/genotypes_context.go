package vcf

import "sync"

// GenotypeDecoder is the external capability that parses raw FORMAT and
// per-sample text into genotypes. The record model only consumes it; the
// concrete implementation lives with the reader.
type GenotypeDecoder interface {
	Decode(unparsed string, alleles []*Allele, contig string, start int64) (*DecodedGenotypes, error)
}

// DecodedGenotypes is the result of decoding one record's sample columns.
type DecodedGenotypes struct {
	Genotypes          []*Genotype
	SampleNamesInOrder []string
	SampleNameToOffset map[string]int
}

// GenotypesContext is an ordered, sample-name-indexed collection of
// genotypes. The eager form wraps a genotype list directly; the lazy form
// holds the record's unparsed sample text plus a decode capability and
// parses it at most once, on first real access. Count and Empty never
// force a decode: for a lazy context they are answered from the sample
// count precomputed by the tokenizer.
//
// Decoding runs under a per-context mutex so concurrent readers parse
// once and all observe the same published state. Decode failures are
// sticky: every later access reports the same error.
type GenotypesContext struct {
	mu sync.Mutex

	decoded   bool
	genotypes []*Genotype
	order     []string
	offsets   map[string]int

	// Lazy state, cleared after a successful decode.
	unparsed  string
	nUnparsed int
	decoder   GenotypeDecoder
	contig    string
	start     int64
	alleles   []*Allele
	decodeErr error

	frozen bool
}

// NewGenotypesContext creates an eager context over the given genotypes.
// The sample index is built lazily on first by-name access.
func NewGenotypesContext(genotypes ...*Genotype) *GenotypesContext {
	return &GenotypesContext{decoded: true, genotypes: genotypes}
}

// NewLazyGenotypesContext creates a context over unparsed sample text.
// nUnparsed is the number of sample columns the tokenizer saw; it answers
// Count and Empty without parsing anything.
func NewLazyGenotypesContext(decoder GenotypeDecoder, unparsed string, nUnparsed int, contig string, start int64, alleles []*Allele) *GenotypesContext {
	return &GenotypesContext{
		unparsed:  unparsed,
		nUnparsed: nUnparsed,
		decoder:   decoder,
		contig:    contig,
		start:     start,
		alleles:   alleles,
	}
}

// Count returns the number of genotypes without forcing a decode.
func (gc *GenotypesContext) Count() int {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if !gc.decoded {
		return gc.nUnparsed
	}
	return len(gc.genotypes)
}

// Empty reports whether the context holds no genotypes, without forcing a
// decode.
func (gc *GenotypesContext) Empty() bool {
	return gc.Count() == 0
}

// Genotypes returns the decoded genotype list in sample order. The
// returned slice is shared and must not be modified.
func (gc *GenotypesContext) Genotypes() ([]*Genotype, error) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if err := gc.ensureDecodedLocked(); err != nil {
		return nil, err
	}
	return gc.genotypes, nil
}

// Get returns the i-th genotype.
func (gc *GenotypesContext) Get(i int) (*Genotype, error) {
	gs, err := gc.Genotypes()
	if err != nil {
		return nil, err
	}
	return gs[i], nil
}

// BySample returns the genotype for the named sample, or nil when the
// sample has no genotype here.
func (gc *GenotypesContext) BySample(name string) (*Genotype, error) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if err := gc.ensureDecodedLocked(); err != nil {
		return nil, err
	}
	gc.buildIndexLocked()
	i, ok := gc.offsets[name]
	if !ok {
		return nil, nil
	}
	return gc.genotypes[i], nil
}

// ContainsSample reports whether the named sample has a genotype here.
func (gc *GenotypesContext) ContainsSample(name string) (bool, error) {
	g, err := gc.BySample(name)
	return g != nil, err
}

// SampleNames returns the sample names in genotype order. The returned
// slice is shared and must not be modified.
func (gc *GenotypesContext) SampleNames() ([]string, error) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if err := gc.ensureDecodedLocked(); err != nil {
		return nil, err
	}
	gc.buildIndexLocked()
	return gc.order, nil
}

// MaxPloidy returns the largest ploidy across the genotypes, or
// defaultPloidy for an empty context.
func (gc *GenotypesContext) MaxPloidy(defaultPloidy int) (int, error) {
	if gc.Empty() {
		return defaultPloidy, nil
	}
	gs, err := gc.Genotypes()
	if err != nil {
		return 0, err
	}
	ploidy := 0
	for _, g := range gs {
		if g.Ploidy() > ploidy {
			ploidy = g.Ploidy()
		}
	}
	if ploidy == 0 {
		ploidy = defaultPloidy
	}
	return ploidy, nil
}

// Add appends a genotype. It fails on a context frozen by a finished
// record. Adding invalidates the cached sample index, which is rebuilt on
// demand; for a lazy context the stored text is decoded first.
func (gc *GenotypesContext) Add(g *Genotype) error {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if gc.frozen {
		return ErrImmutableContext
	}
	if err := gc.ensureDecodedLocked(); err != nil {
		return err
	}
	gc.genotypes = append(gc.genotypes, g)
	gc.order = nil
	gc.offsets = nil
	return nil
}

// ForceDecode decodes a lazy context immediately. It is a no-op on an
// already-decoded context.
func (gc *GenotypesContext) ForceDecode() error {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.ensureDecodedLocked()
}

// Decoded reports whether the genotype list has been materialized.
func (gc *GenotypesContext) Decoded() bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.decoded
}

// freeze rejects all further structural mutation. Called when a finished
// record takes ownership.
func (gc *GenotypesContext) freeze() {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.frozen = true
}

func (gc *GenotypesContext) ensureDecodedLocked() error {
	if gc.decodeErr != nil {
		return gc.decodeErr
	}
	if gc.decoded {
		return nil
	}
	res, err := gc.decoder.Decode(gc.unparsed, gc.alleles, gc.contig, gc.start)
	if err != nil {
		gc.decodeErr = err
		return err
	}
	gc.genotypes = res.Genotypes
	gc.order = res.SampleNamesInOrder
	gc.offsets = res.SampleNameToOffset
	gc.decoded = true
	// Release the raw text and decode context.
	gc.unparsed = ""
	gc.decoder = nil
	gc.alleles = nil
	return nil
}

// buildIndexLocked fills the sample index for contexts that were built
// eagerly or had the index invalidated.
func (gc *GenotypesContext) buildIndexLocked() {
	if gc.offsets != nil {
		return
	}
	gc.offsets = make(map[string]int, len(gc.genotypes))
	gc.order = make([]string, len(gc.genotypes))
	for i, g := range gc.genotypes {
		gc.order[i] = g.SampleName()
		gc.offsets[g.SampleName()] = i
	}
}
