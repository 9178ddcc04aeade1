package likelihoods

import (
	"fmt"
	"sync"
)

// MaxAltAlleles is the largest alternate-allele count for which diploid
// PL-index lookup is supported. Sites with more alternates cannot be
// genotyped and must be rejected rather than truncated.
const MaxAltAlleles = 50

// Bounds of the precomputed likelihood-count table. Larger inputs are
// computed recursively on demand.
const (
	cachedNumAlleles = 5
	cachedPloidy     = 10
)

// AllelePair is an unordered diploid allele index pair with A1 <= A2.
type AllelePair struct {
	A1, A2 int
}

var (
	numLikelihoodsOnce  sync.Once
	numLikelihoodsCache [cachedNumAlleles][cachedPloidy]int

	plPairsOnce sync.Once
	plPairs     []AllelePair
)

// NumLikelihoods returns the number of distinct genotypes for the given
// allele and chromosome-copy counts: the number of multisets of size
// ploidy drawn from numAlleles states.
func NumLikelihoods(numAlleles, ploidy int) int {
	numLikelihoodsOnce.Do(fillNumLikelihoodsCache)
	if numAlleles < cachedNumAlleles && ploidy < cachedPloidy {
		return numLikelihoodsCache[numAlleles][ploidy]
	}
	return calcNumLikelihoods(numAlleles, ploidy)
}

func fillNumLikelihoodsCache() {
	for numAlleles := 1; numAlleles < cachedNumAlleles; numAlleles++ {
		for ploidy := 1; ploidy < cachedPloidy; ploidy++ {
			numLikelihoodsCache[numAlleles][ploidy] = calcNumLikelihoods(numAlleles, ploidy)
		}
	}
}

// calcNumLikelihoods distributes ploidy indistinguishable chromosome
// copies over numAlleles states by summing over how many copies land on
// the last allele.
func calcNumLikelihoods(numAlleles, ploidy int) int {
	if numAlleles == 1 {
		return 1
	}
	if ploidy == 1 {
		return numAlleles
	}
	acc := 0
	for k := 0; k <= ploidy; k++ {
		acc += calcNumLikelihoods(numAlleles-1, ploidy-k)
	}
	return acc
}

// PLIndex returns the flat PL-array position for a diploid genotype made
// of the two allele indices, in the VCF triangular ordering
// (AA, AB, BB, AC, BC, CC, ...).
func PLIndex(allele1, allele2 int) int {
	if allele1 > allele2 {
		allele1, allele2 = allele2, allele1
	}
	return allele2*(allele2+1)/2 + allele1
}

// AllelePairFromPLIndex is the inverse of PLIndex. Indices beyond the
// MaxAltAlleles ceiling are a hard error.
func AllelePairFromPLIndex(index int) (AllelePair, error) {
	plPairsOnce.Do(fillPLPairs)
	if index < 0 || index >= len(plPairs) {
		return AllelePair{}, fmt.Errorf(
			"PL index %d out of range: genotyping more than %d alternate alleles is unsupported", index, MaxAltAlleles)
	}
	return plPairs[index], nil
}

func fillPLPairs() {
	n := NumLikelihoods(MaxAltAlleles+1, 2)
	plPairs = make([]AllelePair, n)
	for a2 := 0; a2 <= MaxAltAlleles; a2++ {
		for a1 := 0; a1 <= a2; a1++ {
			plPairs[PLIndex(a1, a2)] = AllelePair{A1: a1, A2: a2}
		}
	}
}

// GQLog10FromLikelihoods derives the log10 genotype quality for the
// genotype at the chosen index. When the chosen genotype is the maximum
// likelihood one, the quality is the (negated) margin over the runner-up;
// otherwise it is log10 of the total probability mass not assigned to the
// chosen genotype, which keeps the result interpretable as an error
// probability.
func GQLog10FromLikelihoods(chosen int, log10Likelihoods []float64) float64 {
	best := negInf()
	for i, v := range log10Likelihoods {
		if i == chosen {
			continue
		}
		if v >= best {
			best = v
		}
	}
	qual := log10Likelihoods[chosen] - best
	if qual < 0 {
		normalized := NormalizeFromLog10(log10Likelihoods, false, false)
		return log10OrFloor(1.0 - normalized[chosen])
	}
	return -qual
}
