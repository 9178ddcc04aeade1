package likelihoods

import "math"

// Log10ProbOfZero is the floor assigned to log10 probabilities that
// underflow to zero or come out non-finite.
const Log10ProbOfZero = -1000000.0

// NormalizeFromLog10 converts an array of log10 values (assumed <= 0) into
// a normalized distribution. With keepInLogSpace the values are only
// shifted by the maximum and returned still in log space. Otherwise the
// values are exponentiated, summed and divided to yield real-space
// probabilities; takeLog10OfOutput re-encodes the normalized result in
// log10, flooring exact zeros and non-finite results at Log10ProbOfZero.
func NormalizeFromLog10(array []float64, takeLog10OfOutput, keepInLogSpace bool) []float64 {
	maxValue := negInf()
	for _, v := range array {
		if v > maxValue {
			maxValue = v
		}
	}

	out := make([]float64, len(array))
	if keepInLogSpace {
		for i, v := range array {
			out[i] = v - maxValue
		}
		return out
	}

	sum := 0.0
	for i, v := range array {
		out[i] = math.Pow(10, v-maxValue)
		sum += out[i]
	}
	for i := range out {
		x := out[i] / sum
		if takeLog10OfOutput {
			x = log10OrFloor(x)
		}
		out[i] = x
	}
	return out
}

func log10OrFloor(p float64) float64 {
	x := math.Log10(p)
	if math.IsNaN(x) || math.IsInf(x, 0) || x < Log10ProbOfZero {
		return Log10ProbOfZero
	}
	return x
}

func negInf() float64 {
	return math.Inf(-1)
}
