package codon

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Distribution is a discrete distribution of synonymous codons.
type Distribution struct {
	// Codons are sorted codons.
	Codons []string
	// Prob are normalized codon probabilities.
	Prob []float64
	// cum are cumulative probabilities.
	cum []float64
	// last is the index of the last codon with non-zero probability.
	last int
}

// Distribution returns the codon distribution of the amino acid.
// Frequencies are renormalized if they don't sum to one.
func (t Table) Distribution(aa byte) (*Distribution, error) {
	if len(t[aa]) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAminoAcid, aa)
	}
	codons, w := t.weights(aa)
	d, err := NewDistribution(codons, w)
	if err != nil {
		return nil, fmt.Errorf("amino acid %q: %w", aa, err)
	}
	return d, nil
}

// NewDistribution creates a distribution from codons and their
// weights.
func NewDistribution(codons []string, weights []float64) (*Distribution, error) {
	if len(codons) == 0 || len(codons) != len(weights) {
		return nil, fmt.Errorf("%w: %d codons, %d weights", ErrInvalidArgument, len(codons), len(weights))
	}
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: codon %s has weight %v", ErrInvalidArgument, codons[i], w)
		}
	}
	sum := floats.Sum(weights)
	if sum == 0 {
		return nil, fmt.Errorf("%w: all codon weights are zero", ErrInvalidArgument)
	}
	d := &Distribution{
		Codons: codons,
		Prob:   make([]float64, len(weights)),
		cum:    make([]float64, len(weights)),
	}
	copy(d.Prob, weights)
	if math.Abs(sum-1) > Tolerance {
		log.Debugf("Renormalizing weights summing to %v", sum)
		floats.Scale(1/sum, d.Prob)
	}
	floats.CumSum(d.cum, d.Prob)
	for i, p := range d.Prob {
		if p > 0 {
			d.last = i
		}
	}
	return d, nil
}

// Sample draws a codon using the random source. Probability of every
// codon is equal to its normalized weight.
func (d *Distribution) Sample(r *rand.Rand) string {
	u := r.Float64() * d.cum[len(d.cum)-1]
	i := sort.Search(len(d.cum), func(i int) bool { return d.cum[i] > u })
	if i > d.last {
		i = d.last
	}
	return d.Codons[i]
}
