package codon

import (
	"github.com/gonum/mathext"
)

// Bias is the synonymous codon usage bias of one amino acid.
type Bias struct {
	// AminoAcid is the amino acid letter.
	AminoAcid string `json:"aminoAcid"`
	// N is the number of observed codons.
	N int `json:"n"`
	// ChiSquare is the chi-square statistic for the hypothesis of
	// uniform synonymous codon usage.
	ChiSquare float64 `json:"chiSquare"`
	// DF is the number of degrees of freedom (number of codons - 1).
	DF int `json:"df"`
	// PValue is the chi-square test p-value.
	PValue float64 `json:"pValue"`
	// RSCU is the relative synonymous codon usage for every codon,
	// i.e. observed count divided by the count expected under
	// uniform usage.
	RSCU map[string]float64 `json:"rscu"`
}

// Bias computes codon usage bias for all the observed amino acids
// encoded by more than one codon.
func (cs *Counts) Bias() []Bias {
	res := make([]Bias, 0, len(cs.counts))
	for _, aa := range cs.AminoAcids() {
		codons := cs.GCode.Codons(aa)
		n := cs.Total(aa)
		if len(codons) < 2 || n == 0 {
			continue
		}
		exp := float64(n) / float64(len(codons))
		b := Bias{
			AminoAcid: string(aa),
			N:         n,
			DF:        len(codons) - 1,
			RSCU:      make(map[string]float64, len(codons)),
		}
		for _, codon := range codons {
			obs := float64(cs.counts[aa][codon])
			b.ChiSquare += (obs - exp) * (obs - exp) / exp
			b.RSCU[codon] = obs / exp
		}
		b.PValue = 1 - mathext.GammaInc(float64(b.DF)/2, b.ChiSquare/2)
		res = append(res, b)
	}
	return res
}
