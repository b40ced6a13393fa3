package codon

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"bitbucket.org/Davydov/cusage/bio"
)

// Tolerance is the allowed difference of the sum of amino acid codon
// frequencies from one.
const Tolerance = 1e-9

// Table is a codon frequency table. For every amino acid it maps
// codons to the fraction of the amino acid occurrences encoded by the
// codon.
type Table map[byte]map[string]float64

// AminoAcids returns the sorted amino acids of the table.
func (t Table) AminoAcids() []byte {
	aas := make([]byte, 0, len(t))
	for aa := range t {
		aas = append(aas, aa)
	}
	sort.Slice(aas, func(i, j int) bool { return aas[i] < aas[j] })
	return aas
}

// Codons returns the sorted codons listed for the amino acid.
func (t Table) Codons(aa byte) []string {
	codons := make([]string, 0, len(t[aa]))
	for codon := range t[aa] {
		codons = append(codons, codon)
	}
	sort.Strings(codons)
	return codons
}

// weights returns sorted codons and their frequencies.
func (t Table) weights(aa byte) ([]string, []float64) {
	codons := t.Codons(aa)
	w := make([]float64, len(codons))
	for i, codon := range codons {
		w[i] = t[aa][codon]
	}
	return codons, w
}

// Sum returns the sum of the amino acid codon frequencies.
func (t Table) Sum(aa byte) float64 {
	_, w := t.weights(aa)
	return floats.Sum(w)
}

// Preferred returns the most frequent codon of the amino acid. If
// several codons share the maximum frequency the lexicographically
// smallest one is returned.
func (t Table) Preferred(aa byte) (string, error) {
	if len(t[aa]) == 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownAminoAcid, aa)
	}
	codons, w := t.weights(aa)
	// floats.MaxIdx returns the first maximum, codons are sorted.
	i := floats.MaxIdx(w)
	if !(w[i] > 0) {
		return "", fmt.Errorf("%w: no codon with positive frequency for %q", ErrInvalidArgument, aa)
	}
	return codons[i], nil
}

// Check tests that every amino acid of the protein is present in the
// table. The first missing amino acid is reported.
func (t Table) Check(protein string) error {
	for i := 0; i < len(protein); i++ {
		if len(t[protein[i]]) == 0 {
			return fmt.Errorf("%w: %q at position %d", ErrUnknownAminoAcid, protein[i], i+1)
		}
	}
	return nil
}

// Verify checks that the table is consistent with the genetic code:
// every codon encodes the amino acid it is listed under and
// frequencies of every amino acid sum to one.
func (t Table) Verify(gcode *bio.GeneticCode) error {
	for _, aa := range t.AminoAcids() {
		for _, codon := range t.Codons(aa) {
			gaa, err := gcode.Translate(codon)
			if err != nil {
				return err
			}
			if gaa != aa {
				return fmt.Errorf("%w: codon %s encodes %q, not %q", ErrInvalidArgument, codon, gaa, aa)
			}
		}
		if s := t.Sum(aa); math.Abs(s-1) > Tolerance {
			return fmt.Errorf("%w: frequencies of %q sum to %v", ErrInvalidArgument, aa, s)
		}
	}
	return nil
}

// Matrix returns the table as a complete matrix: rows are amino acids
// of the genetic code (sorted), columns are all the codons in TCAG
// order. Absent amino acid and codon pairs are zero.
func (t Table) Matrix(gcode *bio.GeneticCode) (aas []byte, codons []string, m [][]float64) {
	aas = gcode.AminoAcids()
	codons = bio.GetCodons()
	m = make([][]float64, len(aas))
	for i, aa := range aas {
		m[i] = make([]float64, len(codons))
		for j, codon := range codons {
			m[i][j] = t[aa][codon]
		}
	}
	return
}

// Equal tests if two tables have the same codons with frequencies
// differing by no more than tol.
func (t Table) Equal(o Table, tol float64) bool {
	if len(t) != len(o) {
		return false
	}
	for aa, codons := range t {
		ocodons, ok := o[aa]
		if !ok || len(codons) != len(ocodons) {
			return false
		}
		for codon, f := range codons {
			of, ok := ocodons[codon]
			if !ok || math.Abs(f-of) > tol {
				return false
			}
		}
	}
	return true
}

func (t Table) String() string {
	var b strings.Builder
	b.WriteString("<Table:")
	for _, aa := range t.AminoAcids() {
		fmt.Fprintf(&b, " %c:", aa)
		for _, codon := range t.Codons(aa) {
			fmt.Fprintf(&b, " %s=%v", codon, t[aa][codon])
		}
		b.WriteString(",")
	}
	return strings.TrimSuffix(b.String(), ",") + ">"
}
