package bio

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// StopSymbol is the amino acid letter used for stop codons.
const StopSymbol = '*'

// ErrInvalidCodon is returned when a string is not a codon of the
// genetic code.
var ErrInvalidCodon = errors.New("invalid codon")

// alphabet is the nucleotide alphabet in the NCBI table order.
var alphabet = [...]byte{'T', 'C', 'A', 'G'}

// GeneticCode stores a genetic code: the mapping of every codon to
// an amino acid and the reverse mapping.
type GeneticCode struct {
	ID   int
	Name string
	// Map maps codons (capital letters) to amino acids.
	Map map[string]byte
	// ReverseMap maps amino acids to the sorted list of their codons.
	ReverseMap map[byte][]string
}

// GeneticCodes maps NCBI genetic code ids to genetic codes.
var GeneticCodes = map[int]*GeneticCode{
	1: MustNewGeneticCode(1, "Standard",
		"FFLLSSSSYY**CC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG"),
}

// Standard returns the standard genetic code.
func Standard() *GeneticCode {
	return GeneticCodes[1]
}

// GetCodons returns all the 64 codons in TCAG order.
func GetCodons() []string {
	codons := make([]string, 0, 64)
	for _, l1 := range alphabet {
		for _, l2 := range alphabet {
			for _, l3 := range alphabet {
				codons = append(codons, string([]byte{l1, l2, l3}))
			}
		}
	}
	return codons
}

// NewGeneticCode creates a genetic code from an NCBI ncbieaa string,
// i.e. 64 amino acid letters for codons in TCAG order (TTT, TTC, TTA,
// ...). Stop codons are marked with '*'.
func NewGeneticCode(id int, name, ncbieaa string) (*GeneticCode, error) {
	if len(ncbieaa) != 64 {
		return nil, fmt.Errorf("genetic code %d: expected 64 amino acids, got %d", id, len(ncbieaa))
	}
	gc := &GeneticCode{
		ID:         id,
		Name:       name,
		Map:        make(map[string]byte, 64),
		ReverseMap: make(map[byte][]string, 21),
	}
	for i, codon := range GetCodons() {
		aa := ncbieaa[i]
		if aa >= 'a' && aa <= 'z' {
			aa -= 'a' - 'A'
		}
		gc.Map[codon] = aa
		gc.ReverseMap[aa] = append(gc.ReverseMap[aa], codon)
	}
	for _, codons := range gc.ReverseMap {
		sort.Strings(codons)
	}
	return gc, nil
}

// MustNewGeneticCode is like NewGeneticCode but panics on error.
func MustNewGeneticCode(id int, name, ncbieaa string) *GeneticCode {
	gc, err := NewGeneticCode(id, name, ncbieaa)
	if err != nil {
		panic(err)
	}
	return gc
}

// Translate returns the amino acid encoded by a codon. The codon is
// case-insensitive, but only A, C, G and T are accepted.
func (gc *GeneticCode) Translate(codon string) (byte, error) {
	if len(codon) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCodon, codon)
	}
	aa, ok := gc.Map[strings.ToUpper(codon)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCodon, codon)
	}
	return aa, nil
}

// TranslateSequence translates a nucleotide sequence into a protein
// sequence. Sequence length should divide by three.
func (gc *GeneticCode) TranslateSequence(nseq string) (string, error) {
	if len(nseq)%3 != 0 {
		return "", errors.New("sequence length doesn't divide by 3")
	}
	var b strings.Builder
	b.Grow(len(nseq) / 3)
	for i := 0; i < len(nseq); i += 3 {
		aa, err := gc.Translate(nseq[i : i+3])
		if err != nil {
			return b.String(), fmt.Errorf("position %d: %w", i, err)
		}
		b.WriteByte(aa)
	}
	return b.String(), nil
}

// IsStopCodon tests if the string is a stop-codon.
func (gc *GeneticCode) IsStopCodon(codon string) bool {
	return gc.Map[strings.ToUpper(codon)] == StopSymbol
}

// Codons returns the sorted codons encoding the amino acid.
func (gc *GeneticCode) Codons(aa byte) []string {
	return gc.ReverseMap[aa]
}

// AminoAcids returns the sorted list of amino acids (including the
// stop symbol).
func (gc *GeneticCode) AminoAcids() []byte {
	aas := make([]byte, 0, len(gc.ReverseMap))
	for aa := range gc.ReverseMap {
		aas = append(aas, aa)
	}
	sort.Slice(aas, func(i, j int) bool { return aas[i] < aas[j] })
	return aas
}

func (gc *GeneticCode) String() string {
	return fmt.Sprintf("<GeneticCode: id=%d, name=%q>", gc.ID, gc.Name)
}
