// Package codon implements codon usage statistics: counting codons in
// coding sequences, codon frequency tables and sampling codons from
// them.
package codon

import (
	"fmt"
	"sort"
	"strings"

	"github.com/op/go-logging"

	"bitbucket.org/Davydov/cusage/bio"
)

var log = logging.MustGetLogger("codon")

// Counter counts codons using a genetic code.
type Counter struct {
	gcode *bio.GeneticCode
}

// NewCounter creates a new codon counter.
func NewCounter(gcode *bio.GeneticCode) *Counter {
	return &Counter{gcode: gcode}
}

// Counts stores codon counts for every amino acid. It is created by
// Counter.Count and is not modified afterwards.
type Counts struct {
	GCode *bio.GeneticCode
	// NSequences is the number of sequences processed.
	NSequences int
	// Skipped is the number of invalid codons which were ignored.
	Skipped int
	// Partial is the number of sequences with a trailing partial codon.
	Partial int

	counts  map[byte]map[string]int
	nCodons int
}

// Count counts codons in all the sequences. Every sequence is read in
// non-overlapping triplets starting from the first letter, a
// trailing incomplete codon is ignored. Invalid codons are skipped and
// only reported in Counts.Skipped.
func (c *Counter) Count(seqs []string) *Counts {
	cs := &Counts{
		GCode:  c.gcode,
		counts: make(map[byte]map[string]int, len(c.gcode.ReverseMap)),
	}
	for i, seq := range seqs {
		cs.add(i, seq)
	}
	cs.NSequences = len(seqs)
	log.Debugf("Counted %d codons in %d sequences, %d codons skipped", cs.nCodons, cs.NSequences, cs.Skipped)
	return cs
}

// add adds codons of the sequence number i. Windows are cut from the
// raw bytes, so a malformed codon doesn't shift the reading frame.
func (cs *Counts) add(i int, seq string) {
	if len(seq)%3 != 0 {
		cs.Partial++
	}
	for pos := 0; pos+3 <= len(seq); pos += 3 {
		aa, err := cs.GCode.Translate(seq[pos : pos+3])
		if err != nil {
			log.Debugf("sequence %d, position %d: %v", i+1, pos+1, err)
			cs.Skipped++
			continue
		}
		m := cs.counts[aa]
		if m == nil {
			m = make(map[string]int, len(cs.GCode.Codons(aa)))
			cs.counts[aa] = m
		}
		// translated codons are ASCII
		m[strings.ToUpper(seq[pos:pos+3])]++
		cs.nCodons++
	}
}

// Count returns the number of times the codon was observed for the
// amino acid.
func (cs *Counts) Count(aa byte, codon string) int {
	return cs.counts[aa][strings.ToUpper(codon)]
}

// Total returns the number of codons observed for the amino acid.
func (cs *Counts) Total(aa byte) (n int) {
	for _, c := range cs.counts[aa] {
		n += c
	}
	return
}

// NCodons returns the total number of valid codons counted.
func (cs *Counts) NCodons() int {
	return cs.nCodons
}

// Codons returns counts for all the codons of the amino acid,
// including the unobserved ones.
func (cs *Counts) Codons(aa byte) map[string]int {
	codons := cs.GCode.Codons(aa)
	res := make(map[string]int, len(codons))
	for _, codon := range codons {
		res[codon] = cs.counts[aa][codon]
	}
	return res
}

// AminoAcids returns sorted amino acids which were observed at least
// once.
func (cs *Counts) AminoAcids() []byte {
	aas := make([]byte, 0, len(cs.counts))
	for aa := range cs.counts {
		aas = append(aas, aa)
	}
	sort.Slice(aas, func(i, j int) bool { return aas[i] < aas[j] })
	return aas
}

// Frequencies converts counts into a frequency table. Frequency of
// every codon is its count divided by the number of codons observed
// for the amino acid. Amino acids which were never observed are
// absent from the table.
func (cs *Counts) Frequencies() Table {
	t := make(Table, len(cs.counts))
	for _, aa := range cs.AminoAcids() {
		total := cs.Total(aa)
		if total == 0 {
			continue
		}
		codons := cs.GCode.Codons(aa)
		t[aa] = make(map[string]float64, len(codons))
		for _, codon := range codons {
			t[aa][codon] = float64(cs.counts[aa][codon]) / float64(total)
		}
	}
	return t
}

func (cs *Counts) String() string {
	var b strings.Builder
	b.WriteString("<Counts:")
	for _, aa := range cs.AminoAcids() {
		fmt.Fprintf(&b, " %c:", aa)
		for _, codon := range cs.GCode.Codons(aa) {
			fmt.Fprintf(&b, " %s=%d", codon, cs.counts[aa][codon])
		}
		b.WriteString(",")
	}
	return strings.TrimSuffix(b.String(), ",") + ">"
}
