// Package synth generates DNA sequences encoding a protein using codon
// frequency tables.
package synth

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/op/go-logging"

	"bitbucket.org/Davydov/cusage/codon"
)

var log = logging.MustGetLogger("synth")

// Method is the codon selection method.
type Method int

const (
	// Weighted draws codons randomly with probabilities equal to
	// their frequencies.
	Weighted Method = iota
	// Preferred always uses the most frequent codon. All the variants
	// generated with this method are identical.
	Preferred
)

// ParseMethod returns a method from its name.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "weighted":
		return Weighted, nil
	case "preferred":
		return Preferred, nil
	}
	return Weighted, fmt.Errorf("%w: unknown method %q", codon.ErrInvalidArgument, s)
}

func (m Method) String() string {
	switch m {
	case Weighted:
		return "weighted"
	case Preferred:
		return "preferred"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Generator generates DNA sequences from protein sequences. The
// table is only read.
type Generator struct {
	table  codon.Table
	method Method
	seed   int64
}

// NewGenerator creates a new generator. The seed initializes random
// number generation for the weighted method.
func NewGenerator(table codon.Table, method Method, seed int64) *Generator {
	return &Generator{
		table:  table,
		method: method,
		seed:   seed,
	}
}

// chooser returns a codon for the protein position.
type chooser func(pos int) string

// Generate returns n DNA sequences encoding the protein. Protein is
// checked before any sequence is generated, an absent amino acid
// results in codon.ErrUnknownAminoAcid.
//
// With the Preferred method all the n sequences are the same. With
// the Weighted method every sequence uses its own random source, so
// sequences are independent of each other.
func (g *Generator) Generate(protein string, n int) ([]string, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: number of variants should be positive, got %d", codon.ErrInvalidArgument, n)
	}
	protein = strings.ToUpper(protein)
	if err := g.table.Check(protein); err != nil {
		return nil, err
	}

	switch g.method {
	case Preferred:
		return g.preferred(protein, n)
	case Weighted:
		return g.weighted(protein, n)
	}
	return nil, fmt.Errorf("%w: unknown method %v", codon.ErrInvalidArgument, g.method)
}

// preferred generates n copies of the sequence of preferred codons.
func (g *Generator) preferred(protein string, n int) ([]string, error) {
	codons := make(map[byte]string)
	for i := 0; i < len(protein); i++ {
		aa := protein[i]
		if _, ok := codons[aa]; ok {
			continue
		}
		c, err := g.table.Preferred(aa)
		if err != nil {
			return nil, err
		}
		codons[aa] = c
	}
	seq := build(len(protein), func(pos int) string {
		return codons[protein[pos]]
	})
	res := make([]string, n)
	for i := range res {
		res[i] = seq
	}
	log.Debugf("Generated %d identical variant(s) from preferred codons", n)
	return res, nil
}

// weighted generates n sequences sampling codons from their
// frequencies.
func (g *Generator) weighted(protein string, n int) ([]string, error) {
	dists := make(map[byte]*codon.Distribution)
	for i := 0; i < len(protein); i++ {
		aa := protein[i]
		if _, ok := dists[aa]; ok {
			continue
		}
		d, err := g.table.Distribution(aa)
		if err != nil {
			return nil, err
		}
		dists[aa] = d
	}

	// master only provides seeds for the variants
	master := rand.New(rand.NewSource(g.seed))
	res := make([]string, n)
	for i := range res {
		r := rand.New(rand.NewSource(master.Int63()))
		res[i] = build(len(protein), func(pos int) string {
			return dists[protein[pos]].Sample(r)
		})
	}
	log.Debugf("Generated %d weighted variant(s), seed=%d", n, g.seed)
	return res, nil
}

// build concatenates codons for all the protein positions.
func build(length int, choose chooser) string {
	var b strings.Builder
	b.Grow(length * 3)
	for pos := 0; pos < length; pos++ {
		b.WriteString(choose(pos))
	}
	return b.String()
}
