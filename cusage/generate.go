package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"bitbucket.org/Davydov/cusage/bio"
	"bitbucket.org/Davydov/cusage/codon"
	"bitbucket.org/Davydov/cusage/store"
	"bitbucket.org/Davydov/cusage/synth"
)

// errNoTable is returned if neither frequency table file nor analysis
// name is given.
var errNoTable = errors.New("either --frequency_table or --db with --name is required")

// generateSettings stores settings of the generate command.
type generateSettings struct {
	gcode *bio.GeneticCode

	protein string
	freqF   string
	dbF     string
	name    string

	n      int
	method string
	// seed is used only if seedSet is true, otherwise the seed is
	// taken from the clock.
	seed    int64
	seedSet bool
}

// newGenerateSettings creates a new generateSettings from
// the command line parameters (global variables).
func newGenerateSettings() *generateSettings {
	return &generateSettings{
		gcode:   bio.Standard(),
		protein: *protein,
		freqF:   *freqF,
		dbF:     *dbF,
		name:    *loadName,
		n:       *nVariants,
		method:  *method,
		seed:    *seed,
		seedSet: seedSet,
	}
}

// loadTable loads the frequency table either from the CSV file or
// from the database. It also returns the table description.
func (gs *generateSettings) loadTable() (codon.Table, string, error) {
	if gs.freqF != "" {
		t, err := codon.ReadTableFile(gs.freqF)
		return t, gs.freqF, err
	}
	if gs.dbF == "" || gs.name == "" {
		return nil, "", errNoTable
	}
	s, err := store.Open(gs.dbF)
	if err != nil {
		return nil, "", err
	}
	defer s.Close()
	r, err := s.Load(gs.name)
	if err != nil {
		return nil, "", err
	}
	t, err := r.CodonTable()
	return t, fmt.Sprintf("%s:%s", gs.dbF, gs.name), err
}

// run generates the variants and writes them to w in FASTA format.
func (gs *generateSettings) run(w io.Writer) (*GenerationSummary, error) {
	m, err := synth.ParseMethod(gs.method)
	if err != nil {
		return nil, err
	}
	t, source, err := gs.loadTable()
	if err != nil {
		return nil, err
	}
	log.Infof("Loaded frequencies of %d amino acids from %s", len(t), source)
	if err := t.Verify(gs.gcode); err != nil {
		log.Warning("Frequency table doesn't match the genetic code:", err)
	}

	if !gs.seedSet {
		gs.seed = time.Now().UnixNano()
		gs.seedSet = true
		log.Debug("Random seed from time")
	}
	log.Infof("Random seed=%v", gs.seed)

	g := synth.NewGenerator(t, m, gs.seed)
	variants, err := g.Generate(gs.protein, gs.n)
	if err != nil {
		return nil, fmt.Errorf("protein %q: %w", gs.protein, err)
	}
	if m == synth.Preferred && gs.n > 1 {
		log.Notice("Preferred codons are used, all the variants are identical")
	}

	seqs := make(bio.Sequences, len(variants))
	for i, v := range variants {
		if p, err := gs.gcode.TranslateSequence(v); err != nil || p != strings.ToUpper(gs.protein) {
			log.Warningf("Variant %d doesn't translate to the protein: %q, %v", i+1, p, err)
		}
		seqs[i] = bio.Sequence{
			Name:     fmt.Sprintf("variant_%d method=%v", i+1, m),
			Sequence: v,
		}
	}
	if _, err := fmt.Fprintln(w, seqs); err != nil {
		return nil, err
	}
	log.Noticef("Generated %d DNA sequence variant(s)", len(variants))

	return &GenerationSummary{
		Protein:  gs.protein,
		Table:    source,
		Method:   m.String(),
		Seed:     gs.seed,
		Variants: variants,
	}, nil
}
