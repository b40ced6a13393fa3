package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bitbucket.org/Davydov/cusage/bio"
	"bitbucket.org/Davydov/cusage/codon"
	"bitbucket.org/Davydov/cusage/heatmap"
	"bitbucket.org/Davydov/cusage/store"
)

// analyzeSettings stores settings of the analyze command.
type analyzeSettings struct {
	gcode *bio.GeneticCode

	fastaF   string
	outF     string
	heatmapF string

	dbF  string
	name string
}

// newAnalyzeSettings initializes analyzeSettings from global
// variables (command-line arguments).
func newAnalyzeSettings() *analyzeSettings {
	return &analyzeSettings{
		gcode:    bio.Standard(),
		fastaF:   *fastaF,
		outF:     *outCSVF,
		heatmapF: *heatmapF,
		dbF:      *dbF,
		name:     *saveName,
	}
}

// readFasta reads all the sequences from the FASTA file.
func readFasta(fn string) (bio.Sequences, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, &codon.IOError{Op: "open", Path: fn, Err: err}
	}
	defer f.Close()
	seqs, err := bio.ParseFasta(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return seqs, nil
}

// run counts codons, saves the frequency table and draws the heat
// map.
func (as *analyzeSettings) run() (*AnalysisSummary, error) {
	log.Infof("Genetic code: %d, %q", as.gcode.ID, as.gcode.Name)
	seqs, err := readFasta(as.fastaF)
	if err != nil {
		return nil, err
	}
	log.Infof("Read %d sequences from %s", len(seqs), as.fastaF)

	cs := codon.NewCounter(as.gcode).Count(seqs.Strings())
	if cs.Skipped > 0 {
		log.Warningf("Skipped %d invalid codons", cs.Skipped)
	}
	if cs.Partial > 0 {
		log.Infof("%d sequences have a trailing incomplete codon", cs.Partial)
	}
	log.Debug(cs)

	t := cs.Frequencies()
	if len(t) == 0 {
		return nil, fmt.Errorf("%s: %w: no valid codons found", as.fastaF, codon.ErrInvalidArgument)
	}
	log.Infof("Counted %d codons for %d amino acids", cs.NCodons(), len(t))

	if err := codon.WriteTableFile(as.outF, t); err != nil {
		return nil, err
	}
	log.Noticef("Frequency table saved to %s", as.outF)

	summary := &AnalysisSummary{
		Input:       as.fastaF,
		Output:      as.outF,
		NSequences:  cs.NSequences,
		NCodons:     cs.NCodons(),
		Skipped:     cs.Skipped,
		NAminoAcids: len(t),
		Bias:        cs.Bias(),
	}
	for _, b := range summary.Bias {
		log.Infof("%s: n=%d, chi2=%.3f, df=%d, p=%.3g", b.AminoAcid, b.N, b.ChiSquare, b.DF, b.PValue)
	}

	if as.heatmapF != "" {
		if err := heatmap.Render(as.heatmapF, t, as.gcode); err != nil {
			return nil, err
		}
		log.Noticef("Visualization is saved to %s", as.heatmapF)
		summary.Heatmap = as.heatmapF
	}

	if as.dbF != "" {
		name := as.name
		if name == "" {
			base := filepath.Base(as.fastaF)
			name = strings.TrimSuffix(base, filepath.Ext(base))
		}
		if err := saveRecord(as.dbF, store.NewRecord(name, as.fastaF, cs)); err != nil {
			return nil, err
		}
		summary.Name = name
	} else if as.name != "" {
		log.Warning("--name is ignored without --db")
	}

	return summary, nil
}

// saveRecord saves the analysis to the database.
func saveRecord(dbF string, r *store.Record) (err error) {
	s, err := store.Open(dbF)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = &codon.IOError{Op: "close", Path: dbF, Err: cerr}
		}
	}()
	return s.Save(r)
}
