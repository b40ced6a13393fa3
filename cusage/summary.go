package main

import "bitbucket.org/Davydov/cusage/codon"

// Summary is storing cusage run summary information.
type Summary struct {
	// Version stores cusage version.
	Version string `json:"version"`
	// CommandLine is an array storing binary name and all command-line parameters.
	CommandLine []string `json:"commandLine"`
	// Command is the subcommand (analyze or generate).
	Command string `json:"command"`
	// Time is the computations time in seconds.
	Time float64 `json:"time"`
	// Analysis is set for the analyze command.
	Analysis *AnalysisSummary `json:"analysis,omitempty"`
	// Generation is set for the generate command.
	Generation *GenerationSummary `json:"generation,omitempty"`
}

// AnalysisSummary stores codon counting results.
type AnalysisSummary struct {
	// Input is the FASTA file name.
	Input string `json:"input"`
	// Output is the frequency table file name.
	Output string `json:"output"`
	// Heatmap is the heat map file name, if drawn.
	Heatmap string `json:"heatmap,omitempty"`
	// Name is the analysis name in the database, if saved.
	Name string `json:"name,omitempty"`
	// NSequences is the number of FASTA records.
	NSequences int `json:"nSequences"`
	// NCodons is the number of valid codons.
	NCodons int `json:"nCodons"`
	// Skipped is the number of invalid codons.
	Skipped int `json:"skipped"`
	// NAminoAcids is the number of amino acids in the table.
	NAminoAcids int `json:"nAminoAcids"`
	// Bias is codon usage bias per amino acid.
	Bias []codon.Bias `json:"bias"`
}

// GenerationSummary stores sequence generation parameters and results.
type GenerationSummary struct {
	Protein string `json:"protein"`
	// Table is the frequency table file or analysis name.
	Table  string `json:"table"`
	Method string `json:"method"`
	// Seed is the seed used for random number generation initialization.
	Seed     int64    `json:"seed"`
	Variants []string `json:"variants"`
}
