/*

Cusage computes codon usage frequencies of coding sequences and uses
them to generate DNA sequences encoding a protein.

Codon frequencies are computed from a FASTA file and saved in CSV
format:

	cusage analyze -f genes.fasta -o freq.csv -v freq.png

, a heat map of frequencies is drawn if -v is specified.

DNA sequences are generated from a protein and a frequency table:

	cusage generate -p MSKGEELFTG -f freq.csv -n 5 --method weighted

With the preferred method the most frequent codon is always used, so
all the variants are the same.

To see all the options run:

	cusage --help

*/
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/op/go-logging"
)

// These three variables are set during the compilation.
var githash = ""
var gitbranch = ""
var buildstamp = ""
var version = fmt.Sprintf("branch: %s, revision: %s, build time: %s", gitbranch, githash, buildstamp)

// Logger settings.
var log = logging.MustGetLogger("cusage")
var formatter = logging.MustStringFormatter(`%{message}`)

// loggers are all the package loggers, their level is set from the
// command line.
var loggers = []string{"cusage", "codon", "synth", "heatmap", "store"}

// command-line options
var (
	// application
	app = kingpin.New("cusage", "codon usage analysis and DNA sequence generation").Version(version)

	// global
	outLogF  = app.Flag("log", "write log to a file").String()
	logLevel = app.Flag("loglevel", "set loglevel "+
		"('critical', 'error', 'warning', 'notice', 'info', 'debug')").
		Default("notice").
		Enum("critical", "error", "warning", "notice", "info", "debug")
	jsonF = app.Flag("json", "write json summary to a file").String()
	dbF   = app.Flag("db", "bolt database storing named analyses").String()

	// analyze
	analyzeCmd = app.Command("analyze", "analyze codon frequencies from a FASTA file")
	fastaF     = analyzeCmd.Flag("fasta", "input FASTA file").Short('f').Required().ExistingFile()
	outCSVF    = analyzeCmd.Flag("output", "output frequency table (CSV)").Short('o').Required().String()
	heatmapF   = analyzeCmd.Flag("heatmap", "heat map file (png, svg or pdf)").Short('v').String()
	saveName   = analyzeCmd.Flag("name", "save analysis in the database (--db) under the name, "+
		"FASTA file name by default").String()

	// generate
	generateCmd = app.Command("generate", "generate DNA sequences from a protein sequence")
	protein     = generateCmd.Flag("protein", "protein sequence").Short('p').Required().String()
	freqF       = generateCmd.Flag("frequency_table", "frequency table (CSV)").Short('f').String()
	loadName    = generateCmd.Flag("name", "use the named analysis from the database (--db)").String()
	nVariants   = generateCmd.Flag("num_variants", "number of variants to generate").Short('n').Default("1").Int()
	method      = generateCmd.Flag("method", "codon selection method "+
		"(weighted: random codons with table frequencies, "+
		"preferred: the most frequent codon)").
		Default("weighted").
		Enum("preferred", "weighted")
	seed = generateCmd.Flag("seed", "random generator seed (any int64), "+
		"time based if not set").IsSetByUser(&seedSet).Int64()
)

// seedSet is true if --seed was given.
var seedSet bool

// setupLogging sets logging backend and level. Returned function
// closes the log file.
func setupLogging() (func(), error) {
	logging.SetFormatter(formatter)

	closer := func() {}
	var backend *logging.LogBackend
	if *outLogF != "" {
		f, err := os.OpenFile(*outLogF, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return closer, fmt.Errorf("creating log file: %w", err)
		}
		closer = func() { f.Close() }
		backend = logging.NewLogBackend(f, "", 0)
	} else {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
	}
	logging.SetBackend(backend)

	level, err := logging.LogLevel(*logLevel)
	if err != nil {
		return closer, err
	}
	for _, module := range loggers {
		logging.SetLevel(level, module)
	}
	return closer, nil
}

// saveJSON writes the summary to the json file.
func saveJSON(summary *Summary) {
	j, err := json.Marshal(summary)
	if err != nil {
		log.Error(err)
		return
	}
	log.Debug(string(j))
	f, err := os.Create(*jsonF)
	if err != nil {
		log.Error("Error creating json output file:", err)
		return
	}
	defer f.Close()
	if _, err := f.Write(j); err != nil {
		log.Error("Error writing json output file:", err)
	}
}

func main() {
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	closeLog, err := setupLogging()
	defer closeLog()
	if err != nil {
		log.Fatal(err)
	}

	// print revision
	log.Info(version)

	// print commandline
	log.Info("Command line:", os.Args)

	startTime := time.Now()
	summary := &Summary{
		Version:     version,
		CommandLine: os.Args,
		Command:     cmd,
	}

	switch cmd {
	case analyzeCmd.FullCommand():
		summary.Analysis, err = newAnalyzeSettings().run()
	case generateCmd.FullCommand():
		summary.Generation, err = newGenerateSettings().run(os.Stdout)
	}
	if err != nil {
		log.Fatal(err)
	}

	deltaT := time.Since(startTime)
	log.Infof("Running time: %v", deltaT)
	summary.Time = deltaT.Seconds()

	// output summary in json format
	if *jsonF != "" {
		saveJSON(summary)
	}
}
