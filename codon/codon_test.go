package codon

import (
	"bytes"
	"errors"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"bitbucket.org/Davydov/cusage/bio"
)

const smallDiff = 1e-9

var nucs = []byte("ACGT")

// randomSequence returns a random DNA sequence of length n.
func randomSequence(r *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = nucs[r.Intn(len(nucs))]
	}
	return string(b)
}

func TestCountExample(tst *testing.T) {
	cs := NewCounter(bio.Standard()).Count([]string{"ATGGCC", "ATGGCA"})
	if cs.Count('M', "ATG") != 2 {
		tst.Error("Wrong ATG count:", cs.Count('M', "ATG"))
	}
	if cs.Count('A', "GCC") != 1 || cs.Count('A', "GCA") != 1 || cs.Total('A') != 2 {
		tst.Error("Wrong alanine counts:", cs)
	}
	if cs.NCodons() != 4 || cs.NSequences != 2 || cs.Skipped != 0 {
		tst.Error("Wrong summary counts:", cs.NCodons(), cs.NSequences, cs.Skipped)
	}

	t := cs.Frequencies()
	if len(t) != 2 {
		tst.Error("Only M and A should be in the table, got", t)
	}
	if math.Abs(t['M']["ATG"]-1) > smallDiff {
		tst.Error("Wrong ATG frequency:", t['M']["ATG"])
	}
	if math.Abs(t['A']["GCC"]-0.5) > smallDiff || math.Abs(t['A']["GCA"]-0.5) > smallDiff {
		tst.Error("Wrong alanine frequencies:", t['A'])
	}
	if t['A']["GCG"] != 0 || t['A']["GCT"] != 0 {
		tst.Error("Unobserved codons should have zero frequency:", t['A'])
	}
}

func TestCodonsIncludeUnobserved(tst *testing.T) {
	cs := NewCounter(bio.Standard()).Count([]string{"GCC"})
	codons := cs.Codons('A')
	if len(codons) != 4 || codons["GCC"] != 1 || codons["GCT"] != 0 {
		tst.Error("Wrong alanine codons:", codons)
	}
	if len(cs.Codons('W')) != 1 {
		tst.Error("Tryptophan should have one codon")
	}
}

func TestFrequenciesSumToOne(tst *testing.T) {
	r := rand.New(rand.NewSource(1))
	seqs := make([]string, 20)
	for i := range seqs {
		seqs[i] = randomSequence(r, 300+r.Intn(3))
	}
	t := NewCounter(bio.Standard()).Count(seqs).Frequencies()
	if len(t) != 21 {
		tst.Error("Expected all amino acids to be observed, got", len(t))
	}
	for _, aa := range t.AminoAcids() {
		if s := t.Sum(aa); math.Abs(s-1) > smallDiff {
			tst.Errorf("Frequencies of %c sum to %v", aa, s)
		}
	}
	if err := t.Verify(bio.Standard()); err != nil {
		tst.Error("Table should be consistent with the genetic code:", err)
	}
}

func TestPartialCodon(tst *testing.T) {
	cs := NewCounter(bio.Standard()).Count([]string{"ATGGC", "ATGG"})
	if cs.NCodons() != 2 || cs.Count('M', "ATG") != 2 {
		tst.Error("Only complete codons should be counted:", cs)
	}
	if cs.Skipped != 0 || cs.Partial != 2 {
		tst.Error("Partial codons are not errors:", cs.Skipped, cs.Partial)
	}
}

func TestInvalidCodonSkipped(tst *testing.T) {
	cs := NewCounter(bio.Standard()).Count([]string{"ATGNNNgcc", "A-GTGG", ""})
	if cs.Skipped != 2 {
		tst.Error("Expected two skipped codons, got", cs.Skipped)
	}
	if cs.Count('M', "ATG") != 1 || cs.Count('A', "GCC") != 1 || cs.Count('W', "TGG") != 1 {
		tst.Error("Valid codons should be counted:", cs)
	}
}

func TestInvalidByteKeepsFrame(tst *testing.T) {
	cs := NewCounter(bio.Standard()).Count([]string{"A\xffTATGgcc", "\xc4\xb1AATGGCC"})
	if cs.Skipped != 2 {
		tst.Error("Expected two skipped codons, got", cs.Skipped)
	}
	if cs.Partial != 0 {
		tst.Error("No partial codons expected, got", cs.Partial)
	}
	if cs.Count('M', "ATG") != 2 || cs.Count('A', "GCC") != 2 || cs.NCodons() != 4 {
		tst.Error("Codons after an invalid byte should stay in frame:", cs)
	}
}

func TestCustomGeneticCode(tst *testing.T) {
	gc := bio.MustNewGeneticCode(2, "TGA is W",
		"FFLLSSSSYY**CCWWLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG")
	cs := NewCounter(gc).Count([]string{"TGATGG"})
	if cs.Count('W', "TGA") != 1 || cs.Total('W') != 2 {
		tst.Error("Counter should use the supplied genetic code:", cs)
	}
}

func TestPreferred(tst *testing.T) {
	t := Table{
		'A': {"GCT": 0.25, "GCC": 0.25, "GCA": 0.25, "GCG": 0.25},
		'M': {"ATG": 1},
		'L': {"CTG": 0.1, "TTA": 0.6, "CTA": 0.3},
	}
	for aa, exp := range map[byte]string{'A': "GCA", 'M': "ATG", 'L': "TTA"} {
		codon, err := t.Preferred(aa)
		if err != nil {
			tst.Error("Error getting preferred codon:", err)
		}
		if codon != exp {
			tst.Errorf("Wrong preferred codon for %c: %s, expected %s", aa, codon, exp)
		}
	}
	if _, err := t.Preferred('X'); !errors.Is(err, ErrUnknownAminoAcid) {
		tst.Error("Expected ErrUnknownAminoAcid, got", err)
	}
	t['Z'] = map[string]float64{"AAA": 0}
	if _, err := t.Preferred('Z'); !errors.Is(err, ErrInvalidArgument) {
		tst.Error("Expected ErrInvalidArgument for zero frequencies, got", err)
	}
}

func TestCheck(tst *testing.T) {
	t := Table{'M': {"ATG": 1}, 'A': {"GCC": 1}}
	if err := t.Check("MAAM"); err != nil {
		tst.Error("Unexpected error:", err)
	}
	err := t.Check("MAXA")
	if !errors.Is(err, ErrUnknownAminoAcid) {
		tst.Error("Expected ErrUnknownAminoAcid, got", err)
	}
	if !strings.Contains(err.Error(), "position 3") {
		tst.Error("Error should contain the position:", err)
	}
}

func TestDistribution(tst *testing.T) {
	t := Table{'L': {"CTG": 2, "TTA": 0, "CTA": 6}}
	d, err := t.Distribution('L')
	if err != nil {
		tst.Fatal("Error creating distribution:", err)
	}
	// codons are sorted: CTA, CTG, TTA
	if math.Abs(d.Prob[0]-0.75) > smallDiff || math.Abs(d.Prob[1]-0.25) > smallDiff || d.Prob[2] != 0 {
		tst.Error("Weights should be renormalized:", d.Prob)
	}

	r := rand.New(rand.NewSource(3))
	n := 20000
	counts := map[string]int{}
	for i := 0; i < n; i++ {
		counts[d.Sample(r)]++
	}
	if counts["TTA"] != 0 {
		tst.Error("Zero frequency codon was sampled")
	}
	if p := float64(counts["CTA"]) / float64(n); math.Abs(p-0.75) > 0.02 {
		tst.Error("Wrong CTA proportion:", p)
	}
}

func TestDistributionErrors(tst *testing.T) {
	if _, err := (Table{}).Distribution('M'); !errors.Is(err, ErrUnknownAminoAcid) {
		tst.Error("Expected ErrUnknownAminoAcid, got", err)
	}
	for _, w := range [][]float64{{0, 0}, {-1, 2}, {math.NaN(), 1}, {math.Inf(1), 1}} {
		if _, err := NewDistribution([]string{"AAA", "AAG"}, w); !errors.Is(err, ErrInvalidArgument) {
			tst.Error("Expected ErrInvalidArgument for weights", w, "got", err)
		}
	}
	if _, err := NewDistribution([]string{"AAA"}, []float64{0.5, 0.5}); !errors.Is(err, ErrInvalidArgument) {
		tst.Error("Expected ErrInvalidArgument for length mismatch, got", err)
	}
}

func TestSampleSingleCodon(tst *testing.T) {
	d, err := NewDistribution([]string{"ATG"}, []float64{1})
	if err != nil {
		tst.Fatal(err)
	}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		if c := d.Sample(r); c != "ATG" {
			tst.Fatal("Wrong codon:", c)
		}
	}
}

func TestCSVRoundTrip(tst *testing.T) {
	r := rand.New(rand.NewSource(7))
	seqs := []string{randomSequence(r, 999), randomSequence(r, 600)}
	t := NewCounter(bio.Standard()).Count(seqs).Frequencies()

	fn := filepath.Join(tst.TempDir(), "freq.csv")
	if err := WriteTableFile(fn, t); err != nil {
		tst.Fatal("Error writing table:", err)
	}
	t2, err := ReadTableFile(fn)
	if err != nil {
		tst.Fatal("Error reading table:", err)
	}
	if !t.Equal(t2, smallDiff) {
		tst.Error("Tables differ after round trip:", t, t2)
	}

	b, _ := os.ReadFile(fn)
	if !strings.HasPrefix(string(b), "amino_acid,codon,frequency\n") {
		tst.Error("Wrong header:", string(b[:30]))
	}
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(fn), ".freq.csv.tmp*"))
	if len(matches) != 0 {
		tst.Error("Temporary files left:", matches)
	}
}

func TestWriteTableOrder(tst *testing.T) {
	var b bytes.Buffer
	t := Table{'M': {"ATG": 1}, 'A': {"GCC": 0.5, "GCA": 0.5}}
	if err := WriteTable(&b, t); err != nil {
		tst.Fatal(err)
	}
	exp := "amino_acid,codon,frequency\nA,GCA,0.5\nA,GCC,0.5\nM,ATG,1\n"
	if b.String() != exp {
		tst.Errorf("Wrong CSV output:\n%s", b.String())
	}
}

func TestReadTableNoHeader(tst *testing.T) {
	t, err := ReadTable(strings.NewReader("m, atg, 1.0\nA,GCC,0.25\nA,GCA,0.75\n"))
	if err != nil {
		tst.Fatal("Error reading table:", err)
	}
	if t['M']["ATG"] != 1 || t['A']["GCA"] != 0.75 {
		tst.Error("Wrong table:", t)
	}
}

func TestReadTableErrors(tst *testing.T) {
	for _, s := range []string{
		"",
		"amino_acid,codon,frequency\n",
		"M,ATG\n",
		"M,ATG,1,2\n",
		"M,ATG,one\n",
		"M,ATG,50\n",
		"M,ATG,-0.1\n",
		"M,ATGA,1\n",
		"M,ANG,1\n",
		"MET,ATG,1\n",
		"M,ATG,0.5\nM,ATG,0.5\n",
		"M,\"ATG,1\n",
	} {
		_, err := ReadTable(strings.NewReader(s))
		if !errors.Is(err, ErrInvalidArgument) {
			tst.Errorf("Expected ErrInvalidArgument for %q, got %v", s, err)
		}
	}
}

func TestReadTableFileMissing(tst *testing.T) {
	fn := filepath.Join(tst.TempDir(), "missing.csv")
	_, err := ReadTableFile(fn)
	var ioerr *IOError
	if !errors.As(err, &ioerr) {
		tst.Fatal("Expected IOError, got", err)
	}
	if ioerr.Path != fn || !errors.Is(err, os.ErrNotExist) {
		tst.Error("Wrong IOError:", ioerr)
	}
}

func TestReadTableFileDirectory(tst *testing.T) {
	dir := tst.TempDir()
	_, err := ReadTableFile(dir)
	var ioerr *IOError
	if !errors.As(err, &ioerr) {
		tst.Fatal("Expected IOError, got", err)
	}
	if ioerr.Path != dir || errors.Is(err, ErrInvalidArgument) {
		tst.Error("Read failure is not a table format error:", err)
	}
}

func TestReadTableReaderError(tst *testing.T) {
	rerr := errors.New("read failed")
	_, err := ReadTable(io.MultiReader(strings.NewReader("M,ATG,1\n"), iotest.ErrReader(rerr)))
	if !errors.Is(err, rerr) || errors.Is(err, ErrInvalidArgument) {
		tst.Error("Expected reader error, got", err)
	}
}

func TestParseEntry(tst *testing.T) {
	aa, codon, err := ParseEntry(" m", "atg ", 1)
	if err != nil || aa != 'M' || codon != "ATG" {
		tst.Error("Wrong entry:", aa, codon, err)
	}
	for _, e := range []struct {
		aa, codon string
		f         float64
	}{
		{"", "ATG", 1},
		{"MET", "ATG", 1},
		{"M", "AXG", 1},
		{"M", "ATGA", 1},
		{"M", "ATG", 2},
		{"M", "ATG", -0.5},
		{"M", "ATG", math.NaN()},
	} {
		if _, _, err := ParseEntry(e.aa, e.codon, e.f); !errors.Is(err, ErrInvalidArgument) {
			tst.Errorf("Expected ErrInvalidArgument for %v, got %v", e, err)
		}
	}
}

func TestWriteFileAtomicFailure(tst *testing.T) {
	dir := tst.TempDir()
	fn := filepath.Join(dir, "out.csv")
	werr := errors.New("write failed")
	err := WriteFileAtomic(fn, func(w io.Writer) error {
		w.Write([]byte("partial"))
		return werr
	})
	if !errors.Is(err, werr) {
		tst.Error("Expected write error, got", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		tst.Error("No files should be left after failure, got", len(entries))
	}

	err = WriteTableFile(filepath.Join(dir, "nodir", "out.csv"), Table{'M': {"ATG": 1}})
	var ioerr *IOError
	if !errors.As(err, &ioerr) {
		tst.Error("Expected IOError, got", err)
	}
}

func TestMatrix(tst *testing.T) {
	t := Table{'M': {"ATG": 1}, 'A': {"GCC": 0.5, "GCA": 0.5}}
	aas, codons, m := t.Matrix(bio.Standard())
	if len(aas) != 21 || len(codons) != 64 || len(m) != 21 {
		tst.Fatal("Wrong matrix dimensions:", len(aas), len(codons), len(m))
	}
	sum := 0.0
	for i, row := range m {
		if len(row) != 64 {
			tst.Fatal("Wrong row length:", len(row))
		}
		for j, v := range row {
			sum += v
			if aas[i] == 'M' && codons[j] == "ATG" && v != 1 {
				tst.Error("Wrong ATG value:", v)
			}
		}
	}
	if math.Abs(sum-2) > smallDiff {
		tst.Error("Missing cells should be zero, sum:", sum)
	}
}

func TestVerify(tst *testing.T) {
	gc := bio.Standard()
	if err := (Table{'M': {"ATG": 1}}).Verify(gc); err != nil {
		tst.Error("Unexpected error:", err)
	}
	if err := (Table{'M': {"ATA": 1}}).Verify(gc); !errors.Is(err, ErrInvalidArgument) {
		tst.Error("Expected ErrInvalidArgument for a foreign codon, got", err)
	}
	if err := (Table{'A': {"GCC": 0.5}}).Verify(gc); !errors.Is(err, ErrInvalidArgument) {
		tst.Error("Expected ErrInvalidArgument for a wrong sum, got", err)
	}
}

func TestBias(tst *testing.T) {
	cs := NewCounter(bio.Standard()).Count([]string{"GCTGCCGCAGCG", "ATGATG", strings.Repeat("CTG", 12)})
	bias := cs.Bias()
	// M has one codon
	if len(bias) != 2 {
		tst.Fatal("Expected bias for A and L, got", bias)
	}
	a := bias[0]
	if a.AminoAcid != "A" || a.DF != 3 || a.N != 4 {
		tst.Error("Wrong alanine bias:", a)
	}
	if math.Abs(a.ChiSquare) > smallDiff || math.Abs(a.PValue-1) > smallDiff {
		tst.Error("Uniform usage should have zero chi-square and p-value 1:", a)
	}
	if math.Abs(a.RSCU["GCC"]-1) > smallDiff {
		tst.Error("Wrong RSCU:", a.RSCU)
	}

	l := bias[1]
	// expected is 2 per codon: (12-2)^2/2 + 5*2 = 60
	if math.Abs(l.ChiSquare-60) > smallDiff {
		tst.Error("Wrong leucine chi-square:", l.ChiSquare)
	}
	if l.PValue > 1e-6 {
		tst.Error("Leucine usage should be strongly biased, p =", l.PValue)
	}
	if math.Abs(l.RSCU["CTG"]-6) > smallDiff || l.RSCU["TTA"] != 0 {
		tst.Error("Wrong RSCU:", l.RSCU)
	}
}
