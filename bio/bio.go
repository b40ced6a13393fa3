// Package bio provides the genetic code and FASTA input/output.
package bio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// maxLine is the longest FASTA line accepted by ParseFasta.
const maxLine = 64 * 1024 * 1024

// Sequence is a type which is intended for storing nucleotide or
// protein sequence with it's name.
type Sequence struct {
	Name     string
	Sequence string
}

// Sequences stores multiple sequences, e.g. all records of a FASTA
// file.
type Sequences []Sequence

// ParseFasta parses FASTA sequences from a reader. Spaces inside
// sequence lines are removed and letters are converted to uppercase.
func ParseFasta(rd io.Reader) (seqs Sequences, err error) {
	seqs = make(Sequences, 0, 10)
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	var b strings.Builder
	flush := func() {
		if len(seqs) > 0 {
			seqs[len(seqs)-1].Sequence = b.String()
		}
		b.Reset()
	}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == ';' {
			continue
		}
		if line[0] == '>' {
			flush()
			seqs = append(seqs, Sequence{Name: strings.TrimSpace(line[1:])})
			continue
		}
		if len(seqs) == 0 {
			return nil, fmt.Errorf("line %d: sequence w/o prefix", lineNo)
		}
		b.WriteString(upperASCII(strings.Replace(line, " ", "", -1)))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	if len(seqs) == 0 {
		return nil, errors.New("no FASTA records found")
	}
	return seqs, nil
}

// upperASCII converts ASCII letters to uppercase and keeps all the
// other bytes, so the byte length never changes.
func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

// Strings returns just the sequences without names, in the input
// order.
func (seqs Sequences) Strings() []string {
	res := make([]string, len(seqs))
	for i, seq := range seqs {
		res[i] = seq.Sequence
	}
	return res
}

// Wrap inputs a string and wraps it so string length is n characters
// or less.
func Wrap(seq string, n int) string {
	var b strings.Builder
	for i := 0; i < len(seq); i += n {
		end := i + n
		if end > len(seq) {
			end = len(seq)
		}
		b.WriteString(seq[i:end])
		b.WriteByte('\n')
	}
	return b.String()
}

// String returns a sequence in FASTA format.
func (seq Sequence) String() string {
	return ">" + seq.Name + "\n" + Wrap(seq.Sequence, 80)
}

// String returns sequences in FASTA format.
func (seqs Sequences) String() string {
	var b strings.Builder
	for _, seq := range seqs {
		b.WriteString(seq.String())
	}
	return strings.TrimSuffix(b.String(), "\n")
}
