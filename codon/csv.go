package codon

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Header is the header of the frequency table CSV file.
var Header = []string{"amino_acid", "codon", "frequency"}

// isHeader tests if the record is the table header.
func isHeader(rec []string) bool {
	if len(rec) != len(Header) {
		return false
	}
	for i, f := range rec {
		if !strings.EqualFold(strings.TrimSpace(f), Header[i]) {
			return false
		}
	}
	return true
}

// validCodon tests if the string consists of three nucleotides.
func validCodon(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		switch s[i] {
		case 'A', 'C', 'G', 'T':
		default:
			return false
		}
	}
	return true
}

// ParseEntry validates one frequency table entry. Amino acid and codon
// are trimmed and converted to uppercase; the frequency has to be in
// [0, 1]. Errors wrap ErrInvalidArgument.
func ParseEntry(aa, codon string, f float64) (byte, string, error) {
	aaf := strings.ToUpper(strings.TrimSpace(aa))
	if len(aaf) != 1 {
		return 0, "", fmt.Errorf("%w: wrong amino acid %q", ErrInvalidArgument, aa)
	}
	cf := strings.ToUpper(strings.TrimSpace(codon))
	if !validCodon(cf) {
		return 0, "", fmt.Errorf("%w: wrong codon %q", ErrInvalidArgument, codon)
	}
	if math.IsNaN(f) || f < 0 || f > 1+Tolerance {
		return 0, "", fmt.Errorf("%w: frequency %v is not in [0, 1]", ErrInvalidArgument, f)
	}
	return aaf[0], cf, nil
}

// ReadTable reads a frequency table in CSV format: amino acid, codon
// and frequency (fraction, not percent) per row. The header row is
// optional. Malformed content is reported as ErrInvalidArgument, errors
// of the underlying reader are returned as is.
func ReadTable(rd io.Reader) (Table, error) {
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.ReuseRecord = true

	t := make(Table)
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
			}
			return nil, err
		}
		line, _ := r.FieldPos(0)
		if first {
			first = false
			if isHeader(rec) {
				continue
			}
		}
		if len(rec) != len(Header) {
			return nil, fmt.Errorf("%w: line %d: expected %d columns, got %d", ErrInvalidArgument, line, len(Header), len(rec))
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: wrong frequency %q", ErrInvalidArgument, line, rec[2])
		}
		aa, codon, err := ParseEntry(rec[0], rec[1], f)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if t[aa] == nil {
			t[aa] = make(map[string]float64)
		}
		if _, ok := t[aa][codon]; ok {
			return nil, fmt.Errorf("%w: line %d: duplicate row for %c %s", ErrInvalidArgument, line, aa, codon)
		}
		t[aa][codon] = f
	}
	if len(t) == 0 {
		return nil, fmt.Errorf("%w: empty frequency table", ErrInvalidArgument)
	}
	return t, nil
}

// WriteTable writes the table in CSV format with a header. Rows are
// sorted by amino acid and codon.
func WriteTable(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	rec := make([]string, len(Header))
	for _, aa := range t.AminoAcids() {
		for _, codon := range t.Codons(aa) {
			rec[0] = string(aa)
			rec[1] = codon
			rec[2] = strconv.FormatFloat(t[aa][codon], 'g', -1, 64)
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTableFile reads frequency table from a CSV file.
func ReadTableFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: unwrapPathError(err)}
	}
	defer f.Close()
	t, err := ReadTable(bufio.NewReader(f))
	if err != nil {
		if !errors.Is(err, ErrInvalidArgument) {
			return nil, &IOError{Op: "read", Path: path, Err: unwrapPathError(err)}
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteTableFile writes the frequency table to a CSV file. The file
// is either written completely or not created.
func WriteTableFile(path string, t Table) error {
	return WriteFileAtomic(path, func(w io.Writer) error {
		return WriteTable(w, t)
	})
}

// WriteFileAtomic writes a file using the write function. The data
// is written to a temporary file in the same directory, which is
// renamed to path only if writing succeeded.
func WriteFileAtomic(path string, write func(io.Writer) error) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp*")
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: unwrapPathError(err)}
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0644); err != nil {
		return &IOError{Op: "chmod", Path: path, Err: unwrapPathError(err)}
	}
	bw := bufio.NewWriter(tmp)
	if err = write(bw); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err = bw.Flush(); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return &IOError{Op: "rename", Path: path, Err: unwrapPathError(err)}
	}
	return nil
}

// unwrapPathError strips os.PathError, since IOError has the path
// already.
func unwrapPathError(err error) error {
	var perr *os.PathError
	if errors.As(err, &perr) {
		return perr.Err
	}
	var lerr *os.LinkError
	if errors.As(err, &lerr) {
		return lerr.Err
	}
	return err
}
