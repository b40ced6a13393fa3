package codon

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownAminoAcid is returned when a protein contains an amino
	// acid which is absent from the frequency table.
	ErrUnknownAminoAcid = errors.New("unknown amino acid")
	// ErrInvalidArgument is returned for wrong parameters and
	// malformed frequency tables.
	ErrInvalidArgument = errors.New("invalid argument")
)

// IOError is a file system error together with the failing path.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
