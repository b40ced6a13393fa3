// Package store keeps codon usage analyses in a bolt database, so
// that tables can be referred to by name.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/op/go-logging"

	bolt "go.etcd.io/bbolt"

	"bitbucket.org/Davydov/cusage/codon"
)

// log is the global logging variable.
var log = logging.MustGetLogger("store")

// TABLES is the bucket name for all the analyses.
var TABLES = []byte("tables")

// ErrNotFound is returned when there is no analysis with the name.
var ErrNotFound = errors.New("analysis not found")

// Record stores a single analysis.
type Record struct {
	Name string `json:"name"`
	// Source is the input file name.
	Source  string    `json:"source"`
	Created time.Time `json:"created"`

	NSequences int `json:"nSequences"`
	NCodons    int `json:"nCodons"`
	Skipped    int `json:"skipped"`

	// Table maps amino acid and codon to frequency.
	Table map[string]map[string]float64 `json:"table"`
}

// NewRecord creates a record from codon counts.
func NewRecord(name, source string, cs *codon.Counts) *Record {
	r := &Record{
		Name:       name,
		Source:     source,
		Created:    time.Now().UTC(),
		NSequences: cs.NSequences,
		NCodons:    cs.NCodons(),
		Skipped:    cs.Skipped,
	}
	r.SetTable(cs.Frequencies())
	return r
}

// SetTable stores the frequency table in the record.
func (r *Record) SetTable(t codon.Table) {
	r.Table = make(map[string]map[string]float64, len(t))
	for aa, codons := range t {
		m := make(map[string]float64, len(codons))
		for c, f := range codons {
			m[c] = f
		}
		r.Table[string(aa)] = m
	}
}

// CodonTable returns the frequency table of the record. Entries are
// validated the same way as rows of a CSV table.
func (r *Record) CodonTable() (codon.Table, error) {
	t := make(codon.Table, len(r.Table))
	for aas, codons := range r.Table {
		for cs, f := range codons {
			aa, c, err := codon.ParseEntry(aas, cs, f)
			if err != nil {
				return nil, fmt.Errorf("analysis %q: %w", r.Name, err)
			}
			if t[aa] == nil {
				t[aa] = make(map[string]float64, len(codons))
			}
			if _, ok := t[aa][c]; ok {
				return nil, fmt.Errorf("%w: analysis %q: duplicate entry for %c %s", codon.ErrInvalidArgument, r.Name, aa, c)
			}
			t[aa][c] = f
		}
	}
	if len(t) == 0 {
		return nil, fmt.Errorf("%w: analysis %q: empty frequency table", codon.ErrInvalidArgument, r.Name)
	}
	return t, nil
}

// Store is a database of analyses.
type Store struct {
	db   *bolt.DB
	path string
}

// Open opens (or creates) a database.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, &codon.IOError{Op: "open", Path: path, Err: err}
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save saves the record under its name, replacing the previous one.
func (s *Store) Save(r *Record) error {
	if r.Name == "" {
		return fmt.Errorf("%w: empty analysis name", codon.ErrInvalidArgument)
	}
	data, err := json.Marshal(r)
	if err != nil {
		log.Error("Error serializing analysis", err)
		return err
	}
	if err := SaveData(s.db, []byte(r.Name), data); err != nil {
		return &codon.IOError{Op: "write", Path: s.path, Err: err}
	}
	log.Infof("Saved analysis %q to %s", r.Name, s.path)
	return nil
}

// Load loads the record with the name.
func (s *Store) Load(name string) (*Record, error) {
	data, err := LoadData(s.db, []byte(name))
	if err != nil {
		return nil, &codon.IOError{Op: "read", Path: s.path, Err: err}
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %q in %s", ErrNotFound, name, s.path)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: analysis %q: %v", codon.ErrInvalidArgument, name, err)
	}
	return &r, nil
}

// Names returns the names of all the analyses in the key order.
func (s *Store) Names() (names []string, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(TABLES)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return
}

// SaveData saves values in bolt database.
func SaveData(db *bolt.DB, key []byte, data []byte) error {
	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(TABLES)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

// LoadData loads data from bolt database. Nil is returned if there
// is no such key.
func LoadData(db *bolt.DB, key []byte) ([]byte, error) {
	var data []byte
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(TABLES)
		if b == nil {
			return nil
		}
		// v is only valid during the transaction
		if v := b.Get(key); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}
