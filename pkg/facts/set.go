package facts

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
)

var (
	// ErrMalformedRecord is the root of every record validation error.
	ErrMalformedRecord = errors.New("malformed module record")
	// ErrEmptyIdentity is returned for a record without a path.
	ErrEmptyIdentity = fmt.Errorf("%w: empty path", ErrMalformedRecord)
	// ErrRelativeIdentity is returned for a record whose path is not absolute.
	ErrRelativeIdentity = fmt.Errorf("%w: path is not absolute", ErrMalformedRecord)
	// ErrDuplicateIdentity is returned when two records share a path.
	ErrDuplicateIdentity = fmt.Errorf("%w: duplicate path", ErrMalformedRecord)
)

// RecordError describes why a single record was excluded from a Set.
type RecordError struct {
	Path string
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Set is an immutable, validated collection of module records keyed by
// canonical absolute path.
type Set struct {
	root    string
	records map[string]*ModuleRecord
	paths   []string
}

// NewSet validates records and builds a Set. Invalid records are left out
// and reported individually; they never prevent the rest of the set from
// being built.
func NewSet(root string, records []ModuleRecord) (*Set, []*RecordError) {
	s := &Set{
		root:    filepath.Clean(root),
		records: make(map[string]*ModuleRecord, len(records)),
	}
	var errs []*RecordError

	for i := range records {
		rec := records[i]
		if rec.Path != "" {
			rec.Path = filepath.Clean(rec.Path)
		}
		if err := Validate(&rec); err != nil {
			errs = append(errs, &RecordError{Path: rec.Path, Err: err})
			continue
		}
		if _, dup := s.records[rec.Path]; dup {
			errs = append(errs, &RecordError{Path: rec.Path, Err: ErrDuplicateIdentity})
			continue
		}
		rec.Imports = append([]ImportFact(nil), rec.Imports...)
		rec.Exports = append([]ExportFact(nil), rec.Exports...)
		s.records[rec.Path] = &rec
		s.paths = append(s.paths, rec.Path)
	}

	sort.Strings(s.paths)
	return s, errs
}

// Root returns the project root used for relative keys.
func (s *Set) Root() string {
	return s.root
}

// Len returns the number of valid records.
func (s *Set) Len() int {
	return len(s.paths)
}

// Paths returns module identities in lexicographic order. The returned
// slice must not be modified.
func (s *Set) Paths() []string {
	return s.paths
}

// Get returns the record for path.
func (s *Set) Get(path string) (*ModuleRecord, bool) {
	rec, ok := s.records[path]
	return rec, ok
}

// Has reports whether path is a module in the set.
func (s *Set) Has(path string) bool {
	_, ok := s.records[path]
	return ok
}

// Validate checks that a record carries every required field.
func Validate(rec *ModuleRecord) error {
	if rec.Path == "" {
		return ErrEmptyIdentity
	}
	if !filepath.IsAbs(rec.Path) {
		return ErrRelativeIdentity
	}
	if !rec.FileType.Valid() {
		return fmt.Errorf("%w: unknown file type %q", ErrMalformedRecord, rec.FileType)
	}
	for i, imp := range rec.Imports {
		if imp.Source == "" {
			return fmt.Errorf("%w: import %d has no source", ErrMalformedRecord, i)
		}
		for j, spec := range imp.Specifiers {
			if !spec.Kind.Valid() {
				return fmt.Errorf("%w: import %d specifier %d has unknown kind %q", ErrMalformedRecord, i, j, spec.Kind)
			}
			if spec.Kind == SpecifierNamed && spec.ImportedName == "" {
				return fmt.Errorf("%w: import %d named specifier %d has no imported name", ErrMalformedRecord, i, j)
			}
		}
	}
	for i, exp := range rec.Exports {
		if exp.Name == "" {
			return fmt.Errorf("%w: export %d has no name", ErrMalformedRecord, i)
		}
		if !exp.Kind.Valid() {
			return fmt.Errorf("%w: export %d has unknown kind %q", ErrMalformedRecord, i, exp.Kind)
		}
	}
	return nil
}
