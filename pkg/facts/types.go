// Package facts defines the per-module import/export facts consumed by the
// analysis engine. Facts are produced by an external scanner and are never
// mutated once a Set has been built.
package facts

// FileType classifies what a module contains.
type FileType string

const (
	FileCode FileType = "code"
	FileData FileType = "data"
	FileCSS  FileType = "css"
)

// Valid reports whether t is a known file type.
func (t FileType) Valid() bool {
	switch t {
	case FileCode, FileData, FileCSS:
		return true
	}
	return false
}

// String returns the string representation.
func (t FileType) String() string {
	return string(t)
}

// SpecifierKind is the binding form of an import specifier.
type SpecifierKind string

const (
	SpecifierNamed     SpecifierKind = "named"
	SpecifierDefault   SpecifierKind = "default"
	SpecifierNamespace SpecifierKind = "namespace"
)

// Valid reports whether k is a known specifier kind.
func (k SpecifierKind) Valid() bool {
	switch k {
	case SpecifierNamed, SpecifierDefault, SpecifierNamespace:
		return true
	}
	return false
}

// ExportKind classifies an export declaration.
type ExportKind string

const (
	ExportNamed    ExportKind = "named"
	ExportDefault  ExportKind = "default"
	ExportReExport ExportKind = "re-export"
)

// Valid reports whether k is a known export kind.
func (k ExportKind) Valid() bool {
	switch k {
	case ExportNamed, ExportDefault, ExportReExport:
		return true
	}
	return false
}

// ImportType records the syntactic form of an import statement.
type ImportType string

const (
	ImportES6      ImportType = "es6"
	ImportCommonJS ImportType = "commonjs"
	ImportDynamic  ImportType = "dynamic"
)

// Specifier is a single binding introduced by an import statement.
type Specifier struct {
	Kind         SpecifierKind `json:"kind" yaml:"kind" toon:"kind"`
	ImportedName string        `json:"importedName,omitempty" yaml:"importedName,omitempty" toon:"imported_name,omitempty"`
	LocalName    string        `json:"localName" yaml:"localName" toon:"local_name"`
}

// ImportFact is one import statement as extracted from source.
type ImportFact struct {
	Source     string      `json:"source" yaml:"source" toon:"source"`
	Type       ImportType  `json:"type,omitempty" yaml:"type,omitempty" toon:"type,omitempty"`
	Line       int         `json:"line" yaml:"line" toon:"line"`
	Specifiers []Specifier `json:"specifiers,omitempty" yaml:"specifiers,omitempty" toon:"specifiers,omitempty"`
}

// IsRelative reports whether the specifier is a relative path.
func (i ImportFact) IsRelative() bool {
	return IsRelativeSpecifier(i.Source)
}

// ExportFact is one exported binding.
type ExportFact struct {
	Name string     `json:"name" yaml:"name" toon:"name"`
	Kind ExportKind `json:"kind" yaml:"kind" toon:"kind"`
	Line int        `json:"line" yaml:"line" toon:"line"`
}

// ModuleRecord holds the facts for one module. Path is the canonical
// absolute path and is the module's identity.
type ModuleRecord struct {
	Path     string       `json:"path" yaml:"path" toon:"path"`
	FileType FileType     `json:"fileType" yaml:"fileType" toon:"file_type"`
	Imports  []ImportFact `json:"imports" yaml:"imports" toon:"imports"`
	Exports  []ExportFact `json:"exports" yaml:"exports" toon:"exports"`
}

// IsData reports whether the module is a pure data file.
func (m *ModuleRecord) IsData() bool {
	return m.FileType == FileData
}

// IsRelativeSpecifier reports whether spec starts with "./" or "../".
func IsRelativeSpecifier(spec string) bool {
	return len(spec) >= 2 && (spec[:2] == "./" || (len(spec) >= 3 && spec[:3] == "../"))
}
