// Package manifest reads the package.json of an analyzed project.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/panbanda/modlens/pkg/analyzer/classify"
)

// FileName is the manifest file looked up in the project root.
const FileName = "package.json"

// Manifest is the subset of package.json the classifiers consult.
type Manifest struct {
	Name    string          `json:"name"`
	Version string          `json:"version"`
	Main    string          `json:"main"`
	Module  string          `json:"module"`
	Bin     json.RawMessage `json:"bin"`
	Exports json.RawMessage `json:"exports"`
}

// Read parses root/package.json. A missing file yields an empty manifest.
func Read(root string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(root, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", FileName, err)
	}
	return Parse(data)
}

// Parse decodes package.json content.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", FileName, err)
	}
	return &m, nil
}

// ExportTargets flattens the "exports" field into the file paths it names.
// Conditional and subpath maps are walked to their string leaves; the
// result is sorted and free of duplicates.
func (m *Manifest) ExportTargets() []string {
	return leaves(m.Exports)
}

// BinTargets returns the executables of the "bin" field, which is either
// a single path or a map of command names to paths.
func (m *Manifest) BinTargets() []string {
	return leaves(m.Bin)
}

func leaves(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	seen := make(map[string]bool)
	collect(v, seen)

	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func collect(v any, seen map[string]bool) {
	switch t := v.(type) {
	case string:
		seen[t] = true
	case []any:
		for _, e := range t {
			collect(e, seen)
		}
	case map[string]any:
		for _, e := range t {
			collect(e, seen)
		}
	}
}

// Project converts the manifest into classifier metadata.
func (m *Manifest) Project(root string) classify.Project {
	return classify.Project{
		Root:          root,
		Main:          m.Main,
		Module:        m.Module,
		Bin:           m.BinTargets(),
		ExportTargets: m.ExportTargets(),
	}
}
