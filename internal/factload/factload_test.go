package factload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/modlens/pkg/facts"
)

const jsonDoc = `{
  "root": "/proj",
  "modules": {
    "src/a.js": {
      "fileType": "code",
      "imports": [
        {"source": "./b", "type": "es6", "line": 1,
         "specifiers": [{"kind": "named", "importedName": "foo", "localName": "foo"}]}
      ],
      "exports": [{"name": "run", "kind": "named", "line": 3}]
    },
    "src/b.ts": {
      "exports": [{"name": "foo", "kind": "named", "line": 1}]
    },
    "/proj/config.json": {},
    "src/bad.js": {
      "imports": [{"line": 4}]
    }
  }
}`

func TestDecode_JSON(t *testing.T) {
	doc, err := Decode(context.Background(), []byte(jsonDoc), FormatJSON, WithWorkers(2))
	require.NoError(t, err)

	assert.Equal(t, "/proj", doc.Root)
	require.Len(t, doc.Records, 3)
	assert.Equal(t, "/proj/config.json", doc.Records[0].Path)
	assert.Equal(t, facts.FileData, doc.Records[0].FileType, "inferred from extension")
	assert.Equal(t, "/proj/src/a.js", doc.Records[1].Path)
	assert.Equal(t, facts.ImportES6, doc.Records[1].Imports[0].Type)
	assert.Equal(t, "foo", doc.Records[1].Imports[0].Specifiers[0].ImportedName)
	assert.Equal(t, facts.FileCode, doc.Records[2].FileType)

	require.Len(t, doc.Errors, 1)
	assert.Equal(t, "/proj/src/bad.js", doc.Errors[0].Path)
	assert.True(t, errors.Is(doc.Errors[0], facts.ErrMalformedRecord))
}

func TestDecode_YAML(t *testing.T) {
	data := []byte(`
root: /proj
modules:
  src/a.js:
    imports:
      - source: ./b
        line: 2
        specifiers:
          - kind: default
            localName: b
  src/b.js:
    exports:
      - name: default
        kind: default
        line: 1
  styles/site.css: {}
`)
	doc, err := Decode(context.Background(), data, FormatYAML)
	require.NoError(t, err)
	require.Len(t, doc.Records, 3)
	assert.Empty(t, doc.Errors)
	assert.Equal(t, facts.SpecifierDefault, doc.Records[0].Imports[0].Specifiers[0].Kind)
	assert.Equal(t, facts.FileCSS, doc.Records[2].FileType)
}

func TestDecode_InvalidDocument(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"no modules", `{"root": "/p"}`},
		{"modules not an object", `{"modules": []}`},
		{"record not an object", `{"modules": {"/p/a.js": 3}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(context.Background(), []byte(tt.data), FormatJSON)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDocument))
		})
	}
}

func TestDecode_MissingRoot(t *testing.T) {
	_, err := Decode(context.Background(), []byte(`{"modules": {"src/a.js": {}}}`), FormatJSON)
	assert.ErrorIs(t, err, ErrMissingRoot)

	doc, err := Decode(context.Background(), []byte(`{"modules": {"/abs/a.js": {}}}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "/abs/a.js", doc.Records[0].Path)
}

func TestDecode_RootOverride(t *testing.T) {
	doc, err := Decode(context.Background(), []byte(jsonDoc), FormatJSON, WithRoot("/other"))
	require.NoError(t, err)
	assert.Equal(t, "/other", doc.Root)
	assert.Equal(t, "/other/src/a.js", doc.Records[1].Path)
}

func TestDecode_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Decode(ctx, []byte(jsonDoc), FormatJSON)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad_UsesFileDirectoryAsRoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "facts.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"modules": {"a.js": {}}}`), 0o644))

	doc, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.js"), doc.Records[0].Path)

	set, errs := doc.Set()
	assert.Empty(t, errs)
	assert.Equal(t, 1, set.Len())
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("facts.yml"))
	assert.Equal(t, FormatYAML, DetectFormat("facts.YAML"))
	assert.Equal(t, FormatJSON, DetectFormat("facts.json"))
	assert.Equal(t, FormatJSON, DetectFormat("facts"))
}
