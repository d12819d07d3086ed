// Package factload decodes fact documents produced by an external scanner
// into validated module records. Each record is schema-checked on its own,
// so one malformed record never fails the whole document.
package factload

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
	"gopkg.in/yaml.v3"

	"github.com/panbanda/modlens/internal/logging"
	"github.com/panbanda/modlens/internal/progress"
	"github.com/panbanda/modlens/pkg/analyzer/resolver"
	"github.com/panbanda/modlens/pkg/facts"
)

//go:embed facts.schema.json
var schemaJSON []byte

const schemaURL = "https://github.com/panbanda/modlens/schema/facts.schema.json"

// Format is the encoding of a fact document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	// ErrInvalidDocument is returned when the document as a whole does not
	// match the schema.
	ErrInvalidDocument = errors.New("invalid fact document")
	// ErrMissingRoot is returned when relative module keys cannot be
	// anchored because neither the document nor the caller names a root.
	ErrMissingRoot = errors.New("fact document has relative module keys but no root")
)

// Document is a decoded fact document.
type Document struct {
	Root    string
	Records []facts.ModuleRecord
	// Errors are records rejected during decoding.
	Errors []*facts.RecordError
}

// Set validates the decoded records. The returned errors include records
// rejected while decoding.
func (d *Document) Set() (*facts.Set, []*facts.RecordError) {
	set, errs := facts.NewSet(d.Root, d.Records)
	all := append(append([]*facts.RecordError(nil), d.Errors...), errs...)
	return set, all
}

// Option configures decoding.
type Option func(*options)

type options struct {
	root         string
	fallbackRoot string
	workers      int
	logger       *logrus.Logger
	tracker      *progress.Tracker
	dataExts     []string
	cssExts      []string
}

// WithRoot overrides the document root.
func WithRoot(root string) Option {
	return func(o *options) {
		o.root = root
	}
}

// WithWorkers bounds decoding concurrency.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithProgress ticks t once per decoded record.
func WithProgress(t *progress.Tracker) Option {
	return func(o *options) {
		o.tracker = t
	}
}

// WithDataExtensions sets the extensions inferred as data when a record
// has no fileType.
func WithDataExtensions(exts []string) Option {
	return func(o *options) {
		if len(exts) > 0 {
			o.dataExts = exts
		}
	}
}

type schemas struct {
	document *jsonschema.Schema
	module   *jsonschema.Schema
}

var compileSchemas = sync.OnceValues(func() (*schemas, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse embedded schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	document, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	module, err := c.Compile(schemaURL + "#/$defs/module")
	if err != nil {
		return nil, fmt.Errorf("compile module schema: %w", err)
	}
	return &schemas{document: document, module: module}, nil
})

// DetectFormat picks a format from the file extension, defaulting to JSON.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and decodes the fact document at path. When the document has
// no root, the directory holding the file is used.
func Load(ctx context.Context, path string, opts ...Option) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fact document: %w", err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		opts = append([]Option{func(o *options) { o.fallbackRoot = filepath.Dir(abs) }}, opts...)
	}
	return Decode(ctx, data, DetectFormat(path), opts...)
}

type rawDocument struct {
	Root    string                     `json:"root"`
	Modules map[string]json.RawMessage `json:"modules"`
}

// Decode parses data. Structural problems with the document itself are
// returned as errors; problems confined to one record are collected in
// Document.Errors.
func Decode(ctx context.Context, data []byte, format Format, opts ...Option) (*Document, error) {
	o := options{
		logger:   logging.Discard(),
		dataExts: resolver.DefaultDataExtensions,
		cssExts:  []string{".css", ".scss", ".sass", ".less"},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers <= 0 {
		o.workers = runtime.NumCPU()
	}

	sc, err := compileSchemas()
	if err != nil {
		return nil, err
	}

	if format == FormatYAML {
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, err
		}
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := sc.document.Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	root := firstNonEmpty(o.root, raw.Root, o.fallbackRoot)
	if root != "" && !filepath.IsAbs(root) {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	keys := make([]string, 0, len(raw.Modules))
	for k := range raw.Modules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if root == "" {
		for _, k := range keys {
			if !filepath.IsAbs(k) {
				return nil, ErrMissingRoot
			}
		}
	}

	type slot struct {
		rec *facts.ModuleRecord
		err *facts.RecordError
	}
	slots := make([]slot, len(keys))

	p := pool.New().WithContext(ctx).WithMaxGoroutines(o.workers)
	for i, key := range keys {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := modulePath(root, key)
			rec, err := decodeRecord(sc.module, path, raw.Modules[key], &o)
			if err != nil {
				slots[i].err = &facts.RecordError{Path: path, Err: err}
			} else {
				slots[i].rec = rec
			}
			o.tracker.Tick()
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	doc := &Document{Root: root, Records: make([]facts.ModuleRecord, 0, len(keys))}
	for _, s := range slots {
		if s.err != nil {
			doc.Errors = append(doc.Errors, s.err)
			o.logger.WithError(s.err.Err).WithField("module", s.err.Path).Warn("fact record rejected")
			continue
		}
		doc.Records = append(doc.Records, *s.rec)
	}
	o.logger.WithFields(logrus.Fields{
		"records":  len(doc.Records),
		"rejected": len(doc.Errors),
		"root":     root,
	}).Debug("fact document decoded")
	return doc, nil
}

func decodeRecord(schema *jsonschema.Schema, path string, msg json.RawMessage, o *options) (*facts.ModuleRecord, error) {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(msg))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", facts.ErrMalformedRecord, err)
	}
	if err := schema.Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: %v", facts.ErrMalformedRecord, err)
	}

	var rec facts.ModuleRecord
	if err := json.Unmarshal(msg, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", facts.ErrMalformedRecord, err)
	}
	rec.Path = path
	if rec.FileType == "" {
		rec.FileType = o.inferFileType(path)
	}
	return &rec, nil
}

// inferFileType maps an extension onto a file type. Unknown extensions are
// treated as code.
func (o *options) inferFileType(path string) facts.FileType {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case contains(o.dataExts, ext):
		return facts.FileData
	case contains(o.cssExts, ext):
		return facts.FileCSS
	default:
		return facts.FileCode
	}
}

func modulePath(root, key string) string {
	key = filepath.FromSlash(key)
	if filepath.IsAbs(key) || root == "" {
		return filepath.Clean(key)
	}
	return filepath.Join(root, key)
}

func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
