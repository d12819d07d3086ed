// Package analysis loads a fact document and runs the engine over it. It
// owns everything outside the deterministic core: config, manifest lookup,
// record filtering, progress and run metadata.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/panbanda/modlens/internal/factload"
	"github.com/panbanda/modlens/internal/logging"
	"github.com/panbanda/modlens/internal/manifest"
	"github.com/panbanda/modlens/internal/progress"
	"github.com/panbanda/modlens/internal/scanner"
	"github.com/panbanda/modlens/internal/vcs"
	"github.com/panbanda/modlens/pkg/config"
	"github.com/panbanda/modlens/pkg/engine"
)

// ErrNoFacts is returned when a request names no fact document.
var ErrNoFacts = errors.New("no fact document given")

// Service orchestrates module analysis runs.
type Service struct {
	config   *config.Config
	opener   vcs.Opener
	logger   *logrus.Logger
	workers  int
	progress bool
	now      func() time.Time
	newID    func() string
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithOpener sets the VCS opener (for testing).
func WithOpener(opener vcs.Opener) Option {
	return func(s *Service) {
		s.opener = opener
	}
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWorkers bounds fact decoding concurrency.
func WithWorkers(n int) Option {
	return func(s *Service) {
		s.workers = n
	}
}

// WithProgress shows a progress bar while records decode.
func WithProgress(enabled bool) Option {
	return func(s *Service) {
		s.progress = enabled
	}
}

// WithClock overrides the run timestamp source (for testing).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithRunID overrides run id generation (for testing).
func WithRunID(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.DefaultConfig(),
		opener: vcs.DefaultOpener(),
		logger: logging.Discard(),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the configuration in effect.
func (s *Service) Config() *config.Config {
	return s.config
}

// Request names the inputs of one run.
type Request struct {
	// FactsPath is the JSON or YAML fact document.
	FactsPath string
	// Root overrides the root recorded in the document.
	Root string
}

// Result is an engine report wrapped with run metadata. Only the report is
// deterministic; the metadata changes on every run.
type Result struct {
	RunID       string         `json:"run_id" toon:"run_id"`
	GeneratedAt string         `json:"generated_at" toon:"generated_at"`
	Facts       string         `json:"facts" toon:"facts"`
	Root        string         `json:"root" toon:"root"`
	Head        *vcs.Head      `json:"head,omitempty" toon:"head,omitempty"`
	Excluded    int            `json:"excluded_modules" toon:"excluded_modules"`
	Report      *engine.Report `json:"report" toon:"report"`
}

// Analyze loads req.FactsPath and runs the engine over it.
func (s *Service) Analyze(ctx context.Context, req Request) (*Result, error) {
	if req.FactsPath == "" {
		return nil, ErrNoFacts
	}

	var tracker *progress.Tracker
	if s.progress {
		tracker = progress.NewSpinner("Decoding facts")
	}
	opts := []factload.Option{
		factload.WithLogger(s.logger),
		factload.WithWorkers(s.workers),
		factload.WithDataExtensions(s.config.Scan.DataExtensions),
		factload.WithProgress(tracker),
	}
	if req.Root != "" {
		opts = append(opts, factload.WithRoot(req.Root))
	}
	doc, err := factload.Load(ctx, req.FactsPath, opts...)
	if err != nil {
		tracker.FinishError(err)
		return nil, err
	}
	tracker.Finish()

	return s.Run(ctx, doc, req.FactsPath)
}

// Run analyzes an already decoded document.
func (s *Service) Run(ctx context.Context, doc *factload.Document, source string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sc := scanner.NewScanner(s.config, doc.Root)
	records, excluded := sc.FilterRecords(doc.Records)
	if excluded > 0 {
		s.logger.WithField("excluded", excluded).Debug("records excluded by scan settings")
	}

	kept := *doc
	kept.Records = records
	set, loadErrs := kept.Set()

	m, err := manifest.Read(doc.Root)
	if err != nil {
		s.logger.WithError(err).Warn("package manifest ignored")
		m = &manifest.Manifest{}
	}

	eng := engine.New(
		engine.WithConfig(s.config, m.Project(doc.Root)),
		engine.WithLogger(s.logger),
	)
	rep := eng.Run(set, loadErrs)

	res := &Result{
		RunID:       s.newID(),
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
		Facts:       source,
		Root:        doc.Root,
		Head:        s.head(doc.Root),
		Excluded:    excluded,
		Report:      rep,
	}
	if abs, err := filepath.Abs(source); err == nil && source != "" {
		res.Facts = abs
	}
	return res, nil
}

func (s *Service) head(root string) *vcs.Head {
	if s.opener == nil || root == "" {
		return nil
	}
	repo, err := s.opener.PlainOpenWithDetect(root)
	if err != nil {
		return nil
	}
	h, err := repo.Head()
	if err != nil {
		s.logger.WithError(err).Debug("repository head unavailable")
		return nil
	}
	return &h
}

// String describes the result in one line.
func (r *Result) String() string {
	return fmt.Sprintf("run %s: %d modules, digest %s", r.RunID, r.Report.Summary.TotalModules, r.Report.Digest)
}
