// Package scanner decides which fact records take part in an analysis.
package scanner

import (
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/panbanda/modlens/internal/vcs"
	"github.com/panbanda/modlens/pkg/config"
	"github.com/panbanda/modlens/pkg/facts"
)

// Scanner filters module records by the scan settings of a config.
type Scanner struct {
	config   *config.Config
	root     string
	gitRoot  string
	matchers []gitignore.Matcher
}

// NewScanner creates a scanner for the project at root.
func NewScanner(cfg *config.Config, root string) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Scanner{config: cfg, root: root}
	s.loadExcludePatterns()
	return s
}

// loadExcludePatterns reads every .gitignore in the enclosing repository
// when the config asks for it.
func (s *Scanner) loadExcludePatterns() {
	if !s.config.Scan.RespectGitignore || s.root == "" {
		return
	}
	gitRoot, err := vcs.FindRoot(s.root)
	if err != nil {
		return
	}
	patterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil)
	if err != nil || len(patterns) == 0 {
		return
	}
	s.gitRoot = gitRoot
	s.matchers = append(s.matchers, gitignore.NewMatcher(patterns))
}

// Excluded reports whether the module at path is left out of analysis.
func (s *Scanner) Excluded(path string) bool {
	if s.config.ShouldExclude(s.relative(s.root, path)) {
		return true
	}
	return s.ignored(path)
}

func (s *Scanner) ignored(path string) bool {
	if len(s.matchers) == 0 {
		return false
	}
	rel := s.relative(s.gitRoot, path)
	if strings.HasPrefix(rel, "..") {
		return false
	}
	parts := strings.Split(rel, "/")
	for _, m := range s.matchers {
		if m.Match(parts, false) {
			return true
		}
	}
	return false
}

func (s *Scanner) relative(base, path string) string {
	if base == "" || !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// FilterRecords returns the records that are not excluded and the number
// that were dropped. Order is preserved.
func (s *Scanner) FilterRecords(records []facts.ModuleRecord) ([]facts.ModuleRecord, int) {
	kept := make([]facts.ModuleRecord, 0, len(records))
	for _, rec := range records {
		if s.Excluded(rec.Path) {
			continue
		}
		kept = append(kept, rec)
	}
	return kept, len(records) - len(kept)
}
