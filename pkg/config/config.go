package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"

	"github.com/panbanda/modlens/pkg/glob"
)

// keyDelim separates nested koanf keys. Keys under rules.ignored_exports are
// path globs that routinely contain dots, so "." cannot be used.
const keyDelim = "::"

// Config holds all configuration options for modlens.
type Config struct {
	// Scan settings describe the project layout the fact scanner used.
	Scan ScanConfig `koanf:"scan" toml:"scan"`

	// Analysis toggles and thresholds
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`

	// Project rules feeding the classifiers
	Rules RulesConfig `koanf:"rules" toml:"rules"`

	// Classifier signal weights
	Classifier ClassifierConfig `koanf:"classifier" toml:"classifier"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// ScanConfig describes which files are modules and how they are named.
type ScanConfig struct {
	Extensions       []string `koanf:"extensions" toml:"extensions"`
	DataExtensions   []string `koanf:"data_extensions" toml:"data_extensions"`
	Exclude          []string `koanf:"exclude" toml:"exclude"`
	RespectGitignore bool     `koanf:"respect_gitignore" toml:"respect_gitignore"`
	IgnoreTestFiles  bool     `koanf:"ignore_test_files" toml:"ignore_test_files"`
	TestPatterns     []string `koanf:"test_patterns" toml:"test_patterns"`
}

// AnalysisConfig controls which checks run.
type AnalysisConfig struct {
	CircularDependencies bool           `koanf:"circular_dependencies" toml:"circular_dependencies"`
	UnusedExports        bool           `koanf:"unused_exports" toml:"unused_exports"`
	MissingExports       bool           `koanf:"missing_exports" toml:"missing_exports"`
	Coupling             CouplingConfig `koanf:"coupling" toml:"coupling"`
}

// CouplingConfig configures the high fan-out check.
type CouplingConfig struct {
	Enabled         bool     `koanf:"enabled" toml:"enabled"`
	Threshold       int      `koanf:"threshold" toml:"threshold"`
	ExcludePatterns []string `koanf:"exclude_patterns" toml:"exclude_patterns"`
}

// RulesConfig holds project-specific knowledge used to classify findings.
type RulesConfig struct {
	// IgnoredExports maps a path glob to the export name globs that are
	// intentionally exported ("*" means every export).
	IgnoredExports map[string][]string `koanf:"ignored_exports" toml:"ignored_exports"`
	// IgnoredImports lists specifier globs whose unresolved imports are
	// expected and left out of classified output.
	IgnoredImports []string `koanf:"ignored_imports" toml:"ignored_imports"`
	// PublicAPIPaths lists path globs whose exports form the public API.
	PublicAPIPaths []string `koanf:"public_api_paths" toml:"public_api_paths"`
}

// ClassifierConfig holds signal weights for both classifiers.
type ClassifierConfig struct {
	Export ExportWeights `koanf:"export" toml:"export"`
	Import ImportWeights `koanf:"import" toml:"import"`
}

// ExportWeights are the signed weights of export signals.
type ExportWeights struct {
	IgnoredByConfig  int `koanf:"ignored_by_config" toml:"ignored_by_config"`
	PublicAPIPath    int `koanf:"public_api_path" toml:"public_api_path"`
	EntryPointFile   int `koanf:"entry_point_file" toml:"entry_point_file"`
	IndexFile        int `koanf:"index_file" toml:"index_file"`
	FrameworkPattern int `koanf:"framework_pattern" toml:"framework_pattern"`
	TestUtility      int `koanf:"test_utility" toml:"test_utility"`
	LifecycleMethod  int `koanf:"lifecycle_method" toml:"lifecycle_method"`
	DemoOrExample    int `koanf:"demo_or_example_file" toml:"demo_or_example_file"`
	Deprecated       int `koanf:"deprecated_pattern" toml:"deprecated_pattern"`
	PrivateNaming    int `koanf:"private_naming" toml:"private_naming"`
}

// ImportWeights are the signed weights of import signals.
type ImportWeights struct {
	IntegrationTest     int `koanf:"integration_test_pattern" toml:"integration_test_pattern"`
	BuildTimeConstant   int `koanf:"build_time_constant" toml:"build_time_constant"`
	PlatformSpecific    int `koanf:"platform_specific" toml:"platform_specific"`
	OptionalDependency  int `koanf:"optional_dependency" toml:"optional_dependency"`
	PossibleTypo        int `koanf:"possible_typo" toml:"possible_typo"`
	ImproperBuildImport int `koanf:"improper_build_import" toml:"improper_build_import"`
	MissingExtension    int `koanf:"missing_extension" toml:"missing_extension"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format"` // text, json, markdown, toon
	Color   bool   `koanf:"color" toml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Extensions:     []string{".js", ".jsx", ".ts", ".tsx"},
			DataExtensions: []string{".json", ".yaml", ".yml"},
			Exclude: []string{
				"node_modules",
				"dist",
				"coverage",
				".git",
				"build",
				"out",
			},
			RespectGitignore: true,
			IgnoreTestFiles:  false,
			TestPatterns: []string{
				"*.test.js", "*.test.jsx", "*.test.ts", "*.test.tsx",
				"*.spec.js", "*.spec.jsx", "*.spec.ts", "*.spec.tsx",
				"*/test/*", "*/tests/*", "*/__tests__/*",
				"test-*.js", "test-*.jsx", "test-*.ts", "test-*.tsx",
				"*-test.js", "*-test.jsx", "*-test.ts", "*-test.tsx",
			},
		},
		Analysis: AnalysisConfig{
			CircularDependencies: true,
			UnusedExports:        true,
			MissingExports:       true,
			Coupling: CouplingConfig{
				Enabled:   true,
				Threshold: 10,
			},
		},
		Rules: RulesConfig{
			IgnoredExports: map[string][]string{},
		},
		Classifier: ClassifierConfig{
			Export: DefaultExportWeights(),
			Import: DefaultImportWeights(),
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// DefaultExportWeights returns the stock export signal weights.
func DefaultExportWeights() ExportWeights {
	return ExportWeights{
		IgnoredByConfig:  20,
		PublicAPIPath:    15,
		EntryPointFile:   10,
		IndexFile:        8,
		FrameworkPattern: 7,
		TestUtility:      6,
		LifecycleMethod:  5,
		DemoOrExample:    -8,
		Deprecated:       -10,
		PrivateNaming:    -8,
	}
}

// DefaultImportWeights returns the stock import signal weights.
func DefaultImportWeights() ImportWeights {
	return ImportWeights{
		IntegrationTest:     10,
		BuildTimeConstant:   10,
		PlatformSpecific:    8,
		OptionalDependency:  7,
		PossibleTypo:        -10,
		ImproperBuildImport: -8,
		MissingExtension:    -8,
	}
}

// ConfigNames are the file names searched for, in priority order.
var ConfigNames = []string{
	"modlens.toml",
	"modlens.yaml",
	"modlens.yml",
	"modlens.json",
	".modlens.toml",
	".modlens.yaml",
	".modlens.yml",
	".modlens.json",
	".modlensrc.json",
	"modulerc.json",
	".modulerc.json",
}

// legacyNames are config files written for the modulerc layout, whose keys
// are camelCase and partly named differently.
var legacyNames = map[string]bool{
	"modulerc.json":  true,
	".modulerc.json": true,
}

// legacyKeys maps modulerc key prefixes onto this package's keys. Keys
// not listed, including the whole modulerc output section, are dropped.
var legacyKeys = []struct{ from, to string }{
	{"scan::exclude", "scan::exclude"},
	{"scan::extensions", "scan::extensions"},
	{"scan::dataExtensions", "scan::data_extensions"},
	{"scan::respectGitignore", "scan::respect_gitignore"},
	{"scan::ignoreTestFiles", "scan::ignore_test_files"},
	{"scan::testPatterns", "scan::test_patterns"},
	{"analysis::detectCircularDependencies", "analysis::circular_dependencies"},
	{"analysis::detectUnusedExports", "analysis::unused_exports"},
	{"analysis::detectMissingExports", "analysis::missing_exports"},
	{"analysis::detectHighCoupling::enabled", "analysis::coupling::enabled"},
	{"analysis::detectHighCoupling::threshold", "analysis::coupling::threshold"},
	{"analysis::detectHighCoupling::excludePatterns", "analysis::coupling::exclude_patterns"},
	{"rules::ignoredExports", "rules::ignored_exports"},
	{"rules::ignoredImports", "rules::ignored_imports"},
	{"rules::publicApiPaths", "rules::public_api_paths"},
}

// IsLegacyName reports whether path names a modulerc config file.
func IsLegacyName(path string) bool {
	return legacyNames[filepath.Base(path)]
}

// renameLegacy returns a koanf instance holding the values of k under
// their current key names.
func renameLegacy(k *koanf.Koanf) (*koanf.Koanf, error) {
	out := koanf.New(keyDelim)
	for key, val := range k.All() {
		for _, m := range legacyKeys {
			if key != m.from && !strings.HasPrefix(key, m.from+keyDelim) {
				continue
			}
			if err := out.Set(m.to+strings.TrimPrefix(key, m.from), val); err != nil {
				return nil, err
			}
			break
		}
	}
	return out, nil
}

// SearchDirs are the directories searched for a config file, relative to the
// project root.
var SearchDirs = []string{".", ".modlens"}

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Load loads configuration from a file. Values not present in the file keep
// their defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(keyDelim)
	cfg := DefaultConfig()

	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if IsLegacyName(path) {
		renamed, err := renameLegacy(k)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		k = renamed
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return cfg, nil
}

// LoadResult contains the loaded config and where it came from.
type LoadResult struct {
	Config *Config
	// Source is the file path, or empty when defaults are in use.
	Source string
	// Err is the parse error when a file was found but could not be used.
	Err error
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

type loadOptions struct {
	root   string
	logger *logrus.Logger
}

// WithRoot sets the directory searched for config files.
func WithRoot(root string) LoadOption {
	return func(o *loadOptions) {
		o.root = root
	}
}

// WithLogger sets the logger used for fallback warnings.
func WithLogger(l *logrus.Logger) LoadOption {
	return func(o *loadOptions) {
		o.logger = l
	}
}

// Find returns the first existing config file under root, or "".
func Find(root string) string {
	for _, dir := range SearchDirs {
		for _, name := range ConfigNames {
			path := filepath.Join(root, dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// LoadConfig searches the standard locations. A config file that fails to
// parse never aborts the run: defaults are used and a warning is logged.
func LoadConfig(opts ...LoadOption) LoadResult {
	o := loadOptions{root: "."}
	for _, opt := range opts {
		opt(&o)
	}

	path := Find(o.root)
	if path == "" {
		return LoadResult{Config: DefaultConfig()}
	}

	cfg, err := Load(path)
	if err != nil {
		if o.logger != nil {
			o.logger.WithError(err).WithField("path", path).Warn("config file unusable, using defaults")
		}
		return LoadResult{Config: DefaultConfig(), Err: err}
	}
	return LoadResult{Config: cfg, Source: path}
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	return LoadConfig().Config
}

// Validate checks values that cannot be expressed by the type system.
func (c *Config) Validate() error {
	var problems []string

	if c.Analysis.Coupling.Threshold < 0 {
		problems = append(problems, "analysis.coupling.threshold must be >= 0")
	}
	for _, ext := range append(append([]string(nil), c.Scan.Extensions...), c.Scan.DataExtensions...) {
		if !strings.HasPrefix(ext, ".") {
			problems = append(problems, fmt.Sprintf("extension %q must start with a dot", ext))
		}
	}
	switch c.Output.Format {
	case "", "text", "json", "markdown", "toon":
	default:
		problems = append(problems, fmt.Sprintf("output.format %q is not one of text, json, markdown, toon", c.Output.Format))
	}
	for pattern, names := range c.Rules.IgnoredExports {
		if _, err := glob.Compile(pattern); err != nil {
			problems = append(problems, fmt.Sprintf("rules.ignored_exports key %q: %v", pattern, err))
		}
		if len(names) == 0 {
			problems = append(problems, fmt.Sprintf("rules.ignored_exports %q lists no exports", pattern))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// IsTestFile reports whether path matches one of the scan test patterns.
func (c *Config) IsTestFile(path string) bool {
	slashed := filepath.ToSlash(path)
	base := filepath.Base(path)
	for _, pattern := range c.Scan.TestPatterns {
		if glob.Match(pattern, base) || glob.Match(pattern, slashed) {
			return true
		}
	}
	return false
}

// ShouldExclude checks if a path should be left out of analysis.
func (c *Config) ShouldExclude(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, dir := range c.Scan.Exclude {
		if strings.Contains(slashed, "/"+dir+"/") || strings.HasPrefix(slashed, dir+"/") {
			return true
		}
	}
	if c.Scan.IgnoreTestFiles && c.IsTestFile(path) {
		return true
	}
	return false
}
