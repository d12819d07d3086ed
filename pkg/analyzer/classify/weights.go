package classify

// Export signal tags.
const (
	TagIgnoredByConfig = "ignored-by-config"
	TagPublicAPIPath   = "public-api-path"
	TagEntryPoint      = "entry-point-file"
	TagIndexFile       = "index-file"
	TagFrameworkPrefix = "framework-pattern-"
	TagTestUtility     = "test-utility"
	TagLifecycleMethod = "lifecycle-method"
	TagDemoOrExample   = "demo-or-example-file"
	TagDeprecated      = "deprecated-pattern"
	TagPrivateNaming   = "private-naming"
)

// Import signal tags.
const (
	TagIntegrationTest     = "integration-test-pattern"
	TagBuildTimeConstant   = "build-time-constant"
	TagPlatformSpecific    = "platform-specific"
	TagOptionalDependency  = "optional-dependency"
	TagPossibleTypo        = "possible-typo"
	TagImproperBuildImport = "improper-build-import"
	TagMissingExtension    = "missing-extension"
)

// ExportWeights are the signed weights of export signals. They are
// tunable heuristics rather than principled constants.
type ExportWeights struct {
	IgnoredByConfig  int
	PublicAPIPath    int
	EntryPointFile   int
	IndexFile        int
	FrameworkPattern int
	TestUtility      int
	LifecycleMethod  int
	DemoOrExample    int
	Deprecated       int
	PrivateNaming    int
}

// DefaultExportWeights returns the stock export weights.
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

// ImportWeights are the signed weights of import signals.
type ImportWeights struct {
	IntegrationTest     int
	BuildTimeConstant   int
	PlatformSpecific    int
	OptionalDependency  int
	PossibleTypo        int
	ImproperBuildImport int
	MissingExtension    int
}

// DefaultImportWeights returns the stock import weights.
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
