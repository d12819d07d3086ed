package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/modlens/internal/service/analysis"
	"github.com/panbanda/modlens/pkg/config"
)

const testFacts = `{
  "modules": {
    "src/index.js": {
      "imports": [{"source": "./a", "type": "es6", "line": 1, "specifiers": [{"kind": "named", "importedName": "a", "localName": "a"}]}]
    },
    "src/a.js": {
      "imports": [{"source": "./b", "type": "es6", "line": 1}, {"source": "./missing", "type": "es6", "line": 2}],
      "exports": [{"name": "a", "kind": "named", "line": 3}]
    },
    "src/b.js": {
      "imports": [{"source": "./a", "type": "es6", "line": 1}],
      "exports": [{"name": "unused", "kind": "named", "line": 4}]
    }
  }
}`

func writeTestFacts(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "facts.json")
	if err := os.WriteFile(path, []byte(testFacts), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	app.ErrWriter = &buf
	err := app.Run(append([]string{"modlens"}, args...))
	return buf.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	facts := writeTestFacts(t)
	out := filepath.Join(t.TempDir(), "report.json")

	if _, err := runApp(t, "-f", "json", "-o", out, "analyze", "--no-progress", facts); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	var decoded struct {
		RunID  string `json:"run_id"`
		Report struct {
			Summary struct {
				TotalModules         int `json:"total_modules"`
				CircularDependencies int `json:"circular_dependencies"`
				UnresolvedImports    int `json:"unresolved_imports"`
			} `json:"summary"`
			Digest string `json:"digest"`
		} `json:"report"`
	}
	if err := json.Unmarshal([]byte(readFile(t, out)), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.RunID == "" {
		t.Error("run id should be set")
	}
	if decoded.Report.Summary.TotalModules != 3 {
		t.Errorf("total modules = %d, want 3", decoded.Report.Summary.TotalModules)
	}
	if decoded.Report.Summary.CircularDependencies != 1 {
		t.Errorf("cycles = %d, want 1", decoded.Report.Summary.CircularDependencies)
	}
	if decoded.Report.Summary.UnresolvedImports != 1 {
		t.Errorf("unresolved = %d, want 1", decoded.Report.Summary.UnresolvedImports)
	}
	if decoded.Report.Digest == "" {
		t.Error("digest should be set")
	}
}

func TestViewCommands_Text(t *testing.T) {
	facts := writeTestFacts(t)

	tests := []struct {
		command string
		want    string
	}{
		{"cycles", "src/a.js -> src/b.js -> src/a.js"},
		{"exports", "unused"},
		{"imports", "./missing"},
		{"coupling", "High Coupling"},
		{"graph", "src/index.js"},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out.txt")
			if _, err := runApp(t, "-o", out, tt.command, "--no-progress", facts); err != nil {
				t.Fatalf("%s failed: %v", tt.command, err)
			}
			if got := readFile(t, out); !strings.Contains(got, tt.want) {
				t.Errorf("%s output missing %q:\n%s", tt.command, tt.want, got)
			}
		})
	}
}

func TestCouplingCommand_ThresholdOverride(t *testing.T) {
	facts := writeTestFacts(t)
	out := filepath.Join(t.TempDir(), "coupling.json")

	if _, err := runApp(t, "-f", "json", "-o", out, "coupling", "--threshold", "0", facts); err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Modules []struct {
			Module    string `json:"module"`
			Threshold int    `json:"threshold"`
		} `json:"high_coupling_modules"`
	}
	if err := json.Unmarshal([]byte(readFile(t, out)), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded.Modules) != 3 {
		t.Fatalf("flagged %d modules, want 3", len(decoded.Modules))
	}
	if decoded.Modules[0].Threshold != 0 {
		t.Errorf("threshold = %d, want 0", decoded.Modules[0].Threshold)
	}
}

func TestFailOnProblems(t *testing.T) {
	facts := writeTestFacts(t)
	out := filepath.Join(t.TempDir(), "out.txt")

	_, err := runApp(t, "-o", out, "cycles", "--no-progress", "--fail-on-problems", facts)
	if !errors.Is(err, errProblemsFound) {
		t.Errorf("err = %v, want errProblemsFound", err)
	}
}

func TestMissingFactsArgument(t *testing.T) {
	_, err := runApp(t, "analyze")
	if !errors.Is(err, analysis.ErrNoFacts) {
		t.Errorf("err = %v, want ErrNoFacts", err)
	}
}

func TestGraphCommand_Mermaid(t *testing.T) {
	facts := writeTestFacts(t)
	out := filepath.Join(t.TempDir(), "graph.md")

	if _, err := runApp(t, "-f", "markdown", "-o", out, "graph", "--mermaid", "--direction", "td", facts); err != nil {
		t.Fatal(err)
	}
	got := readFile(t, out)
	if !strings.HasPrefix(got, "```mermaid\ngraph TD\n") {
		t.Errorf("unexpected diagram:\n%s", got)
	}
	if !strings.Contains(got, "==>") {
		t.Error("cycle edges should be highlighted")
	}

	if _, err := runApp(t, "graph", "--mermaid", "--direction", "up", facts); err == nil {
		t.Error("invalid direction should fail")
	}
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.toml")
	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(good, []byte("[analysis.coupling]\nthreshold = 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("[analysis.coupling]\nthreshold = -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runApp(t, "-c", good, "config", "validate")
	if err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if !strings.Contains(out, "Configuration valid: "+good) {
		t.Errorf("unexpected output: %s", out)
	}

	out, err = runApp(t, "-c", bad, "config", "validate")
	if err == nil {
		t.Fatal("invalid config accepted")
	}
	if !strings.Contains(out, "threshold") {
		t.Errorf("output should name the bad value: %s", out)
	}

	out, err = runApp(t, "--root", t.TempDir(), "config", "validate")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No config file found") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestConfigShow(t *testing.T) {
	out, err := runApp(t, "--root", t.TempDir(), "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "# Default configuration") {
		t.Errorf("unexpected header: %s", out)
	}
	if !strings.Contains(out, "threshold = 10") {
		t.Errorf("default threshold missing:\n%s", out)
	}
}

func TestMCPManifest(t *testing.T) {
	out, err := runApp(t, "mcp", "manifest")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"io.github.panbanda/modlens"`) {
		t.Errorf("unexpected manifest: %s", out)
	}
}

func TestAppLoggerWithoutMetadata(t *testing.T) {
	c := cli.NewContext(&cli.App{}, nil, nil)
	if appLogger(c) == nil {
		t.Error("appLogger should never return nil")
	}
}

func TestReloadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modlens.toml")

	if err := os.WriteFile(path, []byte("[analysis.coupling]\nthreshold = 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := reloadConfig(path)
	if err != nil {
		t.Fatalf("reloadConfig() error = %v", err)
	}
	if cfg.Analysis.Coupling.Threshold != 4 {
		t.Errorf("threshold = %d, want 4", cfg.Analysis.Coupling.Threshold)
	}

	if err := os.WriteFile(path, []byte("[analysis.coupling]\nthreshold = -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := reloadConfig(path); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("reloadConfig() error = %v, want ErrInvalidConfig", err)
	}
}
