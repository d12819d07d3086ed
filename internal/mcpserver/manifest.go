package mcpserver

import "encoding/json"

const (
	manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"
	serverName     = "io.github.panbanda/modlens"
	repositoryURL  = "https://github.com/panbanda/modlens"
	imageName      = "ghcr.io/panbanda/modlens"
)

// Manifest is the registry entry (server.json) describing how to run the
// modlens MCP server.
type Manifest struct {
	Schema      string      `json:"$schema"`
	Name        string      `json:"name"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description"`
	Version     string      `json:"version"`
	Repository  *Repository `json:"repository,omitempty"`
	Packages    []Package   `json:"packages,omitempty"`
}

// Repository is the source repository of the server.
type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package is one installable distribution of the server.
type Package struct {
	RegistryType         string        `json:"registryType"`
	Identifier           string        `json:"identifier"`
	Version              string        `json:"version,omitempty"`
	PackageArguments     []Argument    `json:"packageArguments,omitempty"`
	EnvironmentVariables []EnvVariable `json:"environmentVariables,omitempty"`
	Transport            Transport     `json:"transport"`
}

// Argument is a command-line argument passed to the package.
type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// EnvVariable is an environment variable the server reads.
type EnvVariable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsRequired  bool   `json:"isRequired"`
	Default     string `json:"default,omitempty"`
}

// Transport is how a client talks to the server.
type Transport struct {
	Type string `json:"type"`
}

// serverEnv lists the variables the CLI maps onto global flags.
var serverEnv = []EnvVariable{
	{Name: "MODLENS_CONFIG", Description: "Config file applied to every tool call without an explicit config"},
	{Name: "MODLENS_LOG_LEVEL", Description: "Log level for stderr diagnostics", Default: "warn"},
}

// GenerateManifest renders server.json for version. An empty version is
// published as 0.0.0.
func GenerateManifest(version string) ([]byte, error) {
	if version == "" {
		version = "0.0.0"
	}
	m := Manifest{
		Schema:      manifestSchema,
		Name:        serverName,
		Title:       "modlens",
		Description: "Module dependency graph analysis for JavaScript and TypeScript: cycles, unused exports, broken imports and coupling",
		Version:     version,
		Repository:  &Repository{URL: repositoryURL, Source: "github"},
		Packages: []Package{{
			RegistryType:         "oci",
			Identifier:           imageName + ":" + version,
			PackageArguments:     []Argument{{Type: "positional", Value: "mcp"}},
			EnvironmentVariables: serverEnv,
			Transport:            Transport{Type: "stdio"},
		}},
	}
	return json.MarshalIndent(m, "", "  ")
}
