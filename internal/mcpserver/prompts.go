package mcpserver

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFiles embed.FS

// promptSpec is one prompt file: YAML front matter followed by a body in
// which {{name}} is replaced by the argument of that name.
type promptSpec struct {
	Name        string
	Description string          `yaml:"description"`
	Arguments   []promptArgSpec `yaml:"arguments"`
	Body        string          `yaml:"-"`
}

type promptArgSpec struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
	Default     string `yaml:"default"`
}

var frontmatterDelim = []byte("---\n")

// parsePrompt splits front matter from the body. Content without front
// matter is a prompt with no description and no arguments.
func parsePrompt(name string, content []byte) (*promptSpec, error) {
	p := &promptSpec{Name: name}
	if !bytes.HasPrefix(content, frontmatterDelim) {
		p.Body = string(content)
		return p, nil
	}
	rest := content[len(frontmatterDelim):]
	end := bytes.Index(rest, []byte("\n"+string(frontmatterDelim)))
	if end == -1 {
		return nil, fmt.Errorf("prompt %s: unterminated front matter", name)
	}
	if err := yaml.Unmarshal(rest[:end], p); err != nil {
		return nil, fmt.Errorf("prompt %s: %w", name, err)
	}
	p.Body = strings.TrimPrefix(string(rest[end+1+len(frontmatterDelim):]), "\n")
	return p, nil
}

// loadPrompts reads every embedded prompt, sorted by name.
func loadPrompts() ([]*promptSpec, error) {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return nil, err
	}
	var prompts []*promptSpec
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".md" {
			continue
		}
		content, err := promptFiles.ReadFile(path.Join("prompts", entry.Name()))
		if err != nil {
			return nil, err
		}
		p, err := parsePrompt(strings.TrimSuffix(entry.Name(), ".md"), content)
		if err != nil {
			return nil, err
		}
		prompts = append(prompts, p)
	}
	sort.Slice(prompts, func(i, j int) bool { return prompts[i].Name < prompts[j].Name })
	return prompts, nil
}

func (s *Server) registerPrompts() {
	prompts, err := loadPrompts()
	if err != nil {
		s.logger.WithError(err).Warn("prompts not registered")
		return
	}
	for _, p := range prompts {
		s.server.AddPrompt(p.prompt(), p.handler())
		s.logger.WithField("prompt", p.Name).Debug("prompt registered")
	}
}

func (p *promptSpec) prompt() *mcp.Prompt {
	out := &mcp.Prompt{Name: p.Name, Description: p.Description}
	for _, a := range p.Arguments {
		out.Arguments = append(out.Arguments, &mcp.PromptArgument{
			Name:        a.Name,
			Description: a.Description,
			Required:    a.Required,
		})
	}
	return out
}

// render substitutes arguments into the body. A missing required argument
// is an error; a missing optional one takes its default.
func (p *promptSpec) render(args map[string]string) (string, error) {
	pairs := make([]string, 0, 2*len(p.Arguments))
	for _, a := range p.Arguments {
		v, ok := args[a.Name]
		if !ok || v == "" {
			if a.Required {
				return "", fmt.Errorf("prompt %s: argument %q is required", p.Name, a.Name)
			}
			v = a.Default
		}
		pairs = append(pairs, "{{"+a.Name+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(p.Body), nil
}

func (p *promptSpec) handler() mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		var args map[string]string
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		text, err := p.render(args)
		if err != nil {
			return nil, err
		}
		return &mcp.GetPromptResult{
			Description: p.Description,
			Messages: []*mcp.PromptMessage{
				{Role: "user", Content: &mcp.TextContent{Text: text}},
			},
		}, nil
	}
}
