package summary

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed prompts/*.prompt
var promptFiles embed.FS

// promptKey names one of the embedded prompt templates.
type promptKey string

const (
	commitPrompt      promptKey = "commit"
	pullRequestPrompt promptKey = "pull_request"
)

// promptSet holds the parsed prompt templates for commits and pull
// requests.
type promptSet struct {
	templates map[promptKey]*template.Template
}

func loadPrompts() (*promptSet, error) {
	ps := &promptSet{templates: make(map[promptKey]*template.Template)}

	for _, key := range []promptKey{commitPrompt, pullRequestPrompt} {
		name := fmt.Sprintf("prompts/%s.prompt", key)
		content, err := promptFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded prompt %s: %w", name, err)
		}
		tmpl, err := template.New(string(key)).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("failed to parse prompt %s: %w", name, err)
		}
		ps.templates[key] = tmpl
	}

	return ps, nil
}

func (ps *promptSet) render(key promptKey, data any) (string, error) {
	tmpl, ok := ps.templates[key]
	if !ok {
		return "", fmt.Errorf("no prompt template for key %q", key)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %q: %w", key, err)
	}
	return buf.String(), nil
}
