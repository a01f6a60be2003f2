// Package prompt renders the text sent to the reading generator. Built-in
// templates can be overridden by files in a directory, which is watched and
// reloaded on change.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"github.com/starford/daivaya/internal/chart"
	"github.com/starford/daivaya/internal/porondam"
)

// Template names.
const (
	Reading  = "reading.tmpl"
	Porondam = "porondam.tmpl"
)

//go:embed templates/*.tmpl
var builtin embed.FS

// ReadingData feeds the reading template.
type ReadingData struct {
	D1      chart.Snapshot
	D9      chart.Snapshot
	Details *chart.Summary
}

// PorondamData feeds the porondam template.
type PorondamData struct {
	Bride  chart.Summary
	Groom  chart.Summary
	Report porondam.Report
}

// Library holds the current template set.
type Library struct {
	dir string

	mu  sync.RWMutex
	set *template.Template
}

// New loads the built-in templates and any overrides found in dir. An empty
// dir means built-ins only.
func New(dir string) (*Library, error) {
	l := &Library{dir: dir}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Dir returns the override directory.
func (l *Library) Dir() string { return l.dir }

// Reload re-reads every template. On failure the previous set stays active.
func (l *Library) Reload() error {
	set, err := template.New("prompts").Option("missingkey=error").ParseFS(builtin, "templates/*.tmpl")
	if err != nil {
		return fmt.Errorf("prompt: parse built-in templates: %w", err)
	}

	if l.dir != "" {
		matches, err := filepath.Glob(filepath.Join(l.dir, "*.tmpl"))
		if err != nil {
			return fmt.Errorf("prompt: glob overrides: %w", err)
		}
		for _, path := range matches {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("prompt: read %s: %w", path, err)
			}
			if _, err := set.New(filepath.Base(path)).Parse(string(data)); err != nil {
				return fmt.Errorf("prompt: parse %s: %w", filepath.Base(path), err)
			}
		}
	}

	l.mu.Lock()
	l.set = set
	l.mu.Unlock()
	return nil
}

// Render executes the named template.
func (l *Library) Render(name string, data any) (string, error) {
	l.mu.RLock()
	t := l.set.Lookup(name)
	l.mu.RUnlock()
	if t == nil {
		return "", fmt.Errorf("prompt: unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("prompt: render %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()) + "\n", nil
}
