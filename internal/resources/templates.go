// Package resources loads the HTML templates and keeps them fresh by
// watching the template directory for changes.
package resources

import (
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
)

// Renderer renders named templates from a directory, reloading the parsed
// set when files change on disk.
type Renderer struct {
	dir string

	mu   sync.RWMutex
	tmpl *template.Template
}

func NewRenderer(dir string) (*Renderer, error) {
	r := &Renderer{dir: dir}
	if err := r.load(); err != nil {
		return nil, err
	}
	if err := watchDir(dir, func() {
		if err := r.load(); err != nil {
			slog.Error("template reload failed", slog.String("err", err.Error()))
		}
	}); err != nil {
		return nil, fmt.Errorf("couldn't start template watcher: %w", err)
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any) error {
	r.mu.RLock()
	tmpl := r.tmpl
	r.mu.RUnlock()

	return tmpl.ExecuteTemplate(w, name, data)
}

func (r *Renderer) load() error {
	tmpl, err := template.ParseGlob(filepath.Join(r.dir, "*.html"))
	if err != nil {
		return fmt.Errorf("couldn't parse templates from '%s': %w", r.dir, err)
	}

	r.mu.Lock()
	r.tmpl = tmpl
	r.mu.Unlock()

	slog.Info("loaded templates", slog.String("dir", r.dir))
	return nil
}
