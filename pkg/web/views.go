// Package web provides server-rendered view infrastructure: pre-parsed
// template sets, a router with a fallback handler, and embedded static files.
package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

// ViewDef defines a view with its route, template file, title, and script bundle.
type ViewDef struct {
	Route    string
	Template string
	Title    string
	Bundle   string
}

// ViewData is passed to templates during rendering.
// BasePath lets templates build URLs via {{ .BasePath }}.
type ViewData struct {
	Title    string
	Bundle   string
	BasePath string
	Data     any
}

// TemplateSet holds one parsed template tree per view, each cloned from the shared layouts.
type TemplateSet struct {
	views    map[string]*template.Template
	basePath string
}

// NewTemplateSet parses the layouts matching layoutGlob and clones them for each
// view found under viewSubdir. Parsing happens once so template errors fail startup.
func NewTemplateSet(layoutFS, viewFS fs.FS, layoutGlob, viewSubdir, basePath string, views []ViewDef, funcs ...template.FuncMap) (*TemplateSet, error) {
	base := template.New("")
	for _, fm := range funcs {
		base = base.Funcs(fm)
	}

	layouts, err := base.ParseFS(layoutFS, layoutGlob)
	if err != nil {
		return nil, err
	}

	sub, err := fs.Sub(viewFS, viewSubdir)
	if err != nil {
		return nil, err
	}

	parsed := make(map[string]*template.Template, len(views))
	for _, v := range views {
		t, err := layouts.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layouts for %s: %w", v.Template, err)
		}
		if _, err := t.ParseFS(sub, v.Template); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", v.Template, err)
		}
		parsed[v.Template] = t
	}

	return &TemplateSet{views: parsed, basePath: basePath}, nil
}

// BasePath returns the URL prefix the set renders links under.
func (ts *TemplateSet) BasePath() string {
	return ts.basePath
}

// PageHandler renders a static view.
func (ts *TemplateSet) PageHandler(layout string, view ViewDef) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ts.RenderView(w, layout, view, nil); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// ErrorHandler renders view with the given status code.
func (ts *TemplateSet) ErrorHandler(layout string, view ViewDef, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		data := ViewData{Title: view.Title, Bundle: view.Bundle, BasePath: ts.basePath}
		t, ok := ts.views[view.Template]
		if !ok {
			return
		}
		t.ExecuteTemplate(w, layout, data)
	}
}

// RenderView renders view with data attached as ViewData.Data.
func (ts *TemplateSet) RenderView(w http.ResponseWriter, layout string, view ViewDef, data any) error {
	return ts.Render(w, layout, view.Template, ViewData{
		Title:    view.Title,
		Bundle:   view.Bundle,
		BasePath: ts.basePath,
		Data:     data,
	})
}

// Render executes layout from the template tree parsed for viewPath.
func (ts *TemplateSet) Render(w http.ResponseWriter, layout, viewPath string, data ViewData) error {
	t, ok := ts.views[viewPath]
	if !ok {
		return fmt.Errorf("template not found: %s", viewPath)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return t.ExecuteTemplate(w, layout, data)
}
