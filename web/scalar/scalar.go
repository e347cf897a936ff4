// Package scalar serves the interactive API reference for the api module's
// OpenAPI document.
package scalar

import (
	_ "embed"
	"html/template"
	"net/http"

	"github.com/JaimeStill/logomagic/pkg/module"
)

//go:embed index.html
var indexHTML string

var index = template.Must(template.New("index").Parse(indexHTML))

// Handler renders the reference page for the document at specURL.
func Handler(specURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		index.Execute(w, struct{ SpecURL string }{specURL})
	}
}

// Module mounts the reference page at prefix.
func Module(prefix, specURL string) *module.Module {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", Handler(specURL))
	return module.New(prefix, mux)
}
