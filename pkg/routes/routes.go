// Package routes declares HTTP routes with their OpenAPI documentation and
// registers them on a ServeMux.
package routes

import (
	"net/http"

	"github.com/JaimeStill/logomagic/pkg/openapi"
)

// Route binds a method and pattern to a handler. OpenAPI is optional; routes
// without it are served but not documented.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}

// Register adds every route in groups to mux and documents them in spec.
// Patterns on mux are relative to the module; basePath is the module prefix
// used only for documentation.
func Register(mux *http.ServeMux, basePath string, spec *openapi.Spec, groups ...Group) {
	for _, g := range groups {
		register(mux, "", g)
		if spec != nil {
			g.AddToSpec(basePath, spec)
		}
	}
}

func register(mux *http.ServeMux, parent string, g Group) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		pattern := prefix + r.Pattern
		if pattern == "" {
			pattern = "/"
		}
		mux.HandleFunc(r.Method+" "+pattern, r.Handler)
	}
	for _, child := range g.Children {
		register(mux, prefix, child)
	}
}
