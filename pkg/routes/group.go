package routes

import (
	"net/http"
	"strings"

	"github.com/JaimeStill/logomagic/pkg/openapi"
)

// Group is a set of routes under a common prefix. Children inherit the prefix
// and any tags they do not set themselves.
type Group struct {
	Prefix      string
	Tags        []string
	Description string
	Routes      []Route
	Children    []Group
	Schemas     map[string]*openapi.Schema
}

// AddToSpec documents the group's routes under basePath+Prefix in spec.
func (g Group) AddToSpec(basePath string, spec *openapi.Spec) {
	g.addToSpec(basePath, nil, spec)
}

func (g Group) addToSpec(basePath string, parentTags []string, spec *openapi.Spec) {
	prefix := basePath + g.Prefix
	tags := g.Tags
	if len(tags) == 0 {
		tags = parentTags
	}

	if len(g.Schemas) > 0 {
		spec.AddSchemas(g.Schemas)
	}

	for _, r := range g.Routes {
		if r.OpenAPI == nil {
			continue
		}

		op := *r.OpenAPI
		if len(op.Tags) == 0 {
			op.Tags = tags
		}

		p := specPath(prefix + r.Pattern)
		item, ok := spec.Paths[p]
		if !ok {
			item = &openapi.PathItem{}
			spec.Paths[p] = item
		}

		switch r.Method {
		case http.MethodGet:
			item.Get = &op
		case http.MethodPost:
			item.Post = &op
		case http.MethodPut:
			item.Put = &op
		case http.MethodDelete:
			item.Delete = &op
		}
	}

	for _, child := range g.Children {
		child.addToSpec(prefix, tags, spec)
	}
}

// specPath drops ServeMux wildcard suffixes such as "{$}" and "{rest...}".
func specPath(p string) string {
	p = strings.ReplaceAll(p, "{$}", "")
	p = strings.ReplaceAll(p, "...}", "}")
	if p == "" {
		return "/"
	}
	return p
}
