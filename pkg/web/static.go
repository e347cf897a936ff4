package web

import (
	"io/fs"
	"net/http"
	"path"
)

// PublicFile is a route serving one embedded file at the module root.
type PublicFile struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// PublicFileRoutes creates a GET route at "/<name>" for each file under dir in fsys.
func PublicFileRoutes(fsys fs.FS, dir string, files ...string) []PublicFile {
	routes := make([]PublicFile, 0, len(files))
	for _, name := range files {
		routes = append(routes, PublicFile{
			Method:  http.MethodGet,
			Pattern: "/" + name,
			Handler: ServeEmbeddedFile(fsys, path.Join(dir, name)),
		})
	}
	return routes
}

// ServeEmbeddedFile serves a single file from fsys, answering 404 when it is missing.
func ServeEmbeddedFile(fsys fs.FS, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, fsys, name)
	}
}

// DistServer serves the files under dir in fsys at the URL prefix.
func DistServer(fsys fs.FS, dir, prefix string) http.Handler {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return http.NotFoundHandler()
	}
	return http.StripPrefix(prefix, http.FileServer(http.FS(sub)))
}
