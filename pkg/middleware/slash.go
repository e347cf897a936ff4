package middleware

import (
	"net/http"
	"net/url"
	"path"
	"strings"
)

// AddSlash redirects paths without a trailing slash to their slash form.
// Paths naming a file (with an extension) pass through.
func AddSlash() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := r.URL.Path
			if strings.HasSuffix(p, "/") || path.Ext(p) != "" {
				next.ServeHTTP(w, r)
				return
			}
			redirectPath(w, r, p+"/")
		})
	}
}

// TrimSlash redirects paths with a trailing slash to their slashless form.
// The root path passes through.
func TrimSlash() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := r.URL.Path
			if len(p) <= 1 || !strings.HasSuffix(p, "/") {
				next.ServeHTTP(w, r)
				return
			}
			redirectPath(w, r, strings.TrimSuffix(p, "/"))
		})
	}
}

// redirectPath redirects to target, restoring any module prefix stripped from r.URL.Path.
func redirectPath(w http.ResponseWriter, r *http.Request, target string) {
	if u, err := url.ParseRequestURI(r.RequestURI); err == nil && u.Path != r.URL.Path {
		target = strings.TrimSuffix(u.Path, r.URL.Path) + target
	}
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusMovedPermanently)
}
