package routes_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/logomagic/pkg/openapi"
	"github.com/JaimeStill/logomagic/pkg/routes"
)

func write(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, body)
	}
}

func testGroup() routes.Group {
	return routes.Group{
		Prefix: "/records",
		Tags:   []string{"Records"},
		Schemas: map[string]*openapi.Schema{
			"Record": {Type: "object"},
		},
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "/{collection}",
				Handler: write("list"),
				OpenAPI: &openapi.Operation{Summary: "List records"},
			},
			{
				Method:  "GET",
				Pattern: "/{collection}/{id}",
				Handler: write("find"),
			},
		},
		Children: []routes.Group{
			{
				Prefix: "/stats",
				Routes: []routes.Route{
					{
						Method:  "GET",
						Pattern: "/{path...}",
						Handler: write("stats"),
						OpenAPI: &openapi.Operation{Summary: "Stats"},
					},
				},
			},
		},
	}
}

func TestRegister_Serves(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, "/api", nil, testGroup())

	tests := []struct {
		path string
		want string
	}{
		{"/records/users", "list"},
		{"/records/users/abc", "find"},
		{"/records/stats/a/b", "stats"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Body.String() != tt.want {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.want)
			}
		})
	}
}

func TestRegister_Documents(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	routes.Register(http.NewServeMux(), "/api", spec, testGroup())

	list := spec.Paths["/api/records/{collection}"]
	if list == nil || list.Get == nil {
		t.Fatalf("list path missing: %v", spec.Paths)
	}
	if list.Get.Tags[0] != "Records" {
		t.Errorf("Tags = %v, want [Records]", list.Get.Tags)
	}

	if _, ok := spec.Paths["/api/records/{collection}/{id}"]; ok {
		t.Error("undocumented route added to spec")
	}

	stats := spec.Paths["/api/records/stats/{path}"]
	if stats == nil || stats.Get.Tags[0] != "Records" {
		t.Errorf("child route missing or tags not inherited: %+v", stats)
	}

	if spec.Components.Schemas["Record"] == nil {
		t.Error("group schema not registered")
	}
}
