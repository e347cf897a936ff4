package scalar_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/logomagic/pkg/module"
	"github.com/JaimeStill/logomagic/web/scalar"
)

func TestModule(t *testing.T) {
	router := module.NewRouter()
	router.Mount(scalar.Module("/scalar", "/api/openapi.json"))

	for _, path := range []string{"/scalar", "/scalar/"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		if w.Code != http.StatusOK {
			t.Errorf("GET %s status = %d", path, w.Code)
			continue
		}
		if !strings.Contains(w.Body.String(), `data-url="/api/openapi.json"`) {
			t.Errorf("GET %s does not reference the OpenAPI document", path)
		}
	}
}
