package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/JaimeStill/logomagic/pkg/middleware"
	"github.com/JaimeStill/logomagic/pkg/openapi"
	"github.com/JaimeStill/logomagic/pkg/pagination"
)

const (
	// EnvAPIBasePath overrides the API module prefix.
	EnvAPIBasePath = "API_BASE_PATH"

	// EnvAPIRecordsEnabled toggles the operator record endpoints.
	EnvAPIRecordsEnabled = "API_RECORDS_ENABLED"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "API_CORS_ENABLED",
	Origins:          "API_CORS_ORIGINS",
	AllowedMethods:   "API_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "API_CORS_ALLOWED_HEADERS",
	AllowCredentials: "API_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "API_CORS_MAX_AGE",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:       "API_OPENAPI_TITLE",
	Description: "API_OPENAPI_DESCRIPTION",
}

var paginationEnv = &pagination.Env{
	DefaultPageSize: "API_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "API_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig contains settings for the JSON API module that serves the
// intake endpoints, the record listing, and the OpenAPI document.
type APIConfig struct {
	// BasePath is the module prefix. Default: "/api"
	BasePath   string                `toml:"base_path"`
	CORS       middleware.CORSConfig `toml:"cors"`
	Pagination pagination.Config     `toml:"pagination"`
	OpenAPI    openapi.Config        `toml:"openapi"`
	Records    RecordsConfig         `toml:"records"`
}

// RecordsConfig gates the operator record endpoints. They list every stored
// submission and payment and carry no authentication, so they stay
// unmounted unless enabled.
type RecordsConfig struct {
	// Enabled mounts GET /records/{collection} and /records/{collection}/{id}.
	Enabled bool `toml:"enabled"`
}

func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if !isSegment(c.BasePath) {
		return fmt.Errorf("base_path must be a single path segment such as /api: %q", c.BasePath)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
	c.Records.Enabled = overlay.Records.Enabled
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIRecordsEnabled); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Records.Enabled = b
		}
	}
}

// isSegment reports whether p is a mount prefix like "/api".
func isSegment(p string) bool {
	return len(p) > 1 && strings.HasPrefix(p, "/") && !strings.Contains(p[1:], "/")
}
