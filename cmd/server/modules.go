package main

import (
	"net/http"
	"strings"

	"github.com/JaimeStill/logomagic/internal/api"
	"github.com/JaimeStill/logomagic/internal/config"
	"github.com/JaimeStill/logomagic/internal/infrastructure"
	"github.com/JaimeStill/logomagic/pkg/middleware"
	"github.com/JaimeStill/logomagic/pkg/module"
	"github.com/JaimeStill/logomagic/pkg/storage"
	"github.com/JaimeStill/logomagic/web/app"
	"github.com/JaimeStill/logomagic/web/scalar"
)

type Modules struct {
	API    *module.Module
	App    *module.Module
	Scalar *module.Module

	app *app.App
}

func NewModules(cfg *config.Config, infra *infrastructure.Infrastructure, runtime *api.Runtime, domain *api.Domain) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, runtime, domain)
	if err != nil {
		return nil, err
	}

	wizardApp, err := app.New(cfg.Intake.AppPath, apiModule.Prefix()+"/intake", domain.Binder)
	if err != nil {
		return nil, err
	}
	appModule := wizardApp.Module()
	appModule.Use(middleware.AddSlash())
	appModule.Use(middleware.Logger(infra.Logger.With("module", "app")))

	scalarModule := scalar.Module("/scalar", apiModule.Prefix()+"/openapi.json")
	scalarModule.Use(middleware.AddSlash())

	return &Modules{
		API:    apiModule,
		App:    appModule,
		Scalar: scalarModule,
		app:    wizardApp,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
	router.Mount(m.App)
	router.Mount(m.Scalar)
}

func buildRouter(cfg *config.Config, infra *infrastructure.Infrastructure, modules *Modules) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("NOT READY"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	})

	router.HandleNative("GET /{$}", modules.app.Home)

	if prefix, ok := blobPrefix(&cfg.Storage); ok {
		blobs := http.StripPrefix(prefix, storage.FileServer(cfg.Storage.BasePath))
		router.HandleNative("GET "+prefix+"/", blobs.ServeHTTP)
	}

	router.HandleNative("/", modules.app.NotFound())

	return router
}

// blobPrefix returns the local path filesystem blobs are published under.
// Public URLs on another origin are served by whatever hosts them.
func blobPrefix(cfg *storage.Config) (string, bool) {
	if cfg.Provider != storage.ProviderFilesystem || !strings.HasPrefix(cfg.PublicURL, "/") {
		return "", false
	}
	prefix := strings.TrimSuffix(cfg.PublicURL, "/")
	return prefix, prefix != ""
}
