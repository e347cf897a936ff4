package api

import (
	"net/http"

	"github.com/JaimeStill/logomagic/internal/config"
	"github.com/JaimeStill/logomagic/internal/docstore"
	"github.com/JaimeStill/logomagic/internal/intake"
	"github.com/JaimeStill/logomagic/pkg/openapi"
	"github.com/JaimeStill/logomagic/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	spec *openapi.Spec,
	runtime *Runtime,
	domain *Domain,
	cfg *config.Config,
) {
	intakeHandler := intake.NewHandler(domain.Binder, runtime.Logger, cfg.Intake.AppPath, runtime.MaxUpload)
	groups := []routes.Group{intakeHandler.Routes()}

	if cfg.API.Records.Enabled {
		recordsHandler := docstore.NewHandler(domain.Records, runtime.Logger, runtime.Pagination)
		groups = append(groups, recordsHandler.Routes())
		runtime.Logger.Warn("operator record endpoints enabled without authentication", "path", cfg.API.BasePath+"/records")
	}

	routes.Register(mux, cfg.API.BasePath, spec, groups...)
}
