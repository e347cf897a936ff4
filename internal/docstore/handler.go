package docstore

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/logomagic/pkg/handlers"
	"github.com/JaimeStill/logomagic/pkg/pagination"
	"github.com/JaimeStill/logomagic/pkg/routes"
	"github.com/google/uuid"
)

// Handler exposes read-only operator endpoints over stored records.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "records"),
		pagination: pagination,
	}
}

// Routes returns the record endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/records",
		Tags:        []string{"Records"},
		Description: "Submitted user and payment records",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{collection}", Handler: h.List, OpenAPI: Spec.List},
			{Method: "GET", Pattern: "/{collection}/{id}", Handler: h.Find, OpenAPI: Spec.Find},
		},
		Schemas: Spec.Schemas(),
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.List(r.Context(), r.PathValue("collection"), page)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	rec, err := h.sys.Find(r.Context(), r.PathValue("collection"), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}
