// Package app provides the web application module: the landing page and the
// server-rendered intake wizard, with embedded templates and assets.
package app

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/JaimeStill/logomagic/internal/wizard"
	"github.com/JaimeStill/logomagic/pkg/module"
	"github.com/JaimeStill/logomagic/pkg/web"
	"github.com/docker/go-units"
)

//go:embed public/*
var publicFS embed.FS

//go:embed server/layouts/*
var layoutFS embed.FS

//go:embed server/views/*
var viewFS embed.FS

const layout = "app.html"

var publicFiles = []string{
	"app.css",
	"favicon.svg",
	"sample-before.svg",
	"sample-after.svg",
}

var (
	homeView     = web.ViewDef{Template: "home.html", Title: "Add Your Logo to Your Product Images"}
	wizardView   = web.ViewDef{Route: "/{$}", Template: "wizard.html", Title: "LogoMagic Pro"}
	notFoundView = web.ViewDef{Template: "404.html", Title: "Not Found"}
)

// comparisonCount is the number of before and after cards on the landing page.
const comparisonCount = 5

// Sessions binds a request to its wizard orchestrator.
type Sessions interface {
	Orchestrator(w http.ResponseWriter, r *http.Request) *wizard.Orchestrator
}

// App renders the landing page and the wizard.
type App struct {
	templates  *web.TemplateSet
	sessions   Sessions
	intakePath string
}

// New parses the templates for an app mounted at basePath whose forms post to intakePath.
func New(basePath, intakePath string, sessions Sessions) (*App, error) {
	ts, err := web.NewTemplateSet(
		layoutFS,
		viewFS,
		"server/layouts/*.html",
		"server/views",
		basePath,
		[]web.ViewDef{homeView, wizardView, notFoundView},
		funcs,
	)
	if err != nil {
		return nil, err
	}

	return &App{
		templates:  ts,
		sessions:   sessions,
		intakePath: strings.TrimSuffix(intakePath, "/"),
	}, nil
}

// Module returns the wizard module mounted at the app base path.
func (a *App) Module() *module.Module {
	r := web.NewRouter()
	r.SetFallback(a.templates.ErrorHandler(layout, notFoundView, http.StatusNotFound))

	r.HandleFunc("GET "+wizardView.Route, a.Wizard)
	for _, route := range web.PublicFileRoutes(publicFS, "public", publicFiles...) {
		r.HandleFunc(route.Method+" "+route.Pattern, route.Handler)
	}

	return module.New(a.templates.BasePath(), r)
}

type comparison struct {
	Index  int
	Before string
	After  string
}

type homePage struct {
	Comparisons []comparison
}

// Home renders the landing page.
func (a *App) Home(w http.ResponseWriter, r *http.Request) {
	page := homePage{Comparisons: make([]comparison, comparisonCount)}
	for i := range page.Comparisons {
		page.Comparisons[i] = comparison{
			Index:  i + 1,
			Before: "sample-before.svg",
			After:  "sample-after.svg",
		}
	}

	if err := a.templates.RenderView(w, layout, homeView, page); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// NotFound renders the 404 page outside the app module.
func (a *App) NotFound() http.HandlerFunc {
	return a.templates.ErrorHandler(layout, notFoundView, http.StatusNotFound)
}

type wizardPage struct {
	View         wizard.View
	Intake       string
	Notice       string
	InvalidEmail string
	Steps        []string
}

var stepLabels = []string{"Upload Your Logo", "Upload Target Image", "Logo Placement Description"}

// Wizard renders the session's wizard state. A notice passed as ?error= is
// shown above the form.
func (a *App) Wizard(w http.ResponseWriter, r *http.Request) {
	o := a.sessions.Orchestrator(w, r)

	page := wizardPage{
		View:         o.Snapshot(),
		Intake:       a.intakePath,
		Notice:       r.URL.Query().Get("error"),
		InvalidEmail: wizard.MsgInvalidEmail,
		Steps:        stepLabels,
	}

	w.Header().Set("Cache-Control", "no-store")
	if err := a.templates.RenderView(w, layout, wizardView, page); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func stepClass(current wizard.Step, panel int) string {
	switch {
	case int(current) == panel:
		return "panel-active"
	case int(current) == (panel+1)%3:
		return "panel-done"
	default:
		return "panel-pending"
	}
}

var funcs = template.FuncMap{
	"stepClass": stepClass,
	"atStep": func(current wizard.Step, panel int) bool {
		return int(current) == panel
	},
	"humanSize": func(n int64) string {
		return units.HumanSize(float64(n))
	},
}
