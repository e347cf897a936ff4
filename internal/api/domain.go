package api

import (
	"github.com/JaimeStill/logomagic/internal/config"
	"github.com/JaimeStill/logomagic/internal/docstore"
	"github.com/JaimeStill/logomagic/internal/sessions"
	"github.com/JaimeStill/logomagic/internal/upload"
	"github.com/JaimeStill/logomagic/internal/wizard"
	"github.com/JaimeStill/logomagic/pkg/lifecycle"
)

// Domain holds the domain systems that comprise the API.
type Domain struct {
	Records  docstore.System
	Uploads  *upload.Adapter
	Sessions sessions.System
	Binder   *sessions.Binder
}

// NewDomain creates all domain systems from the API runtime. Records go to
// Postgres when the runtime has a database and to process memory otherwise.
func NewDomain(runtime *Runtime, cfg *config.Config) *Domain {
	var records docstore.System
	if runtime.Database != nil {
		records = docstore.New(
			runtime.Database.Connection(),
			runtime.Logger,
			runtime.Pagination,
		)
	} else {
		runtime.Logger.Warn("document store is in memory; records are lost on restart")
		records = docstore.NewMemory(runtime.Logger, runtime.Pagination)
	}

	uploads := upload.New(runtime.Storage, runtime.Logger)

	wizardCfg := wizard.Config{InvoiceURL: cfg.Intake.InvoiceURL}
	sessionsSys := sessions.New(
		sessions.Config{TTL: cfg.Intake.SessionTTLDuration()},
		func() *wizard.Orchestrator {
			return wizard.New(wizardCfg, uploads, records, runtime.Logger)
		},
		runtime.Logger,
	)

	binder := sessions.NewBinder(sessionsSys, sessions.CookieConfig{
		Name:   cfg.Intake.CookieName,
		MaxAge: cfg.Intake.SessionTTLDuration(),
		Secure: cfg.Intake.SecureCookie,
	})

	return &Domain{
		Records:  records,
		Uploads:  uploads,
		Sessions: sessionsSys,
		Binder:   binder,
	}
}

// Start registers background domain work with the lifecycle coordinator.
func (d *Domain) Start(lc *lifecycle.Coordinator) error {
	return d.Sessions.Start(lc)
}
