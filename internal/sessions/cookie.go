package sessions

import (
	"net/http"
	"time"

	"github.com/JaimeStill/logomagic/internal/wizard"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// Binder attaches a session to each request through a cookie.
type Binder struct {
	sys    System
	cookie CookieConfig
}

func NewBinder(sys System, cookie CookieConfig) *Binder {
	return &Binder{sys: sys, cookie: cookie}
}

// Orchestrator returns the request's session orchestrator and refreshes the
// cookie, starting a new session when the request carries no live one.
func (b *Binder) Orchestrator(w http.ResponseWriter, r *http.Request) *wizard.Orchestrator {
	var id string
	if c, err := r.Cookie(b.cookie.Name); err == nil {
		id = c.Value
	}

	sid, o, _ := b.sys.Resolve(id)

	http.SetCookie(w, &http.Cookie{
		Name:     b.cookie.Name,
		Value:    sid.String(),
		Path:     "/",
		MaxAge:   int(b.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   b.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	return o
}
