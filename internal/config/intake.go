package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

// DefaultInvoiceURL is the manual payment invoice opened by "Buy Now".
const DefaultInvoiceURL = "https://www.paypal.com/invoice/p/#INV2-FRRR-L3HH-M6YY-3UTP"

// IntakeConfig contains settings for the intake wizard.
type IntakeConfig struct {
	// InvoiceURL is the external invoice link. Default: DefaultInvoiceURL
	InvoiceURL string `toml:"invoice_url"`

	// SessionTTL evicts wizard sessions idle for longer than this. Default: "2h"
	SessionTTL string `toml:"session_ttl"`

	// CookieName names the session cookie. Default: "logomagic_session"
	CookieName string `toml:"cookie_name"`

	// AppPath is the mount prefix of the wizard page that form posts redirect to.
	// Default: "/app"
	AppPath string `toml:"app_path"`

	// SecureCookie marks the session cookie Secure.
	SecureCookie bool `toml:"secure_cookie"`
}

// SessionTTLDuration returns the parsed session TTL.
func (c *IntakeConfig) SessionTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.SessionTTL)
	return d
}

func (c *IntakeConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *IntakeConfig) Merge(overlay *IntakeConfig) {
	if overlay.InvoiceURL != "" {
		c.InvoiceURL = overlay.InvoiceURL
	}
	if overlay.SessionTTL != "" {
		c.SessionTTL = overlay.SessionTTL
	}
	if overlay.CookieName != "" {
		c.CookieName = overlay.CookieName
	}
	if overlay.AppPath != "" {
		c.AppPath = overlay.AppPath
	}
	if overlay.SecureCookie {
		c.SecureCookie = true
	}
}

func (c *IntakeConfig) loadDefaults() {
	if c.InvoiceURL == "" {
		c.InvoiceURL = DefaultInvoiceURL
	}
	if c.SessionTTL == "" {
		c.SessionTTL = "2h"
	}
	if c.CookieName == "" {
		c.CookieName = "logomagic_session"
	}
	if c.AppPath == "" {
		c.AppPath = "/app"
	}
}

func (c *IntakeConfig) loadEnv() {
	if v := os.Getenv("INTAKE_INVOICE_URL"); v != "" {
		c.InvoiceURL = v
	}
	if v := os.Getenv("INTAKE_SESSION_TTL"); v != "" {
		c.SessionTTL = v
	}
	if v := os.Getenv("INTAKE_COOKIE_NAME"); v != "" {
		c.CookieName = v
	}
	if v := os.Getenv("INTAKE_SECURE_COOKIE"); v == "true" || v == "1" {
		c.SecureCookie = true
	}
}

func (c *IntakeConfig) validate() error {
	u, err := url.Parse(c.InvoiceURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid invoice_url: %q", c.InvoiceURL)
	}
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil {
		return fmt.Errorf("invalid session_ttl: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}
	if !isSegment(c.AppPath) {
		return fmt.Errorf("app_path must be a single path segment such as /app: %q", c.AppPath)
	}
	return nil
}
