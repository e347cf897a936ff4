// Command migrate applies the document store schema to Postgres using the
// embedded SQL migrations and the database section of config.toml.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/JaimeStill/logomagic/internal/config"
	"github.com/JaimeStill/logomagic/internal/docstore/migrations"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

func main() {
	var (
		up      = flag.Bool("up", false, "Apply all pending migrations")
		down    = flag.Bool("down", false, "Roll back all migrations")
		steps   = flag.Int("steps", 0, "Apply n migrations (negative rolls back)")
		version = flag.Bool("version", false, "Print the current schema version")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if cfg.Documents.Provider != config.DocumentsPostgres {
		log.Fatalf("documents provider is %q; migrations only apply to %q", cfg.Documents.Provider, config.DocumentsPostgres)
	}

	m, err := open(cfg.Database.MigrateURL())
	if err != nil {
		log.Fatalf("migrate init failed: %v", err)
	}
	defer m.Close()

	switch {
	case *up:
		err = m.Up()
	case *down:
		err = m.Down()
	case *steps != 0:
		err = m.Steps(*steps)
	case *version:
		printVersion(m)
		return
	default:
		fmt.Println("usage: migrate [-up|-down|-steps n|-version]")
		flag.PrintDefaults()
		return
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("no change")
		return
	}
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	printVersion(m)
}

func open(url string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("migrate source: %w", err)
	}
	return migrate.NewWithSourceInstance("iofs", source, url)
}

func printVersion(m *migrate.Migrate) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("version: none")
		return
	}
	if err != nil {
		log.Fatalf("read version failed: %v", err)
	}
	fmt.Printf("version: %d (dirty: %v)\n", v, dirty)
}
