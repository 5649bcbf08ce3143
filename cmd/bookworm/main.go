package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"bookworm/internal/app"
	"bookworm/internal/config"
	"bookworm/internal/logging"
)

type mode int

const (
	modeServe mode = iota
	modeAddAuthor
	modeRunOne
	modeRunAll
	modeMigrateOnly
)

// selectMode maps the flag combination to one run mode. -migrate composes
// with every run mode; on its own it creates the schema and exits.
func selectMode(addURL, authorURL string, once, migrate bool) mode {
	switch {
	case addURL != "":
		return modeAddAuthor
	case authorURL != "":
		return modeRunOne
	case once:
		return modeRunAll
	case migrate:
		return modeMigrateOnly
	default:
		return modeServe
	}
}

func main() {
	authorURL := flag.String("author-url", "", "Run the pipeline once for a single author profile URL")
	addURL := flag.String("add-author", "", "Add an author by profile URL and exit")
	once := flag.Bool("once", false, "Run the pipeline once for all tracked authors and exit")
	migrate := flag.Bool("migrate", false, "Create missing database tables; exits when no run mode is given")
	flag.Parse()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("application setup failed", "error", err)
		os.Exit(1)
	}

	if *migrate {
		if err := application.EnsureSchema(ctx); err != nil {
			logger.Error("schema setup failed", "error", err)
			os.Exit(1)
		}
	}

	switch selectMode(*addURL, *authorURL, *once, *migrate) {
	case modeAddAuthor:
		err = application.AddAuthor(ctx, *addURL)
	case modeRunOne:
		err = application.RunOnce(ctx, *authorURL)
	case modeRunAll:
		err = application.RunOnce(ctx, "")
	case modeMigrateOnly:
		application.Close()
	default:
		err = application.Run(ctx)
	}

	if err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
