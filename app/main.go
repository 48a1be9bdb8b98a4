package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/list-comb/app/api"
	"github.com/lysyi3m/list-comb/app/cfg"
	"github.com/lysyi3m/list-comb/app/database"
	"github.com/lysyi3m/list-comb/app/enrich"
	"github.com/lysyi3m/list-comb/app/feed"
	"github.com/lysyi3m/list-comb/app/fetch"
	"github.com/lysyi3m/list-comb/app/list"
	"github.com/lysyi3m/list-comb/app/markdown"
	"github.com/lysyi3m/list-comb/app/publish"
	"github.com/lysyi3m/list-comb/app/source"
	"github.com/lysyi3m/list-comb/app/tasks"
	"github.com/lysyi3m/list-comb/app/tracker"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting List Comb", "version", appCfg.Version)

	sources, err := source.NewLoader(appCfg.SourcesFile).Run()
	if err != nil {
		slog.Error("Failed to load sources", "file", appCfg.SourcesFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded sources", "count", len(sources.Sources))

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Debug("Database ready", "schema_version", version, "dirty", dirty)

	store := database.NewStoreRepository(db)
	tr := tracker.NewTracker(store, markdown.NewRenderer(), time.Now)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	enricher := enrich.NewGitHubStars(httpClient, enrich.DefaultGitHubAPI, appCfg.UserAgent, appCfg.GitHubToken, enrich.DefaultCacheTTL)
	parser := list.NewParser(enricher, appCfg.EnrichWorkers)

	fetcher := fetch.NewRouter(fetch.NewHTTPFetcher(httpClient, appCfg.UserAgent), fetch.NewDirFetcher())

	builder := feed.NewBuilder(feed.Site{
		BaseURL: appCfg.BaseUrl,
		Title:   appCfg.SiteTitle,
		Version: appCfg.Version,
	})
	writer := feed.NewWriter(appCfg.ContentDir, appCfg.PublicDir)

	var publisher publish.Publisher = publish.NewNoop()
	if appCfg.Push {
		publisher = publish.NewGit(appCfg.RepoURL, appCfg.ContentDir)
	}

	runner := tasks.NewRunner(sources, tr, fetcher, parser, builder, writer, publisher, time.Now)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := runner.Run(ctx, tasks.RunOptions{
		Sources:       appCfg.Sources,
		Force:         appCfg.Force,
		Limit:         appCfg.Limit,
		Markdown:      appCfg.BuildMarkdown(),
		HTML:          appCfg.BuildHtml(),
		CleanMarkdown: appCfg.CleanMarkdown,
		CleanHTML:     appCfg.CleanHtml,
		Push:          appCfg.Push,
	})
	if err != nil {
		slog.Error("Build run failed", "error", err)
		db.Close()
		os.Exit(1)
	}
	slog.Info("Build run completed", "synced", summary.Synced, "built", summary.Built, "failed", summary.Failed)

	if !appCfg.Serve {
		return
	}

	serve(ctx, appCfg, api.NewHandler(store, sources, appCfg.PublicDir, appCfg.Version))
}

func serve(ctx context.Context, appCfg *cfg.Cfg, handler *api.Handler) {
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler, appCfg.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Received shutdown signal")
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}
