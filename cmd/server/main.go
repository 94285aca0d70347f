package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/me/flowplan/internal/caldav"
	"github.com/me/flowplan/internal/config"
	"github.com/me/flowplan/internal/llm"
	"github.com/me/flowplan/internal/logging"
	"github.com/me/flowplan/internal/planner"
	"github.com/me/flowplan/internal/server"
	"github.com/me/flowplan/internal/store"
	"github.com/me/flowplan/internal/summarize"
)

// prunePlanSpec runs retention pruning nightly, off peak.
const prunePlanSpec = "0 3 * * *"

func main() {
	configFile := flag.String("config", "", "Path to YAML config file")
	addr := flag.String("addr", "", "Listen address (default :8080)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "", "Log format (text, json)")
	dbPath := flag.String("db", "", "Database path (default ~/.flowplan/flowplan.db)")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")
	flag.Parse()

	cfg, err := config.LoadFile(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// Flags win over the config file.
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFormat != "" {
		cfg.LogFormat = *logFormat
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *debug {
		cfg.LogLevel = "debug"
	}
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	// Resolve database path.
	db := cfg.DBPath
	if db == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot determine home directory: %v\n", err)
			os.Exit(1)
		}
		dir := filepath.Join(home, ".flowplan")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "cannot create %s: %v\n", dir, err)
			os.Exit(1)
		}
		db = filepath.Join(dir, "flowplan.db")
	}

	// Open store and run migrations.
	st, err := store.NewSQLiteStore(db, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.Migrate(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate database: %v\n", err)
		os.Exit(1)
	}
	logger.Info("database ready", "path", db)

	// Wire the LLM generator. Without a key the planner runs on its local
	// fallback and the summarize endpoints answer 503.
	var gen llm.Generator
	if cfg.Gemini.APIKey != "" {
		gen = llm.NewGemini(cfg.Gemini.APIKey, cfg.Gemini.Model, logger)
		logger.Info("llm generator ready", "model", cfg.Gemini.Model)
	} else {
		logger.Info("no LLM key configured, planner uses local fallback",
			"hint", "set GEMINI_API_KEY or gemini.api_key in config")
	}

	pl := planner.New(gen, logger)

	serverOpts := []server.Option{}
	if gen != nil {
		serverOpts = append(serverOpts, server.WithSummarizer(summarize.New(gen, logger)))
	}
	if cfg.CalDAV.URL != "" {
		dav := caldav.NewClient(cfg.CalDAV.URL, cfg.CalDAV.Username, cfg.CalDAV.Password,
			cfg.CalDAV.CalendarPath, logger)
		serverOpts = append(serverOpts, server.WithCalDAV(dav))
		logger.Info("caldav sync enabled", "url", cfg.CalDAV.URL)
	}

	srv := server.New(cfg, st, pl, logger, serverOpts...)

	// Nightly retention pruning.
	var pruner *cron.Cron
	if cfg.RetentionDays > 0 {
		pruner = cron.New()
		_, err := pruner.AddFunc(prunePlanSpec, func() {
			cutoff := time.Now().AddDate(0, 0, -cfg.RetentionDays)
			n, err := st.PrunePlans(context.Background(), cutoff)
			if err != nil {
				logger.Error("prune failed", "error", err)
				return
			}
			if n > 0 {
				logger.Info("pruned old plans", "count", n, "cutoff", cutoff.Format("2006-01-02"))
			}
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "schedule prune job: %v\n", err)
			os.Exit(1)
		}
		pruner.Start()
		logger.Info("retention pruning scheduled", "days", cfg.RetentionDays)
	}

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Handler(),
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	if pruner != nil {
		<-pruner.Stop().Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
