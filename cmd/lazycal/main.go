package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/Joseda-hg/lazycal/internal/calendar"
	"github.com/Joseda-hg/lazycal/internal/config"
	"github.com/Joseda-hg/lazycal/internal/db"
	"github.com/Joseda-hg/lazycal/internal/logging"
	"github.com/Joseda-hg/lazycal/internal/model"
	"github.com/Joseda-hg/lazycal/internal/session"
	"github.com/Joseda-hg/lazycal/internal/tui"
	"github.com/Joseda-hg/lazycal/internal/web"
)

func main() {
	configPathFlag := flag.String("config", "", "config file path (.json, .yaml or .toml)")
	webFlag := flag.Bool("web", false, "serve the web adapter instead of the terminal UI")
	portFlag := flag.Int("port", 0, "web server port")
	monthFlag := flag.String("month", "", "initial month (YYYY-MM)")
	logLevelFlag := flag.String("log-level", "", "log level (debug, info, warn, error)")
	flag.Parse()

	cfgPath, err := resolveConfigPath(*configPathFlag)
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := prepareConfig(cfgPath, overrides{
		web:      *webFlag,
		port:     *portFlag,
		month:    *monthFlag,
		logLevel: *logLevelFlag,
	})
	if err != nil {
		log.Fatal(err)
	}

	sessionID := uuid.NewString()
	logger, closer, err := logging.New(logging.Config{
		Level:     cfg.LogLevel,
		Path:      cfg.LogPath,
		SessionID: sessionID,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer closer.Close()

	if err := run(cfg, sessionID, logger); err != nil {
		logger.Error("lazycal stopped", "err", err)
		fmt.Fprintln(os.Stderr, err)
		closer.Close()
		os.Exit(1)
	}
}

func run(cfg config.Config, sessionID string, logger *slog.Logger) error {
	sqlDB, err := db.Open(db.MemoryPath)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	store := calendar.NewStore()
	journal := db.NewJournal(sqlDB, sessionID)
	store.Subscribe(journal.Observer(logger))

	mode, err := model.ParseFilterMode(cfg.DefaultFilter)
	if err != nil {
		return err
	}
	sess := session.New(store, session.WithLogger(logger), session.WithFilterMode(mode))

	weekStart := calendar.ParseWeekStart(cfg.WeekStart)
	var month time.Time
	if cfg.InitialMonth != "" {
		month, err = calendar.ParseMonth(cfg.InitialMonth, time.Local)
		if err != nil {
			return err
		}
	}

	logger.Info("lazycal starting", "web", cfg.WebEnabled, "week_start", weekStart.String(), "filter", string(mode))

	if cfg.WebEnabled {
		return serve(cfg.WebPort, web.NewServer(sess, journal, web.Options{WeekStart: weekStart, Logger: logger}), logger)
	}

	return tui.Run(sess, journal, tui.Options{
		WeekStart:  weekStart,
		Month:      month,
		ExportPath: cfg.ExportPath,
		Logger:     logger,
	})
}

func serve(port int, server *web.Server, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	httpServer := &http.Server{Addr: addr, Handler: server.Handler(), ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("web server running", "url", "http://"+addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("web server shutting down")
	return httpServer.Shutdown(shutdownCtx)
}

type overrides struct {
	web      bool
	port     int
	month    string
	logLevel string
}

// prepareConfig loads the config, applies flag overrides and saves it back.
// Runtime-only defaults are filled in after the save.
func prepareConfig(cfgPath string, flags overrides) (config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, err
	}

	if flags.web {
		cfg.WebEnabled = true
	}
	if flags.port != 0 {
		cfg.WebPort = flags.port
	}
	if flags.month != "" {
		if _, err := calendar.ParseMonth(flags.month, time.Local); err != nil {
			return config.Config{}, err
		}
		cfg.InitialMonth = flags.month
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return config.Config{}, err
	}

	// web mode keeps stderr
	if cfg.LogPath == "" && !cfg.WebEnabled {
		cfg.LogPath = filepath.Join(filepath.Dir(cfgPath), "lazycal.log")
	}
	return cfg, nil
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}
