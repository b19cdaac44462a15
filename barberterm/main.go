package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"gobarber/barberterm/internal/api"
	"gobarber/barberterm/internal/audit"
	"gobarber/barberterm/internal/config"
	"gobarber/barberterm/internal/form"
	"gobarber/barberterm/internal/prompt"
	"gobarber/barberterm/internal/security"
	"gobarber/barberterm/internal/storage"
	"gobarber/barberterm/internal/views"
)

func main() {
	route := flag.String("route", "/", "initial location, e.g. /reset-password?token=abc")
	promptMode := flag.Bool("prompt", false, "use line-mode prompts instead of the full-screen interface")
	configPath := flag.String("config", "", "config file (default <data dir>/config.yaml)")
	flag.Parse()

	if err := run(*route, *promptMode, *configPath); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(route string, promptMode bool, configPath string) error {
	store, err := storage.NewStorage()
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	if configPath == "" {
		configPath = store.ConfigPath()
	}
	cfg, err := config.LoadAppConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logFile, err := os.OpenFile(store.LogPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	logger := log.NewWithOptions(logFile, log.Options{
		ReportTimestamp: true,
		Level:           cfg.Level(),
		Prefix:          "barberterm",
	})

	client, err := api.NewClient(cfg.ToClientConfig(), api.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to initialize api client: %w", err)
	}
	defer client.Close()

	sessionConfig := security.DefaultSessionConfig()
	sessionConfig.InactivityLimit = cfg.SessionTTL
	sessions := security.NewSessionManager(store, sessionConfig,
		security.WithTokenHolder(client),
		security.WithSessionLogger(logger))
	defer sessions.Shutdown()

	if _, err := sessions.Restore(); err != nil && !errors.Is(err, security.ErrNoSession) {
		logger.Warn("previous session not restored", "err", err)
	}

	attempts := security.NewAttemptLimiter(cfg.MaxSignInAttempts)

	var recorder form.Recorder
	auditor, err := audit.NewSubmissionAuditor(store.AuditDir(),
		audit.WithLogger(logger),
		audit.WithUserID(func() string {
			if s, ok := sessions.Current(); ok {
				return s.User.ID
			}
			return ""
		}))
	if err != nil {
		logger.Warn("audit trail disabled", "err", err)
	} else {
		recorder = auditor
		defer auditor.Close()
	}

	logger.Info("starting", "api", cfg.APIURL, "route", route, "prompt", promptMode)

	if promptMode {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		runner, err := prompt.NewRunner(prompt.NewSurveyDriver(), client, sessions, os.Stdout,
			prompt.WithRecorder(recorder),
			prompt.WithAttemptGuard(attempts),
			prompt.WithLogger(logger))
		if err != nil {
			return err
		}
		if err := runner.Run(ctx, route); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}

	app, err := views.NewAppModel(views.AppDeps{
		Backend:  client,
		Sessions: sessions,
		Attempts: attempts,
		Recorder: recorder,
		Logger:   logger,
	}, route)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run application: %w", err)
	}

	return nil
}
