// Package main is the entry point for the cropadvisor terminal client.
//
// It loads configuration from the environment, builds the API client,
// translator and feedback surfaces once, and injects them into the app
// shell. One-shot subcommands print a single pane; the interactive shell
// keeps the session alive and switches between tabs.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"cropadvisor/internal/app"
	"cropadvisor/internal/config"
	"cropadvisor/internal/external"
	"cropadvisor/internal/feedback"
	"cropadvisor/internal/i18n"
	"cropadvisor/internal/prefs"
	"cropadvisor/internal/render"
	"cropadvisor/internal/types"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := newRootCmd(newCLI(os.Stdin, os.Stdout, os.Stderr)).ExecuteContext(ctx)
	if err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints what the user has not already seen. Module failures
// and rejected images were surfaced as notifications when they happened.
func reportError(w io.Writer, err error) {
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		fmt.Fprintf(w, "fatal: %v\n", err)
		return
	}
	if msg, ok := inputError(appErr); ok {
		fmt.Fprintln(w, msg)
	}
}

// inputError returns the message of argument errors that no module
// notification covers.
func inputError(appErr *types.AppError) (string, bool) {
	switch appErr.Code {
	case types.ErrCodeValidationInvalidSelect, types.ErrCodeValidationLanguage:
		return appErr.Message, true
	}
	return "", false
}

// cli carries the process-wide state shared by subcommands.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	cfg    *config.Config
	logger *slog.Logger
	api    *external.APIClient

	// Flag values.
	lang        string
	retranslate bool
}

func newCLI(in io.Reader, out, errOut io.Writer) *cli {
	return &cli{in: in, out: out, errOut: errOut}
}

// setup loads configuration and builds the API client.
func (c *cli) setup() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	c.cfg = cfg
	c.logger = newLogger(c.errOut, cfg.LogLevel)

	base := external.NewBaseClient(
		external.NewHTTPClient(cfg.HTTP.Timeout),
		"crop-health-api",
		external.RetryPolicy{
			MaxRetries: cfg.HTTP.MaxRetries,
			MinWait:    cfg.HTTP.MinWait,
			MaxWait:    cfg.HTTP.MaxWait,
		},
		cfg.HTTP.UserAgent,
	)
	c.api = external.NewAPIClient(base, cfg.BaseURL(), c.logger)

	c.logger.Debug("cropadvisor starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"base_url", c.api.BaseURL(),
	)
	return nil
}

// newShell builds the app shell with mods as the initial selections.
func (c *cli) newShell(mods config.ModulesConfig) (*app.Shell, error) {
	tables, err := i18n.LoadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("loading translations: %w", err)
	}
	translator := i18n.New(tables, c.logger)

	loading := feedback.NewLoading(func(visible bool, message string) {
		if visible {
			fmt.Fprintln(c.errOut, render.Muted("… "+message))
		}
	})
	notifier := feedback.NewNotifier(
		feedback.WithTTL(c.cfg.Feedback.NotifyTTL),
		feedback.OnShow(func(n feedback.Notification) {
			fmt.Fprintln(c.errOut, render.Leveled(n.Level, n.Message))
		}),
	)

	shell, err := app.New(app.Options{
		Backend:            c.api,
		Translator:         translator,
		Prefs:              prefs.NewFileStore(c.cfg.PrefsPath()),
		Loading:            loading,
		Notifier:           notifier,
		Charter:            render.TextChart{},
		Logger:             c.logger,
		Modules:            mods,
		RetranslateDynamic: c.retranslate,
	})
	if err != nil {
		return nil, err
	}

	// --lang applies to this invocation only.
	if c.lang != "" {
		if err := translator.SetLanguage(types.Language(c.lang)); err != nil {
			shell.Close()
			return nil, err
		}
	}
	return shell, nil
}

// printPane writes the titled content of tab.
func (c *cli) printPane(shell *app.Shell, tab types.Tab) {
	fmt.Fprintln(c.out, render.Heading("== "+shell.TabTitle(tab)+" =="))
	fmt.Fprintln(c.out, shell.Module(tab).Pane().String())
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: false,
	})
	return slog.New(handler)
}
