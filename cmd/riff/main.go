package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alexanderramin/riff/internal/alert"
	"github.com/alexanderramin/riff/internal/cli"
	"github.com/alexanderramin/riff/internal/config"
	"github.com/alexanderramin/riff/internal/db"
	"github.com/alexanderramin/riff/internal/mirror"
	"github.com/alexanderramin/riff/internal/repository"
	"github.com/alexanderramin/riff/internal/store"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kv := repository.NewSQLiteKVRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	opts := []store.Option{
		store.WithLogger(logger),
		store.WithObserver(store.NewLogUseCaseObserver(logger)),
	}

	// Mirroring is optional; without it every command works on local data.
	var accounts cli.Accounts
	if cfg.Mirror.Enabled {
		client := mirror.NewClient(cfg.Mirror.URL,
			mirror.WithTimeout(cfg.Mirror.Timeout()),
			mirror.WithLogger(logger),
		)
		probe := mirror.NewProbe(client, cfg.Mirror.ProbeInterval())
		probe.Check(ctx)
		go probe.Run(ctx)

		opts = append(opts, store.WithMirror(client, probe), store.WithPushTimeout(cfg.Mirror.Timeout()))
		accounts = client
	}

	st, err := store.Open(ctx, kv, opts...)
	if err != nil {
		return fmt.Errorf("loading data: %w", err)
	}
	defer st.Close()

	app := &cli.App{
		Store:       st,
		KV:          kv,
		UoW:         uow,
		Accounts:    accounts,
		Logger:      logger,
		SyncTimeout: cfg.Mirror.Timeout(),
	}

	if cfg.Alert {
		bell := alert.NewBell(os.Stdout)
		defer bell.Wait()
		app.Notifier = bell
	}

	// Detect interactive terminal for forms and the session view.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	if accounts != nil {
		if err := app.ConnectSaved(ctx); err != nil {
			logger.Info("using local data", "reason", err)
		}
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

// newLogger writes text logs to the configured file, or to stderr.
func newLogger(cfg config.Log) (*slog.Logger, func(), error) {
	var w io.Writer = os.Stderr
	closeFn := func() {}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	return slog.New(handler), closeFn, nil
}
