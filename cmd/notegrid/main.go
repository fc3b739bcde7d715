package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/marcus/notegrid/internal/app"
	"github.com/marcus/notegrid/internal/config"
	"github.com/marcus/notegrid/internal/coordinator"
	"github.com/marcus/notegrid/internal/event"
	"github.com/marcus/notegrid/internal/labels"
	"github.com/marcus/notegrid/internal/note"
	"github.com/marcus/notegrid/internal/remote"
	"github.com/marcus/notegrid/internal/state"
	"github.com/marcus/notegrid/internal/storage"
	"github.com/marcus/notegrid/internal/undo"
	"github.com/marcus/notegrid/internal/version"
)

// Version is set at build time via ldflags
var Version = ""

const shutdownTimeout = 5 * time.Second

var (
	configPath   = flag.String("config", "", "path to config file")
	logPath      = flag.String("log", "", "write logs to this file")
	debugFlag    = flag.Bool("debug", false, "enable debug logging")
	versionFlag  = flag.Bool("version", false, "print version and exit")
	shortVersion = flag.Bool("v", false, "print version and exit (short)")
)

func main() {
	flag.Parse()

	if *versionFlag || *shortVersion {
		fmt.Printf("notegrid version %s\n", version.Effective(Version))
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "notegrid: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger, closeLog, err := setupLogger(*logPath, *debugFlag)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closeLog()

	cfgFile := *configPath
	if cfgFile == "" {
		cfgFile = config.ConfigPath()
	}
	cfg, err := config.LoadFrom(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// State is optional
	if err := state.Init(); err != nil {
		logger.Warn("state load failed", "error", err)
	}

	ctx := context.Background()
	db, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path, uuid.NewString())
	if err != nil {
		return err
	}
	defer db.Close()

	initial, err := db.LoadState(ctx)
	if err != nil {
		return fmt.Errorf("load notes: %w", err)
	}
	known, err := db.ListLabels(ctx)
	if err != nil {
		return fmt.Errorf("load labels: %w", err)
	}
	reg := labels.NewRegistry(known...)
	reg.Recount(initial)

	bus := event.NewWithLogger(logger)
	defer bus.Close()

	store, err := note.NewStore(initial, bus)
	if err != nil {
		return err
	}
	dispatcher := remote.NewDispatcher(db, bus, logger)
	undoCtl := undo.New(undo.WithWindows(cfg.Undo.Window, cfg.Undo.WindowNoUndo))
	coord := coordinator.New(coordinator.Config{
		Store:  store,
		Undo:   undoCtl,
		Remote: dispatcher,
		Labels: reg,
		Logger: logger,
		UserID: cfg.Session.UserID,
	})

	model := app.New(app.Options{
		Config: cfg,
		Store:  store,
		Coord:  coord,
		Undo:   undoCtl,
		Labels: reg,
		Logger: logger,
		CreateLabel: func(l labels.Label) error {
			return db.CreateLabel(ctx, l)
		},
		NewID: uuid.NewString,
	})
	unsubscribe := model.Subscribe(bus)
	defer unsubscribe()

	if cfgFile != "" {
		w, err := config.Watch(cfgFile, logger, func(next *config.Config) {
			bus.Publish(event.Event{Type: event.ConfigReloaded, Data: next})
		})
		if err != nil {
			logger.Warn("config watch failed", "path", cfgFile, "error", err)
		} else {
			defer w.Close()
		}
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, runErr := p.Run()

	// Let queued writes land before the database closes.
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Warn("pending writes not saved", "error", err)
	}

	if runErr != nil {
		return fmt.Errorf("run: %w", runErr)
	}
	return nil
}

// setupLogger logs to path, or nowhere when path is empty since the TUI owns
// the terminal.
func setupLogger(path string, debug bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	var w io.Writer = io.Discard
	closeFn := func() {}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w = f
		closeFn = func() { f.Close() }
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, closeFn, nil
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: notegrid [options]\n\n")
		fmt.Fprintf(os.Stderr, "A keyboard and mouse driven note board for the terminal.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
}
