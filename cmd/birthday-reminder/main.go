package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"fyne.io/fyne/v2/app"
	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/contacts"
	"github.com/tartampluch/birthday-reminder/internal/engine"
	"github.com/tartampluch/birthday-reminder/internal/gateway"
	"github.com/tartampluch/birthday-reminder/internal/lifecycle"
	"github.com/tartampluch/birthday-reminder/internal/people"
	"github.com/tartampluch/birthday-reminder/internal/server"
	"github.com/tartampluch/birthday-reminder/internal/store"
	"github.com/tartampluch/birthday-reminder/internal/ui"
)

// main delegates to runMain so that deferred closes run before os.Exit.
func main() {
	os.Exit(runMain())
}

func runMain() int {
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	logCloser := setupLogging(*debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close()
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	if err := run(ctx); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run opens the stores, wires the engine and its triggers, then blocks in the UI loop.
func run(ctx context.Context) error {
	rt, err := config.Load()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(rt.DataDir, config.DirPermUserRWX); err != nil {
		return fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	records, err := store.Open(filepath.Join(rt.DataDir, config.NotificationsDBFile))
	if err != nil {
		return err
	}
	defer func() { _ = records.Close() }()

	persons, err := people.Open(filepath.Join(rt.DataDir, config.PeopleDBFile))
	if err != nil {
		return err
	}
	defer func() { _ = persons.Close() }()

	a := app.NewWithID(config.AppID)
	prefs := a.Preferences()
	prefs.SetString(config.PrefLastRun, config.Version)
	if rt.Language != "" {
		prefs.SetString(config.PrefLanguage, rt.Language)
	}

	port := rt.FeedPort
	if port == "" {
		port = prefs.StringWithFallback(config.PrefServerPort, config.DefaultPort)
	}

	gw := gateway.NewLocal(gateway.FyneNotifier{App: a})
	defer gw.Close()

	sched := engine.New(engine.Deps{
		Store:   records,
		People:  persons,
		Gateway: gw,
	})

	// gui is assigned before any trigger can fire: Launch runs from gui.Run.
	var gui *ui.ReminderApp
	svc := lifecycle.New(sched, persons, lifecycle.Options{
		Importer: contacts.NewImporter(),
		AfterChange: func(ctx context.Context, trigger string) {
			if gui != nil {
				gui.Refresh(ctx, trigger)
			}
		},
	})

	gui = ui.NewReminderApp(a, ctx, ui.Deps{
		Engine:    sched,
		Lifecycle: svc,
		People:    persons,
		Server:    server.NewFeedServer(port),
	})

	worker := lifecycle.NewWorker(svc, rt.ReconcileInterval)
	if err := worker.Start(ctx); err != nil {
		return err
	}
	defer worker.Stop()

	go func() {
		<-ctx.Done()
		slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
		a.Quit()
	}()

	gui.Run()
	return nil
}

func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyCommit, config.Commit),
			slog.String(config.LogKeyDate, config.Date),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging writes JSON logs to stdout and, when possible, to a file in
// the user cache directory that is truncated on every start.
func setupLogging(debugMode bool) io.Closer {
	writers := []io.Writer{os.Stdout}
	var logFile *os.File

	if logPath, err := logFilePath(); err == nil {
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

func logFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}
	return filepath.Join(appDir, config.LogFileName), nil
}
