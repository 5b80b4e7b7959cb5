package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/loykin/jiggler/internal/controller"
	"github.com/loykin/jiggler/internal/history"
	"github.com/loykin/jiggler/internal/history/factory"
	"github.com/loykin/jiggler/internal/logger"
	"github.com/loykin/jiggler/internal/metrics"
	"github.com/loykin/jiggler/internal/pointer"
	"github.com/loykin/jiggler/internal/power"
	"github.com/loykin/jiggler/internal/statedir"
)

type command struct{}

// Start resolves the session, admits it against the state directory and
// spawns the detached background process.
func (c command) Start(f StartFlags) error {
	s, err := resolveSession(f.SessionFlags)
	if err != nil {
		return err
	}
	dir, err := statedir.Open(s.StateDir)
	if err != nil {
		return err
	}

	ctrl := controller.New(controller.Options{
		Dir:    dir,
		Logger: fileLogger(dir, s.LogCfg),
		Spawner: daemonSpawner{
			stateDir:      s.StateDir,
			historyDSN:    s.HistoryDSN,
			metricsListen: s.MetricsListen,
		},
	})

	out, err := ctrl.Start(s.Cfg, f.Force)
	if err != nil {
		return err
	}
	if !out.Confirmed {
		fmt.Fprintf(os.Stderr, "Launched (pid=%d), but PID not confirmed; check with `jiggler status`.\n", out.PID)
		return nil
	}
	fmt.Printf("Started (pid=%d).\n", out.PID)
	return nil
}

// Stop raises the Stop Flag and returns without waiting for the background
// process to exit.
func (c command) Stop(f StopFlags) error {
	dir, err := openStateDir(f.ConfigPath, f.StateDir)
	if err != nil {
		return err
	}
	ctrl := controller.New(controller.Options{Dir: dir})
	if err := ctrl.Stop(); err != nil {
		return err
	}
	fmt.Println("Stop requested.")
	return nil
}

// Status reports the observed instance state. It always succeeds; a broken
// state directory is the only error.
func (c command) Status(f StatusFlags) error {
	dir, err := openStateDir(f.ConfigPath, f.StateDir)
	if err != nil {
		return err
	}
	ctrl := controller.New(controller.Options{Dir: dir})
	info := ctrl.Status()
	switch info.State {
	case controller.StateIdle:
		fmt.Println(controller.StateIdle)
	default:
		if !info.StartedAt.IsZero() {
			fmt.Printf("%s (pid=%d, since %s)\n", info.State, info.PID, info.StartedAt.Format(time.RFC3339))
		} else {
			fmt.Printf("%s (pid=%d)\n", info.State, info.PID)
		}
	}
	return nil
}

// Run executes the jiggle loop in the foreground until the Stop Flag is
// raised, the duration elapses, or a termination signal arrives.
func (c command) Run(f RunFlags) error {
	s, err := resolveSession(f.SessionFlags)
	if err != nil {
		return err
	}
	if f.HistoryDSN != "" {
		s.HistoryDSN = f.HistoryDSN
	}
	if f.MetricsListen != "" {
		s.MetricsListen = f.MetricsListen
	}

	dir, err := statedir.Open(s.StateDir)
	if err != nil {
		return err
	}

	var log *slog.Logger
	if f.Verbose {
		log = logger.NewInteractive(slog.LevelDebug)
	} else {
		log = fileLogger(dir, s.LogCfg)
	}

	var sink history.Sink
	if s.HistoryDSN != "" {
		sink, err = factory.NewSinkFromDSN(s.HistoryDSN)
		if err != nil {
			log.Warn("history sink disabled", "error", err)
		} else if cl, ok := sink.(io.Closer); ok {
			defer func() { _ = cl.Close() }()
		}
	}

	if s.MetricsListen != "" {
		if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
			log.Warn("metrics registration failed", "error", err)
		} else {
			go serveMetrics(s.MetricsListen, log)
		}
	}

	ctrl := controller.New(controller.Options{
		Dir:       dir,
		Mover:     pointer.System{},
		Logger:    log,
		History:   sink,
		Inhibitor: power.New(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return ctrl.RunLoop(ctx, s.Cfg)
}

func serveMetrics(listen string, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warn("metrics server stopped", "error", err)
	}
}
