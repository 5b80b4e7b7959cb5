package main

import (
	"log/slog"

	"github.com/loykin/jiggler/internal/config"
	"github.com/loykin/jiggler/internal/controller"
	"github.com/loykin/jiggler/internal/logger"
	"github.com/loykin/jiggler/internal/pattern"
	"github.com/loykin/jiggler/internal/statedir"
	"github.com/loykin/jiggler/internal/timespec"
)

// session is the fully resolved set of parameters for one invocation:
// config file values overridden by explicit flags.
type session struct {
	Cfg           controller.Config
	StateDir      string
	HistoryDSN    string
	MetricsListen string
	LogCfg        logger.FileConfig
}

// resolveSession merges the config file (if any) with command-line flags.
// Flags that were left at their defaults fall back to file values, which in
// turn fall back to built-in defaults.
func resolveSession(f SessionFlags) (session, error) {
	var s session

	fc, err := config.Load(f.ConfigPath)
	if err != nil {
		return s, err
	}

	intervalSpec := f.Interval
	if intervalSpec == "" {
		intervalSpec = fc.Interval
	}
	if intervalSpec == "" {
		intervalSpec = "60s"
	}
	interval, err := timespec.ParseInterval(intervalSpec)
	if err != nil {
		return s, err
	}

	amplitude := f.Amplitude
	if amplitude < 0 && fc.Amplitude != nil {
		amplitude = *fc.Amplitude
	}
	if amplitude < 0 {
		amplitude = 1
	}

	durationSpec := f.Duration
	if durationSpec == "" {
		durationSpec = fc.Duration
	}
	duration, err := timespec.ParseDeadline(durationSpec)
	if err != nil {
		return s, err
	}

	patternName := f.Pattern
	if patternName == "" {
		patternName = fc.Pattern
	}
	pat, err := pattern.ByName(patternName)
	if err != nil {
		return s, err
	}

	s.Cfg = controller.Config{
		Interval:  interval,
		Amplitude: amplitude,
		Duration:  duration,
		Pattern:   pat,
		DryRun:    f.DryRun,
	}

	s.StateDir = f.StateDir
	if s.StateDir == "" {
		s.StateDir = fc.StateDir
	}
	if s.StateDir == "" {
		s.StateDir = statedir.DefaultPath()
	}

	s.HistoryDSN = fc.HistoryDSN
	s.MetricsListen = fc.MetricsListen
	s.LogCfg = fc.Log.FileConfigFor()
	return s, nil
}

// openStateDir resolves and opens the state directory for commands that only
// need coordination files (stop, status).
func openStateDir(configPath, flagDir string) (*statedir.Dir, error) {
	fc, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	path := flagDir
	if path == "" {
		path = fc.StateDir
	}
	if path == "" {
		path = statedir.DefaultPath()
	}
	return statedir.Open(path)
}

// fileLogger builds the rotating run.log logger for a state directory.
func fileLogger(dir *statedir.Dir, cfg logger.FileConfig) *slog.Logger {
	cfg.Path = dir.LogPath()
	return logger.New(cfg.Writer(), slog.LevelInfo)
}
