package main

// Flag structs decouple cobra wiring from command logic for testing.

// SessionFlags holds the parameters shared by start and run.
type SessionFlags struct {
	ConfigPath string
	Interval   string
	Amplitude  int
	Duration   string
	Pattern    string
	StateDir   string
	DryRun     bool
}

type StartFlags struct {
	SessionFlags
	Force bool
}

type RunFlags struct {
	SessionFlags
	HistoryDSN    string
	MetricsListen string
	Verbose       bool
}

type StopFlags struct {
	ConfigPath string
	StateDir   string
}

type StatusFlags struct {
	ConfigPath string
	StateDir   string
}
