// Package statedir owns the on-disk control files shared between the CLI
// process and the background jiggle process: the Instance Record
// (jiggler.pid), the Stop Flag (STOP) and the diagnostic log (run.log).
//
// Both processes touch these files concurrently, so every record write is a
// write-to-temp-plus-rename so a reader never observes a half-written PID.
// Reads treat "file does not exist" as the empty case, not an error.
package statedir

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/loykin/jiggler/internal/logger"
)

// ErrUnavailable is returned when the state directory cannot be created or
// accessed. The underlying OS error is wrapped.
var ErrUnavailable = errors.New("state directory unavailable")

const (
	pidFileName  = "jiggler.pid"
	stopFileName = "STOP"
	logFileName  = "run.log"

	// EnvStateDir overrides the default per-user location.
	EnvStateDir = "JIGGLER_STATE_DIR"
)

// Record is the persisted identity of the running background instance.
// StartUnix is the process start time; it lets readers detect PID reuse the
// same way an extended pidfile does.
type Record struct {
	PID       int
	StartUnix int64
	StartedAt time.Time
}

type recordMeta struct {
	StartUnix int64     `json:"start_unix"`
	StartedAt time.Time `json:"started_at"`
}

// Dir is a handle to the resolved state directory.
type Dir struct {
	path string
}

// DefaultPath resolves the fixed per-user state directory without creating it.
func DefaultPath() string {
	if p := os.Getenv(EnvStateDir); p != "" {
		return p
	}
	if runtime.GOOS == "windows" {
		if root := os.Getenv("LOCALAPPDATA"); root != "" {
			return filepath.Join(root, "Jiggler")
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".jiggler"
	}
	return filepath.Join(home, ".jiggler")
}

// Open resolves and lazily creates the state directory. An empty path selects
// the default per-user location.
func Open(path string) (*Dir, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	// MkdirAll succeeds on an existing dir we cannot write; probe explicitly
	// so start/stop fail early with a usable message.
	probe := filepath.Join(path, ".probe")
	f, err := os.OpenFile(probe, os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	_ = f.Close()
	_ = os.Remove(probe)
	return &Dir{path: path}, nil
}

// Path returns the absolute state directory path.
func (d *Dir) Path() string { return d.path }

func (d *Dir) pidPath() string  { return filepath.Join(d.path, pidFileName) }
func (d *Dir) stopPath() string { return filepath.Join(d.path, stopFileName) }

// LogPath returns the diagnostic log location inside the state directory.
func (d *Dir) LogPath() string { return filepath.Join(d.path, logFileName) }

// WritePID persists the Instance Record, overwriting any existing one.
// Format follows the extended pidfile convention: first line is the PID,
// second line is JSON metadata used to detect PID reuse.
func (d *Dir) WritePID(rec Record) error {
	meta, err := json.Marshal(recordMeta{StartUnix: rec.StartUnix, StartedAt: rec.StartedAt})
	if err != nil {
		return err
	}
	content := strconv.Itoa(rec.PID) + "\n" + string(meta) + "\n"

	tmp, err := os.CreateTemp(d.path, pidFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, d.pidPath()); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// ReadPID returns the recorded instance, or nil when the record is absent or
// unreadable. A malformed record is treated as absent rather than an error so
// a torn state never wedges the CLI.
func (d *Dir) ReadPID() *Record {
	b, err := os.ReadFile(d.pidPath())
	if err != nil {
		return nil
	}
	pidLine, rest, _ := strings.Cut(strings.ReplaceAll(string(b), "\r\n", "\n"), "\n")
	pid, err := strconv.Atoi(strings.TrimSpace(pidLine))
	if err != nil || pid <= 0 {
		return nil
	}
	rec := &Record{PID: pid}
	rest = strings.TrimSpace(rest)
	if rest != "" {
		var m recordMeta
		if err := json.Unmarshal([]byte(rest), &m); err == nil {
			rec.StartUnix = m.StartUnix
			rec.StartedAt = m.StartedAt
		}
	}
	return rec
}

// ClearPID removes the Instance Record. Idempotent.
func (d *Dir) ClearPID() error {
	err := os.Remove(d.pidPath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RaiseStopFlag creates the Stop Flag marker. Idempotent.
func (d *Dir) RaiseStopFlag() error {
	f, err := os.OpenFile(d.stopPath(), os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return f.Close()
}

// ClearStopFlag removes the Stop Flag. Idempotent.
func (d *Dir) ClearStopFlag() error {
	err := os.Remove(d.stopPath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// StopFlagRaised reports whether a graceful stop has been requested.
func (d *Dir) StopFlagRaised() bool {
	_, err := os.Stat(d.stopPath())
	return err == nil
}

// LogWriter returns a rotating writer for run.log. Logging is best-effort:
// callers must never let a log failure abort the controlling operation, which
// is why this cannot fail (lumberjack defers file creation to first write).
func (d *Dir) LogWriter(cfg logger.FileConfig) io.WriteCloser {
	cfg.Path = d.LogPath()
	return cfg.Writer()
}
