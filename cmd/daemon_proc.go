package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// daemonState is written next to the pid file so that other fincast
// invocations can find the running daemon.
type daemonState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	DBPath    string    `json:"db_path"`
	ImportDir string    `json:"import_dir"`
}

// pidFile is the path of the daemon pid file. The state file lives at the
// same path with a .json suffix.
type pidFile string

func (p pidFile) statePath() string { return string(p) + ".json" }

func (p pidFile) read() (int, error) {
	data, err := os.ReadFile(string(p)) //nolint:gosec // path comes from local flags
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", p)
	}
	return pid, nil
}

// claim fails if a live daemon owns the file and clears a stale one.
func (p pidFile) claim() error {
	pid, err := p.read()
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return err
	case processAlive(pid):
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}
	p.remove()
	return os.MkdirAll(filepath.Dir(string(p)), 0o750)
}

func (p pidFile) write(st daemonState) error {
	if err := os.WriteFile(string(p), []byte(strconv.Itoa(st.PID)+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing pid file: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p.statePath(), append(data, '\n'), 0o600)
}

func (p pidFile) state() (daemonState, error) {
	var st daemonState
	data, err := os.ReadFile(p.statePath()) //nolint:gosec // path comes from local flags
	if err != nil {
		return st, err
	}
	return st, json.Unmarshal(data, &st)
}

func (p pidFile) remove() {
	_ = os.Remove(string(p))
	_ = os.Remove(p.statePath())
}

// addr is the address recorded by the running daemon, or fallback.
func (p pidFile) addr(fallback string) string {
	if st, err := p.state(); err == nil && st.Addr != "" {
		return st.Addr
	}
	return fallback
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

// waitExit polls until pid is gone or timeout elapses.
func waitExit(pid int, timeout time.Duration) bool {
	for deadline := time.Now().Add(timeout); time.Now().Before(deadline); time.Sleep(150 * time.Millisecond) {
		if !processAlive(pid) {
			return true
		}
	}
	return false
}

func withoutDetach(args []string) []string {
	out := make([]string, 0, len(args)+1)
	for _, a := range args {
		if a != "--detach" && !strings.HasPrefix(a, "--detach=") {
			out = append(out, a)
		}
	}
	return out
}
