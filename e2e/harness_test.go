// ABOUTME: PTY harness for driving the real easel binary in e2e tests
// ABOUTME: Builds the binary once, runs it under a pseudo-terminal, polls output

package e2e

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
)

var buildOnce = sync.OnceValues(func() (string, error) {
	dir, err := os.MkdirTemp("", "easel-e2e-*")
	if err != nil {
		return "", err
	}
	bin := filepath.Join(dir, "easel")
	cmd := exec.Command("go", "build", "-o", bin, "github.com/easelhq/easel/cmd/easel")
	cmd.Dir = ".."
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("building easel: %v\n%s", err, out)
	}
	return bin, nil
})

// session is one running easel instance attached to a pty.
type session struct {
	ptm  *os.File
	cmd  *exec.Cmd
	done chan error

	mu     sync.Mutex
	output strings.Builder
}

// startEasel builds (once) and launches the binary against backendURL.
// HOME points at a throwaway dir so real config never leaks in.
func startEasel(t *testing.T, backendURL string, args ...string) *session {
	t.Helper()
	bin, err := buildOnce()
	if err != nil {
		t.Fatal(err)
	}

	cmd := exec.Command(bin, args...)
	cmd.Env = append(os.Environ(),
		"EASEL_BACKEND="+backendURL,
		"HOME="+t.TempDir(),
		"TERM=xterm-256color",
	)

	ptm, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: 24, Cols: 80})
	if err != nil {
		t.Fatalf("starting under pty: %v", err)
	}

	s := &session{ptm: ptm, cmd: cmd, done: make(chan error, 1)}
	go func() { s.done <- cmd.Wait() }()
	go s.readOutput()

	t.Cleanup(s.close)
	return s
}

func (s *session) readOutput() {
	buf := make([]byte, 4096)
	for {
		n, err := s.ptm.Read(buf)
		if n > 0 {
			s.mu.Lock()
			s.output.Write(buf[:n])
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (s *session) snapshot() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output.String()
}

func (s *session) send(t *testing.T, text string) {
	t.Helper()
	if _, err := s.ptm.WriteString(text); err != nil {
		t.Fatalf("writing to pty: %v", err)
	}
}

func (s *session) sendCtrl(t *testing.T, c byte) {
	t.Helper()
	s.send(t, string(c-'a'+1))
}

// expectString waits until the accumulated output contains want.
func (s *session) expectString(t *testing.T, want string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !strings.Contains(s.snapshot(), want) {
		if time.Now().After(deadline) {
			t.Fatalf("output never contained %q; got:\n%s", want, s.snapshot())
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func (s *session) waitExit(t *testing.T, timeout time.Duration) {
	t.Helper()
	select {
	case <-s.done:
	case <-time.After(timeout):
		t.Fatalf("process did not exit; output:\n%s", s.snapshot())
	}
}

func (s *session) close() {
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.ptm.Close()
	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
	}
}
