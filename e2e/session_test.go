// ABOUTME: E2E tests for the easel binary against the fake studio backend
// ABOUTME: Interactive runs go through a real PTY; print runs through pipes

package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func TestInteractive_ConnectsAndQuits(t *testing.T) {
	if testing.Short() {
		t.Skip("e2e tests skipped in short mode")
	}

	backend := newFakeStudio(t)
	s := startEasel(t, backend.server.URL)

	s.expectString(t, "connected", 10*time.Second)

	// Ctrl+C while idle exits.
	s.sendCtrl(t, 'c')
	s.waitExit(t, 5*time.Second)
}

func TestInteractive_SubmitEchoesCompletion(t *testing.T) {
	if testing.Short() {
		t.Skip("e2e tests skipped in short mode")
	}

	backend := newFakeStudio(t)
	s := startEasel(t, backend.server.URL)

	s.expectString(t, "connected", 10*time.Second)

	s.send(t, "hello there")
	s.expectString(t, "hello there", 5*time.Second)
	s.send(t, "\r")

	s.expectString(t, "echo: hello there", 10*time.Second)
	if !backend.sentContains("hello there") {
		t.Errorf("backend never received the message; sent = %v", backend.sentMessages())
	}
}

func TestPrint_TextFormat(t *testing.T) {
	if testing.Short() {
		t.Skip("e2e tests skipped in short mode")
	}

	backend := newFakeStudio(t)
	bin, err := buildOnce()
	if err != nil {
		t.Fatal(err)
	}

	cmd := exec.Command(bin, "-p", "--timeout", "15s", "hi from print")
	cmd.Env = append(os.Environ(),
		"EASEL_BACKEND="+backend.server.URL,
		"HOME="+t.TempDir(),
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr

	if err := cmd.Run(); err != nil {
		t.Fatalf("print run: %v\nstderr: %s", err, stderr.String())
	}
	if got := stdout.String(); got != "echo: hi from print\n" {
		t.Errorf("stdout = %q", got)
	}
	if !strings.Contains(stderr.String(), "[tool: echo]") {
		t.Errorf("stderr = %q, want tool progress", stderr.String())
	}
}

func TestPrint_StreamJSONFormat(t *testing.T) {
	if testing.Short() {
		t.Skip("e2e tests skipped in short mode")
	}

	backend := newFakeStudio(t)
	bin, err := buildOnce()
	if err != nil {
		t.Fatal(err)
	}

	cmd := exec.Command(bin, "-p", "--output-format", "stream-json", "--timeout", "15s", "go")
	cmd.Env = append(os.Environ(),
		"EASEL_BACKEND="+backend.server.URL,
		"HOME="+t.TempDir(),
	)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		t.Fatalf("print run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) < 3 {
		t.Fatalf("too few event lines: %q", stdout.String())
	}
	if !strings.Contains(lines[0], `"start"`) || !strings.Contains(lines[len(lines)-1], `"end"`) {
		t.Errorf("stream framing wrong: %q", lines)
	}
}
