// SPDX-License-Identifier: MPL-2.0

package sshserver

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
)

type (
	idleModel struct{}

	fakeSession struct {
		ssh.Session
		stderr bytes.Buffer
		exit   int
	}
)

func (idleModel) Init() tea.Cmd { return nil }

func (m idleModel) Update(tea.Msg) (tea.Model, tea.Cmd) { return m, tea.Quit }

func (idleModel) View() string { return "" }

func (f *fakeSession) Stderr() io.ReadWriter { return &f.stderr }

func (f *fakeSession) Exit(code int) error {
	f.exit = code
	return nil
}

func (f *fakeSession) User() string { return "guest" }

func (f *fakeSession) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40000}
}

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Port = 0
	cfg.HostKeyPath = filepath.Join(t.TempDir(), "host_key")
	cfg.Logger = log.New(io.Discard)
	cfg.Handler = func(ssh.Session) (tea.Model, []tea.ProgramOption) {
		return idleModel{}, nil
	}
	return cfg
}

func mustStop(t *testing.T, srv *Server) {
	t.Helper()
	if err := srv.Stop(); err != nil {
		t.Errorf("Stop() = %v", err)
	}
}

func TestServerStartStop(t *testing.T) {
	t.Parallel()

	srv := New(testConfig(t))
	if srv.State() != StateCreated {
		t.Errorf("State() = %s, want %s", srv.State(), StateCreated)
	}
	if srv.IsRunning() {
		t.Error("server should not be running before Start()")
	}

	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if srv.State() != StateRunning {
		t.Errorf("State() = %s, want %s", srv.State(), StateRunning)
	}
	if srv.Port() == 0 {
		t.Error("Port() = 0, want an assigned port")
	}
	if srv.Address() == "" {
		t.Error("Address() is empty")
	}

	if err := srv.Stop(); err != nil {
		t.Fatalf("Stop() = %v", err)
	}
	if srv.State() != StateStopped {
		t.Errorf("State() = %s, want %s", srv.State(), StateStopped)
	}
	if err := srv.Wait(); err != nil {
		t.Errorf("Wait() = %v, want nil", err)
	}
}

func TestServerDoubleStart(t *testing.T) {
	t.Parallel()

	srv := New(testConfig(t))
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	defer mustStop(t, srv)

	if err := srv.Start(context.Background()); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second Start() = %v, want %v", err, ErrInvalidState)
	}
}

func TestServerDoubleStop(t *testing.T) {
	t.Parallel()

	srv := New(testConfig(t))
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if err := srv.Stop(); err != nil {
		t.Fatalf("first Stop() = %v", err)
	}
	if err := srv.Stop(); err != nil {
		t.Errorf("second Stop() = %v, want nil", err)
	}
}

func TestServerPortInUse(t *testing.T) {
	t.Parallel()

	var lc net.ListenConfig
	l, err := lc.Listen(context.Background(), "tcp", "localhost:0")
	if err != nil {
		t.Fatalf("Listen() = %v", err)
	}
	defer l.Close()

	cfg := testConfig(t)
	cfg.Port = l.Addr().(*net.TCPAddr).Port
	srv := New(cfg)
	if err := srv.Start(context.Background()); err == nil {
		mustStop(t, srv)
		t.Fatal("Start() on a used port should fail")
	}
	if srv.State() != StateFailed {
		t.Errorf("State() = %s, want %s", srv.State(), StateFailed)
	}
	if err := srv.Wait(); err == nil {
		t.Error("Wait() = nil, want the startup error")
	}
}

func TestServerStartWithCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srv := New(testConfig(t))
	if err := srv.Start(ctx); err == nil {
		mustStop(t, srv)
		t.Fatal("Start() with a cancelled context should fail")
	}
	if srv.State() != StateFailed {
		t.Errorf("State() = %s, want %s", srv.State(), StateFailed)
	}
}

func TestServerStartWithoutHandler(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Handler = nil
	srv := New(cfg)
	if err := srv.Start(context.Background()); !errors.Is(err, ErrNoHandler) {
		t.Errorf("Start() = %v, want %v", err, ErrNoHandler)
	}
}

func TestStopWithoutStart(t *testing.T) {
	t.Parallel()

	srv := New(testConfig(t))
	if err := srv.Stop(); err != nil {
		t.Errorf("Stop() = %v, want nil", err)
	}
	if srv.State() != StateStopped {
		t.Errorf("State() = %s, want %s", srv.State(), StateStopped)
	}
}

func TestSingleSession(t *testing.T) {
	t.Parallel()

	srv := New(testConfig(t))
	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	handler := srv.singleSession()(func(ssh.Session) {
		close(entered)
		<-release
	})

	first := &fakeSession{}
	go func() {
		defer close(done)
		handler(first)
	}()
	<-entered

	if !srv.Busy() {
		t.Error("Busy() = false while a session is active")
	}

	second := &fakeSession{}
	handler(second)
	if second.exit != 1 {
		t.Errorf("refused session exit = %d, want 1", second.exit)
	}
	if got := second.stderr.String(); got != BusyMessage {
		t.Errorf("refused session stderr = %q, want %q", got, BusyMessage)
	}

	close(release)
	<-done
	if srv.Busy() {
		t.Error("Busy() = true after the session ended")
	}
	if first.exit != 0 {
		t.Errorf("first session exit = %d, want 0", first.exit)
	}
}

func TestServerStateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state ServerState
		want  string
	}{
		{StateCreated, "created"},
		{StateStarting, "starting"},
		{StateRunning, "running"},
		{StateStopping, "stopping"},
		{StateStopped, "stopped"},
		{StateFailed, "failed"},
		{ServerState(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("ServerState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestIsClosedConnError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("something"), false},
		{"net.ErrClosed", net.ErrClosed, true},
		{"wrapped net.ErrClosed", errors.Join(errors.New("ctx"), net.ErrClosed), true},
	}
	for _, tt := range tests {
		if got := isClosedConnError(tt.err); got != tt.want {
			t.Errorf("isClosedConnError(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
