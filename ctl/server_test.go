package ctl

import (
	"errors"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"voxd/session"
)

// scriptedController returns canned answers so protocol behavior can be
// tested without real capture or transcription.
type scriptedController struct {
	mu        sync.Mutex
	state     session.State
	toggleErr error
	stops     int
}

func (c *scriptedController) Toggle(mode session.Mode) (session.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.toggleErr != nil {
		return "", c.toggleErr
	}
	if c.state == session.StateRecording {
		c.state = session.StateProcessing
	} else {
		c.state = session.StateRecording
	}
	return c.state, nil
}

func (c *scriptedController) Stop() session.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stops++
	if c.state == session.StateRecording || c.state == session.StateProcessing {
		c.state = ""
		return session.StateCancelled
	}
	return session.StateIdle
}

func (c *scriptedController) Status() session.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == "" {
		return session.Status{State: session.StateIdle}
	}
	return session.Status{State: c.state, Mode: session.ModeDictate, Elapsed: time.Second}
}

func startServer(t *testing.T, ctrl Controller) (*Server, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "voxd.sock")
	srv := NewServer(path, ctrl)
	if err := srv.Listen(); err != nil {
		t.Fatal(err)
	}
	go srv.Serve()
	t.Cleanup(func() { srv.Close() })
	return srv, path
}

func TestPing(t *testing.T) {
	_, path := startServer(t, &scriptedController{})
	reply, err := Send(path, "ping", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if reply != "OK" {
		t.Errorf("reply = %q", reply)
	}
}

func TestToggleReplies(t *testing.T) {
	_, path := startServer(t, &scriptedController{})

	reply, err := Send(path, "dictate", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if reply != "OK recording" {
		t.Errorf("first toggle reply = %q", reply)
	}

	reply, _ = Send(path, "dictate", time.Second)
	if reply != "OK processing" {
		t.Errorf("second toggle reply = %q", reply)
	}
}

func TestBusyReply(t *testing.T) {
	ctrl := &scriptedController{toggleErr: session.ErrBusy}
	_, path := startServer(t, ctrl)

	reply, err := Send(path, "meeting", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if reply != "BUSY" {
		t.Errorf("reply = %q", reply)
	}
}

func TestErrorReply(t *testing.T) {
	ctrl := &scriptedController{toggleErr: errors.New("audio device unavailable")}
	_, path := startServer(t, ctrl)

	reply, _ := Send(path, "dictate", time.Second)
	if !strings.HasPrefix(reply, "ERROR ") {
		t.Errorf("reply = %q", reply)
	}
}

func TestStatusAndStop(t *testing.T) {
	ctrl := &scriptedController{}
	_, path := startServer(t, ctrl)

	reply, _ := Send(path, "status", time.Second)
	if reply != "OK idle" {
		t.Errorf("idle status reply = %q", reply)
	}

	Send(path, "dictate", time.Second)
	reply, _ = Send(path, "status", time.Second)
	if !strings.Contains(reply, "recording") {
		t.Errorf("recording status reply = %q", reply)
	}

	reply, _ = Send(path, "stop", time.Second)
	if reply != "OK cancelled" {
		t.Errorf("stop reply = %q", reply)
	}
}

func TestUnknownCommand(t *testing.T) {
	_, path := startServer(t, &scriptedController{})
	reply, _ := Send(path, "fly", time.Second)
	if !strings.HasPrefix(reply, "ERROR unknown command") {
		t.Errorf("reply = %q", reply)
	}
}

func TestQuitAcksThenSignals(t *testing.T) {
	ctrl := &scriptedController{state: session.StateRecording}
	srv, path := startServer(t, ctrl)

	reply, err := Send(path, "quit", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if reply != "OK" {
		t.Errorf("quit reply = %q", reply)
	}

	select {
	case <-srv.QuitRequested():
	case <-time.After(time.Second):
		t.Fatal("quit was not signalled")
	}
	if ctrl.stops == 0 {
		t.Error("quit should cancel the active session")
	}
}

func TestStaleSocketReplaced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxd.sock")

	// Leave a socket file with nothing listening behind it, as a
	// crashed daemon would.
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatal(err)
	}
	ln.(*net.UnixListener).SetUnlinkOnClose(false)
	ln.Close()

	second := NewServer(path, &scriptedController{})
	if err := second.Listen(); err != nil {
		t.Fatalf("stale socket not replaced: %v", err)
	}
	go second.Serve()
	defer second.Close()

	if reply, err := Send(path, "ping", time.Second); err != nil || reply != "OK" {
		t.Errorf("ping after takeover: %q, %v", reply, err)
	}
}

func TestLiveSocketRejected(t *testing.T) {
	_, path := startServer(t, &scriptedController{})

	second := NewServer(path, &scriptedController{})
	if err := second.Listen(); err == nil {
		second.Close()
		t.Fatal("expected error for live daemon on socket")
	}
}
