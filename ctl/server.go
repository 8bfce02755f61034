// Package ctl implements the daemon's unix-socket control protocol:
// one newline-terminated command per connection, one reply line back.
// Replies are "OK", "OK <detail>", "BUSY" or "ERROR <reason>".
package ctl

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"voxd/log"
	"voxd/session"
)

// readTimeout bounds how long a client may take to send its command.
const readTimeout = 5 * time.Second

// Controller is the slice of the session controller the protocol needs.
type Controller interface {
	Toggle(mode session.Mode) (session.State, error)
	Stop() session.State
	Status() session.Status
}

type Server struct {
	path string
	ctrl Controller

	ln        net.Listener
	quit      chan struct{}
	quitOnce  sync.Once
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewServer(path string, ctrl Controller) *Server {
	return &Server{
		path: path,
		ctrl: ctrl,
		quit: make(chan struct{}),
	}
}

// Listen binds the unix socket, replacing a stale one left behind by a
// crashed daemon. A socket with a live daemon on it is an error.
func (s *Server) Listen() error {
	if _, err := os.Stat(s.path); err == nil {
		conn, err := net.DialTimeout("unix", s.path, time.Second)
		if err == nil {
			conn.Close()
			return fmt.Errorf("daemon already running on %s", s.path)
		}
		os.Remove(s.path)
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.path, err)
	}
	if err := os.Chmod(s.path, 0600); err != nil {
		ln.Close()
		return err
	}
	s.ln = ln
	return nil
}

// Serve accepts connections until Close. Each connection is handled on
// its own goroutine so a slow client cannot block the next command.
func (s *Server) Serve() error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

// QuitRequested is closed when a client sends quit.
func (s *Server) QuitRequested() <-chan struct{} {
	return s.quit
}

func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.ln != nil {
			err = s.ln.Close()
		}
		s.wg.Wait()
		os.Remove(s.path)
	})
	return err
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(readTimeout))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return
	}
	cmd := strings.TrimSpace(line)
	reply := s.dispatch(cmd)
	fmt.Fprintln(conn, reply)

	if cmd == "quit" {
		// Ack first, then let the daemon shut down.
		s.quitOnce.Do(func() { close(s.quit) })
	}
}

func (s *Server) dispatch(cmd string) string {
	log.Infof("command: %s", cmd)
	switch cmd {
	case "ping":
		return "OK"
	case "status":
		return "OK " + s.ctrl.Status().String()
	case "stop":
		return "OK " + string(s.ctrl.Stop())
	case "quit":
		s.ctrl.Stop()
		return "OK"
	case "dictate", "screenshot", "meeting":
		mode, _ := session.ParseMode(cmd)
		state, err := s.ctrl.Toggle(mode)
		if errors.Is(err, session.ErrBusy) {
			return "BUSY"
		}
		if err != nil {
			return "ERROR " + err.Error()
		}
		return "OK " + string(state)
	}
	return fmt.Sprintf("ERROR unknown command %q", cmd)
}
