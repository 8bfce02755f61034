package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"voxd/artifact"
	"voxd/capture"
	"voxd/config"
	"voxd/enrich"
	"voxd/log"
	"voxd/screenshot"
	"voxd/transcriber"
)

// Injector places finished text where the user wants it.
type Injector interface {
	Deliver(text string) error
}

// Notifier surfaces session lifecycle events to the desktop.
type Notifier interface {
	RecordingStarted(mode string)
	Processing(mode string)
	Done(mode, detail string)
	Failed(mode string, err error)
}

type nopNotifier struct{}

func (nopNotifier) RecordingStarted(string) {}
func (nopNotifier) Processing(string)       {}
func (nopNotifier) Done(string, string)     {}
func (nopNotifier) Failed(string, error)    {}

// Deps are the collaborators a Controller drives. Every field except
// Notifier must be set.
type Deps struct {
	Recorder    capture.Recorder
	Transcriber transcriber.Transcriber
	Enricher    enrich.Enricher
	Injector    Injector
	Screen      screenshot.Grabber
	Store       *artifact.Store
	Notifier    Notifier
	Config      config.Config
}

// Controller serializes session lifecycle: it holds the single session
// slot and rejects toggles while the slot is occupied.
type Controller struct {
	deps Deps

	mu         sync.Mutex
	cur        *session
	lastDetail string
	// teardown is non-nil while a capture teardown is in flight and
	// is closed once the recorder subprocesses are down. New sessions
	// wait on it so two captures never overlap.
	teardown chan struct{}
}

type session struct {
	id        string
	mode      Mode
	startedAt time.Time
	state     State
	ctx       context.Context
	cancel    context.CancelFunc
	cap       capture.Capture
	dir       *artifact.SessionDir // meeting sessions only
	tmpDir    string               // dictate/screenshot capture dir
}

func NewController(deps Deps) *Controller {
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	return &Controller{deps: deps}
}

// Toggle starts a session in the given mode, or moves the active
// session of the same mode from recording to processing. Any other
// combination while the slot is occupied returns ErrBusy.
func (c *Controller) Toggle(mode Mode) (State, error) {
	for {
		c.mu.Lock()
		if c.cur != nil {
			if c.cur.mode == mode && c.cur.state == StateRecording {
				sess := c.cur
				sess.state = StateProcessing
				td := make(chan struct{})
				c.teardown = td
				c.mu.Unlock()
				c.deps.Notifier.Processing(string(mode))
				go c.run(sess, td)
				return StateProcessing, nil
			}
			err := fmt.Errorf("%w: %s is %s", ErrBusy, c.cur.mode, c.cur.state)
			c.mu.Unlock()
			return "", err
		}
		td := c.teardown
		if td == nil {
			st, err := c.start(mode)
			c.mu.Unlock()
			return st, err
		}
		c.mu.Unlock()
		// The previous session's recorders are still going down.
		<-td
	}
}

// start launches capture for a new session. Caller holds the lock.
func (c *Controller) start(mode Mode) (State, error) {
	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{
		id:        uuid.NewString(),
		mode:      mode,
		startedAt: time.Now(),
		state:     StateRecording,
		ctx:       ctx,
		cancel:    cancel,
	}

	specs, err := c.buildSpecs(sess)
	if err != nil {
		cancel()
		return "", err
	}
	cp, err := c.deps.Recorder.Start(ctx, specs)
	if err != nil {
		if sess.dir != nil {
			sess.dir.Discard()
		}
		c.cleanupDirs(sess, false)
		cancel()
		return "", fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	sess.cap = cp

	c.cur = sess
	log.SessionStart(sess.id, string(mode))
	c.deps.Notifier.RecordingStarted(string(mode))
	return StateRecording, nil
}

// buildSpecs decides which tracks a session records and where the
// files go: dictation and screenshot record the mic into a temp dir,
// meetings record mic and system audio into the session's output dir.
func (c *Controller) buildSpecs(sess *session) ([]capture.TrackSpec, error) {
	cfg := c.deps.Config.Capture
	tool := capture.DefaultTool()

	if sess.mode == ModeMeeting {
		dir, err := c.deps.Store.NewSessionDir(sess.startedAt)
		if err != nil {
			return nil, err
		}
		sess.dir = dir
		return []capture.TrackSpec{
			{Name: capture.TrackMic, Tool: tool, Device: cfg.MicSource, Path: dir.File(artifact.MicFile)},
			{Name: capture.TrackSystem, Tool: capture.MonitorTool(), Device: cfg.MonitorSource, Path: dir.File(artifact.SystemFile)},
		}, nil
	}

	tmp, err := os.MkdirTemp("", "voxd-*")
	if err != nil {
		return nil, err
	}
	sess.tmpDir = tmp
	return []capture.TrackSpec{
		{Name: capture.TrackMic, Tool: tool, Device: cfg.MicSource, Path: filepath.Join(tmp, artifact.MicFile)},
	}, nil
}

// Stop cancels the active session. A recording session is discarded; a
// processing session has its pipeline aborted. Stopping an idle
// controller is a no-op.
func (c *Controller) Stop() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess := c.cur
	if sess == nil {
		return StateIdle
	}
	sess.cancel()
	c.cur = nil
	c.lastDetail = fmt.Sprintf("%s cancelled", sess.mode)
	log.SessionEnd(sess.id, string(sess.mode), string(StateCancelled), time.Since(sess.startedAt), nil)

	if sess.state == StateRecording {
		// Tear down capture off the lock; cap.Stop can block for the
		// kill grace period. teardown tracks the goroutine so new
		// sessions and Shutdown wait for the recorders to die.
		grace := time.Duration(c.deps.Config.Capture.StopGraceMs) * time.Millisecond
		td := make(chan struct{})
		c.teardown = td
		go func() {
			sess.cap.Stop(grace)
			c.cleanupDirs(sess, false)
			c.clearTeardown(td)
			close(td)
		}()
	}
	// A processing session cleans itself up when its pipeline
	// goroutine observes the cancelled context.
	return StateCancelled
}

// Shutdown cancels any active session and blocks until its recorder
// subprocesses are down, so daemon exit never orphans them.
func (c *Controller) Shutdown() {
	c.Stop()
	c.mu.Lock()
	td := c.teardown
	c.mu.Unlock()
	if td != nil {
		<-td
	}
}

func (c *Controller) clearTeardown(td chan struct{}) {
	c.mu.Lock()
	if c.teardown == td {
		c.teardown = nil
	}
	c.mu.Unlock()
}

// Status reports the current state, or the last outcome when idle.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cur == nil {
		return Status{State: StateIdle, Detail: c.lastDetail}
	}
	return Status{
		State:   c.cur.state,
		Mode:    c.cur.mode,
		ID:      c.cur.id,
		Elapsed: time.Since(c.cur.startedAt),
	}
}

// run drives a session from capture stop through its pipeline. It owns
// the session after the toggle handler returns.
func (c *Controller) run(sess *session, td chan struct{}) {
	grace := time.Duration(c.deps.Config.Capture.StopGraceMs) * time.Millisecond
	results := sess.cap.Stop(grace)
	c.clearTeardown(td)
	close(td)
	for _, r := range results {
		log.Track(sess.id, r.Name, r.Path, r.Size, r.Err)
	}

	detail, err := c.pipeline(sess, results)
	c.finish(sess, detail, err)
}

// finish commits the session outcome. If the slot no longer holds this
// session the user already cancelled it; only cleanup remains.
func (c *Controller) finish(sess *session, detail string, err error) {
	state := StateDone
	if err != nil {
		state = StateFailed
		if sess.ctx.Err() != nil {
			state = StateCancelled
		}
	}
	c.cleanupDirs(sess, state == StateDone)

	c.mu.Lock()
	if c.cur != sess {
		c.mu.Unlock()
		return
	}
	c.cur = nil
	if err != nil {
		c.lastDetail = fmt.Sprintf("%s %s: %v", sess.mode, state, err)
	} else {
		c.lastDetail = detail
	}
	c.mu.Unlock()

	log.SessionEnd(sess.id, string(sess.mode), string(state), time.Since(sess.startedAt), err)
	if state == StateFailed {
		c.deps.Notifier.Failed(string(sess.mode), err)
	} else if state == StateDone {
		c.deps.Notifier.Done(string(sess.mode), detail)
	}
}

// cleanupDirs removes the temp capture dir unless the user configured
// audio to be kept after a successful run. A meeting's staging dir is
// left in place on failure so the raw tracks stay recoverable; Finalize
// already renamed it on success.
func (c *Controller) cleanupDirs(sess *session, done bool) {
	if sess.tmpDir == "" {
		return
	}
	if done && c.deps.Config.Delivery.KeepAudio {
		return
	}
	os.RemoveAll(sess.tmpDir)
}
