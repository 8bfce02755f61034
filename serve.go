package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"voxd/artifact"
	"voxd/capture"
	"voxd/clipboard"
	"voxd/config"
	"voxd/ctl"
	"voxd/enrich"
	"voxd/log"
	"voxd/notify"
	"voxd/screenshot"
	"voxd/session"
	"voxd/transcriber"
)

// serve wires the daemon together and blocks until a signal arrives or
// a client sends quit.
func serve(cfg config.Config, socket, logPath string) error {
	dir, err := log.ResolveDir(logPath)
	if err != nil {
		return err
	}
	log.SetDir(dir)
	if err := log.Init(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer log.Close()

	trans, err := transcriber.New(cfg.Transcriber)
	if err != nil {
		return err
	}

	ctrl := session.NewController(session.Deps{
		Recorder:    capture.NewManager(),
		Transcriber: trans,
		Enricher:    enrich.NewOllama(cfg.Enrich, cfg.Meeting.SummaryWordLimit),
		Injector:    clipboard.NewDeliverer(cfg.Delivery.Method, cfg.Delivery.RestoreClipboard),
		Screen:      screenshot.NewTool(),
		Store:       artifact.NewStore(cfg.MeetingDir()),
		Notifier:    notify.New(cfg.Notifications.Enabled),
		Config:      cfg,
	})

	srv := ctl.NewServer(socket, ctrl)
	if err := srv.Listen(); err != nil {
		return err
	}
	go func() {
		if err := srv.Serve(); err != nil {
			log.Errorf("control server: %v", err)
		}
	}()
	log.Infof("voxd %s listening on %s (engine %s)", version, socket, trans.Name())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		log.Infof("shutting down on %v", sig)
	case <-srv.QuitRequested():
		log.Info("shutting down on quit command")
	}

	ctrl.Shutdown()
	return srv.Close()
}
