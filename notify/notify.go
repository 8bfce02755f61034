// Package notify shows desktop notifications for session lifecycle
// events. All functions are no-ops when notifications are disabled.
package notify

import (
	"github.com/gen2brain/beeep"

	"voxd/log"
)

const appName = "voxd"

type Notifier struct {
	enabled bool
}

func New(enabled bool) *Notifier {
	return &Notifier{enabled: enabled}
}

func (n *Notifier) show(title, message string) {
	if !n.enabled {
		return
	}
	if err := beeep.Notify(title, message, ""); err != nil {
		log.Warnf("notification failed: %v", err)
	}
}

func (n *Notifier) RecordingStarted(mode string) {
	n.show(appName, "Recording started ("+mode+")")
}

func (n *Notifier) Processing(mode string) {
	n.show(appName, "Recording stopped, processing...")
}

func (n *Notifier) Done(mode, detail string) {
	msg := "Done"
	if detail != "" {
		msg = detail
	}
	n.show(appName, msg)
}

func (n *Notifier) Failed(mode string, err error) {
	n.show(appName+" error", err.Error())
}
