//go:build !linux

package main

import "errors"

func daemonize() error {
	return errors.New("-background is only supported on linux")
}
