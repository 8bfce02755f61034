package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"voxd/config"
	"voxd/ctl"
	"voxd/doctor"
)

var version = "dev"

const sendTimeout = 5 * time.Second

func usage() {
	fmt.Fprintf(os.Stderr, `voxd - voice and screen to text daemon

Usage:
  voxd [flags] serve          run the daemon (default)
  voxd [flags] dictate        toggle a dictation session
  voxd [flags] screenshot     toggle a screenshot question session
  voxd [flags] meeting        toggle a meeting recording
  voxd [flags] status         show daemon state
  voxd [flags] stop           cancel the active session
  voxd [flags] ping           check the daemon is alive
  voxd [flags] quit           shut the daemon down
  voxd [flags] doctor         run system diagnostics

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	initCrashLog()

	configFlag := flag.String("config", "", "config file path (default: ./config.yaml, then XDG config dir)")
	socketFlag := flag.String("socket", "", "control socket path (default: $XDG_RUNTIME_DIR/voxd.sock)")
	logPathFlag := flag.String("logpath", "", "log directory path (default: XDG config dir)")
	bgFlag := flag.Bool("background", false, "detach the daemon from the terminal")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Usage = usage
	flag.Parse()

	if *versionFlag {
		fmt.Println("voxd", version)
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	socket := *socketFlag
	if socket == "" {
		socket = cfg.SocketPath()
	}

	cmd := "serve"
	if args := flag.Args(); len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "serve":
		if *bgFlag {
			if err := daemonize(); err != nil {
				fmt.Fprintln(os.Stderr, "background:", err)
				os.Exit(1)
			}
			return
		}
		if err := serve(cfg, socket, *logPathFlag); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "doctor":
		os.Exit(doctor.Run(cfg, socket))
	case "dictate", "screenshot", "meeting", "status", "stop", "ping", "quit":
		reply, err := ctl.Send(socket, cmd, sendTimeout)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(reply)
		if reply == "BUSY" || len(reply) >= 5 && reply[:5] == "ERROR" {
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
}
