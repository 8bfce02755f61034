// Package doctor runs system diagnostics: it verifies every external
// piece the daemon depends on (capture tools, audio sources, the
// control socket, the transcription engine, ollama, screenshot tools)
// and prints one PASS/FAIL line per check.
package doctor

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"time"

	"voxd/capture"
	"voxd/config"
	"voxd/ctl"
)

// Run executes all checks and returns an exit code (0=all pass).
func Run(cfg config.Config, socket string) int {
	fmt.Println("voxd doctor - system diagnostics")
	fmt.Println("================================")

	allPass := true
	for _, check := range []struct {
		name string
		fn   func(config.Config, string) (string, error)
	}{
		{"capture tool", checkCaptureTool},
		{"audio sources", checkSources},
		{"daemon socket", checkSocket},
		{"transcription engine", checkEngine},
		{"ollama", checkOllama},
		{"screenshot tool", checkScreenshot},
		{"paste injection", checkUinput},
	} {
		detail, err := check.fn(cfg, socket)
		if err != nil {
			fmt.Printf("  FAIL %-20s %v\n", check.name, err)
			allPass = false
			continue
		}
		fmt.Printf("  PASS %-20s %s\n", check.name, detail)
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed.")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkCaptureTool(config.Config, string) (string, error) {
	for _, tool := range []string{"pw-record", "parecord"} {
		if path, err := exec.LookPath(tool); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("neither pw-record nor parecord found; install pipewire or pulseaudio utils")
}

func checkSources(config.Config, string) (string, error) {
	src, err := capture.DetectSources()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("mic=%s monitor=%s", src.Mic, src.Monitor), nil
}

func checkSocket(cfg config.Config, socket string) (string, error) {
	reply, err := ctl.Send(socket, "ping", 2*time.Second)
	if err != nil {
		// Not fatal for setup, but worth knowing.
		return "", fmt.Errorf("daemon not running on %s", socket)
	}
	if reply != "OK" {
		return "", fmt.Errorf("unexpected ping reply %q", reply)
	}
	return "daemon alive on " + socket, nil
}

func checkEngine(cfg config.Config, _ string) (string, error) {
	provider := cfg.Transcriber.Provider
	switch {
	case provider == "fake":
		return "fake engine configured", nil
	case provider == "groq" || provider == "" && os.Getenv("GROQ_API_KEY") != "":
		if os.Getenv("GROQ_API_KEY") == "" {
			return "", fmt.Errorf("GROQ_API_KEY not set")
		}
		return reachable("api.groq.com:443")
	case provider == "openai" || provider == "" && os.Getenv("OPENAI_API_KEY") != "":
		if os.Getenv("OPENAI_API_KEY") == "" {
			return "", fmt.Errorf("OPENAI_API_KEY not set")
		}
		return reachable("api.openai.com:443")
	}
	return "", fmt.Errorf("no engine configured: set GROQ_API_KEY or OPENAI_API_KEY")
}

func reachable(addr string) (string, error) {
	conn, err := net.DialTimeout("tcp", addr, 3*time.Second)
	if err != nil {
		return "", fmt.Errorf("cannot reach %s: %w", addr, err)
	}
	conn.Close()
	return addr + " reachable", nil
}

func checkOllama(cfg config.Config, _ string) (string, error) {
	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(cfg.Enrich.BaseURL + "/api/tags")
	if err != nil {
		return "", fmt.Errorf("ollama not reachable at %s (cleanup and summaries will fall back to raw text)", cfg.Enrich.BaseURL)
	}
	resp.Body.Close()
	return cfg.Enrich.BaseURL + " reachable", nil
}

func checkScreenshot(config.Config, string) (string, error) {
	for _, tool := range []string{"grim", "gnome-screenshot"} {
		if path, err := exec.LookPath(tool); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no screenshot tool found; install grim or gnome-screenshot")
}

func checkUinput(config.Config, string) (string, error) {
	for _, path := range []string{"/dev/uinput", "/dev/input/uinput"} {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("uinput device not found, try: sudo modprobe uinput (paste injection will fail, clipboard still works)")
}
