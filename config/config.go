// Package config loads the daemon configuration from YAML.
// Search order: explicit -config path, ./config.yaml,
// $XDG_CONFIG_HOME/voxd/config.yaml. Missing file means defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type SocketConfig struct {
	// Path of the unix control socket. Empty means
	// $XDG_RUNTIME_DIR/voxd.sock.
	Path string `yaml:"path"`
}

type CaptureConfig struct {
	// Pulse source names, or "auto" to detect at session start.
	MicSource     string `yaml:"mic_source"`
	MonitorSource string `yaml:"monitor_source"`
	// StopGraceMs bounds the wait between graceful stop and forced kill.
	StopGraceMs int `yaml:"stop_grace_ms"`
}

type TranscriberConfig struct {
	// Provider: "groq", "openai" or "" to pick from available API keys.
	Provider string `yaml:"provider"`
	Language string `yaml:"language"`
	// Format of the uploaded audio: "flac" (compressed) or "wav".
	Format string `yaml:"format"`
}

type EnrichConfig struct {
	BaseURL       string `yaml:"base_url"`
	CleanupModel  string `yaml:"cleanup_model"`
	VisionModel   string `yaml:"vision_model"`
	SummaryModel  string `yaml:"summary_model"`
	CleanupPrompt string `yaml:"cleanup_prompt"`
	SummaryPrompt string `yaml:"summary_prompt"`
}

type DeliveryConfig struct {
	// Method: "paste" (clipboard + injected Ctrl+V) or "clipboard"
	// (copy only, user pastes manually).
	Method string `yaml:"method"`
	// RestoreClipboard puts the previous clipboard contents back after
	// the paste settles.
	RestoreClipboard bool `yaml:"restore_clipboard"`
	// KeepAudio retains dictation capture files after a successful run.
	KeepAudio bool `yaml:"keep_audio"`
}

type MeetingConfig struct {
	OutputDir        string `yaml:"output_dir"`
	ChunkSeconds     int    `yaml:"chunk_seconds"`
	SummaryWordLimit int    `yaml:"summary_word_limit"`
}

type NotifyConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	Socket        SocketConfig      `yaml:"socket"`
	Capture       CaptureConfig     `yaml:"capture"`
	Transcriber   TranscriberConfig `yaml:"transcriber"`
	Enrich        EnrichConfig      `yaml:"enrich"`
	Delivery      DeliveryConfig    `yaml:"delivery"`
	Meeting       MeetingConfig     `yaml:"meeting"`
	Notifications NotifyConfig      `yaml:"notifications"`
}

const defaultCleanupPrompt = "You clean up voice transcripts. Return ONLY the cleaned text:\n" +
	"- remove filler words (uh, hmm, like, you know)\n" +
	"- add correct punctuation\n" +
	"- fix obvious transcription mistakes\n" +
	"- keep the original meaning intact\n" +
	"Reply with the cleaned text only, no preamble."

const defaultSummaryPrompt = "You write meeting minutes. Given a meeting transcript, produce:\n" +
	"1. SUMMARY: short paragraphs with the main points\n" +
	"2. DECISIONS: list of decisions made\n" +
	"3. ACTION ITEMS: list of tasks with owners where mentioned\n" +
	"4. TOPICS: list of subjects discussed\n" +
	"Format: clean markdown."

func Default() Config {
	return Config{
		Capture: CaptureConfig{
			MicSource:     "auto",
			MonitorSource: "auto",
			StopGraceMs:   5000,
		},
		Transcriber: TranscriberConfig{Language: "en", Format: "flac"},
		Enrich: EnrichConfig{
			BaseURL:       "http://localhost:11434",
			CleanupModel:  "llama3.2",
			VisionModel:   "gemma3:12b",
			SummaryModel:  "llama3.2",
			CleanupPrompt: defaultCleanupPrompt,
			SummaryPrompt: defaultSummaryPrompt,
		},
		Delivery: DeliveryConfig{Method: "paste", RestoreClipboard: true},
		Meeting: MeetingConfig{
			OutputDir:        "~/voxd/meetings",
			ChunkSeconds:     300,
			SummaryWordLimit: 3000,
		},
		Notifications: NotifyConfig{Enabled: true},
	}
}

// Load reads the config file, overlaying it on the defaults. An explicit
// path that does not exist is an error; the default search locations are
// optional.
func Load(path string) (Config, error) {
	cfg := Default()

	candidates := searchPaths(path)
	explicit := path != ""

	for i, p := range candidates {
		data, err := os.ReadFile(p)
		if err != nil {
			if explicit && i == 0 {
				return cfg, fmt.Errorf("config %s: %w", p, err)
			}
			continue
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config %s: %w", p, err)
		}
		break
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func searchPaths(explicit string) []string {
	var paths []string
	if explicit != "" {
		paths = append(paths, explicit)
	}
	if wd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(wd, "config.yaml"))
	}
	confHome := os.Getenv("XDG_CONFIG_HOME")
	if confHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			confHome = filepath.Join(home, ".config")
		}
	}
	if confHome != "" {
		paths = append(paths, filepath.Join(confHome, "voxd", "config.yaml"))
	}
	return paths
}

func (c *Config) validate() error {
	switch c.Transcriber.Provider {
	case "", "groq", "openai", "fake":
	default:
		return fmt.Errorf("unknown transcriber provider %q", c.Transcriber.Provider)
	}
	switch c.Transcriber.Format {
	case "flac", "wav":
	default:
		return fmt.Errorf("unknown upload format %q (use flac or wav)", c.Transcriber.Format)
	}
	switch c.Delivery.Method {
	case "paste", "clipboard":
	default:
		return fmt.Errorf("unknown delivery method %q (use paste or clipboard)", c.Delivery.Method)
	}
	if c.Meeting.ChunkSeconds <= 0 {
		return fmt.Errorf("meeting chunk_seconds must be positive, got %d", c.Meeting.ChunkSeconds)
	}
	if c.Capture.StopGraceMs <= 0 {
		return fmt.Errorf("capture stop_grace_ms must be positive, got %d", c.Capture.StopGraceMs)
	}
	return nil
}

// SocketPath resolves the control socket location.
func (c *Config) SocketPath() string {
	if c.Socket.Path != "" {
		return expandHome(c.Socket.Path)
	}
	runDir := os.Getenv("XDG_RUNTIME_DIR")
	if runDir == "" {
		runDir = os.TempDir()
	}
	return filepath.Join(runDir, "voxd.sock")
}

// MeetingDir resolves the meeting output base directory.
func (c *Config) MeetingDir() string {
	return expandHome(c.Meeting.OutputDir)
}

func expandHome(p string) string {
	if len(p) >= 2 && p[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
