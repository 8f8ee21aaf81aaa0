package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.APIBaseURL == "" || cfg.SocketURL == "" {
		t.Fatalf("defaults must point at a backend: %+v", cfg)
	}
	if cfg.UploadTimeout != 30*time.Second {
		t.Fatalf("upload timeout default = %v", cfg.UploadTimeout)
	}
	if cfg.Speech.Provider != "off" {
		t.Fatalf("speech must default off, got %q", cfg.Speech.Provider)
	}
}

func TestUpdateFromOverwritesOnlySetValues(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{
		APIBaseURL: "https://platform.example.com",
		Speech:     SpeechConfig{Provider: "deepgram", DeepgramKey: "dg-key"},
	})

	if cfg.APIBaseURL != "https://platform.example.com" {
		t.Fatalf("api base = %q", cfg.APIBaseURL)
	}
	if cfg.Speech.Provider != "deepgram" || cfg.Speech.DeepgramKey != "dg-key" {
		t.Fatalf("speech = %+v", cfg.Speech)
	}
	// Unset fields keep their previous values.
	if cfg.SocketURL != Default().SocketURL {
		t.Fatalf("socket url clobbered: %q", cfg.SocketURL)
	}
	if cfg.UploadTimeout != 30*time.Second {
		t.Fatalf("upload timeout clobbered: %v", cfg.UploadTimeout)
	}
}

func TestLoadCreatesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, resolved, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Fatalf("resolved path = %q", resolved)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if cfg.APIBaseURL != Default().APIBaseURL {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "api_base_url: https://platform.example.com\nlanguage: de-DE\nupload_timeout: 10s\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "https://platform.example.com" {
		t.Fatalf("api base = %q", cfg.APIBaseURL)
	}
	if cfg.Language != "de-DE" {
		t.Fatalf("language = %q", cfg.Language)
	}
	if cfg.UploadTimeout != 10*time.Second {
		t.Fatalf("upload timeout = %v", cfg.UploadTimeout)
	}
	// Values the file omits fall back to defaults.
	if cfg.SocketURL != Default().SocketURL {
		t.Fatalf("socket url = %q", cfg.SocketURL)
	}
}
