package config

import "time"

// Config holds client configuration values.
type Config struct {
	// APIBaseURL is the REST backend, e.g. https://platform.example.com
	APIBaseURL string `mapstructure:"api_base_url" yaml:"api_base_url"`
	// SocketURL is the realtime channel endpoint, e.g. wss://platform.example.com/socket
	SocketURL string `mapstructure:"socket_url" yaml:"socket_url"`
	// StatePath is the sqlite file holding the auth token and session cache.
	StatePath string `mapstructure:"state_path" yaml:"state_path"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	// Language for speech recognition, BCP-47.
	Language string `mapstructure:"language" yaml:"language"`
	// UploadTimeout bounds one audio upload. Zero means transport defaults.
	UploadTimeout time.Duration `mapstructure:"upload_timeout" yaml:"upload_timeout"`

	Speech SpeechConfig `mapstructure:"speech" yaml:"speech"`
}

// SpeechConfig selects and configures the speech recognition engine.
type SpeechConfig struct {
	// Provider is "deepgram", "whisper" or "off". When the configured provider
	// is unavailable the live transcriber degrades silently to no transcript.
	Provider    string `mapstructure:"provider" yaml:"provider"`
	DeepgramKey string `mapstructure:"deepgram_key" yaml:"deepgram_key"`
	OpenAIKey   string `mapstructure:"openai_key" yaml:"openai_key"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		APIBaseURL:    "http://localhost:5000",
		SocketURL:     "ws://localhost:5000/socket",
		StatePath:     "talkgym.db",
		LogLevel:      "info",
		Language:      "en-US",
		UploadTimeout: 30 * time.Second,
		Speech: SpeechConfig{
			Provider: "off",
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.APIBaseURL != "" {
		c.APIBaseURL = other.APIBaseURL
	}
	if other.SocketURL != "" {
		c.SocketURL = other.SocketURL
	}
	if other.StatePath != "" {
		c.StatePath = other.StatePath
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.Language != "" {
		c.Language = other.Language
	}
	if other.UploadTimeout != 0 {
		c.UploadTimeout = other.UploadTimeout
	}
	if other.Speech.Provider != "" {
		c.Speech.Provider = other.Speech.Provider
	}
	if other.Speech.DeepgramKey != "" {
		c.Speech.DeepgramKey = other.Speech.DeepgramKey
	}
	if other.Speech.OpenAIKey != "" {
		c.Speech.OpenAIKey = other.Speech.OpenAIKey
	}
}
