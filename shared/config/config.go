package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Metadata sources.
const (
	MetadataYTDLP = "ytdlp"
	MetadataAPI   = "api"
)

// Transcript sources and speech-to-text backends.
const (
	SourceAudio     = "audio"
	SourceCaptions  = "captions"
	SourceGeminiURL = "gemini-url"

	TranscriberWhisper = "whisper"
	TranscriberGemini  = "gemini"
)

type Config struct {
	YouTube    YouTubeConfig    `yaml:"youtube"`
	Transcript TranscriptConfig `yaml:"transcript"`
	AI         AIConfig         `yaml:"ai"`
	Output     OutputConfig     `yaml:"output"`
	Watch      WatchConfig      `yaml:"watch"`
	Email      EmailConfig      `yaml:"email"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type YouTubeConfig struct {
	YTDLPPath              string `yaml:"ytdlp_path"`
	MetadataSource         string `yaml:"metadata_source"`
	APIKey                 string `yaml:"api_key" env:"YOUTUBE_API_KEY"`
	ClientID               string `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret           string `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	TokenFile              string `yaml:"token_file"`
	MetadataTimeoutSeconds int    `yaml:"metadata_timeout_seconds"`
	DownloadTimeoutSeconds int    `yaml:"download_timeout_seconds"`
}

type TranscriptConfig struct {
	Source                string   `yaml:"source"`
	Transcriber           string   `yaml:"transcriber"`
	WhisperPath           string   `yaml:"whisper_path"`
	WhisperModel          string   `yaml:"whisper_model"`
	Languages             []string `yaml:"languages"`
	TimeoutSeconds        int      `yaml:"timeout_seconds"`
	CaptionTimeoutSeconds int      `yaml:"caption_timeout_seconds"`
}

type AIConfig struct {
	GeminiAPIKey string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	Model        string `yaml:"model"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

type WatchConfig struct {
	Schedule string `yaml:"schedule"`
}

// EmailConfig is optional; watch mode mails the finished analysis when
// SMTPServer and ToEmail are set.
type EmailConfig struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username" env:"EMAIL_USERNAME"`
	Password   string `yaml:"password" env:"EMAIL_PASSWORD"`
	FromEmail  string `yaml:"from_email"`
	ToEmail    string `yaml:"to_email"`
}

// Enabled reports whether enough is configured to send mail.
func (e EmailConfig) Enabled() bool {
	return e.SMTPServer != "" && e.ToEmail != ""
}

type MonitoringConfig struct {
	HealthPort int `yaml:"health_port"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Load reads configuration from path, or from CONFIG_FILE / config.yaml when
// path is empty. A missing file leaves every setting at its default.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	configFile := path
	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}
	if configFile == "" {
		configFile = "config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	case errors.Is(err, os.ErrNotExist) && path == "":
		// optional when not named explicitly
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if c.YouTube.APIKey == "" {
		c.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if c.YouTube.ClientID == "" {
		c.YouTube.ClientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if c.YouTube.ClientSecret == "" {
		c.YouTube.ClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}
	if c.AI.GeminiAPIKey == "" {
		c.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.Email.Username == "" {
		c.Email.Username = os.Getenv("EMAIL_USERNAME")
	}
	if c.Email.Password == "" {
		c.Email.Password = os.Getenv("EMAIL_PASSWORD")
	}
}

func (c *Config) applyDefaults() {
	if c.YouTube.YTDLPPath == "" {
		c.YouTube.YTDLPPath = "yt-dlp"
	}
	if c.YouTube.MetadataSource == "" {
		c.YouTube.MetadataSource = MetadataYTDLP
	}
	if c.YouTube.TokenFile == "" {
		c.YouTube.TokenFile = "youtube_token.json"
	}
	if c.YouTube.MetadataTimeoutSeconds == 0 {
		c.YouTube.MetadataTimeoutSeconds = 30
	}
	if c.YouTube.DownloadTimeoutSeconds == 0 {
		c.YouTube.DownloadTimeoutSeconds = 120
	}

	if c.Transcript.Source == "" {
		c.Transcript.Source = SourceAudio
	}
	if c.Transcript.Transcriber == "" {
		c.Transcript.Transcriber = TranscriberWhisper
	}
	if c.Transcript.WhisperPath == "" {
		c.Transcript.WhisperPath = "whisper"
	}
	if c.Transcript.WhisperModel == "" {
		c.Transcript.WhisperModel = "base"
	}
	if len(c.Transcript.Languages) == 0 {
		c.Transcript.Languages = []string{"en"}
	}
	if c.Transcript.TimeoutSeconds == 0 {
		c.Transcript.TimeoutSeconds = 600
	}
	if c.Transcript.CaptionTimeoutSeconds == 0 {
		c.Transcript.CaptionTimeoutSeconds = 30
	}

	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.5-flash"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "projects/analysis"
	}
	if c.Watch.Schedule == "" {
		c.Watch.Schedule = "0 */30 * * * *" // every 30 minutes
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Email.FromEmail == "" {
		c.Email.FromEmail = c.Email.Username
	}
	if c.Monitoring.HealthPort == 0 {
		c.Monitoring.HealthPort = 8080
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) validate() error {
	switch c.YouTube.MetadataSource {
	case MetadataYTDLP:
	case MetadataAPI:
		if c.YouTube.APIKey == "" && (c.YouTube.ClientID == "" || c.YouTube.ClientSecret == "") {
			return fmt.Errorf("YouTube API metadata requires an API key (set YOUTUBE_API_KEY or youtube.api_key) or an OAuth client (GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET)")
		}
	default:
		return fmt.Errorf("unknown youtube.metadata_source %q (want %q or %q)", c.YouTube.MetadataSource, MetadataYTDLP, MetadataAPI)
	}

	switch c.Transcript.Source {
	case SourceAudio, SourceCaptions, SourceGeminiURL:
	default:
		return fmt.Errorf("unknown transcript.source %q (want %q, %q or %q)", c.Transcript.Source, SourceAudio, SourceCaptions, SourceGeminiURL)
	}

	switch c.Transcript.Transcriber {
	case TranscriberWhisper, TranscriberGemini:
	default:
		return fmt.Errorf("unknown transcript.transcriber %q (want %q or %q)", c.Transcript.Transcriber, TranscriberWhisper, TranscriberGemini)
	}

	if c.NeedsGemini() && c.AI.GeminiAPIKey == "" {
		return fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or ai.gemini_api_key)")
	}
	return nil
}

// NeedsGemini reports whether the selected transcript pipeline calls Gemini.
func (c *Config) NeedsGemini() bool {
	if c.Transcript.Source == SourceGeminiURL {
		return true
	}
	return c.Transcript.Source == SourceAudio && c.Transcript.Transcriber == TranscriberGemini
}
