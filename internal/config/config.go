package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	Server  ServerConfig  `koanf:"server" yaml:"server"`
	Models  ModelsConfig  `koanf:"models" yaml:"models"`
	Vector  VectorConfig  `koanf:"vector" yaml:"vector"`
	Tools   ToolsConfig   `koanf:"tools" yaml:"tools"`
	Storage StorageConfig `koanf:"storage" yaml:"storage"`
	Speech  SpeechConfig  `koanf:"speech" yaml:"speech"`
}

type ServerConfig struct {
	Port            int    `koanf:"port" yaml:"port"`
	LogLevel        string `koanf:"log_level" yaml:"log_level"`
	ReadTimeout     string `koanf:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    string `koanf:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     string `koanf:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout string `koanf:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type ModelsConfig struct {
	Default             string          `koanf:"default" yaml:"default"`
	FollowUp            string          `koanf:"followup" yaml:"followup"`
	Embedding           string          `koanf:"embedding" yaml:"embedding"`
	Temperature         float64         `koanf:"temperature" yaml:"temperature"`
	Fallback            string          `koanf:"fallback" yaml:"fallback"`
	MaxFallbackAttempts int             `koanf:"max_fallback_attempts" yaml:"max_fallback_attempts"`
	Registry            []ModelRegistry `koanf:"registry" yaml:"registry"`
}

type ModelRegistry struct {
	Name     string `koanf:"name" yaml:"name"`
	Provider string `koanf:"provider" yaml:"provider"`
	BaseURL  string `koanf:"base_url" yaml:"base_url"`
	APIKey   string `koanf:"api_key" yaml:"api_key"`
}

// VectorConfig controls the local chromem store that ingested content lands in.
type VectorConfig struct {
	Path         string `koanf:"path" yaml:"path"`
	Collection   string `koanf:"collection" yaml:"collection"`
	TopK         int    `koanf:"top_k" yaml:"top_k"`
	ChunkSize    int    `koanf:"chunk_size" yaml:"chunk_size"`
	ChunkOverlap int    `koanf:"chunk_overlap" yaml:"chunk_overlap"`
	LockTimeout  string `koanf:"lock_timeout" yaml:"lock_timeout"`
	LockRetry    string `koanf:"lock_retry" yaml:"lock_retry"`
	LockMaxRetry int    `koanf:"lock_max_retry" yaml:"lock_max_retry"`
	InboxSize    int    `koanf:"inbox_size" yaml:"inbox_size"`
	IngestTTL    string `koanf:"ingest_ttl" yaml:"ingest_ttl"`
}

type ToolsConfig struct {
	Web     WebToolConfig     `koanf:"web" yaml:"web"`
	YouTube YouTubeToolConfig `koanf:"youtube" yaml:"youtube"`
}

type WebToolConfig struct {
	Timeout          string `koanf:"timeout" yaml:"timeout"`
	MaxContentLength int    `koanf:"max_content_length" yaml:"max_content_length"`
	UserAgent        string `koanf:"user_agent" yaml:"user_agent"`
}

type YouTubeToolConfig struct {
	OEmbedURL     string `koanf:"oembed_url" yaml:"oembed_url"`
	TranscriptURL string `koanf:"transcript_url" yaml:"transcript_url"`
	Language      string `koanf:"language" yaml:"language"`
	Timeout       string `koanf:"timeout" yaml:"timeout"`
}

type StorageConfig struct {
	Bucket        string `koanf:"bucket" yaml:"bucket"`
	Region        string `koanf:"region" yaml:"region"`
	Endpoint      string `koanf:"endpoint" yaml:"endpoint"`
	Prefix        string `koanf:"prefix" yaml:"prefix"`
	PresignExpiry string `koanf:"presign_expiry" yaml:"presign_expiry"`
}

type SpeechConfig struct {
	BaseURL string `koanf:"base_url" yaml:"base_url"`
	APIKey  string `koanf:"api_key" yaml:"api_key"`
	VoiceID string `koanf:"voice_id" yaml:"voice_id"`
	ModelID string `koanf:"model_id" yaml:"model_id"`
	Timeout string `koanf:"timeout" yaml:"timeout"`
}

const (
	DefaultServerPort               = 8000
	DefaultServerLogLevel           = "info"
	DefaultServerReadTimeout        = "30s"
	DefaultServerWriteTimeout       = "180s"
	DefaultServerIdleTimeout        = "60s"
	DefaultServerShutdownTimeout    = "10s"
	DefaultModelDefault             = "gpt-4"
	DefaultModelFollowUp            = "gpt-3.5-turbo"
	DefaultModelEmbedding           = "text-embedding-3-small"
	DefaultModelTemperature         = 0.7
	DefaultModelFallback            = ""
	DefaultModelMaxFallbackAttempts = 2
	DefaultOpenAIBaseURL            = "https://api.openai.com/v1"
	DefaultOllamaBaseURL            = "http://localhost:11434/v1"
	DefaultOllamaAPIKey             = "ollama"
	DefaultVectorCollection         = "mimir"
	DefaultVectorTopK               = 4
	DefaultVectorChunkSize          = 1000
	DefaultVectorChunkOverlap       = 200
	DefaultVectorLockTimeout        = "30s"
	DefaultVectorLockRetry          = "100ms"
	DefaultVectorLockMaxRetry       = 300
	DefaultVectorInboxSize          = 100
	DefaultVectorIngestTTL          = "24h"
	DefaultWebToolTimeout           = "15s"
	DefaultWebToolMaxContentLength  = 200000
	DefaultWebToolUserAgent         = "Mimir/1.0 (+https://example.invalid)"
	DefaultYouTubeOEmbedURL         = "https://www.youtube.com/oembed"
	DefaultYouTubeTranscriptURL     = "https://www.youtube.com/api/timedtext"
	DefaultYouTubeLanguage          = "en"
	DefaultYouTubeTimeout           = "15s"
	DefaultStorageRegion            = "us-west-2"
	DefaultStoragePresignExpiry     = "168h"
	DefaultSpeechBaseURL            = "https://api.elevenlabs.io"
	DefaultSpeechVoiceID            = "21m00Tcm4TlvDq8ikWAM"
	DefaultSpeechModelID            = "eleven_monolingual_v1"
	DefaultSpeechTimeout            = "30s"
)

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	// Hardcoded Defaults
	defaults := map[string]interface{}{
		"server.port":                  DefaultServerPort,
		"server.log_level":             DefaultServerLogLevel,
		"server.read_timeout":          DefaultServerReadTimeout,
		"server.write_timeout":         DefaultServerWriteTimeout,
		"server.idle_timeout":          DefaultServerIdleTimeout,
		"server.shutdown_timeout":      DefaultServerShutdownTimeout,
		"models.default":               DefaultModelDefault,
		"models.followup":              DefaultModelFollowUp,
		"models.embedding":             DefaultModelEmbedding,
		"models.temperature":           DefaultModelTemperature,
		"models.fallback":              DefaultModelFallback,
		"models.max_fallback_attempts": DefaultModelMaxFallbackAttempts,
		"models.registry": []ModelRegistry{
			{Name: "gpt-4", Provider: "openai"},
			{Name: "gpt-4o-mini", Provider: "openai"},
			{Name: "gpt-3.5-turbo", Provider: "openai"},
			{Name: DefaultModelEmbedding, Provider: "openai"},
		},
		"vector.path":                  filepath.Join(os.Getenv("HOME"), ".mimir", "vectors"),
		"vector.collection":            DefaultVectorCollection,
		"vector.top_k":                 DefaultVectorTopK,
		"vector.chunk_size":            DefaultVectorChunkSize,
		"vector.chunk_overlap":         DefaultVectorChunkOverlap,
		"vector.lock_timeout":          DefaultVectorLockTimeout,
		"vector.lock_retry":            DefaultVectorLockRetry,
		"vector.lock_max_retry":        DefaultVectorLockMaxRetry,
		"vector.inbox_size":            DefaultVectorInboxSize,
		"vector.ingest_ttl":            DefaultVectorIngestTTL,
		"tools.web.timeout":            DefaultWebToolTimeout,
		"tools.web.max_content_length": DefaultWebToolMaxContentLength,
		"tools.web.user_agent":         DefaultWebToolUserAgent,
		"tools.youtube.oembed_url":     DefaultYouTubeOEmbedURL,
		"tools.youtube.transcript_url": DefaultYouTubeTranscriptURL,
		"tools.youtube.language":       DefaultYouTubeLanguage,
		"tools.youtube.timeout":        DefaultYouTubeTimeout,
		"storage.region":               DefaultStorageRegion,
		"storage.presign_expiry":       DefaultStoragePresignExpiry,
		"speech.base_url":              DefaultSpeechBaseURL,
		"speech.voice_id":              DefaultSpeechVoiceID,
		"speech.model_id":              DefaultSpeechModelID,
		"speech.timeout":               DefaultSpeechTimeout,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	// Config file loading
	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, err
		}
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath := filepath.Join(home, ".mimir", "config.yaml")
			if err := k.Load(file.Provider(globalPath), yaml.Parser()); err != nil {
				slog.Debug("Global config not found or invalid", "path", globalPath, "error", err)
			}
		}
	}

	// Environment Variables
	k.Load(env.Provider("MIMIR_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "MIMIR_")), "_", ".", -1)
	}), nil)

	// CLI Flags
	if cmd != nil {
		k.Load(posflag.Provider(cmd.Flags(), ".", k), nil)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	for i, m := range cfg.Models.Registry {
		if m.Provider == "" {
			cfg.Models.Registry[i].Provider = "openai"
		}
	}

	path, err := ExpandPath(cfg.Vector.Path)
	if err != nil {
		return nil, err
	}
	if path != "" {
		cfg.Vector.Path = path
	}

	// Post-Process: Inject standard Env Vars if missing
	injectProviderKey(&cfg, "openai", os.Getenv("OPENAI_API_KEY"))
	injectProviderKey(&cfg, "anthropic", os.Getenv("ANTHROPIC_API_KEY"))
	injectProviderKey(&cfg, "gemini", os.Getenv("GEMINI_API_KEY"))

	if cfg.Speech.APIKey == "" {
		cfg.Speech.APIKey = os.Getenv("ELEVENLABS_API_KEY")
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = os.Getenv("S3_BUCKET")
	}

	return &cfg, nil
}

func injectProviderKey(cfg *Config, provider, key string) {
	if key == "" {
		return
	}
	for i, m := range cfg.Models.Registry {
		if m.Provider == provider && m.APIKey == "" {
			cfg.Models.Registry[i].APIKey = key
		}
	}
}

// Redacted returns a copy with secrets masked, for printing.
func (c Config) Redacted() Config {
	out := c
	out.Models.Registry = make([]ModelRegistry, len(c.Models.Registry))
	for i, m := range c.Models.Registry {
		m.APIKey = mask(m.APIKey)
		out.Models.Registry[i] = m
	}
	out.Speech.APIKey = mask(c.Speech.APIKey)
	return out
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "****"
}
