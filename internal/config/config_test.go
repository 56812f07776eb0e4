package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("ELEVENLABS_API_KEY", "")
	t.Setenv("S3_BUCKET", "")
}

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearProviderEnv(t)

	// We pass nil for cmd to skip flags
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("Expected default port %d, got %d", DefaultServerPort, cfg.Server.Port)
	}
	if cfg.Models.Default != DefaultModelDefault {
		t.Errorf("Expected default model %s, got %s", DefaultModelDefault, cfg.Models.Default)
	}
	if cfg.Models.FollowUp != DefaultModelFollowUp {
		t.Errorf("Expected default follow-up model %s, got %s", DefaultModelFollowUp, cfg.Models.FollowUp)
	}
	if cfg.Models.Embedding != DefaultModelEmbedding {
		t.Errorf("Expected default embedding model %s, got %s", DefaultModelEmbedding, cfg.Models.Embedding)
	}
	if cfg.Models.Temperature != DefaultModelTemperature {
		t.Errorf("Expected default temperature %v, got %v", DefaultModelTemperature, cfg.Models.Temperature)
	}
	if cfg.Vector.Collection != DefaultVectorCollection {
		t.Errorf("Expected default collection %s, got %s", DefaultVectorCollection, cfg.Vector.Collection)
	}
	if cfg.Vector.ChunkSize != DefaultVectorChunkSize {
		t.Errorf("Expected default chunk size %d, got %d", DefaultVectorChunkSize, cfg.Vector.ChunkSize)
	}
	if cfg.Vector.IngestTTL != DefaultVectorIngestTTL {
		t.Errorf("Expected default ingest ttl %s, got %s", DefaultVectorIngestTTL, cfg.Vector.IngestTTL)
	}
	if cfg.Tools.YouTube.TranscriptURL != DefaultYouTubeTranscriptURL {
		t.Errorf("Expected default transcript url %s, got %s", DefaultYouTubeTranscriptURL, cfg.Tools.YouTube.TranscriptURL)
	}
	if cfg.Storage.PresignExpiry != DefaultStoragePresignExpiry {
		t.Errorf("Expected default presign expiry %s, got %s", DefaultStoragePresignExpiry, cfg.Storage.PresignExpiry)
	}
	if cfg.Speech.VoiceID != DefaultSpeechVoiceID {
		t.Errorf("Expected default voice %s, got %s", DefaultSpeechVoiceID, cfg.Speech.VoiceID)
	}

	assert.Equal(t, filepath.Join(home, ".mimir", "vectors"), cfg.Vector.Path)
	assert.Empty(t, cfg.Storage.Bucket)
	assert.Empty(t, cfg.Speech.APIKey)
	require.NotEmpty(t, cfg.Models.Registry)
	for _, m := range cfg.Models.Registry {
		assert.Equal(t, "openai", m.Provider)
		assert.Empty(t, m.APIKey)
	}
}

func TestLoad_PresignExpiryDefaultIsSevenDays(t *testing.T) {
	d, err := DurationOrDefault("", DefaultStoragePresignExpiry)
	require.NoError(t, err)
	assert.Equal(t, float64(604800), d.Seconds())
}

func TestLoad_InjectsEnvironmentSecrets(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test-openai")
	t.Setenv("ELEVENLABS_API_KEY", "el-key")
	t.Setenv("S3_BUCKET", "audio-bucket")

	cfg, err := Load(nil)
	require.NoError(t, err)

	for _, m := range cfg.Models.Registry {
		assert.Equal(t, "sk-test-openai", m.APIKey, "model %s", m.Name)
	}
	assert.Equal(t, "el-key", cfg.Speech.APIKey)
	assert.Equal(t, "audio-bucket", cfg.Storage.Bucket)
}

func TestLoad_PrefixedEnvOverridesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearProviderEnv(t)
	t.Setenv("MIMIR_STORAGE_BUCKET", "from-env")
	t.Setenv("MIMIR_MODELS_DEFAULT", "gpt-4o-mini")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Storage.Bucket)
	assert.Equal(t, "gpt-4o-mini", cfg.Models.Default)
}

func TestLoadWithConfigFlag(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearProviderEnv(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := []byte(`
server:
  port: 9090
models:
  default: custom-model
  registry:
    - name: custom-model
    - name: claude-3-5-haiku-latest
      provider: anthropic
vector:
  path: ~/data/vectors
`)
	if err := os.WriteFile(configPath, content, 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cmd := &cobra.Command{}
	cmd.Flags().String("config", "", "config file path")
	if err := cmd.Flags().Set("config", configPath); err != nil {
		t.Fatalf("failed to set config flag: %v", err)
	}

	cfg, err := Load(cmd)
	if err != nil {
		t.Fatalf("failed to load config with --config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Models.Default != "custom-model" {
		t.Fatalf("expected default model custom-model, got %s", cfg.Models.Default)
	}
	require.Len(t, cfg.Models.Registry, 2)
	assert.Equal(t, "openai", cfg.Models.Registry[0].Provider)
	assert.Equal(t, "anthropic", cfg.Models.Registry[1].Provider)

	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, "data", "vectors"), cfg.Vector.Path)
}

func TestLoadWithMissingConfigFlagReturnsError(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().String("config", "", "config file path")
	if err := cmd.Flags().Set("config", filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
		t.Fatalf("failed to set config flag: %v", err)
	}

	if _, err := Load(cmd); err == nil {
		t.Fatal("expected error when --config points to missing file")
	}
}

func TestRedactedMasksSecrets(t *testing.T) {
	cfg := Config{
		Models: ModelsConfig{Registry: []ModelRegistry{{Name: "gpt-4", APIKey: "sk-abcdefghijkl"}}},
		Speech: SpeechConfig{APIKey: "short"},
	}

	red := cfg.Redacted()
	assert.Equal(t, "sk-a****", red.Models.Registry[0].APIKey)
	assert.Equal(t, "****", red.Speech.APIKey)
	assert.Equal(t, "sk-abcdefghijkl", cfg.Models.Registry[0].APIKey, "original must stay untouched")
}
