package config

import (
	"testing"

	"github.com/spf13/viper"

	"clarion/internal/llm"
)

func resetViperForTest(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadLLMConfig_Defaults(t *testing.T) {
	resetViperForTest(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadLLMConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider != llm.DefaultProvider {
		t.Errorf("provider = %s, want default", cfg.Provider)
	}
	if cfg.Model == "" || cfg.EmbeddingModel == "" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.APIKey != "sk-test" {
		t.Errorf("api key = %q, want env value", cfg.APIKey)
	}
}

func TestLoadLLMConfig_OllamaBaseURL(t *testing.T) {
	resetViperForTest(t)
	viper.Set("llm.provider", "ollama")

	cfg, err := LoadLLMConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != llm.DefaultOllamaURL {
		t.Errorf("base url = %q, want ollama default", cfg.BaseURL)
	}
}

func TestLoadLLMConfig_InvalidProvider(t *testing.T) {
	resetViperForTest(t)
	viper.Set("llm.provider", "carrier-pigeon")

	if _, err := LoadLLMConfig(); err == nil {
		t.Error("expected error for unsupported provider")
	}
}

func TestResolveAPIKey_ConfigBeatsEnv(t *testing.T) {
	resetViperForTest(t)
	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	viper.Set("llm.apiKeys.anthropic", "config-key")

	if key := ResolveAPIKey(llm.ProviderAnthropic); key != "config-key" {
		t.Errorf("key = %q, want config-key", key)
	}
}

func TestResolveAPIKey_GeminiFallsBackToGoogleEnv(t *testing.T) {
	resetViperForTest(t)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")

	if key := ResolveAPIKey(llm.ProviderGemini); key != "google-key" {
		t.Errorf("key = %q, want google-key", key)
	}
}

func TestGetSimilarityThreshold_Default(t *testing.T) {
	resetViperForTest(t)

	if got := GetSimilarityThreshold(); got != 0.90 {
		t.Errorf("threshold = %v, want 0.90", got)
	}

	viper.Set("store.similarityThreshold", 0.75)
	if got := GetSimilarityThreshold(); got != 0.75 {
		t.Errorf("threshold = %v, want configured 0.75", got)
	}
}
