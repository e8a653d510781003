package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "data/limitfree.db", cfg.Database.DSN)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 0.5, cfg.Assessment.TraitMinCompletion)
	assert.Equal(t, 3, cfg.GuestAIQuota)
	assert.Equal(t, 3, Current().GuestAIQuota)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9000"
llm:
  model: test-model
  timeout: 5s
llm_providers:
  openai:
    api_key: LIMITFREE_TEST_OPENAI_KEY
    base_url: http://localhost:1234/v1
guest_ai_quota: 1
`)
	t.Setenv("LIMITFREE_TEST_OPENAI_KEY", "sk-test")
	t.Setenv("LIMITFREE_GUEST_AI_QUOTA", "7")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "test-model", cfg.LLM.Model)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 7, cfg.GuestAIQuota, "env overrides the file")
	require.Contains(t, cfg.LLMProviders, "openai")
	assert.Equal(t, "sk-test", cfg.LLMProviders["openai"].APIKey)
	assert.Equal(t, "http://localhost:1234/v1", cfg.LLMProviders["openai"].BaseURL)
}

func TestLoad_BadFile(t *testing.T) {
	dir := writeConfig(t, "server: [\n")
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestResolveProviderKeys(t *testing.T) {
	t.Setenv("LIMITFREE_TEST_SET_KEY", "sk-live")
	cfg := &Config{LLMProviders: map[string]LLMProvider{
		"set":     {APIKey: "LIMITFREE_TEST_SET_KEY"},
		"unset":   {APIKey: "LIMITFREE_TEST_UNSET_KEY"},
		"literal": {APIKey: "sk-literal-123"},
	}}

	resolveProviderKeys(cfg)

	assert.Equal(t, "sk-live", cfg.LLMProviders["set"].APIKey)
	assert.Equal(t, "", cfg.LLMProviders["unset"].APIKey)
	assert.Equal(t, "sk-literal-123", cfg.LLMProviders["literal"].APIKey)
}
