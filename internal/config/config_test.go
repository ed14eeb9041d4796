package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `server:
  port: "8080"
  mode: debug
jwt:
  secret: test-secret
  expire_hours: 1
ai:
  providers:
    - kind: stub
      model: stub-model
    - kind: openai
      model: gpt-4o-mini
      api_key: from-file
      timeout_seconds: 10
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(testConfigYAML), 0o644))
	return dir
}

func TestLoadConfig_EnvOverridesProviderAPIKey(t *testing.T) {
	dir := writeTestConfig(t)
	t.Setenv("AI_PROVIDER_1_API_KEY", "from-env")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Len(t, cfg.AI.Providers, 2)
	// 未设置环境变量的下标保持文件值
	assert.Empty(t, cfg.AI.Providers[0].APIKey)
	assert.Equal(t, "from-env", cfg.AI.Providers[1].APIKey)
}

func TestLoadConfig_DefaultsApplied(t *testing.T) {
	dir := writeTestConfig(t)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "moderate", cfg.Tutoring.DifficultyStrategy)
	assert.Equal(t, 3, cfg.Tutoring.MinSampleSize)
	assert.Equal(t, 24, cfg.Tutoring.StaleSessionHours)
	assert.Equal(t, 8000, cfg.AI.MaxPromptLength)
	assert.Equal(t, time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, 10*time.Second, cfg.AI.Providers[1].TimeoutSeconds)
	// 缺省超时补到 30s
	assert.Equal(t, 30*time.Second, cfg.AI.Providers[0].TimeoutSeconds)
}
