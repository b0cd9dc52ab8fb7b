package blogfront

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Blog", cfg.Name)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, "http://localhost:8000/blog/api", cfg.APIBaseURL)
	assert.Equal(t, time.Duration(0), cfg.APITimeout)
	assert.Equal(t, 5, cfg.LoginMaxAttempts)
	assert.Len(t, cfg.Categories, 6)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blogfront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: Infra Notes
api_base_url: http://api.internal/blog/api
api_timeout: 3s
session_secret: from-file
categories:
  - id: 1
    slug: tech-stack
    name: 기술 스택
  - id: 2
    slug: troubleshooting
    name: Troubleshooting
`), 0o644))

	t.Setenv("BLOGFRONT_SESSION_SECRET", "from-env")
	t.Setenv("BLOGFRONT_COOKIE_SECURE", "true")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Infra Notes", cfg.Name)
	assert.Equal(t, "http://api.internal/blog/api", cfg.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.Equal(t, "from-env", cfg.SessionSecret)
	assert.True(t, cfg.CookieSecure)
	require.Len(t, cfg.Categories, 2)
	assert.Equal(t, "tech-stack", cfg.Categories[0].Slug)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := SiteConfig{}
	cfg.setDefaults()
	assert.Error(t, cfg.Validate(), "missing secret")

	cfg.SessionSecret = "s"
	assert.NoError(t, cfg.Validate())

	cfg.Categories = append(cfg.Categories, cfg.Categories[0])
	assert.Error(t, cfg.Validate(), "duplicate id")
}

func TestEnvOr(t *testing.T) {
	t.Setenv("BLOGFRONT_TEST_ENVOR", "")
	assert.Equal(t, "fallback", EnvOr("BLOGFRONT_TEST_ENVOR", "fallback"))
	t.Setenv("BLOGFRONT_TEST_ENVOR", "set")
	assert.Equal(t, "set", EnvOr("BLOGFRONT_TEST_ENVOR", "fallback"))
}
