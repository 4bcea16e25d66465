package common

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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  http_addr: \":9000\"\n"))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.HTTPAddr)
	assert.Equal(t, 10, cfg.Server.MaxUploadMB)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, []string{"aroeira"}, cfg.Import.SeriesFamilies)
	assert.Equal(t, "I", cfg.Import.DefaultSeriesSuffix)
	assert.InDelta(t, 40.0, cfg.Import.MinMatchScore, 1e-9)
	assert.True(t, cfg.Import.IntraBatchDuplicates)
}

func TestLoadParsesYAMLSections(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
database:
  driver: sqlite
  dsn: "file:test.db"
llm:
  provider: gemini
  timeout: 10s
import:
  series_families: [aroeira, quinta]
  max_stay_days: 45
watch:
  enabled: true
  dirs: ["/srv/drop"]
`))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:test.db", cfg.Database.DSN)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 10*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, []string{"aroeira", "quinta"}, cfg.Import.SeriesFamilies)
	assert.Equal(t, 45, cfg.Import.MaxStayDays)
	assert.Equal(t, []string{"/srv/drop"}, cfg.Watch.Dirs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("DB_URL", "postgres://env")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("WATCH_DIRS", "/a, /b")

	cfg, err := Load(writeConfig(t, "database:\n  dsn: postgres://file\n"))
	require.NoError(t, err)

	assert.Equal(t, "postgres://env", cfg.Database.DSN)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, []string{"/a", "/b"}, cfg.Watch.Dirs)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	require.Error(t, err)
	assert.Equal(t, CodeConfig, CodeOf(err))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := Default()
		c.Database.DSN = "postgres://x"
		c.LLM.APIKey = "sk"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing dsn", func(c *Config) { c.Database.DSN = "" }, true},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "llama" }, true},
		{"missing key", func(c *Config) { c.LLM.APIKey = "" }, true},
		{"archive without endpoint", func(c *Config) { c.Archive.Enabled = true }, true},
		{"notify without recipients", func(c *Config) {
			c.Notify.Enabled = true
			c.Notify.Domain = "mg.example.com"
			c.Notify.APIKey = "key"
		}, true},
		{"watch without dirs", func(c *Config) { c.Watch.Enabled = true }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, CodeConfig, CodeOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
