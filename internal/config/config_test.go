package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 1, cfg.EditionMin)
	assert.Equal(t, 225, cfg.EditionMax)
	assert.Equal(t, 3, cfg.MonthsBack)
	assert.Equal(t, 2*time.Second, cfg.RequestDelay)
	assert.Equal(t, "andhrajyothy_dataset", cfg.OutputDir)
	assert.True(t, cfg.InsecureTLS)
	assert.False(t, cfg.MirrorEnabled())
	require.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("EPAPER_BASE_URL", "http://localhost:9000/")
	t.Setenv("EDITION_MIN", "5")
	t.Setenv("EDITION_MAX", "7")
	t.Setenv("MONTHS_BACK", "1")
	t.Setenv("REQUEST_DELAY", "250ms")
	t.Setenv("EPAPER_INSECURE_TLS", "false")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := FromEnv()

	assert.Equal(t, "http://localhost:9000", cfg.BaseURL)
	assert.Equal(t, []int{5, 6, 7}, cfg.Editions())
	assert.Equal(t, 1, cfg.MonthsBack)
	assert.Equal(t, 250*time.Millisecond, cfg.RequestDelay)
	assert.False(t, cfg.InsecureTLS)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestFromEnvBadValuesFallBack(t *testing.T) {
	t.Setenv("EDITION_MAX", "lots")
	t.Setenv("REQUEST_DELAY", "soon")

	cfg := FromEnv()

	assert.Equal(t, DefaultEditionMax, cfg.EditionMax)
	assert.Equal(t, DefaultDelay, cfg.RequestDelay)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "inverted edition range", mutate: func(c *Config) { c.EditionMin, c.EditionMax = 10, 2 }, wantErr: true},
		{name: "zero edition", mutate: func(c *Config) { c.EditionMin = 0 }, wantErr: true},
		{name: "negative months", mutate: func(c *Config) { c.MonthsBack = -1 }, wantErr: true},
		{name: "missing output dir", mutate: func(c *Config) { c.OutputDir = "" }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
		{name: "r2 endpoint without bucket", mutate: func(c *Config) { c.R2Endpoint = "https://r2.example.com" }, wantErr: true},
		{name: "r2 complete", mutate: func(c *Config) {
			c.R2Endpoint = "https://r2.example.com"
			c.R2Bucket = "papers"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := FromEnv()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEditionsDefaultRange(t *testing.T) {
	ids := FromEnv().Editions()
	require.Len(t, ids, 225)
	assert.Equal(t, 1, ids[0])
	assert.Equal(t, 225, ids[len(ids)-1])
}
