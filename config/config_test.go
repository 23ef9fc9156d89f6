package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denysvitali/ev-nearby/config"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg config.Config
	cfg.ApplyDefaults()

	assert.Equal(t, config.DefaultOpenChargeMapURL, cfg.OpenChargeMap.BaseURL)
	assert.Equal(t, 10, cfg.OpenChargeMap.MaxResults)
	assert.Equal(t, config.DefaultNominatimURL, cfg.Nominatim.BaseURL)
	assert.Equal(t, config.SourceStatic, cfg.Location.Source)
	assert.Equal(t, 12.0, cfg.Map.Zoom)

	cfg = config.Config{OpenChargeMap: config.OpenChargeMapConfig{MaxResults: 25}}
	cfg.ApplyDefaults()
	assert.Equal(t, 25, cfg.OpenChargeMap.MaxResults)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := &config.Config{
		OpenChargeMap: config.OpenChargeMapConfig{APIKey: "key"},
		Location: config.LocationConfig{
			Source:    config.SourceStatic,
			Allowed:   true,
			Latitude:  47.3769,
			Longitude: 8.5417,
		},
		TeslaMate: config.TeslaMateConfig{APIURL: "http://teslamate:8080", CarID: 1},
	}

	require.NoError(t, config.SaveConfig(cfg, path))
	fromFile, err := config.GetConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, fromFile)

	// A shorter config must not leave stale bytes behind
	require.NoError(t, config.SaveConfig(&config.Config{}, path))
	fromFile, err = config.GetConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, &config.Config{}, fromFile)
}

func TestGetConfigFromFile_Missing(t *testing.T) {
	_, err := config.GetConfigFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, os.IsNotExist(err))
}
