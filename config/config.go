package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	AppName = "ev-nearby"

	DefaultOpenChargeMapURL = "https://api.openchargemap.io/v3"
	DefaultNominatimURL     = "https://nominatim.openstreetmap.org"
	DefaultMaxResults       = 10
	DefaultCandidates       = 5
	DefaultZoom             = 12
)

const (
	SourceStatic    = "static"
	SourceTeslaMate = "teslamate"
)

type OpenChargeMapConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	MaxResults int    `yaml:"max_results"`
}

type NominatimConfig struct {
	BaseURL      string `yaml:"base_url"`
	CountryCodes string `yaml:"country_codes"`
	Limit        int    `yaml:"limit"`
}

type LocationConfig struct {
	Source string `yaml:"source"`
	// Allowed is the persisted location permission grant
	Allowed   bool    `yaml:"allowed"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

type TeslaMateConfig struct {
	APIURL string `yaml:"api_url"`
	CarID  int    `yaml:"car_id"`
}

type MapConfig struct {
	Zoom float64 `yaml:"zoom"`
}

type GoogleConfig struct {
	StreetViewKey string `yaml:"streetview_key"`
}

type Config struct {
	OpenChargeMap OpenChargeMapConfig `yaml:"openchargemap"`
	Nominatim     NominatimConfig     `yaml:"nominatim"`
	Location      LocationConfig      `yaml:"location"`
	TeslaMate     TeslaMateConfig     `yaml:"teslamate"`
	Map           MapConfig           `yaml:"map"`
	Google        GoogleConfig        `yaml:"google"`
}

// DefaultConfigFilePath returns $XDG_CONFIG_HOME/ev-nearby/config.yaml
func DefaultConfigFilePath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// ApplyDefaults fills every unset field with its default value
func (c *Config) ApplyDefaults() {
	if c.OpenChargeMap.BaseURL == "" {
		c.OpenChargeMap.BaseURL = DefaultOpenChargeMapURL
	}
	if c.OpenChargeMap.MaxResults <= 0 {
		c.OpenChargeMap.MaxResults = DefaultMaxResults
	}
	if c.Nominatim.BaseURL == "" {
		c.Nominatim.BaseURL = DefaultNominatimURL
	}
	if c.Nominatim.Limit <= 0 {
		c.Nominatim.Limit = DefaultCandidates
	}
	if c.Location.Source == "" {
		c.Location.Source = SourceStatic
	}
	if c.Map.Zoom <= 0 {
		c.Map.Zoom = DefaultZoom
	}
}

func GetConfigFromFile(inputConfigFile string) (*Config, error) {
	if inputConfigFile == "" {
		inputConfigFile = DefaultConfigFilePath()
	}
	f, err := os.Open(inputConfigFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	err = yaml.NewDecoder(f).Decode(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func SaveConfig(cfg *Config, configFile string) error {
	if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(configFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return yaml.NewEncoder(f).Encode(cfg)
}
