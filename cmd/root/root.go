package root

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/denysvitali/ev-nearby/config"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
	log      = logrus.StandardLogger()
)

var RootCmd = &cobra.Command{
	Use:   "ev-nearby",
	Short: "Find EV chargers near you or near any place",
	Long: `ev-nearby finds EV charging sites around your current position or around a place you search for.
Sites come from Open Charge Map, places from OpenStreetMap Nominatim.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setLogLevel(); err != nil {
			return err
		}

		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		if err := initConfig(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/ev-nearby/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("config", RootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("log-level", RootCmd.PersistentFlags().Lookup("log-level"))

	viper.SetEnvPrefix("EVNEARBY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

func initConfig() error {
	configPath := ""

	if cfgFile != "" {
		configPath = cfgFile
		viper.SetConfigFile(cfgFile)
	} else {
		configPath = config.DefaultConfigFilePath()

		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, config.AppName))
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !os.IsNotExist(err) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		log.Debug("No config file found, using defaults and environment variables")
	} else {
		log.Debugf("Using config file: %s", viper.ConfigFileUsed())
		configPath = viper.ConfigFileUsed()
	}

	var err error
	cfg, err = config.GetConfigFromFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log.Debug("Config file not found, creating empty config")
		cfg = &config.Config{}
	}

	applyOverrides(cfg)
	cfg.ApplyDefaults()
	return nil
}

// applyOverrides copies values set through viper (environment variables
// included) over the ones read from the file.
func applyOverrides(c *config.Config) {
	if viper.IsSet("openchargemap.base_url") {
		c.OpenChargeMap.BaseURL = viper.GetString("openchargemap.base_url")
	}
	if viper.IsSet("openchargemap.api_key") {
		c.OpenChargeMap.APIKey = viper.GetString("openchargemap.api_key")
	}
	if viper.IsSet("openchargemap.max_results") {
		c.OpenChargeMap.MaxResults = viper.GetInt("openchargemap.max_results")
	}
	if viper.IsSet("nominatim.base_url") {
		c.Nominatim.BaseURL = viper.GetString("nominatim.base_url")
	}
	if viper.IsSet("nominatim.country_codes") {
		c.Nominatim.CountryCodes = viper.GetString("nominatim.country_codes")
	}
	if viper.IsSet("nominatim.limit") {
		c.Nominatim.Limit = viper.GetInt("nominatim.limit")
	}
	if viper.IsSet("location.source") {
		c.Location.Source = viper.GetString("location.source")
	}
	if viper.IsSet("location.allowed") {
		c.Location.Allowed = viper.GetBool("location.allowed")
	}
	if viper.IsSet("location.latitude") {
		c.Location.Latitude = viper.GetFloat64("location.latitude")
	}
	if viper.IsSet("location.longitude") {
		c.Location.Longitude = viper.GetFloat64("location.longitude")
	}
	if viper.IsSet("teslamate.api_url") {
		c.TeslaMate.APIURL = viper.GetString("teslamate.api_url")
	}
	if viper.IsSet("teslamate.car_id") {
		c.TeslaMate.CarID = viper.GetInt("teslamate.car_id")
	}
	if viper.IsSet("map.zoom") {
		c.Map.Zoom = viper.GetFloat64("map.zoom")
	}
	if viper.IsSet("google.streetview_key") {
		c.Google.StreetViewKey = viper.GetString("google.streetview_key")
	}
}

func setLogLevel() error {
	lvl, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %s", logLevel)
	}
	log.SetLevel(lvl)
	return nil
}

func Execute() error {
	return RootCmd.Execute()
}

func GetConfig() *config.Config {
	return cfg
}

func GetLogger() *logrus.Logger {
	return log
}

// GetConfigPath returns the file the configuration is read from and saved to.
func GetConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}
	return config.DefaultConfigFilePath()
}
