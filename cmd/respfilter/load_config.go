package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/tinytelemetry/respfilter/internal/model"
)

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	v := viper.New()
	v.SetEnvPrefix("RESPFILTER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("extension", defaultExtension)
	v.SetDefault("response-code", defaultResponseCode)
	v.SetDefault("output-prefix", defaultOutputPrefix)
	v.SetDefault("malformed", defaultMalformed)
	v.SetDefault("max-line-size", defaultMaxLineSize)
	v.SetDefault("jobs", defaultJobs)
	v.SetDefault("dedup", true)
	v.SetDefault("report-path", "")
	v.SetDefault("stats-db", "")
	v.SetDefault("query-timeout", defaultQueryTimeout)
	v.SetDefault("top-segments", defaultTopSegments)
	v.SetDefault("log-file", "")
	v.SetDefault("quiet", false)

	home, homeErr := os.UserHomeDir()
	switch {
	case configPath != "":
		v.SetConfigFile(configPath)
	case homeErr == nil:
		v.SetConfigFile(filepath.Join(home, ".config", "respfilter", "config.yml"))
	}

	if configPath != "" || homeErr == nil {
		if err := v.ReadInConfig(); err != nil {
			var configFileNotFound viper.ConfigFileNotFoundError
			if configPath != "" || (!errors.As(err, &configFileNotFound) && !os.IsNotExist(err)) {
				return cfg, err
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	// Expand ~ in file paths
	if homeErr == nil {
		for _, p := range []*string{&cfg.StatsDB, &cfg.ReportPath, &cfg.LogFile} {
			if strings.HasPrefix(*p, "~/") {
				*p = filepath.Join(home, (*p)[2:])
			}
		}
	}

	return cfg, validateConfig(cfg)
}

func validateConfig(cfg appConfig) error {
	if cfg.Extension == "" {
		return errors.New("extension must not be empty")
	}
	if cfg.ResponseCode == "" {
		return errors.New("response-code must not be empty")
	}
	if cfg.OutputPrefix == "" {
		return errors.New("output-prefix must not be empty")
	}
	if cfg.Malformed != model.MalformedAbort && cfg.Malformed != model.MalformedSkip {
		return fmt.Errorf("invalid malformed policy %q (want %q or %q)", cfg.Malformed, model.MalformedAbort, model.MalformedSkip)
	}
	if cfg.Jobs <= 0 {
		return fmt.Errorf("invalid jobs: %d", cfg.Jobs)
	}
	if cfg.MaxLineSize <= 0 {
		return fmt.Errorf("invalid max-line-size: %d", cfg.MaxLineSize)
	}
	return nil
}
