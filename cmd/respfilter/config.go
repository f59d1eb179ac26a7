package main

import (
	"time"

	"github.com/tinytelemetry/respfilter/internal/model"
)

const (
	defaultExtension    = model.DefaultExtension
	defaultResponseCode = model.DefaultResponseCode
	defaultOutputPrefix = model.DefaultOutputPrefix
	defaultMalformed    = model.MalformedAbort
	defaultMaxLineSize  = model.DefaultMaxLineSize
	defaultJobs         = 1
	defaultQueryTimeout = 30 * time.Second
	defaultTopSegments  = 5
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	Extension    string        `mapstructure:"extension"`
	ResponseCode string        `mapstructure:"response-code"`
	OutputPrefix string        `mapstructure:"output-prefix"`
	Malformed    string        `mapstructure:"malformed"`
	MaxLineSize  int           `mapstructure:"max-line-size"`
	Jobs         int           `mapstructure:"jobs"`
	Dedup        bool          `mapstructure:"dedup"`
	ReportPath   string        `mapstructure:"report-path"`
	StatsDB      string        `mapstructure:"stats-db"`
	QueryTimeout time.Duration `mapstructure:"query-timeout"`
	TopSegments  int           `mapstructure:"top-segments"`
	LogFile      string        `mapstructure:"log-file"`
	Quiet        bool          `mapstructure:"quiet"`
	ConfigPath   string        `mapstructure:"-"` // not from config file
}
