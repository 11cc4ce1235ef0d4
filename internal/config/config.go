// Package config parses the CLI flag surface and an optional YAML
// config file into one merged Config, validating the merged result
// against an embedded JSON Schema the way the teacher's
// internal/config/validate.go validates its own config JSON.
package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/asen/hustlog/internal/errs"
)

// Config mirrors the CLI flag surface; YAML keys match the long flag
// names with underscores, present keys acting as defaults that the CLI
// overrides.
type Config struct {
	Conf         string   `yaml:"conf" json:"conf"`
	Input        string   `yaml:"input" json:"input"`
	Output       string   `yaml:"output" json:"output"`
	OutputFormat string   `yaml:"output_format" json:"output_format"`
	OutputBatchSize  int  `yaml:"output_batch_size" json:"output_batch_size"`
	OutputAddDDL     bool `yaml:"output_add_ddl" json:"output_add_ddl"`

	GrokPattern              string   `yaml:"grok_pattern" json:"grok_pattern"`
	GrokPatternsFile         string   `yaml:"grok_patterns_file" json:"grok_patterns_file"`
	GrokExtraPatterns        []string `yaml:"grok_extra_patterns" json:"grok_extra_patterns"`
	GrokWithAliasOnly        bool     `yaml:"grok_with_alias_only" json:"grok_with_alias_only"`
	GrokIgnoreDefaultPatterns bool    `yaml:"grok_ignore_default_patterns" json:"grok_ignore_default_patterns"`
	GrokSchemaColumns        []string `yaml:"grok_schema_columns" json:"grok_schema_columns"`
	GrokListDefaultPatterns  bool     `yaml:"grok_list_default_patterns" json:"grok_list_default_patterns"`

	Query string `yaml:"query" json:"query"`

	MergeMultiLine       bool `yaml:"merge_multi_line" json:"merge_multi_line"`
	RayonThreads         int  `yaml:"rayon_threads" json:"rayon_threads"`
	TickInterval         int  `yaml:"tick_interval" json:"tick_interval"`
	IdleTimeout          int  `yaml:"idle_timeout" json:"idle_timeout"`
	ChannelSize          int  `yaml:"channel_size" json:"channel_size"`
	AsyncFileProcessing  bool `yaml:"async_file_processing" json:"async_file_processing"`

	Gops bool `yaml:"gops" json:"gops"`
}

func defaults() Config {
	return Config{
		Output:           "-",
		OutputFormat:     "csv",
		OutputBatchSize:  1000,
		RayonThreads:     2,
		TickInterval:     30,
		IdleTimeout:      30,
		ChannelSize:      1000,
		GrokPattern:      "%{GREEDYDATA:message}",
	}
}

func (c *Config) TickIntervalDuration() time.Duration {
	return time.Duration(c.TickInterval) * time.Second
}

func (c *Config) IdleTimeoutDuration() time.Duration {
	return time.Duration(c.IdleTimeout) * time.Second
}

// Flags returns the urfave/cli flag set for the CLI surface described
// by the design's §6. Scalar flags write into cfg through their
// Destination pointers, with defaults() supplying each flag's default
// Value; the two repeatable slice flags have no Destination and are
// copied onto cfg by ApplySliceFlags.
func Flags(cfg *Config) []cli.Flag {
	d := defaults()
	return []cli.Flag{
		&cli.StringFlag{Name: "conf", Destination: &cfg.Conf},
		&cli.StringFlag{Name: "input", Value: d.Input, Destination: &cfg.Input},
		&cli.StringFlag{Name: "output", Value: d.Output, Destination: &cfg.Output},
		&cli.StringFlag{Name: "output-format", Value: d.OutputFormat, Destination: &cfg.OutputFormat},
		&cli.IntFlag{Name: "output-batch-size", Value: d.OutputBatchSize, Destination: &cfg.OutputBatchSize},
		&cli.BoolFlag{Name: "output-add-ddl", Destination: &cfg.OutputAddDDL},
		&cli.StringFlag{Name: "grok-pattern", Value: d.GrokPattern, Destination: &cfg.GrokPattern},
		&cli.StringFlag{Name: "grok-patterns-file", Destination: &cfg.GrokPatternsFile},
		&cli.StringSliceFlag{Name: "grok-extra-patterns"},
		&cli.BoolFlag{Name: "grok-with-alias-only", Destination: &cfg.GrokWithAliasOnly},
		&cli.BoolFlag{Name: "grok-ignore-default-patterns", Destination: &cfg.GrokIgnoreDefaultPatterns},
		&cli.StringSliceFlag{Name: "grok-schema-columns"},
		&cli.BoolFlag{Name: "grok-list-default-patterns", Destination: &cfg.GrokListDefaultPatterns},
		&cli.StringFlag{Name: "query", Destination: &cfg.Query},
		&cli.BoolFlag{Name: "merge-multi-line", Destination: &cfg.MergeMultiLine},
		&cli.IntFlag{Name: "rayon-threads", Value: d.RayonThreads, Destination: &cfg.RayonThreads},
		&cli.IntFlag{Name: "tick-interval", Value: d.TickInterval, Destination: &cfg.TickInterval},
		&cli.IntFlag{Name: "idle-timeout", Value: d.IdleTimeout, Destination: &cfg.IdleTimeout},
		&cli.IntFlag{Name: "channel-size", Value: d.ChannelSize, Destination: &cfg.ChannelSize},
		&cli.BoolFlag{Name: "async-file-processing", Destination: &cfg.AsyncFileProcessing},
		&cli.BoolFlag{Name: "gops", Destination: &cfg.Gops, Usage: "listen via github.com/google/gops/agent (for debugging)"},
	}
}

// ApplySliceFlags copies the repeatable flags cli.Context parses as
// cli.StringSlice onto cfg; called from the Action after Flags' other
// destinations have already been populated by cli's own parsing.
func ApplySliceFlags(ctx *cli.Context, cfg *Config) {
	if v := ctx.StringSlice("grok-extra-patterns"); len(v) > 0 {
		cfg.GrokExtraPatterns = v
	}
	if v := ctx.StringSlice("grok-schema-columns"); len(v) > 0 {
		cfg.GrokSchemaColumns = v
	}
}

// LoadYAML reads path and unmarshals it onto cfg, leaving fields the
// file doesn't mention untouched (the CLI flag defaults or prior
// values already set on cfg).
func LoadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errs.Wrap(errs.ConfigError, "reading config file", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errs.Wrap(errs.ConfigError, "parsing YAML config", err)
	}
	return nil
}

// Validate checks cfg against the embedded JSON Schema, the same way
// the teacher's internal/config/validate.go compiles and validates a
// schema string against a decoded instance.
func Validate(cfg *Config) error {
	sch, err := jsonschema.CompileString("hustlog-config.json", configSchemaJSON)
	if err != nil {
		return errs.Wrap(errs.ConfigError, "compiling config schema", err)
	}

	b, err := json.Marshal(cfg)
	if err != nil {
		return errs.Wrap(errs.ConfigError, "encoding config for validation", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return errs.Wrap(errs.ConfigError, "decoding config for validation", err)
	}

	if err := sch.Validate(v); err != nil {
		return errs.Wrap(errs.ConfigError, "validating config", err)
	}
	return nil
}
