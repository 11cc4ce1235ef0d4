package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestFlags_DefaultsApply(t *testing.T) {
	var cfg Config
	app := &cli.App{
		Name:  "hustlog",
		Flags: Flags(&cfg),
		Action: func(c *cli.Context) error {
			ApplySliceFlags(c, &cfg)
			return nil
		},
	}
	require.NoError(t, app.Run([]string{"hustlog"}))
	require.Equal(t, "csv", cfg.OutputFormat)
	require.Equal(t, 1000, cfg.OutputBatchSize)
	require.Equal(t, 2, cfg.RayonThreads)
	require.Equal(t, 30, cfg.TickInterval)
}

func TestFlags_Overrides(t *testing.T) {
	var cfg Config
	app := &cli.App{
		Name:  "hustlog",
		Flags: Flags(&cfg),
		Action: func(c *cli.Context) error {
			ApplySliceFlags(c, &cfg)
			return nil
		},
	}
	require.NoError(t, app.Run([]string{"hustlog", "--output-format", "sql", "--grok-extra-patterns", "FOO \\d+"}))
	require.Equal(t, "sql", cfg.OutputFormat)
	require.Equal(t, []string{"FOO \\d+"}, cfg.GrokExtraPatterns)
}

func TestLoadYAML_MergesOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output_format: sql\ntick_interval: 5\n"), 0o644))

	cfg := defaults()
	require.NoError(t, LoadYAML(path, &cfg))
	require.Equal(t, "sql", cfg.OutputFormat)
	require.Equal(t, 5, cfg.TickInterval)
	require.Equal(t, 2, cfg.RayonThreads) // untouched default survives
}

func TestValidate_RejectsBadOutputFormat(t *testing.T) {
	cfg := defaults()
	cfg.OutputFormat = "xml"
	require.Error(t, Validate(&cfg))
}

func TestValidate_AcceptsDefaults(t *testing.T) {
	cfg := defaults()
	require.NoError(t, Validate(&cfg))
}

func TestClassifyInput(t *testing.T) {
	k, addr := ClassifyInput("-")
	require.Equal(t, SourceStdin, k)
	k, addr = ClassifyInput("tcp://0.0.0.0:9000")
	require.Equal(t, SourceTCP, k)
	require.Equal(t, "0.0.0.0:9000", addr)
	k, addr = ClassifyInput("udp://0.0.0.0:9001")
	require.Equal(t, SourceUDP, k)
	require.Equal(t, "0.0.0.0:9001", addr)
	k, addr = ClassifyInput("/var/log/syslog")
	require.Equal(t, SourceFile, k)
	require.Equal(t, "/var/log/syslog", addr)
}

func TestClassifyOutput(t *testing.T) {
	k, driver, dsn := ClassifyOutput("")
	require.Equal(t, OutputStdout, k)

	k, driver, dsn = ClassifyOutput("-")
	require.Equal(t, OutputStdout, k)

	k, driver, dsn = ClassifyOutput("/var/log/out.csv")
	require.Equal(t, OutputFile, k)
	require.Equal(t, "/var/log/out.csv", dsn)

	k, driver, dsn = ClassifyOutput("db://sqlite3//tmp/hustlog.db")
	require.Equal(t, OutputDB, k)
	require.Equal(t, "sqlite3", driver)
	require.Equal(t, "/tmp/hustlog.db", dsn)
}
