// Command hustlog ingests semi-structured log streams, parses them
// against a grok schema, optionally evaluates a SELECT over the parsed
// rows, and emits the result to a sink. See SPEC_FULL.md for the full
// design.
package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/gops/agent"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/asen/hustlog/internal/batcher"
	"github.com/asen/hustlog/internal/config"
	"github.com/asen/hustlog/internal/grokparser"
	"github.com/asen/hustlog/internal/model"
	"github.com/asen/hustlog/internal/pipeline"
	"github.com/asen/hustlog/internal/sink"
	"github.com/asen/hustlog/internal/source"
	"github.com/asen/hustlog/internal/sqlengine"
	"github.com/asen/hustlog/internal/workerpool"
	hlog "github.com/asen/hustlog/pkg/log"
)

func main() {
	var cfg config.Config

	app := &cli.App{
		Name:  "hustlog",
		Usage: "parse, query, and re-emit semi-structured log streams",
		Flags: config.Flags(&cfg),
		Action: func(c *cli.Context) error {
			config.ApplySliceFlags(c, &cfg)
			return run(c, &cfg)
		},
	}

	if err := app.Run(os.Args); err != nil {
		hlog.Abortf("%v", err)
	}
}

func run(c *cli.Context, cfg *config.Config) error {
	if cfg.Conf != "" {
		cliCfg := *cfg
		if err := config.LoadYAML(cfg.Conf, cfg); err != nil {
			return err
		}
		// Flags set explicitly on the command line override the file.
		var cliKeys map[string]any
		b, _ := yaml.Marshal(cliCfg)
		_ = yaml.Unmarshal(b, &cliKeys)
		setKeys := make(map[string]any)
		for _, f := range c.App.Flags {
			if name := f.Names()[0]; c.IsSet(name) {
				key := strings.ReplaceAll(name, "-", "_")
				setKeys[key] = cliKeys[key]
			}
		}
		b, _ = yaml.Marshal(setKeys)
		_ = yaml.Unmarshal(b, cfg)
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	if cfg.Gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			hlog.Warnf("gops agent: %v", err)
		}
	}

	registry, err := grokparser.NewRegistry(grokparser.RegistryOptions{
		WithAliasOnly:         cfg.GrokWithAliasOnly,
		IgnoreDefaultPatterns: cfg.GrokIgnoreDefaultPatterns,
		PatternsFile:          cfg.GrokPatternsFile,
		ExtraPatterns:         cfg.GrokExtraPatterns,
	})
	if err != nil {
		return err
	}

	if cfg.GrokListDefaultPatterns {
		printDefaultPatterns(registry)
		return nil
	}

	pattern, err := registry.Compile(cfg.GrokPattern)
	if err != nil {
		return err
	}

	localOffset := grokparser.LocalOffsetSeconds()
	schema := &model.Schema{Name: "input"}
	for _, raw := range cfg.GrokSchemaColumns {
		col, err := grokparser.ParseSchemaColumnFlag(raw, localOffset)
		if err != nil {
			return err
		}
		schema.Columns = append(schema.Columns, col)
	}

	var q *sqlengine.Query
	if cfg.Query != "" {
		q, err = sqlengine.Build(cfg.Query, schema)
		if err != nil {
			return err
		}
	}

	outSink, outSchema, closeOut, err := buildSink(cfg, schema, q)
	if err != nil {
		return err
	}
	defer closeOut()

	pool := workerpool.New(cfg.RayonThreads)
	defer pool.Close()

	var asm pipeline.Assembly

	sinkStage := &sink.Stage{Sink: outSink, Schema: outSchema}
	sinkSend, sinkDone := sinkStage.Wrap(cfg.ChannelSize)
	asm.Add(sinkDone)

	rowSend := sinkSend
	if q != nil {
		sqlStage := &sqlengine.Stage{Query: q, Pool: pool}
		sqlSend, sqlDone := sqlStage.Wrap(cfg.ChannelSize, sinkSend)
		asm.Add(sqlDone)
		rowSend = sqlSend
	}

	batchStage := &batcher.Stage{Schema: schema, Size: cfg.OutputBatchSize, Pool: pool}
	batchSend, batchDone := batchStage.Wrap(cfg.ChannelSize, rowSend)
	asm.Add(batchDone)

	parserStage := &grokparser.Stage{Pattern: pattern, Schema: schema, Pool: pool}
	parserSend, parserDone := parserStage.Wrap(cfg.ChannelSize, batchSend)
	asm.Add(parserDone)

	if err := driveSource(cfg, &asm, parserSend); err != nil {
		return err
	}

	asm.Await()
	return nil
}

// buildSink picks the sink implementation from cfg.Output's URI scheme
// (config.ClassifyOutput, mirroring ClassifyInput's input-side
// dispatch): "db://driver/dsn" selects the native DBSink regardless of
// --output-format, anything else is a file path (or stdout) for the
// CSV/SQL-text sinks chosen by --output-format. The returned close
// func flushes/closes whatever resource buildSink opened.
func buildSink(cfg *config.Config, inputSchema *model.Schema, q *sqlengine.Query) (sink.Sink, *model.Schema, func(), error) {
	outSchema := inputSchema
	if q != nil {
		outSchema = q.OutputSchema
	}

	kind, driver, dsn := config.ClassifyOutput(cfg.Output)
	if kind == config.OutputDB {
		s := sink.NewDBSink(driver, dsn, "hustlog_output")
		return s, outSchema, func() {}, nil
	}

	w, closeW, err := openOutput(cfg.Output)
	if err != nil {
		return nil, nil, nil, err
	}

	switch cfg.OutputFormat {
	case "csv":
		s := sink.NewCSVSink(w)
		s.AddHeader = true
		return s, outSchema, closeW, nil
	case "sql":
		s := sink.NewSQLTextSink(w, "hustlog_output", cfg.OutputBatchSize)
		s.AddDDL = cfg.OutputAddDDL
		return s, outSchema, closeW, nil
	default:
		closeW()
		return nil, nil, nil, fmt.Errorf("unsupported output format %q", cfg.OutputFormat)
	}
}

func openOutput(path string) (*bufio.Writer, func(), error) {
	if path == "" || path == "-" {
		w := bufio.NewWriter(os.Stdout)
		return w, func() { w.Flush() }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	w := bufio.NewWriter(f)
	return w, func() { w.Flush(); f.Close() }, nil
}

func driveSource(cfg *config.Config, asm *pipeline.Assembly, down pipeline.Sender[[]model.RawRecord]) error {
	kind, addr := config.ClassifyInput(cfg.Input)
	switch kind {
	case config.SourceTCP:
		t := &source.TCPSource{Addr: addr, MergeMultiLine: cfg.MergeMultiLine, TickInterval: cfg.TickIntervalDuration(), Down: down}
		asm.RunSource(t.Run)
		return nil
	case config.SourceUDP:
		u := &source.UDPSource{Addr: addr, MergeMultiLine: cfg.MergeMultiLine, TickInterval: cfg.TickIntervalDuration(), IdleTimeout: cfg.IdleTimeoutDuration(), Down: down}
		asm.RunSource(u.Run)
		return nil
	case config.SourceStdin:
		asm.RunSource(func() error { return source.RunFile(os.Stdin, cfg.MergeMultiLine, down) })
		return nil
	default:
		f, err := os.Open(addr)
		if err != nil {
			return err
		}
		asm.RunSource(func() error {
			defer f.Close()
			return source.RunFile(f, cfg.MergeMultiLine, down)
		})
		return nil
	}
}

func printDefaultPatterns(r *grokparser.Registry) {
	patterns := r.DefaultPatterns()
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s %s\n", name, patterns[name])
	}
}
