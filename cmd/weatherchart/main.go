package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"weatherchart/internal/config"
	"weatherchart/internal/logging"
	"weatherchart/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (default: $WEATHERCHART_CONFIG or ./weatherchart.yaml)")
	logLevel := flag.String("log-level", "", "Override logging.level")
	logFormat := flag.String("log-format", "", "Override logging.format (json or console)")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	if len(args) == 1 && args[0] == "list" {
		printStages(os.Stdout)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Logging.Format = *logFormat
	}
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().Strs("stages", args).Str("data_dir", cfg.DataDir).Msg("weatherchart starting")
	if err := pipeline.Run(ctx, cfg, args); err != nil {
		stop()
		logging.Fatal().Err(err).Msg("pipeline failed")
	}
	logging.Info().Msg("weatherchart done")
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: weatherchart [flags] <stage>... | all | list\n\nFlags:\n")
	flag.PrintDefaults()
	fmt.Fprintln(out, "\nStages:")
	printStages(out)
}

func printStages(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, s := range pipeline.Stages() {
		fmt.Fprintf(tw, "  %2d\t%s\t%s\n", i+1, s.Name, s.Description)
	}
	tw.Flush()
}
