package main

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-ecg/ecg/lead"
	"github.com/cwbudde/algo-ecg/ecg/observe"
	"github.com/cwbudde/algo-ecg/ecg/recording"
	"github.com/cwbudde/algo-ecg/ingest"
	"github.com/cwbudde/algo-ecg/internal/report"
)

func analyzeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Detect landmarks in every lead of a recording",
		Long: `Load a CSV, NPZ or EDF recording, run the landmark pipeline on up to
three leads concurrently and print a per-lead report.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.analyze(cmd, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringP("format", "f", "table", "Output format: table, json, yaml")
	flags.String("metrics-file", "", "Write stage metrics in Prometheus text format to this path")
	flags.String("window", "rectangular", "R transform window: rectangular, sine")
	flags.String("slice", "leading", "Slice policy for long recordings: leading, central")
	flags.Bool("highpass", false, "Remove baseline wander before detection")
	flags.Bool("standardise", false, "Scale each lead to zero mean and unit variance")
	flags.Int("near-duplicate", lead.DefaultNearDuplicate, "Merge distance in samples for R/P refinement")

	for key, name := range map[string]string{
		"output.format":          "format",
		"output.metrics":         "metrics-file",
		"detect.window":          "window",
		"preprocess.slice":       "slice",
		"preprocess.highpass":    "highpass",
		"preprocess.standardise": "standardise",
		"detect.nearduplicate":   "near-duplicate",
	} {
		cobra.CheckErr(a.v.BindPFlag(key, flags.Lookup(name)))
	}
	return cmd
}

func (a *app) analyze(cmd *cobra.Command, path string) error {
	format, err := report.ParseFormat(a.settings.Output.Format)
	if err != nil {
		return err
	}
	opts, err := a.settings.LeadOptions()
	if err != nil {
		return err
	}

	src, err := ingest.Load(path)
	if err != nil {
		return err
	}
	a.log.Info("loaded recording",
		"path", path,
		"channels", len(src.Channels),
		"sample_rate", src.SampleRate,
		"unit", src.Unit)

	observers := lead.Observers{observe.NewLogger(a.log)}
	var registry *prometheus.Registry
	if a.settings.Output.Metrics != "" {
		registry = prometheus.NewRegistry()
		m, err := observe.NewMetrics(registry)
		if err != nil {
			return err
		}
		observers = append(observers, m)
	}
	opts = append(opts, lead.WithObserver(observers))

	rec, err := recording.Assemble(src, opts...)
	if err != nil {
		return err
	}
	for ch, o := range rec.Outcomes {
		if o.Err != nil {
			a.log.Warn("lead failed", "channel", ch, "error", o.Err)
		}
	}

	if err := report.Write(cmd.OutOrStdout(), report.Build(path, rec), format); err != nil {
		return err
	}

	if registry != nil {
		if err := prometheus.WriteToTextfile(a.settings.Output.Metrics, registry); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		a.log.Debug("wrote metrics", "path", a.settings.Output.Metrics)
	}

	if _, err := rec.Primary(); err != nil {
		return errors.Join(fmt.Errorf("%s: no lead could be analysed", path), err)
	}
	return nil
}
