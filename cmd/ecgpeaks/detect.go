package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"unicode"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-ecg/ecg/detect"
	"github.com/cwbudde/algo-ecg/ecg/threshold"
	"github.com/cwbudde/algo-ecg/ecg/transform"
	"github.com/cwbudde/algo-ecg/internal/report"
)

type detectOptions struct {
	threshold float64
	transform string
	rate      int
	minWidth  int
	maxWidth  int
	format    string
}

func detectCommand(a *app) *cobra.Command {
	var o detectOptions

	cmd := &cobra.Command{
		Use:   "detect [FILE|-]",
		Short: "Run the run detector on a column of numbers",
		Long: `Read whitespace or comma separated numbers from FILE or standard input,
optionally transform them, and print the centre and width of every run
above the threshold. Without --threshold the adaptive estimate is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return a.detect(cmd.OutOrStdout(), in, o)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&o.threshold, "threshold", math.NaN(), "Detection threshold; estimated when unset")
	flags.StringVar(&o.transform, "transform", "none", "Transform to apply first: none, r, p")
	flags.IntVar(&o.rate, "rate", 0, "Sampling rate in Hz, required for --transform r")
	flags.IntVar(&o.minWidth, "min-width", 0, "Keep runs wider than this")
	flags.IntVar(&o.maxWidth, "max-width", 0, "Keep runs narrower than this; 0 disables the filter")
	flags.StringVarP(&o.format, "format", "f", "", "Output format: table, json; defaults to output.format")
	return cmd
}

func (a *app) detect(out io.Writer, in io.Reader, o detectOptions) error {
	name := o.format
	if name == "" {
		name = a.settings.Output.Format
	}
	format, err := report.ParseFormat(name)
	if err != nil {
		return err
	}

	values, err := readNumbers(in)
	if err != nil {
		return err
	}

	switch strings.ToLower(o.transform) {
	case "", "none":
	case "r":
		window, err := transform.ParseWindow(a.settings.Detect.Window)
		if err != nil {
			return err
		}
		values, err = transform.GradientSquare(values, o.rate, transform.WithWindow(window))
		if err != nil {
			return err
		}
	case "p":
		values = transform.Phasor(values, a.settings.Detect.PhasorReference)
	default:
		return fmt.Errorf("unknown transform %q", o.transform)
	}

	thr := o.threshold
	if math.IsNaN(thr) {
		thr, err = threshold.Estimate(values)
		if err != nil {
			return err
		}
		a.log.Debug("estimated threshold", "threshold", thr, "in_band", len(threshold.InBand(values)))
	}

	peaks := detect.Detect(values, thr)
	if o.maxWidth > 0 {
		peaks = detect.FilterByWidth(peaks, o.minWidth, o.maxWidth)
	}
	a.log.Info("detected runs", "samples", len(values), "threshold", thr, "runs", len(peaks))

	return writePeaks(out, peaks, thr, format)
}

type peaksOutput struct {
	Threshold float64       `json:"threshold" yaml:"threshold"`
	Peaks     []detect.Peak `json:"peaks" yaml:"peaks"`
}

func writePeaks(out io.Writer, peaks []detect.Peak, thr float64, format report.Format) error {
	if peaks == nil {
		peaks = []detect.Peak{}
	}
	doc := peaksOutput{Threshold: thr, Peaks: peaks}

	switch format {
	case report.JSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case report.YAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case report.Table:
	default:
		return fmt.Errorf("unsupported format %v", format)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Position\tWidth\n")
	fmt.Fprintf(tw, "--------\t-----\n")
	for _, p := range peaks {
		fmt.Fprintf(tw, "%d\t%d\n", p.Position, p.Width)
	}
	return tw.Flush()
}

func readNumbers(r io.Reader) ([]float64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	fields := strings.FieldsFunc(string(data), func(c rune) bool {
		return unicode.IsSpace(c) || c == ',' || c == ';'
	})

	values := make([]float64, 0, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i+1, err)
		}
		values = append(values, v)
	}
	return values, nil
}
