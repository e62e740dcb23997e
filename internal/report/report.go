// Package report renders an assembled recording as a table, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-ecg/ecg/detect"
	"github.com/cwbudde/algo-ecg/ecg/lead"
	"github.com/cwbudde/algo-ecg/ecg/recording"
)

// Format is an output encoding.
type Format int

const (
	Table Format = iota
	JSON
	YAML
)

func (f Format) String() string {
	switch f {
	case Table:
		return "table"
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat maps a name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "table", "text":
		return Table, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return 0, fmt.Errorf("report: unknown format %q", name)
	}
}

// Report is the serialisable view of a recording. Undefined statistics
// are nil so that JSON encoding never sees NaN.
type Report struct {
	Source     string `json:"source,omitempty" yaml:"source,omitempty"`
	SampleRate int    `json:"sample_rate" yaml:"sample_rate"`
	Unit       string `json:"unit" yaml:"unit"`
	Leads      []Lead `json:"leads" yaml:"leads"`
}

// Lead is the per-channel part of a Report.
type Lead struct {
	Channel     int        `json:"channel" yaml:"channel"`
	Error       string     `json:"error,omitempty" yaml:"error,omitempty"`
	RThreshold  *float64   `json:"r_threshold,omitempty" yaml:"r_threshold,omitempty"`
	PThreshold  *float64   `json:"p_threshold,omitempty" yaml:"p_threshold,omitempty"`
	RPeaks      []int      `json:"r_peaks,omitempty" yaml:"r_peaks,omitempty"`
	RWidths     []int      `json:"r_widths,omitempty" yaml:"r_widths,omitempty"`
	RR          []int      `json:"rr,omitempty" yaml:"rr,omitempty"`
	RawP        []int      `json:"raw_p,omitempty" yaml:"raw_p,omitempty"`
	RefinedP    []int      `json:"refined_p,omitempty" yaml:"refined_p,omitempty"`
	Correlation *float64   `json:"correlation,omitempty" yaml:"correlation,omitempty"`
	BPM         float64    `json:"bpm" yaml:"bpm"`
	HRV         *HRV       `json:"hrv,omitempty" yaml:"hrv,omitempty"`
	Amplitude   *Amplitude `json:"amplitude,omitempty" yaml:"amplitude,omitempty"`
}

// Amplitude describes the preprocessed signal in working units.
type Amplitude struct {
	Mean       float64 `json:"mean" yaml:"mean"`
	Std        float64 `json:"std" yaml:"std"`
	RMS        float64 `json:"rms" yaml:"rms"`
	PeakToPeak float64 `json:"peak_to_peak" yaml:"peak_to_peak"`
	Kurtosis   float64 `json:"kurtosis" yaml:"kurtosis"`
}

// HRV holds variability measures in milliseconds.
type HRV struct {
	Count  int      `json:"count" yaml:"count"`
	MeanRR *float64 `json:"mean_rr_ms,omitempty" yaml:"mean_rr_ms,omitempty"`
	SDNN   *float64 `json:"sdnn_ms,omitempty" yaml:"sdnn_ms,omitempty"`
	RMSSD  *float64 `json:"rmssd_ms,omitempty" yaml:"rmssd_ms,omitempty"`
	PNN50  *float64 `json:"pnn50_pct,omitempty" yaml:"pnn50_pct,omitempty"`
}

// Build converts rec into a Report. Unused channel slots are omitted.
func Build(source string, rec *recording.Recording) Report {
	r := Report{
		Source:     source,
		SampleRate: rec.SampleRate,
		Unit:       rec.Unit,
		Leads:      make([]Lead, 0, rec.Channels),
	}
	for ch, o := range rec.Outcomes {
		if !o.Used() {
			continue
		}
		if o.Err != nil {
			r.Leads = append(r.Leads, Lead{Channel: ch, Error: o.Err.Error()})
			continue
		}
		r.Leads = append(r.Leads, fromLead(o.Lead))
	}
	return r
}

func fromLead(l *lead.Lead) Lead {
	widths := make([]int, len(l.RPeaks()))
	for i, p := range l.RPeaks() {
		widths[i] = p.Width
	}
	h := l.HRV()
	a := l.Amplitude()
	return Lead{
		Channel:     l.Channel(),
		RThreshold:  finite(l.RThreshold()),
		PThreshold:  finite(l.PThreshold()),
		RPeaks:      nonEmpty(detect.Positions(l.RPeaks())),
		RWidths:     nonEmpty(widths),
		RR:          nonEmpty(l.RRIntervals()),
		RawP:        nonEmpty(detect.Positions(l.RawPPeaks())),
		RefinedP:    nonEmpty(l.RefinedP()),
		Correlation: finite(l.Correlation()),
		BPM:         l.BPM(),
		HRV: &HRV{
			Count:  h.Count,
			MeanRR: finite(h.MeanRR),
			SDNN:   finite(h.SDNN),
			RMSSD:  finite(h.RMSSD),
			PNN50:  finite(h.PNN50),
		},
		Amplitude: &Amplitude{
			Mean:       a.Mean,
			Std:        a.Std,
			RMS:        a.RMS,
			PeakToPeak: a.PeakToPeak,
			Kurtosis:   a.Kurtosis,
		},
	}
}

func nonEmpty(s []int) []int {
	if len(s) == 0 {
		return nil
	}
	return s
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Write encodes r to w in the given format.
func Write(w io.Writer, r Report, f Format) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("report: json: %w", err)
		}
		return nil
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("report: yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("report: yaml: %w", err)
		}
		return nil
	case Table:
		return writeTable(w, r)
	default:
		return fmt.Errorf("report: unknown format %v", f)
	}
}

func writeTable(w io.Writer, r Report) error {
	if r.Source != "" {
		if _, err := fmt.Fprintf(w, "Source: %s\n", r.Source); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Sample rate: %d Hz, unit: %s\n\n", r.SampleRate, r.Unit); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Lead\tR peaks\tP (raw)\tP (refined)\tBPM\tCorr\tMean RR [ms]\tSDNN [ms]\tRMSSD [ms]\tpNN50 [%%]\tStatus\n")
	fmt.Fprintf(tw, "----\t-------\t-------\t-----------\t---\t----\t------------\t---------\t----------\t---------\t------\n")
	for _, l := range r.Leads {
		if l.Error != "" {
			fmt.Fprintf(tw, "%d\t-\t-\t-\t-\t-\t-\t-\t-\t-\t%s\n", l.Channel+1, l.Error)
			continue
		}
		h := l.HRV
		if h == nil {
			h = &HRV{}
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%.0f\t%s\t%s\t%s\t%s\t%s\tok\n",
			l.Channel+1,
			len(l.RPeaks),
			len(l.RawP),
			len(l.RefinedP),
			l.BPM,
			optional(l.Correlation, "%.3f"),
			optional(h.MeanRR, "%.1f"),
			optional(h.SDNN, "%.1f"),
			optional(h.RMSSD, "%.1f"),
			optional(h.PNN50, "%.1f"),
		)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("report: table: %w", err)
	}
	return nil
}

func optional(v *float64, format string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf(format, *v)
}
