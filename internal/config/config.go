// Package config loads ecgpeaks settings from defaults, an optional YAML
// file and ECGPEAKS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/cwbudde/algo-ecg/ecg/lead"
	"github.com/cwbudde/algo-ecg/ecg/preprocess"
	"github.com/cwbudde/algo-ecg/ecg/transform"
)

// EnvPrefix is prepended to every environment override, e.g.
// ECGPEAKS_DETECT_WINDOW.
const EnvPrefix = "ECGPEAKS"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid setting")

// Settings is the full application configuration.
type Settings struct {
	Log        LogSettings        `mapstructure:"log" yaml:"log"`
	Preprocess PreprocessSettings `mapstructure:"preprocess" yaml:"preprocess"`
	Detect     DetectSettings     `mapstructure:"detect" yaml:"detect"`
	Output     OutputSettings     `mapstructure:"output" yaml:"output"`
}

// LogSettings controls the slog handler.
type LogSettings struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text or json
}

// PreprocessSettings maps onto preprocess options.
type PreprocessSettings struct {
	Slice         string  `mapstructure:"slice" yaml:"slice"`
	MaxSamples    int     `mapstructure:"maxsamples" yaml:"maxsamples"`
	WindowSeconds int     `mapstructure:"windowseconds" yaml:"windowseconds"`
	Highpass      bool    `mapstructure:"highpass" yaml:"highpass"`
	Cutoff        float64 `mapstructure:"cutoff" yaml:"cutoff"`
	Order         int     `mapstructure:"order" yaml:"order"`
	Standardise   bool    `mapstructure:"standardise" yaml:"standardise"`
}

// DetectSettings maps onto lead options.
type DetectSettings struct {
	Window          string  `mapstructure:"window" yaml:"window"`
	PhasorReference float64 `mapstructure:"phasorreference" yaml:"phasorreference"`
	NearDuplicate   int     `mapstructure:"nearduplicate" yaml:"nearduplicate"`
	MinRWidth       int     `mapstructure:"minrwidth" yaml:"minrwidth"`
	MaxRWidth       int     `mapstructure:"maxrwidth" yaml:"maxrwidth"`
}

// OutputSettings selects the report format and optional metrics dump.
type OutputSettings struct {
	Format  string `mapstructure:"format" yaml:"format"`   // table, json or yaml
	Metrics string `mapstructure:"metrics" yaml:"metrics"` // textfile path, empty to disable
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("preprocess.slice", preprocess.SliceLeading.String())
	v.SetDefault("preprocess.maxsamples", preprocess.DefaultMaxSamples)
	v.SetDefault("preprocess.windowseconds", preprocess.DefaultWindowSeconds)
	v.SetDefault("preprocess.highpass", false)
	v.SetDefault("preprocess.cutoff", preprocess.DefaultCutoff)
	v.SetDefault("preprocess.order", preprocess.DefaultOrder)
	v.SetDefault("preprocess.standardise", false)

	v.SetDefault("detect.window", transform.Rectangular.String())
	v.SetDefault("detect.phasorreference", transform.DefaultReference)
	v.SetDefault("detect.nearduplicate", lead.DefaultNearDuplicate)
	v.SetDefault("detect.minrwidth", 0)
	v.SetDefault("detect.maxrwidth", 0)

	v.SetDefault("output.format", "table")
	v.SetDefault("output.metrics", "")
}

// Load reads settings into a fresh Settings. When file is empty the
// working directory and the user config directory are searched for
// ecgpeaks.yaml, and a missing file is not an error.
func Load(v *viper.Viper, file string) (*Settings, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", file, err)
		}
	} else {
		v.SetConfigName("ecgpeaks")
		v.SetConfigType("yaml")
		for _, p := range searchPaths() {
			v.AddConfigPath(p)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: %w", err)
			}
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func searchPaths() []string {
	paths := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "ecgpeaks"))
	}
	return paths
}

// Validate checks every enumerated and numeric setting.
func (s *Settings) Validate() error {
	var errs []error
	if _, err := s.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(s.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: log.format %q", ErrInvalid, s.Log.Format))
	}
	if _, err := preprocess.ParseSlicePolicy(s.Preprocess.Slice); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalid, err))
	}
	if s.Preprocess.Highpass && (s.Preprocess.Cutoff <= 0 || s.Preprocess.Order <= 0) {
		errs = append(errs, fmt.Errorf("%w: high-pass needs positive cutoff and order", ErrInvalid))
	}
	if _, err := transform.ParseWindow(s.Detect.Window); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalid, err))
	}
	if s.Detect.PhasorReference <= 0 {
		errs = append(errs, fmt.Errorf("%w: detect.phasorreference must be positive", ErrInvalid))
	}
	if s.Detect.NearDuplicate < 0 {
		errs = append(errs, fmt.Errorf("%w: detect.nearduplicate must not be negative", ErrInvalid))
	}
	if s.Detect.MaxRWidth != 0 && s.Detect.MaxRWidth <= s.Detect.MinRWidth {
		errs = append(errs, fmt.Errorf("%w: detect.maxrwidth must exceed detect.minrwidth", ErrInvalid))
	}
	switch strings.ToLower(s.Output.Format) {
	case "table", "json", "yaml":
	default:
		errs = append(errs, fmt.Errorf("%w: output.format %q", ErrInvalid, s.Output.Format))
	}
	return errors.Join(errs...)
}

// SlogLevel parses Log.Level.
func (s *Settings) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.Log.Level)); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalid, s.Log.Level)
	}
	return level, nil
}

// LeadOptions converts the settings into pipeline options.
func (s *Settings) LeadOptions() ([]lead.Option, error) {
	policy, err := preprocess.ParseSlicePolicy(s.Preprocess.Slice)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	window, err := transform.ParseWindow(s.Detect.Window)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	pre := []preprocess.Option{
		preprocess.WithSlicePolicy(policy),
		preprocess.WithMaxSamples(s.Preprocess.MaxSamples),
		preprocess.WithWindowSeconds(s.Preprocess.WindowSeconds),
	}
	if s.Preprocess.Highpass {
		pre = append(pre, preprocess.WithHighpass(s.Preprocess.Cutoff, s.Preprocess.Order))
	}
	if s.Preprocess.Standardise {
		pre = append(pre, preprocess.WithStandardise())
	}

	opts := []lead.Option{
		lead.WithPreprocess(pre...),
		lead.WithWindow(window),
		lead.WithPhasorReference(s.Detect.PhasorReference),
		lead.WithNearDuplicateDistance(s.Detect.NearDuplicate),
	}
	if s.Detect.MaxRWidth > 0 {
		opts = append(opts, lead.WithRWidthBounds(s.Detect.MinRWidth, s.Detect.MaxRWidth))
	}
	return opts, nil
}
