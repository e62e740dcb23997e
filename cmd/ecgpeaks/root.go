package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cwbudde/algo-ecg/internal/config"
)

// app carries state shared by all sub-commands.
type app struct {
	v          *viper.Viper
	configFile string
	settings   *config.Settings
	log        *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "ecgpeaks",
		Short:         "ECG landmark extraction",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initialize(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Path to a YAML config file")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text, json")
	cobra.CheckErr(a.v.BindPFlag("log.level", flags.Lookup("log-level")))
	cobra.CheckErr(a.v.BindPFlag("log.format", flags.Lookup("log-format")))

	root.AddCommand(
		analyzeCommand(a),
		detectCommand(a),
		versionCommand(),
	)
	return root
}

// initialize loads settings and builds the logger. Flags bound to viper
// take precedence over the file and environment.
func (a *app) initialize(stderr io.Writer) error {
	s, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	level, err := s.SlogLevel()
	if err != nil {
		return err
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(s.Log.Format, "json") {
		handler = slog.NewJSONHandler(stderr, opts)
	} else {
		handler = slog.NewTextHandler(stderr, opts)
	}

	a.settings = s
	a.log = slog.New(handler)
	return nil
}
