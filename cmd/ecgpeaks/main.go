// Command ecgpeaks extracts R and P wave landmarks from ECG recordings.
//
// Usage:
//
//	ecgpeaks analyze [flags] FILE
//	ecgpeaks detect [flags] [FILE|-]
//	ecgpeaks version
//
// Settings are read from ecgpeaks.yaml in the working directory or the
// user config directory, from ECGPEAKS_* environment variables and from
// flags, in increasing order of precedence.
//
// Examples:
//
//	ecgpeaks analyze recording.edf
//	ecgpeaks analyze --format json --window sine holter.csv
//	ecgpeaks analyze --metrics-file stages.prom watch.csv
//	seq 0 9 | ecgpeaks detect --threshold 4.5
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
