package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-ecg/ecg/recording"
)

// DefaultHolterRate is used for Holter exports without a time column.
const DefaultHolterRate = 180

var holterColumns = []string{"channel_1", "channel_2", "channel_3"}

// LoadCSV reads a CSV recording from path.
func LoadCSV(path string) (recording.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return recording.Source{}, fmt.Errorf("ingest: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses a CSV recording. A header row naming any of
// channel_1..channel_3 selects the Holter layout, where channel_N is
// always lead slot N-1; anything else is read as an Apple Watch export.
func ReadCSV(r io.Reader) (recording.Source, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return recording.Source{}, malformed("csv: %v", err)
	}
	if len(rows) == 0 {
		return recording.Source{}, malformed("csv: no rows")
	}

	if isHolterHeader(rows[0]) {
		return readHolter(rows)
	}
	return readAppleWatch(rows)
}

func isHolterHeader(header []string) bool {
	for _, h := range header {
		for _, c := range holterColumns {
			if strings.EqualFold(strings.TrimSpace(h), c) {
				return true
			}
		}
	}
	return false
}

func readHolter(rows [][]string) (recording.Source, error) {
	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var cols, slots []int
	for slot, c := range holterColumns {
		if i, ok := index[c]; ok {
			cols = append(cols, i)
			slots = append(slots, slot)
		}
	}

	body := rows[1:]
	channels := make([][]float64, len(cols))
	for k := range channels {
		channels[k] = make([]float64, 0, len(body))
	}
	for n, row := range body {
		for k, col := range cols {
			v, err := parseField(row, col)
			if err != nil {
				return recording.Source{}, malformed("csv: row %d: %v", n+2, err)
			}
			channels[k] = append(channels[k], v)
		}
	}

	fs := DefaultHolterRate
	if col, ok := index["time_seconds"]; ok && len(body) > 1 {
		t0, err0 := parseField(body[0], col)
		t1, err1 := parseField(body[1], col)
		if err := errors.Join(err0, err1); err != nil {
			return recording.Source{}, malformed("csv: time_seconds: %v", err)
		}
		if dt := t1 - t0; dt > 0 {
			fs = int(math.Round(1 / dt))
		}
	}

	return recording.Source{Channels: channels, Slots: slots, SampleRate: fs, Unit: DefaultUnit}, nil
}

// readAppleWatch handles the layout written by the Health app: key/value
// metadata rows followed by one sample per row.
func readAppleWatch(rows [][]string) (recording.Source, error) {
	var (
		rate    float64
		unit    = DefaultUnit
		samples []float64
	)
	for _, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64); err == nil {
			samples = append(samples, v)
			continue
		}
		if len(row) < 2 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(row[0])) {
		case "sample rate":
			fields := strings.Fields(row[1])
			if len(fields) == 0 {
				return recording.Source{}, malformed("csv: empty sample rate")
			}
			v, err := strconv.ParseFloat(fields[0], 64)
			if err != nil {
				return recording.Source{}, malformed("csv: sample rate %q", row[1])
			}
			rate = v
		case "unit":
			if u := normaliseUnit(row[1]); u != "" {
				unit = u
			}
		}
	}

	if rate <= 0 {
		return recording.Source{}, fmt.Errorf("%w: csv: sample rate", ErrMissingField)
	}
	if len(samples) == 0 {
		return recording.Source{}, malformed("csv: no samples")
	}
	return recording.Source{
		Channels:   [][]float64{samples},
		SampleRate: int(math.Round(rate)),
		Unit:       unit,
	}, nil
}

func parseField(row []string, col int) (float64, error) {
	if col >= len(row) {
		return 0, fmt.Errorf("missing column %d", col)
	}
	return strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
}

func normaliseUnit(u string) string {
	u = strings.TrimSpace(u)
	switch u {
	case "µV", "μV":
		return "uV"
	}
	return u
}
