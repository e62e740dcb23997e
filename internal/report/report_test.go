package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-ecg/ecg/recording"
	"github.com/cwbudde/algo-ecg/internal/testutil"
)

func assemble(t *testing.T) *recording.Recording {
	t.Helper()
	rec, err := recording.Assemble(recording.Source{
		Channels: [][]float64{
			testutil.SpikeTrain(200, 10, 1, 1000, 5),
			testutil.DC(0, 1000),
		},
		SampleRate: 200,
		Unit:       "uV",
	})
	require.NoError(t, err)
	return rec
}

func TestBuild(t *testing.T) {
	r := Build("fixture.csv", assemble(t))

	assert.Equal(t, "fixture.csv", r.Source)
	assert.Equal(t, 200, r.SampleRate)
	assert.Equal(t, "uV", r.Unit)
	require.Len(t, r.Leads, 2)

	ok := r.Leads[0]
	assert.Equal(t, 0, ok.Channel)
	assert.Empty(t, ok.Error)
	assert.Len(t, ok.RPeaks, 10)
	assert.Len(t, ok.RWidths, 10)
	assert.Len(t, ok.RR, 10)
	assert.Equal(t, 20.0, ok.BPM)
	assert.Nil(t, ok.Correlation, "NaN correlation is dropped")
	require.NotNil(t, ok.HRV)
	require.NotNil(t, ok.HRV.MeanRR)
	assert.InDelta(t, 1000, *ok.HRV.MeanRR, 1e-9)
	require.NotNil(t, ok.RThreshold)

	failed := r.Leads[1]
	assert.Equal(t, 1, failed.Channel)
	assert.Contains(t, failed.Error, "r-detected")
	assert.Nil(t, failed.HRV)
}

func TestWriteJSON(t *testing.T) {
	r := Build("", assemble(t))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, r, JSON))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, r, decoded)
	assert.NotContains(t, buf.String(), "source")
	assert.NotContains(t, buf.String(), "correlation")
}

func TestWriteYAML(t *testing.T) {
	r := Build("x.npz", assemble(t))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, r, YAML))

	var decoded Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, r.Leads[0].RPeaks, decoded.Leads[0].RPeaks)
	assert.Equal(t, r.Leads[1].Error, decoded.Leads[1].Error)
	assert.Contains(t, buf.String(), "sample_rate: 200")
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Build("rec.edf", assemble(t)), Table))

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "Source: rec.edf", lines[0])
	assert.Equal(t, "Sample rate: 200 Hz, unit: uV", lines[1])
	assert.True(t, strings.HasPrefix(lines[3], "Lead"))

	fields := strings.Fields(lines[5])
	assert.Equal(t, []string{"1", "10", "10", "0", "20", "n/a", "1000.0", "0.0", "0.0", "0.0", "ok"}, fields)
	assert.Contains(t, lines[6], "threshold")
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, Report{}, Format(9)))
}

func TestParseFormat(t *testing.T) {
	for name, want := range map[string]Format{"": Table, "TABLE": Table, "json": JSON, "yml": YAML} {
		got, err := ParseFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
	assert.Equal(t, "yaml", YAML.String())
}
