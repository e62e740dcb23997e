package ingest

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/algo-ecg/ecg/recording"
)

const (
	edfFixedHeader  = 256
	edfSignalHeader = 256
	edfAnnotations  = "EDF Annotations"

	// maxEDFRecordBytes bounds one data record across all signals.
	maxEDFRecordBytes = 16 << 20
)

// EDFHeader is the fixed part of an EDF file header.
type EDFHeader struct {
	Version            string
	PatientID          string
	RecordingID        string
	HeaderBytes        int
	DataRecords        int
	DataRecordDuration time.Duration
	Signals            []EDFSignal
}

// EDFSignal describes one signal of an EDF file.
type EDFSignal struct {
	Label             string
	TransducerType    string
	PhysicalDimension string
	PhysicalMin       float64
	PhysicalMax       float64
	DigitalMin        int
	DigitalMax        int
	Prefiltering      string
	SamplesPerRecord  int
}

// SampleRate returns the signal's sampling rate in Hz.
func (s EDFSignal) SampleRate(recordDuration time.Duration) float64 {
	if recordDuration <= 0 {
		return 0
	}
	return float64(s.SamplesPerRecord) / recordDuration.Seconds()
}

func (s EDFSignal) physical(d int16) float64 {
	span := float64(s.DigitalMax - s.DigitalMin)
	if span == 0 {
		return float64(d)
	}
	gain := (s.PhysicalMax - s.PhysicalMin) / span
	return (float64(d)-float64(s.DigitalMin))*gain + s.PhysicalMin
}

// LoadEDF reads an EDF recording from path.
func LoadEDF(path string) (recording.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return recording.Source{}, fmt.Errorf("ingest: %w", err)
	}
	defer f.Close()
	return ReadEDF(bufio.NewReader(f))
}

// ReadEDF parses an EDF stream. Up to three ordinary signals sharing the
// sampling rate of the first one become channels; annotation signals are
// skipped. The unit is the physical dimension of the first kept signal.
// Samples are appended record by record, so a header claiming more data
// than the stream holds fails with ErrMalformed.
func ReadEDF(r io.Reader) (recording.Source, error) {
	hdr, err := ReadEDFHeader(r)
	if err != nil {
		return recording.Source{}, err
	}

	var keep []int
	var rate float64
	for i, s := range hdr.Signals {
		if s.Label == edfAnnotations {
			continue
		}
		fs := s.SampleRate(hdr.DataRecordDuration)
		if len(keep) == 0 {
			rate = fs
		} else if fs != rate {
			continue
		}
		keep = append(keep, i)
		if len(keep) == 3 {
			break
		}
	}
	if len(keep) == 0 || rate <= 0 {
		return recording.Source{}, fmt.Errorf("%w: edf: no ordinary signal", ErrMissingField)
	}

	channels := make([][]float64, len(keep))
	slot := make(map[int]int, len(keep))
	for k, i := range keep {
		slot[i] = k
	}

	buf := make([]byte, 0, 2*4096)
	for rec := 0; hdr.DataRecords < 0 || rec < hdr.DataRecords; rec++ {
		for i, s := range hdr.Signals {
			size := 2 * s.SamplesPerRecord
			if cap(buf) < size {
				buf = make([]byte, size)
			}
			buf = buf[:size]
			if _, err := io.ReadFull(r, buf); err != nil {
				if hdr.DataRecords < 0 && i == 0 && errors.Is(err, io.EOF) {
					return edfSource(hdr, keep, channels, rate), nil
				}
				return recording.Source{}, malformed("edf: record %d signal %d: %v", rec, i, err)
			}
			k, ok := slot[i]
			if !ok {
				continue
			}
			for j := 0; j < s.SamplesPerRecord; j++ {
				d := int16(binary.LittleEndian.Uint16(buf[2*j:]))
				channels[k] = append(channels[k], s.physical(d))
			}
		}
	}

	return edfSource(hdr, keep, channels, rate), nil
}

func edfSource(hdr EDFHeader, keep []int, channels [][]float64, rate float64) recording.Source {
	unit := normaliseUnit(hdr.Signals[keep[0]].PhysicalDimension)
	if unit == "" {
		unit = DefaultUnit
	}
	return recording.Source{
		Channels:   channels,
		SampleRate: int(math.Round(rate)),
		Unit:       unit,
	}
}

// ReadEDFHeader parses the fixed and per-signal header of an EDF stream,
// leaving r positioned at the first data record.
func ReadEDFHeader(r io.Reader) (EDFHeader, error) {
	fixed := make([]byte, edfFixedHeader)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return EDFHeader{}, malformed("edf header: %v", err)
	}

	f := fieldReader{buf: fixed}
	hdr := EDFHeader{
		Version:     f.text(8),
		PatientID:   f.text(80),
		RecordingID: f.text(80),
	}
	f.skip(16) // start date and time
	hdr.HeaderBytes = f.int(8)
	f.skip(44)
	hdr.DataRecords = f.int(8)
	duration := f.float(8)
	ns := f.int(4)
	if f.err != nil {
		return EDFHeader{}, malformed("edf header: %v", f.err)
	}
	if ns <= 0 {
		return EDFHeader{}, malformed("edf header: %d signals", ns)
	}
	if duration <= 0 {
		return EDFHeader{}, malformed("edf header: record duration %v", duration)
	}
	hdr.DataRecordDuration = time.Duration(duration * float64(time.Second))

	sig := make([]byte, ns*edfSignalHeader)
	if _, err := io.ReadFull(r, sig); err != nil {
		return EDFHeader{}, malformed("edf signal header: %v", err)
	}

	// Per-signal fields are stored column-wise: every label, then every
	// transducer type and so on.
	f = fieldReader{buf: sig}
	hdr.Signals = make([]EDFSignal, ns)
	for i := range hdr.Signals {
		hdr.Signals[i].Label = f.text(16)
	}
	for i := range hdr.Signals {
		hdr.Signals[i].TransducerType = f.text(80)
	}
	for i := range hdr.Signals {
		hdr.Signals[i].PhysicalDimension = f.text(8)
	}
	for i := range hdr.Signals {
		hdr.Signals[i].PhysicalMin = f.float(8)
	}
	for i := range hdr.Signals {
		hdr.Signals[i].PhysicalMax = f.float(8)
	}
	for i := range hdr.Signals {
		hdr.Signals[i].DigitalMin = f.int(8)
	}
	for i := range hdr.Signals {
		hdr.Signals[i].DigitalMax = f.int(8)
	}
	for i := range hdr.Signals {
		hdr.Signals[i].Prefiltering = f.text(80)
	}
	for i := range hdr.Signals {
		hdr.Signals[i].SamplesPerRecord = f.int(8)
	}
	if f.err != nil {
		return EDFHeader{}, malformed("edf signal header: %v", f.err)
	}
	recordBytes := 0
	for i, s := range hdr.Signals {
		if s.SamplesPerRecord <= 0 {
			return EDFHeader{}, malformed("edf signal %d: %d samples per record", i, s.SamplesPerRecord)
		}
		recordBytes += 2 * s.SamplesPerRecord
		if recordBytes > maxEDFRecordBytes {
			return EDFHeader{}, malformed("edf signal %d: data record exceeds %d bytes", i, maxEDFRecordBytes)
		}
	}
	return hdr, nil
}

// fieldReader walks fixed-width ASCII fields, keeping the first error.
type fieldReader struct {
	buf []byte
	off int
	err error
}

func (f *fieldReader) text(n int) string {
	s := strings.TrimSpace(string(f.buf[f.off : f.off+n]))
	f.off += n
	return s
}

func (f *fieldReader) skip(n int) { f.off += n }

func (f *fieldReader) int(n int) int {
	s := f.text(n)
	v, err := strconv.Atoi(s)
	if err != nil && f.err == nil {
		f.err = fmt.Errorf("integer field %q", s)
	}
	return v
}

func (f *fieldReader) float(n int) float64 {
	s := f.text(n)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && f.err == nil {
		f.err = fmt.Errorf("numeric field %q", s)
	}
	return v
}
