package ingest

import (
	"archive/zip"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/cwbudde/algo-ecg/ecg/recording"
)

// NPZ member names.
const (
	npzRate = "fs"
)

var npzLeads = []string{"ecg_1", "ecg_2", "ecg_3"}

// LoadNPZ reads a NumPy archive from path.
func LoadNPZ(path string) (recording.Source, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return recording.Source{}, malformed("npz: %v", err)
	}
	defer zr.Close()
	return readNPZ(&zr.Reader)
}

// ReadNPZ parses a NumPy archive of the given size. The archive must hold
// a scalar fs and at least ecg_1; ecg_2 and ecg_3 are optional but may not
// be skipped.
func ReadNPZ(r io.ReaderAt, size int64) (recording.Source, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return recording.Source{}, malformed("npz: %v", err)
	}
	return readNPZ(zr)
}

func readNPZ(zr *zip.Reader) (recording.Source, error) {
	members := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		members[strings.TrimSuffix(f.Name, ".npy")] = f
	}

	rate, err := npzMember(members, npzRate)
	if err != nil {
		return recording.Source{}, err
	}
	if len(rate.data) != 1 {
		return recording.Source{}, malformed("npz: fs has %d values", len(rate.data))
	}

	var channels [][]float64
	for _, name := range npzLeads {
		if _, ok := members[name]; !ok {
			break
		}
		arr, err := npzMember(members, name)
		if err != nil {
			return recording.Source{}, err
		}
		if len(arr.shape) != 1 {
			return recording.Source{}, malformed("npz: %s has shape %v, want one dimension", name, arr.shape)
		}
		channels = append(channels, arr.data)
	}
	if len(channels) == 0 {
		return recording.Source{}, fmt.Errorf("%w: npz: %s", ErrMissingField, npzLeads[0])
	}

	return recording.Source{
		Channels:   channels,
		SampleRate: int(math.Round(rate.data[0])),
		Unit:       DefaultUnit,
	}, nil
}

func npzMember(members map[string]*zip.File, name string) (npyArray, error) {
	f, ok := members[name]
	if !ok {
		return npyArray{}, fmt.Errorf("%w: npz: %s", ErrMissingField, name)
	}
	rc, err := f.Open()
	if err != nil {
		return npyArray{}, malformed("npz: %s: %v", name, err)
	}
	defer rc.Close()

	arr, err := readNPY(rc)
	if err != nil {
		return npyArray{}, malformed("npz: %s: %v", name, err)
	}
	return arr, nil
}
