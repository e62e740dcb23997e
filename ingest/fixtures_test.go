package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// npyBytes encodes a version 1.0 .npy payload. Scalars use a nil shape.
func npyBytes(t *testing.T, descr string, shape []int, values []float64) []byte {
	t.Helper()

	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = fmt.Sprint(d)
	}
	shapeText := "()"
	switch len(dims) {
	case 0:
	case 1:
		shapeText = "(" + dims[0] + ",)"
	default:
		shapeText = "(" + strings.Join(dims, ", ") + ")"
	}

	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': %s, }", descr, shapeText)
	for (10+len(header)+1)%64 != 0 {
		header += " "
	}
	header += "\n"

	var buf bytes.Buffer
	buf.Write(npyMagic)
	buf.Write([]byte{1, 0})
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(len(header))))
	buf.WriteString(header)

	order := binary.ByteOrder(binary.LittleEndian)
	if descr[0] == '>' {
		order = binary.BigEndian
	}
	for _, v := range values {
		var err error
		switch descr[1:] {
		case "f8":
			err = binary.Write(&buf, order, v)
		case "f4":
			err = binary.Write(&buf, order, float32(v))
		case "i8":
			err = binary.Write(&buf, order, int64(v))
		case "i2":
			err = binary.Write(&buf, order, int16(v))
		default:
			t.Fatalf("unsupported fixture dtype %q", descr)
		}
		require.NoError(t, err)
	}
	return buf.Bytes()
}

type npzMemberFixture struct {
	name string
	data []byte
}

func writeNPZ(t *testing.T, members ...npzMemberFixture) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rec.npz")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, m := range members {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: m.name + ".npy", Method: zip.Deflate})
		require.NoError(t, err)
		_, err = w.Write(m.data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

type edfSignalFixture struct {
	label        string
	dimension    string
	physMin      float64
	physMax      float64
	digMin       int
	digMax       int
	perRecord    int
	digitalValue func(record, sample int) int16
}

func edfBytes(t *testing.T, records int, duration float64, signals []edfSignalFixture) []byte {
	t.Helper()

	field := func(buf *bytes.Buffer, v string, width int) {
		require.LessOrEqual(t, len(v), width)
		buf.WriteString(v + strings.Repeat(" ", width-len(v)))
	}

	ns := len(signals)
	var buf bytes.Buffer
	field(&buf, "0", 8)
	field(&buf, "patient", 80)
	field(&buf, "recording", 80)
	field(&buf, "01.02.24", 8)
	field(&buf, "10.00.00", 8)
	field(&buf, fmt.Sprint(256*(ns+1)), 8)
	field(&buf, "", 44)
	field(&buf, fmt.Sprint(records), 8)
	field(&buf, fmt.Sprint(duration), 8)
	field(&buf, fmt.Sprint(ns), 4)

	for _, s := range signals {
		field(&buf, s.label, 16)
	}
	for range signals {
		field(&buf, "AgAgCl electrode", 80)
	}
	for _, s := range signals {
		field(&buf, s.dimension, 8)
	}
	for _, s := range signals {
		field(&buf, fmt.Sprint(s.physMin), 8)
	}
	for _, s := range signals {
		field(&buf, fmt.Sprint(s.physMax), 8)
	}
	for _, s := range signals {
		field(&buf, fmt.Sprint(s.digMin), 8)
	}
	for _, s := range signals {
		field(&buf, fmt.Sprint(s.digMax), 8)
	}
	for range signals {
		field(&buf, "HP:0.1Hz", 80)
	}
	for _, s := range signals {
		field(&buf, fmt.Sprint(s.perRecord), 8)
	}
	for range signals {
		field(&buf, "", 32)
	}

	for r := 0; r < records; r++ {
		for _, s := range signals {
			for j := 0; j < s.perRecord; j++ {
				require.NoError(t, binary.Write(&buf, binary.LittleEndian, s.digitalValue(r, j)))
			}
		}
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func nearly(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
