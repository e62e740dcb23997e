package ingest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

var npyMagic = []byte("\x93NUMPY")

// npyArray is a decoded one-dimensional or scalar .npy payload.
type npyArray struct {
	shape []int
	data  []float64
}

// readNPY decodes a little- or big-endian numeric array in C order.
func readNPY(r io.Reader) (npyArray, error) {
	var pre [8]byte
	if _, err := io.ReadFull(r, pre[:]); err != nil {
		return npyArray{}, fmt.Errorf("npy preamble: %w", err)
	}
	if !bytes.Equal(pre[:6], npyMagic) {
		return npyArray{}, fmt.Errorf("npy: bad magic %q", pre[:6])
	}

	var headerLen int
	switch major := pre[6]; major {
	case 1:
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return npyArray{}, fmt.Errorf("npy header length: %w", err)
		}
		headerLen = int(n)
	case 2, 3:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return npyArray{}, fmt.Errorf("npy header length: %w", err)
		}
		headerLen = int(n)
	default:
		return npyArray{}, fmt.Errorf("npy: unsupported version %d", major)
	}

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return npyArray{}, fmt.Errorf("npy header: %w", err)
	}

	descr, err := headerValue(string(header), "descr")
	if err != nil {
		return npyArray{}, err
	}
	shape, err := parseShape(string(header))
	if err != nil {
		return npyArray{}, err
	}
	if fo, err := headerValue(string(header), "fortran_order"); err == nil && fo == "True" && len(shape) > 1 {
		return npyArray{}, fmt.Errorf("npy: fortran order not supported")
	}

	dec, err := decoderFor(strings.Trim(descr, "'\""))
	if err != nil {
		return npyArray{}, err
	}

	count := 1
	for _, d := range shape {
		if d != 0 && count > math.MaxInt/dec.size/d {
			return npyArray{}, fmt.Errorf("npy: shape %v is too large", shape)
		}
		count *= d
	}

	// Read the payload before sizing anything from the header.
	want := count * dec.size
	raw, err := io.ReadAll(io.LimitReader(r, int64(want)))
	if err != nil {
		return npyArray{}, fmt.Errorf("npy data: %w", err)
	}
	if len(raw) < want {
		return npyArray{}, fmt.Errorf("npy data: %w: got %d of %d bytes", io.ErrUnexpectedEOF, len(raw), want)
	}

	data := make([]float64, count)
	for i := range data {
		data[i] = dec.decode(raw[i*dec.size:])
	}
	return npyArray{shape: shape, data: data}, nil
}

type npyDecoder struct {
	size   int
	decode func([]byte) float64
}

func decoderFor(descr string) (npyDecoder, error) {
	if len(descr) < 3 {
		return npyDecoder{}, fmt.Errorf("npy: bad dtype %q", descr)
	}

	var order binary.ByteOrder
	switch descr[0] {
	case '<', '|', '=':
		order = binary.LittleEndian
	case '>':
		order = binary.BigEndian
	default:
		return npyDecoder{}, fmt.Errorf("npy: bad dtype %q", descr)
	}

	switch descr[1:] {
	case "f8":
		return npyDecoder{8, func(b []byte) float64 { return math.Float64frombits(order.Uint64(b)) }}, nil
	case "f4":
		return npyDecoder{4, func(b []byte) float64 { return float64(math.Float32frombits(order.Uint32(b))) }}, nil
	case "i8":
		return npyDecoder{8, func(b []byte) float64 { return float64(int64(order.Uint64(b))) }}, nil
	case "i4":
		return npyDecoder{4, func(b []byte) float64 { return float64(int32(order.Uint32(b))) }}, nil
	case "i2":
		return npyDecoder{2, func(b []byte) float64 { return float64(int16(order.Uint16(b))) }}, nil
	case "u2":
		return npyDecoder{2, func(b []byte) float64 { return float64(order.Uint16(b)) }}, nil
	case "u4":
		return npyDecoder{4, func(b []byte) float64 { return float64(order.Uint32(b)) }}, nil
	case "i1":
		return npyDecoder{1, func(b []byte) float64 { return float64(int8(b[0])) }}, nil
	case "u1":
		return npyDecoder{1, func(b []byte) float64 { return float64(b[0]) }}, nil
	}
	return npyDecoder{}, fmt.Errorf("npy: unsupported dtype %q", descr)
}

// headerValue extracts the raw value of key from the Python dict literal
// in an .npy header. Only scalar values are supported.
func headerValue(header, key string) (string, error) {
	i := strings.Index(header, "'"+key+"'")
	if i < 0 {
		return "", fmt.Errorf("npy: header has no %q", key)
	}
	rest := header[i+len(key)+2:]
	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return "", fmt.Errorf("npy: header entry %q has no value", key)
	}
	rest = strings.TrimSpace(rest[colon+1:])
	end := strings.IndexAny(rest, ",}")
	if end < 0 {
		end = len(rest)
	}
	return strings.TrimSpace(rest[:end]), nil
}

func parseShape(header string) ([]int, error) {
	i := strings.Index(header, "'shape'")
	if i < 0 {
		return nil, fmt.Errorf("npy: header has no shape")
	}
	open := strings.IndexByte(header[i:], '(')
	closing := strings.IndexByte(header[i:], ')')
	if open < 0 || closing < open {
		return nil, fmt.Errorf("npy: bad shape in %q", header)
	}

	var shape []int
	for _, part := range strings.Split(header[i+open+1:i+closing], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(strings.TrimSuffix(part, "L"))
		if err != nil || d < 0 {
			return nil, fmt.Errorf("npy: bad dimension %q", part)
		}
		shape = append(shape, d)
	}
	return shape, nil
}
