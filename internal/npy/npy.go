// Package npy reads and writes NumPy .npy files (format version 1.0,
// little-endian float64, C order). The stacked landmark artifact is
// consumed by Python reconstruction tooling via np.load, so the format
// must match what numpy.save produces.
package npy

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var magic = []byte{0x93, 'N', 'U', 'M', 'P', 'Y'}

// Write encodes a float64 array of the given shape.
func Write(w io.Writer, shape []int, data []float64) error {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != len(data) {
		return fmt.Errorf("npy: shape %v holds %d elements, got %d", shape, n, len(data))
	}

	header := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': %s, }", shapeTuple(shape))
	// Total preamble (magic + version + length + header) is padded with
	// spaces to a multiple of 64 bytes, header terminated by newline.
	preamble := len(magic) + 2 + 2
	pad := 64 - (preamble+len(header)+1)%64
	if pad == 64 {
		pad = 0
	}
	header = header + strings.Repeat(" ", pad) + "\n"

	buf := &bytes.Buffer{}
	buf.Write(magic)
	buf.WriteByte(1) // major version
	buf.WriteByte(0) // minor version
	if err := binary.Write(buf, binary.LittleEndian, uint16(len(header))); err != nil {
		return err
	}
	buf.WriteString(header)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("npy: write header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, data); err != nil {
		return fmt.Errorf("npy: write data: %w", err)
	}
	return nil
}

var headerRe = regexp.MustCompile(`'descr':\s*'([^']+)',\s*'fortran_order':\s*(True|False),\s*'shape':\s*\(([^)]*)\)`)

// Read decodes a float64 .npy stream and returns its shape and flat data.
func Read(r io.Reader) ([]int, []float64, error) {
	head := make([]byte, len(magic)+2+2)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, nil, fmt.Errorf("npy: read preamble: %w", err)
	}
	if !bytes.Equal(head[:len(magic)], magic) {
		return nil, nil, fmt.Errorf("npy: bad magic %q", head[:len(magic)])
	}
	if head[6] != 1 {
		return nil, nil, fmt.Errorf("npy: unsupported format version %d.%d", head[6], head[7])
	}
	headerLen := binary.LittleEndian.Uint16(head[8:10])

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, nil, fmt.Errorf("npy: read header: %w", err)
	}

	m := headerRe.FindSubmatch(header)
	if m == nil {
		return nil, nil, fmt.Errorf("npy: malformed header %q", header)
	}
	if descr := string(m[1]); descr != "<f8" {
		return nil, nil, fmt.Errorf("npy: unsupported dtype %q, want <f8", descr)
	}
	if string(m[2]) != "False" {
		return nil, nil, fmt.Errorf("npy: fortran order not supported")
	}

	shape, err := parseShape(string(m[3]))
	if err != nil {
		return nil, nil, err
	}

	n := 1
	for _, d := range shape {
		n *= d
	}
	data := make([]float64, n)
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return nil, nil, fmt.Errorf("npy: read data: %w", err)
	}
	return shape, data, nil
}

// WriteFile writes the array to path, creating or truncating it.
func WriteFile(path string, shape []int, data []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("npy: create %s: %w", path, err)
	}
	if err := Write(f, shape, data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads the array stored at path.
func ReadFile(path string) ([]int, []float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("npy: open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

func shapeTuple(shape []int) string {
	if len(shape) == 1 {
		return fmt.Sprintf("(%d,)", shape[0])
	}
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = strconv.Itoa(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func parseShape(tuple string) ([]int, error) {
	tuple = strings.TrimSpace(tuple)
	if tuple == "" {
		return nil, fmt.Errorf("npy: scalar arrays not supported")
	}
	var shape []int
	for _, tok := range strings.Split(tuple, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue // trailing comma of a 1-D tuple
		}
		d, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("npy: bad shape token %q: %w", tok, err)
		}
		shape = append(shape, d)
	}
	return shape, nil
}
