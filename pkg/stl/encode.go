package stl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	gomath "math"
	"os"

	"github.com/ulassi/stl2png/pkg/math"
)

// Encode writes m in binary STL layout.
func Encode(w io.Writer, m *Mesh) error {
	if len(m.Triangles) > MaxFacets {
		return fmt.Errorf("%w: %d", ErrUnreasonableFacetCount, len(m.Triangles))
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(m.Header[:]); err != nil {
		return err
	}

	var buf [TriangleSize]byte
	binary.LittleEndian.PutUint32(buf[:CountSize], uint32(len(m.Triangles)))
	if _, err := bw.Write(buf[:CountSize]); err != nil {
		return err
	}

	for _, t := range m.Triangles {
		putVec3(buf[0:], t.Normal)
		for v, p := range t.Vertices {
			putVec3(buf[ElemSize*(v+1):], p)
		}
		binary.LittleEndian.PutUint16(buf[4*ElemSize:], t.Attribute)
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile encodes m to path, replacing any existing file.
func WriteFile(path string, m *Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, m); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// SetHeader copies text into the header, truncating at HeaderSize bytes.
func (m *Mesh) SetHeader(text string) {
	m.Header = [HeaderSize]byte{}
	copy(m.Header[:], text)
}

func putVec3(b []byte, v math.Vec3) {
	binary.LittleEndian.PutUint32(b[0:], gomath.Float32bits(v.X))
	binary.LittleEndian.PutUint32(b[4:], gomath.Float32bits(v.Y))
	binary.LittleEndian.PutUint32(b[8:], gomath.Float32bits(v.Z))
}
