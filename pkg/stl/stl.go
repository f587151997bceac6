// Package stl decodes and encodes binary STL meshes.
//
// A binary STL file is an 80-byte header, a little-endian uint32 facet count
// and that many 50-byte facets (normal, three vertices, attribute word).
package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	gomath "math"
	"os"

	"github.com/ulassi/stl2png/pkg/math"
)

// Binary layout sizes in bytes.
const (
	HeaderSize   = 80
	CountSize    = 4
	ElemSize     = 3 * 4
	TriangleSize = 4*ElemSize + 2
	// MinSize is the smallest payload after the header: the count and one facet.
	MinSize = CountSize + TriangleSize
	// MaxFacets is the largest facet count the decoder accepts.
	MaxFacets = gomath.MaxInt32
)

// Triangle is one facet as stored in the file.
type Triangle struct {
	Normal    math.Vec3 // as stored, may be zero or non-unit
	Vertices  [3]math.Vec3
	Attribute uint16 // attribute byte count, carried through unchanged
}

// Mesh is a decoded binary STL.
type Mesh struct {
	Header    [HeaderSize]byte
	Triangles []Triangle
}

// HeaderText returns the header with trailing NULs and spaces removed.
func (m *Mesh) HeaderText() string {
	return string(bytes.TrimRight(m.Header[:], "\x00 "))
}

// Decoder holds decoding options. The zero value rejects headers that
// contain "solid", which is how ASCII STL files begin.
type Decoder struct {
	// AcceptSolidHeader decodes binary files whose exporter wrote "solid"
	// into the header anyway.
	AcceptSolidHeader bool
}

// Decode reads a binary STL of size bytes from r using default options.
func Decode(r io.Reader, size int64) (*Mesh, error) {
	return Decoder{}.Decode(r, size)
}

// DecodeBytes decodes an in-memory binary STL using default options.
func DecodeBytes(data []byte) (*Mesh, error) {
	return Decoder{}.DecodeBytes(data)
}

// ReadFile decodes the binary STL at path using default options.
func ReadFile(path string) (*Mesh, error) {
	return Decoder{}.ReadFile(path)
}

// DecodeBytes decodes an in-memory binary STL.
func (d Decoder) DecodeBytes(data []byte) (*Mesh, error) {
	return d.Decode(bytes.NewReader(data), int64(len(data)))
}

// ReadFile decodes the binary STL at path.
func (d Decoder) ReadFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Kind: ErrSourceUnreadable, Facet: -1, Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &DecodeError{Kind: ErrSourceUnreadable, Facet: -1, Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &DecodeError{Kind: ErrSourceUnreadable, Facet: -1, Path: path, Err: errors.New("is a directory")}
	}

	mesh, err := d.Decode(bufio.NewReader(f), info.Size())
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Path = path
		}
		return nil, err
	}
	return mesh, nil
}

// Decode reads a binary STL of size bytes from r. The mesh is returned only
// when every declared facet was read; trailing bytes are ignored.
func (d Decoder) Decode(r io.Reader, size int64) (*Mesh, error) {
	if size < HeaderSize {
		return nil, newError(ErrTooSmallForHeader, nil)
	}

	mesh := &Mesh{}
	if _, err := io.ReadFull(r, mesh.Header[:]); err != nil {
		return nil, readError(ErrTruncatedHeader, err)
	}
	if !d.AcceptSolidHeader && bytes.Contains(mesh.Header[:], []byte("solid")) {
		return nil, newError(ErrNotBinaryFormat, nil)
	}

	// The count is part of MinSize, so a header plus count plus one facet is
	// the smallest accepted file (134 bytes), even when count is zero.
	payload := size - HeaderSize
	if payload < MinSize {
		return nil, newError(ErrTooSmallForOneFacet, nil)
	}

	var countBuf [CountSize]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return nil, readError(ErrTruncatedHeader, err)
	}
	count := binary.LittleEndian.Uint32(countBuf[:])
	if count > MaxFacets {
		return nil, newError(ErrUnreasonableFacetCount, nil)
	}

	// The declared count is only trusted as far as the bytes that back it.
	capacity := min(int64(count), (payload-CountSize)/TriangleSize)
	mesh.Triangles = make([]Triangle, 0, capacity)

	var buf [TriangleSize]byte
	for i := 0; i < int(count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			if isShortRead(err) {
				return nil, facetError(i, err)
			}
			de := newError(ErrSourceUnreadable, err)
			de.Facet = i
			return nil, de
		}
		mesh.Triangles = append(mesh.Triangles, parseTriangle(buf[:]))
	}

	return mesh, nil
}

func parseTriangle(b []byte) Triangle {
	var t Triangle
	t.Normal = readVec3(b[0:])
	for v := range t.Vertices {
		t.Vertices[v] = readVec3(b[ElemSize*(v+1):])
	}
	t.Attribute = binary.LittleEndian.Uint16(b[4*ElemSize:])
	return t
}

func readVec3(b []byte) math.Vec3 {
	return math.Vec3{
		X: gomath.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		Y: gomath.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Z: gomath.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}
}

// readError classifies a failed read as truncation or an I/O failure.
func readError(truncated error, err error) *DecodeError {
	if isShortRead(err) {
		return newError(truncated, err)
	}
	return newError(ErrSourceUnreadable, err)
}

func isShortRead(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
