// Package glb reads and writes binary glTF (GLB) containers.
//
// A GLB file is a 12-byte header (magic "glTF", version, total length) followed by
// length-prefixed, type-tagged chunks: one JSON chunk and an optional BIN chunk.
package glb

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/Faultbox/vrmload/pkg/binreader"
	"github.com/Faultbox/vrmload/pkg/encoding"
)

// Format constants.
const (
	Magic           = "glTF"
	Version         = 2
	HeaderSize      = 12
	ChunkHeaderSize = 8
)

// ChunkType is the raw 4-byte chunk tag.
type ChunkType [4]byte

// Known chunk types. The BIN tag is padded with a NUL byte.
var (
	ChunkJSON = ChunkType{'J', 'S', 'O', 'N'}
	ChunkBIN  = ChunkType{'B', 'I', 'N', 0}
)

// String returns the tag with non-printable bytes escaped, e.g. "BIN\x00".
func (t ChunkType) String() string {
	s := strconv.QuoteToASCII(string(t[:]))
	return s[1 : len(s)-1]
}

// GLB format errors.
var (
	ErrInvalidMagic       = errors.New("invalid GLB magic: expected 'glTF'")
	ErrUnsupportedVersion = errors.New("unsupported GLB version")
	ErrTruncated          = binreader.ErrTruncated
	ErrLengthMismatch     = errors.New("GLB length does not match chunk sizes")
	ErrMultipleChunks     = errors.New("multiple chunks of the same type")
	ErrUnknownChunk       = errors.New("unknown GLB chunk type")
	ErrMissingJSONChunk   = errors.New("GLB has no JSON chunk")
	ErrInvalidUTF8        = encoding.ErrInvalidUTF8
)

// Chunk describes one chunk as it appears in the file.
type Chunk struct {
	Type   ChunkType
	Offset int // Offset of the payload from the start of the file
	Length int // Payload length in bytes
}

// Container is a parsed GLB file.
type Container struct {
	Version uint32
	Length  uint32  // Declared total length
	JSON    string  // JSON chunk decoded as UTF-8
	BIN     []byte  // BIN chunk payload, nil if the file has none
	Chunks  []Chunk // Chunks in file order
}

// HasBIN reports whether the container carried a BIN chunk.
func (c *Container) HasBIN() bool {
	return c.BIN != nil
}

// Parse parses a GLB container from raw bytes.
// The BIN payload aliases data.
func Parse(data []byte) (*Container, error) {
	r := binreader.New(data)

	magic, err := r.Tag()
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %d bytes is too short for the magic", ErrInvalidMagic, err, len(data))
	}
	if string(magic[:]) != Magic {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidMagic, string(magic[:]))
	}

	version, err := r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("%w: reading version", err)
	}
	if version != Version {
		return nil, fmt.Errorf("%w: %d (only version %d is supported)", ErrUnsupportedVersion, version, Version)
	}

	length, err := r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("%w: reading length", err)
	}
	if length < HeaderSize {
		return nil, fmt.Errorf("%w: declared length %d is smaller than the header", ErrLengthMismatch, length)
	}

	c := &Container{
		Version: version,
		Length:  length,
	}

	var (
		haveJSON  bool
		remaining = int64(length) - HeaderSize
	)
	for remaining > 0 {
		chunk, payload, err := readChunk(r)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", len(c.Chunks), err)
		}

		remaining -= int64(ChunkHeaderSize + chunk.Length)
		if remaining < 0 {
			return nil, fmt.Errorf("%w: chunk %d (%s) ends %d bytes past the declared length",
				ErrLengthMismatch, len(c.Chunks), chunk.Type, -remaining)
		}

		switch chunk.Type {
		case ChunkJSON:
			if haveJSON {
				return nil, fmt.Errorf("%w: %s", ErrMultipleChunks, chunk.Type)
			}
			text, err := encoding.DecodeUTF8(payload)
			if err != nil {
				return nil, fmt.Errorf("decoding JSON chunk: %w", err)
			}
			c.JSON = text
			haveJSON = true
		case ChunkBIN:
			if c.BIN != nil {
				return nil, fmt.Errorf("%w: %s", ErrMultipleChunks, chunk.Type)
			}
			c.BIN = payload
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownChunk, string(chunk.Type[:]))
		}

		c.Chunks = append(c.Chunks, chunk)
	}

	if !haveJSON {
		return nil, ErrMissingJSONChunk
	}

	return c, nil
}

// readChunk reads one chunk header and its payload.
func readChunk(r *binreader.Reader) (Chunk, []byte, error) {
	length, err := r.Uint32()
	if err != nil {
		return Chunk{}, nil, fmt.Errorf("%w: reading chunk length", err)
	}
	tag, err := r.Tag()
	if err != nil {
		return Chunk{}, nil, fmt.Errorf("%w: reading chunk type", err)
	}

	chunk := Chunk{
		Type:   ChunkType(tag),
		Offset: r.Pos(),
		Length: int(length),
	}
	payload, err := r.Bytes(chunk.Length)
	if err != nil {
		return Chunk{}, nil, fmt.Errorf("%w: reading %s payload", err, chunk.Type)
	}
	return chunk, payload, nil
}

// ParseFile parses a GLB container from disk.
func ParseFile(path string) (*Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GLB file: %w", err)
	}
	return Parse(data)
}
