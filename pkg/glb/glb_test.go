package glb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testChunk struct {
	tag     string
	payload []byte
}

// createTestGLB builds a GLB file byte by byte without padding or validation,
// so malformed inputs can be expressed directly.
func createTestGLB(magic string, version uint32, chunks ...testChunk) []byte {
	body := new(bytes.Buffer)
	for _, c := range chunks {
		binary.Write(body, binary.LittleEndian, uint32(len(c.payload)))
		body.WriteString(c.tag)
		body.Write(c.payload)
	}

	buf := new(bytes.Buffer)
	buf.WriteString(magic)
	binary.Write(buf, binary.LittleEndian, version)
	binary.Write(buf, binary.LittleEndian, uint32(HeaderSize+body.Len()))
	buf.Write(body.Bytes())
	return buf.Bytes()
}

func jsonChunk(s string) testChunk {
	return testChunk{tag: "JSON", payload: []byte(s)}
}

func binChunk(b []byte) testChunk {
	return testChunk{tag: "BIN\x00", payload: b}
}

func TestParse_JSONOnly(t *testing.T) {
	data := createTestGLB("glTF", 2, jsonChunk("{}"))

	c, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "{}", c.JSON)
	assert.Nil(t, c.BIN)
	assert.False(t, c.HasBIN())
	assert.Equal(t, uint32(2), c.Version)
	assert.Equal(t, uint32(len(data)), c.Length)
	require.Len(t, c.Chunks, 1)
	assert.Equal(t, ChunkJSON, c.Chunks[0].Type)
	assert.Equal(t, HeaderSize+ChunkHeaderSize, c.Chunks[0].Offset)
	assert.Equal(t, 2, c.Chunks[0].Length)
}

func TestParse_JSONAndBIN(t *testing.T) {
	bin := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	data := createTestGLB("glTF", 2, jsonChunk(`{"asset":{"version":"2.0"}}`), binChunk(bin))

	c, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, `{"asset":{"version":"2.0"}}`, c.JSON)
	assert.Equal(t, bin, c.BIN)
	assert.True(t, c.HasBIN())
	require.Len(t, c.Chunks, 2)
	assert.Equal(t, ChunkBIN, c.Chunks[1].Type)
	assert.Equal(t, len(bin), c.Chunks[1].Length)
}

func TestParse_ChunkOrderIndependent(t *testing.T) {
	data := createTestGLB("glTF", 2, binChunk([]byte{9, 9, 9, 9}), jsonChunk("{}"))

	c, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "{}", c.JSON)
	assert.Equal(t, []byte{9, 9, 9, 9}, c.BIN)
}

func TestParse_EmptyBINChunk(t *testing.T) {
	data := createTestGLB("glTF", 2, jsonChunk("{}"), binChunk(nil))

	c, err := Parse(data)
	require.NoError(t, err)
	assert.True(t, c.HasBIN())
	assert.Empty(t, c.BIN)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name:    "invalid magic",
			data:    createTestGLB("XXXX", 2, jsonChunk("{}")),
			wantErr: ErrInvalidMagic,
		},
		{
			name:    "version 1",
			data:    createTestGLB("glTF", 1, jsonChunk("{}")),
			wantErr: ErrUnsupportedVersion,
		},
		{
			name:    "version 3",
			data:    createTestGLB("glTF", 3, jsonChunk("{}")),
			wantErr: ErrUnsupportedVersion,
		},
		{
			name:    "empty input",
			data:    []byte{},
			wantErr: ErrInvalidMagic,
		},
		{
			name:    "partial magic",
			data:    []byte("glT"),
			wantErr: ErrInvalidMagic,
		},
		{
			name:    "header only magic",
			data:    []byte("glTF"),
			wantErr: ErrTruncated,
		},
		{
			name:    "duplicate JSON",
			data:    createTestGLB("glTF", 2, jsonChunk("{}"), jsonChunk("{}")),
			wantErr: ErrMultipleChunks,
		},
		{
			name:    "duplicate BIN",
			data:    createTestGLB("glTF", 2, jsonChunk("{}"), binChunk([]byte{0}), binChunk([]byte{1})),
			wantErr: ErrMultipleChunks,
		},
		{
			name:    "unknown chunk",
			data:    createTestGLB("glTF", 2, jsonChunk("{}"), testChunk{tag: "XTRA", payload: []byte{0}}),
			wantErr: ErrUnknownChunk,
		},
		{
			name:    "no JSON chunk",
			data:    createTestGLB("glTF", 2, binChunk([]byte{0, 0, 0, 0})),
			wantErr: ErrMissingJSONChunk,
		},
		{
			name:    "no chunks",
			data:    createTestGLB("glTF", 2),
			wantErr: ErrMissingJSONChunk,
		},
		{
			name:    "invalid UTF-8",
			data:    createTestGLB("glTF", 2, jsonChunk("{\xff}")),
			wantErr: ErrInvalidUTF8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			assert.Nil(t, c)
		})
	}
}

func TestParse_ShortInputIsFormatError(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("g"), []byte("glT")} {
		_, err := Parse(data)
		assert.ErrorIs(t, err, ErrInvalidMagic)
		assert.ErrorIs(t, err, ErrTruncated)
	}
}

func TestParse_UnknownChunkNamesTag(t *testing.T) {
	data := createTestGLB("glTF", 2, jsonChunk("{}"), testChunk{tag: "BIN\x01", payload: nil})

	_, err := Parse(data)
	require.ErrorIs(t, err, ErrUnknownChunk)
	assert.Contains(t, err.Error(), `"BIN\x01"`)
}

func TestParse_TruncatedPayload(t *testing.T) {
	data := createTestGLB("glTF", 2, jsonChunk("{}"), binChunk(make([]byte, 16)))
	data = data[:len(data)-4]

	_, err := Parse(data)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestParse_LengthMismatch(t *testing.T) {
	t.Run("declared length too small", func(t *testing.T) {
		data := createTestGLB("glTF", 2, jsonChunk("{}  "))
		binary.LittleEndian.PutUint32(data[8:], uint32(len(data)-2))

		_, err := Parse(data)
		assert.ErrorIs(t, err, ErrLengthMismatch)
	})

	t.Run("declared length below header", func(t *testing.T) {
		data := createTestGLB("glTF", 2, jsonChunk("{}"))
		binary.LittleEndian.PutUint32(data[8:], 4)

		_, err := Parse(data)
		assert.ErrorIs(t, err, ErrLengthMismatch)
	})

	t.Run("declared length too large", func(t *testing.T) {
		data := createTestGLB("glTF", 2, jsonChunk("{}"))
		binary.LittleEndian.PutUint32(data[8:], uint32(len(data)+8))

		_, err := Parse(data)
		assert.ErrorIs(t, err, ErrTruncated)
	})
}

func TestParse_TrailingBytesIgnored(t *testing.T) {
	data := createTestGLB("glTF", 2, jsonChunk("{}"))
	data = append(data, 0xDE, 0xAD)

	c, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "{}", c.JSON)
}

func TestParse_BOM(t *testing.T) {
	data := createTestGLB("glTF", 2, jsonChunk("\xef\xbb\xbf{}"))

	c, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "{}", c.JSON)
}

func TestChunkType_String(t *testing.T) {
	assert.Equal(t, "JSON", ChunkJSON.String())
	assert.Equal(t, `BIN\x00`, ChunkBIN.String())
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.glb")
	require.NoError(t, os.WriteFile(path, createTestGLB("glTF", 2, jsonChunk("{}")), 0644))

	c, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", c.JSON)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.glb"))
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "reading GLB file"))
}
