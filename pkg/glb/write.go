package glb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/Faultbox/vrmload/pkg/encoding"
)

// padding returns the number of bytes needed to align n to 4.
func padding(n int) int {
	return (4 - n%4) % 4
}

// Write encodes a GLB container to w.
// The JSON chunk is padded with spaces and the BIN chunk with zeros, as glTF requires.
// A nil bin omits the BIN chunk.
func Write(w io.Writer, json string, bin []byte) error {
	jsonData, err := encoding.EncodeUTF8(json)
	if err != nil {
		return fmt.Errorf("encoding JSON chunk: %w", err)
	}

	jsonLen := len(jsonData) + padding(len(jsonData))
	total := HeaderSize + ChunkHeaderSize + jsonLen
	binLen := 0
	if bin != nil {
		binLen = len(bin) + padding(len(bin))
		total += ChunkHeaderSize + binLen
	}
	if int64(total) > math.MaxUint32 {
		return fmt.Errorf("GLB too large: %d bytes", total)
	}

	header := make([]byte, HeaderSize)
	copy(header[0:4], Magic)
	binary.LittleEndian.PutUint32(header[4:], Version)
	binary.LittleEndian.PutUint32(header[8:], uint32(total))
	if _, err := w.Write(header); err != nil {
		return err
	}

	if err := writeChunk(w, ChunkJSON, jsonData, ' '); err != nil {
		return fmt.Errorf("writing JSON chunk: %w", err)
	}
	if bin != nil {
		if err := writeChunk(w, ChunkBIN, bin, 0); err != nil {
			return fmt.Errorf("writing BIN chunk: %w", err)
		}
	}
	return nil
}

func writeChunk(w io.Writer, typ ChunkType, payload []byte, pad byte) error {
	n := padding(len(payload))

	var head [ChunkHeaderSize]byte
	binary.LittleEndian.PutUint32(head[0:], uint32(len(payload)+n))
	copy(head[4:], typ[:])
	if _, err := w.Write(head[:]); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	if n > 0 {
		if _, err := w.Write(bytes.Repeat([]byte{pad}, n)); err != nil {
			return err
		}
	}
	return nil
}

// Marshal encodes a GLB container into a new byte slice.
func Marshal(json string, bin []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, json, bin); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
