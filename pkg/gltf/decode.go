package gltf

import (
	"errors"
	"fmt"
	"math"

	"github.com/Faultbox/vrmload/pkg/binreader"
)

// Accessor decoding errors.
var (
	ErrUnsupportedAccessorType  = errors.New("unsupported accessor type")
	ErrUnsupportedComponentType = errors.New("unsupported component type")
	ErrIndexOutOfRange          = errors.New("index out of range")
	ErrTruncated                = binreader.ErrTruncated
	ErrInvalidAccessor          = errors.New("invalid accessor")
	ErrUnsupportedSparse        = errors.New("sparse accessors are not supported")
)

// AccessorError reports which accessor failed to decode.
type AccessorError struct {
	Index int
	Name  string
	Err   error
}

func (e *AccessorError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("accessor %d (%s): %v", e.Index, e.Name, e.Err)
	}
	return fmt.Sprintf("accessor %d: %v", e.Index, e.Err)
}

func (e *AccessorError) Unwrap() error {
	return e.Err
}

// maxByteStride is the largest byteStride glTF allows.
const maxByteStride = 252

// maxAccessorBytes caps the decoded size of one accessor, with or without a buffer view.
const maxAccessorBytes = math.MaxInt32

// componentFormat reads one component and appends it to the decoded data.
type componentFormat struct {
	size int
	read func(r *binreader.Reader, d *Data) error
}

// componentFormats is the complete set of decodable component types.
// Integers are unsigned little-endian; FLOAT is IEEE-754 single precision.
var componentFormats = map[ComponentType]componentFormat{
	UnsignedByte: {size: 1, read: func(r *binreader.Reader, d *Data) error {
		v, err := r.Uint8()
		if err != nil {
			return err
		}
		d.Uint = append(d.Uint, uint32(v))
		return nil
	}},
	UnsignedShort: {size: 2, read: func(r *binreader.Reader, d *Data) error {
		v, err := r.Uint16()
		if err != nil {
			return err
		}
		d.Uint = append(d.Uint, uint32(v))
		return nil
	}},
	UnsignedInt: {size: 4, read: func(r *binreader.Reader, d *Data) error {
		v, err := r.Uint32()
		if err != nil {
			return err
		}
		d.Uint = append(d.Uint, v)
		return nil
	}},
	Float: {size: 4, read: func(r *binreader.Reader, d *Data) error {
		v, err := r.Float32()
		if err != nil {
			return err
		}
		d.Float = append(d.Float, v)
		return nil
	}},
}

// DecodeAccessors decodes every accessor in order. The result is index-aligned with accessors.
// The first failure aborts the whole decode.
func DecodeAccessors(bin []byte, views []BufferView, accessors []Accessor) (Table, error) {
	table := make(Table, 0, len(accessors))
	for i := range accessors {
		d, err := DecodeAccessor(bin, views, &accessors[i])
		if err != nil {
			return nil, &AccessorError{Index: i, Name: accessors[i].Name, Err: err}
		}
		table = append(table, d)
	}
	return table, nil
}

// DecodeAccessor decodes a single accessor. Each call positions its own cursor at the
// accessor's buffer view, so accessors may be decoded in any order.
func DecodeAccessor(bin []byte, views []BufferView, a *Accessor) (*Data, error) {
	width, ok := a.Type.Width()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAccessorType, string(a.Type))
	}
	format, ok := componentFormats[a.ComponentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedComponentType, a.ComponentType)
	}
	if a.Count < 0 {
		return nil, fmt.Errorf("%w: negative count %d", ErrInvalidAccessor, a.Count)
	}
	elemSize := width * format.size
	if a.Count > maxAccessorBytes/elemSize {
		return nil, fmt.Errorf("%w: count %d of %d-byte elements exceeds %d bytes",
			ErrInvalidAccessor, a.Count, elemSize, maxAccessorBytes)
	}
	if a.ByteOffset < 0 {
		return nil, fmt.Errorf("%w: negative byteOffset %d", ErrInvalidAccessor, a.ByteOffset)
	}
	if len(a.Sparse) > 0 && string(a.Sparse) != "null" {
		return nil, ErrUnsupportedSparse
	}

	d := &Data{
		Type:          a.Type,
		ComponentType: a.ComponentType,
		Normalized:    a.Normalized,
		Count:         a.Count,
		Width:         width,
	}

	if a.BufferView == nil {
		d.zero()
		return d, nil
	}

	index := *a.BufferView
	if index < 0 || index >= len(views) {
		return nil, fmt.Errorf("%w: bufferView %d (document has %d)", ErrIndexOutOfRange, index, len(views))
	}
	window, err := views[index].slice(bin)
	if err != nil {
		return nil, fmt.Errorf("bufferView %d: %w", index, err)
	}

	stride := elemSize
	if s := views[index].ByteStride; s != 0 {
		if s < elemSize || s > maxByteStride {
			return nil, fmt.Errorf("%w: byteStride %d for a %d-byte element", ErrInvalidAccessor, s, elemSize)
		}
		stride = s
	}

	if a.Count == 0 {
		return d, nil
	}
	if a.ByteOffset > len(window) || a.Count > len(window) || a.ByteOffset+(a.Count-1)*stride+elemSize > len(window) {
		return nil, fmt.Errorf("%w: %d %s %s elements at offset %d do not fit in %d-byte bufferView %d",
			ErrTruncated, a.Count, a.Type, a.ComponentType, a.ByteOffset, len(window), index)
	}

	d.alloc()
	r := binreader.New(window)
	for i := 0; i < a.Count; i++ {
		if err := r.Seek(a.ByteOffset + i*stride); err != nil {
			return nil, fmt.Errorf("%w: element %d", ErrTruncated, i)
		}
		for c := 0; c < width; c++ {
			if err := format.read(r, d); err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
		}
	}

	return d, nil
}

// slice returns the bytes of the view inside bin.
func (v BufferView) slice(bin []byte) ([]byte, error) {
	if v.ByteOffset < 0 || v.ByteLength < 0 {
		return nil, fmt.Errorf("%w: byteOffset %d, byteLength %d", ErrInvalidAccessor, v.ByteOffset, v.ByteLength)
	}
	if v.ByteOffset > len(bin) || v.ByteLength > len(bin)-v.ByteOffset {
		return nil, fmt.Errorf("%w: view of %d bytes at offset %d but the buffer has %d bytes",
			ErrTruncated, v.ByteLength, v.ByteOffset, len(bin))
	}
	return bin[v.ByteOffset : v.ByteOffset+v.ByteLength], nil
}

// BufferViewData returns the bytes of buffer view index inside bin.
func (d *Document) BufferViewData(bin []byte, index int) ([]byte, error) {
	if index < 0 || index >= len(d.BufferViews) {
		return nil, fmt.Errorf("%w: bufferView %d (document has %d)", ErrIndexOutOfRange, index, len(d.BufferViews))
	}
	return d.BufferViews[index].slice(bin)
}
