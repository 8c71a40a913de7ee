package gltf

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrTypeMismatch is returned when a typed view does not match the accessor shape.
var ErrTypeMismatch = errors.New("accessor type mismatch")

// Data is one decoded accessor: Count elements of Width components each, stored flat.
// Integer component types fill Uint, FLOAT fills Float; the other slice stays nil.
type Data struct {
	Type          AccessorType
	ComponentType ComponentType
	Normalized    bool
	Count         int
	Width         int
	Uint          []uint32
	Float         []float32
}

// IsFloat reports whether the components are FLOAT.
func (d *Data) IsFloat() bool {
	return d.ComponentType == Float
}

// Len returns the number of elements.
func (d *Data) Len() int {
	return d.Count
}

func (d *Data) alloc() {
	n := d.Count * d.Width
	if d.IsFloat() {
		d.Float = make([]float32, 0, n)
	} else {
		d.Uint = make([]uint32, 0, n)
	}
}

func (d *Data) zero() {
	n := d.Count * d.Width
	if d.IsFloat() {
		d.Float = make([]float32, n)
	} else {
		d.Uint = make([]uint32, n)
	}
}

// FloatElement returns element i of a FLOAT accessor. The result aliases d.Float.
func (d *Data) FloatElement(i int) []float32 {
	if !d.IsFloat() || i < 0 || i >= d.Count {
		return nil
	}
	return d.Float[i*d.Width : (i+1)*d.Width]
}

// UintElement returns element i of an integer accessor. The result aliases d.Uint.
func (d *Data) UintElement(i int) []uint32 {
	if d.IsFloat() || i < 0 || i >= d.Count {
		return nil
	}
	return d.Uint[i*d.Width : (i+1)*d.Width]
}

// Values returns element i as float64 components. Both uint32 and float32 convert exactly.
func (d *Data) Values(i int) []float64 {
	if i < 0 || i >= d.Count {
		return nil
	}
	out := make([]float64, d.Width)
	base := i * d.Width
	for c := range out {
		if d.IsFloat() {
			out[c] = float64(d.Float[base+c])
		} else {
			out[c] = float64(d.Uint[base+c])
		}
	}
	return out
}

func (d *Data) expect(t AccessorType, float bool) error {
	if d.Type != t || d.IsFloat() != float {
		want := "integer"
		if float {
			want = "FLOAT"
		}
		return fmt.Errorf("%w: have %s %s, want %s %s", ErrTypeMismatch, d.Type, d.ComponentType, t, want)
	}
	return nil
}

// Floats returns a SCALAR FLOAT accessor as a slice (e.g. animation key times).
func (d *Data) Floats() ([]float32, error) {
	if err := d.expect(Scalar, true); err != nil {
		return nil, err
	}
	return d.Float, nil
}

// Indices returns a SCALAR integer accessor as vertex indices.
func (d *Data) Indices() ([]uint32, error) {
	if err := d.expect(Scalar, false); err != nil {
		return nil, err
	}
	return d.Uint, nil
}

// Joints returns a VEC4 integer accessor as joint index quadruples.
func (d *Data) Joints() ([][4]uint32, error) {
	if err := d.expect(Vec4, false); err != nil {
		return nil, err
	}
	out := make([][4]uint32, d.Count)
	for i := range out {
		copy(out[i][:], d.Uint[i*4:])
	}
	return out, nil
}

// Vec2s returns a VEC2 FLOAT accessor (e.g. TEXCOORD_0).
func (d *Data) Vec2s() ([]mgl32.Vec2, error) {
	if err := d.expect(Vec2, true); err != nil {
		return nil, err
	}
	out := make([]mgl32.Vec2, d.Count)
	for i := range out {
		copy(out[i][:], d.Float[i*2:])
	}
	return out, nil
}

// Vec3s returns a VEC3 FLOAT accessor (e.g. POSITION, NORMAL).
func (d *Data) Vec3s() ([]mgl32.Vec3, error) {
	if err := d.expect(Vec3, true); err != nil {
		return nil, err
	}
	out := make([]mgl32.Vec3, d.Count)
	for i := range out {
		copy(out[i][:], d.Float[i*3:])
	}
	return out, nil
}

// Vec4s returns a VEC4 FLOAT accessor (e.g. WEIGHTS_0, TANGENT).
func (d *Data) Vec4s() ([]mgl32.Vec4, error) {
	if err := d.expect(Vec4, true); err != nil {
		return nil, err
	}
	out := make([]mgl32.Vec4, d.Count)
	for i := range out {
		copy(out[i][:], d.Float[i*4:])
	}
	return out, nil
}

// Mat4s returns a MAT4 FLOAT accessor (e.g. inverseBindMatrices).
// glTF and mgl32 both store matrices column-major, so components copy straight across.
func (d *Data) Mat4s() ([]mgl32.Mat4, error) {
	if err := d.expect(Mat4, true); err != nil {
		return nil, err
	}
	out := make([]mgl32.Mat4, d.Count)
	for i := range out {
		copy(out[i][:], d.Float[i*16:])
	}
	return out, nil
}

// Table holds decoded accessors, index-aligned with the document's accessors.
type Table []*Data

// Accessor returns the decoded data for accessor i.
func (t Table) Accessor(i int) (*Data, error) {
	if i < 0 || i >= len(t) {
		return nil, fmt.Errorf("%w: accessor %d (table has %d)", ErrIndexOutOfRange, i, len(t))
	}
	return t[i], nil
}
