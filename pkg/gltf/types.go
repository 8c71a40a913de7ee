// Package gltf models glTF 2.0 metadata and decodes accessor data from a binary buffer.
package gltf

import "fmt"

// ComponentType is the numeric encoding of accessor components (glTF componentType).
type ComponentType uint32

// Component type constants. Only the unsigned and float types are decoded.
const (
	Byte          ComponentType = 5120
	UnsignedByte  ComponentType = 5121
	Short         ComponentType = 5122
	UnsignedShort ComponentType = 5123
	UnsignedInt   ComponentType = 5125
	Float         ComponentType = 5126
)

// String returns the glTF name of the component type.
func (t ComponentType) String() string {
	switch t {
	case Byte:
		return "BYTE"
	case UnsignedByte:
		return "UNSIGNED_BYTE"
	case Short:
		return "SHORT"
	case UnsignedShort:
		return "UNSIGNED_SHORT"
	case UnsignedInt:
		return "UNSIGNED_INT"
	case Float:
		return "FLOAT"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(t))
	}
}

// Size returns the byte width of one component, or 0 if the type is not decodable.
func (t ComponentType) Size() int {
	if f, ok := componentFormats[t]; ok {
		return f.size
	}
	return 0
}

// AccessorType is the element shape of an accessor (glTF type).
type AccessorType string

// Accessor type constants.
const (
	Scalar AccessorType = "SCALAR"
	Vec2   AccessorType = "VEC2"
	Vec3   AccessorType = "VEC3"
	Vec4   AccessorType = "VEC4"
	Mat4   AccessorType = "MAT4"
)

// accessorWidths maps each supported accessor type to its component count.
var accessorWidths = map[AccessorType]int{
	Scalar: 1,
	Vec2:   2,
	Vec3:   3,
	Vec4:   4,
	Mat4:   16,
}

// Width returns the number of components per element.
// ok is false for types this package does not decode (including MAT2 and MAT3).
func (t AccessorType) Width() (width int, ok bool) {
	width, ok = accessorWidths[t]
	return width, ok
}
