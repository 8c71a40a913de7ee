package gltf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// ErrInvalidJSON is returned when the JSON chunk cannot be parsed.
var ErrInvalidJSON = errors.New("invalid glTF JSON")

// Document is the subset of glTF metadata needed to decode buffers and identify VRM models.
type Document struct {
	Asset              Asset                      `json:"asset"`
	ExtensionsUsed     []string                   `json:"extensionsUsed,omitempty"`
	ExtensionsRequired []string                   `json:"extensionsRequired,omitempty"`
	Extensions         map[string]json.RawMessage `json:"extensions,omitempty"`
	Buffers            []Buffer                   `json:"buffers,omitempty"`
	BufferViews        []BufferView               `json:"bufferViews,omitempty"`
	Accessors          []Accessor                 `json:"accessors,omitempty"`
	Images             []Image                    `json:"images,omitempty"`
	Meshes             []Mesh                     `json:"meshes,omitempty"`
}

// Asset is the glTF asset header.
type Asset struct {
	Version    string `json:"version"`
	MinVersion string `json:"minVersion,omitempty"`
	Generator  string `json:"generator,omitempty"`
	Copyright  string `json:"copyright,omitempty"`
}

// Buffer describes a binary buffer. In a GLB the first buffer without a URI is the BIN chunk.
type Buffer struct {
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byteLength"`
	Name       string `json:"name,omitempty"`
}

// BufferView is a byte range inside a buffer.
type BufferView struct {
	Buffer     int    `json:"buffer"`
	ByteOffset int    `json:"byteOffset,omitempty"`
	ByteLength int    `json:"byteLength"`
	ByteStride int    `json:"byteStride,omitempty"` // 0 means tightly packed
	Target     int    `json:"target,omitempty"`
	Name       string `json:"name,omitempty"`
}

// Accessor describes a typed, counted run of elements inside a buffer view.
type Accessor struct {
	BufferView    *int            `json:"bufferView,omitempty"` // nil means all zeros
	ByteOffset    int             `json:"byteOffset,omitempty"`
	ComponentType ComponentType   `json:"componentType"`
	Normalized    bool            `json:"normalized,omitempty"`
	Count         int             `json:"count"`
	Type          AccessorType    `json:"type"`
	Max           []float64       `json:"max,omitempty"`
	Min           []float64       `json:"min,omitempty"`
	Sparse        json.RawMessage `json:"sparse,omitempty"`
	Name          string          `json:"name,omitempty"`
}

// Image references texture data, either by buffer view or by URI.
type Image struct {
	Name       string      `json:"name,omitempty"`
	URI        string      `json:"uri,omitempty"`
	MimeType   string      `json:"mimeType,omitempty"`
	BufferView *int        `json:"bufferView,omitempty"`
	Extra      *ImageExtra `json:"extra,omitempty"` // written by early UniVRM exporters
}

// ImageExtra carries the image name used by early UniVRM exporters.
type ImageExtra struct {
	Name string `json:"name"`
}

// Mesh is a named list of primitives.
type Mesh struct {
	Name       string      `json:"name,omitempty"`
	Primitives []Primitive `json:"primitives"`
}

// Primitive maps vertex attributes to accessor indices.
type Primitive struct {
	Attributes map[string]int   `json:"attributes"`
	Indices    *int             `json:"indices,omitempty"`
	Material   *int             `json:"material,omitempty"`
	Mode       *int             `json:"mode,omitempty"`
	Targets    []map[string]int `json:"targets,omitempty"`
}

// ParseDocument parses glTF JSON text.
func ParseDocument(text string) (*Document, error) {
	doc := &Document{}
	if err := json.Unmarshal([]byte(text), doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return doc, nil
}

// Marshal encodes the document back to compact JSON.
func (d *Document) Marshal() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// RequiresExtension reports whether name is listed in extensionsRequired (case-insensitive).
func (d *Document) RequiresExtension(name string) bool {
	return containsFold(d.ExtensionsRequired, name)
}

// UsesExtension reports whether name is listed in extensionsUsed or present in extensions.
func (d *Document) UsesExtension(name string) bool {
	if containsFold(d.ExtensionsUsed, name) {
		return true
	}
	_, ok := d.Extensions[name]
	return ok
}

// Decode decodes every accessor of the document against bin.
func (d *Document) Decode(bin []byte) (Table, error) {
	return DecodeAccessors(bin, d.BufferViews, d.Accessors)
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
