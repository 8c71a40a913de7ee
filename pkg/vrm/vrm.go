// Package vrm loads VRM avatars (and plain GLB files) into decoded, inspectable form.
//
// Loading runs the container reader, parses the glTF metadata, applies the extension
// and licence checks, slices embedded images and decodes every accessor. Nothing is
// written to disk.
package vrm

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/vrmload/pkg/glb"
	"github.com/Faultbox/vrmload/pkg/gltf"
)

// Load errors.
var (
	ErrDracoCompressed        = errors.New("model uses Draco mesh compression, which cannot be decoded")
	ErrModificationProhibited = errors.New("model licence does not allow modification")
	ErrFileTooLarge           = errors.New("file too large")
)

// ExtensionDraco is the glTF extension for Draco-compressed meshes.
const ExtensionDraco = "KHR_draco_mesh_compression"

// Model is a fully loaded file.
type Model struct {
	Path      string
	Container *glb.Container
	Document  *gltf.Document
	Meta      Meta
	Accessors gltf.Table
	Images    []Image
}

// IsVRM reports whether the file carried VRM metadata.
func (m *Model) IsVRM() bool {
	return m.Meta.SpecVersion != ""
}

// Loader loads models. A Loader holds no per-file state and may be shared between goroutines.
type Loader struct {
	log          *zap.Logger
	checkLicense bool
	maxFileSize  int64
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// WithLicenseCheck enables or disables the licence check. It is enabled by default.
func WithLicenseCheck(enabled bool) Option {
	return func(l *Loader) {
		l.checkLicense = enabled
	}
}

// WithMaxFileSize rejects files larger than n bytes in LoadFile. Zero means no limit.
func WithMaxFileSize(n int64) Option {
	return func(l *Loader) {
		l.maxFileSize = n
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		log:          zap.NewNop(),
		checkLicense: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile reads and loads the file at path.
func (l *Loader) LoadFile(path string) (*Model, error) {
	if l.maxFileSize > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.Size() > l.maxFileSize {
			return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrFileTooLarge, path, info.Size(), l.maxFileSize)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	m, err := l.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Path = path
	return m, nil
}

// Load loads a model from the complete file contents.
// The model's BIN chunk and image data alias data.
func (l *Loader) Load(data []byte) (*Model, error) {
	container, err := glb.Parse(data)
	if err != nil {
		return nil, err
	}
	l.log.Debug("parsed container",
		zap.Int("json_bytes", len(container.JSON)),
		zap.Int("bin_bytes", len(container.BIN)))

	doc, err := gltf.ParseDocument(container.JSON)
	if err != nil {
		return nil, err
	}

	if doc.RequiresExtension(ExtensionDraco) {
		return nil, ErrDracoCompressed
	}

	meta, err := ParseMeta(doc)
	if err != nil {
		return nil, err
	}
	if meta.SpecVersion != "" {
		l.log.Debug("vrm meta",
			zap.String("spec_version", meta.SpecVersion),
			zap.String("title", meta.Title),
			zap.String("license", meta.LicenseName))
	}

	if l.checkLicense {
		if err := checkLicense(meta, l.log); err != nil {
			return nil, err
		}
	}

	images, err := extractImages(doc, container.BIN, l.log)
	if err != nil {
		return nil, err
	}

	table, err := doc.Decode(container.BIN)
	if err != nil {
		return nil, err
	}
	l.log.Debug("decoded accessors", zap.Int("count", len(table)))

	return &Model{
		Container: container,
		Document:  doc,
		Meta:      meta,
		Accessors: table,
		Images:    images,
	}, nil
}
