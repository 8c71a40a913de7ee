package vrm

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/vrmload/pkg/glb"
	"github.com/Faultbox/vrmload/pkg/gltf"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// testBIN lays out two float positions (24 bytes) followed by an 8-byte PNG signature.
func testBIN() []byte {
	buf := new(bytes.Buffer)
	for _, f := range []float32{1, 2, 3, 4, 5, 6} {
		binary.Write(buf, binary.LittleEndian, math.Float32bits(f))
	}
	buf.Write(pngHeader)
	return buf.Bytes()
}

const vrm0JSON = `{
  "asset": {"version": "2.0", "generator": "UniGLTF-1.27"},
  "extensionsUsed": ["VRM"],
  "extensions": {"VRM": {"specVersion": "0.0", "meta": {
    "title": "Alicia", "author": "DWANGO", "version": "1.0",
    "licenseName": "CC_BY", "otherPermissionUrl": ""}}},
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 24},
    {"buffer": 0, "byteOffset": 24, "byteLength": 8}
  ],
  "accessors": [{"bufferView": 0, "componentType": 5126, "type": "VEC3", "count": 2}],
  "images": [{"name": "face", "mimeType": "image/png", "bufferView": 1}]
}`

func createTestModel(t *testing.T, text string) []byte {
	t.Helper()
	data, err := glb.Marshal(text, testBIN())
	require.NoError(t, err)
	return data
}

func TestLoad_VRM0(t *testing.T) {
	m, err := NewLoader().Load(createTestModel(t, vrm0JSON))
	require.NoError(t, err)

	assert.True(t, m.IsVRM())
	assert.Equal(t, "0.0", m.Meta.SpecVersion)
	assert.Equal(t, "Alicia", m.Meta.Title)
	assert.Equal(t, "DWANGO", m.Meta.Author())
	assert.Equal(t, "CC_BY", m.Meta.LicenseName)

	require.Len(t, m.Accessors, 1)
	positions, err := m.Accessors[0].Vec3s()
	require.NoError(t, err)
	assert.Len(t, positions, 2)

	require.Len(t, m.Images, 1)
	assert.Equal(t, "face", m.Images[0].Name)
	assert.Equal(t, "face.png", m.Images[0].FileName())
	assert.Equal(t, pngHeader, m.Images[0].Data)
}

func TestLoad_VRM1(t *testing.T) {
	text := `{"asset": {"version": "2.0"},
	  "extensions": {"VRMC_vrm": {"specVersion": "1.0", "meta": {
	    "name": "Seed", "version": "2", "authors": ["a", "b"],
	    "modification": "allowModification"}}}}`

	m, err := NewLoader().Load(createTestModel(t, text))
	require.NoError(t, err)

	assert.Equal(t, "1.0", m.Meta.SpecVersion)
	assert.Equal(t, "Seed", m.Meta.Title)
	assert.Equal(t, "a, b", m.Meta.Author())
	assert.Equal(t, ModificationAllowed, m.Meta.Modification)
	assert.Empty(t, m.Images)
	assert.Empty(t, m.Accessors)
}

func TestLoad_PlainGLB(t *testing.T) {
	m, err := NewLoader().Load(createTestModel(t, `{"asset": {"version": "2.0"}}`))
	require.NoError(t, err)

	assert.False(t, m.IsVRM())
	assert.Equal(t, Meta{}, m.Meta)
	assert.Nil(t, m.Images)
}

func TestLoad_Draco(t *testing.T) {
	text := `{"asset": {"version": "2.0"}, "extensionsRequired": ["KHR_DRACO_MESH_COMPRESSION"]}`

	_, err := NewLoader().Load(createTestModel(t, text))
	assert.ErrorIs(t, err, ErrDracoCompressed)
}

func TestLoad_License(t *testing.T) {
	tests := []struct {
		name    string
		ext     string
		wantErr bool
	}{
		{"cc by", `"VRM": {"meta": {"licenseName": "CC_BY"}}`, false},
		{"cc by nd", `"VRM": {"meta": {"licenseName": "CC_BY_ND"}}`, true},
		{"cc by nc nd", `"VRM": {"meta": {"licenseName": "CC_BY_NC_ND"}}`, true},
		{"vroid disallow", `"VRM": {"meta": {"licenseName": "Redistribution_Prohibited",
		  "otherPermissionUrl": "https://hub.vroid.com/license?modification=disallow"}}`, true},
		{"vroid allow", `"VRM": {"meta": {"otherPermissionUrl": "https://hub.vroid.com/license?modification=allow"}}`, false},
		{"other host", `"VRM": {"meta": {"otherPermissionUrl": "https://example.com/license?modification=disallow"}}`, false},
		{"vrm1 prohibited", `"VRMC_vrm": {"meta": {"name": "x", "modification": "prohibited"}}`, true},
		{"vrm1 allowed", `"VRMC_vrm": {"meta": {"name": "x", "modification": "allowModificationRedistribution"}}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := createTestModel(t, `{"asset": {"version": "2.0"}, "extensions": {`+tt.ext+`}}`)

			_, err := NewLoader().Load(data)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrModificationProhibited)
			} else {
				assert.NoError(t, err)
			}

			_, err = NewLoader(WithLicenseCheck(false)).Load(data)
			assert.NoError(t, err)
		})
	}
}

func TestLoad_LicenseOtherWarns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	data := createTestModel(t, `{"asset": {"version": "2.0"},
	  "extensions": {"VRM": {"meta": {"title": "t", "licenseName": "Other"}}}}`)

	_, err := NewLoader(WithLogger(zap.New(core))).Load(data)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.Len())
}

func TestLoad_Errors(t *testing.T) {
	_, err := NewLoader().Load([]byte("not a glb file"))
	assert.ErrorIs(t, err, glb.ErrInvalidMagic)

	_, err = NewLoader().Load(createTestModel(t, `{"asset": `))
	assert.ErrorIs(t, err, gltf.ErrInvalidJSON)

	_, err = NewLoader().Load(createTestModel(t, `{"extensions": {"VRM": []}}`))
	assert.ErrorIs(t, err, gltf.ErrInvalidJSON)

	_, err = NewLoader().Load(createTestModel(t, `{"images": [{"bufferView": 3}]}`))
	assert.ErrorIs(t, err, gltf.ErrIndexOutOfRange)

	_, err = NewLoader().Load(createTestModel(t,
		`{"bufferViews": [{"byteLength": 24}], "accessors": [{"bufferView": 0, "componentType": 5122, "type": "SCALAR", "count": 1}]}`))
	assert.ErrorIs(t, err, gltf.ErrUnsupportedComponentType)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.vrm")
	data := createTestModel(t, vrm0JSON)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	m, err := NewLoader().LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, m.Path)

	_, err = NewLoader(WithMaxFileSize(int64(len(data)-1))).LoadFile(path)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = NewLoader(WithMaxFileSize(int64(len(data)))).LoadFile(path)
	assert.NoError(t, err)

	_, err = NewLoader().LoadFile(filepath.Join(t.TempDir(), "missing.vrm"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMeta_TextureDirName(t *testing.T) {
	m := Meta{Title: "A very long title here", Authors: []string{"someone:else"}, Version: "1.2.3"}
	assert.Equal(t, "tex_A very long _by_someone_of_1.2", m.TextureDirName())

	assert.Equal(t, "tex_no_title_by_me_of_nv", Meta{Authors: []string{"me"}}.TextureDirName())
	assert.Equal(t, "", Meta{}.TextureDirName())
}
