package vrm

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/Faultbox/vrmload/pkg/gltf"
)

// VRM extension names.
const (
	ExtensionVRM0 = "VRM"
	ExtensionVRM1 = "VRMC_vrm"
)

// VRM 1.0 modification values.
const (
	ModificationProhibited          = "prohibited"
	ModificationAllowed             = "allowModification"
	ModificationAllowedRedistribute = "allowModificationRedistribution"
)

// Meta is the avatar metadata of either VRM generation.
// SpecVersion is empty for plain GLB files.
type Meta struct {
	SpecVersion string
	Title       string
	Version     string
	Authors     []string

	// VRM 0.x licence fields.
	LicenseName        string
	OtherPermissionURL string

	// VRM 1.0 licence fields.
	LicenseURL   string
	Modification string
}

// Author returns the authors joined by ", ".
func (m Meta) Author() string {
	return strings.Join(m.Authors, ", ")
}

type vrm0Extension struct {
	SpecVersion     string `json:"specVersion"`
	ExporterVersion string `json:"exporterVersion"`
	Meta            struct {
		Title              string `json:"title"`
		Version            string `json:"version"`
		Author             string `json:"author"`
		LicenseName        string `json:"licenseName"`
		OtherPermissionURL string `json:"otherPermissionUrl"`
	} `json:"meta"`
}

type vrm1Extension struct {
	SpecVersion string `json:"specVersion"`
	Meta        struct {
		Name         string   `json:"name"`
		Version      string   `json:"version"`
		Authors      []string `json:"authors"`
		LicenseURL   string   `json:"licenseUrl"`
		Modification string   `json:"modification"`
	} `json:"meta"`
}

// ParseMeta reads VRM metadata from the document extensions. VRM 1.0 wins when both are present.
func ParseMeta(doc *gltf.Document) (Meta, error) {
	if raw, ok := doc.Extensions[ExtensionVRM1]; ok {
		var ext vrm1Extension
		if err := json.Unmarshal(raw, &ext); err != nil {
			return Meta{}, fmt.Errorf("%w: %s: %v", gltf.ErrInvalidJSON, ExtensionVRM1, err)
		}
		m := Meta{
			SpecVersion:  ext.SpecVersion,
			Title:        ext.Meta.Name,
			Version:      ext.Meta.Version,
			Authors:      ext.Meta.Authors,
			LicenseURL:   ext.Meta.LicenseURL,
			Modification: ext.Meta.Modification,
		}
		if m.SpecVersion == "" {
			m.SpecVersion = "1.0"
		}
		return m, nil
	}

	if raw, ok := doc.Extensions[ExtensionVRM0]; ok {
		var ext vrm0Extension
		if err := json.Unmarshal(raw, &ext); err != nil {
			return Meta{}, fmt.Errorf("%w: %s: %v", gltf.ErrInvalidJSON, ExtensionVRM0, err)
		}
		m := Meta{
			SpecVersion:        ext.SpecVersion,
			Title:              ext.Meta.Title,
			Version:            ext.Meta.Version,
			LicenseName:        ext.Meta.LicenseName,
			OtherPermissionURL: ext.Meta.OtherPermissionURL,
		}
		if ext.Meta.Author != "" {
			m.Authors = []string{ext.Meta.Author}
		}
		if m.SpecVersion == "" {
			m.SpecVersion = "0.0"
		}
		return m, nil
	}

	return Meta{}, nil
}

// TextureDirName suggests a directory name for extracted textures, built from the
// title, author and version. It returns "" when the meta has none of them.
func (m Meta) TextureDirName() string {
	if m.Title == "" && m.Author() == "" && m.Version == "" {
		return ""
	}
	title := truncateRunes(orDefault(m.Title, "no_title"), 12)
	author := truncateRunes(orDefault(m.Author(), "ano"), 8)
	version := truncateRunes(orDefault(m.Version, "nv"), 3)
	return SanitizeName(fmt.Sprintf("tex_%s_by_%s_of_%s", title, author, version))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
