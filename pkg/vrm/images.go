package vrm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"github.com/Faultbox/vrmload/pkg/gltf"
)

// maxNameLength is the rune count at which an image name is replaced.
const maxNameLength = 50

// Image is an embedded or referenced texture image.
type Image struct {
	Index      int
	Name       string // Safe and unique within the model
	SourceName string // Name as stored in the file
	MIMEType   string
	Extension  string
	URI        string // Set for external images, which carry no Data
	Data       []byte
}

// FileName returns Name with the image extension, e.g. "face.png".
func (img Image) FileName() string {
	if img.Extension == "" {
		return img.Name
	}
	return img.Name + "." + img.Extension
}

// SanitizeName removes control characters and characters that are unsafe in file names.
func SanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(`"*/:<>?\|`, r) {
			return -1
		}
		return r
	}, name)
}

// extractImages slices every image out of bin. A document without images yields nil.
func extractImages(doc *gltf.Document, bin []byte, log *zap.Logger) ([]Image, error) {
	if len(doc.Images) == 0 {
		return nil, nil
	}

	images := make([]Image, 0, len(doc.Images))
	used := make(map[string]bool, len(doc.Images))

	for i, src := range doc.Images {
		img := Image{
			Index:      i,
			SourceName: src.Name,
			MIMEType:   src.MimeType,
			URI:        src.URI,
		}
		if src.Extra != nil {
			img.SourceName = src.Extra.Name
		}

		if src.BufferView != nil {
			data, err := doc.BufferViewData(bin, *src.BufferView)
			if err != nil {
				return nil, fmt.Errorf("image %d: %w", i, err)
			}
			img.Data = data
		}

		img.Name = imageName(img.SourceName, i, log)
		img.Name = uniqueName(img.Name, used)
		img.MIMEType, img.Extension = imageType(img.MIMEType, img.Data)

		images = append(images, img)
	}

	return images, nil
}

func imageName(source string, index int, log *zap.Logger) string {
	switch {
	case source == "":
		name := "texture_" + strconv.Itoa(index)
		log.Debug("unnamed image", zap.String("name", name))
		return name
	case utf8.RuneCountInString(source) >= maxNameLength:
		name := "tex_2longname_" + strconv.Itoa(index)
		log.Debug("image name too long", zap.String("source", source), zap.String("name", name))
		return name
	}
	if name := SanitizeName(source); name != "" {
		return name
	}
	return "texture_" + strconv.Itoa(index)
}

func uniqueName(name string, used map[string]bool) string {
	candidate := name
	for n := 1; used[candidate]; n++ {
		candidate = name + "_" + strconv.Itoa(n)
	}
	used[candidate] = true
	return candidate
}

// imageType returns the MIME type and file extension. A declared MIME type wins;
// otherwise the data is sniffed.
func imageType(declared string, data []byte) (string, string) {
	if declared != "" {
		parts := strings.Split(declared, "/")
		return declared, parts[len(parts)-1]
	}
	if len(data) == 0 {
		return "", ""
	}
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return "", ""
	}
	return kind.MIME.Value, kind.Extension
}
