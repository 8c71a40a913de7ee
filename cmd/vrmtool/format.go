package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Faultbox/vrmload/pkg/gltf"
	"github.com/Faultbox/vrmload/pkg/vrm"
)

func printInfo(w io.Writer, m *vrm.Model) {
	doc := m.Document

	fmt.Fprintf(w, "File:       %s\n", m.Path)
	fmt.Fprintf(w, "glTF:       %s (%s)\n", doc.Asset.Version, orNone(doc.Asset.Generator))
	if m.IsVRM() {
		fmt.Fprintf(w, "VRM:        %s\n", m.Meta.SpecVersion)
		fmt.Fprintf(w, "Title:      %s\n", orNone(m.Meta.Title))
		fmt.Fprintf(w, "Author:     %s\n", orNone(m.Meta.Author()))
		fmt.Fprintf(w, "Version:    %s\n", orNone(m.Meta.Version))
		fmt.Fprintf(w, "License:    %s\n", orNone(license(m.Meta)))
	} else {
		fmt.Fprintln(w, "VRM:        (plain glTF)")
	}
	fmt.Fprintf(w, "BIN:        %d bytes\n", len(m.Container.BIN))
	fmt.Fprintf(w, "Meshes:     %d\n", len(doc.Meshes))
	fmt.Fprintf(w, "Accessors:  %d\n", len(m.Accessors))
	fmt.Fprintf(w, "Images:     %d\n", len(m.Images))
	if len(doc.ExtensionsUsed) > 0 {
		fmt.Fprintf(w, "Extensions: %s\n", strings.Join(doc.ExtensionsUsed, ", "))
	}
}

func license(m vrm.Meta) string {
	if m.LicenseName != "" {
		return m.LicenseName
	}
	return m.Modification
}

func printAccessors(w io.Writer, m *vrm.Model, preview int) {
	for i, d := range m.Accessors {
		printAccessor(w, i, m.Document.Accessors[i].Name, d, preview)
	}
}

// printAccessor prints a header line and the first n elements of d.
func printAccessor(w io.Writer, index int, name string, d *gltf.Data, n int) {
	fmt.Fprintf(w, "[%d] %s %s x%d", index, d.Type, d.ComponentType, d.Count)
	if name != "" {
		fmt.Fprintf(w, " %q", name)
	}
	fmt.Fprintln(w)

	n = min(n, d.Len())
	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "  %6d: %s\n", i, formatElement(d.Values(i), d.IsFloat()))
	}
	if n < d.Len() {
		fmt.Fprintf(w, "  ... %d more\n", d.Len()-n)
	}
}

// formatElement prints floats at float32 precision and integers exactly.
func formatElement(values []float64, float bool) string {
	bits := 64
	if float {
		bits = 32
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, bits)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func printImages(w io.Writer, m *vrm.Model) {
	if len(m.Images) == 0 {
		fmt.Fprintln(w, "No images")
		return
	}

	if dir := m.Meta.TextureDirName(); dir != "" {
		fmt.Fprintf(w, "Texture dir: %s\n\n", dir)
	}

	fmt.Fprintf(w, "  %-4s %-32s %-12s %10s\n", "IDX", "NAME", "MIME", "SIZE")
	for _, img := range m.Images {
		size := strconv.Itoa(len(img.Data))
		if img.URI != "" {
			size = img.URI
		}
		fmt.Fprintf(w, "  %-4d %-32s %-12s %10s\n", img.Index, img.FileName(), orNone(img.MIMEType), size)
	}
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
