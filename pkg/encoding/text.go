// Package encoding provides text decoding for the JSON chunk of binary glTF files.
package encoding

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrInvalidUTF8 is returned when text is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("invalid UTF-8 text")

// DecodeUTF8 converts UTF-8 bytes to a string.
// A leading byte order mark is dropped; glTF writers must not emit one but readers may ignore it.
func DecodeUTF8(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	if !HasBOM(data) {
		return string(data), nil
	}
	result, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), data)
	if err != nil {
		return "", err
	}
	return string(result), nil
}

// HasBOM reports whether data starts with a UTF-8 byte order mark.
func HasBOM(data []byte) bool {
	return len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF
}

// EncodeUTF8 returns s as bytes without a byte order mark.
func EncodeUTF8(s string) ([]byte, error) {
	result, _, err := transform.Bytes(unicode.UTF8.NewEncoder(), []byte(s))
	if err != nil {
		return nil, err
	}
	return result, nil
}
