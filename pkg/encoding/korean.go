// Package encoding converts the EUC-KR file names found in GRF archives.
package encoding

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// EUCKRToUTF8 decodes EUC-KR bytes. Input that is already valid UTF-8 with
// multi-byte runes, or that fails to decode, is returned unchanged.
func EUCKRToUTF8(data []byte) string {
	if isASCII(data) {
		return string(data)
	}
	if utf8.Valid(data) {
		return string(data)
	}
	result, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// UTF8ToEUCKR encodes s as EUC-KR. Strings with runes outside the EUC-KR
// repertoire are returned as raw UTF-8 bytes.
func UTF8ToEUCKR(s string) []byte {
	result, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}

// NormalizeGRFPath turns an archive path into its lookup key: forward
// slashes, lower case.
func NormalizeGRFPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	return strings.ToLower(path)
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
