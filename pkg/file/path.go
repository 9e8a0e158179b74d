package file

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// AppendExt adds ext to the full path, keeping any existing extension:
// "talk.mp4" becomes "talk.mp4.wav".
func AppendExt(path, ext string) string {
	if path == "" {
		return path
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path + ext
}

// illegalNameChars are rejected by at least one common filesystem.
const illegalNameChars = `/\?%*:|"<>`

// SanitizeName replaces characters that are unsafe in a file name with '-'.
// The input is NFC-normalised first so composed and decomposed titles map to
// the same name.
func SanitizeName(name string) string {
	name = norm.NFC.String(name)
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalNameChars, r) || unicode.IsControl(r) {
			return '-'
		}
		return r
	}, name)
}

// MaxNameBytes is the file name limit shared by ext4, APFS and NTFS (UTF-16
// units there, which never exceed the UTF-8 byte count).
const MaxNameBytes = 255

// TruncateName cuts name to at most limit bytes without splitting a rune.
func TruncateName(name string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(name) <= limit {
		return name
	}
	cut := 0
	for i := range name {
		if i > limit {
			break
		}
		cut = i
	}
	return name[:cut]
}
