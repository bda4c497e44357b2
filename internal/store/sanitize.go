package store

import (
	"crypto/sha1"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	disallowedChars  = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
	underscoreRun    = regexp.MustCompile(`_+`)
	nonFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)
	validExtension   = regexp.MustCompile(`^\.[A-Za-z0-9]+$`)
)

const maxSanitizedBaseRunes = 50
const maxSanitizedTotalLength = 255

// SanitizeFilename deterministically maps an arbitrary title or artifact
// name to a filesystem-safe, collision-resistant name: disallowed
// characters become underscores, whitespace and underscore runs collapse,
// everything outside [A-Za-z0-9_-] is dropped, the base is truncated to
// 50 runes, and an 8-hex SHA-1 prefix of the *original* (pre-sanitization)
// name is appended so that two inputs which sanitize to the same base
// never collide on disk.
func SanitizeFilename(original string) string {
	ext := filepath.Ext(original)
	if !validExtension.MatchString(ext) {
		ext = ""
	}
	base := strings.TrimSuffix(original, ext)

	base = disallowedChars.ReplaceAllString(base, "_")
	base = whitespaceRun.ReplaceAllString(base, "_")
	base = underscoreRun.ReplaceAllString(base, "_")
	base = nonFilenameChars.ReplaceAllString(base, "")
	base = strings.Trim(base, "._-")

	if base == "" {
		base = "sanitized"
	}

	runes := []rune(base)
	if len(runes) > maxSanitizedBaseRunes {
		base = string(runes[:maxSanitizedBaseRunes])
		base = strings.TrimRight(base, "_-")
		if base == "" {
			base = "truncated"
		}
	}

	hash := sha1Hash8(original)
	result := base + "_" + hash + ext

	if len(result) > maxSanitizedTotalLength {
		overflow := len(result) - maxSanitizedTotalLength
		trimmed := base
		if len(trimmed) > overflow {
			trimmed = trimmed[:len(trimmed)-overflow]
		} else {
			trimmed = ""
		}
		trimmed = strings.TrimRight(trimmed, "_-")
		if trimmed == "" {
			trimmed = "truncated"
		}
		result = trimmed + "_" + hash + ext
	}

	return result
}

func sha1Hash8(original string) string {
	sum := sha1.Sum([]byte(original))
	return hex.EncodeToString(sum[:])[:8]
}
