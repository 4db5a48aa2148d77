package fileops

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	invalidNameChars = regexp.MustCompile(`[<>:"/\\|?*]+`)
	whitespaceRun    = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]{2,}`)

	urlSchemes = []string{"http://", "https://", "file://"}
)

// SanitizeFileName replaces characters that are invalid in file names on common
// platforms with spaces, collapses whitespace and trims. An empty result becomes "_".
func SanitizeFileName(name string) string {
	name = invalidNameChars.ReplaceAllString(name, " ")
	name = whitespaceRun.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	if name == "" {
		return "_"
	}
	return name
}

// IsAbsoluteURL reports whether s starts with http://, https:// or file://.
func IsAbsoluteURL(s string) bool {
	for _, scheme := range urlSchemes {
		if strings.HasPrefix(s, scheme) {
			return true
		}
	}
	return false
}

const (
	kib = 1024
	mib = 1024 * kib
	gib = 1024 * mib
)

// ByteTitles are the unit labels used by FormatFileSize. Empty fields fall back to
// DefaultByteTitles.
type ByteTitles struct {
	Byte  string
	Bytes string
	KB    string
	MB    string
	GB    string
}

// DefaultByteTitles are the English unit labels.
var DefaultByteTitles = ByteTitles{Byte: "Byte", Bytes: "Bytes", KB: "KB", MB: "MB", GB: "GB"}

func (t ByteTitles) merged() ByteTitles {
	pick := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	return ByteTitles{
		Byte:  pick(t.Byte, DefaultByteTitles.Byte),
		Bytes: pick(t.Bytes, DefaultByteTitles.Bytes),
		KB:    pick(t.KB, DefaultByteTitles.KB),
		MB:    pick(t.MB, DefaultByteTitles.MB),
		GB:    pick(t.GB, DefaultByteTitles.GB),
	}
}

// FormatFileSize renders size with 1024-based units and one decimal place:
// 0 -> "0 Byte", 512 -> "512 Bytes", 1536 -> "1.5 KB".
func FormatFileSize(size uint64, titles ByteTitles) string {
	t := titles.merged()
	switch {
	case size >= gib:
		return fmt.Sprintf("%.1f %s", float64(size)/gib, t.GB)
	case size >= mib:
		return fmt.Sprintf("%.1f %s", float64(size)/mib, t.MB)
	case size >= kib:
		return fmt.Sprintf("%.1f %s", float64(size)/kib, t.KB)
	case size > 1:
		return fmt.Sprintf("%d %s", size, t.Bytes)
	default:
		return fmt.Sprintf("%d %s", size, t.Byte)
	}
}
