package transcript

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// fileNamer turns conversation names into unique file stems for one run.
type fileNamer struct {
	used map[string]bool
}

func newFileNamer() *fileNamer {
	return &fileNamer{used: make(map[string]bool)}
}

// Name returns a stem for display that no earlier call returned. Names are
// compared case-insensitively since the output may land on such a filesystem.
func (n *fileNamer) Name(display string) string {
	stem := sanitizeFileName(display)
	candidate := stem
	for i := 2; n.used[strings.ToLower(candidate)]; i++ {
		candidate = stem + " (" + strconv.Itoa(i) + ")"
	}
	n.used[strings.ToLower(candidate)] = true
	return candidate
}

// sanitizeFileName keeps a display name usable as a file name on common
// filesystems: NFC form, no path separators, reserved or control characters.
func sanitizeFileName(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if unicode.IsControl(r) {
			return '_'
		}
		return r
	}, s)
	s = strings.Trim(s, " .")
	if s == "" {
		return "conversation"
	}
	return s
}
