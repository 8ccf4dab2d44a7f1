package files

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StoredName generates the storage key for an upload: a random UUID, the
// upload time in Unix milliseconds and the original extension with its case
// preserved.
func StoredName(originalName string, now time.Time) string {
	return uuid.NewString() + "-" + strconv.FormatInt(now.UnixMilli(), 10) + safeExtension(originalName)
}

// safeExtension returns the extension of name, dot included, or "" when it
// contains anything but ASCII letters and digits.
func safeExtension(name string) string {
	ext := filepath.Ext(baseName(name))
	if len(ext) < 2 {
		return ""
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return ""
		}
	}
	return ext
}

// baseName drops any client-supplied directory part, whichever separator it uses.
func baseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		return name[i+1:]
	}
	return name
}

// ValidStoredName reports whether name can be a key in the flat namespace.
// It rejects anything that could address a path outside it.
func ValidStoredName(name string) bool {
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}
