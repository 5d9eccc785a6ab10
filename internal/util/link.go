package util

import (
	"regexp"
	"strings"
)

var (
	filePathPattern  = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)
	fileQueryPattern = regexp.MustCompile(`id=([a-zA-Z0-9_-]+)`)
)

// ExtractFileID pulls the bare file-host id out of a link. A value with no
// path separators is already an id and passes through. A URL that matches
// neither the /d/<id> segment nor the id= query yields "" (not a file-host
// link), with the caller keeping the raw URL instead.
func ExtractFileID(urlOrID string) string {
	if urlOrID == "" {
		return ""
	}
	if !strings.Contains(urlOrID, "/") {
		return urlOrID
	}
	if m := filePathPattern.FindStringSubmatch(urlOrID); m != nil {
		return m[1]
	}
	if m := fileQueryPattern.FindStringSubmatch(urlOrID); m != nil {
		return m[1]
	}
	return ""
}

// IsExternalURL reports whether a seal value points somewhere other than the
// recognized file host and should be stored verbatim.
func IsExternalURL(value string) bool {
	return strings.HasPrefix(value, "http") && !strings.Contains(value, "drive.google.com")
}
