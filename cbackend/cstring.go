package cbackend

import "strings"

// CString returns s as a NUL-terminated byte slice. It reports false when s
// contains a NUL byte, since such a name cannot cross a C string boundary
// without being truncated.
func CString(s string) ([]byte, bool) {
	if strings.IndexByte(s, 0) >= 0 {
		return nil, false
	}
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b, true
}
