// ABOUTME: Path segment walking for the versioned REST dispatcher
// ABOUTME: Splits request targets into segments without allocating

package api

import "strings"

// splitSegment returns the first path segment of target and the remainder.
// Leading slashes are skipped; the remainder keeps no leading slash.
func splitSegment(target string) (segment, rest string) {
	target = strings.TrimLeft(target, "/")
	if i := strings.IndexByte(target, '/'); i >= 0 {
		return target[:i], strings.TrimLeft(target[i:], "/")
	}
	return target, ""
}

// shiftEndpoint reports whether target's first segment equals key and, if
// so, advances target past it.
func shiftEndpoint(key string, target *string) bool {
	segment, rest := splitSegment(*target)
	if segment != key {
		return false
	}
	*target = rest
	return true
}
