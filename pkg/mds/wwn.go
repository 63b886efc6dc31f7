package mds

import "regexp"

// wwnPattern matches a World-Wide Name: eight colon-separated hex octets,
// e.g. 21:00:00:0e:1e:30:34:a5.
var wwnPattern = regexp.MustCompile(`^([0-9a-fA-F]{2}:){7}[0-9a-fA-F]{2}$`)

// IsWWN reports whether s is a well-formed World-Wide Name.
func IsWWN(s string) bool {
	return wwnPattern.MatchString(s)
}
