package task

import "strings"

// MaxArgLength returns the command-line length limit assumed for goos.
func MaxArgLength(goos string) int {
	switch goos {
	case "darwin":
		return 262144
	case "windows":
		return 8191
	default:
		return 131072
	}
}

// ExceedsArgLength reports the length of files joined by spaces and whether it
// is over the limit for goos.
func ExceedsArgLength(files []string, goos string) (int, bool) {
	length := len(strings.Join(files, " "))
	return length, length > MaxArgLength(goos)
}
