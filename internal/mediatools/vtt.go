package mediatools

import (
	"regexp"
	"strings"
)

var (
	vttTimestamp = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{3} --> \d{2}:\d{2}:\d{2}\.\d{3}`)
	// Cue identifiers written by Teams/Stream: a UUID, a dash and a sequence number.
	vttCueID = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}-\d+`)

	vttHeaderPrefixes = []string{"WEBVTT", "NOTE", "STYLE", "REGION"}
)

// ExtractTextFromVTT returns the spoken text of a WebVTT transcript as a
// single space-separated line.
func ExtractTextFromVTT(data string) string {
	var parts []string
	for _, line := range strings.Split(data, "\n") {
		if vttTimestamp.MatchString(line) || vttCueID.MatchString(line) || hasAnyPrefix(line, vttHeaderPrefixes) {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		parts = append(parts, trimmed)
	}
	return strings.Join(parts, " ")
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
