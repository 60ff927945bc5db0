package activity

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	previewLength = 50
	ellipsis      = "..."

	// UnknownTime is the elapsed-time label for a comment without a usable timestamp.
	UnknownTime = "unknown"

	timestampLayout = "2006-01-02 15:04:05"
)

// ContentPreview returns the first 50 characters of text, followed by an
// ellipsis when text is longer.
func ContentPreview(text string) string {
	if utf8.RuneCountInString(text) <= previewLength {
		return text
	}
	n := 0
	for i := range text {
		if n == previewLength {
			return text[:i] + ellipsis
		}
		n++
	}
	return text
}

// Initials returns the uppercased first letter of the first and last words of
// name, or "U" when name has no words.
func Initials(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "U"
	}
	initials := firstUpper(parts[0])
	if len(parts) > 1 {
		initials += firstUpper(parts[len(parts)-1])
	}
	return initials
}

func firstUpper(word string) string {
	r, _ := utf8.DecodeRuneInString(word)
	return string(unicode.ToUpper(r))
}

// TimeElapsed renders how long ago t was relative to now as a compact label
// ("just now", "5m", "3h", "2d", "1w", "4mo"). Future times count as now. A
// zero t yields UnknownTime.
func TimeElapsed(now, t time.Time) string {
	if t.IsZero() {
		return UnknownTime
	}
	diff := now.Unix() - t.Unix()
	if diff < 0 {
		diff = 0
	}

	switch {
	case diff < 60:
		return "just now"
	case diff < 3600:
		return strconv.FormatInt(diff/60, 10) + "m"
	case diff < 86400:
		return strconv.FormatInt(diff/3600, 10) + "h"
	case diff < 604800:
		return strconv.FormatInt(diff/86400, 10) + "d"
	case diff < 2592000:
		return strconv.FormatInt(diff/604800, 10) + "w"
	default:
		return strconv.FormatInt(diff/2592000, 10) + "mo"
	}
}

// FormatTimestamp renders t in UTC for feed items, or "" for a zero t.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}
