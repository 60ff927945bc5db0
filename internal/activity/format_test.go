package activity

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContentPreview(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"short", "nice capsule", "nice capsule"},
		{"exactly fifty", strings.Repeat("a", 50), strings.Repeat("a", 50)},
		{"fifty one", strings.Repeat("a", 51), strings.Repeat("a", 50) + "..."},
		{"multibyte at limit", strings.Repeat("é", 50), strings.Repeat("é", 50)},
		{"multibyte over limit", strings.Repeat("日", 60), strings.Repeat("日", 50) + "..."},
		{"emoji boundary", strings.Repeat("a", 49) + "🎉🎉", strings.Repeat("a", 49) + "🎉..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContentPreview(tt.in))
		})
	}
}

func TestInitials(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ada Lovelace", "AL"},
		{"Madonna", "M"},
		{"", "U"},
		{"   ", "U"},
		{"  grace   brewster murray hopper ", "GH"},
		{"élodie durand", "ÉD"},
		{"ada\tlovelace", "AL"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Initials(tt.in))
		})
	}
}

func TestTimeElapsed(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ago := func(seconds int64) time.Time { return now.Add(-time.Duration(seconds) * time.Second) }

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"zero delta", ago(0), "just now"},
		{"59s", ago(59), "just now"},
		{"60s", ago(60), "1m"},
		{"3599s", ago(3599), "59m"},
		{"3600s", ago(3600), "1h"},
		{"86399s", ago(86399), "23h"},
		{"86400s", ago(86400), "1d"},
		{"604799s", ago(604799), "6d"},
		{"604800s", ago(604800), "1w"},
		{"2591999s", ago(2591999), "4w"},
		{"2592000s", ago(2592000), "1mo"},
		{"a year", ago(365 * 86400), "12mo"},
		{"future clamps to now", now.Add(10 * time.Minute), "just now"},
		{"zero time", time.Time{}, UnknownTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TimeElapsed(now, tt.at))
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	assert.Equal(t, "2024-06-01 10:30:05", FormatTimestamp(time.Date(2024, 6, 1, 12, 30, 5, 0, loc)))
	assert.Equal(t, "", FormatTimestamp(time.Time{}))
}
