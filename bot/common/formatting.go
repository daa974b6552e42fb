package common

import (
	"fmt"
	"time"
)

const (
	// MaxMessageLength is the platform limit for plain message content.
	MaxMessageLength = 2000
	// MaxEmbedLength is the platform limit for an embed description.
	MaxEmbedLength = 4096
)

// Truncate cuts a string to at most limit runes, appending an ellipsis when
// anything was dropped
func Truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}
