package common

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate_AroundMessageLimit(t *testing.T) {
	under := strings.Repeat("a", MaxMessageLength-1)
	assert.Equal(t, under, Truncate(under, MaxMessageLength))

	exact := strings.Repeat("a", MaxMessageLength)
	assert.Equal(t, exact, Truncate(exact, MaxMessageLength))

	over := strings.Repeat("a", MaxMessageLength+1)
	truncated := Truncate(over, MaxMessageLength)
	assert.Equal(t, MaxMessageLength, utf8.RuneCountInString(truncated))
	assert.True(t, strings.HasSuffix(truncated, "…"))
}

func TestTruncate_CountsRunesNotBytes(t *testing.T) {
	// Five runes, twenty bytes: must not be cut at a limit of five.
	text := strings.Repeat("🏴", 5)
	assert.Equal(t, text, Truncate(text, 5))

	truncated := Truncate(text, 4)
	assert.Equal(t, 4, utf8.RuneCountInString(truncated))
	assert.Equal(t, strings.Repeat("🏴", 3)+"…", truncated)
}

func TestFormatDiscordTimestamp(t *testing.T) {
	when := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "<t:1748779200:R>", FormatDiscordTimestamp(when, "R"))
	assert.Equal(t, "<t:1748779200:F>", FormatDiscordTimestamp(when, "F"))
}
