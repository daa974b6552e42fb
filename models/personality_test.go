package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPersonality_PresetRoundTrip(t *testing.T) {
	p := PresetPersonality("pirate")

	assert.False(t, p.IsCustom())
	assert.Equal(t, "pirate", EncodePersonality(p))
	assert.Equal(t, p, DecodePersonality("pirate"))
}

func TestPersonality_CustomRoundTrip(t *testing.T) {
	p := CustomPersonality("You only answer in haiku.")

	assert.True(t, p.IsCustom())

	stored := EncodePersonality(p)
	assert.Equal(t, "custom:You only answer in haiku.", stored)
	assert.Equal(t, p, DecodePersonality(stored))
}

func TestPersonality_CustomMessageMatchingPresetNameStaysCustom(t *testing.T) {
	// A custom system message that happens to equal a preset name must not
	// decode as that preset.
	p := CustomPersonality("pirate")

	stored := EncodePersonality(p)
	assert.NotEqual(t, "pirate", stored)

	decoded := DecodePersonality(stored)
	assert.True(t, decoded.IsCustom())
	assert.Equal(t, "pirate", decoded.Custom)
}

func TestPersonality_EmptyCustomMessage(t *testing.T) {
	p := CustomPersonality("")

	decoded := DecodePersonality(EncodePersonality(p))
	assert.True(t, decoded.IsCustom())
	assert.Empty(t, decoded.Custom)
}
