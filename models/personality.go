package models

import (
	"strings"
)

// CustomPersonalityPrefix is the reserved wrapper that distinguishes a stored
// user-supplied system message from a preset name. Config loading rejects any
// preset whose name starts with it, so the two can never be confused.
const CustomPersonalityPrefix = "custom:"

// Personality is the system prompt governing a thread's tone: either a named
// preset from configuration or an arbitrary user-supplied string.
type Personality struct {
	Preset string // preset name, empty for custom personalities
	Custom string // user-supplied system message, empty for presets
}

// PresetPersonality creates a personality referring to a configured preset
func PresetPersonality(name string) Personality {
	return Personality{Preset: name}
}

// CustomPersonality creates a personality carrying a user-supplied system message
func CustomPersonality(systemMessage string) Personality {
	return Personality{Custom: systemMessage}
}

// IsCustom reports whether the personality carries a user-supplied system message
func (p Personality) IsCustom() bool {
	return p.Preset == ""
}

// EncodePersonality converts a personality to its storage form. Presets are
// stored by name; custom system messages are wrapped with the reserved prefix.
// This and DecodePersonality are the only places the wrapper convention lives.
func EncodePersonality(p Personality) string {
	if p.IsCustom() {
		return CustomPersonalityPrefix + p.Custom
	}
	return p.Preset
}

// DecodePersonality converts a stored tag back into a personality
func DecodePersonality(stored string) Personality {
	if text, ok := strings.CutPrefix(stored, CustomPersonalityPrefix); ok {
		return CustomPersonality(text)
	}
	return PresetPersonality(stored)
}
