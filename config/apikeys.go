package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// CustomAPIKeys maps user IDs to their own completion API keys. Requests from
// these users are billed to their key, so the allowance ledger treats them as
// unlimited.
type CustomAPIKeys map[int64]string

type customAPIKeysFile struct {
	Keys []customAPIKeyEntry `yaml:"keys"`
}

type customAPIKeyEntry struct {
	User string `yaml:"user"`
	Key  string `yaml:"key"`
}

// LoadCustomAPIKeys reads the per-user API key file. An empty path is allowed
// and yields an empty table.
func LoadCustomAPIKeys(path string) (CustomAPIKeys, error) {
	keys := make(CustomAPIKeys)
	if path == "" {
		return keys, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read custom API keys file: %w", err)
	}

	var file customAPIKeysFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse custom API keys file: %w", err)
	}

	for _, entry := range file.Keys {
		userID, err := strconv.ParseInt(entry.User, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID %q in custom API keys file: %w", entry.User, err)
		}
		if entry.Key == "" {
			return nil, fmt.Errorf("empty API key for user %d in custom API keys file", userID)
		}
		keys[userID] = entry.Key
	}

	return keys, nil
}
