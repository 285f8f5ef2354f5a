package analyzer

import (
	_ "embed"
	"os"
	"strings"
)

// The system instruction defines the exact JSON schema the model must emit.
//
//go:embed prompt.txt
var defaultSystemPrompt string

// LoadSystemPrompt returns the system instruction, preferring an override
// file when path is non-empty and readable.
func LoadSystemPrompt(path string) string {
	if path != "" {
		if b, err := os.ReadFile(path); err == nil && strings.TrimSpace(string(b)) != "" {
			return string(b)
		}
	}
	return defaultSystemPrompt
}
