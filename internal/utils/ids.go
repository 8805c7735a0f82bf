package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// GenerateTaskID generates a public task id: "task_" followed by 16
// lowercase hex characters. This shape is what the reference extractor
// recognizes in external text.
func GenerateTaskID() (string, error) {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return "task_" + hex.EncodeToString(bytes), nil
}

// GenerateInviteCode generates a random invite code in the format XXXX-XXXX-XXXX
func GenerateInviteCode() (string, error) {
	bytes := make([]byte, 6)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	hex := hex.EncodeToString(bytes)
	// Format: XXXX-XXXX-XXXX
	return fmt.Sprintf("%s-%s-%s",
		hex[0:4],
		hex[4:8],
		hex[8:12],
	), nil
}

// BoardPrefix derives an uppercase reference prefix from a board name,
// e.g. "Mobile App" -> "MA", "flowboard" -> "FLO".
func BoardPrefix(name string) string {
	fields := strings.Fields(name)
	if len(fields) >= 2 {
		var b strings.Builder
		for _, f := range fields {
			r := []rune(strings.ToUpper(f))
			if len(r) > 0 && r[0] >= 'A' && r[0] <= 'Z' {
				b.WriteRune(r[0])
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}

	upper := strings.ToUpper(name)
	var b strings.Builder
	for _, r := range upper {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
		if b.Len() == 3 {
			break
		}
	}
	if b.Len() == 0 {
		return "TASK"
	}
	return b.String()
}
