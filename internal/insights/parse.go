package insights

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// DefaultMaxItems caps how many bullets ParseBullets keeps.
const DefaultMaxItems = 5

const userMessagePrefix = "Here is ESG data in JSON:\n"

var bulletPrefix = regexp.MustCompile(`^[-•\d.\s]+`)

// ParseBullets turns model output into at most DefaultMaxItems insight
// lines. Leading dashes, bullets, digits, dots and whitespace are stripped,
// so "1. Reduce coal" and "- Reduce coal" both become "Reduce coal".
func ParseBullets(text string) []string {
	return parseBullets(text, DefaultMaxItems)
}

func parseBullets(text string, limit int) []string {
	out := make([]string, 0, limit)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == limit {
			break
		}
	}
	return out
}

// UserMessage renders payload the way it is sent to the model.
func UserMessage(payload any) (string, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding insight payload: %w", err)
	}
	return userMessagePrefix + string(data), nil
}
