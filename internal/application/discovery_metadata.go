package application

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/bnema/boards-cli/internal/domain"
)

const (
	maxNameLen        = 80
	maxDescriptionLen = 300
	maxTopics         = 10
	maxFallbackTopics = 6
)

type BoardMetadata struct {
	Name        string
	Description string
	Topics      []string
}

var (
	fencedJSONRe = regexp.MustCompile("(?si)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	braceJSONRe  = regexp.MustCompile(`(?s)(\{.*\})`)
	topicSplitRe = regexp.MustCompile(`[,，;；\n]+`)
	topicTokenRe = regexp.MustCompile(`[A-Za-z][A-Za-z0-9-]{2,}`)
)

// extractJSONBlock pulls a JSON object out of an answer, preferring fenced
// code blocks over a bare outermost-brace span.
func extractJSONBlock(text string) (map[string]any, bool) {
	candidates := make([]string, 0, 2)
	for _, match := range fencedJSONRe.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, match[1])
	}
	if match := braceJSONRe.FindStringSubmatch(text); match != nil {
		candidates = append(candidates, match[1])
	}

	for _, raw := range candidates {
		var payload map[string]any
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			continue
		}

		return payload, true
	}

	return nil, false
}

// deriveBoardMetadata turns a discovery answer into add-ready metadata.
// Parsing never hard-fails: every missing or malformed field falls back to
// heuristics over the raw answer, and name/description always end up
// non-empty. Topics may legitimately end up empty.
func deriveBoardMetadata(answer, boardURL string) BoardMetadata {
	answer = strings.TrimSpace(answer)

	var (
		name        string
		description string
		topics      []string
	)
	if payload, ok := extractJSONBlock(answer); ok {
		name = strings.TrimSpace(stringField(payload, "name"))
		description = strings.TrimSpace(stringField(payload, "description"))
		topics = normalizeTopicsValue(payload["topics"])
	}

	if description == "" {
		description = firstNonEmptyLine(answer)
	}
	if description == "" {
		description = "Board discovered via smart add."
	}

	if name == "" {
		name = headingLine(answer)
	}
	if name == "" {
		name = placeholderName(boardURL)
	}

	if len(topics) == 0 {
		topics = topicTokens(answer)
	}

	if looksLikePlaceholderName(name) {
		name = nameFromTopics(topics, boardURL)
	}

	return BoardMetadata{
		Name:        clipRunes(name, maxNameLen),
		Description: clipRunes(description, maxDescriptionLen),
		Topics:      clipTopics(topics, maxTopics),
	}
}

func stringField(payload map[string]any, key string) string {
	value, ok := payload[key]
	if !ok {
		return ""
	}

	text, ok := value.(string)
	if !ok {
		return ""
	}

	return text
}

func normalizeTopicsValue(raw any) []string {
	var parts []string
	switch value := raw.(type) {
	case []any:
		for _, item := range value {
			if text, ok := item.(string); ok {
				parts = append(parts, strings.TrimSpace(text))
			} else {
				parts = append(parts, strings.TrimSpace(fmt.Sprint(item)))
			}
		}
	case string:
		for _, part := range topicSplitRe.Split(value, -1) {
			parts = append(parts, strings.TrimSpace(part))
		}
	default:
		return nil
	}

	seen := make(map[string]struct{}, len(parts))
	topics := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		key := strings.ToLower(part)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		topics = append(topics, part)
	}

	return topics
}

func firstNonEmptyLine(answer string) string {
	for _, line := range strings.Split(answer, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}

	return ""
}

// headingLine returns the first line that looks like a title once list and
// heading markers are shaved off.
func headingLine(answer string) string {
	for _, line := range strings.Split(answer, "\n") {
		trimmed := strings.Trim(line, " -#*:\t")
		length := len([]rune(trimmed))
		if length >= 2 && length <= 42 {
			return trimmed
		}
	}

	return ""
}

func placeholderName(boardURL string) string {
	suffix := domain.BoardURLSuffix(boardURL)
	if suffix == "" {
		return "board"
	}

	return "board-" + suffix
}

// topicTokens extracts up to a handful of lowercase word tokens as a
// last-resort topic guess.
func topicTokens(answer string) []string {
	seen := make(map[string]struct{})
	topics := make([]string, 0, maxFallbackTopics)
	for _, token := range topicTokenRe.FindAllString(answer, -1) {
		key := strings.ToLower(token)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		topics = append(topics, key)
		if len(topics) >= maxFallbackTopics {
			break
		}
	}

	return topics
}

func looksLikePlaceholderName(name string) bool {
	if name == "" {
		return true
	}
	if len([]rune(name)) > 48 {
		return true
	}

	return strings.HasSuffix(name, ":") || strings.HasSuffix(name, "：")
}

var asciiTopicRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]+$`)

func nameFromTopics(topics []string, boardURL string) string {
	ascii := make([]string, 0, 3)
	for _, topic := range topics {
		if !asciiTopicRe.MatchString(topic) {
			continue
		}
		ascii = append(ascii, strings.ToLower(topic))
		if len(ascii) == 3 {
			break
		}
	}

	if len(ascii) == 0 {
		return placeholderName(boardURL)
	}

	return strings.Join(ascii, "-") + "-board"
}

func clipRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	return string(runes[:limit])
}

func clipTopics(topics []string, limit int) []string {
	if len(topics) <= limit {
		return topics
	}

	return topics[:limit]
}
