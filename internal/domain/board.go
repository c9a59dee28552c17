package domain

import (
	"fmt"
	"strings"
	"time"
)

type BoardID string

type Board struct {
	ID          BoardID
	URL         string
	Name        string
	Description string
	Topics      []string
	CreatedAt   time.Time
	LastUsedAt  time.Time
	UseCount    int
	IsActive    bool
}

func (b Board) Validate() error {
	if strings.TrimSpace(string(b.ID)) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(b.URL) == "" {
		return fmt.Errorf("url is required")
	}
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("name is required")
	}

	return nil
}

// NormalizeTopics trims, drops empties, and dedupes case-insensitively
// while preserving first-seen order and casing.
func (b *Board) NormalizeTopics() {
	if b == nil {
		return
	}

	topics := make([]string, 0, len(b.Topics))
	seen := make(map[string]struct{}, len(b.Topics))
	for _, topic := range b.Topics {
		trimmed := strings.TrimSpace(topic)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		topics = append(topics, trimmed)
	}

	b.Topics = topics
}

// MatchesQuery reports whether query is a case-insensitive substring of the
// board's name, description, or any topic.
func (b Board) MatchesQuery(query string) bool {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return false
	}

	if strings.Contains(strings.ToLower(b.Name), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(b.Description), needle) {
		return true
	}
	for _, topic := range b.Topics {
		if strings.Contains(strings.ToLower(topic), needle) {
			return true
		}
	}

	return false
}

func (b *Board) RecordUse(now time.Time) {
	if b == nil {
		return
	}

	b.UseCount++
	b.LastUsedAt = now
}
