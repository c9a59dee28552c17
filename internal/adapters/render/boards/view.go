package boards

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/boards-cli/internal/application"
	"github.com/bnema/boards-cli/internal/domain"
)

type RenderOptions struct {
	Now time.Time
}

func RenderBoardList(list []domain.Board, opts RenderOptions) (string, error) {
	return render(func(s styles) string {
		return listView("Board Library", list, opts, s)
	})
}

func RenderSearchResults(query string, list []domain.Board, opts RenderOptions) (string, error) {
	return render(func(s styles) string {
		title := fmt.Sprintf("Boards matching %q", query)
		return listView(title, list, opts, s)
	})
}

func RenderBoardDetail(board domain.Board, opts RenderOptions) (string, error) {
	return render(func(s styles) string {
		return detailView(board, opts, s)
	})
}

func RenderStats(stats application.LibraryStats, opts RenderOptions) (string, error) {
	return render(func(s styles) string {
		return statsView(stats, opts, s)
	})
}

func RenderImportPlan(plan application.ImportPlan) (string, error) {
	return render(func(s styles) string {
		return importPlanView(plan, s)
	})
}

func RenderAuthStatus(state domain.AuthState, opts RenderOptions) (string, error) {
	return render(func(s styles) string {
		return authStatusView(state, opts, s)
	})
}

func RenderSmartAdd(result application.SmartAddResult) (string, error) {
	return render(func(s styles) string {
		return smartAddView(result, s)
	})
}

func listView(title string, list []domain.Board, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render(title),
		s.header.Render(fmt.Sprintf("boards: %d", len(list))),
	}

	if len(list) == 0 {
		lines = append(lines, s.empty.Render("No boards registered."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, board := range list {
		lines = append(lines, s.section.Render(boardBlock(board, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func boardBlock(board domain.Board, opts RenderOptions, s styles) string {
	marker := "  "
	titleStyle := s.name
	if board.IsActive {
		marker = "* "
		titleStyle = s.active
	}

	parts := []string{
		marker + titleStyle.Render(boardTitle(board)),
		"    " + s.detail.Render(board.URL),
	}
	if topics := topicsLine(board.Topics, s); topics != "" {
		parts = append(parts, "    "+topics)
	}
	parts = append(parts, "    "+s.meta.Render(usageLine(board, opts.Now)))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func detailView(board domain.Board, opts RenderOptions, s styles) string {
	titleStyle := s.name
	if board.IsActive {
		titleStyle = s.active
	}

	lines := []string{
		titleStyle.Render(boardTitle(board)),
		s.detail.Render(board.URL),
		s.detail.Render(board.Description),
	}
	if topics := topicsLine(board.Topics, s); topics != "" {
		lines = append(lines, topics)
	}
	lines = append(lines, s.meta.Render(usageLine(board, opts.Now)))
	if !board.CreatedAt.IsZero() {
		lines = append(lines, s.meta.Render("added "+formatRelativePast(board.CreatedAt, opts.Now)))
	}
	if board.IsActive {
		lines = append(lines, s.ok.Render("active board"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func statsView(stats application.LibraryStats, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Library Stats"),
		s.header.Render(fmt.Sprintf("boards: %d | topics: %d | total uses: %d",
			stats.TotalBoards, stats.TotalTopics, stats.TotalUseCount)),
	}

	if stats.TotalBoards == 0 {
		lines = append(lines, s.empty.Render("No boards registered."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	if len(stats.TopTopics) > 0 {
		topicLines := []string{s.detail.Render("top topics:")}
		maxCount := stats.TopTopics[0].Count
		width := longestTopic(stats.TopTopics)
		for _, tc := range stats.TopTopics {
			label := s.topicKey.Render(fmt.Sprintf("  %-*s", width, tc.Topic))
			bar := renderCountBar(tc.Count, maxCount, 12, s)
			count := s.meta.Render(fmt.Sprintf("%d", tc.Count))
			topicLines = append(topicLines, lipgloss.JoinHorizontal(lipgloss.Top, label, " ", bar, " ", count))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, topicLines...)))
	}

	boardLines := make([]string, 0, 4)
	if stats.Active != nil {
		boardLines = append(boardLines, "active: "+s.active.Render(boardTitle(*stats.Active)))
	}
	if stats.MostUsed != nil {
		boardLines = append(boardLines, fmt.Sprintf("most used: %s (%s)",
			s.name.Render(boardTitle(*stats.MostUsed)), useCountLabel(stats.MostUsed.UseCount)))
	}
	if stats.MostRecentlyUsed != nil {
		boardLines = append(boardLines, fmt.Sprintf("most recent: %s (%s)",
			s.name.Render(boardTitle(*stats.MostRecentlyUsed)),
			formatRelativePast(stats.MostRecentlyUsed.LastUsedAt, opts.Now)))
	}
	if stats.LeastRecentlyUsed != nil {
		boardLines = append(boardLines, fmt.Sprintf("least recent: %s (%s)",
			s.name.Render(boardTitle(*stats.LeastRecentlyUsed)),
			formatRelativePast(stats.LeastRecentlyUsed.LastUsedAt, opts.Now)))
	}
	if len(boardLines) > 0 {
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, boardLines...)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func importPlanView(plan application.ImportPlan, s styles) string {
	lines := []string{
		s.title.Render(fmt.Sprintf("Import Plan (%s)", plan.Mode)),
	}
	if !plan.ExportedAt.IsZero() {
		lines = append(lines, s.header.Render("snapshot exported at "+plan.ExportedAt.Format(time.RFC3339)))
	}

	lines = append(lines,
		s.section.Render(planSection("additions", "+", plan.Additions, s)),
		planSection("overwrites", "~", plan.Overwrites, s),
		planSection("removals", "-", plan.Removals, s),
		s.meta.Render(fmt.Sprintf("unchanged: %d", len(plan.Unchanged))),
	)

	if plan.ActiveBoardID != "" {
		lines = append(lines, s.meta.Render("active after import: "+string(plan.ActiveBoardID)))
	}

	if plan.Applied {
		lines = append(lines, s.section.Render(s.ok.Render("applied")))
	} else {
		lines = append(lines, s.section.Render(s.warning.Render("dry run, library not modified")))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func planSection(label, marker string, list []domain.Board, s styles) string {
	if len(list) == 0 {
		return s.meta.Render(label + ": 0")
	}

	lines := []string{s.detail.Render(fmt.Sprintf("%s: %d", label, len(list)))}
	for _, board := range list {
		lines = append(lines, s.meta.Render(fmt.Sprintf("  %s %s", marker, boardTitle(board))))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func authStatusView(state domain.AuthState, opts RenderOptions, s styles) string {
	statusStyle := s.warning
	switch state.Status {
	case domain.AuthStatusValid:
		statusStyle = s.ok
	case domain.AuthStatusUnauthenticated:
		statusStyle = s.empty
	}

	lines := []string{
		s.title.Render("Auth Status"),
		"status: " + statusStyle.Render(string(state.Status)),
	}
	if state.AccountLabel != "" {
		lines = append(lines, "account: "+s.detail.Render(state.AccountLabel))
	}
	if !state.LastValidatedAt.IsZero() {
		lines = append(lines, s.meta.Render("last validated "+formatRelativePast(state.LastValidatedAt, opts.Now)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func smartAddView(result application.SmartAddResult, s styles) string {
	board := result.Board

	var headline string
	switch result.Status {
	case application.SmartAddStatusAdded:
		headline = s.ok.Render("added ") + s.active.Render(boardTitle(board))
	case application.SmartAddStatusExists:
		headline = s.detail.Render("already in library: ") + s.name.Render(boardTitle(board))
	default:
		headline = s.name.Render(boardTitle(board))
	}

	lines := []string{
		s.title.Render("Smart Add"),
		headline,
		s.detail.Render(board.URL),
	}
	if board.Description != "" {
		lines = append(lines, s.detail.Render(board.Description))
	}
	if topics := topicsLine(board.Topics, s); topics != "" {
		lines = append(lines, topics)
	}
	if result.DiscoveryUsed != "" {
		lines = append(lines, s.meta.Render("discovery: "+result.DiscoveryUsed))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func boardTitle(board domain.Board) string {
	name := strings.TrimSpace(board.Name)
	if name == "" {
		return string(board.ID)
	}

	return fmt.Sprintf("%s (%s)", board.ID, name)
}

func topicsLine(topics []string, s styles) string {
	if len(topics) == 0 {
		return ""
	}

	return s.topicKey.Render("topics: ") + s.detail.Render(strings.Join(topics, ", "))
}

func usageLine(board domain.Board, now time.Time) string {
	if board.UseCount == 0 {
		return "never used"
	}

	return fmt.Sprintf("%s, last %s", useCountLabel(board.UseCount), formatRelativePast(board.LastUsedAt, now))
}

func useCountLabel(count int) string {
	if count == 1 {
		return "1 use"
	}

	return fmt.Sprintf("%d uses", count)
}

func renderCountBar(count, maxCount, width int, s styles) string {
	if width <= 0 || maxCount <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * float64(count) / float64(maxCount)))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	empty := width - filled
	fillSegment := s.barFill.Render(strings.Repeat("=", filled))
	emptySegment := s.barEmpty.Render(strings.Repeat("-", empty))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		fillSegment,
		emptySegment,
		s.barBracket.Render("]"),
	)
}

func longestTopic(topics []application.TopicCount) int {
	longest := 0
	for _, tc := range topics {
		if len(tc.Topic) > longest {
			longest = len(tc.Topic)
		}
	}

	return longest
}

func formatRelativePast(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	if now.IsZero() || t.After(now) {
		return t.Format(time.RFC3339)
	}

	elapsed := now.Sub(t)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		minutes := int(math.Ceil(elapsed.Minutes()))
		suffix := "minutes"
		if minutes == 1 {
			suffix = "minute"
		}
		return fmt.Sprintf("%d %s ago", minutes, suffix)
	case elapsed < 24*time.Hour:
		hours := int(math.Ceil(elapsed.Hours()))
		suffix := "hours"
		if hours == 1 {
			suffix = "hour"
		}
		return fmt.Sprintf("%d %s ago", hours, suffix)
	default:
		days := int(math.Ceil(elapsed.Hours() / 24))
		suffix := "days"
		if days == 1 {
			suffix = "day"
		}
		return fmt.Sprintf("%d %s ago", days, suffix)
	}
}
