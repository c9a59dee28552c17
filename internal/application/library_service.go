package application

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bnema/boards-cli/internal/domain"
	"github.com/bnema/boards-cli/internal/ports"
)

// LibraryService owns every board-library mutation. Each operation loads
// the full aggregate, mutates it, and writes it back whole.
type LibraryService struct {
	repo  ports.LibraryRepository
	clock ports.Clock
}

func NewLibraryService(repo ports.LibraryRepository, clock ports.Clock) *LibraryService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &LibraryService{
		repo:  repo,
		clock: clock,
	}
}

func (s *LibraryService) Add(ctx context.Context, cmd AddBoardCommand) (domain.Board, error) {
	normalizedURL, err := domain.NormalizeBoardURL(cmd.URL)
	if err != nil {
		return domain.Board{}, fmt.Errorf("board url %q: %w", cmd.URL, err)
	}

	lib, err := s.repo.Load(ctx)
	if err != nil {
		return domain.Board{}, fmt.Errorf("load library: %w", err)
	}

	id := domain.BoardID(strings.TrimSpace(string(cmd.ID)))
	if id == "" {
		id = lib.EnsureUniqueID(domain.BoardID(domain.Slugify(cmd.Name)))
	}

	board := domain.Board{
		ID:          id,
		URL:         normalizedURL,
		Name:        strings.TrimSpace(cmd.Name),
		Description: strings.TrimSpace(cmd.Description),
		Topics:      cmd.Topics,
		CreatedAt:   s.clock.Now(),
	}
	board.NormalizeTopics()

	if err := lib.Add(board); err != nil {
		return domain.Board{}, fmt.Errorf("add board %s: %w", id, err)
	}
	if err := s.repo.Save(ctx, lib); err != nil {
		return domain.Board{}, fmt.Errorf("save library: %w", err)
	}

	added, _ := lib.Get(id)

	return added, nil
}

func (s *LibraryService) List(ctx context.Context) ([]domain.Board, error) {
	lib, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load library: %w", err)
	}

	return lib.Boards, nil
}

func (s *LibraryService) Get(ctx context.Context, id domain.BoardID) (domain.Board, error) {
	lib, err := s.repo.Load(ctx)
	if err != nil {
		return domain.Board{}, fmt.Errorf("load library: %w", err)
	}

	board, ok := lib.Get(id)
	if !ok {
		return domain.Board{}, fmt.Errorf("board %s: %w", id, domain.ErrBoardNotFound)
	}

	return board, nil
}

func (s *LibraryService) Search(ctx context.Context, query string) ([]domain.Board, error) {
	lib, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load library: %w", err)
	}

	matches := make([]domain.Board, 0)
	for _, board := range lib.Boards {
		if board.MatchesQuery(query) {
			matches = append(matches, board)
		}
	}

	return matches, nil
}

func (s *LibraryService) FindByURL(ctx context.Context, rawURL string) (domain.Board, bool, error) {
	lib, err := s.repo.Load(ctx)
	if err != nil {
		return domain.Board{}, false, fmt.Errorf("load library: %w", err)
	}

	board, ok := lib.FindByURL(rawURL)

	return board, ok, nil
}

func (s *LibraryService) Activate(ctx context.Context, id domain.BoardID) (domain.Board, error) {
	lib, err := s.repo.Load(ctx)
	if err != nil {
		return domain.Board{}, fmt.Errorf("load library: %w", err)
	}

	if err := lib.Activate(id); err != nil {
		return domain.Board{}, fmt.Errorf("activate board %s: %w", id, err)
	}
	if err := s.repo.Save(ctx, lib); err != nil {
		return domain.Board{}, fmt.Errorf("save library: %w", err)
	}

	board, _ := lib.Get(id)

	return board, nil
}

func (s *LibraryService) Remove(ctx context.Context, id domain.BoardID) error {
	lib, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load library: %w", err)
	}

	if err := lib.Remove(id); err != nil {
		return fmt.Errorf("remove board %s: %w", id, err)
	}
	if err := s.repo.Save(ctx, lib); err != nil {
		return fmt.Errorf("save library: %w", err)
	}

	return nil
}

func (s *LibraryService) Update(ctx context.Context, cmd UpdateBoardCommand) (domain.Board, error) {
	lib, err := s.repo.Load(ctx)
	if err != nil {
		return domain.Board{}, fmt.Errorf("load library: %w", err)
	}

	board, ok := lib.Get(cmd.ID)
	if !ok {
		return domain.Board{}, fmt.Errorf("board %s: %w", cmd.ID, domain.ErrBoardNotFound)
	}

	if cmd.Name != nil {
		board.Name = strings.TrimSpace(*cmd.Name)
	}
	if cmd.Description != nil {
		board.Description = strings.TrimSpace(*cmd.Description)
	}
	if cmd.Topics != nil {
		board.Topics = *cmd.Topics
		board.NormalizeTopics()
	}
	if cmd.URL != nil {
		normalized, err := domain.NormalizeBoardURL(*cmd.URL)
		if err != nil {
			return domain.Board{}, fmt.Errorf("board url %q: %w", *cmd.URL, err)
		}
		board.URL = normalized
	}

	if err := board.Validate(); err != nil {
		return domain.Board{}, fmt.Errorf("update board %s: %w", cmd.ID, err)
	}
	if err := lib.Replace(board); err != nil {
		return domain.Board{}, fmt.Errorf("replace board %s: %w", cmd.ID, err)
	}
	if err := s.repo.Save(ctx, lib); err != nil {
		return domain.Board{}, fmt.Errorf("save library: %w", err)
	}

	updated, _ := lib.Get(cmd.ID)

	return updated, nil
}

// Stats derives library figures on the fly; nothing here is stored.
func (s *LibraryService) Stats(ctx context.Context) (LibraryStats, error) {
	lib, err := s.repo.Load(ctx)
	if err != nil {
		return LibraryStats{}, fmt.Errorf("load library: %w", err)
	}

	stats := LibraryStats{TotalBoards: len(lib.Boards)}

	topicCounts := make(map[string]int)
	topicNames := make(map[string]string)
	for _, board := range lib.Boards {
		stats.TotalUseCount += board.UseCount
		for _, topic := range board.Topics {
			key := strings.ToLower(topic)
			topicCounts[key]++
			if _, ok := topicNames[key]; !ok {
				topicNames[key] = topic
			}
		}
	}
	stats.TotalTopics = len(topicCounts)

	for key, count := range topicCounts {
		stats.TopTopics = append(stats.TopTopics, TopicCount{Topic: topicNames[key], Count: count})
	}
	sort.Slice(stats.TopTopics, func(i, j int) bool {
		if stats.TopTopics[i].Count != stats.TopTopics[j].Count {
			return stats.TopTopics[i].Count > stats.TopTopics[j].Count
		}

		return stats.TopTopics[i].Topic < stats.TopTopics[j].Topic
	})

	if active, ok := lib.ActiveBoard(); ok {
		stats.Active = &active
	}

	stats.MostUsed = mostUsedBoard(lib.Boards)
	stats.MostRecentlyUsed = mostRecentlyUsedBoard(lib.Boards)
	stats.LeastRecentlyUsed = leastRecentlyUsedBoard(lib.Boards)

	return stats, nil
}

func mostUsedBoard(boards []domain.Board) *domain.Board {
	var best *domain.Board
	for i := range boards {
		if boards[i].UseCount == 0 {
			continue
		}
		if best == nil || boards[i].UseCount > best.UseCount {
			best = &boards[i]
		}
	}

	return best
}

func mostRecentlyUsedBoard(boards []domain.Board) *domain.Board {
	var best *domain.Board
	for i := range boards {
		if boards[i].LastUsedAt.IsZero() {
			continue
		}
		if best == nil || boards[i].LastUsedAt.After(best.LastUsedAt) {
			best = &boards[i]
		}
	}

	return best
}

// leastRecentlyUsedBoard treats never-used boards as oldest.
func leastRecentlyUsedBoard(boards []domain.Board) *domain.Board {
	var best *domain.Board
	for i := range boards {
		if best == nil {
			best = &boards[i]
			continue
		}
		if boards[i].LastUsedAt.Before(best.LastUsedAt) {
			best = &boards[i]
		}
	}

	return best
}
