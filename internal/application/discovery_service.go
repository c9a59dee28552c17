package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/boards-cli/internal/domain"
)

const (
	defaultSummaryPrompt = "Briefly describe this board's content, topics, and typical use cases. " +
		"Answer with concise bullet points."

	structuredFormatHint = `{"name":"short name","description":"1-2 sentence description","topics":["topic1","topic2","topic3"]}`

	defaultSinglePassPrompt = "Read this board and return strict JSON with no extra text: " + structuredFormatHint

	twoPassStructuredPrompt = "Based on the following board summary, return strict JSON with no extra text: " +
		structuredFormatHint + "\nSummary: %s"

	maxCompactSummaryLen = 1500
)

// DiscoveryService implements smart add: it interrogates an unfamiliar
// board through the query executor, derives metadata, and registers the
// result.
type DiscoveryService struct {
	executor *QueryExecutor
	library  *LibraryService
}

func NewDiscoveryService(executor *QueryExecutor, library *LibraryService) *DiscoveryService {
	return &DiscoveryService{
		executor: executor,
		library:  library,
	}
}

// SmartAdd discovers metadata for the board at cmd.URL and adds it to the
// library. A URL that is already registered is reported (and activated)
// instead of duplicated unless cmd.AllowDuplicateURL is set. Parse
// failures never surface: they degrade to heuristic metadata.
func (s *DiscoveryService) SmartAdd(ctx context.Context, cmd SmartAddCommand) (SmartAddResult, error) {
	normalizedURL, err := domain.NormalizeBoardURL(cmd.URL)
	if err != nil {
		return SmartAddResult{}, fmt.Errorf("board url %q: %v: %w", cmd.URL, err, domain.ErrBoardResolution)
	}

	existing, found, err := s.library.FindByURL(ctx, normalizedURL)
	if err != nil {
		return SmartAddResult{}, err
	}
	if found && !cmd.AllowDuplicateURL {
		if !cmd.SkipActivate {
			existing, err = s.library.Activate(ctx, existing.ID)
			if err != nil {
				return SmartAddResult{}, err
			}
		}

		return SmartAddResult{Status: SmartAddStatusExists, Board: existing}, nil
	}

	result := SmartAddResult{Status: SmartAddStatusAdded}

	var meta BoardMetadata
	if cmd.SinglePass {
		prompt := cmd.StructuredPrompt
		if prompt == "" {
			prompt = defaultSinglePassPrompt
		}

		answer, err := s.ask(ctx, normalizedURL, prompt, cmd)
		if err != nil {
			return SmartAddResult{}, fmt.Errorf("discovery query: %w", err)
		}
		result.Structured = answer
		result.DiscoveryUsed = "single_pass"
		meta = deriveBoardMetadata(answer, normalizedURL)
	} else {
		summaryPrompt := cmd.SummaryPrompt
		if summaryPrompt == "" {
			summaryPrompt = defaultSummaryPrompt
		}

		summary, err := s.ask(ctx, normalizedURL, summaryPrompt, cmd)
		if err != nil {
			return SmartAddResult{}, fmt.Errorf("discovery summary query: %w", err)
		}
		result.Summary = summary

		structuredPrompt := cmd.StructuredPrompt
		if structuredPrompt == "" {
			compact := clipRunes(domain.NormalizeSpace(summary), maxCompactSummaryLen)
			structuredPrompt = fmt.Sprintf(twoPassStructuredPrompt, compact)
		}

		structured, err := s.ask(ctx, normalizedURL, structuredPrompt, cmd)
		switch {
		case err != nil && (errors.Is(err, domain.ErrAnswerTimeout) || errors.Is(err, domain.ErrRemoteFailure)):
			// The summary already answers well enough to register the
			// board; a flaky second pass should not sink the workflow.
			result.DiscoveryUsed = "two_pass_summary_fallback"
			meta = deriveBoardMetadata(summary, normalizedURL)
		case err != nil:
			return SmartAddResult{}, fmt.Errorf("discovery structured query: %w", err)
		default:
			result.Structured = structured
			if _, ok := extractJSONBlock(structured); ok {
				result.DiscoveryUsed = "two_pass"
				meta = deriveBoardMetadata(structured, normalizedURL)
			} else {
				result.DiscoveryUsed = "two_pass_summary_fallback"
				meta = deriveBoardMetadata(summary, normalizedURL)
			}
		}
	}

	board, err := s.library.Add(ctx, AddBoardCommand{
		URL:         normalizedURL,
		Name:        meta.Name,
		Description: meta.Description,
		Topics:      meta.Topics,
	})
	if err != nil {
		return SmartAddResult{}, fmt.Errorf("register discovered board: %w", err)
	}

	if !cmd.SkipActivate {
		board, err = s.library.Activate(ctx, board.ID)
		if err != nil {
			return SmartAddResult{}, err
		}
	}
	result.Board = board

	return result, nil
}

func (s *DiscoveryService) ask(ctx context.Context, boardURL, question string, cmd SmartAddCommand) (string, error) {
	result, err := s.executor.Ask(ctx, AskCommand{
		BoardURL: boardURL,
		Question: question,
		Timeout:  cmd.Timeout,
	})
	if err != nil {
		return "", err
	}

	return result.Answer, nil
}
