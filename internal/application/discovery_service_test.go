package application

import (
	"context"
	"testing"
	"time"

	"github.com/bnema/boards-cli/internal/adapters/driver/script"
	"github.com/bnema/boards-cli/internal/adapters/repo/memory"
	"github.com/bnema/boards-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const discoveryURL = "https://boards.example.com/boards/quantum"

func stableExchange(answer string) script.Exchange {
	return script.Exchange{
		Snapshots: []domain.Snapshot{
			{Text: answer},
			{Text: answer},
		},
	}
}

func newDiscoveryFixture(t *testing.T, lib domain.Library, exchanges ...script.Exchange) (*DiscoveryService, *memory.Repository, *script.Driver) {
	t.Helper()

	clock := newFakeClock(askStart)
	driver := script.NewDriver(exchanges...)
	repo := memory.NewRepositoryWith(lib)
	executor := NewQueryExecutor(repo, &fakeAuthStateStore{state: validState()}, driver, clock, &fakeSleeper{clock: clock}, QueryPolicy{})
	library := NewLibraryService(repo, clock)

	return NewDiscoveryService(executor, library), repo, driver
}

func TestDiscoveryServiceSmartAddTwoPass(t *testing.T) {
	summary := "- Covers quantum mechanics\n- Weekly problem sets"
	structured := "```json\n{\"name\": \"Quantum Mechanics\", \"description\": \"Problem sets and lecture notes.\", \"topics\": [\"quantum\", \"physics\"]}\n```"
	service, repo, driver := newDiscoveryFixture(t, domain.Library{},
		stableExchange(summary),
		stableExchange(structured),
	)

	result, err := service.SmartAdd(context.Background(), SmartAddCommand{URL: discoveryURL + "/"})
	require.NoError(t, err)

	assert.Equal(t, SmartAddStatusAdded, result.Status)
	assert.Equal(t, "two_pass", result.DiscoveryUsed)
	assert.Equal(t, summary, result.Summary)
	assert.Equal(t, structured, result.Structured)

	assert.Equal(t, domain.BoardID("quantum-mechanics"), result.Board.ID)
	assert.Equal(t, "Quantum Mechanics", result.Board.Name)
	assert.Equal(t, "Problem sets and lecture notes.", result.Board.Description)
	assert.Equal(t, []string{"quantum", "physics"}, result.Board.Topics)
	assert.Equal(t, discoveryURL, result.Board.URL)
	assert.True(t, result.Board.IsActive)

	require.Len(t, driver.Opened, 2)
	assert.Equal(t, discoveryURL, driver.Opened[0])
	assert.Equal(t, discoveryURL, driver.Opened[1])

	require.Len(t, driver.Submitted, 2)
	assert.Equal(t, defaultSummaryPrompt, driver.Submitted[0])
	assert.Contains(t, driver.Submitted[1], "return strict JSON")
	assert.Contains(t, driver.Submitted[1], "Summary: - Covers quantum mechanics - Weekly problem sets")

	lib, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.BoardID("quantum-mechanics"), lib.ActiveBoardID)
}

func TestDiscoveryServiceSmartAddSinglePass(t *testing.T) {
	structured := `{"name": "Quantum Mechanics", "description": "Problem sets.", "topics": ["quantum"]}`
	service, _, driver := newDiscoveryFixture(t, domain.Library{}, stableExchange(structured))

	result, err := service.SmartAdd(context.Background(), SmartAddCommand{URL: discoveryURL, SinglePass: true})
	require.NoError(t, err)

	assert.Equal(t, "single_pass", result.DiscoveryUsed)
	assert.Empty(t, result.Summary)
	assert.Equal(t, structured, result.Structured)
	assert.Equal(t, "Quantum Mechanics", result.Board.Name)

	require.Len(t, driver.Submitted, 1)
	assert.Equal(t, defaultSinglePassPrompt, driver.Submitted[0])
}

func TestDiscoveryServiceSmartAddUnparseableStructuredAnswerFallsBack(t *testing.T) {
	summary := "Collects golang concurrency recipes"
	service, _, _ := newDiscoveryFixture(t, domain.Library{},
		stableExchange(summary),
		stableExchange("I am unable to produce structured output, sorry."),
	)

	result, err := service.SmartAdd(context.Background(), SmartAddCommand{URL: discoveryURL})
	require.NoError(t, err, "parse failures must degrade, not fail")

	assert.Equal(t, SmartAddStatusAdded, result.Status)
	assert.Equal(t, "two_pass_summary_fallback", result.DiscoveryUsed)
	assert.Equal(t, "Collects golang concurrency recipes", result.Board.Name)
	assert.NotEmpty(t, result.Board.Description)
}

func TestDiscoveryServiceSmartAddSecondPassTimeoutFallsBack(t *testing.T) {
	summary := "Collects golang concurrency recipes"
	service, _, driver := newDiscoveryFixture(t, domain.Library{},
		stableExchange(summary),
		script.Exchange{GrowForever: true},
	)

	result, err := service.SmartAdd(context.Background(), SmartAddCommand{
		URL:     discoveryURL,
		Timeout: 3 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, "two_pass_summary_fallback", result.DiscoveryUsed)
	assert.Equal(t, summary, result.Summary)
	assert.Empty(t, result.Structured)
	assert.NotEmpty(t, result.Board.Name)
	assert.Len(t, driver.Closed, 2, "both sessions must be released")
}

func TestDiscoveryServiceSmartAddExistingURLActivates(t *testing.T) {
	lib := mustLibrary(t,
		testBoard("other", "https://boards.example.com/boards/other", "Other"),
		testBoard("target", discoveryURL, "Target"),
	)
	service, repo, driver := newDiscoveryFixture(t, lib)

	result, err := service.SmartAdd(context.Background(), SmartAddCommand{
		URL: discoveryURL + "/?material-id=m-9",
	})
	require.NoError(t, err)

	assert.Equal(t, SmartAddStatusExists, result.Status)
	assert.Equal(t, domain.BoardID("target"), result.Board.ID)
	assert.True(t, result.Board.IsActive)
	assert.Empty(t, result.DiscoveryUsed)
	assert.Empty(t, driver.Opened, "an already-known URL asks nothing")

	stored, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.BoardID("target"), stored.ActiveBoardID)
}

func TestDiscoveryServiceSmartAddExistingURLSkipActivate(t *testing.T) {
	lib := mustLibrary(t,
		testBoard("other", "https://boards.example.com/boards/other", "Other"),
		testBoard("target", discoveryURL, "Target"),
	)
	service, repo, _ := newDiscoveryFixture(t, lib)

	result, err := service.SmartAdd(context.Background(), SmartAddCommand{
		URL:          discoveryURL,
		SkipActivate: true,
	})
	require.NoError(t, err)

	assert.Equal(t, SmartAddStatusExists, result.Status)
	assert.False(t, result.Board.IsActive)

	stored, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.BoardID("other"), stored.ActiveBoardID)
}

func TestDiscoveryServiceSmartAddCustomPrompts(t *testing.T) {
	service, _, driver := newDiscoveryFixture(t, domain.Library{},
		stableExchange(`{"name": "Custom", "description": "Prompted.", "topics": []}`),
	)

	_, err := service.SmartAdd(context.Background(), SmartAddCommand{
		URL:              discoveryURL,
		SinglePass:       true,
		StructuredPrompt: "Describe this board as strict JSON, nothing else.",
	})
	require.NoError(t, err)

	require.Len(t, driver.Submitted, 1)
	assert.Equal(t, "Describe this board as strict JSON, nothing else.", driver.Submitted[0])
}

func TestDiscoveryServiceSmartAddInvalidURL(t *testing.T) {
	service, _, _ := newDiscoveryFixture(t, domain.Library{})

	_, err := service.SmartAdd(context.Background(), SmartAddCommand{URL: "nope"})
	require.ErrorIs(t, err, domain.ErrBoardResolution)
}
