package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	boardsrender "github.com/bnema/boards-cli/internal/adapters/render/boards"
	"github.com/bnema/boards-cli/internal/application"
	"github.com/bnema/boards-cli/internal/domain"
)

func newBoardCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Manage the board library",
	}

	cmd.AddCommand(
		newBoardAddCmd(app),
		newBoardSmartAddCmd(app),
		newBoardListCmd(app),
		newBoardGetCmd(app),
		newBoardSearchCmd(app),
		newBoardActivateCmd(app),
		newBoardRemoveCmd(app),
		newBoardUpdateCmd(app),
		newBoardStatsCmd(app),
	)

	return cmd
}

func newBoardAddCmd(app *app) *cobra.Command {
	var url string
	var name string
	var description string
	var topics []string

	cmd := &cobra.Command{
		Use:   "add [<id>]",
		Short: "Register a board (id derived from the name when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id domain.BoardID
			if len(args) == 1 {
				id = domain.BoardID(args[0])
			}

			board, err := app.library.Add(cmd.Context(), application.AddBoardCommand{
				ID:          id,
				URL:         url,
				Name:        name,
				Description: description,
				Topics:      topics,
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added board %s (%s)\n", board.ID, board.Name)
			return err
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Board URL")
	cmd.Flags().StringVar(&name, "name", "", "Board name")
	cmd.Flags().StringVar(&description, "description", "", "Board description")
	cmd.Flags().StringSliceVar(&topics, "topics", nil, "Topics (comma separated)")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newBoardSmartAddCmd(app *app) *cobra.Command {
	var singlePass bool
	var allowDuplicateURL bool
	var timeout time.Duration
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "smart-add <url>",
		Short: "Discover board metadata through a query and register it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer app.driver.Shutdown()

			smartCmd := application.SmartAddCommand{
				URL:               args[0],
				SinglePass:        singlePass,
				AllowDuplicateURL: allowDuplicateURL,
				Timeout:           timeout,
			}

			var result application.SmartAddResult
			run := func(ctx context.Context) error {
				var err error
				result, err = app.discovery.SmartAdd(ctx, smartCmd)
				return err
			}

			if asJSON {
				if err := run(cmd.Context()); err != nil {
					return err
				}
				return writeJSON(cmd, result)
			}

			if err := runAskSpinner(cmd.Context(), cmd.ErrOrStderr(), "Interrogating the board...", run); err != nil {
				return err
			}

			rendered, err := boardsrender.RenderSmartAdd(result)
			return writeRendered(cmd, rendered, err)
		},
	}

	cmd.Flags().BoolVar(&singlePass, "single-pass", false, "One structured discovery question instead of two passes")
	cmd.Flags().BoolVar(&allowDuplicateURL, "allow-duplicate-url", false, "Register even when the URL is already in the library")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-question timeout (default: query.timeout)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newBoardListCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered boards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			boards, err := app.library.List(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, boards)
			}
			rendered, err := boardsrender.RenderBoardList(boards, renderOptions(app))
			return writeRendered(cmd, rendered, err)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newBoardGetCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := app.library.Get(cmd.Context(), domain.BoardID(args[0]))
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, board)
			}
			rendered, err := boardsrender.RenderBoardDetail(board, renderOptions(app))
			return writeRendered(cmd, rendered, err)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newBoardSearchCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search boards by name, description, or topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matches, err := app.library.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, matches)
			}
			rendered, err := boardsrender.RenderSearchResults(args[0], matches, renderOptions(app))
			return writeRendered(cmd, rendered, err)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newBoardActivateCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <id>",
		Short: "Make a board the default ask target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := app.library.Activate(cmd.Context(), domain.BoardID(args[0]))
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Activated board %s (%s)\n", board.ID, board.Name)
			return err
		},
	}
}

func newBoardRemoveCmd(app *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a board from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.BoardID(args[0])

			if !force {
				confirmed, err := confirmRemoval(cmd, id)
				if err != nil {
					return err
				}
				if !confirmed {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return err
				}
			}

			if err := app.library.Remove(cmd.Context(), id); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Removed board %s\n", id)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Remove without confirmation")

	return cmd
}

func confirmRemoval(cmd *cobra.Command, id domain.BoardID) (bool, error) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Remove board %s? [y/N]: ", id)

	reader := bufio.NewReader(cmd.InOrStdin())
	input, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(input))
	return answer == "y" || answer == "yes", nil
}

func newBoardUpdateCmd(app *app) *cobra.Command {
	var name string
	var description string
	var topics []string
	var url string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields on a registered board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			update := application.UpdateBoardCommand{ID: domain.BoardID(args[0])}

			changed := false
			if cmd.Flags().Changed("name") {
				update.Name = &name
				changed = true
			}
			if cmd.Flags().Changed("description") {
				update.Description = &description
				changed = true
			}
			if cmd.Flags().Changed("topics") {
				update.Topics = &topics
				changed = true
			}
			if cmd.Flags().Changed("url") {
				update.URL = &url
				changed = true
			}
			if !changed {
				return errors.New("nothing to update: pass at least one of --name, --description, --topics, --url")
			}

			board, err := app.library.Update(cmd.Context(), update)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated board %s (%s)\n", board.ID, board.Name)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New board name")
	cmd.Flags().StringVar(&description, "description", "", "New board description")
	cmd.Flags().StringSliceVar(&topics, "topics", nil, "New topics (comma separated)")
	cmd.Flags().StringVar(&url, "url", "", "New board URL")

	return cmd
}

func newBoardStatsCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show library figures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := app.library.Stats(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, stats)
			}
			rendered, err := boardsrender.RenderStats(stats, renderOptions(app))
			return writeRendered(cmd, rendered, err)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
