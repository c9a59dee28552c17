package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/boards-cli/internal/application"
	"github.com/bnema/boards-cli/internal/domain"
)

// materialPrompt wraps raw material in an instruction the board side
// understands; the exchange itself is an ordinary ask.
const materialPrompt = "Add the following material to this board: %s"

func newMaterialCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "material",
		Short: "Push material into a board",
	}

	cmd.AddCommand(newMaterialAddCmd(app))

	return cmd
}

func newMaterialAddCmd(app *app) *cobra.Command {
	var filePath string
	var boardID string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "add [<text>]",
		Short: "Send material through the question pipeline",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer app.driver.Shutdown()

			text, err := materialText(args, filePath)
			if err != nil {
				return err
			}

			ask := application.AskCommand{
				BoardID:  domain.BoardID(boardID),
				Question: fmt.Sprintf(materialPrompt, text),
				Timeout:  timeout,
			}

			var result application.AskResult
			run := func(ctx context.Context) error {
				var err error
				result, err = app.executor.Ask(ctx, ask)
				return err
			}

			if err := runAskSpinner(cmd.Context(), cmd.ErrOrStderr(), "Sending material to the board...", run); err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(result.Answer))
			return err
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "Read the material from a file")
	cmd.Flags().StringVar(&boardID, "board", "", "Board ID (default: active board)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Answer timeout (default: query.timeout)")

	return cmd
}

func materialText(args []string, filePath string) (string, error) {
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("read material file: %w", err)
		}

		text := strings.TrimSpace(string(data))
		if text == "" {
			return "", fmt.Errorf("material file %s is empty", filePath)
		}
		return text, nil
	}

	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}

	return "", errors.New("provide material text or --file")
}
