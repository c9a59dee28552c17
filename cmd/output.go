package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	boardsrender "github.com/bnema/boards-cli/internal/adapters/render/boards"
)

func writeJSON(cmd *cobra.Command, value any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func writeRendered(cmd *cobra.Command, rendered string, err error) error {
	if err != nil {
		return fmt.Errorf("render output: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

func renderOptions(app *app) boardsrender.RenderOptions {
	return boardsrender.RenderOptions{Now: app.now()}
}
