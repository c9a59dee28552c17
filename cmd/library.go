package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	boardsrender "github.com/bnema/boards-cli/internal/adapters/render/boards"
	"github.com/bnema/boards-cli/internal/application"
)

func newLibraryCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Move the board library between machines",
	}

	cmd.AddCommand(
		newLibraryExportCmd(app),
		newLibraryImportCmd(app),
	)

	return cmd
}

func newLibraryExportCmd(app *app) *cobra.Command {
	var includeAuth bool

	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Write a portable library snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.transfer.Export(cmd.Context(), application.ExportCommand{
				Path:        args[0],
				IncludeAuth: includeAuth,
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d boards to %s\n", result.BoardCount, result.Path)
			return err
		},
	}

	cmd.Flags().BoolVar(&includeAuth, "include-auth", false, "Include the auth state record (never secrets)")

	return cmd
}

func newLibraryImportCmd(app *app) *cobra.Command {
	var mode string
	var dryRun bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Apply a library snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := app.transfer.Import(cmd.Context(), application.ImportCommand{
				Path:   args[0],
				Mode:   application.ImportMode(mode),
				DryRun: dryRun,
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, plan)
			}
			rendered, err := boardsrender.RenderImportPlan(plan)
			return writeRendered(cmd, rendered, err)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(application.ImportModeMerge), "Import mode (merge|replace)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the plan without applying it")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
