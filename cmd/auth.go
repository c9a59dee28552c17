package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	boardsrender "github.com/bnema/boards-cli/internal/adapters/render/boards"
)

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the board sign-in session",
	}

	cmd.AddCommand(
		newAuthLoginCmd(app),
		newAuthStatusCmd(app),
		newAuthLogoutCmd(app),
	)

	return cmd
}

func newAuthLoginCmd(app *app) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in through a visible browser window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Complete the sign-in in the browser window...")

			state, err := app.auth.Login(ctx)
			if err != nil {
				return err
			}

			if state.AccountLabel != "" {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", state.AccountLabel)
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Signed in")
			return err
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up when sign-in does not finish in time")

	return cmd
}

func newAuthStatusCmd(app *app) *cobra.Command {
	var probe bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored session state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := app.auth.Status(cmd.Context(), probe)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, state)
			}
			rendered, err := boardsrender.RenderAuthStatus(state, renderOptions(app))
			return writeRendered(cmd, rendered, err)
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "Verify the stored session against the remote")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newAuthLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.auth.Logout(cmd.Context()); err != nil {
				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return err
		},
	}
}
