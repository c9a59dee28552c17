package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bd",
		Short:         "Board query CLI (bd): keep a board library and ask it questions",
		Long:          "bd keeps a local library of research boards, runs browser-backed question/answer exchanges against them, and manages the sign-in session those exchanges depend on.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newAskCmd(app),
		newBoardCmd(app),
		newAuthCmd(app),
		newLibraryCmd(app),
		newMaterialCmd(app),
	)

	return rootCmd
}
