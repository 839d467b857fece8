package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "la",
		Short:         "Life assistant (la): backend loop, chat frontend and memory tools",
		Long:          "la runs a personal assistant as two cooperating loops. The backend processes requests, task sequences and queued work; the chat frontend talks to it through JSON files under the data directory.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if verbose {
			app.level.SetLevel(zap.DebugLevel)
		}
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(app),
		newBackendCmd(app),
		newChatCmd(app),
		newSendCmd(app),
		newStatusCmd(app),
		newSequenceCmd(app),
		newQueueCmd(app),
		newMemoryCmd(app),
	)

	return rootCmd
}
