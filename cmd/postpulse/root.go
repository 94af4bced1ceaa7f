package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "postpulse",
		Short:         "Recommend when to post",
		Long:          "postpulse ranks weekly posting windows from historical engagement, adjusted by current topic sentiment.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newRecommendCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
