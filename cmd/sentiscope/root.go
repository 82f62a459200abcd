package main

import (
	"github.com/pscheid92/sentiscope/internal/platform/version"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sentiscope",
		Short:         "Lexicon-based sentiment analysis",
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCmd())
	return root
}
