package main

import (
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFile string
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "isyarat",
		Short:        "Text to sign-language presentation service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Optional dotenv file loaded before the environment")

	cmd.AddCommand(
		newServeCmd(opts),
		newConvertCmd(opts),
		newGestureCmd(opts),
		newPlayCmd(opts),
	)
	return cmd
}
