package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

type rootFlags struct {
	configPath string
	dev        bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "app",
		Short:         "Telegram bot that estimates calories and macronutrients from food photos",
		Version:       fmt.Sprintf("%s (commit %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to YAML config file (optional, env overrides it)")
	root.PersistentFlags().BoolVar(&flags.dev, "dev", false, "developer mode: console logs, unredacted secrets")

	root.AddCommand(serveCmd(flags))
	root.AddCommand(webhookCmd(flags))
	return root
}
