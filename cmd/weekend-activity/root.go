package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var configPath string

// Color definitions
var (
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	boldColor    = color.New(color.Bold)
)

var rootCmd = &cobra.Command{
	Use:   "weekend-activity",
	Short: "Track GitHub activity happening during weekends.",
	Long: `weekend-activity polls a configured set of GitHub repositories for
commit and pull-request activity during weekend hours, optionally
summarizes the changes with a language model, and renders a digest that
can be posted to Slack.`,
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to config file")
}
