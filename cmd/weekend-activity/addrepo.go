package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Gajesh2007/weekend-activity/internal/core"
)

var addRepoCmd = &cobra.Command{
	Use:   "add-repo owner/name",
	Short: "Add a repository to the tracked set",
	Args:  cobra.ExactArgs(1),
	RunE:  runAddRepo,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(addRepoCmd)
}

func runAddRepo(_ *cobra.Command, args []string) error {
	ref, err := core.ParseRepoRef(args[0])
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	if doc == nil {
		doc = make(map[string]any)
	}

	repos, _ := doc["repositories"].([]any)
	for _, entry := range repos {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if m["owner"] == ref.Owner && m["repo"] == ref.Name {
			warnColor.Println("Repository already being tracked")
			return nil
		}
	}

	repos = append(repos, map[string]any{"owner": ref.Owner, "repo": ref.Name})
	doc["repositories"] = repos

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(configPath, out, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", configPath, err)
	}

	successColor.Printf("Added %s to tracked repositories\n", ref.FullName())
	return nil
}
