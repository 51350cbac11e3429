package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/syncmv/pkg/config"
)

var (
	// Flags
	configFile     string
	sourceRoot     string
	destRoot       string
	maxFiles       string
	pollSeconds    int
	timeoutSeconds int
	stablePolls    int
	donePatterns   []string
	logFile        string
	noPrune        bool
	pruneWholeTree bool
	ignorePatterns []string
	statusCommand  string
	fieldNameCmd   string
	debug          bool
)

// newRootCmd creates the syncmv root command
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "syncmv",
		Short: "Migrate files through a cloud-synced destination tree",
		Long: `syncmv moves files one at a time from a source tree into a destination
tree watched by an asynchronous cloud-sync agent. Each source file is
deleted only after the destination copy is independently confirmed as
fully synced, and directories emptied by the move are pruned.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd.Context(), cmd)
			if err != nil {
				return errors.Errorf("building config: %w", err)
			}
			return run(cmd.Context(), cfg)
		},
	}

	addRootFlags(cmd)
	return cmd
}

// addRootFlags adds flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path (.yaml or .hcl)")
	cmd.Flags().StringVarP(&sourceRoot, "source", "s", "", "source root directory")
	cmd.Flags().StringVarP(&destRoot, "destination", "t", "", "destination root directory")
	cmd.Flags().StringVarP(&maxFiles, "max-files", "n", "all", "files to attempt this run: a positive integer or \"all\"")
	cmd.Flags().IntVar(&pollSeconds, "poll-seconds", 0, "seconds between sync status polls")
	cmd.Flags().IntVar(&timeoutSeconds, "timeout-seconds", 0, "per-file confirmation timeout in seconds")
	cmd.Flags().IntVar(&stablePolls, "stable-polls", 0, "consecutive done observations required")
	cmd.Flags().StringSliceVar(&donePatterns, "done-pattern", nil, "status variants that count as fully synced")
	cmd.Flags().StringVarP(&logFile, "log-file", "l", "", "run log file path")
	cmd.Flags().BoolVar(&noPrune, "no-prune", false, "keep directories emptied by the move")
	cmd.Flags().BoolVar(&pruneWholeTree, "prune-whole-tree", false, "prune the whole source tree instead of each file's parent")
	cmd.Flags().StringSliceVar(&ignorePatterns, "ignore", nil, "doublestar patterns to skip")
	cmd.Flags().StringVar(&statusCommand, "status-command", "", "shell command answering the sync status of an item")
	cmd.Flags().StringVar(&fieldNameCmd, "field-name-command", "", "shell command answering a metadata field name")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// buildConfig loads the optional config file and overlays flag values
func buildConfig(ctx context.Context, cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{}

	if configFile != "" {
		loaded, err := config.Load(ctx, configFile)
		if err != nil {
			return nil, errors.Errorf("loading config file: %w", err)
		}
		cfg = loaded
	}

	if sourceRoot != "" {
		cfg.Source = sourceRoot
	}
	if destRoot != "" {
		cfg.Destination = destRoot
	}
	if cmd.Flags().Changed("max-files") || cfg.MaxFiles == 0 {
		n, err := parseMaxFiles(maxFiles)
		if err != nil {
			return nil, err
		}
		cfg.MaxFiles = n
	}
	if pollSeconds != 0 {
		cfg.PollSeconds = pollSeconds
	}
	if timeoutSeconds != 0 {
		cfg.TimeoutSeconds = timeoutSeconds
	}
	if stablePolls != 0 {
		cfg.StablePolls = stablePolls
	}
	if len(donePatterns) > 0 {
		cfg.DonePatterns = donePatterns
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if noPrune {
		cfg.NoPrune = true
	}
	if pruneWholeTree {
		cfg.PruneWholeTree = true
	}
	if len(ignorePatterns) > 0 {
		cfg.IgnorePatterns = append(cfg.IgnorePatterns, ignorePatterns...)
	}
	if statusCommand != "" {
		cfg.StatusCommand = statusCommand
	}
	if fieldNameCmd != "" {
		cfg.FieldNameCommand = fieldNameCmd
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// parseMaxFiles accepts a positive integer or the "all" sentinel (0)
func parseMaxFiles(value string) (int, error) {
	if strings.EqualFold(strings.TrimSpace(value), "all") {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, errors.Errorf("max-files must be a positive integer or \"all\", got %q", value)
	}
	return n, nil
}
