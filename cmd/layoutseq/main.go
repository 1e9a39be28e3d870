// Command layoutseq runs the segmentation pipeline over JSON documents.
//
//	layoutseq run --config layoutseq.yaml --save doc1.json doc2.json
//	layoutseq run --format csv --out exports/ doc.json
//	layoutseq config print --config layoutseq.yaml
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsawler/layoutseq/internal/logger"
)

func main() {
	if err := RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// RootCmd builds the command tree
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "layoutseq",
		Short:         "Order, de-duplicate and chunk OCR segments",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().String("config", "", "path to the YAML configuration")
	root.PersistentFlags().String("log-level", string(logger.InfoLevel), "log level: debug, info, warn or error")
	root.PersistentFlags().Bool("log-json", false, "log as JSON")

	root.AddCommand(
		RunCmd(),
		ConfigCmd(),
	)
	return root
}

// newLogger builds the logger from the persistent flags
func newLogger(cmd *cobra.Command) (logger.Logger, error) {
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	asJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-json flag: %w", err)
	}

	switch logger.LogLevel(level) {
	case logger.DebugLevel, logger.InfoLevel, logger.WarnLevel, logger.ErrorLevel:
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	cfg := logger.DefaultConfig()
	cfg.Level = logger.LogLevel(level)
	cfg.JSON = asJSON
	cfg.Output = cmd.ErrOrStderr()
	return logger.NewLogger(cfg), nil
}
