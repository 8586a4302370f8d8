// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

// Command platewisectl trains and inspects Platewise models offline.
//
// It opens the DuckDB file directly, so the server must be stopped first:
// DuckDB allows a single read-write process per file.
//
//	platewisectl train
//	platewisectl recommend --user alice --n 5
//	platewisectl inspect --json
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "platewisectl",
		Short: "Offline model management for Platewise",
		Long: `platewisectl trains, queries and inspects the ALS recommendation model
against a stopped server's DuckDB file and model directory.

Configuration is read like the server's (config.yaml and environment);
--db and --model-dir override it.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("db", "", "DuckDB file (overrides DUCKDB_PATH)")
	rootCmd.PersistentFlags().String("model-dir", "", "Model directory (overrides RECOMMEND_MODEL_DIR)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newTrainCmd(),
		newRecommendCmd(),
		newInspectCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd, map[string]string{"version": version})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "platewisectl version %s\n", version)
			return nil
		},
	}
}
