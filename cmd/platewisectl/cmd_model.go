// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tomtom215/platewise/internal/recommend"
)

func newTrainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Run one training pass and write the model directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.coordinator.TrainModel(cmd.Context()); err != nil {
				if errors.Is(err, recommend.ErrNoInteractions) {
					return errors.New("no interactions recorded yet; nothing to train")
				}
				return fmt.Errorf("training failed: %w", err)
			}

			st := e.coordinator.Status()
			if st.LastPersistError != "" {
				return fmt.Errorf("model trained but not saved: %s", st.LastPersistError)
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(cmd, st)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Trained model %s\n", st.ModelID)
			fmt.Fprintf(out, "  users: %d  items: %d\n", st.Users, st.Items)
			if st.LastReport != nil {
				fmt.Fprintf(out, "  iterations: %d  rmse: %.4f  failed rows: %d\n",
					st.LastReport.Iterations, st.LastReport.RMSE, st.LastReport.Failures())
			}
			fmt.Fprintf(out, "  saved to: %s\n", e.models.Dir())
			return nil
		},
	}
}

func newRecommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Print ML recommendations for a user",
		Long: `Loads the persisted model (training one if it is missing or stale)
and prints the top-N in-stock items for the user. Users below the
order threshold get an empty list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetString("user")
			n, _ := cmd.Flags().GetInt("n")
			if userID == "" {
				return errors.New("--user is required")
			}
			if n <= 0 {
				return errors.New("--n must be positive")
			}
			prefs, err := preferencesFromFlags(cmd)
			if err != nil {
				return err
			}

			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.coordinator.LoadPersisted(cmd.Context()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}

			items := e.coordinator.RecommendItems(cmd.Context(), userID, n, prefs)

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(cmd, map[string]interface{}{
					"user_id": userID,
					"items":   items,
				})
			}
			if len(items) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No ML recommendations for %s\n", userID)
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RANK\tITEM\tNAME\tSCORE")
			for i, it := range items {
				fmt.Fprintf(tw, "%d\t%d\t%s\t%.4f\n", i+1, it.ID, it.Name, it.Score)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String("user", "", "User id")
	cmd.Flags().Int("n", 5, "Number of items")
	cmd.Flags().String("diet", "", "Dietary restriction: vegetarian or vegan")
	cmd.Flags().StringSlice("avoid", nil, "Allergens to avoid (repeatable or comma-separated)")
	cmd.Flags().Float64("budget-max", 0, "Maximum item price (0 for no limit)")
	return cmd
}

// preferencesFromFlags builds the filters of the recommend command.
func preferencesFromFlags(cmd *cobra.Command) (*recommend.Preferences, error) {
	diet, _ := cmd.Flags().GetString("diet")
	avoid, _ := cmd.Flags().GetStringSlice("avoid")
	budgetMax, _ := cmd.Flags().GetFloat64("budget-max")

	prefs := &recommend.Preferences{Allergens: avoid}
	switch d := recommend.Diet(strings.ToLower(diet)); d {
	case recommend.DietAny, recommend.DietVegetarian, recommend.DietVegan:
		prefs.Diet = d
	default:
		return nil, fmt.Errorf("--diet must be vegetarian or vegan, got %q", diet)
	}
	if budgetMax < 0 {
		return nil, errors.New("--budget-max must not be negative")
	}
	if budgetMax > 0 {
		prefs.BudgetMax = &budgetMax
	}
	return prefs, nil
}

// inspectReport is the output of inspect.
type inspectReport struct {
	ModelDir   string `json:"model_dir"`
	Exists     bool   `json:"exists"`
	ModelID    string `json:"model_id,omitempty"`
	TrainedAt  string `json:"trained_at,omitempty"`
	Users      int    `json:"users"`
	Items      int    `json:"items"`
	SizeBytes  int64  `json:"size_bytes"`
	LiveUsers  int    `json:"live_users"`
	Stale      bool   `json:"stale"`
	InspectErr string `json:"error,omitempty"`
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Show the persisted model and whether it is stale",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			report := inspectReport{
				ModelDir: e.models.Dir(),
				Exists:   e.models.Exists(recommend.UserFactorsBlob),
			}

			live, err := e.db.ListDistinctUserIDs(cmd.Context())
			if err != nil {
				return fmt.Errorf("list users: %w", err)
			}
			report.LiveUsers = len(live)

			if report.Exists {
				model, err := e.models.Load(cmd.Context())
				if err != nil {
					report.InspectErr = err.Error()
				} else {
					report.ModelID = model.ID
					report.TrainedAt = model.TrainedAt.Format("2006-01-02 15:04:05 MST")
					report.Users = model.Mapping.NumUsers()
					report.Items = model.Mapping.NumItems()
					report.Stale = recommend.IsStale(model.Mapping, live)
				}
				if meta, err := e.models.Inspect(cmd.Context()); err == nil {
					report.SizeBytes = meta.SizeBytes
				}
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Model directory: %s\n", report.ModelDir)
			if !report.Exists {
				fmt.Fprintln(out, "No persisted model")
				fmt.Fprintf(out, "Users in store: %d\n", report.LiveUsers)
				return nil
			}
			if report.InspectErr != "" {
				fmt.Fprintf(out, "Model unreadable: %s\n", report.InspectErr)
				return nil
			}
			fmt.Fprintf(out, "Model:   %s (trained %s)\n", report.ModelID, report.TrainedAt)
			fmt.Fprintf(out, "Users:   %d in model, %d in store\n", report.Users, report.LiveUsers)
			fmt.Fprintf(out, "Items:   %d\n", report.Items)
			fmt.Fprintf(out, "Size:    %d bytes\n", report.SizeBytes)
			fmt.Fprintf(out, "Stale:   %v\n", report.Stale)
			return nil
		},
	}
}
