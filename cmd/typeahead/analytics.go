package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/robottwo/typeahead/internal/analytics"
	"github.com/robottwo/typeahead/internal/core"
	"github.com/robottwo/typeahead/internal/styles"
)

var (
	analyticsClear   bool
	analyticsDelete  uint
	analyticsSummary bool
	analyticsDB      string
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics [n]",
	Short: "Show or manage accepted suggestions",
	Long: `Display the last n accepted suggestions (20 by default) in table format.

Every time a suggestion chip is used the text before and after is recorded,
together with the slot it came from.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalytics,
}

func init() {
	analyticsCmd.Flags().BoolVarP(&analyticsClear, "clear", "c", false, "clear all analytics data")
	analyticsCmd.Flags().UintVarP(&analyticsDelete, "delete", "d", 0, "delete analytics entry by ID")
	analyticsCmd.Flags().BoolVarP(&analyticsSummary, "count", "n", false, "display totals per suggestion slot")
	analyticsCmd.Flags().StringVar(&analyticsDB, "db", "", "analytics database (default in the data directory)")
}

func runAnalytics(cmd *cobra.Command, args []string) error {
	dbPath := analyticsDB
	if dbPath == "" {
		dbPath = core.AnalyticsFile()
	}

	analyticsManager, err := analytics.NewAnalyticsManager(dbPath, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = analyticsManager.Close()
	}()

	out := cmd.OutOrStdout()

	switch {
	case analyticsClear:
		if err := analyticsManager.ResetAnalytics(); err != nil {
			return err
		}
		fmt.Fprintln(out, styles.SUCCESS("Analytics cleared."))
		return nil

	case cmd.Flags().Changed("delete"):
		if err := analyticsManager.DeleteEntry(analyticsDelete); err != nil {
			return fmt.Errorf("failed to delete analytics entry %d: %w", analyticsDelete, err)
		}
		fmt.Fprintln(out, styles.SUCCESS(fmt.Sprintf("Deleted entry %d.", analyticsDelete)))
		return nil

	case analyticsSummary:
		total, err := analyticsManager.GetTotalCount()
		if err != nil {
			return fmt.Errorf("failed to get analytics count: %w", err)
		}
		counts, err := analyticsManager.CountBySlot()
		if err != nil {
			return err
		}
		return analytics.PrintSummary(out, total, counts)
	}

	limit := analytics.DefaultLimit
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid entry count: %s", args[0])
		}
		limit = n
	}

	entries, err := analyticsManager.GetRecentEntries(limit)
	if err != nil {
		return err
	}
	return analytics.PrintEntries(out, entries, time.Now())
}
