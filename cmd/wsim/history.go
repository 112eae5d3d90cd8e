package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/wsim/internal/config"
	"github.com/verte-zerg/wsim/internal/stats"
	"github.com/verte-zerg/wsim/internal/store"
)

const defaultTrendHeight = 10

var (
	historyLast int
	historyPlot bool
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored sessions",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N sessions")
	cmd.Flags().BoolVar(&historyPlot, "plot", false, "plot error rates across sessions")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sessions, err := st.ListSessions(ctx, historyLast)
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}
	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.ID)
	}
	byID, err := st.ListMetrics(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load metrics: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := stats.RenderHistory(out, sessions, byID); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !historyPlot || len(sessions) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	paint := stats.ANSIPaint(stats.IsTerminal())
	if err := stats.RenderTrend(out, sessions, byID, stats.TerminalWidth(), defaultTrendHeight, paint); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
