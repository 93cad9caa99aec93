package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/deriv/pkg/deriv/config"
	"github.com/cognicore/deriv/pkg/deriv/maintenance"
	"github.com/cognicore/deriv/pkg/deriv/store/sqlite"
)

func newRunsCmd(a *app) *cobra.Command {
	var (
		dbPath string
		limit  int
		id     string
		verify string
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return fmt.Errorf("--db required")
			}
			ctx, cancel := a.newContext()
			defer cancel()

			st, err := sqlite.OpenSQLite(ctx, dbPath)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			out := cmd.OutOrStdout()
			if verify != "" {
				p, err := config.LoadProblem(verify)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				rules, err := p.BuildRules()
				if err != nil {
					return fmt.Errorf("build rules: %w", err)
				}
				v := maintenance.Verifier{
					Rules:  rules,
					Source: &maintenance.StoreSource{Store: st, Limit: limit},
					Store:  st,
				}
				res, err := v.Verify(ctx)
				if err != nil {
					return err
				}
				a.logger.Info("verified runs",
					zap.Int("processed", res.Processed),
					zap.Int("stale", res.Stale),
					zap.Int("errors", res.Errors))
				fmt.Fprintf(out, "Verified %d runs: %d valid, %d stale, %d skipped, %d errors.\n",
					res.Processed, res.Valid, res.Stale, res.Skipped, res.Errors)
				return nil
			}

			if id != "" {
				run, err := st.GetRun(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s %s %s depth=%d expansions=%d/%d %s\n",
					run.ID, run.Problem, run.Status, run.Depth, run.Expansions, run.StepBudget, formatDuration(run.Duration))
				for _, step := range run.Steps {
					fmt.Fprintf(out, "  %s  (took %s)\n", step.Rule, step.Added)
				}
				fmt.Fprintf(out, "  final {%s}\n", strings.Join(run.Final, ", "))
				return nil
			}

			runs, err := st.ListRuns(ctx, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			for _, run := range runs {
				fmt.Fprintf(out, "%s %-12s %-9s depth=%d expansions=%d/%d %s\n",
					run.ID, run.Problem, run.Status, run.Depth, run.Expansions, run.StepBudget, formatDuration(run.Duration))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (required)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to show")
	cmd.Flags().StringVar(&id, "id", "", "Show a single run with its steps")
	cmd.Flags().StringVar(&verify, "verify", "", "Replay recorded proofs against the rules of this problem file, marking broken ones stale")
	return cmd
}
