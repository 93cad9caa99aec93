package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/deriv/internal/llm"
	"github.com/cognicore/deriv/pkg/deriv"
	"github.com/cognicore/deriv/pkg/deriv/config"
	"github.com/cognicore/deriv/pkg/deriv/export"
	"github.com/cognicore/deriv/pkg/deriv/store"
	"github.com/cognicore/deriv/pkg/deriv/store/sqlite"
)

type proveFlags struct {
	rulesPath  string
	stepBudget int
	dbPath     string
	oracle     bool
	exportPath string
	cacheSize  int
}

func newProveCmd(a *app) *cobra.Command {
	var f proveFlags
	cmd := &cobra.Command{
		Use:   "prove FILE",
		Short: "Search for a derivation of the goals in a problem file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.newContext()
			defer cancel()

			loader := config.Loader{
				ProblemPath: args[0],
				RulesPath:   f.rulesPath,
				StepBudget:  f.stepBudget,
			}
			components, err := loader.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			prover, cleanup, err := buildProver(ctx, a, components, f)
			if err != nil {
				return err
			}
			defer cleanup()

			proof, err := prover.Prove(ctx, deriv.ProblemFromConfig(components))
			if proof != nil {
				fmt.Fprint(cmd.OutOrStdout(), proof.Explain())
				if f.dbPath != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Run %s recorded.\n", proof.ID)
				}
			}
			if err != nil {
				return err
			}

			if f.exportPath != "" && proof.Succeeded() {
				exporter := export.ProofExporter{Writer: export.FileWriter{Path: f.exportPath}}
				if err := exporter.Export(ctx, components.Name, proof.Result); err != nil {
					return fmt.Errorf("export proof: %w", err)
				}
				a.logger.Info("proof exported", zap.String("path", f.exportPath))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&f.rulesPath, "rules", "", "Rules file in text format (replaces rules_file)")
	cmd.Flags().IntVar(&f.stepBudget, "step-budget", 0, "Maximum expansions (overrides step_budget)")
	cmd.Flags().StringVar(&f.dbPath, "db", "", "SQLite database for the run log (optional)")
	cmd.Flags().BoolVar(&f.oracle, "oracle", false, "Consult the language-model oracle configured in the problem file")
	cmd.Flags().StringVar(&f.exportPath, "export", "", "Write the proof as replayable rules to this file")
	cmd.Flags().IntVar(&f.cacheSize, "cache-size", 0, "Estimate cache entries (overrides oracle.cache_size)")
	return cmd
}

// buildProver wires the run store and oracle selected by flags and config.
func buildProver(ctx context.Context, a *app, components *config.Components, f proveFlags) (*deriv.Prover, func(), error) {
	opts := deriv.Options{
		Logger:    a.logger,
		Metrics:   a.metrics,
		CacheSize: components.Oracle.CacheSize,
	}
	if f.cacheSize > 0 {
		opts.CacheSize = f.cacheSize
	}

	if f.oracle || components.Oracle.Enabled {
		oc := components.Oracle
		if oc.Model == "" {
			return nil, nil, fmt.Errorf("oracle requested but oracle.model is not set")
		}
		opts.Oracle = &llm.Client{
			BaseURL: oc.BaseURL,
			APIKey:  oc.APIKey(),
			Model:   oc.Model,
		}
		opts.OracleTimeout = oc.Timeout
		opts.OracleRate = oc.RatePerSecond
	}

	var st store.Store
	if f.dbPath != "" {
		var err error
		st, err = sqlite.OpenSQLite(ctx, f.dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		opts.Store = st
	}

	prover := deriv.New(opts)
	cleanup := func() {
		prover.Close()
	}
	return prover, cleanup, nil
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}
