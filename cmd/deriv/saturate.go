package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/deriv/pkg/deriv"
	"github.com/cognicore/deriv/pkg/deriv/config"
)

func newSaturateCmd(a *app) *cobra.Command {
	var (
		rulesPath string
		maxDepth  int
	)
	cmd := &cobra.Command{
		Use:   "saturate FILE",
		Short: "Forward-chain the deterministic rules of a problem file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.newContext()
			defer cancel()

			p, err := config.LoadProblem(args[0])
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if rulesPath != "" {
				p.RulesFile = rulesPath
			}
			rules, err := p.BuildRules()
			if err != nil {
				return fmt.Errorf("build rules: %w", err)
			}

			prob := deriv.Problem{Name: p.Name, Initial: p.InitialState(), Rules: rules}

			prover := deriv.New(deriv.Options{Logger: a.logger})
			facts, rounds, err := prover.Saturate(ctx, prob, maxDepth)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saturated after %d rounds.\n", rounds)
			fmt.Fprintf(cmd.OutOrStdout(), "Facts: %s\n", facts)
			return nil
		},
	}
	cmd.Flags().StringVar(&rulesPath, "rules", "", "Rules file in text format (replaces rules_file)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 10, "Maximum rounds")
	return cmd
}
