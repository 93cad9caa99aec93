package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/deriv/pkg/deriv"
	"github.com/cognicore/deriv/pkg/deriv/logic"
	"github.com/cognicore/deriv/pkg/deriv/search"
)

// decoyRules reach F or G through a disjunction; the H/I and J/K chains go nowhere.
var decoyRules = []*logic.Rule{
	logic.MustRule("", []logic.Atom{"A"}, logic.Single("B")),
	logic.MustRule("", []logic.Atom{"B"}, logic.Single("C")),
	logic.MustRule("", []logic.Atom{"C"}, logic.Disjoint("D", "E")),
	logic.MustRule("", []logic.Atom{"D"}, logic.Single("F")),
	logic.MustRule("", []logic.Atom{"E"}, logic.Single("G")),
	logic.MustRule("", []logic.Atom{"A"}, logic.Single("H")),
	logic.MustRule("", []logic.Atom{"H"}, logic.Single("I")),
	logic.MustRule("", []logic.Atom{"A"}, logic.Single("J")),
	logic.MustRule("", []logic.Atom{"J"}, logic.Single("K")),
}

// deadEndRules offer a short branch D that never reaches F and a long branch E that does.
var deadEndRules = []*logic.Rule{
	logic.MustRule("", []logic.Atom{"C"}, logic.Disjoint("D", "E")),
	logic.MustRule("", []logic.Atom{"D"}, logic.Single("J")),
	logic.MustRule("", []logic.Atom{"J"}, logic.Single("K")),
	logic.MustRule("", []logic.Atom{"K"}, logic.Single("L")),
	logic.MustRule("", []logic.Atom{"E"}, logic.Single("M")),
	logic.MustRule("", []logic.Atom{"M"}, logic.Single("N")),
	logic.MustRule("", []logic.Atom{"N"}, logic.Single("O")),
	logic.MustRule("", []logic.Atom{"O"}, logic.Single("P")),
	logic.MustRule("", []logic.Atom{"P"}, logic.Single("Q")),
	logic.MustRule("", []logic.Atom{"Q"}, logic.Single("R")),
	logic.MustRule("", []logic.Atom{"R"}, logic.Single("S")),
	logic.MustRule("", []logic.Atom{"S"}, logic.Single("T")),
	logic.MustRule("", []logic.Atom{"T"}, logic.Single("F")),
}

func demoProblems(budget int) []deriv.Problem {
	return []deriv.Problem{
		{
			Name:       "decoys",
			Initial:    logic.NewState("A"),
			Goals:      logic.NewGoalSet("F", "G"),
			Rules:      decoyRules,
			StepBudget: budget,
		},
		{
			Name:       "dead-end",
			Initial:    logic.NewState("C"),
			Goals:      logic.NewGoalSet("F"),
			Rules:      deadEndRules,
			StepBudget: budget,
		},
	}
}

func newDemoCmd(a *app) *cobra.Command {
	var budget int
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Prove the two built-in reference problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.newContext()
			defer cancel()

			prover := deriv.New(deriv.Options{Logger: a.logger, Metrics: a.metrics})
			proofs, err := prover.ProveAll(ctx, demoProblems(budget))
			if err != nil {
				return err
			}
			for _, proof := range proofs {
				fmt.Fprintf(cmd.OutOrStdout(), "=== %s ===\n", proof.Problem)
				fmt.Fprint(cmd.OutOrStdout(), proof.Explain())
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&budget, "step-budget", search.SuggestedStepBudget, "Maximum expansions per problem")
	return cmd
}
