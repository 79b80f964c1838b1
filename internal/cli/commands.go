package cli

import (
	"fmt"
	"strings"

	"food-sustainability/internal/core/recommend"

	"github.com/spf13/cobra"
)

func (a *app) impactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "impact <food>",
		Short: "Show environmental impact metrics for a food.",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.withEngine(func(cmd *cobra.Command, args []string) error {
			rec, err := a.engine.Service.GetImpact(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return a.output(cmd, rec, func() error { return printImpact(cmd.OutOrStdout(), rec) })
		}),
	}
}

func (a *app) barcodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "barcode <code>",
		Short: "Look up a packaged product by barcode on Open Food Facts.",
		Args:  cobra.ExactArgs(1),
		RunE: a.withEngine(func(cmd *cobra.Command, args []string) error {
			rec, err := a.engine.Service.GetImpactByBarcode(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.output(cmd, rec, func() error { return printImpact(cmd.OutOrStdout(), rec) })
		}),
	}
}

func (a *app) recommendCmd() *cobra.Command {
	var (
		limit       int
		includeInfo bool
		weights     recommend.Preferences
	)

	cmd := &cobra.Command{
		Use:   "recommend <food>",
		Short: "Suggest more sustainable alternatives to a food.",
		Long: `Suggest more sustainable alternatives to a food.

Weights default to carbon 0.3, water 0.2, energy 0.1, waste 0.1 and
deforestation 0.3. Any weight flag given replaces that default; weights are
normalized before scoring.`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.withEngine(func(cmd *cobra.Command, args []string) error {
			opts := recommend.Options{
				Limit:           limit,
				AllowGenerative: !a.opts.NoAI,
				IncludeFoodInfo: includeInfo,
			}
			if prefs, ok := weightsFromFlags(cmd, weights); ok {
				opts.Preferences = &prefs
			}

			res, err := a.engine.Service.GetRecommendations(cmd.Context(), strings.Join(args, " "), opts)
			if err != nil {
				return err
			}
			return a.output(cmd, res, func() error { return printRecommendations(cmd.OutOrStdout(), res) })
		}),
	}

	defaults := recommend.DefaultPreferences()
	f := cmd.Flags()
	f.IntVarP(&limit, "limit", "n", 0, "number of alternatives (default from config)")
	f.BoolVar(&includeInfo, "info", false, "include food description and nutrition")
	f.Float64Var(&weights.Carbon, "carbon", defaults.Carbon, "carbon footprint weight")
	f.Float64Var(&weights.Water, "water", defaults.Water, "water usage weight")
	f.Float64Var(&weights.Energy, "energy", defaults.Energy, "energy use weight")
	f.Float64Var(&weights.Waste, "waste", defaults.Waste, "waste weight")
	f.Float64Var(&weights.Deforestation, "deforestation", defaults.Deforestation, "deforestation weight")
	return cmd
}

// weightsFromFlags 只有明確指定權重旗標時才回傳自訂權重
func weightsFromFlags(cmd *cobra.Command, weights recommend.Preferences) (recommend.Preferences, bool) {
	for _, name := range []string{"carbon", "water", "energy", "waste", "deforestation"} {
		if cmd.Flags().Changed(name) {
			return weights, true
		}
	}
	return recommend.Preferences{}, false
}

func (a *app) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search known food names.",
		Args:  cobra.ExactArgs(1),
		RunE: a.withEngine(func(cmd *cobra.Command, args []string) error {
			results := a.engine.Service.Search(args[0])
			return a.output(cmd, results, func() error {
				out := cmd.OutOrStdout()
				if len(results) == 0 {
					fmt.Fprintf(out, "No foods match %q\n", args[0])
					return nil
				}
				for _, name := range results {
					fmt.Fprintln(out, name)
				}
				return nil
			})
		}),
	}
}

func (a *app) foodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "foods",
		Short: "List foods in the curated table.",
		Args:  cobra.NoArgs,
		RunE: a.withEngine(func(cmd *cobra.Command, _ []string) error {
			foods := a.engine.Service.Foods()
			return a.output(cmd, foods, func() error {
				out := cmd.OutOrStdout()
				for _, name := range foods {
					fmt.Fprintf(out, "%-12s %s\n", a.engine.Service.Categorize(name), name)
				}
				return nil
			})
		}),
	}
}

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <food>",
		Short: "Show description and nutrition for a food.",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.withEngine(func(cmd *cobra.Command, args []string) error {
			info, err := a.engine.Service.GetFoodInfo(cmd.Context(), strings.Join(args, " "), nil)
			if err != nil {
				return err
			}
			return a.output(cmd, info, func() error { return printFoodInfo(cmd.OutOrStdout(), info) })
		}),
	}
}

func (a *app) compareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <food> <food>",
		Short: "Compare the environmental impact of two foods.",
		Args:  cobra.ExactArgs(2),
		RunE: a.withEngine(func(cmd *cobra.Command, args []string) error {
			cmp, err := a.engine.Service.Compare(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.output(cmd, cmp, func() error { return printComparison(cmd.OutOrStdout(), cmp) })
		}),
	}
}
