package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"food-sustainability/internal/core/impact"
	"food-sustainability/internal/core/recommend"
	"food-sustainability/internal/pkg/common"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

const maxExplanationWidth = 70

var (
	highColor   = color.New(color.FgRed, color.Bold)
	mediumColor = color.New(color.FgYellow)
	lowColor    = color.New(color.FgGreen)
	headerColor = color.New(color.FgCyan, color.Bold)
)

// tierLabel 影響等級上色
func tierLabel(tier string) string {
	switch tier {
	case impact.TierHigh:
		return highColor.Sprint(tier)
	case impact.TierMedium:
		return mediumColor.Sprint(tier)
	case impact.TierLow:
		return lowColor.Sprint(tier)
	default:
		return tier
	}
}

// improvementLabel 改善分數依高低上色
func improvementLabel(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	switch {
	case v >= 80:
		return lowColor.Sprint(s)
	case v >= 50:
		return mediumColor.Sprint(s)
	default:
		return highColor.Sprint(s)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func renderTable(w io.Writer, headers []string, data [][]string, align tw.Align) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = align
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// printImpact 輸出單一食物的環境影響
func printImpact(w io.Writer, rec *impact.Record) error {
	fmt.Fprintf(w, "%s  (source: %s)\n", headerColor.Sprint(rec.FoodName), rec.Source)
	if rec.ImpactTier != "" {
		fmt.Fprintf(w, "Impact tier: %s\n", tierLabel(rec.ImpactTier))
	}
	fmt.Fprintf(w, "Environmental score: %.2f / 10\n", rec.EnvironmentalScore)

	data := make([][]string, 0, len(impact.MetricKinds))
	for _, k := range impact.MetricKinds {
		data = append(data, []string{string(k), formatFloat(rec.Metrics.Get(k))})
	}
	if err := renderTable(w, []string{"Metric", "Value"}, data, tw.AlignRight); err != nil {
		return err
	}

	if len(rec.Certifications) > 0 {
		fmt.Fprintf(w, "Certifications: %s\n", strings.Join(rec.Certifications, ", "))
	}
	if len(rec.Ingredients) > 0 {
		fmt.Fprintf(w, "Ingredients: %s\n", strings.Join(rec.Ingredients, ", "))
	}
	return nil
}

// printRecommendations 輸出推薦結果
func printRecommendations(w io.Writer, res *recommend.Recommendation) error {
	fmt.Fprintf(w, "Alternatives to %s  (source: %s)\n", headerColor.Sprint(res.Food), res.Source)

	data := make([][]string, 0, len(res.Alternatives))
	for i, c := range res.Alternatives {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			c.Name,
			improvementLabel(c.SustainabilityImprovement),
			formatFloat(c.SimilarityScore),
			common.Truncate(c.Explanation, maxExplanationWidth),
		})
	}
	if err := renderTable(w, []string{"Rank", "Alternative", "Improvement", "Similarity", "Why"}, data, tw.AlignLeft); err != nil {
		return err
	}

	if res.FoodInfo != nil {
		return printFoodInfo(w, res.FoodInfo)
	}
	return nil
}

// printFoodInfo 輸出食物資訊
func printFoodInfo(w io.Writer, info *recommend.FoodInfo) error {
	fmt.Fprintf(w, "%s  (%s)\n", headerColor.Sprint(info.Name), info.Type)
	fmt.Fprintln(w, info.Description)
	if info.Details != "" {
		fmt.Fprintln(w, info.Details)
	}

	n := info.Nutrition
	data := [][]string{
		{"protein (g)", formatFloat(n.Protein)},
		{"fat (g)", formatFloat(n.Fat)},
		{"carbs (g)", formatFloat(n.Carbs)},
		{"fiber (g)", formatFloat(n.Fiber)},
		{"calories (kcal)", formatFloat(n.Calories)},
	}
	if err := renderTable(w, []string{"Per 100g", "Value"}, data, tw.AlignRight); err != nil {
		return err
	}
	fmt.Fprintf(w, "Source: %s\n", info.Source)
	return nil
}

// printComparison 輸出兩個食物的比較
func printComparison(w io.Writer, cmp *recommend.Comparison) error {
	green := color.New(color.FgGreen).SprintFunc()

	data := make([][]string, 0, len(cmp.Differences))
	for _, d := range cmp.Differences {
		better := d.Better
		if better != "" {
			better = green(better)
		}
		data = append(data, []string{
			string(d.Metric),
			formatFloat(d.First),
			formatFloat(d.Second),
			formatFloat(d.Difference),
			better,
		})
	}
	headers := []string{"Metric", cmp.First.FoodName, cmp.Second.FoodName, "Difference", "Better"}
	if err := renderTable(w, headers, data, tw.AlignRight); err != nil {
		return err
	}

	fmt.Fprintf(w, "Environmental score: %s %.2f, %s %.2f\n",
		cmp.First.FoodName, cmp.First.EnvironmentalScore,
		cmp.Second.FoodName, cmp.Second.EnvironmentalScore)
	fmt.Fprintln(w, cmp.Summary)
	return nil
}

// printJSON 以 JSON 輸出任意結果
func printJSON(w io.Writer, v interface{}) error {
	data, err := common.MarshalJSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
