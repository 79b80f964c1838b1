package cli

import (
	"bytes"
	"strings"
	"testing"

	"food-sustainability/internal/core/impact"
	"food-sustainability/internal/core/recommend"
	"food-sustainability/internal/infrastructure/config"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func offlineConfig() (*config.Config, error) {
	cfg := config.Default()
	cfg.OpenFoodFacts.Enabled = false
	cfg.USDA.Enabled = false
	cfg.Redis.Enabled = false
	return cfg, nil
}

// run 以離線設定執行命令並回傳輸出
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(&app{version: "test", loadConfig: offlineConfig})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version: test")
}

func TestImpactCommand(t *testing.T) {
	out, err := run(t, "impact", "beef")
	require.NoError(t, err)
	assert.Contains(t, out, "Beef")
	assert.Contains(t, out, "source: local")
	assert.Contains(t, out, "Environmental score:")
	assert.Contains(t, out, "carbon")
}

func TestImpactCommandNotFound(t *testing.T) {
	_, err := run(t, "impact", "unobtainium")
	require.Error(t, err)
}

func TestImpactCommandJSON(t *testing.T) {
	out, err := run(t, "--json", "impact", "Beef")
	require.NoError(t, err)
	assert.Contains(t, out, `"food_name":"Beef"`)
}

func TestRecommendCommand(t *testing.T) {
	out, err := run(t, "recommend", "beef", "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Alternatives to beef")
	assert.Contains(t, out, "source: ml")
	assert.Contains(t, out, "Lentils")
}

func TestRecommendCommandWeights(t *testing.T) {
	out, err := run(t, "--json", "recommend", "beef", "--carbon", "1", "--water", "0", "--energy", "0", "--waste", "0", "--deforestation", "0")
	require.NoError(t, err)
	assert.Contains(t, out, `"carbon":1`)
}

func TestRecommendCommandFallback(t *testing.T) {
	out, err := run(t, "--json", "recommend", "zzzz")
	require.NoError(t, err)
	assert.Contains(t, out, `"source":"fallback"`)
}

func TestRecommendCommandRejectsNegativeWeight(t *testing.T) {
	_, err := run(t, "recommend", "beef", "--carbon=-1")
	require.Error(t, err)
}

func TestSearchCommand(t *testing.T) {
	out, err := run(t, "search", "milk")
	require.NoError(t, err)
	assert.Contains(t, out, "Almond Milk")
	assert.NotContains(t, out, "Beef")

	out, err = run(t, "search", "zzzz")
	require.NoError(t, err)
	assert.Contains(t, out, `No foods match "zzzz"`)
}

func TestFoodsCommand(t *testing.T) {
	out, err := run(t, "foods")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 8)
	assert.Contains(t, out, "Cow Milk")
}

func TestInfoCommand(t *testing.T) {
	out, err := run(t, "info", "Apple")
	require.NoError(t, err)
	assert.Contains(t, out, "Apple is a fruit")
	assert.Contains(t, out, "protein (g)")
}

func TestCompareCommand(t *testing.T) {
	out, err := run(t, "compare", "Beef", "Chicken")
	require.NoError(t, err)
	assert.Contains(t, out, "Chicken reduces deforestation impact by 78% compared to Beef.")
}

func TestCompareCommandArgs(t *testing.T) {
	_, err := run(t, "compare", "Beef")
	require.Error(t, err)
}

func TestBarcodeCommandOffline(t *testing.T) {
	_, err := run(t, "barcode", "3017620422003")
	require.Error(t, err)
}

func TestTierLabel(t *testing.T) {
	assert.Equal(t, impact.TierHigh, tierLabel(impact.TierHigh))
	assert.Equal(t, "unknown", tierLabel("unknown"))
}

func TestImprovementLabel(t *testing.T) {
	assert.Equal(t, "92.8", improvementLabel(92.75))
	assert.Equal(t, "0.0", improvementLabel(0))
}

func TestPrintRecommendations(t *testing.T) {
	var buf bytes.Buffer
	err := printRecommendations(&buf, &recommend.Recommendation{
		Food:   "Beef",
		Source: recommend.SourceML,
		Alternatives: []recommend.Candidate{
			{Name: "Tofu", SustainabilityImprovement: 92.8, SimilarityScore: 0.7, Explanation: "Tofu reduces carbon footprint by 93% compared to Beef."},
		},
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Alternatives to Beef")
	assert.Contains(t, out, "Tofu")
	assert.Contains(t, out, "92.8")
}
