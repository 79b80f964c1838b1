package recommend

import (
	"context"
	_ "embed"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"food-sustainability/internal/core/ai"
	"food-sustainability/internal/core/impact"
	"food-sustainability/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

//go:embed data/common_foods.yaml
var commonFoodsYAML []byte

// 食物資訊來源標籤
const (
	InfoSourceReliable      = "Reliable food database"
	InfoSourceUSDA          = "USDA Database"
	InfoSourceOpenFoodFacts = "Open Food Facts"
	InfoSourceAI            = "AI nutritional estimation"
	InfoSourceImpact        = "Impact data source"
	InfoSourceCategory      = "Category-based nutrition estimate"
	InfoSourceDefaults      = "Default information with food category matching"
	InfoSourceGeneric       = "Generic food information"

	infoSourceEstimate = "AI estimation"
	unknownFoodType    = "Unknown food type"
)

// nutritionRange 每 100g 的合理範圍
type nutritionRange struct{ min, max float64 }

var nutritionRanges = struct {
	protein, fat, carbs, fiber, calories nutritionRange
}{
	protein:  nutritionRange{0, 40},
	fat:      nutritionRange{0, 80},
	carbs:    nutritionRange{0, 90},
	fiber:    nutritionRange{0, 15},
	calories: nutritionRange{0, 900},
}

// typeDefault 類型關鍵字與預設營養值，依序比對
type typeDefault struct {
	stem      string
	nutrition impact.Nutrition
}

var typeDefaults = []typeDefault{
	{"meat", impact.Nutrition{Protein: 20, Fat: 15, Carbs: 0, Fiber: 0, Calories: 250}},
	{"dairy", impact.Nutrition{Protein: 5, Fat: 5, Carbs: 5, Fiber: 0, Calories: 100}},
	{"vegetable", impact.Nutrition{Protein: 2, Fat: 0.5, Carbs: 5, Fiber: 2, Calories: 30}},
	{"fruit", impact.Nutrition{Protein: 1, Fat: 0.3, Carbs: 15, Fiber: 2, Calories: 60}},
	{"grain", impact.Nutrition{Protein: 3, Fat: 1, Carbs: 25, Fiber: 3, Calories: 120}},
	{"nut", impact.Nutrition{Protein: 20, Fat: 50, Carbs: 10, Fiber: 8, Calories: 600}},
	{"legume", impact.Nutrition{Protein: 8, Fat: 1, Carbs: 20, Fiber: 7, Calories: 120}},
}

var genericNutrition = impact.Nutrition{Protein: 5, Fat: 5, Carbs: 15, Fiber: 2, Calories: 120}

// defaultNutrition 依食物類型取預設營養值
func defaultNutrition(foodType string) impact.Nutrition {
	t := strings.ToLower(foodType)
	for _, d := range typeDefaults {
		if strings.Contains(t, d.stem) {
			return d.nutrition
		}
	}
	return genericNutrition
}

// ValidateNutrition 將 0 或超出範圍的值換成該類型的預設值
func ValidateNutrition(n impact.Nutrition, foodType string) impact.Nutrition {
	d := defaultNutrition(foodType)
	pick := func(v float64, r nutritionRange, fallback float64) float64 {
		if v == 0 || v < r.min || v > r.max {
			return fallback
		}
		return v
	}
	return impact.Nutrition{
		Protein:  pick(n.Protein, nutritionRanges.protein, d.Protein),
		Fat:      pick(n.Fat, nutritionRanges.fat, d.Fat),
		Carbs:    pick(n.Carbs, nutritionRanges.carbs, d.Carbs),
		Fiber:    pick(n.Fiber, nutritionRanges.fiber, d.Fiber),
		Calories: pick(n.Calories, nutritionRanges.calories, d.Calories),
	}
}

// ExpandDescription 描述太短時依類型補上環境影響說明
func ExpandDescription(description, foodName, foodType string) string {
	if len(description) < 20 {
		t := strings.ToLower(foodType)
		switch {
		case strings.Contains(t, "meat"):
			return fmt.Sprintf("%s is a meat product that typically requires significant resources to produce. Meat production generally has a higher environmental footprint with substantial water usage, land requirements for grazing or feed production, and higher greenhouse gas emissions compared to plant-based alternatives.", foodName)
		case strings.Contains(t, "dairy"):
			return fmt.Sprintf("%s is a dairy product derived from animal milk. Dairy production contributes to greenhouse gas emissions through livestock, requires substantial water for animal care and feed crops, and impacts land use. However, its environmental footprint is generally lower than that of meat products.", foodName)
		case strings.Contains(t, "vegetable"):
			return fmt.Sprintf("%s is a vegetable with a typically low environmental impact. Vegetables generally require less water, produce fewer greenhouse gas emissions, and use less land compared to animal products. They're considered environmentally sustainable food choices that provide essential nutrients.", foodName)
		case strings.Contains(t, "fruit"):
			return fmt.Sprintf("%s is a fruit that generally has a moderate environmental footprint. While fruits require water for irrigation, their carbon emissions and land use impact are relatively low compared to animal products. Local, seasonal fruits typically have the lowest environmental impact.", foodName)
		case strings.Contains(t, "grain"):
			return fmt.Sprintf("%s is a grain product that forms a dietary staple in many cultures. Grains generally have a moderate environmental footprint, requiring land for cultivation but producing relatively low greenhouse gas emissions. They're considered an efficient food source in terms of resources needed per calorie provided.", foodName)
		default:
			return fmt.Sprintf("%s is a food item in the %s category. Like all foods, it has an environmental footprint related to its production, processing, and distribution. This includes impacts on greenhouse gas emissions, water usage, and land use, though the specific impact varies based on production methods and geographic location.", foodName, foodType)
		}
	}

	lower := strings.ToLower(description)
	if !strings.Contains(lower, "environmental") && !strings.Contains(lower, "impact") {
		description += fmt.Sprintf(" Like most food items, %s has an environmental footprint related to its production and distribution, affecting water usage, carbon emissions, and land use.", foodName)
	}
	return description
}

// InfoSynthesizer 組合食物描述與營養資訊
type InfoSynthesizer struct {
	common      map[string]FoodInfo
	catalogue   *Catalogue
	usda        impact.Source
	off         impact.Source
	generator   ai.Generator
	infoTimeout time.Duration
	aiTimeout   time.Duration
}

// InfoSources 食物資訊的外部來源，皆可為 nil
type InfoSources struct {
	USDA          impact.Source
	OpenFoodFacts impact.Source
	Generator     ai.Generator
}

// NewInfoSynthesizer 創建食物資訊組合器
func NewInfoSynthesizer(catalogue *Catalogue, sources InfoSources, infoTimeout, aiTimeout time.Duration) (*InfoSynthesizer, error) {
	var file struct {
		Foods []FoodInfo `yaml:"foods"`
	}
	if err := yaml.Unmarshal(commonFoodsYAML, &file); err != nil {
		return nil, fmt.Errorf("failed to parse common foods: %w", err)
	}

	known := make(map[string]FoodInfo, len(file.Foods))
	for _, f := range file.Foods {
		known[common.NormalizeKey(f.Name)] = f
	}

	return &InfoSynthesizer{
		common:      known,
		catalogue:   catalogue,
		usda:        sources.USDA,
		off:         sources.OpenFoodFacts,
		generator:   sources.Generator,
		infoTimeout: infoTimeout,
		aiTimeout:   aiTimeout,
	}, nil
}

// Known 常見食物的固定資料
func (s *InfoSynthesizer) Known(foodName string) (FoodInfo, bool) {
	info, ok := s.common[common.NormalizeKey(foodName)]
	if ok {
		info.Source = InfoSourceReliable
	}
	return info, ok
}

// Basic 不呼叫外部服務的簡短資訊，用於提示詞
func (s *InfoSynthesizer) Basic(foodName string) FoodInfo {
	if info, ok := s.Known(foodName); ok {
		return info
	}
	name := common.Capitalize(strings.TrimSpace(foodName))
	if category := s.catalogue.Categorize(foodName); category != DefaultCategory {
		return FoodInfo{
			Name:        name,
			Type:        common.Capitalize(category),
			Description: fmt.Sprintf("%s is a %s food item.", foodName, category),
			Source:      "Quick categorization",
		}
	}
	return FoodInfo{
		Name:        name,
		Type:        "Food item",
		Description: fmt.Sprintf("%s is a food item.", foodName),
		Source:      "Basic info only",
	}
}

// Synthesize 組合食物資訊：常見食物直接回傳，否則並行查詢 USDA、Open Food Facts 與生成式營養估計，
// 依可靠度取用；全部失敗時回傳依分類推得的預設值
func (s *InfoSynthesizer) Synthesize(ctx context.Context, foodName string, rec *impact.Record) *FoodInfo {
	if info, ok := s.Known(foodName); ok {
		return &info
	}

	info := FoodInfo{
		Name:        common.Capitalize(strings.TrimSpace(foodName)),
		Type:        unknownFoodType,
		Description: fmt.Sprintf("%s is a food item with various environmental impacts.", foodName),
		Source:      infoSourceEstimate,
	}
	if rec != nil {
		if rec.Description != "" {
			info.Description = rec.Description
		}
		if !rec.Nutrition.IsEmpty() {
			info.Nutrition = rec.Nutrition
			info.Source = InfoSourceImpact
		}
	}
	if category := s.catalogue.Categorize(foodName); category != DefaultCategory {
		info.Type = common.Capitalize(category)
	}

	var (
		usdaRec, offRec *impact.Record
		aiNutrition     *impact.Nutrition
		g               errgroup.Group
	)
	if s.usda != nil {
		g.Go(func() error {
			usdaRec = s.lookup(ctx, s.usda, foodName)
			return nil
		})
	}
	if s.off != nil {
		g.Go(func() error {
			offRec = s.lookup(ctx, s.off, foodName)
			return nil
		})
	}
	if s.generator != nil {
		foodType := info.Type
		g.Go(func() error {
			aiNutrition = s.nutritionFromAI(ctx, foodName, foodType)
			return nil
		})
	}
	_ = g.Wait()

	switch {
	case usdaRec != nil && !usdaRec.Nutrition.IsEmpty():
		info.Nutrition = usdaRec.Nutrition
		info.Source = InfoSourceUSDA
		if usdaRec.Description != "" {
			info.Details = "USDA Description: " + usdaRec.Description
		}
	case offRec != nil && !offRec.Nutrition.IsEmpty():
		info.Nutrition = offRec.Nutrition
		info.Source = InfoSourceOpenFoodFacts
		if len(offRec.Ingredients) > 0 {
			info.Details = "Ingredients: " + truncateWithEllipsis(strings.Join(offRec.Ingredients, ", "), 150)
		}
	case aiNutrition != nil:
		info.Nutrition = *aiNutrition
		info.Source = InfoSourceAI
	}

	if info.Type == unknownFoodType {
		if info.Nutrition.IsEmpty() && (rec == nil || rec.Description == "") {
			return s.MeaningfulDefaults(foodName)
		}
	} else {
		var desc string
		if rec != nil {
			desc = rec.Description
		}
		info.Description = ExpandDescription(desc, foodName, info.Type)
	}
	if info.Details == "" {
		info.Details = fmt.Sprintf("%s is commonly consumed as part of a balanced diet.", foodName)
	}
	if info.Nutrition.IsEmpty() {
		info.Nutrition = ValidateNutrition(impact.Nutrition{}, info.Type)
		if info.Source == infoSourceEstimate {
			info.Source = InfoSourceCategory
		}
	}
	return &info
}

// MeaningfulDefaults 沒有任何資料時的預設資訊
func (s *InfoSynthesizer) MeaningfulDefaults(foodName string) *FoodInfo {
	name := common.Capitalize(strings.TrimSpace(foodName))
	if category := s.catalogue.Categorize(foodName); category != DefaultCategory {
		foodType := common.Capitalize(category)
		return &FoodInfo{
			Name:        name,
			Type:        foodType,
			Description: ExpandDescription("", foodName, foodType),
			Details:     fmt.Sprintf("%s is commonly consumed as part of a balanced diet.", foodName),
			Nutrition:   ValidateNutrition(impact.Nutrition{}, foodType),
			Source:      InfoSourceDefaults,
		}
	}
	return &FoodInfo{
		Name:        name,
		Type:        "Food item",
		Description: fmt.Sprintf("%s is a food item that contributes to your diet. Like many food items, it has an environmental footprint related to its production, processing, and transportation that impacts carbon emissions, water usage, and land use.", foodName),
		Details:     "No specific details available for this food item.",
		Nutrition:   genericNutrition,
		Source:      InfoSourceGeneric,
	}
}

func (s *InfoSynthesizer) lookup(ctx context.Context, src impact.Source, foodName string) *impact.Record {
	if s.infoTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.infoTimeout)
		defer cancel()
	}
	rec, err := src.Lookup(ctx, foodName)
	if err != nil {
		common.LogDebug("食物資訊查詢失敗",
			zap.String("source", src.Name()),
			zap.String("food", foodName),
			zap.Error(err),
		)
		return nil
	}
	return rec
}

func (s *InfoSynthesizer) nutritionFromAI(ctx context.Context, foodName, foodType string) *impact.Nutrition {
	if s.aiTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.aiTimeout)
		defer cancel()
	}

	prompt := fmt.Sprintf("Provide realistic standard nutritional values per 100g for %s (food type: %s).\n"+
		"Return ONLY numeric values (no units) for:\n"+
		"- Protein (g)\n- Fat (g)\n- Carbohydrates (g)\n- Fiber (g)\n- Calories (kcal)\n\n"+
		"Format as JSON with these exact keys: protein, fat, carbs, fiber, calories", foodName, foodType)

	resp, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		common.LogDebug("生成式營養估計失敗", zap.String("food", foodName), zap.Error(err))
		return nil
	}

	n, ok := ParseNutrition(resp.Text)
	if !ok {
		return nil
	}
	n = ValidateNutrition(n, foodType)
	return &n
}

var (
	numberPattern    = regexp.MustCompile(`\d+\.?\d*`)
	nutrientKeys     = []string{"protein", "fat", "carbs", "fiber", "calories"}
	nutrientPatterns = func() map[string]*regexp.Regexp {
		m := make(map[string]*regexp.Regexp, len(nutrientKeys))
		for _, k := range nutrientKeys {
			m[k] = regexp.MustCompile(`(?i)` + k + `["\s:]+(\d+\.?\d*)`)
		}
		return m
	}()
)

// ParseNutrition 從生成式回應取出營養值；優先解析 JSON 物件，失敗時以關鍵字比對數字
func ParseNutrition(text string) (impact.Nutrition, bool) {
	values := make(map[string]float64, len(nutrientKeys))

	if obj, ok := common.ExtractJSONObject(text); ok {
		var raw map[string]interface{}
		if err := common.ParseJSON(common.QuoteJSONKeys(obj), &raw); err == nil {
			for _, k := range nutrientKeys {
				values[k] = numericValue(raw[k])
			}
		}
	}

	if len(values) == 0 {
		for _, k := range nutrientKeys {
			if m := nutrientPatterns[k].FindStringSubmatch(text); m != nil {
				values[k], _ = strconv.ParseFloat(m[1], 64)
			}
		}
	}

	n := impact.Nutrition{
		Protein:  values["protein"],
		Fat:      values["fat"],
		Carbs:    values["carbs"],
		Fiber:    values["fiber"],
		Calories: values["calories"],
	}
	return n, !n.IsEmpty()
}

func numericValue(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		if m := numberPattern.FindString(x); m != "" {
			f, _ := strconv.ParseFloat(m, 64)
			return f
		}
	}
	return 0
}

func truncateWithEllipsis(s string, max int) string {
	if len([]rune(s)) <= max {
		return s
	}
	return common.Truncate(s, max) + "..."
}
