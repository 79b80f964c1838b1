package impact

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"food-sustainability/internal/infrastructure/config"
	"food-sustainability/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// SourceOpenFoodFacts Open Food Facts 來源名稱
const SourceOpenFoodFacts = "openfoodfacts"

// flexFloat 同時接受數字與字串形式的數值
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

type offNutriments struct {
	CarbonFootprint flexFloat `json:"carbon-footprint_100g"`
	WaterFootprint  flexFloat `json:"water-footprint_100g"`
	Energy          flexFloat `json:"energy_100g"`
	EnergyKcal      flexFloat `json:"energy-kcal_100g"`
	Proteins        flexFloat `json:"proteins_100g"`
	Fat             flexFloat `json:"fat_100g"`
	Carbohydrates   flexFloat `json:"carbohydrates_100g"`
	Fiber           flexFloat `json:"fiber_100g"`
}

// offProduct Open Food Facts 產品欄位（只取需要的部分）
type offProduct struct {
	ProductName     string        `json:"product_name"`
	IngredientsText string        `json:"ingredients_text"`
	Categories      string        `json:"categories"`
	Origins         string        `json:"origins"`
	Labels          string        `json:"labels"`
	EcoscoreGrade   string        `json:"ecoscore_grade"`
	Nutriments      offNutriments `json:"nutriments"`
}

type offSearchResponse struct {
	Count    int          `json:"count"`
	Products []offProduct `json:"products"`
}

type offProductResponse struct {
	Status  int         `json:"status"`
	Product *offProduct `json:"product"`
}

// OpenFoodFactsSource Open Food Facts 全文搜尋來源
type OpenFoodFactsSource struct {
	client    *resty.Client
	estimator *Estimator
}

// NewOpenFoodFactsSource 創建 Open Food Facts 客戶端
func NewOpenFoodFactsSource(cfg config.OpenFoodFactsConfig, est *Estimator) *OpenFoodFactsSource {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "food-sustainability/1.0")

	return &OpenFoodFactsSource{
		client:    client,
		estimator: est,
	}
}

// Name 實作 Source
func (s *OpenFoodFactsSource) Name() string { return SourceOpenFoodFacts }

// Lookup 以名稱搜尋，取熱門度最高的第一筆
func (s *OpenFoodFactsSource) Lookup(ctx context.Context, foodName string) (rec *Record, err error) {
	start := time.Now()
	defer func() { common.LogUpstreamCall(SourceOpenFoodFacts, foodName, time.Since(start), err) }()

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"search_terms": foodName,
			"json":         "1",
			"page_size":    "1",
			"sort_by":      "popularity",
		}).
		Get("/cgi/search.pl")
	if err != nil {
		return nil, common.Wrap(common.ErrSourceUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, common.Wrap(common.ErrSourceUnavailable, fmt.Errorf("open food facts returned status %d", resp.StatusCode()))
	}

	var result offSearchResponse
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, common.Wrap(common.ErrMalformedUpstream, err)
	}
	if len(result.Products) == 0 {
		return nil, nil
	}
	return s.toRecord(result.Products[0], foodName), nil
}

// LookupBarcode 以條碼查詢單一產品
func (s *OpenFoodFactsSource) LookupBarcode(ctx context.Context, barcode string) (rec *Record, err error) {
	start := time.Now()
	defer func() { common.LogUpstreamCall(SourceOpenFoodFacts, barcode, time.Since(start), err) }()

	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("code", barcode).
		Get("/api/v0/product/{code}.json")
	if err != nil {
		return nil, common.Wrap(common.ErrSourceUnavailable, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, common.Wrap(common.ErrSourceUnavailable, fmt.Errorf("open food facts returned status %d", resp.StatusCode()))
	}

	var result offProductResponse
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, common.Wrap(common.ErrMalformedUpstream, err)
	}
	if result.Status != 1 || result.Product == nil {
		return nil, nil
	}
	return s.toRecord(*result.Product, "Unknown"), nil
}

// toRecord 轉換為統一格式，缺少的指標以估計值補齊
func (s *OpenFoodFactsSource) toRecord(p offProduct, fallbackName string) *Record {
	name := strings.TrimSpace(p.ProductName)
	if name == "" {
		name = fallbackName
	}

	n := p.Nutriments
	var m Metrics
	m.Set(Carbon, s.estimator.orEstimate(float64(n.CarbonFootprint), 0.1, 2.0))
	m.Set(Water, s.estimator.orEstimate(float64(n.WaterFootprint), 50, 500))
	m.Set(Energy, s.estimator.orEstimate(float64(n.Energy)/100, 0.5, 3.0))
	m.Set(Waste, s.estimator.Uniform(0.1, 1.0))
	m.Set(Deforestation, AdditiveDeforestationRisk(p.IngredientsText, p.Categories, p.Origins))

	score, ok := EcoscoreScore(p.EcoscoreGrade)
	if !ok {
		score = WeightedScore(m)
	}

	rec := &Record{
		FoodName:           name,
		Metrics:            m,
		EnvironmentalScore: score,
		Nutrition: Nutrition{
			Protein:  float64(n.Proteins),
			Fat:      float64(n.Fat),
			Carbs:    float64(n.Carbohydrates),
			Fiber:    float64(n.Fiber),
			Calories: float64(n.EnergyKcal),
		},
		Ingredients:    splitList(p.IngredientsText),
		Certifications: splitList(p.Labels),
		Source:         SourceOpenFoodFacts,
	}
	rec.normalize()
	return rec
}

// splitList 以逗號切分並去除空白項目
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
