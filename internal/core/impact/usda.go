package impact

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"food-sustainability/internal/infrastructure/config"
	"food-sustainability/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// SourceUSDA USDA FoodData Central 來源名稱
const SourceUSDA = "usda"

type usdaNutrient struct {
	NutrientName string  `json:"nutrientName"`
	UnitName     string  `json:"unitName"`
	Value        float64 `json:"value"`
}

type usdaFood struct {
	FdcID         int            `json:"fdcId"`
	Description   string         `json:"description"`
	FoodCategory  string         `json:"foodCategory"`
	Ingredients   string         `json:"ingredients"`
	FoodNutrients []usdaNutrient `json:"foodNutrients"`
}

type usdaSearchResponse struct {
	TotalHits int        `json:"totalHits"`
	Foods     []usdaFood `json:"foods"`
}

// USDASource USDA FoodData Central 搜尋來源
//
// 這個來源沒有環境指標，五項指標都以估計值合成，只有營養成分是實際資料。
type USDASource struct {
	client    *resty.Client
	apiKey    string
	estimator *Estimator
}

// NewUSDASource 創建 USDA 客戶端
func NewUSDASource(cfg config.USDAConfig, est *Estimator) *USDASource {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &USDASource{
		client:    client,
		apiKey:    cfg.APIKey,
		estimator: est,
	}
}

// Name 實作 Source
func (s *USDASource) Name() string { return SourceUSDA }

// Lookup 以名稱搜尋，取第一筆
func (s *USDASource) Lookup(ctx context.Context, foodName string) (rec *Record, err error) {
	start := time.Now()
	defer func() { common.LogUpstreamCall(SourceUSDA, foodName, time.Since(start), err) }()

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":    foodName,
			"pageSize": "1",
			"api_key":  s.apiKey,
		}).
		Get("/foods/search")
	if err != nil {
		return nil, common.Wrap(common.ErrSourceUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, common.Wrap(common.ErrSourceUnavailable, fmt.Errorf("usda returned status %d", resp.StatusCode()))
	}

	var result usdaSearchResponse
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, common.Wrap(common.ErrMalformedUpstream, err)
	}
	if len(result.Foods) == 0 {
		return nil, nil
	}
	return s.toRecord(result.Foods[0], foodName), nil
}

func (s *USDASource) toRecord(f usdaFood, query string) *Record {
	name := strings.TrimSpace(f.Description)
	if name == "" {
		name = query
	}

	var m Metrics
	m.Set(Carbon, s.estimator.Uniform(0.1, 2.5))
	m.Set(Water, s.estimator.Uniform(100, 500))
	m.Set(Energy, s.estimator.Uniform(1, 5))
	m.Set(Waste, s.estimator.Uniform(0.05, 1))
	m.Set(Deforestation, RangedDeforestationRisk(s.estimator, query, f.Description))

	rec := &Record{
		FoodName:           name,
		Metrics:            m,
		EnvironmentalScore: DescriptionScore(f.Description),
		Description:        f.Description,
		Nutrition:          usdaNutrition(f.FoodNutrients),
		Ingredients:        splitList(f.Ingredients),
		Source:             SourceUSDA,
	}
	rec.normalize()
	return rec
}

// usdaNutrition 由營養素名稱對應到統一格式
func usdaNutrition(nutrients []usdaNutrient) Nutrition {
	var n Nutrition
	for _, nu := range nutrients {
		switch nu.NutrientName {
		case "Protein":
			n.Protein = nu.Value
		case "Total lipid (fat)":
			n.Fat = nu.Value
		case "Carbohydrate, by difference":
			n.Carbs = nu.Value
		case "Fiber, total dietary":
			n.Fiber = nu.Value
		case "Energy":
			if strings.EqualFold(nu.UnitName, "KCAL") {
				n.Calories = nu.Value
			}
		}
	}
	return n
}
