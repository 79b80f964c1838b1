package recommend

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"food-sustainability/internal/core/ai"
	"food-sustainability/internal/core/impact"
	"food-sustainability/internal/infrastructure/config"
	"food-sustainability/internal/infrastructure/metrics"
	"food-sustainability/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var barcodePattern = regexp.MustCompile(`^\d{8,14}$`)

func invalidRequest(msg string) error {
	return common.Wrap(common.ErrInvalidRequest, errors.New(msg))
}

// BarcodeLookup 以條碼查詢產品的來源
type BarcodeLookup interface {
	LookupBarcode(ctx context.Context, barcode string) (*impact.Record, error)
}

// Dependencies 推薦服務的協作者；Barcode、Generator 可為 nil
type Dependencies struct {
	Resolver  *impact.Resolver
	Barcode   BarcodeLookup
	Catalogue *Catalogue
	Generator ai.Generator
	Info      *InfoSynthesizer
	Corpus    []string
}

// Service 永續推薦引擎對外的操作
type Service struct {
	config     config.EngineConfig
	resolver   *impact.Resolver
	barcode    BarcodeLookup
	catalogue  *Catalogue
	generative *GenerativeProducer
	info       *InfoSynthesizer
	corpus     []string
}

// NewService 創建推薦服務
func NewService(cfg config.EngineConfig, deps Dependencies) *Service {
	return &Service{
		config:     cfg,
		resolver:   deps.Resolver,
		barcode:    deps.Barcode,
		catalogue:  deps.Catalogue,
		generative: NewGenerativeProducer(deps.Generator, cfg.GenerativeTimeout),
		info:       deps.Info,
		corpus:     append([]string(nil), deps.Corpus...),
	}
}

// GenerativeEnabled 是否設定了生成式產生器
func (s *Service) GenerativeEnabled() bool {
	return s.generative != nil
}

// GetImpact 解析食物的環境影響資料
func (s *Service) GetImpact(ctx context.Context, foodName string) (*impact.Record, error) {
	if strings.TrimSpace(foodName) == "" {
		return nil, invalidRequest("food name is required")
	}
	return s.resolver.Resolve(ctx, foodName)
}

// GetImpactByBarcode 以產品條碼查詢環境影響資料，結果不進入名稱快取
func (s *Service) GetImpactByBarcode(ctx context.Context, barcode string) (*impact.Record, error) {
	barcode = strings.TrimSpace(barcode)
	if !barcodePattern.MatchString(barcode) {
		return nil, invalidRequest("barcode must be 8 to 14 digits")
	}
	if s.barcode == nil {
		return nil, common.ErrServiceUnavailable
	}

	rec, err := s.barcode.LookupBarcode(ctx, barcode)
	if err != nil {
		common.LogWarn("條碼查詢失敗", zap.String("barcode", barcode), zap.Error(err))
		return nil, common.ErrFoodNotFound
	}
	if rec == nil {
		return nil, common.ErrFoodNotFound
	}
	return rec, nil
}

// GetRecommendations 產生替代食物推薦；原食物無法解析時退回分類推薦，不會因此失敗
func (s *Service) GetRecommendations(ctx context.Context, foodName string, opts Options) (*Recommendation, error) {
	foodName = strings.TrimSpace(foodName)
	if foodName == "" {
		return nil, invalidRequest("food name is required")
	}

	prefs := DefaultPreferences()
	if opts.Preferences != nil {
		if err := opts.Preferences.Validate(); err != nil {
			return nil, err
		}
		prefs = *opts.Preferences
	}
	limit := s.normalizeLimit(opts.Limit)

	result := &Recommendation{
		Food:        foodName,
		Preferences: prefs,
	}

	rec, err := s.resolver.Resolve(ctx, foodName)
	if err != nil {
		common.LogInfo("無法解析原食物，改用分類推薦",
			zap.String("food", foodName),
			zap.Error(err),
		)
		result.Source = SourceFallback
		result.Alternatives = s.fallbackAlternatives(foodName, limit)
		if opts.IncludeFoodInfo && s.info != nil {
			result.FoodInfo = s.info.Synthesize(ctx, foodName, nil)
		}
		metrics.Recommendations.WithLabelValues(result.Source).Inc()
		return result, nil
	}

	var (
		generated []Candidate
		category  []Candidate
		info      *FoodInfo
		g         errgroup.Group
	)
	if opts.AllowGenerative && s.generative != nil {
		g.Go(func() error {
			generated = s.generateCandidates(ctx, foodName, rec, prefs, limit)
			return nil
		})
	}
	g.Go(func() error {
		category = s.catalogue.Alternatives(foodName, 0)
		return nil
	})
	if opts.IncludeFoodInfo && s.info != nil {
		g.Go(func() error {
			info = s.info.Synthesize(ctx, foodName, rec)
			return nil
		})
	}
	_ = g.Wait()

	result.Alternatives = Fuse(limit, excludeFood(foodName, generated), excludeFood(foodName, category))
	if len(result.Alternatives) == 0 {
		result.Alternatives = GenericAlternatives(foodName, limit)
	}
	result.Source = SourceML
	for _, c := range result.Alternatives {
		if c.Origin == OriginGenerative {
			result.Source = SourceAI
			break
		}
	}
	result.FoodInfo = info

	metrics.Recommendations.WithLabelValues(result.Source).Inc()
	common.LogDebug("推薦完成",
		zap.String("food", foodName),
		zap.String("source", result.Source),
		zap.Int("alternatives", len(result.Alternatives)),
	)
	return result, nil
}

// generateCandidates 取得生成式候選並以實際指標重新評分
func (s *Service) generateCandidates(ctx context.Context, foodName string, rec *impact.Record, prefs Preferences, limit int) []Candidate {
	basic := FoodInfo{Type: common.Capitalize(s.catalogue.Categorize(foodName))}
	if s.info != nil {
		basic = s.info.Basic(foodName)
	}
	candidates := s.generative.Produce(ctx, PromptInput{
		Food:        foodName,
		Type:        basic.Type,
		Description: basic.Description,
		Metrics:     rec.Metrics,
		Limit:       limit,
	})

	for i := range candidates {
		c := &candidates[i]
		c.SustainabilityImprovement = Improvement(rec.Metrics, c.Impact, prefs)
		if strings.TrimSpace(c.Explanation) == "" {
			c.Explanation = Explain(foodName, c.Name, rec.Metrics, c.Impact, prefs)
		}
	}
	return candidates
}

func (s *Service) fallbackAlternatives(foodName string, limit int) []Candidate {
	alts := Fuse(limit, excludeFood(foodName, s.catalogue.Alternatives(foodName, 0)))
	if len(alts) == 0 {
		alts = GenericAlternatives(foodName, limit)
	}
	return alts
}

func (s *Service) normalizeLimit(limit int) int {
	if limit <= 0 {
		return s.config.DefaultLimit
	}
	if s.config.MaxLimit > 0 && limit > s.config.MaxLimit {
		return s.config.MaxLimit
	}
	return limit
}

// Search 名稱包含查詢字串（不分大小寫）的已知食物，保持原順序；空查詢回傳空結果
func (s *Service) Search(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	matches := []string{}
	if q == "" {
		return matches
	}
	for _, name := range s.corpus {
		if strings.Contains(strings.ToLower(name), q) {
			matches = append(matches, name)
		}
	}
	return matches
}

// Foods 所有已知食物名稱
func (s *Service) Foods() []string {
	return append([]string{}, s.corpus...)
}

// Categorize 食物所屬分類
func (s *Service) Categorize(foodName string) string {
	return s.catalogue.Categorize(foodName)
}

// GetFoodInfo 食物描述與營養資訊；未提供 rec 時會嘗試解析，解析失敗不影響結果
func (s *Service) GetFoodInfo(ctx context.Context, foodName string, rec *impact.Record) (*FoodInfo, error) {
	foodName = strings.TrimSpace(foodName)
	if foodName == "" {
		return nil, invalidRequest("food name is required")
	}
	if s.info == nil {
		return nil, common.ErrServiceUnavailable
	}
	if _, known := s.info.Known(foodName); !known && rec == nil {
		rec, _ = s.resolver.Resolve(ctx, foodName)
	}
	return s.info.Synthesize(ctx, foodName, rec), nil
}

// Compare 比較兩個食物的環境影響；任一方無法解析時回傳 common.ErrFoodNotFound
func (s *Service) Compare(ctx context.Context, first, second string) (*Comparison, error) {
	if strings.TrimSpace(first) == "" || strings.TrimSpace(second) == "" {
		return nil, invalidRequest("two food names are required")
	}

	var a, b *impact.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a, err = s.resolver.Resolve(gctx, first)
		if err != nil {
			return fmt.Errorf("%s: %w", first, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		b, err = s.resolver.Resolve(gctx, second)
		if err != nil {
			return fmt.Errorf("%s: %w", second, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, common.Wrap(common.ErrFoodNotFound, err)
	}

	return buildComparison(a, b), nil
}

func buildComparison(a, b *impact.Record) *Comparison {
	cmp := &Comparison{
		First:       a,
		Second:      b,
		Differences: make([]MetricDifference, 0, len(impact.MetricKinds)),
	}
	for _, k := range impact.MetricKinds {
		va, vb := a.Metrics.Get(k), b.Metrics.Get(k)
		d := MetricDifference{
			Metric:     k,
			First:      va,
			Second:     vb,
			Difference: common.Round(va-vb, 4),
		}
		switch {
		case va < vb:
			d.Better = a.FoodName
		case vb < va:
			d.Better = b.FoodName
		}
		cmp.Differences = append(cmp.Differences, d)
	}

	prefs := DefaultPreferences()
	switch {
	case a.EnvironmentalScore > b.EnvironmentalScore:
		cmp.Better = a.FoodName
		cmp.Summary = Explain(b.FoodName, a.FoodName, b.Metrics, a.Metrics, prefs)
	case b.EnvironmentalScore > a.EnvironmentalScore:
		cmp.Better = b.FoodName
		cmp.Summary = Explain(a.FoodName, b.FoodName, a.Metrics, b.Metrics, prefs)
	default:
		cmp.Summary = fmt.Sprintf("%s and %s have the same environmental score.", a.FoodName, b.FoodName)
	}
	return cmp
}
