package impact

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/foods.yaml
var curatedFoodsYAML []byte

// SourceLocal 在地估算來源名稱
const SourceLocal = "local"

// CuratedFood 在地資料表中的一筆食物
type CuratedFood struct {
	Name        string  `yaml:"name"`
	Metrics     Metrics `yaml:",inline"`
	Impact      string  `yaml:"impact"`
	Description string  `yaml:"description"`
}

type curatedFile struct {
	Foods []CuratedFood `yaml:"foods"`
}

// LoadCuratedFoods 解析內嵌的在地資料表
func LoadCuratedFoods() ([]CuratedFood, error) {
	return ParseCuratedFoods(curatedFoodsYAML)
}

// ParseCuratedFoods 解析 YAML 格式的資料表
func ParseCuratedFoods(data []byte) ([]CuratedFood, error) {
	var file curatedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse curated foods: %w", err)
	}
	for i, f := range file.Foods {
		if strings.TrimSpace(f.Name) == "" {
			return nil, fmt.Errorf("curated food #%d has no name", i)
		}
	}
	return file.Foods, nil
}

// LocalSource 以在地資料表回答的來源，名稱比對不分大小寫
type LocalSource struct {
	foods      []CuratedFood
	index      map[string]int
	classifier *TierClassifier
	annotator  Annotator
}

// NewLocalSource 創建在地來源；annotator 可為 nil
func NewLocalSource(foods []CuratedFood, annotator Annotator) *LocalSource {
	s := &LocalSource{
		foods:      foods,
		index:      make(map[string]int, len(foods)),
		classifier: NewTierClassifier(foods),
		annotator:  annotator,
	}
	for i, f := range foods {
		key := strings.ToLower(f.Name)
		if _, dup := s.index[key]; !dup {
			s.index[key] = i
		}
	}
	return s
}

// Name 實作 Source
func (s *LocalSource) Name() string { return SourceLocal }

// Lookup 實作 Source
func (s *LocalSource) Lookup(_ context.Context, foodName string) (*Record, error) {
	i, ok := s.index[strings.ToLower(strings.TrimSpace(foodName))]
	if !ok {
		return nil, nil
	}
	f := s.foods[i]

	rec := &Record{
		FoodName:           f.Name,
		Metrics:            f.Metrics,
		EnvironmentalScore: WeightedScore(f.Metrics),
		ImpactTier:         f.Impact,
		Description:        f.Description,
		Source:             SourceLocal,
	}
	if rec.ImpactTier == "" {
		rec.ImpactTier = s.classifier.Classify(f.Metrics)
	}
	if s.annotator != nil && f.Description != "" {
		ann := s.annotator.Annotate(f.Description)
		rec.Ingredients = ann.Ingredients
		rec.Certifications = ann.Certifications
	}
	rec.normalize()
	return rec, nil
}

// Names 資料表中的食物名稱，維持原始順序
func (s *LocalSource) Names() []string {
	names := make([]string, 0, len(s.foods))
	for _, f := range s.foods {
		names = append(names, f.Name)
	}
	return names
}

// Classify 以在地資料表訓練的分類器判斷影響等級
func (s *LocalSource) Classify(m Metrics) string {
	return s.classifier.Classify(m)
}
