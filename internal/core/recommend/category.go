package recommend

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/categories.yaml
var categoriesYAML []byte

// DefaultCategory 沒有關鍵字命中時的分類
const DefaultCategory = "default"

// Category 一個食物分類與其預先整理的替代清單
type Category struct {
	Name         string      `yaml:"name"`
	Keywords     []string    `yaml:"keywords"`
	Alternatives []Candidate `yaml:"alternatives"`
}

type catalogueFile struct {
	Categories []Category  `yaml:"categories"`
	Default    []Candidate `yaml:"default"`
}

// Catalogue 分類比對與替代清單，建立後唯讀
type Catalogue struct {
	categories []Category
	defaults   []Candidate
}

// LoadCatalogue 解析內嵌的分類資料
func LoadCatalogue() (*Catalogue, error) {
	return ParseCatalogue(categoriesYAML)
}

// ParseCatalogue 解析 YAML 格式的分類資料
func ParseCatalogue(data []byte) (*Catalogue, error) {
	var file catalogueFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse categories: %w", err)
	}
	if len(file.Default) == 0 {
		return nil, fmt.Errorf("categories: default alternatives are required")
	}

	for i := range file.Categories {
		c := &file.Categories[i]
		if c.Name == "" {
			return nil, fmt.Errorf("category #%d has no name", i)
		}
		for j := range c.Keywords {
			c.Keywords[j] = strings.ToLower(c.Keywords[j])
		}
		if err := checkAlternatives(c.Name, c.Alternatives); err != nil {
			return nil, err
		}
	}
	if err := checkAlternatives(DefaultCategory, file.Default); err != nil {
		return nil, err
	}

	return &Catalogue{
		categories: file.Categories,
		defaults:   file.Default,
	}, nil
}

func checkAlternatives(category string, alts []Candidate) error {
	for i := range alts {
		if strings.TrimSpace(alts[i].Name) == "" || strings.TrimSpace(alts[i].Explanation) == "" {
			return fmt.Errorf("category %s: alternative #%d needs a name and an explanation", category, i)
		}
		alts[i].Origin = OriginCategory
	}
	return nil
}

// Categorize 第一個有關鍵字出現在名稱中的分類，否則為 DefaultCategory
func (c *Catalogue) Categorize(foodName string) string {
	name := strings.ToLower(foodName)
	for _, cat := range c.categories {
		for _, kw := range cat.Keywords {
			if strings.Contains(name, kw) {
				return cat.Name
			}
		}
	}
	return DefaultCategory
}

// Alternatives 分類的替代清單；分類沒有清單時改用預設清單。回傳的是副本
func (c *Catalogue) Alternatives(foodName string, limit int) []Candidate {
	category := c.Categorize(foodName)

	var alts []Candidate
	for _, cat := range c.categories {
		if cat.Name == category {
			alts = cat.Alternatives
			break
		}
	}
	if len(alts) == 0 {
		alts = c.defaults
	}

	if limit > 0 && len(alts) > limit {
		alts = alts[:limit]
	}
	return append([]Candidate(nil), alts...)
}

// Categories 依比對順序的分類名稱
func (c *Catalogue) Categories() []string {
	names := make([]string, 0, len(c.categories)+1)
	for _, cat := range c.categories {
		names = append(names, cat.Name)
	}
	return append(names, DefaultCategory)
}

// GenericAlternatives 連分類清單都無法使用時的最後手段
func GenericAlternatives(foodName string, limit int) []Candidate {
	alts := []Candidate{
		{
			Name:                      "Local Seasonal Produce",
			Explanation:               fmt.Sprintf("Local seasonal produce has a much lower carbon footprint than %s due to reduced transportation emissions.", foodName),
			Impact:                    newMetrics(0.2, 50, 0.2, 0.1, 0.1),
			SustainabilityImprovement: 80,
			SimilarityScore:           50,
			Origin:                    OriginGeneric,
		},
		{
			Name:                      "Plant-Based Alternative",
			Explanation:               fmt.Sprintf("Plant-based foods generally have lower environmental impacts than animal products, using less water and producing fewer greenhouse gases than %s.", foodName),
			Impact:                    newMetrics(0.5, 100, 0.5, 0.2, 0.2),
			SustainabilityImprovement: 70,
			SimilarityScore:           60,
			Origin:                    OriginGeneric,
		},
	}
	if limit > 0 && len(alts) > limit {
		alts = alts[:limit]
	}
	return alts
}
