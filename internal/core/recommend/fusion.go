package recommend

import (
	"sort"
	"strings"
)

// Fuse 依序串接候選清單，以名稱（不分大小寫）去重保留先出現者，
// 依改善分數穩定遞減排序後截斷到 limit；limit <= 0 表示不截斷
func Fuse(limit int, lists ...[]Candidate) []Candidate {
	seen := make(map[string]bool)
	merged := make([]Candidate, 0)
	for _, list := range lists {
		for _, c := range list {
			key := strings.ToLower(strings.TrimSpace(c.Name))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, c)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].SustainabilityImprovement > merged[j].SustainabilityImprovement
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// excludeFood 移除與原食物同名（不分大小寫）的候選
func excludeFood(foodName string, cs []Candidate) []Candidate {
	key := strings.ToLower(strings.TrimSpace(foodName))
	out := make([]Candidate, 0, len(cs))
	for _, c := range cs {
		if strings.ToLower(strings.TrimSpace(c.Name)) == key {
			continue
		}
		out = append(out, c)
	}
	return out
}
