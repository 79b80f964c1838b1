package impact

import (
	"strings"
	"unicode"
)

// Annotation 從描述文字擷取的成分與認證
type Annotation struct {
	Ingredients    []string
	Certifications []string
}

// Annotator 描述文字標註器
type Annotator interface {
	Annotate(text string) Annotation
}

// KeywordAnnotator 以關鍵字擷取認證詞，其餘有意義的詞視為成分
type KeywordAnnotator struct {
	certifications []string
	stopwords      map[string]bool
}

// NewKeywordAnnotator 創建關鍵字標註器
func NewKeywordAnnotator() *KeywordAnnotator {
	return &KeywordAnnotator{
		certifications: []string{
			"organic", "sustainable", "free-range", "grass-fed", "fair trade", "rainforest alliance",
		},
		stopwords: map[string]bool{
			"a": true, "an": true, "the": true, "and": true, "or": true, "of": true,
			"from": true, "with": true, "for": true, "in": true, "based": true,
			"plant-based": true, "grown": true, "locally": true, "conventional": true,
		},
	}
}

// Annotate 實作 Annotator
func (a *KeywordAnnotator) Annotate(text string) Annotation {
	lower := strings.ToLower(text)
	out := Annotation{Ingredients: []string{}, Certifications: []string{}}

	for _, cert := range a.certifications {
		if strings.Contains(lower, cert) {
			out.Certifications = append(out.Certifications, cert)
			lower = strings.ReplaceAll(lower, cert, " ")
		}
	}

	seen := make(map[string]bool)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	})
	for _, w := range words {
		w = strings.Trim(w, "-")
		if len(w) < 3 || a.stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out.Ingredients = append(out.Ingredients, w)
	}
	return out
}
