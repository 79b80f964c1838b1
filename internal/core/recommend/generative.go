package recommend

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"food-sustainability/internal/core/ai"
	"food-sustainability/internal/core/impact"
	"food-sustainability/internal/pkg/common"

	"go.uber.org/zap"
)

// 生成式候選的預設分數
const (
	generativeImprovement = 70.0
	generativeSimilarity  = 60.0
	maxCandidateName      = 60
	maxCandidateWords     = 5
)

var (
	markdownChars  = regexp.MustCompile("[*#_\"`]")
	numberedPrefix = regexp.MustCompile(`^\d{1,2}[.)]\s+`)
)

// GenerativeProducer 以生成式文字服務產生候選；任何失敗都視為沒有候選
type GenerativeProducer struct {
	generator ai.Generator
	timeout   time.Duration
}

// NewGenerativeProducer 創建生成式產生器；generator 為 nil 時回傳 nil
func NewGenerativeProducer(generator ai.Generator, timeout time.Duration) *GenerativeProducer {
	if generator == nil {
		return nil
	}
	return &GenerativeProducer{
		generator: generator,
		timeout:   timeout,
	}
}

// PromptInput 提示詞需要的原食物資訊
type PromptInput struct {
	Food        string
	Type        string
	Description string
	Metrics     impact.Metrics
	Limit       int
}

// Produce 呼叫生成式服務並解析候選
func (p *GenerativeProducer) Produce(ctx context.Context, in PromptInput) []Candidate {
	if p == nil {
		return nil
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	resp, err := p.generator.Generate(ctx, BuildPrompt(in))
	if err != nil {
		common.LogWarn("生成式推薦失敗，改用分類推薦",
			zap.String("food", in.Food),
			zap.Error(err),
		)
		return nil
	}

	candidates := ParseCandidates(resp.Text, in.Food, in.Limit)
	if len(candidates) == 0 {
		common.LogWarn("生成式回應無法解析出候選", zap.String("food", in.Food))
	}
	return candidates
}

// BuildPrompt 產生替代食物的提示詞
func BuildPrompt(in PromptInput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Food Item: %s\n", in.Food)
	fmt.Fprintf(&sb, "Food Type: %s\n", in.Type)
	fmt.Fprintf(&sb, "Description: %s\n\n", in.Description)
	sb.WriteString("Environmental impacts:\n")
	fmt.Fprintf(&sb, "- Carbon footprint: %g kg CO2/kg\n", in.Metrics.Carbon)
	fmt.Fprintf(&sb, "- Water usage: %g L/kg\n", in.Metrics.Water)
	fmt.Fprintf(&sb, "- Energy usage: %g MJ/kg\n", in.Metrics.Energy)
	fmt.Fprintf(&sb, "- Waste: %g kg\n", in.Metrics.Waste)
	fmt.Fprintf(&sb, "- Deforestation risk: %g (0-10 scale)\n\n", in.Metrics.Deforestation)
	fmt.Fprintf(&sb, "Suggest %d sustainable alternatives to %s that reduce these environmental impacts.\n", in.Limit, in.Food)
	sb.WriteString("For each alternative, provide a detailed explanation of its environmental benefits.\n")
	sb.WriteString(`FORMAT STRICTLY AS: "Food Name - Explanation"`)
	return sb.String()
}

// ParseCandidates 從自由文字解析 "名稱 - 說明" 行，容忍編號、項目符號與 markdown 符號；
// 無法解析出名稱與說明的行會被丟棄
func ParseCandidates(text, originalFood string, limit int) []Candidate {
	clean := markdownChars.ReplaceAllString(text, "")

	var out []Candidate
	for _, line := range strings.Split(clean, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.ContainsFunc(line, unicode.IsLetter) {
			continue
		}

		line = numberedPrefix.ReplaceAllString(line, "")
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "• ")

		name, explanation, ok := splitCandidateLine(line)
		if !ok {
			continue
		}

		out = append(out, Candidate{
			Name:                      name,
			Explanation:               explanation,
			Impact:                    estimateCandidateMetrics(explanation, originalFood),
			SustainabilityImprovement: generativeImprovement,
			SimilarityScore:           generativeSimilarity,
			Origin:                    OriginGenerative,
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func splitCandidateLine(line string) (string, string, bool) {
	var name, explanation string
	var found bool
	for _, sep := range []string{" - ", " – ", ": "} {
		if name, explanation, found = strings.Cut(line, sep); found {
			break
		}
	}
	if !found {
		return "", "", false
	}

	name = strings.TrimSpace(name)
	explanation = strings.TrimSpace(explanation)
	if name == "" || explanation == "" || len([]rune(name)) > maxCandidateName {
		return "", "", false
	}
	// 名稱是句子時多半是開場白，例如 "Sure! Here are three alternatives: ..."
	if strings.ContainsAny(name, "!?") || strings.HasSuffix(name, ".") || len(strings.Fields(name)) > maxCandidateWords {
		return "", "", false
	}
	return name, explanation, true
}

// estimateCandidateMetrics 生成式候選沒有實測指標，依原食物與說明文字套用固定估計值
func estimateCandidateMetrics(explanation, originalFood string) impact.Metrics {
	text := strings.ToLower(explanation)
	switch original := strings.ToLower(strings.TrimSpace(originalFood)); {
	case original == "beef" || original == "lamb" || original == "pork":
		return newMetrics(0.2, 50, 0.2, 0.05, 0.1)
	case common.ContainsAny(text, "plant", "vegan", "vegetable"):
		return newMetrics(0.3, 70, 0.2, 0.05, 0.1)
	default:
		return newMetrics(0.5, 100, 0.3, 0.1, 0.2)
	}
}
