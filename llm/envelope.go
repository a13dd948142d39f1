package llm

import (
	"encoding/json"
	"strings"
	"time"

	"stockpick/model"
)

// chatCompletion chat/completions 响应信封
type chatCompletion struct {
	Model   string `json:"model"`
	Choices []struct {
		Message *struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ParseCompletion 解析响应信封，取第一个 choice 的文本
// JSON 非法、choices 为空或缺少文本时返回 ErrParse，不返回部分结果
func ParseCompletion(body []byte) (model.AnalysisResult, error) {
	var env chatCompletion
	if err := json.Unmarshal(body, &env); err != nil {
		return model.AnalysisResult{}, model.Stagef(model.ErrParse, "响应不是合法 JSON: %v", err)
	}
	if len(env.Choices) == 0 {
		return model.AnalysisResult{}, model.Stagef(model.ErrParse, "响应中没有 choices")
	}
	msg := env.Choices[0].Message
	if msg == nil || msg.Content == nil || strings.TrimSpace(*msg.Content) == "" {
		return model.AnalysisResult{}, model.Stagef(model.ErrParse, "响应中缺少文本内容")
	}

	return model.AnalysisResult{
		Text:        *msg.Content,
		Model:       env.Model,
		Portfolio:   ExtractPortfolio(*msg.Content),
		GeneratedAt: time.Now(),
	}, nil
}
