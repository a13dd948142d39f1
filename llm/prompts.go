package llm

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"

	"stockpick/model"
)

// PromptPayload 发送给大模型的提示词
type PromptPayload string

// PromptMeta 提示词中的运行信息
type PromptMeta struct {
	Market      string
	AsOf        time.Time
	Total       int     // 参与评分的股票数
	ValueWeight float64 // 估值权重
	TrendWeight float64 // 趋势权重
	Window      int     // 趋势窗口（交易日）
	Note        string  // 数据时效说明
}

func SystemStockPicker() string {
	return strings.TrimSpace(`
你是A股投资研究助手。请只使用用户给出的数据，不要编造价格、财务指标或新闻。
数据不足时直接说明“未知/需要补充”。语言专业简洁，使用中文。
`)
}

const recommendTemplate = `以下是按多因子评分（估值权重 {{weight .ValueWeight}}，{{.Window}}日趋势权重 {{weight .TrendWeight}}）从 {{.Total}} 只{{market .Market}}股票中选出的前 {{len .Stocks}} 名，数据日期 {{.AsOf.Format "2006-01-02 15:04"}}。
{{- if .Note}}
说明：{{.Note}}
{{- end}}

{{range .Stocks -}}
{{.Rank}}. {{.Record.Code}} {{.Record.Name}}｜综合评分 {{score .Score}}｜估值项 {{score .ValueScore}}｜趋势项 {{score .TrendScore}}%｜最新价 {{price .Record.Price}}｜市盈率-动态 {{pe .Record.PE}}｜市净率 {{price .Record.PB}}{{with .Record.Industry}}｜行业 {{.}}{{end}}
{{end}}
请完成：
1. 从估值、趋势和风险三个角度逐只点评（每只不超过80字）。
2. 给出一个由上述股票组成的组合建议，并说明权重理由。
3. 在回答最后单独输出一段 JSON，格式为 {"portfolio":[{"code":"代码","name":"名称","weight":0.4,"reason":"理由"}]}，weight 之和为 1。
最后一行加一句风险提示：仅供研究参考，不构成投资建议。`

var templateFuncs = template.FuncMap{
	"score":  FormatScore,
	"price":  FormatScore,
	"weight": func(w float64) string { return decimal.NewFromFloat(w).StringFixed(2) },
	"pe": func(pe float64) string {
		if pe <= 0 {
			return "亏损或缺失"
		}
		return FormatScore(pe)
	},
	"market": func(m string) string {
		switch m {
		case "sh":
			return "沪市"
		case "sz":
			return "深市"
		case "gem":
			return "创业板"
		case "star":
			return "科创板"
		case "watchlist":
			return "自选"
		}
		return "A股"
	},
}

// PromptTemplate 提示词模板，模板文本与填充逻辑分离
type PromptTemplate struct {
	tmpl *template.Template
}

// ParsePromptTemplate 解析模板文本
func ParsePromptTemplate(text string) (*PromptTemplate, error) {
	t, err := template.New("recommend").Funcs(templateFuncs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("解析提示词模板失败: %w", err)
	}
	return &PromptTemplate{tmpl: t}, nil
}

var defaultTemplate = mustTemplate(recommendTemplate)

func mustTemplate(text string) *PromptTemplate {
	t, err := ParsePromptTemplate(text)
	if err != nil {
		panic(err)
	}
	return t
}

// Format 按排名顺序填充模板
func (p *PromptTemplate) Format(top []model.ScoredStock, meta PromptMeta) (PromptPayload, error) {
	data := struct {
		PromptMeta
		Stocks []model.ScoredStock
	}{meta, top}

	var sb strings.Builder
	if err := p.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("填充提示词模板失败: %w", err)
	}
	return PromptPayload(sb.String()), nil
}

// FormatPrompt 使用内置模板生成提示词
func FormatPrompt(top []model.ScoredStock, meta PromptMeta) (PromptPayload, error) {
	return defaultTemplate.Format(top, meta)
}

// FormatScore 保留两位小数
func FormatScore(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
