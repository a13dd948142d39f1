// Package analyzer 串联提示词生成、大模型调用与响应解析
package analyzer

import (
	"context"
	"fmt"
	"log"
	"time"

	"stockpick/llm"
	"stockpick/model"
)

// Completer 大模型调用
type Completer interface {
	Complete(ctx context.Context, prompt llm.PromptPayload) ([]byte, error)
}

// Result 分析阶段输出
type Result struct {
	Top      []model.ScoredStock
	Prompt   llm.PromptPayload
	Analysis model.AnalysisResult
}

// Analyzer 分析流水线：模板填充 -> 大模型调用 -> 响应解析，各执行一次
type Analyzer struct {
	llm  Completer
	topN int
}

// New 创建分析器
func New(c Completer, topN int) *Analyzer {
	if topN <= 0 {
		topN = 3
	}
	return &Analyzer{llm: c, topN: topN}
}

// Analyze 对排名前 N 的股票生成分析
func (a *Analyzer) Analyze(ctx context.Context, ranked []model.ScoredStock, meta llm.PromptMeta) (*Result, error) {
	top := model.TopN(ranked, a.topN)
	if len(top) == 0 {
		return nil, model.Stagef(model.ErrScoring, "没有可分析的股票")
	}
	if meta.Total == 0 {
		meta.Total = len(ranked)
	}

	prompt, err := llm.FormatPrompt(top, meta)
	if err != nil {
		return nil, fmt.Errorf("生成提示词失败: %w", err)
	}

	log.Printf("[AI] 请求大模型: top=%d prompt=%d字", len(top), len([]rune(string(prompt))))
	start := time.Now()
	body, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	res, err := llm.ParseCompletion(body)
	if err != nil {
		return nil, err
	}
	log.Printf("[AI] 完成: %d字, 组合 %d 只, 耗时 %v", len([]rune(res.Text)), len(res.Portfolio), time.Since(start).Round(time.Millisecond))

	return &Result{Top: top, Prompt: prompt, Analysis: res}, nil
}
