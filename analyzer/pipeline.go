package analyzer

import (
	"context"
	"time"

	"stockpick/fetcher"
	"stockpick/llm"
	"stockpick/model"
	"stockpick/trading"
)

// Retriever 数据获取
type Retriever interface {
	Retrieve(ctx context.Context, q fetcher.Query) ([]model.StockRecord, error)
}

// Ranker 评分排序
type Ranker interface {
	Score(records []model.StockRecord) ([]model.ScoredStock, error)
}

// Weights 写入提示词的评分参数
type Weights struct {
	ValueWeight float64
	TrendWeight float64
	Window      int
}

// Pipeline 数据获取 -> 评分 -> 分析，同步顺序执行
type Pipeline struct {
	retriever Retriever
	ranker    Ranker
	analyzer  *Analyzer
	weights   Weights
	now       func() time.Time
}

// NewPipeline 创建流水线
func NewPipeline(r Retriever, s Ranker, a *Analyzer, w Weights) *Pipeline {
	return &Pipeline{retriever: r, ranker: s, analyzer: a, weights: w, now: time.Now}
}

// WithTopN 返回使用不同 N 的流水线副本，其余组件共享
func (p *Pipeline) WithTopN(n int) *Pipeline {
	if n <= 0 || n == p.analyzer.topN {
		return p
	}
	cp := *p
	cp.analyzer = New(p.analyzer.llm, n)
	return &cp
}

// Run 执行一次完整推荐，任一阶段失败即返回
func (p *Pipeline) Run(ctx context.Context, q fetcher.Query) (*model.Recommendation, error) {
	now := p.now()

	records, err := p.retriever.Retrieve(ctx, q)
	if err != nil {
		return nil, err
	}

	ranked, err := p.ranker.Score(records)
	if err != nil {
		return nil, err
	}

	market := q.Market
	if len(q.Codes) > 0 {
		market = "watchlist"
	}
	note := trading.FreshnessNote(now)
	if len(q.Codes) > 0 {
		if at := latestQuote(ranked); !at.IsZero() {
			note += "，" + trading.QuoteTimeNote(at)
		}
	}
	res, err := p.analyzer.Analyze(ctx, ranked, llm.PromptMeta{
		Market:      market,
		AsOf:        now,
		Total:       len(ranked),
		ValueWeight: p.weights.ValueWeight,
		TrendWeight: p.weights.TrendWeight,
		Window:      p.weights.Window,
		Note:        note,
	})
	if err != nil {
		return nil, err
	}

	return &model.Recommendation{
		Market:      market,
		Codes:       q.Codes,
		Note:        note,
		Ranked:      ranked,
		Industries:  model.GroupByIndustry(ranked),
		Top:         res.Top,
		Prompt:      string(res.Prompt),
		Analysis:    res.Analysis,
		GeneratedAt: now,
	}, nil
}

// latestQuote 自选股中最新的行情时间
func latestQuote(ranked []model.ScoredStock) time.Time {
	var latest time.Time
	for _, s := range ranked {
		if s.Record.AsOf.After(latest) {
			latest = s.Record.AsOf
		}
	}
	return latest
}

// Recommend 按指定 N 执行一次推荐
func (p *Pipeline) Recommend(ctx context.Context, q fetcher.Query, topN int) (*model.Recommendation, error) {
	return p.WithTopN(topN).Run(ctx, q)
}
