// Package scorer 按固定权重组合估值与趋势因子并排序
package scorer

import (
	"log"
	"math"
	"sort"

	"stockpick/config"
	"stockpick/model"
)

// Scorer 多因子评分器，权重在创建时确定
type Scorer struct {
	w config.Scoring
}

// New 创建评分器，非法参数回退到默认值
func New(w config.Scoring) *Scorer {
	d := config.DefaultConfig.Scoring
	if w.ValueCap <= 0 {
		w.ValueCap = d.ValueCap
	}
	if w.TrendClip <= 0 {
		w.TrendClip = d.TrendClip
	}
	if w.Window < 2 {
		w.Window = d.Window
	}
	return &Scorer{w: w}
}

// Weights 当前使用的评分参数
func (s *Scorer) Weights() config.Scoring {
	return s.w
}

// ValueTerm 估值项：盈利收益率 100/PE，亏损或缺失取下限 0
func (s *Scorer) ValueTerm(pe float64) float64 {
	if pe <= 0 || !finite(pe) {
		return 0
	}
	return clamp(100/pe, 0, s.w.ValueCap)
}

// TrendTerm 趋势项：窗口内首尾收盘价涨跌幅(%)，数据不足取最小值
func (s *Scorer) TrendTerm(closes []float64) float64 {
	if len(closes) > s.w.Window {
		closes = closes[len(closes)-s.w.Window:]
	}
	if len(closes) < 2 {
		return -s.w.TrendClip
	}
	first, last := closes[0], closes[len(closes)-1]
	if first <= 0 || !finite(first) || !finite(last) {
		return -s.w.TrendClip
	}
	return clamp((last/first-1)*100, -s.w.TrendClip, s.w.TrendClip)
}

// Score 计算评分并按分数降序排列，分数相同保持输入顺序
func (s *Scorer) Score(records []model.StockRecord) ([]model.ScoredStock, error) {
	scored := make([]model.ScoredStock, 0, len(records))
	for i, rec := range records {
		if rec.Code == "" {
			return nil, model.Stagef(model.ErrScoring, "第%d条记录缺少股票代码", i+1)
		}
		v := s.ValueTerm(rec.PE)
		t := s.TrendTerm(rec.Closes)
		scored = append(scored, model.ScoredStock{
			Record:     rec,
			ValueScore: v,
			TrendScore: t,
			Score:      s.w.ValueWeight*v + s.w.TrendWeight*t,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	n := len(scored)
	for i := range scored {
		scored[i].Rank = i + 1
		scored[i].RankPct = float64(i+1) / float64(n)
	}

	if n > 0 {
		log.Printf("[评分] %d 只股票, 最高 %s %.2f", n, scored[0].Record.Code, scored[0].Score)
	}
	return scored, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
