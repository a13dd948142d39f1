package model

import "time"

// StockRecord 单只股票的快照：行情、估值与近期收盘价序列
type StockRecord struct {
	Code      string    `json:"code"`       // 带交易所前缀的代码 (sh600519)
	Name      string    `json:"name"`       // 股票名称
	Price     float64   `json:"price"`      // 最新价
	ChangePct float64   `json:"change_pct"` // 涨跌幅(%)
	PE        float64   `json:"pe"`         // 市盈率-动态，<=0 表示亏损或缺失
	PB        float64   `json:"pb"`         // 市净率
	MarketCap float64   `json:"market_cap"` // 总市值（元）
	Industry  string    `json:"industry,omitempty"`
	Closes    []float64 `json:"closes,omitempty"` // 按时间正序的收盘价
	AsOf      time.Time `json:"as_of"`
}

// HasHistory 是否有可用的历史收盘价
func (r StockRecord) HasHistory() bool {
	return len(r.Closes) > 0
}

// ScoredStock 评分后的股票
type ScoredStock struct {
	Record     StockRecord `json:"record"`
	ValueScore float64     `json:"value_score"` // 估值项（盈利收益率，%）
	TrendScore float64     `json:"trend_score"` // 趋势项（窗口涨跌幅，%）
	Score      float64     `json:"score"`
	Rank       int         `json:"rank"`     // 从 1 开始
	RankPct    float64     `json:"rank_pct"` // rank / n，越小越靠前
}

// Pick 模型建议的组合成分
type Pick struct {
	Code   string  `json:"code"`
	Name   string  `json:"name,omitempty"`
	Weight float64 `json:"weight"`
	Reason string  `json:"reason,omitempty"`
}

// AnalysisResult 大模型返回的分析文本
type AnalysisResult struct {
	Text        string    `json:"text"`
	Model       string    `json:"model,omitempty"`
	Portfolio   []Pick    `json:"portfolio,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// TopN 取排名前 n 的股票；n 超过长度时返回全部
func TopN(ranked []ScoredStock, n int) []ScoredStock {
	if n <= 0 || n >= len(ranked) {
		return append([]ScoredStock(nil), ranked...)
	}
	return append([]ScoredStock(nil), ranked[:n]...)
}

// Recommendation 一次完整运行的结果
type Recommendation struct {
	Market      string          `json:"market"`
	Codes       []string        `json:"codes,omitempty"`
	Note        string          `json:"note,omitempty"` // 数据时效说明
	Ranked      []ScoredStock   `json:"ranked"`
	Industries  []IndustryGroup `json:"industries,omitempty"` // 按行业汇总
	Top         []ScoredStock   `json:"top"`
	Prompt      string          `json:"prompt"`
	Analysis    AnalysisResult  `json:"analysis"`
	GeneratedAt time.Time       `json:"generated_at"`
}
