package model

import "time"

var quoteZone = time.FixedZone("CST", 8*3600)

// StockQuote 新浪实时报价（自选股模式下用于补全名称和现价）
type StockQuote struct {
	Code      string    `json:"code"`      // 股票代码 (sh600000, sz000001)
	Name      string    `json:"name"`      // 股票名称
	PreClose  float64   `json:"pre_close"` // 昨收
	Price     float64   `json:"price"`     // 当前价
	Date      string    `json:"date"`      // 行情日期
	Time      string    `json:"time"`      // 行情时间
	UpdatedAt time.Time `json:"updated_at"`
}

// QuotedAt 行情时间（北京时间），无法解析时回退到拉取时间
func (q *StockQuote) QuotedAt() time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", q.Date+" "+q.Time, quoteZone)
	if err != nil {
		return q.UpdatedAt
	}
	return t
}

// ChangePercent 计算涨跌幅
func (q *StockQuote) ChangePercent() float64 {
	if q.PreClose == 0 {
		return 0
	}
	return (q.Price - q.PreClose) / q.PreClose * 100
}

// Suspended 停牌或尚未开盘时新浪返回的现价为 0
func (q *StockQuote) Suspended() bool {
	return q.Price == 0
}

// LastPrice 停牌时回退到昨收
func (q *StockQuote) LastPrice() float64 {
	if q.Suspended() {
		return q.PreClose
	}
	return q.Price
}
