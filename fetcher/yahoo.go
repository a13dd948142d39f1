package fetcher

import (
	"context"
	"fmt"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
)

// barIter chart.Iter 的迭代方法
type barIter interface {
	Next() bool
	Bar() *finance.ChartBar
	Err() error
}

// YahooHistory 雅虎财经历史数据源
type YahooHistory struct{}

// NewYahooHistory 创建雅虎历史数据源
func NewYahooHistory() *YahooHistory {
	return &YahooHistory{}
}

// YahooSymbol 转换代码格式: sh600519 -> 600519.SS, sz000001 -> 000001.SZ
func YahooSymbol(code string) (string, error) {
	if len(code) != 8 {
		return "", fmt.Errorf("股票代码格式错误: %s", code)
	}
	switch code[:2] {
	case "sh":
		return code[2:] + ".SS", nil
	case "sz":
		return code[2:] + ".SZ", nil
	case "bj":
		return code[2:] + ".BJ", nil
	}
	return "", fmt.Errorf("未知的股票代码格式: %s", code)
}

// Closes 实现 HistorySource
func (y *YahooHistory) Closes(ctx context.Context, code string, days int) ([]float64, error) {
	symbol, err := YahooSymbol(code)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 日历日按交易日两倍往前取，覆盖节假日
	end := time.Now()
	start := end.AddDate(0, 0, -days*2-10)
	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	closes, err := collectCloses(ctx, chart.Get(params))
	if err != nil {
		return nil, fmt.Errorf("获取 %s 雅虎历史数据失败: %w", symbol, err)
	}

	if len(closes) > days {
		closes = closes[len(closes)-days:]
	}
	return closes, nil
}

// collectCloses 逐条读取收盘价，每条之间检查 ctx
func collectCloses(ctx context.Context, iter barIter) ([]float64, error) {
	var closes []float64
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bar := iter.Bar()
		if bar == nil || bar.Close.IsZero() {
			continue
		}
		closes = append(closes, bar.Close.InexactFloat64())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return closes, nil
}
