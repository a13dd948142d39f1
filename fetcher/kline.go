package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// KLine K线数据
type KLine struct {
	Date   string          `json:"date"`   // 日期
	Open   decimal.Decimal `json:"open"`   // 开盘价
	Close  decimal.Decimal `json:"close"`  // 收盘价
	High   decimal.Decimal `json:"high"`   // 最高价
	Low    decimal.Decimal `json:"low"`    // 最低价
	Volume int64           `json:"volume"` // 成交量
}

// HistorySource 历史收盘价数据源
type HistorySource interface {
	// Closes 返回最近 days 个交易日按时间正序的收盘价
	Closes(ctx context.Context, code string, days int) ([]float64, error)
}

// KLineFetcher K线数据拉取器（东方财富，前复权）
type KLineFetcher struct {
	client  *http.Client
	baseURL string
}

// NewKLineFetcher 创建K线数据拉取器
func NewKLineFetcher() *KLineFetcher {
	return &KLineFetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: eastmoneyKLineURL,
	}
}

// FetchStockKLine 获取股票日K线数据
// code: 股票代码（如 sh600000, sz000001）
// days: 获取天数
func (f *KLineFetcher) FetchStockKLine(ctx context.Context, code string, days int) ([]KLine, error) {
	secid, err := secID(code)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf(
		"%s/api/qt/stock/kline/get?secid=%s&fields1=f1,f2,f3,f4,f5,f6&fields2=f51,f52,f53,f54,f55,f56,f57&klt=101&fqt=1&end=20500101&lmt=%d",
		f.baseURL, secid, days,
	)

	var result struct {
		Data *struct {
			Klines []string `json:"klines"`
		} `json:"data"`
	}
	if err := getJSON(ctx, f.client, url, &result); err != nil {
		return nil, err
	}
	if result.Data == nil {
		return nil, fmt.Errorf("未获取到 %s 的K线数据", code)
	}

	return parseStockKLine(result.Data.Klines)
}

// Closes 实现 HistorySource
func (f *KLineFetcher) Closes(ctx context.Context, code string, days int) ([]float64, error) {
	klines, err := f.FetchStockKLine(ctx, code, days)
	if err != nil {
		return nil, err
	}
	closes := make([]float64, 0, len(klines))
	for _, k := range klines {
		closes = append(closes, k.Close.InexactFloat64())
	}
	return closes, nil
}

// parseStockKLine 解析股票K线数据
// 格式: 日期,开盘,收盘,最高,最低,成交量,成交额
func parseStockKLine(lines []string) ([]KLine, error) {
	klines := make([]KLine, 0, len(lines))
	for _, line := range lines {
		parts := strings.Split(line, ",")
		if len(parts) < 6 {
			continue
		}

		k := KLine{Date: parts[0], Volume: parseInt(parts[5])}
		var err error
		if k.Open, err = decimal.NewFromString(parts[1]); err != nil {
			return nil, fmt.Errorf("K线 %s 开盘价非法: %w", parts[0], err)
		}
		if k.Close, err = decimal.NewFromString(parts[2]); err != nil {
			return nil, fmt.Errorf("K线 %s 收盘价非法: %w", parts[0], err)
		}
		if k.High, err = decimal.NewFromString(parts[3]); err != nil {
			return nil, fmt.Errorf("K线 %s 最高价非法: %w", parts[0], err)
		}
		if k.Low, err = decimal.NewFromString(parts[4]); err != nil {
			return nil, fmt.Errorf("K线 %s 最低价非法: %w", parts[0], err)
		}
		klines = append(klines, k)
	}
	return klines, nil
}

// parseInt 解析整数
func parseInt(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
