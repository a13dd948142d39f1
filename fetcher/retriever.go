package fetcher

import (
	"context"
	"fmt"
	"log"
	"time"

	"stockpick/model"
)

// Query 数据获取条件
type Query struct {
	Market string   // 板块: all/sh/sz/gem/star
	Codes  []string // 自选股，非空时忽略 Market
}

// Retriever 组合快照、行情、估值与历史数据
type Retriever struct {
	spot         *SpotFetcher
	quotes       *StockFetcher
	fundamentals *FundamentalsFetcher
	history      HistorySource

	candidates  int
	historyDays int
}

// NewHistorySource 按名称创建历史数据源
func NewHistorySource(name string, ep Endpoints) (HistorySource, error) {
	switch name {
	case "", "eastmoney":
		k := NewKLineFetcher()
		k.baseURL = ep.withDefaults().EastmoneyHistory
		return k, nil
	case "yahoo":
		return NewYahooHistory(), nil
	}
	return nil, fmt.Errorf("未知的历史数据源: %s", name)
}

// NewRetriever 创建数据获取器
func NewRetriever(candidates, historyDays int, history HistorySource, ep Endpoints) *Retriever {
	ep = ep.withDefaults()
	if history == nil {
		k := NewKLineFetcher()
		k.baseURL = ep.EastmoneyHistory
		history = k
	}
	r := &Retriever{
		spot:         NewSpotFetcher(),
		quotes:       NewStockFetcher(),
		fundamentals: NewFundamentalsFetcher(),
		history:      history,
		candidates:   candidates,
		historyDays:  historyDays,
	}
	r.spot.baseURL = ep.Eastmoney
	r.quotes.baseURL = ep.Sina
	r.fundamentals.baseURL = ep.Eastmoney
	return r
}

// Retrieve 获取候选股票记录
// 列表或行情接口失败、结果为空时返回 ErrRetrieval；单只股票的历史数据失败只记录日志
func (r *Retriever) Retrieve(ctx context.Context, q Query) ([]model.StockRecord, error) {
	start := time.Now()

	var (
		records []model.StockRecord
		err     error
	)
	if len(q.Codes) > 0 {
		log.Printf("[数据] 拉取自选股行情: %d 只", len(q.Codes))
		records, err = r.watchlist(ctx, q.Codes)
	} else {
		log.Printf("[数据] 拉取板块快照: market=%s candidates=%d", q.Market, r.candidates)
		records, err = r.spot.FetchSpot(ctx, q.Market, r.candidates)
	}
	if err != nil {
		return nil, model.NewStageError(model.ErrRetrieval, err)
	}
	if len(records) == 0 {
		return nil, model.Stagef(model.ErrRetrieval, "未获取到任何股票数据")
	}

	// 顺序拉取历史K线
	missing := 0
	for i := range records {
		closes, err := r.history.Closes(ctx, records[i].Code, r.historyDays)
		if err != nil {
			if ctx.Err() != nil {
				return nil, model.NewStageError(model.ErrRetrieval, ctx.Err())
			}
			log.Printf("[数据] %s 历史数据获取失败: %v", records[i].Code, err)
			missing++
			continue
		}
		records[i].Closes = closes
	}

	log.Printf("[数据] 完成: %d 只股票, 缺少历史 %d 只, 耗时 %v", len(records), missing, time.Since(start).Round(time.Millisecond))
	return records, nil
}

// watchlist 新浪行情 + 东方财富估值
func (r *Retriever) watchlist(ctx context.Context, codes []string) ([]model.StockRecord, error) {
	quotes, err := r.quotes.Fetch(ctx, codes)
	if err != nil {
		return nil, err
	}
	if len(quotes) < len(codes) {
		log.Printf("[数据] 请求 %d 只, 新浪返回 %d 只", len(codes), len(quotes))
	}

	records := make([]model.StockRecord, 0, len(quotes))
	for _, q := range quotes {
		rec := model.StockRecord{
			Code:      q.Code,
			Name:      q.Name,
			Price:     q.LastPrice(),
			ChangePct: q.ChangePercent(),
			AsOf:      q.QuotedAt(),
		}
		fund, err := r.fundamentals.Fetch(ctx, q.Code)
		if err != nil {
			log.Printf("[数据] %s 估值数据获取失败: %v", q.Code, err)
		} else {
			rec.PE = fund.PE
			rec.PB = fund.PB
			rec.MarketCap = fund.MarketCap
			rec.Industry = fund.Industry
			if rec.Name == "" {
				rec.Name = fund.Name
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
