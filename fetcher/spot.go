package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"stockpick/model"
)

// 板块对应的东方财富 fs 过滤参数
var marketFilters = map[string]string{
	"all":  "m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23",
	"sh":   "m:1+t:2,m:1+t:23",
	"sz":   "m:0+t:6,m:0+t:80",
	"gem":  "m:0+t:80",
	"star": "m:1+t:23",
}

// 接口单页上限
const spotPageSize = 100

// spotRow clist 单行
// f12 代码, f13 市场, f14 名称, f2 最新价, f3 涨跌幅, f9 市盈率(动), f23 市净率, f20 总市值, f100 行业
type spotRow struct {
	Code      string   `json:"f12"`
	Market    int      `json:"f13"`
	Name      string   `json:"f14"`
	Price     emNumber `json:"f2"`
	ChangePct emNumber `json:"f3"`
	PE        emNumber `json:"f9"`
	PB        emNumber `json:"f23"`
	MarketCap emNumber `json:"f20"`
	Industry  string   `json:"f100"`
}

type spotResponse struct {
	Data *struct {
		Total int       `json:"total"`
		Diff  []spotRow `json:"diff"`
	} `json:"data"`
}

// SpotFetcher A股快照拉取器（东方财富）
type SpotFetcher struct {
	client  *http.Client
	baseURL string
}

// NewSpotFetcher 创建快照拉取器
func NewSpotFetcher() *SpotFetcher {
	return &SpotFetcher{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: eastmoneyQuoteURL,
	}
}

// FetchSpot 按总市值降序拉取板块内前 limit 只股票的快照
func (f *SpotFetcher) FetchSpot(ctx context.Context, market string, limit int) ([]model.StockRecord, error) {
	fs, ok := marketFilters[market]
	if !ok {
		return nil, fmt.Errorf("未知的市场板块: %s", market)
	}
	if limit <= 0 {
		return nil, nil
	}

	now := time.Now()
	size := min(limit, spotPageSize)
	var records []model.StockRecord
	for page := 1; len(records) < limit; page++ {
		url := fmt.Sprintf(
			"%s/api/qt/clist/get?pn=%d&pz=%d&po=1&np=1&fltt=2&invt=2&fid=f20&fs=%s&fields=f12,f13,f14,f2,f3,f9,f23,f20,f100",
			f.baseURL, page, size, fs,
		)

		var resp spotResponse
		if err := getJSON(ctx, f.client, url, &resp); err != nil {
			return nil, fmt.Errorf("拉取快照第%d页失败: %w", page, err)
		}
		if resp.Data == nil || len(resp.Data.Diff) == 0 {
			break
		}

		for _, row := range resp.Data.Diff {
			if row.Code == "" || float64(row.Price) <= 0 {
				continue // 停牌
			}
			records = append(records, model.StockRecord{
				Code:      prefixCode(row.Market, row.Code),
				Name:      row.Name,
				Price:     float64(row.Price),
				ChangePct: float64(row.ChangePct),
				PE:        float64(row.PE),
				PB:        float64(row.PB),
				MarketCap: float64(row.MarketCap),
				Industry:  row.Industry,
				AsOf:      now,
			})
		}
		if page*size >= resp.Data.Total {
			break
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].MarketCap > records[j].MarketCap
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
