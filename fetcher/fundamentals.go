package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Fundamentals 单只股票的估值数据
type Fundamentals struct {
	Code      string
	Name      string
	PE        float64 // 市盈率(动)
	PB        float64
	MarketCap float64
	Industry  string
}

// FundamentalsFetcher 个股估值拉取器（东方财富 stock/get）
type FundamentalsFetcher struct {
	client  *http.Client
	baseURL string
}

// NewFundamentalsFetcher 创建估值拉取器
func NewFundamentalsFetcher() *FundamentalsFetcher {
	return &FundamentalsFetcher{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: eastmoneyQuoteURL,
	}
}

// Fetch 获取单只股票估值
// f57 代码, f58 名称, f162 市盈率(动), f167 市净率, f116 总市值, f127 行业
func (f *FundamentalsFetcher) Fetch(ctx context.Context, code string) (*Fundamentals, error) {
	secid, err := secID(code)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/qt/stock/get?secid=%s&fltt=2&invt=2&fields=f57,f58,f162,f167,f116,f127", f.baseURL, secid)
	var resp struct {
		Data *struct {
			Code      string   `json:"f57"`
			Name      string   `json:"f58"`
			PE        emNumber `json:"f162"`
			PB        emNumber `json:"f167"`
			MarketCap emNumber `json:"f116"`
			Industry  string   `json:"f127"`
		} `json:"data"`
	}
	if err := getJSON(ctx, f.client, url, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("未获取到 %s 的估值数据", code)
	}

	return &Fundamentals{
		Code:      code,
		Name:      resp.Data.Name,
		PE:        float64(resp.Data.PE),
		PB:        float64(resp.Data.PB),
		MarketCap: float64(resp.Data.MarketCap),
		Industry:  resp.Data.Industry,
	}, nil
}
