package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	eastmoneyQuoteURL = "https://push2.eastmoney.com"
	eastmoneyKLineURL = "https://push2his.eastmoney.com"
)

// Endpoints 行情接口地址，留空使用默认地址
type Endpoints struct {
	Sina             string // 新浪实时行情
	Eastmoney        string // 东方财富快照与估值
	EastmoneyHistory string // 东方财富历史K线
}

func (e Endpoints) withDefaults() Endpoints {
	if e.Sina == "" {
		e.Sina = sinaStockURL
	}
	if e.Eastmoney == "" {
		e.Eastmoney = eastmoneyQuoteURL
	}
	if e.EastmoneyHistory == "" {
		e.EastmoneyHistory = eastmoneyKLineURL
	}
	e.Sina = strings.TrimRight(e.Sina, "/")
	e.Eastmoney = strings.TrimRight(e.Eastmoney, "/")
	e.EastmoneyHistory = strings.TrimRight(e.EastmoneyHistory, "/")
	return e
}

// emNumber 东方财富数值字段，停牌或缺失时返回 "-"
type emNumber float64

func (n *emNumber) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "-" || s == "null" {
		*n = 0
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("无法解析数值 %q: %w", s, err)
	}
	*n = emNumber(d.InexactFloat64())
	return nil
}

// secID 转换代码格式: sh600000 -> 1.600000, sz000001 -> 0.000001
func secID(code string) (string, error) {
	if len(code) != 8 {
		return "", fmt.Errorf("股票代码格式错误: %s", code)
	}
	switch code[:2] {
	case "sh":
		return "1." + code[2:], nil
	case "sz", "bj":
		return "0." + code[2:], nil
	}
	return "", fmt.Errorf("未知的股票代码格式: %s", code)
}

// prefixCode 根据东方财富市场标识补全前缀
func prefixCode(market int, num string) string {
	if market == 1 {
		return "sh" + num
	}
	if strings.HasPrefix(num, "4") || strings.HasPrefix(num, "8") || strings.HasPrefix(num, "92") {
		return "bj" + num
	}
	return "sz" + num
}

// getJSON 请求东方财富接口并解码 JSON
func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", "https://quote.eastmoney.com/")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("东方财富返回状态码 %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	return nil
}
