package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"stockpick/model"
)

func sampleRecommendation() *model.Recommendation {
	ranked := []model.ScoredStock{
		{Record: model.StockRecord{Code: "sh600519", Name: "贵州茅台", Price: 1500, PE: 25, MarketCap: 1.884e12, Industry: "酿酒行业"}, Score: 8, Rank: 1, RankPct: 0.5},
		{Record: model.StockRecord{Code: "sz000001", Name: "平安<银行>", PE: -1}, Score: 1.5, Rank: 2, RankPct: 1},
	}
	return &model.Recommendation{
		Market:     "all",
		Note:       "非交易时段，数据截至 2026-10-16 收盘",
		Ranked:     ranked,
		Industries: model.GroupByIndustry(ranked),
		Top:        ranked[:1],
		Prompt:     "prompt",
		Analysis: model.AnalysisResult{
			Text:      "推荐贵州茅台",
			Model:     "qwen-plus",
			Portfolio: []model.Pick{{Code: "sh600519", Weight: 1, Reason: "龙头"}},
		},
		GeneratedAt: time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC),
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.json")
	if err := WriteJSON(path, sampleRecommendation()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got struct {
		Version    int                 `json:"version"`
		Market     string              `json:"market"`
		Ranked     []model.ScoredStock `json:"ranked"`
		Disclaimer string              `json:"disclaimer"`
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Version != 1 || got.Market != "all" || len(got.Ranked) != 2 || got.Disclaimer == "" {
		t.Fatalf("unexpected report: %+v", got)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %d entries", len(entries))
	}
}

func TestWriteHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	if err := WriteHTML(path, sampleRecommendation()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	html := string(b)
	for _, want := range []string{"贵州茅台", "8.00", "18840.0亿", "亏损/缺失", "推荐贵州茅台", "100%", "qwen-plus", Disclaimer, "平安&lt;银行&gt;"} {
		if !strings.Contains(html, want) {
			t.Fatalf("html missing %q", want)
		}
	}
}

func TestWriteHTMLIndustrySection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	if err := WriteHTML(path, sampleRecommendation()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	html := string(b)
	i := strings.Index(html, "行业分布（共 2 个行业）")
	if i < 0 {
		t.Fatalf("html missing industry section")
	}
	section := html[i:]
	for _, want := range []string{"<td>酿酒行业</td><td>1</td><td>sh600519 贵州茅台</td>", "<td>" + model.OtherIndustry + "</td><td>1</td>", "<td>1.50</td>"} {
		if !strings.Contains(section, want) {
			t.Fatalf("industry section missing %q", want)
		}
	}

	rec := sampleRecommendation()
	rec.Industries = nil
	if err := WriteHTML(path, rec); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	b, _ = os.ReadFile(path)
	if strings.Contains(string(b), "行业分布") {
		t.Fatalf("industry section should be omitted when empty")
	}
}

func TestWriteJSONIncludesIndustries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := WriteJSON(path, sampleRecommendation()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got struct {
		Industries []model.IndustryGroup `json:"industries"`
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got.Industries) != 2 || got.Industries[0].Industry != "酿酒行业" || got.Industries[0].Best.Record.Code != "sh600519" {
		t.Fatalf("unexpected industries: %+v", got.Industries)
	}
}

func TestEmptyPathIsNoop(t *testing.T) {
	if err := WriteJSON("", sampleRecommendation()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}
