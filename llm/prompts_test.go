package llm

import (
	"strings"
	"testing"
	"time"

	"stockpick/model"
)

func sampleTop() []model.ScoredStock {
	return []model.ScoredStock{
		{Record: model.StockRecord{Code: "A", Name: "甲", PE: 10, Price: 105}, ValueScore: 10, TrendScore: 5, Score: 8, Rank: 1},
		{Record: model.StockRecord{Code: "C", Name: "丙", PE: 20, Price: 101}, ValueScore: 5, TrendScore: 1, Score: 3.4, Rank: 2},
		{Record: model.StockRecord{Code: "B", Name: "乙", PE: -2, Price: 100}, ValueScore: 0, TrendScore: 0, Score: 0, Rank: 3},
	}
}

func TestFormatPromptContainsCodesAndScores(t *testing.T) {
	meta := PromptMeta{Market: "all", AsOf: time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC), Total: 3, ValueWeight: 0.6, TrendWeight: 0.4, Window: 20}
	p, err := FormatPrompt(sampleTop(), meta)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	s := string(p)
	for _, want := range []string{"A 甲", "C 丙", "B 乙", "综合评分 8.00", "综合评分 3.40", "综合评分 0.00", "亏损或缺失", "2026-10-16 15:00", "0.60"} {
		if !strings.Contains(s, want) {
			t.Fatalf("prompt missing %q:\n%s", want, s)
		}
	}

	a, c, b := strings.Index(s, "1. A"), strings.Index(s, "2. C"), strings.Index(s, "3. B")
	if a < 0 || !(a < c && c < b) {
		t.Fatalf("stocks not in rank order: a=%d c=%d b=%d", a, c, b)
	}
}

func TestFormatPromptDeterministic(t *testing.T) {
	meta := PromptMeta{Market: "sh", Total: 3, Note: "非交易时段，使用最近收盘数据"}
	p1, _ := FormatPrompt(sampleTop(), meta)
	p2, _ := FormatPrompt(sampleTop(), meta)
	if p1 != p2 {
		t.Fatalf("formatting should be deterministic")
	}
	if !strings.Contains(string(p1), "说明：非交易时段") || !strings.Contains(string(p1), "沪市") {
		t.Fatalf("meta not rendered:\n%s", p1)
	}
}

func TestParsePromptTemplateMalformed(t *testing.T) {
	if _, err := ParsePromptTemplate("{{range .Stocks}"); err == nil {
		t.Fatalf("expected error for malformed template")
	}
}

func TestFormatScore(t *testing.T) {
	cases := map[float64]string{8: "8.00", 3.4000000000000004: "3.40", -50: "-50.00"}
	for in, want := range cases {
		if got := FormatScore(in); got != want {
			t.Fatalf("FormatScore(%v)=%s want %s", in, got, want)
		}
	}
}
