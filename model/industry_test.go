package model

import "testing"

func TestGroupByIndustry(t *testing.T) {
	ranked := []ScoredStock{
		{Record: StockRecord{Code: "sh600519", Industry: "酿酒行业"}, Score: 9, Rank: 1},
		{Record: StockRecord{Code: "sz000001", Industry: "银行"}, Score: 7, Rank: 2},
		{Record: StockRecord{Code: "sz000858", Industry: "酿酒行业"}, Score: 5, Rank: 3},
		{Record: StockRecord{Code: "sh600000"}, Score: 1, Rank: 4},
	}

	groups := GroupByIndustry(ranked)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}

	liquor := groups[0]
	if liquor.Industry != "酿酒行业" || liquor.Count != 2 || liquor.Best.Record.Code != "sh600519" || liquor.MeanScore != 7 {
		t.Fatalf("unexpected first group: %+v", liquor)
	}
	if groups[1].Industry != "银行" || groups[1].Count != 1 {
		t.Fatalf("unexpected second group: %+v", groups[1])
	}
	if groups[2].Industry != OtherIndustry || groups[2].Best.Rank != 4 {
		t.Fatalf("missing industry should fall into %s: %+v", OtherIndustry, groups[2])
	}
}

func TestGroupByIndustryEmpty(t *testing.T) {
	if groups := GroupByIndustry(nil); len(groups) != 0 {
		t.Fatalf("expected no groups, got %v", groups)
	}
}
