package llm

import "testing"

func TestExtractFirstJSONValue(t *testing.T) {
	raw, err := ExtractFirstJSONValue("hello\n{\"a\":1,\"b\":[2,3]}\nbye")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if string(raw) != `{"a":1,"b":[2,3]}` {
		t.Fatalf("unexpected json: %s", string(raw))
	}
}

func TestExtractPortfolio(t *testing.T) {
	text := "点评：{估值偏低}\n```json\n{\"portfolio\":[{\"code\":\"sh600519\",\"name\":\"贵州茅台\",\"weight\":0.5,\"reason\":\"龙头\"},{\"code\":\"sz000001\",\"weight\":0.5}]}\n```\n仅供研究参考"
	picks := ExtractPortfolio(text)
	if len(picks) != 2 {
		t.Fatalf("expected 2 picks, got %d", len(picks))
	}
	if picks[0].Code != "sh600519" || picks[0].Weight != 0.5 || picks[0].Reason != "龙头" {
		t.Fatalf("unexpected pick: %+v", picks[0])
	}
}

func TestExtractPortfolioAbsent(t *testing.T) {
	if picks := ExtractPortfolio("没有结构化输出 {\"other\":1}"); picks != nil {
		t.Fatalf("expected nil, got %+v", picks)
	}
}
