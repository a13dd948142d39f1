package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"stockpick/model"
)

func ExtractFirstJSONValue(text string) (json.RawMessage, error) {
	b := []byte(text)
	start := bytes.IndexAny(b, "{[")
	if start < 0 {
		return nil, fmt.Errorf("no json start found")
	}

	dec := json.NewDecoder(bytes.NewReader(b[start:]))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("re-marshal json: %w", err)
	}
	return out, nil
}

// ExtractPortfolio 从回答中找出第一个带 portfolio 数组的 JSON 对象，找不到返回 nil
func ExtractPortfolio(text string) []model.Pick {
	for i := 0; i < len(text); i++ {
		j := strings.IndexByte(text[i:], '{')
		if j < 0 {
			return nil
		}
		i += j

		raw, err := ExtractFirstJSONValue(text[i:])
		if err != nil {
			continue
		}
		var out struct {
			Portfolio []model.Pick `json:"portfolio"`
		}
		if json.Unmarshal(raw, &out) == nil && len(out.Portfolio) > 0 {
			return out.Portfolio
		}
	}
	return nil
}
