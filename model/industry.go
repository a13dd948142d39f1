package model

// 未识别行业的归类名称
const OtherIndustry = "其他"

// IndustryGroup 按行业汇总的排名结果
type IndustryGroup struct {
	Industry  string      `json:"industry"`
	Count     int         `json:"count"`
	Best      ScoredStock `json:"best"` // 行业内排名最高的股票
	MeanScore float64     `json:"mean_score"`
}

// GroupByIndustry 按行业分组，ranked 需已按评分降序
// 分组顺序为各行业最佳排名的先后
func GroupByIndustry(ranked []ScoredStock) []IndustryGroup {
	var groups []IndustryGroup
	index := make(map[string]int)
	sums := make(map[string]float64)
	for _, s := range ranked {
		name := s.Record.Industry
		if name == "" {
			name = OtherIndustry
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, IndustryGroup{Industry: name, Best: s})
		}
		groups[i].Count++
		sums[name] += s.Score
	}
	for i := range groups {
		groups[i].MeanScore = sums[groups[i].Industry] / float64(groups[i].Count)
	}
	return groups
}
