// Package report 将一次推荐结果写成 JSON 与 HTML 报告
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"stockpick/model"
)

// Disclaimer 报告末尾的风险提示
const Disclaimer = "本报告由程序自动生成，仅供研究参考，不构成任何投资建议。股市有风险，投资需谨慎。"

type persistedReport struct {
	Version int `json:"version"`
	*model.Recommendation
	Disclaimer string `json:"disclaimer"`
}

// WriteJSON 写入 JSON 报告（临时文件 + rename）
func WriteJSON(path string, rec *model.Recommendation) error {
	b, err := json.MarshalIndent(persistedReport{Version: 1, Recommendation: rec, Disclaimer: Disclaimer}, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化报告失败: %w", err)
	}
	b = append(b, '\n')
	return writeAtomic(path, b, ".report-*.json")
}

// WriteHTML 写入 HTML 报告
func WriteHTML(path string, rec *model.Recommendation) error {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, pageData{rec, Disclaimer}); err != nil {
		return fmt.Errorf("渲染报告失败: %w", err)
	}
	return writeAtomic(path, buf.Bytes(), ".report-*.html")
}

func writeAtomic(path string, b []byte, pattern string) error {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(b); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, p)
}

type pageData struct {
	*model.Recommendation
	Disclaimer string
}

var pageTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"fixed": func(v float64) string { return decimal.NewFromFloat(v).StringFixed(2) },
	"cap": func(v float64) string {
		if v <= 0 {
			return "-"
		}
		return decimal.NewFromFloat(v).Div(decimal.New(1, 8)).StringFixed(1) + "亿"
	},
	"pe": func(v float64) string {
		if v <= 0 {
			return "亏损/缺失"
		}
		return decimal.NewFromFloat(v).StringFixed(2)
	},
	"pct": func(v float64) string { return decimal.NewFromFloat(v * 100).StringFixed(0) + "%" },
	"sign": func(v float64) string {
		switch {
		case v > 0:
			return "good"
		case v < 0:
			return "bad"
		}
		return "muted"
	},
}).Parse(pageHTML))

const pageHTML = `<!doctype html>
<html lang="zh-CN">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>A股多因子选股报告</title>
  <style>
:root { --bg:#0b1220; --panel:rgba(255,255,255,0.06); --txt:rgba(255,255,255,0.88); --muted:rgba(255,255,255,0.62); --grid:rgba(255,255,255,0.10); --good:#ef4444; --bad:#22c55e; --warn:#f59e0b; --mono:ui-monospace,Menlo,Monaco,Consolas,monospace; --sans:ui-sans-serif,system-ui,-apple-system,"Noto Sans",Arial; }
* { box-sizing:border-box; }
body { margin:0; background:var(--bg); color:var(--txt); font-family:var(--sans); }
.hdr { padding:18px; border-bottom:1px solid var(--grid); display:flex; align-items:baseline; gap:12px; flex-wrap:wrap; }
.title { font-size:18px; font-weight:700; }
.meta { font-family:var(--mono); color:var(--muted); font-size:12px; }
.grid { padding:14px 18px; display:grid; grid-template-columns:1.2fr 0.8fr; gap:14px; }
@media (max-width:1050px) { .grid { grid-template-columns:1fr; } }
.card { background:var(--panel); border:1px solid var(--grid); border-radius:14px; overflow:hidden; }
.card-hd { padding:10px 12px; font-size:13px; font-weight:700; color:var(--muted); border-bottom:1px solid var(--grid); }
.tbl { width:100%; border-collapse:collapse; font-family:var(--mono); font-size:12px; }
.tbl th { text-align:left; color:var(--muted); padding:8px 10px; border-bottom:1px solid var(--grid); white-space:nowrap; }
.tbl td { padding:7px 10px; border-bottom:1px solid rgba(255,255,255,0.06); white-space:nowrap; }
.tbl tr.top td { background:rgba(245,158,11,0.08); }
.good { color:var(--good); } .bad { color:var(--bad); } .muted { color:var(--muted); }
.wide { grid-column:1 / -1; }
.text { padding:12px; white-space:pre-wrap; line-height:1.6; font-size:14px; }
.foot { padding:14px 18px 24px; color:var(--warn); font-size:12px; }
  </style>
</head>
<body>
  <header class="hdr">
    <div class="title">A股多因子选股报告</div>
    <div class="meta">{{.GeneratedAt.Format "2006-01-02 15:04:05"}} · 市场 {{.Market}} · 共 {{len .Ranked}} 只{{with .Analysis.Model}} · 模型 {{.}}{{end}}</div>
    {{with .Note}}<div class="meta">{{.}}</div>{{end}}
  </header>
  <main class="grid">
    <section class="card">
      <div class="card-hd">评分排名</div>
      <table class="tbl">
        <thead><tr><th>#</th><th>代码</th><th>名称</th><th>评分</th><th>估值项</th><th>趋势项</th><th>最新价</th><th>涨跌幅</th><th>市盈率</th><th>总市值</th><th>行业</th><th>分位</th></tr></thead>
        <tbody>
        {{- $top := len .Top}}
        {{- range .Ranked}}
          <tr{{if le .Rank $top}} class="top"{{end}}><td>{{.Rank}}</td><td>{{.Record.Code}}</td><td>{{.Record.Name}}</td><td>{{fixed .Score}}</td><td>{{fixed .ValueScore}}</td><td class="{{sign .TrendScore}}">{{fixed .TrendScore}}%</td><td>{{fixed .Record.Price}}</td><td class="{{sign .Record.ChangePct}}">{{fixed .Record.ChangePct}}%</td><td>{{pe .Record.PE}}</td><td>{{cap .Record.MarketCap}}</td><td>{{.Record.Industry}}</td><td>{{pct .RankPct}}</td></tr>
        {{- end}}
        </tbody>
      </table>
    </section>
    <section class="card">
      <div class="card-hd">AI 分析</div>
      <div class="text">{{.Analysis.Text}}</div>
      {{- if .Analysis.Portfolio}}
      <div class="card-hd">组合建议</div>
      <table class="tbl">
        <thead><tr><th>代码</th><th>名称</th><th>权重</th><th>理由</th></tr></thead>
        <tbody>
        {{- range .Analysis.Portfolio}}
          <tr><td>{{.Code}}</td><td>{{.Name}}</td><td>{{pct .Weight}}</td><td>{{.Reason}}</td></tr>
        {{- end}}
        </tbody>
      </table>
      {{- end}}
    </section>
    {{- if .Industries}}
    <section class="card wide">
      <div class="card-hd">行业分布（共 {{len .Industries}} 个行业）</div>
      <table class="tbl">
        <thead><tr><th>行业</th><th>数量</th><th>行业最佳</th><th>排名</th><th>最高评分</th><th>平均评分</th></tr></thead>
        <tbody>
        {{- range .Industries}}
          <tr><td>{{.Industry}}</td><td>{{.Count}}</td><td>{{.Best.Record.Code}} {{.Best.Record.Name}}</td><td>{{.Best.Rank}}</td><td>{{fixed .Best.Score}}</td><td>{{fixed .MeanScore}}</td></tr>
        {{- end}}
        </tbody>
      </table>
    </section>
    {{- end}}
  </main>
  <footer class="foot">{{.Disclaimer}}</footer>
</body>
</html>
`
