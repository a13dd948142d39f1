package terminalui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"stockpick/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	topStyle = cellStyle.Foreground(lipgloss.Color("#F59E0B")).Bold(true)

	upStyle   = cellStyle.Foreground(lipgloss.Color("#EF4444"))
	downStyle = cellStyle.Foreground(lipgloss.Color("#10B981"))

	analysisStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#10B981")).
			Padding(0, 1)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))
)

// 排名表列
const (
	colRank = iota
	colCode
	colName
	colScore
	colValue
	colTrend
	colPrice
	colChange
	colPE
	colIndustry
)

// Render 输出排名表与 AI 分析，maxRows<=0 时输出全部
func Render(w io.Writer, rec *model.Recommendation, maxRows int, disclaimer string) {
	fmt.Fprintln(w, titleStyle.Render("A股多因子选股"))
	meta := fmt.Sprintf("%s · 市场 %s · 共 %d 只", rec.GeneratedAt.Format("2006-01-02 15:04:05"), rec.Market, len(rec.Ranked))
	if rec.Note != "" {
		meta += " · " + rec.Note
	}
	fmt.Fprintln(w, metaStyle.Render(meta))
	fmt.Fprintln(w, RankTable(rec.Ranked, len(rec.Top), maxRows))

	if len(rec.Industries) > 0 {
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("行业分布（%d 个）", len(rec.Industries))))
		fmt.Fprintln(w, IndustryTable(rec.Industries, len(rec.Top), maxRows))
	}

	if rec.Analysis.Text != "" {
		title := "AI 分析"
		if rec.Analysis.Model != "" {
			title += " (" + rec.Analysis.Model + ")"
		}
		fmt.Fprintln(w, titleStyle.Render(title))
		fmt.Fprintln(w, analysisStyle.Render(wrap(strings.TrimSpace(rec.Analysis.Text), 72)))
	}

	if len(rec.Analysis.Portfolio) > 0 {
		fmt.Fprintln(w, titleStyle.Render("组合建议"))
		for _, p := range rec.Analysis.Portfolio {
			line := fmt.Sprintf("  %-10s %-8s %6s%%", p.Code, truncateName(p.Name, 8), decimal.NewFromFloat(p.Weight*100).StringFixed(1))
			if p.Reason != "" {
				line += "  " + p.Reason
			}
			fmt.Fprintln(w, line)
		}
	}

	if disclaimer != "" {
		fmt.Fprintln(w, warnStyle.Render(disclaimer))
	}
}

// RankTable 排名表，前 top 名高亮
func RankTable(ranked []model.ScoredStock, top, maxRows int) string {
	rows := ranked
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}

	data := make([][]string, 0, len(rows))
	for _, s := range rows {
		data = append(data, []string{
			fmt.Sprintf("%d", s.Rank),
			s.Record.Code,
			truncateName(s.Record.Name, 8),
			fixed(s.Score),
			fixed(s.ValueScore),
			fixed(s.TrendScore) + "%",
			fixed(s.Record.Price),
			fixed(s.Record.ChangePct) + "%",
			formatPE(s.Record.PE),
			truncateName(s.Record.Industry, 6),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(metaStyle).
		Headers("#", "代码", "名称", "评分", "估值", "趋势", "最新价", "涨跌幅", "市盈率", "行业").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < 0 || row >= len(rows) {
				return cellStyle
			}
			s := rows[row]
			switch col {
			case colTrend:
				return changeStyle(s.TrendScore)
			case colChange:
				return changeStyle(s.Record.ChangePct)
			}
			if s.Rank <= top {
				return topStyle
			}
			return cellStyle
		})
	return t.Render()
}

// IndustryTable 行业汇总表，最佳股票进入前 top 名的行业高亮
func IndustryTable(groups []model.IndustryGroup, top, maxRows int) string {
	rows := groups
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}

	data := make([][]string, 0, len(rows))
	for _, g := range rows {
		data = append(data, []string{
			truncateName(g.Industry, 8),
			fmt.Sprintf("%d", g.Count),
			g.Best.Record.Code + " " + truncateName(g.Best.Record.Name, 6),
			fmt.Sprintf("%d", g.Best.Rank),
			fixed(g.MeanScore),
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(metaStyle).
		Headers("行业", "数量", "行业最佳", "排名", "平均评分").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(rows) && rows[row].Best.Rank <= top {
				return topStyle
			}
			return cellStyle
		}).
		Render()
}

// A股习惯：红涨绿跌
func changeStyle(v float64) lipgloss.Style {
	switch {
	case v > 0:
		return upStyle
	case v < 0:
		return downStyle
	}
	return cellStyle
}

func fixed(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func formatPE(pe float64) string {
	if pe <= 0 {
		return "-"
	}
	return fixed(pe)
}

func truncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return name
}

// wrap 按字符数折行，保留原有换行
func wrap(text string, width int) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		for len(runes) > width {
			out = append(out, string(runes[:width]))
			runes = runes[width:]
		}
		out = append(out, string(runes))
	}
	return strings.Join(out, "\n")
}
