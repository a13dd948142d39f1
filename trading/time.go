package trading

import (
	"fmt"
	"time"
)

// 中国时区
var cst = time.FixedZone("CST", 8*3600)

// TimeRange 时间范围
type TimeRange struct {
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
}

// A股交易时间段
var stockTradingHours = []TimeRange{
	{9, 30, 11, 30}, // 上午 9:30-11:30
	{13, 0, 15, 0},  // 下午 13:00-15:00
}

// Session 交易时段
type Session string

const (
	SessionWeekend   Session = "weekend"
	SessionPreOpen   Session = "pre_open"
	SessionMorning   Session = "morning"
	SessionLunch     Session = "lunch"
	SessionAfternoon Session = "afternoon"
	SessionClosed    Session = "closed"
)

// 不含法定节假日，节假日按工作日处理

// IsStockTradingTime 判断当前是否为A股交易时间
func IsStockTradingTime() bool {
	return IsStockTradingTimeAt(time.Now())
}

// IsStockTradingTimeAt 判断指定时间是否为A股交易时间
func IsStockTradingTimeAt(t time.Time) bool {
	s := SessionAt(t)
	return s == SessionMorning || s == SessionAfternoon
}

// SessionAt 返回指定时间所处的交易时段
func SessionAt(t time.Time) Session {
	t = t.In(cst)
	if isWeekend(t) {
		return SessionWeekend
	}

	m := t.Hour()*60 + t.Minute()
	morning, afternoon := stockTradingHours[0], stockTradingHours[1]
	switch {
	case m < morning.StartHour*60+morning.StartMinute:
		return SessionPreOpen
	case m < morning.EndHour*60+morning.EndMinute:
		return SessionMorning
	case m < afternoon.StartHour*60+afternoon.StartMinute:
		return SessionLunch
	case m < afternoon.EndHour*60+afternoon.EndMinute:
		return SessionAfternoon
	}
	return SessionClosed
}

// LastTradingDay 最近一个已有收盘数据的交易日（北京时间零点）
// 盘中及开盘前返回上一个交易日
func LastTradingDay(t time.Time) time.Time {
	t = t.In(cst)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, cst)
	if SessionAt(t) != SessionClosed {
		day = day.AddDate(0, 0, -1)
	}
	for isWeekend(day) {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// FreshnessNote 数据时效说明，写入提示词和报告
func FreshnessNote(t time.Time) string {
	switch SessionAt(t) {
	case SessionMorning, SessionAfternoon:
		return "盘中实时数据，价格仍在变动"
	case SessionLunch:
		return "午间休市，价格为上午收盘"
	}
	return fmt.Sprintf("非交易时段，数据截至 %s 收盘", LastTradingDay(t).Format("2006-01-02"))
}

// QuoteTimeNote 行情时间说明，按北京时间格式化
func QuoteTimeNote(t time.Time) string {
	return "行情时间 " + t.In(cst).Format("2006-01-02 15:04:05")
}

// GetNextTradingTime 获取下一个开盘时间
func GetNextTradingTime(t time.Time) time.Time {
	t = t.In(cst)
	if IsStockTradingTimeAt(t) {
		return t
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, cst)
	for i := 0; i < 8; i++ {
		d := day.AddDate(0, 0, i)
		if isWeekend(d) {
			continue
		}
		for _, r := range stockTradingHours {
			open := time.Date(d.Year(), d.Month(), d.Day(), r.StartHour, r.StartMinute, 0, 0, cst)
			if open.After(t) {
				return open
			}
		}
	}
	return t.Add(24 * time.Hour)
}

func isWeekend(t time.Time) bool {
	w := t.Weekday()
	return w == time.Saturday || w == time.Sunday
}
