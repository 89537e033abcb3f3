package calendar

import "time"

// 日期工具：所有排产计算使用纯日历日（UTC 零点），不携带时分秒，
// 避免时区/夏令时漂移。周起始为周一；周几匹配使用 time.Weekday（0=周日..6=周六）。

const ISODate = "2006-01-02"

// DateOnly 归一化为 UTC 零点的日历日
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Date 构造日历日
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AddDays 日历日加减
func AddDays(d time.Time, n int) time.Time {
	return DateOnly(d).AddDate(0, 0, n)
}

// WeekBounds 返回所在周的起止（周一..周日）
func WeekBounds(d time.Time) (time.Time, time.Time) {
	d = DateOnly(d)
	offset := int(d.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	start := d.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}

// FormatISO 规范的日期字符串表示 yyyy-MM-dd
func FormatISO(d time.Time) string {
	return d.Format(ISODate)
}

// ParseISO 解析 yyyy-MM-dd
func ParseISO(s string) (time.Time, error) {
	return time.Parse(ISODate, s)
}

// SameDay 判断两个时间是否为同一日历日
func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// DaysBetween from 到 to 的整日差
func DaysBetween(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)).Hours() / 24)
}
