package util

import "time"

// DaysSince 返回自 t 以来经过的整天数（不足一天按 0 计）
func DaysSince(t time.Time) int {
	d := time.Since(t)
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}

// ReviewGapDays 计算距上次复习的天数
// last 为 nil 表示从未复习过，reviewed 返回 false，此时天数视为无限大
func ReviewGapDays(last *time.Time) (days int, reviewed bool) {
	if last == nil {
		return 0, false
	}
	return DaysSince(*last), true
}
