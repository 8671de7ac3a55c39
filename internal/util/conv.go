package util

import (
	"math"
	"strconv"
)

// MustParseUint 将字符串转换为无符号整数，解析失败时返回 0
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// Round3 四舍五入到三位小数，用于对外展示的掌握度分数
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
