package bulletin

import (
	"strconv"
	"strings"
	"time"
)

const DateLayout = "02/01/2006"

// FormatScore renders a score with 2 decimals and a comma separator: 14.5 -> "14,50".
func FormatScore(x float64) string {
	return strings.Replace(strconv.FormatFloat(x, 'f', 2, 64), ".", ",", 1)
}

// FormatAverage renders an average out of 20: 16.5 -> "16,50 /20".
func FormatAverage(x float64) string {
	return FormatScore(x) + " /20"
}

// FormatTop renders the top average of a class: 16.5 -> "16,50/20".
func FormatTop(x float64) string {
	return FormatScore(x) + "/20"
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// RankLabel renders a 1-based position in French: 1 -> "1er/ère", 2 -> "2e".
func RankLabel(pos int) string {
	if pos == 1 {
		return "1er/ère"
	}
	return strconv.Itoa(pos) + "e"
}
