package bulletin

import (
	"testing"
	"time"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "score", got: FormatScore(14.5), want: "14,50"},
		{name: "score rounding", got: FormatScore(14.944), want: "14,94"},
		{name: "score zero", got: FormatScore(0), want: "0,00"},
		{name: "average", got: FormatAverage(16.5), want: "16,50 /20"},
		{name: "top", got: FormatTop(16.5), want: "16,50/20"},
		{name: "date", got: FormatDate(time.Date(2025, time.March, 7, 10, 0, 0, 0, time.UTC)), want: "07/03/2025"},
		{name: "rank 1", got: RankLabel(1), want: "1er/ère"},
		{name: "rank 12", got: RankLabel(12), want: "12e"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q; want %q", tt.got, tt.want)
			}
		})
	}
}
