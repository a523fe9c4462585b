package bulletin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeritGrade(t *testing.T) {
	tests := []struct {
		name string
		m, n float64
		want float64
	}{
		{name: "zeros", m: 0, n: 0, want: 0},
		{name: "max", m: 20, n: 20, want: 20},
		{name: "composition weighs double", m: 12, n: 15, want: 14},
		{name: "fractional", m: 14, n: 14.5, want: 43.0 / 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MeritGrade(tt.m, tt.n), 1e-9)
		})
	}
}

func TestMeritGrade_monotonic(t *testing.T) {
	const step = 0.25
	for m := 0.0; m <= 20; m += step {
		for n := 0.0; n <= 20; n += step {
			mg := MeritGrade(m, n)
			if m+step <= 20 {
				assert.GreaterOrEqual(t, MeritGrade(m+step, n), mg, "m=%v n=%v", m, n)
			}
			if n+step <= 20 {
				assert.GreaterOrEqual(t, MeritGrade(m, n+step), mg, "m=%v n=%v", m, n)
			}
		}
	}
}

func TestWeighted(t *testing.T) {
	assert.InDelta(t, 70.0, Weighted(12, 15, 5), 1e-9)
	assert.Equal(t, 0.0, Weighted(12, 15, 0), "placeholder rows weigh nothing")
}

func TestAppreciate(t *testing.T) {
	tests := []struct {
		avg  float64
		want string
	}{
		{avg: 20, want: "Très Bien"},
		{avg: 16, want: "Très Bien"},
		{avg: 15.99, want: "Bien"},
		{avg: 14, want: "Bien"},
		{avg: 13.5, want: "Assez Bien"},
		{avg: 12, want: "Assez Bien"},
		{avg: 10, want: "Passable"},
		{avg: 9.99, want: "Insuffisant"},
		{avg: 8, want: "Insuffisant"},
		{avg: 7.99, want: "Faible"},
		{avg: 0, want: "Faible"},
	}
	for _, tt := range tests {
		t.Run(FormatScore(tt.avg), func(t *testing.T) {
			if got := Appreciate(tt.avg); got != tt.want {
				t.Errorf("Appreciate(%v) = %q; want %q", tt.avg, got, tt.want)
			}
		})
	}
}

func TestSettings_Appreciate_overridden(t *testing.T) {
	s := DefaultSettings()
	s.Thresholds = []Threshold{{Min: 10, Label: "Admis"}}
	s.Floor = "Ajourné"

	assert.Equal(t, "Admis", s.Appreciate(10))
	assert.Equal(t, "Ajourné", s.Appreciate(9.5))
}

func TestTotals(t *testing.T) {
	var empty Totals
	assert.Equal(t, 0.0, empty.Average(), "no coefficient gives a 0 average")

	rows := []Row{
		{Coef: 2, Weighted: 30},
		{Coef: 0, Weighted: 0, Placeholder: true},
		{Coef: 3, Weighted: 36},
	}
	total := Sum(rows)
	assert.Equal(t, 5, total.Coef)
	assert.InDelta(t, 66.0, total.Weighted, 1e-9)
	assert.InDelta(t, 13.2, total.Average(), 1e-9)
}
