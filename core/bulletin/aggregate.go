package bulletin

// MeritGrade is the weighted blend of the class average m and the composition score n.
func MeritGrade(m, n float64) float64 {
	return (m*ContinuousWeight + n*CompositionWeight) / (ContinuousWeight + CompositionWeight)
}

// Weighted is the contribution of a subject to an average: MeritGrade * k.
func Weighted(m, n float64, k int) float64 {
	if k <= 0 {
		return 0
	}
	return MeritGrade(m, n) * float64(k)
}

// Appreciate maps an average to the label of the first threshold it reaches.
func (s Settings) Appreciate(avg float64) string {
	for _, th := range s.Thresholds {
		if avg >= th.Min {
			return th.Label
		}
	}
	return s.Floor
}

// Appreciate maps an average to its label with the DefaultThresholds.
func Appreciate(avg float64) string {
	return DefaultSettings().Appreciate(avg)
}

// Row is one line of a bulletin section.
type Row struct {
	Subject      string  `json:"subject"`
	ClassAvg     float64 `json:"moy_cl"`
	Composition  float64 `json:"n_compo"`
	Coef         int     `json:"coef"`
	MeritGrade   float64 `json:"merit_grade"`
	Weighted     float64 `json:"weighted"`
	Appreciation string  `json:"appreciation"`
	Placeholder  bool    `json:"placeholder"` // no grade recorded for this subject
}

// Totals accumulates the coefficients and weighted contributions of rows.
type Totals struct {
	Coef     int     `json:"coef"`
	Weighted float64 `json:"weighted"`
}

func (t *Totals) Add(r Row) {
	t.Coef += r.Coef
	t.Weighted += r.Weighted
}

// Average is Σ(mg·k)/Σk, or 0 when Σk is 0.
func (t Totals) Average() float64 {
	if t.Coef == 0 {
		return 0
	}
	return t.Weighted / float64(t.Coef)
}

// Sum returns the Totals of rows.
func Sum(rows ...[]Row) Totals {
	var t Totals
	for _, rs := range rows {
		for _, r := range rs {
			t.Add(r)
		}
	}
	return t
}
