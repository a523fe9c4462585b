package bulletin

import (
	"sort"

	"github.com/trezcool/bulletin/core/grade"
)

// StudentEntries are the grades of one student for a period.
type StudentEntries struct {
	StudentID string
	Entries   []grade.Entry
}

// Rank is the position of a student among the classmates graded in the same period.
type Rank struct {
	Ranked     bool    `json:"ranked"`
	Position   int     `json:"position"` // 1-based
	Of         int     `json:"of"`
	HasTop     bool    `json:"has_top"`
	TopAverage float64 `json:"top_average"`
}

// EntriesAverage is the weighted average of all the entries, regardless of sections.
func EntriesAverage(entries []grade.Entry) float64 {
	var t Totals
	for _, e := range entries {
		t.Coef += e.Coef
		t.Weighted += Weighted(e.ClassAvg, e.Composition, e.Coef)
	}
	return t.Average()
}

// RankIn ranks `studentID` among `classmates` by descending average.
// Students without entries are excluded; equal averages are ordered by student ID.
func RankIn(studentID string, classmates []StudentEntries) Rank {
	type standing struct {
		id  string
		avg float64
	}

	standings := make([]standing, 0, len(classmates))
	for _, cm := range classmates {
		if len(cm.Entries) == 0 {
			continue
		}
		standings = append(standings, standing{id: cm.StudentID, avg: EntriesAverage(cm.Entries)})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].avg != standings[j].avg {
			return standings[i].avg > standings[j].avg
		}
		return standings[i].id < standings[j].id
	})

	var rank Rank
	if len(standings) == 0 {
		return rank
	}
	rank.HasTop = true
	rank.TopAverage = standings[0].avg
	rank.Of = len(standings)
	for i, st := range standings {
		if st.id == studentID {
			rank.Ranked = true
			rank.Position = i + 1
			break
		}
	}
	return rank
}

// Label is the printed position ("1er/ère", "2e", ...) or NotAvailable.
func (r Rank) Label() string {
	if !r.Ranked {
		return NotAvailable
	}
	return RankLabel(r.Position)
}

// TopLabel is the printed top average ("16,23/20") or NotAvailable.
func (r Rank) TopLabel() string {
	if !r.HasTop {
		return NotAvailable
	}
	return FormatTop(r.TopAverage)
}
