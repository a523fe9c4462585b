package bulletin

import "github.com/trezcool/bulletin/core/grade"

// entryRow builds the Row of a recorded grade.
func (s Settings) entryRow(e grade.Entry) Row {
	mg := MeritGrade(e.ClassAvg, e.Composition)
	return Row{
		Subject:      e.Subject,
		ClassAvg:     e.ClassAvg,
		Composition:  e.Composition,
		Coef:         e.Coef,
		MeritGrade:   mg,
		Weighted:     Weighted(e.ClassAvg, e.Composition, e.Coef),
		Appreciation: s.Appreciate(mg),
	}
}

func placeholderRow(subject string) Row {
	return Row{Subject: subject, Appreciation: NotAvailable, Placeholder: true}
}

// emptySectionRow stands in for a section 1 with no subjects at all.
func emptySectionRow() Row {
	return Row{Subject: NotAvailable, Appreciation: EmptyMark, Placeholder: true}
}

// Partition assigns the entries to the two sections of a bulletin, following the template subject order.
// A template subject without entry gets a placeholder row. Each entry is used at most once:
// entries left unassigned after both sections are appended to section 2 in discovery order.
func (s Settings) Partition(entries []grade.Entry, part1, part2 []string) (s1, s2 []Row) {
	pool := make(map[string][]int, len(entries)) // subject -> indices of unused entries
	for i, e := range entries {
		pool[e.Subject] = append(pool[e.Subject], i)
	}
	used := make([]bool, len(entries))

	take := func(subjects []string) []Row {
		rows := make([]Row, 0, len(subjects))
		for _, subj := range subjects {
			idxs := pool[subj]
			if len(idxs) == 0 {
				rows = append(rows, placeholderRow(subj))
				continue
			}
			idx := idxs[0]
			pool[subj] = idxs[1:]
			used[idx] = true
			rows = append(rows, s.entryRow(entries[idx]))
		}
		return rows
	}

	s1 = take(part1)
	s2 = take(part2)
	for i, e := range entries {
		if !used[i] {
			s2 = append(s2, s.entryRow(e))
		}
	}

	if len(s1) == 0 {
		s1 = []Row{emptySectionRow()}
	}
	return s1, s2
}
