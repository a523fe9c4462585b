package bulletin

import (
	"strings"
	"time"

	"github.com/trezcool/bulletin/core/class"
	"github.com/trezcool/bulletin/core/grade"
)

// Student is the identity printed on a bulletin.
type Student struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	ClassID   string `json:"class_id"`
	ClassName string `json:"class_name"`
}

// PrintedName is the upper-cased display name.
func (s Student) PrintedName() string {
	name := s.Name
	if name == "" {
		name = s.Username
	}
	return strings.ToUpper(name)
}

type Section struct {
	Rows         []Row   `json:"rows"`
	Total        Totals  `json:"total"`
	Average      float64 `json:"average"`
	Appreciation string  `json:"appreciation"`
}

// Bulletin is the computed report card of a student for a period.
type Bulletin struct {
	Student      Student   `json:"student"`
	Period       string    `json:"period"`
	Part1        Section   `json:"part1"`
	Part2        Section   `json:"part2"`
	Total        Totals    `json:"total"`
	Average      float64   `json:"average"`
	Appreciation string    `json:"appreciation"`
	Rank         Rank      `json:"rank"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// Input gathers everything a bulletin is computed from.
type Input struct {
	Student     Student
	Period      string
	Entries     []grade.Entry
	Template    *class.Template // nil: default sections
	Classmates  []StudentEntries
	GeneratedAt time.Time
}

func (s Settings) section(rows []Row) Section {
	total := Sum(rows)
	avg := total.Average()
	return Section{Rows: rows, Total: total, Average: avg, Appreciation: s.Appreciate(avg)}
}

// Compose computes a Bulletin from its Input. It performs no I/O: equal inputs give equal bulletins.
func (s Settings) Compose(in Input) Bulletin {
	part1, part2 := s.Part1, s.Part2
	if in.Template != nil {
		part1, part2 = in.Template.Part1, in.Template.Part2
	}
	rows1, rows2 := s.Partition(in.Entries, part1, part2)

	student := in.Student
	if student.ClassName == "" {
		student.ClassName = UnknownClass
	}
	period := in.Period
	if period == "" {
		period = FallbackPeriod
	}

	var rank Rank
	if in.Student.ClassID != "" {
		rank = RankIn(in.Student.ID, in.Classmates)
	}

	total := Sum(rows1, rows2)
	avg := total.Average()
	return Bulletin{
		Student:      student,
		Period:       period,
		Part1:        s.section(rows1),
		Part2:        s.section(rows2),
		Total:        total,
		Average:      avg,
		Appreciation: s.Appreciate(avg),
		Rank:         rank,
		GeneratedAt:  in.GeneratedAt,
	}
}
