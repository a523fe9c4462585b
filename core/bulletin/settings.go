package bulletin

import "github.com/trezcool/bulletin/core"

// Merit grade weights: mg = (m*ContinuousWeight + n*CompositionWeight) / (ContinuousWeight + CompositionWeight)
const (
	ContinuousWeight  = 1.0
	CompositionWeight = 2.0

	MaxScore = 20.0
)

// Placeholder texts
const (
	NotAvailable   = "N/A"
	EmptyMark      = "-"
	FallbackPeriod = "Période Actuelle"
	UnknownClass   = "Classe Inconnue"
)

// Threshold is the lower bound (inclusive) of an appreciation band.
type Threshold struct {
	Min   float64
	Label string
}

var (
	// DefaultThresholds are ordered from the highest band to the lowest.
	DefaultThresholds = []Threshold{
		{Min: 16, Label: "Très Bien"},
		{Min: 14, Label: "Bien"},
		{Min: 12, Label: "Assez Bien"},
		{Min: 10, Label: "Passable"},
		{Min: 8, Label: "Insuffisant"},
	}
	DefaultFloor = "Faible"

	// DefaultPart1 and DefaultPart2 are used by classes without a template.
	DefaultPart1 = []string{"MATHS", "PHYSIQUE", "CHIMIE", "GÉOLOGIE/BIO", "PHILOSOPHIE", "ANGLAIS"}
	DefaultPart2 = []string{"E.C.M", "EPS", "INFORMAT.", "DESSIN TECH.", "CONDUITE"}
)

type Settings struct {
	Thresholds []Threshold // highest band first
	Floor      string      // label below the lowest threshold
	Part1      []string
	Part2      []string
}

// DefaultSettings returns the school defaults.
func DefaultSettings() Settings {
	return Settings{
		Thresholds: DefaultThresholds,
		Floor:      DefaultFloor,
		Part1:      DefaultPart1,
		Part2:      DefaultPart2,
	}
}

// NewSettings returns DefaultSettings with the default sections overridden by `conf` when set.
func NewSettings(conf core.BulletinConfig) Settings {
	s := DefaultSettings()
	if part1 := core.SplitList(conf.DefaultPart1); len(part1) > 0 {
		s.Part1 = part1
	}
	if part2 := core.SplitList(conf.DefaultPart2); len(part2) > 0 {
		s.Part2 = part2
	}
	return s
}
