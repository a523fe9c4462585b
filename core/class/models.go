package class

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/bulletin/core"
)

type SchoolClass struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Template is the bulletin layout of a class: the ordered subjects of each section.
type Template struct {
	ID        string    `json:"id"`
	ClassID   string    `json:"class_id"`
	Part1     []string  `json:"subjects_part1"`
	Part2     []string  `json:"subjects_part2"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type NewClass struct {
	Name string `json:"name" validate:"required,notblank,max=100"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

// NewTemplate carries the sections as comma separated subject lists.
type NewTemplate struct {
	ClassID string `json:"class_id" validate:"required,uuid"`
	Part1   string `json:"subjects_part1"`
	Part2   string `json:"subjects_part2"`
}

func (nt *NewTemplate) Validate(validate *validator.Validate) error {
	nt.ClassID = core.CleanString(nt.ClassID)
	return validate.Struct(nt)
}

// UpdateTemplate defines what may be provided to modify an existing Template.
// An empty ClassID keeps the current class.
type UpdateTemplate struct {
	ClassID string `json:"class_id" validate:"omitempty,uuid"`
	Part1   string `json:"subjects_part1"`
	Part2   string `json:"subjects_part2"`
}

func (ut *UpdateTemplate) Validate(validate *validator.Validate) error {
	ut.ClassID = core.CleanString(ut.ClassID)
	return validate.Struct(ut)
}

// DefaultClasses are the classes created by the seed command.
var DefaultClasses = []string{
	"10e",
	"11e Sc",
	"11e L",
	"11e SES",
	"11e SS",
	"12e SE",
	"12e EXP",
	"12e SEco",
	"12e SS",
	"Terminale C",
	"Seconde A",
}

type DefaultTemplate struct {
	ClassName string
	Part1     []string
	Part2     []string
}

// DefaultTemplates are the bulletin templates created by the seed command.
var DefaultTemplates = []DefaultTemplate{
	{
		ClassName: "Terminale C",
		Part1:     []string{"MATHS", "PHYSIQUE", "CHIMIE", "PHILOSOPHIE", "ANGLAIS", "SVT"},
		Part2:     []string{"E.C.M", "EPS", "INFORMATIQUE", "CONDUITE"},
	},
	{
		ClassName: "Seconde A",
		Part1:     []string{"MATHS", "FRANCAIS", "ANGLAIS", "HIST-GEO", "PHYSIQUE-CHIMIE", "SVT"},
		Part2:     []string{"E.C.M", "EPS", "LV2", "ART PLASTIQUE"},
	},
}
