package grade

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/bulletin/core"
)

// StandardPeriods are the grading periods of a school year.
var StandardPeriods = []string{"1ère Période", "2e Période", "3e Période"}

// Entry is one recorded subject assessment of a student for a period.
type Entry struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	Subject     string    `json:"subject"`
	ClassAvg    float64   `json:"moy_cl"`  // m: continuous-assessment average
	Composition float64   `json:"n_compo"` // n: composition exam score
	Coef        int       `json:"coef"`    // k
	Period      string    `json:"period"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// NewEntry contains information needed to record a grade.
type NewEntry struct {
	StudentID   string  `json:"student_id" validate:"required,uuid"`
	Subject     string  `json:"subject" validate:"required,notblank,max=100"`
	ClassAvg    float64 `json:"moy_cl" validate:"gte=0,lte=20"`
	Composition float64 `json:"n_compo" validate:"gte=0,lte=20"`
	Coef        int     `json:"coef" validate:"min=1"`
	Period      string  `json:"period" validate:"required,notblank,max=50"`
}

func (ne *NewEntry) Validate(validate *validator.Validate) error {
	ne.StudentID = core.CleanString(ne.StudentID)
	ne.Subject = core.CleanString(ne.Subject)
	ne.Period = core.CleanString(ne.Period)
	return validate.Struct(ne)
}

// UpdateEntry replaces the scores, coefficient and period of a grade.
type UpdateEntry struct {
	ClassAvg    float64 `json:"moy_cl" validate:"gte=0,lte=20"`
	Composition float64 `json:"n_compo" validate:"gte=0,lte=20"`
	Coef        int     `json:"coef" validate:"min=1"`
	Period      string  `json:"period" validate:"required,notblank,max=50"`
}

func (ue *UpdateEntry) Validate(validate *validator.Validate) error {
	ue.Period = core.CleanString(ue.Period)
	return validate.Struct(ue)
}

type QueryFilter struct {
	StudentID string `query:"student_id"`
	ClassID   string `query:"class_id"`
	Period    string `query:"period"`
	Subject   string `query:"subject"`
}

func (qf *QueryFilter) Clean() {
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.ClassID = core.CleanString(qf.ClassID)
	qf.Period = core.CleanString(qf.Period)
	qf.Subject = core.CleanString(qf.Subject)
}

// OrderingColumns maps the accepted ordering fields to their column.
var OrderingColumns = map[string]string{
	"subject":    "subject",
	"period":     "period",
	"coef":       "coef",
	"moy_cl":     "moy_cl",
	"n_compo":    "n_compo",
	"created_at": "created_at",
}
