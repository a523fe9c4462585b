package grade

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/user"
)

var (
	ErrNotFound = errors.New("grade not found")

	NowFunc = func() time.Time { return time.Now().UTC() } // mockable
)

type (
	Repository interface {
		CreateEntry(ctx context.Context, e Entry) (Entry, error)
		GetEntry(ctx context.Context, id string) (Entry, error)
		// QueryEntries returns the entries matching all the set filter fields,
		// ordered by `ordering` or by subject then creation time.
		QueryEntries(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Entry, error)
		UpdateEntry(ctx context.Context, e Entry) (Entry, error)
		DeleteEntry(ctx context.Context, id string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, ne NewEntry) (Entry, error)
		Get(ctx context.Context, id string) (Entry, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Entry, error)
		ForStudent(ctx context.Context, studentID, period string) ([]Entry, error)
		Update(ctx context.Context, id string, ue UpdateEntry) (Entry, error)
		Delete(ctx context.Context, id string) error
	}

	Service struct {
		repo    Repository
		usrRepo user.Repository
	}
)

var _ ServiceInterface = (*Service)(nil) // interface compliance check

func NewService(repo Repository, usrRepo user.Repository) *Service {
	return &Service{repo: repo, usrRepo: usrRepo}
}

// Create records a validated NewEntry for an existing student.
func (svc *Service) Create(ctx context.Context, ne NewEntry) (Entry, error) {
	student, err := svc.usrRepo.GetUser(ctx, user.GetFilter{ID: ne.StudentID})
	if err != nil {
		if err == user.ErrNotFound {
			return Entry{}, core.NewValidationError(err, core.FieldError{Field: "student_id", Error: err.Error()})
		}
		return Entry{}, errors.Wrap(err, "getting student")
	}
	if !student.IsStudent() {
		return Entry{}, core.NewValidationError(user.ErrNotAStudent, core.FieldError{Field: "student_id", Error: user.ErrNotAStudent.Error()})
	}

	now := NowFunc()
	return svc.repo.CreateEntry(ctx, Entry{
		StudentID:   student.ID,
		Subject:     ne.Subject,
		ClassAvg:    ne.ClassAvg,
		Composition: ne.Composition,
		Coef:        ne.Coef,
		Period:      ne.Period,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) Get(ctx context.Context, id string) (Entry, error) {
	return svc.repo.GetEntry(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Entry, error) {
	return svc.repo.QueryEntries(ctx, filter, core.CleanOrderings(ordering, OrderingColumns))
}

// ForStudent returns the grades of a student, for a period when set.
func (svc *Service) ForStudent(ctx context.Context, studentID, period string) ([]Entry, error) {
	return svc.repo.QueryEntries(ctx, &QueryFilter{StudentID: studentID, Period: core.CleanString(period)}, nil)
}

// Update fully replaces the scores, coefficient and period of a grade.
func (svc *Service) Update(ctx context.Context, id string, ue UpdateEntry) (Entry, error) {
	e, err := svc.repo.GetEntry(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	e.ClassAvg = ue.ClassAvg
	e.Composition = ue.Composition
	e.Coef = ue.Coef
	e.Period = ue.Period
	e.UpdatedAt = NowFunc()
	return svc.repo.UpdateEntry(ctx, e)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteEntry(ctx, id)
}
