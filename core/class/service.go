package class

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/bulletin/core"
)

var (
	// errors
	ErrNotFound         = errors.New("class not found")
	ErrClassExists      = errors.New("a class with this name already exists")
	ErrTemplateNotFound = errors.New("bulletin template not found")
	ErrTemplateExists   = errors.New("this class already has a bulletin template")

	NowFunc = func() time.Time { return time.Now().UTC() } // mockable
)

type (
	Repository interface {
		CreateClass(ctx context.Context, cls SchoolClass) (SchoolClass, error)
		QueryClasses(ctx context.Context) ([]SchoolClass, error)
		GetClass(ctx context.Context, id string) (SchoolClass, error)
		GetClassByName(ctx context.Context, name string) (SchoolClass, error)

		CreateTemplate(ctx context.Context, tmpl Template) (Template, error)
		UpdateTemplate(ctx context.Context, tmpl Template) (Template, error)
		DeleteTemplate(ctx context.Context, id string) error
		GetTemplate(ctx context.Context, id string) (Template, error)
		// GetTemplateByClass returns ErrTemplateNotFound when the class has no template.
		GetTemplateByClass(ctx context.Context, classID string) (Template, error)
		QueryTemplates(ctx context.Context) ([]Template, error)
	}

	ServiceInterface interface {
		CreateClass(ctx context.Context, nc NewClass) (SchoolClass, error)
		QueryClasses(ctx context.Context) ([]SchoolClass, error)
		GetClass(ctx context.Context, id string) (SchoolClass, error)
		Subjects(ctx context.Context, classID string) ([]string, error)

		CreateTemplate(ctx context.Context, nt NewTemplate) (Template, error)
		UpdateTemplate(ctx context.Context, id string, ut UpdateTemplate) (Template, error)
		DeleteTemplate(ctx context.Context, id string) error
		GetTemplate(ctx context.Context, id string) (Template, error)
		TemplateFor(ctx context.Context, classID string) (Template, error)
		QueryTemplates(ctx context.Context) ([]Template, error)

		SeedDefaults(ctx context.Context) (SeedReport, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}

	// SeedReport lists what SeedDefaults created or skipped.
	SeedReport struct {
		CreatedClasses   []string
		CreatedTemplates []string
		Skipped          []string
	}
)

var _ ServiceInterface = (*Service)(nil) // interface compliance check

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (svc *Service) CreateClass(ctx context.Context, nc NewClass) (SchoolClass, error) {
	if _, err := svc.repo.GetClassByName(ctx, nc.Name); err == nil {
		return SchoolClass{}, core.NewValidationError(ErrClassExists, core.FieldError{Field: "name", Error: ErrClassExists.Error()})
	} else if err != ErrNotFound {
		return SchoolClass{}, errors.Wrap(err, "checking class name")
	}
	return svc.repo.CreateClass(ctx, SchoolClass{Name: nc.Name, CreatedAt: NowFunc()})
}

func (svc *Service) QueryClasses(ctx context.Context) ([]SchoolClass, error) {
	return svc.repo.QueryClasses(ctx)
}

func (svc *Service) GetClass(ctx context.Context, id string) (SchoolClass, error) {
	return svc.repo.GetClass(ctx, id)
}

// Subjects returns the sorted unique subjects of the class template (both sections).
func (svc *Service) Subjects(ctx context.Context, classID string) ([]string, error) {
	if _, err := svc.repo.GetClass(ctx, classID); err != nil {
		return nil, err
	}
	tmpl, err := svc.repo.GetTemplateByClass(ctx, classID)
	if err != nil {
		if err == ErrTemplateNotFound {
			return []string{}, nil
		}
		return nil, errors.Wrap(err, "getting class template")
	}
	seen := make(map[string]bool)
	subjects := make([]string, 0, len(tmpl.Part1)+len(tmpl.Part2))
	for _, subj := range append(append([]string{}, tmpl.Part1...), tmpl.Part2...) {
		if !seen[subj] {
			seen[subj] = true
			subjects = append(subjects, subj)
		}
	}
	sort.Strings(subjects)
	return subjects, nil
}

// checkTemplateClass makes sure the class exists and has no template other than `exclID`.
func (svc *Service) checkTemplateClass(ctx context.Context, classID, exclID string) error {
	if _, err := svc.repo.GetClass(ctx, classID); err != nil {
		if err == ErrNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "class_id", Error: err.Error()})
		}
		return errors.Wrap(err, "getting class")
	}
	existing, err := svc.repo.GetTemplateByClass(ctx, classID)
	switch {
	case err == ErrTemplateNotFound:
		return nil
	case err != nil:
		return errors.Wrap(err, "getting class template")
	case existing.ID != exclID:
		return core.NewValidationError(ErrTemplateExists, core.FieldError{Field: "class_id", Error: ErrTemplateExists.Error()})
	}
	return nil
}

func (svc *Service) CreateTemplate(ctx context.Context, nt NewTemplate) (Template, error) {
	if err := svc.checkTemplateClass(ctx, nt.ClassID, ""); err != nil {
		return Template{}, err
	}
	now := NowFunc()
	return svc.repo.CreateTemplate(ctx, Template{
		ClassID:   nt.ClassID,
		Part1:     core.SplitList(nt.Part1),
		Part2:     core.SplitList(nt.Part2),
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) UpdateTemplate(ctx context.Context, id string, ut UpdateTemplate) (Template, error) {
	tmpl, err := svc.repo.GetTemplate(ctx, id)
	if err != nil {
		return Template{}, err
	}
	if ut.ClassID != "" && ut.ClassID != tmpl.ClassID {
		if err = svc.checkTemplateClass(ctx, ut.ClassID, tmpl.ID); err != nil {
			return Template{}, err
		}
		tmpl.ClassID = ut.ClassID
	}
	tmpl.Part1 = core.SplitList(ut.Part1)
	tmpl.Part2 = core.SplitList(ut.Part2)
	tmpl.UpdatedAt = NowFunc()
	return svc.repo.UpdateTemplate(ctx, tmpl)
}

func (svc *Service) DeleteTemplate(ctx context.Context, id string) error {
	return svc.repo.DeleteTemplate(ctx, id)
}

func (svc *Service) GetTemplate(ctx context.Context, id string) (Template, error) {
	return svc.repo.GetTemplate(ctx, id)
}

func (svc *Service) TemplateFor(ctx context.Context, classID string) (Template, error) {
	return svc.repo.GetTemplateByClass(ctx, classID)
}

func (svc *Service) QueryTemplates(ctx context.Context) ([]Template, error) {
	return svc.repo.QueryTemplates(ctx)
}

// SeedDefaults creates the DefaultClasses and DefaultTemplates that do not exist yet.
func (svc *Service) SeedDefaults(ctx context.Context) (SeedReport, error) {
	var report SeedReport

	for _, name := range DefaultClasses {
		if _, err := svc.repo.GetClassByName(ctx, name); err == nil {
			continue
		} else if err != ErrNotFound {
			return report, errors.Wrap(err, "getting class by name")
		}
		if _, err := svc.repo.CreateClass(ctx, SchoolClass{Name: name, CreatedAt: NowFunc()}); err != nil {
			return report, errors.Wrap(err, "creating class")
		}
		report.CreatedClasses = append(report.CreatedClasses, name)
	}

	for _, dt := range DefaultTemplates {
		cls, err := svc.repo.GetClassByName(ctx, dt.ClassName)
		if err != nil {
			if err == ErrNotFound {
				svc.logger.Warn("seeding templates: class " + dt.ClassName + " not found")
				report.Skipped = append(report.Skipped, dt.ClassName)
				continue
			}
			return report, errors.Wrap(err, "getting class by name")
		}
		if _, err = svc.repo.GetTemplateByClass(ctx, cls.ID); err == nil {
			continue
		} else if err != ErrTemplateNotFound {
			return report, errors.Wrap(err, "getting class template")
		}
		now := NowFunc()
		tmpl := Template{ClassID: cls.ID, Part1: dt.Part1, Part2: dt.Part2, CreatedAt: now, UpdatedAt: now}
		if _, err = svc.repo.CreateTemplate(ctx, tmpl); err != nil {
			return report, errors.Wrap(err, "creating template")
		}
		report.CreatedTemplates = append(report.CreatedTemplates, dt.ClassName)
	}
	return report, nil
}
