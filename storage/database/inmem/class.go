package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/bulletin/core/class"
)

type classRepository struct {
	db *DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) *classRepository {
	return &classRepository{db: db}
}

func cloneTemplate(tmpl *class.Template) class.Template {
	t := *tmpl
	t.Part1 = cloneStrings(tmpl.Part1)
	t.Part2 = cloneStrings(tmpl.Part2)
	return t
}

func (db *DB) getTemplateByClass(classID string) (class.Template, error) {
	for _, tmpl := range db.templates {
		if tmpl.ClassID == classID {
			return cloneTemplate(tmpl), nil
		}
	}
	return class.Template{}, class.ErrTemplateNotFound
}

func (repo *classRepository) CreateClass(_ context.Context, cls class.SchoolClass) (class.SchoolClass, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, c := range repo.db.classes {
		if c.Name == cls.Name {
			return class.SchoolClass{}, class.ErrClassExists
		}
	}
	cls.ID = newID()
	stored := cls
	repo.db.classes[cls.ID] = &stored
	return cls, nil
}

// QueryClasses returns the classes ordered by name.
func (repo *classRepository) QueryClasses(_ context.Context) ([]class.SchoolClass, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	classes := make([]class.SchoolClass, 0, len(repo.db.classes))
	for _, c := range repo.db.classes {
		classes = append(classes, *c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })
	return classes, nil
}

func (repo *classRepository) GetClass(_ context.Context, id string) (class.SchoolClass, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if c, ok := repo.db.classes[id]; ok {
		return *c, nil
	}
	return class.SchoolClass{}, class.ErrNotFound
}

func (repo *classRepository) GetClassByName(_ context.Context, name string) (class.SchoolClass, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, c := range repo.db.classes {
		if c.Name == name {
			return *c, nil
		}
	}
	return class.SchoolClass{}, class.ErrNotFound
}

func (repo *classRepository) CreateTemplate(_ context.Context, tmpl class.Template) (class.Template, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.classes[tmpl.ClassID]; !ok {
		return class.Template{}, class.ErrNotFound
	}
	if _, err := repo.db.getTemplateByClass(tmpl.ClassID); err == nil {
		return class.Template{}, class.ErrTemplateExists
	}
	tmpl.ID = newID()
	stored := cloneTemplate(&tmpl)
	repo.db.templates[tmpl.ID] = &stored
	return cloneTemplate(&stored), nil
}

func (repo *classRepository) UpdateTemplate(_ context.Context, tmpl class.Template) (class.Template, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.templates[tmpl.ID]
	if !ok {
		return class.Template{}, class.ErrTemplateNotFound
	}
	if tmpl.ClassID != orig.ClassID {
		if existing, err := repo.db.getTemplateByClass(tmpl.ClassID); err == nil && existing.ID != tmpl.ID {
			return class.Template{}, class.ErrTemplateExists
		}
	}
	updated := cloneTemplate(&tmpl)
	updated.CreatedAt = orig.CreatedAt
	repo.db.templates[tmpl.ID] = &updated
	return cloneTemplate(&updated), nil
}

func (repo *classRepository) DeleteTemplate(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.templates[id]; !ok {
		return class.ErrTemplateNotFound
	}
	delete(repo.db.templates, id)
	return nil
}

func (repo *classRepository) GetTemplate(_ context.Context, id string) (class.Template, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if tmpl, ok := repo.db.templates[id]; ok {
		return cloneTemplate(tmpl), nil
	}
	return class.Template{}, class.ErrTemplateNotFound
}

func (repo *classRepository) GetTemplateByClass(_ context.Context, classID string) (class.Template, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.getTemplateByClass(classID)
}

// QueryTemplates returns the templates ordered by creation time.
func (repo *classRepository) QueryTemplates(_ context.Context) ([]class.Template, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	templates := make([]class.Template, 0, len(repo.db.templates))
	for _, tmpl := range repo.db.templates {
		templates = append(templates, cloneTemplate(tmpl))
	}
	sort.SliceStable(templates, func(i, j int) bool {
		if templates[i].CreatedAt.Equal(templates[j].CreatedAt) {
			return templates[i].ID < templates[j].ID
		}
		return templates[i].CreatedAt.Before(templates[j].CreatedAt)
	})
	return templates, nil
}
