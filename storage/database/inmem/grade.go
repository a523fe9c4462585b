package inmemdb

import (
	"context"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/grade"
	"github.com/trezcool/bulletin/core/user"
)

var defaultGradeOrdering = []core.DBOrdering{
	{Field: "subject", Ascending: true},
	{Field: "created_at", Ascending: true},
	{Field: "id", Ascending: true},
}

type gradeRepository struct {
	db *DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) *gradeRepository {
	return &gradeRepository{db: db}
}

func entryField(e grade.Entry, column string) interface{} {
	switch column {
	case "id":
		return e.ID
	case "subject":
		return e.Subject
	case "period":
		return e.Period
	case "coef":
		return e.Coef
	case "moy_cl":
		return e.ClassAvg
	case "n_compo":
		return e.Composition
	case "created_at":
		return e.CreatedAt
	}
	return nil
}

func (db *DB) queryEntries(filter *grade.QueryFilter, ordering []core.DBOrdering) []grade.Entry {
	entries := make([]grade.Entry, 0)
	for _, e := range db.grades {
		if filter != nil {
			if filter.StudentID != "" && e.StudentID != filter.StudentID {
				continue
			}
			if filter.Period != "" && e.Period != filter.Period {
				continue
			}
			if filter.Subject != "" && e.Subject != filter.Subject {
				continue
			}
			if filter.ClassID != "" {
				if usr, ok := db.users[e.StudentID]; !ok || usr.ClassID != filter.ClassID {
					continue
				}
			}
		}
		entries = append(entries, *e)
	}

	// always end on the default ordering so that results are deterministic
	ordering = append(append([]core.DBOrdering{}, ordering...), defaultGradeOrdering...)
	orderBy(entries, func(i int, col string) interface{} { return entryField(entries[i], col) }, ordering)
	return entries
}

func (repo *gradeRepository) CreateEntry(_ context.Context, e grade.Entry) (grade.Entry, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.users[e.StudentID]; !ok {
		return grade.Entry{}, user.ErrNotFound
	}
	e.ID = newID()
	stored := e
	repo.db.grades[e.ID] = &stored
	return e, nil
}

func (repo *gradeRepository) GetEntry(_ context.Context, id string) (grade.Entry, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if e, ok := repo.db.grades[id]; ok {
		return *e, nil
	}
	return grade.Entry{}, grade.ErrNotFound
}

func (repo *gradeRepository) QueryEntries(_ context.Context, filter *grade.QueryFilter, ordering []core.DBOrdering) ([]grade.Entry, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.queryEntries(filter, ordering), nil
}

func (repo *gradeRepository) UpdateEntry(_ context.Context, e grade.Entry) (grade.Entry, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.grades[e.ID]
	if !ok {
		return grade.Entry{}, grade.ErrNotFound
	}
	e.StudentID = orig.StudentID
	e.CreatedAt = orig.CreatedAt
	stored := e
	repo.db.grades[e.ID] = &stored
	return e, nil
}

func (repo *gradeRepository) DeleteEntry(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.grades[id]; !ok {
		return grade.ErrNotFound
	}
	delete(repo.db.grades, id)
	return nil
}
